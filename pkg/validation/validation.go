package validation

import (
	"fmt"
	"net"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var v *validator.Validate

func init() {
	v = validator.New()

	// Use JSON tag as the field name in error output
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// Custom: calendar date, YYYY-MM-DD
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		val := strings.TrimSpace(fl.Field().String())
		if val == "" { // let omitempty handle empty
			return true
		}
		_, err := time.Parse(time.DateOnly, val)
		return err == nil
	})

	// Custom: IP allow-list, one IP or CIDR per line
	_ = v.RegisterValidation("ipallowlist", func(fl validator.FieldLevel) bool {
		for _, line := range strings.Split(fl.Field().String(), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if net.ParseIP(line) == nil {
				if _, _, err := net.ParseCIDR(line); err != nil {
					return false
				}
			}
		}
		return true
	})
}

// Validate returns map[field][]messages (Laravel-like)
func Validate(s any) (map[string][]string, error) {
	if err := v.Struct(s); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil, err
		}
		out := make(map[string][]string)
		for _, e := range ve {
			field := e.Field() // already mapped from json tag

			switch e.Tag() {
			case "required":
				out[field] = append(out[field], "This field is required")

			case "email":
				out[field] = append(out[field], "Invalid email format")

			case "min":
				// Show a string-specific message when the field is a string
				if e.Kind() == reflect.String {
					out[field] = append(out[field], fmt.Sprintf("Must be at least %s characters", e.Param()))
				} else {
					out[field] = append(out[field], fmt.Sprintf("Must be at least %s", e.Param()))
				}

			case "max":
				if e.Kind() == reflect.String {
					out[field] = append(out[field], fmt.Sprintf("Must be at most %s characters", e.Param()))
				} else {
					out[field] = append(out[field], fmt.Sprintf("Must be at most %s", e.Param()))
				}

			case "oneof":
				out[field] = append(out[field], "Value is not allowed")

			case "uuid", "uuid4":
				out[field] = append(out[field], "Invalid UUID format")

			case "gte":
				if e.Kind() == reflect.String {
					out[field] = append(out[field], fmt.Sprintf("Must be at least %s characters", e.Param()))
				} else {
					out[field] = append(out[field], fmt.Sprintf("Must be greater than or equal to %s", e.Param()))
				}

			case "lte":
				if e.Kind() == reflect.String {
					out[field] = append(out[field], fmt.Sprintf("Must be at most %s characters", e.Param()))
				} else {
					out[field] = append(out[field], fmt.Sprintf("Must be less than or equal to %s", e.Param()))
				}

			case "isodate":
				out[field] = append(out[field], "Invalid date (use YYYY-MM-DD)")

			case "ipallowlist":
				out[field] = append(out[field], "Each line must be an IP address or CIDR range")

			default:
				// Fallback to original error text if we missed a tag
				out[field] = append(out[field], e.Error())
			}
		}
		return out, nil
	}
	return nil, nil
}
