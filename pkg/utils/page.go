package utils

import (
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/aldoetobex/acelegal-case-desk/pkg/models"
)

// ParsePage reads ?page= and ?pageSize= with defaults 1 and 10 (max 50).
func ParsePage(c *fiber.Ctx) (page, size int) {
	page, _ = strconv.Atoi(c.Query("page", "1"))
	size, _ = strconv.Atoi(c.Query("pageSize", "10"))
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 50 {
		size = 10
	}
	return
}

// Paginate slices an in-memory list into one page. Items is never nil.
func Paginate[T any](all []T, page, size int) models.Page[T] {
	total := len(all)
	start := min((page-1)*size, total)
	end := min(start+size, total)

	items := make([]T, 0, end-start)
	items = append(items, all[start:end]...)
	return models.Page[T]{
		Page:     page,
		PageSize: size,
		Total:    int64(total),
		Pages:    int(math.Ceil(float64(total) / float64(size))),
		Items:    items,
	}
}
