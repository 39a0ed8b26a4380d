package main

import (
	"context"
	"io"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldoetobex/acelegal-case-desk/internal/auth"
	"github.com/aldoetobex/acelegal-case-desk/internal/storage"
)

const secretKey = "case/c1/abcd1234_secret.pdf"

func newObjectApp(t *testing.T) (*fiber.App, *storage.Memory) {
	t.Helper()
	mem := storage.NewMemory("http://files.test", []byte("test-secret"))
	require.NoError(t, mem.Put(context.Background(), secretKey, strings.NewReader("privileged"), "application/pdf", 10))

	app := fiber.New(fiber.Config{ErrorHandler: auth.ErrorHandler})
	app.Get("/objects/*", serveObject(mem))
	return app, mem
}

func fetch(t *testing.T, app *fiber.App, target string) (int, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", target, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b)
}

// pathOf strips scheme and host so the signed link can be replayed against the test app.
func pathOf(t *testing.T, raw string) (string, url.Values) {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u.Path, u.Query()
}

func TestServeObject_ValidLink(t *testing.T) {
	app, mem := newObjectApp(t)
	signed, err := mem.SignedURL(context.Background(), secretKey, 15*time.Minute)
	require.NoError(t, err)

	path, q := pathOf(t, signed)
	code, body := fetch(t, app, path+"?"+q.Encode())
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "privileged", body)
}

func TestServeObject_UnsignedLinkRejected(t *testing.T) {
	app, _ := newObjectApp(t)
	far := strconv.FormatInt(time.Now().AddDate(100, 0, 0).Unix(), 10)

	code, body := fetch(t, app, "/objects/"+secretKey+"?expires="+far)
	assert.Equal(t, fiber.StatusForbidden, code)
	assert.NotContains(t, body, "privileged")
}

func TestServeObject_ExtendedExpiryRejected(t *testing.T) {
	app, mem := newObjectApp(t)
	signed, err := mem.SignedURL(context.Background(), secretKey, 15*time.Minute)
	require.NoError(t, err)

	path, q := pathOf(t, signed)
	q.Set("expires", strconv.FormatInt(time.Now().AddDate(100, 0, 0).Unix(), 10))
	code, _ := fetch(t, app, path+"?"+q.Encode())
	assert.Equal(t, fiber.StatusForbidden, code)
}

func TestServeObject_TamperedSignatureRejected(t *testing.T) {
	app, mem := newObjectApp(t)
	signed, err := mem.SignedURL(context.Background(), secretKey, 15*time.Minute)
	require.NoError(t, err)

	path, q := pathOf(t, signed)
	sig := []byte(q.Get("sig"))
	if sig[0] == 'a' {
		sig[0] = 'b'
	} else {
		sig[0] = 'a'
	}
	q.Set("sig", string(sig))
	code, _ := fetch(t, app, path+"?"+q.Encode())
	assert.Equal(t, fiber.StatusForbidden, code)
}

func TestServeObject_ExpiredLinkRejected(t *testing.T) {
	app, mem := newObjectApp(t)
	signed, err := mem.SignedURL(context.Background(), secretKey, -time.Minute)
	require.NoError(t, err)

	path, q := pathOf(t, signed)
	code, body := fetch(t, app, path+"?"+q.Encode())
	assert.Equal(t, fiber.StatusForbidden, code)
	assert.Contains(t, body, "link expired")
}

func TestServeObject_DeletedObject(t *testing.T) {
	app, mem := newObjectApp(t)
	signed, err := mem.SignedURL(context.Background(), secretKey, 15*time.Minute)
	require.NoError(t, err)
	require.NoError(t, mem.Delete(context.Background(), secretKey))

	path, q := pathOf(t, signed)
	code, _ := fetch(t, app, path+"?"+q.Encode())
	assert.Equal(t, fiber.StatusNotFound, code)
}
