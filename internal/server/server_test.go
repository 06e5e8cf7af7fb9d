package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anuvataru/jewelry-catalog/internal/auth"
	"github.com/anuvataru/jewelry-catalog/internal/config"
	"github.com/anuvataru/jewelry-catalog/internal/contact"
	"github.com/anuvataru/jewelry-catalog/internal/database/databasetest"
	"github.com/anuvataru/jewelry-catalog/internal/metrics"
	"github.com/anuvataru/jewelry-catalog/internal/product"
	"github.com/anuvataru/jewelry-catalog/internal/upload"
	"github.com/anuvataru/jewelry-catalog/internal/upload/uploadtest"
	"github.com/anuvataru/jewelry-catalog/internal/user"
)

type harness struct {
	app      *fiber.App
	products *product.SQLRepository
	contacts *contact.SQLRepository
	uploads  string
}

func newHarness(t *testing.T) harness {
	t.Helper()
	uploads := t.TempDir()
	public := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(public, "index.html"), []byte("<h1>Anuvataru</h1>"), 0o644))

	env := map[string]string{
		"JWT_SECRET":     "test-secret",
		"UPLOAD_DIR":     uploads,
		"PUBLIC_DIR":     public,
		"ADMIN_DIR":      t.TempDir(),
		"RATE_LIMIT_MAX": "1000",
	}
	cfg, err := config.FromEnv(func(k string) string { return env[k] })
	require.NoError(t, err)

	db := databasetest.New(t)
	users := user.NewSQLRepository(db)
	_, err = user.NewService(users).EnsureDefaultAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword)
	require.NoError(t, err)

	h := harness{
		products: product.NewSQLRepository(db),
		contacts: contact.NewSQLRepository(db),
		uploads:  uploads,
	}
	h.app = New(Deps{
		Config:   cfg,
		Users:    users,
		Products: h.products,
		Contacts: h.contacts,
		Images:   upload.NewLocalStore(uploads),
		Tokens:   auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiresIn),
		Metrics:  metrics.New(),
		Ping:     db.PingContext,
	})
	return h
}

func (h harness) do(t *testing.T, req *http.Request) (int, string) {
	t.Helper()
	res, err := h.app.Test(req, -1)
	require.NoError(t, err)
	b, _ := io.ReadAll(res.Body)
	return res.StatusCode, string(b)
}

func (h harness) login(t *testing.T) string {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/admin/login", strings.NewReader(`{"email":"admin@anuvataru.com","password":"admin123"}`))
	req.Header.Set("Content-Type", "application/json")
	status, body := h.do(t, req)
	require.Equal(t, fiber.StatusOK, status, body)

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.UnmarshalFromString(body, &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func bearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestAdminAccessRequiresValidToken(t *testing.T) {
	h := newHarness(t)
	token := h.login(t)

	status, body := h.do(t, bearer(httptest.NewRequest("GET", "/api/admin/products", nil), token))
	assert.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "[]", body)

	status, body = h.do(t, httptest.NewRequest("GET", "/api/admin/products", nil))
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Contains(t, body, "authentication required")

	status, body = h.do(t, bearer(httptest.NewRequest("GET", "/api/admin/products", nil), token+"x"))
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Contains(t, body, "invalid or expired credential")

	status, body = h.do(t, bearer(httptest.NewRequest("GET", "/api/admin/me", nil), token))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, `"email":"admin@anuvataru.com"`)
	assert.NotContains(t, body, "password")
}

func TestLoginFailureIsUniform(t *testing.T) {
	h := newHarness(t)
	for _, payload := range []string{
		`{"email":"admin@anuvataru.com","password":"wrong"}`,
		`{"email":"nobody@anuvataru.com","password":"admin123"}`,
	} {
		req := httptest.NewRequest("POST", "/api/admin/login", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		status, body := h.do(t, req)
		assert.Equal(t, fiber.StatusUnauthorized, status)
		assert.Equal(t, `{"message":"invalid credentials"}`, body)
	}
}

func TestContactValidationWritesNothing(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequest("POST", "/api/contact", strings.NewReader(`{"name":"Mali","email":"not-an-email","message":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	status, body := h.do(t, req)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body, `"field":"email"`)

	subs, err := h.contacts.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestOversizedUploadWritesNothing(t *testing.T) {
	h := newHarness(t)
	token := h.login(t)

	f := uploadtest.NewForm().
		Field("name", "Moon Ring").
		Field("price", "49.90").
		Field("category", "Rings").
		File("image", "ring.png", "image/png", uploadtest.PNG(6<<20))
	contentType := f.Close()
	req := httptest.NewRequest("POST", "/api/admin/products", f.Body)
	req.Header.Set("Content-Type", contentType)

	status, body := h.do(t, bearer(req, token))
	assert.Equal(t, fiber.StatusRequestEntityTooLarge, status, body)
	assert.Contains(t, body, "file too large")

	all, err := h.products.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
	entries, _ := os.ReadDir(h.uploads)
	assert.Empty(t, entries)
}

func TestCreateThenServePublicly(t *testing.T) {
	h := newHarness(t)
	token := h.login(t)

	f := uploadtest.NewForm().
		Field("name", "Moon Ring").
		Field("price", "49.90").
		Field("category", "Rings").
		File("image", "ring.png", "image/png", uploadtest.PNG(256))
	contentType := f.Close()
	req := httptest.NewRequest("POST", "/api/admin/products", f.Body)
	req.Header.Set("Content-Type", contentType)
	status, body := h.do(t, bearer(req, token))
	require.Equal(t, fiber.StatusCreated, status, body)

	created, err := h.products.Get(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, created.ImageURL)

	status, _ = h.do(t, httptest.NewRequest("GET", *created.ImageURL, nil))
	assert.Equal(t, fiber.StatusOK, status, "stored image should be served from /uploads")

	status, body = h.do(t, httptest.NewRequest("GET", "/api/products/1", nil))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, `"name":"Moon Ring"`)
}

func TestHiddenProductIsNotPublic(t *testing.T) {
	h := newHarness(t)
	hidden, err := h.products.Create(context.Background(), product.CreateInput{
		Name: "Secret Cuff", Price: decimal.NewFromInt(90), Category: "Bracelets", Material: product.DefaultMaterial,
	})
	require.NoError(t, err)

	status, body := h.do(t, httptest.NewRequest("GET", "/api/products/1", nil))
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, `{"message":"Product not found"}`, body)

	_, missing := h.do(t, httptest.NewRequest("GET", "/api/products/999", nil))
	assert.Equal(t, body, missing)

	status, body = h.do(t, httptest.NewRequest("GET", "/api/products", nil))
	assert.Equal(t, fiber.StatusOK, status)
	assert.NotContains(t, body, hidden.Name)
}

func TestInfrastructureRoutes(t *testing.T) {
	h := newHarness(t)

	status, body := h.do(t, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, `"status":"OK"`)

	status, body = h.do(t, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "Anuvataru")

	status, body = h.do(t, httptest.NewRequest("GET", "/no/such/route", nil))
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, `{"message":"Route not found"}`, body)

	status, body = h.do(t, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "jewelry_http_requests_total")
}

func TestRateLimitAppliesToAPI(t *testing.T) {
	h := newHarness(t)
	cfg, err := config.FromEnv(func(k string) string {
		return map[string]string{"JWT_SECRET": "s", "RATE_LIMIT_MAX": "1", "RATE_LIMIT_WINDOW": "1m"}[k]
	})
	require.NoError(t, err)

	app := New(Deps{
		Config:   cfg,
		Users:    user.NewInMemoryRepository(nil),
		Products: h.products,
		Contacts: h.contacts,
		Images:   upload.NewLocalStore(t.TempDir()),
		Tokens:   auth.NewTokenIssuer("s", time.Hour),
	})

	res, err := app.Test(httptest.NewRequest("GET", "/api/categories", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	res, err = app.Test(httptest.NewRequest("GET", "/api/categories", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, res.StatusCode)

	res, err = app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
}
