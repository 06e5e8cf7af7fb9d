package contact

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/anuvataru/jewelry-catalog/internal/apperr"
)

func makeAppWithContactHandler(seed []Submission) (*fiber.App, *InMemoryRepository) {
	repo := NewInMemoryRepository(seed)
	handler := NewHandler(NewService(repo))

	app := fiber.New(fiber.Config{ErrorHandler: apperr.Handler})
	handler.RegisterPublicRoutes(app)
	handler.RegisterProtectedRoutes(app.Group("/api/admin"))
	return app, repo
}

func send(t *testing.T, app *fiber.App, req *http.Request) (int, string) {
	t.Helper()
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", req.Method, req.URL.Path, err)
	}
	b, _ := io.ReadAll(res.Body)
	return res.StatusCode, string(b)
}

func postContact(body string) *http.Request {
	req := httptest.NewRequest("POST", "/api/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestSubmitContactForm(t *testing.T) {
	app, repo := makeAppWithContactHandler(nil)

	status, body := send(t, app, postContact(`{"name":"Mali","email":"mali@example.com","message":"Do you ship abroad?"}`))
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	if !strings.Contains(body, `"message":"Contact form submitted successfully"`) || !strings.Contains(body, `"id":1`) {
		t.Fatalf("unexpected body: %s", body)
	}

	s, err := repo.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("submission not stored: %v", err)
	}
	if s.IsRead || s.Phone != nil {
		t.Fatalf("expected unread submission without phone, got %+v", s)
	}
}

func TestSubmitContactFormAcceptsURLEncoded(t *testing.T) {
	app, repo := makeAppWithContactHandler(nil)

	req := httptest.NewRequest("POST", "/api/contact", strings.NewReader("name=Mali&email=mali%40example.com&phone=0812345678&message=Hello"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	status, body := send(t, app, req)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	s, _ := repo.Get(context.Background(), 1)
	if s.Phone == nil || *s.Phone != "0812345678" {
		t.Fatalf("expected phone to be stored, got %+v", s.Phone)
	}
}

func TestSubmitContactFormValidation(t *testing.T) {
	app, repo := makeAppWithContactHandler(nil)

	status, body := send(t, app, postContact(`{"name":"  ","email":"not-an-email","message":""}`))
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", status, body)
	}
	for _, field := range []string{`"field":"name"`, `"field":"email"`, `"field":"message"`} {
		if !strings.Contains(body, field) {
			t.Fatalf("expected violation %s in %s", field, body)
		}
	}
	if !strings.Contains(body, "email must be a valid email address") {
		t.Fatalf("expected email format message, got %s", body)
	}

	n, _ := repo.CountUnread(context.Background())
	if n != 0 {
		t.Fatalf("expected no stored submission, found %d", n)
	}
}

func TestAdminContactRoutes(t *testing.T) {
	app, repo := makeAppWithContactHandler([]Submission{
		{ID: 1, Name: "A", Email: "a@example.com", Message: "first"},
		{ID: 2, Name: "B", Email: "b@example.com", Message: "second"},
	})

	status, body := send(t, app, httptest.NewRequest("GET", "/api/admin/contacts", nil))
	if status != fiber.StatusOK || !strings.Contains(body, `"name":"A"`) || !strings.Contains(body, `"name":"B"`) {
		t.Fatalf("expected both submissions, got %d: %s", status, body)
	}

	status, body = send(t, app, httptest.NewRequest("GET", "/api/admin/contacts/2", nil))
	if status != fiber.StatusOK || !strings.Contains(body, `"is_read":true`) {
		t.Fatalf("viewing a submission should mark it read, got %d: %s", status, body)
	}

	for i := 0; i < 2; i++ {
		status, body = send(t, app, httptest.NewRequest("PATCH", "/api/admin/contacts/1/read", nil))
		if status != fiber.StatusOK {
			t.Fatalf("mark read attempt %d: expected 200, got %d: %s", i+1, status, body)
		}
	}
	if n, _ := repo.CountUnread(context.Background()); n != 0 {
		t.Fatalf("expected all submissions read, %d unread", n)
	}

	status, body = send(t, app, httptest.NewRequest("PATCH", "/api/admin/contacts/99/read", nil))
	if status != fiber.StatusNotFound || !strings.Contains(body, "Contact submission not found") {
		t.Fatalf("expected 404 for unknown submission, got %d: %s", status, body)
	}
	status, _ = send(t, app, httptest.NewRequest("GET", "/api/admin/contacts/99", nil))
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown submission, got %d", status)
	}
}
