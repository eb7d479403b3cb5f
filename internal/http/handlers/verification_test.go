package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/contactly/contacthub/internal/auth"
	"github.com/contactly/contacthub/internal/domain/contact"
	"github.com/contactly/contacthub/internal/http/handlers"
	"github.com/contactly/contacthub/internal/repo/memory"
)

func newVerificationSetup(t *testing.T) (*auth.Manager, *memory.ContactsRepo, http.Handler) {
	t.Helper()

	tokens := auth.NewManager("test-secret-key", 20*time.Minute, 48*time.Hour)
	repo := memory.NewContactsRepo()

	h := handlers.NewVerificationHandler(tokens, repo)
	r := setupRouter(http.MethodGet, "/verification", h.Verify)

	return tokens, repo, r
}

func TestVerificationMarksContactVerified(t *testing.T) {
	tokens, repo, r := newVerificationSetup(t)

	created, err := repo.Create(context.Background(), contact.CreateContactRequest{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "ada@example.com",
		PhoneNumber: "555-0100",
	})

	if err != nil {
		t.Fatalf("seed contact: %v", err)
	}

	token, err := tokens.IssueVerificationToken(created.ID, created.FirstName)

	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/verification?token="+token, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected an html page, got content type %q", ct)
	}

	if !strings.Contains(w.Body.String(), "Ada") {
		t.Fatalf("confirmation page should greet the contact by name, body=%s", w.Body.String())
	}

	stored, err := repo.GetByID(context.Background(), created.ID)

	if err != nil {
		t.Fatalf("reload contact: %v", err)
	}

	if !stored.Verified {
		t.Fatalf("contact should be verified after following the link")
	}
}

func TestVerificationRejectsBadTokens(t *testing.T) {
	tokens, repo, r := newVerificationSetup(t)

	created, err := repo.Create(context.Background(), contact.CreateContactRequest{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "ada@example.com",
		PhoneNumber: "555-0100",
	})

	if err != nil {
		t.Fatalf("seed contact: %v", err)
	}

	good, err := tokens.IssueVerificationToken(created.ID, created.FirstName)

	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	// an access token must not be accepted by the verification endpoint
	access, err := tokens.IssueAccessToken("ada", created.ID)

	if err != nil {
		t.Fatalf("issue access token: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "missing", token: ""},
		{name: "garbage", token: "not-a-jwt"},
		{name: "tampered", token: good + "x"},
		{name: "wrong_type", token: access},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/verification?token="+tt.token, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
			}

			stored, err := repo.GetByID(context.Background(), created.ID)

			if err != nil {
				t.Fatalf("reload contact: %v", err)
			}

			if stored.Verified {
				t.Fatalf("bad token must not flip the verified flag")
			}
		})
	}
}

func TestVerificationLinkIsSingleUse(t *testing.T) {
	tokens, repo, r := newVerificationSetup(t)

	created, err := repo.Create(context.Background(), contact.CreateContactRequest{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "ada@example.com",
		PhoneNumber: "555-0100",
	})

	if err != nil {
		t.Fatalf("seed contact: %v", err)
	}

	token, err := tokens.IssueVerificationToken(created.ID, created.FirstName)

	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/verification?token="+token, nil))

	if first.Code != http.StatusOK {
		t.Fatalf("first use: got status %d, body=%s", first.Code, first.Body.String())
	}

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/verification?token="+token, nil))

	if second.Code != http.StatusUnauthorized {
		t.Fatalf("second use: got status %d, body=%s", second.Code, second.Body.String())
	}
}
