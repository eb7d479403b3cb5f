package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/contactly/contacthub/internal/domain/contact"
	"github.com/contactly/contacthub/internal/http/handlers"
	"github.com/contactly/contacthub/internal/jobs"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

// Fake repository implementation of the handlers.ContactsRepository interface

type fakeContactsRepo struct {
	createFn    func(ctx context.Context, req contact.CreateContactRequest) (contact.Contact, error)
	listFn      func(ctx context.Context, filter contact.ListFilter) ([]contact.Contact, error)
	getFn       func(ctx context.Context, id int64) (contact.Contact, error)
	updateFn    func(ctx context.Context, id int64, req contact.UpdateContactRequest) (contact.Contact, error)
	deleteFn    func(ctx context.Context, id int64) error
	birthdaysFn func(ctx context.Context, monthDayKeys []string) ([]contact.Contact, error)
}

func (f *fakeContactsRepo) Create(ctx context.Context, req contact.CreateContactRequest) (contact.Contact, error) {
	if f.createFn != nil {
		return f.createFn(ctx, req)
	}

	return contact.Contact{}, nil
}

func (f *fakeContactsRepo) List(ctx context.Context, filter contact.ListFilter) ([]contact.Contact, error) {
	if f.listFn != nil {
		return f.listFn(ctx, filter)
	}

	return nil, nil
}

func (f *fakeContactsRepo) GetByID(ctx context.Context, id int64) (contact.Contact, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}

	return contact.Contact{}, nil
}

func (f *fakeContactsRepo) Update(ctx context.Context, id int64, req contact.UpdateContactRequest) (contact.Contact, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}

	return contact.Contact{}, nil
}

func (f *fakeContactsRepo) Delete(ctx context.Context, id int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}

	return nil
}

func (f *fakeContactsRepo) UpcomingBirthdays(ctx context.Context, monthDayKeys []string) ([]contact.Contact, error) {
	if f.birthdaysFn != nil {
		return f.birthdaysFn(ctx, monthDayKeys)
	}

	return nil, nil
}

// fakeJobQueue records enqueued jobs so tests can assert on them.

type fakeJobQueue struct {
	jobs      []jobs.Job
	createErr error
}

func (f *fakeJobQueue) Create(ctx context.Context, j jobs.Job) error {
	if f.createErr != nil {
		return f.createErr
	}

	f.jobs = append(f.jobs, j)
	return nil
}

// small helper function which returns the gin engine to mount one handler per test

func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h)

	return r
}

func sampleContact(id int64) contact.Contact {
	now := time.Now().UTC()

	return contact.Contact{
		ID:          id,
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "ada@example.com",
		PhoneNumber: "555-0100",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Create contact tests

func TestCreateContactHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		repoSetUp      func(*fakeContactsRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{
				"first_name": "Ada",
				"last_name": "Lovelace",
				"email": "ada@example.com",
				"phone_number": "555-0100",
				"birthday": "1990-12-10"
			}`,
			repoSetUp: func(f *fakeContactsRepo) {
				f.createFn = func(ctx context.Context, req contact.CreateContactRequest) (contact.Contact, error) {
					c := sampleContact(1)
					c.FirstName = req.FirstName
					return c, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name: "validation_error",
			body: `{"first_name": ""}`, // incomplete request payload
			repoSetUp: func(f *fakeContactsRepo) {
				// the repo should never be reached for an invalid body
				f.createFn = func(ctx context.Context, req contact.CreateContactRequest) (contact.Contact, error) {
					return contact.Contact{}, errors.New("should not be called")
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "bad_birthday_format",
			body: `{
				"first_name": "Ada",
				"last_name": "Lovelace",
				"email": "ada@example.com",
				"phone_number": "555-0100",
				"birthday": "10/12/1990"
			}`,
			repoSetUp:      func(f *fakeContactsRepo) {},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			body: `{
				"first_name": "Ada",
				"last_name": "Lovelace",
				"email": "ada@example.com",
				"phone_number": "555-0100"
			}`,
			repoSetUp: func(f *fakeContactsRepo) {
				f.createFn = func(ctx context.Context, req contact.CreateContactRequest) (contact.Contact, error) {
					return contact.Contact{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeContactsRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			h := handlers.NewContactsHandler(repo)

			r := setupRouter(http.MethodPost, "/contacts", h.CreateContact)

			req := httptest.NewRequest(http.MethodPost, "/contacts", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestCreateContactEnqueuesVerificationEmail(t *testing.T) {
	repo := &fakeContactsRepo{
		createFn: func(ctx context.Context, req contact.CreateContactRequest) (contact.Contact, error) {
			c := sampleContact(42)
			c.Email = req.Email
			return c, nil
		},
	}
	queue := &fakeJobQueue{}

	h := handlers.NewContactsHandler(repo).WithEmailQueue(queue)

	r := setupRouter(http.MethodPost, "/contacts", h.CreateContact)

	body := `{
		"first_name": "Ada",
		"last_name": "Lovelace",
		"email": "ada@example.com",
		"phone_number": "555-0100"
	}`

	req := httptest.NewRequest(http.MethodPost, "/contacts", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	if len(queue.jobs) != 1 {
		t.Fatalf("expected one enqueued job, got %d", len(queue.jobs))
	}

	j := queue.jobs[0]

	if j.Type != jobs.JobSendVerificationEmail {
		t.Fatalf("unexpected job type %q", j.Type)
	}

	var payload jobs.VerificationEmailPayload

	if err := json.Unmarshal(j.Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}

	if payload.ContactID != 42 || payload.Email != "ada@example.com" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestCreateContactSucceedsWhenQueueIsDown(t *testing.T) {
	repo := &fakeContactsRepo{
		createFn: func(ctx context.Context, req contact.CreateContactRequest) (contact.Contact, error) {
			return sampleContact(7), nil
		},
	}
	queue := &fakeJobQueue{createErr: errors.New("queue unavailable")}

	h := handlers.NewContactsHandler(repo).WithEmailQueue(queue)

	r := setupRouter(http.MethodPost, "/contacts", h.CreateContact)

	body := `{
		"first_name": "Ada",
		"last_name": "Lovelace",
		"email": "ada@example.com",
		"phone_number": "555-0100"
	}`

	req := httptest.NewRequest(http.MethodPost, "/contacts", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("enqueue failure must not fail the create, got %d body=%s", w.Code, w.Body.String())
	}
}

// List contact tests

func TestListContactsHandler(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		repoSetUp      func(*fakeContactsRepo)
		wantStatusCode int
		wantCount      float64
	}{
		{
			name:   "all_contacts",
			target: "/contacts",
			repoSetUp: func(f *fakeContactsRepo) {
				f.listFn = func(ctx context.Context, filter contact.ListFilter) ([]contact.Contact, error) {
					if filter.Query != nil {
						t.Fatalf("expected no filter, got %q", *filter.Query)
					}
					return []contact.Contact{sampleContact(1), sampleContact(2)}, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantCount:      2,
		},
		{
			name:   "filtered",
			target: "/contacts?query=ada",
			repoSetUp: func(f *fakeContactsRepo) {
				f.listFn = func(ctx context.Context, filter contact.ListFilter) ([]contact.Contact, error) {
					if filter.Query == nil || *filter.Query != "ada" {
						t.Fatalf("filter not propagated: %+v", filter)
					}
					return []contact.Contact{sampleContact(1)}, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantCount:      1,
		},
		{
			name:   "repo_error",
			target: "/contacts",
			repoSetUp: func(f *fakeContactsRepo) {
				f.listFn = func(ctx context.Context, filter contact.ListFilter) ([]contact.Contact, error) {
					return nil, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeContactsRepo{}
			tt.repoSetUp(repo)

			h := handlers.NewContactsHandler(repo)

			r := setupRouter(http.MethodGet, "/contacts", h.ListContacts)

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode != http.StatusOK {
				return
			}

			var resp map[string]any

			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}

			if got := resp["count"].(float64); got != tt.wantCount {
				t.Fatalf("count = %v, want %v", got, tt.wantCount)
			}
		})
	}
}

// Get contact tests

func TestGetContactByIdHandler(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		repoSetUp      func(*fakeContactsRepo)
		wantStatusCode int
	}{
		{
			name:   "found",
			target: "/contacts/1",
			repoSetUp: func(f *fakeContactsRepo) {
				f.getFn = func(ctx context.Context, id int64) (contact.Contact, error) {
					return sampleContact(id), nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:   "not_found",
			target: "/contacts/99",
			repoSetUp: func(f *fakeContactsRepo) {
				f.getFn = func(ctx context.Context, id int64) (contact.Contact, error) {
					return contact.Contact{}, contact.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "bad_id",
			target:         "/contacts/not-a-number",
			repoSetUp:      func(f *fakeContactsRepo) {},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeContactsRepo{}
			tt.repoSetUp(repo)

			h := handlers.NewContactsHandler(repo)

			r := setupRouter(http.MethodGet, "/contacts/:id", h.GetContactById)

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

// Update contact tests

func TestUpdateContactHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		repoSetUp      func(*fakeContactsRepo)
		wantStatusCode int
	}{
		{
			name: "partial_update",
			body: `{"phone_number": "555-0199"}`,
			repoSetUp: func(f *fakeContactsRepo) {
				f.updateFn = func(ctx context.Context, id int64, req contact.UpdateContactRequest) (contact.Contact, error) {
					if req.PhoneNumber == nil || *req.PhoneNumber != "555-0199" {
						t.Fatalf("phone number not propagated: %+v", req)
					}
					if req.FirstName != nil {
						t.Fatalf("untouched field should stay nil")
					}

					c := sampleContact(id)
					c.PhoneNumber = *req.PhoneNumber
					return c, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "not_found",
			body: `{"phone_number": "555-0199"}`,
			repoSetUp: func(f *fakeContactsRepo) {
				f.updateFn = func(ctx context.Context, id int64, req contact.UpdateContactRequest) (contact.Contact, error) {
					return contact.Contact{}, contact.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "invalid_email",
			body:           `{"email": "not-an-email"}`,
			repoSetUp:      func(f *fakeContactsRepo) {},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeContactsRepo{}
			tt.repoSetUp(repo)

			h := handlers.NewContactsHandler(repo)

			r := setupRouter(http.MethodPut, "/contacts/:id", h.UpdateContact)

			req := httptest.NewRequest(http.MethodPut, "/contacts/5", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

// Delete contact tests

func TestDeleteContactHandler(t *testing.T) {
	tests := []struct {
		name           string
		repoSetUp      func(*fakeContactsRepo)
		wantStatusCode int
	}{
		{
			name: "deleted",
			repoSetUp: func(f *fakeContactsRepo) {
				f.deleteFn = func(ctx context.Context, id int64) error {
					return nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "not_found",
			repoSetUp: func(f *fakeContactsRepo) {
				f.deleteFn = func(ctx context.Context, id int64) error {
					return contact.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeContactsRepo{}
			tt.repoSetUp(repo)

			h := handlers.NewContactsHandler(repo)

			r := setupRouter(http.MethodDelete, "/contacts/:id", h.DeleteContact)

			req := httptest.NewRequest(http.MethodDelete, "/contacts/3", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusOK {
				var resp map[string]any
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("decode response: %v", err)
				}
				if resp["message"] != "Contact deleted successfully" {
					t.Fatalf("unexpected message %q", resp["message"])
				}
			}
		})
	}
}

// Upcoming birthday tests

func TestUpcomingBirthdaysHandler(t *testing.T) {
	var gotKeys []string

	repo := &fakeContactsRepo{
		birthdaysFn: func(ctx context.Context, monthDayKeys []string) ([]contact.Contact, error) {
			gotKeys = monthDayKeys
			return []contact.Contact{sampleContact(1)}, nil
		},
	}

	h := handlers.NewContactsHandler(repo)

	r := setupRouter(http.MethodGet, "/contacts/birthday", h.UpcomingBirthdays)

	req := httptest.NewRequest(http.MethodGet, "/contacts/birthday", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	// 7 days ahead plus today, possibly with a leap-day alias appended
	if len(gotKeys) < 8 {
		t.Fatalf("expected at least 8 month-day keys, got %d (%v)", len(gotKeys), gotKeys)
	}

	today := time.Now().UTC().Format("0102")
	found := false
	for _, k := range gotKeys {
		if k == today {
			found = true
		}
	}
	if !found {
		t.Fatalf("today's key %q missing from %v", today, gotKeys)
	}
}
