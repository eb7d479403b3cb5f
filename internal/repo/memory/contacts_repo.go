package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/contactly/contacthub/internal/domain/contact"
)

// ContactsRepo is a map-backed contact store. It mirrors the postgres
// repo's behaviour closely enough for handler tests and local runs
// without a database.
type ContactsRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]contact.Contact
}

func NewContactsRepo() *ContactsRepo {
	return &ContactsRepo{
		nextID: 1,
		items:  make(map[int64]contact.Contact),
	}
}

func (r *ContactsRepo) Create(ctx context.Context, req contact.CreateContactRequest) (contact.Contact, error) {
	c, err := contact.NewFromCreateRequest(req)

	if err != nil {
		return contact.Contact{}, err
	}

	r.mu.Lock()
	c.ID = r.nextID
	r.nextID++
	r.items[c.ID] = c
	r.mu.Unlock()

	return c, nil
}

func (r *ContactsRepo) List(ctx context.Context, filter contact.ListFilter) ([]contact.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]contact.Contact, 0, len(r.items))

	for _, c := range r.items {
		if filter.Query != nil && *filter.Query != "" {
			q := strings.ToLower(*filter.Query)

			if !strings.Contains(strings.ToLower(c.FirstName), q) &&
				!strings.Contains(strings.ToLower(c.LastName), q) &&
				!strings.Contains(strings.ToLower(c.Email), q) {
				continue
			}
		}

		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *ContactsRepo) GetByID(ctx context.Context, id int64) (contact.Contact, error) {
	r.mu.RLock()
	c, ok := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return contact.Contact{}, contact.ErrNotFound
	}

	return c, nil
}

func (r *ContactsRepo) Update(ctx context.Context, id int64, req contact.UpdateContactRequest) (contact.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.items[id]

	if !ok {
		return contact.Contact{}, contact.ErrNotFound
	}

	if err := c.ApplyUpdate(req); err != nil {
		return contact.Contact{}, err
	}

	r.items[id] = c

	return c, nil
}

func (r *ContactsRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return contact.ErrNotFound
	}

	delete(r.items, id)

	return nil
}

func (r *ContactsRepo) UpcomingBirthdays(ctx context.Context, monthDayKeys []string) ([]contact.Contact, error) {
	keys := make(map[string]struct{}, len(monthDayKeys))

	for _, k := range monthDayKeys {
		keys[k] = struct{}{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]contact.Contact, 0)

	for _, c := range r.items {
		if c.Birthday == nil {
			continue
		}

		if _, ok := keys[contact.MonthDayKey(*c.Birthday)]; ok {
			out = append(out, c)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *ContactsRepo) MarkVerified(ctx context.Context, id int64) (contact.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.items[id]

	if !ok || c.Verified {
		return contact.Contact{}, contact.ErrNotFound
	}

	c.Verified = true
	r.items[id] = c

	return c, nil
}
