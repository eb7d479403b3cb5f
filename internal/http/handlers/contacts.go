package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/contactly/contacthub/internal/cache"
	"github.com/contactly/contacthub/internal/domain/contact"
	"github.com/contactly/contacthub/internal/jobs"
	"github.com/gin-gonic/gin"
)

type ContactsRepository interface {
	Create(ctx context.Context, req contact.CreateContactRequest) (contact.Contact, error)
	List(ctx context.Context, filter contact.ListFilter) ([]contact.Contact, error)
	GetByID(ctx context.Context, id int64) (contact.Contact, error)
	Update(ctx context.Context, id int64, req contact.UpdateContactRequest) (contact.Contact, error)
	Delete(ctx context.Context, id int64) error
	UpcomingBirthdays(ctx context.Context, monthDayKeys []string) ([]contact.Contact, error)
}

type JobEnqueuer interface {
	Create(ctx context.Context, j jobs.Job) error
}

const birthdayWindowDays = 7

type ContactsHandler struct {
	repo     ContactsRepository
	enqueuer JobEnqueuer
	cache    *cache.Cache
	log      *slog.Logger
}

func NewContactsHandler(repo ContactsRepository) *ContactsHandler {
	return &ContactsHandler{repo: repo, log: slog.Default()}
}

func NewContactsHandlerWithCache(repo ContactsRepository, c *cache.Cache) *ContactsHandler {
	h := NewContactsHandler(repo)
	h.cache = c
	return h
}

// WithEmailQueue makes CreateContact enqueue a verification email.
func (h *ContactsHandler) WithEmailQueue(enqueuer JobEnqueuer) *ContactsHandler {
	h.enqueuer = enqueuer
	return h
}

func contactIDParam(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)

	if err != nil || id <= 0 {
		RespondBadRequest(ctx, "Invalid contact id", nil)
		return 0, false
	}

	return id, true
}

func (h *ContactsHandler) CreateContact(ctx *gin.Context) {
	var req contact.CreateContactRequest

	if !BindJSON(ctx, &req) {
		return
	}

	created, err := h.repo.Create(ctx.Request.Context(), req)

	if err != nil {
		RespondInternal(ctx, "Could not create contact")
		return
	}

	h.enqueueVerificationEmail(ctx, created)
	h.invalidateBirthdayCache()

	ctx.JSON(http.StatusCreated, created)
}

func (h *ContactsHandler) ListContacts(ctx *gin.Context) {
	filter := contact.ListFilter{}

	if q := ctx.Query("query"); q != "" {
		filter.Query = &q
	}

	contacts, err := h.repo.List(ctx.Request.Context(), filter)

	if err != nil {
		RespondInternal(ctx, "Could not list contacts")

		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": contacts,
		"count": len(contacts),
	})
}

func (h *ContactsHandler) GetContactById(ctx *gin.Context) {
	id, ok := contactIDParam(ctx)

	if !ok {
		return
	}

	c, err := h.repo.GetByID(ctx.Request.Context(), id)

	if err != nil {
		if err == contact.ErrNotFound {
			RespondNotFound(ctx, "Contact not found")
			return
		}
		RespondInternal(ctx, "Could not fetch contact")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, c)
}

func (h *ContactsHandler) UpdateContact(ctx *gin.Context) {
	id, ok := contactIDParam(ctx)

	if !ok {
		return
	}

	var req contact.UpdateContactRequest

	if !BindJSON(ctx, &req) {
		return
	}

	updated, err := h.repo.Update(ctx.Request.Context(), id, req)

	if err != nil {
		if err == contact.ErrNotFound {
			RespondNotFound(ctx, "Contact not found")
			return
		}

		RespondInternal(ctx, "Could not update contact")
		return
	}

	h.invalidateBirthdayCache()

	ctx.JSON(http.StatusOK, updated)
}

func (h *ContactsHandler) DeleteContact(ctx *gin.Context) {
	id, ok := contactIDParam(ctx)

	if !ok {
		return
	}

	err := h.repo.Delete(ctx.Request.Context(), id)

	if err != nil {
		if err == contact.ErrNotFound {
			RespondNotFound(ctx, "Contact not found")
			return
		}

		RespondInternal(ctx, "Could not delete contact")
		return
	}

	h.invalidateBirthdayCache()

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Contact deleted successfully",
	})
}

func (h *ContactsHandler) UpcomingBirthdays(ctx *gin.Context) {
	today := time.Now().UTC()
	cacheKey := "contacts:birthday:" + today.Format("2006-01-02")

	if h.cache != nil {
		if v, ok := h.cache.Get(cacheKey); ok {
			if cached, ok := v.([]contact.Contact); ok {
				RespondJSONWithETag(ctx, http.StatusOK, gin.H{
					"items": cached,
					"count": len(cached),
				})
				return
			}
		}
	}

	keys := contact.BirthdayWindow(today, birthdayWindowDays)

	contacts, err := h.repo.UpcomingBirthdays(ctx.Request.Context(), keys)

	if err != nil {
		RespondInternal(ctx, "Could not list upcoming birthdays")
		return
	}

	if h.cache != nil {
		h.cache.Set(cacheKey, contacts)
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"items": contacts,
		"count": len(contacts),
	})
}

// enqueueVerificationEmail is best-effort: a queue hiccup must not fail
// the create that already committed.
func (h *ContactsHandler) enqueueVerificationEmail(ctx *gin.Context, c contact.Contact) {
	if h.enqueuer == nil {
		return
	}

	payload, err := jobs.EncodePayload(jobs.JobSendVerificationEmail, jobs.VerificationEmailPayload{
		ContactID:   c.ID,
		FirstName:   c.FirstName,
		Email:       c.Email,
		RequestedAt: time.Now().UTC(),
		RequestID:   requestIDFrom(ctx),
	})

	if err != nil {
		h.log.Error("encode verification email payload", "contact_id", c.ID, "err", err)
		return
	}

	j, err := jobs.NewJob(jobs.JobSendVerificationEmail, payload, time.Time{})

	if err != nil {
		h.log.Error("build verification email job", "contact_id", c.ID, "err", err)
		return
	}

	if err := h.enqueuer.Create(ctx.Request.Context(), j); err != nil {
		h.log.Error("enqueue verification email", "contact_id", c.ID, "err", err)
	}
}

func (h *ContactsHandler) invalidateBirthdayCache() {
	if h.cache != nil {
		h.cache.Clear()
	}
}
