package jobs

import "time"

type VerificationEmailPayload struct {
	ContactID   int64     `json:"contactId"`
	FirstName   string    `json:"firstName"`
	Email       string    `json:"email"`
	RequestedAt time.Time `json:"requestedAt"`
	RequestID   string    `json:"requestId,omitempty"`
}
