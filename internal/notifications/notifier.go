package notifications

import "context"

type SendVerificationEmailInput struct {
	Email     string
	Name      string
	ContactID int64
	VerifyURL string
}

type Notifier interface {
	SendVerificationEmail(ctx context.Context, input SendVerificationEmailInput) error
}
