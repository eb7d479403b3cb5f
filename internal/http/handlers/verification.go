package handlers

import (
	"bytes"
	"context"
	"html/template"
	"net/http"

	"github.com/contactly/contacthub/internal/auth"
	"github.com/contactly/contacthub/internal/domain/contact"
	"github.com/gin-gonic/gin"
)

type VerificationTokenVerifier interface {
	VerifyVerificationToken(tokenStr string) (*auth.Claims, error)
}

type ContactVerifier interface {
	MarkVerified(ctx context.Context, id int64) (contact.Contact, error)
}

var verifiedPageTmpl = template.Must(template.New("verified").Parse(`<!DOCTYPE html>
<html>
<head>
  <title>Email Verified</title>
  <style>
    body { font-family: Arial, sans-serif; background-color: #f4f4f4; text-align: center; padding-top: 10%; }
    .card { background: white; display: inline-block; padding: 40px 60px; border-radius: 8px; box-shadow: 0 2px 8px rgba(0,0,0,0.1); }
    h1 { color: #2e7d32; }
    p { color: #555; }
  </style>
</head>
<body>
  <div class="card">
    <h1>Email Verified</h1>
    <p>Thank you, {{.Name}}. Your email address has been confirmed.</p>
  </div>
</body>
</html>
`))

type VerificationHandler struct {
	tokens   VerificationTokenVerifier
	contacts ContactVerifier
}

func NewVerificationHandler(tokens VerificationTokenVerifier, contacts ContactVerifier) *VerificationHandler {
	return &VerificationHandler{tokens: tokens, contacts: contacts}
}

// Verify handles the link sent in the verification email. Anything
// wrong with the token or the contact state answers with the same 401
// so the endpoint does not leak which contacts exist.
func (h *VerificationHandler) Verify(ctx *gin.Context) {
	tokenStr := ctx.Query("token")

	if tokenStr == "" {
		RespondUnAuthorized(ctx, "invalid_token", "Invalid verification token")
		return
	}

	claims, err := h.tokens.VerifyVerificationToken(tokenStr)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_token", "Invalid verification token")
		return
	}

	verified, err := h.contacts.MarkVerified(ctx.Request.Context(), claims.ID)

	if err != nil {
		// unknown contact and already-verified both land here
		RespondUnAuthorized(ctx, "invalid_token", "Invalid verification token")
		return
	}

	var buf bytes.Buffer

	if err := verifiedPageTmpl.Execute(&buf, map[string]string{"Name": verified.FirstName}); err != nil {
		RespondInternal(ctx, "Could not render confirmation page")
		return
	}

	ctx.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
