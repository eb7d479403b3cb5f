package notifications

import (
	"html/template"
	"strings"
)

var verificationEmailTmpl = template.Must(template.New("verification_email").Parse(`<!DOCTYPE html>
<html>
	<body>
		<div style="display: flex; align-items: center; justify-content: center; flex-direction: column">
			<h3>Account Verification</h3>
			<p>Thanks for choosing us, please click the button below to verify your account</p>
			<a style="margin-top: 1rem; padding: 1rem; border-radius: 0.5rem; font-size: 1rem; text-decoration: none; background: #0275d8; color: white;" href="{{.VerifyURL}}">
				Verify your email
			</a>
			<p>Please kindly ignore this email if you did not register with us and nothing will happen. Thanks</p>
		</div>
	</body>
</html>
`))

// VerificationEmailBody renders the HTML body with the verification link.
func VerificationEmailBody(name, verifyURL string) (string, error) {
	var sb strings.Builder

	err := verificationEmailTmpl.Execute(&sb, struct {
		Name      string
		VerifyURL string
	}{Name: name, VerifyURL: verifyURL})

	if err != nil {
		return "", err
	}

	return sb.String(), nil
}
