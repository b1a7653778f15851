// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"html/template"
)

// WaitlistSignupEmailData is the admin notification for a new signup.
type WaitlistSignupEmailData struct {
	AppName  string
	Email    string
	AdminURL string
}

// WaitlistSignupEmail renders the plain text and HTML bodies.
func WaitlistSignupEmail(data WaitlistSignupEmailData) (subject, textBody, htmlBody string) {
	subject = "New " + data.AppName + " waitlist signup: " + data.Email
	textBody = data.Email + " just joined the " + data.AppName + " waitlist.\n\n" +
		"Review pending users in the admin console:\n\n" + data.AdminURL
	return subject, textBody, render(signupTmpl, data)
}

// AccessGrantedEmailData is the notice sent when an account becomes active.
type AccessGrantedEmailData struct {
	AppName   string
	SignInURL string
}

// AccessGrantedEmail renders the plain text and HTML bodies.
func AccessGrantedEmail(data AccessGrantedEmailData) (subject, textBody, htmlBody string) {
	subject = "Your " + data.AppName + " access is ready"
	textBody = "Good news! Your " + data.AppName + " account is now active.\n\n" +
		"Sign in here:\n\n" + data.SignInURL
	return subject, textBody, render(grantedTmpl, data)
}

func render(t *template.Template, data any) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return ""
	}
	return buf.String()
}

var signupTmpl = template.Must(template.New("signup").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #1f2937;">
  <p><strong>{{.Email}}</strong> just joined the {{.AppName}} waitlist.</p>
  <p><a href="{{.AdminURL}}">Open the admin console</a> to review pending users.</p>
</body>
</html>`))

var grantedTmpl = template.Must(template.New("granted").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #1f2937;">
  <p>Good news! Your {{.AppName}} account is now active.</p>
  <p><a href="{{.SignInURL}}">Sign in to {{.AppName}}</a></p>
</body>
</html>`))
