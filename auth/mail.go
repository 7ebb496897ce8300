package auth

import (
	"bytes"
	"html/template"
	"log"
	"os"

	"wayfare/mailer"
)

// Mail is the sink for the signup confirmation; main swaps in the SMTP
// mailer when one is configured.
var Mail mailer.Mailer = mailer.LogMailer{}

var signupTmpl = template.Must(template.New("signup").Parse(`<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <h2>Welcome aboard!</h2>
  <p>Your registration has been confirmed! Go to <a href="{{.URL}}">{{.URL}}</a> to complete your profile!</p>
</body>
</html>`))

// sendSignupConfirmation mails the new traveler. Registration already
// succeeded at this point, so failures only get logged.
func sendSignupConfirmation(email string) {
	base := os.Getenv("PUBLIC_BASE_URL")
	if base == "" {
		base = "http://localhost:8080"
	}

	var buf bytes.Buffer
	if err := signupTmpl.Execute(&buf, map[string]any{"URL": base + "/profile"}); err != nil {
		log.Printf("[auth] signup mail render: %v", err)
		return
	}
	if err := Mail.Send(email, "Signup confirmation!", buf.String()); err != nil {
		log.Printf("[auth] signup mail to %s: %v", email, err)
	}
}
