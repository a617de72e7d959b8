package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

const (
	SubjectVerifyEmail       = "Sign-up Verification API - Verify Email"
	SubjectAlreadyRegistered = "Sign-up Verification API - Email Already Registered"
	SubjectResetPassword     = "Sign-up Verification API - Reset Password"
)

// Message is a rendered email ready for a Sender.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

var templates = template.Must(template.New("mail").Parse(`
{{define "verify"}}<h4>Verify Email</h4>
<p>Thanks for registering!</p>
{{if .Link}}<p>Please click the below link to verify your email address:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
{{else}}<p>Please use the below token to verify your email address with the <code>/account/verify-email</code> api route:</p>
<p><code>{{.Token}}</code></p>
{{end}}{{end}}

{{define "already-registered"}}<h4>Email Already Registered</h4>
<p>Your email <strong>{{.Email}}</strong> is already registered.</p>
{{if .Link}}<p>If you don't know your password please visit the <a href="{{.Link}}">forgot password</a> page.</p>
{{else}}<p>If you don't know your password you can reset it via the <code>/account/forgot-password</code> api route.</p>
{{end}}{{end}}

{{define "reset"}}<h4>Reset Password Email</h4>
{{if .Link}}<p>Please click the below link to reset your password, the link will be valid for 1 day:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
{{else}}<p>Please use the below token to reset your password with the <code>/account/reset-password</code> api route:</p>
<p><code>{{.Token}}</code></p>
{{end}}{{end}}
`))

type templateData struct {
	Email string
	Token string
	Link  string
}

func render(name, to, subject string, data templateData) (Message, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return Message{}, fmt.Errorf("notify: render %s: %w", name, err)
	}
	return Message{To: to, Subject: subject, HTML: buf.String()}, nil
}

// VerificationMessage links to origin when known and otherwise quotes the
// raw token for API clients.
func VerificationMessage(to, token, origin string) (Message, error) {
	data := templateData{Token: token}
	if origin != "" {
		data.Link = origin + "/account/verify-email?token=" + token
	}
	return render("verify", to, SubjectVerifyEmail, data)
}

func AlreadyRegisteredMessage(to, origin string) (Message, error) {
	data := templateData{Email: to}
	if origin != "" {
		data.Link = origin + "/account/forgot-password"
	}
	return render("already-registered", to, SubjectAlreadyRegistered, data)
}

func PasswordResetMessage(to, token, origin string) (Message, error) {
	data := templateData{Token: token}
	if origin != "" {
		data.Link = origin + "/account/reset-password?token=" + token
	}
	return render("reset", to, SubjectResetPassword, data)
}
