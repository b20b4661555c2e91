package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"jobportal/internal/config"
	"jobportal/internal/models"

	"gopkg.in/gomail.v2"
)

// Dialer is satisfied by *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type Mailer struct {
	from   string
	dialer Dialer
}

func New(cfg config.Mail) *Mailer {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}

	return &Mailer{
		from:   from,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func NewWithDialer(from string, d Dialer) *Mailer {
	return &Mailer{from: from, dialer: d}
}

// SendMessage renders msg and delivers it synchronously over SMTP.
func (m *Mailer) SendMessage(ctx context.Context, msg models.Message) error {
	const op = "mailer.SendMessage"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	mail, err := m.compose(msg)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := m.dialer.DialAndSend(mail); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

var resetTmpl = template.Must(template.New("reset").Parse(`<h1>Password reset</h1>
<p>Hi {{.Name}},</p>
<p>You requested a password reset. Follow the link below to choose a new password:</p>
<p><a href="{{.Link}}">Reset password</a></p>
<p>The link is valid for a short time and can be used once. If you did not request this, ignore this email.</p>`))

var genericTmpl = template.Must(template.New("generic").Parse(`<p>Hi {{.Name}},</p>
{{if .Link}}<p><a href="{{.Link}}">{{.Link}}</a></p>{{end}}`))

func (m *Mailer) compose(msg models.Message) (*gomail.Message, error) {
	if msg.Email == "" {
		return nil, fmt.Errorf("message has no recipient")
	}

	subject, body, err := renderBody(msg)
	if err != nil {
		return nil, err
	}

	mail := gomail.NewMessage()
	mail.SetHeader("From", m.from)
	mail.SetHeader("To", msg.Email)
	mail.SetHeader("Subject", subject)
	mail.SetBody("text/html", body)

	return mail, nil
}

func renderBody(msg models.Message) (subject, body string, err error) {
	subject = msg.Subject
	tmpl := genericTmpl

	if msg.Purpose == models.PurposePasswordReset {
		tmpl = resetTmpl
		if subject == "" {
			subject = "Reset your password"
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, msg); err != nil {
		return "", "", err
	}

	return subject, buf.String(), nil
}
