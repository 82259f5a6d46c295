package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/taskmanager/taskmanager-api/internal/config"
	mail "gopkg.in/mail.v2"
)

// AccountEmail carries what the account mails need to address the user and
// build the link back to the front end.
type AccountEmail struct {
	Name  string
	Email string
	Token string
}

// Mailer sends account lifecycle mails.
type Mailer interface {
	SendConfirmation(ctx context.Context, msg AccountEmail) error
	SendPasswordReset(ctx context.Context, msg AccountEmail) error
}

// SMTPMailer delivers mail through an SMTP relay.
type SMTPMailer struct {
	dialer      *mail.Dialer
	from        string
	frontendURL string
}

// NewSMTPMailer creates an SMTPMailer. Links in mails point at frontendURL.
func NewSMTPMailer(cfg config.MailConfig, frontendURL string) *SMTPMailer {
	dialer := mail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	dialer.Timeout = 10 * time.Second

	return &SMTPMailer{
		dialer:      dialer,
		from:        cfg.From,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// SendConfirmation sends the link that confirms a new account.
func (m *SMTPMailer) SendConfirmation(ctx context.Context, msg AccountEmail) error {
	content, err := renderConfirmation(m.frontendURL, msg)
	if err != nil {
		return err
	}
	return m.send(ctx, msg.Email, content)
}

// SendPasswordReset sends the link that opens the new password form.
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, msg AccountEmail) error {
	content, err := renderPasswordReset(m.frontendURL, msg)
	if err != nil {
		return err
	}
	return m.send(ctx, msg.Email, content)
}

func (m *SMTPMailer) send(ctx context.Context, to string, content rendered) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	message := mail.NewMessage()
	message.SetHeader("From", m.from)
	message.SetHeader("To", to)
	message.SetHeader("Subject", content.Subject)
	message.SetBody("text/plain", content.Text)
	message.AddAlternative("text/html", content.HTML)

	if err := m.dialer.DialAndSend(message); err != nil {
		return fmt.Errorf("failed to send %q to %s: %w", content.Subject, to, err)
	}
	return nil
}

type rendered struct {
	Subject string
	Text    string
	HTML    string
}

var accountTemplate = template.Must(template.New("account").Parse(`<p>Hi {{.Name}},</p>
<p>{{.Lead}}</p>
<p><a href="{{.Link}}">{{.Action}}</a></p>
<p>If you did not request this, you can ignore this message.</p>
`))

type templateData struct {
	Name   string
	Lead   string
	Link   string
	Action string
}

func renderConfirmation(frontendURL string, msg AccountEmail) (rendered, error) {
	link := frontendURL + "/confirm-account/" + msg.Token
	return render("TaskManager - Confirm your account", link, templateData{
		Name:   msg.Name,
		Lead:   "Your account is almost ready, confirm it with the link below.",
		Link:   link,
		Action: "Confirm account",
	})
}

func renderPasswordReset(frontendURL string, msg AccountEmail) (rendered, error) {
	link := frontendURL + "/password-reset/" + msg.Token
	return render("TaskManager - Reset your password", link, templateData{
		Name:   msg.Name,
		Lead:   "You asked to reset your password. Follow the link below to choose a new one.",
		Link:   link,
		Action: "Reset password",
	})
}

func render(subject, link string, data templateData) (rendered, error) {
	var buf bytes.Buffer
	if err := accountTemplate.Execute(&buf, data); err != nil {
		return rendered{}, fmt.Errorf("failed to render mail: %w", err)
	}

	return rendered{
		Subject: subject,
		Text:    fmt.Sprintf("Hi %s,\n\n%s\n\n%s\n", data.Name, data.Lead, link),
		HTML:    buf.String(),
	}, nil
}
