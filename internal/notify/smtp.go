package notify

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/sidharth07/verbiforge-sub000/internal/config"
)

var templates = template.Must(template.New("mail").Parse(`
{{define "project_created.subject"}}Your quote {{.project_id}} is ready{{end}}
{{define "project_created.body"}}Hello,

your project "{{.project_name}}" ({{.project_id}}) has been quoted at {{.total}}.
Submit it from your dashboard when you are ready to start.
{{end}}
{{define "project_submitted.subject"}}Project {{.project_id}} submitted{{end}}
{{define "project_submitted.body"}}Project "{{.project_name}}" ({{.project_id}}) was submitted by {{.owner_email}}.
Units: {{.unit_count}}. Total: {{.total}}.
{{end}}
{{define "project_completed.subject"}}Your translation {{.project_id}} is ready for download{{end}}
{{define "project_completed.body"}}Hello,

the translation for "{{.project_name}}" ({{.project_id}}) is complete and ready for download.
{{end}}
{{define "contact_received.subject"}}New contact request from {{.name}}{{end}}
{{define "contact_received.body"}}From: {{.name}} <{{.email}}>

{{.message}}
{{end}}
`))

// headerLine keeps a rendered value on a single header line.
var headerLine = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier sends plain-text mail through an SMTP relay.
type SMTPNotifier struct {
	addr     string
	auth     smtp.Auth
	from     string
	operator string
	send     sendFunc
	now      func() time.Time
}

func NewSMTPNotifier(cfg config.MailConfig) *SMTPNotifier {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPNotifier{
		addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		auth:     auth,
		from:     cfg.From,
		operator: cfg.OperatorEmail,
		send:     smtp.SendMail,
		now:      time.Now,
	}
}

func (n *SMTPNotifier) Notify(ctx context.Context, event Event) Result {
	if err := ctx.Err(); err != nil {
		return Failed(err)
	}
	to := event.Recipient
	if to == "" {
		to = n.operator
	}
	msg, err := n.render(to, event)
	if err != nil {
		return Failed(err)
	}
	if err := n.send(n.addr, n.auth, n.from, []string{to}, msg); err != nil {
		return Failed(fmt.Errorf("send %s mail: %w", event.Kind, err))
	}
	return Delivered()
}

func (n *SMTPNotifier) render(to string, event Event) ([]byte, error) {
	var subject, body bytes.Buffer
	if err := templates.ExecuteTemplate(&subject, string(event.Kind)+".subject", event.Data); err != nil {
		return nil, fmt.Errorf("render %s mail: %w", event.Kind, err)
	}
	if err := templates.ExecuteTemplate(&body, string(event.Kind)+".body", event.Data); err != nil {
		return nil, fmt.Errorf("render %s mail: %w", event.Kind, err)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", n.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", strings.TrimSpace(headerLine.Replace(subject.String())))
	fmt.Fprintf(&msg, "Date: %s\r\n", n.now().UTC().Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	msg.WriteString(strings.ReplaceAll(body.String(), "\n", "\r\n"))
	return msg.Bytes(), nil
}
