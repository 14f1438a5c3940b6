package services

import (
	"crypto/tls"
	"fmt"
	"html"
	"mime"
	"net/smtp"
	"strings"

	"github.com/huangang/teamtask/internal/config"
	"github.com/huangang/teamtask/pkg/logger"
)

// InviteNotification is what the invitee is told about a new invite.
type InviteNotification struct {
	InviteID    string
	Email       string
	TeamName    string
	ProjectName string
	Role        string
}

// InviteNotifier delivers invite notifications. Delivery is best effort.
type InviteNotifier interface {
	NotifyInvite(n InviteNotification)
}

type MailService struct {
	cfg config.MailConfig
}

func NewMailService(cfg config.MailConfig) *MailService {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &MailService{cfg: cfg}
}

func (s *MailService) Enabled() bool {
	return s.cfg.Enabled && s.cfg.Host != ""
}

// NotifyInvite sends in the background and only logs failures.
func (s *MailService) NotifyInvite(n InviteNotification) {
	if !s.Enabled() {
		return
	}

	subject := fmt.Sprintf("[TeamTask] You have been invited to %s", n.TeamName)
	body := s.buildInviteBody(n)

	go func() {
		if err := s.sendEmail([]string{n.Email}, subject, body); err != nil {
			logger.Warn().Err(err).Str("invite_id", n.InviteID).Msg("invite email not delivered")
			return
		}
		logger.Info().Str("invite_id", n.InviteID).Msg("invite email sent")
	}()
}

func (s *MailService) buildInviteBody(n InviteNotification) string {
	var sb strings.Builder

	sb.WriteString("<html><body style=\"font-family: Arial, sans-serif;\">")
	sb.WriteString("<h2>Team invitation</h2>")
	sb.WriteString("<table style=\"border-collapse: collapse; margin-bottom: 20px;\">")

	rows := []struct{ label, value string }{
		{"Team", n.TeamName},
		{"Project", n.ProjectName},
		{"Role", n.Role},
	}
	for _, r := range rows {
		if r.value == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("<tr><td style=\"padding: 8px; border: 1px solid #ddd; font-weight: bold;\">%s</td><td style=\"padding: 8px; border: 1px solid #ddd;\">%s</td></tr>",
			r.label, html.EscapeString(r.value)))
	}
	sb.WriteString("</table>")

	if s.cfg.AppURL != "" {
		sb.WriteString(fmt.Sprintf("<p><a href=\"%s\">Open TeamTask to accept or decline</a></p>", html.EscapeString(s.cfg.AppURL)))
	}

	sb.WriteString("<hr><p style=\"color: #888; font-size: 12px;\">Sent by TeamTask</p>")
	sb.WriteString("</body></html>")

	return sb.String()
}

func (s *MailService) sendEmail(to []string, subject, body string) error {
	from := s.cfg.From
	if from == "" {
		from = s.cfg.Username
	}

	message := buildMessage(from, to, subject, body)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.Username != "" && s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	var err error
	if s.cfg.UseTLS {
		err = s.sendEmailTLS(addr, auth, from, to, message)
	} else {
		err = smtp.SendMail(addr, auth, from, to, []byte(message))
	}
	return err
}

var headerBreaks = strings.NewReplacer("\r", " ", "\n", " ")

// buildMessage renders the headers and body. Header values never carry line
// breaks, and the subject is Q-encoded since it holds user-chosen names.
func buildMessage(from string, to []string, subject, body string) string {
	headers := [][2]string{
		{"From", headerBreaks.Replace(from)},
		{"To", headerBreaks.Replace(strings.Join(to, ","))},
		{"Subject", mime.QEncoding.Encode("utf-8", headerBreaks.Replace(subject))},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var message strings.Builder
	for _, h := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", h[0], h[1]))
	}
	message.WriteString("\r\n")
	message.WriteString(body)
	return message.String()
}

func (s *MailService) sendEmailTLS(addr string, auth smtp.Auth, from string, to []string, message string) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.cfg.Host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(message)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
