package mail

import (
	"crypto/tls"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	"portal/internal/config"
)

// commandTimeout bounds each SMTP exchange so a dead mail server cannot
// stall a login request indefinitely.
const commandTimeout = 10 * time.Second

// Sender delivers one-time passcodes to clients.
type Sender interface {
	SendOTP(recipient, code string) error
}

// SMTPSender sends OTP mail through a configured SMTP server. When the mail
// credentials are absent it logs the code instead, matching local development
// usage where no mail server is available.
type SMTPSender struct {
	host     string
	port     int
	useTLS   bool
	username string
	password string
	sender   string
}

// NewSMTPSender creates a sender from the mail section of the config.
func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{
		host:     cfg.MailServer,
		port:     cfg.MailPort,
		useTLS:   cfg.MailUseTLS,
		username: cfg.MailUsername,
		password: cfg.MailPassword,
		sender:   cfg.MailSender,
	}
}

// SendOTP delivers the passcode to the recipient.
func (s *SMTPSender) SendOTP(recipient, code string) error {
	if s.username == "" || s.password == "" || s.sender == "" {
		log.Printf("[DEV] OTP for %s: %s", recipient, code)
		return nil
	}

	body := fmt.Sprintf("Your OTP is %s. It will expire in 5 minutes.", code)
	msg := strings.NewReader(
		fmt.Sprintf("To: %s\r\nFrom: %s\r\nSubject: Your OTP for Report Portal\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n",
			recipient, s.sender, body))

	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	var (
		c   *smtp.Client
		err error
	)
	if s.useTLS {
		c, err = smtp.DialStartTLS(addr, &tls.Config{ServerName: s.host})
	} else {
		c, err = smtp.Dial(addr)
	}
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	defer c.Close()
	c.CommandTimeout = commandTimeout

	auth := sasl.NewPlainClient("", s.username, s.password)
	if err := c.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}

	if err := c.SendMail(s.sender, []string{recipient}, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	return c.Quit()
}
