package notify

import (
	"fmt"

	"github.com/nikoksr/notify"
	"github.com/nikoksr/notify/service/mail"
)

type MailConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	Recipients []string
}

func (c MailConfig) Configured() bool {
	return c.Host != "" && len(c.Recipients) > 0
}

// NewMailService builds an SMTP notify service, or nil when mail is not
// configured.
func NewMailService(cfg MailConfig) notify.Notifier {
	if !cfg.Configured() {
		return nil
	}
	svc := mail.New(cfg.User, fmt.Sprintf("%s:%d", cfg.Host, cfg.Port))
	if cfg.User != "" {
		svc.AuthenticateSMTP("", cfg.User, cfg.Password, cfg.Host)
	}
	svc.AddReceivers(cfg.Recipients...)
	return svc
}
