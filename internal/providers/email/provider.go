// Package email delivers guardian-facing notifications.
package email

import (
	"context"

	"go.uber.org/zap"
)

type Provider interface {
	Send(ctx context.Context, to []string, subject string, body string) error
}

// LogProvider records the send without delivering anything. The default
// until an SMTP relay is configured.
type LogProvider struct {
	log *zap.Logger
}

func NewLog(log *zap.Logger) *LogProvider {
	return &LogProvider{log: log.Named("email.log")}
}

func (p *LogProvider) Send(ctx context.Context, to []string, subject string, body string) error {
	p.log.Info("email suppressed, delivery disabled",
		zap.Strings("to", to),
		zap.String("subject", subject),
	)
	return nil
}
