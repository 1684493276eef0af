// Package mail abstracts outbound email. Delivery is an external
// collaborator: the core only calls the interface, and failures are
// best-effort by contract, never part of a database transaction.
package mail

import (
	"context"

	"go.uber.org/zap"
)

// Mailer sends transactional mail.
type Mailer interface {
	SendWelcome(ctx context.Context, to, name string) error
}

// LogMailer records outbound mail in the log instead of delivering it.
// Used when no SMTP relay is configured.
type LogMailer struct{}

// NewLogMailer creates a LogMailer.
func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (m *LogMailer) SendWelcome(_ context.Context, to, name string) error {
	zap.L().Info("welcome mail (not delivered, no relay configured)",
		zap.String("to", to),
		zap.String("name", name),
	)
	return nil
}
