// Package alert delivers run failure notifications.
package alert

import (
	"context"
	"errors"
	"log/slog"
)

// Alerter sends a human-readable failure notification.
type Alerter interface {
	Notify(ctx context.Context, subject, body string) error
}

// LogAlerter writes alerts to the log.
type LogAlerter struct {
	log *slog.Logger
}

// NewLogAlerter creates an alerter on log.
func NewLogAlerter(log *slog.Logger) *LogAlerter {
	if log == nil {
		log = slog.Default()
	}
	return &LogAlerter{log: log.With("component", "alert")}
}

func (a *LogAlerter) Notify(ctx context.Context, subject, body string) error {
	a.log.Error("ALERT", "subject", subject, "body", body)
	return nil
}

// Multi fans an alert out to every alerter and joins their errors.
type Multi []Alerter

func (m Multi) Notify(ctx context.Context, subject, body string) error {
	var errs []error
	for _, a := range m {
		if err := a.Notify(ctx, subject, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
