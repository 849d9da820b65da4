package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// Conn is the part of a NATS connection the alerter uses.
type Conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
}

// Message is the payload published for an alert.
type Message struct {
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}

// NATSAlerter publishes alerts to a NATS subject.
type NATSAlerter struct {
	conn    Conn
	nc      *nats.Conn
	subject string
}

// NewNATSAlerter connects to the configured server.
func NewNATSAlerter(cfg NATSConfig) (*NATSAlerter, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name("trendlake-alert"),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	a := NewNATSAlerterWithConn(nc, cfg.Subject)
	a.nc = nc
	return a, nil
}

// NewNATSAlerterWithConn publishes through an existing connection.
func NewNATSAlerterWithConn(conn Conn, subject string) *NATSAlerter {
	if subject == "" {
		subject = "trendlake.alerts"
	}
	return &NATSAlerter{conn: conn, subject: subject}
}

// Notify publishes the alert and waits for the server to acknowledge the flush.
func (a *NATSAlerter) Notify(ctx context.Context, subject, body string) error {
	data, err := json.Marshal(Message{
		Subject:   subject,
		Body:      body,
		Timestamp: time.Now().UTC(),
		Source:    "trendlake",
	})
	if err != nil {
		return err
	}
	if err := a.conn.Publish(a.subject, data); err != nil {
		return fmt.Errorf("failed to publish alert: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := a.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush alert: %w", err)
	}
	return nil
}

// Close closes the NATS connection
func (a *NATSAlerter) Close() {
	if a.nc != nil {
		a.nc.Close()
	}
}
