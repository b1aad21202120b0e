package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// Subjects published by the access service
const (
	SubjectAccessGranted    = "hospital.guest_pass.access_granted"
	SubjectAccessDenied     = "hospital.guest_pass.access_denied"
	SubjectSessionCompleted = "hospital.guest_pass.session_completed"
)

// AccessEvent is published after every verification verdict
type AccessEvent struct {
	HospitalID  uuid.UUID  `json:"hospital_id"`
	GuestPassID uuid.UUID  `json:"guest_pass_id"`
	SessionID   uuid.UUID  `json:"session_id"`
	Direction   string     `json:"direction,omitempty"` // entry, exit
	Reason      string     `json:"reason"`
	DenialCode  string     `json:"denial_code,omitempty"`
	VerifiedBy  *uuid.UUID `json:"verified_by,omitempty"`
	OccurredAt  time.Time  `json:"occurred_at"`
}

// CompletionEvent is published after a bulk completion
type CompletionEvent struct {
	HospitalID  uuid.UUID  `json:"hospital_id"`
	GuestPassID *uuid.UUID `json:"guest_pass_id,omitempty"`
	SessionID   *uuid.UUID `json:"session_id,omitempty"`
	CheckedOut  int64      `json:"checked_out"`
	Completed   int64      `json:"completed"`
	OccurredAt  time.Time  `json:"occurred_at"`
}

// Publisher sends domain events to interested displays and integrations
type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

// NATSPublisher publishes JSON events over NATS
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to the NATS server at url
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("hospital-visitor-access"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

// Publish marshals data and publishes it on subject
func (n *NATSPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	log.Debug().Str("subject", subject).RawJSON("data", payload).Msg("Publishing event")

	if err := n.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Close drains and closes the connection
func (n *NATSPublisher) Close() error {
	return n.conn.Drain()
}

// NoopPublisher discards events; used when NATS is not configured
type NoopPublisher struct{}

// Publish does nothing
func (NoopPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	return nil
}

// Close does nothing
func (NoopPublisher) Close() error {
	return nil
}
