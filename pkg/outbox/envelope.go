package outbox

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const currentPayloadVersion = 1

var (
	errEnvelopeVersion = errors.New("envelope version must be positive")
	errEnvelopeEventID = errors.New("envelope event id is missing")
	errEnvelopeData    = errors.New("envelope data is empty")
)

// ActorRef identifies who caused the event. Nil for system transitions.
type ActorRef struct {
	UserID uuid.UUID `json:"userId"`
	Role   string    `json:"role,omitempty"`
}

// PayloadEnvelope is the JSON document stored in outbox_events.payload and
// published verbatim to the broker.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// newEnvelope stamps event with an id, version and timestamp and encodes its data.
func newEnvelope(event DomainEvent) (PayloadEnvelope, error) {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return PayloadEnvelope{}, fmt.Errorf("encode %s data: %w", event.EventType, err)
	}
	env := PayloadEnvelope{
		Version:    event.Version,
		EventID:    uuid.NewString(),
		OccurredAt: event.OccurredAt.UTC(),
		Actor:      event.Actor,
		Data:       data,
	}
	if env.Version == 0 {
		env.Version = currentPayloadVersion
	}
	if event.OccurredAt.IsZero() {
		env.OccurredAt = time.Now().UTC()
	}
	return env, env.validate()
}

// DecodeEnvelope parses a stored payload and rejects envelopes that could
// never be delivered.
func DecodeEnvelope(raw []byte) (PayloadEnvelope, error) {
	var env PayloadEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return PayloadEnvelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, env.validate()
}

func (e PayloadEnvelope) validate() error {
	switch {
	case e.Version <= 0:
		return errEnvelopeVersion
	case e.EventID == "":
		return errEnvelopeEventID
	}
	data := bytes.TrimSpace(e.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return errEnvelopeData
	}
	return nil
}
