package channel

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Meta carries routing and correlation data for one message.
type Meta struct {
	ID            string    `json:"id"`
	CorrelationID *string   `json:"correlation_id,omitempty"`
	Time          time.Time `json:"time"`
	Type          string    `json:"type"`
}

// Envelope is the unit carried by every transport: a named message with an
// optional JSON payload.
type Envelope struct {
	Meta Meta            `json:"meta"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope wraps payload under name with a fresh message id. A nil
// payload produces an envelope without data.
func NewEnvelope(name string, payload interface{}) (Envelope, error) {
	env := Envelope{
		Meta: Meta{
			ID:   uuid.NewString(),
			Time: time.Now().UTC(),
			Type: name,
		},
	}
	if payload == nil {
		return env, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", name, err)
	}
	env.Data = data
	return env, nil
}

// Reply builds an envelope correlated with e.
func (e Envelope) Reply(name string, payload interface{}) (Envelope, error) {
	env, err := NewEnvelope(name, payload)
	if err != nil {
		return Envelope{}, err
	}
	id := e.Meta.ID
	env.Meta.CorrelationID = &id
	return env, nil
}

// Name returns the event or request name.
func (e Envelope) Name() string {
	return e.Meta.Type
}

// Correlation returns the correlation id, or "" when absent.
func (e Envelope) Correlation() string {
	if e.Meta.CorrelationID == nil {
		return ""
	}
	return *e.Meta.CorrelationID
}

// Decode unmarshals the payload into v. An envelope without data leaves v
// untouched.
func (e Envelope) Decode(v interface{}) error {
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Name(), err)
	}
	return nil
}
