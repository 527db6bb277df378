package netsync

import (
	"encoding/json"
	"fmt"

	"github.com/udisondev/skirmish/internal/model"
)

// Message types on the wire.
const (
	TypeJoin      = "join"       // client → server, first message
	TypeAbility   = "ability"    // client → server
	TypeSetClass  = "set_class"  // client → server
	TypeJoined    = "joined"     // server → client
	TypeIDMapping = "id_mapping" // server → client
	TypeReject    = "reject"     // server → client
)

// Envelope frames every websocket message.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope encodes payload under typ.
func NewEnvelope(typ string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encoding %s payload: %w", typ, err)
	}
	return Envelope{Type: typ, Payload: raw}, nil
}

// Decode unmarshals the payload into v.
func (e Envelope) Decode(v any) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("%s: empty payload: %w", e.Type, ErrMalformedRequest)
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("%s: %w: %w", e.Type, ErrMalformedRequest, err)
	}
	return nil
}

// JoinRequest asks the server for an actor.
type JoinRequest struct {
	Player string `json:"player"`
}

// Joined tells the client which actor it controls.
type Joined struct {
	Actor model.EntityID `json:"actor"`
	Class string         `json:"class,omitempty"`
}

// AbilityRequest asks the authority to cast an ability.
// PredictedIDs are the ids the client already used for the objects it
// spawned locally; the authority answers with an IDMapping for each.
type AbilityRequest struct {
	Seq          uint64           `json:"seq"`
	Actor        model.EntityID   `json:"actor"`
	Ability      string           `json:"ability"`
	Direction    model.Vec2       `json:"direction"`
	PredictedIDs []model.EntityID `json:"predicted_ids,omitempty"`
}

// SetClassRequest asks for a class swap.
type SetClassRequest struct {
	Class string `json:"class"`
}

// IDMapping links a client-predicted object to the authoritative one.
type IDMapping struct {
	Seq           uint64         `json:"seq,omitempty"`
	Predicted     model.EntityID `json:"predicted"`
	Authoritative model.EntityID `json:"authoritative"`
}

// Reject tells the client a request was refused and changed nothing.
type Reject struct {
	Seq    uint64 `json:"seq,omitempty"`
	Reason string `json:"reason"`
}
