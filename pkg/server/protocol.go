package server

import (
	_ "embed"
	"encoding/json"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/matzehuels/plotmap/pkg/core/parcel"
	"github.com/matzehuels/plotmap/pkg/engine"
	perrors "github.com/matzehuels/plotmap/pkg/errors"
)

// maxEventBytes bounds one inbound event, on the WebSocket and over REST.
const maxEventBytes = 4 << 10

const eventSchemaURL = "https://plotmap.dev/schema/event.schema.json"

//go:embed event.schema.json
var eventSchemaJSON string

var eventSchema = mustCompileEventSchema()

func compileEventSchema() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(eventSchemaURL, strings.NewReader(eventSchemaJSON)); err != nil {
		return nil, err
	}
	return c.Compile(eventSchemaURL)
}

func mustCompileEventSchema() *jsonschema.Schema {
	s, err := compileEventSchema()
	if err != nil {
		panic("server: compile event schema: " + err.Error())
	}
	return s
}

// EventSchema returns the JSON schema inbound events are validated against.
func EventSchema() []byte { return []byte(eventSchemaJSON) }

// ParseEvent validates raw event JSON and decodes it.
func ParseEvent(data []byte) (engine.Event, error) {
	if len(data) > maxEventBytes {
		return engine.Event{}, perrors.New(perrors.ErrCodeInvalidEvent, "event too large (%d bytes)", len(data))
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return engine.Event{}, perrors.Wrap(perrors.ErrCodeInvalidEvent, err, "malformed event")
	}
	if err := eventSchema.Validate(raw); err != nil {
		return engine.Event{}, perrors.Wrap(perrors.ErrCodeInvalidEvent, err, "event does not match schema")
	}
	var ev engine.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return engine.Event{}, perrors.Wrap(perrors.ErrCodeInvalidEvent, err, "decode event")
	}
	return ev, nil
}

// MessageType names an outbound message.
type MessageType string

const (
	MsgSnapshot MessageType = "snapshot"
	MsgStatus   MessageType = "status"
	MsgError    MessageType = "error"
	MsgClosed   MessageType = "closed"
)

// Message is one frame sent to a subscriber.
type Message struct {
	Type     MessageType      `json:"type"`
	Snapshot *engine.Snapshot `json:"snapshot,omitempty"`
	Status   *StatusDiff      `json:"status,omitempty"`
	Error    *ErrorBody       `json:"error,omitempty"`
	Reason   string           `json:"reason,omitempty"`
}

// StatusDiff carries the displayed status changes of one animation tick.
type StatusDiff struct {
	Generation uint64         `json:"generation"`
	Changes    []StatusChange `json:"changes"`
	Animating  bool           `json:"animating"`
}

// StatusChange is one parcel's new displayed status.
type StatusChange struct {
	ID     int           `json:"id"`
	Status parcel.Status `json:"status"`
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Code    perrors.Code `json:"code"`
	Message string       `json:"message"`
}

func errorBody(err error) *ErrorBody {
	code := perrors.GetCode(err)
	if code == "" {
		code = perrors.ErrCodeInternal
	}
	return &ErrorBody{Code: code, Message: perrors.UserMessage(err)}
}

func snapshotMessage(snap engine.Snapshot) Message {
	return Message{Type: MsgSnapshot, Snapshot: &snap}
}

func errorMessage(err error) Message {
	return Message{Type: MsgError, Error: errorBody(err)}
}
