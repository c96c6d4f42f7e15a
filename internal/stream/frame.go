package stream

import (
	"encoding/json"
	"fmt"

	"github.com/groundctl/groundctl/internal/telemetry"
)

// Frame types sent by the backend on the live endpoint.
const (
	FrameInitial = "initial"
	FrameEvent   = "event"
)

// Frame is the envelope of every live message.
type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// DecodeFrame turns a raw message into a snapshot or event Update. The
// caller fills in generation, identifier and time.
func DecodeFrame(data []byte) (Update, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Update{}, fmt.Errorf("invalid frame: %w", err)
	}

	switch f.Type {
	case FrameInitial:
		var events []telemetry.Event
		if len(f.Data) > 0 && string(f.Data) != "null" {
			if err := json.Unmarshal(f.Data, &events); err != nil {
				return Update{}, fmt.Errorf("invalid %s frame: %w", f.Type, err)
			}
		}
		if events == nil {
			events = []telemetry.Event{}
		}
		return Update{Kind: UpdateSnapshot, Events: events}, nil

	case FrameEvent:
		if len(f.Data) == 0 || string(f.Data) == "null" {
			return Update{}, fmt.Errorf("%s frame has no data", f.Type)
		}
		var e telemetry.Event
		if err := json.Unmarshal(f.Data, &e); err != nil {
			return Update{}, fmt.Errorf("invalid %s frame: %w", f.Type, err)
		}
		return Update{Kind: UpdateEvent, Event: e}, nil

	default:
		return Update{}, fmt.Errorf("unknown frame type %q", f.Type)
	}
}

// EncodeFrame builds a frame of the given type around data.
func EncodeFrame(frameType string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Type: frameType, Data: raw})
}
