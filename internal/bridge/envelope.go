package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/specialistvlad/macrograph/internal/element"
)

// Environment is the process boundary the bridge talks across.
type Environment interface {
	// Available reports whether the runtime can accept work right now.
	Available() bool
	// Send forwards one envelope. It must not wait for the task's result.
	Send(ctx context.Context, env Envelope) error
}

// Request is what a macro hands to Submit.
type Request struct {
	Code     string
	Input    *element.Element // nil is sent as an empty object
	Argument string
	Runtime  string // optional runtime tag, e.g. "deno" or "python"
}

// Envelope is the outbound wire form of a task.
type Envelope struct {
	TaskID   TaskID `json:"taskId"`
	Code     string `json:"code"`
	Input    string `json:"input"`
	Argument string `json:"argument"`
	Runtime  string `json:"runtime,omitempty"`
}

// Outcome is what the runtime reports for a task.
type Outcome struct {
	Success bool   `json:"success"`
	Data    string `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Delivery is the inbound wire form: a task id in any accepted shape plus its
// outcome.
type Delivery struct {
	TaskID any `json:"taskId"`
	Outcome
}

// DecodeDelivery decodes an inbound JSON delivery, keeping numeric ids exact.
func DecodeDelivery(data []byte) (Delivery, error) {
	var d Delivery
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&d); err != nil {
		return Delivery{}, fmt.Errorf("bridge: decode delivery: %w", err)
	}
	return d, nil
}

func serializeInput(in *element.Element) (string, error) {
	if in == nil {
		return "{}", nil
	}
	return element.Marshal(*in)
}
