// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package playbus carries playback samples and named events from remote
// players to a local host binding.
package playbus

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// Message types.
const (
	TypeTime  = "time"
	TypeSeek  = "seek"
	TypeEvent = "event"
)

// ErrInvalidMessage marks a payload that cannot be applied.
var ErrInvalidMessage = errors.New("invalid playback message")

// Message is the wire form of one playback update.
//
//	{"type":"time","time":12.5,"seeking":false}
//	{"type":"seek","time":90}
//	{"type":"event","name":"chapter2"}
type Message struct {
	Type    string   `json:"type"`
	Time    *float64 `json:"time,omitempty"`
	Seeking bool     `json:"seeking,omitempty"`
	Name    string   `json:"name,omitempty"`
}

// Sink receives decoded playback updates. host.Player implements it.
type Sink interface {
	SetTime(at float64, seeking bool)
	Seek(at float64)
	Emit(name string)
}

// TimeMessage builds a playback sample.
func TimeMessage(at float64, seeking bool) Message {
	return Message{Type: TypeTime, Time: &at, Seeking: seeking}
}

// SeekMessage builds a seek.
func SeekMessage(at float64) Message {
	return Message{Type: TypeSeek, Time: &at}
}

// EventMessage builds a named playback event.
func EventMessage(name string) Message {
	return Message{Type: TypeEvent, Name: name}
}

// Decode parses and validates a payload.
func Decode(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if err := msg.Validate(); err != nil {
		return msg, err
	}
	return msg, nil
}

// Validate reports whether the message can be applied.
func (m Message) Validate() error {
	switch m.Type {
	case TypeTime, TypeSeek:
		if m.Time == nil {
			return fmt.Errorf("%w: %s message without time", ErrInvalidMessage, m.Type)
		}
		if math.IsNaN(*m.Time) || math.IsInf(*m.Time, 0) || *m.Time < 0 {
			return fmt.Errorf("%w: time %v out of range", ErrInvalidMessage, *m.Time)
		}
	case TypeEvent:
		if strings.TrimSpace(m.Name) == "" {
			return fmt.Errorf("%w: event message without name", ErrInvalidMessage)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidMessage, m.Type)
	}
	return nil
}

// KindLabel maps a message type onto a bounded metric label.
func KindLabel(typ string) string {
	switch typ {
	case TypeTime, TypeSeek, TypeEvent:
		return typ
	default:
		return "unknown"
	}
}

// Apply validates msg and forwards it to sink.
func Apply(sink Sink, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	switch msg.Type {
	case TypeTime:
		sink.SetTime(*msg.Time, msg.Seeking)
	case TypeSeek:
		sink.Seek(*msg.Time)
	case TypeEvent:
		sink.Emit(strings.TrimSpace(msg.Name))
	}
	return nil
}
