// Copyright (C) 2025 SAGE-X Project
//
// This file is part of didcomm-go.
//
// didcomm-go is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// didcomm-go is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with didcomm-go.  If not, see <https://www.gnu.org/licenses/>.

// Package message defines the DIDComm v2 plaintext message and its
// canonical JSON serialization.
//
// # Canonical serialization
//
// Marshal produces JSON with a fixed field order (id, type, from, to, thid,
// pthid, created_time, expires_time, body, attachments, please_ack),
// UTF-8, no trailing whitespace, and omits missing optional fields rather
// than emitting null. Unmarshal is tolerant of any field order on input;
// only Marshal's output is canonical. Signed envelopes carry this exact
// byte sequence as their JWS payload (invariant 1 of the packing
// specification): re-parsing the payload must yield an equivalent Message.
package message

import (
	"encoding/json"
	"fmt"
)

// Message is an application payload ready to be packed into an envelope.
//
// ID is a client-generated opaque identifier; it is not required to be
// unique per-recipient. CreatedTime and ExpiresTime are seconds since the
// Unix epoch. Thid/Pthid and PleaseAck are part of the real DIDComm v2
// plaintext format; they are optional and ignored by the pack/unpack
// pipelines beyond round-tripping.
type Message struct {
	ID          string                 `json:"id"`
	Type        string                 `json:"type"`
	From        string                 `json:"from,omitempty"`
	To          []string               `json:"to,omitempty"`
	Thid        *string                `json:"thid,omitempty"`
	Pthid       *string                `json:"pthid,omitempty"`
	CreatedTime *int64                 `json:"created_time,omitempty"`
	ExpiresTime *int64                 `json:"expires_time,omitempty"`
	Body        map[string]interface{} `json:"body"`
	Attachments []Attachment           `json:"attachments,omitempty"`
	PleaseAck   []string               `json:"please_ack,omitempty"`
}

// Marshal produces the canonical byte representation of m, per the field
// order documented on the package. It is the payload signed in a Signed
// envelope and the plaintext encrypted in a JWE.
func (m *Message) Marshal() ([]byte, error) {
	if m.Body == nil {
		m.Body = map[string]interface{}{}
	}

	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}

	return b, nil
}

// Unmarshal parses canonical (or any valid) JSON bytes into a Message.
func Unmarshal(b []byte) (*Message, error) {
	var m Message

	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("unmarshal message: %w", err)
	}

	if m.Body == nil {
		m.Body = map[string]interface{}{}
	}

	return &m, nil
}

// Validate performs basic structural validation on m.
func (m *Message) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("message: id is required")
	}

	if m.Type == "" {
		return fmt.Errorf("message: type is required")
	}

	for i, a := range m.Attachments {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("message: attachment %d: %w", i, err)
		}
	}

	return nil
}
