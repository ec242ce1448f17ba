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

package message

import (
	"encoding/json"
	"fmt"
)

// Attachment carries exactly one data representation alongside an optional
// identifier and media type.
type Attachment struct {
	ID       string `json:"id,omitempty"`
	MediaType string `json:"media_type,omitempty"`
	Data     AttachmentData `json:"data"`
}

// Validate checks that the attachment carries exactly one data
// representation.
func (a Attachment) Validate() error {
	if a.Data == nil {
		return fmt.Errorf("attachment: data is required")
	}

	return nil
}

// AttachmentData is a sum type: exactly one of InlineJSON, Base64, Links,
// JWSDetached, or Hash.
type AttachmentData interface {
	isAttachmentData()
	MarshalJSON() ([]byte, error)
}

// InlineJSON carries the attachment's content directly as JSON.
type InlineJSON struct {
	JSON interface{}
}

func (InlineJSON) isAttachmentData() {}

// MarshalJSON implements AttachmentData.
func (d InlineJSON) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		JSON interface{} `json:"json"`
	}{d.JSON})
}

// Base64 carries the attachment's content as base64url-encoded bytes.
type Base64 struct {
	Base64 string `json:"base64"`
}

func (Base64) isAttachmentData() {}

// MarshalJSON implements AttachmentData.
func (d Base64) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Base64 string `json:"base64"`
	}{d.Base64})
}

// Links carries one or more external URIs plus an optional integrity hash.
type Links struct {
	Links []string `json:"links"`
	Hash  string   `json:"hash,omitempty"`
}

func (Links) isAttachmentData() {}

// MarshalJSON implements AttachmentData.
func (d Links) MarshalJSON() ([]byte, error) {
	type alias Links
	return json.Marshal(alias(d))
}

// JWSDetached carries a detached JWS signature over externally-held content.
type JWSDetached struct {
	JWS json.RawMessage `json:"jws"`
}

func (JWSDetached) isAttachmentData() {}

// MarshalJSON implements AttachmentData.
func (d JWSDetached) MarshalJSON() ([]byte, error) {
	type alias JWSDetached
	return json.Marshal(alias(d))
}

// Hash carries only a content hash, with the content held elsewhere.
type Hash struct {
	Hash string `json:"hash"`
}

func (Hash) isAttachmentData() {}

// MarshalJSON implements AttachmentData.
func (d Hash) MarshalJSON() ([]byte, error) {
	type alias Hash
	return json.Marshal(alias(d))
}

// attachmentEnvelope is the wire shape of Attachment.Data: a flat object
// with whichever of the five mutually-exclusive keys is present.
type attachmentEnvelope struct {
	JSON   interface{}     `json:"json,omitempty"`
	Base64 string          `json:"base64,omitempty"`
	Links  []string        `json:"links,omitempty"`
	Hash   string          `json:"hash,omitempty"`
	JWS    json.RawMessage `json:"jws,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler for Attachment, dispatching to
// the concrete AttachmentData kind present on the wire.
func (a *Attachment) UnmarshalJSON(b []byte) error {
	var wire struct {
		ID        string              `json:"id,omitempty"`
		MediaType string              `json:"media_type,omitempty"`
		Data      attachmentEnvelope  `json:"data"`
	}

	if err := json.Unmarshal(b, &wire); err != nil {
		return fmt.Errorf("unmarshal attachment: %w", err)
	}

	a.ID = wire.ID
	a.MediaType = wire.MediaType

	switch {
	case wire.Data.JWS != nil:
		a.Data = JWSDetached{JWS: wire.Data.JWS}
	case wire.Data.Base64 != "":
		a.Data = Base64{Base64: wire.Data.Base64}
	case len(wire.Data.Links) > 0:
		a.Data = Links{Links: wire.Data.Links, Hash: wire.Data.Hash}
	case wire.Data.Hash != "":
		a.Data = Hash{Hash: wire.Data.Hash}
	case wire.Data.JSON != nil:
		a.Data = InlineJSON{JSON: wire.Data.JSON}
	default:
		return fmt.Errorf("unmarshal attachment: no recognized data representation")
	}

	return nil
}
