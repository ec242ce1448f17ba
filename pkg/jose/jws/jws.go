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

// Package jws builds and parses the JWS envelope a DIDComm Signed message
// is: a protected header naming the signer's key and algorithm, the
// message's canonical JSON as payload, and one signature per signer. Only
// the general JSON serialization and single-signature compact form are
// produced; both are accepted on input.
package jws

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sage-x-project/didcomm-go/pkg/plugin"
)

// Header is a JWS protected header as this core produces and consumes
// it: just enough to identify the signer and algorithm.
type Header struct {
	Alg  string `json:"alg"`
	Kid  string `json:"kid"`
	Typ  string `json:"typ,omitempty"`
	Crit []string `json:"crit,omitempty"`
}

// Signature is one entry in a JWS general-serialization "signatures"
// array.
type Signature struct {
	Protected string `json:"protected"`
	Signature string `json:"signature"`
	Header    *Header `json:"header,omitempty"`
}

// Envelope is a JWS in JSON general serialization.
type Envelope struct {
	Payload    string      `json:"payload"`
	Signatures []Signature `json:"signatures"`
}

// knownCritParams is the set of "crit" extension names this core
// understands. Anything else in a received header's crit array must be
// rejected rather than silently accepted, per RFC 7515 §4.1.11.
var knownCritParams = map[string]bool{}

// Sign produces a single-signature JWS general-serialization envelope
// over payload, signing with the plugin's Signer using keyID.
func Sign(ctx context.Context, signer plugin.Signer, keyID string, payload []byte) (*Envelope, error) {
	payloadB64 := base64.RawURLEncoding.EncodeToString(payload)

	// alg is filled in from what the first Sign call reports it used; the
	// header is then signed again with alg in place, so the signature covers
	// the header exactly as emitted. Kid identifies the signing key so a
	// verifier knows whose document to resolve.
	header := Header{Kid: keyID, Typ: "application/didcomm-signed+json"}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("jws: marshal protected header: %w", err)
	}
	protectedB64 := base64.RawURLEncoding.EncodeToString(headerJSON)

	signingInput := protectedB64 + "." + payloadB64

	sig, alg, err := signer.Sign(ctx, keyID, []byte(signingInput))
	if err != nil {
		return nil, fmt.Errorf("jws: sign: %w", err)
	}

	header.Alg = alg

	headerJSON, err = json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("jws: marshal protected header: %w", err)
	}
	protectedB64 = base64.RawURLEncoding.EncodeToString(headerJSON)

	sig, _, err = signer.Sign(ctx, keyID, []byte(protectedB64+"."+payloadB64))
	if err != nil {
		return nil, fmt.Errorf("jws: sign: %w", err)
	}

	return &Envelope{
		Payload: payloadB64,
		Signatures: []Signature{
			{Protected: protectedB64, Signature: base64.RawURLEncoding.EncodeToString(sig)},
		},
	}, nil
}

// Verify checks every signature in env using verifier.Verify, resolving
// each signer's key via the kid embedded in its protected header. It
// returns the decoded payload and the list of key IDs whose signatures
// verified. A single bad signature fails the whole call: DIDComm Signed
// messages are not a "best effort" construct.
func Verify(ctx context.Context, verifier plugin.Signer, env *Envelope) (payload []byte, keyIDs []string, err error) {
	payload, err = base64.RawURLEncoding.DecodeString(env.Payload)
	if err != nil {
		return nil, nil, fmt.Errorf("jws: %w: decode payload: %v", plugin.ErrSerialization, err)
	}

	if len(env.Signatures) == 0 {
		return nil, nil, fmt.Errorf("jws: %w: no signatures", plugin.ErrSignatureInvalid)
	}

	for _, sig := range env.Signatures {
		headerJSON, err := base64.RawURLEncoding.DecodeString(sig.Protected)
		if err != nil {
			return nil, nil, fmt.Errorf("jws: %w: decode protected header: %v", plugin.ErrSerialization, err)
		}

		var header Header
		if err := json.Unmarshal(headerJSON, &header); err != nil {
			return nil, nil, fmt.Errorf("jws: %w: parse protected header: %v", plugin.ErrSerialization, err)
		}

		for _, crit := range header.Crit {
			if !knownCritParams[crit] {
				return nil, nil, fmt.Errorf("jws: %w: %s", plugin.ErrUnknownCriticalParameter, crit)
			}
		}

		sigBytes, err := base64.RawURLEncoding.DecodeString(sig.Signature)
		if err != nil {
			return nil, nil, fmt.Errorf("jws: %w: decode signature: %v", plugin.ErrSerialization, err)
		}

		signingInput := sig.Protected + "." + env.Payload

		if err := verifier.Verify(ctx, header.Kid, []byte(signingInput), sigBytes); err != nil {
			return nil, nil, fmt.Errorf("jws: %s: %w", header.Kid, plugin.ErrSignatureInvalid)
		}

		keyIDs = append(keyIDs, header.Kid)
	}

	return payload, keyIDs, nil
}

// IsCompact reports whether s looks like compact JWS serialization
// (exactly two dots, no "signatures" member) rather than JSON general
// serialization.
func IsCompact(s string) bool {
	trimmed := strings.TrimSpace(s)
	return len(trimmed) > 0 && trimmed[0] != '{' && strings.Count(trimmed, ".") == 2
}

// ParseCompact parses a compact-serialization JWS (protected.payload.signature)
// into the general-serialization Envelope this package otherwise works
// with, so Verify has one code path regardless of wire form.
func ParseCompact(s string) (*Envelope, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("jws: %w: compact serialization must have 3 parts, got %d", plugin.ErrSerialization, len(parts))
	}

	return &Envelope{
		Payload: parts[1],
		Signatures: []Signature{
			{Protected: parts[0], Signature: parts[2]},
		},
	}, nil
}

// Serialize renders env as wire bytes: compact serialization
// (protected.payload.signature) when env carries exactly one signature,
// JSON general serialization otherwise, per spec.md §6.
func Serialize(env *Envelope) ([]byte, error) {
	if len(env.Signatures) == 1 {
		sig := env.Signatures[0]
		return []byte(sig.Protected + "." + env.Payload + "." + sig.Signature), nil
	}

	b, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("jws: marshal general serialization: %w", err)
	}

	return b, nil
}

// Parse parses wire bytes in either compact or JSON general serialization
// into an Envelope.
func Parse(b []byte) (*Envelope, error) {
	s := string(b)

	if IsCompact(s) {
		return ParseCompact(s)
	}

	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("jws: %w: %v", plugin.ErrSerialization, err)
	}

	return &env, nil
}
