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

package jws

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/sage-x-project/didcomm-go/pkg/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSigner implements plugin.Signer with a single in-memory Ed25519
// keypair, keyed by a fixed kid.
type mockSigner struct {
	kid string
	pub ed25519.PublicKey
	priv ed25519.PrivateKey
}

func newMockSigner(kid string) *mockSigner {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return &mockSigner{kid: kid, pub: pub, priv: priv}
}

func (m *mockSigner) Sign(_ context.Context, keyID string, payload []byte) ([]byte, string, error) {
	if keyID != m.kid {
		return nil, "", assert.AnError
	}
	return ed25519.Sign(m.priv, payload), "EdDSA", nil
}

func (m *mockSigner) Verify(_ context.Context, keyID string, payload, signature []byte) error {
	if keyID != m.kid {
		return assert.AnError
	}
	if !ed25519.Verify(m.pub, payload, signature) {
		return plugin.ErrSignatureInvalid
	}
	return nil
}

func TestSignVerifyRoundTrip(t *testing.T) {
	signer := newMockSigner("did:example:alice#key-1")
	payload := []byte(`{"hello":"world"}`)

	env, err := Sign(context.Background(), signer, signer.kid, payload)
	require.NoError(t, err)
	require.Len(t, env.Signatures, 1)

	got, keyIDs, err := Verify(context.Background(), signer, env)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Equal(t, []string{signer.kid}, keyIDs)
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	signer := newMockSigner("did:example:alice#key-1")
	payload := []byte(`{"hello":"world"}`)

	env, err := Sign(context.Background(), signer, signer.kid, payload)
	require.NoError(t, err)

	env.Payload = env.Payload[:len(env.Payload)-2] + "xx"

	_, _, err = Verify(context.Background(), signer, env)
	assert.ErrorIs(t, err, plugin.ErrSignatureInvalid)
}

func TestVerifyRejectsUnknownCritParameter(t *testing.T) {
	signer := newMockSigner("did:example:alice#key-1")

	env, err := Sign(context.Background(), signer, signer.kid, []byte(`{}`))
	require.NoError(t, err)

	// Rebuild the protected header with an unrecognized crit entry.
	env.Signatures[0].Protected = mustB64Header(t, Header{
		Alg: "EdDSA", Kid: signer.kid, Crit: []string{"exp"},
	})

	_, _, err = Verify(context.Background(), signer, env)
	assert.ErrorIs(t, err, plugin.ErrUnknownCriticalParameter)
}

func TestParseCompact(t *testing.T) {
	env, err := ParseCompact("aGVhZGVy.cGF5bG9hZA.c2ln")
	require.NoError(t, err)
	assert.Equal(t, "cGF5bG9hZA", env.Payload)
}

func TestIsCompact(t *testing.T) {
	assert.True(t, IsCompact("a.b.c"))
	assert.False(t, IsCompact(`{"payload":"x","signatures":[]}`))
}

func mustB64Header(t *testing.T, h Header) string {
	t.Helper()
	b, err := json.Marshal(h)
	require.NoError(t, err)
	return base64.RawURLEncoding.EncodeToString(b)
}
