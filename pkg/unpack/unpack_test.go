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

package unpack_test

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"testing"
	"time"

	"github.com/sage-x-project/didcomm-go/pkg/diddoc"
	"github.com/sage-x-project/didcomm-go/pkg/keyagreement"
	"github.com/sage-x-project/didcomm-go/pkg/message"
	"github.com/sage-x-project/didcomm-go/pkg/pack"
	"github.com/sage-x-project/didcomm-go/pkg/plugin"
	"github.com/sage-x-project/didcomm-go/pkg/plugin/memory"
	"github.com/sage-x-project/didcomm-go/pkg/unpack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T, kt diddoc.KeyType, dids ...string) (*memory.Store, *memory.Encryptor) {
	t.Helper()

	curve, err := keyagreement.Curve(kt)
	require.NoError(t, err)

	agents := make([]memory.AgentFixture, len(dids))

	for i, did := range dids {
		authPub, authPriv, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)

		kaPriv, err := curve.GenerateKey(rand.Reader)
		require.NoError(t, err)

		agents[i] = memory.AgentFixture{
			DID: did,
			Keys: []memory.KeyFixture{
				{
					ID: did + "#auth-1", Type: "Ed25519VerificationKey2020", Curve: "Ed25519",
					PublicKey:  base64.RawURLEncoding.EncodeToString(authPub),
					PrivateKey: base64.RawURLEncoding.EncodeToString(authPriv.Seed()),
				},
				{
					ID: did + "#ka-1", Type: "JsonWebKey2020", Curve: kt.String(),
					PublicKey:  base64.RawURLEncoding.EncodeToString(kaPriv.PublicKey().Bytes()),
					PrivateKey: base64.RawURLEncoding.EncodeToString(kaPriv.Bytes()),
				},
			},
			Authentication: []string{did + "#auth-1"},
			KeyAgreement:   []string{did + "#ka-1"},
		}
	}

	store, err := memory.NewStore(&memory.FixtureSet{Agents: agents})
	require.NoError(t, err)

	return store, memory.NewEncryptor(store)
}

func newMessage(id, from string, to []string) *message.Message {
	return &message.Message{
		ID:   id,
		Type: "https://didcomm.org/basicmessage/2.0/message",
		From: from,
		To:   to,
		Body: map[string]interface{}{"content": "hello"},
	}
}

func TestUnpackSignedRoundTrip(t *testing.T) {
	store, _ := fixture(t, diddoc.KeyTypeX25519, "did:example:alice")
	plg := memory.New(store, nil)

	msg := newMessage("u-1", "did:example:alice", nil)

	envBytes, err := pack.Pack(context.Background(), msg, pack.Signed, plg, pack.Options{})
	require.NoError(t, err)

	got, meta, err := unpack.Unpack(context.Background(), envBytes, plg, unpack.Options{})
	require.NoError(t, err)
	assert.Equal(t, msg.ID, got.ID)
	assert.True(t, meta.Signed)
	assert.False(t, meta.Encrypted)
	assert.Equal(t, "did:example:alice", meta.AuthenticatedSender)
}

func TestUnpackAnoncryptRoundTripHasNoAuthenticatedSender(t *testing.T) {
	store, enc := fixture(t, diddoc.KeyTypeX25519, "did:example:bob")
	plg := memory.New(store, enc)

	msg := newMessage("u-2", "", []string{"did:example:bob"})

	envBytes, err := pack.Pack(context.Background(), msg, pack.Anoncrypt, plg, pack.Options{})
	require.NoError(t, err)

	got, meta, err := unpack.Unpack(context.Background(), envBytes, plg, unpack.Options{RecipientHint: "did:example:bob"})
	require.NoError(t, err)
	assert.Equal(t, msg.ID, got.ID)
	assert.True(t, meta.Encrypted)
	assert.False(t, meta.Signed)
	assert.Empty(t, meta.AuthenticatedSender)
}

func TestUnpackAuthcryptRoundTripSetsAuthenticatedSender(t *testing.T) {
	store, enc := fixture(t, diddoc.KeyTypeX25519, "did:example:alice", "did:example:bob")
	plg := memory.New(store, enc)

	msg := newMessage("u-3", "did:example:alice", []string{"did:example:bob"})

	envBytes, err := pack.Pack(context.Background(), msg, pack.Authcrypt, plg, pack.Options{})
	require.NoError(t, err)

	got, meta, err := unpack.Unpack(context.Background(), envBytes, plg, unpack.Options{RecipientHint: "did:example:bob"})
	require.NoError(t, err)
	assert.Equal(t, msg.ID, got.ID)
	assert.True(t, meta.Encrypted)
	assert.False(t, meta.Signed)
	assert.Equal(t, "did:example:alice", meta.AuthenticatedSender)
}

func TestUnpackAuthcryptWithInnerSignVerifiesNestedJWS(t *testing.T) {
	store, enc := fixture(t, diddoc.KeyTypeX25519, "did:example:alice", "did:example:bob")
	plg := memory.New(store, enc)

	msg := newMessage("u-4", "did:example:alice", []string{"did:example:bob"})

	envBytes, err := pack.Pack(context.Background(), msg, pack.Authcrypt, plg, pack.Options{Sign: true})
	require.NoError(t, err)

	got, meta, err := unpack.Unpack(context.Background(), envBytes, plg, unpack.Options{RecipientHint: "did:example:bob"})
	require.NoError(t, err)
	assert.Equal(t, msg.ID, got.ID)
	assert.True(t, meta.Encrypted)
	assert.True(t, meta.Signed)
	assert.Equal(t, "did:example:alice", meta.AuthenticatedSender)
}

func TestUnpackTamperDetected(t *testing.T) {
	store, enc := fixture(t, diddoc.KeyTypeX25519, "did:example:bob")
	plg := memory.New(store, enc)

	msg := newMessage("u-5", "", []string{"did:example:bob"})

	envBytes, err := pack.Pack(context.Background(), msg, pack.Anoncrypt, plg, pack.Options{})
	require.NoError(t, err)

	tampered := append([]byte(nil), envBytes...)
	flipped := false
	for i := len(tampered) - 1; i >= 0 && !flipped; i-- {
		if tampered[i] != '"' && tampered[i] != '}' {
			tampered[i] ^= 0x01
			flipped = true
		}
	}

	_, _, err = unpack.Unpack(context.Background(), tampered, plg, unpack.Options{RecipientHint: "did:example:bob"})
	assert.Error(t, err)
}

func TestUnpackExpiredMessageRejected(t *testing.T) {
	store, _ := fixture(t, diddoc.KeyTypeX25519, "did:example:alice")
	plg := memory.New(store, nil)

	past := time.Now().Add(-time.Hour).Unix()
	msg := newMessage("u-6", "did:example:alice", nil)
	msg.ExpiresTime = &past

	envBytes, err := pack.Pack(context.Background(), msg, pack.Signed, plg, pack.Options{})
	require.NoError(t, err)

	_, _, err = unpack.Unpack(context.Background(), envBytes, plg, unpack.Options{})
	assert.ErrorIs(t, err, plugin.ErrExpired)
}

func TestUnpackExpirySlackTolerates(t *testing.T) {
	store, _ := fixture(t, diddoc.KeyTypeX25519, "did:example:alice")
	plg := memory.New(store, nil)

	past := time.Now().Add(-time.Minute).Unix()
	msg := newMessage("u-7", "did:example:alice", nil)
	msg.ExpiresTime = &past

	envBytes, err := pack.Pack(context.Background(), msg, pack.Signed, plg, pack.Options{})
	require.NoError(t, err)

	_, _, err = unpack.Unpack(context.Background(), envBytes, plg, unpack.Options{ExpirySlack: time.Hour})
	assert.NoError(t, err)
}

func TestUnpackJWEWithoutRecipientHintFails(t *testing.T) {
	store, enc := fixture(t, diddoc.KeyTypeX25519, "did:example:bob")
	plg := memory.New(store, enc)

	msg := newMessage("u-8", "", []string{"did:example:bob"})

	envBytes, err := pack.Pack(context.Background(), msg, pack.Anoncrypt, plg, pack.Options{})
	require.NoError(t, err)

	_, _, err = unpack.Unpack(context.Background(), envBytes, plg, unpack.Options{})
	assert.ErrorIs(t, err, plugin.ErrNoKey)
}

func TestUnpackUnrecognizedShapeFails(t *testing.T) {
	store, _ := fixture(t, diddoc.KeyTypeX25519, "did:example:alice")
	plg := memory.New(store, nil)

	_, _, err := unpack.Unpack(context.Background(), []byte("not an envelope"), plg, unpack.Options{})
	assert.ErrorIs(t, err, plugin.ErrSerialization)
}
