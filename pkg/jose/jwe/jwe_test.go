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

package jwe

import (
	"testing"

	"github.com/sage-x-project/didcomm-go/pkg/diddoc"
	"github.com/sage-x-project/didcomm-go/pkg/keyagreement"
	"github.com/sage-x-project/didcomm-go/pkg/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptAnoncryptRoundTrip(t *testing.T) {
	for _, kt := range []diddoc.KeyType{diddoc.KeyTypeX25519, diddoc.KeyTypeP256, diddoc.KeyTypeP384, diddoc.KeyTypeP521} {
		for _, alg := range []ContentAlgorithm{A256GCM, A256CBCHS512, XC20P} {
			t.Run(kt.String()+"/"+string(alg), func(t *testing.T) {
				recipientPriv, err := keyagreement.GenerateEphemeral(kt)
				require.NoError(t, err)

				env, err := Encrypt(EncryptParams{
					Plaintext:  []byte(`{"hello":"world"}`),
					ContentAlg: alg,
					Recipients: []RecipientKey{{KeyID: "did:example:bob#key-1", KeyType: kt, Public: recipientPriv.PublicKey()}},
				})
				require.NoError(t, err)

				plaintext, err := Decrypt(DecryptParams{
					Envelope:      env,
					RecipientPriv: recipientPriv,
					RecipientKID:  "did:example:bob#key-1",
				})
				require.NoError(t, err)
				assert.Equal(t, []byte(`{"hello":"world"}`), plaintext)
			})
		}
	}
}

func TestEncryptDecryptAuthcryptRoundTrip(t *testing.T) {
	kt := diddoc.KeyTypeX25519

	senderPriv, err := keyagreement.GenerateEphemeral(kt)
	require.NoError(t, err)
	recipientPriv, err := keyagreement.GenerateEphemeral(kt)
	require.NoError(t, err)

	env, err := Encrypt(EncryptParams{
		Plaintext:  []byte(`{"hello":"authcrypt"}`),
		ContentAlg: A256GCM,
		Recipients: []RecipientKey{{KeyID: "did:example:bob#key-1", KeyType: kt, Public: recipientPriv.PublicKey()}},
		Sender:     &SenderKey{KeyID: "did:example:alice#key-1", Private: senderPriv},
	})
	require.NoError(t, err)

	plaintext, err := Decrypt(DecryptParams{
		Envelope:      env,
		RecipientPriv: recipientPriv,
		RecipientKID:  "did:example:bob#key-1",
		SenderPub:     senderPriv.PublicKey(),
	})
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"hello":"authcrypt"}`), plaintext)
}

func TestDecryptWrongSenderKeyFails(t *testing.T) {
	kt := diddoc.KeyTypeX25519

	senderPriv, err := keyagreement.GenerateEphemeral(kt)
	require.NoError(t, err)
	otherPriv, err := keyagreement.GenerateEphemeral(kt)
	require.NoError(t, err)
	recipientPriv, err := keyagreement.GenerateEphemeral(kt)
	require.NoError(t, err)

	env, err := Encrypt(EncryptParams{
		Plaintext:  []byte(`{"hello":"authcrypt"}`),
		ContentAlg: A256GCM,
		Recipients: []RecipientKey{{KeyID: "did:example:bob#key-1", KeyType: kt, Public: recipientPriv.PublicKey()}},
		Sender:     &SenderKey{KeyID: "did:example:alice#key-1", Private: senderPriv},
	})
	require.NoError(t, err)

	_, err = Decrypt(DecryptParams{
		Envelope:      env,
		RecipientPriv: recipientPriv,
		RecipientKID:  "did:example:bob#key-1",
		SenderPub:     otherPriv.PublicKey(),
	})
	assert.ErrorIs(t, err, plugin.ErrDecryptionFailed)
}

func TestDecryptTamperedTagFails(t *testing.T) {
	kt := diddoc.KeyTypeX25519
	recipientPriv, err := keyagreement.GenerateEphemeral(kt)
	require.NoError(t, err)

	env, err := Encrypt(EncryptParams{
		Plaintext:  []byte(`{"hello":"world"}`),
		ContentAlg: A256GCM,
		Recipients: []RecipientKey{{KeyID: "did:example:bob#key-1", KeyType: kt, Public: recipientPriv.PublicKey()}},
	})
	require.NoError(t, err)

	env.Tag = flipLastChar(env.Tag)

	_, err = Decrypt(DecryptParams{Envelope: env, RecipientPriv: recipientPriv, RecipientKID: "did:example:bob#key-1"})
	assert.ErrorIs(t, err, plugin.ErrDecryptionFailed)
}

func TestDecryptTamperedCiphertextFails(t *testing.T) {
	kt := diddoc.KeyTypeX25519
	recipientPriv, err := keyagreement.GenerateEphemeral(kt)
	require.NoError(t, err)

	env, err := Encrypt(EncryptParams{
		Plaintext:  []byte(`{"hello":"world"}`),
		ContentAlg: A256GCM,
		Recipients: []RecipientKey{{KeyID: "did:example:bob#key-1", KeyType: kt, Public: recipientPriv.PublicKey()}},
	})
	require.NoError(t, err)

	env.Ciphertext = flipLastChar(env.Ciphertext)

	_, err = Decrypt(DecryptParams{Envelope: env, RecipientPriv: recipientPriv, RecipientKID: "did:example:bob#key-1"})
	assert.ErrorIs(t, err, plugin.ErrDecryptionFailed)
}

func TestEncryptMultiRecipient(t *testing.T) {
	kt := diddoc.KeyTypeX25519

	bobPriv, err := keyagreement.GenerateEphemeral(kt)
	require.NoError(t, err)
	carolPriv, err := keyagreement.GenerateEphemeral(kt)
	require.NoError(t, err)

	env, err := Encrypt(EncryptParams{
		Plaintext:  []byte(`{"hello":"everyone"}`),
		ContentAlg: A256GCM,
		Recipients: []RecipientKey{
			{KeyID: "did:example:bob#key-1", KeyType: kt, Public: bobPriv.PublicKey()},
			{KeyID: "did:example:carol#key-1", KeyType: kt, Public: carolPriv.PublicKey()},
		},
	})
	require.NoError(t, err)
	require.Len(t, env.Recipients, 2)

	bobPlaintext, err := Decrypt(DecryptParams{Envelope: env, RecipientPriv: bobPriv, RecipientKID: "did:example:bob#key-1"})
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"hello":"everyone"}`), bobPlaintext)

	carolPlaintext, err := Decrypt(DecryptParams{Envelope: env, RecipientPriv: carolPriv, RecipientKID: "did:example:carol#key-1"})
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"hello":"everyone"}`), carolPlaintext)
}

func TestAPVIsOrderIndependent(t *testing.T) {
	apv1 := CanonicalAPV([]string{"did:example:bob#key-1", "did:example:alice#key-1"})
	apv2 := CanonicalAPV([]string{"did:example:alice#key-1", "did:example:bob#key-1"})
	assert.Equal(t, apv1, apv2)
}

func flipLastChar(s string) string {
	b := []byte(s)
	if len(b) == 0 {
		return s
	}
	last := len(b) - 1
	if b[last] == 'A' {
		b[last] = 'B'
	} else {
		b[last] = 'A'
	}
	return string(b)
}
