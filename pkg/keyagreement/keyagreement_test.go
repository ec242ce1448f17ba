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

package keyagreement

import (
	"testing"

	"github.com/sage-x-project/didcomm-go/pkg/diddoc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestECDHESRoundTrip(t *testing.T) {
	recipientPriv, err := GenerateEphemeral(diddoc.KeyTypeX25519)
	require.NoError(t, err)

	ephemeralPriv, err := GenerateEphemeral(diddoc.KeyTypeX25519)
	require.NoError(t, err)

	senderKEK, err := ECDHES(ephemeralPriv, recipientPriv.PublicKey(), "A256GCM", "", "did:example:bob#key-1", 32)
	require.NoError(t, err)
	require.Len(t, senderKEK, 32)

	recipientKEK, err := ECDHES(recipientPriv, ephemeralPriv.PublicKey(), "A256GCM", "", "did:example:bob#key-1", 32)
	require.NoError(t, err)

	assert.Equal(t, senderKEK, recipientKEK)
}

func TestECDH1PURoundTrip(t *testing.T) {
	senderStatic, err := GenerateEphemeral(diddoc.KeyTypeP256)
	require.NoError(t, err)

	recipientPriv, err := GenerateEphemeral(diddoc.KeyTypeP256)
	require.NoError(t, err)

	ephemeralPriv, err := GenerateEphemeral(diddoc.KeyTypeP256)
	require.NoError(t, err)

	senderKEK, err := ECDH1PU(ephemeralPriv, senderStatic, recipientPriv.PublicKey(), "A256CBC-HS512", "did:example:alice#key-1", "did:example:bob#key-1", 32)
	require.NoError(t, err)

	recipientKEK, err := ECDH1PURecipient(recipientPriv, ephemeralPriv.PublicKey(), senderStatic.PublicKey(), "A256CBC-HS512", "did:example:alice#key-1", "did:example:bob#key-1", 32)
	require.NoError(t, err)

	assert.Equal(t, senderKEK, recipientKEK)
}

func TestECDH1PUDifferentSenderProducesDifferentKey(t *testing.T) {
	wrongSender, err := GenerateEphemeral(diddoc.KeyTypeP256)
	require.NoError(t, err)

	senderStatic, err := GenerateEphemeral(diddoc.KeyTypeP256)
	require.NoError(t, err)

	recipientPriv, err := GenerateEphemeral(diddoc.KeyTypeP256)
	require.NoError(t, err)

	ephemeralPriv, err := GenerateEphemeral(diddoc.KeyTypeP256)
	require.NoError(t, err)

	correct, err := ECDH1PU(ephemeralPriv, senderStatic, recipientPriv.PublicKey(), "A256GCM", "", "", 32)
	require.NoError(t, err)

	wrong, err := ECDH1PURecipient(recipientPriv, ephemeralPriv.PublicKey(), wrongSender.PublicKey(), "A256GCM", "", "", 32)
	require.NoError(t, err)

	assert.NotEqual(t, correct, wrong)
}

func TestCurveUnsupportedForEd25519(t *testing.T) {
	_, err := Curve(diddoc.KeyTypeEd25519)
	assert.ErrorIs(t, err, diddoc.ErrUnsupportedKey)
}

func TestDeriveInfoDiffersByAlgID(t *testing.T) {
	a := DeriveInfo("A256GCM", "apu", "apv")
	b := DeriveInfo("XC20P", "apu", "apv")
	assert.NotEqual(t, a, b)
}
