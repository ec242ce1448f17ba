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

package diddoc

import (
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultibaseRoundTripX25519(t *testing.T) {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i)
	}

	mb, err := encodeMultibase(KeyTypeX25519, raw)
	require.NoError(t, err)
	assert.Equal(t, byte('z'), mb[0])

	kt, got, err := decodeMultibase(mb)
	require.NoError(t, err)
	assert.Equal(t, KeyTypeX25519, kt)
	assert.Equal(t, raw, got)
}

func TestMultibaseRoundTripP256(t *testing.T) {
	raw := make([]byte, 65)
	raw[0] = 0x04
	for i := 1; i < len(raw); i++ {
		raw[i] = byte(i)
	}

	mb, err := encodeMultibase(KeyTypeP256, raw)
	require.NoError(t, err)

	kt, got, err := decodeMultibase(mb)
	require.NoError(t, err)
	assert.Equal(t, KeyTypeP256, kt)
	assert.Equal(t, raw, got)
}

func TestDecodeMultibaseRejectsNonBase58btc(t *testing.T) {
	_, _, err := decodeMultibase("uNot-base58btc")
	assert.ErrorIs(t, err, ErrUnsupportedKey)
}

func TestDecodeMultibaseRejectsUnknownCodec(t *testing.T) {
	prefixed := append(encodeVarint(0x9999), make([]byte, 32)...)
	mb := "z" + base58.Encode(prefixed)

	_, _, err := decodeMultibase(mb)
	assert.ErrorIs(t, err, ErrUnsupportedKey)
}

func TestDecodeMultibaseRejectsWrongLengthEd25519(t *testing.T) {
	prefixed := append(encodeVarint(codecEd25519Pub), make([]byte, 31)...)
	mb := "z" + base58.Encode(prefixed)

	_, _, err := decodeMultibase(mb)
	assert.Error(t, err)
}

func TestVarintRoundTrip(t *testing.T) {
	for _, v := range []int{0, 1, 127, 128, 300, 0xed, 0x1200, 0x1202} {
		enc := encodeVarint(v)
		got, n, err := decodeVarint(enc)
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.Equal(t, len(enc), n)
	}
}
