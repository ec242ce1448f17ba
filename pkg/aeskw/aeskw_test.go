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

package aeskw

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWrapUnwrapRFC3394TestVector checks against RFC 3394 §4.1: wrap
// 128 bits of key data with a 128-bit KEK.
func TestWrapUnwrapRFC3394TestVector(t *testing.T) {
	kek, err := hex.DecodeString("000102030405060708090A0B0C0D0E0F")
	require.NoError(t, err)

	cek, err := hex.DecodeString("00112233445566778899AABBCCDDEEFF")
	require.NoError(t, err)

	wrapped, err := Wrap(kek, cek)
	require.NoError(t, err)

	wantHex := "1FA68B0A8112B447AEF34BD8FB5A7B829D3E862371D2CFE5"
	assert.Equal(t, wantHex, hexUpper(wrapped))

	unwrapped, err := Unwrap(kek, wrapped)
	require.NoError(t, err)
	assert.Equal(t, cek, unwrapped)
}

func TestUnwrapRejectsTamperedCiphertext(t *testing.T) {
	kek := make([]byte, 16)
	cek := make([]byte, 32)
	for i := range cek {
		cek[i] = byte(i)
	}

	wrapped, err := Wrap(kek, cek)
	require.NoError(t, err)

	wrapped[len(wrapped)-1] ^= 0xFF

	_, err = Unwrap(kek, wrapped)
	assert.Error(t, err)
}

func TestWrapRejectsShortCEK(t *testing.T) {
	kek := make([]byte, 16)
	_, err := Wrap(kek, make([]byte, 8))
	assert.Error(t, err)
}

func TestWrapUnwrap256BitKey(t *testing.T) {
	kek := make([]byte, 32)
	for i := range kek {
		kek[i] = byte(i)
	}

	cek := make([]byte, 64) // A256CBC-HS512 MAC key || enc key
	for i := range cek {
		cek[i] = byte(255 - i)
	}

	wrapped, err := Wrap(kek, cek)
	require.NoError(t, err)

	got, err := Unwrap(kek, wrapped)
	require.NoError(t, err)
	assert.Equal(t, cek, got)
}

func hexUpper(b []byte) string {
	const hextable = "0123456789ABCDEF"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hextable[c>>4]
		out[i*2+1] = hextable[c&0x0f]
	}
	return string(out)
}
