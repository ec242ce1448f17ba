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

// Package aeskw implements RFC 3394 AES Key Wrap, the per-recipient
// key-encryption step JWE's A256KW algorithm uses to wrap a content
// encryption key under a key derived by ECDH.
package aeskw

import (
	"crypto/aes"
	"crypto/subtle"
	"fmt"
)

// defaultIV is the fixed initial value RFC 3394 §2.2.3.1 specifies.
var defaultIV = [8]byte{0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6}

// Wrap wraps cek under kek, returning len(cek)+8 bytes. cek's length must
// be a multiple of 8 bytes and at least 16 (two 64-bit blocks), which A256
// and the A256CBC-HS512 MAC+enc key pair both satisfy.
func Wrap(kek, cek []byte) ([]byte, error) {
	if len(cek)%8 != 0 || len(cek) < 16 {
		return nil, fmt.Errorf("aeskw: cek length must be a multiple of 8 and at least 16 bytes, got %d", len(cek))
	}

	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, fmt.Errorf("aeskw: %w", err)
	}

	n := len(cek) / 8
	r := make([]byte, (n+1)*8)
	copy(r[8:], cek)
	copy(r[:8], defaultIV[:])

	b := make([]byte, aes.BlockSize)

	for j := 0; j <= 5; j++ {
		for i := 1; i <= n; i++ {
			copy(b[:8], r[:8])
			copy(b[8:], r[i*8:i*8+8])

			block.Encrypt(b, b)

			t := uint64(j*n + i)
			for k := 0; k < 8; k++ {
				b[7-k] ^= byte(t >> (8 * k))
			}

			copy(r[:8], b[:8])
			copy(r[i*8:i*8+8], b[8:])
		}
	}

	return r, nil
}

// Unwrap reverses Wrap. It returns an error, without distinguishing why,
// if the integrity check embedded in the algorithm (the recovered IV must
// equal defaultIV) fails — an attacker must not learn whether the
// failure was a bad key or tampered ciphertext.
func Unwrap(kek, wrapped []byte) ([]byte, error) {
	if len(wrapped)%8 != 0 || len(wrapped) < 24 {
		return nil, fmt.Errorf("aeskw: invalid wrapped key length %d", len(wrapped))
	}

	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, fmt.Errorf("aeskw: %w", err)
	}

	n := len(wrapped)/8 - 1
	r := make([]byte, (n+1)*8)
	copy(r, wrapped)

	b := make([]byte, aes.BlockSize)

	for j := 5; j >= 0; j-- {
		for i := n; i >= 1; i-- {
			t := uint64(j*n + i)

			copy(b[:8], r[:8])
			for k := 0; k < 8; k++ {
				b[7-k] ^= byte(t >> (8 * k))
			}
			copy(b[8:], r[i*8:i*8+8])

			block.Decrypt(b, b)

			copy(r[:8], b[:8])
			copy(r[i*8:i*8+8], b[8:])
		}
	}

	if subtle.ConstantTimeCompare(r[:8], defaultIV[:]) != 1 {
		return nil, fmt.Errorf("aeskw: integrity check failed")
	}

	return r[8:], nil
}
