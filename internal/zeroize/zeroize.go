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

// Package zeroize scrubs secret byte buffers before they are released back
// to the allocator. Every CEK, KEK, ECDH shared secret, and unwrapped key in
// this module passes through Bytes before the function that produced it
// returns, on every exit path including error returns and panics.
package zeroize

// Bytes overwrites b with zeros in place. It is safe to call on a nil or
// empty slice.
func Bytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Many zeroizes every buffer in bs, in order.
func Many(bs ...[]byte) {
	for _, b := range bs {
		Bytes(b)
	}
}
