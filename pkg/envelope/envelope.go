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

// Package envelope performs the structural shape detection pkg/unpack's
// first step relies on; it defines no envelope value type of its own, only
// the Shape classification: a JWE has a "ciphertext" member, a JWS compact
// serialization has exactly two dots, a JWS general serialization has a
// "signatures" array. No cryptographic work happens here; this package
// only inspects wire bytes enough to route them to pkg/jose/jwe or
// pkg/jose/jws.
package envelope

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sage-x-project/didcomm-go/pkg/plugin"
)

// Shape is the structural kind of envelope bytes, independent of whether
// the bytes ultimately came from Signed, Anoncrypt, or Authcrypt packing.
type Shape int

const (
	// ShapeUnknown means bytes could not be classified as either JWE or
	// JWS.
	ShapeUnknown Shape = iota
	// ShapeJWE is a JWE, always JSON general serialization on the wire
	// (spec.md §6).
	ShapeJWE
	// ShapeJWSCompact is a single-signature JWS in compact serialization.
	ShapeJWSCompact
	// ShapeJWSGeneral is a JWS in JSON general serialization.
	ShapeJWSGeneral
)

// String implements fmt.Stringer.
func (s Shape) String() string {
	switch s {
	case ShapeJWE:
		return "jwe"
	case ShapeJWSCompact:
		return "jws-compact"
	case ShapeJWSGeneral:
		return "jws-general"
	default:
		return "unknown"
	}
}

// probe is the minimal set of top-level JSON members Detect needs to
// distinguish shapes without fully parsing either codec's envelope type.
type probe struct {
	Ciphertext *json.RawMessage `json:"ciphertext"`
	Signatures *json.RawMessage `json:"signatures"`
}

// Detect classifies envelope wire bytes per spec.md §4.3 step 1: a JWE
// has "ciphertext"; JWS compact serialization has exactly two dots and no
// leading '{'; JWS general serialization has "signatures". Bytes that
// match none of these return ShapeUnknown and plugin.ErrSerialization.
func Detect(b []byte) (Shape, error) {
	trimmed := strings.TrimSpace(string(b))

	if len(trimmed) == 0 {
		return ShapeUnknown, fmt.Errorf("envelope: %w: empty input", plugin.ErrSerialization)
	}

	if trimmed[0] != '{' {
		if strings.Count(trimmed, ".") == 2 {
			return ShapeJWSCompact, nil
		}

		return ShapeUnknown, fmt.Errorf("envelope: %w: not JSON and not compact JWS", plugin.ErrSerialization)
	}

	var p probe
	if err := json.Unmarshal(b, &p); err != nil {
		return ShapeUnknown, fmt.Errorf("envelope: %w: %v", plugin.ErrSerialization, err)
	}

	switch {
	case p.Ciphertext != nil:
		return ShapeJWE, nil
	case p.Signatures != nil:
		return ShapeJWSGeneral, nil
	default:
		return ShapeUnknown, fmt.Errorf("envelope: %w: neither ciphertext nor signatures present", plugin.ErrSerialization)
	}
}
