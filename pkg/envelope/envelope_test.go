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

package envelope

import (
	"testing"

	"github.com/sage-x-project/didcomm-go/pkg/plugin"
	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want Shape
	}{
		{"jwe", `{"protected":"x","recipients":[],"iv":"x","ciphertext":"x","tag":"x"}`, ShapeJWE},
		{"jws-general", `{"payload":"x","signatures":[{"protected":"a","signature":"b"}]}`, ShapeJWSGeneral},
		{"jws-compact", "aGVhZGVy.cGF5bG9hZA.c2ln", ShapeJWSCompact},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Detect([]byte(tc.in))
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDetectRejectsUnrecognized(t *testing.T) {
	cases := []string{
		"",
		"not an envelope at all",
		`{"foo":"bar"}`,
		"only.one.dot.too.many",
	}

	for _, in := range cases {
		_, err := Detect([]byte(in))
		assert.ErrorIs(t, err, plugin.ErrSerialization)
	}
}

func TestShapeString(t *testing.T) {
	assert.Equal(t, "jwe", ShapeJWE.String())
	assert.Equal(t, "jws-compact", ShapeJWSCompact.String())
	assert.Equal(t, "jws-general", ShapeJWSGeneral.String())
	assert.Equal(t, "unknown", ShapeUnknown.String())
}
