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

// Package demofixture builds memory.AgentFixture values with freshly
// generated key material, for the cmd/examples demos: unlike a checked-in
// YAML fixture, a hand-typed public/private pair would need to satisfy the
// curve's actual math, so every example generates its own agents at
// startup instead.
package demofixture

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/sage-x-project/didcomm-go/pkg/diddoc"
	"github.com/sage-x-project/didcomm-go/pkg/keyagreement"
	"github.com/sage-x-project/didcomm-go/pkg/plugin/memory"
)

// NewAgent generates an Ed25519 authentication key and a keyAgreement key
// on kt for did, returning a ready-to-use AgentFixture.
func NewAgent(did string, kt diddoc.KeyType) (memory.AgentFixture, error) {
	authPub, authPriv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return memory.AgentFixture{}, fmt.Errorf("demofixture: generate auth key: %w", err)
	}

	curve, err := keyagreement.Curve(kt)
	if err != nil {
		return memory.AgentFixture{}, err
	}

	kaPriv, err := curve.GenerateKey(rand.Reader)
	if err != nil {
		return memory.AgentFixture{}, fmt.Errorf("demofixture: generate key-agreement key: %w", err)
	}

	return memory.AgentFixture{
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
	}, nil
}
