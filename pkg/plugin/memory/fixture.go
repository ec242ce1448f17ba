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

// Package memory is a reference DIDCommPlugin for tests, examples, and
// hosts that don't yet have a real DID method integrated: it resolves DID
// Documents and private keys from an in-memory fixture set (typically
// loaded from YAML) instead of a ledger or registry.
package memory

import (
	"crypto/ecdh"
	"crypto/ed25519"
	"fmt"

	"github.com/sage-x-project/didcomm-go/pkg/diddoc"
	"gopkg.in/yaml.v3"
)

// KeyFixture is one entry in a YAML fixture file: a verification method's
// public material plus, for this party's own keys, its private scalar.
type KeyFixture struct {
	ID         string `yaml:"id"`
	Type       string `yaml:"type"`
	Curve      string `yaml:"curve"`
	PrivateKey string `yaml:"privateKey,omitempty"`
	PublicKey  string `yaml:"publicKey,omitempty"`
}

// AgentFixture describes one DID's document and, optionally, its private
// keys (present only for agents this process acts as).
type AgentFixture struct {
	DID             string       `yaml:"did"`
	Keys            []KeyFixture `yaml:"keys"`
	Authentication  []string     `yaml:"authentication"`
	AssertionMethod []string     `yaml:"assertionMethod,omitempty"`
	KeyAgreement    []string     `yaml:"keyAgreement"`
}

// FixtureSet is the top-level shape of a YAML fixture file: a list of
// agents this reference plugin can resolve and, for the ones it holds
// private keys for, sign and decrypt as.
type FixtureSet struct {
	Agents []AgentFixture `yaml:"agents"`
}

// ParseFixtureSet decodes YAML fixture bytes into a FixtureSet.
func ParseFixtureSet(b []byte) (*FixtureSet, error) {
	var fs FixtureSet

	if err := yaml.Unmarshal(b, &fs); err != nil {
		return nil, fmt.Errorf("memory: parse fixture set: %w", err)
	}

	return &fs, nil
}

// privateKey is the decoded form of a KeyFixture's PrivateKey: an Ed25519
// signing key, or a crypto/ecdh key for any of the key-agreement curves
// (X25519 included, since crypto/ecdh models it as a Curve like the NIST
// curves).
type privateKey struct {
	keyType diddoc.KeyType
	ed25519 ed25519.PrivateKey
	ecKey   *ecdh.PrivateKey
}
