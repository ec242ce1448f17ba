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

package memory

import (
	"crypto/ecdh"
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/sage-x-project/didcomm-go/pkg/diddoc"
	"github.com/sage-x-project/didcomm-go/pkg/plugin"
)

func curveByName(name string) (diddoc.KeyType, error) {
	switch name {
	case "Ed25519":
		return diddoc.KeyTypeEd25519, nil
	case "X25519":
		return diddoc.KeyTypeX25519, nil
	case "P-256":
		return diddoc.KeyTypeP256, nil
	case "P-384":
		return diddoc.KeyTypeP384, nil
	case "P-521":
		return diddoc.KeyTypeP521, nil
	default:
		return diddoc.KeyTypeUnknown, fmt.Errorf("memory: %w: curve %q", diddoc.ErrUnsupportedKey, name)
	}
}

func ecdhCurve(kt diddoc.KeyType) (ecdh.Curve, error) {
	switch kt {
	case diddoc.KeyTypeX25519:
		return ecdh.X25519(), nil
	case diddoc.KeyTypeP256:
		return ecdh.P256(), nil
	case diddoc.KeyTypeP384:
		return ecdh.P384(), nil
	case diddoc.KeyTypeP521:
		return ecdh.P521(), nil
	default:
		return nil, fmt.Errorf("memory: %w: %s has no ECDH curve", diddoc.ErrUnsupportedKey, kt)
	}
}

// Store holds the decoded form of a FixtureSet: DID Documents ready for
// Resolve, and the private keys this process can sign and decrypt with,
// indexed by verification method ID.
type Store struct {
	mu        sync.RWMutex
	documents map[string]*diddoc.Document
	privKeys  map[string]*privateKey
}

// NewStore builds a Store from a parsed FixtureSet, decoding every key
// fixture up front so Resolve/Sign/Decrypt never hit a decode error later.
func NewStore(fs *FixtureSet) (*Store, error) {
	s := &Store{
		documents: make(map[string]*diddoc.Document),
		privKeys:  make(map[string]*privateKey),
	}

	for _, agent := range fs.Agents {
		doc := &diddoc.Document{
			ID:              agent.DID,
			Authentication:  agent.Authentication,
			AssertionMethod: agent.AssertionMethod,
			KeyAgreement:    agent.KeyAgreement,
		}

		for _, kf := range agent.Keys {
			kt, err := curveByName(kf.Curve)
			if err != nil {
				return nil, err
			}

			if kf.PublicKey != "" {
				raw, err := base64.RawURLEncoding.DecodeString(kf.PublicKey)
				if err != nil {
					return nil, fmt.Errorf("memory: decode public key %q: %w", kf.ID, err)
				}

				jwk, err := diddoc.JWKFromPublicKeyBytes(kt, raw)
				if err != nil {
					return nil, fmt.Errorf("memory: build jwk for %q: %w", kf.ID, err)
				}

				doc.VerificationMethod = append(doc.VerificationMethod, diddoc.VerificationMethod{
					ID:           kf.ID,
					Type:         kf.Type,
					Controller:   agent.DID,
					PublicKeyJWK: jwk,
				})
			}

			if kf.PrivateKey != "" {
				pk, err := decodePrivateKey(kt, kf.PrivateKey)
				if err != nil {
					return nil, fmt.Errorf("memory: decode private key %q: %w", kf.ID, err)
				}

				s.privKeys[kf.ID] = pk
			}
		}

		s.documents[agent.DID] = doc
	}

	return s, nil
}

func decodePrivateKey(kt diddoc.KeyType, encoded string) (*privateKey, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}

	switch kt {
	case diddoc.KeyTypeEd25519:
		if len(raw) != ed25519.SeedSize {
			return nil, fmt.Errorf("ed25519 seed must be %d bytes, got %d", ed25519.SeedSize, len(raw))
		}
		return &privateKey{keyType: kt, ed25519: ed25519.NewKeyFromSeed(raw)}, nil
	case diddoc.KeyTypeX25519, diddoc.KeyTypeP256, diddoc.KeyTypeP384, diddoc.KeyTypeP521:
		curve, err := ecdhCurve(kt)
		if err != nil {
			return nil, err
		}
		ecdhKey, err := curve.NewPrivateKey(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s private key: %w", kt, err)
		}
		return &privateKey{keyType: kt, ecKey: ecdhKey}, nil
	default:
		return nil, fmt.Errorf("memory: %w: %s", diddoc.ErrUnsupportedKey, kt)
	}
}

// documentByID looks up a parsed Document.
func (s *Store) documentByID(did string) (*diddoc.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[did]
	if !ok {
		return nil, fmt.Errorf("memory: %w: %s", plugin.ErrResolution, did)
	}

	return doc, nil
}

// privateKeyByID looks up a decoded private key fixture by verification
// method ID.
func (s *Store) privateKeyByID(keyID string) (*privateKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pk, ok := s.privKeys[keyID]
	if !ok {
		return nil, fmt.Errorf("memory: %w: no private key for %s", plugin.ErrNoKey, keyID)
	}

	return pk, nil
}
