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
	"context"
	"crypto/ed25519"
	"fmt"

	"github.com/sage-x-project/didcomm-go/pkg/diddoc"
	"github.com/sage-x-project/didcomm-go/pkg/plugin"
)

// Plugin is a plugin.DIDCommPlugin backed by a Store. It signs and
// verifies with Ed25519 and the NIST curves (ECDSA) and optionally
// delegates encryption to whatever plugin.Encryptor it is built with.
type Plugin struct {
	store     *Store
	encryptor plugin.Encryptor
}

// New builds a Plugin over store. encryptor may be nil, in which case
// Encryptor() returns nil and only Signed packing and JWS unpacking work.
func New(store *Store, encryptor plugin.Encryptor) *Plugin {
	return &Plugin{store: store, encryptor: encryptor}
}

// Resolve implements plugin.Resolver.
func (p *Plugin) Resolve(_ context.Context, did string) (*diddoc.Document, error) {
	return p.store.documentByID(did)
}

// Encryptor implements plugin.DIDCommPlugin.
func (p *Plugin) Encryptor() plugin.Encryptor {
	return p.encryptor
}

// Sign implements plugin.Signer. For Ed25519 keys it returns a raw
// EdDSA signature; for NIST curve keys it returns a fixed-width r||s
// ECDSA signature, the encoding pkg/jose/jws expects for ES256/384/512.
func (p *Plugin) Sign(_ context.Context, keyID string, payload []byte) ([]byte, string, error) {
	pk, err := p.store.privateKeyByID(keyID)
	if err != nil {
		return nil, "", err
	}

	switch pk.keyType {
	case diddoc.KeyTypeEd25519:
		sig := ed25519.Sign(pk.ed25519, payload)
		return sig, "EdDSA", nil
	case diddoc.KeyTypeP256, diddoc.KeyTypeP384, diddoc.KeyTypeP521:
		ecdsaKey, alg, err := ecdsaFromECDH(pk)
		if err != nil {
			return nil, "", err
		}
		sig, err := signECDSA(ecdsaKey, payload)
		if err != nil {
			return nil, "", fmt.Errorf("memory: sign: %w", err)
		}
		return sig, alg, nil
	default:
		return nil, "", fmt.Errorf("memory: %w: %s cannot sign", diddoc.ErrUnsupportedKey, pk.keyType)
	}
}

// Verify implements plugin.Signer against a resolved verification method's
// public key, rather than a locally held private key, so it works for
// any DID this Store can resolve, not just ones it holds secrets for.
func (p *Plugin) Verify(ctx context.Context, keyID string, payload, signature []byte) error {
	did := vmDID(keyID)

	doc, err := p.store.documentByID(did)
	if err != nil {
		return err
	}

	vm, err := doc.ByID(keyID)
	if err != nil {
		return fmt.Errorf("memory: %w: %s", plugin.ErrNoKey, err)
	}

	kt, raw, err := vm.Extract()
	if err != nil {
		return err
	}

	switch kt {
	case diddoc.KeyTypeEd25519:
		if !ed25519.Verify(ed25519.PublicKey(raw), payload, signature) {
			return fmt.Errorf("memory: %w", plugin.ErrSignatureInvalid)
		}
		return nil
	case diddoc.KeyTypeP256, diddoc.KeyTypeP384, diddoc.KeyTypeP521:
		pub, err := ecdsaPublicKeyFromRaw(kt, raw)
		if err != nil {
			return err
		}
		if !verifyECDSA(pub, payload, signature) {
			return fmt.Errorf("memory: %w", plugin.ErrSignatureInvalid)
		}
		return nil
	default:
		return fmt.Errorf("memory: %w: %s cannot verify", diddoc.ErrUnsupportedKey, kt)
	}
}

// vmDID returns the DID portion of a `<did>#<fragment>` identifier.
func vmDID(id string) string {
	for i, r := range id {
		if r == '#' {
			return id[:i]
		}
	}
	return id
}
