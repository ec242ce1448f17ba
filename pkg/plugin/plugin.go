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

// Package plugin defines the host-supplied contract that the pack/unpack
// pipelines compile against: resolving DIDs, signing and verifying with a
// DID's authentication keys, and (optionally) delegating the encryption
// step itself to a host that has its own key-management story. A host
// supplies an implementation of DIDCommPlugin; pkg/plugin/memory is a
// reference implementation backed by in-memory fixtures.
package plugin

import (
	"context"

	"github.com/sage-x-project/didcomm-go/pkg/diddoc"
)

// Resolver resolves a DID to its DID Document. Implementations typically
// call out to a DID method's registry (a ledger, a well-known HTTPS
// endpoint, a local cache) and so take a context for cancellation.
type Resolver interface {
	Resolve(ctx context.Context, did string) (*diddoc.Document, error)
}

// Signer signs and verifies with a DID's authentication keys. keyID is a
// full verification method identifier (`<did>#<fragment>`) as returned by
// diddoc.Document.Resolve.
type Signer interface {
	// Sign returns a raw signature over payload using the private key
	// behind keyID, plus the JWS `alg` value that signature was produced
	// with.
	Sign(ctx context.Context, keyID string, payload []byte) (signature []byte, alg string, error error)

	// Verify checks a raw signature over payload against the public key
	// behind keyID.
	Verify(ctx context.Context, keyID string, payload, signature []byte) error
}

// Encryptor performs the JWE construction and parsing that pkg/pack and
// pkg/unpack delegate to rather than doing themselves, because both need
// a private key-agreement scalar the Signer/Resolver pair never exposes:
// an ephemeral key for Anoncrypt, or the sender's static keyAgreement key
// for Authcrypt. pkg/plugin/memory's implementation resolves that
// material from its own store and calls pkg/jose/jwe directly — the
// "implementations MAY delegate to the core's own JWE codec" escape
// hatch in spec.md §4.1. A host whose keys live behind an HSM implements
// the same interface against its own ECDH/unwrap primitives instead.
type Encryptor interface {
	Encrypt(ctx context.Context, req EncryptRequest) ([]byte, error)

	// Decrypt opens envelope for the local identity named by
	// recipientHint (one of this host's own DIDs): it selects the
	// recipient record whose kid is a keyAgreement VM of that DID,
	// fails NoKey if none matches, and otherwise performs the full
	// JWE decode path.
	Decrypt(ctx context.Context, envelope []byte, recipientHint string) (DecryptResult, error)
}

// EncryptRequest carries the inputs an Encryptor needs to build a JWE,
// mirroring the parameters pkg/pack collects from a Pack call.
type EncryptRequest struct {
	SenderKeyID    string
	RecipientDIDs  []string
	Plaintext      []byte
	ContentAlg     string
	Authenticated  bool
}

// DecryptResult is what an Encryptor's Decrypt returns on success.
type DecryptResult struct {
	Plaintext          []byte
	AuthenticatedKeyID string
}

// DIDCommPlugin aggregates the host capabilities the pack/unpack pipelines
// need. Encryptor may be nil, in which case pkg/pack and pkg/unpack reject
// Anoncrypt/Authcrypt packing and JWE unpacking with ErrPlugin.
type DIDCommPlugin interface {
	Resolver
	Signer
	Encryptor() Encryptor
}
