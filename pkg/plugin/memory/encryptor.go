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
	"crypto/ecdh"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/sage-x-project/didcomm-go/pkg/diddoc"
	"github.com/sage-x-project/didcomm-go/pkg/jose/jwe"
	"github.com/sage-x-project/didcomm-go/pkg/keyagreement"
	"github.com/sage-x-project/didcomm-go/pkg/plugin"
)

// Encryptor is the reference plugin.Encryptor: it resolves recipient and
// sender key material from its Store and builds/parses JWEs via
// pkg/jose/jwe directly, exercising the "delegate to the core codec"
// path spec.md §4.1 permits.
type Encryptor struct {
	store *Store
}

// NewEncryptor builds an Encryptor over store.
func NewEncryptor(store *Store) *Encryptor {
	return &Encryptor{store: store}
}

// Encrypt implements plugin.Encryptor.
func (e *Encryptor) Encrypt(_ context.Context, req plugin.EncryptRequest) ([]byte, error) {
	if len(req.RecipientDIDs) == 0 {
		return nil, fmt.Errorf("memory: %w: no recipients", plugin.ErrNoKey)
	}

	contentAlg := jwe.ContentAlgorithm(req.ContentAlg)
	if contentAlg == "" {
		contentAlg = jwe.A256GCM
	}

	recipientDocs := make([]*diddoc.Document, len(req.RecipientDIDs))
	for i, did := range req.RecipientDIDs {
		doc, err := e.store.documentByID(did)
		if err != nil {
			return nil, err
		}
		recipientDocs[i] = doc
	}

	var senderDoc *diddoc.Document
	if req.Authenticated {
		if req.SenderKeyID == "" {
			return nil, fmt.Errorf("memory: %w: authcrypt requires a sender key id", plugin.ErrNoKey)
		}

		doc, err := e.store.documentByID(vmDID(req.SenderKeyID))
		if err != nil {
			return nil, err
		}
		senderDoc = doc
	}

	negotiating := recipientDocs
	if senderDoc != nil {
		negotiating = append(append([]*diddoc.Document{}, recipientDocs...), senderDoc)
	}

	curve, err := diddoc.SelectCommonCurve(negotiating)
	if err != nil {
		return nil, fmt.Errorf("memory: %w: %w", plugin.ErrAlgorithmMismatch, err)
	}

	recipients := make([]jwe.RecipientKey, len(recipientDocs))
	for i, doc := range recipientDocs {
		vm, err := diddoc.BestKeyAgreementVM(doc, curve)
		if err != nil {
			return nil, fmt.Errorf("memory: %w: %w", plugin.ErrAlgorithmMismatch, err)
		}

		kt, raw, err := vm.Extract()
		if err != nil {
			return nil, err
		}

		pub, err := keyagreement.ParsePublicKey(kt, raw)
		if err != nil {
			return nil, err
		}

		recipients[i] = jwe.RecipientKey{KeyID: vm.ID, KeyType: kt, Public: pub}
	}

	var sender *jwe.SenderKey
	if senderDoc != nil {
		vm, err := diddoc.BestKeyAgreementVM(senderDoc, curve)
		if err != nil {
			return nil, fmt.Errorf("memory: %w: %w", plugin.ErrAlgorithmMismatch, err)
		}

		pk, err := e.store.privateKeyByID(vm.ID)
		if err != nil {
			return nil, err
		}

		if pk.ecKey == nil {
			return nil, fmt.Errorf("memory: %w: %s has no key-agreement private key", plugin.ErrNoKey, vm.ID)
		}

		sender = &jwe.SenderKey{KeyID: vm.ID, Private: pk.ecKey}
	}

	env, err := jwe.Encrypt(jwe.EncryptParams{
		Plaintext:  req.Plaintext,
		ContentAlg: contentAlg,
		Recipients: recipients,
		Sender:     sender,
	})
	if err != nil {
		return nil, fmt.Errorf("memory: %w", err)
	}

	return jwe.Serialize(env)
}

// Decrypt implements plugin.Encryptor.
func (e *Encryptor) Decrypt(_ context.Context, envelope []byte, recipientHint string) (plugin.DecryptResult, error) {
	env, err := jwe.Parse(envelope)
	if err != nil {
		return plugin.DecryptResult{}, fmt.Errorf("memory: %w", plugin.ErrDecryptionFailed)
	}

	headerJSON, err := base64.RawURLEncoding.DecodeString(env.Protected)
	if err != nil {
		return plugin.DecryptResult{}, fmt.Errorf("memory: %w", plugin.ErrDecryptionFailed)
	}

	var header jwe.ProtectedHeader
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return plugin.DecryptResult{}, fmt.Errorf("memory: %w", plugin.ErrDecryptionFailed)
	}

	senderPubKey, err := e.resolveSenderPublicKey(header)
	if err != nil {
		return plugin.DecryptResult{}, err
	}

	var senderKeyID string
	if header.Skid != "" {
		senderKeyID = header.Skid
	}

	recipientDoc, err := e.store.documentByID(recipientHint)
	if err != nil {
		return plugin.DecryptResult{}, fmt.Errorf("memory: %w", plugin.ErrNoKey)
	}

	localVMs, err := recipientDoc.Resolve(diddoc.KeyAgreement)
	if err != nil {
		return plugin.DecryptResult{}, fmt.Errorf("memory: %w", plugin.ErrNoKey)
	}

	localKids := make(map[string]bool, len(localVMs))
	for _, vm := range localVMs {
		localKids[vm.ID] = true
	}

	// When several records match the hint's keyAgreement keys, the first
	// one in envelope order is used; curves are not ranked here.
	var matched *jwe.Recipient
	for i := range env.Recipients {
		if localKids[env.Recipients[i].Header.Kid] {
			matched = &env.Recipients[i]
			break
		}
	}
	if matched == nil {
		return plugin.DecryptResult{}, fmt.Errorf("memory: %w: no recipient record matches %s", plugin.ErrNoKey, recipientHint)
	}

	pk, err := e.store.privateKeyByID(matched.Header.Kid)
	if err != nil {
		return plugin.DecryptResult{}, fmt.Errorf("memory: %w", plugin.ErrNoKey)
	}
	if pk.ecKey == nil {
		return plugin.DecryptResult{}, fmt.Errorf("memory: %w: %s is not a key-agreement key", plugin.ErrNoKey, matched.Header.Kid)
	}

	plaintext, err := jwe.Decrypt(jwe.DecryptParams{
		Envelope:      env,
		RecipientPriv: pk.ecKey,
		RecipientKID:  matched.Header.Kid,
		SenderPub:     senderPubKey,
	})
	if err != nil {
		return plugin.DecryptResult{}, err
	}

	return plugin.DecryptResult{Plaintext: plaintext, AuthenticatedKeyID: senderKeyID}, nil
}

// resolveSenderPublicKey fetches the sender's key-agreement public key
// for an Authcrypt (ECDH-1PU) envelope from its skid header, via this
// Store's own Resolver. Anoncrypt envelopes carry no skid and need none.
func (e *Encryptor) resolveSenderPublicKey(header jwe.ProtectedHeader) (*ecdh.PublicKey, error) {
	if header.Alg != string(jwe.ECDH1PU) {
		return nil, nil
	}

	if header.Skid == "" {
		return nil, fmt.Errorf("memory: %w", plugin.ErrDecryptionFailed)
	}

	doc, err := e.store.documentByID(vmDID(header.Skid))
	if err != nil {
		return nil, fmt.Errorf("memory: %w", plugin.ErrDecryptionFailed)
	}

	vm, err := doc.ByID(header.Skid)
	if err != nil {
		return nil, fmt.Errorf("memory: %w", plugin.ErrDecryptionFailed)
	}

	kt, raw, err := vm.Extract()
	if err != nil {
		return nil, fmt.Errorf("memory: %w", plugin.ErrDecryptionFailed)
	}

	pub, err := keyagreement.ParsePublicKey(kt, raw)
	if err != nil {
		return nil, fmt.Errorf("memory: %w", plugin.ErrDecryptionFailed)
	}

	return pub, nil
}
