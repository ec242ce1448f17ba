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

// Package jwe builds and parses the JWE envelope that backs DIDComm's
// Anoncrypt and Authcrypt modes: per-recipient ECDH-ES or ECDH-1PU key
// agreement, AES Key Wrap of the content encryption key, and AEAD content
// encryption with A256GCM, A256CBC-HS512, or XC20P. Only JSON general
// serialization is produced and parsed; all recipients of one JWE are
// assumed to share the same key-agreement curve, which is what curve
// negotiation in pkg/pack guarantees before this package is called.
package jwe

import (
	"crypto/ecdh"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/sage-x-project/didcomm-go/internal/zeroize"
	"github.com/sage-x-project/didcomm-go/pkg/aeskw"
	"github.com/sage-x-project/didcomm-go/pkg/diddoc"
	"github.com/sage-x-project/didcomm-go/pkg/keyagreement"
	"github.com/sage-x-project/didcomm-go/pkg/plugin"
	"golang.org/x/sync/errgroup"
)

// KeyAlgorithm is a JWE `alg` value this core implements for key
// management: ECDH-ES or ECDH-1PU key agreement, in both cases followed by
// AES-256 key wrap of the content encryption key.
type KeyAlgorithm string

const (
	ECDHES        KeyAlgorithm = "ECDH-ES+A256KW"
	ECDH1PU       KeyAlgorithm = "ECDH-1PU+A256KW"
)

// ProtectedHeader is the JWE protected header shared by every recipient
// record (JSON general serialization requires exactly one).
type ProtectedHeader struct {
	Alg  string          `json:"alg"`
	Enc  string          `json:"enc"`
	Typ  string          `json:"typ,omitempty"`
	Epk  json.RawMessage `json:"epk,omitempty"`
	Apu  string          `json:"apu,omitempty"`
	Apv  string          `json:"apv,omitempty"`
	Skid string          `json:"skid,omitempty"`
}

// RecipientHeader carries the per-recipient value that cannot live in the
// shared protected header: which recipient key this record targets.
type RecipientHeader struct {
	Kid string `json:"kid"`
}

// canonicalAPVRaw builds the spec.md §6 "apv" value before base64url
// encoding: the lexicographically sorted, comma-joined set of recipient
// verification method identifiers. It is the same for every recipient of
// one JWE and is what the HKDF info string binds into the KEK, which is
// what lets reordering the plaintext `to` list leave the derived keys
// unchanged regardless of list order — spec.md §8 invariant 6.
func canonicalAPVRaw(recipientKeyIDs []string) string {
	sorted := append([]string(nil), recipientKeyIDs...)
	sort.Strings(sorted)

	return strings.Join(sorted, ",")
}

// CanonicalAPV returns the base64url-encoded form of canonicalAPVRaw, the
// exact value callers should expect in a JWE protected header's "apv".
func CanonicalAPV(recipientKeyIDs []string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(canonicalAPVRaw(recipientKeyIDs)))
}

// Recipient is one entry in a JWE's "recipients" array.
type Recipient struct {
	Header       RecipientHeader `json:"header"`
	EncryptedKey string          `json:"encrypted_key"`
}

// Envelope is a JWE in JSON general serialization.
type Envelope struct {
	Protected  string      `json:"protected"`
	Recipients []Recipient `json:"recipients"`
	IV         string      `json:"iv"`
	Ciphertext string      `json:"ciphertext"`
	Tag        string      `json:"tag"`
}

// RecipientKey identifies one recipient's key-agreement verification
// method, as resolved by pkg/pack from a DID Document.
type RecipientKey struct {
	KeyID   string
	KeyType diddoc.KeyType
	Public  *ecdh.PublicKey
}

// SenderKey is the sender's static key-agreement key, required for
// Authcrypt (ECDH-1PU) and unused for Anoncrypt (ECDH-ES).
type SenderKey struct {
	KeyID   string
	Private *ecdh.PrivateKey
}

// EncryptParams collects everything Encrypt needs.
type EncryptParams struct {
	Plaintext  []byte
	ContentAlg ContentAlgorithm
	Recipients []RecipientKey
	// Sender is nil for Anoncrypt (ECDH-ES) and required for Authcrypt
	// (ECDH-1PU).
	Sender *SenderKey
}

// Encrypt builds a multi-recipient JWE. All entries in params.Recipients
// must share a curve (pkg/pack negotiates the curve before calling Encrypt
// and fails when no curve is common to all parties; it does not split
// recipients across multiple JWEs). Recipient
// key wrapping runs concurrently via errgroup, which degrades to
// sequential execution under GOMAXPROCS=1 (e.g. WASM) without special
// casing.
func Encrypt(params EncryptParams) (*Envelope, error) {
	if len(params.Recipients) == 0 {
		return nil, fmt.Errorf("jwe: %w: no recipients", plugin.ErrNoKey)
	}

	alg := ECDHES
	if params.Sender != nil {
		alg = ECDH1PU
	}

	ephemeralPriv, err := keyagreement.GenerateEphemeral(params.Recipients[0].KeyType)
	if err != nil {
		return nil, err
	}
	defer zeroize.Bytes(ephemeralPriv.Bytes())

	epkJSON, err := epkJSON(ephemeralPriv.PublicKey())
	if err != nil {
		return nil, err
	}

	recipientKeyIDs := make([]string, len(params.Recipients))
	for i, r := range params.Recipients {
		recipientKeyIDs[i] = r.KeyID
	}

	rawAPV := canonicalAPVRaw(recipientKeyIDs)

	header := ProtectedHeader{
		Alg: string(alg),
		Enc: string(params.ContentAlg),
		Typ: "application/didcomm-encrypted+json",
		Epk: epkJSON,
		Apv: base64.RawURLEncoding.EncodeToString([]byte(rawAPV)),
	}

	var rawAPU string
	if params.Sender != nil {
		rawAPU = params.Sender.KeyID
		header.Apu = base64.RawURLEncoding.EncodeToString([]byte(rawAPU))
		header.Skid = params.Sender.KeyID
	}

	protectedJSON, err := json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("jwe: marshal protected header: %w", err)
	}
	protectedB64 := base64.RawURLEncoding.EncodeToString(protectedJSON)

	cek, err := GenerateCEK(params.ContentAlg)
	if err != nil {
		return nil, err
	}

	kekLen := 32 // A256KW

	// algID fed to the KDF must be the content-encryption algorithm for
	// ECDH-1PU, not the key-wrap algorithm — spec.md §4.4 step 3 and §9's
	// deliberate quirk.
	algID := contentAlgIDForKDF(params.ContentAlg, alg)

	recipients := make([]Recipient, len(params.Recipients))

	g := new(errgroup.Group)
	for i, r := range params.Recipients {
		i, r := i, r
		g.Go(func() error {
			var (
				kek []byte
				err error
			)

			if params.Sender != nil {
				kek, err = keyagreement.ECDH1PU(ephemeralPriv, params.Sender.Private, r.Public, algID, rawAPU, rawAPV, kekLen)
			} else {
				kek, err = keyagreement.ECDHES(ephemeralPriv, r.Public, algID, rawAPU, rawAPV, kekLen)
			}
			if err != nil {
				return err
			}

			wrapped, err := aeskw.Wrap(kek, cek)
			zeroize.Bytes(kek)
			if err != nil {
				return err
			}

			recipients[i] = Recipient{
				Header:       RecipientHeader{Kid: r.KeyID},
				EncryptedKey: base64.RawURLEncoding.EncodeToString(wrapped),
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		zeroize.Bytes(cek)
		return nil, fmt.Errorf("jwe: wrap key for recipient: %w", err)
	}

	sealedContent, err := encryptContent(params.ContentAlg, cek, params.Plaintext, []byte(protectedB64))
	if err != nil {
		return nil, err
	}

	return &Envelope{
		Protected:  protectedB64,
		Recipients: recipients,
		IV:         base64.RawURLEncoding.EncodeToString(sealedContent.iv),
		Ciphertext: base64.RawURLEncoding.EncodeToString(sealedContent.ciphertext),
		Tag:        base64.RawURLEncoding.EncodeToString(sealedContent.tag),
	}, nil
}

// DecryptParams collects everything Decrypt needs to open one recipient's
// view of a JWE.
type DecryptParams struct {
	Envelope *Envelope
	// RecipientPriv is the local private key behind the matching
	// recipient record's "kid" (selection is pkg/unpack's job).
	RecipientPriv *ecdh.PrivateKey
	RecipientKID  string
	// SenderPub is required when the protected header's alg is
	// ECDH-1PU+A256KW (Authcrypt): pkg/unpack resolves it from the
	// document named by skid/apu before calling Decrypt.
	SenderPub *ecdh.PublicKey
}

// Decrypt opens params.Envelope for the recipient identified by
// params.RecipientKID, reconstructing the shared secret, deriving the KEK
// with the same HKDF parameters Encrypt used, unwrapping the CEK, and
// verifying+decrypting the content. Every failure — header parse, no
// matching recipient record, a RecipientKID absent from apv, key unwrap,
// tag mismatch — collapses to the
// single opaque plugin.ErrDecryptionFailed per spec.md §4.4's failure
// semantics; the codec never reveals which stage failed.
func Decrypt(params DecryptParams) ([]byte, error) {
	env := params.Envelope

	headerJSON, err := base64.RawURLEncoding.DecodeString(env.Protected)
	if err != nil {
		return nil, fmt.Errorf("jwe: %w", plugin.ErrDecryptionFailed)
	}

	var header ProtectedHeader
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, fmt.Errorf("jwe: %w", plugin.ErrDecryptionFailed)
	}

	var rec *Recipient
	for i := range env.Recipients {
		if env.Recipients[i].Header.Kid == params.RecipientKID {
			rec = &env.Recipients[i]
			break
		}
	}
	if rec == nil {
		return nil, fmt.Errorf("jwe: %w", plugin.ErrDecryptionFailed)
	}

	epkPub, err := parseEPK(header.Epk)
	if err != nil {
		return nil, fmt.Errorf("jwe: %w", plugin.ErrDecryptionFailed)
	}

	var rawAPU, rawAPV string
	if header.Apv != "" {
		decoded, err := base64.RawURLEncoding.DecodeString(header.Apv)
		if err != nil {
			return nil, fmt.Errorf("jwe: %w", plugin.ErrDecryptionFailed)
		}
		rawAPV = string(decoded)
	}
	if header.Apu != "" {
		decoded, err := base64.RawURLEncoding.DecodeString(header.Apu)
		if err != nil {
			return nil, fmt.Errorf("jwe: %w", plugin.ErrDecryptionFailed)
		}
		rawAPU = string(decoded)
	}

	// The recipient's own kid must be one of the identifiers the sender
	// bound into apv; a record outside that set is rejected.
	if !slices.Contains(strings.Split(rawAPV, ","), params.RecipientKID) {
		return nil, fmt.Errorf("jwe: %w", plugin.ErrDecryptionFailed)
	}

	contentAlg := ContentAlgorithm(header.Enc)

	algID := contentAlgIDForKDF(contentAlg, KeyAlgorithm(header.Alg))

	kekLen := 32 // A256KW

	var kek []byte

	switch KeyAlgorithm(header.Alg) {
	case ECDHES:
		kek, err = keyagreement.ECDHES(params.RecipientPriv, epkPub, algID, rawAPU, rawAPV, kekLen)
	case ECDH1PU:
		if params.SenderPub == nil {
			return nil, fmt.Errorf("jwe: %w", plugin.ErrDecryptionFailed)
		}
		kek, err = keyagreement.ECDH1PURecipient(params.RecipientPriv, epkPub, params.SenderPub, algID, rawAPU, rawAPV, kekLen)
	default:
		return nil, fmt.Errorf("jwe: %w", plugin.ErrDecryptionFailed)
	}
	if err != nil {
		return nil, fmt.Errorf("jwe: %w", plugin.ErrDecryptionFailed)
	}

	wrapped, err := base64.RawURLEncoding.DecodeString(rec.EncryptedKey)
	if err != nil {
		zeroize.Bytes(kek)
		return nil, fmt.Errorf("jwe: %w", plugin.ErrDecryptionFailed)
	}

	cek, err := aeskw.Unwrap(kek, wrapped)
	zeroize.Bytes(kek)
	if err != nil {
		return nil, fmt.Errorf("jwe: %w", plugin.ErrDecryptionFailed)
	}

	iv, err1 := base64.RawURLEncoding.DecodeString(env.IV)
	ciphertext, err2 := base64.RawURLEncoding.DecodeString(env.Ciphertext)
	tag, err3 := base64.RawURLEncoding.DecodeString(env.Tag)
	if err1 != nil || err2 != nil || err3 != nil {
		zeroize.Bytes(cek)
		return nil, fmt.Errorf("jwe: %w", plugin.ErrDecryptionFailed)
	}

	plaintext, err := decryptContent(contentAlg, cek, &sealed{iv: iv, ciphertext: ciphertext, tag: tag}, []byte(env.Protected))
	if err != nil {
		return nil, err
	}

	return plaintext, nil
}

// Serialize renders env as JSON general serialization wire bytes, the
// only JWE wire form this core produces (spec.md §6).
func Serialize(env *Envelope) ([]byte, error) {
	b, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("jwe: marshal envelope: %w", err)
	}

	return b, nil
}

// Parse parses JSON general serialization wire bytes into an Envelope.
func Parse(b []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("jwe: %w: %v", plugin.ErrSerialization, err)
	}

	return &env, nil
}
