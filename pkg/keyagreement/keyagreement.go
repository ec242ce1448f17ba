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

// Package keyagreement implements ECDH-ES and ECDH-1PU key agreement
// across X25519, P-256, P-384, and P-521, and the DIDComm-specific
// ConcatKDF-style key derivation those two modes share, on top of the
// standard library's unified crypto/ecdh curve API.
package keyagreement

import (
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/sage-x-project/didcomm-go/internal/zeroize"
	"github.com/sage-x-project/didcomm-go/pkg/diddoc"
	"golang.org/x/crypto/hkdf"
)

// Curve returns the crypto/ecdh.Curve for kt, or an error for key types
// that don't participate in key agreement (Ed25519).
func Curve(kt diddoc.KeyType) (ecdh.Curve, error) {
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
		return nil, fmt.Errorf("keyagreement: %w: %s", diddoc.ErrUnsupportedKey, kt)
	}
}

// GenerateEphemeral returns a fresh ephemeral key pair on the curve for kt.
func GenerateEphemeral(kt diddoc.KeyType) (*ecdh.PrivateKey, error) {
	curve, err := Curve(kt)
	if err != nil {
		return nil, err
	}

	priv, err := curve.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("keyagreement: generate ephemeral key: %w", err)
	}

	return priv, nil
}

// ParsePublicKey parses raw public key bytes (32-byte X25519, or an
// uncompressed SEC1 point for a NIST curve) into a crypto/ecdh.PublicKey.
func ParsePublicKey(kt diddoc.KeyType, raw []byte) (*ecdh.PublicKey, error) {
	curve, err := Curve(kt)
	if err != nil {
		return nil, err
	}

	pub, err := curve.NewPublicKey(raw)
	if err != nil {
		return nil, fmt.Errorf("keyagreement: parse public key: %w", err)
	}

	return pub, nil
}

// sharedSecret runs ECDH and returns Z, zeroizing nothing of the inputs
// (callers own those lifetimes) but requiring the caller to zeroize the
// returned secret once it has been consumed by a KDF.
func sharedSecret(priv *ecdh.PrivateKey, pub *ecdh.PublicKey) ([]byte, error) {
	z, err := priv.ECDH(pub)
	if err != nil {
		return nil, fmt.Errorf("keyagreement: ecdh: %w", err)
	}

	return z, nil
}

// lengthPrefixed32 returns data prefixed with its length as a 32-bit
// big-endian integer, the encoding NIST SP 800-56A Concat KDF's OtherInfo
// fields use and the one DIDComm's info string reuses for alg/apu/apv.
func lengthPrefixed32(data []byte) []byte {
	out := make([]byte, 4+len(data))
	binary.BigEndian.PutUint32(out, uint32(len(data)))
	copy(out[4:], data)

	return out
}

// DeriveInfo builds the "info" string HKDF-Expand consumes for both
// ECDH-ES and ECDH-1PU:
//
//	lengthPrefixed32(algID) || lengthPrefixed32(apu) || lengthPrefixed32(apv) ||
//	    suppPubInfo || suppPrivInfo
//
// suppPubInfo is a 32-bit big-endian keydatalen in bits (always 256 for
// the AES-256 and A256CBC-HS512 keys this core derives); suppPrivInfo is
// always empty. algID is the JOSE `alg` value being agreed on — except
// for ECDH-1PU with key wrapping, where DIDComm's profile requires algID
// to be the content encryption algorithm (`enc`), not the key wrap
// algorithm, so two parties who only agree on `enc` still derive the same
// key even if they guessed different `alg` strings during negotiation.
func DeriveInfo(algID, apu, apv string) []byte {
	const keyDataLenBits = 256

	suppPubInfo := make([]byte, 4)
	binary.BigEndian.PutUint32(suppPubInfo, keyDataLenBits)

	info := make([]byte, 0, 64+len(algID)+len(apu)+len(apv))
	info = append(info, lengthPrefixed32([]byte(algID))...)
	info = append(info, lengthPrefixed32([]byte(apu))...)
	info = append(info, lengthPrefixed32([]byte(apv))...)
	info = append(info, suppPubInfo...)
	// suppPrivInfo is empty.

	return info
}

// DeriveKey runs HKDF-SHA-256 over ikm with the given info string and
// returns keyLen bytes, zeroizing ikm before returning.
func DeriveKey(ikm, info []byte, keyLen int) ([]byte, error) {
	defer zeroize.Bytes(ikm)

	r := hkdf.New(sha256.New, ikm, nil, info)

	out := make([]byte, keyLen)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("keyagreement: hkdf expand: %w", err)
	}

	return out, nil
}

// ECDHES derives a key-encryption key for a single recipient in
// Anoncrypt mode: Z comes only from the ephemeral sender key and the
// recipient's static public key.
func ECDHES(ephemeralPriv *ecdh.PrivateKey, recipientPub *ecdh.PublicKey, algID, apu, apv string, keyLen int) ([]byte, error) {
	z, err := sharedSecret(ephemeralPriv, recipientPub)
	if err != nil {
		return nil, err
	}

	return DeriveKey(z, DeriveInfo(algID, apu, apv), keyLen)
}

// ECDH1PU derives a key-encryption key for Authcrypt mode, per RFC
// "draft-madden-jose-ecdh-1pu": Ze (ephemeral-recipient) and Zs
// (sender-static-recipient) are computed separately and concatenated
// Ze || Zs before being fed to the KDF, so the recipient cannot derive
// the same key without the sender's long-term key agreement key, proving
// sender authenticity without a signature.
func ECDH1PU(ephemeralPriv *ecdh.PrivateKey, senderStaticPriv *ecdh.PrivateKey, recipientPub *ecdh.PublicKey, algID, apu, apv string, keyLen int) ([]byte, error) {
	ze, err := sharedSecret(ephemeralPriv, recipientPub)
	if err != nil {
		return nil, err
	}

	zs, err := sharedSecret(senderStaticPriv, recipientPub)
	if err != nil {
		zeroize.Bytes(ze)
		return nil, err
	}

	z := make([]byte, 0, len(ze)+len(zs))
	z = append(z, ze...)
	z = append(z, zs...)
	zeroize.Many(ze, zs)

	return DeriveKey(z, DeriveInfo(algID, apu, apv), keyLen)
}

// ECDH1PURecipient is the recipient-side mirror of ECDH1PU: it uses the
// recipient's static private key against the sender's ephemeral and
// static public keys.
func ECDH1PURecipient(recipientPriv *ecdh.PrivateKey, ephemeralPub, senderStaticPub *ecdh.PublicKey, algID, apu, apv string, keyLen int) ([]byte, error) {
	ze, err := sharedSecret(recipientPriv, ephemeralPub)
	if err != nil {
		return nil, err
	}

	zs, err := sharedSecret(recipientPriv, senderStaticPub)
	if err != nil {
		zeroize.Bytes(ze)
		return nil, err
	}

	z := make([]byte, 0, len(ze)+len(zs))
	z = append(z, ze...)
	z = append(z, zs...)
	zeroize.Many(ze, zs)

	return DeriveKey(z, DeriveInfo(algID, apu, apv), keyLen)
}
