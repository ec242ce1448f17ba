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
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"math/big"

	"github.com/sage-x-project/didcomm-go/pkg/diddoc"
)

// This Store keeps NIST curve private keys as crypto/ecdh scalars because
// that is what key agreement needs; ecdsa.PrivateKey has no conversion
// from one, so signing reconstructs it from the raw scalar and the
// curve's base point, the same way a key fixture loader for any DID
// method that only publishes raw key bytes would have to.

func nistCurve(kt diddoc.KeyType) (elliptic.Curve, string, hash.Hash, error) {
	switch kt {
	case diddoc.KeyTypeP256:
		return elliptic.P256(), "ES256", sha256.New(), nil
	case diddoc.KeyTypeP384:
		return elliptic.P384(), "ES384", sha512.New384(), nil
	case diddoc.KeyTypeP521:
		return elliptic.P521(), "ES512", sha512.New(), nil
	default:
		return nil, "", nil, fmt.Errorf("memory: %w: %s is not a NIST curve", diddoc.ErrUnsupportedKey, kt)
	}
}

func ecdsaFromECDH(pk *privateKey) (*ecdsa.PrivateKey, string, error) {
	curve, alg, _, err := nistCurve(pk.keyType)
	if err != nil {
		return nil, "", err
	}

	d := new(big.Int).SetBytes(pk.ecKey.Bytes())
	x, y := curve.ScalarBaseMult(d.Bytes())

	priv := &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{Curve: curve, X: x, Y: y},
		D:         d,
	}

	return priv, alg, nil
}

func ecdsaPublicKeyFromRaw(kt diddoc.KeyType, raw []byte) (*ecdsa.PublicKey, error) {
	curve, _, _, err := nistCurve(kt)
	if err != nil {
		return nil, err
	}

	x, y := elliptic.Unmarshal(curve, raw)
	if x == nil {
		return nil, fmt.Errorf("memory: invalid uncompressed point for %s", kt)
	}

	return &ecdsa.PublicKey{Curve: curve, X: x, Y: y}, nil
}

func digestFor(kt diddoc.KeyType, payload []byte) ([]byte, error) {
	_, _, h, err := nistCurve(kt)
	if err != nil {
		return nil, err
	}
	h.Write(payload)
	return h.Sum(nil), nil
}

// signECDSA returns a fixed-width r||s signature (the encoding
// pkg/jose/jws uses for ES256/384/512), not ASN.1 DER.
func signECDSA(priv *ecdsa.PrivateKey, payload []byte) ([]byte, error) {
	kt, err := keyTypeForCurve(priv.Curve)
	if err != nil {
		return nil, err
	}

	digest, err := digestFor(kt, payload)
	if err != nil {
		return nil, err
	}

	r, s, err := ecdsa.Sign(rand.Reader, priv, digest)
	if err != nil {
		return nil, err
	}

	size := (priv.Curve.Params().BitSize + 7) / 8
	out := make([]byte, 2*size)
	r.FillBytes(out[:size])
	s.FillBytes(out[size:])

	return out, nil
}

func verifyECDSA(pub *ecdsa.PublicKey, payload, signature []byte) bool {
	size := (pub.Curve.Params().BitSize + 7) / 8
	if len(signature) != 2*size {
		return false
	}

	kt, err := keyTypeForCurve(pub.Curve)
	if err != nil {
		return false
	}

	digest, err := digestFor(kt, payload)
	if err != nil {
		return false
	}

	r := new(big.Int).SetBytes(signature[:size])
	s := new(big.Int).SetBytes(signature[size:])

	return ecdsa.Verify(pub, digest, r, s)
}

func keyTypeForCurve(curve elliptic.Curve) (diddoc.KeyType, error) {
	switch curve {
	case elliptic.P256():
		return diddoc.KeyTypeP256, nil
	case elliptic.P384():
		return diddoc.KeyTypeP384, nil
	case elliptic.P521():
		return diddoc.KeyTypeP521, nil
	default:
		return diddoc.KeyTypeUnknown, fmt.Errorf("memory: %w: unrecognized curve", diddoc.ErrUnsupportedKey)
	}
}
