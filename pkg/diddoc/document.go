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

// Package diddoc models the minimal subset of a W3C DID Document this core
// consumes, and the utilities to pull verification-relationship key
// material out of one: resolving string references against
// verificationMethod, decoding publicKeyJwk/publicKeyMultibase, and ranking
// curves so the pack/unpack pipelines can pick the strongest one both ends
// of a conversation support.
package diddoc

import "fmt"

// Relationship is one of the named verification-method relationship sets
// this core cares about.
type Relationship string

const (
	// Authentication verification methods sign outgoing messages in Signed
	// mode and verify them in unpack.
	Authentication Relationship = "authentication"
	// AssertionMethod is resolved for completeness; the pack/unpack
	// pipelines do not use it directly.
	AssertionMethod Relationship = "assertionMethod"
	// KeyAgreement verification methods participate in ECDH for
	// Anoncrypt/Authcrypt.
	KeyAgreement Relationship = "keyAgreement"
)

// Document is a DID Document as consumed by this core: a subject
// identifier, its verification methods, and the named relationship sets
// that reference them by fragment or full identifier.
type Document struct {
	ID                 string               `json:"id"`
	VerificationMethod []VerificationMethod `json:"verificationMethod,omitempty"`
	Authentication     []string             `json:"authentication,omitempty"`
	AssertionMethod    []string             `json:"assertionMethod,omitempty"`
	KeyAgreement       []string             `json:"keyAgreement,omitempty"`
}

// VerificationMethod is a single entry in a DID Document's
// verificationMethod array.
type VerificationMethod struct {
	ID                 string `json:"id"`
	Type               string `json:"type"`
	Controller         string `json:"controller"`
	PublicKeyJWK       *JWK   `json:"publicKeyJwk,omitempty"`
	PublicKeyMultibase string `json:"publicKeyMultibase,omitempty"`
}

// relationshipIDs returns the raw reference list for rel.
func (d *Document) relationshipIDs(rel Relationship) ([]string, error) {
	switch rel {
	case Authentication:
		return d.Authentication, nil
	case AssertionMethod:
		return d.AssertionMethod, nil
	case KeyAgreement:
		return d.KeyAgreement, nil
	default:
		return nil, fmt.Errorf("diddoc: unknown relationship %q", rel)
	}
}

// Resolve returns the ordered list of verification methods referenced by
// rel, resolving string references against VerificationMethod. A reference
// may be a full `<did>#<fragment>` identifier or a bare `#<fragment>`; both
// forms are resolved against this document only. A reference that does not
// resolve to an entry in VerificationMethod, or whose owning DID does not
// match d.ID, is rejected rather than silently skipped.
func (d *Document) Resolve(rel Relationship) ([]VerificationMethod, error) {
	ids, err := d.relationshipIDs(rel)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]VerificationMethod, len(d.VerificationMethod))
	for _, vm := range d.VerificationMethod {
		byID[vm.ID] = vm
	}

	out := make([]VerificationMethod, 0, len(ids))

	for _, ref := range ids {
		full := ref
		if len(ref) > 0 && ref[0] == '#' {
			full = d.ID + ref
		}

		vm, ok := byID[full]
		if !ok {
			return nil, fmt.Errorf("diddoc: %s relationship references %q, not found in verificationMethod", rel, ref)
		}

		if vmDID(vm.ID) != d.ID {
			return nil, fmt.Errorf("diddoc: %s relationship reference %q points outside document %q", rel, ref, d.ID)
		}

		out = append(out, vm)
	}

	return out, nil
}

// vmDID returns the DID portion of a `<did>#<fragment>` verification
// method identifier.
func vmDID(id string) string {
	for i, r := range id {
		if r == '#' {
			return id[:i]
		}
	}

	return id
}

// ByID returns the single verification method with the given full
// identifier, or an error if none matches.
func (d *Document) ByID(id string) (VerificationMethod, error) {
	for _, vm := range d.VerificationMethod {
		if vm.ID == id {
			return vm, nil
		}
	}

	return VerificationMethod{}, fmt.Errorf("diddoc: verification method %q not found", id)
}
