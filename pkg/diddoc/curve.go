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

package diddoc

import "fmt"

// KeyAgreementCurves returns the distinct KeyTypes d offers under its
// keyAgreement relationship. Verification methods with a key encoding
// this core cannot parse are skipped rather than failing the whole call;
// a document that advertises one key type this core understands and one
// it doesn't should still negotiate on the former.
func (d *Document) KeyAgreementCurves() ([]KeyType, error) {
	vms, err := d.Resolve(KeyAgreement)
	if err != nil {
		return nil, err
	}

	seen := make(map[KeyType]bool, len(vms))
	out := make([]KeyType, 0, len(vms))

	for i := range vms {
		kt, _, err := vms[i].Extract()
		if err != nil {
			continue
		}

		if !seen[kt] {
			seen[kt] = true
			out = append(out, kt)
		}
	}

	return out, nil
}

// SelectCommonCurve picks the key-agreement curve every document in docs
// offers, per spec.md §4.2(a): X25519 if all of them advertise it, else
// the highest-grade NIST curve common to all of them. docs is the set of
// all parties that must agree on one curve — recipients for Anoncrypt,
// recipients plus the sender's own document for Authcrypt.
func SelectCommonCurve(docs []*Document) (KeyType, error) {
	if len(docs) == 0 {
		return KeyTypeUnknown, fmt.Errorf("diddoc: %w: no documents to negotiate across", ErrNoCommonKeyAgreement)
	}

	counts := make(map[KeyType]int)

	for _, doc := range docs {
		curves, err := doc.KeyAgreementCurves()
		if err != nil {
			return KeyTypeUnknown, err
		}

		for _, kt := range curves {
			counts[kt]++
		}
	}

	n := len(docs)

	if counts[KeyTypeX25519] == n {
		return KeyTypeX25519, nil
	}

	var sharedNIST []KeyType
	for _, kt := range []KeyType{KeyTypeP256, KeyTypeP384, KeyTypeP521} {
		if counts[kt] == n {
			sharedNIST = append(sharedNIST, kt)
		}
	}

	if len(sharedNIST) == 0 {
		return KeyTypeUnknown, fmt.Errorf("diddoc: %w", ErrNoCommonKeyAgreement)
	}

	return HighestSecurityLevel(sharedNIST)
}

// BestKeyAgreementVM returns doc's keyAgreement verification method on
// curve kt. If more than one verification method shares the curve, the
// first (document order) is used.
func BestKeyAgreementVM(doc *Document, kt KeyType) (*VerificationMethod, error) {
	vms, err := doc.Resolve(KeyAgreement)
	if err != nil {
		return nil, err
	}

	for i := range vms {
		vmKT, _, err := vms[i].Extract()
		if err != nil {
			continue
		}

		if vmKT == kt {
			return &vms[i], nil
		}
	}

	return nil, fmt.Errorf("diddoc: %w: %s has no %s keyAgreement key", ErrNoCommonKeyAgreement, doc.ID, kt)
}
