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

import "errors"

// ErrUnsupportedKey is returned when a verification method's key type or
// curve is not one this core implements, rather than guessing at its
// meaning.
var ErrUnsupportedKey = errors.New("unsupported key type")

// ErrNoCommonKeyAgreement is returned when no single curve is offered
// under the keyAgreement relationship by every document a caller is
// negotiating across (spec.md §4.2(a)'s "fail with NoCommonKeyAgreement
// otherwise").
var ErrNoCommonKeyAgreement = errors.New("no common key-agreement curve")
