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

// Package didcommgo provides version information for didcomm-go.
package didcommgo

const (
	// Version is the current version of didcomm-go.
	Version = "0.1.0-alpha"

	// DIDCommVersion is the DIDComm messaging specification version this
	// core implements the envelope/pack/unpack algorithms of.
	// See: https://identity.foundation/didcomm-messaging/spec/
	DIDCommVersion = "2.1"
)

// VersionInfo contains detailed version information.
type VersionInfo struct {
	Version        string
	DIDCommVersion string
}

// GetVersionInfo returns detailed version information.
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:        Version,
		DIDCommVersion: DIDCommVersion,
	}
}
