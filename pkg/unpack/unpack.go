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

// Package unpack implements the Unpack pipeline: envelope bytes become a
// plaintext Message plus a metadata record describing how the envelope
// authenticated itself. Shape detection and DID/key resolution happen
// here; the actual JWE decode is delegated to the plugin's Encryptor for
// the same reason pkg/pack delegates encryption to it.
package unpack

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sage-x-project/didcomm-go/pkg/envelope"
	"github.com/sage-x-project/didcomm-go/pkg/jose/jws"
	"github.com/sage-x-project/didcomm-go/pkg/message"
	"github.com/sage-x-project/didcomm-go/pkg/plugin"
	"go.uber.org/zap"
)

// Metadata describes how an unpacked envelope authenticated itself.
type Metadata struct {
	// AuthenticatedSender is the DID whose key produced a verified
	// signature or authenticated key-agreement binding, or "" if the
	// envelope carried no such authentication (plain Anoncrypt).
	AuthenticatedSender string
	// Encrypted is true when the top-level envelope was a JWE.
	Encrypted bool
	// Signed is true when a JWS was verified somewhere in the envelope,
	// at the top level or nested inside a decrypted JWE.
	Signed bool
}

// Options configures a single Unpack call.
type Options struct {
	// RecipientHint is one of the caller's own DIDs, used to select
	// which recipient record of a JWE to decrypt with. Required when the
	// envelope turns out to be a JWE; ignored for a top-level JWS.
	RecipientHint string
	// ExpirySlack allows a message's expires_time to be this far in the
	// past before Unpack rejects it with plugin.ErrExpired. Zero means
	// no slack, per spec.md §4.3.
	ExpirySlack time.Duration
	// Logger receives Debug-level pipeline traces. A nil Logger is
	// treated as zap.NewNop().
	Logger *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Unpack detects env's shape, authenticates and decrypts/verifies as
// needed, and returns the plaintext Message.
func Unpack(ctx context.Context, env []byte, plg plugin.DIDCommPlugin, opts Options) (*message.Message, Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, Metadata{}, err
	}

	log := opts.logger()

	shape, err := envelope.Detect(env)
	if err != nil {
		return nil, Metadata{}, err
	}

	var meta Metadata
	var payload []byte

	switch shape {
	case envelope.ShapeJWE:
		meta.Encrypted = true

		if opts.RecipientHint == "" {
			return nil, Metadata{}, fmt.Errorf("unpack: %w: a recipient hint is required to open a JWE", plugin.ErrNoKey)
		}

		enc := plg.Encryptor()
		if enc == nil {
			return nil, Metadata{}, fmt.Errorf("unpack: %w: plugin has no Encryptor, cannot open a JWE", plugin.ErrPlugin)
		}

		result, err := enc.Decrypt(ctx, env, opts.RecipientHint)
		if err != nil {
			return nil, Metadata{}, err
		}

		if result.AuthenticatedKeyID != "" {
			meta.AuthenticatedSender = vmDID(result.AuthenticatedKeyID)
		}

		payload = result.Plaintext

		log.Debug("jwe opened",
			zap.String("recipient_hint", opts.RecipientHint),
			zap.Bool("authenticated", result.AuthenticatedKeyID != ""),
		)

	case envelope.ShapeJWSCompact, envelope.ShapeJWSGeneral:
		inner, authenticatedBy, verifyErr := verifyJWS(ctx, plg, env)
		if verifyErr != nil {
			return nil, Metadata{}, verifyErr
		}

		meta.Signed = true
		meta.AuthenticatedSender = authenticatedBy
		payload = inner

	default:
		return nil, Metadata{}, fmt.Errorf("unpack: %w: unrecognized envelope shape", plugin.ErrSerialization)
	}

	// A decrypted JWE's plaintext may itself be a JWS (sign-then-encrypt).
	// Verification of that nested signature is mandatory, not optional:
	// a missing or invalid inner signature must surface as
	// SignatureInvalid, never be silently treated as "just decrypted".
	if meta.Encrypted {
		if nestedShape, detectErr := envelope.Detect(payload); detectErr == nil &&
			(nestedShape == envelope.ShapeJWSCompact || nestedShape == envelope.ShapeJWSGeneral) {

			inner, authenticatedBy, verifyErr := verifyJWS(ctx, plg, payload)
			if verifyErr != nil {
				return nil, Metadata{}, verifyErr
			}

			meta.Signed = true
			meta.AuthenticatedSender = authenticatedBy
			payload = inner
		}
	}

	msg, err := message.Unmarshal(payload)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("unpack: %w: %v", plugin.ErrSerialization, err)
	}

	// msg.From is the plaintext's own claim and is returned as-is; callers
	// must treat meta.AuthenticatedSender, not msg.From, as the party
	// cryptographically responsible for this message.

	if err := checkExpiry(msg, opts.ExpirySlack); err != nil {
		return nil, Metadata{}, err
	}

	return msg, meta, nil
}

// verifyJWS parses raw as a JWS, verifies every signature, and returns
// the decoded payload plus the DID that authenticated it. Exactly one
// signer is expected; pkg/pack never produces more, and a second
// signer's identity would be ambiguous to report as "the" sender.
func verifyJWS(ctx context.Context, verifier plugin.Signer, raw []byte) ([]byte, string, error) {
	env, err := jws.Parse(raw)
	if err != nil {
		return nil, "", err
	}

	payload, keyIDs, err := jws.Verify(ctx, verifier, env)
	if err != nil {
		return nil, "", err
	}

	if len(keyIDs) == 0 {
		return nil, "", fmt.Errorf("unpack: %w: no verified signer", plugin.ErrSignatureInvalid)
	}

	return payload, vmDID(keyIDs[0]), nil
}

// vmDID returns the DID portion of a `<did>#<fragment>` verification
// method identifier, or id unchanged if it carries no fragment.
func vmDID(id string) string {
	if i := strings.IndexByte(id, '#'); i >= 0 {
		return id[:i]
	}
	return id
}

// checkExpiry rejects msg when its expires_time is more than slack in
// the past. A missing expires_time never expires.
func checkExpiry(msg *message.Message, slack time.Duration) error {
	if msg.ExpiresTime == nil {
		return nil
	}

	deadline := time.Unix(*msg.ExpiresTime, 0).Add(slack)
	if time.Now().After(deadline) {
		return fmt.Errorf("unpack: %w", plugin.ErrExpired)
	}

	return nil
}
