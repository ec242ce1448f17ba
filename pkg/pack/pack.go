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

// Package pack implements the Pack pipeline: a Message plus a packing
// mode becomes envelope bytes. Signed mode only needs the plugin's
// Signer; Anoncrypt and Authcrypt negotiate a common key-agreement curve
// across sender and recipients via pkg/diddoc and then delegate the
// actual JWE construction to the plugin's Encryptor, which is the only
// party holding the private key-agreement material pack itself never
// sees.
package pack

import (
	"context"
	"fmt"
	"sync"

	"github.com/sage-x-project/didcomm-go/pkg/diddoc"
	"github.com/sage-x-project/didcomm-go/pkg/jose/jws"
	"github.com/sage-x-project/didcomm-go/pkg/message"
	"github.com/sage-x-project/didcomm-go/pkg/plugin"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Mode selects one of the three envelope variants spec.md §3 names.
type Mode int

const (
	// Signed produces a JWS whose payload is the canonical message.
	Signed Mode = iota
	// Anoncrypt produces a JWE with a fresh ephemeral sender key and no
	// sender authentication.
	Anoncrypt
	// Authcrypt produces a JWE that additionally binds the sender's
	// static key-agreement key (ECDH-1PU), authenticating the sender.
	Authcrypt
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case Signed:
		return "signed"
	case Anoncrypt:
		return "anoncrypt"
	case Authcrypt:
		return "authcrypt"
	default:
		return "unknown"
	}
}

// Options configures a single Pack call beyond the required Message,
// Mode, and plugin.
type Options struct {
	// Sign requests sign-then-encrypt under Anoncrypt/Authcrypt: the
	// plaintext encrypted into the JWE is itself a JWS, not the bare
	// canonical message. Ignored in Signed mode (a Signed envelope is
	// already a JWS).
	Sign bool
	// ContentAlg overrides the default content-encryption algorithm
	// negotiation. Empty means A256GCM. XC20P must only be set here by
	// explicit agreement between both ends (spec.md §9) — pack never
	// chooses it on its own.
	ContentAlg string
	// Logger receives Debug-level negotiation traces and Warn-level
	// per-recipient resolution failures. A nil Logger is treated as
	// zap.NewNop().
	Logger *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Pack serializes msg and produces envelope bytes for mode using plg to
// resolve identities and perform signing/encryption.
func Pack(ctx context.Context, msg *message.Message, mode Mode, plg plugin.DIDCommPlugin, opts Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := msg.Validate(); err != nil {
		return nil, fmt.Errorf("pack: %w: %v", plugin.ErrSerialization, err)
	}

	payload, err := msg.Marshal()
	if err != nil {
		return nil, fmt.Errorf("pack: %w: %v", plugin.ErrSerialization, err)
	}

	log := opts.logger()

	switch mode {
	case Signed:
		env, err := signPayload(ctx, plg, msg.From, payload)
		if err != nil {
			return nil, err
		}
		return jws.Serialize(env)

	case Anoncrypt, Authcrypt:
		return packEncrypted(ctx, plg, msg, mode, payload, opts, log)

	default:
		return nil, fmt.Errorf("pack: %w: unknown mode %v", plugin.ErrSerialization, mode)
	}
}

// signPayload resolves senderDID's authentication keys, picks the
// strongest suitable one (Ed25519 preferred, else the highest-grade
// NIST curve), and signs payload with it.
func signPayload(ctx context.Context, plg plugin.DIDCommPlugin, senderDID string, payload []byte) (*jws.Envelope, error) {
	if senderDID == "" {
		return nil, fmt.Errorf("pack: %w: message has no \"from\" to sign with", plugin.ErrNoKey)
	}

	doc, err := plg.Resolve(ctx, senderDID)
	if err != nil {
		return nil, fmt.Errorf("pack: %w: %v", plugin.ErrResolution, err)
	}

	keyID, err := bestAuthenticationKey(doc)
	if err != nil {
		return nil, err
	}

	env, err := jws.Sign(ctx, plg, keyID, payload)
	if err != nil {
		return nil, err
	}

	return env, nil
}

// bestAuthenticationKey picks the authentication verification method
// spec.md §4.2 step 2 prefers: Ed25519 first, otherwise the
// highest-grade NIST curve (ES256/384/512) present.
func bestAuthenticationKey(doc *diddoc.Document) (string, error) {
	vms, err := doc.Resolve(diddoc.Authentication)
	if err != nil {
		return "", fmt.Errorf("pack: %w: %v", plugin.ErrNoKey, err)
	}

	var nistVMs []diddoc.VerificationMethod
	var nistKTs []diddoc.KeyType

	for _, vm := range vms {
		kt, _, err := vm.Extract()
		if err != nil {
			continue
		}

		if kt == diddoc.KeyTypeEd25519 {
			return vm.ID, nil
		}

		nistVMs = append(nistVMs, vm)
		nistKTs = append(nistKTs, kt)
	}

	if len(nistVMs) == 0 {
		return "", fmt.Errorf("pack: %w: %s has no usable authentication key", plugin.ErrNoKey, doc.ID)
	}

	best, err := diddoc.HighestSecurityLevel(nistKTs)
	if err != nil {
		return "", fmt.Errorf("pack: %w: %v", plugin.ErrNoKey, err)
	}

	for i, kt := range nistKTs {
		if kt == best {
			return nistVMs[i].ID, nil
		}
	}

	return "", fmt.Errorf("pack: %w: %s has no usable authentication key", plugin.ErrNoKey, doc.ID)
}

// packEncrypted implements spec.md §4.2 step 3: curve negotiation across
// sender and recipients, optional sign-then-encrypt, then delegation to
// the plugin's Encryptor.
func packEncrypted(ctx context.Context, plg plugin.DIDCommPlugin, msg *message.Message, mode Mode, payload []byte, opts Options, log *zap.Logger) ([]byte, error) {
	if len(msg.To) == 0 {
		return nil, fmt.Errorf("pack: %w: message has no recipients", plugin.ErrNoKey)
	}

	enc := plg.Encryptor()
	if enc == nil {
		return nil, fmt.Errorf("pack: %w: plugin has no Encryptor, cannot build a JWE", plugin.ErrPlugin)
	}

	recipientDocs, err := resolveAll(ctx, plg, msg.To, log)
	if err != nil {
		return nil, err
	}

	var senderKeyID string
	negotiating := recipientDocs

	if mode == Authcrypt {
		if msg.From == "" {
			return nil, fmt.Errorf("pack: %w: authcrypt requires a \"from\"", plugin.ErrNoKey)
		}

		senderDoc, err := plg.Resolve(ctx, msg.From)
		if err != nil {
			return nil, fmt.Errorf("pack: %w: %v", plugin.ErrResolution, err)
		}

		negotiating = append(append([]*diddoc.Document{}, recipientDocs...), senderDoc)

		curve, err := diddoc.SelectCommonCurve(negotiating)
		if err != nil {
			return nil, fmt.Errorf("pack: %w: %w", plugin.ErrAlgorithmMismatch, err)
		}

		senderVM, err := diddoc.BestKeyAgreementVM(senderDoc, curve)
		if err != nil {
			return nil, fmt.Errorf("pack: %w: %w", plugin.ErrAlgorithmMismatch, err)
		}

		senderKeyID = senderVM.ID

		log.Debug("authcrypt curve negotiated",
			zap.String("curve", curve.String()),
			zap.String("sender_key", senderKeyID),
			zap.Int("recipients", len(recipientDocs)),
		)
	} else {
		if _, err := diddoc.SelectCommonCurve(negotiating); err != nil {
			return nil, fmt.Errorf("pack: %w: %w", plugin.ErrAlgorithmMismatch, err)
		}
	}

	plaintext := payload
	if opts.Sign {
		env, err := signPayload(ctx, plg, msg.From, payload)
		if err != nil {
			return nil, err
		}

		plaintext, err = jws.Serialize(env)
		if err != nil {
			return nil, err
		}
	}

	req := plugin.EncryptRequest{
		SenderKeyID:   senderKeyID,
		RecipientDIDs: msg.To,
		Plaintext:     plaintext,
		ContentAlg:    opts.ContentAlg,
		Authenticated: mode == Authcrypt,
	}

	envelope, err := enc.Encrypt(ctx, req)
	if err != nil {
		return nil, err
	}

	return envelope, nil
}

// resolveAll resolves every DID in dids concurrently via errgroup,
// aggregating every failure with multierr rather than stopping at the
// first, so a caller packing to several recipients learns about all of
// them at once.
func resolveAll(ctx context.Context, resolver plugin.Resolver, dids []string, log *zap.Logger) ([]*diddoc.Document, error) {
	docs := make([]*diddoc.Document, len(dids))

	var mu sync.Mutex
	var errs error

	g, gctx := errgroup.WithContext(ctx)

	for i, did := range dids {
		i, did := i, did

		g.Go(func() error {
			doc, err := resolver.Resolve(gctx, did)
			if err != nil {
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", did, err))
				mu.Unlock()
				log.Warn("recipient resolution failed", zap.String("did", did), zap.Error(err))
				return nil
			}

			docs[i] = doc
			return nil
		})
	}

	// errgroup.Group.Wait's error is always nil here: each goroutine
	// reports failure by appending to errs instead of returning an
	// error, so every recipient gets resolved (or fails) independently.
	_ = g.Wait()

	if errs != nil {
		return nil, fmt.Errorf("pack: %w: %w", plugin.ErrResolution, errs)
	}

	return docs, nil
}
