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

// This example demonstrates the shape of a store-and-forward mailbox built
// on top of this core: a sender packs one multi-recipient Authcrypt
// envelope, a trivial in-memory mailbox delivers the same bytes to every
// recipient's inbox, and each recipient unpacks independently with its own
// DID as the RecipientHint. The mailbox itself — any real queue, HTTP
// relay, or delivery retry policy — is the external collaborator spec.md
// §1 places out of scope; this just shows the boundary.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/sage-x-project/didcomm-go/internal/demofixture"
	"github.com/sage-x-project/didcomm-go/pkg/diddoc"
	"github.com/sage-x-project/didcomm-go/pkg/message"
	"github.com/sage-x-project/didcomm-go/pkg/pack"
	"github.com/sage-x-project/didcomm-go/pkg/plugin/memory"
	"github.com/sage-x-project/didcomm-go/pkg/unpack"
)

// mailbox is a deliberately minimal store-and-forward stand-in: a map from
// recipient DID to the raw envelopes waiting for it.
type mailbox struct {
	inboxes map[string][][]byte
}

func newMailbox() *mailbox {
	return &mailbox{inboxes: make(map[string][][]byte)}
}

func (m *mailbox) deliver(recipients []string, envelope []byte) {
	for _, did := range recipients {
		m.inboxes[did] = append(m.inboxes[did], envelope)
	}
}

func (m *mailbox) drain(did string) [][]byte {
	msgs := m.inboxes[did]
	delete(m.inboxes, did)
	return msgs
}

func main() {
	fmt.Println("=== DIDComm v2 mailbox demo ===")

	alice, err := demofixture.NewAgent("did:example:alice", diddoc.KeyTypeX25519)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	bob, err := demofixture.NewAgent("did:example:bob", diddoc.KeyTypeX25519)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	carol, err := demofixture.NewAgent("did:example:carol", diddoc.KeyTypeX25519)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}

	store, err := memory.NewStore(&memory.FixtureSet{Agents: []memory.AgentFixture{alice, bob, carol}})
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	plg := memory.New(store, memory.NewEncryptor(store))

	ctx := context.Background()
	recipients := []string{"did:example:bob", "did:example:carol"}

	msg := &message.Message{
		ID:   uuid.NewString(),
		Type: "https://didcomm.org/basicmessage/2.0/message",
		From: "did:example:alice",
		To:   recipients,
		Body: map[string]interface{}{"content": "standup at 10am"},
	}

	env, err := pack.Pack(ctx, msg, pack.Authcrypt, plg, pack.Options{})
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	fmt.Printf("alice packed one %d-byte envelope for %d recipients\n", len(env), len(recipients))

	box := newMailbox()
	box.deliver(recipients, env)

	for _, did := range recipients {
		for _, raw := range box.drain(did) {
			got, meta, err := unpack.Unpack(ctx, raw, plg, unpack.Options{RecipientHint: did})
			if err != nil {
				log.Fatalf("fatal: %s failed to unpack: %v", did, err)
			}
			fmt.Printf("%s received %q from %s\n", did, got.Body["content"], meta.AuthenticatedSender)
		}
	}
}
