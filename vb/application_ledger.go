// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vb

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/cmts-dev/carmentis-node/cmts"
	"github.com/cmts-dev/carmentis-node/microblock"
)

// LedgerSection is the kind of an application ledger section.
type LedgerSection uint8

// Application ledger sections.
const (
	LedgerDeclarationSection LedgerSection = iota
	LedgerActorCreation
	LedgerActorSubscription
	LedgerChannelCreation
	LedgerPublicChannelData
	LedgerPrivateChannelData
	LedgerAuthor
	LedgerAuthorSignature
)

var ledgerSectionNames = [...]string{
	LedgerDeclarationSection: "declaration",
	LedgerActorCreation:      "actor creation",
	LedgerActorSubscription:  "actor subscription",
	LedgerChannelCreation:    "channel creation",
	LedgerPublicChannelData:  "public channel data",
	LedgerPrivateChannelData: "private channel data",
	LedgerAuthor:             "author",
	LedgerAuthorSignature:    "author signature",
}

// LedgerDeclaration binds an application ledger to its application.
type LedgerDeclaration struct {
	ApplicationID cmts.Bytes32
}

// ActorCreation creates an actor. Ids are assigned in sequence from zero.
type ActorCreation struct {
	ID   uint64
	Type uint8
	Name string
}

// ActorSubscription registers the key of an actor.
type ActorSubscription struct {
	ActorID     uint64
	AlgorithmID uint8
	PublicKey   []byte
}

// ChannelCreation creates a channel. Ids are assigned in sequence from zero.
type ChannelCreation struct {
	ID        uint64
	IsPrivate bool
	CreatorID uint64
	Name      string
}

// PublicChannelData records clear data on a public channel.
type PublicChannelData struct {
	ChannelID uint64
	Data      []byte
}

// PrivateChannelData records encrypted data on a private channel.
type PrivateChannelData struct {
	ChannelID     uint64
	MerkleRoot    cmts.Bytes32
	EncryptedData []byte
}

// Author names the actor signing the microblock.
type Author struct {
	AuthorID uint64
}

// Actor is a participant of an application ledger.
type Actor struct {
	Type        uint8
	Name        string
	AlgorithmID uint8
	PublicKey   []byte // empty until subscribed
}

// Channel is a data channel of an application ledger.
type Channel struct {
	IsPrivate bool
	CreatorID uint64
	Name      string
}

type applicationLedgerState struct {
	ApplicationID cmts.Bytes32
	Actors        []Actor
	Channels      []Channel
}

type applicationLedger struct {
	st     applicationLedgerState
	author *Actor
}

func ledgerContent(c Constraint) Item {
	return Group(c,
		Single(Any, uint8(LedgerActorCreation)),
		Single(Any, uint8(LedgerActorSubscription)),
		Single(Any, uint8(LedgerChannelCreation)),
		Single(Any, uint8(LedgerPublicChannelData)),
		Single(Any, uint8(LedgerPrivateChannelData)),
	)
}

func (l *applicationLedger) rules(first bool) []Item {
	if first {
		return []Item{
			Single(One, uint8(LedgerDeclarationSection)),
			ledgerContent(Any),
			Single(One, uint8(LedgerAuthor)),
			Single(One, uint8(LedgerAuthorSignature)),
		}
	}
	return []Item{
		Single(Zero, uint8(LedgerDeclarationSection)),
		ledgerContent(AtLeastOne),
		Single(One, uint8(LedgerAuthor)),
		Single(One, uint8(LedgerAuthorSignature)),
	}
}

func (l *applicationLedger) sectionName(typ uint8) string {
	if int(typ) < len(ledgerSectionNames) {
		return ledgerSectionNames[typ]
	}
	return fmt.Sprintf("application ledger section(%d)", typ)
}

func (l *applicationLedger) newPayload(typ uint8) (any, error) {
	switch LedgerSection(typ) {
	case LedgerDeclarationSection:
		return &LedgerDeclaration{}, nil
	case LedgerActorCreation:
		return &ActorCreation{}, nil
	case LedgerActorSubscription:
		return &ActorSubscription{}, nil
	case LedgerChannelCreation:
		return &ChannelCreation{}, nil
	case LedgerPublicChannelData:
		return &PublicChannelData{}, nil
	case LedgerPrivateChannelData:
		return &PrivateChannelData{}, nil
	case LedgerAuthor:
		return &Author{}, nil
	case LedgerAuthorSignature:
		return &Signature{}, nil
	}
	return nil, errors.Errorf("unknown application ledger section type %d", typ)
}

func (l *applicationLedger) actor(id uint64) (*Actor, error) {
	if id >= uint64(len(l.st.Actors)) {
		return nil, errors.Errorf("unknown actor %d", id)
	}
	return &l.st.Actors[id], nil
}

func (l *applicationLedger) channel(id uint64) (*Channel, error) {
	if id >= uint64(len(l.st.Channels)) {
		return nil, errors.Errorf("unknown channel %d", id)
	}
	return &l.st.Channels[id], nil
}

func (l *applicationLedger) apply(v *VirtualBlockchain, s *microblock.Section) error {
	switch LedgerSection(s.Type) {
	case LedgerDeclarationSection:
		appID := s.Object.(*LedgerDeclaration).ApplicationID
		if _, err := v.load(appID, cmts.ApplicationVB); err != nil {
			return errors.Wrap(err, "application")
		}
		l.st.ApplicationID = appID
	case LedgerActorCreation:
		p := s.Object.(*ActorCreation)
		if p.ID != uint64(len(l.st.Actors)) {
			return errors.Errorf("actor id %d, want %d", p.ID, len(l.st.Actors))
		}
		if p.Name == "" {
			return errors.New("empty actor name")
		}
		for _, a := range l.st.Actors {
			if a.Name == p.Name {
				return errors.Errorf("actor %q already exists", p.Name)
			}
		}
		l.st.Actors = append(l.st.Actors, Actor{Type: p.Type, Name: p.Name})
	case LedgerActorSubscription:
		p := s.Object.(*ActorSubscription)
		a, err := l.actor(p.ActorID)
		if err != nil {
			return err
		}
		if len(a.PublicKey) > 0 {
			return errors.Errorf("actor %d already subscribed", p.ActorID)
		}
		if err := checkAlgorithm(p.AlgorithmID); err != nil {
			return err
		}
		if err := checkPublicKey(p.PublicKey); err != nil {
			return err
		}
		a.AlgorithmID = p.AlgorithmID
		a.PublicKey = p.PublicKey
	case LedgerChannelCreation:
		p := s.Object.(*ChannelCreation)
		if p.ID != uint64(len(l.st.Channels)) {
			return errors.Errorf("channel id %d, want %d", p.ID, len(l.st.Channels))
		}
		if p.Name == "" {
			return errors.New("empty channel name")
		}
		if _, err := l.actor(p.CreatorID); err != nil {
			return errors.Wrap(err, "channel creator")
		}
		for _, c := range l.st.Channels {
			if c.Name == p.Name {
				return errors.Errorf("channel %q already exists", p.Name)
			}
		}
		l.st.Channels = append(l.st.Channels, Channel{IsPrivate: p.IsPrivate, CreatorID: p.CreatorID, Name: p.Name})
	case LedgerPublicChannelData:
		c, err := l.channel(s.Object.(*PublicChannelData).ChannelID)
		if err != nil {
			return err
		}
		if c.IsPrivate {
			return errors.Errorf("public data on private channel %q", c.Name)
		}
	case LedgerPrivateChannelData:
		c, err := l.channel(s.Object.(*PrivateChannelData).ChannelID)
		if err != nil {
			return err
		}
		if !c.IsPrivate {
			return errors.Errorf("private data on public channel %q", c.Name)
		}
	case LedgerAuthor:
		a, err := l.actor(s.Object.(*Author).AuthorID)
		if err != nil {
			return err
		}
		if len(a.PublicKey) == 0 {
			return errors.Errorf("author %q is not subscribed", a.Name)
		}
		l.author = a
	case LedgerAuthorSignature:
		if l.author == nil {
			return errors.New("no author")
		}
		return v.verifySignature(s, l.author.PublicKey)
	default:
		return errors.Errorf("unknown application ledger section type %d", s.Type)
	}
	return nil
}

func (l *applicationLedger) state() any { return &l.st }
func (l *applicationLedger) reset()     { l.author = nil }
