// Package protocol defines the JSON control-plane messages exchanged with
// browser clients. The sdp/candidate payloads belong to the peers'
// negotiation engines and are carried as raw bytes, never parsed here.
package protocol

import (
	"encoding/json"

	"github.com/mkaye/rendezvous/internal/domain"
)

type MessageType string

const (
	// client -> server
	TypeJoin  MessageType = "join"
	TypeLeave MessageType = "leave"
	TypePing  MessageType = "ping"

	// relayed peer to peer
	TypeOffer     MessageType = "offer"
	TypeAnswer    MessageType = "answer"
	TypeCandidate MessageType = "ice-candidate"

	// server -> client
	TypeWelcome    MessageType = "welcome"
	TypePeers      MessageType = "peers"
	TypePeerJoined MessageType = "peer-joined"
	TypePeerLeft   MessageType = "peer-left"
	TypePong       MessageType = "pong"
)

// Relayed reports whether messages of this type are forwarded verbatim to a
// targeted peer.
func (t MessageType) Relayed() bool {
	switch t {
	case TypeOffer, TypeAnswer, TypeCandidate:
		return true
	}
	return false
}

// Envelope is the superset of every client-to-server message. Unknown
// fields are ignored; in particular a client-supplied "from" never survives
// decoding, the relay stamps sender identity itself.
type Envelope struct {
	Type      MessageType      `json:"type"`
	Room      string           `json:"room,omitempty"`
	Target    domain.SessionID `json:"target,omitempty"`
	SDP       json.RawMessage  `json:"sdp,omitempty"`
	Candidate json.RawMessage  `json:"candidate,omitempty"`
}

func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}

type Welcome struct {
	Type MessageType      `json:"type"`
	ID   domain.SessionID `json:"id"`
}

func NewWelcome(id domain.SessionID) Welcome {
	return Welcome{Type: TypeWelcome, ID: id}
}

type Peers struct {
	Type  MessageType        `json:"type"`
	Peers []domain.SessionID `json:"peers"`
	Room  domain.RoomName    `json:"room"`
}

func NewPeers(peers []domain.SessionID, room domain.RoomName) Peers {
	if peers == nil {
		peers = []domain.SessionID{}
	}
	return Peers{Type: TypePeers, Peers: peers, Room: room}
}

// Membership announces a peer arriving in or departing from the room.
type Membership struct {
	Type MessageType      `json:"type"`
	From domain.SessionID `json:"from"`
}

func NewPeerJoined(from domain.SessionID) Membership {
	return Membership{Type: TypePeerJoined, From: from}
}

func NewPeerLeft(from domain.SessionID) Membership {
	return Membership{Type: TypePeerLeft, From: from}
}

// Relay is a negotiation message on its way to the target peer, with the
// sender identity stamped server-side.
type Relay struct {
	Type      MessageType      `json:"type"`
	From      domain.SessionID `json:"from"`
	SDP       json.RawMessage  `json:"sdp,omitempty"`
	Candidate json.RawMessage  `json:"candidate,omitempty"`
}

func NewRelay(env Envelope, from domain.SessionID) Relay {
	return Relay{Type: env.Type, From: from, SDP: env.SDP, Candidate: env.Candidate}
}

type Pong struct {
	Type MessageType `json:"type"`
}

func NewPong() Pong {
	return Pong{Type: TypePong}
}
