package app

import (
	"github.com/mkaye/rendezvous/internal/core"
	"github.com/mkaye/rendezvous/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickMember
)

// Policy decides what happens to a member whose connection could not take a
// broadcast frame.
type Policy interface {
	OnBackpressure(room *core.Room, member domain.SessionID) BackpressureAction
}

// SimplePolicy drops the frame for the slow member, which matches the
// best-effort broadcast contract: an unwritable peer is skipped, not evicted.
type SimplePolicy struct{}

func (SimplePolicy) OnBackpressure(room *core.Room, member domain.SessionID) BackpressureAction {
	return DropFrame
}

// StrictPolicy evicts members that cannot keep up with broadcasts.
type StrictPolicy struct{}

func (StrictPolicy) OnBackpressure(room *core.Room, member domain.SessionID) BackpressureAction {
	return KickMember
}
