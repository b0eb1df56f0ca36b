package core

import (
	"sync"
	"testing"

	"github.com/mkaye/rendezvous/internal/domain"
)

func TestJoinCreatesRoomLazily(t *testing.T) {
	m := NewRoomManager()

	if _, ok := m.Get("x"); ok {
		t.Fatal("room exists before first join")
	}

	room, peers := m.Join("x", "a", &fakeConn{})
	if room.Name() != "x" {
		t.Errorf("room name = %q, want x", room.Name())
	}
	if len(peers) != 0 {
		t.Errorf("first joiner peers = %v, want empty", peers)
	}
	if _, ok := m.Get("x"); !ok {
		t.Fatal("room missing after join")
	}
}

func TestJoinReturnsAdmissionSnapshot(t *testing.T) {
	m := NewRoomManager()
	m.Join("x", "a", &fakeConn{})

	_, peers := m.Join("x", "b", &fakeConn{})
	if len(peers) != 1 || peers[0] != "a" {
		t.Fatalf("peers = %v, want [a]", peers)
	}
}

func TestLeaveDeletesEmptyRoom(t *testing.T) {
	m := NewRoomManager()
	m.Join("x", "a", &fakeConn{})
	m.Join("x", "b", &fakeConn{})

	if _, removed := m.Leave("x", "a"); !removed {
		t.Fatal("first leave reported removed=false")
	}
	if _, ok := m.Get("x"); !ok {
		t.Fatal("room deleted while still occupied")
	}

	if _, removed := m.Leave("x", "b"); !removed {
		t.Fatal("second leave reported removed=false")
	}
	if _, ok := m.Get("x"); ok {
		t.Fatal("empty room still exists")
	}
}

func TestLeaveIsIdempotent(t *testing.T) {
	m := NewRoomManager()
	m.Join("x", "a", &fakeConn{})
	m.Join("x", "b", &fakeConn{})

	if _, removed := m.Leave("x", "a"); !removed {
		t.Fatal("leave of a member reported removed=false")
	}
	if _, removed := m.Leave("x", "a"); removed {
		t.Fatal("repeated leave reported removed=true")
	}
	if _, removed := m.Leave("ghost-room", "a"); removed {
		t.Fatal("leave of unknown room reported removed=true")
	}
}

// Overlapping leaves of the last two members must agree on the teardown:
// exactly one empty-room deletion, no resurrected room.
func TestConcurrentFinalLeaves(t *testing.T) {
	for i := 0; i < 100; i++ {
		m := NewRoomManager()
		m.Join("x", "a", &fakeConn{})
		m.Join("x", "b", &fakeConn{})

		var wg sync.WaitGroup
		for _, sid := range []domain.SessionID{"a", "b"} {
			wg.Add(1)
			go func(sid domain.SessionID) {
				defer wg.Done()
				m.Leave("x", sid)
			}(sid)
		}
		wg.Wait()

		if _, ok := m.Get("x"); ok {
			t.Fatal("room survived both members leaving")
		}
	}
}

func TestListReportsMemberCounts(t *testing.T) {
	m := NewRoomManager()
	m.Join("x", "a", &fakeConn{})
	m.Join("x", "b", &fakeConn{})
	m.Join("y", "c", &fakeConn{})

	infos := m.List()
	if len(infos) != 2 {
		t.Fatalf("List returned %d rooms, want 2", len(infos))
	}
	counts := map[string]int{}
	for _, info := range infos {
		counts[string(info.Name)] = info.MemberCount
	}
	if counts["x"] != 2 || counts["y"] != 1 {
		t.Fatalf("counts = %v, want x:2 y:1", counts)
	}
}
