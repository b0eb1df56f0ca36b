package protocol

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestDecodeJoin(t *testing.T) {
	env, err := Decode([]byte(`{"type":"join","room":"movie night"}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if env.Type != TypeJoin || env.Room != "movie night" {
		t.Fatalf("env = %+v", env)
	}
}

func TestDecodePreservesOpaquePayloads(t *testing.T) {
	sdp := `{"type":"offer","sdp":"v=0\r\no=- 46117 2 IN IP4 127.0.0.1"}`
	raw := []byte(`{"type":"offer","target":"b","sdp":` + sdp + `}`)

	env, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if env.Target != "b" {
		t.Errorf("Target = %q, want b", env.Target)
	}
	if !bytes.Equal(env.SDP, []byte(sdp)) {
		t.Errorf("SDP altered: got %s want %s", env.SDP, sdp)
	}
}

func TestDecodeIgnoresClientSuppliedFrom(t *testing.T) {
	// "from" is not part of the inbound envelope; a forged sender identity
	// must vanish at the decode boundary.
	env, err := Decode([]byte(`{"type":"offer","target":"b","from":"victim","sdp":{}}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	out, err := json.Marshal(NewRelay(env, "real-sender"))
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	var relayed struct {
		From string `json:"from"`
	}
	if err := json.Unmarshal(out, &relayed); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if relayed.From != "real-sender" {
		t.Fatalf("From = %q, want real-sender", relayed.From)
	}
}

func TestDecodeMalformed(t *testing.T) {
	if _, err := Decode([]byte(`{"type":`)); err == nil {
		t.Fatal("Decode accepted truncated JSON")
	}
	if _, err := Decode([]byte(`"just a string"`)); err == nil {
		t.Fatal("Decode accepted non-object JSON")
	}
}

func TestRelayed(t *testing.T) {
	cases := []struct {
		t    MessageType
		want bool
	}{
		{TypeOffer, true},
		{TypeAnswer, true},
		{TypeCandidate, true},
		{TypeJoin, false},
		{TypeLeave, false},
		{MessageType("made-up"), false},
	}
	for _, tc := range cases {
		if got := tc.t.Relayed(); got != tc.want {
			t.Errorf("%q.Relayed() = %v, want %v", tc.t, got, tc.want)
		}
	}
}

func TestPeersEncodesEmptyListAsArray(t *testing.T) {
	out, err := json.Marshal(NewPeers(nil, "x"))
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	want := `{"type":"peers","peers":[],"room":"x"}`
	if string(out) != want {
		t.Fatalf("got %s want %s", out, want)
	}
}
