package wayland

import (
	"testing"

	"dpms/internal/dpms"
)

// fakeCompositor drives the server side of a socketpair, replying to
// wl_display.sync with a wl_callback.done so discover()'s roundtrips
// terminate without a real compositor.
type fakeCompositor struct {
	c *conn
}

func (f *fakeCompositor) replySync(callbackObjectArgPos int) error {
	m, err := f.c.recv()
	if err != nil {
		return err
	}
	if m.ObjectID == idDisplay && m.Opcode == displayReqSync {
		cbID, _, _ := decodeUint32(m.Payload)
		return f.c.send(cbID, callbackEvDone, encodeUint32(0))
	}
	return nil
}

func TestOrderedRegistryNamesIsSorted(t *testing.T) {
	cl := &client{
		outputsByRegistryName: map[uint32]*outputTracker{
			5: {registryName: 5},
			2: {registryName: 2},
			9: {registryName: 9},
		},
	}
	got := cl.orderedRegistryNames()
	want := []uint32{2, 5, 9}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestDisplayNamePrefersNameOverDescription(t *testing.T) {
	tests := []struct {
		name    string
		tracker *outputTracker
		want    string
	}{
		{"both set", &outputTracker{name: "DP-1", description: "some monitor"}, "DP-1"},
		{"name only", &outputTracker{name: "DP-1"}, "DP-1"},
		{"description only", &outputTracker{description: "some monitor"}, "some monitor"},
		{"neither", &outputTracker{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := displayName(tt.tracker); got != tt.want {
				t.Errorf("displayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestListOutputsDefaultsPowerToOn(t *testing.T) {
	cl := &client{
		outputsByRegistryName: map[uint32]*outputTracker{
			1: {registryName: 1, name: "DP-1"},
		},
	}
	infos := cl.listOutputs()
	if len(infos) != 1 {
		t.Fatalf("got %d infos, want 1", len(infos))
	}
	if infos[0].Name != "DP-1" {
		t.Errorf("Name = %q, want DP-1", infos[0].Name)
	}
	if infos[0].Power != dpms.On {
		t.Errorf("Power = %v, want On", infos[0].Power)
	}
}

func TestRoundtripStopsAtMatchingCallback(t *testing.T) {
	fds, err := socketpair()
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	defer fds[0].close()
	defer fds[1].close()

	cl := &client{c: fds[0], nextID: firstFree}
	server := &fakeCompositor{c: fds[1]}

	done := make(chan error, 1)
	go func() { done <- cl.roundtrip(nil) }()

	if err := server.replySync(0); err != nil {
		t.Fatalf("replySync: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("roundtrip: %v", err)
	}
}

func TestBindGlobalSendsExpectedFrame(t *testing.T) {
	fds, err := socketpair()
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	defer fds[0].close()
	defer fds[1].close()

	cl := &client{c: fds[0], nextID: firstFree}
	if err := cl.bindGlobal(3, "wl_output", 4, 7); err != nil {
		t.Fatalf("bindGlobal: %v", err)
	}

	m, err := fds[1].recv()
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	if m.ObjectID != idRegistry || m.Opcode != registryReqBind {
		t.Fatalf("got objectID=%d opcode=%d", m.ObjectID, m.Opcode)
	}
	name, rest, _ := decodeUint32(m.Payload)
	iface, rest, _ := decodeString(rest)
	version, rest, _ := decodeUint32(rest)
	newID, _, _ := decodeUint32(rest)
	if name != 3 || iface != "wl_output" || version != 4 || newID != 7 {
		t.Fatalf("got name=%d iface=%q version=%d newID=%d", name, iface, version, newID)
	}
}
