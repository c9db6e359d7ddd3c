package wayland

import (
	"syscall"
	"testing"
)

// socketpair returns two connected conns backed by a local
// AF_UNIX SOCK_STREAM pair, standing in for a real compositor
// connection in frame-level tests.
func socketpair() ([2]*conn, error) {
	fds, err := syscall.Socketpair(syscall.AF_UNIX, syscall.SOCK_STREAM, 0)
	if err != nil {
		return [2]*conn{}, err
	}
	return [2]*conn{{fd: fds[0]}, {fd: fds[1]}}, nil
}

func TestEncodeDecodeString(t *testing.T) {
	tests := []string{"", "DP-1", "eDP-1", "a string long enough to need padding"}

	for _, s := range tests {
		encoded := encodeString(s)
		got, rest, err := decodeString(encoded)
		if err != nil {
			t.Fatalf("decodeString(%q): %v", s, err)
		}
		if got != s {
			t.Errorf("roundtrip %q: got %q", s, got)
		}
		if len(rest) != 0 {
			t.Errorf("roundtrip %q: leftover bytes %v", s, rest)
		}
	}
}

func TestEncodeStringPadsToFourBytes(t *testing.T) {
	// "DP-1" is 4 bytes + null terminator = 5, padded to 8.
	encoded := encodeString("DP-1")
	if len(encoded)%4 != 0 {
		t.Fatalf("encoded length %d is not 4-byte aligned", len(encoded))
	}
}

func TestEncodeDecodeUint32(t *testing.T) {
	vals := []uint32{0, 1, 42, 0xffffffff}
	for _, v := range vals {
		got, rest, err := decodeUint32(encodeUint32(v))
		if err != nil {
			t.Fatalf("decodeUint32(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("roundtrip %d: got %d", v, got)
		}
		if len(rest) != 0 {
			t.Errorf("roundtrip %d: leftover bytes %v", v, rest)
		}
	}
}

func TestDecodeStringShortData(t *testing.T) {
	if _, _, err := decodeString([]byte{1, 0, 0}); err == nil {
		t.Fatal("expected error decoding too-short length field")
	}
	// Length says 100 bytes but only 4 are present.
	buf := encodeUint32(100)
	if _, _, err := decodeString(buf); err == nil {
		t.Fatal("expected error decoding truncated string data")
	}
}

func TestSendMessageFraming(t *testing.T) {
	// send() writes directly to the socket fd; exercise the frame
	// layout via a connected pair instead of mocking syscall.Write.
	fds, err := socketpair()
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	defer fds[0].close()
	defer fds[1].close()

	if err := fds[0].send(7, 3, encodeUint32(42)); err != nil {
		t.Fatalf("send: %v", err)
	}

	m, err := fds[1].recv()
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	if m.ObjectID != 7 || m.Opcode != 3 {
		t.Fatalf("got objectID=%d opcode=%d, want 7/3", m.ObjectID, m.Opcode)
	}
	v, _, err := decodeUint32(m.Payload)
	if err != nil || v != 42 {
		t.Fatalf("payload decode: v=%d err=%v", v, err)
	}
}
