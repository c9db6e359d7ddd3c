// Package wayland speaks just enough of the Wayland wire protocol to
// discover outputs, bind wlr-output-power-management, and drive or
// observe per-output power state. The frame codec here
// is adapted from a reference clipboard Wayland client
// (pkg/clipboard/internal/wayland/protocol.go): a length-prefixed
// little-endian frame with an object id, opcode, and size, with
// SCM_RIGHTS fd passing supported on read for protocol generality even
// though the interfaces this client binds never send one.
package wayland

import (
	"encoding/binary"
	"fmt"
	"syscall"
)

var le = binary.LittleEndian

// conn is a buffered Wayland client connection: one Unix socket, a
// read buffer holding partially-received frames, and a queue of file
// descriptors delivered out-of-band via SCM_RIGHTS.
type conn struct {
	fd         int
	inBuf      []byte
	pendingFds []int
}

func dial(sockPath string) (*conn, error) {
	fd, err := syscall.Socket(syscall.AF_UNIX, syscall.SOCK_STREAM, 0)
	if err != nil {
		return nil, err
	}
	if err := syscall.Connect(fd, &syscall.SockaddrUnix{Name: sockPath}); err != nil {
		syscall.Close(fd) //nolint:errcheck
		return nil, err
	}
	return &conn{fd: fd}, nil
}

func (c *conn) close() {
	syscall.Close(c.fd) //nolint:errcheck
}

// send writes one Wayland request: [object id][opcode|size][args...].
func (c *conn) send(objectID uint32, opcode uint16, args []byte) error {
	size := uint16(8 + len(args))
	buf := make([]byte, size)
	le.PutUint32(buf[0:], objectID)
	le.PutUint32(buf[4:], uint32(opcode)|uint32(size)<<16)
	copy(buf[8:], args)
	_, err := syscall.Write(c.fd, buf)
	return err
}

// message is one decoded Wayland event.
type message struct {
	ObjectID uint32
	Opcode   uint16
	Payload  []byte
	FD       int // -1 if no fd accompanied this message
}

// recv blocks until the next complete event frame is available.
func (c *conn) recv() (message, error) {
	for {
		if len(c.inBuf) >= 8 {
			sizeOpcode := le.Uint32(c.inBuf[4:8])
			size := int(sizeOpcode >> 16)
			if size >= 8 && len(c.inBuf) >= size {
				m := message{
					ObjectID: le.Uint32(c.inBuf[0:4]),
					Opcode:   uint16(sizeOpcode & 0xffff),
					Payload:  append([]byte(nil), c.inBuf[8:size]...),
					FD:       -1,
				}
				c.inBuf = c.inBuf[size:]
				if len(c.pendingFds) > 0 {
					m.FD = c.pendingFds[0]
					c.pendingFds = c.pendingFds[1:]
				}
				return m, nil
			}
		}

		buf := make([]byte, 4096)
		oob := make([]byte, syscall.CmsgSpace(4*8))
		n, oobn, _, _, err := syscall.Recvmsg(c.fd, buf, oob, 0)
		if err != nil {
			return message{}, err
		}
		if n == 0 {
			return message{}, fmt.Errorf("wayland: connection closed")
		}
		c.inBuf = append(c.inBuf, buf[:n]...)

		if oobn > 0 {
			scms, err := syscall.ParseSocketControlMessage(oob[:oobn])
			if err == nil {
				for _, scm := range scms {
					rights, err := syscall.ParseUnixRights(&scm)
					if err == nil {
						c.pendingFds = append(c.pendingFds, rights...)
					}
				}
			}
		}
	}
}

func encodeUint32(v uint32) []byte {
	b := make([]byte, 4)
	le.PutUint32(b, v)
	return b
}

func encodeInt32(v int32) []byte {
	return encodeUint32(uint32(v))
}

// encodeString encodes a Wayland string: uint32 length (incl. null
// terminator), the bytes, padded to 4-byte alignment.
func encodeString(s string) []byte {
	sBytes := append([]byte(s), 0)
	length := len(sBytes)
	padded := (length + 3) &^ 3
	buf := make([]byte, 4+padded)
	le.PutUint32(buf[0:], uint32(length))
	copy(buf[4:], sBytes)
	return buf
}

func concat(slices ...[]byte) []byte {
	var total int
	for _, s := range slices {
		total += len(s)
	}
	out := make([]byte, 0, total)
	for _, s := range slices {
		out = append(out, s...)
	}
	return out
}

// decodeUint32 reads one uint32 and returns the remaining payload.
func decodeUint32(data []byte) (uint32, []byte, error) {
	if len(data) < 4 {
		return 0, data, fmt.Errorf("wayland: short uint32 field")
	}
	return le.Uint32(data[:4]), data[4:], nil
}

func decodeInt32(data []byte) (int32, []byte, error) {
	v, rest, err := decodeUint32(data)
	return int32(v), rest, err
}

// decodeString reads a Wayland string and returns the remaining payload.
func decodeString(data []byte) (string, []byte, error) {
	if len(data) < 4 {
		return "", data, fmt.Errorf("wayland: short string length field")
	}
	length := int(le.Uint32(data[:4]))
	data = data[4:]
	if length == 0 {
		return "", data, nil
	}
	padded := (length + 3) &^ 3
	if len(data) < padded {
		return "", data, fmt.Errorf("wayland: short string data")
	}
	s := string(data[:length-1])
	return s, data[padded:], nil
}
