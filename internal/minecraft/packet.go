package minecraft

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// maxPacketLength bounds status packets; real responses are a few KB.
const maxPacketLength = 1 << 21

var errVarIntTooBig = errors.New("varint is too big")

func writeVarInt(buf *bytes.Buffer, value int32) {
	v := uint32(value)
	for {
		if v&^0x7F == 0 {
			buf.WriteByte(byte(v))
			return
		}
		buf.WriteByte(byte(v&0x7F) | 0x80)
		v >>= 7
	}
}

func readVarInt(r io.ByteReader) (int32, error) {
	var result uint32
	for i := 0; i < 5; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		result |= uint32(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			return int32(result), nil
		}
	}
	return 0, errVarIntTooBig
}

func writeString(buf *bytes.Buffer, s string) {
	writeVarInt(buf, int32(len(s)))
	buf.WriteString(s)
}

// writePacket frames id+payload with its length prefix.
func writePacket(w io.Writer, id int32, payload []byte) error {
	var body bytes.Buffer
	writeVarInt(&body, id)
	body.Write(payload)

	var frame bytes.Buffer
	writeVarInt(&frame, int32(body.Len()))
	frame.Write(body.Bytes())

	_, err := w.Write(frame.Bytes())
	return err
}

// readPacket reads one length-prefixed packet and returns its id and payload.
func readPacket(r *bufio.Reader) (int32, []byte, error) {
	length, err := readVarInt(r)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read packet length: %w", err)
	}
	if length <= 0 || length > maxPacketLength {
		return 0, nil, fmt.Errorf("invalid packet length %d", length)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return 0, nil, fmt.Errorf("failed to read packet: %w", err)
	}

	body := bytes.NewReader(data)
	id, err := readVarInt(body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read packet id: %w", err)
	}
	payload := data[len(data)-body.Len():]
	return id, payload, nil
}

func readString(r *bytes.Reader) (string, error) {
	n, err := readVarInt(r)
	if err != nil {
		return "", err
	}
	if n < 0 || int(n) > r.Len() {
		return "", fmt.Errorf("invalid string length %d", n)
	}
	s := make([]byte, n)
	if _, err := io.ReadFull(r, s); err != nil {
		return "", err
	}
	return string(s), nil
}

func putUint16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}
