package minecraft

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// handshakeProtocol is the protocol version announced in the handshake.
// Servers answer status requests for any value.
const handshakeProtocol = 47

// PingResult is the decoded Server List Ping response.
type PingResult struct {
	Address       Address
	Version       string
	Protocol      int
	PlayersOnline int
	PlayersMax    int
	Sample        []string
	Latency       time.Duration
}

type statusResponse struct {
	Version struct {
		Name     string `json:"name"`
		Protocol int    `json:"protocol"`
	} `json:"version"`
	Players struct {
		Max    int `json:"max"`
		Online int `json:"online"`
		Sample []struct {
			Name string `json:"name"`
			ID   string `json:"id"`
		} `json:"sample"`
	} `json:"players"`
}

// Pinger performs the Server List Ping over TCP.
type Pinger struct {
	dialer *net.Dialer
	lookup SRVLookup
}

// NewPinger creates a Pinger. lookup may be nil to disable SRV records.
func NewPinger(lookup SRVLookup) *Pinger {
	return &Pinger{
		dialer: &net.Dialer{},
		lookup: lookup,
	}
}

// Ping resolves raw, asks the server for its status and measures latency
// with a ping/pong exchange. The context deadline bounds the whole call.
func (p *Pinger) Ping(ctx context.Context, raw string) (PingResult, error) {
	addr, err := Resolve(ctx, raw, p.lookup)
	if err != nil {
		return PingResult{}, err
	}

	conn, err := p.dialer.DialContext(ctx, "tcp", addr.String())
	if err != nil {
		return PingResult{}, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return PingResult{}, fmt.Errorf("failed to set deadline: %w", err)
		}
	}

	var hs bytes.Buffer
	writeVarInt(&hs, handshakeProtocol)
	writeString(&hs, addr.Host)
	putUint16(&hs, uint16(addr.Port))
	writeVarInt(&hs, 1) // next state: status

	start := time.Now()
	if err := writePacket(conn, 0x00, hs.Bytes()); err != nil {
		return PingResult{}, fmt.Errorf("failed to send handshake: %w", err)
	}
	if err := writePacket(conn, 0x00, nil); err != nil {
		return PingResult{}, fmt.Errorf("failed to send status request: %w", err)
	}

	r := bufio.NewReader(conn)
	id, payload, err := readPacket(r)
	if err != nil {
		return PingResult{}, fmt.Errorf("failed to read status response: %w", err)
	}
	statusRTT := time.Since(start)
	if id != 0x00 {
		return PingResult{}, fmt.Errorf("unexpected status packet id %#x", id)
	}

	body, err := readString(bytes.NewReader(payload))
	if err != nil {
		return PingResult{}, fmt.Errorf("failed to read status json: %w", err)
	}

	var resp statusResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return PingResult{}, fmt.Errorf("failed to decode status json: %w", err)
	}

	result := PingResult{
		Address:       addr,
		Version:       resp.Version.Name,
		Protocol:      resp.Version.Protocol,
		PlayersOnline: resp.Players.Online,
		PlayersMax:    resp.Players.Max,
		Latency:       statusRTT,
	}
	for _, s := range resp.Players.Sample {
		result.Sample = append(result.Sample, s.Name)
	}

	// Some proxies close the connection after the status response; keep
	// the status round trip as latency when the pong never comes.
	if latency, err := pingPong(conn, r); err == nil {
		result.Latency = latency
	}

	return result, nil
}

func pingPong(conn net.Conn, r *bufio.Reader) (time.Duration, error) {
	var token [8]byte
	binary.BigEndian.PutUint64(token[:], uint64(time.Now().UnixNano()))

	start := time.Now()
	if err := writePacket(conn, 0x01, token[:]); err != nil {
		return 0, err
	}
	id, payload, err := readPacket(r)
	if err != nil {
		return 0, err
	}
	if id != 0x01 || !bytes.Equal(payload, token[:]) {
		return 0, fmt.Errorf("unexpected pong")
	}
	return time.Since(start), nil
}
