package minecraft

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"strconv"

	"github.com/MrSnakeDoc/mcboard/internal/domain"
)

const (
	queryTypeHandshake = 0x09
	queryTypeStat      = 0x00

	// largest UDP payload, a full stat reply always fits in one datagram
	queryBufferSize = 65535
)

var (
	queryMagic = []byte{0xFE, 0xFD}
	// kvPadding precedes the key/value section of a full stat response.
	kvPadding = []byte("splitnum\x00\x80\x00")
	// playersMarker separates the key/value section from the player list.
	playersMarker = []byte("\x01player_\x00\x00")
)

// QueryResult is the decoded full stat response.
type QueryResult struct {
	Info    map[string]string
	Players []string
}

// Querier speaks the UDP query protocol (enable-query in
// server.properties).
type Querier struct {
	dialer *net.Dialer
}

// NewQuerier creates a Querier.
func NewQuerier() *Querier {
	return &Querier{dialer: &net.Dialer{}}
}

// Query performs the challenge handshake and a full stat request. The
// context deadline bounds the whole exchange.
func (q *Querier) Query(ctx context.Context, addr Address) (QueryResult, error) {
	conn, err := q.dialer.DialContext(ctx, "udp", addr.String())
	if err != nil {
		return QueryResult{}, fmt.Errorf("failed to open query socket: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return QueryResult{}, fmt.Errorf("failed to set deadline: %w", err)
		}
	}

	session := rand.Int32() & 0x0F0F0F0F

	token, err := queryHandshake(conn, session)
	if err != nil {
		return QueryResult{}, err
	}

	req := queryHeader(queryTypeStat, session)
	req = binary.BigEndian.AppendUint32(req, uint32(token))
	req = append(req, 0, 0, 0, 0) // padding selects the full stat
	if _, err := conn.Write(req); err != nil {
		return QueryResult{}, fmt.Errorf("failed to send stat request: %w", err)
	}

	buf := make([]byte, queryBufferSize)
	n, err := conn.Read(buf)
	if err != nil {
		return QueryResult{}, fmt.Errorf("failed to read stat response: %w", err)
	}
	if err := checkQueryHeader(buf[:n], queryTypeStat, session); err != nil {
		return QueryResult{}, err
	}
	return parseFullStat(buf[5:n])
}

// Players returns the online roster reported by the query protocol.
func (q *Querier) Players(ctx context.Context, addr Address) (*domain.Roster, error) {
	res, err := q.Query(ctx, addr)
	if err != nil {
		return nil, err
	}
	return domain.NewRoster(res.Players...), nil
}

func queryHandshake(conn net.Conn, session int32) (int32, error) {
	if _, err := conn.Write(queryHeader(queryTypeHandshake, session)); err != nil {
		return 0, fmt.Errorf("failed to send query handshake: %w", err)
	}

	buf := make([]byte, 64)
	n, err := conn.Read(buf)
	if err != nil {
		return 0, fmt.Errorf("failed to read query handshake: %w", err)
	}
	if err := checkQueryHeader(buf[:n], queryTypeHandshake, session); err != nil {
		return 0, err
	}

	raw := bytes.TrimRight(buf[5:n], "\x00")
	token, err := strconv.ParseInt(string(raw), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid challenge token %q: %w", raw, err)
	}
	return int32(token), nil
}

func queryHeader(kind byte, session int32) []byte {
	b := make([]byte, 0, 15)
	b = append(b, queryMagic...)
	b = append(b, kind)
	return binary.BigEndian.AppendUint32(b, uint32(session))
}

func checkQueryHeader(b []byte, kind byte, session int32) error {
	if len(b) < 5 {
		return errors.New("query response too short")
	}
	if b[0] != kind {
		return fmt.Errorf("unexpected query response type %#x", b[0])
	}
	if int32(binary.BigEndian.Uint32(b[1:5])) != session {
		return errors.New("query session id mismatch")
	}
	return nil
}

// parseFullStat decodes the body of a full stat response (after the type
// byte and session id).
func parseFullStat(body []byte) (QueryResult, error) {
	body = bytes.TrimPrefix(body, kvPadding)

	idx := bytes.Index(body, playersMarker)
	if idx < 0 {
		return QueryResult{}, errors.New("malformed full stat: player section missing")
	}

	res := QueryResult{Info: make(map[string]string)}

	fields := bytes.Split(body[:idx], []byte{0})
	for i := 0; i+1 < len(fields); i += 2 {
		key := string(fields[i])
		if key == "" {
			break
		}
		res.Info[key] = string(fields[i+1])
	}

	// names are NUL terminated and the list ends with an extra NUL
	section := body[idx+len(playersMarker):]
	if !playersTerminated(section) {
		return QueryResult{}, errors.New("malformed full stat: player list not terminated")
	}

	for _, name := range bytes.Split(section, []byte{0}) {
		if len(name) == 0 {
			continue
		}
		res.Players = append(res.Players, string(name))
	}
	return res, nil
}

func playersTerminated(section []byte) bool {
	switch {
	case len(section) == 0 || section[len(section)-1] != 0:
		return false
	case len(section) == 1:
		return true
	default:
		return section[len(section)-2] == 0
	}
}
