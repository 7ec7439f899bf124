package minecraft

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/MrSnakeDoc/mcboard/internal/domain"
	"github.com/MrSnakeDoc/mcboard/internal/logger"
)

// DefaultTimeout bounds one status observation.
const DefaultTimeout = 5 * time.Second

// ErrQueryDisabled is reported as QueryErr when a server opts out of the
// query protocol.
var ErrQueryDisabled = errors.New("query disabled for this server")

// StatusFetcher observes a server once.
type StatusFetcher interface {
	Fetch(ctx context.Context, srv domain.Server) domain.Status
}

// Fetcher combines the status ping and the query protocol into a
// domain.Status.
type Fetcher struct {
	pinger  *Pinger
	querier *Querier
	timeout time.Duration
	log     logger.Logger
	now     func() time.Time
}

// NewFetcher creates a Fetcher. A non-positive timeout falls back to
// DefaultTimeout.
func NewFetcher(timeout time.Duration, log logger.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		pinger:  NewPinger(net.DefaultResolver.LookupSRV),
		querier: NewQuerier(),
		timeout: timeout,
		log:     log,
		now:     time.Now,
	}
}

// Fetch never fails: an unreachable server yields Reachable=false and a
// failed query yields a nil roster.
func (f *Fetcher) Fetch(ctx context.Context, srv domain.Server) domain.Status {
	st := domain.Status{
		Server:    srv.Name,
		Address:   srv.Address,
		CheckedAt: f.now(),
	}

	pctx, cancel := context.WithTimeout(ctx, f.timeout)
	res, err := f.pinger.Ping(pctx, srv.Address)
	cancel()
	if err != nil {
		st.Err = err
		f.log.Warn("server unreachable",
			logger.String("server", srv.Name),
			logger.String("address", srv.Address),
			logger.Error(err),
		)
		return st
	}

	st.Reachable = true
	st.PlayersOnline = res.PlayersOnline
	st.PlayersMax = res.PlayersMax
	st.Latency = res.Latency
	st.Version = res.Version

	if !srv.QueryEnabled {
		st.QueryErr = ErrQueryDisabled
		return st
	}

	qaddr := queryAddress(srv, res.Address)
	qctx, cancel := context.WithTimeout(ctx, f.timeout)
	players, err := f.querier.Players(qctx, qaddr)
	cancel()
	if err != nil {
		st.QueryErr = err
		f.log.Warn("player query failed",
			logger.String("server", srv.Name),
			logger.String("query_address", qaddr.String()),
			logger.Error(err),
		)
		return st
	}
	st.Players = players

	f.log.Debug("server status fetched",
		logger.String("server", srv.Name),
		logger.Int("online", st.PlayersOnline),
		logger.Int("max", st.PlayersMax),
		logger.Duration("latency", st.Latency),
	)
	return st
}

// queryAddress defaults to the resolved game address when the server has
// no explicit query host or port.
func queryAddress(srv domain.Server, resolved Address) Address {
	addr := resolved
	if srv.QueryHost != "" {
		addr.Host = srv.QueryHost
	}
	if srv.QueryPort > 0 {
		addr.Port = srv.QueryPort
	}
	return addr
}
