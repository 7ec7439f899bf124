package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/mcboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mcboard/internal/httpserver/mw"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

type entry struct {
	reg        Registrar
	restricted bool // behind the CIDR filter
	mws        []Middleware
}

var registry []entry

// Register a public registrar with optional per-route middlewares.
func Register(reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{reg: reg, mws: mws})
}

// RegisterRestricted registers routes reachable only from MCBOARD_ALLOWED_CIDRS.
func RegisterRestricted(reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{reg: reg, restricted: true, mws: mws})
}

// Called once from server.New()
func RegisterAll(r chi.Router, d deps.Deps) {
	allow := mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)

	for _, e := range registry {
		mws := e.mws
		if e.restricted {
			mws = append([]Middleware{allow}, mws...)
		}
		if len(mws) == 0 {
			e.reg(r, d)
			continue
		}
		e.reg(r.With(mws...), d)
	}
}
