package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/mcboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mcboard/internal/httpserver/handlers"
)

func init() { RegisterRestricted(registerInfra) }

func registerInfra(r chi.Router, d deps.Deps) {
	r.Get("/infra", handlers.Infra(d))
	r.Post("/poll", handlers.Poll(d))
}
