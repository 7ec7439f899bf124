package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/mcboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mcboard/internal/httpserver/handlers"
)

func init() { RegisterRestricted(registerStatus) }

func registerStatus(r chi.Router, d deps.Deps) {
	r.Get("/api/status", handlers.Status(d))
	r.Get("/boards/{index}", handlers.Board(d))
}
