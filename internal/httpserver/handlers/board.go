package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/mcboard/internal/board"
	"github.com/MrSnakeDoc/mcboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mcboard/internal/logger"
)

// Board renders the HTML a board would currently publish.
func Board(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		i, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil || i < 0 || i >= len(d.Boards) {
			http.NotFound(w, r)
			return
		}
		b := d.Boards[i]

		html, err := d.Renderer.Render(b, board.Views(d.MemoryIndex, b), d.Now())
		if err != nil {
			d.Logger.Error("failed to render board preview",
				logger.Int("board", i),
				logger.Error(err))
			http.Error(w, "render failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		if _, err := w.Write([]byte(html)); err != nil {
			d.Logger.Debug("failed to write response", logger.Error(err))
		}
	}
}
