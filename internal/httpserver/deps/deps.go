package deps

import (
	"time"

	"github.com/MrSnakeDoc/mcboard/internal/board"
	"github.com/MrSnakeDoc/mcboard/internal/domain"
	"github.com/MrSnakeDoc/mcboard/internal/index"
	"github.com/MrSnakeDoc/mcboard/internal/logger"
	"github.com/MrSnakeDoc/mcboard/internal/store"
	"github.com/MrSnakeDoc/mcboard/internal/version"
)

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Build        version.Info
	TimeNow      func() time.Time   // for testing, defaults to time.Now
	AllowedCIDRS []string           // IPs allowed to access operational endpoints
	TrustProxy   bool               // true if running behind a trusted reverse proxy (e.g., cloudflared)
	Store        store.RosterStore  // roster persistence backend
	MemoryIndex  *index.MemoryIndex // latest statuses, events and cycle summary
	Renderer     *board.Renderer    // board HTML preview
	Servers      []domain.Server    // configured servers, file order
	Boards       []domain.Board     // configured boards, file order
	PollTrigger  chan struct{}      // Channel to trigger a manual poll cycle
}

// Now returns the current time using TimeNow when set.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
