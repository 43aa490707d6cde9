package deps

import (
	"context"
	"time"

	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/auth"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/logger"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/service"
)

// Check is a named readiness probe (store, cache).
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	AllowedHosts []string // Host headers allowed to access the server
	AllowedCIDRS []string // IPs allowed to access readyz and the import trigger
	TrustProxy   bool     // true if running behind a trusted reverse proxy (e.g., cloudflared)
	MaxBodyBytes int64    // request body limit for create/update

	Verifier     *auth.Verifier // nil disables token verification
	DefaultOwner string         // identity of requests without a valid token

	Notes     *service.Notes
	Bookmarks *service.Bookmarks

	ReadyChecks   []Check       // probed by /readyz
	ImportTrigger chan struct{} // manual bookmark import (nil if importer disabled)
}
