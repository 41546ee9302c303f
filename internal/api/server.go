package api

import (
	"github.com/haruki/examquest/internal/backup"
	"github.com/haruki/examquest/internal/catalog"
	"github.com/haruki/examquest/internal/learning"
	"github.com/haruki/examquest/internal/session"
	"github.com/haruki/examquest/internal/stats"
)

// Server holds the wired application components behind the HTTP surface.
type Server struct {
	Catalog *catalog.Catalog
	Machine *session.Machine
	Tracker *learning.Tracker
	Stats   *stats.Aggregator
	Backup  *backup.Manager
}
