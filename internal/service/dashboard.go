package service

import (
	"time"

	"github.com/alexanderramin/landminer/internal/domain"
)

// Dashboard is everything the mining screen needs for one render cycle.
type Dashboard struct {
	Summary  *domain.MiningSummary
	Sessions []domain.MiningSession // raw list; nil when the fetch failed
	Lands    []domain.Land
	Tools    []domain.Tool

	Display []domain.MiningSession
	Source  domain.SessionSource

	// Stale is set when Summary came from the local snapshot because the
	// live fetch failed.
	Stale    bool
	StaleAt  time.Time

	// DisplayStale is set when both live session sources failed and
	// Display was taken from the snapshot.
	DisplayStale bool

	Warnings []string
	LoadedAt time.Time
}

// EligibleTools returns the tools that can join a new session.
func (d *Dashboard) EligibleTools() []domain.Tool {
	if d == nil {
		return nil
	}
	return domain.EligibleTools(d.Tools)
}

// CanStart reports whether a new session could be started at all.
func (d *Dashboard) CanStart() bool {
	return d != nil && len(d.Lands) > 0 && len(d.EligibleTools()) > 0
}

// FindSession looks up a displayed session by key.
func (d *Dashboard) FindSession(key domain.SessionKey) (domain.MiningSession, bool) {
	if d == nil {
		return domain.MiningSession{}, false
	}
	return domain.FindSession(d.Display, key)
}
