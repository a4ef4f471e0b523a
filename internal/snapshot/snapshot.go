// Package snapshot converts authoritative session state into a restorable
// form and validates it on the way back in.
//
// A snapshot is taken only at quiescent points, between phase transitions,
// so every invariant holds when it is captured. Cache entries ride along so
// a restored session replays cached fingerprints without re-contacting the
// generation service; only succeeded and fallback entries are included,
// never pending or failed ones.
package snapshot

import (
	"time"

	"github.com/llmadventure/llmadventure/internal/entities"
	"github.com/llmadventure/llmadventure/internal/errors"
	"github.com/llmadventure/llmadventure/internal/generation"
)

// Version is bumped when the snapshot shape changes incompatibly
const Version = 1

// Snapshot is the restorable form of a session
type Snapshot struct {
	Version     int                     `json:"version"`
	SessionID   string                  `json:"session_id"`
	SavedAt     time.Time               `json:"saved_at"`
	Session     *entities.Session       `json:"session"`
	Cache       []generation.CacheEntry `json:"cache,omitempty"`
	PluginState map[string][]byte       `json:"plugin_state,omitempty"`
}

// Capture builds a snapshot from session state, exportable cache entries,
// and plugin-declared state
func Capture(session *entities.Session, cache []generation.CacheEntry, pluginState map[string][]byte, savedAt time.Time) (*Snapshot, error) {
	if session == nil {
		return nil, errors.InvalidArgument("session cannot be nil")
	}

	for _, e := range cache {
		if !e.Status.Cacheable() {
			return nil, errors.InvariantViolationf(
				"cache entry %s with status %s must not enter a snapshot", e.Fingerprint, e.Status)
		}
	}

	return &Snapshot{
		Version:     Version,
		SessionID:   session.ID,
		SavedAt:     savedAt,
		Session:     session,
		Cache:       cache,
		PluginState: pluginState,
	}, nil
}

// Validate checks a loaded snapshot for corruption before any of it touches
// a new session
func (s *Snapshot) Validate() error {
	if s.Version != Version {
		return errors.DataLossf("unsupported snapshot version %d", s.Version)
	}
	if s.Session == nil {
		return errors.DataLoss("snapshot has no session")
	}
	if s.Session.Player == nil {
		return errors.DataLoss("snapshot session has no player")
	}
	if !s.Session.Player.Class.Valid() {
		return errors.DataLossf("snapshot player class %q is not valid", s.Session.Player.Class)
	}
	if s.Session.CurrentLocationID != "" {
		if _, ok := s.Session.Locations[s.Session.CurrentLocationID]; !ok {
			return errors.DataLossf("snapshot current location %s is missing", s.Session.CurrentLocationID)
		}
	}

	p := s.Session.Player.Stats
	if p.Health < 0 || p.Health > p.MaxHealth {
		return errors.DataLossf("snapshot player health %d outside [0, %d]", p.Health, p.MaxHealth)
	}

	for _, q := range s.Session.Quests {
		switch q.Status {
		case entities.QuestStatusOffered, entities.QuestStatusActive,
			entities.QuestStatusCompleted, entities.QuestStatusFailed:
		default:
			return errors.DataLossf("snapshot quest %s has unknown status %q", q.ID, q.Status)
		}
	}

	seen := make(map[string]generation.Status)
	for _, e := range s.Cache {
		if !e.Status.Cacheable() {
			return errors.DataLossf("snapshot cache entry %s has status %s", e.Fingerprint, e.Status)
		}
		if prev, ok := seen[e.Fingerprint]; ok && prev != e.Status {
			return errors.DataLossf("snapshot cache entry %s appears in conflicting states", e.Fingerprint)
		}
		seen[e.Fingerprint] = e.Status
	}

	return nil
}
