package generation

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// RequestKind identifies what sort of content to generate. The set is
// closed; each kind has its own prompt template, fallback templates, and
// validation schema.
type RequestKind string

// Request kinds
const (
	KindLocation        RequestKind = "location"
	KindNPCIntro        RequestKind = "npc_intro"
	KindCombatNarration RequestKind = "combat_narration"
	KindQuestProposal   RequestKind = "quest_proposal"
	KindDialogueLine    RequestKind = "dialogue_line"
)

// Valid reports whether the kind is one of the closed set
func (k RequestKind) Valid() bool {
	switch k {
	case KindLocation, KindNPCIntro, KindCombatNarration,
		KindQuestProposal, KindDialogueLine:
		return true
	}
	return false
}

// Status tracks a cache entry through its lifecycle. Entries only ever move
// pending -> succeeded/failed/fallback; no entry regresses.
type Status string

// Cache entry statuses
const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusFallback  Status = "fallback"
)

// Terminal reports whether the status is a settled outcome
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusFallback
}

// Cacheable reports whether an entry with this status survives into a
// snapshot. Failed entries are retried on a later call; pending entries are
// still in flight.
func (s Status) Cacheable() bool {
	return s == StatusSucceeded || s == StatusFallback
}

// Request describes one generation call.
//
// Key holds the salient state inputs that identify the request for caching
// and single-flight deduplication. Context holds the full prompt inputs; it
// may contain volatile detail (stats, history) that must not affect the
// fingerprint.
type Request struct {
	Kind    RequestKind
	Key     []string
	Context map[string]string
}

// Fingerprint derives the deterministic cache key for this request
func (r *Request) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(string(r.Kind)))
	h.Write([]byte{0x1f})
	h.Write([]byte(strings.Join(r.Key, "\x1f")))
	return hex.EncodeToString(h.Sum(nil))[:32]
}

// Result is the terminal outcome of a pipeline call. Raw is lightly
// structured YAML ready for the validator; for fallback results it is
// produced from deterministic templates.
type Result struct {
	Fingerprint string
	Kind        RequestKind
	Status      Status
	Raw         string
}

// CacheEntry is the snapshot-portable form of a cache slot. Only entries
// with Cacheable status are exported.
type CacheEntry struct {
	Fingerprint string      `json:"fingerprint"`
	Kind        RequestKind `json:"kind"`
	Status      Status      `json:"status"`
	Raw         string      `json:"raw"`
}
