package validator

import (
	"strings"

	"github.com/llmadventure/llmadventure/internal/entities"
)

// Deterministic normalization rules. Free text passes through untouched;
// structured fields are case-folded and mapped through synonym tables
// before being checked against their enumerations.

var directionSynonyms = map[string]entities.Direction{
	"n":         entities.DirectionNorth,
	"s":         entities.DirectionSouth,
	"e":         entities.DirectionEast,
	"w":         entities.DirectionWest,
	"u":         entities.DirectionUp,
	"d":         entities.DirectionDown,
	"upward":    entities.DirectionUp,
	"upwards":   entities.DirectionUp,
	"above":     entities.DirectionUp,
	"downward":  entities.DirectionDown,
	"downwards": entities.DirectionDown,
	"below":     entities.DirectionDown,
}

var dispositionSynonyms = map[string]entities.Disposition{
	"aggressive":  entities.DispositionHostile,
	"enemy":       entities.DispositionHostile,
	"angry":       entities.DispositionHostile,
	"friend":      entities.DispositionFriendly,
	"kind":        entities.DispositionFriendly,
	"ally":        entities.DispositionFriendly,
	"indifferent": entities.DispositionNeutral,
	"wary":        entities.DispositionNeutral,
}

var resolutionSynonyms = map[string]entities.Resolution{
	"critical hit": entities.ResolutionCritical,
	"crit":         entities.ResolutionCritical,
	"missed":       entities.ResolutionMiss,
	"struck":       entities.ResolutionHit,
	"flee success": entities.ResolutionFleeSuccess,
	"fled":         entities.ResolutionFleeSuccess,
	"escaped":      entities.ResolutionFleeSuccess,
	"flee failure": entities.ResolutionFleeFailure,
}

var objectiveSynonyms = map[string]entities.ObjectiveKind{
	"kill":    entities.ObjectiveDefeat,
	"slay":    entities.ObjectiveDefeat,
	"hunt":    entities.ObjectiveDefeat,
	"visit":   entities.ObjectiveReach,
	"travel":  entities.ObjectiveReach,
	"explore": entities.ObjectiveReach,
	"gather":  entities.ObjectiveCollect,
	"find":    entities.ObjectiveCollect,
	"fetch":   entities.ObjectiveCollect,
}

// normalize lower-cases and trims a structured field value
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// repairDirection normalizes a direction; ok is false when it cannot be
// mapped onto the compass enumeration.
func repairDirection(raw string) (entities.Direction, bool) {
	n := normalize(raw)
	if d := entities.Direction(n); d.Valid() {
		return d, true
	}
	if d, ok := directionSynonyms[n]; ok {
		return d, true
	}
	return "", false
}

// repairDisposition normalizes a disposition, defaulting to neutral only
// when the value is empty (absent field, not a contradiction).
func repairDisposition(raw string) (entities.Disposition, bool) {
	n := normalize(raw)
	if n == "" {
		return entities.DispositionNeutral, true
	}
	if d := entities.Disposition(n); d.Valid() {
		return d, true
	}
	if d, ok := dispositionSynonyms[n]; ok {
		return d, true
	}
	return "", false
}

// repairResolution normalizes a combat resolution tag
func repairResolution(raw string) (entities.Resolution, bool) {
	n := normalize(raw)
	if r := entities.Resolution(n); r.Valid() {
		return r, true
	}
	if r, ok := resolutionSynonyms[n]; ok {
		return r, true
	}
	return "", false
}

// repairObjective normalizes a quest objective kind
func repairObjective(raw string) (entities.ObjectiveKind, bool) {
	n := normalize(raw)
	if k := entities.ObjectiveKind(n); k.Valid() {
		return k, true
	}
	if k, ok := objectiveSynonyms[n]; ok {
		return k, true
	}
	return "", false
}

// clamp32 bounds a numeric delta to the rule-engine range
func clamp32(v, minV, maxV int32) int32 {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
