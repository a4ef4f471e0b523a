// Package engine defines the deterministic rule engine interface. Every
// numeric game-state change (damage, loot, experience, encounter odds) is
// computed here from seeded rolls; generated text never drives numbers.
package engine

//go:generate mockgen -destination=mock/mock_engine.go -package=enginemock github.com/llmadventure/llmadventure/internal/engine Engine

import (
	"github.com/llmadventure/llmadventure/internal/entities"
)

// AttackOutcome is the computed result of one combat swing
type AttackOutcome struct {
	Resolution entities.Resolution
	Damage     int32
}

// LevelUp describes one level gained from banked experience
type LevelUp struct {
	NewLevel     int32
	HealthGain   int32
	AttackGain   int32
	DefenseGain  int32
	ResourceGain int32
}

// Engine computes deterministic rule resolutions. Implementations draw all
// randomness from a session-seeded roller so replays reproduce outcomes.
type Engine interface {
	// ResolveAttack computes the player's swing against a defender
	ResolveAttack(attacker, defender entities.Stats) AttackOutcome

	// ResolveFlee computes a flee attempt; resolution is flee-success or
	// flee-failure
	ResolveFlee(player, enemy entities.Stats) entities.Resolution

	// EncounterOnMove reports whether moving triggers a hostile encounter
	EncounterOnMove() bool

	// EnemyStats builds a stat block for an enemy scaled to the player level
	EnemyStats(playerLevel int32) entities.Stats

	// ExperienceFor computes the experience awarded for defeating an enemy
	ExperienceFor(enemy entities.Stats) int32

	// LootFor rolls the items an enemy drops
	LootFor(enemy entities.Stats) []entities.Item

	// PendingLevelUps computes the level-ups banked experience pays for
	PendingLevelUps(player *entities.Player) []LevelUp
}
