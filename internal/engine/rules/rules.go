// Package rules implements the deterministic rule engine with seeded rolls.
package rules

import (
	"github.com/llmadventure/llmadventure/internal/engine"
	"github.com/llmadventure/llmadventure/internal/entities"
	"github.com/llmadventure/llmadventure/internal/errors"
	"github.com/llmadventure/llmadventure/internal/pkg/dice"
)

const (
	// encounterChance is the probability a move triggers combat
	encounterChance = 0.3

	// critThreshold is the minimum d20 roll for a critical hit
	critThreshold = 19

	baseFleeChance     = 0.5
	fleeChancePerLevel = 0.05
)

// Config holds the dependencies for the rule engine
type Config struct {
	Roller dice.Roller
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Roller == nil {
		vb.RequiredField("Roller")
	}

	return vb.Build()
}

type rulesEngine struct {
	roller dice.Roller
}

// NewEngine creates a rule engine with the provided dependencies
func NewEngine(cfg *Config) (engine.Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &rulesEngine{roller: cfg.Roller}, nil
}

// NewSeededEngine creates a rule engine whose rolls derive entirely from the
// given seed. Used as the per-turn engine factory so replays reproduce.
func NewSeededEngine(seed int64) engine.Engine {
	return &rulesEngine{roller: dice.NewSeeded(seed)}
}

// Ensure rulesEngine implements engine.Engine
var _ engine.Engine = (*rulesEngine)(nil)

// ResolveAttack rolls a d20 swing. 19-20 crits for double attack, anything
// beating defense plus five hits, the rest miss. Damage is always at least
// one on a connect.
func (r *rulesEngine) ResolveAttack(attacker, defender entities.Stats) engine.AttackOutcome {
	roll := r.roller.Roll(20)

	if roll >= critThreshold {
		damage := attacker.Attack*2 - defender.Defense/2
		if damage < 1 {
			damage = 1
		}
		return engine.AttackOutcome{Resolution: entities.ResolutionCritical, Damage: damage}
	}

	if int32(roll)+attacker.Attack/2 > defender.Defense+5 {
		damage := attacker.Attack - defender.Defense/2 + int32(r.roller.IntN(4))
		if damage < 1 {
			damage = 1
		}
		return engine.AttackOutcome{Resolution: entities.ResolutionHit, Damage: damage}
	}

	return engine.AttackOutcome{Resolution: entities.ResolutionMiss, Damage: 0}
}

// ResolveFlee gives a base 50% escape chance, shifted by level difference
func (r *rulesEngine) ResolveFlee(player, enemy entities.Stats) entities.Resolution {
	chance := baseFleeChance + float64(player.Level-enemy.Level)*fleeChancePerLevel
	if r.roller.Chance(chance) {
		return entities.ResolutionFleeSuccess
	}
	return entities.ResolutionFleeFailure
}

// EncounterOnMove rolls the fixed encounter chance
func (r *rulesEngine) EncounterOnMove() bool {
	return r.roller.Chance(encounterChance)
}

// EnemyStats scales an enemy to the player's level with a small roll of
// variance so encounters are not identical
func (r *rulesEngine) EnemyStats(playerLevel int32) entities.Stats {
	level := playerLevel + int32(r.roller.IntN(3)) - 1
	if level < 1 {
		level = 1
	}

	health := 30 + level*12 + int32(r.roller.IntN(10))
	return entities.Stats{
		Health:    health,
		MaxHealth: health,
		Attack:    8 + level*2,
		Defense:   4 + level,
		Level:     level,
	}
}

// ExperienceFor awards experience proportional to enemy level
func (r *rulesEngine) ExperienceFor(enemy entities.Stats) int32 {
	return enemy.Level * 25
}

// LootFor rolls drops: usually gold-value treasure, sometimes a potion
func (r *rulesEngine) LootFor(enemy entities.Stats) []entities.Item {
	var loot []entities.Item

	if r.roller.Chance(0.6) {
		loot = append(loot, entities.Item{
			Name:  "tarnished coins",
			Kind:  entities.ItemKindTreasure,
			Value: enemy.Level*5 + int32(r.roller.IntN(10)),
		})
	}
	if r.roller.Chance(0.25) {
		loot = append(loot, entities.Item{
			Name:    "healing draught",
			Kind:    entities.ItemKindPotion,
			Potency: 25,
		})
	}

	return loot
}

// PendingLevelUps pays out banked experience at level*100 per level
func (r *rulesEngine) PendingLevelUps(player *entities.Player) []engine.LevelUp {
	var ups []engine.LevelUp

	level := player.Stats.Level
	xp := player.Stats.Experience
	for xp >= entities.XPForLevel(level) {
		xp -= entities.XPForLevel(level)
		level++
		ups = append(ups, engine.LevelUp{
			NewLevel:     level,
			HealthGain:   10,
			AttackGain:   2,
			DefenseGain:  1,
			ResourceGain: 5,
		})
	}

	return ups
}
