package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/llmadventure/llmadventure/internal/engine"
	"github.com/llmadventure/llmadventure/internal/entities"
	"github.com/llmadventure/llmadventure/internal/events"
	"github.com/llmadventure/llmadventure/internal/generation"
)

// Attack resolves one combat round: the player's swing, then the enemy's
// return swing if it survives
func (o *orchestrator) Attack(ctx context.Context, input *AttackInput) (*AttackOutput, error) {
	if err := o.requirePhase(entities.PhaseCombat); err != nil {
		return nil, err
	}

	enemy := o.session.ActiveEnemy()
	eng := o.beginTurn()

	o.bus.EmitCombatTurn(events.CombatTurnPayload{
		EnemyID: enemy.ID,
		Turn:    o.session.TurnCounter,
	})

	attacker := o.session.Player.Stats
	attacker.Attack += o.attackBonus
	outcome := eng.ResolveAttack(attacker, enemy.Stats)

	narration := o.combatNarration(ctx, enemy, outcome.Resolution, outcome.Damage)

	payload := o.bus.EmitCombatResolve(events.CombatResolvePayload{
		EnemyID:    enemy.ID,
		Resolution: outcome.Resolution,
		Damage:     outcome.Damage,
		Narration:  narration,
	})
	// Plugins may adjust damage, bounded so text never overrides the rules
	damage := clampInt32(payload.Damage, 0, outcome.Damage*2)

	enemy.Stats.Health -= damage
	if enemy.Stats.Health < 0 {
		enemy.Stats.Health = 0
	}

	out := &AttackOutput{
		Resolution: outcome.Resolution,
		Damage:     damage,
		Narration:  payload.Narration,
	}

	if enemy.Stats.Health == 0 {
		out.EnemyDefeated = true
		out.ExperienceAwarded, out.LevelUps = o.defeatEnemy(eng, enemy)
	} else {
		counter := eng.ResolveAttack(enemy.Stats, o.session.Player.Stats)
		o.applyPlayerDamage(counter.Damage)
		out.Counterattack = &CounterattackResult{
			Resolution: counter.Resolution,
			Damage:     counter.Damage,
		}
		if o.session.Player.Stats.Health == 0 {
			o.gameOver()
			out.GameOver = true
		}
	}

	if err := o.checkInvariants(); err != nil {
		return nil, err
	}

	out.Projection = o.project()
	return out, nil
}

// Flee attempts to leave combat; failure gives the enemy a free swing
func (o *orchestrator) Flee(ctx context.Context, input *FleeInput) (*FleeOutput, error) {
	if err := o.requirePhase(entities.PhaseCombat); err != nil {
		return nil, err
	}

	enemy := o.session.ActiveEnemy()
	eng := o.beginTurn()

	o.bus.EmitCombatTurn(events.CombatTurnPayload{
		EnemyID: enemy.ID,
		Turn:    o.session.TurnCounter,
	})

	resolution := eng.ResolveFlee(o.session.Player.Stats, enemy.Stats)
	narration := o.combatNarration(ctx, enemy, resolution, 0)

	o.bus.EmitCombatResolve(events.CombatResolvePayload{
		EnemyID:    enemy.ID,
		Resolution: resolution,
		Narration:  narration,
	})

	out := &FleeOutput{Resolution: resolution, Narration: narration}

	if resolution == entities.ResolutionFleeSuccess {
		o.endCombat()
	} else {
		counter := eng.ResolveAttack(enemy.Stats, o.session.Player.Stats)
		o.applyPlayerDamage(counter.Damage)
		out.Counterattack = &CounterattackResult{
			Resolution: counter.Resolution,
			Damage:     counter.Damage,
		}
		if o.session.Player.Stats.Health == 0 {
			o.gameOver()
			out.GameOver = true
		}
	}

	if err := o.checkInvariants(); err != nil {
		return nil, err
	}

	out.Projection = o.project()
	return out, nil
}

// combatNarration generates narration for a resolved round, substituting the
// fallback if the text contradicts the roll
func (o *orchestrator) combatNarration(ctx context.Context, enemy *entities.NPC, resolution entities.Resolution, damage int32) string {
	req := &generation.Request{
		Kind: generation.KindCombatNarration,
		Key:  []string{enemy.ID, fmt.Sprintf("%d", o.session.TurnCounter), string(resolution)},
		Context: map[string]string{
			"player_name":  o.session.Player.Name,
			"player_class": string(o.session.Player.Class),
			"enemy_name":   enemy.Name,
			"resolution":   string(resolution),
			"damage":       fmt.Sprintf("%d", damage),
		},
	}

	res, err := o.pipeline.Generate(ctx, req)
	if err != nil {
		slog.Warn("combat narration generation failed", "error", err)
		res = o.pipeline.Fallback(req)
	}

	artifact, verr := o.validator.Combat(res.Raw, resolution)
	if verr == nil {
		return artifact.Narration
	}

	slog.Warn("combat narration rejected, using fallback",
		"resolution", resolution,
		"error", verr,
	)
	fallback := o.pipeline.Fallback(req)
	artifact, verr = o.validator.Combat(fallback.Raw, resolution)
	if verr != nil {
		// Fallback narration always carries the computed resolution
		return fmt.Sprintf("The round resolves: %s.", resolution)
	}
	return artifact.Narration
}

// defeatEnemy applies the kill: experience, loot dropped to the ground,
// level-ups, quest review, and the return to exploration
func (o *orchestrator) defeatEnemy(eng engine.Engine, enemy *entities.NPC) (int32, []engine.LevelUp) {
	enemy.Defeated = true

	xp := eng.ExperienceFor(enemy.Stats)
	payload := o.bus.EmitCreatureDefeated(events.CreatureDefeatedPayload{
		EnemyName:  enemy.Name,
		EnemyLevel: enemy.Stats.Level,
		Experience: xp,
	})
	xp = clampInt32(payload.Experience, 0, xp*2)
	o.session.Player.Stats.Experience += xp

	if loot := eng.LootFor(enemy.Stats); len(loot) > 0 {
		loc := o.session.CurrentLocation()
		loc.Items = append(loc.Items, loot...)
	}

	ups := o.applyLevelUps(eng)

	slog.Info("enemy defeated",
		"session_id", o.session.ID,
		"enemy", enemy.Name,
		"experience", xp,
	)

	o.endCombat()
	o.reviewQuests(questTrigger{kind: entities.ObjectiveDefeat, name: enemy.Name})

	return xp, ups
}

// applyLevelUps pays out banked experience into stat gains
func (o *orchestrator) applyLevelUps(eng engine.Engine) []engine.LevelUp {
	player := o.session.Player
	ups := eng.PendingLevelUps(player)

	for _, up := range ups {
		player.Stats.Experience -= entities.XPForLevel(player.Stats.Level)
		player.Stats.Level = up.NewLevel
		player.Stats.MaxHealth += up.HealthGain
		player.Stats.Health += up.HealthGain
		player.Stats.Attack += up.AttackGain
		player.Stats.Defense += up.DefenseGain
		player.Stats.MaxResource += up.ResourceGain
		player.Stats.Resource += up.ResourceGain

		slog.Info("level up",
			"session_id", o.session.ID,
			"level", up.NewLevel,
		)
	}

	return ups
}

// applyPlayerDamage subtracts health, clamped at zero
func (o *orchestrator) applyPlayerDamage(damage int32) {
	o.session.Player.Stats.Health -= damage
	if o.session.Player.Stats.Health < 0 {
		o.session.Player.Stats.Health = 0
	}
}

// endCombat returns to exploration and clears combat state
func (o *orchestrator) endCombat() {
	o.session.Phase = entities.PhaseExploration
	o.session.ActiveEnemyID = ""
	o.attackBonus = 0
}

// gameOver is terminal; only a new session or restore leaves it
func (o *orchestrator) gameOver() {
	o.session.Phase = entities.PhaseGameOver
	o.session.ActiveEnemyID = ""
	o.attackBonus = 0

	for _, q := range o.session.ActiveQuests() {
		if q.Status.CanTransition(entities.QuestStatusFailed) {
			q.Status = entities.QuestStatusFailed
		}
	}

	slog.Info("game over", "session_id", o.session.ID, "turn", o.session.TurnCounter)
}
