package game

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/llmadventure/llmadventure/internal/engine"
	"github.com/llmadventure/llmadventure/internal/entities"
	"github.com/llmadventure/llmadventure/internal/errors"
	"github.com/llmadventure/llmadventure/internal/events"
	"github.com/llmadventure/llmadventure/internal/generation"
)

// maxPluginAttackBonus caps what plugins can grant on combat start
const maxPluginAttackBonus = 5

// Move walks through an exit, possibly into an encounter
func (o *orchestrator) Move(ctx context.Context, input *MoveInput) (*MoveOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := o.requirePhase(entities.PhaseExploration); err != nil {
		return nil, err
	}
	if !input.Direction.Valid() {
		return nil, errors.InvalidArgumentf("unknown direction: %s", input.Direction)
	}

	from := o.session.CurrentLocation()
	if _, ok := from.Exits[input.Direction]; !ok {
		return nil, errors.InvalidArgumentf("no exit %s from %s", input.Direction, from.Name)
	}

	eng := o.beginTurn()

	dest, err := o.ensureLocation(ctx, eng, from.Coords.Step(input.Direction))
	if err != nil {
		return nil, err
	}

	// The way back always exists, even if generation omitted it
	back := input.Direction.Opposite()
	if _, ok := dest.Exits[back]; !ok {
		dest.Exits[back] = from.ID
	}

	firstVisit := !dest.Visited
	dest.Visited = true
	o.session.CurrentLocationID = dest.ID
	o.session.Player.LocationID = dest.ID

	o.bus.EmitLocationEnter(events.LocationEnterPayload{
		LocationID:  dest.ID,
		Name:        dest.Name,
		Description: dest.Description,
		FirstVisit:  firstVisit,
	})

	out := &MoveOutput{FirstVisit: firstVisit}

	if enemy := o.hostileAt(dest); enemy != nil {
		out.CombatStarted = true
		out.EnemyIntro = o.startCombat(ctx, enemy)
	} else if eng.EncounterOnMove() {
		out.CombatStarted = true
		out.EnemyIntro = o.spawnEncounter(ctx, eng, dest)
	}

	o.reviewQuests(questTrigger{kind: entities.ObjectiveReach, name: dest.Name})

	o.prefetchAdjacent(dest)

	if err := o.checkInvariants(); err != nil {
		return nil, err
	}

	out.Projection = o.project()
	return out, nil
}

// hostileAt returns the first living hostile NPC in a location
func (o *orchestrator) hostileAt(loc *entities.Location) *entities.NPC {
	for _, id := range loc.NPCIDs {
		npc := o.session.NPCs[id]
		if npc != nil && npc.Hostile() && npc.Alive() {
			return npc
		}
	}
	return nil
}

// spawnEncounter creates a wandering enemy at a location when the encounter
// roll fires. The intro comes from generation; the stat block and hostility
// come from the rules, never from text.
func (o *orchestrator) spawnEncounter(ctx context.Context, eng engine.Engine, loc *entities.Location) string {
	npc := &entities.NPC{
		ID:          o.idGen.Generate(),
		Name:        "a prowling shape",
		Disposition: entities.DispositionHostile,
		Stats:       eng.EnemyStats(o.session.Player.Stats.Level),
		LocationID:  loc.ID,
	}

	req := &generation.Request{
		Kind: generation.KindNPCIntro,
		Key:  []string{loc.ID, "encounter"},
		Context: map[string]string{
			"npc_name": npc.Name,
			"location": loc.Description,
		},
	}
	if artifact := o.npcIntroArtifact(ctx, req); artifact != nil {
		if artifact.Name != "" {
			npc.Name = artifact.Name
		}
		npc.Intro = artifact.Intro
	}

	o.session.NPCs[npc.ID] = npc
	loc.NPCIDs = append(loc.NPCIDs, npc.ID)

	return o.startCombat(ctx, npc)
}

// startCombat enters the combat phase against an enemy and returns its
// introduction line
func (o *orchestrator) startCombat(ctx context.Context, enemy *entities.NPC) string {
	if enemy.Intro == "" {
		loc := o.session.CurrentLocation()
		req := &generation.Request{
			Kind: generation.KindNPCIntro,
			Key:  []string{enemy.ID},
			Context: map[string]string{
				"npc_name": enemy.Name,
				"location": loc.Description,
			},
		}
		if artifact := o.npcIntroArtifact(ctx, req); artifact != nil {
			enemy.Intro = artifact.Intro
		}
	}

	o.session.Phase = entities.PhaseCombat
	o.session.ActiveEnemyID = enemy.ID

	payload := o.bus.EmitCombatStart(events.CombatStartPayload{
		EnemyID:    enemy.ID,
		EnemyName:  enemy.Name,
		EnemyLevel: enemy.Stats.Level,
	})
	o.attackBonus = clampInt32(payload.PlayerAttackBonus, 0, maxPluginAttackBonus)

	slog.Info("combat started",
		"session_id", o.session.ID,
		"enemy", enemy.Name,
		"enemy_level", enemy.Stats.Level,
	)

	return enemy.Intro
}

// npcIntroArtifact generates and validates an NPC introduction, falling back
// deterministically. Returns nil only on a pipeline bug.
func (o *orchestrator) npcIntroArtifact(ctx context.Context, req *generation.Request) *npcIntro {
	res, err := o.pipeline.Generate(ctx, req)
	if err != nil {
		slog.Warn("npc intro generation failed", "error", err)
		res = o.pipeline.Fallback(req)
	}

	artifact, verr := o.validator.NPCIntro(res.Raw)
	if verr != nil {
		slog.Warn("npc intro rejected, using fallback", "error", verr)
		fallback := o.pipeline.Fallback(req)
		artifact, verr = o.validator.NPCIntro(fallback.Raw)
		if verr != nil {
			return nil
		}
	}

	return &npcIntro{Name: artifact.Name, Intro: artifact.Intro, Disposition: artifact.Disposition}
}

// npcIntro is the validated introduction consumed by combat and dialogue
type npcIntro struct {
	Name        string
	Intro       string
	Disposition entities.Disposition
}

// TakeItem picks up a ground item in the current location
func (o *orchestrator) TakeItem(ctx context.Context, input *TakeItemInput) (*TakeItemOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := o.requirePhase(entities.PhaseExploration); err != nil {
		return nil, err
	}
	if input.ItemName == "" {
		return nil, errors.InvalidArgument("item name is required")
	}

	loc := o.session.CurrentLocation()
	item, ok := loc.RemoveItem(input.ItemName)
	if !ok {
		return nil, errors.NotFoundf("there is no %s here", input.ItemName)
	}

	o.beginTurn()

	payload := o.bus.EmitItemCollected(events.ItemCollectedPayload{Item: item})
	o.session.Player.AddItem(payload.Item)

	o.reviewQuests(questTrigger{kind: entities.ObjectiveCollect, name: payload.Item.Name})

	if err := o.checkInvariants(); err != nil {
		return nil, err
	}

	return &TakeItemOutput{Item: payload.Item, Projection: o.project()}, nil
}

// UseItem consumes or equips an inventory item
func (o *orchestrator) UseItem(ctx context.Context, input *UseItemInput) (*UseItemOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := o.guard(); err != nil {
		return nil, err
	}
	if o.session.Phase == entities.PhaseGameOver {
		return nil, errors.FailedPrecondition("the game is over")
	}
	if input.ItemName == "" {
		return nil, errors.InvalidArgument("item name is required")
	}

	player := o.session.Player
	item, ok := player.FindItem(input.ItemName)
	if !ok {
		return nil, errors.NotFoundf("you are not carrying %s", input.ItemName)
	}

	o.beginTurn()

	var desc string
	switch item.Kind {
	case entities.ItemKindPotion:
		player.RemoveItem(item.Name)
		healed := item.Potency
		if player.Stats.Health+healed > player.Stats.MaxHealth {
			healed = player.Stats.MaxHealth - player.Stats.Health
		}
		player.Stats.Health += healed
		desc = fmt.Sprintf("You drink the %s and recover %d health.", strings.ToLower(item.Name), healed)

	case entities.ItemKindWeapon:
		player.RemoveItem(item.Name)
		player.Stats.Attack += item.Potency
		desc = fmt.Sprintf("You ready the %s. Attack improved by %d.", strings.ToLower(item.Name), item.Potency)

	case entities.ItemKindArmor:
		player.RemoveItem(item.Name)
		player.Stats.Defense += item.Potency
		desc = fmt.Sprintf("You don the %s. Defense improved by %d.", strings.ToLower(item.Name), item.Potency)

	default:
		return nil, errors.InvalidArgumentf("%s cannot be used", item.Name)
	}

	if err := o.checkInvariants(); err != nil {
		return nil, err
	}

	return &UseItemOutput{Description: desc, Projection: o.project()}, nil
}

// AcceptQuest activates an offered quest
func (o *orchestrator) AcceptQuest(ctx context.Context, input *AcceptQuestInput) (*AcceptQuestOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := o.guard(); err != nil {
		return nil, err
	}
	if input.QuestID == "" {
		return nil, errors.InvalidArgument("quest ID is required")
	}

	quest := o.session.QuestByID(input.QuestID)
	if quest == nil {
		return nil, errors.NotFoundf("quest %s not found", input.QuestID)
	}
	if !quest.Status.CanTransition(entities.QuestStatusActive) {
		return nil, errors.FailedPreconditionf("quest %q cannot be accepted from status %s",
			quest.Title, quest.Status)
	}

	quest.Status = entities.QuestStatusActive
	o.session.UpdatedAt = o.clock.Now()

	slog.Info("quest accepted", "session_id", o.session.ID, "quest", quest.Title)

	view := questView(quest)
	return &AcceptQuestOutput{Quest: &view, Projection: o.project()}, nil
}

func clampInt32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
