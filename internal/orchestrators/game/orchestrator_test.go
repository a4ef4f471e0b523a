package game_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/llmadventure/llmadventure/internal/engine"
	"github.com/llmadventure/llmadventure/internal/entities"
	"github.com/llmadventure/llmadventure/internal/errors"
	"github.com/llmadventure/llmadventure/internal/events"
	"github.com/llmadventure/llmadventure/internal/generation"
	"github.com/llmadventure/llmadventure/internal/orchestrators/game"
	"github.com/llmadventure/llmadventure/internal/pkg/clock"
	"github.com/llmadventure/llmadventure/internal/pkg/idgen"
	"github.com/llmadventure/llmadventure/internal/validator"
)

// fakeClient returns canned YAML per request kind and counts outbound calls
// per fingerprint. Safe for the pipeline's concurrent prefetches.
type fakeClient struct {
	mu    sync.Mutex
	calls map[string]int
	err   error
}

func newFakeClient() *fakeClient {
	return &fakeClient{calls: map[string]int{}}
}

func (c *fakeClient) Generate(_ context.Context, req *generation.Request) (string, error) {
	c.mu.Lock()
	c.calls[req.Fingerprint()]++
	err := c.err
	c.mu.Unlock()

	if err != nil {
		return "", err
	}

	switch req.Kind {
	case generation.KindLocation:
		return `
name: The Mossy Court
description: Moss creeps over toppled stones, softening every edge.
exits:
  - north
  - south
npcs:
  - name: Maren
    disposition: friendly
items:
  - healing potion
`, nil

	case generation.KindNPCIntro:
		if req.Context["npc_name"] == "a prowling shape" {
			return "name: Grey Wolf\ndisposition: hostile\nintro: A grey wolf slinks out of the brush, hackles raised.\n", nil
		}
		return fmt.Sprintf("name: %s\ndisposition: friendly\nintro: %s looks up as you approach.\n",
			req.Context["npc_name"], req.Context["npc_name"]), nil

	case generation.KindCombatNarration:
		return fmt.Sprintf("resolution: %s\nnarration: Steel rings out across the court.\n",
			req.Context["resolution"]), nil

	case generation.KindQuestProposal:
		return `
title: Cull the Wolf
description: A grey wolf has been stalking the roads.
objective: defeat
target: grey wolf
count: 1
reward_experience: 120
reward_gold: 15
`, nil

	case generation.KindDialogueLine:
		return "line: Keep to the road, traveler.\nstate: warned about the road\n", nil
	}

	return "", errors.Internalf("unexpected kind %s", req.Kind)
}

func (c *fakeClient) callsFor(fingerprint string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[fingerprint]
}

// scriptedEngine returns pre-arranged outcomes. Attack outcomes pop from a
// queue so player swing and enemy counter can differ within one round.
type scriptedEngine struct {
	mu        sync.Mutex
	encounter bool
	attacks   []engine.AttackOutcome
	flee      entities.Resolution
	enemy     entities.Stats
	loot      []entities.Item
}

func (e *scriptedEngine) ResolveAttack(_, _ entities.Stats) engine.AttackOutcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.attacks) == 0 {
		return engine.AttackOutcome{Resolution: entities.ResolutionMiss}
	}
	out := e.attacks[0]
	e.attacks = e.attacks[1:]
	return out
}

func (e *scriptedEngine) ResolveFlee(_, _ entities.Stats) entities.Resolution {
	return e.flee
}

func (e *scriptedEngine) EncounterOnMove() bool {
	return e.encounter
}

func (e *scriptedEngine) EnemyStats(_ int32) entities.Stats {
	return e.enemy
}

func (e *scriptedEngine) ExperienceFor(enemy entities.Stats) int32 {
	return enemy.Level * 25
}

func (e *scriptedEngine) LootFor(_ entities.Stats) []entities.Item {
	return e.loot
}

func (e *scriptedEngine) PendingLevelUps(player *entities.Player) []engine.LevelUp {
	var ups []engine.LevelUp
	level := player.Stats.Level
	xp := player.Stats.Experience
	for xp >= entities.XPForLevel(level) {
		xp -= entities.XPForLevel(level)
		level++
		ups = append(ups, engine.LevelUp{
			NewLevel: level, HealthGain: 10, AttackGain: 2, DefenseGain: 1, ResourceGain: 5,
		})
	}
	return ups
}

type OrchestratorTestSuite struct {
	suite.Suite
	client   *fakeClient
	pipeline *generation.Pipeline
	bus      *events.Bus
	eng      *scriptedEngine
	svc      game.Service
	ctx      context.Context
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.client = newFakeClient()
	s.eng = &scriptedEngine{
		enemy: entities.Stats{Health: 40, MaxHealth: 40, Attack: 8, Defense: 4, Level: 1},
	}
	s.bus = events.NewBus()
	s.ctx = context.Background()

	pipeline, err := generation.NewPipeline(&generation.Config{
		Client:         s.client,
		BackoffBase:    time.Millisecond,
		RequestTimeout: time.Second,
	})
	s.Require().NoError(err)
	s.pipeline = pipeline

	svc, err := game.NewOrchestrator(&game.Config{
		Pipeline:      s.pipeline,
		Validator:     validator.New(),
		EngineFactory: func(int64) engine.Engine { return s.eng },
		Bus:           s.bus,
		Clock:         clock.NewFixed(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)),
		IDGenerator:   idgen.NewSequential("test"),
	})
	s.Require().NoError(err)
	s.svc = svc
}

func (s *OrchestratorTestSuite) newSession() *game.Projection {
	out, err := s.svc.NewSession(s.ctx, &game.NewSessionInput{
		PlayerName: "Edda",
		Class:      entities.ClassWarrior,
		Seed:       42,
	})
	s.Require().NoError(err)
	return out.Projection
}

func (s *OrchestratorTestSuite) TestNewSession() {
	proj := s.newSession()

	s.Equal(entities.PhaseExploration, proj.Phase)
	s.Equal(int32(120), proj.Stats.Health)
	s.Equal(int32(120), proj.Stats.MaxHealth)
	s.Equal(int32(1), proj.Stats.Level)
	s.Equal("The Mossy Court", proj.LocationName)
	s.Equal([]entities.Direction{entities.DirectionNorth, entities.DirectionSouth}, proj.Exits)
	s.Require().Len(proj.NPCs, 1)
	s.Equal("Maren", proj.NPCs[0].Name)
	s.Require().Len(proj.GroundItems, 1)
	s.Equal(entities.ItemKindPotion, proj.GroundItems[0].Kind)

	s.Run("second session rejected", func() {
		_, err := s.svc.NewSession(s.ctx, &game.NewSessionInput{PlayerName: "Other", Class: entities.ClassMage})
		s.True(errors.IsFailedPrecondition(err))
	})
}

func (s *OrchestratorTestSuite) TestNewSessionValidation() {
	_, err := s.svc.NewSession(s.ctx, &game.NewSessionInput{Class: entities.ClassMage})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.svc.NewSession(s.ctx, &game.NewSessionInput{PlayerName: "Edda", Class: "bard"})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestMoveGeneratesEachLocationOnce() {
	s.newSession()

	out, err := s.svc.Move(s.ctx, &game.MoveInput{Direction: entities.DirectionNorth})
	s.Require().NoError(err)
	s.True(out.FirstVisit)
	s.False(out.CombatStarted)

	northID := entities.LocationID(42, entities.Coordinates{Y: 1})
	fp := (&generation.Request{Kind: generation.KindLocation, Key: []string{northID}}).Fingerprint()
	s.Equal(1, s.client.callsFor(fp))

	// Back and forth again: revisits come from session state and cache
	_, err = s.svc.Move(s.ctx, &game.MoveInput{Direction: entities.DirectionSouth})
	s.Require().NoError(err)
	out, err = s.svc.Move(s.ctx, &game.MoveInput{Direction: entities.DirectionNorth})
	s.Require().NoError(err)
	s.False(out.FirstVisit)
	s.Equal(1, s.client.callsFor(fp))
}

func (s *OrchestratorTestSuite) TestMoveRejectsMissingExit() {
	s.newSession()

	_, err := s.svc.Move(s.ctx, &game.MoveInput{Direction: entities.DirectionEast})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestMoveIntoEncounter() {
	s.newSession()
	s.eng.encounter = true

	out, err := s.svc.Move(s.ctx, &game.MoveInput{Direction: entities.DirectionNorth})
	s.Require().NoError(err)
	s.True(out.CombatStarted)
	s.NotEmpty(out.EnemyIntro)
	s.Equal(entities.PhaseCombat, out.Projection.Phase)
	s.Require().NotNil(out.Projection.Enemy)
	s.Equal("Grey Wolf", out.Projection.Enemy.Name)

	s.Run("movement blocked during combat", func() {
		_, err := s.svc.Move(s.ctx, &game.MoveInput{Direction: entities.DirectionSouth})
		s.True(errors.IsFailedPrecondition(err))
	})
}

func (s *OrchestratorTestSuite) startCombat() {
	s.newSession()
	s.eng.encounter = true
	out, err := s.svc.Move(s.ctx, &game.MoveInput{Direction: entities.DirectionNorth})
	s.Require().NoError(err)
	s.Require().True(out.CombatStarted)
	s.eng.encounter = false
}

func (s *OrchestratorTestSuite) TestAttackDefeatsEnemy() {
	s.startCombat()
	s.eng.attacks = []engine.AttackOutcome{{Resolution: entities.ResolutionCritical, Damage: 40}}
	s.eng.loot = []entities.Item{{Name: "tarnished coins", Kind: entities.ItemKindTreasure, Value: 7}}

	out, err := s.svc.Attack(s.ctx, &game.AttackInput{})
	s.Require().NoError(err)

	s.Equal(entities.ResolutionCritical, out.Resolution)
	s.True(out.EnemyDefeated)
	s.Equal(int32(25), out.ExperienceAwarded)
	s.Nil(out.Counterattack)
	s.NotEmpty(out.Narration)
	s.Equal(entities.PhaseExploration, out.Projection.Phase)
	s.Nil(out.Projection.Enemy)

	// Loot drops to the ground next to the location's own item
	s.Len(out.Projection.GroundItems, 2)
}

func (s *OrchestratorTestSuite) TestAttackCounterattack() {
	s.startCombat()
	s.eng.attacks = []engine.AttackOutcome{
		{Resolution: entities.ResolutionHit, Damage: 5},
		{Resolution: entities.ResolutionHit, Damage: 9},
	}

	out, err := s.svc.Attack(s.ctx, &game.AttackInput{})
	s.Require().NoError(err)

	s.False(out.EnemyDefeated)
	s.Require().NotNil(out.Counterattack)
	s.Equal(int32(9), out.Counterattack.Damage)
	s.Equal(int32(111), out.Projection.Stats.Health)
	s.Equal(entities.PhaseCombat, out.Projection.Phase)
}

func (s *OrchestratorTestSuite) TestPlayerDeathEndsGame() {
	s.startCombat()
	s.eng.attacks = []engine.AttackOutcome{
		{Resolution: entities.ResolutionMiss},
		{Resolution: entities.ResolutionCritical, Damage: 200},
	}

	out, err := s.svc.Attack(s.ctx, &game.AttackInput{})
	s.Require().NoError(err)
	s.True(out.GameOver)
	s.Equal(entities.PhaseGameOver, out.Projection.Phase)
	s.Equal(int32(0), out.Projection.Stats.Health)

	s.Run("terminal phase rejects further action", func() {
		_, err := s.svc.Attack(s.ctx, &game.AttackInput{})
		s.True(errors.IsFailedPrecondition(err))
		_, err = s.svc.Move(s.ctx, &game.MoveInput{Direction: entities.DirectionSouth})
		s.True(errors.IsFailedPrecondition(err))
	})
}

func (s *OrchestratorTestSuite) TestFlee() {
	s.Run("success returns to exploration", func() {
		s.SetupTest()
		s.startCombat()
		s.eng.flee = entities.ResolutionFleeSuccess

		out, err := s.svc.Flee(s.ctx, &game.FleeInput{})
		s.Require().NoError(err)
		s.Equal(entities.ResolutionFleeSuccess, out.Resolution)
		s.Nil(out.Counterattack)
		s.Equal(entities.PhaseExploration, out.Projection.Phase)
	})

	s.Run("failure costs a free enemy swing", func() {
		s.SetupTest()
		s.startCombat()
		s.eng.flee = entities.ResolutionFleeFailure
		s.eng.attacks = []engine.AttackOutcome{{Resolution: entities.ResolutionHit, Damage: 6}}

		out, err := s.svc.Flee(s.ctx, &game.FleeInput{})
		s.Require().NoError(err)
		s.Require().NotNil(out.Counterattack)
		s.Equal(int32(114), out.Projection.Stats.Health)
		s.Equal(entities.PhaseCombat, out.Projection.Phase)
	})
}

func (s *OrchestratorTestSuite) TestDialogueAndQuestLifecycle() {
	s.newSession()

	talk, err := s.svc.Talk(s.ctx, &game.TalkInput{NPCName: "maren", Topic: "the road ahead"})
	s.Require().NoError(err)
	s.NotEmpty(talk.Intro)
	s.Equal("Keep to the road, traveler.", talk.Line)
	s.Equal(entities.PhaseDialogue, talk.Projection.Phase)
	s.Require().NotNil(talk.OfferedQuest)
	s.Equal(entities.QuestStatusOffered, talk.OfferedQuest.Status)

	// Second exchange: no new intro, no second offer
	talk2, err := s.svc.Talk(s.ctx, &game.TalkInput{NPCName: "Maren", Topic: "wolves"})
	s.Require().NoError(err)
	s.Empty(talk2.Intro)
	s.Nil(talk2.OfferedQuest)

	accepted, err := s.svc.AcceptQuest(s.ctx, &game.AcceptQuestInput{QuestID: talk.OfferedQuest.ID})
	s.Require().NoError(err)
	s.Equal(entities.QuestStatusActive, accepted.Quest.Status)

	s.Run("accepting twice is rejected", func() {
		_, err := s.svc.AcceptQuest(s.ctx, &game.AcceptQuestInput{QuestID: talk.OfferedQuest.ID})
		s.True(errors.IsFailedPrecondition(err))
	})

	end, err := s.svc.EndDialogue(s.ctx, &game.EndDialogueInput{})
	s.Require().NoError(err)
	s.Equal(entities.PhaseExploration, end.Projection.Phase)

	// Defeating the quest target completes the quest the same tick
	s.eng.encounter = true
	move, err := s.svc.Move(s.ctx, &game.MoveInput{Direction: entities.DirectionNorth})
	s.Require().NoError(err)
	s.Require().True(move.CombatStarted)
	s.eng.encounter = false
	s.eng.attacks = []engine.AttackOutcome{{Resolution: entities.ResolutionHit, Damage: 40}}

	kill, err := s.svc.Attack(s.ctx, &game.AttackInput{})
	s.Require().NoError(err)
	s.True(kill.EnemyDefeated)

	s.Require().Len(kill.Projection.Quests, 1)
	s.Equal(entities.QuestStatusCompleted, kill.Projection.Quests[0].Status)
	s.Equal(int32(15), kill.Projection.Gold)

	// 25 kill experience plus 120 reward crosses the level threshold
	s.Equal(int32(2), kill.Projection.Stats.Level)
	s.Equal(int32(45), kill.Projection.Stats.Experience)
	s.Equal(int32(130), kill.Projection.Stats.MaxHealth)
}

func (s *OrchestratorTestSuite) TestTalkValidation() {
	s.newSession()

	_, err := s.svc.Talk(s.ctx, &game.TalkInput{NPCName: "Nobody"})
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestTakeAndUseItem() {
	s.newSession()

	taken, err := s.svc.TakeItem(s.ctx, &game.TakeItemInput{ItemName: "healing potion"})
	s.Require().NoError(err)
	s.Equal(entities.ItemKindPotion, taken.Item.Kind)
	s.Empty(taken.Projection.GroundItems)
	s.Require().Len(taken.Projection.Inventory, 1)

	s.Run("taking it again fails", func() {
		_, err := s.svc.TakeItem(s.ctx, &game.TakeItemInput{ItemName: "healing potion"})
		s.True(errors.IsNotFound(err))
	})

	used, err := s.svc.UseItem(s.ctx, &game.UseItemInput{ItemName: "healing potion"})
	s.Require().NoError(err)
	s.Empty(used.Projection.Inventory)
	s.Equal(used.Projection.Stats.MaxHealth, used.Projection.Stats.Health)
}

func (s *OrchestratorTestSuite) TestPluginPanicDoesNotAbortSession() {
	s.Require().NoError(s.bus.Register("flaky", events.EventLocationEnter, &panickyEnterHandler{}))

	proj := s.newSession()
	s.Equal(entities.PhaseExploration, proj.Phase)

	out, err := s.svc.Move(s.ctx, &game.MoveInput{Direction: entities.DirectionNorth})
	s.Require().NoError(err)
	s.Equal(entities.PhaseExploration, out.Projection.Phase)
}

type panickyEnterHandler struct {
	events.BaseHandler
}

func (h *panickyEnterHandler) OnLocationEnter(*events.LocationEnterPayload) error {
	panic("boom")
}

func (s *OrchestratorTestSuite) TestPluginAttackBonusClamped() {
	s.Require().NoError(s.bus.Register("buff", events.EventCombatStart, &hugeBonusHandler{}))
	s.startCombat()

	// The clamp keeps plugin influence within engine bounds; combat proceeds
	s.eng.attacks = []engine.AttackOutcome{{Resolution: entities.ResolutionHit, Damage: 40}}
	out, err := s.svc.Attack(s.ctx, &game.AttackInput{})
	s.Require().NoError(err)
	s.True(out.EnemyDefeated)
}

type hugeBonusHandler struct {
	events.BaseHandler
}

func (h *hugeBonusHandler) OnCombatStart(p *events.CombatStartPayload) error {
	p.PlayerAttackBonus = 10000
	return nil
}

func (s *OrchestratorTestSuite) TestSnapshotRestoreRoundTrip() {
	s.newSession()
	_, err := s.svc.Move(s.ctx, &game.MoveInput{Direction: entities.DirectionNorth})
	s.Require().NoError(err)

	snapOut, err := s.svc.Snapshot(s.ctx, &game.SnapshotInput{})
	s.Require().NoError(err)
	s.Require().NoError(snapOut.Snapshot.Validate())

	// A fresh stack restores the same world without re-generating anything
	restoredClient := newFakeClient()
	restoredPipeline, err := generation.NewPipeline(&generation.Config{
		Client:         restoredClient,
		BackoffBase:    time.Millisecond,
		RequestTimeout: time.Second,
	})
	s.Require().NoError(err)

	restoredSvc, err := game.NewOrchestrator(&game.Config{
		Pipeline:      restoredPipeline,
		Validator:     validator.New(),
		EngineFactory: func(int64) engine.Engine { return s.eng },
		Bus:           events.NewBus(),
		Clock:         clock.NewFixed(time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)),
		IDGenerator:   idgen.NewSequential("restored"),
	})
	s.Require().NoError(err)

	out, err := restoredSvc.RestoreSession(s.ctx, &game.RestoreSessionInput{Snapshot: snapOut.Snapshot})
	s.Require().NoError(err)

	s.Equal(entities.PhaseExploration, out.Projection.Phase)
	s.Equal("Edda", out.Projection.PlayerName)
	s.Equal(int32(120), out.Projection.Stats.Health)
	s.Equal(entities.LocationID(42, entities.Coordinates{Y: 1}), out.Projection.LocationID)

	// Walking back over explored ground replays from the imported cache
	back, err := restoredSvc.Move(s.ctx, &game.MoveInput{Direction: entities.DirectionSouth})
	s.Require().NoError(err)
	s.False(back.FirstVisit)
	s.Equal("The Mossy Court", back.Projection.LocationName)

	startID := entities.LocationID(42, entities.Coordinates{})
	fp := (&generation.Request{Kind: generation.KindLocation, Key: []string{startID}}).Fingerprint()
	s.Equal(0, restoredClient.callsFor(fp))
}

func (s *OrchestratorTestSuite) TestRestoreRejectsCorruptSnapshot() {
	s.newSession()
	snapOut, err := s.svc.Snapshot(s.ctx, &game.SnapshotInput{})
	s.Require().NoError(err)

	snapOut.Snapshot.Session.Player.Stats.Health = -5

	restoredSvc, err := game.NewOrchestrator(&game.Config{
		Pipeline:      s.pipeline,
		Validator:     validator.New(),
		EngineFactory: func(int64) engine.Engine { return s.eng },
		Bus:           events.NewBus(),
		Clock:         clock.NewFixed(time.Now()),
		IDGenerator:   idgen.NewSequential("restored"),
	})
	s.Require().NoError(err)

	_, err = restoredSvc.RestoreSession(s.ctx, &game.RestoreSessionInput{Snapshot: snapOut.Snapshot})
	s.Require().Error(err)
	s.True(errors.IsDataLoss(err))
}

func (s *OrchestratorTestSuite) TestGenerationOutageStillPlayable() {
	s.client.err = errors.Unavailable("service down")

	proj := s.newSession()

	// Fallback content keeps every invariant: a described location with exits
	s.Equal(entities.PhaseExploration, proj.Phase)
	s.NotEmpty(proj.LocationDescription)
	s.NotEmpty(proj.Exits)
}

func TestOrchestratorTestSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}
