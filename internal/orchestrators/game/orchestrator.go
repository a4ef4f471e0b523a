// Package game implements the phase state machine that owns authoritative
// session state.
//
// Every player intent follows the same shape: request content through the
// generation pipeline, validate it (degrading to the deterministic fallback
// when validation rejects), resolve numbers through the rule engine, mutate
// session state, then emit the lifecycle event. Generation and validation
// failures never block a transition; only an invariant violation aborts the
// session.
package game

//go:generate mockgen -destination=mock/mock_service.go -package=gamemock github.com/llmadventure/llmadventure/internal/orchestrators/game Service

import (
	"context"
	"log/slog"

	"github.com/llmadventure/llmadventure/internal/engine"
	"github.com/llmadventure/llmadventure/internal/entities"
	"github.com/llmadventure/llmadventure/internal/errors"
	"github.com/llmadventure/llmadventure/internal/events"
	"github.com/llmadventure/llmadventure/internal/generation"
	"github.com/llmadventure/llmadventure/internal/pkg/clock"
	"github.com/llmadventure/llmadventure/internal/pkg/idgen"
	"github.com/llmadventure/llmadventure/internal/snapshot"
	"github.com/llmadventure/llmadventure/internal/validator"
)

// Service defines the interface for game session operations. One service
// instance drives one session at a time; operations are not safe for
// concurrent use, matching the single-threaded turn model.
type Service interface {
	// NewSession creates a session and materializes the starting location
	NewSession(ctx context.Context, input *NewSessionInput) (*NewSessionOutput, error)

	// RestoreSession reconstructs a session from a snapshot
	RestoreSession(ctx context.Context, input *RestoreSessionInput) (*RestoreSessionOutput, error)

	// Look re-presents the current location without advancing the turn
	Look(ctx context.Context, input *LookInput) (*LookOutput, error)

	// Move walks through an exit, possibly into an encounter
	Move(ctx context.Context, input *MoveInput) (*MoveOutput, error)

	// Attack resolves one combat round
	Attack(ctx context.Context, input *AttackInput) (*AttackOutput, error)

	// Flee attempts to leave combat
	Flee(ctx context.Context, input *FleeInput) (*FleeOutput, error)

	// Talk starts or continues dialogue with an NPC in the current location
	Talk(ctx context.Context, input *TalkInput) (*TalkOutput, error)

	// EndDialogue returns from dialogue to exploration
	EndDialogue(ctx context.Context, input *EndDialogueInput) (*EndDialogueOutput, error)

	// UseItem consumes or equips an inventory item
	UseItem(ctx context.Context, input *UseItemInput) (*UseItemOutput, error)

	// TakeItem picks up a ground item in the current location
	TakeItem(ctx context.Context, input *TakeItemInput) (*TakeItemOutput, error)

	// AcceptQuest activates an offered quest
	AcceptQuest(ctx context.Context, input *AcceptQuestInput) (*AcceptQuestOutput, error)

	// Snapshot captures the session at the current quiescent point
	Snapshot(ctx context.Context, input *SnapshotInput) (*SnapshotOutput, error)
}

// EngineFactory builds a rule engine from a seed. The orchestrator reseeds
// at each turn boundary from session seed and turn counter, so a restored
// session replays the same outcomes for the same intents.
type EngineFactory func(seed int64) engine.Engine

// Config holds the dependencies for the game orchestrator
type Config struct {
	Pipeline      *generation.Pipeline
	Validator     *validator.Validator
	EngineFactory EngineFactory
	Bus           *events.Bus
	Clock         clock.Clock
	IDGenerator   idgen.Generator
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Pipeline == nil {
		vb.RequiredField("Pipeline")
	}
	if c.Validator == nil {
		vb.RequiredField("Validator")
	}
	if c.EngineFactory == nil {
		vb.RequiredField("EngineFactory")
	}
	if c.Bus == nil {
		vb.RequiredField("Bus")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}

	return vb.Build()
}

type orchestrator struct {
	pipeline  *generation.Pipeline
	validator *validator.Validator
	newEngine EngineFactory
	bus       *events.Bus
	clock     clock.Clock
	idGen     idgen.Generator

	session *entities.Session

	// attackBonus is a plugin-granted bonus for the current encounter
	attackBonus int32

	// aborted is set after an invariant violation; every later call fails
	aborted bool
}

// NewOrchestrator creates a game orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		pipeline:  cfg.Pipeline,
		validator: cfg.Validator,
		newEngine: cfg.EngineFactory,
		bus:       cfg.Bus,
		clock:     cfg.Clock,
		idGen:     cfg.IDGenerator,
	}, nil
}

// Ensure orchestrator implements Service
var _ Service = (*orchestrator)(nil)

// NewSession creates a session and materializes the starting location
func (o *orchestrator) NewSession(ctx context.Context, input *NewSessionInput) (*NewSessionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.PlayerName == "" {
		return nil, errors.InvalidArgument("player name is required")
	}
	if !input.Class.Valid() {
		return nil, errors.InvalidArgumentf("unknown class: %s", input.Class)
	}
	if o.session != nil {
		return nil, errors.FailedPrecondition("a session is already active")
	}

	seed := input.Seed
	if seed == 0 {
		seed = o.clock.Now().UnixNano()
	}

	now := o.clock.Now()
	o.session = &entities.Session{
		ID:        o.idGen.Generate(),
		Player:    entities.NewPlayer(input.PlayerName, input.Class),
		Phase:     entities.PhaseExploration,
		Seed:      seed,
		Locations: make(map[string]*entities.Location),
		NPCs:      make(map[string]*entities.NPC),
		CreatedAt: now,
		UpdatedAt: now,
	}

	o.bus.Seal()
	o.bus.EmitGameStart(events.GameStartPayload{
		SessionID:   o.session.ID,
		PlayerName:  input.PlayerName,
		PlayerClass: input.Class,
	})

	slog.Info("session created",
		"session_id", o.session.ID,
		"class", input.Class,
		"seed", seed,
	)

	start, err := o.ensureLocation(ctx, o.newEngine(seed), entities.Coordinates{})
	if err != nil {
		return nil, err
	}
	o.session.CurrentLocationID = start.ID
	o.session.Player.LocationID = start.ID
	start.Visited = true

	o.bus.EmitLocationEnter(events.LocationEnterPayload{
		LocationID:  start.ID,
		Name:        start.Name,
		Description: start.Description,
		FirstVisit:  true,
	})

	o.prefetchAdjacent(start)

	if err := o.checkInvariants(); err != nil {
		return nil, err
	}

	return &NewSessionOutput{Projection: o.project()}, nil
}

// RestoreSession reconstructs a session from a snapshot
func (o *orchestrator) RestoreSession(ctx context.Context, input *RestoreSessionInput) (*RestoreSessionOutput, error) {
	if input == nil || input.Snapshot == nil {
		return nil, errors.InvalidArgument("snapshot is required")
	}
	if o.session != nil {
		return nil, errors.FailedPrecondition("a session is already active")
	}

	if err := input.Snapshot.Validate(); err != nil {
		return nil, err
	}
	if err := o.pipeline.Import(input.Snapshot.Cache); err != nil {
		return nil, err
	}

	o.session = input.Snapshot.Session
	o.session.UpdatedAt = o.clock.Now()

	o.bus.Seal()
	o.bus.ImportPluginState(input.Snapshot.PluginState)
	o.bus.EmitGameStart(events.GameStartPayload{
		SessionID:   o.session.ID,
		PlayerName:  o.session.Player.Name,
		PlayerClass: o.session.Player.Class,
		Restored:    true,
	})

	slog.Info("session restored",
		"session_id", o.session.ID,
		"turn", o.session.TurnCounter,
		"phase", o.session.Phase,
	)

	if loc := o.session.CurrentLocation(); loc != nil {
		o.prefetchAdjacent(loc)
	}

	if err := o.checkInvariants(); err != nil {
		return nil, err
	}

	return &RestoreSessionOutput{Projection: o.project()}, nil
}

// Look re-presents the current location without advancing the turn
func (o *orchestrator) Look(ctx context.Context, input *LookInput) (*LookOutput, error) {
	if err := o.guard(); err != nil {
		return nil, err
	}
	return &LookOutput{Projection: o.project()}, nil
}

// Snapshot captures the session at the current quiescent point
func (o *orchestrator) Snapshot(ctx context.Context, input *SnapshotInput) (*SnapshotOutput, error) {
	if err := o.guard(); err != nil {
		return nil, err
	}
	if err := o.checkInvariants(); err != nil {
		return nil, err
	}

	snap, err := snapshot.Capture(
		o.session,
		o.pipeline.Export(),
		o.bus.ExportPluginState(),
		o.clock.Now(),
	)
	if err != nil {
		return nil, err
	}

	return &SnapshotOutput{Snapshot: snap}, nil
}

// guard rejects calls when no session is live or the session was aborted
func (o *orchestrator) guard() error {
	if o.aborted {
		return errors.FailedPrecondition("session aborted after internal error")
	}
	if o.session == nil {
		return errors.FailedPrecondition("no active session")
	}
	return nil
}

// requirePhase guards and additionally checks the current phase
func (o *orchestrator) requirePhase(phase entities.Phase) error {
	if err := o.guard(); err != nil {
		return err
	}
	if o.session.Phase == entities.PhaseGameOver {
		return errors.FailedPrecondition("the game is over; start a new session or restore a save")
	}
	if o.session.Phase != phase {
		return errors.FailedPreconditionf("action requires %s phase, current phase is %s",
			phase, o.session.Phase)
	}
	return nil
}

// beginTurn advances the turn counter and builds the engine for this turn.
// Reseeding per turn keeps restored sessions on the same roll sequence.
func (o *orchestrator) beginTurn() engine.Engine {
	o.session.TurnCounter++
	o.session.UpdatedAt = o.clock.Now()
	return o.newEngine(o.session.Seed + int64(o.session.TurnCounter))
}

// abort marks the session unusable after an invariant violation
func (o *orchestrator) abort(err error) error {
	o.aborted = true
	slog.Error("session aborted", "session_id", o.session.ID, "error", err)
	return err
}

// checkInvariants verifies the quiescent-point invariants. Any violation is
// an internal bug, not a recoverable game condition.
func (o *orchestrator) checkInvariants() error {
	s := o.session
	p := s.Player.Stats

	if p.Health < 0 || p.Health > p.MaxHealth {
		return o.abort(errors.InvariantViolationf(
			"player health %d outside [0, %d]", p.Health, p.MaxHealth))
	}

	loc := s.CurrentLocation()
	if loc == nil {
		return o.abort(errors.InvariantViolationf(
			"current location %s is not materialized", s.CurrentLocationID))
	}
	if loc.Description == "" {
		return o.abort(errors.InvariantViolationf(
			"location %s presented without a description", loc.ID))
	}

	switch s.Phase {
	case entities.PhaseCombat:
		if s.ActiveEnemy() == nil {
			return o.abort(errors.InvariantViolation("combat phase with no active enemy"))
		}
	case entities.PhaseDialogue:
		if s.ActiveNPC() == nil {
			return o.abort(errors.InvariantViolation("dialogue phase with no active npc"))
		}
	}

	for _, q := range s.Quests {
		switch q.Status {
		case entities.QuestStatusOffered, entities.QuestStatusActive,
			entities.QuestStatusCompleted, entities.QuestStatusFailed:
		default:
			return o.abort(errors.InvariantViolationf(
				"quest %s in unknown status %q", q.ID, q.Status))
		}
	}

	return nil
}
