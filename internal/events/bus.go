package events

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/llmadventure/llmadventure/internal/errors"
)

// registration binds a plugin to one event
type registration struct {
	plugin  string
	handler Handler
}

// Bus holds plugin registrations and dispatches lifecycle events.
// Registration is append-only and closes when the session starts; dispatch
// is synchronous and single-threaded from the orchestrator's perspective.
type Bus struct {
	mu       sync.Mutex
	handlers map[Event][]registration
	plugins  map[string]Handler
	sealed   bool
}

// NewBus creates an empty event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[Event][]registration),
		plugins:  make(map[string]Handler),
	}
}

// Register binds a plugin handler to an event. Handlers fire in
// registration order. Registration fails once the bus is sealed.
func (b *Bus) Register(plugin string, event Event, handler Handler) error {
	if plugin == "" {
		return errors.InvalidArgument("plugin name is required")
	}
	if !event.Valid() {
		return errors.InvalidArgumentf("unrecognized event: %s", event)
	}
	if handler == nil {
		return errors.InvalidArgument("handler is required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sealed {
		return errors.FailedPrecondition("bus is sealed; plugins register before session start")
	}

	b.handlers[event] = append(b.handlers[event], registration{plugin: plugin, handler: handler})
	b.plugins[plugin] = handler
	return nil
}

// Seal closes registration. Called when the session starts.
func (b *Bus) Seal() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sealed = true
}

// ExportPluginState collects state blobs from plugins that implement
// Stateful, for inclusion in a snapshot
func (b *Bus) ExportPluginState() map[string][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make(map[string][]byte)
	for name, h := range b.plugins {
		s, ok := h.(Stateful)
		if !ok {
			continue
		}
		data, err := s.PluginState()
		if err != nil {
			slog.Warn("plugin state export failed", "plugin", name, "error", err)
			continue
		}
		out[name] = data
	}
	return out
}

// ImportPluginState hands snapshot state blobs back to their plugins.
// Blobs for plugins that are not loaded are ignored.
func (b *Bus) ImportPluginState(state map[string][]byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for name, data := range state {
		h, ok := b.plugins[name]
		if !ok {
			continue
		}
		s, ok := h.(Stateful)
		if !ok {
			continue
		}
		if err := s.RestorePluginState(data); err != nil {
			slog.Warn("plugin state restore failed", "plugin", name, "error", err)
		}
	}
}

// dispatch runs the handler pipeline for one event. Each handler gets a
// copy of the current payload; a failure discards that handler's changes
// and the pipeline continues from the last good payload.
func dispatch[T any](b *Bus, event Event, payload T, call func(Handler, *T) error) T {
	b.mu.Lock()
	regs := b.handlers[event]
	b.mu.Unlock()

	current := payload
	for _, reg := range regs {
		next := current
		if err := safeCall(reg.plugin, event, func() error { return call(reg.handler, &next) }); err != nil {
			slog.Warn("plugin handler failed, continuing dispatch",
				"plugin", reg.plugin,
				"event", event,
				"error", err,
			)
			continue
		}
		current = next
	}
	return current
}

// safeCall isolates a handler: panics become plugin failure errors so a
// misbehaving plugin cannot abort the game loop
func safeCall(plugin string, event Event, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.PluginFailuref("plugin %s panicked on %s: %v", plugin, event, r)
		}
	}()

	if callErr := fn(); callErr != nil {
		return errors.WrapWithCode(callErr, errors.CodePluginFailure,
			fmt.Sprintf("plugin %s failed on %s", plugin, event))
	}
	return nil
}

// EmitGameStart dispatches on_game_start
func (b *Bus) EmitGameStart(p GameStartPayload) GameStartPayload {
	return dispatch(b, EventGameStart, p, Handler.OnGameStart)
}

// EmitLocationEnter dispatches on_location_enter
func (b *Bus) EmitLocationEnter(p LocationEnterPayload) LocationEnterPayload {
	return dispatch(b, EventLocationEnter, p, Handler.OnLocationEnter)
}

// EmitCombatStart dispatches on_combat_start
func (b *Bus) EmitCombatStart(p CombatStartPayload) CombatStartPayload {
	return dispatch(b, EventCombatStart, p, Handler.OnCombatStart)
}

// EmitCombatTurn dispatches on_combat_turn
func (b *Bus) EmitCombatTurn(p CombatTurnPayload) CombatTurnPayload {
	return dispatch(b, EventCombatTurn, p, Handler.OnCombatTurn)
}

// EmitCombatResolve dispatches on_combat_resolve
func (b *Bus) EmitCombatResolve(p CombatResolvePayload) CombatResolvePayload {
	return dispatch(b, EventCombatResolve, p, Handler.OnCombatResolve)
}

// EmitCreatureDefeated dispatches on_creature_defeated
func (b *Bus) EmitCreatureDefeated(p CreatureDefeatedPayload) CreatureDefeatedPayload {
	return dispatch(b, EventCreatureDefeated, p, Handler.OnCreatureDefeated)
}

// EmitItemCollected dispatches on_item_collected
func (b *Bus) EmitItemCollected(p ItemCollectedPayload) ItemCollectedPayload {
	return dispatch(b, EventItemCollected, p, Handler.OnItemCollected)
}

// EmitQuestComplete dispatches on_quest_complete
func (b *Bus) EmitQuestComplete(p QuestCompletePayload) QuestCompletePayload {
	return dispatch(b, EventQuestComplete, p, Handler.OnQuestComplete)
}

// EmitDialogueStart dispatches on_dialogue_start
func (b *Bus) EmitDialogueStart(p DialogueStartPayload) DialogueStartPayload {
	return dispatch(b, EventDialogueStart, p, Handler.OnDialogueStart)
}
