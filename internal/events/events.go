// Package events implements the plugin event bus: typed lifecycle events
// dispatched synchronously to registered handlers in registration order.
//
// Dispatch is a pipeline, not a fan-out: each handler receives the payload
// produced by the previous one, so plugin effects compose deterministically.
// A handler that errors or panics is isolated; dispatch continues with the
// last good payload and the failure is logged.
package events

// Event names form a closed, versioned set
type Event string

// Lifecycle events
const (
	EventGameStart        Event = "on_game_start"
	EventLocationEnter    Event = "on_location_enter"
	EventCombatStart      Event = "on_combat_start"
	EventCombatTurn       Event = "on_combat_turn"
	EventCombatResolve    Event = "on_combat_resolve"
	EventCreatureDefeated Event = "on_creature_defeated"
	EventItemCollected    Event = "on_item_collected"
	EventQuestComplete    Event = "on_quest_complete"
	EventDialogueStart    Event = "on_dialogue_start"
)

// Events lists the closed event set
func Events() []Event {
	return []Event{
		EventGameStart, EventLocationEnter, EventCombatStart,
		EventCombatTurn, EventCombatResolve, EventCreatureDefeated,
		EventItemCollected, EventQuestComplete, EventDialogueStart,
	}
}

// Valid reports whether the event name is recognized
func (e Event) Valid() bool {
	switch e {
	case EventGameStart, EventLocationEnter, EventCombatStart,
		EventCombatTurn, EventCombatResolve, EventCreatureDefeated,
		EventItemCollected, EventQuestComplete, EventDialogueStart:
		return true
	}
	return false
}
