package events

import (
	"github.com/llmadventure/llmadventure/internal/entities"
)

// Payloads are the only surface through which plugins touch game state.
// Handlers mutate the payload they receive; the orchestrator applies the
// final payload to authoritative state after dispatch completes. Plugins
// never reach into the Session directly.

// GameStartPayload fires once per session, before the first turn
type GameStartPayload struct {
	SessionID   string
	PlayerName  string
	PlayerClass entities.Class
	Restored    bool
}

// LocationEnterPayload fires when the player enters a location
type LocationEnterPayload struct {
	LocationID  string
	Name        string
	Description string
	FirstVisit  bool
}

// CombatStartPayload fires when combat begins. PlayerAttackBonus lets
// plugins grant a temporary bonus for the encounter.
type CombatStartPayload struct {
	EnemyID           string
	EnemyName         string
	EnemyLevel        int32
	PlayerAttackBonus int32
}

// CombatTurnPayload fires each combat round before resolution
type CombatTurnPayload struct {
	EnemyID string
	Turn    int32
}

// CombatResolvePayload fires after the rule engine resolves a round but
// before the outcome is applied. Damage is mutable within engine bounds.
type CombatResolvePayload struct {
	EnemyID    string
	Resolution entities.Resolution
	Damage     int32
	Narration  string
}

// CreatureDefeatedPayload fires when an enemy dies. Experience is mutable
// so plugins can grant victory bonuses.
type CreatureDefeatedPayload struct {
	EnemyName  string
	EnemyLevel int32
	Experience int32
}

// ItemCollectedPayload fires when the player picks up an item
type ItemCollectedPayload struct {
	Item entities.Item
}

// QuestCompletePayload fires when a quest predicate is satisfied. The
// reward is mutable so plugins can adjust it before it is granted.
type QuestCompletePayload struct {
	QuestID string
	Title   string
	Reward  entities.Reward
}

// DialogueStartPayload fires when a conversation begins
type DialogueStartPayload struct {
	NPCID   string
	NPCName string
}
