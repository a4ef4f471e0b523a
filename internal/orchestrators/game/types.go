package game

import (
	"github.com/llmadventure/llmadventure/internal/engine"
	"github.com/llmadventure/llmadventure/internal/entities"
	"github.com/llmadventure/llmadventure/internal/snapshot"
)

// NPCView is a read-only projection of an NPC
type NPCView struct {
	ID          string
	Name        string
	Disposition entities.Disposition
	Intro       string
	Defeated    bool
}

// EnemyView is a read-only projection of the active combat enemy
type EnemyView struct {
	ID        string
	Name      string
	Health    int32
	MaxHealth int32
	Level     int32
}

// QuestView is a read-only projection of a quest
type QuestView struct {
	ID          string
	Title       string
	Description string
	Status      entities.QuestStatus
	Progress    int32
	Target      int32
}

// Projection is the read-only view of session state handed to the rendering
// collaborator after each transition. The renderer never writes back.
type Projection struct {
	SessionID   string
	Phase       entities.Phase
	TurnCounter int32

	PlayerName  string
	PlayerClass entities.Class
	Stats       entities.Stats
	Gold        int32
	Inventory   []entities.Item

	LocationID          string
	LocationName        string
	LocationDescription string
	Exits               []entities.Direction
	NPCs                []NPCView
	GroundItems         []entities.Item

	// Enemy is set while Phase is combat
	Enemy *EnemyView

	// DialoguePartner is set while Phase is dialogue
	DialoguePartner *NPCView

	Quests []QuestView
}

// NewSessionInput defines the request for creating a session
type NewSessionInput struct {
	PlayerName string
	Class      entities.Class

	// Seed drives all deterministic rolls; zero derives one from the clock
	Seed int64
}

// NewSessionOutput defines the response for creating a session
type NewSessionOutput struct {
	Projection *Projection
}

// RestoreSessionInput defines the request for restoring from a snapshot
type RestoreSessionInput struct {
	Snapshot *snapshot.Snapshot
}

// RestoreSessionOutput defines the response for restoring from a snapshot
type RestoreSessionOutput struct {
	Projection *Projection
}

// LookInput defines the request for re-describing the current location
type LookInput struct {
}

// LookOutput defines the response for looking around
type LookOutput struct {
	Projection *Projection
}

// MoveInput defines the request for moving in a direction
type MoveInput struct {
	Direction entities.Direction
}

// MoveOutput defines the response for moving
type MoveOutput struct {
	FirstVisit bool

	// CombatStarted reports the move resolved to an encounter
	CombatStarted bool
	EnemyIntro    string

	Projection *Projection
}

// AttackInput defines the request for one combat swing
type AttackInput struct {
}

// AttackOutput defines the response for one combat round
type AttackOutput struct {
	Resolution entities.Resolution
	Damage     int32
	Narration  string

	EnemyDefeated     bool
	ExperienceAwarded int32
	LevelUps          []engine.LevelUp

	// Counterattack describes the enemy's return swing, nil if the enemy died
	Counterattack *CounterattackResult

	GameOver   bool
	Projection *Projection
}

// CounterattackResult is the enemy's return swing within a combat round
type CounterattackResult struct {
	Resolution entities.Resolution
	Damage     int32
}

// FleeInput defines the request for a flee attempt
type FleeInput struct {
}

// FleeOutput defines the response for a flee attempt
type FleeOutput struct {
	Resolution entities.Resolution
	Narration  string

	// Counterattack is set when the flee fails and the enemy gets a free swing
	Counterattack *CounterattackResult

	GameOver   bool
	Projection *Projection
}

// TalkInput defines the request for talking to an NPC in the current location
type TalkInput struct {
	NPCName string

	// Topic is what the player says, free text
	Topic string
}

// TalkOutput defines the response for a dialogue turn
type TalkOutput struct {
	// Intro is set on the first meeting with this NPC
	Intro string

	Line string

	// OfferedQuest is set when the NPC proposes a quest this turn
	OfferedQuest *QuestView

	Projection *Projection
}

// EndDialogueInput defines the request for leaving a conversation
type EndDialogueInput struct {
}

// EndDialogueOutput defines the response for leaving a conversation
type EndDialogueOutput struct {
	Projection *Projection
}

// UseItemInput defines the request for using an inventory item
type UseItemInput struct {
	ItemName string
}

// UseItemOutput defines the response for using an item
type UseItemOutput struct {
	Description string
	Projection  *Projection
}

// TakeItemInput defines the request for picking up a ground item
type TakeItemInput struct {
	ItemName string
}

// TakeItemOutput defines the response for picking up an item
type TakeItemOutput struct {
	Item       entities.Item
	Projection *Projection
}

// AcceptQuestInput defines the request for accepting an offered quest
type AcceptQuestInput struct {
	QuestID string
}

// AcceptQuestOutput defines the response for accepting a quest
type AcceptQuestOutput struct {
	Quest      *QuestView
	Projection *Projection
}

// SnapshotInput defines the request for capturing a snapshot
type SnapshotInput struct {
}

// SnapshotOutput defines the response for capturing a snapshot
type SnapshotOutput struct {
	Snapshot *snapshot.Snapshot
}
