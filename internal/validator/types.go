package validator

import (
	"github.com/llmadventure/llmadventure/internal/entities"
)

// NPCRef is a validated reference to an NPC placed in a location
type NPCRef struct {
	Name        string
	Disposition entities.Disposition
}

// LocationArtifact is validated location content. Exits contain only
// compass directions; everything irreparable has been dropped.
type LocationArtifact struct {
	Name        string
	Description string
	Exits       []entities.Direction
	NPCs        []NPCRef
	Items       []string
}

// NPCIntroArtifact is a validated NPC introduction
type NPCIntroArtifact struct {
	Name        string
	Disposition entities.Disposition
	Intro       string
}

// CombatArtifact is validated combat narration. The resolution tag is
// guaranteed to match the deterministic roll the rule engine computed.
type CombatArtifact struct {
	Resolution entities.Resolution
	Narration  string
}

// QuestArtifact is a validated quest proposal with rewards clamped to
// rule-engine bounds
type QuestArtifact struct {
	Title       string
	Description string
	Objective   entities.ObjectiveKind
	Target      string
	Count       int32
	RewardXP    int32
	RewardGold  int32
}

// DialogueArtifact is a validated dialogue line
type DialogueArtifact struct {
	Line  string
	State string
}

// Reward bounds enforced on quest proposals
const (
	MinRewardXP   = 1
	MaxRewardXP   = 500
	MinRewardGold = 0
	MaxRewardGold = 200
	MinCount      = 1
	MaxCount      = 5
)
