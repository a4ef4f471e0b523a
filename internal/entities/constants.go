package entities

// Phase identifies the current mode of the game state machine
type Phase string

// Game phases
const (
	PhaseExploration Phase = "exploration"
	PhaseCombat      Phase = "combat"
	PhaseDialogue    Phase = "dialogue"
	PhaseGameOver    Phase = "game_over"
)

// Class identifies a player character class
type Class string

// Player classes
const (
	ClassWarrior Class = "warrior"
	ClassMage    Class = "mage"
	ClassRogue   Class = "rogue"
	ClassRanger  Class = "ranger"
)

// Classes lists every valid player class
func Classes() []Class {
	return []Class{ClassWarrior, ClassMage, ClassRogue, ClassRanger}
}

// Valid reports whether the class is one of the fixed set
func (c Class) Valid() bool {
	switch c {
	case ClassWarrior, ClassMage, ClassRogue, ClassRanger:
		return true
	}
	return false
}

// Direction identifies a compass exit from a location
type Direction string

// Compass directions
const (
	DirectionNorth Direction = "north"
	DirectionSouth Direction = "south"
	DirectionEast  Direction = "east"
	DirectionWest  Direction = "west"
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
)

// Directions lists every valid exit direction
func Directions() []Direction {
	return []Direction{
		DirectionNorth, DirectionSouth, DirectionEast,
		DirectionWest, DirectionUp, DirectionDown,
	}
}

// Valid reports whether the direction is one of the compass set
func (d Direction) Valid() bool {
	switch d {
	case DirectionNorth, DirectionSouth, DirectionEast,
		DirectionWest, DirectionUp, DirectionDown:
		return true
	}
	return false
}

// Opposite returns the reverse direction
func (d Direction) Opposite() Direction {
	switch d {
	case DirectionNorth:
		return DirectionSouth
	case DirectionSouth:
		return DirectionNorth
	case DirectionEast:
		return DirectionWest
	case DirectionWest:
		return DirectionEast
	case DirectionUp:
		return DirectionDown
	case DirectionDown:
		return DirectionUp
	}
	return d
}

// Disposition identifies how an NPC reacts to the player
type Disposition string

// NPC dispositions
const (
	DispositionHostile  Disposition = "hostile"
	DispositionNeutral  Disposition = "neutral"
	DispositionFriendly Disposition = "friendly"
)

// Valid reports whether the disposition is one of the fixed set
func (d Disposition) Valid() bool {
	switch d {
	case DispositionHostile, DispositionNeutral, DispositionFriendly:
		return true
	}
	return false
}

// QuestStatus identifies where a quest is in its lifecycle
type QuestStatus string

// Quest statuses. Transitions are monotonic:
// offered -> active -> completed or failed, never reversed.
const (
	QuestStatusOffered   QuestStatus = "offered"
	QuestStatusActive    QuestStatus = "active"
	QuestStatusCompleted QuestStatus = "completed"
	QuestStatusFailed    QuestStatus = "failed"
)

// CanTransition reports whether a quest may move from this status to next
func (s QuestStatus) CanTransition(next QuestStatus) bool {
	switch s {
	case QuestStatusOffered:
		return next == QuestStatusActive || next == QuestStatusFailed
	case QuestStatusActive:
		return next == QuestStatusCompleted || next == QuestStatusFailed
	}
	return false
}

// ObjectiveKind identifies how a quest completes
type ObjectiveKind string

// Quest objective kinds
const (
	ObjectiveDefeat  ObjectiveKind = "defeat"
	ObjectiveReach   ObjectiveKind = "reach"
	ObjectiveCollect ObjectiveKind = "collect"
)

// Valid reports whether the objective kind is one of the fixed set
func (k ObjectiveKind) Valid() bool {
	switch k {
	case ObjectiveDefeat, ObjectiveReach, ObjectiveCollect:
		return true
	}
	return false
}

// Resolution identifies the deterministic outcome of a combat round
type Resolution string

// Combat resolutions
const (
	ResolutionHit         Resolution = "hit"
	ResolutionMiss        Resolution = "miss"
	ResolutionCritical    Resolution = "critical"
	ResolutionFleeSuccess Resolution = "flee-success"
	ResolutionFleeFailure Resolution = "flee-failure"
)

// Valid reports whether the resolution is one of the fixed set
func (r Resolution) Valid() bool {
	switch r {
	case ResolutionHit, ResolutionMiss, ResolutionCritical,
		ResolutionFleeSuccess, ResolutionFleeFailure:
		return true
	}
	return false
}
