package entities

// Objective is a quest completion predicate expressed over session state
type Objective struct {
	Kind ObjectiveKind

	// TargetID names the enemy to defeat or the location to reach,
	// depending on Kind. Empty for collect objectives.
	TargetID string

	// TargetCount is how many defeats/collections complete the quest
	TargetCount int32

	// ItemName is the item to collect for collect objectives
	ItemName string
}

// Reward is granted when a quest completes
type Reward struct {
	Experience int32
	Gold       int32
	Items      []Item
}

// Quest is generated content with a deterministic completion predicate.
// Quests are never deleted; completed and failed quests are retained for
// save history.
type Quest struct {
	ID          string
	Title       string
	Description string

	// GiverID is the NPC that offered the quest
	GiverID   string
	Objective Objective
	Reward    Reward
	Status    QuestStatus
	Progress  int32
}

// Advance increments progress and reports whether the objective is met
func (q *Quest) Advance() bool {
	q.Progress++
	return q.Progress >= q.Objective.TargetCount
}

// Active reports whether the quest counts toward predicate evaluation
func (q *Quest) Active() bool {
	return q.Status == QuestStatusActive
}
