package entities

// NPC represents an enemy or non-player character. Stats mirror the player's
// numeric shape. Hostile NPCs become combat enemies; neutral and friendly
// ones can be talked to.
type NPC struct {
	ID          string
	Name        string
	Stats       Stats
	Disposition Disposition
	LocationID  string

	// Intro is the generated (or fallback) introduction line
	Intro string

	// DialogueState carries narrative continuity between dialogue turns
	DialogueState string

	Defeated bool
}

// Hostile reports whether this NPC fights on sight
func (n *NPC) Hostile() bool {
	return n.Disposition == DispositionHostile
}

// Alive reports whether the NPC can still act
func (n *NPC) Alive() bool {
	return !n.Defeated && n.Stats.Health > 0
}
