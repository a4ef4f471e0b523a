package entities

import "time"

// Session is the root aggregate. It owns every other entity exclusively and
// is mutated only by the game orchestrator. Created on new game or restored
// from a snapshot, destroyed on quit.
type Session struct {
	ID     string
	Player *Player
	Phase  Phase

	// Seed drives every deterministic roll and location identity
	Seed int64

	CurrentLocationID string
	Locations         map[string]*Location
	NPCs              map[string]*NPC

	// Quests are never deleted, only status-transitioned
	Quests []*Quest

	// ActiveEnemyID is set while Phase is combat
	ActiveEnemyID string

	// ActiveNPCID is set while Phase is dialogue
	ActiveNPCID string

	TurnCounter int32
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CurrentLocation returns the location the player occupies
func (s *Session) CurrentLocation() *Location {
	return s.Locations[s.CurrentLocationID]
}

// ActiveEnemy returns the combat opponent, or nil outside combat
func (s *Session) ActiveEnemy() *NPC {
	if s.ActiveEnemyID == "" {
		return nil
	}
	return s.NPCs[s.ActiveEnemyID]
}

// ActiveNPC returns the dialogue partner, or nil outside dialogue
func (s *Session) ActiveNPC() *NPC {
	if s.ActiveNPCID == "" {
		return nil
	}
	return s.NPCs[s.ActiveNPCID]
}

// QuestByID returns the quest with the given ID
func (s *Session) QuestByID(id string) *Quest {
	for _, q := range s.Quests {
		if q.ID == id {
			return q
		}
	}
	return nil
}

// ActiveQuests returns quests that count toward predicate evaluation
func (s *Session) ActiveQuests() []*Quest {
	var active []*Quest
	for _, q := range s.Quests {
		if q.Active() {
			active = append(active, q)
		}
	}
	return active
}
