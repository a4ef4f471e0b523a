package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llmadventure/llmadventure/internal/entities"
)

func TestNewPlayerBaseStats(t *testing.T) {
	tests := []struct {
		class  entities.Class
		health int32
		attack int32
	}{
		{entities.ClassWarrior, 120, 14},
		{entities.ClassMage, 80, 16},
		{entities.ClassRogue, 90, 12},
		{entities.ClassRanger, 100, 13},
	}

	for _, tt := range tests {
		t.Run(string(tt.class), func(t *testing.T) {
			p := entities.NewPlayer("Edda", tt.class)
			assert.Equal(t, tt.health, p.Stats.Health)
			assert.Equal(t, tt.health, p.Stats.MaxHealth)
			assert.Equal(t, tt.attack, p.Stats.Attack)
			assert.Equal(t, int32(1), p.Stats.Level)
		})
	}
}

func TestPlayerInventory(t *testing.T) {
	p := entities.NewPlayer("Edda", entities.ClassRogue)
	p.AddItem(entities.Item{Name: "rope"})
	p.AddItem(entities.Item{Name: "lantern"})
	p.AddItem(entities.Item{Name: "rope"})

	item, ok := p.RemoveItem("rope")
	require.True(t, ok)
	assert.Equal(t, "rope", item.Name)

	// Insertion order preserved, only the first match removed
	require.Len(t, p.Inventory, 2)
	assert.Equal(t, "lantern", p.Inventory[0].Name)
	assert.Equal(t, "rope", p.Inventory[1].Name)

	_, ok = p.RemoveItem("anvil")
	assert.False(t, ok)
}

func TestDirectionOpposite(t *testing.T) {
	for _, dir := range entities.Directions() {
		assert.Equal(t, dir, dir.Opposite().Opposite())
		assert.NotEqual(t, dir, dir.Opposite())
	}
}

func TestCoordinatesStep(t *testing.T) {
	origin := entities.Coordinates{}

	north := origin.Step(entities.DirectionNorth)
	assert.Equal(t, entities.Coordinates{Y: 1}, north)
	assert.Equal(t, origin, north.Step(entities.DirectionSouth))

	up := origin.Step(entities.DirectionUp)
	assert.Equal(t, entities.Coordinates{Z: 1}, up)
}

func TestLocationIDIsStable(t *testing.T) {
	coords := entities.Coordinates{X: 2, Y: -1}
	assert.Equal(t, entities.LocationID(99, coords), entities.LocationID(99, coords))
	assert.NotEqual(t, entities.LocationID(99, coords), entities.LocationID(100, coords))
	assert.NotEqual(t, entities.LocationID(99, coords),
		entities.LocationID(99, coords.Step(entities.DirectionEast)))
}

func TestQuestStatusTransitions(t *testing.T) {
	assert.True(t, entities.QuestStatusOffered.CanTransition(entities.QuestStatusActive))
	assert.True(t, entities.QuestStatusActive.CanTransition(entities.QuestStatusCompleted))
	assert.True(t, entities.QuestStatusActive.CanTransition(entities.QuestStatusFailed))

	// Monotonic: no reversals, terminal statuses go nowhere
	assert.False(t, entities.QuestStatusActive.CanTransition(entities.QuestStatusOffered))
	assert.False(t, entities.QuestStatusCompleted.CanTransition(entities.QuestStatusActive))
	assert.False(t, entities.QuestStatusFailed.CanTransition(entities.QuestStatusCompleted))
	assert.False(t, entities.QuestStatusCompleted.CanTransition(entities.QuestStatusFailed))
}

func TestQuestAdvance(t *testing.T) {
	q := &entities.Quest{
		Objective: entities.Objective{Kind: entities.ObjectiveDefeat, TargetID: "wolf", TargetCount: 2},
		Status:    entities.QuestStatusActive,
	}

	assert.False(t, q.Advance())
	assert.True(t, q.Advance())
	assert.Equal(t, int32(2), q.Progress)
}

func TestSessionAccessors(t *testing.T) {
	s := &entities.Session{
		Locations: map[string]*entities.Location{
			"l1": {ID: "l1", Name: "Gate"},
		},
		NPCs: map[string]*entities.NPC{
			"n1": {ID: "n1", Name: "Maren"},
		},
		CurrentLocationID: "l1",
	}

	require.NotNil(t, s.CurrentLocation())
	assert.Equal(t, "Gate", s.CurrentLocation().Name)
	assert.Nil(t, s.ActiveEnemy())
	assert.Nil(t, s.ActiveNPC())

	s.ActiveNPCID = "n1"
	require.NotNil(t, s.ActiveNPC())

	s.Quests = []*entities.Quest{
		{ID: "q1", Status: entities.QuestStatusActive},
		{ID: "q2", Status: entities.QuestStatusOffered},
	}
	assert.Len(t, s.ActiveQuests(), 1)
	assert.NotNil(t, s.QuestByID("q2"))
	assert.Nil(t, s.QuestByID("q3"))
}
