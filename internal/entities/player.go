package entities

// Stats holds the numeric shape shared by players and NPCs
type Stats struct {
	Health      int32
	MaxHealth   int32
	Resource    int32
	MaxResource int32
	Attack      int32
	Defense     int32
	Level       int32
	Experience  int32
}

// Player represents the player character. Only the game orchestrator mutates
// it, and only in response to validated resolution outcomes or deterministic
// rules.
type Player struct {
	Name       string
	Class      Class
	Stats      Stats
	Inventory  []Item // insertion order preserved for display
	LocationID string
	Gold       int32
}

// classBaseStats is the fixed stat block each class starts with
var classBaseStats = map[Class]Stats{
	ClassWarrior: {Health: 120, MaxHealth: 120, Resource: 30, MaxResource: 30, Attack: 14, Defense: 10, Level: 1},
	ClassMage:    {Health: 80, MaxHealth: 80, Resource: 100, MaxResource: 100, Attack: 16, Defense: 6, Level: 1},
	ClassRogue:   {Health: 90, MaxHealth: 90, Resource: 60, MaxResource: 60, Attack: 12, Defense: 8, Level: 1},
	ClassRanger:  {Health: 100, MaxHealth: 100, Resource: 70, MaxResource: 70, Attack: 13, Defense: 8, Level: 1},
}

// NewPlayer creates a level 1 player of the given class
func NewPlayer(name string, class Class) *Player {
	return &Player{
		Name:  name,
		Class: class,
		Stats: classBaseStats[class],
	}
}

// BaseStats returns the starting stat block for a class
func BaseStats(class Class) Stats {
	return classBaseStats[class]
}

// XPForLevel returns the experience needed to advance past the given level
func XPForLevel(level int32) int32 {
	return level * 100
}

// AddItem appends an item to the inventory, preserving insertion order
func (p *Player) AddItem(item Item) {
	p.Inventory = append(p.Inventory, item)
}

// RemoveItem removes the first inventory item with the given name and
// returns it. The second return is false when no item matched.
func (p *Player) RemoveItem(name string) (Item, bool) {
	for i, item := range p.Inventory {
		if item.Name == name {
			p.Inventory = append(p.Inventory[:i], p.Inventory[i+1:]...)
			return item, true
		}
	}
	return Item{}, false
}

// FindItem returns the first inventory item with the given name
func (p *Player) FindItem(name string) (Item, bool) {
	for _, item := range p.Inventory {
		if item.Name == name {
			return item, true
		}
	}
	return Item{}, false
}
