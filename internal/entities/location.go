package entities

import "fmt"

// Coordinates places a location on the world grid. The location identity is
// derived from session seed plus coordinates, so revisits are idempotent.
type Coordinates struct {
	X int32
	Y int32
	Z int32
}

// Step returns the coordinates one move in the given direction
func (c Coordinates) Step(dir Direction) Coordinates {
	switch dir {
	case DirectionNorth:
		c.Y++
	case DirectionSouth:
		c.Y--
	case DirectionEast:
		c.X++
	case DirectionWest:
		c.X--
	case DirectionUp:
		c.Z++
	case DirectionDown:
		c.Z--
	}
	return c
}

// String formats coordinates for keys and logs
func (c Coordinates) String() string {
	return fmt.Sprintf("%d,%d,%d", c.X, c.Y, c.Z)
}

// LocationID derives the deterministic location identifier for a session
// seed and grid position. The same seed and coordinates always produce the
// same ID, which keys the generation cache.
func LocationID(seed int64, coords Coordinates) string {
	return fmt.Sprintf("loc_%d_%s", seed, coords)
}

// Location is a generated place in the world, created lazily on first visit
// and cached for the session's lifetime.
type Location struct {
	ID          string
	Name        string
	Coords      Coordinates
	Description string

	// Exits maps directions to neighboring location IDs. Only valid compass
	// directions appear here; the validator repairs or drops anything else.
	Exits map[Direction]string

	NPCIDs []string
	Items  []Item

	Visited bool
}

// RemoveItem removes the first ground item with the given name
func (l *Location) RemoveItem(name string) (Item, bool) {
	for i, item := range l.Items {
		if item.Name == name {
			l.Items = append(l.Items[:i], l.Items[i+1:]...)
			return item, true
		}
	}
	return Item{}, false
}
