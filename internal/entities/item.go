package entities

// ItemKind identifies what using an item does
type ItemKind string

// Item kinds
const (
	ItemKindPotion   ItemKind = "potion"
	ItemKindWeapon   ItemKind = "weapon"
	ItemKindArmor    ItemKind = "armor"
	ItemKindTreasure ItemKind = "treasure"
)

// Item is a carryable object. Numeric values come from the deterministic
// rule engine, never from generated text.
type Item struct {
	Name  string
	Kind  ItemKind
	Value int32

	// Potency is healing for potions, attack bonus for weapons,
	// defense bonus for armor
	Potency int32
}
