package game

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/llmadventure/llmadventure/internal/engine"
	"github.com/llmadventure/llmadventure/internal/entities"
	"github.com/llmadventure/llmadventure/internal/errors"
	"github.com/llmadventure/llmadventure/internal/generation"
	"github.com/llmadventure/llmadventure/internal/validator"
)

const worldFlavor = "a ruined borderland where old roads fade into the wilds"

// healingDraughtPotency is the restore value of found potions. Dropped loot
// potency comes from the rule engine; ground potions use this fixed value.
const healingDraughtPotency = 25

// ensureLocation materializes the location at the given coordinates,
// generating and validating its content on first visit. The location ID is
// derived from seed and coordinates, so revisits hit the cache. Stat blocks
// for placed hostiles come from the caller's turn engine.
func (o *orchestrator) ensureLocation(ctx context.Context, eng engine.Engine, coords entities.Coordinates) (*entities.Location, error) {
	id := entities.LocationID(o.session.Seed, coords)
	if loc, ok := o.session.Locations[id]; ok {
		return loc, nil
	}

	req := &generation.Request{
		Kind: generation.KindLocation,
		Key:  []string{id},
		Context: map[string]string{
			"world":        worldFlavor,
			"coords":       coords.String(),
			"player_level": fmt.Sprintf("%d", o.session.Player.Stats.Level),
			"player_class": string(o.session.Player.Class),
		},
	}

	artifact, err := o.locationArtifact(ctx, req)
	if err != nil {
		return nil, err
	}

	loc := &entities.Location{
		ID:          id,
		Name:        artifact.Name,
		Coords:      coords,
		Description: artifact.Description,
		Exits:       make(map[entities.Direction]string),
	}
	for _, dir := range artifact.Exits {
		loc.Exits[dir] = entities.LocationID(o.session.Seed, coords.Step(dir))
	}

	for _, ref := range artifact.NPCs {
		npc := &entities.NPC{
			ID:          o.idGen.Generate(),
			Name:        ref.Name,
			Disposition: ref.Disposition,
			LocationID:  id,
		}
		if npc.Hostile() {
			npc.Stats = eng.EnemyStats(o.session.Player.Stats.Level)
		}
		o.session.NPCs[npc.ID] = npc
		loc.NPCIDs = append(loc.NPCIDs, npc.ID)
	}

	for _, name := range artifact.Items {
		loc.Items = append(loc.Items, classifyItem(name))
	}

	o.session.Locations[id] = loc
	return loc, nil
}

// locationArtifact generates and validates location content, substituting
// the deterministic fallback when validation rejects the generated artifact
func (o *orchestrator) locationArtifact(ctx context.Context, req *generation.Request) (*validator.LocationArtifact, error) {
	res, err := o.pipeline.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	artifact, verr := o.validator.Location(res.Raw)
	if verr == nil {
		return artifact, nil
	}

	slog.Warn("location artifact rejected, using fallback",
		"fingerprint", res.Fingerprint,
		"error", verr,
	)

	fallback := o.pipeline.Fallback(req)
	artifact, verr = o.validator.Location(fallback.Raw)
	if verr != nil {
		// The fallback is schema-valid by construction; this is a bug
		return nil, o.abort(errors.WrapWithCode(verr, errors.CodeInvariantViolation,
			"fallback location artifact failed validation"))
	}
	return artifact, nil
}

// prefetchAdjacent warms the cache for every exit of a location. Prefetch
// results never mutate session state until a move consumes them.
func (o *orchestrator) prefetchAdjacent(loc *entities.Location) {
	for dir := range loc.Exits {
		coords := loc.Coords.Step(dir)
		o.pipeline.Prefetch(&generation.Request{
			Kind: generation.KindLocation,
			Key:  []string{entities.LocationID(o.session.Seed, coords)},
			Context: map[string]string{
				"world":        worldFlavor,
				"coords":       coords.String(),
				"player_level": fmt.Sprintf("%d", o.session.Player.Stats.Level),
				"player_class": string(o.session.Player.Class),
			},
		})
	}
}

// classifyItem maps a generated item name to a typed item. Names are free
// text; only the kind and potency are decided here, deterministically.
func classifyItem(name string) entities.Item {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "potion"),
		strings.Contains(lower, "draught"),
		strings.Contains(lower, "elixir"):
		return entities.Item{Name: name, Kind: entities.ItemKindPotion, Potency: healingDraughtPotency}
	case strings.Contains(lower, "sword"),
		strings.Contains(lower, "axe"),
		strings.Contains(lower, "blade"),
		strings.Contains(lower, "dagger"),
		strings.Contains(lower, "bow"):
		return entities.Item{Name: name, Kind: entities.ItemKindWeapon, Potency: 2}
	case strings.Contains(lower, "shield"),
		strings.Contains(lower, "armor"),
		strings.Contains(lower, "mail"),
		strings.Contains(lower, "helm"):
		return entities.Item{Name: name, Kind: entities.ItemKindArmor, Potency: 1}
	default:
		return entities.Item{Name: name, Kind: entities.ItemKindTreasure, Value: 5}
	}
}
