package game

import (
	"sort"

	"github.com/llmadventure/llmadventure/internal/entities"
)

// project builds the read-only view of the session for the rendering
// collaborator. Everything is copied; mutating the projection never touches
// authoritative state.
func (o *orchestrator) project() *Projection {
	s := o.session
	loc := s.CurrentLocation()

	p := &Projection{
		SessionID:   s.ID,
		Phase:       s.Phase,
		TurnCounter: s.TurnCounter,
		PlayerName:  s.Player.Name,
		PlayerClass: s.Player.Class,
		Stats:       s.Player.Stats,
		Gold:        s.Player.Gold,
		Inventory:   append([]entities.Item(nil), s.Player.Inventory...),
	}

	if loc != nil {
		p.LocationID = loc.ID
		p.LocationName = loc.Name
		p.LocationDescription = loc.Description
		p.GroundItems = append([]entities.Item(nil), loc.Items...)

		for dir := range loc.Exits {
			p.Exits = append(p.Exits, dir)
		}
		sort.Slice(p.Exits, func(i, j int) bool { return p.Exits[i] < p.Exits[j] })

		for _, id := range loc.NPCIDs {
			npc := s.NPCs[id]
			if npc == nil {
				continue
			}
			p.NPCs = append(p.NPCs, NPCView{
				ID:          npc.ID,
				Name:        npc.Name,
				Disposition: npc.Disposition,
				Intro:       npc.Intro,
				Defeated:    npc.Defeated,
			})
		}
	}

	if enemy := s.ActiveEnemy(); enemy != nil {
		p.Enemy = &EnemyView{
			ID:        enemy.ID,
			Name:      enemy.Name,
			Health:    enemy.Stats.Health,
			MaxHealth: enemy.Stats.MaxHealth,
			Level:     enemy.Stats.Level,
		}
	}

	if partner := s.ActiveNPC(); partner != nil {
		p.DialoguePartner = &NPCView{
			ID:          partner.ID,
			Name:        partner.Name,
			Disposition: partner.Disposition,
			Intro:       partner.Intro,
		}
	}

	for _, q := range s.Quests {
		p.Quests = append(p.Quests, questView(q))
	}

	return p
}
