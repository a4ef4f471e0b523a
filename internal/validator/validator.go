// Package validator parses generated content against the schema for its
// request kind, repairing what deterministic normalization can fix and
// rejecting the rest.
//
// Free text is accepted permissively. Structured fields (exit directions,
// dispositions, resolution tags, numeric rewards) must match their
// enumeration exactly or be repaired by case-folding, synonym mapping, or
// clamping. Generated text is never authoritative over numbers: the rule
// engine computes every numeric outcome, and combat narration is checked
// for consistency with the roll already made.
package validator

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/llmadventure/llmadventure/internal/entities"
	"github.com/llmadventure/llmadventure/internal/errors"
)

// Validator checks raw artifacts against per-kind schemas
type Validator struct{}

// New creates a validator
func New() *Validator {
	return &Validator{}
}

// rawLocation mirrors the YAML shape the location prompt asks for
type rawLocation struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Exits       []string `yaml:"exits"`
	NPCs        []struct {
		Name        string `yaml:"name"`
		Disposition string `yaml:"disposition"`
	} `yaml:"npcs"`
	Items []string `yaml:"items"`
}

// Location validates and repairs location content. Unknown exits are
// dropped; a location with no description or no usable exits is rejected.
func (v *Validator) Location(raw string) (*LocationArtifact, error) {
	var parsed rawLocation
	if err := yaml.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeSchemaViolation, "location artifact is not parseable")
	}

	if strings.TrimSpace(parsed.Description) == "" {
		return nil, errors.SchemaViolation("location description is empty")
	}

	seen := make(map[entities.Direction]bool)
	var exits []entities.Direction
	for _, e := range parsed.Exits {
		dir, ok := repairDirection(e)
		if !ok || seen[dir] {
			continue
		}
		seen[dir] = true
		exits = append(exits, dir)
	}
	if len(exits) == 0 {
		return nil, errors.SchemaViolation("location has no usable exits")
	}

	artifact := &LocationArtifact{
		Name:        strings.TrimSpace(parsed.Name),
		Description: strings.TrimSpace(parsed.Description),
		Exits:       exits,
	}
	if artifact.Name == "" {
		artifact.Name = "An Unnamed Place"
	}

	for _, n := range parsed.NPCs {
		name := strings.TrimSpace(n.Name)
		if name == "" {
			continue
		}
		disposition, ok := repairDisposition(n.Disposition)
		if !ok {
			// An NPC with a nonsense disposition is dropped rather than
			// guessed at; disposition decides whether combat starts.
			continue
		}
		artifact.NPCs = append(artifact.NPCs, NPCRef{Name: name, Disposition: disposition})
	}

	for _, item := range parsed.Items {
		if name := strings.TrimSpace(item); name != "" {
			artifact.Items = append(artifact.Items, name)
		}
	}

	return artifact, nil
}

// rawNPCIntro mirrors the YAML shape the npc_intro prompt asks for
type rawNPCIntro struct {
	Name        string `yaml:"name"`
	Disposition string `yaml:"disposition"`
	Intro       string `yaml:"intro"`
}

// NPCIntro validates an NPC introduction
func (v *Validator) NPCIntro(raw string) (*NPCIntroArtifact, error) {
	var parsed rawNPCIntro
	if err := yaml.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeSchemaViolation, "npc intro artifact is not parseable")
	}

	if strings.TrimSpace(parsed.Name) == "" {
		return nil, errors.SchemaViolation("npc name is empty")
	}
	if strings.TrimSpace(parsed.Intro) == "" {
		return nil, errors.SchemaViolation("npc intro is empty")
	}

	disposition, ok := repairDisposition(parsed.Disposition)
	if !ok {
		return nil, errors.SchemaViolationf("npc disposition %q is not repairable", parsed.Disposition)
	}

	return &NPCIntroArtifact{
		Name:        strings.TrimSpace(parsed.Name),
		Disposition: disposition,
		Intro:       strings.TrimSpace(parsed.Intro),
	}, nil
}

// rawCombat mirrors the YAML shape the combat_narration prompt asks for
type rawCombat struct {
	Resolution string `yaml:"resolution"`
	Narration  string `yaml:"narration"`
}

// Combat validates combat narration against the resolution the rule engine
// already computed. A narration that contradicts the roll is rejected: the
// dice are authoritative, the text is decoration.
func (v *Validator) Combat(raw string, expected entities.Resolution) (*CombatArtifact, error) {
	var parsed rawCombat
	if err := yaml.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeSchemaViolation, "combat artifact is not parseable")
	}

	if strings.TrimSpace(parsed.Narration) == "" {
		return nil, errors.SchemaViolation("combat narration is empty")
	}

	resolution, ok := repairResolution(parsed.Resolution)
	if !ok {
		return nil, errors.SchemaViolationf("combat resolution %q is not repairable", parsed.Resolution)
	}
	if resolution != expected {
		return nil, errors.SchemaViolationf(
			"combat resolution %s contradicts computed outcome %s", resolution, expected)
	}

	return &CombatArtifact{
		Resolution: resolution,
		Narration:  strings.TrimSpace(parsed.Narration),
	}, nil
}

// rawQuest mirrors the YAML shape the quest_proposal prompt asks for
type rawQuest struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Objective   string `yaml:"objective"`
	Target      string `yaml:"target"`
	Count       int32  `yaml:"count"`
	RewardXP    int32  `yaml:"reward_experience"`
	RewardGold  int32  `yaml:"reward_gold"`
}

// Quest validates a quest proposal, clamping rewards and counts to
// rule-engine bounds
func (v *Validator) Quest(raw string) (*QuestArtifact, error) {
	var parsed rawQuest
	if err := yaml.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeSchemaViolation, "quest artifact is not parseable")
	}

	if strings.TrimSpace(parsed.Title) == "" {
		return nil, errors.SchemaViolation("quest title is empty")
	}
	if strings.TrimSpace(parsed.Target) == "" {
		return nil, errors.SchemaViolation("quest target is empty")
	}

	objective, ok := repairObjective(parsed.Objective)
	if !ok {
		return nil, errors.SchemaViolationf("quest objective %q is not repairable", parsed.Objective)
	}

	return &QuestArtifact{
		Title:       strings.TrimSpace(parsed.Title),
		Description: strings.TrimSpace(parsed.Description),
		Objective:   objective,
		Target:      strings.TrimSpace(parsed.Target),
		Count:       clamp32(parsed.Count, MinCount, MaxCount),
		RewardXP:    clamp32(parsed.RewardXP, MinRewardXP, MaxRewardXP),
		RewardGold:  clamp32(parsed.RewardGold, MinRewardGold, MaxRewardGold),
	}, nil
}

// rawDialogue mirrors the YAML shape the dialogue_line prompt asks for
type rawDialogue struct {
	Line  string `yaml:"line"`
	State string `yaml:"state"`
}

// Dialogue validates a dialogue line
func (v *Validator) Dialogue(raw string) (*DialogueArtifact, error) {
	var parsed rawDialogue
	if err := yaml.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeSchemaViolation, "dialogue artifact is not parseable")
	}

	if strings.TrimSpace(parsed.Line) == "" {
		return nil, errors.SchemaViolation("dialogue line is empty")
	}

	return &DialogueArtifact{
		Line:  strings.TrimSpace(parsed.Line),
		State: strings.TrimSpace(parsed.State),
	}, nil
}
