package validator_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/llmadventure/llmadventure/internal/entities"
	"github.com/llmadventure/llmadventure/internal/errors"
	"github.com/llmadventure/llmadventure/internal/generation"
	"github.com/llmadventure/llmadventure/internal/validator"
)

type ValidatorTestSuite struct {
	suite.Suite
	validator *validator.Validator
}

func (s *ValidatorTestSuite) SetupTest() {
	s.validator = validator.New()
}

func (s *ValidatorTestSuite) TestLocation() {
	s.Run("accepts well-formed content", func() {
		raw := `
name: The Sunken Gate
description: Water pools around a half-buried arch of black stone.
exits:
  - north
  - east
npcs:
  - name: Maren
    disposition: friendly
items:
  - rusted key
`
		artifact, err := s.validator.Location(raw)
		s.Require().NoError(err)
		s.Equal("The Sunken Gate", artifact.Name)
		s.Equal([]entities.Direction{entities.DirectionNorth, entities.DirectionEast}, artifact.Exits)
		s.Require().Len(artifact.NPCs, 1)
		s.Equal(entities.DispositionFriendly, artifact.NPCs[0].Disposition)
		s.Equal([]string{"rusted key"}, artifact.Items)
	})

	s.Run("repairs synonym and mixed-case exits", func() {
		raw := `
description: A narrow shaft climbs into darkness.
exits:
  - Upward
  - NORTH
  - sideways
  - north
`
		artifact, err := s.validator.Location(raw)
		s.Require().NoError(err)
		// "sideways" dropped, duplicate north collapsed
		s.Equal([]entities.Direction{entities.DirectionUp, entities.DirectionNorth}, artifact.Exits)
	})

	s.Run("defaults a missing name", func() {
		raw := "description: Smooth stone, featureless.\nexits:\n  - south\n"
		artifact, err := s.validator.Location(raw)
		s.Require().NoError(err)
		s.Equal("An Unnamed Place", artifact.Name)
	})

	s.Run("rejects empty description", func() {
		_, err := s.validator.Location("name: Nowhere\nexits:\n  - north\n")
		s.Require().Error(err)
		s.True(errors.IsSchemaViolation(err))
	})

	s.Run("rejects when no exit survives repair", func() {
		_, err := s.validator.Location("description: A sealed vault.\nexits:\n  - inward\n")
		s.Require().Error(err)
		s.True(errors.IsSchemaViolation(err))
	})

	s.Run("rejects unparseable yaml", func() {
		_, err := s.validator.Location("{{{not yaml")
		s.Require().Error(err)
		s.True(errors.IsSchemaViolation(err))
	})

	s.Run("drops npc with irreparable disposition", func() {
		raw := `
description: A camp gone cold.
exits:
  - west
npcs:
  - name: Odd One
    disposition: ambivalent
`
		artifact, err := s.validator.Location(raw)
		s.Require().NoError(err)
		s.Empty(artifact.NPCs)
	})
}

func (s *ValidatorTestSuite) TestNPCIntro() {
	s.Run("accepts and repairs disposition case", func() {
		raw := "name: Garrick\ndisposition: Friendly\nintro: He raises a hand in greeting.\n"
		artifact, err := s.validator.NPCIntro(raw)
		s.Require().NoError(err)
		s.Equal(entities.DispositionFriendly, artifact.Disposition)
	})

	s.Run("defaults empty disposition to neutral", func() {
		raw := "name: Garrick\nintro: He watches you pass.\n"
		artifact, err := s.validator.NPCIntro(raw)
		s.Require().NoError(err)
		s.Equal(entities.DispositionNeutral, artifact.Disposition)
	})

	s.Run("rejects missing intro", func() {
		_, err := s.validator.NPCIntro("name: Garrick\ndisposition: neutral\n")
		s.Require().Error(err)
		s.True(errors.IsSchemaViolation(err))
	})
}

func (s *ValidatorTestSuite) TestCombat() {
	s.Run("accepts narration matching the computed outcome", func() {
		raw := "resolution: hit\nnarration: The blade bites deep.\n"
		artifact, err := s.validator.Combat(raw, entities.ResolutionHit)
		s.Require().NoError(err)
		s.Equal(entities.ResolutionHit, artifact.Resolution)
	})

	s.Run("repairs resolution synonyms", func() {
		raw := "resolution: crit\nnarration: A devastating opening.\n"
		artifact, err := s.validator.Combat(raw, entities.ResolutionCritical)
		s.Require().NoError(err)
		s.Equal(entities.ResolutionCritical, artifact.Resolution)
	})

	s.Run("rejects narration contradicting the roll", func() {
		raw := "resolution: miss\nnarration: The blow lands true.\n"
		_, err := s.validator.Combat(raw, entities.ResolutionHit)
		s.Require().Error(err)
		s.True(errors.IsSchemaViolation(err))
	})
}

func (s *ValidatorTestSuite) TestQuest() {
	s.Run("clamps rewards and count to bounds", func() {
		raw := `
title: Cull the Pack
description: Too many wolves this season.
objective: defeat
target: grey wolf
count: 12
reward_experience: 9999
reward_gold: -5
`
		artifact, err := s.validator.Quest(raw)
		s.Require().NoError(err)
		s.Equal(int32(validator.MaxCount), artifact.Count)
		s.Equal(int32(validator.MaxRewardXP), artifact.RewardXP)
		s.Equal(int32(validator.MinRewardGold), artifact.RewardGold)
	})

	s.Run("repairs objective synonyms", func() {
		raw := "title: T\ndescription: D\nobjective: kill\ntarget: boar\ncount: 1\nreward_experience: 20\nreward_gold: 5\n"
		artifact, err := s.validator.Quest(raw)
		s.Require().NoError(err)
		s.Equal(entities.ObjectiveDefeat, artifact.Objective)
	})

	s.Run("rejects missing target", func() {
		raw := "title: T\nobjective: defeat\ncount: 1\n"
		_, err := s.validator.Quest(raw)
		s.Require().Error(err)
		s.True(errors.IsSchemaViolation(err))
	})
}

func (s *ValidatorTestSuite) TestDialogue() {
	s.Run("accepts a line with state", func() {
		artifact, err := s.validator.Dialogue("line: Keep to the road.\nstate: Warned about the road.\n")
		s.Require().NoError(err)
		s.Equal("Keep to the road.", artifact.Line)
		s.Equal("Warned about the road.", artifact.State)
	})

	s.Run("rejects an empty line", func() {
		_, err := s.validator.Dialogue("state: nothing said\n")
		s.Require().Error(err)
		s.True(errors.IsSchemaViolation(err))
	})
}

// Fallback artifacts must always pass validation; they are the floor the
// game stands on during a service outage.
func (s *ValidatorTestSuite) TestFallbackArtifactsValidate() {
	s.Run("location", func() {
		req := &generation.Request{Kind: generation.KindLocation, Key: []string{"loc_1_0,0,0"}}
		_, err := s.validator.Location(generation.FallbackRaw(req))
		s.NoError(err)
	})

	s.Run("npc intro", func() {
		req := &generation.Request{Kind: generation.KindNPCIntro, Key: []string{"npc-1"}}
		_, err := s.validator.NPCIntro(generation.FallbackRaw(req))
		s.NoError(err)
	})

	s.Run("combat narration", func() {
		for _, res := range []entities.Resolution{
			entities.ResolutionHit, entities.ResolutionMiss, entities.ResolutionCritical,
			entities.ResolutionFleeSuccess, entities.ResolutionFleeFailure,
		} {
			req := &generation.Request{
				Kind:    generation.KindCombatNarration,
				Key:     []string{"npc-1", "3", string(res)},
				Context: map[string]string{"resolution": string(res), "enemy_name": "the wolf"},
			}
			_, err := s.validator.Combat(generation.FallbackRaw(req), res)
			s.NoError(err, "resolution %s", res)
		}
	})

	s.Run("quest proposal", func() {
		req := &generation.Request{Kind: generation.KindQuestProposal, Key: []string{"npc-1", "quest"}}
		_, err := s.validator.Quest(generation.FallbackRaw(req))
		s.NoError(err)
	})

	s.Run("dialogue line", func() {
		req := &generation.Request{Kind: generation.KindDialogueLine, Key: []string{"npc-1", "4"}}
		_, err := s.validator.Dialogue(generation.FallbackRaw(req))
		s.NoError(err)
	})
}

func TestValidatorTestSuite(t *testing.T) {
	suite.Run(t, new(ValidatorTestSuite))
}
