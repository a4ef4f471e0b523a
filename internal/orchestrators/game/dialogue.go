package game

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/llmadventure/llmadventure/internal/entities"
	"github.com/llmadventure/llmadventure/internal/errors"
	"github.com/llmadventure/llmadventure/internal/events"
	"github.com/llmadventure/llmadventure/internal/generation"
)

// Talk starts or continues dialogue with a non-hostile NPC in the current
// location. The first exchange generates an introduction; a friendly NPC
// with no prior offer proposes a quest.
func (o *orchestrator) Talk(ctx context.Context, input *TalkInput) (*TalkOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := o.guard(); err != nil {
		return nil, err
	}
	if input.NPCName == "" {
		return nil, errors.InvalidArgument("npc name is required")
	}

	switch o.session.Phase {
	case entities.PhaseExploration, entities.PhaseDialogue:
	case entities.PhaseGameOver:
		return nil, errors.FailedPrecondition("the game is over")
	default:
		return nil, errors.FailedPreconditionf("cannot talk during %s", o.session.Phase)
	}

	npc := o.npcByName(input.NPCName)
	if npc == nil {
		return nil, errors.NotFoundf("there is no one called %s here", input.NPCName)
	}
	if npc.Hostile() && npc.Alive() {
		return nil, errors.FailedPreconditionf("%s is in no mood to talk", npc.Name)
	}
	if o.session.Phase == entities.PhaseDialogue && o.session.ActiveNPCID != npc.ID {
		return nil, errors.FailedPrecondition("end the current conversation first")
	}

	o.beginTurn()

	out := &TalkOutput{}
	firstMeeting := npc.Intro == ""

	if firstMeeting {
		req := &generation.Request{
			Kind: generation.KindNPCIntro,
			Key:  []string{npc.ID},
			Context: map[string]string{
				"npc_name": npc.Name,
				"location": o.session.CurrentLocation().Description,
			},
		}
		if artifact := o.npcIntroArtifact(ctx, req); artifact != nil {
			npc.Intro = artifact.Intro
		}
		out.Intro = npc.Intro
	}

	if o.session.Phase != entities.PhaseDialogue {
		o.session.Phase = entities.PhaseDialogue
		o.session.ActiveNPCID = npc.ID
		o.bus.EmitDialogueStart(events.DialogueStartPayload{
			NPCID:   npc.ID,
			NPCName: npc.Name,
		})
	}

	out.Line = o.dialogueLine(ctx, npc, input.Topic)

	if npc.Disposition == entities.DispositionFriendly && !o.hasQuestFrom(npc.ID) {
		if quest := o.proposeQuest(ctx, npc); quest != nil {
			view := questView(quest)
			out.OfferedQuest = &view
		}
	}

	if err := o.checkInvariants(); err != nil {
		return nil, err
	}

	out.Projection = o.project()
	return out, nil
}

// EndDialogue returns from dialogue to exploration
func (o *orchestrator) EndDialogue(ctx context.Context, input *EndDialogueInput) (*EndDialogueOutput, error) {
	if err := o.requirePhase(entities.PhaseDialogue); err != nil {
		return nil, err
	}

	o.session.Phase = entities.PhaseExploration
	o.session.ActiveNPCID = ""
	o.session.UpdatedAt = o.clock.Now()

	if err := o.checkInvariants(); err != nil {
		return nil, err
	}

	return &EndDialogueOutput{Projection: o.project()}, nil
}

// npcByName finds a living NPC in the current location by case-insensitive
// name match
func (o *orchestrator) npcByName(name string) *entities.NPC {
	loc := o.session.CurrentLocation()
	for _, id := range loc.NPCIDs {
		npc := o.session.NPCs[id]
		if npc == nil {
			continue
		}
		if strings.EqualFold(npc.Name, name) {
			return npc
		}
	}
	return nil
}

// dialogueLine generates the NPC's reply, carrying conversation state
// forward for continuity
func (o *orchestrator) dialogueLine(ctx context.Context, npc *entities.NPC, topic string) string {
	if topic == "" {
		topic = "a wary greeting"
	}

	req := &generation.Request{
		Kind: generation.KindDialogueLine,
		Key:  []string{npc.ID, fmt.Sprintf("%d", o.session.TurnCounter)},
		Context: map[string]string{
			"npc_name":    npc.Name,
			"disposition": string(npc.Disposition),
			"state":       npc.DialogueState,
			"topic":       topic,
		},
	}

	res, err := o.pipeline.Generate(ctx, req)
	if err != nil {
		slog.Warn("dialogue generation failed", "error", err)
		res = o.pipeline.Fallback(req)
	}

	artifact, verr := o.validator.Dialogue(res.Raw)
	if verr != nil {
		slog.Warn("dialogue line rejected, using fallback", "error", verr)
		fallback := o.pipeline.Fallback(req)
		artifact, verr = o.validator.Dialogue(fallback.Raw)
		if verr != nil {
			return fmt.Sprintf("%s has nothing to say.", npc.Name)
		}
	}

	if artifact.State != "" {
		npc.DialogueState = artifact.State
	}
	return artifact.Line
}

// hasQuestFrom reports whether this NPC already offered a quest
func (o *orchestrator) hasQuestFrom(npcID string) bool {
	for _, q := range o.session.Quests {
		if q.GiverID == npcID {
			return true
		}
	}
	return false
}

// proposeQuest generates a quest proposal from a friendly NPC and records it
// as offered. The player activates it with AcceptQuest.
func (o *orchestrator) proposeQuest(ctx context.Context, npc *entities.NPC) *entities.Quest {
	req := &generation.Request{
		Kind: generation.KindQuestProposal,
		Key:  []string{npc.ID, "quest"},
		Context: map[string]string{
			"npc_name":     npc.Name,
			"player_level": fmt.Sprintf("%d", o.session.Player.Stats.Level),
			"player_class": string(o.session.Player.Class),
			"location":     o.session.CurrentLocation().Name,
		},
	}

	res, err := o.pipeline.Generate(ctx, req)
	if err != nil {
		slog.Warn("quest proposal generation failed", "error", err)
		res = o.pipeline.Fallback(req)
	}

	artifact, verr := o.validator.Quest(res.Raw)
	if verr != nil {
		slog.Warn("quest proposal rejected, using fallback", "error", verr)
		fallback := o.pipeline.Fallback(req)
		artifact, verr = o.validator.Quest(fallback.Raw)
		if verr != nil {
			return nil
		}
	}

	quest := &entities.Quest{
		ID:          o.idGen.Generate(),
		Title:       artifact.Title,
		Description: artifact.Description,
		GiverID:     npc.ID,
		Objective: entities.Objective{
			Kind:        artifact.Objective,
			TargetCount: artifact.Count,
		},
		Reward: entities.Reward{
			Experience: artifact.RewardXP,
			Gold:       artifact.RewardGold,
		},
		Status: entities.QuestStatusOffered,
	}
	if artifact.Objective == entities.ObjectiveCollect {
		quest.Objective.ItemName = artifact.Target
	} else {
		quest.Objective.TargetID = artifact.Target
	}

	o.session.Quests = append(o.session.Quests, quest)

	slog.Info("quest offered",
		"session_id", o.session.ID,
		"quest", quest.Title,
		"giver", npc.Name,
	)

	return quest
}
