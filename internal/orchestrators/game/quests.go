package game

import (
	"log/slog"
	"strings"

	"github.com/llmadventure/llmadventure/internal/entities"
	"github.com/llmadventure/llmadventure/internal/events"
	"github.com/llmadventure/llmadventure/internal/validator"
)

// questTrigger describes a state-mutating action outcome that may advance
// quest objectives: an enemy defeated, a place reached, an item collected
type questTrigger struct {
	kind entities.ObjectiveKind
	name string
}

// reviewQuests is the same-tick quest evaluation that runs after every
// state-mutating action. Satisfied quests transition to completed and grant
// their reward; control returns to the prior phase.
func (o *orchestrator) reviewQuests(trigger questTrigger) {
	for _, quest := range o.session.ActiveQuests() {
		if quest.Objective.Kind != trigger.kind {
			continue
		}
		if !targetMatches(quest, trigger.name) {
			continue
		}

		if !quest.Advance() {
			continue
		}

		if !quest.Status.CanTransition(entities.QuestStatusCompleted) {
			// Monotonicity is enforced by CanTransition; ActiveQuests only
			// yields active quests, so this cannot fire
			continue
		}
		quest.Status = entities.QuestStatusCompleted
		o.grantReward(quest)
	}
}

// targetMatches compares the trigger against the quest's free-text target,
// case-insensitively and permissively in both directions
func targetMatches(quest *entities.Quest, name string) bool {
	target := quest.Objective.TargetID
	if quest.Objective.Kind == entities.ObjectiveCollect {
		target = quest.Objective.ItemName
	}
	if target == "" || name == "" {
		return false
	}

	a := strings.ToLower(target)
	b := strings.ToLower(name)
	return strings.Contains(b, a) || strings.Contains(a, b)
}

// grantReward emits the completion event and applies the final reward.
// Plugins may adjust the reward; experience and gold stay within validator
// bounds.
func (o *orchestrator) grantReward(quest *entities.Quest) {
	payload := o.bus.EmitQuestComplete(events.QuestCompletePayload{
		QuestID: quest.ID,
		Title:   quest.Title,
		Reward:  quest.Reward,
	})

	reward := payload.Reward
	reward.Experience = clampInt32(reward.Experience, validator.MinRewardXP, validator.MaxRewardXP)
	reward.Gold = clampInt32(reward.Gold, validator.MinRewardGold, validator.MaxRewardGold)

	player := o.session.Player
	player.Stats.Experience += reward.Experience
	player.Gold += reward.Gold
	for _, item := range reward.Items {
		player.AddItem(item)
	}

	o.applyLevelUps(o.newEngine(o.session.Seed + int64(o.session.TurnCounter)))

	slog.Info("quest completed",
		"session_id", o.session.ID,
		"quest", quest.Title,
		"experience", reward.Experience,
		"gold", reward.Gold,
	)
}

// questView projects a quest for output
func questView(q *entities.Quest) QuestView {
	return QuestView{
		ID:          q.ID,
		Title:       q.Title,
		Description: q.Description,
		Status:      q.Status,
		Progress:    q.Progress,
		Target:      q.Objective.TargetCount,
	}
}
