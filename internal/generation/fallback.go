package generation

import (
	"fmt"
	"strconv"
)

// Deterministic template fallbacks keep the game playable when the
// generation service is unavailable. Content is chosen by fingerprint, so
// the same request always falls back to the same artifact.

var fallbackLocationNames = []string{
	"A Quiet Chamber",
	"The Dim Passage",
	"A Forgotten Clearing",
	"The Crumbling Hall",
}

var fallbackLocationDescriptions = []string{
	"Dust hangs in the still air. Faded marks on the walls hint at travelers who passed this way long ago.",
	"The light here is thin and grey. Somewhere ahead, water drips onto stone with a slow, patient rhythm.",
	"Moss softens every edge of this place. It is quiet, but not unpleasantly so.",
	"Broken masonry litters the ground. Whatever stood here gave up its shape a long time ago.",
}

var fallbackExitSets = [][]string{
	{"north", "south"},
	{"east", "west", "north"},
	{"north", "east"},
	{"south", "west", "down"},
}

var fallbackNarrations = map[string]string{
	"hit":          "The blow lands solidly, and %s staggers from the force of it.",
	"miss":         "The strike goes wide, and %s slips just out of reach.",
	"critical":     "A perfect opening. The strike crashes home and %s reels, badly hurt.",
	"flee-success": "A feint, a turned shoulder, and the fight is behind you before %s can react.",
	"flee-failure": "There is no opening. %s cuts off the retreat and the fight goes on.",
}

var fallbackDialogueLines = []string{
	"Strange days, they mutter, and say little else.",
	"They study you for a long moment before answering with a slow nod.",
	"Roads are dangerous lately, they warn. Keep your wits about you.",
}

// fallbackIndex derives a stable index from a fingerprint
func fallbackIndex(fingerprint string, n int) int {
	if n <= 0 {
		return 0
	}
	v, err := strconv.ParseUint(fingerprint[:8], 16, 64)
	if err != nil {
		return 0
	}
	return int(v % uint64(n))
}

// FallbackRaw builds the deterministic fallback artifact for a request. The
// output is schema-valid YAML for the request kind, so it flows through the
// same validation path as generated content.
func FallbackRaw(req *Request) string {
	fp := req.Fingerprint()

	switch req.Kind {
	case KindLocation:
		i := fallbackIndex(fp, len(fallbackLocationDescriptions))
		raw := fmt.Sprintf("name: %s\ndescription: %s\nexits:\n",
			fallbackLocationNames[i], fallbackLocationDescriptions[i])
		for _, exit := range fallbackExitSets[i] {
			raw += fmt.Sprintf("  - %s\n", exit)
		}
		return raw

	case KindNPCIntro:
		name := req.Context["npc_name"]
		if name == "" {
			name = "A hooded stranger"
		}
		return fmt.Sprintf(
			"name: %s\ndisposition: neutral\nintro: %s watches you approach, giving nothing away.\n",
			name, name)

	case KindCombatNarration:
		enemy := req.Context["enemy_name"]
		if enemy == "" {
			enemy = "the enemy"
		}
		resolution := req.Context["resolution"]
		line, ok := fallbackNarrations[resolution]
		if !ok {
			resolution = "miss"
			line = fallbackNarrations[resolution]
		}
		return fmt.Sprintf("resolution: %s\nnarration: %s\n",
			resolution, fmt.Sprintf(line, enemy))

	case KindQuestProposal:
		return "title: An Old Favor\n" +
			"description: Someone nearby needs a lost keepsake recovered from the wilds.\n" +
			"objective: collect\n" +
			"target: lost keepsake\n" +
			"count: 1\n" +
			"reward_experience: 50\n" +
			"reward_gold: 10\n"

	case KindDialogueLine:
		i := fallbackIndex(fp, len(fallbackDialogueLines))
		state := req.Context["state"]
		if state == "" {
			state = "A brief, guarded exchange."
		}
		return fmt.Sprintf("line: %s\nstate: %s\n", fallbackDialogueLines[i], state)
	}

	return ""
}
