package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/llmadventure/llmadventure/internal/config"
	"github.com/llmadventure/llmadventure/internal/engine/rules"
	"github.com/llmadventure/llmadventure/internal/entities"
	"github.com/llmadventure/llmadventure/internal/errors"
	"github.com/llmadventure/llmadventure/internal/events"
	"github.com/llmadventure/llmadventure/internal/generation"
	"github.com/llmadventure/llmadventure/internal/orchestrators/game"
	"github.com/llmadventure/llmadventure/internal/pkg/clock"
	"github.com/llmadventure/llmadventure/internal/pkg/idgen"
	redisclient "github.com/llmadventure/llmadventure/internal/redis"
	snapshotrepo "github.com/llmadventure/llmadventure/internal/repositories/snapshot"
	"github.com/llmadventure/llmadventure/internal/validator"
)

var (
	playerName  string
	playerClass string
	loadSlot    string
	gameSeed    int64
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start or resume an adventure",
	RunE:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&playerName, "name", "Wanderer", "player character name")
	playCmd.Flags().StringVar(&playerClass, "class", "warrior", "player class (warrior, mage, rogue, ranger)")
	playCmd.Flags().StringVar(&loadSlot, "load", "", "save slot to restore")
	playCmd.Flags().Int64Var(&gameSeed, "seed", 0, "world seed (0 picks one)")
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	sceneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	combatStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	speakStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("117"))
)

func runPlay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "set GEMINI_API_KEY (a .env file works too)")
	}

	client, err := generation.NewGeminiClient(ctx, &generation.GeminiConfig{
		APIKey: cfg.GeminiAPIKey,
		Model:  cfg.GeminiModel,
	})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			slog.Warn("failed to close generation client", "error", closeErr)
		}
	}()

	pipeline, err := generation.NewPipeline(&generation.Config{
		Client:         client,
		MaxConcurrent:  cfg.MaxConcurrent,
		MaxRetries:     cfg.MaxRetries,
		BackoffBase:    cfg.BackoffBase,
		RequestTimeout: cfg.RequestTimeout,
	})
	if err != nil {
		return err
	}

	repo, err := buildRepository(cfg)
	if err != nil {
		return err
	}

	svc, err := game.NewOrchestrator(&game.Config{
		Pipeline:      pipeline,
		Validator:     validator.New(),
		EngineFactory: rules.NewSeededEngine,
		Bus:           events.NewBus(),
		Clock:         clock.New(),
		IDGenerator:   idgen.NewUUID("session"),
	})
	if err != nil {
		return err
	}

	proj, err := startSession(ctx, svc, repo)
	if err != nil {
		return err
	}
	printScene(proj)

	return runLoop(ctx, svc, repo)
}

// buildRepository picks Redis when configured, save files otherwise
func buildRepository(cfg *config.Config) (snapshotrepo.Repository, error) {
	if cfg.RedisAddr != "" {
		client, err := redisclient.NewClient(cfg.RedisAddr, nil)
		if err != nil {
			return nil, err
		}
		return snapshotrepo.NewRedisRepository(&snapshotrepo.RedisConfig{Client: client})
	}
	return snapshotrepo.NewFileRepository(&snapshotrepo.FileConfig{Dir: cfg.SaveDir})
}

func startSession(ctx context.Context, svc game.Service, repo snapshotrepo.Repository) (*game.Projection, error) {
	if loadSlot != "" {
		loaded, err := repo.Get(ctx, snapshotrepo.GetInput{Slot: loadSlot})
		if err != nil {
			return nil, err
		}
		out, err := svc.RestoreSession(ctx, &game.RestoreSessionInput{Snapshot: loaded.Snapshot})
		if err != nil {
			return nil, err
		}
		fmt.Println(infoStyle.Render("Restored from slot " + loadSlot + "."))
		return out.Projection, nil
	}

	out, err := svc.NewSession(ctx, &game.NewSessionInput{
		PlayerName: playerName,
		Class:      entities.Class(strings.ToLower(playerClass)),
		Seed:       gameSeed,
	})
	if err != nil {
		return nil, err
	}
	return out.Projection, nil
}

func runLoop(ctx context.Context, svc game.Service, repo snapshotrepo.Repository) error {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println(infoStyle.Render("Commands: look, go <dir>, attack, flee, talk <name>, say <text>, bye, take <item>, use <item>, accept <quest-id>, quests, save <slot>, quit"))

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		verb, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		var err error
		switch strings.ToLower(verb) {
		case "quit", "exit":
			return nil
		case "look":
			err = doLook(ctx, svc)
		case "go", "move":
			err = doMove(ctx, svc, rest)
		case "attack":
			err = doAttack(ctx, svc)
		case "flee":
			err = doFlee(ctx, svc)
		case "talk":
			err = doTalk(ctx, svc, rest, "")
		case "say":
			err = doSay(ctx, svc, rest)
		case "bye":
			err = doEndDialogue(ctx, svc)
		case "take":
			err = doTake(ctx, svc, rest)
		case "use":
			err = doUse(ctx, svc, rest)
		case "accept":
			err = doAccept(ctx, svc, rest)
		case "quests":
			err = doQuests(ctx, svc)
		case "save":
			err = doSave(ctx, svc, repo, rest)
		default:
			fmt.Println(infoStyle.Render("Unknown command."))
			continue
		}

		if err != nil {
			if errors.IsFatal(err) {
				return err
			}
			fmt.Println(infoStyle.Render(errors.GetMessage(err)))
		}
	}
}

func doLook(ctx context.Context, svc game.Service) error {
	out, err := svc.Look(ctx, &game.LookInput{})
	if err != nil {
		return err
	}
	printScene(out.Projection)
	return nil
}

func doMove(ctx context.Context, svc game.Service, dir string) error {
	out, err := svc.Move(ctx, &game.MoveInput{Direction: entities.Direction(strings.ToLower(dir))})
	if err != nil {
		return err
	}
	printScene(out.Projection)
	if out.CombatStarted {
		if out.EnemyIntro != "" {
			fmt.Println(combatStyle.Render(out.EnemyIntro))
		}
		fmt.Println(combatStyle.Render("Combat! attack or flee."))
	}
	return nil
}

func doAttack(ctx context.Context, svc game.Service) error {
	out, err := svc.Attack(ctx, &game.AttackInput{})
	if err != nil {
		return err
	}
	fmt.Println(combatStyle.Render(out.Narration))
	if out.Counterattack != nil && out.Counterattack.Damage > 0 {
		fmt.Println(combatStyle.Render(fmt.Sprintf("You take %d damage.", out.Counterattack.Damage)))
	}
	for _, up := range out.LevelUps {
		fmt.Println(titleStyle.Render(fmt.Sprintf("Level up! You are now level %d.", up.NewLevel)))
	}
	printStatus(out.Projection)
	if out.EnemyDefeated {
		fmt.Println(sceneStyle.Render(fmt.Sprintf("The enemy falls. You gain %d experience.", out.ExperienceAwarded)))
	}
	if out.GameOver {
		fmt.Println(titleStyle.Render("You have fallen. The adventure ends here."))
	}
	return nil
}

func doFlee(ctx context.Context, svc game.Service) error {
	out, err := svc.Flee(ctx, &game.FleeInput{})
	if err != nil {
		return err
	}
	fmt.Println(combatStyle.Render(out.Narration))
	if out.Counterattack != nil && out.Counterattack.Damage > 0 {
		fmt.Println(combatStyle.Render(fmt.Sprintf("You take %d damage.", out.Counterattack.Damage)))
	}
	if out.GameOver {
		fmt.Println(titleStyle.Render("You have fallen. The adventure ends here."))
	}
	return nil
}

func doTalk(ctx context.Context, svc game.Service, name, topic string) error {
	out, err := svc.Talk(ctx, &game.TalkInput{NPCName: name, Topic: topic})
	if err != nil {
		return err
	}
	if out.Intro != "" {
		fmt.Println(sceneStyle.Render(out.Intro))
	}
	fmt.Println(speakStyle.Render(out.Line))
	if out.OfferedQuest != nil {
		fmt.Println(titleStyle.Render("Quest offered: " + out.OfferedQuest.Title))
		fmt.Println(sceneStyle.Render(out.OfferedQuest.Description))
		fmt.Println(infoStyle.Render("accept " + out.OfferedQuest.ID))
	}
	return nil
}

func doSay(ctx context.Context, svc game.Service, text string) error {
	out, err := svc.Look(ctx, &game.LookInput{})
	if err != nil {
		return err
	}
	if out.Projection.DialoguePartner == nil {
		return errors.FailedPrecondition("you are not talking to anyone")
	}
	return doTalk(ctx, svc, out.Projection.DialoguePartner.Name, text)
}

func doEndDialogue(ctx context.Context, svc game.Service) error {
	_, err := svc.EndDialogue(ctx, &game.EndDialogueInput{})
	if err != nil {
		return err
	}
	fmt.Println(infoStyle.Render("You end the conversation."))
	return nil
}

func doTake(ctx context.Context, svc game.Service, name string) error {
	out, err := svc.TakeItem(ctx, &game.TakeItemInput{ItemName: name})
	if err != nil {
		return err
	}
	fmt.Println(sceneStyle.Render("You take the " + out.Item.Name + "."))
	return nil
}

func doUse(ctx context.Context, svc game.Service, name string) error {
	out, err := svc.UseItem(ctx, &game.UseItemInput{ItemName: name})
	if err != nil {
		return err
	}
	fmt.Println(sceneStyle.Render(out.Description))
	return nil
}

func doAccept(ctx context.Context, svc game.Service, questID string) error {
	out, err := svc.AcceptQuest(ctx, &game.AcceptQuestInput{QuestID: questID})
	if err != nil {
		return err
	}
	fmt.Println(titleStyle.Render("Quest accepted: " + out.Quest.Title))
	return nil
}

func doQuests(ctx context.Context, svc game.Service) error {
	out, err := svc.Look(ctx, &game.LookInput{})
	if err != nil {
		return err
	}
	if len(out.Projection.Quests) == 0 {
		fmt.Println(infoStyle.Render("No quests yet."))
		return nil
	}
	for _, q := range out.Projection.Quests {
		fmt.Println(sceneStyle.Render(fmt.Sprintf("[%s] %s (%d/%d) id %s",
			q.Status, q.Title, q.Progress, q.Target, q.ID)))
	}
	return nil
}

func doSave(ctx context.Context, svc game.Service, repo snapshotrepo.Repository, slot string) error {
	if slot == "" {
		slot = "autosave"
	}
	out, err := svc.Snapshot(ctx, &game.SnapshotInput{})
	if err != nil {
		return err
	}
	if _, err := repo.Save(ctx, snapshotrepo.SaveInput{Slot: slot, Snapshot: out.Snapshot}); err != nil {
		return err
	}
	fmt.Println(infoStyle.Render("Saved to slot " + slot + "."))
	return nil
}

func printScene(p *game.Projection) {
	fmt.Println(titleStyle.Render(p.LocationName))
	fmt.Println(sceneStyle.Render(p.LocationDescription))

	if len(p.Exits) > 0 {
		exits := make([]string, len(p.Exits))
		for i, d := range p.Exits {
			exits[i] = string(d)
		}
		fmt.Println(infoStyle.Render("Exits: " + strings.Join(exits, ", ")))
	}
	for _, npc := range p.NPCs {
		if npc.Defeated {
			continue
		}
		fmt.Println(infoStyle.Render(fmt.Sprintf("%s is here (%s).", npc.Name, npc.Disposition)))
	}
	for _, item := range p.GroundItems {
		fmt.Println(infoStyle.Render("You see: " + item.Name))
	}
	printStatus(p)
}

func printStatus(p *game.Projection) {
	status := fmt.Sprintf("%s the %s | HP %d/%d, level %d, %d gold",
		p.PlayerName, p.PlayerClass, p.Stats.Health, p.Stats.MaxHealth, p.Stats.Level, p.Gold)
	if p.Enemy != nil {
		status += fmt.Sprintf(" | fighting %s (HP %d/%d)",
			p.Enemy.Name, p.Enemy.Health, p.Enemy.MaxHealth)
	}
	fmt.Println(infoStyle.Render(status))
}
