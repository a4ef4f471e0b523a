package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/llmadventure/llmadventure/internal/config"
	snapshotrepo "github.com/llmadventure/llmadventure/internal/repositories/snapshot"
)

var savesCmd = &cobra.Command{
	Use:   "saves",
	Short: "Manage save slots",
}

var savesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List occupied save slots",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := savesRepository()
		if err != nil {
			return err
		}
		out, err := repo.List(cmd.Context(), snapshotrepo.ListInput{})
		if err != nil {
			return err
		}
		if len(out.Slots) == 0 {
			fmt.Println("No saves.")
			return nil
		}
		for _, slot := range out.Slots {
			fmt.Printf("%s\tsession %s\tsaved %s\n",
				slot.Slot, slot.SessionID, slot.SavedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var savesDeleteCmd = &cobra.Command{
	Use:   "delete <slot>",
	Short: "Delete a save slot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := savesRepository()
		if err != nil {
			return err
		}
		if _, err := repo.Delete(cmd.Context(), snapshotrepo.DeleteInput{Slot: args[0]}); err != nil {
			return err
		}
		fmt.Println("Deleted", args[0])
		return nil
	},
}

func savesRepository() (snapshotrepo.Repository, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return buildRepository(cfg)
}

func init() {
	savesCmd.AddCommand(savesListCmd)
	savesCmd.AddCommand(savesDeleteCmd)
}
