// Package snapshot defines the interface for session snapshot persistence
package snapshot

//go:generate mockgen -destination=mock/mock_repository.go -package=snapshotmock github.com/llmadventure/llmadventure/internal/repositories/snapshot Repository

import (
	"context"
	"time"

	"github.com/llmadventure/llmadventure/internal/snapshot"
)

// Repository defines the interface for snapshot persistence.
// Implements a single-snapshot-per-slot pattern; saving to an occupied slot
// replaces its contents.
type Repository interface {
	// Save stores a snapshot under a named slot, replacing any prior contents
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.Internal for storage failures
	Save(ctx context.Context, input SaveInput) (*SaveOutput, error)

	// Get retrieves the snapshot in a slot
	// Returns errors.InvalidArgument for empty slot names
	// Returns errors.NotFound if the slot is empty
	// Returns errors.DataLoss if the stored snapshot fails validation
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// List enumerates occupied slots
	// Returns errors.Internal for storage failures
	List(ctx context.Context, input ListInput) (*ListOutput, error)

	// Delete clears a slot
	// Returns errors.InvalidArgument for empty slot names
	// Returns errors.NotFound if the slot is already empty
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)
}

// SlotInfo describes one occupied save slot
type SlotInfo struct {
	Slot      string
	SessionID string
	SavedAt   time.Time
}

// SaveInput defines the input for saving a snapshot
type SaveInput struct {
	Slot     string
	Snapshot *snapshot.Snapshot
}

// SaveOutput defines the output for saving a snapshot
type SaveOutput struct {
}

// GetInput defines the input for loading a snapshot
type GetInput struct {
	Slot string
}

// GetOutput defines the output for loading a snapshot
type GetOutput struct {
	Snapshot *snapshot.Snapshot
}

// ListInput defines the input for listing slots
type ListInput struct {
}

// ListOutput defines the output for listing slots
type ListOutput struct {
	Slots []SlotInfo
}

// DeleteInput defines the input for clearing a slot
type DeleteInput struct {
	Slot string
}

// DeleteOutput defines the output for clearing a slot
type DeleteOutput struct {
}
