package snapshot

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/llmadventure/llmadventure/internal/errors"
	gamesnapshot "github.com/llmadventure/llmadventure/internal/snapshot"
)

const saveFileExt = ".json"

// FileConfig holds settings for the file-backed repository
type FileConfig struct {
	Dir string
}

// Validate ensures the config is complete
func (c *FileConfig) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if c.Dir == "" {
		return errors.InvalidArgument("save directory cannot be empty")
	}
	return nil
}

type fileRepository struct {
	dir string
}

// NewFileRepository creates a repository that writes one JSON file per slot
// under the configured directory. The directory is created on first use.
func NewFileRepository(cfg *FileConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, errors.Wrapf(err, "failed to create save directory %s", cfg.Dir)
	}

	return &fileRepository{
		dir: cfg.Dir,
	}, nil
}

func (r *fileRepository) path(slot string) string {
	return filepath.Join(r.dir, slot+saveFileExt)
}

func validSlot(slot string) error {
	if slot == "" {
		return errors.InvalidArgument(errSlotEmpty)
	}
	// Slot names become file names, keep them flat
	if slot != filepath.Base(slot) || strings.ContainsAny(slot, "/\\") {
		return errors.InvalidArgumentf("slot name %q must not contain path separators", slot)
	}
	return nil
}

func (r *fileRepository) Save(ctx context.Context, input SaveInput) (*SaveOutput, error) {
	if err := validSlot(input.Slot); err != nil {
		return nil, err
	}
	if input.Snapshot == nil {
		return nil, errors.InvalidArgument(errSnapshotNil)
	}
	if err := input.Snapshot.Validate(); err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(input.Snapshot, "", "  ")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal snapshot")
	}

	// Write then rename so a crash mid-write cannot corrupt the slot
	tmp := r.path(input.Slot) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return nil, errors.Wrapf(err, "failed to write snapshot to slot %s", input.Slot)
	}
	if err := os.Rename(tmp, r.path(input.Slot)); err != nil {
		return nil, errors.Wrapf(err, "failed to commit snapshot to slot %s", input.Slot)
	}

	return &SaveOutput{}, nil
}

func (r *fileRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if err := validSlot(input.Slot); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.path(input.Slot))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundf("slot %s is empty", input.Slot)
		}
		return nil, errors.Wrapf(err, "failed to read slot %s", input.Slot)
	}

	var snap gamesnapshot.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeDataLoss, "failed to unmarshal snapshot")
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}

	return &GetOutput{Snapshot: &snap}, nil
}

func (r *fileRepository) List(ctx context.Context, input ListInput) (*ListOutput, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read save directory")
	}

	out := &ListOutput{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), saveFileExt) {
			continue
		}
		slot := strings.TrimSuffix(entry.Name(), saveFileExt)
		getOutput, err := r.Get(ctx, GetInput{Slot: slot})
		if err != nil {
			// Unreadable saves are skipped, not fatal for listing
			continue
		}
		out.Slots = append(out.Slots, SlotInfo{
			Slot:      slot,
			SessionID: getOutput.Snapshot.SessionID,
			SavedAt:   getOutput.Snapshot.SavedAt,
		})
	}

	sort.Slice(out.Slots, func(i, j int) bool { return out.Slots[i].Slot < out.Slots[j].Slot })
	return out, nil
}

func (r *fileRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if err := validSlot(input.Slot); err != nil {
		return nil, err
	}

	if err := os.Remove(r.path(input.Slot)); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundf("slot %s is empty", input.Slot)
		}
		return nil, errors.Wrapf(err, "failed to delete slot %s", input.Slot)
	}

	return &DeleteOutput{}, nil
}
