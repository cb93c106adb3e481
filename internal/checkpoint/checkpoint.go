// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package checkpoint persists full task state to a single human-readable
// file per task. The file opens with a machine-readable YAML metadata block
// guarded by a checksum, followed by Markdown sections a person can read
// and diff without tooling. Writes are atomic: a reader never observes a
// partially written checkpoint.
package checkpoint

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/meshintel/prodscout/pkg/types"
)

var (
	// ErrNotFound is returned when no checkpoint exists for the task.
	ErrNotFound = errors.New("checkpoint not found")

	// ErrIntegrity is returned when the metadata checksum does not match.
	// Resumption from a corrupt checkpoint is refused; the caller decides
	// whether to restart the task from scratch.
	ErrIntegrity = errors.New("checkpoint integrity check failed")
)

const (
	fenceLine      = "---"
	checksumPrefix = "checksum: sha256:"
)

// Store reads and writes checkpoint files under a directory.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating checkpoint directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Path returns the checkpoint file path for a task id.
func (s *Store) Path(taskID string) string {
	return filepath.Join(s.dir, taskID+".md")
}

// Write persists the snapshot atomically: the file is written to a
// temporary name in the same directory and renamed over the previous
// checkpoint.
func (s *Store) Write(snap *types.Snapshot) error {
	stateYAML, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling checkpoint state: %w", err)
	}

	var b strings.Builder
	b.WriteString(fenceLine + "\n")
	fmt.Fprintf(&b, "%s%x\n", checksumPrefix, sha256.Sum256(stateYAML))
	b.Write(stateYAML)
	b.WriteString(fenceLine + "\n\n")
	renderSections(&b, snap)

	path := s.Path(snap.Task.ID)
	tmp, err := os.CreateTemp(s.dir, snap.Task.ID+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp checkpoint: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing checkpoint: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("installing checkpoint: %w", err)
	}
	return nil
}

// Read loads and verifies the snapshot for a task. A checksum mismatch is
// reported as ErrIntegrity, never silently ignored.
func (s *Store) Read(taskID string) (*types.Snapshot, error) {
	data, err := os.ReadFile(s.Path(taskID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("task %s: %w", taskID, ErrNotFound)
		}
		return nil, fmt.Errorf("reading checkpoint: %w", err)
	}

	stateYAML, wantSum, err := splitMetadata(string(data))
	if err != nil {
		return nil, fmt.Errorf("task %s: %w: %v", taskID, ErrIntegrity, err)
	}

	gotSum := fmt.Sprintf("%x", sha256.Sum256([]byte(stateYAML)))
	if gotSum != wantSum {
		return nil, fmt.Errorf("task %s: %w: checksum %s does not match stored %s",
			taskID, ErrIntegrity, gotSum[:12], wantSum[:min(12, len(wantSum))])
	}

	var snap types.Snapshot
	if err := yaml.Unmarshal([]byte(stateYAML), &snap); err != nil {
		return nil, fmt.Errorf("task %s: %w: %v", taskID, ErrIntegrity, err)
	}
	return &snap, nil
}

// Delete removes the checkpoint for a task.
func (s *Store) Delete(taskID string) error {
	if err := os.Remove(s.Path(taskID)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("task %s: %w", taskID, ErrNotFound)
		}
		return fmt.Errorf("deleting checkpoint: %w", err)
	}
	return nil
}

// List returns the task ids with a checkpoint on disk.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading checkpoint directory: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".md"))
	}
	return ids, nil
}

// splitMetadata extracts the YAML state block and the stored checksum from
// the file's front-matter fence.
func splitMetadata(content string) (stateYAML, checksum string, err error) {
	lines := strings.SplitAfter(content, "\n")
	if len(lines) < 3 || strings.TrimSpace(lines[0]) != fenceLine {
		return "", "", fmt.Errorf("missing metadata fence")
	}
	if !strings.HasPrefix(lines[1], checksumPrefix) {
		return "", "", fmt.Errorf("missing checksum line")
	}
	checksum = strings.TrimSpace(strings.TrimPrefix(lines[1], checksumPrefix))

	var state strings.Builder
	for _, line := range lines[2:] {
		// The closing fence is unindented; indented "---" inside YAML
		// block scalars must not terminate the metadata.
		if strings.TrimRight(line, "\r\n") == fenceLine {
			return state.String(), checksum, nil
		}
		state.WriteString(line)
	}
	return "", "", fmt.Errorf("unterminated metadata fence")
}
