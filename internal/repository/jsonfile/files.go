// Package jsonfile is the file-backed store: one directory per student under
// <data dir>/students holding stats.json and performance.json.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vytor/drumdungeon/internal/models"
	"github.com/vytor/drumdungeon/internal/repository"
)

const (
	studentsDir     = "students"
	statsFile       = "stats.json"
	performanceFile = "performance.json"
	leaderboardFile = "leaderboard.json"
)

func studentDir(root, username string) (string, error) {
	if !models.ValidUsername(username) {
		return "", fmt.Errorf("invalid username %q", username)
	}
	return filepath.Join(root, studentsDir, username), nil
}

// readJSON decodes path into v, mapping a missing file to repository.ErrNotFound.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return repository.ErrNotFound
		}
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeJSON replaces path atomically: readers see the old or the new file, never a torn one.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
