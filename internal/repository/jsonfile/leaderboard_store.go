package jsonfile

import (
	"context"
	"path/filepath"

	"github.com/vytor/drumdungeon/internal/models"
	"github.com/vytor/drumdungeon/internal/repository"
)

type leaderboardStore struct {
	root string
}

func NewLeaderboardStore(dataDir string) repository.LeaderboardStore {
	return &leaderboardStore{root: dataDir}
}

func (s *leaderboardStore) Load(ctx context.Context) (*models.Leaderboard, error) {
	var board models.Leaderboard
	if err := readJSON(filepath.Join(s.root, leaderboardFile), &board); err != nil {
		return nil, err
	}
	return &board, nil
}

func (s *leaderboardStore) Save(ctx context.Context, board *models.Leaderboard) error {
	return writeJSON(filepath.Join(s.root, leaderboardFile), board)
}
