package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultScoreLimit is used by List when limit is not positive.
const DefaultScoreLimit = 10

// Score is one finished game.
type Score struct {
	ID         string    `json:"id"`
	PlayerName string    `json:"player_name"`
	Score      uint64    `json:"score"`
	Lines      int       `json:"lines"`
	CreatedAt  time.Time `json:"created_at"`
}

// ScoreRepository provides access to finished games.
type ScoreRepository struct {
	db *sql.DB
}

// Scores returns the score repository for this store.
func (s *Store) Scores() *ScoreRepository {
	return &ScoreRepository{db: s.db}
}

// Create inserts sc, assigning an ID and a creation time when missing.
func (r *ScoreRepository) Create(sc *Score) error {
	if sc.ID == "" {
		sc.ID = uuid.NewString()
	}
	if sc.CreatedAt.IsZero() {
		sc.CreatedAt = time.Now()
	}
	sc.CreatedAt = sc.CreatedAt.UTC()

	_, err := r.db.Exec(
		`INSERT INTO scores (id, player_name, score, lines, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		sc.ID, sc.PlayerName, int64(sc.Score), sc.Lines, sc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert score: %w", err)
	}
	return nil
}

// Get retrieves a score by ID.
func (r *ScoreRepository) Get(id string) (*Score, error) {
	row := r.db.QueryRow(
		`SELECT id, player_name, score, lines, created_at FROM scores WHERE id = ?`,
		id,
	)
	sc, err := scanScore(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sc, nil
}

// List returns up to limit scores, best first. Ties go to the earlier game.
func (r *ScoreRepository) List(limit int) ([]*Score, error) {
	if limit <= 0 {
		limit = DefaultScoreLimit
	}

	rows, err := r.db.Query(
		`SELECT id, player_name, score, lines, created_at FROM scores
		 ORDER BY score DESC, created_at ASC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()

	var scores []*Score
	for rows.Next() {
		sc, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		scores = append(scores, sc)
	}
	return scores, rows.Err()
}

// Best returns the highest score, or ErrNotFound when no game was recorded.
func (r *ScoreRepository) Best() (*Score, error) {
	scores, err := r.List(1)
	if err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return nil, ErrNotFound
	}
	return scores[0], nil
}

// Delete removes a score by ID.
func (r *ScoreRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM scores WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete score: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear removes every score and returns how many were deleted.
func (r *ScoreRepository) Clear() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM scores`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear scores: %w", err)
	}
	return result.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanScore(s scanner) (*Score, error) {
	sc := &Score{}
	var score int64
	if err := s.Scan(&sc.ID, &sc.PlayerName, &score, &sc.Lines, &sc.CreatedAt); err != nil {
		return nil, err
	}
	sc.Score = uint64(score)
	return sc, nil
}
