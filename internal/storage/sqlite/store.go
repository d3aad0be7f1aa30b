// Package sqlite is a single-file storage backend for deployments without Redis.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mcoot/cardsagainstentropy/internal/model"
	"github.com/mcoot/cardsagainstentropy/internal/storage"
)

// Store is a SQLite-backed implementation of the storage interface
type Store struct {
	db *sql.DB
}

// Ensure Store implements the interface
var _ storage.Storage = (*Store)(nil)

// Open opens the database at path and creates the schema
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer at a time; the ledger lock already serialises per key
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := CreateSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// Player operations

func (s *Store) SavePlayer(ctx context.Context, player *model.Player) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO players (identity, display_name, score, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(identity) DO UPDATE SET display_name = excluded.display_name, score = excluded.score`,
		string(player.Identity), player.DisplayName, player.Score, formatTime(player.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("save player: %w", err)
	}
	return nil
}

func (s *Store) GetPlayer(ctx context.Context, identity model.Identity) (*model.Player, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT display_name, score, created_at FROM players WHERE identity = ?`, string(identity))

	player := model.Player{Identity: identity}
	var createdAt string
	if err := row.Scan(&player.DisplayName, &player.Score, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("get player: %w", err)
	}

	var err error
	if player.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse player created_at: %w", err)
	}
	return &player, nil
}

// Credential operations

func (s *Store) SaveCredential(ctx context.Context, cred *model.Credential) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO credentials (identity, passphrase_hash, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(identity) DO UPDATE SET passphrase_hash = excluded.passphrase_hash`,
		string(cred.Identity), cred.PassphraseHash, formatTime(cred.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func (s *Store) GetCredential(ctx context.Context, identity model.Identity) (*model.Credential, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT passphrase_hash, created_at FROM credentials WHERE identity = ?`, string(identity))

	cred := model.Credential{Identity: identity}
	var createdAt string
	if err := row.Scan(&cred.PassphraseHash, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrCredentialMissing
		}
		return nil, fmt.Errorf("get credential: %w", err)
	}

	var err error
	if cred.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse credential created_at: %w", err)
	}
	return &cred, nil
}

// Game operations

func (s *Store) NextGameID(ctx context.Context) (model.GameID, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO counters (name, value) VALUES ('game', 1)
		 ON CONFLICT(name) DO UPDATE SET value = value + 1
		 RETURNING value`,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("next game id: %w", err)
	}
	return model.GameID(id), nil
}

func (s *Store) SaveGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO games (id, status, data, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET status = excluded.status, data = excluded.data, updated_at = excluded.updated_at`,
		int64(game.ID), string(game.Status), string(data), formatTime(game.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	return nil
}

func (s *Store) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM games WHERE id = ?`, int64(id)).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrGameNotFound
		}
		return nil, fmt.Errorf("get game: %w", err)
	}

	var game model.Game
	if err := json.Unmarshal([]byte(data), &game); err != nil {
		return nil, fmt.Errorf("decode game: %w", err)
	}
	return &game, nil
}

func (s *Store) ListGames(ctx context.Context, status model.GameStatus) ([]*model.Game, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM games WHERE status = ? ORDER BY id`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	games := []*model.Game{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		var game model.Game
		if err := json.Unmarshal([]byte(data), &game); err != nil {
			return nil, fmt.Errorf("decode game: %w", err)
		}
		games = append(games, &game)
	}
	return games, rows.Err()
}

// Randomness operations

func (s *Store) SaveRandomnessRequest(ctx context.Context, req *model.RandomnessRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO randomness_requests (sequence_number, requester, status, data) VALUES (?, ?, ?, ?)
		 ON CONFLICT(sequence_number) DO UPDATE SET status = excluded.status, data = excluded.data`,
		int64(req.SequenceNumber), string(req.Requester), string(req.Status), string(data),
	)
	if err != nil {
		return fmt.Errorf("save randomness request: %w", err)
	}
	return nil
}

func (s *Store) GetRandomnessRequest(ctx context.Context, seq model.SequenceNumber) (*model.RandomnessRequest, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM randomness_requests WHERE sequence_number = ?`, int64(seq)).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrFlipNotFound
		}
		return nil, fmt.Errorf("get randomness request: %w", err)
	}

	var req model.RandomnessRequest
	if err := json.Unmarshal([]byte(data), &req); err != nil {
		return nil, fmt.Errorf("decode randomness request: %w", err)
	}
	return &req, nil
}
