package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/danmakucore/server/internal/nbt"
)

// PlayerRow is one saved player. Data holds the resource counters and the
// held spellcards as an encoded compound.
type PlayerRow struct {
	UUID      uuid.UUID
	Name      string
	Score     int64
	Data      *nbt.Compound
	UpdatedAt time.Time
}

type ScoreRow struct {
	Name  string
	Score int64
}

type PlayerRepo struct {
	db *DB
}

func NewPlayerRepo(db *DB) *PlayerRepo {
	return &PlayerRepo{db: db}
}

// Load returns nil, nil for a player never saved before.
func (r *PlayerRepo) Load(ctx context.Context, id uuid.UUID) (*PlayerRow, error) {
	var (
		row PlayerRow
		raw []byte
	)
	err := r.db.Pool.QueryRow(ctx,
		`SELECT uuid, name, score, data, updated_at
		 FROM player_data WHERE uuid = $1`, id,
	).Scan(&row.UUID, &row.Name, &row.Score, &raw, &row.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load player %s: %w", id, err)
	}
	row.Data, err = nbt.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode player %s: %w", id, err)
	}
	return &row, nil
}

// Save upserts a player.
func (r *PlayerRepo) Save(ctx context.Context, row PlayerRow) error {
	raw, err := row.Data.Encode()
	if err != nil {
		return fmt.Errorf("encode player %s: %w", row.UUID, err)
	}
	_, err = r.db.Pool.Exec(ctx,
		`INSERT INTO player_data (uuid, name, score, data, updated_at)
		 VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (uuid) DO UPDATE
		 SET name = EXCLUDED.name, score = EXCLUDED.score,
		     data = EXCLUDED.data, updated_at = now()`,
		row.UUID, row.Name, row.Score, raw,
	)
	if err != nil {
		return fmt.Errorf("save player %s: %w", row.UUID, err)
	}
	return nil
}

// SaveBatch writes every row in one transaction.
func (r *PlayerRepo) SaveBatch(ctx context.Context, rows []PlayerRow) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, row := range rows {
		raw, err := row.Data.Encode()
		if err != nil {
			return fmt.Errorf("encode player %s: %w", row.UUID, err)
		}
		batch.Queue(
			`INSERT INTO player_data (uuid, name, score, data, updated_at)
			 VALUES ($1, $2, $3, $4, now())
			 ON CONFLICT (uuid) DO UPDATE
			 SET name = EXCLUDED.name, score = EXCLUDED.score,
			     data = EXCLUDED.data, updated_at = now()`,
			row.UUID, row.Name, row.Score, raw,
		)
	}
	return pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
}

// TopScores returns the n best scores, highest first.
func (r *PlayerRepo) TopScores(ctx context.Context, n int) ([]ScoreRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT name, score FROM player_data ORDER BY score DESC, name LIMIT $1`, n)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (ScoreRow, error) {
		var s ScoreRow
		err := row.Scan(&s.Name, &s.Score)
		return s, err
	})
}
