package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/danmakucore/server/internal/nbt"
)

// PhaseRepo stores the serialized phase manager of each boss so a restart
// resumes the fight where it was.
type PhaseRepo struct {
	db *DB
}

func NewPhaseRepo(db *DB) *PhaseRepo {
	return &PhaseRepo{db: db}
}

// Load returns nil, nil when the boss has no saved state.
func (r *PhaseRepo) Load(ctx context.Context, boss string) (*nbt.Compound, error) {
	var raw []byte
	err := r.db.Pool.QueryRow(ctx,
		`SELECT state FROM mob_phases WHERE boss = $1`, boss,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load phases of %s: %w", boss, err)
	}
	c, err := nbt.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode phases of %s: %w", boss, err)
	}
	return c, nil
}

func (r *PhaseRepo) Save(ctx context.Context, boss string, state *nbt.Compound) error {
	raw, err := state.Encode()
	if err != nil {
		return fmt.Errorf("encode phases of %s: %w", boss, err)
	}
	_, err = r.db.Pool.Exec(ctx,
		`INSERT INTO mob_phases (boss, state, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (boss) DO UPDATE SET state = EXCLUDED.state, updated_at = now()`,
		boss, raw,
	)
	if err != nil {
		return fmt.Errorf("save phases of %s: %w", boss, err)
	}
	return nil
}

// Delete forgets a boss, used once it has been defeated.
func (r *PhaseRepo) Delete(ctx context.Context, boss string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM mob_phases WHERE boss = $1`, boss)
	if err != nil {
		return fmt.Errorf("delete phases of %s: %w", boss, err)
	}
	return nil
}
