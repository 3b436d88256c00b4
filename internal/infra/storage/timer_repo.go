package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("not found")

type TimerRepo struct{ db *sql.DB }

func NewTimerRepo(db *sql.DB) *TimerRepo { return &TimerRepo{db: db} }

// Create persiste el timer y ademas appendea el backup en timer_archive.
// Si falla el insert primario el error vuelve sincrono al caller: nunca
// perdemos un timer en silencio.
func (r *TimerRepo) Create(ctx context.Context, t Timer) (int64, error) {
	raw, err := json.Marshal(t.Payload)
	if err != nil {
		return 0, fmt.Errorf("timer payload: %w", err)
	}

	var id int64
	err = r.db.QueryRowContext(ctx, `
INSERT INTO timers (event_type, payload, created_at, expires_at, precise)
VALUES ($1, $2::jsonb, $3, $4, $5)
RETURNING id
`, string(t.EventType), raw, t.CreatedAt, t.ExpiresAt, t.Precise).Scan(&id)
	if err != nil {
		return 0, err
	}

	// backup append-only; best-effort, el primario ya esta escrito
	_, _ = r.db.ExecContext(ctx, `
INSERT INTO timer_archive (timer_id, event_type, payload, expires_at)
VALUES ($1, $2, $3::jsonb, $4)
`, id, string(t.EventType), raw, t.ExpiresAt)

	return id, nil
}

// Cancel es idempotente: no-op si el timer no existe o ya fue despachado.
func (r *TimerRepo) Cancel(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
DELETE FROM timers
 WHERE id = $1 AND NOT dispatched
`, id)
	return err
}

// MarkDispatched es el CAS false->true. Devuelve false si otro dispatch
// (o un proceso gemelo) ya lo gano; ese RowsAffected es la garantia de
// exactly-once.
func (r *TimerRepo) MarkDispatched(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE timers
   SET dispatched = TRUE
 WHERE id = $1 AND NOT dispatched
`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		_, _ = r.db.ExecContext(ctx, `
UPDATE timer_archive SET dispatched_at = now() WHERE timer_id = $1
`, id)
	}
	return n > 0, nil
}

// DueBefore lista los timers sin despachar con expiracion <= t, ordenados
// por expiracion. Los empates salen por id: el agendado primero despacha
// primero (el cierre de votacion de un gameday va antes que su arranque
// aunque caigan en el mismo instante).
func (r *TimerRepo) DueBefore(ctx context.Context, t time.Time) ([]Timer, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, event_type, payload, created_at, expires_at, precise, dispatched
  FROM timers
 WHERE NOT dispatched AND expires_at <= $1
 ORDER BY expires_at ASC, id ASC
`, t)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTimers(rows)
}

// NextPrecise devuelve el proximo timer preciso sin despachar (para el
// sleep del dispatcher). ErrNotFound si no hay ninguno.
func (r *TimerRepo) NextPrecise(ctx context.Context) (Timer, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, event_type, payload, created_at, expires_at, precise, dispatched
  FROM timers
 WHERE NOT dispatched AND precise
 ORDER BY expires_at ASC
 LIMIT 1
`)
	t, err := scanTimer(row)
	if err == sql.ErrNoRows {
		return Timer{}, ErrNotFound
	}
	return t, err
}

type rowScanner interface{ Scan(dest ...any) error }

func scanTimer(row rowScanner) (Timer, error) {
	var t Timer
	var raw []byte
	if err := row.Scan(&t.ID, &t.EventType, &raw, &t.CreatedAt, &t.ExpiresAt, &t.Precise, &t.Dispatched); err != nil {
		return Timer{}, err
	}
	if err := json.Unmarshal(raw, &t.Payload); err != nil {
		return Timer{}, fmt.Errorf("timer %d payload: %w", t.ID, err)
	}
	return t, nil
}

func scanTimers(rows *sql.Rows) ([]Timer, error) {
	var out []Timer
	for rows.Next() {
		t, err := scanTimer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
