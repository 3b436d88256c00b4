package storage

import (
	"context"
	"database/sql"
	"time"
)

type PracticeRepo struct{ db *sql.DB }

func NewPracticeRepo(db *sql.DB) *PracticeRepo { return &PracticeRepo{db: db} }

func (r *PracticeRepo) Create(ctx context.Context, p Practice) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
INSERT INTO practices (guild_id, team_id, channel_id, started_by_id, started_at, status)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id
`, p.GuildID, p.TeamID, p.ChannelID, p.StartedByID, p.StartedAt, string(p.Status)).Scan(&id)
	return id, err
}

func (r *PracticeRepo) Get(ctx context.Context, id int64) (Practice, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, guild_id, team_id, channel_id, started_by_id, started_at, ended_at, status
  FROM practices
 WHERE id = $1
`, id)
	var p Practice
	err := row.Scan(&p.ID, &p.GuildID, &p.TeamID, &p.ChannelID, &p.StartedByID, &p.StartedAt, &p.EndedAt, &p.Status)
	if err == sql.ErrNoRows {
		return Practice{}, ErrNotFound
	}
	return p, err
}

func (r *PracticeRepo) End(ctx context.Context, id int64, endedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE practices
   SET ended_at = $2, status = 'completed'
 WHERE id = $1
`, id, endedAt)
	return err
}

func (r *PracticeRepo) UpsertMember(ctx context.Context, m PracticeMember) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO practice_members (practice_id, member_id, attending, reason)
VALUES ($1,$2,$3,$4)
ON CONFLICT (practice_id, member_id) DO UPDATE SET
  attending = EXCLUDED.attending,
  reason    = EXCLUDED.reason
`, m.PracticeID, m.MemberID, m.Attending, m.Reason)
	return err
}

func (r *PracticeRepo) ListMembers(ctx context.Context, practiceID int64) ([]PracticeMember, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, practice_id, member_id, attending, reason
  FROM practice_members
 WHERE practice_id = $1
`, practiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PracticeMember
	for rows.Next() {
		var m PracticeMember
		if err := rows.Scan(&m.ID, &m.PracticeID, &m.MemberID, &m.Attending, &m.Reason); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// OpenInterval devuelve el intervalo abierto (left_at IS NULL) del miembro,
// ErrNotFound si no tiene.
func (r *PracticeRepo) OpenInterval(ctx context.Context, practiceID int64, memberID string) (PracticeMemberHistory, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, practice_id, member_id, joined_at, left_at
  FROM practice_member_history
 WHERE practice_id = $1 AND member_id = $2 AND left_at IS NULL
`, practiceID, memberID)
	var h PracticeMemberHistory
	err := row.Scan(&h.ID, &h.PracticeID, &h.MemberID, &h.JoinedAt, &h.LeftAt)
	if err == sql.ErrNoRows {
		return PracticeMemberHistory{}, ErrNotFound
	}
	return h, err
}

func (r *PracticeRepo) OpenIntervalCount(ctx context.Context, practiceID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM practice_member_history
 WHERE practice_id = $1 AND left_at IS NULL
`, practiceID).Scan(&n)
	return n, err
}

func (r *PracticeRepo) AddInterval(ctx context.Context, h PracticeMemberHistory) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
INSERT INTO practice_member_history (practice_id, member_id, joined_at)
VALUES ($1,$2,$3)
RETURNING id
`, h.PracticeID, h.MemberID, h.JoinedAt).Scan(&id)
	return id, err
}

func (r *PracticeRepo) CloseInterval(ctx context.Context, id int64, leftAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE practice_member_history
   SET left_at = $2
 WHERE id = $1 AND left_at IS NULL
`, id, leftAt)
	return err
}

// CloseOpenIntervals cierra todo lo que quedo abierto (fin de practice).
func (r *PracticeRepo) CloseOpenIntervals(ctx context.Context, practiceID int64, leftAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE practice_member_history
   SET left_at = $2
 WHERE practice_id = $1 AND left_at IS NULL
`, practiceID, leftAt)
	return err
}

func (r *PracticeRepo) ListIntervals(ctx context.Context, practiceID int64, memberID string) ([]PracticeMemberHistory, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, practice_id, member_id, joined_at, left_at
  FROM practice_member_history
 WHERE practice_id = $1 AND member_id = $2
 ORDER BY joined_at ASC
`, practiceID, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PracticeMemberHistory
	for rows.Next() {
		var h PracticeMemberHistory
		if err := rows.Scan(&h.ID, &h.PracticeID, &h.MemberID, &h.JoinedAt, &h.LeftAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
