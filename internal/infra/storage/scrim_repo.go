package storage

import (
	"context"
	"database/sql"
	"time"
)

type ScrimRepo struct{ db *sql.DB }

func NewScrimRepo(db *sql.DB) *ScrimRepo { return &ScrimRepo{db: db} }

func (r *ScrimRepo) Create(ctx context.Context, s Scrim) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
INSERT INTO scrims
  (guild_id, creator_id, home_id, away_id, per_team, status,
   home_voter_ids, away_voter_ids, confirm_anyways_ids, scheduled_for)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
RETURNING id
`, s.GuildID, s.CreatorID, s.HomeID, s.AwayID, s.PerTeam, string(s.Status),
		s.HomeVoterIDs, s.AwayVoterIDs, s.ConfirmAnywaysIDs, s.ScheduledFor).Scan(&id)
	return id, err
}

func (r *ScrimRepo) Get(ctx context.Context, id int64) (Scrim, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, guild_id, creator_id, home_id, away_id, per_team, status,
       home_voter_ids, away_voter_ids, confirm_anyways_ids, scheduled_for,
       scrim_chat_id, deadline_timer_id, reminder_timer_id, cleanup_timer_id,
       created_at, updated_at
  FROM scrims
 WHERE id = $1
`, id)
	var s Scrim
	err := row.Scan(&s.ID, &s.GuildID, &s.CreatorID, &s.HomeID, &s.AwayID, &s.PerTeam, &s.Status,
		&s.HomeVoterIDs, &s.AwayVoterIDs, &s.ConfirmAnywaysIDs, &s.ScheduledFor,
		&s.ScrimChatID, &s.DeadlineTimerID, &s.ReminderTimerID, &s.CleanupTimerID,
		&s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return Scrim{}, ErrNotFound
	}
	return s, err
}

// Save escribe de vuelta el estado mutable completo del scrim. Los checks
// de quorum y esta escritura corren bajo el lock por-entidad del service,
// asi que no hay lost updates.
func (r *ScrimRepo) Save(ctx context.Context, s Scrim) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE scrims
   SET status = $2,
       home_voter_ids = $3,
       away_voter_ids = $4,
       confirm_anyways_ids = $5,
       scheduled_for = $6,
       scrim_chat_id = $7,
       deadline_timer_id = $8,
       reminder_timer_id = $9,
       cleanup_timer_id = $10,
       updated_at = $11
 WHERE id = $1
`, s.ID, string(s.Status), s.HomeVoterIDs, s.AwayVoterIDs, s.ConfirmAnywaysIDs,
		s.ScheduledFor, s.ScrimChatID, s.DeadlineTimerID, s.ReminderTimerID,
		s.CleanupTimerID, time.Now())
	return err
}

func (r *ScrimRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM scrims WHERE id = $1`, id)
	return err
}

func (r *ScrimRepo) ListByGuild(ctx context.Context, guildID string) ([]Scrim, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, guild_id, creator_id, home_id, away_id, per_team, status,
       home_voter_ids, away_voter_ids, confirm_anyways_ids, scheduled_for,
       scrim_chat_id, deadline_timer_id, reminder_timer_id, cleanup_timer_id,
       created_at, updated_at
  FROM scrims
 WHERE guild_id = $1
 ORDER BY scheduled_for ASC
`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Scrim
	for rows.Next() {
		var s Scrim
		if err := rows.Scan(&s.ID, &s.GuildID, &s.CreatorID, &s.HomeID, &s.AwayID, &s.PerTeam, &s.Status,
			&s.HomeVoterIDs, &s.AwayVoterIDs, &s.ConfirmAnywaysIDs, &s.ScheduledFor,
			&s.ScrimChatID, &s.DeadlineTimerID, &s.ReminderTimerID, &s.CleanupTimerID,
			&s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
