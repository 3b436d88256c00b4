package storage

import (
	"context"
	"database/sql"
	"time"
)

type SettingsRepo struct{ db *sql.DB }

func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{db: db} }

func (r *SettingsRepo) Get(ctx context.Context, guildID string) (GuildSettings, error) {
	var s GuildSettings
	err := r.db.QueryRowContext(ctx, `
SELECT guild_id, force_confirm_min, reminder_lead_minutes, cleanup_delay_minutes,
       sub_finding_max_hours, created_at, updated_at
  FROM guild_settings
 WHERE guild_id = $1
`, guildID).Scan(&s.GuildID, &s.ForceConfirmMin, &s.ReminderLeadMinutes,
		&s.CleanupDelayMinutes, &s.SubFindingMaxHours, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		// crea default
		_, err := r.db.ExecContext(ctx, `INSERT INTO guild_settings (guild_id) VALUES ($1)`, guildID)
		if err != nil {
			return GuildSettings{}, err
		}
		return r.Get(ctx, guildID)
	}
	return s, err
}

// Para updates parciales desde /settings set
type GuildSettingsUpdate struct {
	ForceConfirmMin     *int
	ReminderLeadMinutes *int
	CleanupDelayMinutes *int
	SubFindingMaxHours  *int
}

func (r *SettingsRepo) Update(ctx context.Context, guildID string, u GuildSettingsUpdate) (GuildSettings, error) {
	cur, err := r.Get(ctx, guildID)
	if err != nil {
		return GuildSettings{}, err
	}
	if u.ForceConfirmMin != nil {
		cur.ForceConfirmMin = *u.ForceConfirmMin
	}
	if u.ReminderLeadMinutes != nil {
		cur.ReminderLeadMinutes = *u.ReminderLeadMinutes
	}
	if u.CleanupDelayMinutes != nil {
		cur.CleanupDelayMinutes = *u.CleanupDelayMinutes
	}
	if u.SubFindingMaxHours != nil {
		cur.SubFindingMaxHours = *u.SubFindingMaxHours
	}

	_, err = r.db.ExecContext(ctx, `
UPDATE guild_settings
   SET force_confirm_min = $2,
       reminder_lead_minutes = $3,
       cleanup_delay_minutes = $4,
       sub_finding_max_hours = $5,
       updated_at = $6
 WHERE guild_id = $1
`, guildID, cur.ForceConfirmMin, cur.ReminderLeadMinutes, cur.CleanupDelayMinutes,
		cur.SubFindingMaxHours, time.Now())
	if err != nil {
		return GuildSettings{}, err
	}
	return cur, nil
}
