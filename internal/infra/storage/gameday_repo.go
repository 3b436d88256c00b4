package storage

import (
	"context"
	"database/sql"
	"time"
)

type GamedayRepo struct{ db *sql.DB }

func NewGamedayRepo(db *sql.DB) *GamedayRepo { return &GamedayRepo{db: db} }

// ---------- buckets ----------

func (r *GamedayRepo) CreateBucket(ctx context.Context, b GamedayBucket) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
INSERT INTO gameday_buckets (guild_id, team_id, per_team, automatic_sub_finding, sub_finding_channel_id, timezone)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id
`, b.GuildID, b.TeamID, b.PerTeam, b.AutomaticSubFinding, b.SubFindingChannelID, b.Timezone).Scan(&id)
	return id, err
}

func (r *GamedayRepo) GetBucket(ctx context.Context, id int64) (GamedayBucket, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, guild_id, team_id, per_team, automatic_sub_finding, sub_finding_channel_id, timezone
  FROM gameday_buckets
 WHERE id = $1
`, id)
	var b GamedayBucket
	err := row.Scan(&b.ID, &b.GuildID, &b.TeamID, &b.PerTeam, &b.AutomaticSubFinding, &b.SubFindingChannelID, &b.Timezone)
	if err == sql.ErrNoRows {
		return GamedayBucket{}, ErrNotFound
	}
	return b, err
}

// UpdateBucket: patch parcial estilo /settings (punteros = opcionales).
func (r *GamedayRepo) UpdateBucket(ctx context.Context, id int64, perTeam *int, autoSub *bool, channelID *string) error {
	b, err := r.GetBucket(ctx, id)
	if err != nil {
		return err
	}
	if perTeam != nil {
		b.PerTeam = *perTeam
	}
	if autoSub != nil {
		b.AutomaticSubFinding = *autoSub
	}
	if channelID != nil {
		b.SubFindingChannelID = channelID
	}
	_, err = r.db.ExecContext(ctx, `
UPDATE gameday_buckets
   SET per_team = $2, automatic_sub_finding = $3, sub_finding_channel_id = $4
 WHERE id = $1
`, id, b.PerTeam, b.AutomaticSubFinding, b.SubFindingChannelID)
	return err
}

func (r *GamedayRepo) AddTime(ctx context.Context, t GamedayTime) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
INSERT INTO gameday_times (bucket_id, weekday, hour, minute)
VALUES ($1,$2,$3,$4)
RETURNING id
`, t.BucketID, int(t.Weekday), t.Hour, t.Minute).Scan(&id)
	return id, err
}

func (r *GamedayRepo) GetTime(ctx context.Context, id int64) (GamedayTime, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, bucket_id, weekday, hour, minute FROM gameday_times WHERE id = $1
`, id)
	var t GamedayTime
	var wd int
	err := row.Scan(&t.ID, &t.BucketID, &wd, &t.Hour, &t.Minute)
	if err == sql.ErrNoRows {
		return GamedayTime{}, ErrNotFound
	}
	t.Weekday = time.Weekday(wd)
	return t, err
}

// ---------- gamedays ----------

func (r *GamedayRepo) Create(ctx context.Context, g Gameday) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
INSERT INTO gamedays
  (guild_id, team_id, bucket_id, time_id, status, starts_at, voting_starts_at, voting_ends_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING id
`, g.GuildID, g.TeamID, g.BucketID, g.TimeID, string(g.Status), g.StartsAt, g.VotingStartsAt, g.VotingEndsAt).Scan(&id)
	return id, err
}

func (r *GamedayRepo) Get(ctx context.Context, id int64) (Gameday, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, guild_id, team_id, bucket_id, time_id, status, starts_at, ended_at,
       voting_starts_at, voting_ends_at, voting_open_timer_id, voting_close_timer_id,
       start_timer_id, won
  FROM gamedays
 WHERE id = $1
`, id)
	var g Gameday
	err := row.Scan(&g.ID, &g.GuildID, &g.TeamID, &g.BucketID, &g.TimeID, &g.Status,
		&g.StartsAt, &g.EndedAt, &g.VotingStartsAt, &g.VotingEndsAt,
		&g.VotingOpenTimerID, &g.VotingCloseTimerID, &g.StartTimerID, &g.Won)
	if err == sql.ErrNoRows {
		return Gameday{}, ErrNotFound
	}
	return g, err
}

func (r *GamedayRepo) Save(ctx context.Context, g Gameday) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE gamedays
   SET status = $2, starts_at = $3, ended_at = $4,
       voting_starts_at = $5, voting_ends_at = $6,
       voting_open_timer_id = $7, voting_close_timer_id = $8, start_timer_id = $9,
       won = $10
 WHERE id = $1
`, g.ID, string(g.Status), g.StartsAt, g.EndedAt, g.VotingStartsAt, g.VotingEndsAt,
		g.VotingOpenTimerID, g.VotingCloseTimerID, g.StartTimerID, g.Won)
	return err
}

// ---------- miembros ----------

// UpsertMember: un voto de asistencia por miembro (re-votar pisa el anterior).
func (r *GamedayRepo) UpsertMember(ctx context.Context, m GamedayMember) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO gameday_members (gameday_id, member_id, attending, reason, is_temporary_sub)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (gameday_id, member_id) DO UPDATE SET
  attending        = EXCLUDED.attending,
  reason           = EXCLUDED.reason,
  is_temporary_sub = EXCLUDED.is_temporary_sub
`, m.GamedayID, m.MemberID, m.Attending, m.Reason, m.IsTemporarySub)
	return err
}

func (r *GamedayRepo) ListMembers(ctx context.Context, gamedayID int64) ([]GamedayMember, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, gameday_id, member_id, attending, reason, is_temporary_sub
  FROM gameday_members
 WHERE gameday_id = $1
`, gamedayID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GamedayMember
	for rows.Next() {
		var m GamedayMember
		if err := rows.Scan(&m.ID, &m.GamedayID, &m.MemberID, &m.Attending, &m.Reason, &m.IsTemporarySub); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ---------- score / imagenes (append-only) ----------

func (r *GamedayRepo) AddScoreReport(ctx context.Context, s GamedayScoreReport) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
INSERT INTO gameday_score_reports (gameday_id, text, reported_by)
VALUES ($1,$2,$3)
RETURNING id
`, s.GamedayID, s.Text, s.ReportedBy).Scan(&id)
	return id, err
}

func (r *GamedayRepo) AddImage(ctx context.Context, img GamedayImage) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
INSERT INTO gameday_images (gameday_id, url, uploaded_by)
VALUES ($1,$2,$3)
RETURNING id
`, img.GamedayID, img.URL, img.UploadedBy).Scan(&id)
	return id, err
}

// ---------- sub finding ----------

func (r *GamedayRepo) CreateSubFinding(ctx context.Context, sf GamedaySubFinding) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
INSERT INTO gameday_sub_findings (gameday_id, enabled, starts_at, ends_at, close_timer_id)
VALUES ($1,$2,$3,$4,$5)
RETURNING id
`, sf.GamedayID, sf.Enabled, sf.StartsAt, sf.EndsAt, sf.CloseTimerID).Scan(&id)
	return id, err
}

func (r *GamedayRepo) GetSubFinding(ctx context.Context, gamedayID int64) (GamedaySubFinding, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, gameday_id, enabled, starts_at, ends_at, close_timer_id, resolved
  FROM gameday_sub_findings
 WHERE gameday_id = $1
`, gamedayID)
	var sf GamedaySubFinding
	err := row.Scan(&sf.ID, &sf.GamedayID, &sf.Enabled, &sf.StartsAt, &sf.EndsAt, &sf.CloseTimerID, &sf.Resolved)
	if err == sql.ErrNoRows {
		return GamedaySubFinding{}, ErrNotFound
	}
	return sf, err
}

func (r *GamedayRepo) SaveSubFinding(ctx context.Context, sf GamedaySubFinding) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE gameday_sub_findings
   SET enabled = $2, ends_at = $3, close_timer_id = $4, resolved = $5
 WHERE id = $1
`, sf.ID, sf.Enabled, sf.EndsAt, sf.CloseTimerID, sf.Resolved)
	return err
}
