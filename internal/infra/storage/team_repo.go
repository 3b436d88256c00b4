package storage

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
)

type TeamRepo struct{ db *sql.DB }

func NewTeamRepo(db *sql.DB) *TeamRepo { return &TeamRepo{db: db} }

func (r *TeamRepo) Create(ctx context.Context, t Team) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
INSERT INTO teams (guild_id, name, member_ids, sub_ids, captain_ids, channel_ids)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id
`, t.GuildID, t.Name, t.MemberIDs, t.SubIDs, t.CaptainIDs, t.ChannelIDs).Scan(&id)
	return id, err
}

func (r *TeamRepo) Get(ctx context.Context, id int64) (Team, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, guild_id, name, member_ids, sub_ids, captain_ids, channel_ids
  FROM teams
 WHERE id = $1
`, id)
	var t Team
	err := row.Scan(&t.ID, &t.GuildID, &t.Name, &t.MemberIDs, &t.SubIDs, &t.CaptainIDs, &t.ChannelIDs)
	if err == sql.ErrNoRows {
		return Team{}, ErrNotFound
	}
	return t, err
}

// UpdateRoster reemplaza los sets de ids completos (las mutaciones de
// roster vienen de comandos externos al core).
func (r *TeamRepo) UpdateRoster(ctx context.Context, id int64, members, subs, captains pq.StringArray) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE teams
   SET member_ids = $2, sub_ids = $3, captain_ids = $4
 WHERE id = $1
`, id, members, subs, captains)
	return err
}

func (r *TeamRepo) ListByGuild(ctx context.Context, guildID string) ([]Team, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, guild_id, name, member_ids, sub_ids, captain_ids, channel_ids
  FROM teams
 WHERE guild_id = $1
 ORDER BY name ASC
`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Team
	for rows.Next() {
		var t Team
		if err := rows.Scan(&t.ID, &t.GuildID, &t.Name, &t.MemberIDs, &t.SubIDs, &t.CaptainIDs, &t.ChannelIDs); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
