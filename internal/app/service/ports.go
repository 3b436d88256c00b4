package service

import (
	"context"
	"time"

	"github.com/jose-valero/team-scrim-bot/internal/domain"
	"github.com/jose-valero/team-scrim-bot/internal/infra/storage"
)

// Lo implementa internal/infra/storage.TimerRepo
type TimerRepo interface {
	Create(ctx context.Context, t storage.Timer) (int64, error)
	Cancel(ctx context.Context, id int64) error
	MarkDispatched(ctx context.Context, id int64) (bool, error)
	DueBefore(ctx context.Context, t time.Time) ([]storage.Timer, error)
	NextPrecise(ctx context.Context) (storage.Timer, error)
}

// Lo implementa *TimerService; los services agendan/cancelan por aca.
type TimerScheduler interface {
	Schedule(ctx context.Context, ev domain.EventType, p domain.TimerPayload, at time.Time, precise bool) (int64, error)
	Cancel(ctx context.Context, id int64) error
}

// Lo implementa internal/infra/storage.TeamRepo
type TeamRepo interface {
	Get(ctx context.Context, id int64) (storage.Team, error)
}

// Lo implementa internal/infra/storage.ScrimRepo
type ScrimRepo interface {
	Create(ctx context.Context, s storage.Scrim) (int64, error)
	Get(ctx context.Context, id int64) (storage.Scrim, error)
	Save(ctx context.Context, s storage.Scrim) error
	Delete(ctx context.Context, id int64) error
	ListByGuild(ctx context.Context, guildID string) ([]storage.Scrim, error)
}

// Lo implementa internal/infra/storage.GamedayRepo
type GamedayRepo interface {
	CreateBucket(ctx context.Context, b storage.GamedayBucket) (int64, error)
	GetBucket(ctx context.Context, id int64) (storage.GamedayBucket, error)
	UpdateBucket(ctx context.Context, id int64, perTeam *int, autoSub *bool, channelID *string) error
	AddTime(ctx context.Context, t storage.GamedayTime) (int64, error)
	GetTime(ctx context.Context, id int64) (storage.GamedayTime, error)

	Create(ctx context.Context, g storage.Gameday) (int64, error)
	Get(ctx context.Context, id int64) (storage.Gameday, error)
	Save(ctx context.Context, g storage.Gameday) error

	UpsertMember(ctx context.Context, m storage.GamedayMember) error
	ListMembers(ctx context.Context, gamedayID int64) ([]storage.GamedayMember, error)

	AddScoreReport(ctx context.Context, s storage.GamedayScoreReport) (int64, error)
	AddImage(ctx context.Context, img storage.GamedayImage) (int64, error)

	CreateSubFinding(ctx context.Context, sf storage.GamedaySubFinding) (int64, error)
	GetSubFinding(ctx context.Context, gamedayID int64) (storage.GamedaySubFinding, error)
	SaveSubFinding(ctx context.Context, sf storage.GamedaySubFinding) error
}

// Lo implementa internal/infra/storage.PracticeRepo
type PracticeRepo interface {
	Create(ctx context.Context, p storage.Practice) (int64, error)
	Get(ctx context.Context, id int64) (storage.Practice, error)
	End(ctx context.Context, id int64, endedAt time.Time) error
	UpsertMember(ctx context.Context, m storage.PracticeMember) error
	ListMembers(ctx context.Context, practiceID int64) ([]storage.PracticeMember, error)
	OpenInterval(ctx context.Context, practiceID int64, memberID string) (storage.PracticeMemberHistory, error)
	OpenIntervalCount(ctx context.Context, practiceID int64) (int, error)
	AddInterval(ctx context.Context, h storage.PracticeMemberHistory) (int64, error)
	CloseInterval(ctx context.Context, id int64, leftAt time.Time) error
	CloseOpenIntervals(ctx context.Context, practiceID int64, leftAt time.Time) error
	ListIntervals(ctx context.Context, practiceID int64, memberID string) ([]storage.PracticeMemberHistory, error)
}

// Lo implementa internal/infra/storage.SettingsRepo
type SettingsRepo interface {
	Get(ctx context.Context, guildID string) (storage.GuildSettings, error)
	Update(ctx context.Context, guildID string, u storage.GuildSettingsUpdate) (storage.GuildSettings, error)
}

// EventSink recibe los eventos tipados del core. Lo implementa el adapter
// de discord (renderiza mensajes); en tests, un fake. Cada evento lleva el
// snapshot que el consumer necesita para renderizar.
type EventSink interface {
	ScrimConfirmed(ctx context.Context, s storage.Scrim)
	ScrimReminderDue(ctx context.Context, s storage.Scrim)
	ScrimExpired(ctx context.Context, s storage.Scrim)
	ScrimCleanupDue(ctx context.Context, s storage.Scrim)

	GamedayVotingOpened(ctx context.Context, g storage.Gameday)
	GamedayVotingClosed(ctx context.Context, g storage.Gameday, attending int)
	GamedayStarting(ctx context.Context, g storage.Gameday)
	SubFindingOpened(ctx context.Context, g storage.Gameday, sf storage.GamedaySubFinding)
	SubFindingClosed(ctx context.Context, g storage.Gameday, sf storage.GamedaySubFinding)

	PracticeEnded(ctx context.Context, p storage.Practice)
}
