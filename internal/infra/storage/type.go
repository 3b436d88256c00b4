package storage

import (
	"time"

	"github.com/lib/pq"

	"github.com/jose-valero/team-scrim-bot/internal/domain"
)

// Timer es el registro durable de una accion diferida. `dispatched`
// transiciona false->true una sola vez y es la unica memoria de
// "ya disparo" entre reinicios.
type Timer struct {
	ID         int64
	EventType  domain.EventType
	Payload    domain.TimerPayload
	CreatedAt  time.Time
	ExpiresAt  time.Time
	Precise    bool // sub-minuto via sleep/wake; si no, va al batch del ticker
	Dispatched bool
}

type Team struct {
	ID         int64
	GuildID    string
	Name       string
	MemberIDs  pq.StringArray
	SubIDs     pq.StringArray
	CaptainIDs pq.StringArray
	ChannelIDs pq.StringArray
}

// Eligible: ids que pueden votar un scrim de este equipo (capitanes si hay,
// si no el roster completo).
func (t Team) Eligible() []string {
	if len(t.CaptainIDs) > 0 {
		return t.CaptainIDs
	}
	return t.MemberIDs
}

type Scrim struct {
	ID        int64
	GuildID   string
	CreatorID string
	HomeID    int64
	AwayID    int64
	PerTeam   int
	Status    domain.ScrimStatus

	HomeVoterIDs         pq.StringArray
	AwayVoterIDs         pq.StringArray
	ConfirmAnywaysIDs    pq.StringArray
	ScheduledFor         time.Time
	ScrimChatID          *string
	DeadlineTimerID      *int64
	ReminderTimerID      *int64
	CleanupTimerID       *int64
	CreatedAt, UpdatedAt time.Time
}

// GamedayBucket es el template recurrente de un equipo; sus GamedayTime
// dicen que dia y a que hora (hora local del guild).
type GamedayBucket struct {
	ID                  int64
	GuildID             string
	TeamID              int64
	PerTeam             int
	AutomaticSubFinding bool
	SubFindingChannelID *string
	Timezone            string // IANA, ej America/New_York
}

type GamedayTime struct {
	ID       int64
	BucketID int64
	Weekday  time.Weekday
	Hour     int
	Minute   int
}

type Gameday struct {
	ID       int64
	GuildID  string
	TeamID   int64
	BucketID int64
	TimeID   int64
	Status   domain.GamedayStatus

	StartsAt       time.Time
	EndedAt        *time.Time
	VotingStartsAt time.Time
	VotingEndsAt   time.Time

	VotingOpenTimerID  *int64
	VotingCloseTimerID *int64
	StartTimerID       *int64

	Won *bool
}

type GamedayMember struct {
	ID             int64
	GamedayID      int64
	MemberID       string
	Attending      bool
	Reason         *string
	IsTemporarySub bool
}

type GamedayScoreReport struct {
	ID         int64
	GamedayID  int64
	Text       string
	ReportedBy string
	ReportedAt time.Time
}

type GamedayImage struct {
	ID         int64
	GamedayID  int64
	URL        string
	UploadedBy string
	UploadedAt time.Time
}

// GamedaySubFinding: ventana acotada de reclutamiento de subs, creada solo
// si al cierre de votacion falta gente y el bucket lo habilita.
type GamedaySubFinding struct {
	ID           int64
	GamedayID    int64
	Enabled      bool
	StartsAt     time.Time
	EndsAt       time.Time
	CloseTimerID *int64
	Resolved     bool
}

type Practice struct {
	ID          int64
	GuildID     string
	TeamID      int64
	ChannelID   string
	StartedByID string
	StartedAt   time.Time
	EndedAt     *time.Time
	Status      domain.PracticeStatus
}

type PracticeMember struct {
	ID         int64
	PracticeID int64
	MemberID   string
	Attending  bool
	Reason     *string
}

// PracticeMemberHistory: intervalo [joined_at, left_at) de presencia.
// Por miembro nunca se solapan; left_at nil = todavia adentro.
type PracticeMemberHistory struct {
	ID         int64
	PracticeID int64
	MemberID   string
	JoinedAt   time.Time
	LeftAt     *time.Time
}

// GuildSettings: umbrales configurables por guild (no van hardcodeados).
type GuildSettings struct {
	GuildID              string
	ForceConfirmMin      int // minimo de votos confirm-anyways
	ReminderLeadMinutes  int
	CleanupDelayMinutes  int
	SubFindingMaxHours   int
	CreatedAt, UpdatedAt time.Time
}
