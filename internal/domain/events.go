package domain

// EventType etiqueta el payload de un timer. Cada tipo tiene un unico
// subscriber registrado en el dispatcher.
type EventType string

const (
	EventScrimDeadline EventType = "scrim_deadline"
	EventScrimReminder EventType = "scrim_reminder"
	EventScrimCleanup  EventType = "scrim_cleanup"

	EventGamedayVotingOpen  EventType = "gameday_voting_open"
	EventGamedayVotingClose EventType = "gameday_voting_close"
	EventGamedayStart       EventType = "gameday_start"

	EventSubFindingClose EventType = "sub_finding_close"
)

// TimerPayload es la variante tipada que viaja dentro de un timer.
// El tag es EventType; cada subscriber lee solo los ids que le tocan.
// Se persiste como jsonb.
type TimerPayload struct {
	GuildID   string `json:"guild_id,omitempty"`
	ScrimID   int64  `json:"scrim_id,omitempty"`
	GamedayID int64  `json:"gameday_id,omitempty"`
}
