package domain

// ScrimStatus — semantica canonica elegida (las revisiones historicas del
// protocolo mezclaban "host" y "away"; aca queda fijo): el equipo home
// propone, el away vota. No hay estado pending_host.
//
//	pending_away -> scheduled   (quorum away, o force-confirm)
//	pending_away -> cancelled   (decline explicito o deadline sin quorum)
type ScrimStatus string

const (
	ScrimPendingAway ScrimStatus = "pending_away"
	ScrimScheduled   ScrimStatus = "scheduled"
	ScrimCancelled   ScrimStatus = "cancelled"
)

// VotingClosed: scrim confirmado o cancelado, ya no se vota. Un scrim
// scheduled igual se puede bajar con Decline.
func (s ScrimStatus) VotingClosed() bool {
	return s == ScrimScheduled || s == ScrimCancelled
}

// ScrimSide identifica de que lado vota un miembro.
type ScrimSide string

const (
	SideHome ScrimSide = "home"
	SideAway ScrimSide = "away"
)

// GamedayStatus sigue el ciclo de vida completo de una ocurrencia.
type GamedayStatus string

const (
	GamedayPending      GamedayStatus = "pending"
	GamedayVotingOpen   GamedayStatus = "voting_open"
	GamedayVotingClosed GamedayStatus = "voting_closed"
	GamedayInProgress   GamedayStatus = "in_progress"
	GamedayCompleted    GamedayStatus = "completed"
	GamedayCancelled    GamedayStatus = "cancelled"
)

func (s GamedayStatus) Terminal() bool {
	return s == GamedayCompleted || s == GamedayCancelled
}

type PracticeStatus string

const (
	PracticeOngoing   PracticeStatus = "ongoing"
	PracticeCompleted PracticeStatus = "completed"
)
