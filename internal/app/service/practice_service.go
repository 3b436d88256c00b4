package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jose-valero/team-scrim-bot/internal/domain"
	"github.com/jose-valero/team-scrim-bot/internal/infra/storage"
)

// PracticeService trackea sesiones ad-hoc por intervalos de presencia.
// No usa timers: solo reloj de pared. La sesion queda ongoing hasta que
// el ultimo presente cierra su intervalo.
type PracticeService struct {
	practices PracticeRepo
	teams     TeamRepo
	sink      EventSink

	locks *keyedLocks
	now   func() time.Time
}

func NewPracticeService(practices PracticeRepo, teams TeamRepo, sink EventSink) *PracticeService {
	return &PracticeService{
		practices: practices,
		teams:     teams,
		sink:      sink,
		locks:     newKeyedLocks(),
		now:       time.Now,
	}
}

// Start: el primer miembro que entra al canal abre la sesion (y su propio
// intervalo).
func (s *PracticeService) Start(ctx context.Context, guildID string, teamID int64, channelID, startedBy string) (storage.Practice, error) {
	team, err := s.teams.Get(ctx, teamID)
	if err != nil {
		return storage.Practice{}, err
	}
	if team.GuildID != guildID {
		return storage.Practice{}, fmt.Errorf("equipo de otro guild")
	}

	now := s.now()
	p := storage.Practice{
		GuildID:     guildID,
		TeamID:      teamID,
		ChannelID:   channelID,
		StartedByID: startedBy,
		StartedAt:   now,
		Status:      domain.PracticeOngoing,
	}
	p.ID, err = s.practices.Create(ctx, p)
	if err != nil {
		return storage.Practice{}, err
	}

	if err := s.practices.UpsertMember(ctx, storage.PracticeMember{
		PracticeID: p.ID, MemberID: startedBy, Attending: true,
	}); err != nil {
		return storage.Practice{}, err
	}
	if _, err := s.practices.AddInterval(ctx, storage.PracticeMemberHistory{
		PracticeID: p.ID, MemberID: startedBy, JoinedAt: now,
	}); err != nil {
		return storage.Practice{}, err
	}
	return p, nil
}

// Join abre un intervalo nuevo para el miembro. Un join con intervalo
// todavia abierto es un duplicado: ErrIntervalOverlap, el estado no cambia.
func (s *PracticeService) Join(ctx context.Context, practiceID int64, memberID string) error {
	defer s.locks.lock(practiceID)()

	p, err := s.practices.Get(ctx, practiceID)
	if err != nil {
		return err
	}
	if p.Status != domain.PracticeOngoing {
		return domain.ErrInvalidTransition
	}

	if _, err := s.practices.OpenInterval(ctx, practiceID, memberID); err == nil {
		return domain.ErrIntervalOverlap
	} else if err != storage.ErrNotFound {
		return err
	}

	if err := s.practices.UpsertMember(ctx, storage.PracticeMember{
		PracticeID: practiceID, MemberID: memberID, Attending: true,
	}); err != nil {
		return err
	}
	_, err = s.practices.AddInterval(ctx, storage.PracticeMemberHistory{
		PracticeID: practiceID, MemberID: memberID, JoinedAt: s.now(),
	})
	return err
}

// Leave cierra el intervalo abierto del miembro. Si era el ultimo
// presente, la sesion termina.
func (s *PracticeService) Leave(ctx context.Context, practiceID int64, memberID string) error {
	defer s.locks.lock(practiceID)()

	p, err := s.practices.Get(ctx, practiceID)
	if err != nil {
		return err
	}
	if p.Status != domain.PracticeOngoing {
		return domain.ErrInvalidTransition
	}

	h, err := s.practices.OpenInterval(ctx, practiceID, memberID)
	if err != nil {
		if err == storage.ErrNotFound {
			return domain.ErrInvalidTransition // leave sin join
		}
		return err
	}

	now := s.now()
	if err := s.practices.CloseInterval(ctx, h.ID, now); err != nil {
		return err
	}

	open, err := s.practices.OpenIntervalCount(ctx, practiceID)
	if err != nil {
		return err
	}
	if open > 0 {
		return nil
	}
	return s.end(ctx, p, now)
}

// MarkAbsent deja constancia explicita de que el miembro no asiste (con
// motivo opcional). No toca intervalos.
func (s *PracticeService) MarkAbsent(ctx context.Context, practiceID int64, memberID string, reason *string) error {
	defer s.locks.lock(practiceID)()

	p, err := s.practices.Get(ctx, practiceID)
	if err != nil {
		return err
	}
	if p.Status != domain.PracticeOngoing {
		return domain.ErrInvalidTransition
	}
	return s.practices.UpsertMember(ctx, storage.PracticeMember{
		PracticeID: practiceID, MemberID: memberID, Attending: false, Reason: reason,
	})
}

// end cierra la sesion: cualquier intervalo que haya quedado abierto se
// cierra implicitamente en ended_at.
func (s *PracticeService) end(ctx context.Context, p storage.Practice, endedAt time.Time) error {
	if err := s.practices.CloseOpenIntervals(ctx, p.ID, endedAt); err != nil {
		return err
	}
	if err := s.practices.End(ctx, p.ID, endedAt); err != nil {
		return err
	}
	p.EndedAt = &endedAt
	p.Status = domain.PracticeCompleted
	s.sink.PracticeEnded(ctx, p)
	return nil
}

// MemberTotal: credito total del miembro = suma de sus intervalos cerrados.
func (s *PracticeService) MemberTotal(ctx context.Context, practiceID int64, memberID string) (time.Duration, error) {
	hs, err := s.practices.ListIntervals(ctx, practiceID, memberID)
	if err != nil {
		return 0, err
	}
	var total time.Duration
	for _, h := range hs {
		if h.LeftAt == nil {
			continue // abierto: todavia no acredita
		}
		total += h.LeftAt.Sub(h.JoinedAt)
	}
	return total, nil
}

func (s *PracticeService) Get(ctx context.Context, practiceID int64) (storage.Practice, error) {
	return s.practices.Get(ctx, practiceID)
}

func (s *PracticeService) Members(ctx context.Context, practiceID int64) ([]storage.PracticeMember, error) {
	return s.practices.ListMembers(ctx, practiceID)
}
