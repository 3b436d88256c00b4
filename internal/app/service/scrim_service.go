package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jose-valero/team-scrim-bot/internal/domain"
	"github.com/jose-valero/team-scrim-bot/internal/infra/storage"
)

// ScrimService maneja la negociacion: el equipo home propone, el away
// vota. Quorum = per_team votos away distintos. El "confirm anyways" del
// lado away fuerza la confirmacion con su propio umbral (mas chico pero
// nunca menor a force_confirm_min). Decline explicito o el deadline sin
// quorum cancelan y sueltan los timers.
type ScrimService struct {
	scrims   ScrimRepo
	teams    TeamRepo
	settings SettingsRepo
	timers   TimerScheduler
	sink     EventSink

	locks *keyedLocks
	now   func() time.Time
}

func NewScrimService(scrims ScrimRepo, teams TeamRepo, settings SettingsRepo, timers TimerScheduler, sink EventSink) *ScrimService {
	return &ScrimService{
		scrims:   scrims,
		teams:    teams,
		settings: settings,
		timers:   timers,
		sink:     sink,
		locks:    newKeyedLocks(),
		now:      time.Now,
	}
}

// Register cuelga los handlers de timers del scrim en el dispatcher.
func (s *ScrimService) Register(d *TimerService) {
	d.Subscribe(domain.EventScrimDeadline, func(ctx context.Context, t storage.Timer) error {
		return s.handleDeadline(ctx, t.Payload.ScrimID)
	})
	d.Subscribe(domain.EventScrimReminder, func(ctx context.Context, t storage.Timer) error {
		return s.handleReminder(ctx, t.Payload.ScrimID)
	})
	d.Subscribe(domain.EventScrimCleanup, func(ctx context.Context, t storage.Timer) error {
		return s.handleCleanup(ctx, t.Payload.ScrimID)
	})
}

// Create abre la negociacion. `when` es la hora propuesta del match y
// tambien el deadline implicito de confirmacion.
func (s *ScrimService) Create(ctx context.Context, guildID, creatorID string, homeID, awayID int64, perTeam int, when time.Time) (storage.Scrim, error) {
	if homeID == awayID {
		return storage.Scrim{}, fmt.Errorf("un equipo no puede scrimear contra si mismo")
	}
	if perTeam < 1 {
		return storage.Scrim{}, fmt.Errorf("per_team invalido: %d", perTeam)
	}
	now := s.now()
	if !when.After(now) {
		return storage.Scrim{}, domain.ErrInvalidSchedule
	}

	home, err := s.teams.Get(ctx, homeID)
	if err != nil {
		return storage.Scrim{}, fmt.Errorf("equipo home: %w", err)
	}
	away, err := s.teams.Get(ctx, awayID)
	if err != nil {
		return storage.Scrim{}, fmt.Errorf("equipo away: %w", err)
	}
	if home.GuildID != guildID || away.GuildID != guildID {
		return storage.Scrim{}, fmt.Errorf("equipos de otro guild")
	}

	sc := storage.Scrim{
		GuildID:      guildID,
		CreatorID:    creatorID,
		HomeID:       homeID,
		AwayID:       awayID,
		PerTeam:      perTeam,
		Status:       domain.ScrimPendingAway,
		HomeVoterIDs: []string{creatorID}, // el creador propone: cuenta como voto home
		ScheduledFor: when,
	}
	id, err := s.scrims.Create(ctx, sc)
	if err != nil {
		return storage.Scrim{}, err
	}
	sc.ID = id

	// deadline implicito: si a la hora propuesta sigue pendiente, expira
	tid, err := s.timers.Schedule(ctx, domain.EventScrimDeadline, domain.TimerPayload{
		GuildID: guildID, ScrimID: id,
	}, when, true)
	if err != nil {
		return storage.Scrim{}, fmt.Errorf("agendando deadline: %w", err)
	}
	sc.DeadlineTimerID = &tid
	if err := s.scrims.Save(ctx, sc); err != nil {
		return storage.Scrim{}, err
	}
	return sc, nil
}

// VoteResult le da al caller lo que necesita para el feedback
// "voto registrado, N de M" vs "scrim confirmado".
type VoteResult struct {
	Scrim     storage.Scrim
	Votes     int // votos del lado away (el que decide)
	Needed    int
	Confirmed bool
}

// CastVote registra un voto. Es idempotente: el mismo miembro votando dos
// veces no cambia la cardinalidad del set. El check de quorum y la
// transicion corren bajo el lock del scrim.
func (s *ScrimService) CastVote(ctx context.Context, scrimID int64, memberID string, side domain.ScrimSide) (VoteResult, error) {
	defer s.locks.lock(scrimID)()

	sc, err := s.scrims.Get(ctx, scrimID)
	if err != nil {
		return VoteResult{}, err
	}
	if sc.Status.VotingClosed() {
		return VoteResult{}, domain.ErrInvalidTransition
	}
	if err := s.checkEligible(ctx, sc, memberID, side); err != nil {
		return VoteResult{}, err
	}

	changed := false
	switch side {
	case domain.SideHome:
		sc.HomeVoterIDs, changed = domain.AddID(sc.HomeVoterIDs, memberID)
	case domain.SideAway:
		sc.AwayVoterIDs, changed = domain.AddID(sc.AwayVoterIDs, memberID)
	default:
		return VoteResult{}, fmt.Errorf("side desconocido %q", side)
	}

	res := VoteResult{Votes: len(sc.AwayVoterIDs), Needed: sc.PerTeam}
	if !changed {
		res.Scrim = sc
		return res, nil
	}

	// quorum: per_team votos away distintos
	if len(sc.AwayVoterIDs) >= sc.PerTeam {
		if err := s.confirm(ctx, &sc); err != nil {
			return VoteResult{}, err
		}
		s.sink.ScrimConfirmed(ctx, sc)
		res.Confirmed = true
		res.Scrim = sc
		return res, nil
	}

	if err := s.scrims.Save(ctx, sc); err != nil {
		return VoteResult{}, err
	}
	res.Scrim = sc
	return res, nil
}

// CastConfirmAnyways es el override del lado away: con
// max(force_confirm_min, ceil(per_team/2)) votos fuerza la confirmacion
// aunque no haya quorum normal.
func (s *ScrimService) CastConfirmAnyways(ctx context.Context, scrimID int64, memberID string) (VoteResult, error) {
	defer s.locks.lock(scrimID)()

	sc, err := s.scrims.Get(ctx, scrimID)
	if err != nil {
		return VoteResult{}, err
	}
	if sc.Status.VotingClosed() {
		return VoteResult{}, domain.ErrInvalidTransition
	}
	if err := s.checkEligible(ctx, sc, memberID, domain.SideAway); err != nil {
		return VoteResult{}, err
	}

	set, err := s.settings.Get(ctx, sc.GuildID)
	if err != nil {
		return VoteResult{}, err
	}
	threshold := (sc.PerTeam + 1) / 2
	if threshold < set.ForceConfirmMin {
		threshold = set.ForceConfirmMin
	}

	var changed bool
	sc.ConfirmAnywaysIDs, changed = domain.AddID(sc.ConfirmAnywaysIDs, memberID)

	res := VoteResult{Votes: len(sc.ConfirmAnywaysIDs), Needed: threshold}
	if !changed {
		res.Scrim = sc
		return res, nil
	}

	if len(sc.ConfirmAnywaysIDs) >= threshold {
		if err := s.confirm(ctx, &sc); err != nil {
			return VoteResult{}, err
		}
		s.sink.ScrimConfirmed(ctx, sc)
		res.Confirmed = true
		res.Scrim = sc
		return res, nil
	}

	if err := s.scrims.Save(ctx, sc); err != nil {
		return VoteResult{}, err
	}
	res.Scrim = sc
	return res, nil
}

// Decline: rechazo explicito de un votante elegible del away. Vale tanto
// pendiente como confirmado (bajar un scrim ya agendado suelta reminder y
// cleanup); solo un scrim cancelado rebota.
func (s *ScrimService) Decline(ctx context.Context, scrimID int64, memberID string) error {
	defer s.locks.lock(scrimID)()

	sc, err := s.scrims.Get(ctx, scrimID)
	if err != nil {
		return err
	}
	if sc.Status == domain.ScrimCancelled {
		return domain.ErrInvalidTransition
	}
	if err := s.checkEligible(ctx, sc, memberID, domain.SideAway); err != nil {
		return err
	}
	return s.cancelScrim(ctx, sc)
}

func (s *ScrimService) Get(ctx context.Context, scrimID int64) (storage.Scrim, error) {
	return s.scrims.Get(ctx, scrimID)
}

func (s *ScrimService) List(ctx context.Context, guildID string) ([]storage.Scrim, error) {
	return s.scrims.ListByGuild(ctx, guildID)
}

// confirm agenda reminder + cleanup, persiste el estado scheduled y recien
// con eso guardado suelta el deadline. El orden importa: si el Save falla,
// el scrim sigue pendiente con su deadline vivo y puede expirar solo; los
// timers nuevos que quedaron colgados no-opean contra un scrim sin
// confirmar. Muta sc; el caller emite.
func (s *ScrimService) confirm(ctx context.Context, sc *storage.Scrim) error {
	set, err := s.settings.Get(ctx, sc.GuildID)
	if err != nil {
		return err
	}

	payload := domain.TimerPayload{GuildID: sc.GuildID, ScrimID: sc.ID}

	remindAt := sc.ScheduledFor.Add(-time.Duration(set.ReminderLeadMinutes) * time.Minute)
	if remindAt.After(s.now()) {
		tid, err := s.timers.Schedule(ctx, domain.EventScrimReminder, payload, remindAt, true)
		if err != nil {
			return fmt.Errorf("agendando reminder: %w", err)
		}
		sc.ReminderTimerID = &tid
	}

	cleanupAt := sc.ScheduledFor.Add(time.Duration(set.CleanupDelayMinutes) * time.Minute)
	tid, err := s.timers.Schedule(ctx, domain.EventScrimCleanup, payload, cleanupAt, false)
	if err != nil {
		return fmt.Errorf("agendando cleanup: %w", err)
	}
	sc.CleanupTimerID = &tid

	deadline := sc.DeadlineTimerID
	sc.Status = domain.ScrimScheduled
	sc.DeadlineTimerID = nil
	if err := s.scrims.Save(ctx, *sc); err != nil {
		return err
	}
	if deadline != nil {
		_ = s.timers.Cancel(ctx, *deadline)
	}
	return nil
}

// cancelScrim: transicion terminal + suelta todos los timers pendientes.
func (s *ScrimService) cancelScrim(ctx context.Context, sc storage.Scrim) error {
	sc.Status = domain.ScrimCancelled
	for _, tid := range []*int64{sc.DeadlineTimerID, sc.ReminderTimerID, sc.CleanupTimerID} {
		if tid != nil {
			_ = s.timers.Cancel(ctx, *tid)
		}
	}
	sc.DeadlineTimerID, sc.ReminderTimerID, sc.CleanupTimerID = nil, nil, nil
	if err := s.scrims.Save(ctx, sc); err != nil {
		return err
	}
	s.sink.ScrimExpired(ctx, sc)
	return nil
}

func (s *ScrimService) checkEligible(ctx context.Context, sc storage.Scrim, memberID string, side domain.ScrimSide) error {
	teamID := sc.HomeID
	if side == domain.SideAway {
		teamID = sc.AwayID
	}
	team, err := s.teams.Get(ctx, teamID)
	if err != nil {
		return err
	}
	if !domain.HasID(team.Eligible(), memberID) {
		return fmt.Errorf("miembro %s no puede votar por el equipo %d", memberID, teamID)
	}
	return nil
}

// ---------- timer handlers ----------

// handleDeadline: expiro la hora propuesta sin quorum -> cancelled. Si el
// scrim ya confirmo (carrera voto-vs-timer) no hace nada.
func (s *ScrimService) handleDeadline(ctx context.Context, scrimID int64) error {
	defer s.locks.lock(scrimID)()

	sc, err := s.scrims.Get(ctx, scrimID)
	if err != nil {
		if err == storage.ErrNotFound {
			return nil
		}
		return err
	}
	if sc.Status != domain.ScrimPendingAway {
		return nil
	}
	return s.cancelScrim(ctx, sc)
}

func (s *ScrimService) handleReminder(ctx context.Context, scrimID int64) error {
	sc, err := s.scrims.Get(ctx, scrimID)
	if err != nil {
		if err == storage.ErrNotFound {
			return nil
		}
		return err
	}
	if sc.Status != domain.ScrimScheduled {
		return nil
	}
	s.sink.ScrimReminderDue(ctx, sc)
	return nil
}

// handleCleanup: el match de un scrim confirmado ya paso, se desarma el
// scrim y su chat. Cualquier otro estado es un timer colgado de una
// confirmacion que no llego a persistir: no-op.
func (s *ScrimService) handleCleanup(ctx context.Context, scrimID int64) error {
	defer s.locks.lock(scrimID)()

	sc, err := s.scrims.Get(ctx, scrimID)
	if err != nil {
		if err == storage.ErrNotFound {
			return nil
		}
		return err
	}
	if sc.Status != domain.ScrimScheduled {
		return nil
	}
	s.sink.ScrimCleanupDue(ctx, sc)
	return s.scrims.Delete(ctx, scrimID)
}
