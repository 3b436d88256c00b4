package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jose-valero/team-scrim-bot/internal/domain"
	"github.com/jose-valero/team-scrim-bot/internal/infra/storage"
)

// margen minimo que tiene que quedar hasta el arranque para que valga la
// pena abrir una ventana de sub finding
const subFindingMinLead = 30 * time.Minute

// GamedayService genera las ocurrencias desde los buckets y las lleva por
// su ciclo de vida: pending -> voting_open -> voting_closed ->
// in_progress -> completed. El sub finding se evalua una sola vez, al
// cierre de votacion.
type GamedayService struct {
	gamedays GamedayRepo
	teams    TeamRepo
	settings SettingsRepo
	timers   TimerScheduler
	sink     EventSink

	locks *keyedLocks
	now   func() time.Time
}

func NewGamedayService(gamedays GamedayRepo, teams TeamRepo, settings SettingsRepo, timers TimerScheduler, sink EventSink) *GamedayService {
	return &GamedayService{
		gamedays: gamedays,
		teams:    teams,
		settings: settings,
		timers:   timers,
		sink:     sink,
		locks:    newKeyedLocks(),
		now:      time.Now,
	}
}

func (s *GamedayService) Register(d *TimerService) {
	d.Subscribe(domain.EventGamedayVotingOpen, func(ctx context.Context, t storage.Timer) error {
		return s.handleVotingOpen(ctx, t.Payload.GamedayID)
	})
	d.Subscribe(domain.EventGamedayVotingClose, func(ctx context.Context, t storage.Timer) error {
		return s.handleVotingClose(ctx, t.Payload.GamedayID)
	})
	d.Subscribe(domain.EventGamedayStart, func(ctx context.Context, t storage.Timer) error {
		return s.handleStart(ctx, t.Payload.GamedayID)
	})
	d.Subscribe(domain.EventSubFindingClose, func(ctx context.Context, t storage.Timer) error {
		return s.handleSubFindingClose(ctx, t.Payload.GamedayID)
	})
}

// WeekdayTime es una entrada del template: dia + hora local del guild.
type WeekdayTime struct {
	Weekday time.Weekday
	Hour    int
	Minute  int
}

// CreateBucket crea el template recurrente y materializa de una la primer
// ocurrencia de cada entrada.
func (s *GamedayService) CreateBucket(ctx context.Context, guildID string, teamID int64, perTeam int, entries []WeekdayTime, autoSub bool, subChannelID *string, tz string) (storage.GamedayBucket, []int64, error) {
	if perTeam < 1 {
		return storage.GamedayBucket{}, nil, fmt.Errorf("per_team invalido: %d", perTeam)
	}
	if len(entries) == 0 {
		return storage.GamedayBucket{}, nil, fmt.Errorf("bucket sin horarios")
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return storage.GamedayBucket{}, nil, fmt.Errorf("timezone %q: %w", tz, err)
	}

	team, err := s.teams.Get(ctx, teamID)
	if err != nil {
		return storage.GamedayBucket{}, nil, err
	}
	if team.GuildID != guildID {
		return storage.GamedayBucket{}, nil, fmt.Errorf("equipo de otro guild")
	}

	b := storage.GamedayBucket{
		GuildID:             guildID,
		TeamID:              teamID,
		PerTeam:             perTeam,
		AutomaticSubFinding: autoSub,
		SubFindingChannelID: subChannelID,
		Timezone:            tz,
	}
	b.ID, err = s.gamedays.CreateBucket(ctx, b)
	if err != nil {
		return storage.GamedayBucket{}, nil, err
	}

	var created []int64
	for _, e := range entries {
		gt := storage.GamedayTime{BucketID: b.ID, Weekday: e.Weekday, Hour: e.Hour, Minute: e.Minute}
		gt.ID, err = s.gamedays.AddTime(ctx, gt)
		if err != nil {
			return storage.GamedayBucket{}, nil, err
		}
		gid, err := s.scheduleNext(ctx, b, gt)
		if err != nil {
			return storage.GamedayBucket{}, nil, err
		}
		created = append(created, gid)
	}
	return b, created, nil
}

// ConfigureBucket ajusta el template. Solo afecta ocurrencias futuras; las
// ya materializadas siguen con lo que tenian.
func (s *GamedayService) ConfigureBucket(ctx context.Context, bucketID int64, perTeam *int, autoSub *bool, channelID *string) (storage.GamedayBucket, error) {
	if perTeam != nil && *perTeam < 1 {
		return storage.GamedayBucket{}, fmt.Errorf("per_team invalido: %d", *perTeam)
	}
	if err := s.gamedays.UpdateBucket(ctx, bucketID, perTeam, autoSub, channelID); err != nil {
		return storage.GamedayBucket{}, err
	}
	return s.gamedays.GetBucket(ctx, bucketID)
}

// scheduleNext materializa la proxima ocurrencia de una entrada del bucket
// y agenda sus tres timers (voting open, voting close, start).
func (s *GamedayService) scheduleNext(ctx context.Context, b storage.GamedayBucket, gt storage.GamedayTime) (int64, error) {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return 0, fmt.Errorf("timezone %q: %w", b.Timezone, err)
	}

	now := s.now()
	startsAt := nextOccurrence(now, gt.Weekday, gt.Hour, gt.Minute, loc)
	vStart, vEnd := votingWindow(now, startsAt, loc)

	return s.createGameday(ctx, storage.Gameday{
		GuildID:        b.GuildID,
		TeamID:         b.TeamID,
		BucketID:       b.ID,
		TimeID:         gt.ID,
		Status:         domain.GamedayPending,
		StartsAt:       startsAt,
		VotingStartsAt: vStart,
		VotingEndsAt:   vEnd,
	})
}

// createGameday valida el invariante de orden y agenda los timers de
// frontera. Los de votacion toleran el batch del minuto; el de arranque
// es preciso.
func (s *GamedayService) createGameday(ctx context.Context, g storage.Gameday) (int64, error) {
	if g.VotingStartsAt.After(g.VotingEndsAt) || g.VotingEndsAt.After(g.StartsAt) {
		return 0, domain.ErrOrderingViolation
	}

	id, err := s.gamedays.Create(ctx, g)
	if err != nil {
		return 0, err
	}
	g.ID = id

	payload := domain.TimerPayload{GuildID: g.GuildID, GamedayID: id}
	open, err := s.timers.Schedule(ctx, domain.EventGamedayVotingOpen, payload, g.VotingStartsAt, false)
	if err != nil {
		return 0, fmt.Errorf("agendando voting open: %w", err)
	}
	closeID, err := s.timers.Schedule(ctx, domain.EventGamedayVotingClose, payload, g.VotingEndsAt, false)
	if err != nil {
		return 0, fmt.Errorf("agendando voting close: %w", err)
	}
	start, err := s.timers.Schedule(ctx, domain.EventGamedayStart, payload, g.StartsAt, true)
	if err != nil {
		return 0, fmt.Errorf("agendando start: %w", err)
	}

	g.VotingOpenTimerID, g.VotingCloseTimerID, g.StartTimerID = &open, &closeID, &start
	return id, s.gamedays.Save(ctx, g)
}

// CastAttendance registra asistencia (o ausencia con motivo) durante la
// ventana de votacion. Fuera de voting_open es ErrInvalidTransition.
func (s *GamedayService) CastAttendance(ctx context.Context, gamedayID int64, memberID string, attending bool, reason *string) error {
	defer s.locks.lock(gamedayID)()

	g, err := s.gamedays.Get(ctx, gamedayID)
	if err != nil {
		return err
	}
	if g.Status != domain.GamedayVotingOpen {
		return domain.ErrInvalidTransition
	}

	team, err := s.teams.Get(ctx, g.TeamID)
	if err != nil {
		return err
	}
	if !domain.HasID(team.MemberIDs, memberID) && !domain.HasID(team.SubIDs, memberID) {
		return fmt.Errorf("miembro %s no pertenece al equipo %d", memberID, g.TeamID)
	}

	return s.gamedays.UpsertMember(ctx, storage.GamedayMember{
		GamedayID: gamedayID,
		MemberID:  memberID,
		Attending: attending,
		Reason:    reason,
	})
}

// VolunteerSub: un voluntario responde dentro de la ventana de sub
// finding; entra al roster marcado como sub temporal. Si con el se llega
// al tamaño requerido, la ventana se cierra antes.
func (s *GamedayService) VolunteerSub(ctx context.Context, gamedayID int64, memberID string) error {
	defer s.locks.lock(gamedayID)()

	sf, err := s.gamedays.GetSubFinding(ctx, gamedayID)
	if err != nil {
		if err == storage.ErrNotFound {
			return domain.ErrInvalidTransition
		}
		return err
	}
	now := s.now()
	if sf.Resolved || !sf.Enabled || now.Before(sf.StartsAt) || now.After(sf.EndsAt) {
		return domain.ErrInvalidTransition
	}

	g, err := s.gamedays.Get(ctx, gamedayID)
	if err != nil {
		return err
	}
	if g.Status.Terminal() {
		return domain.ErrInvalidTransition
	}
	members, err := s.gamedays.ListMembers(ctx, gamedayID)
	if err != nil {
		return err
	}
	for _, m := range members {
		if m.MemberID == memberID && m.Attending {
			return nil // ya esta adentro
		}
	}

	if err := s.gamedays.UpsertMember(ctx, storage.GamedayMember{
		GamedayID:      gamedayID,
		MemberID:       memberID,
		Attending:      true,
		IsTemporarySub: true,
	}); err != nil {
		return err
	}

	bucket, err := s.gamedays.GetBucket(ctx, g.BucketID)
	if err != nil {
		return err
	}
	attending := 1 // el que acaba de entrar
	for _, m := range members {
		if m.Attending {
			attending++
		}
	}
	if attending >= bucket.PerTeam {
		return s.closeSubFinding(ctx, g, sf)
	}
	return nil
}

// ReportScore: append-only, valido desde que el gameday arranco.
func (s *GamedayService) ReportScore(ctx context.Context, gamedayID int64, text, reportedBy string) error {
	g, err := s.gamedays.Get(ctx, gamedayID)
	if err != nil {
		return err
	}
	if g.Status != domain.GamedayInProgress && g.Status != domain.GamedayCompleted {
		return domain.ErrInvalidTransition
	}
	_, err = s.gamedays.AddScoreReport(ctx, storage.GamedayScoreReport{
		GamedayID: gamedayID, Text: text, ReportedBy: reportedBy,
	})
	return err
}

func (s *GamedayService) AttachImage(ctx context.Context, gamedayID int64, url, uploadedBy string) error {
	g, err := s.gamedays.Get(ctx, gamedayID)
	if err != nil {
		return err
	}
	if g.Status != domain.GamedayInProgress && g.Status != domain.GamedayCompleted {
		return domain.ErrInvalidTransition
	}
	_, err = s.gamedays.AddImage(ctx, storage.GamedayImage{
		GamedayID: gamedayID, URL: url, UploadedBy: uploadedBy,
	})
	return err
}

// Complete cierra el gameday y materializa la proxima ocurrencia del
// mismo horario del bucket.
func (s *GamedayService) Complete(ctx context.Context, gamedayID int64, won *bool) error {
	defer s.locks.lock(gamedayID)()

	g, err := s.gamedays.Get(ctx, gamedayID)
	if err != nil {
		return err
	}
	if g.Status != domain.GamedayInProgress {
		return domain.ErrInvalidTransition
	}
	now := s.now()
	g.Status = domain.GamedayCompleted
	g.EndedAt = &now
	g.Won = won
	if err := s.gamedays.Save(ctx, g); err != nil {
		return err
	}

	bucket, err := s.gamedays.GetBucket(ctx, g.BucketID)
	if err != nil {
		return err
	}
	gt, err := s.gamedays.GetTime(ctx, g.TimeID)
	if err != nil {
		return err
	}
	if _, err := s.scheduleNext(ctx, bucket, gt); err != nil {
		return fmt.Errorf("generando proxima ocurrencia: %w", err)
	}
	return nil
}

// Cancel baja un gameday y suelta todos sus timers (incluido el de sub
// finding si hay).
func (s *GamedayService) Cancel(ctx context.Context, gamedayID int64) error {
	defer s.locks.lock(gamedayID)()

	g, err := s.gamedays.Get(ctx, gamedayID)
	if err != nil {
		return err
	}
	if g.Status.Terminal() {
		return domain.ErrInvalidTransition
	}
	for _, tid := range []*int64{g.VotingOpenTimerID, g.VotingCloseTimerID, g.StartTimerID} {
		if tid != nil {
			_ = s.timers.Cancel(ctx, *tid)
		}
	}
	// la ventana de subs muere con el gameday; se resuelve sin evento de
	// cierre para que un voluntario tarde rebote
	if sf, err := s.gamedays.GetSubFinding(ctx, gamedayID); err == nil && !sf.Resolved {
		sf.Resolved = true
		if sf.CloseTimerID != nil {
			_ = s.timers.Cancel(ctx, *sf.CloseTimerID)
			sf.CloseTimerID = nil
		}
		if err := s.gamedays.SaveSubFinding(ctx, sf); err != nil {
			return err
		}
	}
	g.Status = domain.GamedayCancelled
	return s.gamedays.Save(ctx, g)
}

func (s *GamedayService) Get(ctx context.Context, gamedayID int64) (storage.Gameday, error) {
	return s.gamedays.Get(ctx, gamedayID)
}

func (s *GamedayService) Members(ctx context.Context, gamedayID int64) ([]storage.GamedayMember, error) {
	return s.gamedays.ListMembers(ctx, gamedayID)
}

// ---------- timer handlers ----------

func (s *GamedayService) handleVotingOpen(ctx context.Context, gamedayID int64) error {
	defer s.locks.lock(gamedayID)()

	g, err := s.gamedays.Get(ctx, gamedayID)
	if err != nil {
		if err == storage.ErrNotFound {
			return nil
		}
		return err
	}
	if g.Status != domain.GamedayPending {
		return nil // cancelado o ya abierto; carrera timer-vs-comando
	}
	g.Status = domain.GamedayVotingOpen
	if err := s.gamedays.Save(ctx, g); err != nil {
		return err
	}
	s.sink.GamedayVotingOpened(ctx, g)
	return nil
}

// handleVotingClose congela el roster y evalua el sub finding, una unica
// vez. Si falta gente y no se puede abrir ventana, el gameday sigue
// short-handed: fallback aceptado, no error.
func (s *GamedayService) handleVotingClose(ctx context.Context, gamedayID int64) error {
	defer s.locks.lock(gamedayID)()

	g, err := s.gamedays.Get(ctx, gamedayID)
	if err != nil {
		if err == storage.ErrNotFound {
			return nil
		}
		return err
	}
	if g.Status != domain.GamedayVotingOpen {
		return nil
	}
	g.Status = domain.GamedayVotingClosed
	if err := s.gamedays.Save(ctx, g); err != nil {
		return err
	}

	members, err := s.gamedays.ListMembers(ctx, gamedayID)
	if err != nil {
		return err
	}
	attending := 0
	for _, m := range members {
		if m.Attending {
			attending++
		}
	}
	s.sink.GamedayVotingClosed(ctx, g, attending)

	bucket, err := s.gamedays.GetBucket(ctx, g.BucketID)
	if err != nil {
		return err
	}
	now := s.now()
	if attending >= bucket.PerTeam ||
		!bucket.AutomaticSubFinding ||
		bucket.SubFindingChannelID == nil ||
		g.StartsAt.Sub(now) < subFindingMinLead {
		return nil
	}

	set, err := s.settings.Get(ctx, g.GuildID)
	if err != nil {
		return err
	}
	end := now.Add(time.Duration(set.SubFindingMaxHours) * time.Hour)
	if latest := g.StartsAt.Add(-5 * time.Minute); end.After(latest) {
		end = latest
	}

	sf := storage.GamedaySubFinding{
		GamedayID: gamedayID,
		Enabled:   true,
		StartsAt:  now,
		EndsAt:    end,
	}
	tid, err := s.timers.Schedule(ctx, domain.EventSubFindingClose,
		domain.TimerPayload{GuildID: g.GuildID, GamedayID: gamedayID}, end, false)
	if err != nil {
		return fmt.Errorf("agendando cierre de sub finding: %w", err)
	}
	sf.CloseTimerID = &tid
	if sf.ID, err = s.gamedays.CreateSubFinding(ctx, sf); err != nil {
		return err
	}
	s.sink.SubFindingOpened(ctx, g, sf)
	return nil
}

func (s *GamedayService) handleStart(ctx context.Context, gamedayID int64) error {
	defer s.locks.lock(gamedayID)()

	g, err := s.gamedays.Get(ctx, gamedayID)
	if err != nil {
		if err == storage.ErrNotFound {
			return nil
		}
		return err
	}
	if g.Status != domain.GamedayVotingClosed {
		return nil
	}
	g.Status = domain.GamedayInProgress
	if err := s.gamedays.Save(ctx, g); err != nil {
		return err
	}
	s.sink.GamedayStarting(ctx, g)
	return nil
}

func (s *GamedayService) handleSubFindingClose(ctx context.Context, gamedayID int64) error {
	defer s.locks.lock(gamedayID)()

	sf, err := s.gamedays.GetSubFinding(ctx, gamedayID)
	if err != nil {
		if err == storage.ErrNotFound {
			return nil
		}
		return err
	}
	if sf.Resolved {
		return nil
	}
	g, err := s.gamedays.Get(ctx, gamedayID)
	if err != nil {
		return err
	}
	return s.closeSubFinding(ctx, g, sf)
}

func (s *GamedayService) closeSubFinding(ctx context.Context, g storage.Gameday, sf storage.GamedaySubFinding) error {
	sf.Resolved = true
	if sf.CloseTimerID != nil {
		_ = s.timers.Cancel(ctx, *sf.CloseTimerID)
		sf.CloseTimerID = nil
	}
	if err := s.gamedays.SaveSubFinding(ctx, sf); err != nil {
		return err
	}
	s.sink.SubFindingClosed(ctx, g, sf)
	return nil
}
