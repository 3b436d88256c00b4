package service

import (
	"context"
	"testing"
	"time"

	"github.com/jose-valero/team-scrim-bot/internal/domain"
	"github.com/jose-valero/team-scrim-bot/internal/infra/storage"
)

func gamedayFixture(t *testing.T) (*GamedayService, *fakeGamedayRepo, *fakeTimerRepo, *fakeSink, *time.Time) {
	t.Helper()
	team := storage.Team{
		ID: 1, GuildID: "g1", Name: "furia",
		MemberIDs: []string{"m1", "m2", "m3", "m4", "m5", "m6"},
		SubIDs:    []string{"s1", "s2"},
	}
	repo := newFakeGamedayRepo()
	timers := newFakeTimerRepo()
	sink := &fakeSink{}
	dispatcher := NewTimerService(timers)
	svc := NewGamedayService(repo, newFakeTeamRepo(team), newFakeSettingsRepo(), dispatcher, sink)

	clock := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC) // martes
	svc.now = func() time.Time { return clock }
	dispatcher.now = svc.now
	return svc, repo, timers, sink, &clock
}

func createBucket(t *testing.T, svc *GamedayService) (storage.GamedayBucket, int64) {
	t.Helper()
	ch := "sub-channel"
	b, created, err := svc.CreateBucket(context.Background(), "g1", 1, 5,
		[]WeekdayTime{{Weekday: time.Saturday, Hour: 20}}, true, &ch, "UTC")
	if err != nil {
		t.Fatal(err)
	}
	if len(created) != 1 {
		t.Fatalf("ocurrencias creadas = %d", len(created))
	}
	return b, created[0]
}

func TestCreateBucketMaterializesFirstOccurrence(t *testing.T) {
	svc, repo, timers, _, clock := gamedayFixture(t)
	_, gid := createBucket(t, svc)

	g, err := repo.Get(context.Background(), gid)
	if err != nil {
		t.Fatal(err)
	}
	if g.Status != domain.GamedayPending {
		t.Fatalf("status = %s", g.Status)
	}
	if g.StartsAt.Weekday() != time.Saturday || !g.StartsAt.After(*clock) {
		t.Fatalf("starts_at = %v", g.StartsAt)
	}
	if g.VotingStartsAt.After(g.VotingEndsAt) || g.VotingEndsAt.After(g.StartsAt) {
		t.Fatalf("ventana desordenada: [%v, %v] vs %v", g.VotingStartsAt, g.VotingEndsAt, g.StartsAt)
	}
	if g.VotingOpenTimerID == nil || g.VotingCloseTimerID == nil || g.StartTimerID == nil {
		t.Fatal("faltan los tres timers de frontera")
	}

	pending := timers.pending()
	if len(pending) != 3 {
		t.Fatalf("timers pendientes = %d", len(pending))
	}
	for _, tm := range pending {
		if tm.EventType == domain.EventGamedayStart && !tm.Precise {
			t.Fatal("el arranque va con timer preciso")
		}
		if tm.EventType != domain.EventGamedayStart && tm.Precise {
			t.Fatalf("%s tolera el batch del minuto", tm.EventType)
		}
	}
}

func TestCreateBucketValidation(t *testing.T) {
	svc, _, _, _, _ := gamedayFixture(t)
	ctx := context.Background()
	entries := []WeekdayTime{{Weekday: time.Saturday, Hour: 20}}

	if _, _, err := svc.CreateBucket(ctx, "g1", 1, 0, entries, false, nil, "UTC"); err == nil {
		t.Fatal("per_team cero")
	}
	if _, _, err := svc.CreateBucket(ctx, "g1", 1, 5, nil, false, nil, "UTC"); err == nil {
		t.Fatal("bucket sin horarios")
	}
	if _, _, err := svc.CreateBucket(ctx, "g1", 1, 5, entries, false, nil, "Marte/Olympus"); err == nil {
		t.Fatal("timezone invalida")
	}
}

func TestConfigureBucketPatchesOnlyWhatCame(t *testing.T) {
	svc, _, _, _, _ := gamedayFixture(t)
	ctx := context.Background()
	b, _ := createBucket(t, svc)

	per := 4
	got, err := svc.ConfigureBucket(ctx, b.ID, &per, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.PerTeam != 4 || !got.AutomaticSubFinding || got.SubFindingChannelID == nil {
		t.Fatalf("bucket = %+v", got)
	}

	bad := 0
	if _, err := svc.ConfigureBucket(ctx, b.ID, &bad, nil, nil); err == nil {
		t.Fatal("per_team cero no vale")
	}
	if _, err := svc.ConfigureBucket(ctx, 9999, &per, nil, nil); err != storage.ErrNotFound {
		t.Fatalf("err = %v", err)
	}
}

func TestCreateGamedayRejectsBadOrdering(t *testing.T) {
	svc, _, _, _, clock := gamedayFixture(t)
	base := *clock

	_, err := svc.createGameday(context.Background(), storage.Gameday{
		GuildID: "g1", TeamID: 1,
		StartsAt:       base.Add(time.Hour),
		VotingStartsAt: base.Add(30 * time.Minute),
		VotingEndsAt:   base.Add(2 * time.Hour), // cierra despues del arranque
	})
	if err != domain.ErrOrderingViolation {
		t.Fatalf("err = %v", err)
	}
}

func TestAttendanceOnlyWhileVotingOpen(t *testing.T) {
	svc, _, _, sink, _ := gamedayFixture(t)
	ctx := context.Background()
	_, gid := createBucket(t, svc)

	// todavia pending
	if err := svc.CastAttendance(ctx, gid, "m1", true, nil); err != domain.ErrInvalidTransition {
		t.Fatalf("err = %v", err)
	}

	if err := svc.handleVotingOpen(ctx, gid); err != nil {
		t.Fatal(err)
	}
	if sink.count("voting_opened") != 1 {
		t.Fatal("falta el evento de apertura")
	}
	// re-entrega del timer: no-op
	if err := svc.handleVotingOpen(ctx, gid); err != nil {
		t.Fatal(err)
	}
	if sink.count("voting_opened") != 1 {
		t.Fatal("la apertura no se emite dos veces")
	}

	if err := svc.CastAttendance(ctx, gid, "m1", true, nil); err != nil {
		t.Fatal(err)
	}
	// un ajeno al equipo no vota
	if err := svc.CastAttendance(ctx, gid, "x9", true, nil); err == nil {
		t.Fatal("x9 no pertenece al equipo")
	}
	// cambio de opinion: upsert, no duplica
	reason := "examen"
	if err := svc.CastAttendance(ctx, gid, "m1", false, &reason); err != nil {
		t.Fatal(err)
	}
	members, _ := svc.Members(ctx, gid)
	if len(members) != 1 || members[0].Attending || members[0].Reason == nil {
		t.Fatalf("members = %+v", members)
	}
}

func voteAttendance(t *testing.T, svc *GamedayService, gid int64, ids ...string) {
	t.Helper()
	for _, id := range ids {
		if err := svc.CastAttendance(context.Background(), gid, id, true, nil); err != nil {
			t.Fatal(err)
		}
	}
}

func TestVotingCloseOpensSubFinding(t *testing.T) {
	svc, repo, _, sink, clock := gamedayFixture(t)
	base := *clock
	ctx := context.Background()
	_, gid := createBucket(t, svc)

	if err := svc.handleVotingOpen(ctx, gid); err != nil {
		t.Fatal(err)
	}
	voteAttendance(t, svc, gid, "m1", "m2", "m3", "m4") // 4 de 5

	if err := svc.handleVotingClose(ctx, gid); err != nil {
		t.Fatal(err)
	}
	g, _ := repo.Get(ctx, gid)
	if g.Status != domain.GamedayVotingClosed {
		t.Fatalf("status = %s", g.Status)
	}
	if sink.count("voting_closed") != 1 || sink.count("sub_finding_opened") != 1 {
		t.Fatalf("eventos = %v", sink.all())
	}

	sf, err := repo.GetSubFinding(ctx, gid)
	if err != nil {
		t.Fatal(err)
	}
	if !sf.Enabled || sf.Resolved || sf.CloseTimerID == nil {
		t.Fatalf("sub finding = %+v", sf)
	}
	if !sf.StartsAt.Equal(base) {
		t.Fatalf("la ventana abre ya: %v", sf.StartsAt)
	}
	// tope: min(now + sub_finding_max_hours, starts_at - 5m)
	wantEnd := base.Add(5 * time.Hour)
	if latest := g.StartsAt.Add(-5 * time.Minute); wantEnd.After(latest) {
		wantEnd = latest
	}
	if !sf.EndsAt.Equal(wantEnd) {
		t.Fatalf("ends_at = %v, want %v", sf.EndsAt, wantEnd)
	}
}

func TestVolunteerFillsRosterAndClosesEarly(t *testing.T) {
	svc, repo, _, sink, _ := gamedayFixture(t)
	ctx := context.Background()
	_, gid := createBucket(t, svc)

	svc.handleVotingOpen(ctx, gid)
	voteAttendance(t, svc, gid, "m1", "m2", "m3", "m4")
	if err := svc.handleVotingClose(ctx, gid); err != nil {
		t.Fatal(err)
	}

	if err := svc.VolunteerSub(ctx, gid, "s1"); err != nil {
		t.Fatal(err)
	}

	members, _ := svc.Members(ctx, gid)
	attending, temp := 0, 0
	for _, m := range members {
		if m.Attending {
			attending++
		}
		if m.IsTemporarySub {
			temp++
			if m.MemberID != "s1" {
				t.Fatalf("sub temporal inesperado %s", m.MemberID)
			}
		}
	}
	if attending != 5 || temp != 1 {
		t.Fatalf("attending=%d temp=%d", attending, temp)
	}

	// roster completo: la ventana se cerro antes de tiempo
	sf, _ := repo.GetSubFinding(ctx, gid)
	if !sf.Resolved || sf.CloseTimerID != nil {
		t.Fatalf("sub finding = %+v", sf)
	}
	if sink.count("sub_finding_closed") != 1 {
		t.Fatal("falta el evento de cierre")
	}

	// ventana resuelta: voluntarios tarde rebotan
	if err := svc.VolunteerSub(ctx, gid, "s2"); err != domain.ErrInvalidTransition {
		t.Fatalf("err = %v", err)
	}
}

func TestSubFindingWindowExpiresShortHanded(t *testing.T) {
	svc, repo, _, sink, _ := gamedayFixture(t)
	ctx := context.Background()
	_, gid := createBucket(t, svc)

	svc.handleVotingOpen(ctx, gid)
	voteAttendance(t, svc, gid, "m1", "m2", "m3")
	svc.handleVotingClose(ctx, gid)

	// nadie se anoto y el timer de cierre vence: se juega short-handed
	if err := svc.handleSubFindingClose(ctx, gid); err != nil {
		t.Fatal(err)
	}
	sf, _ := repo.GetSubFinding(ctx, gid)
	if !sf.Resolved {
		t.Fatal("la ventana tendria que quedar resuelta")
	}
	if sink.count("sub_finding_closed") != 1 {
		t.Fatal("falta el evento de cierre")
	}

	g, _ := repo.Get(ctx, gid)
	if g.Status != domain.GamedayVotingClosed {
		t.Fatalf("status = %s, short-handed no cancela", g.Status)
	}
	// el arranque sigue su curso normal
	if err := svc.handleStart(ctx, gid); err != nil {
		t.Fatal(err)
	}
	g, _ = repo.Get(ctx, gid)
	if g.Status != domain.GamedayInProgress {
		t.Fatalf("status = %s", g.Status)
	}
}

func TestCancelResolvesOpenSubFinding(t *testing.T) {
	svc, repo, _, sink, _ := gamedayFixture(t)
	ctx := context.Background()
	_, gid := createBucket(t, svc)

	svc.handleVotingOpen(ctx, gid)
	voteAttendance(t, svc, gid, "m1", "m2", "m3", "m4") // 4 de 5
	if err := svc.handleVotingClose(ctx, gid); err != nil {
		t.Fatal(err)
	}
	if sink.count("sub_finding_opened") != 1 {
		t.Fatal("falta la ventana de subs")
	}

	if err := svc.Cancel(ctx, gid); err != nil {
		t.Fatal(err)
	}
	sf, err := repo.GetSubFinding(ctx, gid)
	if err != nil {
		t.Fatal(err)
	}
	if !sf.Resolved || sf.CloseTimerID != nil {
		t.Fatalf("sub finding = %+v, cancelar resuelve la ventana", sf)
	}
	// sin evento de cierre: el gameday se bajo, no hay roster que anunciar
	if sink.count("sub_finding_closed") != 0 {
		t.Fatalf("eventos = %v", sink.all())
	}

	// dentro de lo que era la ventana, un voluntario ya no entra
	if err := svc.VolunteerSub(ctx, gid, "s1"); err != domain.ErrInvalidTransition {
		t.Fatalf("err = %v", err)
	}
	members, _ := svc.Members(ctx, gid)
	for _, m := range members {
		if m.IsTemporarySub {
			t.Fatalf("sub colado en un gameday cancelado: %+v", m)
		}
	}
}

func TestVotingCloseFullRosterSkipsSubFinding(t *testing.T) {
	svc, repo, _, sink, _ := gamedayFixture(t)
	ctx := context.Background()
	_, gid := createBucket(t, svc)

	svc.handleVotingOpen(ctx, gid)
	voteAttendance(t, svc, gid, "m1", "m2", "m3", "m4", "m5")
	if err := svc.handleVotingClose(ctx, gid); err != nil {
		t.Fatal(err)
	}
	if sink.count("sub_finding_opened") != 0 {
		t.Fatal("con roster completo no hay sub finding")
	}
	if _, err := repo.GetSubFinding(ctx, gid); err != storage.ErrNotFound {
		t.Fatalf("err = %v", err)
	}
}

func TestCompleteSchedulesNextOccurrence(t *testing.T) {
	svc, repo, _, _, clock := gamedayFixture(t)
	ctx := context.Background()
	_, gid := createBucket(t, svc)

	svc.handleVotingOpen(ctx, gid)
	voteAttendance(t, svc, gid, "m1", "m2", "m3", "m4", "m5")
	svc.handleVotingClose(ctx, gid)

	g0, _ := repo.Get(ctx, gid)
	*clock = g0.StartsAt // llego la hora del match
	svc.handleStart(ctx, gid)
	*clock = g0.StartsAt.Add(2 * time.Hour)

	if err := svc.ReportScore(ctx, gid, "13-7", "m1"); err != nil {
		t.Fatal(err)
	}
	if err := svc.AttachImage(ctx, gid, "https://cdn.example/score.png", "m1"); err != nil {
		t.Fatal(err)
	}

	won := true
	if err := svc.Complete(ctx, gid, &won); err != nil {
		t.Fatal(err)
	}
	g, _ := repo.Get(ctx, gid)
	if g.Status != domain.GamedayCompleted || g.EndedAt == nil || g.Won == nil || !*g.Won {
		t.Fatalf("gameday = %+v", g)
	}

	// se materializo la proxima ocurrencia del mismo horario
	if len(repo.gamedays) != 2 {
		t.Fatalf("gamedays = %d", len(repo.gamedays))
	}
	for id, next := range repo.gamedays {
		if id == gid {
			continue
		}
		if next.Status != domain.GamedayPending || !next.StartsAt.After(g.StartsAt) {
			t.Fatalf("proxima ocurrencia = %+v", next)
		}
		if next.TimeID != g.TimeID || next.BucketID != g.BucketID {
			t.Fatal("la proxima ocurrencia sale del mismo horario del bucket")
		}
	}

	// doble complete no vale
	if err := svc.Complete(ctx, gid, nil); err != domain.ErrInvalidTransition {
		t.Fatalf("err = %v", err)
	}
}

func TestScoreReportRequiresStartedGameday(t *testing.T) {
	svc, _, _, _, _ := gamedayFixture(t)
	ctx := context.Background()
	_, gid := createBucket(t, svc)

	if err := svc.ReportScore(ctx, gid, "13-7", "m1"); err != domain.ErrInvalidTransition {
		t.Fatalf("err = %v", err)
	}
}

func TestCancelReleasesTimers(t *testing.T) {
	svc, repo, timers, _, _ := gamedayFixture(t)
	ctx := context.Background()
	_, gid := createBucket(t, svc)

	if err := svc.Cancel(ctx, gid); err != nil {
		t.Fatal(err)
	}
	g, _ := repo.Get(ctx, gid)
	if g.Status != domain.GamedayCancelled {
		t.Fatalf("status = %s", g.Status)
	}
	if n := len(timers.pending()); n != 0 {
		t.Fatalf("timers pendientes = %d", n)
	}
	// cancelar dos veces no vale
	if err := svc.Cancel(ctx, gid); err != domain.ErrInvalidTransition {
		t.Fatalf("err = %v", err)
	}
	// el timer de apertura llegando tarde no revive el gameday
	if err := svc.handleVotingOpen(ctx, gid); err != nil {
		t.Fatal(err)
	}
	g, _ = repo.Get(ctx, gid)
	if g.Status != domain.GamedayCancelled {
		t.Fatalf("status = %s", g.Status)
	}
}
