package service

import (
	"context"
	"sync"
	"time"

	"github.com/jose-valero/team-scrim-bot/internal/domain"
	"github.com/jose-valero/team-scrim-bot/internal/infra/storage"
)

// fakes en memoria para los ports; mismo contrato que los repos de
// postgres pero sin DB.

type fakeTimerRepo struct {
	mu     sync.Mutex
	nextID int64
	timers map[int64]*storage.Timer
}

func newFakeTimerRepo() *fakeTimerRepo {
	return &fakeTimerRepo{timers: make(map[int64]*storage.Timer)}
}

func (f *fakeTimerRepo) Create(_ context.Context, t storage.Timer) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t.ID = f.nextID
	f.timers[t.ID] = &t
	return t.ID, nil
}

func (f *fakeTimerRepo) Cancel(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.timers[id]; ok && !t.Dispatched {
		delete(f.timers, id)
	}
	return nil
}

func (f *fakeTimerRepo) MarkDispatched(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.timers[id]
	if !ok || t.Dispatched {
		return false, nil
	}
	t.Dispatched = true
	return true, nil
}

func (f *fakeTimerRepo) DueBefore(_ context.Context, at time.Time) ([]storage.Timer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []storage.Timer
	for _, t := range f.timers {
		if !t.Dispatched && !t.ExpiresAt.After(at) {
			out = append(out, *t)
		}
	}
	// mismo orden que el repo real: expiracion asc, empates por id
	for i := range out {
		for j := i + 1; j < len(out); j++ {
			if out[j].ExpiresAt.Before(out[i].ExpiresAt) ||
				(out[j].ExpiresAt.Equal(out[i].ExpiresAt) && out[j].ID < out[i].ID) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (f *fakeTimerRepo) NextPrecise(_ context.Context) (storage.Timer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var best *storage.Timer
	for _, t := range f.timers {
		if t.Dispatched || !t.Precise {
			continue
		}
		if best == nil || t.ExpiresAt.Before(best.ExpiresAt) {
			best = t
		}
	}
	if best == nil {
		return storage.Timer{}, storage.ErrNotFound
	}
	return *best, nil
}

func (f *fakeTimerRepo) get(id int64) (storage.Timer, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.timers[id]
	if !ok {
		return storage.Timer{}, false
	}
	return *t, true
}

func (f *fakeTimerRepo) pending() []storage.Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []storage.Timer
	for _, t := range f.timers {
		if !t.Dispatched {
			out = append(out, *t)
		}
	}
	return out
}

type fakeTeamRepo struct {
	mu    sync.Mutex
	teams map[int64]storage.Team
}

func newFakeTeamRepo(teams ...storage.Team) *fakeTeamRepo {
	f := &fakeTeamRepo{teams: make(map[int64]storage.Team)}
	for _, t := range teams {
		f.teams[t.ID] = t
	}
	return f
}

func (f *fakeTeamRepo) Get(_ context.Context, id int64) (storage.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.teams[id]
	if !ok {
		return storage.Team{}, storage.ErrNotFound
	}
	return t, nil
}

type fakeScrimRepo struct {
	mu      sync.Mutex
	nextID  int64
	scrims  map[int64]storage.Scrim
	saveErr error // si esta seteado, Save falla con esto
}

func newFakeScrimRepo() *fakeScrimRepo {
	return &fakeScrimRepo{scrims: make(map[int64]storage.Scrim)}
}

func (f *fakeScrimRepo) Create(_ context.Context, s storage.Scrim) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	s.ID = f.nextID
	f.scrims[s.ID] = s
	return s.ID, nil
}

func (f *fakeScrimRepo) Get(_ context.Context, id int64) (storage.Scrim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.scrims[id]
	if !ok {
		return storage.Scrim{}, storage.ErrNotFound
	}
	return s, nil
}

func (f *fakeScrimRepo) Save(_ context.Context, s storage.Scrim) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.scrims[s.ID] = s
	return nil
}

func (f *fakeScrimRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.scrims, id)
	return nil
}

func (f *fakeScrimRepo) ListByGuild(_ context.Context, guildID string) ([]storage.Scrim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []storage.Scrim
	for _, s := range f.scrims {
		if s.GuildID == guildID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeSettingsRepo struct {
	settings storage.GuildSettings
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{settings: storage.GuildSettings{
		ForceConfirmMin:     2,
		ReminderLeadMinutes: 30,
		CleanupDelayMinutes: 300,
		SubFindingMaxHours:  5,
	}}
}

func (f *fakeSettingsRepo) Get(_ context.Context, guildID string) (storage.GuildSettings, error) {
	s := f.settings
	s.GuildID = guildID
	return s, nil
}

func (f *fakeSettingsRepo) Update(_ context.Context, guildID string, u storage.GuildSettingsUpdate) (storage.GuildSettings, error) {
	if u.ForceConfirmMin != nil {
		f.settings.ForceConfirmMin = *u.ForceConfirmMin
	}
	if u.ReminderLeadMinutes != nil {
		f.settings.ReminderLeadMinutes = *u.ReminderLeadMinutes
	}
	if u.CleanupDelayMinutes != nil {
		f.settings.CleanupDelayMinutes = *u.CleanupDelayMinutes
	}
	if u.SubFindingMaxHours != nil {
		f.settings.SubFindingMaxHours = *u.SubFindingMaxHours
	}
	s := f.settings
	s.GuildID = guildID
	return s, nil
}

type fakeGamedayRepo struct {
	mu       sync.Mutex
	nextID   int64
	buckets  map[int64]storage.GamedayBucket
	times    map[int64]storage.GamedayTime
	gamedays map[int64]storage.Gameday
	members  map[int64][]storage.GamedayMember
	reports  []storage.GamedayScoreReport
	images   []storage.GamedayImage
	subs     map[int64]storage.GamedaySubFinding // por gameday id
}

func newFakeGamedayRepo() *fakeGamedayRepo {
	return &fakeGamedayRepo{
		buckets:  make(map[int64]storage.GamedayBucket),
		times:    make(map[int64]storage.GamedayTime),
		gamedays: make(map[int64]storage.Gameday),
		members:  make(map[int64][]storage.GamedayMember),
		subs:     make(map[int64]storage.GamedaySubFinding),
	}
}

func (f *fakeGamedayRepo) id() int64 { f.nextID++; return f.nextID }

func (f *fakeGamedayRepo) CreateBucket(_ context.Context, b storage.GamedayBucket) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b.ID = f.id()
	f.buckets[b.ID] = b
	return b.ID, nil
}

func (f *fakeGamedayRepo) GetBucket(_ context.Context, id int64) (storage.GamedayBucket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.buckets[id]
	if !ok {
		return storage.GamedayBucket{}, storage.ErrNotFound
	}
	return b, nil
}

func (f *fakeGamedayRepo) UpdateBucket(_ context.Context, id int64, perTeam *int, autoSub *bool, channelID *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.buckets[id]
	if !ok {
		return storage.ErrNotFound
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
	f.buckets[id] = b
	return nil
}

func (f *fakeGamedayRepo) AddTime(_ context.Context, t storage.GamedayTime) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = f.id()
	f.times[t.ID] = t
	return t.ID, nil
}

func (f *fakeGamedayRepo) GetTime(_ context.Context, id int64) (storage.GamedayTime, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.times[id]
	if !ok {
		return storage.GamedayTime{}, storage.ErrNotFound
	}
	return t, nil
}

func (f *fakeGamedayRepo) Create(_ context.Context, g storage.Gameday) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g.ID = f.id()
	f.gamedays[g.ID] = g
	return g.ID, nil
}

func (f *fakeGamedayRepo) Get(_ context.Context, id int64) (storage.Gameday, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.gamedays[id]
	if !ok {
		return storage.Gameday{}, storage.ErrNotFound
	}
	return g, nil
}

func (f *fakeGamedayRepo) Save(_ context.Context, g storage.Gameday) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gamedays[g.ID] = g
	return nil
}

func (f *fakeGamedayRepo) UpsertMember(_ context.Context, m storage.GamedayMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ms := f.members[m.GamedayID]
	for i, old := range ms {
		if old.MemberID == m.MemberID {
			m.ID = old.ID
			ms[i] = m
			return nil
		}
	}
	m.ID = f.id()
	f.members[m.GamedayID] = append(ms, m)
	return nil
}

func (f *fakeGamedayRepo) ListMembers(_ context.Context, gamedayID int64) ([]storage.GamedayMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]storage.GamedayMember(nil), f.members[gamedayID]...), nil
}

func (f *fakeGamedayRepo) AddScoreReport(_ context.Context, s storage.GamedayScoreReport) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.ID = f.id()
	f.reports = append(f.reports, s)
	return s.ID, nil
}

func (f *fakeGamedayRepo) AddImage(_ context.Context, img storage.GamedayImage) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	img.ID = f.id()
	f.images = append(f.images, img)
	return img.ID, nil
}

func (f *fakeGamedayRepo) CreateSubFinding(_ context.Context, sf storage.GamedaySubFinding) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sf.ID = f.id()
	f.subs[sf.GamedayID] = sf
	return sf.ID, nil
}

func (f *fakeGamedayRepo) GetSubFinding(_ context.Context, gamedayID int64) (storage.GamedaySubFinding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sf, ok := f.subs[gamedayID]
	if !ok {
		return storage.GamedaySubFinding{}, storage.ErrNotFound
	}
	return sf, nil
}

func (f *fakeGamedayRepo) SaveSubFinding(_ context.Context, sf storage.GamedaySubFinding) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs[sf.GamedayID] = sf
	return nil
}

type fakePracticeRepo struct {
	mu        sync.Mutex
	nextID    int64
	practices map[int64]storage.Practice
	members   map[int64][]storage.PracticeMember
	intervals []*storage.PracticeMemberHistory
}

func newFakePracticeRepo() *fakePracticeRepo {
	return &fakePracticeRepo{
		practices: make(map[int64]storage.Practice),
		members:   make(map[int64][]storage.PracticeMember),
	}
}

func (f *fakePracticeRepo) Create(_ context.Context, p storage.Practice) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = f.nextID
	f.practices[p.ID] = p
	return p.ID, nil
}

func (f *fakePracticeRepo) Get(_ context.Context, id int64) (storage.Practice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.practices[id]
	if !ok {
		return storage.Practice{}, storage.ErrNotFound
	}
	return p, nil
}

func (f *fakePracticeRepo) End(_ context.Context, id int64, endedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.practices[id]
	p.EndedAt = &endedAt
	p.Status = domain.PracticeCompleted
	f.practices[id] = p
	return nil
}

func (f *fakePracticeRepo) UpsertMember(_ context.Context, m storage.PracticeMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ms := f.members[m.PracticeID]
	for i, old := range ms {
		if old.MemberID == m.MemberID {
			m.ID = old.ID
			ms[i] = m
			return nil
		}
	}
	f.nextID++
	m.ID = f.nextID
	f.members[m.PracticeID] = append(ms, m)
	return nil
}

func (f *fakePracticeRepo) ListMembers(_ context.Context, practiceID int64) ([]storage.PracticeMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]storage.PracticeMember(nil), f.members[practiceID]...), nil
}

func (f *fakePracticeRepo) OpenInterval(_ context.Context, practiceID int64, memberID string) (storage.PracticeMemberHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, h := range f.intervals {
		if h.PracticeID == practiceID && h.MemberID == memberID && h.LeftAt == nil {
			return *h, nil
		}
	}
	return storage.PracticeMemberHistory{}, storage.ErrNotFound
}

func (f *fakePracticeRepo) OpenIntervalCount(_ context.Context, practiceID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, h := range f.intervals {
		if h.PracticeID == practiceID && h.LeftAt == nil {
			n++
		}
	}
	return n, nil
}

func (f *fakePracticeRepo) AddInterval(_ context.Context, h storage.PracticeMemberHistory) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	h.ID = f.nextID
	f.intervals = append(f.intervals, &h)
	return h.ID, nil
}

func (f *fakePracticeRepo) CloseInterval(_ context.Context, id int64, leftAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, h := range f.intervals {
		if h.ID == id && h.LeftAt == nil {
			t := leftAt
			h.LeftAt = &t
		}
	}
	return nil
}

func (f *fakePracticeRepo) CloseOpenIntervals(_ context.Context, practiceID int64, leftAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, h := range f.intervals {
		if h.PracticeID == practiceID && h.LeftAt == nil {
			t := leftAt
			h.LeftAt = &t
		}
	}
	return nil
}

func (f *fakePracticeRepo) ListIntervals(_ context.Context, practiceID int64, memberID string) ([]storage.PracticeMemberHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []storage.PracticeMemberHistory
	for _, h := range f.intervals {
		if h.PracticeID == practiceID && h.MemberID == memberID {
			out = append(out, *h)
		}
	}
	return out, nil
}

// fakeSink acumula los eventos emitidos para los asserts.
type fakeSink struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeSink) record(ev string) {
	f.mu.Lock()
	f.events = append(f.events, ev)
	f.mu.Unlock()
}

func (f *fakeSink) all() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

func (f *fakeSink) count(ev string) int {
	n := 0
	for _, e := range f.all() {
		if e == ev {
			n++
		}
	}
	return n
}

func (f *fakeSink) ScrimConfirmed(context.Context, storage.Scrim)   { f.record("scrim_confirmed") }
func (f *fakeSink) ScrimReminderDue(context.Context, storage.Scrim) { f.record("scrim_reminder") }
func (f *fakeSink) ScrimExpired(context.Context, storage.Scrim)     { f.record("scrim_expired") }
func (f *fakeSink) ScrimCleanupDue(context.Context, storage.Scrim)  { f.record("scrim_cleanup") }
func (f *fakeSink) GamedayVotingOpened(context.Context, storage.Gameday) {
	f.record("voting_opened")
}
func (f *fakeSink) GamedayVotingClosed(context.Context, storage.Gameday, int) {
	f.record("voting_closed")
}
func (f *fakeSink) GamedayStarting(context.Context, storage.Gameday) { f.record("gameday_starting") }
func (f *fakeSink) SubFindingOpened(context.Context, storage.Gameday, storage.GamedaySubFinding) {
	f.record("sub_finding_opened")
}
func (f *fakeSink) SubFindingClosed(context.Context, storage.Gameday, storage.GamedaySubFinding) {
	f.record("sub_finding_closed")
}
func (f *fakeSink) PracticeEnded(context.Context, storage.Practice) { f.record("practice_ended") }
