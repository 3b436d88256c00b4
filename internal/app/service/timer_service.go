package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jose-valero/team-scrim-bot/internal/domain"
	"github.com/jose-valero/team-scrim-bot/internal/infra/storage"
)

const (
	// tolerancia para Schedule: mas viejo que esto se rechaza, el caller
	// tiene que despachar directo en vez de agendar
	scheduleGrace = 30 * time.Second

	// los timers imprecisos se despachan en batch con este tick
	coalesceInterval = time.Minute
)

// Subscriber recibe el timer ya marcado como despachado. Si devuelve
// error se loguea y NO se reintenta (at-most-once); quien necesite retry
// re-agenda explicitamente.
type Subscriber func(ctx context.Context, t storage.Timer) error

// TimerService es el dispatcher durable: una sola instancia por proceso
// maneja todas las expiraciones. Los timers "precise" duermen hasta su
// expiracion exacta (con wake-on-insert si entra uno mas temprano); los
// imprecisos se baten con el ticker.
type TimerService struct {
	repo TimerRepo
	now  func() time.Time

	mu   sync.Mutex
	subs map[domain.EventType]Subscriber

	wake chan struct{}
}

func NewTimerService(repo TimerRepo) *TimerService {
	return &TimerService{
		repo: repo,
		now:  time.Now,
		subs: make(map[domain.EventType]Subscriber),
		wake: make(chan struct{}, 1),
	}
}

// Subscribe registra el unico handler de un event type. Llamar antes de Run.
func (s *TimerService) Subscribe(ev domain.EventType, fn Subscriber) {
	s.mu.Lock()
	s.subs[ev] = fn
	s.mu.Unlock()
}

// Schedule persiste un timer nuevo. Expiracion en el pasado (mas alla de
// la gracia) se rechaza con ErrInvalidSchedule. Un fallo de storage vuelve
// sincrono: el timer no existe y el caller se entera.
func (s *TimerService) Schedule(ctx context.Context, ev domain.EventType, p domain.TimerPayload, at time.Time, precise bool) (int64, error) {
	now := s.now()
	if at.Before(now.Add(-scheduleGrace)) {
		return 0, domain.ErrInvalidSchedule
	}

	id, err := s.repo.Create(ctx, storage.Timer{
		EventType: ev,
		Payload:   p,
		CreatedAt: now,
		ExpiresAt: at,
		Precise:   precise,
	})
	if err != nil {
		return 0, err
	}

	// despierta el loop por si este timer es mas temprano que el actual
	s.wakeup()
	return id, nil
}

// Cancel es idempotente: no-op si ya disparo o no existe.
func (s *TimerService) Cancel(ctx context.Context, id int64) error {
	return s.repo.Cancel(ctx, id)
}

func (s *TimerService) wakeup() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Run es el loop del dispatcher. Arranca con catch-up: todo lo vencido
// durante el downtime se despacha ya (una sola vez, el flag dispatched es
// la memoria). Corta con la cancelacion del ctx.
func (s *TimerService) Run(ctx context.Context) {
	tick := time.NewTicker(coalesceInterval)
	defer tick.Stop()

	for {
		s.drainDue(ctx)

		var fire <-chan time.Time
		var tm *time.Timer
		if next, ok := s.nextPreciseIn(ctx); ok {
			tm = time.NewTimer(next)
			fire = tm.C
		}

		select {
		case <-ctx.Done():
			if tm != nil {
				tm.Stop()
			}
			return
		case <-s.wake:
		case <-tick.C:
		case <-fire:
		}
		if tm != nil {
			tm.Stop()
		}
	}
}

// drainDue despacha todo lo vencido a este momento, en orden de expiracion.
func (s *TimerService) drainDue(ctx context.Context) {
	due, err := s.repo.DueBefore(ctx, s.now())
	if err != nil {
		log.Printf("timers: listando vencidos: %v", err)
		return
	}
	for _, t := range due {
		s.dispatch(ctx, t)
	}
}

// nextPreciseIn devuelve cuanto falta para el proximo timer preciso.
func (s *TimerService) nextPreciseIn(ctx context.Context) (time.Duration, bool) {
	t, err := s.repo.NextPrecise(ctx)
	if err != nil {
		if err != storage.ErrNotFound {
			log.Printf("timers: proximo preciso: %v", err)
		}
		return 0, false
	}
	d := t.ExpiresAt.Sub(s.now())
	if d < 0 {
		d = 0
	}
	return d, true
}

// dispatch es el paso atomico: CAS dispatched false->true y recien ahi se
// emite. Si el CAS pierde (reinicio a mitad, proceso gemelo) no se emite
// nada: un timer jamas dispara dos veces.
func (s *TimerService) dispatch(ctx context.Context, t storage.Timer) {
	ok, err := s.repo.MarkDispatched(ctx, t.ID)
	if err != nil {
		log.Printf("timers: marcando %d: %v", t.ID, err)
		return
	}
	if !ok {
		return
	}

	s.mu.Lock()
	sub := s.subs[t.EventType]
	s.mu.Unlock()

	if sub == nil {
		log.Printf("timers: %d tipo %q sin subscriber", t.ID, t.EventType)
		return
	}
	if err := sub(ctx, t); err != nil {
		// queda marcado dispatched igual: at-most-once sobre retry
		log.Printf("timers: subscriber %q fallo para %d: %v", t.EventType, t.ID, err)
	}
}
