package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jose-valero/team-scrim-bot/internal/infra/storage"
)

// Notifier renderiza los eventos del core a mensajes de discord. Es el
// sink del dispatcher: todo lo que dispara un timer sale por aca.
type Notifier struct {
	s          *discordgo.Session
	announceID string // canal de anuncios del guild
	buckets    *storage.GamedayRepo
}

func NewNotifier(s *discordgo.Session, announceChannelID string, buckets *storage.GamedayRepo) *Notifier {
	return &Notifier{s: s, announceID: announceChannelID, buckets: buckets}
}

// scrimChannel: el chat propio del scrim si existe, si no el de anuncios.
func (n *Notifier) scrimChannel(sc storage.Scrim) string {
	if sc.ScrimChatID != nil && *sc.ScrimChatID != "" {
		return *sc.ScrimChatID
	}
	return n.announceID
}

func (n *Notifier) ScrimConfirmed(_ context.Context, sc storage.Scrim) {
	SendChannel(n.s, n.scrimChannel(sc), fmt.Sprintf(
		"🎉 Scrim `%d` **confirmado** para %s.\nVotaron: %s", sc.ID, fmtWhen(sc.ScheduledFor), mentions(sc.AwayVoterIDs)))
}

func (n *Notifier) ScrimReminderDue(_ context.Context, sc storage.Scrim) {
	SendChannel(n.s, n.scrimChannel(sc), fmt.Sprintf(
		"⏰ El scrim `%d` arranca %s. %s %s", sc.ID, fmtWhen(sc.ScheduledFor),
		mentions(sc.HomeVoterIDs), mentions(sc.AwayVoterIDs)))
}

func (n *Notifier) ScrimExpired(_ context.Context, sc storage.Scrim) {
	SendChannel(n.s, n.scrimChannel(sc), fmt.Sprintf(
		"❌ El scrim `%d` se cancelo: no llegaron los votos antes de la hora propuesta.", sc.ID))
}

func (n *Notifier) ScrimCleanupDue(_ context.Context, sc storage.Scrim) {
	// el registro se borra despues de este aviso; el canal del scrim (si
	// existe) se desarma a mano
	SendChannel(n.s, n.scrimChannel(sc), fmt.Sprintf("🧹 Scrim `%d` archivado, gracias por jugar.", sc.ID))
}

func (n *Notifier) GamedayVotingOpened(_ context.Context, g storage.Gameday) {
	SendChannel(n.s, n.announceID, fmt.Sprintf(
		"🗳️ Abrio la votacion del gameday `%d` (%s).\nMarca tu asistencia con `/gameday attend gameday:%d attending:true`. Cierra %s.",
		g.ID, fmtWhen(g.StartsAt), g.ID, fmtWhen(g.VotingEndsAt)))
}

func (n *Notifier) GamedayVotingClosed(_ context.Context, g storage.Gameday, attending int) {
	SendChannel(n.s, n.announceID, fmt.Sprintf(
		"🔒 Cerro la votacion del gameday `%d`: %d anotados para %s.", g.ID, attending, fmtWhen(g.StartsAt)))
}

func (n *Notifier) GamedayStarting(_ context.Context, g storage.Gameday) {
	SendChannel(n.s, n.announceID, fmt.Sprintf("🚨 Arranca el gameday `%d`! A los servers.", g.ID))
}

func (n *Notifier) SubFindingOpened(ctx context.Context, g storage.Gameday, sf storage.GamedaySubFinding) {
	ch := n.announceID
	if b, err := n.buckets.GetBucket(ctx, g.BucketID); err == nil && b.SubFindingChannelID != nil {
		ch = *b.SubFindingChannelID
	}
	SendChannel(n.s, ch, fmt.Sprintf(
		"🔎 Faltan jugadores para el gameday `%d` (%s).\nSi podes cubrir, anotate con `/gameday sub gameday:%d` antes de %s.",
		g.ID, fmtWhen(g.StartsAt), g.ID, fmtWhen(sf.EndsAt)))
}

func (n *Notifier) SubFindingClosed(ctx context.Context, g storage.Gameday, sf storage.GamedaySubFinding) {
	ch := n.announceID
	if b, err := n.buckets.GetBucket(ctx, g.BucketID); err == nil && b.SubFindingChannelID != nil {
		ch = *b.SubFindingChannelID
	}
	SendChannel(n.s, ch, fmt.Sprintf("🔎 Cerro la busqueda de suplentes del gameday `%d`.", g.ID))
}

func (n *Notifier) PracticeEnded(_ context.Context, p storage.Practice) {
	dur := time.Duration(0)
	if p.EndedAt != nil {
		dur = p.EndedAt.Sub(p.StartedAt).Round(time.Minute)
	}
	SendChannel(n.s, n.announceID, fmt.Sprintf(
		"🏋️ Practica `%d` terminada: %s en total. Tiempos con `/practice time practice:%d`.", p.ID, dur, p.ID))
}
