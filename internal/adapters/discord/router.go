package discord

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jose-valero/team-scrim-bot/internal/app/service"
	"github.com/jose-valero/team-scrim-bot/internal/domain"
	"github.com/jose-valero/team-scrim-bot/internal/infra/storage"
)

type Router struct {
	s       *discordgo.Session
	guildID string

	teams    *storage.TeamRepo
	scrim    *service.ScrimService
	gameday  *service.GamedayService
	practice *service.PracticeService
	settings *service.SettingsService
}

func NewRouter(
	s *discordgo.Session,
	guildID string,
	teams *storage.TeamRepo,
	scrim *service.ScrimService,
	gameday *service.GamedayService,
	practice *service.PracticeService,
	settings *service.SettingsService,
) *Router {
	return &Router{
		s:        s,
		guildID:  guildID,
		teams:    teams,
		scrim:    scrim,
		gameday:  gameday,
		practice: practice,
		settings: settings,
	}
}

func (r *Router) Register() error {
	appID := r.s.State.User.ID
	for _, cmd := range Commands {
		if _, err := r.s.ApplicationCommandCreate(appID, r.guildID, cmd); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) Handlers() {
	r.s.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		if ic.Type != discordgo.InteractionApplicationCommand {
			return
		}
		data := ic.ApplicationCommandData()
		log.Printf("slash: /%s by=%s guild=%s", data.Name, ic.Member.User.ID, ic.GuildID)

		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic in slash /%s: %v", data.Name, rec)
				ReplyEphemeral(s, ic, "⚠️ Ocurrio un error inesperado.")
			}
		}()

		// ping no toca la base: responde directo sin defer
		if data.Name == "ping" {
			_ = SendEphemeral(s, ic, "🏓 pong")
			return
		}

		_ = DeferEphemeral(s, ic)
		ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
		defer cancel()

		switch data.Name {
		case "team":
			r.handleTeam(ctx, s, ic, data)
		case "scrim":
			r.handleScrim(ctx, s, ic, data)
		case "gameday":
			r.handleGameday(ctx, s, ic, data)
		case "practice":
			r.handlePractice(ctx, s, ic, data)
		case "settings":
			r.handleSettings(ctx, s, ic, data)
		}
	})
}

// errMsg traduce los errores del core a algo mostrable.
func errMsg(err error) string {
	switch err {
	case domain.ErrInvalidTransition:
		return "⚠️ Esa accion no vale en el estado actual."
	case domain.ErrInvalidSchedule:
		return "⚠️ Esa hora ya paso."
	case domain.ErrIntervalOverlap:
		return "⚠️ Ya estabas adentro."
	case storage.ErrNotFound:
		return "⚠️ No encontre eso."
	}
	return "⚠️ " + err.Error()
}

func (r *Router) handleTeam(ctx context.Context, s *discordgo.Session, ic *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	sub := data.Options[0]
	switch sub.Name {
	case "create":
		name, _ := optStr(sub.Options, "name")
		membersRaw, _ := optStr(sub.Options, "members")
		captainsRaw, _ := optStr(sub.Options, "captains")
		subsRaw, _ := optStr(sub.Options, "subs")

		members := parseIDs(membersRaw)
		if len(members) == 0 {
			ReplyEphemeral(s, ic, "⚠️ Necesito al menos una mencion en `members`.")
			return
		}
		id, err := r.teams.Create(ctx, storage.Team{
			GuildID:    ic.GuildID,
			Name:       name,
			MemberIDs:  members,
			SubIDs:     parseIDs(subsRaw),
			CaptainIDs: parseIDs(captainsRaw),
		})
		if err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		ReplyEphemeral(s, ic, fmt.Sprintf("✅ Equipo **%s** creado (id %d) con %d jugadores.", name, id, len(members)))

	case "list":
		teams, err := r.teams.ListByGuild(ctx, ic.GuildID)
		if err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		if len(teams) == 0 {
			ReplyEphemeral(s, ic, "No hay equipos todavia. Usa `/team create`.")
			return
		}
		var b strings.Builder
		for _, t := range teams {
			fmt.Fprintf(&b, "`%d` **%s** · %d jugadores, %d subs\n", t.ID, t.Name, len(t.MemberIDs), len(t.SubIDs))
		}
		ReplyEphemeral(s, ic, b.String())

	case "roster":
		teamID, _ := optInt(sub.Options, "team")
		membersRaw, _ := optStr(sub.Options, "members")
		captainsRaw, _ := optStr(sub.Options, "captains")
		subsRaw, _ := optStr(sub.Options, "subs")

		if err := r.teams.UpdateRoster(ctx, teamID, parseIDs(membersRaw), parseIDs(subsRaw), parseIDs(captainsRaw)); err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		ReplyEphemeral(s, ic, "✅ Roster actualizado.")
	}
}

func (r *Router) handleScrim(ctx context.Context, s *discordgo.Session, ic *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	sub := data.Options[0]
	switch sub.Name {
	case "create":
		home, _ := optInt(sub.Options, "home")
		away, _ := optInt(sub.Options, "away")
		perTeam, _ := optInt(sub.Options, "per_team")
		whenRaw, _ := optStr(sub.Options, "when")
		tz, _ := optStr(sub.Options, "timezone")

		when, err := parseWhen(whenRaw, tz)
		if err != nil {
			ReplyEphemeral(s, ic, "⚠️ "+err.Error())
			return
		}
		sc, err := r.scrim.Create(ctx, ic.GuildID, ic.Member.User.ID, home, away, int(perTeam), when)
		if err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		ReplyEphemeral(s, ic, fmt.Sprintf(
			"✅ Scrim `%d` propuesto para %s.\nEl rival confirma con `/scrim vote scrim:%d` (%d votos).",
			sc.ID, fmtWhen(sc.ScheduledFor), sc.ID, sc.PerTeam))

	case "list":
		scrims, err := r.scrim.List(ctx, ic.GuildID)
		if err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		if len(scrims) == 0 {
			ReplyEphemeral(s, ic, "No hay scrims. Proponga uno con `/scrim create`.")
			return
		}
		var b strings.Builder
		for _, sc := range scrims {
			fmt.Fprintf(&b, "`%d` · %s · %s · votos %d/%d\n",
				sc.ID, sc.Status, fmtWhen(sc.ScheduledFor), len(sc.AwayVoterIDs), sc.PerTeam)
		}
		ReplyEphemeral(s, ic, b.String())

	case "vote":
		scrimID, _ := optInt(sub.Options, "scrim")
		side := domain.SideAway
		if v, ok := optStr(sub.Options, "side"); ok && v == "home" {
			side = domain.SideHome
		}
		res, err := r.scrim.CastVote(ctx, scrimID, ic.Member.User.ID, side)
		if err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		if res.Confirmed {
			ReplyEphemeral(s, ic, fmt.Sprintf("🎉 Scrim `%d` **confirmado** para %s.", res.Scrim.ID, fmtWhen(res.Scrim.ScheduledFor)))
			return
		}
		ReplyEphemeral(s, ic, fmt.Sprintf("🗳️ Voto registrado: %d de %d.", res.Votes, res.Needed))

	case "confirm_anyways":
		scrimID, _ := optInt(sub.Options, "scrim")
		res, err := r.scrim.CastConfirmAnyways(ctx, scrimID, ic.Member.User.ID)
		if err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		if res.Confirmed {
			ReplyEphemeral(s, ic, fmt.Sprintf("🎉 Scrim `%d` confirmado igual, para %s.", res.Scrim.ID, fmtWhen(res.Scrim.ScheduledFor)))
			return
		}
		ReplyEphemeral(s, ic, fmt.Sprintf("🗳️ Anotado: %d de %d para confirmar igual.", res.Votes, res.Needed))

	case "decline":
		scrimID, _ := optInt(sub.Options, "scrim")
		if err := r.scrim.Decline(ctx, scrimID, ic.Member.User.ID); err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		ReplyEphemeral(s, ic, fmt.Sprintf("❌ Scrim `%d` rechazado.", scrimID))

	case "show":
		scrimID, _ := optInt(sub.Options, "scrim")
		sc, err := r.scrim.Get(ctx, scrimID)
		if err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		ReplyEphemeral(s, ic, fmt.Sprintf(
			"Scrim `%d` · **%s**\nHora: %s\nVotos rival: %d de %d",
			sc.ID, sc.Status, fmtWhen(sc.ScheduledFor), len(sc.AwayVoterIDs), sc.PerTeam))
	}
}

func (r *Router) handleGameday(ctx context.Context, s *discordgo.Session, ic *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	sub := data.Options[0]
	switch sub.Name {
	case "setup":
		teamID, _ := optInt(sub.Options, "team")
		perTeam, _ := optInt(sub.Options, "per_team")
		weekdayRaw, _ := optStr(sub.Options, "weekday")
		hour, _ := optInt(sub.Options, "hour")
		minute, _ := optInt(sub.Options, "minute")
		tz, _ := optStr(sub.Options, "timezone")
		autoSubs, _ := optBool(sub.Options, "auto_subs")
		subChannel, hasSubCh := optChannel(sub.Options, "sub_channel")

		wd, err := parseWeekday(weekdayRaw)
		if err != nil {
			ReplyEphemeral(s, ic, "⚠️ "+err.Error())
			return
		}
		if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
			ReplyEphemeral(s, ic, "⚠️ Hora fuera de rango.")
			return
		}
		var subCh *string
		if hasSubCh {
			subCh = &subChannel
		}
		b, created, err := r.gameday.CreateBucket(ctx, ic.GuildID, teamID, int(perTeam),
			[]service.WeekdayTime{{Weekday: wd, Hour: int(hour), Minute: int(minute)}}, autoSubs, subCh, tz)
		if err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		g, err := r.gameday.Get(ctx, created[0])
		if err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		ReplyEphemeral(s, ic, fmt.Sprintf(
			"✅ Horario creado (bucket `%d`). Primer gameday: `%d`, %s.\nVotacion: %s a %s.",
			b.ID, g.ID, fmtWhen(g.StartsAt), fmtWhen(g.VotingStartsAt), fmtWhen(g.VotingEndsAt)))

	case "config":
		bucketID, _ := optInt(sub.Options, "bucket")
		var perTeam *int
		if v, ok := optInt(sub.Options, "per_team"); ok {
			n := int(v)
			perTeam = &n
		}
		var autoSubs *bool
		if v, ok := optBool(sub.Options, "auto_subs"); ok {
			autoSubs = &v
		}
		var subCh *string
		if v, ok := optChannel(sub.Options, "sub_channel"); ok {
			subCh = &v
		}
		b, err := r.gameday.ConfigureBucket(ctx, bucketID, perTeam, autoSubs, subCh)
		if err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		ReplyEphemeral(s, ic, fmt.Sprintf(
			"✅ Horario `%d` actualizado: %d jugadores, auto-subs %v.", b.ID, b.PerTeam, b.AutomaticSubFinding))

	case "attend":
		gamedayID, _ := optInt(sub.Options, "gameday")
		attending, _ := optBool(sub.Options, "attending")
		reasonRaw, hasReason := optStr(sub.Options, "reason")
		var reason *string
		if hasReason && reasonRaw != "" {
			reason = &reasonRaw
		}
		if err := r.gameday.CastAttendance(ctx, gamedayID, ic.Member.User.ID, attending, reason); err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		if attending {
			ReplyEphemeral(s, ic, "✅ Anotado, nos vemos ahi.")
		} else {
			ReplyEphemeral(s, ic, "👌 Anotado como ausente.")
		}

	case "sub":
		gamedayID, _ := optInt(sub.Options, "gameday")
		if err := r.gameday.VolunteerSub(ctx, gamedayID, ic.Member.User.ID); err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		ReplyEphemeral(s, ic, "🙌 Adentro como suplente, gracias!")

	case "score":
		gamedayID, _ := optInt(sub.Options, "gameday")
		text, _ := optStr(sub.Options, "text")
		if err := r.gameday.ReportScore(ctx, gamedayID, text, ic.Member.User.ID); err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		ReplyEphemeral(s, ic, "📊 Resultado anotado: "+text)

	case "image":
		gamedayID, _ := optInt(sub.Options, "gameday")
		url, _ := optStr(sub.Options, "url")
		if err := r.gameday.AttachImage(ctx, gamedayID, url, ic.Member.User.ID); err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		ReplyEphemeral(s, ic, "🖼️ Captura guardada.")

	case "complete":
		gamedayID, _ := optInt(sub.Options, "gameday")
		var won *bool
		if v, ok := optBool(sub.Options, "won"); ok {
			won = &v
		}
		if err := r.gameday.Complete(ctx, gamedayID, won); err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		ReplyEphemeral(s, ic, fmt.Sprintf("🏁 Gameday `%d` cerrado. El proximo ya quedo agendado.", gamedayID))

	case "cancel":
		gamedayID, _ := optInt(sub.Options, "gameday")
		if err := r.gameday.Cancel(ctx, gamedayID); err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		ReplyEphemeral(s, ic, fmt.Sprintf("❌ Gameday `%d` cancelado.", gamedayID))

	case "show":
		gamedayID, _ := optInt(sub.Options, "gameday")
		g, err := r.gameday.Get(ctx, gamedayID)
		if err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		members, err := r.gameday.Members(ctx, gamedayID)
		if err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		var going, out []string
		for _, m := range members {
			if m.Attending {
				tag := mention(m.MemberID)
				if m.IsTemporarySub {
					tag += " (sub)"
				}
				going = append(going, tag)
			} else {
				out = append(out, mention(m.MemberID))
			}
		}
		msg := fmt.Sprintf("Gameday `%d` · **%s**\nArranca: %s\n✅ Van (%d): %s",
			g.ID, g.Status, fmtWhen(g.StartsAt), len(going), strings.Join(going, " "))
		if len(out) > 0 {
			msg += "\n❌ No van: " + strings.Join(out, " ")
		}
		ReplyEphemeral(s, ic, msg)
	}
}

func (r *Router) handlePractice(ctx context.Context, s *discordgo.Session, ic *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	sub := data.Options[0]
	switch sub.Name {
	case "start":
		teamID, _ := optInt(sub.Options, "team")
		channel, hasCh := optChannel(sub.Options, "channel")
		if !hasCh {
			channel = ic.ChannelID
		}
		p, err := r.practice.Start(ctx, ic.GuildID, teamID, channel, ic.Member.User.ID)
		if err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		ReplyEphemeral(s, ic, fmt.Sprintf("🏋️ Practica `%d` abierta. Entren con `/practice join practice:%d`.", p.ID, p.ID))

	case "join":
		practiceID, _ := optInt(sub.Options, "practice")
		if err := r.practice.Join(ctx, practiceID, ic.Member.User.ID); err != nil {
			if err == domain.ErrIntervalOverlap {
				ReplyEphemeral(s, ic, "👀 Ya estabas adentro.")
				return
			}
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		ReplyEphemeral(s, ic, "✅ Adentro, el reloj corre.")

	case "leave":
		practiceID, _ := optInt(sub.Options, "practice")
		if err := r.practice.Leave(ctx, practiceID, ic.Member.User.ID); err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		p, err := r.practice.Get(ctx, practiceID)
		if err == nil && p.Status == domain.PracticeCompleted {
			ReplyEphemeral(s, ic, "👋 Listo. Eras el ultimo: la practica quedo cerrada.")
			return
		}
		ReplyEphemeral(s, ic, "👋 Anotado, tu tiempo quedo acreditado.")

	case "absent":
		practiceID, _ := optInt(sub.Options, "practice")
		reasonRaw, hasReason := optStr(sub.Options, "reason")
		var reason *string
		if hasReason && reasonRaw != "" {
			reason = &reasonRaw
		}
		if err := r.practice.MarkAbsent(ctx, practiceID, ic.Member.User.ID, reason); err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		ReplyEphemeral(s, ic, "👌 Avisado.")

	case "show":
		practiceID, _ := optInt(sub.Options, "practice")
		p, err := r.practice.Get(ctx, practiceID)
		if err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		members, err := r.practice.Members(ctx, practiceID)
		if err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		var in, out []string
		for _, m := range members {
			if m.Attending {
				in = append(in, mention(m.MemberID))
			} else {
				out = append(out, mention(m.MemberID))
			}
		}
		msg := fmt.Sprintf("Practica `%d` · **%s** · desde %s\n✅ Presentes: %s",
			p.ID, p.Status, fmtWhen(p.StartedAt), strings.Join(in, " "))
		if len(out) > 0 {
			msg += "\n❌ Avisaron: " + strings.Join(out, " ")
		}
		ReplyEphemeral(s, ic, msg)

	case "time":
		practiceID, _ := optInt(sub.Options, "practice")
		memberID, hasMember := optUser(sub.Options, "member")
		if !hasMember {
			memberID = ic.Member.User.ID
		}
		total, err := r.practice.MemberTotal(ctx, practiceID, memberID)
		if err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		ReplyEphemeral(s, ic, fmt.Sprintf("⏱️ %s lleva **%s** en la practica `%d`.",
			mention(memberID), total.Round(time.Second), practiceID))
	}
}

func (r *Router) handleSettings(ctx context.Context, s *discordgo.Session, ic *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	sub := data.Options[0]
	switch sub.Name {
	case "show":
		set, err := r.settings.Get(ctx, ic.GuildID)
		if err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		ReplyEphemeral(s, ic, fmt.Sprintf(
			"⚙️ Configuracion:\n· confirm-anyways minimo: %d\n· reminder: %d min antes\n· cleanup: %d min despues\n· sub finding: hasta %d hs",
			set.ForceConfirmMin, set.ReminderLeadMinutes, set.CleanupDelayMinutes, set.SubFindingMaxHours))

	case "set":
		var patch storage.GuildSettingsUpdate
		for _, opt := range sub.Options {
			v := int(opt.IntValue())
			switch opt.Name {
			case "force_confirm_min":
				patch.ForceConfirmMin = &v
			case "reminder_lead_minutes":
				patch.ReminderLeadMinutes = &v
			case "cleanup_delay_minutes":
				patch.CleanupDelayMinutes = &v
			case "sub_finding_max_hours":
				patch.SubFindingMaxHours = &v
			}
		}
		set, err := r.settings.Update(ctx, ic.GuildID, patch)
		if err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		ReplyEphemeral(s, ic, fmt.Sprintf(
			"✅ Configuracion actualizada.\n· confirm-anyways minimo: %d\n· reminder: %d min antes\n· cleanup: %d min despues\n· sub finding: hasta %d hs",
			set.ForceConfirmMin, set.ReminderLeadMinutes, set.CleanupDelayMinutes, set.SubFindingMaxHours))
	}
}
