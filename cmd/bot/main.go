package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"

	discordrouter "github.com/jose-valero/team-scrim-bot/internal/adapters/discord"
	"github.com/jose-valero/team-scrim-bot/internal/app/service"
	"github.com/jose-valero/team-scrim-bot/internal/infra/config"
	"github.com/jose-valero/team-scrim-bot/internal/infra/storage"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	_ = godotenv.Load()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := config.Load()

	// DB
	db, err := storage.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := storage.Migrate(db); err != nil {
		log.Fatal("migrate:", err)
	}
	log.Println("✅ DB lista y migrada")

	// Repos
	timerRepo := storage.NewTimerRepo(db)
	teamRepo := storage.NewTeamRepo(db)
	scrimRepo := storage.NewScrimRepo(db)
	gamedayRepo := storage.NewGamedayRepo(db)
	practiceRepo := storage.NewPracticeRepo(db)
	settingsRepo := storage.NewSettingsRepo(db)

	// Discord session (antes del notifier, que la necesita)
	auth := cfg.DiscordToken
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(auth)), "bot ") {
		auth = "Bot " + strings.TrimSpace(auth)
	}
	s, err := discordgo.New(auth)
	if err != nil {
		log.Fatal(err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates
	if err := s.Open(); err != nil {
		log.Fatal(err)
	}
	defer s.Close()
	log.Printf("✅ Conectado como %s (%s)", s.State.User.Username, s.State.User.ID)

	// Dispatcher + services
	sink := discordrouter.NewNotifier(s, cfg.AnnounceChannelID, gamedayRepo)
	timerSvc := service.NewTimerService(timerRepo)
	scrimSvc := service.NewScrimService(scrimRepo, teamRepo, settingsRepo, timerSvc, sink)
	gamedaySvc := service.NewGamedayService(gamedayRepo, teamRepo, settingsRepo, timerSvc, sink)
	practiceSvc := service.NewPracticeService(practiceRepo, teamRepo, sink)
	settingsSvc := service.NewSettingsService(settingsRepo)

	// los handlers se cuelgan antes de arrancar el loop: el catch-up del
	// arranque ya los necesita
	scrimSvc.Register(timerSvc)
	gamedaySvc.Register(timerSvc)

	ctx, stopTimers := context.WithCancel(context.Background())
	defer stopTimers()
	go timerSvc.Run(ctx)
	log.Println("✅ dispatcher de timers corriendo")

	// Router
	r := discordrouter.NewRouter(
		s,
		cfg.DiscordGuild,
		teamRepo,
		scrimSvc,
		gamedaySvc,
		practiceSvc,
		settingsSvc,
	)
	if err := r.Register(); err != nil {
		log.Fatalf("registrando comandos: %v", err)
	}
	r.Handlers()
	log.Printf("✅ comandos registrados en guild %s", cfg.DiscordGuild)

	// Esperar señal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-stop
}
