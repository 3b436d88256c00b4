package config

import (
	"log"
	"os"
)

type Config struct {
	DatabaseURL       string
	DiscordToken      string
	DiscordGuild      string
	AnnounceChannelID string // canal de anuncios del bot (opcional)
}

func Load() Config {
	get := func(k string, req bool) string {
		v := os.Getenv(k)
		if v == "" && req {
			log.Fatalf("faltante env %s", k)
		}
		return v
	}

	return Config{
		DatabaseURL:       get("DATABASE_URL", true),
		DiscordToken:      get("DISCORD_BOT_TOKEN", true),
		DiscordGuild:      get("DISCORD_GUILD_ID", true),
		AnnounceChannelID: get("ANNOUNCE_CHANNEL_ID", false),
	}
}
