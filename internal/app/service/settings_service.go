package service

import (
	"context"

	"github.com/jose-valero/team-scrim-bot/internal/infra/storage"
)

// SettingsService expone los umbrales configurables por guild (cuantos
// votos, offsets de reminder, etc: nada de eso va hardcodeado).
type SettingsService struct {
	repo SettingsRepo
}

func NewSettingsService(r SettingsRepo) *SettingsService { return &SettingsService{repo: r} }

func (s *SettingsService) Get(ctx context.Context, guildID string) (storage.GuildSettings, error) {
	return s.repo.Get(ctx, guildID)
}

func (s *SettingsService) Update(ctx context.Context, guildID string, u storage.GuildSettingsUpdate) (storage.GuildSettings, error) {
	return s.repo.Update(ctx, guildID, u)
}
