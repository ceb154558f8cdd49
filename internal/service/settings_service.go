package service

import (
	"context"

	"go.uber.org/zap"

	"martapp/kiosk/internal/binding"
	"martapp/kiosk/internal/model"
	"martapp/kiosk/internal/repository"
)

// SettingsService manages the operator-editable labels and theme.
type SettingsService interface {
	Load(ctx context.Context)
	Close()

	Labels() model.CustomLabels
	SetLabels(labels model.CustomLabels)
	Theme() model.AppTheme
	SetTheme(theme model.AppTheme) error
}

type settingsService struct {
	labels *binding.Cell[model.CustomLabels]
	theme  *binding.Cell[model.AppTheme]
}

func NewSettingsService(kv repository.KVStore, logger *zap.Logger) SettingsService {
	return &settingsService{
		labels: binding.New(kv, logger, "customLabels", model.DefaultLabels()),
		theme:  binding.New(kv, logger, "appTheme", model.ThemeDefault),
	}
}

func (s *settingsService) Load(ctx context.Context) {
	s.labels.Load(ctx)
	s.theme.Load(ctx)
}

func (s *settingsService) Close() {
	s.labels.Close()
	s.theme.Close()
}

func (s *settingsService) Labels() model.CustomLabels { return s.labels.Get() }

func (s *settingsService) SetLabels(labels model.CustomLabels) { s.labels.Set(labels) }

func (s *settingsService) Theme() model.AppTheme { return s.theme.Get() }

func (s *settingsService) SetTheme(theme model.AppTheme) error {
	if !model.ValidTheme(theme) {
		return ErrUnknownTheme
	}
	s.theme.Set(theme)
	return nil
}
