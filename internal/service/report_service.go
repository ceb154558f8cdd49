package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"martapp/kiosk/internal/journal"
	"martapp/kiosk/internal/model"
)

// Report periods mirror the panel's range buttons.
const (
	Period24h = "24h"
	Period7d  = "7d"
	Period30d = "30d"
)

var ErrUnknownPeriod = fmt.Errorf("unknown report period")

// LabeledCount is one ranked report row with a display label resolved from
// the catalog or spot labels.
type LabeledCount struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ReportService serves interaction aggregations and AI-generated insights.
type ReportService interface {
	Interactions(metric model.InteractionType, period string) ([]LabeledCount, error)
	Insights(ctx context.Context) ([]model.Insight, error)
}

type reportService struct {
	journal  *journal.Journal
	catalog  CatalogService
	settings SettingsService
	generate GenerateFunc
	logger   *zap.Logger
	now      func() time.Time
}

func NewReportService(j *journal.Journal, catalog CatalogService, settings SettingsService, generate GenerateFunc, logger *zap.Logger) ReportService {
	return &reportService{
		journal:  j,
		catalog:  catalog,
		settings: settings,
		generate: generate,
		logger:   logger,
		now:      time.Now,
	}
}

// Interactions ranks journal keys for the metric within the period. Ties
// keep first-encountered order, so repeated reports are stable.
func (s *reportService) Interactions(metric model.InteractionType, period string) ([]LabeledCount, error) {
	if !model.ValidInteractionType(metric) {
		return nil, fmt.Errorf("unknown metric %q", metric)
	}

	var window time.Duration
	switch period {
	case Period24h:
		window = 24 * time.Hour
	case Period7d:
		window = 7 * 24 * time.Hour
	case Period30d:
		window = 30 * 24 * time.Hour
	default:
		return nil, ErrUnknownPeriod
	}
	since := s.now().Add(-window).UnixMilli()

	ranked := s.journal.Ranked(metric, since)
	out := make([]LabeledCount, 0, len(ranked))
	for _, kc := range ranked {
		out = append(out, LabeledCount{
			Key:   kc.Key,
			Label: s.label(metric, kc.Key),
			Count: kc.Count,
		})
	}
	return out, nil
}

func (s *reportService) label(metric model.InteractionType, key string) string {
	switch metric {
	case model.InteractionProducts:
		id, err := strconv.Atoi(key)
		if err != nil {
			return key
		}
		for _, p := range s.catalog.Products() {
			if p.ID == id {
				return p.Name
			}
		}
		return "ID " + key
	case model.InteractionSpots:
		labels := s.settings.Labels()
		switch key {
		case model.SpotSlot1:
			return labels.Spot1
		case model.SpotSlot2:
			return labels.Spot2
		case model.SpotSlot3:
			return labels.Spot3
		}
	}
	return key
}

const insightsPrompt = `Você é uma consultora de varejo de moda. Analise os dados de estoque abaixo e gere de 3 a 5 insights acionáveis para o gerente da loja.

Responda APENAS com JSON no formato: [{"insight": "..."}]

Dados do Estoque: %s`

// Insights asks the assistant for structured recommendations over the
// current inventory. Responses may arrive as a bare array or wrapped in an
// {"insights": [...]} envelope.
func (s *reportService) Insights(ctx context.Context) ([]model.Insight, error) {
	inventory, err := json.Marshal(model.Snapshot(s.catalog.Products()))
	if err != nil {
		return nil, err
	}

	raw, err := s.generate(ctx, fmt.Sprintf(insightsPrompt, inventory))
	if err != nil {
		return nil, err
	}

	raw = strings.TrimSpace(raw)
	var insights []model.Insight
	if err := json.Unmarshal([]byte(raw), &insights); err == nil {
		return insights, nil
	}
	var wrapped struct {
		Insights []model.Insight `json:"insights"`
	}
	if err := json.Unmarshal([]byte(raw), &wrapped); err == nil && wrapped.Insights != nil {
		return wrapped.Insights, nil
	}
	return nil, fmt.Errorf("insights response not in expected format")
}
