// Package journal keeps the append-only log of user interactions used by
// the reporting views.
package journal

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"martapp/kiosk/internal/binding"
	"martapp/kiosk/internal/model"
	"martapp/kiosk/internal/repository"
)

const storeKey = "appAnalytics"

// KeyCount is one aggregation bucket. Ordering in a ranked result is by
// count descending with ties resolved to the first-encountered key.
type KeyCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Journal records interaction events through a persistent cell and serves
// pure read-side aggregations. Entries are never deleted or compacted.
type Journal struct {
	cell *binding.Cell[model.AppAnalytics]
	now  func() time.Time
}

// New creates the journal over the key-value store.
func New(store repository.KVStore, logger *zap.Logger) *Journal {
	return &Journal{
		cell: binding.New(store, logger, storeKey, model.AppAnalytics{}),
		now:  time.Now,
	}
}

// Load adopts previously recorded events.
func (j *Journal) Load(ctx context.Context) { j.cell.Load(ctx) }

// Close flushes pending appends.
func (j *Journal) Close() { j.cell.Close() }

// Record appends one event stamped with the current wall clock.
func (j *Journal) Record(t model.InteractionType, key string) {
	event := model.InteractionEvent{
		Type:      t,
		Key:       key,
		Timestamp: j.now().UnixMilli(),
	}
	j.cell.Update(func(a model.AppAnalytics) model.AppAnalytics {
		events := make([]model.InteractionEvent, 0, len(a.Interactions)+1)
		events = append(events, a.Interactions...)
		events = append(events, event)
		return model.AppAnalytics{Interactions: events}
	})
}

// Events returns the full log in insertion order.
func (j *Journal) Events() []model.InteractionEvent {
	return j.cell.Get().Interactions
}

// Aggregate counts events of type t recorded at or after since (unix
// milliseconds; zero means all time).
func (j *Journal) Aggregate(t model.InteractionType, since int64) map[string]int {
	counts := make(map[string]int)
	for _, e := range j.cell.Get().Interactions {
		if e.Type != t || e.Timestamp < since {
			continue
		}
		counts[e.Key]++
	}
	return counts
}

// Ranked returns the aggregation for type t sorted by count descending.
// Keys with equal counts keep their first-encountered order.
func (j *Journal) Ranked(t model.InteractionType, since int64) []KeyCount {
	var order []string
	counts := make(map[string]int)
	for _, e := range j.cell.Get().Interactions {
		if e.Type != t || e.Timestamp < since {
			continue
		}
		if _, seen := counts[e.Key]; !seen {
			order = append(order, e.Key)
		}
		counts[e.Key]++
	}

	ranked := make([]KeyCount, 0, len(order))
	for _, key := range order {
		ranked = append(ranked, KeyCount{Key: key, Count: counts[key]})
	}
	// Stable sort keeps equal-count keys in first-encounter order.
	sort.SliceStable(ranked, func(i, k int) bool {
		return ranked[i].Count > ranked[k].Count
	})
	return ranked
}
