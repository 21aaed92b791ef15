package workflow

import (
	"math"
	"time"

	"github.com/javajoker/atelier-backend/internal/models"
)

// ConfigSet is a read-only view of stage configuration keyed by stage name.
type ConfigSet struct {
	byName map[string]models.StageConfig
}

// NewConfigSet copies configs into a ConfigSet. Later rows win on duplicate names.
func NewConfigSet(configs []models.StageConfig) ConfigSet {
	m := make(map[string]models.StageConfig, len(configs))
	for _, c := range configs {
		m[c.StageName] = c
	}
	return ConfigSet{byName: m}
}

func (c ConfigSet) Get(stageName string) (models.StageConfig, bool) {
	cfg, ok := c.byName[stageName]
	return cfg, ok
}

func (c ConfigSet) Len() int { return len(c.byName) }

// List returns configs in pipeline order, unknown stage names last.
func (c ConfigSet) List() []models.StageConfig {
	out := make([]models.StageConfig, 0, len(c.byName))
	seen := make(map[string]bool, len(c.byName))
	for _, name := range pipeline {
		if cfg, ok := c.byName[name]; ok {
			out = append(out, cfg)
			seen[name] = true
		}
	}
	for name, cfg := range c.byName {
		if !seen[name] {
			out = append(out, cfg)
		}
	}
	return out
}

// With returns a copy of c with cfg replacing the row for cfg.StageName.
func (c ConfigSet) With(cfg models.StageConfig) ConfigSet {
	m := make(map[string]models.StageConfig, len(c.byName)+1)
	for k, v := range c.byName {
		m[k] = v
	}
	m[cfg.StageName] = cfg
	return ConfigSet{byName: m}
}

// Scheduler computes expected completion dates.
type Scheduler struct {
	Counting DayCounting
}

// OffsetDays is round(duration_days × multiplier). The multiplier only applies
// to alta and urgente products.
func OffsetDays(cfg models.StageConfig, priority models.Priority) int {
	multiplier := 1.0
	if priority.Amplifies() {
		multiplier = cfg.PriorityMultiplier
	}
	n := int(math.Round(float64(cfg.DurationDays) * multiplier))
	if n < 0 {
		return 0
	}
	return n
}

// ExpectedDate schedules one stage from base.
func (s Scheduler) ExpectedDate(configs ConfigSet, stageName string, base time.Time, priority models.Priority) (time.Time, error) {
	cfg, ok := configs.Get(stageName)
	if !ok {
		return time.Time{}, &ConfigurationMissingError{StageName: stageName}
	}
	return s.Counting.AddDays(base, OffsetDays(cfg, priority)), nil
}

// Plan recomputes expected dates for every stage that is not concluida and
// returns the stages sorted by order with the new dates applied. Completed
// stages keep their dates. Each stage is seeded from the previous stage's
// actual date, else its expected date; the first stage, or one whose
// predecessor carries no date, is seeded from today. Nothing is returned on
// error so callers never persist half a schedule.
func (s Scheduler) Plan(stages []models.ProductionStage, configs ConfigSet, priority models.Priority, today time.Time) ([]models.ProductionStage, error) {
	sorted := SortStages(stages)
	for i := range sorted {
		st := &sorted[i]
		if st.Status == models.StageStatusCompleted {
			continue
		}

		base := Day(today)
		if i > 0 {
			prev := sorted[i-1]
			switch {
			case prev.ActualDate != nil:
				base = Day(*prev.ActualDate)
			case prev.ExpectedDate != nil:
				base = Day(*prev.ExpectedDate)
			}
		}

		expected, err := s.ExpectedDate(configs, st.StageName, base, priority)
		if err != nil {
			return nil, err
		}
		st.ExpectedDate = &expected
	}
	return sorted, nil
}
