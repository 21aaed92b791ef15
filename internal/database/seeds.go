// internal/database/seeds.go
package database

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/javajoker/atelier-backend/internal/models"
	"github.com/javajoker/atelier-backend/internal/workflow"
)

// StageSeed is one entry of the stage configuration seed file.
type StageSeed struct {
	StageName          string  `yaml:"stage_name"`
	DurationDays       int     `yaml:"duration_days"`
	PriorityMultiplier float64 `yaml:"priority_multiplier"`
}

type stageSeedFile struct {
	Stages []StageSeed `yaml:"stages"`
}

func DefaultStageSeeds() []StageSeed {
	return []StageSeed{
		{StageName: workflow.StageBriefing, DurationDays: 2, PriorityMultiplier: 0.5},
		{StageName: workflow.StageTechnicalModeling, DurationDays: 5, PriorityMultiplier: 0.8},
		{StageName: workflow.StagePrototyping, DurationDays: 7, PriorityMultiplier: 0.7},
		{StageName: workflow.StageApprovalSubmission, DurationDays: 3, PriorityMultiplier: 1.0},
		{StageName: workflow.StageApproved, DurationDays: 2, PriorityMultiplier: 1.0},
		{StageName: workflow.StageDelivered, DurationDays: 5, PriorityMultiplier: 0.6},
	}
}

// LoadStageSeeds reads a YAML seed file. An empty path yields the defaults.
func LoadStageSeeds(path string) ([]StageSeed, error) {
	if path == "" {
		return DefaultStageSeeds(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stage seed file %s: %w", path, err)
	}

	var file stageSeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse stage seed file %s: %w", path, err)
	}

	for _, s := range file.Stages {
		if !workflow.IsKnownStage(s.StageName) {
			return nil, fmt.Errorf("stage seed file %s: %w", path, &workflow.UnknownStageError{StageName: s.StageName})
		}
		if s.DurationDays < 1 || s.DurationDays > 30 {
			return nil, fmt.Errorf("stage seed file %s: duration_days for %q must be between 1 and 30", path, s.StageName)
		}
		if s.PriorityMultiplier < 0.1 || s.PriorityMultiplier > 5.0 {
			return nil, fmt.Errorf("stage seed file %s: priority_multiplier for %q must be between 0.1 and 5.0", path, s.StageName)
		}
	}
	return file.Stages, nil
}

// SeedStageConfigs inserts a StageConfig row for every seeded stage that has
// none yet. Existing rows are never overwritten.
func SeedStageConfigs(db *gorm.DB, seeds []StageSeed) error {
	created := 0
	for _, s := range seeds {
		var existing models.StageConfig
		err := db.Where("stage_name = ?", s.StageName).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up stage config %q: %w", s.StageName, err)
		}

		cfg := models.StageConfig{
			StageName:          s.StageName,
			DurationDays:       s.DurationDays,
			PriorityMultiplier: s.PriorityMultiplier,
		}
		if err := db.Create(&cfg).Error; err != nil {
			return fmt.Errorf("failed to seed stage config %q: %w", s.StageName, err)
		}
		created++
	}

	if created > 0 {
		logrus.WithField("created", created).Info("Stage configuration seeded")
	}
	return nil
}
