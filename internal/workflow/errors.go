package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigurationMissing is returned when a stage has no StageConfig row.
	ErrConfigurationMissing = errors.New("stage configuration missing")
	// ErrNoNextStage is returned when advancing past the final pipeline stage.
	ErrNoNextStage = errors.New("no next stage")
	// ErrInvalidSelector is returned when a recalculation request names zero or several targets.
	ErrInvalidSelector = errors.New("exactly one of product_id, collection_id or recalculate_all is required")
	// ErrUnknownStage is returned for a stage name outside the pipeline.
	ErrUnknownStage = errors.New("unknown stage name")
	// ErrStageNotFound is returned when a product has no stage record for the requested stage.
	ErrStageNotFound = errors.New("stage not found")
	// ErrNoStages is returned when a mutation targets a product without a pipeline.
	ErrNoStages = errors.New("product has no production stages")
	// ErrPipelineExists is returned when initializing a product that already has stages.
	ErrPipelineExists = errors.New("production pipeline already exists")
	// ErrInvalidStatus is returned for a status outside pendente/em_andamento/concluida/atrasada.
	ErrInvalidStatus = errors.New("invalid stage status")
	// ErrConcurrentModification is returned when another writer changed the product's stages first.
	ErrConcurrentModification = errors.New("product stages modified concurrently")
)

// ConfigurationMissingError names the stage whose configuration is absent.
type ConfigurationMissingError struct {
	StageName string
}

func (e *ConfigurationMissingError) Error() string {
	return fmt.Sprintf("%s: %q", ErrConfigurationMissing, e.StageName)
}

func (e *ConfigurationMissingError) Unwrap() error {
	return ErrConfigurationMissing
}

// UnknownStageError carries the rejected stage name.
type UnknownStageError struct {
	StageName string
}

func (e *UnknownStageError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownStage, e.StageName)
}

func (e *UnknownStageError) Unwrap() error {
	return ErrUnknownStage
}
