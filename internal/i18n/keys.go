// internal/i18n/keys.go
package i18n

const (
	LangPortuguese = "pt_BR"
	LangEnglish    = "en"
)

// Translation keys constants
const (
	// Common
	KeySuccess     = "success"
	KeyServerError = "server.error"

	// Catalogue
	KeyProductNotFound      = "product.not_found"
	KeyCollectionNotFound   = "collection.not_found"
	KeyNotificationNotFound = "notification.not_found"

	// Stages
	KeyStageNotFound          = "stage.not_found"
	KeyStageAdvanced          = "stage.advanced"
	KeyStageMoved             = "stage.moved"
	KeyStageStatusUpdated     = "stage.status_updated"
	KeyStageNoNext            = "stage.no_next"
	KeyStageUnknown           = "stage.unknown"
	KeyStageConcurrent        = "stage.concurrent_modification"
	KeyPipelineCreated        = "pipeline.created"
	KeyPipelineExists         = "pipeline.exists"
	KeyPipelineMissing        = "pipeline.missing"
	KeyStageConfigNotFound    = "stage_config.not_found"
	KeyStageConfigUpdated     = "stage_config.updated"
	KeyConfigurationMissing   = "stage_config.missing"
	KeyScheduleRecalculated   = "schedule.recalculated"
	KeyScheduleInvalidTarget  = "schedule.invalid_selector"
	KeyScheduleRecalcDegraded = "schedule.recalculation_failed"

	// Notifications
	KeyNotificationAdvancedTitle   = "notification.advanced_title"
	KeyNotificationMovedTitle      = "notification.moved_title"
	KeyNotificationUpdatedTitle    = "notification.updated_title"
	KeyNotificationPipelineTitle   = "notification.pipeline_title"
	KeyNotificationRecalcTitle     = "notification.recalculated_title"
	KeyNotificationConfigTitle     = "notification.config_title"
	KeyNotificationStageMessage    = "notification.stage_message"
	KeyNotificationStatusMessage   = "notification.status_message"
	KeyNotificationPipelineMessage = "notification.pipeline_message"
	KeyNotificationRecalcMessage   = "notification.recalculated_message"
	KeyNotificationConfigMessage   = "notification.config_message"

	// Validation
	KeyValidationRequired  = "validation.required"
	KeyValidationInvalid   = "validation.invalid"
	KeyValidationInvalidID = "validation.invalid_id"

	// Rate limiting
	KeyRateLimitExceeded = "rate_limit.exceeded"
)
