// internal/tests/workflow_api_test.go
package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/javajoker/atelier-backend/internal/config"
	"github.com/javajoker/atelier-backend/internal/database/dbtest"
	"github.com/javajoker/atelier-backend/internal/i18n"
	"github.com/javajoker/atelier-backend/internal/metrics"
	"github.com/javajoker/atelier-backend/internal/models"
	"github.com/javajoker/atelier-backend/internal/router"
	"github.com/javajoker/atelier-backend/internal/services"
	"github.com/javajoker/atelier-backend/internal/workflow"
)

// Monday 2024-03-11
var fixedNow = time.Date(2024, 3, 11, 15, 0, 0, 0, time.UTC)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta json.RawMessage `json:"meta"`
}

type WorkflowAPITestSuite struct {
	suite.Suite
	db      *gorm.DB
	svc     *router.Services
	metrics *metrics.Metrics
	router  *gin.Engine
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Schedule: config.ScheduleConfig{
			DayCounting: string(workflow.CalendarDays),
			Timezone:    "UTC",
		},
		Recalculation: config.RecalculationConfig{
			BulkTimeout:     time.Minute,
			TriggerOnConfig: true,
		},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"*"}},
		I18n:    config.I18nConfig{DefaultLocale: i18n.LangEnglish},
		Metrics: config.MetricsConfig{Enabled: true},
	}
}

func (suite *WorkflowAPITestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	suite.Require().NoError(i18n.Initialize(i18n.LangEnglish))
}

func (suite *WorkflowAPITestSuite) SetupTest() {
	cfg := testConfig()
	suite.db = dbtest.New(suite.T())
	suite.metrics = metrics.New()

	clock := services.Clock{Now: func() time.Time { return fixedNow }, Location: time.UTC}
	svc, err := router.NewServices(context.Background(), suite.db, cfg, suite.metrics, clock)
	suite.Require().NoError(err)
	suite.svc = svc
	suite.router = router.Setup(svc, cfg, suite.metrics)
}

func (suite *WorkflowAPITestSuite) request(method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "en-US")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") != "" && w.Body.Len() > 0 {
		json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func (suite *WorkflowAPITestSuite) createProduct(code string, priority models.Priority) models.Product {
	p := models.Product{Name: "Produto " + code, Code: code, Priority: priority, Status: models.ProductStatusActive}
	suite.Require().NoError(suite.db.Create(&p).Error)
	return p
}

func (suite *WorkflowAPITestSuite) initPipeline(p models.Product) {
	w, env := suite.request(http.MethodPost, "/v1/products/"+p.ID.String()+"/pipeline", nil)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	suite.Require().True(env.Success)
}

func (suite *WorkflowAPITestSuite) TestHealth() {
	w, _ := suite.request(http.MethodGet, "/health", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Contains(suite.T(), w.Body.String(), "healthy")
}

func (suite *WorkflowAPITestSuite) TestPipelineLifecycle() {
	p := suite.createProduct("VST-001", models.PriorityMedium)
	suite.initPipeline(p)

	// A second initialization is a conflict
	w, env := suite.request(http.MethodPost, "/v1/products/"+p.ID.String()+"/pipeline", nil)
	assert.Equal(suite.T(), http.StatusConflict, w.Code)
	assert.Equal(suite.T(), "PIPELINE_EXISTS", env.Error.Code)

	w, env = suite.request(http.MethodPost, "/v1/products/"+p.ID.String()+"/advance", nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var advanced struct {
		Pipeline services.TransitionResult `json:"pipeline"`
	}
	suite.Require().NoError(json.Unmarshal(env.Data, &advanced))
	suite.Require().NotNil(advanced.Pipeline.CurrentStage)
	assert.Equal(suite.T(), workflow.StageTechnicalModeling, advanced.Pipeline.CurrentStage.StageName)

	w, _ = suite.request(http.MethodPost, "/v1/products/"+p.ID.String()+"/move", gin.H{"stage_name": workflow.StageDelivered})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	// The final stage has no successor
	w, env = suite.request(http.MethodPost, "/v1/products/"+p.ID.String()+"/advance", nil)
	assert.Equal(suite.T(), http.StatusConflict, w.Code)
	assert.Equal(suite.T(), "NO_NEXT_STAGE", env.Error.Code)

	w, env = suite.request(http.MethodGet, "/v1/products/"+p.ID.String()+"/stages", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var listed struct {
		Stages []models.ProductionStage `json:"stages"`
	}
	suite.Require().NoError(json.Unmarshal(env.Data, &listed))
	suite.Require().Len(listed.Stages, 6)
	for _, st := range listed.Stages[:5] {
		assert.Equal(suite.T(), models.StageStatusCompleted, st.Status, st.StageName)
	}
	assert.Equal(suite.T(), models.StageStatusInProgress, listed.Stages[5].Status)
}

func (suite *WorkflowAPITestSuite) TestMoveValidation() {
	p := suite.createProduct("VST-002", models.PriorityMedium)
	suite.initPipeline(p)

	w, env := suite.request(http.MethodPost, "/v1/products/"+p.ID.String()+"/move", gin.H{"stage_name": "Costura"})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "VALIDATION_ERROR", env.Error.Code)

	w, _ = suite.request(http.MethodPost, "/v1/products/not-a-uuid/advance", nil)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w, env = suite.request(http.MethodPost, "/v1/products/"+uuid.NewString()+"/advance", nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
	assert.Equal(suite.T(), "NOT_FOUND", env.Error.Code)
}

func (suite *WorkflowAPITestSuite) TestUpdateStageStatus() {
	p := suite.createProduct("VST-003", models.PriorityMedium)
	suite.initPipeline(p)

	stages, err := suite.svc.Lifecycle.ListStages(context.Background(), p.ID)
	suite.Require().NoError(err)

	w, env := suite.request(http.MethodPut, "/v1/stages/"+stages[1].ID.String()+"/status", gin.H{
		"status":            "atrasada",
		"responsible_party": "Bia",
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var updated struct {
		Stage models.ProductionStage `json:"stage"`
	}
	suite.Require().NoError(json.Unmarshal(env.Data, &updated))
	assert.Equal(suite.T(), models.StageStatusLate, updated.Stage.Status)
	suite.Require().NotNil(updated.Stage.ResponsibleParty)
	assert.Equal(suite.T(), "Bia", *updated.Stage.ResponsibleParty)

	w, env = suite.request(http.MethodPut, "/v1/stages/"+stages[1].ID.String()+"/status", gin.H{"status": "cancelada"})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "VALIDATION_ERROR", env.Error.Code)

	w, _ = suite.request(http.MethodPut, "/v1/stages/"+uuid.NewString()+"/status", gin.H{"status": "concluida"})
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *WorkflowAPITestSuite) TestRecalculateSelectors() {
	p := suite.createProduct("VST-004", models.PriorityHigh)
	suite.initPipeline(p)

	w, env := suite.request(http.MethodPost, "/v1/schedule/recalculate", gin.H{})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "INVALID_SELECTOR", env.Error.Code)

	w, env = suite.request(http.MethodPost, "/v1/schedule/recalculate", gin.H{
		"product_id":      p.ID,
		"recalculate_all": true,
	})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "INVALID_SELECTOR", env.Error.Code)

	w, env = suite.request(http.MethodPost, "/v1/schedule/recalculate", gin.H{"recalculate_all": true})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var result services.RecalculationResult
	suite.Require().NoError(json.Unmarshal(env.Data, &result))
	assert.Equal(suite.T(), "all", result.Selector)
	assert.Equal(suite.T(), 1, result.Recalculated)
	assert.Equal(suite.T(), 0, result.Failed)

	w, _ = suite.request(http.MethodPost, "/v1/schedule/recalculate", gin.H{"collection_id": uuid.New()})
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *WorkflowAPITestSuite) TestRecalculateConfigurationMissing() {
	p := suite.createProduct("VST-005", models.PriorityMedium)
	suite.initPipeline(p)
	suite.Require().NoError(suite.db.Model(&models.ProductionStage{}).
		Where("product_id = ? AND stage_order = ?", p.ID, 3).
		Update("stage_name", "Costura").Error)

	w, env := suite.request(http.MethodPost, "/v1/schedule/recalculate", gin.H{"product_id": p.ID})
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
	assert.Equal(suite.T(), "CONFIGURATION_MISSING", env.Error.Code)
	assert.Contains(suite.T(), env.Error.Message, "Costura")
}

func (suite *WorkflowAPITestSuite) TestStageConfigUpdate() {
	p := suite.createProduct("VST-006", models.PriorityMedium)
	suite.initPipeline(p)

	w, env := suite.request(http.MethodGet, "/v1/stage-configs", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var listed struct {
		StageConfigs []models.StageConfig `json:"stage_configs"`
	}
	suite.Require().NoError(json.Unmarshal(env.Data, &listed))
	suite.Require().Len(listed.StageConfigs, 6)
	assert.Equal(suite.T(), workflow.StageBriefing, listed.StageConfigs[0].StageName)

	w, env = suite.request(http.MethodPut, "/v1/stage-configs/"+url.PathEscape(workflow.StageBriefing), gin.H{
		"duration_days":       31,
		"priority_multiplier": 1.0,
	})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "VALIDATION_ERROR", env.Error.Code)

	w, _ = suite.request(http.MethodPut, "/v1/stage-configs/Costura", gin.H{
		"duration_days":       3,
		"priority_multiplier": 1.0,
	})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w, env = suite.request(http.MethodPut, "/v1/stage-configs/"+url.PathEscape(workflow.StageBriefing), gin.H{
		"duration_days":       4,
		"priority_multiplier": 1.0,
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated struct {
		Recalculation *services.RecalculationResult `json:"recalculation"`
	}
	suite.Require().NoError(json.Unmarshal(env.Data, &updated))
	suite.Require().NotNil(updated.Recalculation)
	assert.Equal(suite.T(), 1, updated.Recalculation.Recalculated)

	stages, err := suite.svc.Lifecycle.ListStages(context.Background(), p.ID)
	suite.Require().NoError(err)
	suite.Require().NotNil(stages[0].ExpectedDate)
	assert.True(suite.T(), time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC).Equal(workflow.Day(*stages[0].ExpectedDate)))
}

func (suite *WorkflowAPITestSuite) TestReadSurfaces() {
	late := suite.createProduct("VST-007", models.PriorityUrgent)
	suite.initPipeline(late)
	suite.Require().NoError(suite.db.Model(&models.ProductionStage{}).
		Where("product_id = ? AND stage_order = ?", late.ID, 1).
		Update("expected_date", time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)).Error)
	suite.createProduct("VST-008", models.PriorityLow)

	w, env := suite.request(http.MethodGet, "/v1/alerts", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var alerts struct {
		Alerts []workflow.UrgentAlert `json:"alerts"`
		Total  int                    `json:"total"`
	}
	suite.Require().NoError(json.Unmarshal(env.Data, &alerts))
	suite.Require().Equal(1, alerts.Total)
	assert.Equal(suite.T(), "VST-007", alerts.Alerts[0].ProductCode)
	assert.Equal(suite.T(), -2, alerts.Alerts[0].DaysRemaining)
	assert.True(suite.T(), alerts.Alerts[0].IsOverdue)

	w, env = suite.request(http.MethodGet, "/v1/snapshots?overdue=true", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var snapshots []workflow.ProductWithStage
	suite.Require().NoError(json.Unmarshal(env.Data, &snapshots))
	suite.Require().Len(snapshots, 1)
	assert.Equal(suite.T(), "VST-007", snapshots[0].Code)
	assert.Equal(suite.T(), workflow.PlaceholderCollection, snapshots[0].CollectionName)

	suite.Require().NoError(suite.db.Model(&late).Update("tags", pq.StringArray{"bordado"}).Error)
	w, env = suite.request(http.MethodGet, "/v1/snapshots?tag=Bordado", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	snapshots = nil
	suite.Require().NoError(json.Unmarshal(env.Data, &snapshots))
	suite.Require().Len(snapshots, 1)
	assert.Equal(suite.T(), []string{"bordado"}, snapshots[0].Tags)

	w, _ = suite.request(http.MethodGet, "/v1/snapshots?page=1&limit=1", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	assert.Equal(suite.T(), "2", w.Header().Get("X-Total-Count"))

	w, _ = suite.request(http.MethodGet, "/v1/snapshots?stage=Costura", nil)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w, env = suite.request(http.MethodGet, "/v1/dashboard/stats", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var stats workflow.Stats
	suite.Require().NoError(json.Unmarshal(env.Data, &stats))
	assert.Equal(suite.T(), 2, stats.TotalProducts)
	assert.Equal(suite.T(), 1, stats.WithoutStages)
	assert.Equal(suite.T(), 1, stats.Overdue)

	for _, path := range []string{"/v1/board", "/v1/dashboard/funnel", "/v1/dashboard/delivery", "/v1/dashboard/approval", "/v1/dashboard/stylists", "/v1/dashboard/top-clients", "/v1/dashboard/tv"} {
		w, env = suite.request(http.MethodGet, path, nil)
		assert.Equal(suite.T(), http.StatusOK, w.Code, path)
		assert.True(suite.T(), env.Success, path)
	}
}

func (suite *WorkflowAPITestSuite) TestNotificationsFeed() {
	p := suite.createProduct("VST-009", models.PriorityMedium)
	suite.initPipeline(p)
	suite.request(http.MethodPost, "/v1/products/"+p.ID.String()+"/advance", nil)

	w, env := suite.request(http.MethodGet, "/v1/notifications?unread=true", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var feed []models.Notification
	suite.Require().NoError(json.Unmarshal(env.Data, &feed))
	suite.Require().Len(feed, 2)

	w, _ = suite.request(http.MethodPut, "/v1/notifications/"+feed[0].ID.String()+"/read", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w, _ = suite.request(http.MethodPut, "/v1/notifications/"+uuid.NewString()+"/read", nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *WorkflowAPITestSuite) TestMetricsEndpoint() {
	suite.request(http.MethodGet, "/v1/alerts", nil)

	w, _ := suite.request(http.MethodGet, "/metrics", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Contains(suite.T(), w.Body.String(), "atelier_http_requests_total")
}

func TestWorkflowAPISuite(t *testing.T) {
	suite.Run(t, new(WorkflowAPITestSuite))
}
