package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/atelier-backend/internal/i18n"
	"github.com/javajoker/atelier-backend/internal/services"
	"github.com/javajoker/atelier-backend/internal/workflow"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	require.NoError(t, i18n.Initialize(i18n.LangEnglish))

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   []string
	}{
		{
			name:       "unknown stage names the stage",
			err:        fmt.Errorf("move: %w", &workflow.UnknownStageError{StageName: "Costura"}),
			wantStatus: http.StatusBadRequest,
			wantBody:   []string{"Unknown stage: Costura"},
		},
		{
			name:       "configuration missing",
			err:        &workflow.ConfigurationMissingError{StageName: "Prototipagem"},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   []string{"CONFIGURATION_MISSING", "Prototipagem"},
		},
		{
			name:       "no next stage",
			err:        workflow.ErrNoNextStage,
			wantStatus: http.StatusConflict,
			wantBody:   []string{"NO_NEXT_STAGE"},
		},
		{
			name:       "product not found",
			err:        services.ErrProductNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unexpected",
			err:        errors.New("disk full"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/v1/products/x/move", nil)
			c.Set("lang", i18n.LangEnglish)

			respondError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			for _, want := range tt.wantBody {
				assert.Contains(t, w.Body.String(), want)
			}
		})
	}
}
