// internal/services/remote_recalculator.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/atelier-backend/internal/config"
	"github.com/javajoker/atelier-backend/internal/metrics"
	"github.com/javajoker/atelier-backend/internal/resilience"
	"github.com/javajoker/atelier-backend/internal/utils"
)

// RemoteRecalculator delegates recalculation to another deployment of this
// service through POST /v1/schedule/recalculate.
type RemoteRecalculator struct {
	url     string
	client  *http.Client
	breaker *resilience.CircuitBreaker
}

type remoteEnvelope struct {
	Success bool                 `json:"success"`
	Data    *RecalculationResult `json:"data"`
	Error   *utils.APIError      `json:"error"`
}

func NewRemoteRecalculator(cfg config.RecalculationConfig, m *metrics.Metrics) *RemoteRecalculator {
	breakerCfg := resilience.DefaultCircuitBreakerConfig("schedule-recalculation")
	if cfg.BreakerFailures > 0 {
		breakerCfg.FailureThreshold = cfg.BreakerFailures
	}
	if cfg.BreakerOpenDelay > 0 {
		breakerCfg.Timeout = cfg.BreakerOpenDelay
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &RemoteRecalculator{
		url:     cfg.RemoteURL,
		client:  &http.Client{Timeout: timeout},
		breaker: resilience.NewCircuitBreaker(breakerCfg, m.SetCircuitBreakerState),
	}
}

func (r *RemoteRecalculator) Recalculate(ctx context.Context, selector RecalculationSelector) (*RecalculationResult, error) {
	if err := selector.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(selector)
	if err != nil {
		return nil, fmt.Errorf("failed to encode selector: %w", err)
	}

	var result *RecalculationResult
	err = r.breaker.Execute(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to build recalculation request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := r.client.Do(req)
		if err != nil {
			return fmt.Errorf("recalculation request failed: %w", err)
		}
		defer resp.Body.Close()

		var envelope remoteEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			return fmt.Errorf("failed to decode recalculation response (status %d): %w", resp.StatusCode, err)
		}
		if resp.StatusCode >= http.StatusBadRequest || !envelope.Success || envelope.Data == nil {
			msg := http.StatusText(resp.StatusCode)
			if envelope.Error != nil {
				msg = envelope.Error.Message
			}
			return fmt.Errorf("remote recalculation returned %d: %s", resp.StatusCode, msg)
		}

		result = envelope.Data
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"selector":     selector.Kind(),
		"recalculated": result.Recalculated,
		"failed":       result.Failed,
	}).Info("Remote schedule recalculation finished")
	return result, nil
}
