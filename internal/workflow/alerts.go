package workflow

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/atelier-backend/internal/models"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityUrgent   Severity = "urgent"
	SeverityWarning  Severity = "warning"
)

// UrgentAlert is derived on every evaluation pass and never stored.
type UrgentAlert struct {
	ProductID      uuid.UUID          `json:"product_id"`
	ProductName    string             `json:"product_name"`
	ProductCode    string             `json:"product_code"`
	Priority       models.Priority    `json:"priority"`
	CollectionName string             `json:"collection_name"`
	ClientName     string             `json:"client_name"`
	StageID        uuid.UUID          `json:"stage_id"`
	StageName      string             `json:"stage_name"`
	StageStatus    models.StageStatus `json:"stage_status"`
	ExpectedDate   time.Time          `json:"expected_date"`
	DaysRemaining  int                `json:"days_remaining"`
	Severity       Severity           `json:"severity"`
	IsOverdue      bool               `json:"is_overdue"`
}

// IsStageOverdue is true when the stage has an expected date strictly before
// today (date-only) and is not concluida.
func IsStageOverdue(stage *models.ProductionStage, today time.Time) bool {
	if stage == nil || stage.ExpectedDate == nil {
		return false
	}
	if stage.Status == models.StageStatusCompleted {
		return false
	}
	return Day(*stage.ExpectedDate).Before(Day(today))
}

// IsOverdue evaluates the product's current stage.
func IsOverdue(p ProductWithStage, today time.Time) bool {
	return IsStageOverdue(p.CurrentStage, today)
}

// DaysRemaining returns the signed day count until the stage's expected date.
// ok is false when the stage has no expected date.
func DaysRemaining(stage *models.ProductionStage, today time.Time) (days int, ok bool) {
	if stage == nil || stage.ExpectedDate == nil {
		return 0, false
	}
	return DaysBetween(today, *stage.ExpectedDate), true
}

// Classify maps days remaining onto the alert bands. ok is false past three days.
func Classify(daysRemaining int) (Severity, bool) {
	switch {
	case daysRemaining < 0:
		return SeverityCritical, true
	case daysRemaining <= 1:
		return SeverityUrgent, true
	case daysRemaining <= 3:
		return SeverityWarning, true
	}
	return "", false
}

// EvaluateProduct classifies a single product. ok is false when no alert applies.
func EvaluateProduct(p ProductWithStage, today time.Time) (UrgentAlert, bool) {
	st := p.CurrentStage
	if st == nil || st.Status == models.StageStatusCompleted {
		return UrgentAlert{}, false
	}
	days, ok := DaysRemaining(st, today)
	if !ok {
		return UrgentAlert{}, false
	}
	sev, ok := Classify(days)
	if !ok {
		return UrgentAlert{}, false
	}
	return UrgentAlert{
		ProductID:      p.ID,
		ProductName:    p.Name,
		ProductCode:    p.Code,
		Priority:       p.Priority,
		CollectionName: p.CollectionName,
		ClientName:     p.ClientName,
		StageID:        st.ID,
		StageName:      st.StageName,
		StageStatus:    st.Status,
		ExpectedDate:   Day(*st.ExpectedDate),
		DaysRemaining:  days,
		Severity:       sev,
		IsOverdue:      IsStageOverdue(st, today),
	}, true
}

// EvaluateAlerts returns the alert feed sorted by days remaining, most overdue first.
func EvaluateAlerts(snapshots []ProductWithStage, today time.Time) []UrgentAlert {
	alerts := make([]UrgentAlert, 0)
	for _, p := range snapshots {
		if a, ok := EvaluateProduct(p, today); ok {
			alerts = append(alerts, a)
		}
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].DaysRemaining != alerts[j].DaysRemaining {
			return alerts[i].DaysRemaining < alerts[j].DaysRemaining
		}
		return alerts[i].ProductCode < alerts[j].ProductCode
	})
	return alerts
}
