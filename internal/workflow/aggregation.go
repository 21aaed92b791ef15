package workflow

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/atelier-backend/internal/models"
)

// FunnelRow counts distinct products per status bucket for one stage name,
// across every stage record rather than only current stages.
type FunnelRow struct {
	StageName  string `json:"stage_name"`
	StageOrder int    `json:"stage_order"`
	Pending    int    `json:"pending"`
	InProgress int    `json:"in_progress"`
	Completed  int    `json:"completed"`
	Total      int    `json:"total"`
}

// Funnel returns one row per pipeline stage, in pipeline order, followed by
// any stage names outside the pipeline sorted by name. A stored atrasada
// status counts as in progress.
func Funnel(snapshots []ProductWithStage) []FunnelRow {
	type bucketKey struct {
		stage  string
		bucket models.StageStatus
	}
	seen := make(map[bucketKey]map[uuid.UUID]bool)
	products := make(map[string]map[uuid.UUID]bool)
	extra := make(map[string]int)

	for _, p := range snapshots {
		for _, st := range p.Stages {
			bucket := st.Status
			if bucket == models.StageStatusLate {
				bucket = models.StageStatusInProgress
			}
			k := bucketKey{st.StageName, bucket}
			if seen[k] == nil {
				seen[k] = make(map[uuid.UUID]bool)
			}
			seen[k][p.ID] = true
			if products[st.StageName] == nil {
				products[st.StageName] = make(map[uuid.UUID]bool)
			}
			products[st.StageName][p.ID] = true
			if !IsKnownStage(st.StageName) {
				if o, ok := extra[st.StageName]; !ok || st.StageOrder < o {
					extra[st.StageName] = st.StageOrder
				}
			}
		}
	}

	row := func(name string, order int) FunnelRow {
		return FunnelRow{
			StageName:  name,
			StageOrder: order,
			Pending:    len(seen[bucketKey{name, models.StageStatusPending}]),
			InProgress: len(seen[bucketKey{name, models.StageStatusInProgress}]),
			Completed:  len(seen[bucketKey{name, models.StageStatusCompleted}]),
			Total:      len(products[name]),
		}
	}

	rows := make([]FunnelRow, 0, len(pipeline)+len(extra))
	for i, name := range pipeline {
		rows = append(rows, row(name, i+1))
	}
	names := make([]string, 0, len(extra))
	for name := range extra {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rows = append(rows, row(name, extra[name]))
	}
	return rows
}

type DeliveryPerformance struct {
	OnTime           int     `json:"on_time"`
	Urgent           int     `json:"urgent"`
	Delayed          int     `json:"delayed"`
	CompletedOnTime  int     `json:"completed_on_time"`
	CompletedDelayed int     `json:"completed_delayed"`
	ActiveOnTime     int     `json:"active_on_time"`
	ActiveUrgent     int     `json:"active_urgent"`
	ActiveDelayed    int     `json:"active_delayed"`
	OnTimeRate       float64 `json:"on_time_rate"`
}

// Delivery buckets finished products by the final stage's actual versus
// expected date and active products by the alert classification: critical is
// delayed, urgent is urgent, anything else is on time. Products without
// stages are skipped.
func Delivery(snapshots []ProductWithStage, today time.Time) DeliveryPerformance {
	var d DeliveryPerformance
	for _, p := range snapshots {
		if !p.HasStages() {
			continue
		}
		if p.Completed() {
			final := p.Stages[len(p.Stages)-1]
			if final.ActualDate != nil && final.ExpectedDate != nil && Day(*final.ActualDate).After(Day(*final.ExpectedDate)) {
				d.CompletedDelayed++
			} else {
				d.CompletedOnTime++
			}
			continue
		}

		sev := Severity("")
		if a, ok := EvaluateProduct(p, today); ok {
			sev = a.Severity
		}
		switch sev {
		case SeverityCritical:
			d.ActiveDelayed++
		case SeverityUrgent:
			d.ActiveUrgent++
		default:
			d.ActiveOnTime++
		}
	}
	d.OnTime = d.CompletedOnTime + d.ActiveOnTime
	d.Urgent = d.ActiveUrgent
	d.Delayed = d.CompletedDelayed + d.ActiveDelayed
	if total := d.OnTime + d.Urgent + d.Delayed; total > 0 {
		d.OnTimeRate = float64(d.OnTime) / float64(total) * 100
	}
	return d
}

// ApprovalStats has no rejection source; Rejected is always zero.
type ApprovalStats struct {
	Approved int     `json:"approved"`
	Pending  int     `json:"pending"`
	Rejected int     `json:"rejected"`
	Rate     float64 `json:"approval_rate"`
}

func Approval(snapshots []ProductWithStage) ApprovalStats {
	var a ApprovalStats
	for _, p := range snapshots {
		if st := p.StageByName(StageApproved); st != nil && st.Status == models.StageStatusCompleted {
			a.Approved++
		}
		if st := p.StageByName(StageApprovalSubmission); st != nil && st.Status.IsActive() {
			a.Pending++
		}
	}
	if total := a.Approved + a.Pending + a.Rejected; total > 0 {
		a.Rate = float64(a.Approved) / float64(total) * 100
	}
	return a
}

type StylistPerformance struct {
	Stylist            string  `json:"stylist"`
	InProgress         int     `json:"in_progress"`
	CompletedThisMonth int     `json:"completed_this_month"`
	RatedStages        int     `json:"rated_stages"`
	OnTimeStages       int     `json:"on_time_stages"`
	OnTimeRate         float64 `json:"on_time_rate"`
}

// Stylists aggregates stage records by responsible party. Every name in known
// is reported even without stages. Results are ordered by completions this
// month, then work in progress, then name.
func Stylists(snapshots []ProductWithStage, known []string, today time.Time) []StylistPerformance {
	byName := make(map[string]*StylistPerformance)
	get := func(name string) *StylistPerformance {
		if sp, ok := byName[name]; ok {
			return sp
		}
		sp := &StylistPerformance{Stylist: name}
		byName[name] = sp
		return sp
	}
	for _, name := range known {
		if name = strings.TrimSpace(name); name != "" {
			get(name)
		}
	}

	day := Day(today)
	for _, p := range snapshots {
		for _, st := range p.Stages {
			if st.ResponsibleParty == nil || strings.TrimSpace(*st.ResponsibleParty) == "" {
				continue
			}
			sp := get(strings.TrimSpace(*st.ResponsibleParty))
			if st.Status == models.StageStatusInProgress {
				sp.InProgress++
			}
			if st.Status == models.StageStatusCompleted && st.ActualDate != nil {
				actual := Day(*st.ActualDate)
				if actual.Year() == day.Year() && actual.Month() == day.Month() {
					sp.CompletedThisMonth++
				}
			}
			if st.ActualDate != nil && st.ExpectedDate != nil {
				sp.RatedStages++
				if !Day(*st.ActualDate).After(Day(*st.ExpectedDate)) {
					sp.OnTimeStages++
				}
			}
		}
	}

	out := make([]StylistPerformance, 0, len(byName))
	for _, sp := range byName {
		if sp.RatedStages > 0 {
			sp.OnTimeRate = float64(sp.OnTimeStages) / float64(sp.RatedStages) * 100
		}
		out = append(out, *sp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CompletedThisMonth != out[j].CompletedThisMonth {
			return out[i].CompletedThisMonth > out[j].CompletedThisMonth
		}
		if out[i].InProgress != out[j].InProgress {
			return out[i].InProgress > out[j].InProgress
		}
		return out[i].Stylist < out[j].Stylist
	})
	return out
}

type ClientRanking struct {
	ClientID    uuid.UUID `json:"client_id"`
	Name        string    `json:"name"`
	Collections int       `json:"collections"`
}

// TopClientsLimit is the size of the top clients list.
const TopClientsLimit = 5

// TopClients ranks clients by collection count descending, name ascending.
func TopClients(clients []models.Client, collections []models.Collection, limit int) []ClientRanking {
	counts := make(map[uuid.UUID]int, len(clients))
	for _, c := range collections {
		if c.ClientID != nil {
			counts[*c.ClientID]++
		}
	}
	out := make([]ClientRanking, 0, len(clients))
	for _, c := range clients {
		out = append(out, ClientRanking{ClientID: c.ID, Name: c.Name, Collections: counts[c.ID]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Collections != out[j].Collections {
			return out[i].Collections > out[j].Collections
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Stats is the headline counter block of the production dashboard.
type Stats struct {
	TotalProducts     int                     `json:"total_products"`
	ActiveProducts    int                     `json:"active_products"`
	CompletedProducts int                     `json:"completed_products"`
	WithoutStages     int                     `json:"without_stages"`
	Overdue           int                     `json:"overdue"`
	Urgent            int                     `json:"urgent"`
	Warning           int                     `json:"warning"`
	ByPriority        map[models.Priority]int `json:"by_priority"`
	ByStage           map[string]int          `json:"by_stage"`
}

func DashboardStats(snapshots []ProductWithStage, today time.Time) Stats {
	s := Stats{
		TotalProducts: len(snapshots),
		ByPriority:    make(map[models.Priority]int),
		ByStage:       make(map[string]int),
	}
	for _, p := range snapshots {
		s.ByPriority[p.Priority]++
		switch {
		case !p.HasStages():
			s.WithoutStages++
			continue
		case p.Completed():
			s.CompletedProducts++
		default:
			s.ActiveProducts++
			s.ByStage[p.CurrentStage.StageName]++
		}
		if a, ok := EvaluateProduct(p, today); ok {
			switch a.Severity {
			case SeverityCritical:
				s.Overdue++
			case SeverityUrgent:
				s.Urgent++
			case SeverityWarning:
				s.Warning++
			}
		}
	}
	return s
}

// BoardColumn is one Kanban column: products whose current stage is StageName.
type BoardColumn struct {
	StageName  string             `json:"stage_name"`
	StageOrder int                `json:"stage_order"`
	Products   []ProductWithStage `json:"products"`
}

// Board groups products by current stage in pipeline order. Finished products
// sit in the last column; products without stages are left out.
func Board(snapshots []ProductWithStage) []BoardColumn {
	cols := make([]BoardColumn, len(pipeline))
	index := make(map[string]int, len(pipeline))
	for i, name := range pipeline {
		cols[i] = BoardColumn{StageName: name, StageOrder: i + 1, Products: []ProductWithStage{}}
		index[name] = i
	}
	for _, p := range snapshots {
		if !p.HasStages() {
			continue
		}
		if i, ok := index[p.CurrentStage.StageName]; ok {
			cols[i].Products = append(cols[i].Products, p)
		}
	}
	return cols
}
