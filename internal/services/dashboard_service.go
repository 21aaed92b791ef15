// internal/services/dashboard_service.go
package services

import (
	"context"
	"time"

	"github.com/javajoker/atelier-backend/internal/workflow"
)

// DashboardService recomputes every aggregation from a fresh snapshot pass.
type DashboardService struct {
	snapshots *SnapshotService
}

// TVPayload carries every panel of the TV rotation from one snapshot pass.
type TVPayload struct {
	GeneratedAt time.Time                     `json:"generated_at"`
	Today       time.Time                     `json:"today"`
	Stats       workflow.Stats                `json:"stats"`
	Funnel      []workflow.FunnelRow          `json:"funnel"`
	Delivery    workflow.DeliveryPerformance  `json:"delivery"`
	Approval    workflow.ApprovalStats        `json:"approval"`
	Stylists    []workflow.StylistPerformance `json:"stylists"`
	TopClients  []workflow.ClientRanking      `json:"top_clients"`
	Alerts      []workflow.UrgentAlert        `json:"alerts"`
}

func NewDashboardService(snapshots *SnapshotService) *DashboardService {
	return &DashboardService{snapshots: snapshots}
}

func (s *DashboardService) Stats(ctx context.Context) (workflow.Stats, error) {
	rm, err := s.snapshots.Load(ctx)
	if err != nil {
		return workflow.Stats{}, err
	}
	return workflow.DashboardStats(rm.Snapshots, rm.Today), nil
}

func (s *DashboardService) Funnel(ctx context.Context) ([]workflow.FunnelRow, error) {
	rm, err := s.snapshots.Load(ctx)
	if err != nil {
		return nil, err
	}
	return workflow.Funnel(rm.Snapshots), nil
}

func (s *DashboardService) Delivery(ctx context.Context) (workflow.DeliveryPerformance, error) {
	rm, err := s.snapshots.Load(ctx)
	if err != nil {
		return workflow.DeliveryPerformance{}, err
	}
	return workflow.Delivery(rm.Snapshots, rm.Today), nil
}

func (s *DashboardService) Approval(ctx context.Context) (workflow.ApprovalStats, error) {
	rm, err := s.snapshots.Load(ctx)
	if err != nil {
		return workflow.ApprovalStats{}, err
	}
	return workflow.Approval(rm.Snapshots), nil
}

func (s *DashboardService) Stylists(ctx context.Context) ([]workflow.StylistPerformance, error) {
	rm, err := s.snapshots.Load(ctx)
	if err != nil {
		return nil, err
	}
	return workflow.Stylists(rm.Snapshots, stylistNames(rm), rm.Today), nil
}

func (s *DashboardService) TopClients(ctx context.Context) ([]workflow.ClientRanking, error) {
	rm, err := s.snapshots.Load(ctx)
	if err != nil {
		return nil, err
	}
	return workflow.TopClients(rm.Clients, rm.Collections, workflow.TopClientsLimit), nil
}

func (s *DashboardService) Alerts(ctx context.Context) ([]workflow.UrgentAlert, error) {
	rm, err := s.snapshots.Load(ctx)
	if err != nil {
		return nil, err
	}
	return workflow.EvaluateAlerts(rm.Snapshots, rm.Today), nil
}

func (s *DashboardService) Board(ctx context.Context) ([]workflow.BoardColumn, error) {
	rm, err := s.snapshots.Load(ctx)
	if err != nil {
		return nil, err
	}
	return workflow.Board(rm.Snapshots), nil
}

func (s *DashboardService) TV(ctx context.Context) (*TVPayload, error) {
	rm, err := s.snapshots.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &TVPayload{
		GeneratedAt: time.Now().UTC(),
		Today:       rm.Today,
		Stats:       workflow.DashboardStats(rm.Snapshots, rm.Today),
		Funnel:      workflow.Funnel(rm.Snapshots),
		Delivery:    workflow.Delivery(rm.Snapshots, rm.Today),
		Approval:    workflow.Approval(rm.Snapshots),
		Stylists:    workflow.Stylists(rm.Snapshots, stylistNames(rm), rm.Today),
		TopClients:  workflow.TopClients(rm.Clients, rm.Collections, workflow.TopClientsLimit),
		Alerts:      workflow.EvaluateAlerts(rm.Snapshots, rm.Today),
	}, nil
}

func stylistNames(rm *ReadModel) []string {
	names := make([]string, 0, len(rm.Stylists))
	for _, st := range rm.Stylists {
		names = append(names, st.Name)
	}
	return names
}
