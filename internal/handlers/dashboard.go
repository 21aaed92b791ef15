// internal/handlers/dashboard.go
package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/atelier-backend/internal/i18n"
	"github.com/javajoker/atelier-backend/internal/models"
	"github.com/javajoker/atelier-backend/internal/services"
	"github.com/javajoker/atelier-backend/internal/utils"
	"github.com/javajoker/atelier-backend/internal/workflow"
)

// DashboardHandler serves every read surface built from production snapshots.
type DashboardHandler struct {
	snapshotService  *services.SnapshotService
	dashboardService *services.DashboardService
}

func NewDashboardHandler(snapshotService *services.SnapshotService, dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		snapshotService:  snapshotService,
		dashboardService: dashboardService,
	}
}

// GET /snapshots
func (h *DashboardHandler) GetSnapshots(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	params := utils.GetPaginationParams(c)

	filter := services.SnapshotFilter{
		Stage:    c.Query("stage"),
		Priority: models.Priority(c.Query("priority")),
		Tag:      strings.TrimSpace(c.Query("tag")),
	}

	var err error
	if filter.CollectionID, err = parseUUIDQuery(c, "collection_id"); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalidID, "collection"), nil)
		return
	}
	if filter.ClientID, err = parseUUIDQuery(c, "client_id"); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalidID, "client"), nil)
		return
	}
	if filter.Stage != "" && !workflow.IsKnownStage(filter.Stage) {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyStageUnknown, filter.Stage), nil)
		return
	}
	if overdueStr := c.Query("overdue"); overdueStr != "" {
		overdue, err := strconv.ParseBool(overdueStr)
		if err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "overdue"), nil)
			return
		}
		filter.Overdue = &overdue
	}

	snapshots, err := h.snapshotService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.PaginateSlice(snapshots, params))
}

// GET /board
func (h *DashboardHandler) GetBoard(c *gin.Context) {
	board, err := h.dashboardService.Board(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"columns": board})
}

// GET /alerts
func (h *DashboardHandler) GetAlerts(c *gin.Context) {
	alerts, err := h.dashboardService.Alerts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"alerts": alerts,
		"total":  len(alerts),
	})
}

// GET /dashboard/stats
func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.dashboardService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, stats)
}

// GET /dashboard/funnel
func (h *DashboardHandler) GetFunnel(c *gin.Context) {
	funnel, err := h.dashboardService.Funnel(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"stages": funnel})
}

// GET /dashboard/delivery
func (h *DashboardHandler) GetDelivery(c *gin.Context) {
	delivery, err := h.dashboardService.Delivery(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, delivery)
}

// GET /dashboard/approval
func (h *DashboardHandler) GetApproval(c *gin.Context) {
	approval, err := h.dashboardService.Approval(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, approval)
}

// GET /dashboard/stylists
func (h *DashboardHandler) GetStylists(c *gin.Context) {
	stylists, err := h.dashboardService.Stylists(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"stylists": stylists})
}

// GET /dashboard/top-clients
func (h *DashboardHandler) GetTopClients(c *gin.Context) {
	clients, err := h.dashboardService.TopClients(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"clients": clients})
}

// GET /dashboard/tv
func (h *DashboardHandler) GetTV(c *gin.Context) {
	payload, err := h.dashboardService.TV(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, payload)
}
