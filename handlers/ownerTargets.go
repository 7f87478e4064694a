package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hostpilotpro/hostpilot_backend/models"
	"github.com/hostpilotpro/hostpilot_backend/utils"
)

func registerOwnerTargetRoutes(api *gin.RouterGroup, managers gin.HandlerFunc) {
	g := api.Group("/owner-targets")

	g.GET("/targets", scoped("ListRevenueTargets", listRevenueTargets))
	g.POST("/targets", scoped("CreateRevenueTarget", createHandler(models.CreateRevenueTarget)))
	g.GET("/targets/:id", scoped("GetRevenueTarget", byIdHandler(models.GetRevenueTarget)))
	g.PUT("/targets/:id", scoped("UpdateRevenueTarget", updateHandler(models.UpdateRevenueTarget)))
	g.DELETE("/targets/:id", scoped("DeleteRevenueTarget", byIdHandler(models.DeleteRevenueTarget)))
	g.GET("/targets/:id/progress", scoped("ListTargetProgress", listTargetProgress))
	g.POST("/targets/:id/progress", scoped("CreateTargetProgress", createTargetProgress))

	g.GET("/upgrades", scoped("ListUpgradeItems", listUpgradeItems))
	g.POST("/upgrades", scoped("CreateUpgradeItem", createHandler(models.CreateUpgradeItem)))
	g.GET("/upgrades/:id", scoped("GetUpgradeItem", byIdHandler(models.GetUpgradeItem)))
	g.PUT("/upgrades/:id", scoped("UpdateUpgradeItem", updateHandler(models.UpdateUpgradeItem)))
	g.DELETE("/upgrades/:id", scoped("DeleteUpgradeItem", byIdHandler(models.DeleteUpgradeItem)))
	g.POST("/upgrades/:id/approve", managers, scoped("ApproveUpgradeItem", approveUpgradeItem))
	g.POST("/upgrades/:id/complete", scoped("CompleteUpgradeItem", byIdHandler(models.CompleteUpgradeItem)))

	g.GET("/suggestions", scoped("ListTargetSuggestions", listTargetSuggestions))
	g.POST("/suggestions", scoped("CreateTargetSuggestion", createHandler(models.CreateTargetSuggestion)))
	g.POST("/suggestions/:id/read", scoped("MarkTargetSuggestionRead", byIdHandler(models.MarkTargetSuggestionRead)))
	g.POST("/suggestions/:id/dismiss", scoped("DismissTargetSuggestion", byIdHandler(models.DismissTargetSuggestion)))

	g.GET("/dashboard", scoped("GetTargetDashboard", targetDashboard))
}

func listRevenueTargets(c *gin.Context, ctx context.Context, organizationId string) {
	q := queryParser{c: c}
	filter := models.RevenueTargetFilter{
		PropertyId:    q.Int("property_id"),
		TargetYear:    q.Int("target_year"),
		TargetQuarter: q.Int("target_quarter"),
		IsActive:      q.Bool("is_active"),
	}
	if q.err != nil {
		respondError(c, ctx, q.err)
		return
	}
	rows, err := models.ListRevenueTargets(ctx, organizationId, filter)
	reply(c, ctx, http.StatusOK, rows, err)
}

func listTargetProgress(c *gin.Context, ctx context.Context, organizationId string) {
	id, err := pathId(c)
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	rows, err := models.ListTargetProgress(ctx, organizationId, id)
	reply(c, ctx, http.StatusOK, rows, err)
}

func createTargetProgress(c *gin.Context, ctx context.Context, organizationId string) {
	id, err := pathId(c)
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	var input models.NewTargetProgress
	if !bindJSON(c, &input) {
		return
	}
	input.TargetId = id
	record, err := models.CreateTargetProgress(ctx, organizationId, &input)
	reply(c, ctx, http.StatusCreated, record, err)
}

func listUpgradeItems(c *gin.Context, ctx context.Context, organizationId string) {
	q := queryParser{c: c}
	filter := models.UpgradeItemFilter{
		PropertyId: q.Int("property_id"),
		TargetId:   q.Int("target_id"),
		Status:     queryString[models.UpgradeStatus](c, "status"),
		Priority:   queryString[models.Priority](c, "priority"),
		Category:   queryString[string](c, "category"),
	}
	if q.err != nil {
		respondError(c, ctx, q.err)
		return
	}
	rows, err := models.ListUpgradeItems(ctx, organizationId, filter)
	reply(c, ctx, http.StatusOK, rows, err)
}

func approveUpgradeItem(c *gin.Context, ctx context.Context, organizationId string) {
	id, err := pathId(c)
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	item, err := models.ApproveUpgradeItem(ctx, organizationId, id, utils.GetActorIdFromContext(ctx))
	reply(c, ctx, http.StatusOK, item, err)
}

func listTargetSuggestions(c *gin.Context, ctx context.Context, organizationId string) {
	q := queryParser{c: c}
	filter := models.TargetSuggestionFilter{
		PropertyId:     q.Int("property_id"),
		SuggestionType: queryString[string](c, "suggestion_type"),
		IsRead:         q.Bool("is_read"),
		IsDismissed:    q.Bool("is_dismissed"),
	}
	if q.err != nil {
		respondError(c, ctx, q.err)
		return
	}
	rows, err := models.ListTargetSuggestions(ctx, organizationId, filter)
	reply(c, ctx, http.StatusOK, rows, err)
}

func targetDashboard(c *gin.Context, ctx context.Context, organizationId string) {
	propertyId, err := queryInt(c, "property_id")
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	dashboard, err := models.GetTargetDashboard(ctx, organizationId, propertyId)
	reply(c, ctx, http.StatusOK, dashboard, err)
}
