package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hostpilotpro/hostpilot_backend/models"
)

func registerPropertyRoutes(api *gin.RouterGroup) {
	g := api.Group("/properties")
	g.GET("", scoped("ListProperties", listProperties))
	g.POST("", scoped("CreateProperty", createHandler(models.CreateProperty)))
	g.GET("/:id", scoped("GetProperty", byIdHandler(models.GetProperty)))
	g.PUT("/:id", scoped("UpdateProperty", updateHandler(models.UpdateProperty)))
}

func listProperties(c *gin.Context, ctx context.Context, organizationId string) {
	filter := models.PropertyFilter{
		Status: queryString[models.PropertyStatus](c, "status"),
		Search: queryString[string](c, "search"),
	}
	rows, err := models.ListProperties(ctx, organizationId, filter)
	reply(c, ctx, http.StatusOK, rows, err)
}
