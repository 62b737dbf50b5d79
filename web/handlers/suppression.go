package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"attendgate.com/attendgate/web/common"
)

// SuppressionHandler lists keys currently inside their protection
// window.
func (e *Env) SuppressionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
		"windowSeconds": e.Service.SuppressionWindow().Seconds(),
		"protected":     e.Service.SuppressionStatus(),
	}))
}

// ClearSuppressionHandler drops every protection entry. Debug only.
func (e *Env) ClearSuppressionHandler(c *gin.Context) {
	cleared := e.Service.ClearSuppression()
	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{"cleared": cleared}))
}
