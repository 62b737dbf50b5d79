package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"attendgate.com/attendgate/core"
	"attendgate.com/attendgate/web/common"
)

// StatusHandler reports the most recent result, a short history of
// processed events and the suppression state.
func (e *Env) StatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
		"lastResult":    e.Service.LastResult(),
		"recent":        e.Service.Snapshots(),
		"protectedKeys": len(e.Service.SuppressionStatus()),
		"windowSeconds": e.Service.SuppressionWindow().Seconds(),
		"serverTime":    time.Now().Format(core.TimestampLayout),
	}))
}

// LatestPlateHandler returns the latest-plate-event pointer.
func (e *Env) LatestPlateHandler(c *gin.Context) {
	e.latest(c, core.KindPlate)
}

// LatestCredentialHandler returns the latest-credential-event pointer.
func (e *Env) LatestCredentialHandler(c *gin.Context) {
	e.latest(c, core.KindCredential)
}

func (e *Env) latest(c *gin.Context, kind core.EventKind) {
	latest, err := e.Service.Latest(c.Request.Context(), kind)
	if err != nil {
		writeError(c, err)
		return
	}
	if latest == nil {
		c.JSON(http.StatusNotFound, common.NewErrorResponse("no events recorded yet"))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(latest))
}
