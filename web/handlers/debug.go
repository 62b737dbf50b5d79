package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"attendgate.com/attendgate/web/common"
)

// ResolveHandler runs the plate matcher chain without touching the
// admission cache or the ledger. Debug only.
func (e *Env) ResolveHandler(c *gin.Context) {
	key := c.Param("key")

	identity, matcher, err := e.Service.DebugResolvePlate(c.Request.Context(), key)
	if err != nil {
		writeError(c, err)
		return
	}
	if identity == nil {
		c.JSON(http.StatusNotFound, common.NewErrorResponse("no identity matches "+key))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
		"identity": identity,
		"matcher":  matcher,
	}))
}
