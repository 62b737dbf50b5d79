package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"attendgate.com/attendgate/core"
	"attendgate.com/attendgate/web/common"
)

// Env carries the shared collaborators every handler needs.
type Env struct {
	Service       *core.Service
	Store         core.Store
	ArchiveBucket string
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, core.ErrStoreUnavailable) {
		status = http.StatusBadGateway
	}
	c.JSON(status, common.NewErrorResponse(err.Error()))
}
