package handlers

import (
	"encoding/base64"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"attendgate.com/attendgate/utils"
	"attendgate.com/attendgate/web/common"
)

type PlateRequest struct {
	Plate      string  `json:"plate" binding:"required"`
	Confidence float64 `json:"confidence"`
	CapturedAt string  `json:"capturedAt"`
	Image      string  `json:"image"`
}

type CredentialRequest struct {
	UID string `json:"uid" binding:"required"`
}

// PlateHandler ingests one plate recognition from a camera station.
func (e *Env) PlateHandler(c *gin.Context) {
	var req PlateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	var at time.Time
	if req.CapturedAt != "" {
		parsed, err := utils.ParseISOTime(req.CapturedAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("Field 'capturedAt' is not a valid timestamp"))
			return
		}
		at = *parsed
	}

	var image []byte
	if req.Image != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("Field 'image' must be base64 encoded"))
			return
		}
		image = decoded
	}

	result, err := e.Service.ProcessPlate(c.Request.Context(), req.Plate, req.Confidence, image, at)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(result))
}

// CredentialHandler ingests one credential tap from a card reader.
func (e *Env) CredentialHandler(c *gin.Context) {
	var req CredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	result, err := e.Service.ProcessCredential(c.Request.Context(), req.UID, time.Time{})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(result))
}
