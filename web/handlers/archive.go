package handlers

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"attendgate.com/attendgate/infrastructure/filesystem"
	"attendgate.com/attendgate/utils"
	"attendgate.com/attendgate/web/common"
)

// ArchiveListHandler lists archived capture images, optionally filtered
// by a date or date/identity prefix.
func (e *Env) ArchiveListHandler(c *gin.Context) {
	if e.ArchiveBucket == "" {
		c.JSON(http.StatusNotFound, common.NewErrorResponse("archival is not configured"))
		return
	}

	prefix := c.Query("prefix")
	keys, err := filesystem.ListFiles(e.ArchiveBucket, prefix, c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, common.NewErrorResponse(err.Error()))
		return
	}
	images := utils.Filter(keys, func(key string) bool {
		return strings.HasSuffix(strings.ToLower(key), ".jpg")
	})
	c.JSON(http.StatusOK, common.NewSuccessResponse(images))
}

// ArchiveImageHandler returns one archived capture image.
func (e *Env) ArchiveImageHandler(c *gin.Context) {
	if e.ArchiveBucket == "" {
		c.JSON(http.StatusNotFound, common.NewErrorResponse("archival is not configured"))
		return
	}

	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Field 'key' is required"))
		return
	}

	var buf bytes.Buffer
	if err := filesystem.ReadFile(e.ArchiveBucket, key, c.Request.Context(), &buf); err != nil {
		c.JSON(http.StatusBadGateway, common.NewErrorResponse(err.Error()))
		return
	}
	c.Data(http.StatusOK, "image/jpeg", buf.Bytes())
}
