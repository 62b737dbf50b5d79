package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"attendgate.com/attendgate/core"
	"attendgate.com/attendgate/reports"
	"attendgate.com/attendgate/web/common"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DailyReportHandler streams an xlsx export of one day's attendance.
func (e *Env) DailyReportHandler(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = time.Now().Format(core.DateLayout)
	}
	if _, err := time.Parse(core.DateLayout, date); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Field 'date' must match layout 2006-01-02"))
		return
	}

	buf, found, err := reports.DailyWorkbook(c.Request.Context(), e.Store, date)
	if err != nil {
		writeError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, common.NewErrorResponse("no attendance records for "+date))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="attendance-`+date+`.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
