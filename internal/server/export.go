package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/logforms/internal/common"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// exportXLSX returns a data-entry workbook for a data schema.
func (s *Server) exportXLSX(c *gin.Context) {
	var req exportRequest
	if !s.bind(c, &req) {
		return
	}

	xlsx, err := s.exporter.EntryWorkbookXLSX(req.DataSchema, req.Rows)
	if err != nil {
		common.LoggerFromContext(c.Request.Context(), s.logger).Error("export.xlsx.failed", "title", req.DataSchema.Title, "err", err)
		s.fail(c, common.NewAppError(common.KindInternal, common.CodeInternal, "workbook could not be built", err))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="log-entries.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, xlsx)
}
