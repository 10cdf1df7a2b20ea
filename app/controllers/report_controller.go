package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/arthomesoni/arthome/app/services"
	"github.com/arthomesoni/arthome/pkg/response"
	"github.com/arthomesoni/arthome/pkg/workerpool"
)

// exportPool bounds concurrent workbook builds. Excelize keeps whole
// workbooks in memory, so unbounded parallel exports can balloon the heap.
var exportPool = workerpool.New(2)

// ReportController serves the admin analytics endpoints and the spreadsheet
// export. All routes sit behind the admin guard.
type ReportController struct {
	service *services.ReportService
}

func NewReportController(service *services.ReportService) *ReportController {
	return &ReportController{service: service}
}

func (c *ReportController) Sales(w http.ResponseWriter, r *http.Request) {
	report, err := c.service.Sales(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		serverError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, report)
}

func (c *ReportController) Workshops(w http.ResponseWriter, r *http.Request) {
	report, err := c.service.Workshops(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		serverError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, report)
}

// Export streams the xlsx workbook for ?type=sales|workshops.
func (c *ReportController) Export(w http.ResponseWriter, r *http.Request) {
	exportType := r.URL.Query().Get("type")
	period := r.URL.Query().Get("period")

	var (
		data     []byte
		filename string
		err      error
	)
	done := make(chan struct{})
	submitErr := exportPool.Submit(func() {
		defer close(done)
		data, filename, err = c.service.Export(r.Context(), exportType, period)
	})
	if submitErr != nil {
		response.Message(w, http.StatusServiceUnavailable, "Сервис временно перегружен, попробуйте позже")
		return
	}
	<-done

	switch {
	case errors.Is(err, services.ErrBadExportType):
		response.Message(w, http.StatusBadRequest, "Неверный тип отчета")
		return
	case err != nil:
		serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.Write(data) //nolint:errcheck
}
