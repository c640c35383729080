package handlers

import (
	"net/http"

	"portfolio/internal/service"

	"github.com/gin-gonic/gin"
)

type leadRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Company string `json:"company"`
	Message string `json:"message"`
	Source  string `json:"source"`
}

type reportRequest struct {
	Type          string `json:"type" binding:"required"`
	Description   string `json:"description" binding:"required"`
	Page          string `json:"page"`
	ReporterEmail string `json:"reporter_email"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// @Summary  Submit a contact lead
// @Tags     leads
// @Accept   json
// @Produce  json
// @Param    body  body      leadRequest  true  "lead"
// @Success  201   {object}  models.Lead
// @Failure  400   {object}  map[string]string
// @Failure  429   {object}  map[string]string
// @Router   /api/leads [post]
func (h *Handler) createLead(c *gin.Context) {
	var in leadRequest
	if ok := h.bindJSONOrBadRequest(c, &in); !ok {
		return
	}
	l, err := h.services.Leads.Create(c.Request.Context(), service.LeadInput{
		Name:    in.Name,
		Email:   in.Email,
		Company: in.Company,
		Message: in.Message,
		Source:  in.Source,
	})
	if err != nil {
		h.respondError(c, "lead_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

// @Summary   List leads
// @Tags      leads
// @Produce   json
// @Param     status  query     string  false  "filter"  Enums(new,contacted,closed)
// @Success   200     {array}   models.Lead
// @Router    /api/leads [get]
// @Security  BearerAuth
func (h *Handler) listLeads(c *gin.Context) {
	leads, err := h.services.Leads.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.respondError(c, "lead_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, leads)
}

// @Summary   Change lead status
// @Tags      leads
// @Accept    json
// @Param     id    path  string         true  "lead id"
// @Param     body  body  statusRequest  true  "new status"
// @Success   204
// @Failure   400  {object}  map[string]string
// @Failure   404  {object}  map[string]string
// @Router    /api/leads/{id}/status [put]
// @Security  BearerAuth
func (h *Handler) setLeadStatus(c *gin.Context) {
	var in statusRequest
	if ok := h.bindJSONOrBadRequest(c, &in); !ok {
		return
	}
	id := c.Param("id")
	if err := h.services.Leads.SetStatus(c.Request.Context(), id, in.Status); err != nil {
		h.respondError(c, "lead_status_failed", err, "id", id)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary   Delete a lead
// @Tags      leads
// @Param     id  path  string  true  "lead id"
// @Success   204
// @Failure   404  {object}  map[string]string
// @Router    /api/leads/{id} [delete]
// @Security  BearerAuth
func (h *Handler) deleteLead(c *gin.Context) {
	id := c.Param("id")
	if err := h.services.Leads.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, "lead_delete_failed", err, "id", id)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary  File a report
// @Tags     reports
// @Accept   json
// @Produce  json
// @Param    body  body      reportRequest  true  "report"
// @Success  201   {object}  models.Report
// @Failure  400   {object}  map[string]string
// @Failure  429   {object}  map[string]string
// @Router   /api/reports [post]
func (h *Handler) createReport(c *gin.Context) {
	var in reportRequest
	if ok := h.bindJSONOrBadRequest(c, &in); !ok {
		return
	}
	r, err := h.services.Reports.Create(c.Request.Context(), service.ReportInput{
		Type:          in.Type,
		Description:   in.Description,
		Page:          in.Page,
		ReporterEmail: in.ReporterEmail,
	})
	if err != nil {
		h.respondError(c, "report_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// @Summary   List reports
// @Tags      reports
// @Produce   json
// @Param     status  query     string  false  "filter"  Enums(open,resolved)
// @Success   200     {array}   models.Report
// @Router    /api/reports [get]
// @Security  BearerAuth
func (h *Handler) listReports(c *gin.Context) {
	reports, err := h.services.Reports.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.respondError(c, "report_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// @Summary   Change report status
// @Tags      reports
// @Accept    json
// @Param     id    path  string         true  "report id"
// @Param     body  body  statusRequest  true  "new status"
// @Success   204
// @Router    /api/reports/{id}/status [put]
// @Security  BearerAuth
func (h *Handler) setReportStatus(c *gin.Context) {
	var in statusRequest
	if ok := h.bindJSONOrBadRequest(c, &in); !ok {
		return
	}
	id := c.Param("id")
	if err := h.services.Reports.SetStatus(c.Request.Context(), id, in.Status); err != nil {
		h.respondError(c, "report_status_failed", err, "id", id)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary   Delete a report
// @Tags      reports
// @Param     id  path  string  true  "report id"
// @Success   204
// @Router    /api/reports/{id} [delete]
// @Security  BearerAuth
func (h *Handler) deleteReport(c *gin.Context) {
	id := c.Param("id")
	if err := h.services.Reports.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, "report_delete_failed", err, "id", id)
		return
	}
	c.Status(http.StatusNoContent)
}
