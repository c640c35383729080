package handlers

import (
	"net/http"

	"portfolio/internal/models"

	"github.com/gin-gonic/gin"
)

// @Summary  Portfolio document
// @Tags     portfolio
// @Produce  json
// @Success  200  {object}  models.PortfolioData
// @Router   /api/portfolio [get]
func (h *Handler) getPortfolio(c *gin.Context) {
	p, err := h.services.Portfolio.Get(c.Request.Context())
	if err != nil {
		h.respondError(c, "portfolio_get_failed", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary   Replace the portfolio document
// @Tags      portfolio
// @Accept    json
// @Produce   json
// @Param     body  body      models.PortfolioData  true  "whole document"
// @Success   200   {object}  models.PortfolioData
// @Failure   400   {object}  map[string]string
// @Failure   403   {object}  map[string]string
// @Router    /api/portfolio [post]
// @Security  BearerAuth
func (h *Handler) savePortfolio(c *gin.Context) {
	var doc models.PortfolioData
	if ok := h.bindJSONOrBadRequest(c, &doc); !ok {
		return
	}
	saved, err := h.services.Portfolio.Save(c.Request.Context(), doc)
	if err != nil {
		h.respondError(c, "portfolio_save_failed", err)
		return
	}
	c.JSON(http.StatusOK, saved)
}
