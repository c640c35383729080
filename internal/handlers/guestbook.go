package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"portfolio/internal/service"

	"github.com/gin-gonic/gin"
)

type guestbookRequest struct {
	Name    string `json:"name"`
	Message string `json:"message" binding:"required"`
}

var errSinceInvalid = errors.New("invalid 'since'; use RFC3339 or unix milliseconds")

// parseSince accepts RFC3339 (with optional fractional seconds) or unix milliseconds.
func parseSince(s string) (time.Time, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errSinceInvalid
}

func queryLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return n
}

// @Summary  List guestbook entries, newest first
// @Tags     guestbook
// @Produce  json
// @Param    limit  query     int  false  "max entries (default 50, max 200)"
// @Success  200    {array}   models.GuestbookEntry
// @Router   /api/guestbook [get]
func (h *Handler) listGuestbook(c *gin.Context) {
	entries, err := h.services.Guestbook.List(c.Request.Context(), queryLimit(c))
	if err != nil {
		h.respondError(c, "guestbook_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// @Summary  Entries created after a timestamp
// @Tags     guestbook
// @Produce  json
// @Param    since  query     string  true   "RFC3339 or unix milliseconds"
// @Param    limit  query     int     false  "max entries"
// @Success  200    {array}   models.GuestbookEntry
// @Failure  400    {object}  map[string]string
// @Router   /api/guestbook/newer [get]
func (h *Handler) listGuestbookNewer(c *gin.Context) {
	since, err := parseSince(c.Query("since"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entries, err := h.services.Guestbook.ListNewer(c.Request.Context(), since, queryLimit(c))
	if err != nil {
		h.respondError(c, "guestbook_newer_failed", err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// @Summary  Sign the guestbook
// @Tags     guestbook
// @Accept   json
// @Produce  json
// @Param    body  body      guestbookRequest  true  "entry"
// @Success  201   {object}  models.GuestbookEntry
// @Failure  400   {object}  map[string]string
// @Failure  429   {object}  map[string]string
// @Router   /api/guestbook [post]
func (h *Handler) createGuestbookEntry(c *gin.Context) {
	var input guestbookRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}
	e, err := h.services.Guestbook.Create(c.Request.Context(),
		service.GuestbookInput{Name: input.Name, Message: input.Message}, identityFrom(c))
	if err != nil {
		h.respondError(c, "guestbook_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// @Summary   Edit a guestbook entry (author or admin)
// @Tags      guestbook
// @Accept    json
// @Produce   json
// @Param     id    path      string            true  "entry id"
// @Param     body  body      guestbookRequest  true  "changes"
// @Success   200   {object}  models.GuestbookEntry
// @Failure   403   {object}  map[string]string
// @Failure   404   {object}  map[string]string
// @Router    /api/guestbook/{id} [put]
// @Security  BearerAuth
func (h *Handler) updateGuestbookEntry(c *gin.Context) {
	var input guestbookRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}
	id := c.Param("id")
	e, err := h.services.Guestbook.Update(c.Request.Context(), id,
		service.GuestbookInput{Name: input.Name, Message: input.Message}, identityFrom(c))
	if err != nil {
		h.respondError(c, "guestbook_update_failed", err, "id", id)
		return
	}
	c.JSON(http.StatusOK, e)
}

// @Summary   Delete a guestbook entry (author or admin)
// @Tags      guestbook
// @Param     id  path  string  true  "entry id"
// @Success   204
// @Failure   403  {object}  map[string]string
// @Failure   404  {object}  map[string]string
// @Router    /api/guestbook/{id} [delete]
// @Security  BearerAuth
func (h *Handler) deleteGuestbookEntry(c *gin.Context) {
	id := c.Param("id")
	if err := h.services.Guestbook.Delete(c.Request.Context(), id, identityFrom(c)); err != nil {
		h.respondError(c, "guestbook_delete_failed", err, "id", id)
		return
	}
	c.Status(http.StatusNoContent)
}
