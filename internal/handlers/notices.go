package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      Active notices
// @Tags         notices
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, notices"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/notices [get]
// @Security     BearerAuth
func (h *Handler) listNotices(c *gin.Context) {
	notices, err := h.services.ListNotices(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load notices", "notices_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(notices),
		"notices": notices,
	})
}

// @Summary      Dismiss a notice
// @Tags         notices
// @Param        id   path  string  true  "Notice ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/notices/{id} [delete]
// @Security     BearerAuth
func (h *Handler) dismissNotice(c *gin.Context) {
	id := c.Param("id")
	if err := h.services.DismissNotice(c.Request.Context(), id); err != nil {
		h.respondAppError(c, "notice_dismiss_failed", err, "id", id)
		return
	}
	c.Status(http.StatusNoContent)
}
