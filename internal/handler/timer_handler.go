package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "countdown/internal/errors"
	"countdown/internal/model"
	"countdown/internal/service"
)

type TimerHandler struct {
	session *service.Session
}

func NewTimerHandler(session *service.Session) *TimerHandler {
	return &TimerHandler{session: session}
}

func (h *TimerHandler) List(c *gin.Context) {
	h.session.Sync(c.Request.Context())

	var timers []model.Timer
	if category := c.Query("category"); category != "" {
		timers = h.session.TimersInCategory(category)
	} else {
		timers = h.session.Timers()
	}
	if timers == nil {
		timers = []model.Timer{}
	}
	c.JSON(http.StatusOK, gin.H{"timers": timers})
}

func (h *TimerHandler) Get(c *gin.Context) {
	id, ok := timerID(c)
	if !ok {
		return
	}
	h.session.Sync(c.Request.Context())
	timer, err := h.session.Timer(id)
	if err != nil {
		writeError(c, apperrors.FromService(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"timer": timer})
}

func (h *TimerHandler) Create(c *gin.Context) {
	var req service.TimerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.BadRequest("invalid_json", "invalid request body"))
		return
	}
	timer, err := h.session.AddTimer(c.Request.Context(), req)
	if err != nil {
		writeError(c, apperrors.FromService(err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"timer": timer})
}

func (h *TimerHandler) Start(c *gin.Context) {
	h.lifecycle(c, h.session.Start)
}

func (h *TimerHandler) Pause(c *gin.Context) {
	h.lifecycle(c, h.session.Pause)
}

func (h *TimerHandler) Reset(c *gin.Context) {
	h.lifecycle(c, h.session.Reset)
}

// lifecycle runs op and reports whether it changed anything. A no-op on an
// existing timer is still a success.
func (h *TimerHandler) lifecycle(c *gin.Context, op func(context.Context, int64) bool) {
	id, ok := timerID(c)
	if !ok {
		return
	}
	changed := op(c.Request.Context(), id)
	timer, err := h.session.Timer(id)
	if err != nil {
		writeError(c, apperrors.FromService(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed, "timer": timer})
}

func (h *TimerHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.session.Categories()})
}

func (h *TimerHandler) ApplyToCategory(c *gin.Context) {
	op, err := service.ParseCategoryOp(c.Param("op"))
	if err != nil {
		writeError(c, apperrors.FromService(err))
		return
	}
	name := c.Param("name")
	affected := h.session.ApplyToCategory(c.Request.Context(), name, op)
	c.JSON(http.StatusOK, gin.H{"category": name, "op": op, "affected": affected})
}

func (h *TimerHandler) History(c *gin.Context) {
	items := h.session.History()
	if items == nil {
		items = []model.TimerHistoryItem{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *TimerHandler) Export(c *gin.Context) {
	data, err := service.EncodeExport(h.session.Export())
	if err != nil {
		writeError(c, apperrors.Internal(err.Error()))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="timer_history.json"`)
	c.Data(http.StatusOK, "application/json", data)
}

// ClearAll wipes everything; the caller must pass confirm=true.
func (h *TimerHandler) ClearAll(c *gin.Context) {
	if c.Query("confirm") != "true" {
		writeError(c, apperrors.BadRequest("confirmation_required", "pass confirm=true to delete all timers and history"))
		return
	}
	if err := h.session.ClearAll(c.Request.Context()); err != nil {
		writeError(c, apperrors.Internal("state cleared in memory but storage failed"))
		return
	}
	c.Status(http.StatusNoContent)
}

func timerID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, apperrors.BadRequest("invalid_id", "timer id must be an integer"))
		return 0, false
	}
	return id, true
}
