package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	checkindto "github.com/JHR999/behavior-tracker/internal/modules/checkin/dto"
	checkinin "github.com/JHR999/behavior-tracker/internal/modules/checkin/port/in"
	"github.com/JHR999/behavior-tracker/internal/web/response"
)

type CheckinHandler struct {
	checkin checkinin.Usecase
}

func NewCheckinHandler(checkin checkinin.Usecase) *CheckinHandler {
	return &CheckinHandler{checkin: checkin}
}

func (h *CheckinHandler) Pending(c *gin.Context) {
	out, err := h.checkin.Pending(c.Request.Context())
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, out)
}

func (h *CheckinHandler) Queue(c *gin.Context) {
	out, err := h.checkin.Queue(c.Request.Context())
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"queue": out})
}

func (h *CheckinHandler) Situational(c *gin.Context) {
	out, err := h.checkin.Situational(c.Request.Context())
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"behaviors": out})
}

func (h *CheckinHandler) Today(c *gin.Context) {
	out, err := h.checkin.Today(c.Request.Context())
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"behaviors": out})
}

type recordOutcomeRequest struct {
	Name    string `json:"name" binding:"required"`
	Outcome string `json:"outcome" binding:"required"`
}

func (h *CheckinHandler) RecordOutcome(c *gin.Context) {
	var req recordOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	out, err := h.checkin.RecordOutcome(c.Request.Context(), checkindto.RecordOutcomeInput{
		Name:    req.Name,
		Outcome: req.Outcome,
	})
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, out)
}

func (h *CheckinHandler) Session(c *gin.Context) {
	out, err := h.checkin.Session(c.Request.Context())
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, out)
}

func (h *CheckinHandler) ResetSession(c *gin.Context) {
	out, err := h.checkin.ResetSession(c.Request.Context())
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, out)
}
