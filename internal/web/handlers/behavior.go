package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	behaviordto "github.com/JHR999/behavior-tracker/internal/modules/behavior/dto"
	behaviorin "github.com/JHR999/behavior-tracker/internal/modules/behavior/port/in"
	apperrors "github.com/JHR999/behavior-tracker/internal/platform/errors"
	"github.com/JHR999/behavior-tracker/internal/web/response"
)

type BehaviorHandler struct {
	behaviors behaviorin.Usecase
}

func NewBehaviorHandler(behaviors behaviorin.Usecase) *BehaviorHandler {
	return &BehaviorHandler{behaviors: behaviors}
}

func (h *BehaviorHandler) List(c *gin.Context) {
	out, err := h.behaviors.ListBehaviors(c.Request.Context())
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"behaviors": out})
}

func (h *BehaviorHandler) Get(c *gin.Context) {
	out, err := h.behaviors.GetBehavior(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, out)
}

type addBehaviorRequest struct {
	Name        string `json:"name"`
	Probability *int   `json:"probability"`
	Category    string `json:"category"`
	PromptTime  string `json:"prompt_time"`
	UpEmoji     string `json:"up_emoji"`
	DownEmoji   string `json:"down_emoji"`
}

// Add appends a behavior. A missing probability takes the table default.
func (h *BehaviorHandler) Add(c *gin.Context) {
	var req addBehaviorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	input := behaviordto.AddInput{
		Name:       req.Name,
		Category:   req.Category,
		PromptTime: req.PromptTime,
		UpEmoji:    req.UpEmoji,
		DownEmoji:  req.DownEmoji,
	}
	if req.Probability != nil {
		input.Probability = *req.Probability
	}
	out, err := h.behaviors.AddBehavior(c.Request.Context(), input)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// editBehaviorRequest mirrors EditInput: absent fields stay as they are.
type editBehaviorRequest struct {
	Category   *string `json:"category"`
	PromptTime *string `json:"prompt_time"`
	UpEmoji    *string `json:"up_emoji"`
	DownEmoji  *string `json:"down_emoji"`
}

func (h *BehaviorHandler) Edit(c *gin.Context) {
	var req editBehaviorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	out, err := h.behaviors.EditBehavior(c.Request.Context(), behaviordto.EditInput{
		Name:       c.Param("name"),
		Category:   req.Category,
		PromptTime: req.PromptTime,
		UpEmoji:    req.UpEmoji,
		DownEmoji:  req.DownEmoji,
	})
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, out)
}

func (h *BehaviorHandler) Remove(c *gin.Context) {
	name := c.Param("name")
	if err := h.behaviors.RemoveBehavior(c.Request.Context(), name); err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"removed": name})
}

type setProbabilityRequest struct {
	Probability *int `json:"probability"`
}

func (h *BehaviorHandler) SetProbability(c *gin.Context) {
	var req setProbabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	if req.Probability == nil {
		response.RespondAppError(c, fmt.Errorf("%w: probability is required", apperrors.ErrInvalidInput))
		return
	}
	out, err := h.behaviors.SetProbability(c.Request.Context(), behaviordto.SetProbabilityInput{
		Name:        c.Param("name"),
		Probability: *req.Probability,
	})
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, out)
}

func (h *BehaviorHandler) Reload(c *gin.Context) {
	out, err := h.behaviors.Reload(c.Request.Context())
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"behaviors": out})
}
