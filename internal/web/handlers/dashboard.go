package handlers

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	behaviordto "github.com/JHR999/behavior-tracker/internal/modules/behavior/dto"
	behaviorin "github.com/JHR999/behavior-tracker/internal/modules/behavior/port/in"
	checkindto "github.com/JHR999/behavior-tracker/internal/modules/checkin/dto"
	checkinin "github.com/JHR999/behavior-tracker/internal/modules/checkin/port/in"
	"github.com/JHR999/behavior-tracker/internal/platform/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded dashboard pages for gin's SetHTMLTemplate.
func Templates() *template.Template {
	funcs := template.FuncMap{"inc": func(i int) int { return i + 1 }}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

type DashboardHandler struct {
	behaviors behaviorin.Usecase
	checkin   checkinin.Usecase
	log       *logger.Logger
}

func NewDashboardHandler(behaviors behaviorin.Usecase, checkin checkinin.Usecase, log *logger.Logger) *DashboardHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &DashboardHandler{behaviors: behaviors, checkin: checkin, log: log}
}

type dashboardPage struct {
	Flash       string
	Error       string
	Pending     checkindto.PendingOutput
	Situational []checkindto.ItemOutput
	Today       []checkindto.ItemOutput
}

// Index renders the dashboard. A request carrying ?action=up|down&name=N
// records the outcome first and redirects back with a flash message.
func (h *DashboardHandler) Index(c *gin.Context) {
	if action := strings.TrimSpace(c.Query("action")); action != "" {
		h.handleAction(c, action, c.Query("name"))
		return
	}

	ctx := c.Request.Context()
	page := dashboardPage{Flash: c.Query("flash")}

	var err error
	if page.Pending, err = h.checkin.Pending(ctx); err == nil {
		if page.Situational, err = h.checkin.Situational(ctx); err == nil {
			page.Today, err = h.checkin.Today(ctx)
		}
	}
	status := http.StatusOK
	if err != nil {
		h.log.Error("dashboard load failed", "error", err)
		page.Error = err.Error()
		status = http.StatusInternalServerError
	}
	c.HTML(status, "dashboard.html", page)
}

func (h *DashboardHandler) handleAction(c *gin.Context, action, name string) {
	var outcome string
	switch action {
	case "up":
		outcome = "did"
	case "down":
		outcome = "didnt"
	default:
		redirectWithFlash(c, "/", fmt.Sprintf("unknown action %q", action))
		return
	}

	out, err := h.checkin.RecordOutcome(c.Request.Context(), checkindto.RecordOutcomeInput{Name: name, Outcome: outcome})
	if err != nil {
		h.log.Warn("dashboard action failed", "action", action, "behavior", name, "error", err)
		redirectWithFlash(c, "/", err.Error())
		return
	}
	redirectWithFlash(c, "/", fmt.Sprintf("%s: %d%% → %d%%", out.Change.Name, out.Change.Before, out.Change.After))
}

type tablePage struct {
	Flash     string
	Error     string
	Behaviors []behaviordto.BehaviorOutput
}

func (h *DashboardHandler) Table(c *gin.Context) {
	page := tablePage{Flash: c.Query("flash")}
	behaviors, err := h.behaviors.ListBehaviors(c.Request.Context())
	if err != nil {
		h.log.Error("table load failed", "error", err)
		page.Error = err.Error()
		c.HTML(http.StatusInternalServerError, "table.html", page)
		return
	}
	page.Behaviors = behaviors
	c.HTML(http.StatusOK, "table.html", page)
}

// AddBehavior handles the table page's add form.
func (h *DashboardHandler) AddBehavior(c *gin.Context) {
	input := behaviordto.AddInput{
		Name:       c.PostForm("name"),
		Category:   c.PostForm("category"),
		PromptTime: c.PostForm("prompt_time"),
		UpEmoji:    c.PostForm("up_emoji"),
		DownEmoji:  c.PostForm("down_emoji"),
	}
	if raw := strings.TrimSpace(c.PostForm("probability")); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			redirectWithFlash(c, "/table", fmt.Sprintf("probability %q is not a whole number", raw))
			return
		}
		input.Probability = p
	}
	out, err := h.behaviors.AddBehavior(c.Request.Context(), input)
	if err != nil {
		h.tableFailed(c, "add", input.Name, err)
		return
	}
	redirectWithFlash(c, "/table", fmt.Sprintf("added %s at %d%%", out.Name, out.Probability))
}

// EditBehavior handles the edit form. Blank fields are left unchanged.
func (h *DashboardHandler) EditBehavior(c *gin.Context) {
	input := behaviordto.EditInput{
		Name:       c.PostForm("name"),
		Category:   formField(c, "category"),
		PromptTime: formField(c, "prompt_time"),
		UpEmoji:    formField(c, "up_emoji"),
		DownEmoji:  formField(c, "down_emoji"),
	}
	out, err := h.behaviors.EditBehavior(c.Request.Context(), input)
	if err != nil {
		h.tableFailed(c, "edit", input.Name, err)
		return
	}
	redirectWithFlash(c, "/table", "updated "+out.Name)
}

func (h *DashboardHandler) SetProbability(c *gin.Context) {
	name := c.PostForm("name")
	raw := strings.TrimSpace(c.PostForm("probability"))
	p, err := strconv.Atoi(raw)
	if err != nil {
		redirectWithFlash(c, "/table", fmt.Sprintf("probability %q is not a whole number", raw))
		return
	}
	out, err := h.behaviors.SetProbability(c.Request.Context(), behaviordto.SetProbabilityInput{Name: name, Probability: p})
	if err != nil {
		h.tableFailed(c, "set probability", name, err)
		return
	}
	redirectWithFlash(c, "/table", fmt.Sprintf("%s: %d%% → %d%%", out.Name, out.Before, out.After))
}

func (h *DashboardHandler) RemoveBehavior(c *gin.Context) {
	name := c.PostForm("name")
	if err := h.behaviors.RemoveBehavior(c.Request.Context(), name); err != nil {
		h.tableFailed(c, "remove", name, err)
		return
	}
	redirectWithFlash(c, "/table", "removed "+name)
}

func (h *DashboardHandler) tableFailed(c *gin.Context, action, name string, err error) {
	h.log.Warn("table action failed", "action", action, "behavior", name, "error", err)
	redirectWithFlash(c, "/table", err.Error())
}

func formField(c *gin.Context, key string) *string {
	v := c.PostForm(key)
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}

func redirectWithFlash(c *gin.Context, path, flash string) {
	c.Redirect(http.StatusSeeOther, path+"?flash="+url.QueryEscape(flash))
}
