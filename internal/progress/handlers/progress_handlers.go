package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	achievements "github.com/architect/learning-playground/internal/achievements/services"
	"github.com/architect/learning-playground/internal/common/errors"
	"github.com/architect/learning-playground/internal/common/middleware"
	"github.com/architect/learning-playground/internal/common/validation"
	"github.com/architect/learning-playground/internal/progress/models"
	"github.com/architect/learning-playground/internal/progress/services"
)

// ProgressHandler serves player profile, progress and settings endpoints
type ProgressHandler struct {
	store     *services.Store
	evaluator *achievements.Evaluator
}

func NewProgressHandler(store *services.Store, evaluator *achievements.Evaluator) *ProgressHandler {
	return &ProgressHandler{store: store, evaluator: evaluator}
}

// CompleteActivityRequest records a finished activity outside a live session
type CompleteActivityRequest struct {
	ClassNumber  int     `json:"classNumber" validate:"required,min=1,max=10"`
	SubjectID    string  `json:"subjectId" validate:"required"`
	ActivityType string  `json:"activityType" validate:"required"`
	ActivityID   int     `json:"activityId" validate:"min=0"`
	Score        int     `json:"score" validate:"min=0"`
	XPEarned     int     `json:"xpEarned" validate:"min=0"`
	Accuracy     float64 `json:"accuracy" validate:"min=0,max=100"`
	Stars        int     `json:"stars" validate:"min=0,max=3"`
	TimeSpent    int     `json:"timeSpent" validate:"min=0"`
}

// AddXPRequest awards XP directly
type AddXPRequest struct {
	Amount int `json:"amount" validate:"required,min=1"`
}

// SelectionRequest sets the active class and subject
type SelectionRequest struct {
	ClassNumber int    `json:"classNumber" validate:"required,min=1,max=10"`
	SubjectID   string `json:"subjectId" validate:"required"`
}

// GetProfile returns the player profile with level details
func (h *ProgressHandler) GetProfile(c *gin.Context) {
	profile := h.store.GetProfile()
	level := services.CalculateLevel(profile.TotalXP)

	c.JSON(200, gin.H{
		"profile":   profile,
		"xpForNext": level.XPForNext,
		"xpInLevel": level.XPInLevel,
	})
}

// UpdateProfile applies partial profile updates
func (h *ProgressHandler) UpdateProfile(c *gin.Context) {
	var req models.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.JSONErrorResponse(c, errors.BadRequest("invalid profile payload"))
		return
	}

	profile, err := h.store.UpdateProfile(req)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(200, profile)
}

// AddXP awards XP and reports any level up
func (h *ProgressHandler) AddXP(c *gin.Context) {
	var req AddXPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.JSONErrorResponse(c, errors.BadRequest("invalid xp payload"))
		return
	}
	if verrs := validation.Validate(req); len(verrs) > 0 {
		middleware.JSONErrorResponse(c, errors.Validation("invalid xp amount", validation.Details(verrs)))
		return
	}

	award, err := h.store.AddXP(req.Amount)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	unlocked, err := h.evaluator.CheckXPMilestones(award.NewTotal)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(200, gin.H{
		"award":        award,
		"achievements": unlocked,
	})
}

// GetProgress returns the full progress tree
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	c.JSON(200, h.store.GetProgress())
}

// SetSelection stores the active class and subject
func (h *ProgressHandler) SetSelection(c *gin.Context) {
	var req SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.JSONErrorResponse(c, errors.BadRequest("invalid selection payload"))
		return
	}
	if verrs := validation.Validate(req); len(verrs) > 0 {
		middleware.JSONErrorResponse(c, errors.Validation("invalid selection", validation.Details(verrs)))
		return
	}

	if err := h.store.SetCurrentSelection(req.ClassNumber, req.SubjectID); err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(200, gin.H{"success": true})
}

// GetClassProgress returns one class's branch of the progress tree
func (h *ProgressHandler) GetClassProgress(c *gin.Context) {
	classNumber, ok := h.classParam(c)
	if !ok {
		return
	}

	cp, err := h.store.GetClassProgress(classNumber)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(200, cp)
}

// GetSubjectProgress returns one subject's branch of the progress tree
func (h *ProgressHandler) GetSubjectProgress(c *gin.Context) {
	classNumber, ok := h.classParam(c)
	if !ok {
		return
	}

	sp, err := h.store.GetSubjectProgress(classNumber, c.Param("subject"))
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(200, sp)
}

// CompleteActivity records a finished activity and its earned rewards
func (h *ProgressHandler) CompleteActivity(c *gin.Context) {
	var req CompleteActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.JSONErrorResponse(c, errors.BadRequest("invalid activity payload"))
		return
	}
	if verrs := validation.Validate(req); len(verrs) > 0 {
		middleware.JSONErrorResponse(c, errors.Validation("invalid activity", validation.Details(verrs)))
		return
	}
	activityType := models.ActivityType(req.ActivityType)
	if !activityType.Valid() {
		middleware.JSONErrorResponse(c, errors.Unprocessable("unknown activity type", req.ActivityType))
		return
	}

	err := h.store.CompleteActivity(
		req.ClassNumber, req.SubjectID, activityType, req.ActivityID,
		req.Score, req.XPEarned, req.Accuracy, req.Stars, req.TimeSpent,
	)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	award, err := h.store.AddXP(req.XPEarned)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	unlocked, err := h.evaluator.CheckXPMilestones(award.NewTotal)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(200, gin.H{
		"success":      true,
		"xp":           award,
		"achievements": unlocked,
	})
}

// GetAnalytics returns the recent activity log
func (h *ProgressHandler) GetAnalytics(c *gin.Context) {
	c.JSON(200, h.store.GetAnalytics())
}

// GetWeeklyStats returns per-day XP and accuracy for the last 7 days
func (h *ProgressHandler) GetWeeklyStats(c *gin.Context) {
	c.JSON(200, h.store.GetWeeklyStats())
}

// GetInsights returns strongest and weakest subjects for a class
func (h *ProgressHandler) GetInsights(c *gin.Context) {
	classNumber, ok := h.classParam(c)
	if !ok {
		return
	}
	c.JSON(200, h.store.GetStrengthsAndWeaknesses(classNumber))
}

// GetSettings returns stored game settings
func (h *ProgressHandler) GetSettings(c *gin.Context) {
	c.JSON(200, h.store.GetSettings())
}

// UpdateSettings applies partial settings updates
func (h *ProgressHandler) UpdateSettings(c *gin.Context) {
	var req models.SettingsUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.JSONErrorResponse(c, errors.BadRequest("invalid settings payload"))
		return
	}

	settings, err := h.store.UpdateSettings(req)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(200, settings)
}

// ClearData wipes all stored player data
func (h *ProgressHandler) ClearData(c *gin.Context) {
	if err := h.store.ClearAll(); err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(200, gin.H{"success": true})
}

func (h *ProgressHandler) classParam(c *gin.Context) (int, bool) {
	classNumber, err := strconv.Atoi(c.Param("class"))
	if err != nil {
		middleware.JSONErrorResponse(c, errors.BadRequest("class must be a number"))
		return 0, false
	}
	if verr := validation.ValidateClassNumber(classNumber); verr != nil {
		middleware.JSONErrorResponse(c, errors.BadRequest(verr.Error()))
		return 0, false
	}
	return classNumber, true
}
