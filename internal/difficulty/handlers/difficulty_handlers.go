package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/architect/learning-playground/internal/common/errors"
	"github.com/architect/learning-playground/internal/common/middleware"
	"github.com/architect/learning-playground/internal/common/validation"
	"github.com/architect/learning-playground/internal/difficulty/models"
	"github.com/architect/learning-playground/internal/difficulty/services"
)

// DifficultyHandler serves per class/subject difficulty endpoints
type DifficultyHandler struct {
	controller *services.Controller
}

func NewDifficultyHandler(controller *services.Controller) *DifficultyHandler {
	return &DifficultyHandler{controller: controller}
}

// SetDifficultyRequest overrides the level for a class/subject pair
type SetDifficultyRequest struct {
	Level int `json:"level" validate:"required,min=1,max=5"`
}

// GetMetrics returns the tracked metrics and active level for a pair
func (h *DifficultyHandler) GetMetrics(c *gin.Context) {
	classNumber, subjectID, ok := h.pairParams(c)
	if !ok {
		return
	}

	metrics, err := h.controller.GetMetrics(classNumber, subjectID)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(200, gin.H{
		"metrics":  metrics,
		"accuracy": metrics.Accuracy(),
		"label":    models.LabelForLevel(metrics.CurrentDifficulty),
	})
}

// GetSettings returns the gameplay preset for the pair's active level
func (h *DifficultyHandler) GetSettings(c *gin.Context) {
	classNumber, subjectID, ok := h.pairParams(c)
	if !ok {
		return
	}

	settings, err := h.controller.SettingsFor(classNumber, subjectID)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(200, settings)
}

// SetDifficulty overrides the level for a pair
func (h *DifficultyHandler) SetDifficulty(c *gin.Context) {
	classNumber, subjectID, ok := h.pairParams(c)
	if !ok {
		return
	}

	var req SetDifficultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.JSONErrorResponse(c, errors.BadRequest("invalid difficulty payload"))
		return
	}
	if verrs := validation.Validate(req); len(verrs) > 0 {
		middleware.JSONErrorResponse(c, errors.Validation("invalid difficulty level", validation.Details(verrs)))
		return
	}

	if err := h.controller.SetDifficulty(classNumber, subjectID, req.Level); err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(200, gin.H{
		"level": req.Level,
		"label": models.LabelForLevel(req.Level),
	})
}

// ResetProgress drops the pair's tracked metrics
func (h *DifficultyHandler) ResetProgress(c *gin.Context) {
	classNumber, subjectID, ok := h.pairParams(c)
	if !ok {
		return
	}

	if err := h.controller.ResetProgress(classNumber, subjectID); err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(200, gin.H{"success": true})
}

func (h *DifficultyHandler) pairParams(c *gin.Context) (int, string, bool) {
	classNumber, err := strconv.Atoi(c.Param("class"))
	if err != nil {
		middleware.JSONErrorResponse(c, errors.BadRequest("class must be a number"))
		return 0, "", false
	}
	if verr := validation.ValidateClassNumber(classNumber); verr != nil {
		middleware.JSONErrorResponse(c, errors.BadRequest(verr.Error()))
		return 0, "", false
	}

	subjectID := c.Param("subject")
	if subjectID == "" {
		middleware.JSONErrorResponse(c, errors.BadRequest("subject is required"))
		return 0, "", false
	}
	return classNumber, subjectID, true
}
