package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/architect/learning-playground/internal/achievements/services"
	"github.com/architect/learning-playground/internal/common/errors"
	"github.com/architect/learning-playground/internal/common/middleware"
)

// AchievementHandler serves the badge catalog and progress endpoints
type AchievementHandler struct {
	evaluator *services.Evaluator
}

func NewAchievementHandler(evaluator *services.Evaluator) *AchievementHandler {
	return &AchievementHandler{evaluator: evaluator}
}

// GetAchievements returns every badge with its current progress
func (h *AchievementHandler) GetAchievements(c *gin.Context) {
	c.JSON(200, gin.H{
		"achievements": h.evaluator.GetAllAchievements(),
		"unlocked":     h.evaluator.UnlockedCount(),
		"total":        h.evaluator.TotalCount(),
	})
}

// GetAchievement returns a single badge by id
func (h *AchievementHandler) GetAchievement(c *gin.Context) {
	id := c.Param("id")
	for _, a := range h.evaluator.GetAllAchievements() {
		if a.ID == id {
			c.JSON(200, a)
			return
		}
	}
	middleware.JSONErrorResponse(c, errors.NotFound("achievement"))
}
