package notify

import (
	"github.com/architect/learning-playground/pkg/logger"
	"go.uber.org/zap"
)

// Notifier is the fire-and-forget sink for player-facing feedback events
// (sounds, toasts). The core triggers it and never waits on the outcome.
type Notifier interface {
	Correct()
	Incorrect()
	Complete()
	AchievementUnlocked(id, name string)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Correct()                        {}
func (Nop) Incorrect()                      {}
func (Nop) Complete()                       {}
func (Nop) AchievementUnlocked(_, _ string) {}

// Log writes events to the structured log, the default sink for the API
// server where the browser UI owns actual sound playback.
type Log struct{}

func (Log) Correct() {
	logger.Debug("feedback event", zap.String("event", "correct"))
}

func (Log) Incorrect() {
	logger.Debug("feedback event", zap.String("event", "incorrect"))
}

func (Log) Complete() {
	logger.Debug("feedback event", zap.String("event", "complete"))
}

func (Log) AchievementUnlocked(id, name string) {
	logger.Info("achievement unlocked",
		zap.String("id", id),
		zap.String("name", name),
	)
}
