package services

import (
	"math"
	"sync"
	"time"

	"github.com/architect/learning-playground/internal/session/models"
)

// Streak bonus per answer is min(streak-1, streakBonusCap) * streakBonusStep
const (
	streakBonusStep = 5
	streakBonusCap  = 5
)

// Engine is the per-activity state machine. It owns the session's progress
// for exactly one play-through: idle -> rules (optional) -> playing <->
// paused -> completed | failed. Invalid transitions are silent no-ops; the
// UI calls these defensively during render races.
//
// Persistence is the caller's job: the engine hands out a GameResult from
// Complete or Fail and never writes anywhere itself.
type Engine struct {
	mu        sync.Mutex
	state     models.GameState
	config    models.GameConfig
	progress  models.GameProgress
	result    *models.GameResult
	scheduler Scheduler
	stopTick  func()
	emitter   *emitter
}

// NewEngine creates an idle engine for one session
func NewEngine(config models.GameConfig, scheduler Scheduler) *Engine {
	e := &Engine{
		state:     models.StateIdle,
		config:    config,
		scheduler: scheduler,
		emitter:   newEmitter(),
	}
	e.progress = e.initialProgress()
	return e
}

func (e *Engine) initialProgress() models.GameProgress {
	total := e.config.MaxQuestions
	if total == 0 {
		total = 10
	}
	return models.GameProgress{TotalQuestions: total}
}

// State returns the current lifecycle state
func (e *Engine) State() models.GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Progress returns a copy of the current progress
func (e *Engine) Progress() models.GameProgress {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.progress
}

// Config returns a copy of the session configuration
func (e *Engine) Config() models.GameConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.config
}

// RemainingTime returns the seconds left before timeout, or -1 for untimed
// sessions
func (e *Engine) RemainingTime() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.config.MaxTime == 0 {
		return -1
	}
	remaining := e.config.MaxTime - e.progress.TimeElapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ========== SUBSCRIPTIONS ==========

// OnStateChange registers a state listener; the returned func unsubscribes
func (e *Engine) OnStateChange(fn func(models.GameState)) func() {
	return e.emitter.onState(fn)
}

// OnProgressChange registers a progress listener
func (e *Engine) OnProgressChange(fn func(models.GameProgress)) func() {
	return e.emitter.onProgress(fn)
}

// OnTimeUpdate registers an elapsed-seconds listener
func (e *Engine) OnTimeUpdate(fn func(int)) func() {
	return e.emitter.onTime(fn)
}

// ========== LIFECYCLE ==========

// ShowRules moves idle -> rules; a no-op from any other state
func (e *Engine) ShowRules() {
	e.mu.Lock()
	var events []event
	if e.state == models.StateIdle {
		events = e.setStateLocked(models.StateRules)
	}
	e.mu.Unlock()
	e.emitter.flush(events)
}

// Start begins play from idle or rules with fresh progress and starts the
// 1-second elapsed-time ticker
func (e *Engine) Start() {
	e.mu.Lock()
	var events []event
	if e.state == models.StateIdle || e.state == models.StateRules {
		e.progress = e.initialProgress()
		e.result = nil
		events = e.setStateLocked(models.StatePlaying)
		e.startTickerLocked()
	}
	e.mu.Unlock()
	e.emitter.flush(events)
}

// Pause suspends play; time does not advance while paused
func (e *Engine) Pause() {
	e.mu.Lock()
	var events []event
	if e.state == models.StatePlaying {
		events = e.setStateLocked(models.StatePaused)
		e.stopTickerLocked()
	}
	e.mu.Unlock()
	e.emitter.flush(events)
}

// Resume restarts the ticker after a pause
func (e *Engine) Resume() {
	e.mu.Lock()
	var events []event
	if e.state == models.StatePaused {
		events = e.setStateLocked(models.StatePlaying)
		e.startTickerLocked()
	}
	e.mu.Unlock()
	e.emitter.flush(events)
}

// Reset returns the engine to idle with fresh progress. It never
// auto-restarts; the caller decides when to Start again.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.stopTickerLocked()
	e.progress = e.initialProgress()
	e.result = nil
	events := []event{progressEvent(e.progress)}
	events = append(events, e.setStateLocked(models.StateIdle)...)
	e.mu.Unlock()
	e.emitter.flush(events)
}

// Complete ends the session successfully and returns the result. Calling it
// again once terminal is a no-op returning the already-computed result.
func (e *Engine) Complete() models.GameResult {
	return e.finish(models.StateCompleted)
}

// Fail ends the session unsuccessfully and returns the result
func (e *Engine) Fail() models.GameResult {
	return e.finish(models.StateFailed)
}

func (e *Engine) finish(terminal models.GameState) models.GameResult {
	e.mu.Lock()
	if e.state.Terminal() {
		result := *e.result
		e.mu.Unlock()
		return result
	}
	events := e.finishLocked(terminal)
	result := *e.result
	e.mu.Unlock()
	e.emitter.flush(events)
	return result
}

// finishLocked stops the ticker, fixes the result snapshot and transitions
// to the terminal state
func (e *Engine) finishLocked(terminal models.GameState) []event {
	e.stopTickerLocked()
	events := e.setStateLocked(terminal)
	result := e.calculateResult()
	e.result = &result
	return events
}

// Destroy stops the ticker and detaches every subscriber. A destroyed
// engine fires no further callbacks.
func (e *Engine) Destroy() {
	e.mu.Lock()
	e.stopTickerLocked()
	e.mu.Unlock()
	e.emitter.clear()
}

// ========== SCORING ==========

// SubmitAnswer records one answer while playing. Outside the playing state
// the call is rejected (accepted=false) and no counter moves.
//
// Correct answers earn pointsPerCorrect + bonusPoints + a streak bonus of
// min(streak-1, 5)*5. Wrong answers earn pointsPerWrong (possibly
// negative), reset the streak, and the running score never drops below 0.
func (e *Engine) SubmitAnswer(isCorrect bool, bonusPoints int) (models.AnswerOutcome, bool) {
	e.mu.Lock()
	if e.state != models.StatePlaying {
		e.mu.Unlock()
		return models.AnswerOutcome{}, false
	}

	pointsEarned := 0
	if isCorrect {
		e.progress.CorrectAnswers++
		e.progress.Streak++
		if e.progress.Streak > e.progress.MaxStreak {
			e.progress.MaxStreak = e.progress.Streak
		}

		streak := e.progress.Streak - 1
		if streak > streakBonusCap {
			streak = streakBonusCap
		}
		pointsEarned = e.config.PointsPerCorrect + bonusPoints + streak*streakBonusStep
	} else {
		e.progress.WrongAnswers++
		e.progress.Streak = 0
		pointsEarned = e.config.PointsPerWrong
	}

	e.progress.Score += pointsEarned
	if e.progress.Score < 0 {
		e.progress.Score = 0
	}
	e.progress.CurrentQuestion++

	events := []event{progressEvent(e.progress)}

	// Answering the last configured question completes the session
	if e.config.MaxQuestions > 0 && e.progress.CurrentQuestion >= e.config.MaxQuestions {
		events = append(events, e.finishLocked(models.StateCompleted)...)
	}

	outcome := models.AnswerOutcome{PointsEarned: pointsEarned, IsCorrect: isCorrect}
	e.mu.Unlock()
	e.emitter.flush(events)
	return outcome, true
}

// ========== TIMER ==========

func (e *Engine) startTickerLocked() {
	if e.stopTick != nil {
		return
	}
	e.stopTick = e.scheduler.Every(time.Second, e.tick)
}

func (e *Engine) stopTickerLocked() {
	if e.stopTick != nil {
		e.stopTick()
		e.stopTick = nil
	}
}

// tick advances elapsed time by one second and checks the time limit
func (e *Engine) tick() {
	e.mu.Lock()
	if e.state != models.StatePlaying {
		e.mu.Unlock()
		return
	}

	e.progress.TimeElapsed++
	events := []event{timeEvent(e.progress.TimeElapsed)}

	if e.config.MaxTime > 0 && e.progress.TimeElapsed >= e.config.MaxTime {
		events = append(events, e.finishLocked(models.StateCompleted)...)
	}
	e.mu.Unlock()
	e.emitter.flush(events)
}

// ========== RESULTS ==========

// calculateResult derives the final result purely from progress and config
func (e *Engine) calculateResult() models.GameResult {
	totalAnswers := e.progress.CorrectAnswers + e.progress.WrongAnswers
	accuracy := 0.0
	if totalAnswers > 0 {
		accuracy = float64(e.progress.CorrectAnswers) / float64(totalAnswers) * 100
	}

	// Stars: boundary values belong to the higher tier
	stars := 0
	if accuracy >= 50 {
		stars = 1
	}
	if accuracy >= 75 {
		stars = 2
	}
	if accuracy >= 90 {
		stars = 3
	}

	baseXP := float64(e.progress.Score) * e.config.XPMultiplier
	streakBonus := float64(e.progress.MaxStreak * 2)
	accuracyBonus := math.Floor(accuracy / 10)
	timeBonus := 0.0
	if e.config.MaxTime > 0 {
		timeBonus = math.Max(0, math.Floor(float64(e.config.MaxTime-e.progress.TimeElapsed)/10))
	}

	return models.GameResult{
		Score:     e.progress.Score,
		XPEarned:  int(math.Floor(baseXP + streakBonus + accuracyBonus + timeBonus)),
		Stars:     stars,
		Accuracy:  accuracy,
		TimeSpent: e.progress.TimeElapsed,
		Completed: e.state == models.StateCompleted,
		Passed:    accuracy >= 50,
	}
}

// setStateLocked transitions to newState and queues the notification
func (e *Engine) setStateLocked(newState models.GameState) []event {
	e.state = newState
	return []event{stateEvent(newState)}
}

// SetDifficulty rescales the session's time budget for a difficulty level
// before play begins. Levels outside 1-5 are ignored.
func (e *Engine) SetDifficulty(level int) {
	if level < 1 || level > 5 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.config.DifficultyLevel = level
	if e.config.MaxTime > 0 {
		multipliers := []float64{1.5, 1.25, 1, 0.85, 0.7}
		e.config.MaxTime = int(math.Floor(float64(e.config.MaxTime) * multipliers[level-1]))
	}
}
