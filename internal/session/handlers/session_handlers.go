package handlers

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	achievements "github.com/architect/learning-playground/internal/achievements/services"
	"github.com/architect/learning-playground/internal/common/errors"
	"github.com/architect/learning-playground/internal/common/middleware"
	"github.com/architect/learning-playground/internal/common/notify"
	"github.com/architect/learning-playground/internal/common/validation"
	"github.com/architect/learning-playground/internal/content"
	difficulty "github.com/architect/learning-playground/internal/difficulty/services"
	pmodels "github.com/architect/learning-playground/internal/progress/models"
	progress "github.com/architect/learning-playground/internal/progress/services"
	"github.com/architect/learning-playground/internal/session/models"
	"github.com/architect/learning-playground/internal/session/services"
)

// session pairs a live engine with the context it was created for.
// lastElapsed remembers the clock reading at the previous answer so each
// attempt reports its own duration; settlement caches the first settle
// response so repeated complete/fail calls never award twice.
type session struct {
	engine      *services.Engine
	questions   []models.Question
	classNumber int
	subjectID   string
	activityID  int
	createdAt   time.Time

	mu          sync.Mutex
	lastElapsed int
	settlement  gin.H
}

// SessionHandler manages live game sessions keyed by id
type SessionHandler struct {
	store      *progress.Store
	controller *difficulty.Controller
	evaluator  *achievements.Evaluator
	notifier   notify.Notifier
	scheduler  func() services.Scheduler

	mu       sync.RWMutex
	sessions map[string]*session
}

func NewSessionHandler(store *progress.Store, controller *difficulty.Controller, evaluator *achievements.Evaluator, notifier notify.Notifier) *SessionHandler {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &SessionHandler{
		store:      store,
		controller: controller,
		evaluator:  evaluator,
		notifier:   notifier,
		scheduler:  func() services.Scheduler { return services.NewWallScheduler() },
		sessions:   make(map[string]*session),
	}
}

// CreateSessionRequest starts a new game session for a class/subject
type CreateSessionRequest struct {
	ClassNumber int    `json:"classNumber" validate:"required,min=1,max=10"`
	SubjectID   string `json:"subjectId" validate:"required"`
	ActivityID  int    `json:"activityId" validate:"min=0"`
	GameName    string `json:"gameName"`
	MaxTime     int    `json:"maxTime" validate:"min=0"`
}

// AnswerRequest submits an answer for the current question
type AnswerRequest struct {
	QuestionID  string   `json:"questionId" validate:"required"`
	Answer      string   `json:"answer"`
	Answers     []string `json:"answers"`
	BonusPoints int      `json:"bonusPoints" validate:"min=0"`
}

// SetDifficultyRequest overrides the session's difficulty level
type SetDifficultyRequest struct {
	Level int `json:"level" validate:"required,min=1,max=5"`
}

// questionView is a question as sent to the client, answers stripped
type questionView struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
	Hint     string   `json:"hint,omitempty"`
	Points   int      `json:"points"`
}

func viewOf(questions []models.Question, hintsEnabled bool) []questionView {
	out := make([]questionView, len(questions))
	for i, q := range questions {
		out[i] = questionView{
			ID:       q.ID,
			Type:     q.Type,
			Question: q.Question,
			Options:  q.Options,
			Points:   q.Points,
		}
		if hintsEnabled {
			out[i].Hint = q.Hint
		}
	}
	return out
}

// CreateSession builds a difficulty-tuned config, draws questions and
// registers a new engine
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.JSONErrorResponse(c, errors.BadRequest("invalid session payload"))
		return
	}
	if verrs := validation.Validate(req); len(verrs) > 0 {
		middleware.JSONErrorResponse(c, errors.Validation("invalid session request", validation.Details(verrs)))
		return
	}

	base := models.GameConfig{
		ID:               req.SubjectID,
		Name:             req.GameName,
		MaxTime:          req.MaxTime,
		PointsPerCorrect: 10,
		XPMultiplier:     1,
	}
	cfg, err := h.controller.SessionConfig(req.ClassNumber, req.SubjectID, base)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	questions, err := content.RandomQuestions(req.SubjectID, cfg.MaxQuestions)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	cfg.MaxQuestions = len(questions)

	settings, err := h.controller.SettingsFor(req.ClassNumber, req.SubjectID)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	sess := &session{
		engine:      services.NewEngine(cfg, h.scheduler()),
		questions:   questions,
		classNumber: req.ClassNumber,
		subjectID:   req.SubjectID,
		activityID:  req.ActivityID,
		createdAt:   time.Now(),
	}

	id := uuid.NewString()
	h.mu.Lock()
	h.sessions[id] = sess
	h.mu.Unlock()

	c.JSON(201, gin.H{
		"sessionId": id,
		"config":    cfg,
		"settings":  settings,
		"questions": viewOf(questions, settings.HintsEnabled),
	})
}

// GetSession reports the session's current state and progress
func (h *SessionHandler) GetSession(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(200, gin.H{
		"state":         sess.engine.State(),
		"progress":      sess.engine.Progress(),
		"remainingTime": sess.engine.RemainingTime(),
	})
}

// ShowRules moves an idle session to the rules screen
func (h *SessionHandler) ShowRules(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}
	sess.engine.ShowRules()
	c.JSON(200, gin.H{"state": sess.engine.State()})
}

// StartSession begins play and starts the clock
func (h *SessionHandler) StartSession(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}
	sess.engine.Start()
	c.JSON(200, gin.H{"state": sess.engine.State()})
}

// PauseSession freezes play and the clock
func (h *SessionHandler) PauseSession(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}
	sess.engine.Pause()
	c.JSON(200, gin.H{"state": sess.engine.State()})
}

// ResumeSession continues a paused session
func (h *SessionHandler) ResumeSession(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}
	sess.engine.Resume()
	c.JSON(200, gin.H{"state": sess.engine.State()})
}

// ResetSession returns the session to idle with fresh progress. The next
// play-through settles on its own; the previous settlement no longer counts.
func (h *SessionHandler) ResetSession(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}
	sess.engine.Reset()
	sess.mu.Lock()
	sess.lastElapsed = 0
	sess.settlement = nil
	sess.mu.Unlock()
	c.JSON(200, gin.H{"state": sess.engine.State()})
}

// SubmitAnswer grades an answer, feeds the engine and the difficulty
// metrics, and reports the outcome
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}

	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.JSONErrorResponse(c, errors.BadRequest("invalid answer payload"))
		return
	}

	question, found := findQuestion(sess.questions, req.QuestionID)
	if !found {
		middleware.JSONErrorResponse(c, errors.NotFound("question"))
		return
	}

	correct := gradeAnswer(question, req)
	outcome, accepted := sess.engine.SubmitAnswer(correct, req.BonusPoints)
	if !accepted {
		middleware.JSONErrorResponse(c, errors.Conflict("session is not accepting answers"))
		return
	}

	if correct {
		h.notifier.Correct()
	} else {
		h.notifier.Incorrect()
	}

	// This answer's duration is the clock movement since the previous one
	elapsed := sess.engine.Progress().TimeElapsed
	sess.mu.Lock()
	spent := elapsed - sess.lastElapsed
	sess.lastElapsed = elapsed
	sess.mu.Unlock()

	if err := h.controller.RecordAttempt(sess.classNumber, sess.subjectID, correct, float64(spent)); err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	c.JSON(200, gin.H{
		"correct":      outcome.IsCorrect,
		"pointsEarned": outcome.PointsEarned,
		"progress":     sess.engine.Progress(),
		"state":        sess.engine.State(),
	})
}

// CompleteSession finishes the game and settles all rewards, records and
// difficulty adjustments
func (h *SessionHandler) CompleteSession(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}
	h.settle(c, sess, sess.engine.Complete())
}

// FailSession ends the game as failed
func (h *SessionHandler) FailSession(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}
	h.settle(c, sess, sess.engine.Fail())
}

// settle persists the result exactly once. A session that already settled
// replays the cached response, so a duplicate complete or fail call awards
// nothing further.
func (h *SessionHandler) settle(c *gin.Context, sess *session, result models.GameResult) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.settlement != nil {
		c.JSON(200, sess.settlement)
		return
	}

	prog := sess.engine.Progress()

	err := h.store.CompleteActivity(
		sess.classNumber, sess.subjectID, pmodels.ActivityPlay, sess.activityID,
		result.Score, result.XPEarned, result.Accuracy, result.Stars, result.TimeSpent,
	)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	award, err := h.store.AddXP(result.XPEarned)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	milestones, err := h.evaluator.CheckXPMilestones(award.NewTotal)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	unlocked, err := h.evaluator.CheckGameCompletion(achievements.GameStats{
		ClassNumber:    sess.classNumber,
		SubjectID:      sess.subjectID,
		Score:          result.Score,
		Accuracy:       result.Accuracy,
		MaxStreak:      prog.MaxStreak,
		CorrectAnswers: prog.CorrectAnswers,
		TimeSpent:      result.TimeSpent,
		Passed:         result.Passed,
	})
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	adjustment, err := h.controller.RecordGameCompletion(sess.classNumber, sess.subjectID, result.Accuracy)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	h.notifier.Complete()

	sess.settlement = gin.H{
		"result":       result,
		"xp":           award,
		"achievements": append(unlocked, milestones...),
		"difficulty":   adjustment,
	}
	c.JSON(200, sess.settlement)
}

// SetDifficulty rescales the live session's time budget
func (h *SessionHandler) SetDifficulty(c *gin.Context) {
	sess, ok := h.lookup(c)
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

	sess.engine.SetDifficulty(req.Level)
	c.JSON(200, gin.H{"config": sess.engine.Config()})
}

// DestroySession tears down the engine and removes the session
func (h *SessionHandler) DestroySession(c *gin.Context) {
	id := c.Param("id")

	h.mu.Lock()
	sess, ok := h.sessions[id]
	delete(h.sessions, id)
	h.mu.Unlock()

	if !ok {
		middleware.JSONErrorResponse(c, errors.NotFound("session"))
		return
	}
	sess.engine.Destroy()
	c.JSON(200, gin.H{"success": true})
}

func (h *SessionHandler) lookup(c *gin.Context) (*session, bool) {
	h.mu.RLock()
	sess, ok := h.sessions[c.Param("id")]
	h.mu.RUnlock()
	if !ok {
		middleware.JSONErrorResponse(c, errors.NotFound("session"))
		return nil, false
	}
	return sess, true
}

func findQuestion(questions []models.Question, id string) (models.Question, bool) {
	for _, q := range questions {
		if q.ID == id {
			return q, true
		}
	}
	return models.Question{}, false
}

func gradeAnswer(q models.Question, req AnswerRequest) bool {
	if len(req.Answers) > 0 {
		return content.CheckMultiAnswer(req.Answers, q.CorrectAnswers)
	}
	return content.CheckAnswer(req.Answer, q.CorrectAnswers)
}
