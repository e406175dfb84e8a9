package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	achievementServices "github.com/architect/learning-playground/internal/achievements/services"
	"github.com/architect/learning-playground/internal/common/database"
	"github.com/architect/learning-playground/internal/common/middleware"
	"github.com/architect/learning-playground/internal/common/notify"
	"github.com/architect/learning-playground/internal/content"
	difficultyServices "github.com/architect/learning-playground/internal/difficulty/services"
	"github.com/architect/learning-playground/internal/progress/repository"
	progressServices "github.com/architect/learning-playground/internal/progress/services"
	"github.com/architect/learning-playground/internal/session/services"
)

// feedbackRecorder captures fire-and-forget feedback events for assertions
type feedbackRecorder struct {
	mu     sync.Mutex
	events []string
}

func (r *feedbackRecorder) record(event string) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

func (r *feedbackRecorder) Correct()                        { r.record("correct") }
func (r *feedbackRecorder) Incorrect()                      { r.record("incorrect") }
func (r *feedbackRecorder) Complete()                       { r.record("complete") }
func (r *feedbackRecorder) AchievementUnlocked(_, _ string) {}

func (r *feedbackRecorder) count(event string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e == event {
			n++
		}
	}
	return n
}

type testEnv struct {
	router     *gin.Engine
	scheduler  *services.ManualScheduler
	store      *progressServices.Store
	controller *difficultyServices.Controller
	feedback   *feedbackRecorder
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.ConnectInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	kv, err := repository.NewKVRepository(db)
	require.NoError(t, err)

	store := progressServices.NewStore(kv)
	controller := difficultyServices.NewController(kv)
	evaluator := achievementServices.NewEvaluator(store, notify.Nop{})
	feedback := &feedbackRecorder{}

	scheduler := services.NewManualScheduler()
	handler := NewSessionHandler(store, controller, evaluator, feedback)
	handler.scheduler = func() services.Scheduler { return scheduler }

	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.POST("/sessions", handler.CreateSession)
	router.GET("/sessions/:id", handler.GetSession)
	router.POST("/sessions/:id/start", handler.StartSession)
	router.POST("/sessions/:id/pause", handler.PauseSession)
	router.POST("/sessions/:id/answer", handler.SubmitAnswer)
	router.POST("/sessions/:id/complete", handler.CompleteSession)
	router.DELETE("/sessions/:id", handler.DestroySession)

	return &testEnv{
		router:     router,
		scheduler:  scheduler,
		store:      store,
		controller: controller,
		feedback:   feedback,
	}
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

// mathAnswers maps question ids to a correct answer from the bank
func mathAnswers(t *testing.T) map[string]string {
	t.Helper()
	bank, err := content.QuestionsForSubject("math")
	require.NoError(t, err)
	answers := make(map[string]string)
	for _, q := range bank {
		answers[q.ID] = q.CorrectAnswers[0]
	}
	return answers
}

func TestCreateSession(t *testing.T) {
	env := setupTestEnv(t)

	w, body := doJSON(t, env.router, "POST", "/sessions", CreateSessionRequest{
		ClassNumber: 3,
		SubjectID:   "math",
		ActivityID:  1,
		GameName:    "Quick Quiz",
	})
	require.Equal(t, 201, w.Code)
	assert.NotEmpty(t, body["sessionId"])

	// Class 3 starts at level 1: five questions, hints on
	questions := body["questions"].([]interface{})
	assert.Len(t, questions, 5)
	settings := body["settings"].(map[string]interface{})
	assert.Equal(t, true, settings["hintsEnabled"])
	assert.Equal(t, float64(1), settings["level"])
}

func TestCreateSession_UnknownSubject(t *testing.T) {
	env := setupTestEnv(t)

	w, _ := doJSON(t, env.router, "POST", "/sessions", CreateSessionRequest{
		ClassNumber: 3,
		SubjectID:   "philosophy",
	})
	assert.Equal(t, 404, w.Code)
}

func TestSessionNotFound(t *testing.T) {
	env := setupTestEnv(t)

	w, _ := doJSON(t, env.router, "GET", "/sessions/nope", nil)
	assert.Equal(t, 404, w.Code)
}

func TestSessionPlayThrough(t *testing.T) {
	env := setupTestEnv(t)

	w, created := doJSON(t, env.router, "POST", "/sessions", CreateSessionRequest{
		ClassNumber: 3,
		SubjectID:   "math",
		ActivityID:  1,
	})
	require.Equal(t, 201, w.Code)
	id := created["sessionId"].(string)

	w, body := doJSON(t, env.router, "POST", "/sessions/"+id+"/start", nil)
	require.Equal(t, 200, w.Code)
	assert.Equal(t, "playing", body["state"])

	answers := mathAnswers(t)
	questions := created["questions"].([]interface{})
	for _, raw := range questions {
		q := raw.(map[string]interface{})
		qid := q["id"].(string)

		w, body = doJSON(t, env.router, "POST", "/sessions/"+id+"/answer", AnswerRequest{
			QuestionID: qid,
			Answer:     answers[qid],
		})
		require.Equal(t, 200, w.Code)
		assert.Equal(t, true, body["correct"])
	}

	// Answering the last question completed the session
	assert.Equal(t, "completed", body["state"])

	w, body = doJSON(t, env.router, "POST", "/sessions/"+id+"/complete", nil)
	require.Equal(t, 200, w.Code)

	result := body["result"].(map[string]interface{})
	assert.Equal(t, float64(100), result["accuracy"])
	assert.Equal(t, float64(3), result["stars"])
	assert.Equal(t, true, result["passed"])

	unlocked := body["achievements"].([]interface{})
	ids := make([]string, 0, len(unlocked))
	for _, raw := range unlocked {
		ids = append(ids, raw.(map[string]interface{})["id"].(string))
	}
	assert.Contains(t, ids, "first_game")
	assert.Contains(t, ids, "first_win")
	assert.Contains(t, ids, "perfect_score")
}

func TestCompleteSession_SettlesOnce(t *testing.T) {
	env := setupTestEnv(t)

	_, created := doJSON(t, env.router, "POST", "/sessions", CreateSessionRequest{
		ClassNumber: 3,
		SubjectID:   "math",
		ActivityID:  1,
	})
	id := created["sessionId"].(string)
	doJSON(t, env.router, "POST", "/sessions/"+id+"/start", nil)

	answers := mathAnswers(t)
	qid := created["questions"].([]interface{})[0].(map[string]interface{})["id"].(string)
	doJSON(t, env.router, "POST", "/sessions/"+id+"/answer", AnswerRequest{
		QuestionID: qid,
		Answer:     answers[qid],
	})

	w, first := doJSON(t, env.router, "POST", "/sessions/"+id+"/complete", nil)
	require.Equal(t, 200, w.Code)
	awarded := env.store.GetProfile().TotalXP
	assert.Greater(t, awarded, 0)

	// A duplicate call replays the first response and awards nothing more
	w, second := doJSON(t, env.router, "POST", "/sessions/"+id+"/complete", nil)
	require.Equal(t, 200, w.Code)
	assert.Equal(t, first, second)
	assert.Equal(t, awarded, env.store.GetProfile().TotalXP)
	assert.Len(t, env.store.GetAnalytics(), 1)
}

func TestSubmitAnswer_RecordsPerAnswerDuration(t *testing.T) {
	env := setupTestEnv(t)

	_, created := doJSON(t, env.router, "POST", "/sessions", CreateSessionRequest{
		ClassNumber: 3,
		SubjectID:   "math",
	})
	id := created["sessionId"].(string)
	doJSON(t, env.router, "POST", "/sessions/"+id+"/start", nil)

	answers := mathAnswers(t)
	questions := created["questions"].([]interface{})
	for i := 0; i < 2; i++ {
		env.scheduler.Advance(10)
		qid := questions[i].(map[string]interface{})["id"].(string)
		w, _ := doJSON(t, env.router, "POST", "/sessions/"+id+"/answer", AnswerRequest{
			QuestionID: qid,
			Answer:     answers[qid],
		})
		require.Equal(t, 200, w.Code)
	}

	// Two answers at a steady 10s pace average to 10, not to the growing
	// total elapsed time
	m, err := env.controller.GetMetrics(3, "math")
	require.NoError(t, err)
	assert.InDelta(t, 10.0, m.AverageTime, 0.001)
}

func TestFeedbackEvents(t *testing.T) {
	env := setupTestEnv(t)

	_, created := doJSON(t, env.router, "POST", "/sessions", CreateSessionRequest{
		ClassNumber: 3,
		SubjectID:   "math",
	})
	id := created["sessionId"].(string)
	doJSON(t, env.router, "POST", "/sessions/"+id+"/start", nil)

	answers := mathAnswers(t)
	questions := created["questions"].([]interface{})
	q0 := questions[0].(map[string]interface{})["id"].(string)
	q1 := questions[1].(map[string]interface{})["id"].(string)

	doJSON(t, env.router, "POST", "/sessions/"+id+"/answer", AnswerRequest{QuestionID: q0, Answer: answers[q0]})
	doJSON(t, env.router, "POST", "/sessions/"+id+"/answer", AnswerRequest{QuestionID: q1, Answer: "definitely wrong"})
	doJSON(t, env.router, "POST", "/sessions/"+id+"/complete", nil)
	doJSON(t, env.router, "POST", "/sessions/"+id+"/complete", nil)

	assert.Equal(t, 1, env.feedback.count("correct"))
	assert.Equal(t, 1, env.feedback.count("incorrect"))
	assert.Equal(t, 1, env.feedback.count("complete"))
}

func TestSubmitAnswer_WrongAnswer(t *testing.T) {
	env := setupTestEnv(t)

	_, created := doJSON(t, env.router, "POST", "/sessions", CreateSessionRequest{
		ClassNumber: 3,
		SubjectID:   "math",
	})
	id := created["sessionId"].(string)
	doJSON(t, env.router, "POST", "/sessions/"+id+"/start", nil)

	questions := created["questions"].([]interface{})
	qid := questions[0].(map[string]interface{})["id"].(string)

	w, body := doJSON(t, env.router, "POST", "/sessions/"+id+"/answer", AnswerRequest{
		QuestionID: qid,
		Answer:     "definitely wrong",
	})
	require.Equal(t, 200, w.Code)
	assert.Equal(t, false, body["correct"])
	assert.Equal(t, float64(0), body["pointsEarned"])
}

func TestSubmitAnswer_RejectedBeforeStart(t *testing.T) {
	env := setupTestEnv(t)

	_, created := doJSON(t, env.router, "POST", "/sessions", CreateSessionRequest{
		ClassNumber: 3,
		SubjectID:   "math",
	})
	id := created["sessionId"].(string)

	questions := created["questions"].([]interface{})
	qid := questions[0].(map[string]interface{})["id"].(string)

	w, _ := doJSON(t, env.router, "POST", "/sessions/"+id+"/answer", AnswerRequest{
		QuestionID: qid,
		Answer:     "anything",
	})
	assert.Equal(t, 409, w.Code)
}

func TestDestroySession(t *testing.T) {
	env := setupTestEnv(t)

	_, created := doJSON(t, env.router, "POST", "/sessions", CreateSessionRequest{
		ClassNumber: 3,
		SubjectID:   "math",
	})
	id := created["sessionId"].(string)

	w, _ := doJSON(t, env.router, "DELETE", "/sessions/"+id, nil)
	assert.Equal(t, 200, w.Code)

	w, _ = doJSON(t, env.router, "GET", "/sessions/"+id, nil)
	assert.Equal(t, 404, w.Code)
}
