package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	achievementServices "github.com/architect/learning-playground/internal/achievements/services"
	"github.com/architect/learning-playground/internal/common/database"
	"github.com/architect/learning-playground/internal/common/middleware"
	"github.com/architect/learning-playground/internal/common/notify"
	"github.com/architect/learning-playground/internal/progress/repository"
	"github.com/architect/learning-playground/internal/progress/services"
)

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.ConnectInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	kv, err := repository.NewKVRepository(db)
	require.NoError(t, err)

	store := services.NewStore(kv)
	evaluator := achievementServices.NewEvaluator(store, notify.Nop{})
	handler := NewProgressHandler(store, evaluator)

	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.GET("/profile", handler.GetProfile)
	router.PUT("/profile", handler.UpdateProfile)
	router.POST("/profile/xp", handler.AddXP)
	router.GET("/progress", handler.GetProgress)
	router.POST("/progress/complete", handler.CompleteActivity)
	router.GET("/progress/class/:class/subject/:subject", handler.GetSubjectProgress)
	router.GET("/settings", handler.GetSettings)
	router.PUT("/settings", handler.UpdateSettings)
	router.DELETE("/data", handler.ClearData)

	return router
}

func request(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
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
	return w
}

func TestGetProfile_Defaults(t *testing.T) {
	router := setupTestRouter(t)

	w := request(t, router, "GET", "/profile", nil)
	require.Equal(t, 200, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	profile := body["profile"].(map[string]interface{})
	assert.Equal(t, "Student", profile["name"])
	assert.Equal(t, float64(100), body["xpForNext"])
}

func TestAddXP(t *testing.T) {
	router := setupTestRouter(t)

	w := request(t, router, "POST", "/profile/xp", AddXPRequest{Amount: 150})
	require.Equal(t, 200, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	award := body["award"].(map[string]interface{})
	assert.Equal(t, float64(150), award["new_total"])
	assert.Equal(t, true, award["level_up"])

	unlocked := body["achievements"].([]interface{})
	first := unlocked[0].(map[string]interface{})
	assert.Equal(t, "xp_100", first["id"])
}

func TestAddXP_RejectsNonPositive(t *testing.T) {
	router := setupTestRouter(t)

	w := request(t, router, "POST", "/profile/xp", AddXPRequest{Amount: 0})
	assert.Equal(t, 400, w.Code)
}

func TestCompleteActivity(t *testing.T) {
	router := setupTestRouter(t)

	w := request(t, router, "POST", "/progress/complete", CompleteActivityRequest{
		ClassNumber:  3,
		SubjectID:    "math",
		ActivityType: "quiz",
		ActivityID:   2,
		Score:        85,
		XPEarned:     42,
		Accuracy:     85,
		Stars:        2,
		TimeSpent:    90,
	})
	require.Equal(t, 200, w.Code)

	w = request(t, router, "GET", "/progress/class/3/subject/math", nil)
	require.Equal(t, 200, w.Code)

	var subject map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &subject))
	assert.Equal(t, []interface{}{float64(2)}, subject["quizzes_completed"])
	assert.Equal(t, float64(42), subject["total_xp"])
}

func TestCompleteActivity_RejectsUnknownType(t *testing.T) {
	router := setupTestRouter(t)

	w := request(t, router, "POST", "/progress/complete", CompleteActivityRequest{
		ClassNumber:  3,
		SubjectID:    "math",
		ActivityType: "homework",
		Score:        10,
		Accuracy:     50,
	})
	assert.Equal(t, 422, w.Code)
}

func TestCompleteActivity_RejectsBadClass(t *testing.T) {
	router := setupTestRouter(t)

	w := request(t, router, "POST", "/progress/complete", CompleteActivityRequest{
		ClassNumber:  11,
		SubjectID:    "math",
		ActivityType: "quiz",
		Score:        10,
		Accuracy:     50,
	})
	assert.Equal(t, 400, w.Code)
}

func TestSettingsRoundTrip(t *testing.T) {
	router := setupTestRouter(t)

	w := request(t, router, "PUT", "/settings", map[string]interface{}{
		"theme":         "dark",
		"sound_enabled": false,
	})
	require.Equal(t, 200, w.Code)

	w = request(t, router, "GET", "/settings", nil)
	require.Equal(t, 200, w.Code)

	var settings map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &settings))
	assert.Equal(t, "dark", settings["theme"])
	assert.Equal(t, false, settings["sound_enabled"])
	assert.Equal(t, true, settings["music_enabled"])
}

func TestClearData(t *testing.T) {
	router := setupTestRouter(t)

	request(t, router, "POST", "/profile/xp", AddXPRequest{Amount: 500})
	w := request(t, router, "DELETE", "/data", nil)
	require.Equal(t, 200, w.Code)

	w = request(t, router, "GET", "/profile", nil)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	profile := body["profile"].(map[string]interface{})
	assert.Equal(t, float64(0), profile["total_xp"])
}
