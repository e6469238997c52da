package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fittrack/fittrack/internal/app"
	"github.com/fittrack/fittrack/internal/config"
	"github.com/fittrack/fittrack/internal/db/dbtest"
	"github.com/fittrack/fittrack/internal/repository"
	"github.com/fittrack/fittrack/internal/routes"
	"github.com/fittrack/fittrack/internal/service"
)

// memStorage stands in for S3 in tests.
type memStorage struct {
	objects map[string][]byte
}

func (m *memStorage) Save(key string, body io.Reader) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	m.objects[key] = b
	return nil
}

func (m *memStorage) Delete(key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memStorage) PublicURL(key string) string {
	return "https://storage.test/" + key
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	conn := dbtest.Open(t)
	userRepo := repository.NewUserRepository(conn)
	goalRepo := repository.NewGoalRepository(conn)
	progRepo := repository.NewProgressRepository(conn)

	a := &app.App{
		Cfg: &config.Config{
			AppEnv:         "development",
			AuthRateLimit:  100,
			AuthRateWindow: time.Minute,
		},
		DB:              conn,
		AuthService:     service.NewAuthService(userRepo, "test-secret", time.Hour, false),
		UserService:     service.NewUserService(userRepo, &memStorage{}),
		GoalService:     service.NewGoalService(goalRepo),
		ProgressService: service.NewProgressService(goalRepo, progRepo),
	}

	return routes.SetupRoutes(a)
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()

	err := json.Unmarshal(rec.Body.Bytes(), v)
	if err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func registerUser(t *testing.T, h http.Handler, email string) string {
	t.Helper()

	rec := doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "a-long-enough-secret",
		"name":     "Test User",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	decodeBody(t, rec, &resp)
	if resp.Token == "" {
		t.Fatal("register returned empty token")
	}
	return resp.Token
}

func createGoal(t *testing.T, h http.Handler, token string) string {
	t.Helper()

	rec := doJSON(t, h, http.MethodPost, "/api/goals", token, map[string]any{
		"title":       "Lose weight",
		"targetValue": 10,
		"unit":        "kg",
		"goalType":    "weight_loss",
		"startDate":   "2025-01-01T00:00:00Z",
		"targetDate":  "2025-07-01T00:00:00Z",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create goal status = %d, body %s", rec.Code, rec.Body.String())
	}

	var goal struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &goal)
	return goal.ID
}

func TestAPIRequiresAuth(t *testing.T) {
	h := newTestServer(t)

	paths := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/goals"},
		{http.MethodPost, "/api/goals"},
		{http.MethodGet, "/api/progress?goalId=x"},
		{http.MethodPost, "/api/progress"},
		{http.MethodGet, "/api/account"},
	}

	for _, p := range paths {
		rec := doJSON(t, h, p.method, p.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token: status = %d, want 401", p.method, p.path, rec.Code)
		}
	}
}

func TestAPIEmptyListsSerializeAsArrays(t *testing.T) {
	h := newTestServer(t)
	token := registerUser(t, h, "empty-lists@example.com")

	rec := doJSON(t, h, http.MethodGet, "/api/goals", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list goals status = %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Fatalf("empty goal list body = %q, want []", body)
	}

	goalID := createGoal(t, h, token)
	rec = doJSON(t, h, http.MethodGet, "/api/progress?goalId="+goalID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list progress status = %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Fatalf("empty progress list body = %q, want []", body)
	}
}

func TestAPIMetricsLabelAuthenticatedRoutes(t *testing.T) {
	h := newTestServer(t)
	token := registerUser(t, h, "metrics@example.com")

	rec := doJSON(t, h, http.MethodGet, "/api/goals", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `route="GET /api/goals"`) {
		t.Error("metrics output missing series for GET /api/goals")
	}
	// The mux records the pattern on the request it is handed, which is a
	// copy once the auth middleware has attached the user context. The
	// metrics middleware must therefore sit inside auth, or every
	// authenticated request falls into the unmatched bucket.
	if strings.Contains(body, `route="unmatched"`) {
		t.Error("metrics output contains unmatched series for routed requests")
	}
}

func TestAPIGoalLifecycle(t *testing.T) {
	h := newTestServer(t)
	token := registerUser(t, h, "lifecycle@example.com")

	goalID := createGoal(t, h, token)

	rec := doJSON(t, h, http.MethodGet, "/api/goals", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var goals []struct {
		ID           string  `json:"id"`
		CurrentValue float64 `json:"currentValue"`
	}
	decodeBody(t, rec, &goals)
	if len(goals) != 1 || goals[0].ID != goalID {
		t.Fatalf("list = %+v, want the created goal", goals)
	}
	if goals[0].CurrentValue != 0 {
		t.Fatalf("new goal currentValue = %v, want 0", goals[0].CurrentValue)
	}

	rec = doJSON(t, h, http.MethodPut, "/api/goals/"+goalID, token, map[string]any{"title": "New title"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodDelete, "/api/goals/"+goalID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/goals/"+goalID, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestAPIGoalValidationError(t *testing.T) {
	h := newTestServer(t)
	token := registerUser(t, h, "invalid@example.com")

	rec := doJSON(t, h, http.MethodPost, "/api/goals", token, map[string]any{
		"title":       "",
		"targetValue": 10,
		"unit":        "kg",
		"goalType":    "weight_loss",
		"startDate":   "2025-01-01T00:00:00Z",
		"targetDate":  "2025-07-01T00:00:00Z",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp struct {
		Field string `json:"field"`
	}
	decodeBody(t, rec, &resp)
	if resp.Field != "title" {
		t.Fatalf("field = %q, want title", resp.Field)
	}
}

func TestAPICurrentValueIsSystemMaintained(t *testing.T) {
	h := newTestServer(t)
	token := registerUser(t, h, "sysval@example.com")
	goalID := createGoal(t, h, token)

	rec := doJSON(t, h, http.MethodPut, "/api/goals/"+goalID, token, map[string]any{"currentValue": 99})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp struct {
		Field string `json:"field"`
	}
	decodeBody(t, rec, &resp)
	if resp.Field != "currentValue" {
		t.Fatalf("field = %q, want currentValue", resp.Field)
	}
}

func TestAPIOwnershipIsolation(t *testing.T) {
	h := newTestServer(t)
	ownerToken := registerUser(t, h, "owner@example.com")
	intruderToken := registerUser(t, h, "intruder@example.com")

	goalID := createGoal(t, h, ownerToken)

	// Foreign id and missing id are the same 404
	rec := doJSON(t, h, http.MethodGet, "/api/goals/"+goalID, intruderToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("foreign get status = %d, want 404", rec.Code)
	}
	rec = doJSON(t, h, http.MethodGet, "/api/goals/does-not-exist", intruderToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing get status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, h, http.MethodDelete, "/api/goals/"+goalID, intruderToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("foreign delete status = %d, want 404", rec.Code)
	}

	// Intruder's progress listing of the foreign goal is simply empty
	rec = doJSON(t, h, http.MethodGet, "/api/progress?goalId="+goalID, intruderToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("foreign progress list status = %d, want 200", rec.Code)
	}
	var entries []json.RawMessage
	decodeBody(t, rec, &entries)
	if len(entries) != 0 {
		t.Fatalf("foreign progress list has %d entries, want 0", len(entries))
	}
}

func TestAPIProgressDrivesCurrentValue(t *testing.T) {
	h := newTestServer(t)
	token := registerUser(t, h, "progress@example.com")
	goalID := createGoal(t, h, token)

	currentValue := func() float64 {
		rec := doJSON(t, h, http.MethodGet, "/api/goals/"+goalID, token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("get goal status = %d", rec.Code)
		}
		var goal struct {
			CurrentValue float64 `json:"currentValue"`
		}
		decodeBody(t, rec, &goal)
		return goal.CurrentValue
	}

	rec := doJSON(t, h, http.MethodPost, "/api/progress", token, map[string]any{
		"goalId": goalID,
		"value":  3,
		"date":   "2025-01-01T00:00:00Z",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create progress status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := currentValue(); got != 3 {
		t.Fatalf("currentValue = %v, want 3", got)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/progress", token, map[string]any{
		"goalId": goalID,
		"value":  7,
		"date":   "2025-01-05T00:00:00Z",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create progress status = %d", rec.Code)
	}
	var created struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &created)
	if got := currentValue(); got != 7 {
		t.Fatalf("currentValue = %v, want 7", got)
	}

	// goalId is immutable on update
	rec = doJSON(t, h, http.MethodPut, "/api/progress/"+created.ID, token, map[string]any{"goalId": "other"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("goalId change status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, h, http.MethodDelete, "/api/progress/"+created.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete progress status = %d", rec.Code)
	}
	if got := currentValue(); got != 3 {
		t.Fatalf("currentValue after delete = %v, want 3", got)
	}
}

func TestAPIProgressDateRangeFilter(t *testing.T) {
	h := newTestServer(t)
	token := registerUser(t, h, "range@example.com")
	goalID := createGoal(t, h, token)

	for _, e := range []struct {
		value float64
		date  string
	}{
		{3, "2025-01-01T00:00:00Z"},
		{5, "2025-01-03T00:00:00Z"},
		{7, "2025-01-05T00:00:00Z"},
	} {
		rec := doJSON(t, h, http.MethodPost, "/api/progress", token, map[string]any{
			"goalId": goalID,
			"value":  e.value,
			"date":   e.date,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create progress status = %d", rec.Code)
		}
	}

	rec := doJSON(t, h, http.MethodGet,
		"/api/progress?goalId="+goalID+"&startDate=2025-01-01T00:00:00Z&endDate=2025-01-03T00:00:00Z",
		token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("range list status = %d, body %s", rec.Code, rec.Body.String())
	}

	var entries []struct {
		Value float64 `json:"value"`
	}
	decodeBody(t, rec, &entries)
	if len(entries) != 2 {
		t.Fatalf("range list has %d entries, want 2", len(entries))
	}
	if entries[0].Value != 3 || entries[1].Value != 5 {
		t.Fatalf("range values = %+v, want ascending 3, 5", entries)
	}
}

func TestAPIHealthz(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
}
