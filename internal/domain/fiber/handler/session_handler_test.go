package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fadilmartias/studypath/internal/model"
	"github.com/fadilmartias/studypath/internal/repository"
	"github.com/fadilmartias/studypath/internal/service"
	"github.com/fadilmartias/studypath/internal/service/mocks"
	"github.com/fadilmartias/studypath/internal/usecase"
	"github.com/fadilmartias/studypath/internal/view"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Details json.RawMessage `json:"details"`
}

type snapshotBody struct {
	SessionID string `json:"session_id"`
	View      string `json:"view"`
	Mode      string `json:"mode"`
	Profile   *struct {
		ID string `json:"id"`
	} `json:"profile"`
	Draft *struct {
		Name string `json:"name"`
	} `json:"draft"`
}

const profileBody = `{"name":"Ada","email":"ada@example.com","university":"UI","faculty":"CS","gpa":"3.6",
	"total_credits":"144","completed_credits":"90","achievements":"a, b","extracurriculars":"",
	"preferred_countries":"Germany","financial_situation":"good","career_goals":"research"}`

func newTestApp(t *testing.T, advisor *mocks.AdvisorService) *fiber.App {
	t.Helper()
	log := zap.NewNop()
	catalog := usecase.NewCatalogUsecase(advisor, log)
	repo := repository.NewSessionRepository(view.Deps{
		Advisor:  advisor,
		Profiles: usecase.NewProfileUsecase(advisor, log),
		Catalog:  catalog,
		Log:      log,
	})
	t.Cleanup(repo.CloseAll)

	app := fiber.New()
	NewSessionHandler(repo, catalog, 2, log).RegisterRoutes(app)
	return app
}

func stubDashboard(advisor *mocks.AdvisorService) {
	advisor.On("ListChat", mock.Anything, mock.Anything).Return([]model.ChatEntry{}, nil).Maybe()
	advisor.On("GenerateRecommendations", mock.Anything, mock.Anything).
		Return(&model.RecommendationSummary{AcceptanceProbabilities: []model.InstitutionProbability{}}, nil).Maybe()
	advisor.On("ListUniversities", mock.Anything, mock.Anything).Return([]model.University{}, nil).Maybe()
	advisor.On("ListScholarships", mock.Anything, mock.Anything).Return([]model.Scholarship{}, nil).Maybe()
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func snapshotOf(t *testing.T, env envelope) snapshotBody {
	t.Helper()
	var snap snapshotBody
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	return snap
}

func createSession(t *testing.T, app *fiber.App) string {
	t.Helper()
	code, env := do(t, app, http.MethodPost, "/sessions", "")
	require.Equal(t, fiber.StatusCreated, code)
	snap := snapshotOf(t, env)
	require.Equal(t, "landing", snap.View)
	require.NotEmpty(t, snap.SessionID)
	return snap.SessionID
}

func TestSessionFlow(t *testing.T) {
	advisor := new(mocks.AdvisorService)
	advisor.On("CreateStudent", mock.Anything, mock.Anything).Return(&model.StudentProfile{ID: "42", Name: "Ada"}, nil).Once()
	advisor.On("UpdateStudent", mock.Anything, "42", mock.Anything).Return(&model.StudentProfile{ID: "42", Name: "Ada"}, nil).Once()
	stubDashboard(advisor)
	app := newTestApp(t, advisor)

	id := createSession(t, app)
	base := "/sessions/" + id

	code, env := do(t, app, http.MethodPost, base+"/start", "")
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "create", snapshotOf(t, env).Mode)

	code, env = do(t, app, http.MethodPost, base+"/profile", profileBody)
	require.Equal(t, fiber.StatusOK, code, string(env.Data))
	snap := snapshotOf(t, env)
	assert.Equal(t, "dashboard", snap.View)
	require.NotNil(t, snap.Profile)
	assert.Equal(t, "42", snap.Profile.ID)

	code, env = do(t, app, http.MethodPost, base+"/edit", "")
	require.Equal(t, fiber.StatusOK, code)
	snap = snapshotOf(t, env)
	assert.Equal(t, "edit", snap.Mode)
	require.NotNil(t, snap.Draft)
	assert.Equal(t, "Ada", snap.Draft.Name)

	code, _ = do(t, app, http.MethodPost, base+"/profile", profileBody)
	require.Equal(t, fiber.StatusOK, code)
	advisor.AssertNumberOfCalls(t, "CreateStudent", 1)
	advisor.AssertNumberOfCalls(t, "UpdateStudent", 1)

	code, _ = do(t, app, http.MethodPost, base+"/refresh/universities", "")
	assert.Equal(t, fiber.StatusAccepted, code)

	code, env = do(t, app, http.MethodGet, base, "")
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "dashboard", snapshotOf(t, env).View)

	code, _ = do(t, app, http.MethodDelete, base, "")
	assert.Equal(t, fiber.StatusOK, code)
	code, _ = do(t, app, http.MethodGet, base, "")
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestSubmitProfileValidationError(t *testing.T) {
	advisor := new(mocks.AdvisorService)
	app := newTestApp(t, advisor)
	id := createSession(t, app)
	do(t, app, http.MethodPost, "/sessions/"+id+"/start", "")

	body := strings.Replace(profileBody, `"completed_credits":"90"`, `"completed_credits":"200"`, 1)
	code, env := do(t, app, http.MethodPost, "/sessions/"+id+"/profile", body)
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)
	assert.False(t, env.Success)

	var details map[string]string
	require.NoError(t, json.Unmarshal(env.Details, &details))
	assert.Contains(t, details, "completed_credits")
	advisor.AssertNotCalled(t, "CreateStudent", mock.Anything, mock.Anything)
}

func TestErrorMapping(t *testing.T) {
	advisor := new(mocks.AdvisorService)
	advisor.On("CreateStudent", mock.Anything, mock.Anything).
		Return(nil, &service.APIError{StatusCode: 500, Detail: "database unavailable"})
	app := newTestApp(t, advisor)
	id := createSession(t, app)
	base := "/sessions/" + id

	code, _ := do(t, app, http.MethodPost, base+"/edit", "")
	assert.Equal(t, fiber.StatusConflict, code)

	code, _ = do(t, app, http.MethodPost, base+"/chat", `{"message":"hi"}`)
	assert.Equal(t, fiber.StatusConflict, code)

	code, _ = do(t, app, http.MethodPost, base+"/refresh/weather", "")
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = do(t, app, http.MethodPost, "/sessions/unknown/start", "")
	assert.Equal(t, fiber.StatusNotFound, code)

	do(t, app, http.MethodPost, base+"/start", "")
	code, env := do(t, app, http.MethodPost, base+"/profile", profileBody)
	assert.Equal(t, fiber.StatusBadGateway, code)
	assert.Equal(t, "database unavailable", env.Message)

	code, env = do(t, app, http.MethodGet, base, "")
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "setup", snapshotOf(t, env).View)
}

func TestSendChat(t *testing.T) {
	advisor := new(mocks.AdvisorService)
	advisor.On("CreateStudent", mock.Anything, mock.Anything).Return(&model.StudentProfile{ID: "42"}, nil)
	advisor.On("PostChat", mock.Anything, "42", "Which country suits me?").
		Return(&model.ChatEntry{ID: "c1", Message: "Which country suits me?", Response: "Germany."}, nil)
	stubDashboard(advisor)
	app := newTestApp(t, advisor)
	id := createSession(t, app)
	base := "/sessions/" + id
	do(t, app, http.MethodPost, base+"/start", "")
	do(t, app, http.MethodPost, base+"/profile", profileBody)

	code, env := do(t, app, http.MethodPost, base+"/chat", `{"message":"   "}`)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, usecase.ErrEmptyMessage.Error(), env.Message)

	code, env = do(t, app, http.MethodPost, base+"/chat", `{"message":"Which country suits me?"}`)
	require.Equal(t, fiber.StatusOK, code)
	var entry model.ChatEntry
	require.NoError(t, json.Unmarshal(env.Data, &entry))
	assert.Equal(t, "Germany.", entry.Response)

	// limit is two sends per minute per session, the blank message counted too
	code, _ = do(t, app, http.MethodPost, base+"/chat", `{"message":"again"}`)
	assert.Equal(t, fiber.StatusTooManyRequests, code)
}

func TestCatalogRoutes(t *testing.T) {
	advisor := new(mocks.AdvisorService)
	advisor.On("ListUniversities", mock.Anything, model.UniversityFilter{Country: "Germany", Program: "Physics"}).
		Return([]model.University{{ID: "u1", Name: "TU Munich"}}, nil)
	advisor.On("ListScholarships", mock.Anything, model.ScholarshipFilter{Field: "Engineering"}).
		Return(nil, errors.New("dial tcp: connection refused"))
	app := newTestApp(t, advisor)

	code, env := do(t, app, http.MethodGet, "/catalog/universities?country=Germany&program=Physics", "")
	require.Equal(t, fiber.StatusOK, code)
	var unis []model.University
	require.NoError(t, json.Unmarshal(env.Data, &unis))
	require.Len(t, unis, 1)
	assert.Equal(t, "TU Munich", unis[0].Name)
	assert.JSONEq(t, `{"total":1}`, string(env.Meta))

	code, env = do(t, app, http.MethodGet, "/catalog/scholarships?field=Engineering", "")
	assert.Equal(t, fiber.StatusBadGateway, code)
	assert.Equal(t, "advisor service unavailable", env.Message)
}
