package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/artem13815/matcher/pkg/analysis"
	"github.com/artem13815/matcher/pkg/llm/gigachat"
)

type fakeUseCase struct {
	result analysis.Result
	gap    analysis.GapReport
	err    error
	lastIn analysis.AnalyzeInput
}

func (f *fakeUseCase) Analyze(_ context.Context, _ uuid.UUID, in analysis.AnalyzeInput) (analysis.Result, error) {
	f.lastIn = in
	return f.result, f.err
}

func (f *fakeUseCase) Gap(_ context.Context, _ uuid.UUID, in analysis.AnalyzeInput) (analysis.GapReport, error) {
	f.lastIn = in
	return f.gap, f.err
}

func newTestApp(uc analysis.UseCase) *fiber.App {
	app := fiber.New()
	h := NewAnalyzeHandler(uc, zap.NewNop())
	withUser := func(c *fiber.Ctx) error {
		c.Locals("userId", uuid.NewString())
		return c.Next()
	}
	app.Post("/analyze", withUser, h.Analyze)
	app.Post("/analyze/gap", withUser, h.Gap)
	app.Post("/analyze/file", withUser, h.AnalyzeFile)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestAnalyzeHandler_OK(t *testing.T) {
	uc := &fakeUseCase{result: analysis.Result{Score: 7, ScoreRaw: 68, Verdict: "ок"}}
	app := newTestApp(uc)

	resp := postJSON(t, app, "/analyze", analysis.AnalyzeInput{
		VacancyText: "вакансия",
		Profile:     analysis.Profile{ResumeText: "резюме"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got analysis.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, 7, got.Score)
	assert.Equal(t, 68, got.ScoreRaw)
	assert.Equal(t, "вакансия", uc.lastIn.VacancyText)
}

func TestAnalyzeHandler_ValidationErrorIs400(t *testing.T) {
	uc := &fakeUseCase{err: analysis.ErrTextTooShort}
	app := newTestApp(uc)

	resp := postJSON(t, app, "/analyze", analysis.AnalyzeInput{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "text_too_short")
}

func TestAnalyzeHandler_UpstreamErrorIs502(t *testing.T) {
	uc := &fakeUseCase{err: &gigachat.Error{Code: "gigachat_http_503", Status: 503}}
	app := newTestApp(uc)

	resp := postJSON(t, app, "/analyze", analysis.AnalyzeInput{})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "gigachat_http_503")
}

func TestAnalyzeHandler_BadJSONIs400(t *testing.T) {
	app := newTestApp(&fakeUseCase{})

	req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader([]byte("{битый")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAnalyzeHandler_NoUserIs401(t *testing.T) {
	app := fiber.New()
	h := NewAnalyzeHandler(&fakeUseCase{}, zap.NewNop())
	app.Post("/analyze", h.Analyze)

	resp := postJSON(t, app, "/analyze", analysis.AnalyzeInput{})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGapHandler_OK(t *testing.T) {
	uc := &fakeUseCase{gap: analysis.GapReport{
		Requirements: []analysis.GapRequirement{{Requirement: "SQL", Status: "match"}},
		QuickWins:    []string{"добавить метрики"},
		Summary:      "близко",
	}}
	app := newTestApp(uc)

	resp := postJSON(t, app, "/analyze/gap", analysis.AnalyzeInput{})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got analysis.GapReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got.Requirements, 1)
	assert.Equal(t, "SQL", got.Requirements[0].Requirement)
}

func TestAnalyzeFileHandler_MissingFileIs400(t *testing.T) {
	app := newTestApp(&fakeUseCase{})

	req := httptest.NewRequest(http.MethodPost, "/analyze/file", bytes.NewReader(nil))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
