package analysis

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/matcher/pkg/audit"
)

type fakeJSON struct {
	payload map[string]any
	err     error
	calls   int
}

func (f *fakeJSON) AskJSON(context.Context, string, string) (map[string]any, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}

type memoryRepo struct {
	mu    sync.Mutex
	items []Request
}

func (r *memoryRepo) Store(_ context.Context, req Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req.ID = int64(len(r.items) + 1)
	r.items = append(r.items, req)
	return nil
}

func (r *memoryRepo) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Request
	for _, it := range r.items {
		if it.UserID == userID {
			out = append(out, it)
		}
	}
	return page(out, limit, offset), nil
}

func (r *memoryRepo) ListAll(_ context.Context, userID *uuid.UUID, limit, offset int) ([]Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Request
	for _, it := range r.items {
		if userID == nil || it.UserID == *userID {
			out = append(out, it)
		}
	}
	return page(out, limit, offset), nil
}

func page(items []Request, limit, offset int) []Request {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

type memorySink struct {
	mu     sync.Mutex
	events []audit.Event
}

func (s *memorySink) Emit(e audit.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

type memoryCounter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func (c *memoryCounter) Inc(_ context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = map[string]int64{}
	}
	c.counts[name]++
	return nil
}

func (c *memoryCounter) Snapshot(context.Context) (map[string]int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int64, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out, nil
}

const (
	testVacancy = "Ищем аналитика данных: SQL, Python, опыт от 3 лет, высшее образование обязательно."
	testResume  = "Аналитик данных, 4 года опыта. Навыки: SQL, Python, Excel. Высшее образование, НИУ ВШЭ."
)

func testInput() AnalyzeInput {
	return AnalyzeInput{
		VacancyText: testVacancy,
		Profile:     Profile{ResumeText: testResume},
	}
}

func newTestService(chat *fakeChat, jsonLLM *fakeJSON, opts Options) UseCase {
	if opts.MinTextLen == 0 {
		opts.MinTextLen = 10
	}
	return NewService(chat, jsonLLM, DefaultWeights, opts)
}

func TestAnalyze_HappyPath(t *testing.T) {
	chat := &fakeChat{responses: []string{
		`{"education": "высшее", "experience_years": 3, "hard_skills": ["sql", "python"], "soft_skills": ["коммуникация"]}`,
		`{"education": "высшее", "experience_years": 4, "hard_skills": ["sql", "python", "excel"], "soft_skills": ["коммуникация"]}`,
		`{"verdict": "Отличное совпадение.", "recommendation": {"decision": "Откликайся", "actions": []}}`,
	}}
	repo := &memoryRepo{}
	sink := &memorySink{}
	counter := &memoryCounter{}
	svc := newTestService(chat, &fakeJSON{}, Options{History: repo, Sink: sink, Counter: counter})

	actor := uuid.New()
	got, err := svc.Analyze(context.Background(), actor, testInput())
	require.NoError(t, err)

	assert.Equal(t, 100, got.ScoreRaw)
	assert.Equal(t, 10, got.Score)
	assert.Equal(t, "Отличное совпадение.", got.Verdict)
	require.Len(t, got.Matches, 4)
	require.NotNil(t, got.Recommendation)
	assert.Equal(t, "Откликайся", got.Recommendation.Decision)
	assert.Equal(t, 3, chat.calls)

	// История, журнал и счётчики получили запись.
	require.Len(t, repo.items, 1)
	assert.Equal(t, actor, repo.items[0].UserID)
	assert.Equal(t, "analyze", repo.items[0].Kind)
	assert.Equal(t, "ok", repo.items[0].Status)
	assert.NotEmpty(t, repo.items[0].Result)

	require.Len(t, sink.events, 1)
	require.NotNil(t, sink.events[0].Score)
	assert.Equal(t, 10, *sink.events[0].Score)

	snap, _ := counter.Snapshot(context.Background())
	assert.Equal(t, int64(1), snap["analyze"])
}

func TestAnalyze_TextTooShort(t *testing.T) {
	chat := &fakeChat{responses: []string{`{}`}}
	svc := newTestService(chat, &fakeJSON{}, Options{MinTextLen: 100})

	_, err := svc.Analyze(context.Background(), uuid.New(), AnalyzeInput{
		VacancyText: "коротко",
		Profile:     Profile{ResumeText: strings.Repeat("длинный текст ", 20)},
	})
	var vErr ErrValidation
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, ErrTextTooShort, vErr)
	assert.Zero(t, chat.calls, "LLM не должен вызываться при невалидном входе")
}

func TestAnalyze_ExtractionFailureAborts(t *testing.T) {
	transportErr := errors.New("gigachat down")
	chat := &fakeChat{err: transportErr}
	counter := &memoryCounter{}
	svc := newTestService(chat, &fakeJSON{}, Options{Counter: counter})

	_, err := svc.Analyze(context.Background(), uuid.New(), testInput())
	require.ErrorIs(t, err, transportErr)

	snap, _ := counter.Snapshot(context.Background())
	assert.Equal(t, int64(1), snap["analyze_error"])
}

func TestAnalyze_NarrativeFailureStillDelivers(t *testing.T) {
	// Экстракция отработала, нарратив вернул мусор: оценка и совпадения
	// всё равно доставляются, вердикт подставной.
	chat := &fakeChat{responses: []string{
		`{"education": "высшее", "experience_years": 3, "hard_skills": ["sql"], "soft_skills": []}`,
		`{"education": "высшее", "experience_years": 5, "hard_skills": ["sql"], "soft_skills": []}`,
		"это не json",
	}}
	svc := newTestService(chat, &fakeJSON{}, Options{})

	got, err := svc.Analyze(context.Background(), uuid.New(), testInput())
	require.NoError(t, err)

	// edu 25 + exp 25 + hard 40, soft-требований нет
	assert.Equal(t, 90, got.ScoreRaw)
	assert.Equal(t, FallbackVerdict, got.Verdict)
	assert.Len(t, got.Matches, 4)
	assert.Nil(t, got.Company)
	assert.Nil(t, got.Recommendation)
}

func TestAnalyze_ParseFailureScoresZero(t *testing.T) {
	// Оба экстракта выродились в пустые записи: score 0, score_10 == 1.
	chat := &fakeChat{responses: []string{"мусор", "мусор", "мусор"}}
	svc := newTestService(chat, &fakeJSON{}, Options{})

	got, err := svc.Analyze(context.Background(), uuid.New(), testInput())
	require.NoError(t, err)
	assert.Equal(t, 0, got.ScoreRaw)
	assert.Equal(t, 1, got.Score)
	assert.Equal(t, FallbackVerdict, got.Verdict)
}

func TestGap_HappyPath(t *testing.T) {
	jsonLLM := &fakeJSON{payload: map[string]any{
		"requirements": []any{
			map[string]any{
				"requirement":     "SQL",
				"status":          "match",
				"found_in_resume": "раздел навыков",
				"recommendation":  "",
			},
		},
		"quick_wins": []any{"добавить метрики в достижения"},
		"summary":    "Резюме близко к требованиям.",
	}}
	repo := &memoryRepo{}
	counter := &memoryCounter{}
	svc := newTestService(&fakeChat{}, jsonLLM, Options{History: repo, Counter: counter})

	got, err := svc.Gap(context.Background(), uuid.New(), testInput())
	require.NoError(t, err)

	require.Len(t, got.Requirements, 1)
	assert.Equal(t, "SQL", got.Requirements[0].Requirement)
	assert.Equal(t, "match", got.Requirements[0].Status)
	assert.Equal(t, []string{"добавить метрики в достижения"}, got.QuickWins)
	assert.Equal(t, "Резюме близко к требованиям.", got.Summary)

	require.Len(t, repo.items, 1)
	assert.Equal(t, "gap", repo.items[0].Kind)
	snap, _ := counter.Snapshot(context.Background())
	assert.Equal(t, int64(1), snap["gap"])
}

func TestGap_EmptyPayloadGivesEmptySlices(t *testing.T) {
	jsonLLM := &fakeJSON{payload: map[string]any{}}
	svc := newTestService(&fakeChat{}, jsonLLM, Options{})

	got, err := svc.Gap(context.Background(), uuid.New(), testInput())
	require.NoError(t, err)
	assert.NotNil(t, got.Requirements)
	assert.NotNil(t, got.QuickWins)
	assert.Empty(t, got.Requirements)
	assert.Empty(t, got.QuickWins)
}

func TestGap_UpstreamErrorPropagates(t *testing.T) {
	upstream := errors.New("все модели отказали")
	jsonLLM := &fakeJSON{err: upstream}
	svc := newTestService(&fakeChat{}, jsonLLM, Options{})

	_, err := svc.Gap(context.Background(), uuid.New(), testInput())
	assert.ErrorIs(t, err, upstream)
}

func TestGap_TextTooShort(t *testing.T) {
	jsonLLM := &fakeJSON{}
	svc := newTestService(&fakeChat{}, jsonLLM, Options{MinTextLen: 100})

	_, err := svc.Gap(context.Background(), uuid.New(), AnalyzeInput{VacancyText: "x", Profile: Profile{ResumeText: "y"}})
	assert.ErrorIs(t, err, ErrTextTooShort)
	assert.Zero(t, jsonLLM.calls)
}
