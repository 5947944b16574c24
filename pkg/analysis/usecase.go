package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/artem13815/matcher/pkg/audit"
	"github.com/artem13815/matcher/pkg/llm"
	"github.com/artem13815/matcher/pkg/stats"
)

// UseCase — сценарии матчинга резюме и вакансии.
type UseCase interface {
	Analyze(ctx context.Context, actorID uuid.UUID, in AnalyzeInput) (Result, error)
	Gap(ctx context.Context, actorID uuid.UUID, in AnalyzeInput) (GapReport, error)
}

// Options — необязательные зависимости сервиса.
type Options struct {
	MinTextLen int
	History    Repository    // nil — история не ведётся
	Sink       audit.Sink    // nil — журнал не ведётся
	Counter    stats.Counter // nil — счётчики не ведутся
	Logger     *zap.Logger
}

type service struct {
	extractor  *Extractor
	narrative  *NarrativeGenerator
	jsonLLM    llm.JSONModel
	weights    WeightConfig
	minTextLen int
	history    Repository
	sink       audit.Sink
	counter    stats.Counter
	log        *zap.Logger
}

func NewService(model llm.ChatModel, jsonModel llm.JSONModel, weights WeightConfig, opts Options) UseCase {
	if opts.MinTextLen <= 0 {
		opts.MinTextLen = 100
	}
	if opts.Sink == nil {
		opts.Sink = audit.Nop{}
	}
	if opts.Counter == nil {
		opts.Counter = stats.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &service{
		extractor:  NewExtractor(model, opts.Logger),
		narrative:  NewNarrativeGenerator(model, opts.Logger),
		jsonLLM:    jsonModel,
		weights:    weights,
		minTextLen: opts.MinTextLen,
		history:    opts.History,
		sink:       opts.Sink,
		counter:    opts.Counter,
		log:        opts.Logger,
	}
}

// Analyze — полный путь: извлечь факты из обоих текстов, посчитать оценку,
// получить объяснение и статусы категорий. Все сущности живут в рамках
// одного запроса, разделяемого изменяемого состояния здесь нет.
func (s *service) Analyze(ctx context.Context, actorID uuid.UUID, in AnalyzeInput) (Result, error) {
	started := time.Now()
	requestID := uuid.New()

	vacancy := strings.TrimSpace(in.VacancyText)
	resume := strings.TrimSpace(in.Profile.ResumeText)
	if utf8.RuneCountInString(vacancy) < s.minTextLen || utf8.RuneCountInString(resume) < s.minTextLen {
		s.finish(ctx, requestID, actorID, "analyze", vacancy, resume, nil, ErrTextTooShort, started)
		return Result{}, ErrTextTooShort
	}

	jobFacts, err := s.extractor.Extract(ctx, vacancy, DocVacancy)
	if err != nil {
		s.finish(ctx, requestID, actorID, "analyze", vacancy, resume, nil, err, started)
		return Result{}, err
	}
	resumeFacts, err := s.extractor.Extract(ctx, resume, DocResume)
	if err != nil {
		s.finish(ctx, requestID, actorID, "analyze", vacancy, resume, nil, err, started)
		return Result{}, err
	}

	scored := Score(jobFacts, resumeFacts, s.weights)
	score10 := ScoreToTen(scored.Score)

	// Оценка уже посчитана и неизменна: отказ нарратива её не трогает.
	narrative := s.narrative.Explain(ctx, in.Profile, vacancy, scored.Report, scored.Score, score10)

	result := Result{
		Score:          score10,
		ScoreRaw:       scored.Score,
		Verdict:        narrative.Verdict,
		Matches:        BuildMatches(jobFacts, resumeFacts),
		Company:        narrative.Company,
		Details:        narrative.Details,
		ProsCons:       narrative.ProsCons,
		Recommendation: narrative.Recommendation,
	}
	if result.Verdict == "" {
		result.Verdict = FallbackVerdict
	}

	s.finish(ctx, requestID, actorID, "analyze", vacancy, resume, result, nil, started)
	return result, nil
}

// Gap — GAP-анализ одним LLM-вызовом: модель сама раскладывает требования
// вакансии по статусам. Числового скоринга здесь нет.
func (s *service) Gap(ctx context.Context, actorID uuid.UUID, in AnalyzeInput) (GapReport, error) {
	started := time.Now()
	requestID := uuid.New()

	vacancy := strings.TrimSpace(in.VacancyText)
	resume := strings.TrimSpace(in.Profile.ResumeText)
	if utf8.RuneCountInString(vacancy) < s.minTextLen || utf8.RuneCountInString(resume) < s.minTextLen {
		s.finish(ctx, requestID, actorID, "gap", vacancy, resume, nil, ErrTextTooShort, started)
		return GapReport{}, ErrTextTooShort
	}

	raw, err := s.jsonLLM.AskJSON(ctx, gapSystemPrompt, gapUserPrompt(vacancy, resume))
	if err != nil {
		s.finish(ctx, requestID, actorID, "gap", vacancy, resume, nil, err, started)
		return GapReport{}, err
	}

	// Обратно через JSON: из map в типизированный отчёт.
	var report GapReport
	data, _ := json.Marshal(raw)
	_ = json.Unmarshal(data, &report)
	if report.Requirements == nil {
		report.Requirements = []GapRequirement{}
	}
	if report.QuickWins == nil {
		report.QuickWins = []string{}
	}

	s.finish(ctx, requestID, actorID, "gap", vacancy, resume, report, nil, started)
	return report, nil
}

const gapSystemPrompt = "Ты — карьерный консультант с опытом найма аналитиков. Отвечай строго JSON без пояснений."

func gapUserPrompt(vacancy, resume string) string {
	return fmt.Sprintf(`Проведи GAP-анализ резюме относительно вакансии.

Ответь СТРОГО в формате JSON:
{
  "requirements": [
    {
      "requirement": "Название требования",
      "status": "match|partial|gap",
      "found_in_resume": "Где найдено или null",
      "recommendation": "Что сделать"
    }
  ],
  "quick_wins": ["...", "...", "..."],
  "summary": "Краткий вывод"
}

status:
- "match" = полное совпадение
- "partial" = есть опыт, но сформулировано иначе
- "gap" = не найдено

ВАКАНСИЯ:
%s

РЕЗЮМЕ:
%s`, vacancy, resume)
}

// finish закрывает запрос: событие в журнал, запись в историю, счётчик.
// Всё best-effort: ни один из коллабораторов не может завалить запрос.
func (s *service) finish(ctx context.Context, requestID, actorID uuid.UUID, kind, vacancy, resume string, result any, opErr error, started time.Time) {
	status := "ok"
	errText := ""
	if opErr != nil {
		status = "error"
		errText = opErr.Error()
	}

	event := audit.Event{
		Time:        time.Now().UTC(),
		RequestID:   requestID.String(),
		UserID:      actorID.String(),
		Kind:        kind,
		Status:      status,
		DurationMS:  time.Since(started).Milliseconds(),
		Error:       errText,
		VacancyText: vacancy,
		ResumeText:  resume,
		Result:      result,
	}
	if res, ok := result.(Result); ok {
		event.ScoreRaw = &res.ScoreRaw
		event.Score = &res.Score
	}
	s.sink.Emit(event)

	counter := stats.CounterAnalyze
	if kind == "gap" {
		counter = stats.CounterGap
	}
	if opErr != nil && kind == "analyze" {
		counter = stats.CounterAnalyzeError
	}
	if err := s.counter.Inc(ctx, counter); err != nil {
		s.log.Warn("stats increment failed", zap.Error(err))
	}

	if s.history != nil {
		var resultJSON json.RawMessage
		if result != nil {
			resultJSON, _ = json.Marshal(result)
		}
		rec := Request{
			RequestID:   requestID,
			UserID:      actorID,
			Kind:        kind,
			VacancyText: vacancy,
			ResumeText:  resume,
			Result:      resultJSON,
			Status:      status,
			Error:       errText,
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.history.Store(ctx, rec); err != nil {
			s.log.Warn("history store failed",
				zap.String("request_id", requestID.String()), zap.Error(err))
		}
	}

	s.log.Info("request finished",
		zap.String("request_id", requestID.String()),
		zap.String("kind", kind),
		zap.String("status", status),
		zap.Int64("duration_ms", event.DurationMS),
	)
}

