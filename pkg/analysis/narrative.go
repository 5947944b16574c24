package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/artem13815/matcher/pkg/llm"
)

// FallbackVerdict подставляется, когда нарратив не удалось получить.
const FallbackVerdict = "Готово. Посмотри совпадения и рекомендации."

// В промпт попадает не больше стольких записей из каждого списка отчёта.
const maxReportEntries = 6

// NarrativeGenerator просит LLM объяснить уже посчитанную оценку.
// Оценка передаётся модели как данность: пересчитывать её запрещено
// промптом, численный результат остаётся детерминированным.
// Любой отказ — транспорт, авторизация, кривой JSON — даёт пустой
// нарратив: баллы и совпадения доставляются клиенту в любом случае.
type NarrativeGenerator struct {
	llm llm.ChatModel
	log *zap.Logger
}

func NewNarrativeGenerator(model llm.ChatModel, log *zap.Logger) *NarrativeGenerator {
	return &NarrativeGenerator{llm: model, log: log}
}

const narrativeSystemPrompt = "Ты — карьерный консультант. Отвечай строго JSON без пояснений."

// Explain возвращает нарратив или пустую структуру. Ошибок не возвращает.
func (g *NarrativeGenerator) Explain(ctx context.Context, profile Profile, vacancyText string, report ScoreReport, score100, score10 int) Narrative {
	raw, err := g.llm.Ask(ctx, narrativeSystemPrompt, narrativePrompt(profile, vacancyText, report, score100, score10))
	if err != nil {
		if g.log != nil {
			g.log.Warn("narrative generation failed", zap.Error(err))
		}
		return Narrative{}
	}
	obj, ok := llm.ExtractJSONObject(raw)
	if !ok {
		g.warnParse("в ответе нет JSON-объекта")
		return Narrative{}
	}
	var n Narrative
	if err := json.Unmarshal([]byte(obj), &n); err != nil {
		g.warnParse(err.Error())
		return Narrative{}
	}
	return n
}

func (g *NarrativeGenerator) warnParse(reason string) {
	if g.log != nil {
		g.log.Warn("narrative degraded to empty", zap.String("reason", reason))
	}
}

func narrativePrompt(profile Profile, vacancyText string, report ScoreReport, score100, score10 int) string {
	details, _ := json.Marshal(report.ScoreDetails)
	salary := "не указана"
	if profile.SalaryMin > 0 {
		salary = fmt.Sprintf("%d", profile.SalaryMin)
	}
	return fmt.Sprintf(`Тебе уже дали оценку кандидата, НЕЛЬЗЯ считать её заново.
Сформируй краткое объяснение и рекомендации на основе отчёта.

ОЦЕНКА: %d/100 (это около %d/10)

ОТЧЁТ:
- Сильные стороны: %s
- Частичные совпадения: %s
- Пробелы: %s
- Детали: %s

ВАКАНСИЯ:
%s

ПРОФИЛЬ:
- Минимальная зарплата: %s
- Формат: %s
- Red flags: %s
- Must have: %s

Ответь СТРОГО JSON:
{
  "verdict": "1-2 предложения, без чисел",
  "company": {
    "name": "название компании или 'не указано'",
    "info": "1 предложение или 'не указано'"
  },
  "details": {
    "career": "1 предложение или 'не указано'",
    "stack": "1 предложение или 'не указано'",
    "team": "1 предложение или 'не указано'"
  },
  "pros_cons": {
    "pros": ["плюс 1", "плюс 2", "плюс 3"],
    "cons": ["минус 1", "минус 2", "минус 3"]
  },
  "recommendation": {
    "decision": "Откликайся / Подумай / Не рекомендую",
    "actions": ["совет 1", "совет 2"]
  }
}
`,
		score100, score10,
		joinCapped(report.Strengths),
		joinCapped(report.PartialMatch),
		joinCapped(report.MissingRequired),
		string(details),
		vacancyText,
		salary,
		orDefault(strings.Join(profile.WorkFormat, ", "), "не указан"),
		orDefault(strings.Join(profile.RedFlags, ", "), "нет"),
		orDefault(strings.Join(profile.MustHave, ", "), "нет"),
	)
}

// joinCapped ограничивает список, чтобы не раздувать промпт.
func joinCapped(items []string) string {
	if len(items) > maxReportEntries {
		items = items[:maxReportEntries]
	}
	if len(items) == 0 {
		return "нет"
	}
	return strings.Join(items, "; ")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
