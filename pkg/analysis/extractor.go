package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/artem13815/matcher/pkg/llm"
	"github.com/artem13815/matcher/pkg/logger"
)

// Типы документов для промпта экстрактора.
const (
	DocVacancy = "вакансия"
	DocResume  = "резюме"
)

// Extractor извлекает из свободного текста структуру FactRecord через LLM.
// Политика мягкой деградации: сломанный ответ модели даёт пустую запись,
// а не ошибку — один неудачный разбор не должен ронять весь анализ.
// Ошибкой наружу выходит только отказ транспорта/авторизации LLM.
type Extractor struct {
	llm llm.ChatModel
	log *zap.Logger
}

func NewExtractor(model llm.ChatModel, log *zap.Logger) *Extractor {
	return &Extractor{llm: model, log: log}
}

const extractorSystemPrompt = "Ты — HR-аналитик. Извлеки структуру из текста. Отвечай строго JSON без пояснений."

func extractorUserPrompt(text, docType string) string {
	return fmt.Sprintf(`Тип документа: %s

Ответь СТРОГО JSON:
{
  "education": "кратко или пустая строка",
  "experience_years": число,
  "hard_skills": ["...", "..."],
  "soft_skills": ["...", "..."]
}

Правила:
- experience_years: число лет опыта (0, если не указано)
- hard_skills: технологии, инструменты, языки, платформы
- soft_skills: качества и поведенческие навыки
- если данных нет, верни пустые значения

ТЕКСТ:
%s
`, docType, text)
}

// payload отражает сырой ответ модели; несовпадение типов ломает разбор
// целиком, отсутствующие ключи просто остаются нулевыми.
type factPayload struct {
	Education       string   `json:"education"`
	ExperienceYears float64  `json:"experience_years"`
	HardSkills      []string `json:"hard_skills"`
	SoftSkills      []string `json:"soft_skills"`
}

// Extract возвращает FactRecord для текста. Никогда не возвращает ошибку
// разбора: только ошибки самого вызова LLM.
func (e *Extractor) Extract(ctx context.Context, text, docType string) (FactRecord, error) {
	raw, err := e.llm.Ask(ctx, extractorSystemPrompt, extractorUserPrompt(text, docType))
	if err != nil {
		return FactRecord{}, err
	}

	obj, ok := llm.ExtractJSONObject(raw)
	if !ok {
		e.warnParse(docType, "в ответе нет JSON-объекта", raw)
		return emptyFactRecord(), nil
	}
	var p factPayload
	if err := json.Unmarshal([]byte(obj), &p); err != nil {
		e.warnParse(docType, err.Error(), raw)
		return emptyFactRecord(), nil
	}

	rec := FactRecord{
		Education:       strings.TrimSpace(p.Education),
		ExperienceYears: p.ExperienceYears,
		HardSkills:      normalizeSkills(p.HardSkills),
		SoftSkills:      normalizeSkills(p.SoftSkills),
	}
	if rec.ExperienceYears < 0 {
		rec.ExperienceYears = 0
	}
	return rec, nil
}

func (e *Extractor) warnParse(docType, reason, raw string) {
	if e.log != nil {
		e.log.Warn("extraction degraded to empty record",
			zap.String("doc_type", docType),
			zap.String("reason", reason),
			zap.String("response", logger.Truncate(raw, 200)))
	}
}

func emptyFactRecord() FactRecord {
	return FactRecord{HardSkills: []string{}, SoftSkills: []string{}}
}

// normalizeSkills приводит навыки к нижнему регистру, убирает пробелы и
// дубликаты, сортирует.
func normalizeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
