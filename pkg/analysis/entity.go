package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// FactRecord — нормализованная выжимка документа (вакансии или резюме).
// Создаётся экстрактором один раз и дальше не мутируется.
type FactRecord struct {
	Education       string   `json:"education"`
	ExperienceYears float64  `json:"experience_years"`
	HardSkills      []string `json:"hard_skills"`
	SoftSkills      []string `json:"soft_skills"`
}

// WeightConfig — баллы по категориям. Инвариант: сумма равна 100.
type WeightConfig struct {
	Education  float64 `json:"education_match"`
	Experience float64 `json:"experience_match"`
	HardSkills float64 `json:"hard_skills_match"`
	SoftSkills float64 `json:"soft_skills_match"`
}

// DefaultWeights — веса по умолчанию: hard skills важнее всего.
var DefaultWeights = WeightConfig{
	Education:  25,
	Experience: 25,
	HardSkills: 40,
	SoftSkills: 10,
}

func (w WeightConfig) Validate() error {
	for _, v := range []float64{w.Education, w.Experience, w.HardSkills, w.SoftSkills} {
		if v < 0 {
			return fmt.Errorf("вес не может быть отрицательным: %v", v)
		}
	}
	sum := w.Education + w.Experience + w.HardSkills + w.SoftSkills
	if math.Abs(sum-100) > 1e-9 {
		return fmt.Errorf("сумма весов должна быть 100, получено %v", sum)
	}
	return nil
}

// ScoreReport — структурированный отчёт скоринга. Читается нарративом и
// презентером, после построения не меняется.
type ScoreReport struct {
	MissingRequired []string           `json:"missing_required"`
	PartialMatch    []string           `json:"partial_match"`
	Strengths       []string           `json:"strengths"`
	ScoreDetails    map[string]float64 `json:"score_details"`
}

// ScoreResult — численный итог скоринга.
type ScoreResult struct {
	Score  int         `json:"score"` // 0-100
	Report ScoreReport `json:"report"`
}

type MatchStatus string

const (
	StatusMatch   MatchStatus = "match"
	StatusPartial MatchStatus = "partial"
	StatusGap     MatchStatus = "gap"
)

// MatchItem — статус категории для отображения. Всегда ровно четыре штуки.
type MatchItem struct {
	Item    string      `json:"item"`
	Status  MatchStatus `json:"status"`
	Comment string      `json:"comment"`
}

// Narrative — объяснение LLM поверх уже посчитанной оценки.
// Все поля опциональны: нарратив может отсутствовать целиком.
type Narrative struct {
	Verdict        string          `json:"verdict"`
	Company        *Company        `json:"company,omitempty"`
	Details        *Details        `json:"details,omitempty"`
	ProsCons       *ProsCons       `json:"pros_cons,omitempty"`
	Recommendation *Recommendation `json:"recommendation,omitempty"`
}

type Company struct {
	Name string `json:"name"`
	Info string `json:"info"`
}

type Details struct {
	Career string `json:"career"`
	Stack  string `json:"stack"`
	Team   string `json:"team"`
}

type ProsCons struct {
	Pros []string `json:"pros"`
	Cons []string `json:"cons"`
}

type Recommendation struct {
	Decision string   `json:"decision"`
	Actions  []string `json:"actions"`
}

// Profile — анкета кандидата, приходит вместе с текстом резюме.
type Profile struct {
	ResumeText string   `json:"resume_text"`
	SalaryMin  int      `json:"salary_min,omitempty"`
	WorkFormat []string `json:"work_format,omitempty"`
	RedFlags   []string `json:"red_flags,omitempty"`
	MustHave   []string `json:"must_have,omitempty"`
}

// AnalyzeInput — вход операции анализа.
type AnalyzeInput struct {
	VacancyText string  `json:"vacancy_text"`
	Profile     Profile `json:"profile"`
}

// Result — итог анализа, отдаётся клиенту.
type Result struct {
	Score          int             `json:"score"`     // 1-10
	ScoreRaw       int             `json:"score_raw"` // 0-100
	Verdict        string          `json:"verdict"`
	Matches        []MatchItem     `json:"matches"`
	Company        *Company        `json:"company,omitempty"`
	Details        *Details        `json:"details,omitempty"`
	ProsCons       *ProsCons       `json:"pros_cons,omitempty"`
	Recommendation *Recommendation `json:"recommendation,omitempty"`
}

// GapRequirement — одно требование вакансии в GAP-анализе.
type GapRequirement struct {
	Requirement    string `json:"requirement"`
	Status         string `json:"status"` // match|partial|gap
	FoundInResume  string `json:"found_in_resume"`
	Recommendation string `json:"recommendation"`
}

// GapReport — результат GAP-анализа резюме относительно вакансии.
type GapReport struct {
	Requirements []GapRequirement `json:"requirements"`
	QuickWins    []string         `json:"quick_wins"`
	Summary      string           `json:"summary"`
}

// Request — запись истории запросов.
type Request struct {
	ID          int64           `json:"id"`
	RequestID   uuid.UUID       `json:"request_id"`
	UserID      uuid.UUID       `json:"user_id"`
	Kind        string          `json:"kind"` // analyze|gap
	VacancyText string          `json:"vacancy_text"`
	ResumeText  string          `json:"resume_text"`
	Result      json.RawMessage `json:"result,omitempty"`
	Status      string          `json:"status"` // ok|error
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Repository — порт для истории запросов.
type Repository interface {
	Store(ctx context.Context, r Request) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Request, error)
	// ListAll — админ-доступ; userID фильтрует, nil — все пользователи.
	ListAll(ctx context.Context, userID *uuid.UUID, limit, offset int) ([]Request, error)
}

// ErrValidation — ошибка входных данных; код отдаётся клиенту как есть.
type ErrValidation string

func (e ErrValidation) Error() string { return string(e) }

const ErrTextTooShort = ErrValidation("text_too_short")
