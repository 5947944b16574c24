// Package audit — боковой канал журналирования запросов. Движок анализа
// только сигналит "запиши это"; отказ любого синка гасится на его границе
// и никогда не попадает в стек вызовов движка.
package audit

import "time"

// Event — одно событие анализа. Полные тексты присутствуют только там,
// где синк сам решает их писать.
type Event struct {
	Time       time.Time      `json:"ts"`
	RequestID  string         `json:"request_id"`
	UserID     string         `json:"user_id,omitempty"`
	Kind       string         `json:"kind,omitempty"`
	Status     string         `json:"status"`
	DurationMS int64          `json:"duration_ms"`
	Error      string         `json:"error,omitempty"`
	ScoreRaw   *int           `json:"score_raw,omitempty"`
	Score      *int           `json:"score,omitempty"`
	Meta       map[string]any `json:"meta,omitempty"`

	// Полный вариант записи.
	VacancyText string `json:"vacancy_text,omitempty"`
	ResumeText  string `json:"resume_text,omitempty"`
	Result      any    `json:"result,omitempty"`
}

// Sink принимает события. Реализации не возвращают ошибок: журналирование
// не имеет права ломать запрос.
type Sink interface {
	Emit(e Event)
}

// Nop — синк-заглушка.
type Nop struct{}

func (Nop) Emit(Event) {}

// Multi рассылает событие нескольким синкам.
type Multi []Sink

func (m Multi) Emit(e Event) {
	for _, s := range m {
		s.Emit(e)
	}
}
