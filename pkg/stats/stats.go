// Package stats — счётчики использования сервиса.
package stats

import "context"

// Counter — порт для счётчиков. Инкремент best-effort: вызывающая сторона
// глотает ошибку, счётчики не важнее самих запросов.
type Counter interface {
	Inc(ctx context.Context, name string) error
	Snapshot(ctx context.Context) (map[string]int64, error)
}

// Имена счётчиков.
const (
	CounterAnalyze      = "analyze"
	CounterAnalyzeError = "analyze_error"
	CounterGap          = "gap"
)

// Nop — заглушка для тестов и конфигураций без БД.
type Nop struct{}

func (Nop) Inc(context.Context, string) error { return nil }

func (Nop) Snapshot(context.Context) (map[string]int64, error) {
	return map[string]int64{}, nil
}
