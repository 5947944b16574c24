package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// JSONL пишет события в jsonl-файлы: мета-вариант без текстов документов
// и, отдельно, полный вариант. Любой из путей может быть пустым.
type JSONL struct {
	mu       sync.Mutex
	metaPath string
	fullPath string
	log      *zap.Logger
}

func NewJSONL(metaPath, fullPath string, log *zap.Logger) *JSONL {
	return &JSONL{metaPath: metaPath, fullPath: fullPath, log: log}
}

func (s *JSONL) Emit(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.metaPath != "" {
		meta := e
		meta.VacancyText = ""
		meta.ResumeText = ""
		meta.Result = nil
		s.appendLine(s.metaPath, meta)
	}
	if s.fullPath != "" {
		s.appendLine(s.fullPath, e)
	}
}

func (s *JSONL) appendLine(path string, e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		s.warn(path, err)
		return
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			s.warn(path, err)
			return
		}
	}
	fh, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		s.warn(path, err)
		return
	}
	defer fh.Close()
	if _, err := fh.Write(append(data, '\n')); err != nil {
		s.warn(path, err)
	}
}

func (s *JSONL) warn(path string, err error) {
	if s.log != nil {
		s.log.Warn("request log write failed", zap.String("path", path), zap.Error(err))
	}
}
