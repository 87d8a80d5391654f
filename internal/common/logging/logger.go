package logging

import (
	"fmt"
	"os"
	"path"
	"runtime"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// ============================================================
// Named loggers
// ============================================================

var (
	mu      sync.Mutex
	level   = logrus.InfoLevel
	loggers = map[string]*logrus.Logger{}
)

// Named возвращает логгер подсистемы. Повторный вызов с тем же именем отдает тот же логгер.
func Named(name string) *logrus.Logger {
	mu.Lock()
	defer mu.Unlock()

	if l, ok := loggers[name]; ok {
		return l
	}
	l := &logrus.Logger{
		Out:       os.Stderr,
		Formatter: &CallerTextFormatter{Name: name, TextFormatter: logrus.TextFormatter{FullTimestamp: true}},
		Hooks:     make(logrus.LevelHooks),
		Level:     level,
		ExitFunc:  os.Exit,
	}
	loggers[name] = l
	return l
}

// SetLevel меняет уровень всех уже созданных и будущих логгеров.
func SetLevel(name string) error {
	lvl, err := logrus.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	level = lvl
	for _, l := range loggers {
		l.SetLevel(lvl)
	}
	return nil
}

// CallerTextFormatter добавляет имя подсистемы и место вызова к сообщению.
type CallerTextFormatter struct {
	logrus.TextFormatter
	Name string
}

func (f *CallerTextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	file, line := callerOutsideLogrus()
	entry.Message = fmt.Sprintf("[%s %s:%03d] %s", f.Name, path.Base(file), line, entry.Message)
	return f.TextFormatter.Format(entry)
}

func callerOutsideLogrus() (string, int) {
	for skip := 3; skip < 15; skip++ {
		_, file, line, ok := runtime.Caller(skip)
		if !ok {
			break
		}
		if strings.Contains(file, "sirupsen/logrus") || strings.HasSuffix(file, "logging/logger.go") {
			continue
		}
		return file, line
	}
	return "???", 0
}
