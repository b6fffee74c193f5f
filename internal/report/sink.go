package report

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/athena-backtest/internal/logger"
)

// Sink receives plain text report lines.
type Sink interface {
	WriteLine(line string) error
}

// Style definitions for the console.
var (
	// TitleStyle for section headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// MutedStyle for table rules.
	MutedStyle = lipgloss.NewStyle().Faint(true)
)

// ConsoleSink writes lines to a terminal. Headers and rules are styled with lipgloss.
type ConsoleSink struct {
	out io.Writer
}

func NewConsoleSink(out io.Writer) *ConsoleSink {
	return &ConsoleSink{out: out}
}

func (s *ConsoleSink) WriteLine(line string) error {
	switch {
	case strings.HasPrefix(line, TitlePrefix):
		line = TitleStyle.Render(line)
	case strings.HasPrefix(line, RulePrefix):
		line = MutedStyle.Render(line)
	}

	_, err := fmt.Fprintln(s.out, line)

	return err
}

// LoggerSink forwards every line to the structured logger at info level.
type LoggerSink struct {
	log *logger.Logger
}

func NewLoggerSink(log *logger.Logger) *LoggerSink {
	return &LoggerSink{log: log}
}

func (s *LoggerSink) WriteLine(line string) error {
	s.log.Info(line)

	return nil
}

// BufferSink keeps lines in memory.
type BufferSink struct {
	mu    sync.Mutex
	lines []string
}

func NewBufferSink() *BufferSink {
	return &BufferSink{}
}

func (s *BufferSink) WriteLine(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = append(s.lines, line)

	return nil
}

// Lines returns a copy of everything written so far.
func (s *BufferSink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.lines))
	copy(out, s.lines)

	return out
}

// MultiSink writes each line to all sinks and stops at the first failure.
type MultiSink []Sink

func (m MultiSink) WriteLine(line string) error {
	for _, sink := range m {
		if err := sink.WriteLine(line); err != nil {
			return err
		}
	}

	return nil
}
