// Package notify delivers user-facing messages and rate alerts.
package notify

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Level is the severity of a notification.
type Level string

// Notification levels.
const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// Notification is one message for the operator.
type Notification struct {
	Level   Level
	Message string
	Time    time.Time
}

// Notifier delivers a notification to one sink.
type Notifier interface {
	Notify(ctx context.Context, note Notification) error
}

// Bus fans notifications out to every sink. Show is fire-and-forget:
// delivery failures are logged, never returned.
type Bus struct {
	sinks  []Notifier
	logger zerolog.Logger
	now    func() time.Time
}

// NewBus builds a bus over sinks; nil sinks are skipped.
func NewBus(logger zerolog.Logger, sinks ...Notifier) *Bus {
	active := make([]Notifier, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			active = append(active, s)
		}
	}
	return &Bus{
		sinks:  active,
		logger: logger.With().Str("component", "notify").Logger(),
		now:    time.Now,
	}
}

// Show delivers message at level to every sink.
func (b *Bus) Show(ctx context.Context, level Level, message string) {
	if b == nil {
		return
	}
	note := Notification{Level: level, Message: message, Time: b.now().UTC()}
	for _, sink := range b.sinks {
		if err := sink.Notify(ctx, note); err != nil {
			b.logger.Warn().Err(err).Str("level", string(level)).Msg("notification delivery failed")
		}
	}
}

// Success is Show at LevelSuccess.
func (b *Bus) Success(ctx context.Context, message string) { b.Show(ctx, LevelSuccess, message) }

// Error is Show at LevelError.
func (b *Bus) Error(ctx context.Context, message string) { b.Show(ctx, LevelError, message) }

// Warning is Show at LevelWarning.
func (b *Bus) Warning(ctx context.Context, message string) { b.Show(ctx, LevelWarning, message) }

// Info is Show at LevelInfo.
func (b *Bus) Info(ctx context.Context, message string) { b.Show(ctx, LevelInfo, message) }

// Console writes one line per notification to w.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole builds a console sink.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Notify prints "[LEVEL] message".
func (c *Console) Notify(_ context.Context, note Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.w, "[%s] %s\n", strings.ToUpper(string(note.Level)), note.Message)
	return err
}

// Log records notifications in the structured log.
type Log struct {
	logger zerolog.Logger
}

// NewLog builds a log sink.
func NewLog(logger zerolog.Logger) *Log {
	return &Log{logger: logger.With().Str("component", "notify_log").Logger()}
}

// Notify logs the notification at a matching level.
func (l *Log) Notify(_ context.Context, note Notification) error {
	var event *zerolog.Event
	switch note.Level {
	case LevelError:
		event = l.logger.Error()
	case LevelWarning:
		event = l.logger.Warn()
	default:
		event = l.logger.Info()
	}
	event.Str("level_name", string(note.Level)).Msg(note.Message)
	return nil
}

// Recorder keeps notifications in memory.
type Recorder struct {
	mu    sync.Mutex
	notes []Notification
}

// Notify appends note.
func (r *Recorder) Notify(_ context.Context, note Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, note)
	return nil
}

// Notes returns a copy of the recorded notifications.
func (r *Recorder) Notes() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.notes))
	copy(out, r.notes)
	return out
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notes) == 0 {
		return Notification{}, false
	}
	return r.notes[len(r.notes)-1], true
}

var (
	_ Notifier = (*Console)(nil)
	_ Notifier = (*Log)(nil)
	_ Notifier = (*Recorder)(nil)
)
