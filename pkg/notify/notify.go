// Package notify carries user-facing notices from components to whatever
// surface displays them. Components receive a Notifier explicitly instead of
// looking one up.
package notify

import (
	"sync"

	"go.uber.org/zap"
)

// Level classifies a notice.
type Level string

const (
	Info    Level = "info"
	Success Level = "success"
	Warning Level = "warning"
	Error   Level = "error"
)

// Notifier receives user-facing notices.
type Notifier interface {
	Notify(level Level, message string)
}

// Nop returns a Notifier that discards every notice.
func Nop() Notifier {
	return nopNotifier{}
}

type nopNotifier struct{}

func (nopNotifier) Notify(Level, string) {}

// ZapNotifier forwards notices to a structured logger.
type ZapNotifier struct {
	logger *zap.Logger
}

// NewZapNotifier creates a notifier backed by logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewZapNotifier(logger *zap.Logger) *ZapNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapNotifier{logger: logger}
}

// Notify logs the message at the matching zap level.
func (n *ZapNotifier) Notify(level Level, message string) {
	fields := []zap.Field{
		zap.String("op", "notify.Notify"),
		zap.String("notice", string(level)),
	}
	switch level {
	case Warning:
		n.logger.Warn(message, fields...)
	case Error:
		n.logger.Error(message, fields...)
	default:
		n.logger.Info(message, fields...)
	}
}

// Notice is a single recorded notification.
type Notice struct {
	Level   Level
	Message string
}

// Recorder keeps every notice in memory. It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify records the notice.
func (r *Recorder) Notify(level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, Notice{Level: level, Message: message})
}

// Notices returns a copy of the recorded notices in arrival order.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}
