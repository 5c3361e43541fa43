// Package notify delivers user facing notifications. The sink is fire and
// forget: emission order is preserved, nothing is retained, and no delivery
// result is reported back to the caller.
package notify

import (
	"sync"

	"github.com/dappsuite/wallet-orchestrator/pkg/logger"
)

// Severity classifies a notification for presentation purposes.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Sink accepts user facing notifications.
type Sink interface {
	Notify(severity Severity, message string)
}

// LoggerSink is a Sink that writes notifications to a Logger. It is the
// default sink when no presentation layer is attached.
type LoggerSink struct {
	lggr logger.Logger
}

func NewLoggerSink(lggr logger.Logger) *LoggerSink {
	return &LoggerSink{lggr: logger.Named(lggr, "notify")}
}

func (s *LoggerSink) Notify(severity Severity, message string) {
	switch severity {
	case SeverityError:
		s.lggr.Errorw(message, "severity", severity)
	default:
		s.lggr.Infow(message, "severity", severity)
	}
}

// Notification is a single recorded (severity, message) pair.
type Notification struct {
	Severity Severity
	Message  string
}

// Recorder is a Sink that records notifications in emission order. Intended
// for tests.
type Recorder struct {
	mu       sync.Mutex
	recorded []Notification
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(severity Severity, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.recorded = append(r.recorded, Notification{Severity: severity, Message: message})
}

// All returns a copy of the recorded notifications in emission order.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Notification, len(r.recorded))
	copy(out, r.recorded)

	return out
}
