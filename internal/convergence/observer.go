package convergence

import (
	"fmt"
	"log"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Observer receives structured events during a convergence run.
type Observer interface {
	// Printf logs a formatted progress message.
	Printf(format string, v ...interface{})

	// Event emits a structured convergence event.
	Event(event Event)
}

// Event represents a structured convergence event.
type Event struct {
	Type      EventType
	Step      string
	Resource  string
	Message   string
	Timestamp time.Time
}

// EventType classifies convergence events.
type EventType string

const (
	// EventStepStarted indicates a convergence step has started.
	EventStepStarted EventType = "step.started"
	// EventStepCompleted indicates a convergence step completed successfully.
	EventStepCompleted EventType = "step.completed"
	// EventStepFailed indicates a convergence step failed.
	EventStepFailed EventType = "step.failed"

	// EventResourceExists indicates a probe found the resource already present.
	EventResourceExists EventType = "resource.exists"
	// EventResourceCreating indicates a resource is being created.
	EventResourceCreating EventType = "resource.creating"
	// EventResourceCreated indicates a resource was created successfully.
	EventResourceCreated EventType = "resource.created"
)

// ConsoleObserver implements Observer using the standard log package.
type ConsoleObserver struct{}

// NewConsoleObserver creates a console-based observer.
func NewConsoleObserver() *ConsoleObserver {
	return &ConsoleObserver{}
}

// Printf implements Observer.
func (o *ConsoleObserver) Printf(format string, v ...interface{}) {
	log.Printf(format, v...)
}

// Event implements Observer.
func (o *ConsoleObserver) Event(event Event) {
	log.Print(formatEvent(event))
}

// formatEvent formats an event for console output.
func formatEvent(event Event) string {
	parts := []string{string(event.Type)}
	if event.Step != "" {
		parts = append(parts, fmt.Sprintf("[%s]", event.Step))
	}
	if event.Resource != "" {
		parts = append(parts, fmt.Sprintf("resource=%s", event.Resource))
	}
	if event.Message != "" {
		parts = append(parts, event.Message)
	}
	return strings.Join(parts, " ")
}

// ZapObserver implements Observer on top of a zap logger.
type ZapObserver struct {
	log *zap.SugaredLogger
}

// NewZapObserver creates a zap-backed observer.
func NewZapObserver(logger *zap.Logger) *ZapObserver {
	return &ZapObserver{log: logger.Sugar()}
}

// Printf implements Observer.
func (o *ZapObserver) Printf(format string, v ...interface{}) {
	o.log.Infof(format, v...)
}

// Event implements Observer.
func (o *ZapObserver) Event(event Event) {
	o.log.Infow(event.Message,
		"event", string(event.Type),
		"step", event.Step,
		"resource", event.Resource,
	)
}
