package webclient

import (
	"time"

	"github.com/raysh454/gesturepanel/internal/logging"
)

// Stage identifies where in the pipeline an event was emitted.
type Stage string

const (
	StageDispatch Stage = "dispatch"
	StageSuccess  Stage = "success"
	StageFailure  Stage = "failure"
)

// Event is one observability record. The client emits exactly one per stage
// per call.
type Event struct {
	Stage      Stage
	Method     string
	URL        string
	RequestID  string
	StatusCode int
	Kind       Kind
	Message    string
	Time       time.Time
}

// Observer receives pipeline events. Emit runs on the call's goroutine and
// must not block.
type Observer interface {
	Emit(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Emit(e Event) { f(e) }

// Observers fans an event out in order.
type Observers []Observer

func (obs Observers) Emit(e Event) {
	for _, o := range obs {
		if o != nil {
			o.Emit(e)
		}
	}
}

// LogObserver writes events to a logging.Logger: dispatch and success at
// info, failures at error.
type LogObserver struct {
	logger logging.Logger
}

func NewLogObserver(logger logging.Logger) *LogObserver {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &LogObserver{logger: logger}
}

func (lo *LogObserver) Emit(e Event) {
	fields := []logging.Field{{Key: "url", Value: e.URL}}
	if e.RequestID != "" {
		fields = append(fields, logging.Field{Key: "request_id", Value: e.RequestID})
	}

	switch e.Stage {
	case StageDispatch:
		lo.logger.Info("sending request", append(fields, logging.Field{Key: "method", Value: e.Method})...)
	case StageSuccess:
		lo.logger.Info("received response", append(fields, logging.Field{Key: "status", Value: e.StatusCode})...)
	case StageFailure:
		fields = append(fields, logging.Field{Key: "kind", Value: e.Kind.String()})
		if e.Kind == KindServerError {
			fields = append(fields, logging.Field{Key: "status", Value: e.StatusCode})
		}
		lo.logger.Error(e.Message, fields...)
	}
}
