package sentry

import (
	"context"
	"os"
	"time"

	sentrygo "github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
)

// FlushTime bounds how long Fatal waits for buffered events.
var FlushTime = 2 * time.Second

// Sentry builds one event. The zero value reports through the current hub.
type Sentry struct {
	context       echo.Context
	hub           *sentrygo.Hub
	error         error
	message       string
	level         sentrygo.Level
	extras        map[string]interface{}
	tags          map[string]string
	contextValues map[string]sentrygo.Context
}

func WithContext(ctx echo.Context) *Sentry {
	return new(Sentry).WithContext(ctx)
}

func (s *Sentry) WithContext(ctx echo.Context) *Sentry {
	s.context = ctx
	return s
}

func (s *Sentry) WithExtras(extras map[string]interface{}) *Sentry {
	s.extras = extras
	return s
}

func (s *Sentry) WithTags(tags map[string]string) *Sentry {
	s.tags = tags
	return s
}

func (s *Sentry) WithContextValues(values map[string]sentrygo.Context) *Sentry {
	s.contextValues = values
	return s
}

func (s *Sentry) Warning(msg string) {
	s.message = msg
	s.level = sentrygo.LevelWarning
	s.sendMessage()
}

func (s *Sentry) Error(err error) {
	s.error = err
	s.level = sentrygo.LevelError
	s.sendError()
}

// Fatal reports err and waits for delivery. It does not exit; callers decide.
func (s *Sentry) Fatal(err error) {
	s.error = err
	s.level = sentrygo.LevelFatal
	s.sendError()
	sentrygo.Flush(FlushTime)
}

func Fatal(err error) { new(Sentry).Fatal(err) }

func enabled() bool {
	return os.Getenv("APP_ENV") != "local" && os.Getenv("SENTRY_DSN") != ""
}

func (s *Sentry) sendMessage() {
	if !enabled() {
		return
	}
	hub := s.getHub()
	hub.WithScope(func(scope *sentrygo.Scope) {
		s.configScope(scope)
		hub.CaptureMessage(s.message)
	})
}

func (s *Sentry) sendError() {
	if !enabled() || s.error == nil {
		return
	}
	hub := s.getHub()
	hub.WithScope(func(scope *sentrygo.Scope) {
		s.configScope(scope)
		hub.CaptureException(s.error)
	})
}

func (s *Sentry) getHub() *sentrygo.Hub {
	if s.hub != nil {
		return s.hub
	}
	if s.context != nil {
		if hub := sentryecho.GetHubFromContext(s.context); hub != nil {
			return hub
		}
	}
	return sentrygo.CurrentHub()
}

func (s *Sentry) configScope(scope *sentrygo.Scope) {
	if s.level != "" {
		scope.SetLevel(s.level)
	}
	if len(s.extras) > 0 {
		scope.SetExtras(s.extras)
	}
	if len(s.tags) > 0 {
		scope.SetTags(s.tags)
	}
	for key, value := range s.contextValues {
		scope.SetContext(key, value)
	}
	if s.context != nil && s.context.Request() != nil {
		scope.SetRequest(s.context.Request())
	}
}

// Reporter forwards failures that callers absorb instead of returning. It
// picks up the request hub when the context carries one.
type Reporter struct{}

func NewReporter() *Reporter {
	return &Reporter{}
}

// Report sends err at error level.
func (Reporter) Report(ctx context.Context, err error, tags map[string]string) {
	s := new(Sentry).WithTags(tags)
	s.hub = sentrygo.GetHubFromContext(ctx)
	s.Error(err)
}

// Warn sends msg at warning level with err attached as an extra, so repeated
// upstream failures group under one message.
func (Reporter) Warn(ctx context.Context, msg string, err error, tags map[string]string) {
	s := new(Sentry).WithTags(tags)
	if err != nil {
		s.WithExtras(map[string]interface{}{"error": err.Error()})
	}
	s.hub = sentrygo.GetHubFromContext(ctx)
	s.Warning(msg)
}
