package utils

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

type sentryHook struct{}

func (h *sentryHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel}
}

func (h *sentryHook) Fire(entry *logrus.Entry) error {
	event := sentry.NewEvent()
	event.Level = sentry.LevelError
	if entry.Level <= logrus.FatalLevel {
		event.Level = sentry.LevelFatal
	}
	event.Message = entry.Message
	extra := make(map[string]any, len(entry.Data))
	for k, v := range entry.Data {
		if err, ok := v.(error); ok {
			extra[k] = err.Error()
			continue
		}
		extra[k] = v
	}
	event.Extra = extra
	sentry.CaptureEvent(event)
	return nil
}

// InitTelemetry hooks Sentry into Logger when dsn is set. The returned func
// flushes buffered events and is safe to call when telemetry is off.
func InitTelemetry(dsn, env, release string) (func(), error) {
	if dsn == "" {
		return func() {}, nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: env,
		Release:     release,
	}); err != nil {
		return func() {}, err
	}
	Logger.AddHook(&sentryHook{})
	return func() { sentry.Flush(2 * time.Second) }, nil
}

// CapturePanic reports a recovered panic value.
func CapturePanic(v any) {
	sentry.CurrentHub().Recover(v)
}
