package job

import (
	"fmt"

	"github.com/rs/zerolog"
)

// asynqLogger adapts zerolog to asynq.Logger.
type asynqLogger struct {
	log *zerolog.Logger
}

func newAsynqLogger(log *zerolog.Logger) *asynqLogger {
	l := log.With().Str("component", "asynq").Logger()
	return &asynqLogger{log: &l}
}

func (a *asynqLogger) Debug(args ...any) { a.log.Debug().Msg(fmt.Sprint(args...)) }
func (a *asynqLogger) Info(args ...any)  { a.log.Info().Msg(fmt.Sprint(args...)) }
func (a *asynqLogger) Warn(args ...any)  { a.log.Warn().Msg(fmt.Sprint(args...)) }
func (a *asynqLogger) Error(args ...any) { a.log.Error().Msg(fmt.Sprint(args...)) }
func (a *asynqLogger) Fatal(args ...any) { a.log.Fatal().Msg(fmt.Sprint(args...)) }
