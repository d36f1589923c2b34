package logger

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// ZerologLogger emits one JSON object per message through zerolog.
type ZerologLogger struct {
	zl zerolog.Logger
}

// NewZerologLogger writes JSON lines to w at the given minimum level.
// Each extra field pair is attached to every line (e.g. "run", runID).
// The caller keeps ownership of w.
func NewZerologLogger(w io.Writer, level Level, fields ...string) *ZerologLogger {
	ctx := zerolog.New(w).Level(zerologLevel(level)).With().Timestamp()
	for i := 0; i+1 < len(fields); i += 2 {
		ctx = ctx.Str(fields[i], fields[i+1])
	}
	return &ZerologLogger{zl: ctx.Logger()}
}

func zerologLevel(l Level) zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarning:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	}
	return zerolog.InfoLevel
}

func (z *ZerologLogger) Debug(format string, args ...interface{}) {
	z.zl.Debug().Msg(fmt.Sprintf(format, args...))
}

func (z *ZerologLogger) Info(format string, args ...interface{}) {
	z.zl.Info().Msg(fmt.Sprintf(format, args...))
}

func (z *ZerologLogger) Warning(format string, args ...interface{}) {
	z.zl.Warn().Msg(fmt.Sprintf(format, args...))
}

func (z *ZerologLogger) Error(format string, args ...interface{}) {
	z.zl.Error().Msg(fmt.Sprintf(format, args...))
}

// Close is a no-op; the writer belongs to the caller.
func (z *ZerologLogger) Close() error {
	return nil
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

var _ Logger = (*ZerologLogger)(nil)
