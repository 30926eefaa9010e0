package logger

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Level defines log levels.
type Level int8

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
	PanicLevel
	NoLevel
	Disabled
	TraceLevel Level = -1
)

// Common field names used across the signaling modules.
const (
	// DirectionField shows a message flow: ← in, → out, x closed.
	DirectionField  = "d"
	ConnectionField = "cid"
	RoomField       = "room"
	RoleField       = "role"
	ModuleField     = "m"
)

func (l Level) String() string {
	switch l {
	case TraceLevel:
		return zerolog.LevelTraceValue
	case DebugLevel:
		return zerolog.LevelDebugValue
	case InfoLevel:
		return zerolog.LevelInfoValue
	case WarnLevel:
		return zerolog.LevelWarnValue
	case ErrorLevel:
		return zerolog.LevelErrorValue
	case FatalLevel:
		return zerolog.LevelFatalValue
	case PanicLevel:
		return zerolog.LevelPanicValue
	case Disabled:
		return "disabled"
	case NoLevel:
		return ""
	}
	return strconv.Itoa(int(l))
}

var pid = os.Getpid()

type Logger struct {
	logger *zerolog.Logger
}

// New makes a JSON logger writing into stderr.
func New(isDebug bool) *Logger {
	zerolog.SetGlobalLevel(levelOf(isDebug))
	logger := zerolog.New(os.Stderr).With().Timestamp().Fields(map[string]any{"pid": pid}).Logger()
	return &Logger{logger: &logger}
}

// NewConsole makes a human-readable logger, the tag param marks the app.
func NewConsole(isDebug bool, tag string, noColor bool) *Logger {
	zerolog.SetGlobalLevel(levelOf(isDebug))
	zerolog.TimeFieldFormat = time.RFC3339Nano
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05.0000", NoColor: noColor,
		PartsOrder: []string{
			zerolog.TimestampFieldName,
			"pid",
			zerolog.LevelFieldName,
			"s",
			DirectionField,
			ModuleField,
			zerolog.MessageFieldName,
		},
		FieldsExclude: []string{"s", DirectionField, ModuleField, "pid"},
	}

	if output.NoColor {
		output.FormatMessage = func(i any) string {
			if i == nil {
				return ""
			}
			return fmt.Sprintf("%v", i)
		}
	}

	logger := zerolog.New(output).With().
		Str("pid", fmt.Sprintf("%4x", pid)).
		Str("s", tag).
		Str(ModuleField, "").
		Str(DirectionField, " ").
		Timestamp().Logger()
	return &Logger{logger: &logger}
}

// NewWriter makes a logger with a custom sink, mostly for tests.
func NewWriter(w io.Writer, level Level) *Logger {
	logger := zerolog.New(w).Level(zerolog.Level(level)).With().Timestamp().Logger()
	return &Logger{logger: &logger}
}

func Default() *Logger { return &Logger{logger: &log.Logger} }

// Nop returns a disabled logger.
func Nop() *Logger { l := zerolog.Nop(); return &Logger{logger: &l} }

func levelOf(isDebug bool) zerolog.Level {
	if isDebug {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

// GetLevel returns the current Level of l.
func (l *Logger) GetLevel() Level { return Level(l.logger.GetLevel()) }

// With creates a child logger with the field added to its context.
func (l *Logger) With() zerolog.Context { return l.logger.With() }

// Debug starts a new message with debug level.
// You must call Msg on the returned event in order to send the event.
func (l *Logger) Debug() *zerolog.Event { return l.logger.Debug() }

// Info starts a new message with info level.
func (l *Logger) Info() *zerolog.Event { return l.logger.Info() }

// Warn starts a new message with warn level.
func (l *Logger) Warn() *zerolog.Event { return l.logger.Warn() }

// Error starts a new message with error level.
func (l *Logger) Error() *zerolog.Event { return l.logger.Error() }

// Fatal starts a new message with fatal level. The os.Exit(1) function
// is called by the Msg method.
func (l *Logger) Fatal() *zerolog.Event { return l.logger.Fatal() }

// Extend adds some additional context to the existing logger.
func (l *Logger) Extend(ctx zerolog.Context) *Logger {
	logger := ctx.Logger()
	return &Logger{logger: &logger}
}

// Module makes a child logger tagged with the module name.
func (l *Logger) Module(name string) *Logger { return l.Extend(l.With().Str(ModuleField, name)) }
