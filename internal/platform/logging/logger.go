package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level = zapcore.Level

const (
	LevelDebug = zapcore.DebugLevel
	LevelInfo  = zapcore.InfoLevel
	LevelWarn  = zapcore.WarnLevel
	LevelError = zapcore.ErrorLevel
)

// badKey replaces a key that is not a non-empty string.
const badKey = "!BADKEY"

// Logger takes slog style key/value pairs and writes them through zap.
// The Context variants add trace_id and span_id when a span is active.
type Logger struct {
	zap      *zap.Logger
	syncOnce *sync.Once
}

var fallback atomic.Pointer[Logger]

func init() {
	fallback.Store(NewNop())
}

func NewJSON(level Level) *Logger {
	return New(level, os.Stdout)
}

// New writes one JSON object per line to w, dropping entries below level.
func New(level Level, w io.Writer) *Logger {
	core := zapcore.NewCore(zapcore.NewJSONEncoder(jsonEncoding()), zapcore.Lock(zapcore.AddSync(w)), level)
	return wrap(zap.New(core,
		zap.AddCaller(),
		zap.AddCallerSkip(2),
		zap.AddStacktrace(zapcore.ErrorLevel),
	))
}

func NewNop() *Logger {
	return wrap(zap.NewNop())
}

func wrap(z *zap.Logger) *Logger {
	return &Logger{zap: z, syncOnce: &sync.Once{}}
}

func jsonEncoding() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.MessageKey = "msg"
	cfg.NameKey = "logger"
	cfg.FunctionKey = zapcore.OmitKey
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	return cfg
}

// ParseLevel reads LOG_LEVEL values. Anything unknown is info.
func ParseLevel(v string) Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Default is the logger services fall back to when none is injected.
func Default() *Logger {
	return fallback.Load()
}

func SetDefault(logger *Logger) {
	if logger == nil {
		logger = NewNop()
	}
	fallback.Store(logger)
}

// Sync flushes buffered entries. Only the first call on a logger tree
// reaches zap; later calls are no-ops.
func (l *Logger) Sync() error {
	if l == nil {
		return nil
	}
	var err error
	l.syncOnce.Do(func() { err = l.zap.Sync() })
	return err
}

func (l *Logger) With(args ...any) *Logger {
	base := l.orDefault()
	return &Logger{zap: base.zap.With(fieldsOf(args)...), syncOnce: base.syncOnce}
}

// Named tags entries with the component that wrote them.
func (l *Logger) Named(component string) *Logger {
	base := l.orDefault()
	return &Logger{zap: base.zap.Named(component), syncOnce: base.syncOnce}
}

func (l *Logger) Debug(msg string, args ...any) { l.write(nil, LevelDebug, msg, args) }
func (l *Logger) Info(msg string, args ...any)  { l.write(nil, LevelInfo, msg, args) }
func (l *Logger) Warn(msg string, args ...any)  { l.write(nil, LevelWarn, msg, args) }
func (l *Logger) Error(msg string, args ...any) { l.write(nil, LevelError, msg, args) }

func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelDebug, msg, args)
}

func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelInfo, msg, args)
}

func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelWarn, msg, args)
}

func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelError, msg, args)
}

func (l *Logger) orDefault() *Logger {
	if l == nil || l.zap == nil {
		return Default()
	}
	return l
}

func (l *Logger) write(ctx context.Context, level Level, msg string, args []any) {
	entry := l.orDefault().zap.Check(level, msg)
	if entry == nil {
		return
	}
	entry.Write(append(fieldsOf(args), spanFields(ctx)...)...)
}

func spanFields(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return []zap.Field{
		zap.Stringer("trace_id", sc.TraceID()),
		zap.Stringer("span_id", sc.SpanID()),
	}
}

// fieldsOf pairs up args. A trailing key without a value is kept with a
// null value so the mistake shows in the output.
func fieldsOf(args []any) []zap.Field {
	if len(args) == 0 {
		return nil
	}

	out := make([]zap.Field, 0, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok || key == "" {
			key = badKey
		}
		if i+1 == len(args) {
			out = append(out, zap.Reflect(key, nil))
			break
		}
		out = append(out, field(key, args[i+1]))
	}
	return out
}

func field(key string, value any) zap.Field {
	switch v := value.(type) {
	case error:
		return zap.NamedError(key, v)
	case string:
		return zap.String(key, v)
	case time.Duration:
		return zap.Duration(key, v)
	case time.Time:
		return zap.Time(key, v)
	case fmt.Stringer:
		return zap.Stringer(key, v)
	default:
		return zap.Any(key, v)
	}
}
