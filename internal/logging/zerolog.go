package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// ZerologLogger adapts zerolog.Logger to Logger.
type ZerologLogger struct {
	l zerolog.Logger
}

func NewZerologLogger(l zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{l: l}
}

// New builds a logger writing to w. Format "console" gives human-readable
// output when w is a terminal and falls back to JSON otherwise; "json"
// always writes JSON lines. Unknown levels default to info.
func New(w io.Writer, level, format string) *ZerologLogger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	out := w
	if format == "console" && isTerminal(w) {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	return NewZerologLogger(zerolog.New(out).Level(lvl).With().Timestamp().Logger())
}

// Nop returns a logger that discards everything.
func Nop() *ZerologLogger {
	return NewZerologLogger(zerolog.Nop())
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (z *ZerologLogger) Debug(ctx context.Context, msg string, args ...any) {
	z.write(ctx, z.l.Debug(), msg, args)
}

func (z *ZerologLogger) Info(ctx context.Context, msg string, args ...any) {
	z.write(ctx, z.l.Info(), msg, args)
}

func (z *ZerologLogger) Warn(ctx context.Context, msg string, args ...any) {
	z.write(ctx, z.l.Warn(), msg, args)
}

func (z *ZerologLogger) Error(ctx context.Context, msg string, args ...any) {
	z.write(ctx, z.l.Error(), msg, args)
}

func (z *ZerologLogger) With(args ...any) Logger {
	return &ZerologLogger{l: z.l.With().Fields(normalize(args)).Logger()}
}

func (z *ZerologLogger) write(ctx context.Context, e *zerolog.Event, msg string, args []any) {
	if e == nil {
		return
	}
	if ctx != nil {
		e = e.Ctx(ctx)
	}
	e.Fields(normalize(args)).Msg(msg)
}

// normalize turns args into the []any key-value form zerolog expects,
// stringifying keys and padding a dangling key with a nil value.
func normalize(args []any) []any {
	if len(args) == 0 {
		return nil
	}
	out := make([]any, 0, len(args)+1)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = "!BADKEY"
		}
		var val any
		if i+1 < len(args) {
			val = args[i+1]
		}
		if err, isErr := val.(error); isErr {
			val = err.Error()
		}
		out = append(out, key, val)
	}
	return out
}
