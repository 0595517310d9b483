package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

const (
	LoggingFormatJson = "json"
	LoggingFormatText = "text"
)

// NewLogger builds the process logger. The json format is meant for log collectors and
// follows the GCP structured logging field names, the text format is meant for a terminal.
func NewLogger(format string, level slog.Level) *slog.Logger {
	var handler slog.Handler
	if format == LoggingFormatJson {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: GCPLoggerAttributeReplacer,
		})
	} else {
		handler = LocalDevHandlerOptions{
			SlogOpts: slog.HandlerOptions{Level: level},
			UseColor: true,
		}.NewLocalDevHandler(os.Stdout)
	}
	return slog.New(requestIdHandler{Handler: handler})
}

// requestIdHandler adds the id of the current request, if any, to every record.
type requestIdHandler struct {
	slog.Handler
}

func (h requestIdHandler) Handle(ctx context.Context, r slog.Record) error {
	if requestId := RequestIdFromContext(ctx); requestId != "" {
		r.AddAttrs(slog.String("request_id", requestId))
	}
	return h.Handler.Handle(ctx, r)
}

func (h requestIdHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return requestIdHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h requestIdHandler) WithGroup(name string) slog.Handler {
	return requestIdHandler{Handler: h.Handler.WithGroup(name)}
}

var gcpSeverities = []struct {
	below    slog.Level
	severity string
}{
	{slog.LevelInfo, "DEBUG"},
	{slog.LevelWarn, "INFO"},
	{slog.LevelError, "WARNING"},
}

func GCPLoggerAttributeReplacer(groups []string, a slog.Attr) slog.Attr {
	// stackdriver reads the main message from "message"
	if a.Key == slog.MessageKey {
		a.Key = "message"
		return a
	}

	if a.Key == slog.LevelKey {
		a.Key = "severity"
		level, _ := a.Value.Any().(slog.Level)
		a.Value = slog.StringValue("ERROR")
		for _, s := range gcpSeverities {
			if level < s.below {
				a.Value = slog.StringValue(s.severity)
				break
			}
		}
	}
	return a
}

// LocalDevHandler prints "time level message" followed by the attributes in text form.
type LocalDevHandler struct {
	opts  LocalDevHandlerOptions
	attrs slog.Handler
	mu    *sync.Mutex
	w     io.Writer
}

type LocalDevHandlerOptions struct {
	SlogOpts slog.HandlerOptions
	UseColor bool
}

func (opts LocalDevHandlerOptions) NewLocalDevHandler(w io.Writer) *LocalDevHandler {
	textOpts := opts.SlogOpts
	textOpts.AddSource = false
	textOpts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
		switch a.Key {
		case slog.TimeKey, slog.LevelKey, slog.MessageKey:
			return slog.Attr{}
		}
		if opts.SlogOpts.ReplaceAttr != nil {
			return opts.SlogOpts.ReplaceAttr(groups, a)
		}
		return a
	}
	return &LocalDevHandler{
		opts:  opts,
		attrs: slog.NewTextHandler(w, &textOpts),
		mu:    &sync.Mutex{},
		w:     w,
	}
}

func (h *LocalDevHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.attrs.Enabled(ctx, level)
}

func (h *LocalDevHandler) Handle(ctx context.Context, r slog.Record) error {
	level := r.Level.String()
	if h.opts.UseColor {
		level = colorLevel(r.Level)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s %s %s ", r.Time.Format(time.RFC3339), level, r.Message)

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := h.w.Write(buf.Bytes()); err != nil {
		return err
	}
	return h.attrs.Handle(ctx, r)
}

func (h *LocalDevHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LocalDevHandler{opts: h.opts, attrs: h.attrs.WithAttrs(attrs), mu: h.mu, w: h.w}
}

func (h *LocalDevHandler) WithGroup(name string) slog.Handler {
	return &LocalDevHandler{opts: h.opts, attrs: h.attrs.WithGroup(name), mu: h.mu, w: h.w}
}

func colorLevel(level slog.Level) string {
	// ansi color codes
	color := 31
	switch {
	case level < slog.LevelInfo:
		color = 35
	case level < slog.LevelWarn:
		color = 34
	case level < slog.LevelError:
		color = 33
	}
	return fmt.Sprintf("\x1b[%dm%s\x1b[0m", color, level.String())
}
