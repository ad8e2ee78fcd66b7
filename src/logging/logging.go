package logging

import (
	"io"
	"log/slog"
	"strings"
)

//output formats accepted by New
const (
	FormatText = "text"
	FormatJSON = "json"
)

//ParseLevel converts a level name (debug, info, warn, error, case is ignored)
//slog offsets like "info+2" are accepted as well
func ParseLevel(name string) (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(strings.TrimSpace(name)))
	return l, err
}

//New builds the logger writing to w
//an unknown level falls back to info, any format other than json gives text records
func New(level string, format string, w io.Writer) *slog.Logger {
	l, err := ParseLevel(level)
	if err != nil {
		l = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: l}
	if strings.EqualFold(format, FormatJSON) {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

//Discard returns the logger dropping every record
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
