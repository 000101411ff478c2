package cli

import (
	"log/slog"
	"net/url"
	"os"
	"strings"
)

func newLogger(level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(level)})).With(
		slog.String("service", serviceName),
	)
}

// parseLogLevel accepts slog level names ("debug", "warn+2", ...) and
// "warning"; anything else is info.
func parseLogLevel(level string) slog.Level {
	level = strings.TrimSpace(level)
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// databaseLogArgs describes the target database without leaking credentials.
func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil || u.Scheme == "" {
		return []any{slog.String("db_url", "invalid")}
	}
	args := []any{
		slog.String("db_host", orUnknown(u.Hostname())),
		slog.String("db_port", cmpOr(u.Port(), "default")),
		slog.String("db_name", orUnknown(strings.TrimPrefix(u.Path, "/"))),
	}
	if mode := u.Query().Get("sslmode"); mode != "" {
		args = append(args, slog.String("db_sslmode", mode))
	}
	return args
}

func orUnknown(s string) string {
	return cmpOr(s, "unknown")
}

// cmpOr returns the first argument that is not the zero value, matching
// cmp.Or from Go 1.22 (not available on the Go 1.21 toolchain).
func cmpOr[T comparable](vals ...T) T {
	var zero T
	for _, v := range vals {
		if v != zero {
			return v
		}
	}
	return zero
}
