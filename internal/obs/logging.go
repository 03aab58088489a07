// Package obs contains observability utilities such as logging.
package obs

import (
	"log/slog"
	"os"
)

// Logger is the global structured logger used by the service. It defaults
// to slog's standard logger until InitLogger swaps in the JSON handler.
var Logger = slog.Default()

// InitLogger initializes the global Logger with a JSON handler at info level.
func InitLogger() *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	Logger = slog.New(h)
	return Logger
}
