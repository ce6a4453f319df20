package diagnostic

import (
	"context"
	"log/slog"
)

// Log writes d to logger at the level matching its severity. Advisory
// findings go to debug.
func Log(ctx context.Context, logger *slog.Logger, d Diagnostic) {
	level := slog.LevelDebug
	switch d.Severity {
	case SeverityError:
		level = slog.LevelError
	case SeverityWarning:
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, d.Message, "code", d.Code, "block", d.Block, "type", d.BlockType, "field", d.FieldPath)
}
