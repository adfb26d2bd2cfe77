package stocksheet

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for sheets on the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based sheet loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "sheet-loader").Logger(),
	}
}

// Load reads a gzipped sheet from disk.
func (l *fileLoader) Load(ctx context.Context, path string) (*Sheet, error) {
	l.logger.Info().Str("file", path).Msg("loading stock sheet")

	file, err := os.Open(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open stock sheet")
		return nil, fmt.Errorf("failed to open stock sheet %s: %w", path, err)
	}
	defer file.Close()

	sheet, err := Parse(ctx, file, path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to parse stock sheet")
		return nil, err
	}

	l.logger.Info().
		Str("file", path).
		Int("lines", len(sheet.Updates)).
		Msg("stock sheet loaded")

	return sheet, nil
}
