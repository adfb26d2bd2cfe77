// Package stocksheet reads gzipped stock count sheets. Each line holds
// "item_id,quantity"; blank lines and lines starting with '#' are skipped.
package stocksheet

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"foodhub/internal/model"
)

// Sheet is the content of one stock sheet.
type Sheet struct {
	Source  string
	Updates []model.StockUpdate
}

// Loader reads a stock sheet from some location.
type Loader interface {
	// Load reads the gzipped sheet at path.
	Load(ctx context.Context, path string) (*Sheet, error)
}

// cancelCheckEvery is how many lines are parsed between context checks.
const cancelCheckEvery = 10_000

// Parse decodes a gzipped sheet from r.
func Parse(ctx context.Context, r io.Reader, source string) (*Sheet, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", source, err)
	}
	defer gz.Close()

	sheet := &Sheet{Source: source}

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		id, qty, ok := strings.Cut(line, ",")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, fmt.Errorf("%s:%d: expected item_id,quantity", source, lineNo)
		}
		n, err := strconv.Atoi(strings.TrimSpace(qty))
		if err != nil {
			return nil, fmt.Errorf("%s:%d: invalid quantity %q", source, lineNo, qty)
		}
		if n < 0 {
			return nil, fmt.Errorf("%s:%d: negative quantity %d", source, lineNo, n)
		}

		sheet.Updates = append(sheet.Updates, model.StockUpdate{ItemID: id, Quantity: n})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", source, err)
	}

	return sheet, nil
}

// Updates concatenates the updates of every sheet in order, so a later sheet
// overrides an earlier one when applied as a single bulk update.
func Updates(sheets []*Sheet) []model.StockUpdate {
	var out []model.StockUpdate
	for _, s := range sheets {
		out = append(out, s.Updates...)
	}
	return out
}
