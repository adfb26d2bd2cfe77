//go:build ignore

// generate_sample_sheets writes gzipped stock count sheets for local runs of
// cmd/stockimport:
//
//	go run scripts/generate_sample_sheets.go
//	go run ./cmd/stockimport -sheet data/stock/opening.gz,data/stock/delivery.gz
package main

import (
	"compress/gzip"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

type line struct {
	itemID   string
	quantity int
}

func main() {
	dataDir := "data/stock"

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	// Later sheets win for items that appear in both.
	sheets := map[string][]line{
		"opening.gz": {
			{"ITEM-APPLE", 40},
			{"ITEM-BREAD", 25},
			{"ITEM-CHEESE", 12},
			{"ITEM-MILK", 30},
		},
		"delivery.gz": {
			{"ITEM-BREAD", 60},
			{"ITEM-FALAFEL", 18},
		},
	}

	for filename, lines := range sheets {
		filePath := filepath.Join(dataDir, filename)

		if err := createSheet(filePath, lines); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d lines\n", filePath, len(lines))
	}
}

func createSheet(filePath string, lines []line) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	if _, err := fmt.Fprintln(gzipWriter, "# item_id,quantity"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(gzipWriter, "%s,%d\n", l.itemID, l.quantity); err != nil {
			return fmt.Errorf("failed to write line: %w", err)
		}
	}

	return nil
}
