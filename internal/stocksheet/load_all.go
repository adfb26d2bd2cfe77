package stocksheet

import (
	"context"
	"fmt"
	"sync"
)

// LoadAll loads every path concurrently and returns the sheets in the order
// of paths. The first failure, in path order, is returned.
func LoadAll(ctx context.Context, loader Loader, paths []string) ([]*Sheet, error) {
	type loadResult struct {
		index int
		sheet *Sheet
		err   error
	}

	resultChan := make(chan loadResult, len(paths))
	var wg sync.WaitGroup

	for i, path := range paths {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()

			sheet, err := loader.Load(ctx, path)
			resultChan <- loadResult{index: index, sheet: sheet, err: err}
		}(i, path)
	}

	wg.Wait()
	close(resultChan)

	results := make([]loadResult, len(paths))
	for result := range resultChan {
		results[result.index] = result
	}

	sheets := make([]*Sheet, 0, len(paths))
	for i, result := range results {
		if result.err != nil {
			return nil, fmt.Errorf("failed to load stock sheet %s: %w", paths[i], result.err)
		}
		sheets = append(sheets, result.sheet)
	}
	return sheets, nil
}
