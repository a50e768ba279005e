package bough

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/jward/bough/internal/source"
)

// defWork is one unit awaiting a definition scan, tagged with its position so
// the merge preserves collection order.
type defWork struct {
	pos  int
	unit *source.Unit
}

// scanDefinitionsParallel scans units with a worker pool in three phases:
//
//	Phase A (serial):   cache lookups; unchanged units are answered from cache.
//	Phase B (parallel): definition scans for the remaining units.
//	Phase C (serial):   commit fresh results to the cache.
//
// Results are slotted by unit position, so first-wins index construction sees
// the same order as the serial pass regardless of worker scheduling.
func (e *Engine) scanDefinitionsParallel(ctx context.Context, units []*source.Unit) ([][]string, error) {
	perUnit := make([][]string, len(units))

	// ---- Phase A: serial cache lookups ----
	var pending []defWork
	for i, u := range units {
		names, hit, err := e.cachedDefinitions(u)
		if err != nil {
			return nil, err
		}
		if hit {
			perUnit[i] = names
			continue
		}
		pending = append(pending, defWork{pos: i, unit: u})
	}
	if len(pending) == 0 {
		return perUnit, nil
	}

	// ---- Phase B: parallel scan ----
	numWorkers := min(runtime.NumCPU(), len(pending))
	if numWorkers < 1 {
		numWorkers = 1
	}

	workCh := make(chan defWork, len(pending))
	for _, w := range pending {
		workCh <- w
	}
	close(workCh)

	type result struct {
		work  defWork
		names []string
		err   error
	}
	resultCh := make(chan result, len(pending))

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for w := range workCh {
				names, err := e.analyzer.Definitions(ctx, w.unit)
				resultCh <- result{work: w, names: names, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// ---- Phase C: serial commit ----
	var errs []error
	for res := range resultCh {
		if res.err != nil {
			errs = append(errs, fmt.Errorf("index %s: %w", res.work.unit.Path, res.err))
			continue
		}
		perUnit[res.work.pos] = res.names
		if err := e.commitDefinitions(res.work.unit, res.names); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("bough: indexing had %d error(s): %w", len(errs), errs[0])
	}
	return perUnit, nil
}
