package bough

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jward/bough/internal/analyzer"
	"github.com/jward/bough/internal/source"
)

// transitiveClosure walks the call relation from the entry function to a
// fixpoint, returning the set of unit paths touched. Names absent from the
// index are false-positive call matches and are dropped silently. The
// processed set only grows and the index is finite, so the loop terminates
// even with mutual recursion.
func (e *Engine) transitiveClosure(ctx context.Context, byPath map[string]*source.Unit, index map[string]string, entry analyzer.Entry) (map[string]bool, error) {
	included := map[string]bool{entry.Unit: true}
	worklist := []string{entry.Name}
	processed := make(map[string]bool)

	for len(worklist) > 0 {
		name := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if processed[name] {
			continue
		}
		processed[name] = true

		owner, ok := index[name]
		if !ok {
			continue
		}
		included[owner] = true

		body, err := e.analyzer.Body(ctx, byPath[owner], name)
		if err != nil {
			return nil, fmt.Errorf("bough: extract %s: %w", name, err)
		}
		if body == "" {
			continue
		}

		calls, err := e.analyzer.Calls(ctx, byPath[owner], body)
		if err != nil {
			return nil, fmt.Errorf("bough: scan %s: %w", name, err)
		}

		var deps []string
		for _, call := range calls {
			if _, defined := index[call]; defined && !processed[call] {
				deps = append(deps, call)
				worklist = append(worklist, call)
			}
		}
		if len(deps) > 0 {
			e.logger.Debug("analyzing", "function", name, "dependencies", strings.Join(deps, ", "))
		}
	}
	return included, nil
}

// directReport performs the one-level check: the entry body plus the bodies
// of project functions it calls directly, grouped by owning unit and
// deduplicated by body text. Self-recursion is excluded so the entry body is
// never duplicated. Transitive callees are never visited.
func (e *Engine) directReport(ctx context.Context, byPath map[string]*source.Unit, index map[string]string, entry analyzer.Entry) (map[string][]string, error) {
	entryUnit := byPath[entry.Unit]
	entryBody, err := e.analyzer.Body(ctx, entryUnit, entry.Name)
	if err != nil {
		return nil, fmt.Errorf("bough: extract entry %s: %w", entry.Name, err)
	}
	if entryBody == "" {
		return nil, fmt.Errorf("%w: %s in %s", ErrEntryBodyNotFound, entry.Name, entry.Unit)
	}

	bodies := map[string]map[string]bool{
		entry.Unit: {entryBody: true},
	}

	calls, err := e.analyzer.Calls(ctx, entryUnit, entryBody)
	if err != nil {
		return nil, fmt.Errorf("bough: scan entry %s: %w", entry.Name, err)
	}

	var deps []string
	for _, call := range calls {
		owner, defined := index[call]
		if !defined || call == entry.Name {
			continue
		}
		deps = append(deps, call)

		body, err := e.analyzer.Body(ctx, byPath[owner], call)
		if err != nil {
			return nil, fmt.Errorf("bough: extract %s: %w", call, err)
		}
		if body == "" {
			continue
		}
		if bodies[owner] == nil {
			bodies[owner] = make(map[string]bool)
		}
		bodies[owner][body] = true
	}
	if len(deps) > 0 {
		e.logger.Debug("direct dependencies", "function", entry.Name, "dependencies", strings.Join(deps, ", "))
	}

	report := make(map[string][]string, len(bodies))
	for path, set := range bodies {
		texts := make([]string, 0, len(set))
		for body := range set {
			texts = append(texts, body)
		}
		sort.Strings(texts)
		report[path] = texts
	}
	return report, nil
}
