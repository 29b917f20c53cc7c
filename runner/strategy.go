package runner

import (
	"fmt"
	"time"

	"github.com/kbukum/dft/errors"
	"github.com/kbukum/dft/project"
	"github.com/kbukum/dft/state"
)

// Entry is one unit of the execution plan: the whole pipeline for the full
// strategy, one batch window for microbatch.
type Entry struct {
	Window *Window
}

// Strategy plans the entries for one pipeline invocation.
type Strategy interface {
	Plan(pl *project.Pipeline, st map[string]any, now time.Time) ([]Entry, error)
}

// StrategyFor picks the strategy by the presence of a microbatch record.
func StrategyFor(pl *project.Pipeline, fullRefresh bool) Strategy {
	if pl.Microbatch != nil {
		return &microbatchStrategy{fullRefresh: fullRefresh}
	}
	return fullStrategy{}
}

// fullStrategy runs the pipeline once with no window.
type fullStrategy struct{}

func (fullStrategy) Plan(*project.Pipeline, map[string]any, time.Time) ([]Entry, error) {
	return []Entry{{}}, nil
}

// microbatchStrategy enumerates the half-open windows to process in this
// invocation.
type microbatchStrategy struct {
	fullRefresh bool
}

func (s *microbatchStrategy) Plan(pl *project.Pipeline, st map[string]any, now time.Time) ([]Entry, error) {
	mb := pl.Microbatch
	size, ok := batchDuration(mb.BatchSize)
	if !ok {
		return nil, errors.MicrobatchConfig(pl.Name, fmt.Sprintf("invalid batch_size %q", mb.BatchSize))
	}

	var begin time.Time
	haveBegin := mb.Begin != ""
	if haveBegin {
		t, err := parseTimestamp(pl.Name, "begin", mb.Begin, now.Location())
		if err != nil {
			return nil, err
		}
		begin = t
	}

	cursor, haveCursor, err := readCursor(pl.Name, st, now.Location())
	if err != nil {
		return nil, err
	}
	if s.fullRefresh {
		haveCursor = false
	}

	var start time.Time
	switch {
	case haveCursor:
		start = cursor
	case haveBegin:
		start = begin
	default:
		return nil, errors.MicrobatchConfig(pl.Name,
			"no cursor in state and no begin configured")
	}

	start = start.Add(-time.Duration(mb.Lookback) * size)
	if haveBegin && start.Before(begin) {
		start = begin
	}

	end := now
	if mb.End != "" {
		t, err := parseTimestamp(pl.Name, "end", mb.End, now.Location())
		if err != nil {
			return nil, err
		}
		if haveBegin && t.Before(begin) {
			return nil, errors.MicrobatchConfig(pl.Name, "end precedes begin")
		}
		if t.Before(end) {
			end = t
		}
	}
	end = truncateToBatch(end, size)

	var entries []Entry
	for w := start; w.Before(end); w = w.Add(size) {
		windowEnd := w.Add(size)
		if windowEnd.After(end) {
			windowEnd = end
		}
		entries = append(entries, Entry{Window: &Window{
			Start:           w,
			End:             windowEnd,
			Period:          mb.BatchSize,
			EventTimeColumn: mb.EventTimeColumn,
		}})
	}
	return entries, nil
}

func readCursor(pipeline string, st map[string]any, loc *time.Location) (time.Time, bool, error) {
	raw, ok := st[state.KeyLastProcessedTimestamp]
	if !ok {
		return time.Time{}, false, nil
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return time.Time{}, false, nil
	}
	t, err := parseTimestamp(pipeline, "cursor", s, loc)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}
