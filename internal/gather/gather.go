// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gather defines the data-source contract for the briefing
// pipeline and runs a set of sources to completion. A source failure never
// fails the run: every outcome is folded into a Result.
package gather

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Source identifies one briefing data source.
type Source string

const (
	SourceArxiv      Source = "arxiv"
	SourceADS        Source = "ads"
	SourceNews       Source = "news"
	SourceMeditation Source = "meditation"
	SourceWeather    Source = "weather"
	SourceMarkets    Source = "markets"
	SourceGitHub     Source = "github"
)

// sourceOrder is the canonical briefing order: research sections first.
var sourceOrder = []Source{
	SourceArxiv,
	SourceADS,
	SourceNews,
	SourceMeditation,
	SourceWeather,
	SourceMarkets,
	SourceGitHub,
}

// Status describes the outcome of one source's run.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusError   Status = "error"
)

// Result is the envelope every source run produces. Data holds the
// source-specific payload and is populated only for StatusOK.
type Result struct {
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// Gatherer collects data from a single source.
type Gatherer interface {
	// Name returns the source identifier (e.g. "arxiv").
	Name() string

	// Available reports whether the source can run at all (credentials
	// present, required binaries on PATH). Unavailable sources are
	// skipped, not failed.
	Available() bool

	// Gather collects the source's data. The returned payload must be
	// JSON-serializable.
	Gather(ctx context.Context) (any, error)
}

// Constructor builds a gatherer. The registry holds constructors rather
// than instances so each run gets fresh state.
type Constructor func() Gatherer

// Registry maps sources to their constructors. It is built once at process
// start with explicit entries and passed down, never a lazily populated
// global.
type Registry map[Source]Constructor

// Ordered returns the registered sources in canonical briefing order.
func (r Registry) Ordered() []Source {
	var out []Source
	for _, src := range sourceOrder {
		if _, ok := r[src]; ok {
			out = append(out, src)
		}
	}
	// Sources outside the canonical list sort after it by name.
	var extra []Source
	for src := range r {
		if !canonical(src) {
			extra = append(extra, src)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

func canonical(src Source) bool {
	for _, s := range sourceOrder {
		if s == src {
			return true
		}
	}
	return false
}

// SafeGather runs one gatherer, converting every failure mode into a
// Result: unavailable sources become StatusSkipped, returned errors and
// panics become StatusError. It never propagates an error past the
// gatherer boundary.
func SafeGather(ctx context.Context, g Gatherer, log *logrus.Logger) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(logrus.Fields{"source": g.Name(), "panic": r}).Error("gatherer panicked")
			result = Result{Status: StatusError, Error: fmt.Sprintf("panic: %v", r)}
		}
	}()

	if !g.Available() {
		log.WithField("source", g.Name()).Info("gatherer skipped, not available")
		return Result{
			Status: StatusSkipped,
			Reason: fmt.Sprintf("%s gatherer is not available", g.Name()),
		}
	}

	data, err := g.Gather(ctx)
	if err != nil {
		log.WithFields(logrus.Fields{"source": g.Name(), "error": err}).Warn("gatherer failed")
		return Result{Status: StatusError, Error: err.Error()}
	}

	log.WithField("source", g.Name()).Info("gatherer finished")
	return Result{Status: StatusOK, Data: data}
}

// maxConcurrent bounds the gather fan-out. The sources are cheap HTTP
// calls, but arXiv and ADS both rate-limit aggressively on bursts.
const maxConcurrent = 4

// RunAll constructs and runs the requested sources concurrently and
// returns one Result per source. When only is empty, every registered
// source runs. Unknown source names are an error before anything runs.
func RunAll(ctx context.Context, registry Registry, only []Source, log *logrus.Logger) (map[Source]Result, error) {
	sources := only
	if len(sources) == 0 {
		sources = registry.Ordered()
	} else {
		for _, src := range sources {
			if _, ok := registry[src]; !ok {
				return nil, fmt.Errorf("unknown source %q (available: %v)", src, registry.Ordered())
			}
		}
	}

	results := make(map[Source]Result, len(sources))
	var mu sync.Mutex

	var grp errgroup.Group
	grp.SetLimit(maxConcurrent)
	for _, src := range sources {
		src := src
		construct := registry[src]
		grp.Go(func() error {
			res := SafeGather(ctx, construct(), log)
			mu.Lock()
			results[src] = res
			mu.Unlock()
			return nil
		})
	}

	// SafeGather never returns an error, so Wait cannot either.
	grp.Wait()
	return results, nil
}
