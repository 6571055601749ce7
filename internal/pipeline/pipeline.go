// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"primerqc/core/quality"
	"primerqc/core/seq"
	"primerqc/core/thermo"
	"primerqc/core/tune"
	"primerqc/internal/fasta"
	"primerqc/internal/panel"
)

// Config controls a batch run.
type Config struct {
	Threads       int  // worker goroutines (>=1)
	Tune          bool // tune entries with tunable ends instead of scoring them as given
	MaxMismatches int  // allowed when locating a primer on its template
	Ions          thermo.Ions
	Quality       quality.Config
	TuneOptions   tune.Options
	Recorder      Recorder // optional
}

// Recorder observes every processed job; internal/metrics implements it.
type Recorder interface {
	Observe(op string, elapsed time.Duration, err error)
}

// Job is one panel entry with its resolved template. A zero Template means
// the primer is scored on its own sequence.
type Job struct {
	Entry    panel.Entry
	Template seq.Sequence
}

// Result is the outcome of one Job. Err holds per-primer failures; they do
// not stop the run.
type Result struct {
	Index   int
	Entry   panel.Entry
	Metrics quality.Metrics
	Tuned   *tune.Result
	Err     error
	Elapsed time.Duration
}

// Plan pairs each entry with its template record. With no records every
// entry is scored standalone.
func Plan(entries []panel.Entry, records []fasta.Record) ([]Job, error) {
	byID := make(map[string]seq.Sequence, len(records))
	var first seq.Sequence
	for i, r := range records {
		s, err := r.Sequence()
		if err != nil {
			return nil, err
		}
		if i == 0 {
			first = s
		}
		byID[r.ID] = s
	}
	jobs := make([]Job, 0, len(entries))
	for _, e := range entries {
		j := Job{Entry: e}
		switch {
		case len(records) == 0:
		case e.Template == panel.AnyTemplate:
			j.Template = first
		default:
			s, ok := byID[e.Template]
			if !ok {
				return nil, fmt.Errorf("primer %s (line %d): unknown template %q", e.Name, e.Line, e.Template)
			}
			j.Template = s
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

// Run processes jobs and calls visit once per job, in job order. It returns
// the first visit error or the context error.
func Run(ctx context.Context, cfg Config, jobs []Job, visit func(Result) error) error {
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}
	if cfg.Threads > 1 && cfg.TuneOptions.Workers == 0 {
		// the pool is already parallel
		cfg.TuneOptions.Workers = 1
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type item struct {
		idx int
		job Job
	}
	work := make(chan item, cfg.Threads*2)
	results := make(chan Result, cfg.Threads*2)

	var wg sync.WaitGroup
	wg.Add(cfg.Threads)
	for w := 0; w < cfg.Threads; w++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-runCtx.Done():
					return
				case it, ok := <-work:
					if !ok {
						return
					}
					r := process(cfg, it.job)
					r.Index = it.idx
					select {
					case results <- r:
					case <-runCtx.Done():
						return
					}
				}
			}
		}()
	}

	// Collector: hold early finishers until their predecessors arrive.
	var (
		cerr error
		cwg  sync.WaitGroup
	)
	cwg.Add(1)
	go func() {
		defer cwg.Done()
		pending := make(map[int]Result)
		next := 0
		for r := range results {
			if cerr != nil {
				continue
			}
			pending[r.Index] = r
			for {
				p, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				next++
				if err := visit(p); err != nil {
					cerr = err
					cancel()
					break
				}
			}
		}
	}()

feed:
	for i, j := range jobs {
		select {
		case <-runCtx.Done():
			break feed
		case work <- item{idx: i, job: j}:
		}
	}

	close(work)
	wg.Wait()
	close(results)
	cwg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	return cerr
}

func process(cfg Config, j Job) Result {
	start := time.Now()
	e := j.Entry
	r := Result{Entry: e}
	op := "score"
	switch {
	case j.Template.IsZero():
		anchor := -1
		if e.AnchorOffset > 0 {
			anchor = e.AnchorOffset
		}
		r.Metrics, r.Err = quality.Evaluate(e.Seq, anchor, cfg.Ions, cfg.Quality)
	case cfg.Tune && e.Tunable():
		op = "tune"
		tr, err := tune.Tune(e.Primer(cfg.MaxMismatches), j.Template, cfg.Ions, cfg.Quality, cfg.TuneOptions)
		if err == nil {
			r.Tuned = &tr
			r.Metrics = tr.Metrics
		}
		r.Err = err
	default:
		r.Metrics, r.Err = quality.Score(e.Primer(cfg.MaxMismatches), j.Template, cfg.Ions, cfg.Quality)
	}
	r.Elapsed = time.Since(start)
	if cfg.Recorder != nil {
		cfg.Recorder.Observe(op, r.Elapsed, r.Err)
	}
	return r
}
