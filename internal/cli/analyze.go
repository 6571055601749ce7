// internal/cli/analyze.go
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"primerqc/core/repeats"
	"primerqc/core/thermo"
	"primerqc/internal/common"
	"primerqc/internal/config"
	"primerqc/internal/fasta"
	"primerqc/internal/output"
	"primerqc/internal/pipeline"
	"primerqc/pkg/api"
)

func (a *app) tmCmd() *cobra.Command {
	var in primerInput
	cmd := &cobra.Command{
		Use:   "tm [SEQ...]",
		Short: "Nearest-neighbor melting temperature of each primer",
		Example: `  primerqc tm ACGTACGTACGTACGTACGT
  primerqc tm --mg 2mM --primer-conc 250nM -p panel.tsv -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			es, err := in.entries(args)
			if err != nil {
				return err
			}
			ions := a.cfg.Ions.Thermo()
			return a.emit(func(out chan<- any) error {
				for _, e := range es {
					if err := cmd.Context().Err(); err != nil {
						return err
					}
					r, err := thermo.Duplex(e.Seq, ions)
					if err != nil {
						return fmt.Errorf("primer %s: %w", e.Name, err)
					}
					out <- output.ToTmV1(e.Name, e.Seq.String(), r)
				}
				return nil
			})
		},
	}
	in.register(cmd.Flags(), false)
	return cmd
}

func (a *app) repeatsCmd() *cobra.Command {
	var in primerInput
	cmd := &cobra.Command{
		Use:   "repeats [SEQ...]",
		Short: "List mononucleotide runs, dinucleotide runs and repeated k-mers",
		RunE: func(cmd *cobra.Command, args []string) error {
			es, err := in.entries(args)
			if err != nil {
				return err
			}
			return a.emit(func(out chan<- any) error {
				for _, e := range es {
					out <- output.ToRepeatReportV1(e.Name, e.Seq.String(), repeats.Find(e.Seq))
				}
				return nil
			})
		},
	}
	in.register(cmd.Flags(), false)
	return cmd
}

func (a *app) scoreCmd() *cobra.Command {
	var (
		in         primerInput
		template   string
		mismatches int
		sorted     bool
	)
	cmd := &cobra.Command{
		Use:   "score [SEQ...]",
		Short: "Score primers as given, optionally located on a template",
		Long: `score reports the quality breakdown of each primer. Without --template a
primer is scored on its own sequence; with one it is first located on the
template record named in its panel line (the first record by default).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			es, err := in.entries(args)
			if err != nil {
				return err
			}
			var recs []fasta.Record
			if template != "" {
				if recs, err = fasta.ReadFile(template); err != nil {
					return err
				}
			}
			jobs, err := pipeline.Plan(es, recs)
			if err != nil {
				return err
			}
			return a.runBatch(cmd.Context(), jobs, batchOptions{maxMM: mismatches, sorted: sorted}, scoreRecord)
		},
	}
	in.register(cmd.Flags(), false)
	cmd.Flags().StringVarP(&template, "template", "t", "", "template FASTA (- for stdin, .gz ok)")
	cmd.Flags().IntVar(&mismatches, "mismatches", 0, "mismatches allowed when locating a primer")
	cmd.Flags().BoolVar(&sorted, "sort", false, "order output by score, best first (buffers the batch)")
	return cmd
}

func (a *app) tuneCmd() *cobra.Command {
	var (
		in         primerInput
		template   string
		mismatches int
		sorted     bool
	)
	cmd := &cobra.Command{
		Use:   "tune [SEQ...]",
		Short: "Grow tunable primer ends along a template to the best score",
		Example: `  primerqc tune -t amplicon.fa --ext3 8 GATTACAGATTACAGATTAC
  primerqc tune -t plasmid.fa -p panel.tsv -o jsonl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			es, err := in.entries(args)
			if err != nil {
				return err
			}
			recs, err := fasta.ReadFile(template)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				return fmt.Errorf("%s: %w", template, fasta.ErrEmpty)
			}
			jobs, err := pipeline.Plan(es, recs)
			if err != nil {
				return err
			}
			return a.runBatch(cmd.Context(), jobs, batchOptions{tune: true, maxMM: mismatches, sorted: sorted}, tuneRecord)
		},
	}
	in.register(cmd.Flags(), true)
	cmd.Flags().StringVarP(&template, "template", "t", "", "template FASTA (- for stdin, .gz ok)")
	cmd.Flags().IntVar(&mismatches, "mismatches", 0, "mismatches allowed when locating a primer")
	cmd.Flags().BoolVar(&sorted, "sort", false, "order output by score, best first (buffers the batch)")
	cmd.Flags().Int("max-extension", config.Defaults().Tuning.MaxExtension, "cap on bases added per end")
	_ = cmd.MarkFlagRequired("template")
	a.bind(cmd.Flags(), map[string]string{"tuning.max_extension": "max-extension"})
	return cmd
}

type batchOptions struct {
	tune   bool
	maxMM  int
	sorted bool
}

// runBatch drives jobs through the worker pool and streams one record per
// job. Failed primers are reported in their record and logged.
func (a *app) runBatch(ctx context.Context, jobs []pipeline.Job, bo batchOptions, convert func(pipeline.Result) any) error {
	cfg := pipeline.Config{
		Threads:       a.threads,
		Tune:          bo.tune,
		MaxMismatches: bo.maxMM,
		Ions:          a.cfg.Ions.Thermo(),
		Quality:       a.cfg.Scoring.Quality(),
		TuneOptions:   a.cfg.Tuning.Options(),
	}
	start := time.Now()
	failed := 0
	err := a.emit(func(out chan<- any) error {
		var held []pipeline.Result
		err := pipeline.Run(ctx, cfg, jobs, func(r pipeline.Result) error {
			if r.Err != nil {
				failed++
				a.log.Warn("primer failed", "primer", r.Entry.Name, "line", r.Entry.Line, "error", r.Err)
			} else {
				a.log.Debug("primer done", "primer", r.Entry.Name, "score", r.Metrics.Score, "elapsed", r.Elapsed)
			}
			if bo.sorted {
				held = append(held, r)
				return nil
			}
			out <- convert(r)
			return nil
		})
		if err != nil {
			return err
		}
		common.SortResults(held)
		for _, r := range held {
			out <- convert(r)
		}
		return nil
	})
	a.log.Info("batch finished", "primers", len(jobs), "failed", failed, "elapsed", time.Since(start))
	return err
}

func errorMetrics(r pipeline.Result) api.MetricsV1 {
	return api.MetricsV1{Name: r.Entry.Name, Seq: r.Entry.Seq.String(), Length: r.Entry.Seq.Len(), Error: r.Err.Error()}
}

func scoreRecord(r pipeline.Result) any {
	if r.Err != nil {
		return errorMetrics(r)
	}
	return output.ToMetricsV1(r.Entry.Name, r.Metrics)
}

func tuneRecord(r pipeline.Result) any {
	switch {
	case r.Err != nil:
		return api.TuneResultV1{Name: r.Entry.Name, Metrics: errorMetrics(r)}
	case r.Tuned != nil:
		return output.ToTuneResultV1(*r.Tuned)
	default:
		// fixed primer; scored where it sits
		return api.TuneResultV1{Name: r.Entry.Name, Metrics: output.ToMetricsV1(r.Entry.Name, r.Metrics)}
	}
}
