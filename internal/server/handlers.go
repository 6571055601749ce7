// internal/server/handlers.go
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"primerqc/core/cloning"
	"primerqc/core/repeats"
	"primerqc/core/seq"
	"primerqc/core/thermo"
	"primerqc/internal/output"
	"primerqc/internal/pipeline"
	"primerqc/pkg/api"
)

// ions resolves the request solution over the configured default and lets
// the core validate it.
func (s *Server) ions(d *IonsDTO) (thermo.Ions, error) {
	ions := d.apply(s.cfg.Ions).Thermo()
	return ions, ions.Validate()
}

func (s *Server) checkBatch(n int) error {
	if n > s.cfg.Server.MaxBatch {
		return fmt.Errorf("%d primers exceeds the per-request limit of %d", n, s.cfg.Server.MaxBatch)
	}
	return nil
}

func (s *Server) handleTm(c *gin.Context) {
	var req TmRequest
	if !s.bind(c, &req) {
		return
	}
	if err := s.checkBatch(len(req.Primers)); err != nil {
		s.fail(c, http.StatusUnprocessableEntity, err)
		return
	}
	ions, err := s.ions(req.Ions)
	if err != nil {
		s.failErr(c, err)
		return
	}
	es, err := entries(req.Primers)
	if err != nil {
		s.failErr(c, err)
		return
	}
	resp := TmResponse{RequestID: c.GetString(requestIDHeader)}
	for _, e := range es {
		start := time.Now()
		r, err := thermo.Duplex(e.Seq, ions)
		s.metrics.Observe("tm", time.Since(start), err)
		if err != nil {
			s.failErr(c, fmt.Errorf("primer %s: %w", e.Name, err))
			return
		}
		resp.Results = append(resp.Results, output.ToTmV1(e.Name, e.Seq.String(), r))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleRepeats(c *gin.Context) {
	var req TmRequest
	if !s.bind(c, &req) {
		return
	}
	if err := s.checkBatch(len(req.Primers)); err != nil {
		s.fail(c, http.StatusUnprocessableEntity, err)
		return
	}
	es, err := entries(req.Primers)
	if err != nil {
		s.failErr(c, err)
		return
	}
	resp := RepeatsResponse{RequestID: c.GetString(requestIDHeader)}
	for _, e := range es {
		resp.Results = append(resp.Results, output.ToRepeatReportV1(e.Name, e.Seq.String(), repeats.Find(e.Seq)))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleScore(c *gin.Context) {
	var req ScoreRequest
	if !s.bind(c, &req) {
		return
	}
	var tmpl seq.Sequence
	if req.Template != nil {
		t, err := req.Template.parse()
		if err != nil {
			s.failErr(c, fmt.Errorf("template: %w", err))
			return
		}
		tmpl = t
	}
	results, ok := s.runBatch(c, req.Primers, req.Ions, tmpl, req.MaxMismatches, false)
	if !ok {
		return
	}
	resp := ScoreResponse{RequestID: c.GetString(requestIDHeader), Results: []api.MetricsV1{}}
	for _, r := range results {
		m := output.ToMetricsV1(r.Entry.Name, r.Metrics)
		if r.Err != nil {
			m = api.MetricsV1{Name: r.Entry.Name, Seq: r.Entry.Seq.String(), Length: r.Entry.Seq.Len(), Error: r.Err.Error()}
		}
		resp.Results = append(resp.Results, m)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleTune(c *gin.Context) {
	var req TuneRequest
	if !s.bind(c, &req) {
		return
	}
	tmpl, err := req.Template.parse()
	if err != nil {
		s.failErr(c, fmt.Errorf("template: %w", err))
		return
	}
	results, ok := s.runBatch(c, req.Primers, req.Ions, tmpl, req.MaxMismatches, true)
	if !ok {
		return
	}
	resp := TuneResponse{RequestID: c.GetString(requestIDHeader), Results: []api.TuneResultV1{}}
	for _, r := range results {
		switch {
		case r.Err != nil:
			resp.Results = append(resp.Results, api.TuneResultV1{
				Name:    r.Entry.Name,
				Metrics: api.MetricsV1{Name: r.Entry.Name, Seq: r.Entry.Seq.String(), Error: r.Err.Error()},
			})
		case r.Tuned != nil:
			s.metrics.ObserveTune(r.Tuned.Evaluated)
			resp.Results = append(resp.Results, output.ToTuneResultV1(*r.Tuned))
		default:
			// nothing to tune; report the primer where it sits
			resp.Results = append(resp.Results, api.TuneResultV1{
				Name:    r.Entry.Name,
				Metrics: output.ToMetricsV1(r.Entry.Name, r.Metrics),
			})
		}
	}
	c.JSON(http.StatusOK, resp)
}

// runBatch scores or tunes primers through the pipeline. Per-primer
// failures come back in the results; request-level ones are written here.
func (s *Server) runBatch(c *gin.Context, ps []PrimerDTO, d *IonsDTO, tmpl seq.Sequence, maxMM int, tune bool) ([]pipeline.Result, bool) {
	if err := s.checkBatch(len(ps)); err != nil {
		s.fail(c, http.StatusUnprocessableEntity, err)
		return nil, false
	}
	ions, err := s.ions(d)
	if err != nil {
		s.failErr(c, err)
		return nil, false
	}
	es, err := entries(ps)
	if err != nil {
		s.failErr(c, err)
		return nil, false
	}
	jobs := make([]pipeline.Job, len(es))
	for i, e := range es {
		jobs[i] = pipeline.Job{Entry: e, Template: tmpl}
	}
	cfg := pipeline.Config{
		Threads:       max(1, min(len(jobs), 8)),
		Tune:          tune,
		MaxMismatches: maxMM,
		Ions:          ions,
		Quality:       s.cfg.Scoring.Quality(),
		TuneOptions:   s.cfg.Tuning.Options(),
		Recorder:      s.metrics,
	}
	results := make([]pipeline.Result, 0, len(jobs))
	err = pipeline.Run(c.Request.Context(), cfg, jobs, func(r pipeline.Result) error {
		results = append(results, r)
		return nil
	})
	if err != nil {
		s.failErr(c, err)
		return nil, false
	}
	return results, true
}

func (s *Server) handleClone(c *gin.Context) {
	var req CloneRequest
	if !s.bind(c, &req) {
		return
	}
	ions, err := s.ions(req.Ions)
	if err != nil {
		s.failErr(c, err)
		return
	}
	vector, err := seq.Parse(req.Vector, seq.Circular)
	if err != nil {
		s.failErr(c, fmt.Errorf("vector: %w", err))
		return
	}
	insert, err := seq.Parse(req.Insert, seq.Linear)
	if err != nil {
		s.failErr(c, fmt.Errorf("insert: %w", err))
		return
	}
	target := req.OverlapTarget
	if target == 0 {
		target = s.cfg.Cloning.OverlapTarget
	}

	start := time.Now()
	pair, err := cloning.GeneratePair(vector, insert, *req.InsertionPoint, target, ions, s.cfg.CloningOptions())
	s.metrics.Observe("clone", time.Since(start), err)
	if err != nil {
		s.failErr(c, err)
		return
	}
	for _, r := range pair.Primers() {
		s.metrics.ObserveTune(r.Evaluated)
	}
	verified := false
	if req.Verify {
		if _, err := cloning.Verify(pair, vector, insert, s.cfg.Cloning.PCR()); err != nil {
			s.failErr(c, fmt.Errorf("verify: %w", err))
			return
		}
		verified = true
	}
	out := output.ToCloningPairV1(pair, target, verified, req.IncludeProduct)
	out.RunID = c.GetString(requestIDHeader)
	c.JSON(http.StatusOK, out)
}
