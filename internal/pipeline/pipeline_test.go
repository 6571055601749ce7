package pipeline

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"primerqc/core/qcerr"
	"primerqc/core/quality"
	"primerqc/core/seq"
	"primerqc/core/thermo"
	"primerqc/internal/fasta"
	"primerqc/internal/panel"
)

func ions() thermo.Ions {
	return thermo.Ions{Na: 0.05, Mg: 0.0015, DNTP: 0.0002, Primer: 25e-9}
}

func randomBases(rng *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = "ACGT"[rng.Intn(4)]
	}
	return string(b)
}

type fixture struct {
	template string
	entries  []panel.Entry
	records  []fasta.Record
}

func newFixture(t *testing.T, n int) fixture {
	t.Helper()
	rng := rand.New(rand.NewSource(11))
	tmpl := randomBases(rng, 600)
	var entries []panel.Entry
	for i := 0; i < n; i++ {
		pos := 20 + (i*37)%540
		s := tmpl[pos : pos+20]
		if i%3 == 1 {
			s = seq.RevCompString(s)
		}
		entries = append(entries, panel.Entry{
			Line: i + 1, Name: "p" + string(rune('a'+i%26)) + string(rune('0'+i/26)),
			Seq: seq.LinearOf(s), Template: panel.AnyTemplate,
		})
	}
	return fixture{
		template: tmpl,
		entries:  entries,
		records:  []fasta.Record{{ID: "tpl", Seq: []byte(tmpl)}},
	}
}

func baseConfig(threads int) Config {
	return Config{Threads: threads, Ions: ions(), Quality: quality.DefaultConfig()}
}

func TestRun_OrderAndScores(t *testing.T) {
	fx := newFixture(t, 40)
	jobs, err := Plan(fx.entries, fx.records)
	require.NoError(t, err)

	var got []Result
	err = Run(context.Background(), baseConfig(4), jobs, func(r Result) error {
		got = append(got, r)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, len(jobs))
	for i, r := range got {
		require.Equal(t, i, r.Index)
		require.NoError(t, r.Err)
		want, err := quality.Score(r.Entry.Primer(0), jobs[i].Template, ions(), quality.DefaultConfig())
		require.NoError(t, err)
		assert.Equal(t, want.Score, r.Metrics.Score, r.Entry.Name)
		assert.Equal(t, r.Entry.Seq.String(), r.Metrics.Seq)
	}
}

func TestRun_TuneAndErrors(t *testing.T) {
	fx := newFixture(t, 2)
	fx.entries[0].Ext3 = 6
	fx.entries = append(fx.entries, panel.Entry{
		Line: 9, Name: "absent", Seq: seq.LinearOf("TTTTTTTTTTTTTTTTTTTTTTTT"), Template: panel.AnyTemplate,
	})
	jobs, err := Plan(fx.entries, fx.records)
	require.NoError(t, err)

	cfg := baseConfig(2)
	cfg.Tune = true
	var got []Result
	require.NoError(t, Run(context.Background(), cfg, jobs, func(r Result) error {
		got = append(got, r)
		return nil
	}))
	require.Len(t, got, 3)

	require.NotNil(t, got[0].Tuned)
	assert.GreaterOrEqual(t, got[0].Tuned.Placement.Length, 20)
	assert.LessOrEqual(t, got[0].Tuned.Placement.Length, 26)
	assert.Nil(t, got[1].Tuned, "untunable entry is scored as given")
	assert.True(t, errors.Is(got[2].Err, qcerr.ErrNoMatch))
}

func TestRun_Standalone(t *testing.T) {
	entries := []panel.Entry{
		{Name: "a", Seq: seq.LinearOf("ACGTGCTAGCTAGCTAGGCA")},
		{Name: "j", Seq: seq.LinearOf("ACGTGCTAGCTAGCTAGGCATTGACCAGTAGGACTTAG"), AnchorOffset: 18},
		{Name: "past-end", Seq: seq.LinearOf("ACGTGCTAGCTAGCTAGGCA"), AnchorOffset: 20},
	}
	jobs, err := Plan(entries, nil)
	require.NoError(t, err)
	var got []Result
	require.NoError(t, Run(context.Background(), baseConfig(1), jobs, func(r Result) error {
		got = append(got, r)
		return nil
	}))
	require.Len(t, got, 3)
	assert.Equal(t, -1, got[0].Metrics.AnchorIndex)
	assert.Equal(t, 18, got[1].Metrics.AnchorIndex)
	assert.True(t, errors.Is(got[2].Err, qcerr.ErrAnchorOutOfRange), "anchor at the 3' end: %v", got[2].Err)
}

func TestPlan_UnknownTemplate(t *testing.T) {
	fx := newFixture(t, 1)
	fx.entries[0].Template = "pBR322"
	_, err := Plan(fx.entries, fx.records)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pBR322")
}

func TestPlan_BadRecord(t *testing.T) {
	fx := newFixture(t, 1)
	_, err := Plan(fx.entries, []fasta.Record{{ID: "bad", Seq: []byte("ACGN")}})
	assert.True(t, errors.Is(err, qcerr.ErrInvalidNucleotide))
}

func TestRun_VisitErrorStops(t *testing.T) {
	fx := newFixture(t, 30)
	jobs, _ := Plan(fx.entries, fx.records)
	stop := errors.New("stop")
	n := 0
	err := Run(context.Background(), baseConfig(3), jobs, func(Result) error {
		n++
		if n == 5 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 5, n)
}

func TestRun_Cancelled(t *testing.T) {
	fx := newFixture(t, 30)
	jobs, _ := Plan(fx.entries, fx.records)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Run(ctx, baseConfig(2), jobs, func(Result) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

type countingRecorder struct {
	mu  sync.Mutex
	ops map[string]int
}

func (c *countingRecorder) Observe(op string, _ time.Duration, _ error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ops[op]++
}

func TestRun_Recorder(t *testing.T) {
	fx := newFixture(t, 6)
	fx.entries[2].Ext5 = 3
	jobs, _ := Plan(fx.entries, fx.records)
	rec := &countingRecorder{ops: map[string]int{}}
	cfg := baseConfig(2)
	cfg.Tune = true
	cfg.Recorder = rec
	require.NoError(t, Run(context.Background(), cfg, jobs, func(Result) error { return nil }))
	assert.Equal(t, map[string]int{"score": 5, "tune": 1}, rec.ops)
}
