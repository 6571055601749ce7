package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"primerqc/internal/output"
	"primerqc/pkg/api"
)

const primer22 = "GATTACAGATTACAGATTACAG"

// isolate keeps user config files and PRIMERQC_* variables out of the run.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, kv := range os.Environ() {
		if k, _, _ := strings.Cut(kv, "="); strings.HasPrefix(k, "PRIMERQC_") {
			t.Setenv(k, "")
			os.Unsetenv(k)
		}
	}
}

func run(t *testing.T, argv ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errb bytes.Buffer
	code = Run(context.Background(), argv, &out, &errb)
	return code, out.String(), errb.String()
}

func randomBases(rng *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = "ACGT"[rng.Intn(4)]
	}
	return string(b)
}

func writeFASTA(t *testing.T, name, header, s string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(">"+header+"\n"+s+"\n"), 0o644))
	return path
}

func decodeJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(s), &v), s)
	return v
}

func TestRun_Version(t *testing.T) {
	code, out, _ := run(t, "version")
	require.Equal(t, ExitOK, code)
	assert.Equal(t, "primerqc version dev\n", out)
}

func TestRun_Help(t *testing.T) {
	code, out, _ := run(t, "-h")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "Usage:")
	for _, sub := range []string{"tm", "score", "tune", "repeats", "clone", "amplify", "serve"} {
		assert.Contains(t, out, sub)
	}
}

func TestRun_TmJSON(t *testing.T) {
	isolate(t)
	code, out, errOut := run(t, "tm", "-o", "json", primer22)
	require.Equal(t, ExitOK, code, errOut)

	got := decodeJSON[[]api.TmV1](t, out)
	require.Len(t, got, 1)
	assert.Equal(t, "seq1", got[0].Name)
	assert.Equal(t, primer22, got[0].Seq)
	assert.Greater(t, got[0].TmC, 0.0)
	assert.Less(t, got[0].TmC, 100.0)
	// 50 mM Na+ plus 120·√(1.5 − 0.2) mM from free Mg2+
	assert.InDelta(t, 186.82, got[0].MonovalentMM, 0.01)
}

func TestRun_ConcentrationFlags(t *testing.T) {
	isolate(t)
	code, out, errOut := run(t, "tm", "-o", "json", "--na", "100mM", "--mg", "0", primer22)
	require.Equal(t, ExitOK, code, errOut)
	got := decodeJSON[[]api.TmV1](t, out)
	require.Len(t, got, 1)
	assert.InDelta(t, 100, got[0].MonovalentMM, 1e-6)
}

func TestRun_ConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "qc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ions:\n  na: 20\n  mg: 0\n"), 0o644))

	code, out, errOut := run(t, "tm", "--config", path, "-o", "json", primer22)
	require.Equal(t, ExitOK, code, errOut)
	got := decodeJSON[[]api.TmV1](t, out)
	assert.InDelta(t, 20, got[0].MonovalentMM, 1e-6)

	// flags beat the file
	code, out, errOut = run(t, "tm", "--config", path, "--na", "30mM", "-o", "json", primer22)
	require.Equal(t, ExitOK, code, errOut)
	got = decodeJSON[[]api.TmV1](t, out)
	assert.InDelta(t, 30, got[0].MonovalentMM, 1e-6)
}

func TestRun_ScoreTSV(t *testing.T) {
	isolate(t)
	code, out, errOut := run(t, "score", primer22, "ACGTTGCAAGGCTTACCGGA")
	require.Equal(t, ExitOK, code, errOut)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, output.MetricsHeader, lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "seq1\t"+primer22+"\t22\t"))
	assert.True(t, strings.HasPrefix(lines[2], "seq2\t"))

	code, out, _ = run(t, "score", "--header=false", primer22)
	require.Equal(t, ExitOK, code)
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestRun_Repeats(t *testing.T) {
	isolate(t)
	code, out, errOut := run(t, "repeats", "-o", "json", "ACGTAAAAAACGT")
	require.Equal(t, ExitOK, code, errOut)
	got := decodeJSON[[]api.RepeatReportV1](t, out)
	require.Len(t, got, 1)
	require.NotZero(t, got[0].Count)
	assert.Len(t, got[0].Repeats, got[0].Count)
}

func TestRun_Tune(t *testing.T) {
	isolate(t)
	rng := rand.New(rand.NewSource(11))
	tmpl := randomBases(rng, 600)
	tpath := writeFASTA(t, "tpl.fa", "tpl", tmpl)

	code, out, errOut := run(t, "tune", "-t", tpath, "--ext3", "4", "-o", "jsonl", tmpl[100:120])
	require.Equal(t, ExitOK, code, errOut)

	sc := bufio.NewScanner(strings.NewReader(out))
	require.True(t, sc.Scan())
	got := decodeJSON[api.TuneResultV1](t, sc.Text())
	assert.False(t, sc.Scan(), "one record per primer")

	assert.Empty(t, got.Metrics.Error)
	assert.Equal(t, "+", got.Placement.Strand)
	assert.Equal(t, 100, got.Placement.Start)
	assert.Equal(t, 5, got.Evaluated)
	assert.GreaterOrEqual(t, got.Ext3, 0)
	assert.LessOrEqual(t, got.Ext3, 4)
	assert.Equal(t, 4-got.Ext3, got.Remaining3)
	assert.Equal(t, tmpl[100:120+got.Ext3], got.Metrics.Seq)
}

func TestRun_Clone(t *testing.T) {
	isolate(t)
	rng := rand.New(rand.NewSource(1))
	vector := randomBases(rng, 400)
	insert := randomBases(rng, 150)
	vpath := writeFASTA(t, "vec.fa", "vec circular", vector)
	ipath := writeFASTA(t, "ins.fa", "ins", insert)

	code, out, errOut := run(t, "clone", "--vector", vpath, "--insert", ipath, "--at", "37", "--verify", "--product", "-o", "json")
	require.Equal(t, ExitOK, code, errOut)

	got := decodeJSON[[]api.CloningPairV1](t, out)
	require.Len(t, got, 1)
	p := got[0]
	assert.True(t, p.Verified)
	assert.NotEmpty(t, p.RunID)
	assert.Equal(t, 37, p.InsertionPoint)
	assert.Equal(t, 20, p.OverlapTarget)
	assert.Equal(t, 150, p.InsertLength)
	assert.Equal(t, 550, p.ProductLength)
	assert.Equal(t, vector[:37]+insert+vector[37:], p.Product)

	var names []string
	for _, r := range p.Primers {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"vector-fwd", "vector-rev", "insert-fwd", "insert-rev"}, names)
}

func TestRun_Amplify(t *testing.T) {
	isolate(t)
	rng := rand.New(rand.NewSource(4))
	tpath := writeFASTA(t, "amp.fa", "amp", randomBases(rng, 200))

	code, out, errOut := run(t, "amplify", "-t", tpath, "-o", "json")
	require.Equal(t, ExitOK, code, errOut)
	got := decodeJSON[[]api.TuneResultV1](t, out)
	require.Len(t, got, 2)
	assert.Equal(t, "amp-fwd", got[0].Name)
	assert.Equal(t, "amp-rev", got[1].Name)
	assert.Equal(t, 0, got[0].Placement.Start)
	assert.Equal(t, 200, got[1].Placement.End)
}

func TestRun_ExitCodes(t *testing.T) {
	isolate(t)
	cases := []struct {
		name string
		argv []string
		want int
	}{
		{"invalid nucleotide", []string{"tm", "GATTXACA"}, ExitUsage},
		{"no primers", []string{"tm"}, ExitUsage},
		{"unknown format", []string{"tm", "-o", "xml", primer22}, ExitUsage},
		{"unknown flag", []string{"tm", "--bogus", primer22}, ExitUsage},
		{"unknown command", []string{"frobnicate"}, ExitUsage},
		{"bad concentration", []string{"tm", "--na", "5parsecs", primer22}, ExitUsage},
		{"invalid ions", []string{"tm", "--primer-conc", "0", primer22}, ExitUsage},
		{"missing template flag", []string{"tune", primer22}, ExitUsage},
		{"missing panel file", []string{"score", "-p", filepath.Join(t.TempDir(), "none.tsv")}, ExitIO},
		{"missing template file", []string{"score", "-t", filepath.Join(t.TempDir(), "none.fa"), primer22}, ExitIO},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, _, errOut := run(t, tc.argv...)
			assert.Equal(t, tc.want, code)
			assert.Contains(t, errOut, "primerqc:")
		})
	}
}

func TestRun_Cancelled(t *testing.T) {
	isolate(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out, errb bytes.Buffer
	code := Run(ctx, []string{"score", primer22}, &out, &errb)
	assert.Equal(t, ExitCancelled, code)
}
