package pretty

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"primerqc/pkg/api"
)

func writeIfMissingOrUpdate(path string, got string) (created bool, err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	// UPDATE_GOLDEN=1 rewrites goldens after an intended change.
	if os.Getenv("UPDATE_GOLDEN") == "1" {
		return true, os.WriteFile(path, []byte(got), 0644)
	}
	if _, e := os.Stat(path); os.IsNotExist(e) {
		return true, os.WriteFile(path, []byte(got), 0644)
	}
	return false, nil
}

func lines(s string) []string { return strings.Split(strings.TrimRight(s, "\n"), "\n") }

func TestDefaultOptions_Stable(t *testing.T) {
	d := DefaultOptions
	if d.ArmGlyph != "~" || d.AnchorGlyph != "|" || d.ExtGlyph != "+" || d.BarGlyph != "#" || d.DotGlyph != "." || d.BarWidth != 20 {
		t.Fatalf("DefaultOptions visual defaults changed: %+v", d)
	}
}

func TestMetrics(t *testing.T) {
	m := api.MetricsV1{
		Name: "p1", Seq: "ACGTACGT", Length: 8, TmC: 30.5, GCPercent: 50, GCClamp: 1,
		ThreePrimeDG: -5.25, DimerRisk: 0.1,
		Scores: api.ScoresV1{Tm: 1, GC: 0.5},
		Score:  75,
	}
	got := lines(Metrics(m, Options{}))
	want := []string{
		"# p1  8 nt  score 75.00",
		"# 5'-ACGTACGT-3'",
		"# Tm 30.50  GC 50.0%  clamp 1  3'dG -5.25  dimer 0.100  repeats 0",
		"#   tm        #################### 1.000",
		"#   gc        ##########.......... 0.500",
		"#   length    .................... 0.000",
	}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("line %d\n got %q\nwant %q", i, got[i], w)
		}
	}
	if got[len(got)-1] != "#" {
		t.Fatalf("block must end with a spacer line")
	}

	m.Error = "boom"
	if s := Metrics(m, Options{}); s != "# p1  error: boom\n#\n" {
		t.Fatalf("error block %q", s)
	}
}

func TestTune_Tracks(t *testing.T) {
	r := api.TuneResultV1{
		Name:      "insert-fwd",
		Placement: api.PlacementV1{Strand: "+", Start: 10, End: 22, Length: 12},
		Ext5:      2,
		Ext3:      1,
		Evaluated: 6,
		Metrics:   api.MetricsV1{Seq: "AAAACCCCGGGG", Length: 12, ArmLength: 4, Score: 50},
	}
	got := lines(Tune(r, DefaultOptions))
	want := []string{
		"# insert-fwd  (+) 10..22  12 nt  score 50.00  evaluated 6",
		"# 5'-AAAACCCCGGGG-3'",
		"#    ~~~~| arm 4",
		"#    ++         +  (5' +2, 3' +1)",
	}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("line %d\n got %q\nwant %q", i, got[i], w)
		}
	}
}

func TestRepeats(t *testing.T) {
	r := api.RepeatReportV1{Name: "r", Seq: "AAAAC", Count: 1, Repeats: []api.RepeatV1{{Kind: "mono-run", Start: 0, Length: 4}}}
	want := "# r  1 repeats\n# 5'-AAAAC-3'\n#    ^^^^  mono-run\n#\n"
	if got := Repeats(r, Options{RepeatGlyph: "^"}); got != want {
		t.Fatalf("got\n%s\nwant\n%s", got, want)
	}
}

func TestRender_Unknown(t *testing.T) {
	if _, err := Render(42, DefaultOptions); err == nil {
		t.Fatal("want error for unsupported record")
	}
}

func TestCloningPair_Golden(t *testing.T) {
	anchor := 20
	p := api.CloningPairV1{
		InsertionPoint: 20, OverlapTarget: 4, InsertLength: 8, ProductLength: 48, Verified: true,
		Primers: []api.TuneResultV1{
			{Name: "vector-fwd", Placement: api.PlacementV1{Strand: "+", Start: 28, End: 34, Length: 6}, Ext3: 1, Evaluated: 3,
				Metrics: api.MetricsV1{Seq: "GATTAC", Length: 6, Score: 40}},
			{Name: "insert-fwd", Placement: api.PlacementV1{Strand: "+", Start: 16, End: 26, Length: 10, Anchor: &anchor}, Evaluated: 9,
				Metrics: api.MetricsV1{Seq: "TTTTACGTAC", Length: 10, ArmLength: 4, Score: 55}},
		},
	}
	got := CloningPair(p, DefaultOptions)
	if !strings.HasPrefix(got, "# insert 8 nt at 20  overlap 4  product 48 nt (circular)  verified yes\n#\n") {
		t.Fatalf("summary line: %q", lines(got)[0])
	}
	path := filepath.Join("testdata", "cloning.golden")
	if created, err := writeIfMissingOrUpdate(path, got); err != nil {
		t.Fatalf("write golden: %v", err)
	} else if created {
		t.Logf("wrote %s", path)
		return
	}
	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	if got != string(want) {
		t.Fatalf("pretty output changed\n--- got ---\n%s\n--- want ---\n%s", got, want)
	}
}
