// internal/cli/input.go
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"

	"primerqc/core/seq"
	"primerqc/internal/panel"
)

// primerInput collects primers from a panel file and positional sequences.
type primerInput struct {
	panel      string
	ext5, ext3 int
	anchor     int
}

func (in *primerInput) register(fs *pflag.FlagSet, tunable bool) {
	fs.StringVarP(&in.panel, "primers", "p", "", "primer panel file: name seq [template [ext5 ext3 [anchor]]]")
	fs.IntVar(&in.anchor, "anchor", 0, "junction offset from the 5' end for SEQ arguments (0 = none)")
	if tunable {
		fs.IntVar(&in.ext5, "ext5", 0, "bases the 5' end of each SEQ argument may grow by")
		fs.IntVar(&in.ext3, "ext3", 0, "bases the 3' end of each SEQ argument may grow by")
	}
}

// entries returns the panel entries followed by one entry per argument.
func (in *primerInput) entries(args []string) ([]panel.Entry, error) {
	if in.ext5 < 0 || in.ext3 < 0 || in.anchor < 0 {
		return nil, usageError(errors.New("--ext5, --ext3 and --anchor must be >= 0"))
	}
	var es []panel.Entry
	if in.panel != "" {
		list, err := panel.LoadTSV(in.panel)
		if err != nil {
			return nil, err
		}
		es = list
	}
	for i, raw := range args {
		s, err := seq.Parse(raw, seq.Linear)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		es = append(es, panel.Entry{
			Line:         i + 1,
			Name:         fmt.Sprintf("seq%d", i+1),
			Seq:          s,
			Template:     panel.AnyTemplate,
			Ext5:         in.ext5,
			Ext3:         in.ext3,
			AnchorOffset: in.anchor,
		})
	}
	if len(es) == 0 {
		return nil, usageError(errors.New("no primers: pass sequences as arguments or use --primers FILE"))
	}
	return es, nil
}
