// internal/cli/cloning.go
package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"primerqc/core/cloning"
	"primerqc/core/seq"
	"primerqc/internal/config"
	"primerqc/internal/fasta"
	"primerqc/internal/output"
)

// readSeq loads the first record of path.
func readSeq(path string) (fasta.Record, seq.Sequence, error) {
	rec, err := fasta.ReadOne(path)
	if err != nil {
		return fasta.Record{}, seq.Sequence{}, err
	}
	s, err := rec.Sequence()
	if err != nil {
		return fasta.Record{}, seq.Sequence{}, fmt.Errorf("%s: %w", path, err)
	}
	return rec, s, nil
}

func (a *app) cloneCmd() *cobra.Command {
	var (
		vectorPath, insertPath string
		at                     int
		verify, withProduct    bool
	)
	d := config.Defaults()
	cmd := &cobra.Command{
		Use:   "clone",
		Short: "Design SLIC/FastCloning primers to insert a fragment into a vector",
		Long: `clone designs the four primers of an overlap-cloning insertion: a pair that
linearizes the circular vector at --at and a pair that amplifies the insert
with vector homology arms of about --overlap nt. --verify simulates both PCRs
and the overlap assembly and fails unless the predicted plasmid comes back.`,
		Example: `  primerqc clone --vector pUC19.fa --insert gfp.fa --at 396 --verify -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			vrec, vector, err := readSeq(vectorPath)
			if err != nil {
				return err
			}
			irec, insert, err := readSeq(insertPath)
			if err != nil {
				return err
			}
			target := a.cfg.Cloning.OverlapTarget
			start := time.Now()
			pair, err := cloning.GeneratePair(vector, insert, at, target, a.cfg.Ions.Thermo(), a.cfg.CloningOptions())
			if err != nil {
				return err
			}
			a.log.Info("cloning primers designed",
				"vector", vrec.ID, "insert", irec.ID, "at", at,
				"product_len", pair.Product.Len(), "elapsed", time.Since(start))

			if verify {
				if _, err := cloning.Verify(pair, vector, insert, a.cfg.Cloning.PCR()); err != nil {
					return fmt.Errorf("verify: %w", err)
				}
				a.log.Info("assembly verified", "product_len", pair.Product.Len())
			}
			rec := output.ToCloningPairV1(pair, target, verify, withProduct)
			rec.RunID = uuid.NewString()
			return a.emit(func(out chan<- any) error {
				out <- rec
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&vectorPath, "vector", "", "circular vector FASTA")
	f.StringVar(&insertPath, "insert", "", "insert FASTA")
	f.IntVar(&at, "at", 0, "insertion point on the vector (0-based, between bases)")
	f.Int("overlap", d.Cloning.OverlapTarget, "target homology arm length (nt)")
	f.Int("arm-slack", d.Cloning.ArmSlack, "arms may vary by this many nt around --overlap")
	f.BoolVar(&verify, "verify", false, "simulate PCR and assembly of the design")
	f.BoolVar(&withProduct, "product", false, "include the predicted plasmid in the output")
	for _, name := range []string{"vector", "insert", "at"} {
		_ = cmd.MarkFlagRequired(name)
	}
	a.bind(f, map[string]string{
		"cloning.overlap_target": "overlap",
		"cloning.arm_slack":      "arm-slack",
	})
	return cmd
}

func (a *app) amplifyCmd() *cobra.Command {
	var template string
	cmd := &cobra.Command{
		Use:   "amplify",
		Short: "Design a forward/reverse pair spanning a whole template",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec, t, err := readSeq(template)
			if err != nil {
				return err
			}
			fwd, rev, err := cloning.AmplificationPair(t, a.cfg.Ions.Thermo(), a.cfg.CloningOptions())
			if err != nil {
				return fmt.Errorf("%s: %w", rec.ID, err)
			}
			return a.emit(func(out chan<- any) error {
				out <- output.ToTuneResultV1(fwd)
				out <- output.ToTuneResultV1(rev)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&template, "template", "t", "", "template FASTA; the first record is amplified")
	_ = cmd.MarkFlagRequired("template")
	return cmd
}
