// Package cli is the primerqc command tree. Every invocation gets its own
// viper instance and command set, so Run is safe to call from tests.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"primerqc/core/thermo"
	"primerqc/internal/config"
	"primerqc/internal/logging"
	"primerqc/internal/output"
	"primerqc/internal/writers"
)

// app carries what every subcommand needs once the root pre-run is done.
type app struct {
	stdout io.Writer
	stderr io.Writer
	v      *viper.Viper

	cfgFile string
	format  string
	header  bool
	threads int
	conc    concFlags

	cfg config.Config
	log *slog.Logger
}

// concFlags take concentration strings ("50mM", "250nM", "0.05").
type concFlags struct {
	na, k, mg, dntp, primer string
}

// Run executes argv and returns the process exit code.
func Run(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)
	a := &app{stdout: outw, stderr: stderr, v: viper.New(), log: logging.Discard()}

	root := a.rootCmd()
	root.SetArgs(argv)
	root.SetOut(outw)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if ferr := outw.Flush(); err == nil && ferr != nil {
		err = ioError(ferr)
	}
	code := exitCode(ctx, err)
	if code != ExitOK && code != ExitCancelled {
		fmt.Fprintf(stderr, "primerqc: %v\n", err)
		if code == ExitUsage {
			fmt.Fprintln(stderr, "Run 'primerqc --help' for usage.")
		}
	}
	return code
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "primerqc",
		Short: "Primer quality scoring, tuning and overlap-cloning design",
		Long: `primerqc scores PCR primers (Tm, GC, length, 3' stability, repeats,
self-dimers), tunes their ends against a template, and designs the four
primers of a SLIC/FastCloning insertion.

Settings come from primerqc.yaml (., ~/.config/primerqc or --config),
PRIMERQC_* environment variables and flags, in increasing precedence.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError(err) })

	d := config.Defaults()
	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default primerqc.yaml in . or ~/.config/primerqc)")
	pf.StringVarP(&a.format, "output", "o", output.FormatTSV, "output format: "+strings.Join(output.Formats(), ", "))
	pf.BoolVar(&a.header, "header", true, "tsv: print a header line")
	pf.IntVar(&a.threads, "threads", runtime.NumCPU(), "worker goroutines for batch runs")
	pf.String("log-level", d.Log.Level, "log level: debug, info, warn, error")
	pf.Bool("log-json", d.Log.JSON, "log as JSON lines")
	pf.Float64("tm-min", d.Scoring.TmMin, "lower edge of the ideal Tm band (°C)")
	pf.Float64("tm-max", d.Scoring.TmMax, "upper edge of the ideal Tm band (°C)")
	addConcFlags(pf, &a.conc)

	a.bind(pf, map[string]string{
		"log.level":      "log-level",
		"log.json":       "log-json",
		"scoring.tm_min": "tm-min",
		"scoring.tm_max": "tm-max",
	})

	root.AddCommand(
		a.tmCmd(),
		a.repeatsCmd(),
		a.scoreCmd(),
		a.tuneCmd(),
		a.cloneCmd(),
		a.amplifyCmd(),
		a.serveCmd(),
		a.versionCmd(),
	)
	return root
}

func addConcFlags(fs *pflag.FlagSet, c *concFlags) {
	fs.StringVar(&c.na, "na", "", "Na+ concentration, e.g. 50mM")
	fs.StringVar(&c.k, "k", "", "K+ concentration")
	fs.StringVar(&c.mg, "mg", "", "Mg2+ concentration, e.g. 1.5mM")
	fs.StringVar(&c.dntp, "dntp", "", "total dNTP concentration, e.g. 0.2mM")
	fs.StringVar(&c.primer, "primer-conc", "", "primer strand concentration, e.g. 250nM")
}

// bind ties config keys to flags of fs; a flag only wins when set.
func (a *app) bind(fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := a.v.BindPFlag(key, fs.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind %s: %v", key, err))
		}
	}
}

// setup applies concentration flags, loads the config and builds the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if !slices.Contains(writers.Registered(), a.format) {
		return usageError(fmt.Errorf("unknown output format %q (want one of %s)", a.format, strings.Join(writers.Registered(), ", ")))
	}
	for _, c := range []struct {
		flag, raw, key string
		scale          float64 // mol/L to the config unit
	}{
		{"na", a.conc.na, "ions.na", 1e3},
		{"k", a.conc.k, "ions.k", 1e3},
		{"mg", a.conc.mg, "ions.mg", 1e3},
		{"dntp", a.conc.dntp, "ions.dntp", 1e3},
		{"primer-conc", a.conc.primer, "ions.primer_nm", 1e9},
	} {
		if !cmd.Flags().Changed(c.flag) {
			continue
		}
		mol, err := thermo.ParseConc(c.raw)
		if err != nil {
			return usageError(fmt.Errorf("--%s: %w", c.flag, err))
		}
		a.v.Set(c.key, mol*c.scale)
	}

	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return usageError(err)
	}
	a.cfg = cfg

	lvl, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return usageError(err)
	}
	a.log = logging.New(logging.Config{Level: lvl, JSON: cfg.Log.JSON, Service: "primerqc", Output: a.stderr})
	a.log.Debug("config loaded", "file", a.v.ConfigFileUsed(), "command", cmd.Name())
	return nil
}

// emit streams whatever produce sends through the selected writer. A
// writer failure wins over the producer's error.
func (a *app) emit(produce func(out chan<- any) error) error {
	out, done := writers.Start(a.stdout, a.format, writers.Options{Header: a.header})
	perr := produce(out)
	close(out)
	if werr := <-done; werr != nil {
		return ioError(werr)
	}
	return perr
}
