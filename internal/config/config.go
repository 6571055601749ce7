// Package config loads run settings from primerqc.yaml, PRIMERQC_* env vars
// and bound CLI flags (in increasing precedence) and converts them into the
// value types the core expects. Defaults live here, never in the core.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"primerqc/core/cloning"
	"primerqc/core/pcr"
	"primerqc/core/quality"
	"primerqc/core/thermo"
	"primerqc/core/tune"
)

// EnvPrefix is prepended to every environment override, e.g.
// PRIMERQC_IONS_MG=2.
const EnvPrefix = "PRIMERQC"

// Ions are in bench units: mM for salts and dNTP, nM for primer.
type Ions struct {
	Na       float64 `mapstructure:"na" yaml:"na" validate:"gte=0"`
	K        float64 `mapstructure:"k" yaml:"k" validate:"gte=0"`
	Mg       float64 `mapstructure:"mg" yaml:"mg" validate:"gte=0"`
	DNTP     float64 `mapstructure:"dntp" yaml:"dntp" validate:"gte=0"`
	PrimerNM float64 `mapstructure:"primer_nm" yaml:"primer_nm" validate:"gt=0"`
}

type Weights struct {
	Tm        float64 `mapstructure:"tm" yaml:"tm" validate:"gte=0"`
	GC        float64 `mapstructure:"gc" yaml:"gc" validate:"gte=0"`
	Length    float64 `mapstructure:"length" yaml:"length" validate:"gte=0"`
	Stability float64 `mapstructure:"stability" yaml:"stability" validate:"gte=0"`
	Repeats   float64 `mapstructure:"repeats" yaml:"repeats" validate:"gte=0"`
	Dimer     float64 `mapstructure:"dimer" yaml:"dimer" validate:"gte=0"`
}

type Scoring struct {
	TmMin        float64 `mapstructure:"tm_min" yaml:"tm_min"`
	TmMax        float64 `mapstructure:"tm_max" yaml:"tm_max" validate:"gtefield=TmMin"`
	TmFalloff    float64 `mapstructure:"tm_falloff" yaml:"tm_falloff" validate:"gt=0"`
	GCMin        float64 `mapstructure:"gc_min" yaml:"gc_min" validate:"gte=0,lte=100"`
	GCMax        float64 `mapstructure:"gc_max" yaml:"gc_max" validate:"gtefield=GCMin,lte=100"`
	LengthMin    int     `mapstructure:"length_min" yaml:"length_min" validate:"gt=0"`
	LengthMax    int     `mapstructure:"length_max" yaml:"length_max" validate:"gtefield=LengthMin"`
	ShortFall    float64 `mapstructure:"short_fall" yaml:"short_fall" validate:"gte=0"`
	LongFall     float64 `mapstructure:"long_fall" yaml:"long_fall" validate:"gte=0"`
	ArmMin       int     `mapstructure:"arm_min" yaml:"arm_min" validate:"gt=0"`
	ArmMax       int     `mapstructure:"arm_max" yaml:"arm_max" validate:"gtefield=ArmMin"`
	StabilityC   float64 `mapstructure:"stability_c" yaml:"stability_c" validate:"gt=0"`
	RepeatStep   float64 `mapstructure:"repeat_step" yaml:"repeat_step" validate:"gte=0,lte=1"`
	DimerRiskCap float64 `mapstructure:"dimer_risk_cap" yaml:"dimer_risk_cap" validate:"gt=0"`
	Weights      Weights `mapstructure:"weights" yaml:"weights"`
}

type Tuning struct {
	Workers      int `mapstructure:"workers" yaml:"workers" validate:"gte=0"`
	MaxExtension int `mapstructure:"max_extension" yaml:"max_extension" validate:"gte=0"`
}

type Cloning struct {
	OverlapTarget int `mapstructure:"overlap_target" yaml:"overlap_target" validate:"gte=1"`
	ArmSlack      int `mapstructure:"arm_slack" yaml:"arm_slack" validate:"gte=0"`
	AnnealMin     int `mapstructure:"anneal_min" yaml:"anneal_min" validate:"gte=1"`
	AnnealMax     int `mapstructure:"anneal_max" yaml:"anneal_max" validate:"gtefield=AnnealMin"`
	PCRMinAnneal  int `mapstructure:"pcr_min_anneal" yaml:"pcr_min_anneal" validate:"gte=0"`
}

type Server struct {
	Addr            string        `mapstructure:"addr" yaml:"addr" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gte=0"`
	MaxBatch        int           `mapstructure:"max_batch" yaml:"max_batch" validate:"gte=1"`
}

type Log struct {
	Level string `mapstructure:"level" yaml:"level" validate:"omitempty,oneof=debug info warn warning error DEBUG INFO WARN ERROR"`
	JSON  bool   `mapstructure:"json" yaml:"json"`
}

// Config is the whole settings tree.
type Config struct {
	Ions    Ions    `mapstructure:"ions" yaml:"ions"`
	Scoring Scoring `mapstructure:"scoring" yaml:"scoring"`
	Tuning  Tuning  `mapstructure:"tuning" yaml:"tuning"`
	Cloning Cloning `mapstructure:"cloning" yaml:"cloning"`
	Server  Server  `mapstructure:"server" yaml:"server"`
	Log     Log     `mapstructure:"log" yaml:"log"`
}

// Defaults: 50 mM Na+, 1.5 mM Mg2+, 0.2 mM dNTP, 25 nM primer, and the
// stock scoring bands.
func Defaults() Config {
	q := quality.DefaultConfig()
	return Config{
		Ions: Ions{Na: 50, K: 0, Mg: 1.5, DNTP: 0.2, PrimerNM: 25},
		Scoring: Scoring{
			TmMin: q.Tm.Lo, TmMax: q.Tm.Hi, TmFalloff: q.TmFalloff,
			GCMin: q.GC.Lo, GCMax: q.GC.Hi,
			LengthMin: int(q.Length.Lo), LengthMax: int(q.Length.Hi),
			ShortFall: q.ShortFall, LongFall: q.LongFall,
			ArmMin: int(q.Arm.Lo), ArmMax: int(q.Arm.Hi),
			StabilityC: q.StabilityC, RepeatStep: q.RepeatStep, DimerRiskCap: q.DimerRiskCap,
			Weights: Weights(q.Weights),
		},
		Tuning: Tuning{Workers: 0, MaxExtension: tune.DefaultExtensionLimit},
		Cloning: Cloning{
			OverlapTarget: 20,
			ArmSlack:      cloning.DefaultArmSlack,
			AnnealMin:     cloning.DefaultAnnealMin,
			AnnealMax:     cloning.DefaultAnnealMax,
			PCRMinAnneal:  pcr.DefaultMinAnneal,
		},
		Server: Server{Addr: ":8080", ShutdownTimeout: 10 * time.Second, MaxBatch: 1000},
		Log:    Log{Level: "info"},
	}
}

// SetDefaults registers every key with its default so env overrides and
// Unmarshal see the full tree.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	for k, val := range map[string]any{
		"ions.na": d.Ions.Na, "ions.k": d.Ions.K, "ions.mg": d.Ions.Mg,
		"ions.dntp": d.Ions.DNTP, "ions.primer_nm": d.Ions.PrimerNM,

		"scoring.tm_min": d.Scoring.TmMin, "scoring.tm_max": d.Scoring.TmMax,
		"scoring.tm_falloff": d.Scoring.TmFalloff,
		"scoring.gc_min":     d.Scoring.GCMin, "scoring.gc_max": d.Scoring.GCMax,
		"scoring.length_min": d.Scoring.LengthMin, "scoring.length_max": d.Scoring.LengthMax,
		"scoring.short_fall": d.Scoring.ShortFall, "scoring.long_fall": d.Scoring.LongFall,
		"scoring.arm_min": d.Scoring.ArmMin, "scoring.arm_max": d.Scoring.ArmMax,
		"scoring.stability_c": d.Scoring.StabilityC, "scoring.repeat_step": d.Scoring.RepeatStep,
		"scoring.dimer_risk_cap":    d.Scoring.DimerRiskCap,
		"scoring.weights.tm":        d.Scoring.Weights.Tm,
		"scoring.weights.gc":        d.Scoring.Weights.GC,
		"scoring.weights.length":    d.Scoring.Weights.Length,
		"scoring.weights.stability": d.Scoring.Weights.Stability,
		"scoring.weights.repeats":   d.Scoring.Weights.Repeats,
		"scoring.weights.dimer":     d.Scoring.Weights.Dimer,

		"tuning.workers": d.Tuning.Workers, "tuning.max_extension": d.Tuning.MaxExtension,

		"cloning.overlap_target": d.Cloning.OverlapTarget, "cloning.arm_slack": d.Cloning.ArmSlack,
		"cloning.anneal_min": d.Cloning.AnnealMin, "cloning.anneal_max": d.Cloning.AnnealMax,
		"cloning.pcr_min_anneal": d.Cloning.PCRMinAnneal,

		"server.addr": d.Server.Addr, "server.shutdown_timeout": d.Server.ShutdownTimeout,
		"server.max_batch": d.Server.MaxBatch,

		"log.level": d.Log.Level, "log.json": d.Log.JSON,
	} {
		v.SetDefault(k, val)
	}
}

// Load reads file (or primerqc.yaml from . or ~/.config/primerqc when file
// is empty; a missing default file is fine), applies env overrides and
// validates the result. Flags bound to v before the call win over both.
func Load(v *viper.Viper, file string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("primerqc")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "primerqc"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &nf) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

var validate = validator.New()

// Validate checks field constraints, then lets the core vet the ion mix.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := c.Ions.Thermo().Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Thermo converts to mol/L.
func (i Ions) Thermo() thermo.Ions {
	return thermo.Ions{
		Na:     i.Na * 1e-3,
		K:      i.K * 1e-3,
		Mg:     i.Mg * 1e-3,
		DNTP:   i.DNTP * 1e-3,
		Primer: i.PrimerNM * 1e-9,
	}
}

// Quality builds the scorer configuration.
func (s Scoring) Quality() quality.Config {
	return quality.Config{
		Tm:           quality.Band{Lo: s.TmMin, Hi: s.TmMax},
		TmFalloff:    s.TmFalloff,
		GC:           quality.Band{Lo: s.GCMin, Hi: s.GCMax},
		Length:       quality.Band{Lo: float64(s.LengthMin), Hi: float64(s.LengthMax)},
		ShortFall:    s.ShortFall,
		LongFall:     s.LongFall,
		Arm:          quality.Band{Lo: float64(s.ArmMin), Hi: float64(s.ArmMax)},
		StabilityC:   s.StabilityC,
		RepeatStep:   s.RepeatStep,
		DimerRiskCap: s.DimerRiskCap,
		Weights:      quality.Weights(s.Weights),
	}
}

// Options builds the tuner options.
func (t Tuning) Options() tune.Options {
	return tune.Options{Workers: t.Workers, ExtensionLimit: t.MaxExtension}
}

// CloningOptions combines cloning geometry with scoring and tuning.
func (c Config) CloningOptions() cloning.Options {
	return cloning.Options{
		ArmSlack:  c.Cloning.ArmSlack,
		AnnealMin: c.Cloning.AnnealMin,
		AnnealMax: c.Cloning.AnnealMax,
		Quality:   c.Scoring.Quality(),
		Tune:      c.Tuning.Options(),
	}
}

// PCR is the amplification model used to verify cloning designs.
func (c Cloning) PCR() pcr.Config {
	return pcr.Config{MinAnneal: c.PCRMinAnneal}
}
