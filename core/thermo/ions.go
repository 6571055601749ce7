// core/thermo/ions.go
package thermo

import (
	"fmt"
	"math"
	"strings"

	"primerqc/core/qcerr"
)

// Ions is the solution the primer anneals in. All values are mol/L and are
// supplied per call; the engine has no defaults of its own.
type Ions struct {
	Na     float64 // sodium
	K      float64 // potassium
	Mg     float64 // magnesium
	DNTP   float64 // total dNTP (chelates Mg2+ 1:1)
	Primer float64 // primer strand concentration Ct
}

// Validate rejects negative concentrations, a non-positive primer
// concentration, and solutions with no effective monovalent cations.
func (i Ions) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"Na+", i.Na}, {"K+", i.K}, {"Mg2+", i.Mg}, {"dNTP", i.DNTP}, {"primer", i.Primer},
	} {
		if f.v < 0 || math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return qcerr.New(qcerr.InvalidIonConcentration, "%s concentration %g mol/L", f.name, f.v)
		}
	}
	if i.Primer == 0 {
		return qcerr.New(qcerr.InvalidIonConcentration, "primer concentration must be > 0")
	}
	if i.EffectiveMonovalent() <= 0 {
		return qcerr.New(qcerr.InvalidIonConcentration, "total monovalent-equivalent cation concentration is zero")
	}
	return nil
}

// EffectiveMonovalent returns the Na+-equivalent (mol/L) fed to the salt
// correction:
//
//	[Mon] (mM) = [Na+] + [K+] + 120·√([Mg2+] − [dNTP])   when [Mg2+] > [dNTP]
//
// dNTPs bind Mg2+ first; only the free remainder contributes.
func (i Ions) EffectiveMonovalent() float64 {
	monMM := (i.Na + i.K) * 1e3
	if free := i.Mg - i.DNTP; free > 0 {
		monMM += 120 * math.Sqrt(free*1e3)
	}
	return monMM * 1e-3
}

// ParseConc parses "50mM", "250nM", "3uM", "0.05" (bare = mol/L) → mol/L.
func ParseConc(s string) (float64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	unit := ""
	val := 0.0
	n, err := fmt.Sscanf(s, "%f%s", &val, &unit)
	if err != nil && n == 0 {
		return 0, fmt.Errorf("invalid conc %q: %w", s, err)
	}
	switch unit {
	case "m", "":
		return val, nil
	case "mm":
		return val * 1e-3, nil
	case "um", "μm", "µm":
		return val * 1e-6, nil
	case "nm":
		return val * 1e-9, nil
	default:
		return 0, fmt.Errorf("unknown unit %q in %q", unit, s)
	}
}
