// core/thermo/nn.go
// Nearest-neighbor thermodynamics for DNA duplexes (SantaLucia & Hicks 2004).
// Units: ΔH in kcal/mol, ΔS in cal/(K·mol), concentrations in mol/L, Tm in °C.
//
// Steps:
//  1. Sum initiation + per-stack ΔH/ΔS + terminal AT penalties + symmetry.
//  2. Salt correction to ΔS: ΔS(Mon) = ΔS(1M) + 0.368·(n−1)·ln[Mon], where
//     [Mon] is the Na+-equivalent of K+, Na+ and free Mg2+ (see Ions).
//  3. Two-state Tm: Tm = 1000·ΔH / (ΔS(Mon) + R·ln(Ct/x)) − 273.15,
//     x = 4 for non-self-complementary duplexes, 1 for self-complementary.
//
// This package has no app/output deps; it never logs and holds no mutable state.
package thermo

import (
	"math"

	"primerqc/core/qcerr"
	"primerqc/core/seq"
)

const (
	// Gas constant in cal/(K·mol)
	Rcal = 1.9872
	// KelvinOffset converts °C to K.
	KelvinOffset = 273.15
)

// NNParams holds nearest-neighbor propagation parameters.
type NNParams struct {
	DH float64 // kcal/mol
	DS float64 // cal/(K·mol)
}

// Watson–Crick propagation parameters (1 M Na+), indexed by the top-strand
// dinucleotide read 5'→3'. Table 1 of SantaLucia & Hicks; each stack and its
// reverse-complement reading share one entry.
var stacks = [4][4]NNParams{
	baseA: {
		baseA: {-7.6, -21.3}, // AA/TT
		baseC: {-8.4, -22.4}, // AC/TG = GT/CA
		baseG: {-7.8, -21.0}, // AG/TC = CT/GA
		baseT: {-7.2, -20.4}, // AT/TA
	},
	baseC: {
		baseA: {-8.5, -22.7},  // CA/GT
		baseC: {-8.0, -19.9},  // CC/GG = GG/CC
		baseG: {-10.6, -27.2}, // CG/GC
		baseT: {-7.8, -21.0},  // CT/GA
	},
	baseG: {
		baseA: {-8.2, -22.2}, // GA/CT
		baseC: {-9.8, -24.4}, // GC/CG
		baseG: {-8.0, -19.9}, // GG/CC
		baseT: {-8.4, -22.4}, // GT/CA
	},
	baseT: {
		baseA: {-7.2, -21.3}, // TA/AT
		baseC: {-8.2, -22.2}, // TC/AG = GA/CT
		baseG: {-8.5, -22.7}, // TG/AC = CA/GT
		baseT: {-7.6, -21.3}, // TT/AA = AA/TT
	},
}

const (
	baseA = iota
	baseC
	baseG
	baseT
)

// Initiation / terminal / symmetry (1 M Na+).
var (
	initDH, initDS       = +0.2, -5.7 // initiation
	termAT_DH, termAT_DS = +2.2, +6.9 // once per terminal AT pair
	symmDS               = -1.4       // self-complementary correction
)

// Result reports ΔH/ΔS (1 M and salt-corrected) and Tm.
type Result struct {
	DH_kcal           float64 // total ΔH (kcal/mol)
	DS_cal            float64 // total ΔS at 1 M (cal/K·mol)
	DS_Salt           float64 // ΔS corrected for [Mon] (cal/K·mol)
	MonovalentM       float64 // Na+-equivalent used for the correction (mol/L)
	SelfComplementary bool
	TmC               float64 // melting temperature (°C)
}

// Duplex computes the full two-state model for s paired with its perfect
// complement. s must have at least 2 nucleotides.
func Duplex(s seq.Sequence, ions Ions) (Result, error) {
	var out Result
	n := s.Len()
	if n < 2 {
		return out, qcerr.New(qcerr.SequenceTooShort, "Tm needs at least 2 nt, got %d", n)
	}
	if err := ions.Validate(); err != nil {
		return out, err
	}
	p := s.String()

	// 1) Sum ΔH/ΔS (1 M Na+) over stacks + initiation.
	DH, DS := stackSum(p)
	DH += initDH
	DS += initDS

	// Terminal AT penalties (each end).
	if isAT(p[0]) {
		DH += termAT_DH
		DS += termAT_DS
	}
	if isAT(p[n-1]) {
		DH += termAT_DH
		DS += termAT_DS
	}

	x := 4.0
	self := p == seq.RevCompString(p)
	if self {
		DS += symmDS
		x = 1.0
	}

	// 2) Salt correction on ΔS.
	mon := ions.EffectiveMonovalent()
	DSsalt := DS + 0.368*float64(n-1)*math.Log(mon)

	// 3) Two-state Tm (K), then °C. ΔH in cal/mol.
	tmK := (DH * 1000.0) / (DSsalt + Rcal*math.Log(ions.Primer/x))

	out.DH_kcal = DH
	out.DS_cal = DS
	out.DS_Salt = DSsalt
	out.MonovalentM = mon
	out.SelfComplementary = self
	out.TmC = tmK - KelvinOffset
	return out, nil
}

// MeltingTemperature returns Tm (°C) of s against its perfect complement.
func MeltingTemperature(s seq.Sequence, ions Ions) (float64, error) {
	r, err := Duplex(s, ions)
	if err != nil {
		return 0, err
	}
	return r.TmC, nil
}

// DeltaGAt converts ΔH (kcal/mol) and ΔS (cal/K·mol) into ΔG (kcal/mol) at tempC.
func DeltaGAt(dHkcal, dScal, tempC float64) float64 {
	return dHkcal - (tempC+KelvinOffset)*dScal/1000.0
}

// StackDeltaG sums the nearest-neighbor ΔG of every stack in s at tempC
// (no initiation, no salt). It is the 3'-stability measure used on the last
// five bases of a primer; more negative means tighter binding.
func StackDeltaG(s seq.Sequence, tempC float64) float64 {
	dh, ds := stackSum(s.String())
	return DeltaGAt(dh, ds, tempC)
}

// ---------- helpers ----------

func stackSum(p string) (dh, ds float64) {
	for i := 0; i+1 < len(p); i++ {
		prm := stacks[index(p[i])][index(p[i+1])]
		dh += prm.DH
		ds += prm.DS
	}
	return dh, ds
}

func index(b byte) int {
	switch b {
	case 'A':
		return baseA
	case 'C':
		return baseC
	case 'G':
		return baseG
	default:
		return baseT
	}
}

func isAT(b byte) bool { return b == 'A' || b == 'T' }
