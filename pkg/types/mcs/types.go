// Package mcs defines the maximum-common-subgraph DTOs shared by the
// application service, the cache and the CLI.  No matching logic lives here.
package mcs

import (
	"fmt"
	"strings"

	"github.com/turtacn/KeyIP-MCS/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// Algorithm
// ─────────────────────────────────────────────────────────────────────────────

// Algorithm selects how seeds are produced before extension.
type Algorithm string

const (
	// AlgorithmDefault extends the exact matcher's maps; no seed strategy.
	AlgorithmDefault Algorithm = "default"
	// AlgorithmMCSPlus seeds from maximum cliques of the compatibility graph.
	AlgorithmMCSPlus Algorithm = "mcsplus"
	// AlgorithmCDKMCS seeds from the overlap-reduction (UIT) solver.
	AlgorithmCDKMCS Algorithm = "cdkmcs"
	// AlgorithmVFLib keeps the exact matcher's maps as they are.
	AlgorithmVFLib Algorithm = "vflib"
)

// AllAlgorithms lists the accepted algorithm names.
var AllAlgorithms = []Algorithm{AlgorithmDefault, AlgorithmMCSPlus, AlgorithmCDKMCS, AlgorithmVFLib}

// String implements fmt.Stringer.
func (a Algorithm) String() string { return string(a) }

// IsValid reports whether a is a known algorithm.
func (a Algorithm) IsValid() bool {
	for _, k := range AllAlgorithms {
		if a == k {
			return true
		}
	}
	return false
}

// UsesSeedStrategy reports whether a routes through a seed strategy.
func (a Algorithm) UsesSeedStrategy() bool {
	return a == AlgorithmMCSPlus || a == AlgorithmCDKMCS
}

// ParseAlgorithm converts a case-insensitive name into an Algorithm.  The
// empty string maps to AlgorithmDefault.
func ParseAlgorithm(s string) (Algorithm, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return AlgorithmDefault, nil
	}
	a := Algorithm(s)
	if !a.IsValid() {
		return "", fmt.Errorf("unsupported algorithm %q (want one of %v)", s, AllAlgorithms)
	}
	return a, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Options and results
// ─────────────────────────────────────────────────────────────────────────────

// MatchOptions are the matching predicates and run parameters.
type MatchOptions struct {
	Algorithm     Algorithm `json:"algorithm" yaml:"algorithm" mapstructure:"algorithm"`
	BondMatch     bool      `json:"bond_match" yaml:"bond_match" mapstructure:"bond_match"`
	RingMatch     bool      `json:"ring_match" yaml:"ring_match" mapstructure:"ring_match"`
	AtomTypeMatch bool      `json:"atom_type_match" yaml:"atom_type_match" mapstructure:"atom_type_match"`
	// ReactantCount and ProductCount pick the extension orientation for
	// concrete graphs; they are supplied by the caller, never derived.
	ReactantCount int `json:"reactant_count" yaml:"reactant_count" mapstructure:"reactant_count"`
	ProductCount  int `json:"product_count" yaml:"product_count" mapstructure:"product_count"`
}

// CacheKey renders the options in a stable form for cache keys.
func (o MatchOptions) CacheKey() string {
	return fmt.Sprintf("%s|b=%t|r=%t|t=%t|rc=%d|pc=%d",
		o.Algorithm, o.BondMatch, o.RingMatch, o.AtomTypeMatch, o.ReactantCount, o.ProductCount)
}

// AtomPair is one source→target atom correspondence.
type AtomPair struct {
	Source       int    `json:"source"`
	Target       int    `json:"target"`
	SourceSymbol string `json:"source_symbol,omitempty"`
	TargetSymbol string `json:"target_symbol,omitempty"`
}

// MapRequest asks for the maximum common subgraph of two SMILES.
type MapRequest struct {
	SourceSMILES string       `json:"source_smiles"`
	TargetSMILES string       `json:"target_smiles"`
	SourceQuery  bool         `json:"source_query"`
	Options      MatchOptions `json:"options"`
}

// MapResult is the outcome of one matching run.
type MapResult struct {
	RunID       string           `json:"run_id"`
	Algorithm   Algorithm        `json:"algorithm"`
	Size        int              `json:"size"`
	Mappings    [][]AtomPair     `json:"mappings"`
	Extended    bool             `json:"extended"`
	Cached      bool             `json:"cached"`
	SourceAtoms int              `json:"source_atoms"`
	TargetAtoms int              `json:"target_atoms"`
	CompletedAt common.Timestamp `json:"completed_at"`
}

// Best returns the first mapping, or nil when there is none.
func (r *MapResult) Best() []AtomPair {
	if r == nil || len(r.Mappings) == 0 {
		return nil
	}
	return r.Mappings[0]
}

//Personal.AI order the ending
