package common

import (
	"github.com/turtacn/KeyIP-MCS/internal/domain/mcs"
	"github.com/turtacn/KeyIP-MCS/internal/domain/molecule"
)

// AtomsCompatible reports whether a may be mapped onto b under p.  Element
// symbols must always agree.
func AtomsCompatible(a, b *molecule.Atom, p mcs.Predicates) bool {
	if a == nil || b == nil {
		return false
	}
	if a.Symbol != b.Symbol {
		return false
	}
	if p.AtomTypeMatch && a.AtomType != b.AtomType {
		return false
	}
	if p.RingMatch && a.InRing != b.InRing {
		return false
	}
	return true
}

// BondsCompatible reports whether x may be mapped onto y under p.  Without
// BondMatch any two bonds agree; with it, aromatic bonds only match aromatic
// bonds and the others must share their order.
func BondsCompatible(x, y *molecule.Bond, p mcs.Predicates) bool {
	if x == nil || y == nil {
		return false
	}
	if p.BondMatch {
		if x.Aromatic() != y.Aromatic() {
			return false
		}
		if !x.Aromatic() && x.Order != y.Order {
			return false
		}
	}
	if p.RingMatch && x.InRing != y.InRing {
		return false
	}
	return true
}

// SharedAtom returns the atom index x and y have in common, or -1.
func SharedAtom(x, y *molecule.Bond) int {
	switch {
	case x.Begin == y.Begin || x.Begin == y.End:
		return x.Begin
	case x.End == y.Begin || x.End == y.End:
		return x.End
	default:
		return -1
	}
}

//Personal.AI order the ending
