package molecule

// ─────────────────────────────────────────────────────────────────────────────
// Ring perception
// ─────────────────────────────────────────────────────────────────────────────

// PerceiveRings flags every bond that lies on a cycle and every atom incident
// to such a bond.  A bond is on a cycle iff it is not a bridge, so a single
// lowlink pass is enough.
func PerceiveRings(c *AtomContainer) {
	n := len(c.atoms)
	disc := make([]int, n)
	low := make([]int, n)
	for i := range disc {
		disc[i] = -1
	}
	bridges := make(map[bondKey]bool)
	timer := 0

	var visit func(u, parent int)
	visit = func(u, parent int) {
		disc[u] = timer
		low[u] = timer
		timer++
		for _, v := range c.adjacency[u] {
			if v == parent {
				continue
			}
			if disc[v] == -1 {
				visit(v, u)
				if low[v] < low[u] {
					low[u] = low[v]
				}
				if low[v] > disc[u] {
					bridges[keyFor(u, v)] = true
				}
			} else if disc[v] < low[u] {
				low[u] = disc[v]
			}
		}
	}
	for i := 0; i < n; i++ {
		if disc[i] == -1 {
			visit(i, -1)
		}
	}

	for _, a := range c.atoms {
		a.InRing = false
	}
	for _, b := range c.bonds {
		b.InRing = !bridges[keyFor(b.Begin, b.End)]
		if b.InRing {
			c.atoms[b.Begin].InRing = true
			c.atoms[b.End].InRing = true
		}
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Atom typing
// ─────────────────────────────────────────────────────────────────────────────

// terminalTypes are elements whose type label is the bare symbol.
var terminalTypes = map[string]bool{
	"H": true, "F": true, "Cl": true, "Br": true, "I": true,
}

// PerceiveAtomTypes assigns a "symbol.hybridisation" label to every atom that
// does not already carry one: ".ar" for aromatic atoms, ".sp1" for a triple
// bond or two double bonds, ".sp2" for one double bond and ".sp3" otherwise.
// Charged atoms get a ".plus" or ".minus" suffix.
func PerceiveAtomTypes(c *AtomContainer) {
	for i, a := range c.atoms {
		if a.AtomType != "" {
			continue
		}
		if terminalTypes[a.Symbol] && a.Charge == 0 {
			a.AtomType = a.Symbol
			continue
		}

		label := "sp3"
		doubles, triples, aromatic := 0, 0, a.Aromatic
		for _, nb := range c.adjacency[i] {
			switch c.BondBetween(i, nb).Order {
			case BondDouble:
				doubles++
			case BondTriple:
				triples++
			case BondAromatic:
				aromatic = true
			}
		}
		switch {
		case aromatic:
			label = "ar"
		case triples > 0 || doubles > 1:
			label = "sp1"
		case doubles == 1:
			label = "sp2"
		}

		t := a.Symbol + "." + label
		switch {
		case a.Charge > 0:
			t += ".plus"
		case a.Charge < 0:
			t += ".minus"
		}
		a.AtomType = t
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Symbol multiset
// ─────────────────────────────────────────────────────────────────────────────

// CountCommonSymbols returns the size of the multiset intersection of the
// atom symbols of a and b: every symbol of b consumes at most one matching
// occurrence from a.
func CountCommonSymbols(a, b *AtomContainer) int {
	if a == nil || b == nil {
		return 0
	}
	remaining := make(map[string]int, len(a.atoms))
	for _, atom := range a.atoms {
		remaining[atom.Symbol]++
	}
	common := 0
	for _, atom := range b.atoms {
		if remaining[atom.Symbol] > 0 {
			remaining[atom.Symbol]--
			common++
		}
	}
	return common
}

//Personal.AI order the ending
