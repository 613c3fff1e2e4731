// Package molecule models a molecule as a labelled graph: atoms are vertices
// carrying a symbol, an atom-type label and a ring-membership flag; bonds are
// edges carrying an order.  Atom indices are dense (0..AtomCount-1) and never
// change once an AtomContainer has been built, which is what lets the MCS
// layer describe correspondences as plain index pairs.
package molecule

import (
	"fmt"
	"sort"

	"github.com/turtacn/KeyIP-MCS/pkg/errors"
	"github.com/turtacn/KeyIP-MCS/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// GraphRole
// ─────────────────────────────────────────────────────────────────────────────

// GraphRole distinguishes a concrete molecule from a structural query pattern.
// Query graphs always keep the source position during matching.
type GraphRole int

const (
	// RoleConcrete is an ordinary molecule.
	RoleConcrete GraphRole = iota
	// RoleQuery is a substructure pattern whose predicates are fixed to
	// bond, ring and atom-type matching.
	RoleQuery
)

// String returns the human-readable role name.
func (r GraphRole) String() string {
	switch r {
	case RoleConcrete:
		return "concrete"
	case RoleQuery:
		return "query"
	default:
		return fmt.Sprintf("GraphRole(%d)", int(r))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// BondOrder
// ─────────────────────────────────────────────────────────────────────────────

// BondOrder is the order of a bond.
type BondOrder int

const (
	BondSingle BondOrder = iota + 1
	BondDouble
	BondTriple
	BondAromatic
)

// String returns the SMILES bond symbol name.
func (o BondOrder) String() string {
	switch o {
	case BondSingle:
		return "single"
	case BondDouble:
		return "double"
	case BondTriple:
		return "triple"
	case BondAromatic:
		return "aromatic"
	default:
		return fmt.Sprintf("BondOrder(%d)", int(o))
	}
}

// IsValid reports whether o is one of the declared orders.
func (o BondOrder) IsValid() bool {
	return o >= BondSingle && o <= BondAromatic
}

// ─────────────────────────────────────────────────────────────────────────────
// Atom and Bond
// ─────────────────────────────────────────────────────────────────────────────

// Atom is a graph vertex.  Index is its position inside the owning container.
type Atom struct {
	Index         int    `json:"index"`
	Symbol        string `json:"symbol"`
	AtomicNumber  int    `json:"atomic_number"`
	AtomType      string `json:"atom_type"`
	Aromatic      bool   `json:"aromatic"`
	InRing        bool   `json:"in_ring"`
	Charge        int    `json:"charge"`
	HydrogenCount int    `json:"hydrogen_count"`
}

// Bond is an undirected edge between Begin and End.
type Bond struct {
	Index  int       `json:"index"`
	Begin  int       `json:"begin"`
	End    int       `json:"end"`
	Order  BondOrder `json:"order"`
	InRing bool      `json:"in_ring"`
}

// Aromatic reports whether the bond is part of an aromatic system.
func (b *Bond) Aromatic() bool { return b.Order == BondAromatic }

// Other returns the endpoint opposite to atom, or -1 when atom is not an endpoint.
func (b *Bond) Other(atom int) int {
	switch atom {
	case b.Begin:
		return b.End
	case b.End:
		return b.Begin
	default:
		return -1
	}
}

type bondKey [2]int

func keyFor(i, j int) bondKey {
	if i > j {
		i, j = j, i
	}
	return bondKey{i, j}
}

// ─────────────────────────────────────────────────────────────────────────────
// AtomContainer
// ─────────────────────────────────────────────────────────────────────────────

// AtomContainer is an immutable molecular graph.
type AtomContainer struct {
	ID   common.ID
	Name string
	Role GraphRole

	atoms     []*Atom
	bonds     []*Bond
	adjacency [][]int
	bondIndex map[bondKey]*Bond
}

// NewAtomContainer validates atoms and bonds and builds the adjacency index.
// Atom.Index must equal the slice position.  Ring membership is perceived
// from the topology and atom types are filled where the caller left them
// blank.
func NewAtomContainer(atoms []*Atom, bonds []*Bond) (*AtomContainer, error) {
	c := &AtomContainer{
		ID:        common.NewID(),
		Role:      RoleConcrete,
		atoms:     make([]*Atom, len(atoms)),
		bonds:     make([]*Bond, len(bonds)),
		adjacency: make([][]int, len(atoms)),
		bondIndex: make(map[bondKey]*Bond, len(bonds)),
	}

	for i, a := range atoms {
		if a == nil {
			return nil, errors.Newf(errors.CodeGraphInvalid, "atom %d is nil", i)
		}
		if a.Index != i {
			return nil, errors.Newf(errors.CodeGraphInvalid, "atom at position %d carries index %d", i, a.Index)
		}
		if a.Symbol == "" {
			return nil, errors.Newf(errors.CodeGraphInvalid, "atom %d has no symbol", i)
		}
		c.atoms[i] = a
	}

	for i, b := range bonds {
		if b == nil {
			return nil, errors.Newf(errors.CodeGraphInvalid, "bond %d is nil", i)
		}
		if b.Begin < 0 || b.Begin >= len(atoms) || b.End < 0 || b.End >= len(atoms) {
			return nil, errors.Newf(errors.CodeGraphInvalid, "bond %d references atom outside 0..%d", i, len(atoms)-1).
				WithDetail(fmt.Sprintf("begin=%d end=%d", b.Begin, b.End))
		}
		if b.Begin == b.End {
			return nil, errors.Newf(errors.CodeGraphInvalid, "bond %d is a self loop on atom %d", i, b.Begin)
		}
		if !b.Order.IsValid() {
			return nil, errors.Newf(errors.CodeGraphInvalid, "bond %d has invalid order %d", i, int(b.Order))
		}
		k := keyFor(b.Begin, b.End)
		if _, dup := c.bondIndex[k]; dup {
			return nil, errors.Newf(errors.CodeGraphInvalid, "duplicate bond between %d and %d", b.Begin, b.End)
		}
		b.Index = i
		c.bonds[i] = b
		c.bondIndex[k] = b
		c.adjacency[b.Begin] = append(c.adjacency[b.Begin], b.End)
		c.adjacency[b.End] = append(c.adjacency[b.End], b.Begin)
	}
	for _, n := range c.adjacency {
		sort.Ints(n)
	}

	PerceiveRings(c)
	PerceiveAtomTypes(c)
	return c, nil
}

// AtomCount returns the number of atoms.
func (c *AtomContainer) AtomCount() int { return len(c.atoms) }

// BondCount returns the number of bonds.
func (c *AtomContainer) BondCount() int { return len(c.bonds) }

// Atom returns the atom at index i, or nil when i is out of range.
func (c *AtomContainer) Atom(i int) *Atom {
	if i < 0 || i >= len(c.atoms) {
		return nil
	}
	return c.atoms[i]
}

// Bond returns the bond at index i, or nil when i is out of range.
func (c *AtomContainer) Bond(i int) *Bond {
	if i < 0 || i >= len(c.bonds) {
		return nil
	}
	return c.bonds[i]
}

// Atoms returns a copy of the atom slice.
func (c *AtomContainer) Atoms() []*Atom {
	out := make([]*Atom, len(c.atoms))
	copy(out, c.atoms)
	return out
}

// Bonds returns a copy of the bond slice.
func (c *AtomContainer) Bonds() []*Bond {
	out := make([]*Bond, len(c.bonds))
	copy(out, c.bonds)
	return out
}

// IndexOf returns the index of atom in c, or -1 when c does not own it.
func (c *AtomContainer) IndexOf(atom *Atom) int {
	if atom == nil {
		return -1
	}
	if atom.Index >= 0 && atom.Index < len(c.atoms) && c.atoms[atom.Index] == atom {
		return atom.Index
	}
	return -1
}

// ResolveIndex returns i when it addresses an atom of c and -1 otherwise.
func (c *AtomContainer) ResolveIndex(i int) int {
	return c.IndexOf(c.Atom(i))
}

// BondBetween returns the bond joining atoms i and j, or nil.
func (c *AtomContainer) BondBetween(i, j int) *Bond {
	return c.bondIndex[keyFor(i, j)]
}

// Neighbors returns the sorted neighbour indices of atom i.
func (c *AtomContainer) Neighbors(i int) []int {
	if i < 0 || i >= len(c.adjacency) {
		return nil
	}
	out := make([]int, len(c.adjacency[i]))
	copy(out, c.adjacency[i])
	return out
}

// Degree returns the number of bonds incident to atom i.
func (c *AtomContainer) Degree(i int) int {
	if i < 0 || i >= len(c.adjacency) {
		return 0
	}
	return len(c.adjacency[i])
}

// Symbols returns the atom symbols in index order.
func (c *AtomContainer) Symbols() []string {
	out := make([]string, len(c.atoms))
	for i, a := range c.atoms {
		out[i] = a.Symbol
	}
	return out
}

// IsQuery reports whether c plays the query role.
func (c *AtomContainer) IsQuery() bool { return c.Role == RoleQuery }

// AsQuery returns a view of c tagged with RoleQuery.  Atoms and bonds are
// shared, so IndexOf keeps resolving the same atom pointers.
func (c *AtomContainer) AsQuery() *AtomContainer {
	q := *c
	q.Role = RoleQuery
	return &q
}

// String renders a short description for logs.
func (c *AtomContainer) String() string {
	name := c.Name
	if name == "" {
		name = string(c.ID)
	}
	return fmt.Sprintf("%s(%s, atoms=%d, bonds=%d)", name, c.Role, len(c.atoms), len(c.bonds))
}

//Personal.AI order the ending
