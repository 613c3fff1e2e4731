package molecule

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/turtacn/KeyIP-MCS/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Element tables
// ─────────────────────────────────────────────────────────────────────────────

// atomicNumberMap maps element symbols to atomic numbers.
var atomicNumberMap = map[string]int{
	"H": 1, "He": 2, "Li": 3, "Be": 4, "B": 5, "C": 6, "N": 7, "O": 8,
	"F": 9, "Ne": 10, "Na": 11, "Mg": 12, "Al": 13, "Si": 14, "P": 15,
	"S": 16, "Cl": 17, "Ar": 18, "K": 19, "Ca": 20, "Fe": 26, "Co": 27,
	"Ni": 28, "Cu": 29, "Zn": 30, "As": 33, "Se": 34, "Br": 35, "Pd": 46,
	"Ag": 47, "Sn": 50, "I": 53, "Pt": 78, "Au": 79, "Hg": 80,
}

// defaultValence holds the lowest normal valence of the organic subset.
var defaultValence = map[int]int{
	5: 3, 6: 4, 7: 3, 8: 2, 9: 1, 15: 3, 16: 2, 17: 1, 35: 1, 53: 1,
}

// organicSubset lists the symbols that may be written without brackets.
var organicSubset = map[string]bool{
	"B": true, "C": true, "N": true, "O": true, "P": true, "S": true,
	"F": true, "Cl": true, "Br": true, "I": true,
}

// aromaticOrganic lists the lowercase organic symbols.
var aromaticOrganic = map[rune]bool{
	'b': true, 'c': true, 'n': true, 'o': true, 'p': true, 's': true,
}

// LookupAtomicNumber returns the atomic number for a symbol, or 0 if unknown.
func LookupAtomicNumber(symbol string) int {
	return atomicNumberMap[symbol]
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// smilesPattern is a coarse character-set check run before tokenising.
var smilesPattern = regexp.MustCompile(`^[A-Za-z0-9@+\-\[\]()=#$:/\\.%]+$`)

// balancedBrackets checks that [ ] and ( ) are balanced and correctly nested.
func balancedBrackets(s string) bool {
	var stack []rune
	for _, ch := range s {
		switch ch {
		case '[', '(':
			stack = append(stack, ch)
		case ']':
			if len(stack) == 0 || stack[len(stack)-1] != '[' {
				return false
			}
			stack = stack[:len(stack)-1]
		case ')':
			if len(stack) == 0 || stack[len(stack)-1] != '(' {
				return false
			}
			stack = stack[:len(stack)-1]
		}
	}
	return len(stack) == 0
}

// ValidateSMILES performs the cheap lexical checks.
func ValidateSMILES(smiles string) error {
	if strings.TrimSpace(smiles) == "" {
		return errors.New(errors.CodeInvalidSMILES, "SMILES must not be empty")
	}
	if !smilesPattern.MatchString(smiles) {
		return errors.New(errors.CodeInvalidSMILES, "SMILES contains invalid characters").
			WithDetail(fmt.Sprintf("smiles=%s", smiles))
	}
	if !balancedBrackets(smiles) {
		return errors.New(errors.CodeInvalidSMILES, "unbalanced brackets in SMILES").
			WithDetail(fmt.Sprintf("smiles=%s", smiles))
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Parser
// ─────────────────────────────────────────────────────────────────────────────

type ringOpening struct {
	atom  int
	order BondOrder
}

type smilesParser struct {
	input    string
	runes    []rune
	pos      int
	atoms    []*Atom
	bonds    []*Bond
	branches []int
	rings    map[int]ringOpening
	prev     int
	order    BondOrder // explicit order for the next bond, 0 when unset
	explicit []bool    // hydrogen count given in brackets
}

// ParseSMILES parses a SMILES string into an AtomContainer.  Supported:
// the organic subset, bracket atoms with isotope/chirality/H-count/charge,
// branches, explicit bond symbols, ring closures (including %nn), aromatic
// lowercase atoms and disconnected components.  Stereo markers are skipped.
func ParseSMILES(smiles string) (*AtomContainer, error) {
	if err := ValidateSMILES(smiles); err != nil {
		return nil, err
	}

	p := &smilesParser{
		input: smiles,
		runes: []rune(smiles),
		rings: make(map[int]ringOpening),
		prev:  -1,
	}
	if err := p.run(); err != nil {
		return nil, err
	}

	c, err := NewAtomContainer(p.atoms, p.bonds)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeMoleculeParsingFailed, "failed to build molecule graph").
			WithDetail(fmt.Sprintf("smiles=%s", smiles))
	}
	c.Name = smiles
	assignImplicitHydrogens(c, p.explicit)
	return c, nil
}

// MustParseSMILES is like ParseSMILES but panics on error.  Intended for
// tests and static fixtures.
func MustParseSMILES(smiles string) *AtomContainer {
	c, err := ParseSMILES(smiles)
	if err != nil {
		panic(err)
	}
	return c
}

func (p *smilesParser) fail(format string, args ...interface{}) error {
	return errors.Newf(errors.CodeMoleculeParsingFailed, format, args...).
		WithDetail(fmt.Sprintf("smiles=%s position=%d", p.input, p.pos))
}

func (p *smilesParser) run() error {
	for p.pos < len(p.runes) {
		ch := p.runes[p.pos]

		switch {
		case ch == '(':
			if p.prev < 0 {
				return p.fail("branch opened before any atom")
			}
			p.branches = append(p.branches, p.prev)
			p.pos++

		case ch == ')':
			if len(p.branches) == 0 {
				return p.fail("unmatched branch close")
			}
			p.prev = p.branches[len(p.branches)-1]
			p.branches = p.branches[:len(p.branches)-1]
			p.pos++

		case ch == '-':
			p.order = BondSingle
			p.pos++
		case ch == '=':
			p.order = BondDouble
			p.pos++
		case ch == '#':
			p.order = BondTriple
			p.pos++
		case ch == ':':
			p.order = BondAromatic
			p.pos++
		case ch == '/' || ch == '\\':
			p.pos++

		case ch == '.':
			p.prev = -1
			p.order = 0
			p.pos++

		case ch == '[':
			end := strings.IndexRune(string(p.runes[p.pos:]), ']')
			if end < 0 {
				return p.fail("unclosed bracket atom")
			}
			content := string(p.runes[p.pos+1 : p.pos+end])
			atom, hasH, err := parseBracketAtom(content)
			if err != nil {
				return p.fail("%s", err.Error())
			}
			p.addAtom(atom, hasH)
			p.pos += end + 1

		case ch == '%':
			if p.pos+2 >= len(p.runes) {
				return p.fail("truncated two-digit ring closure")
			}
			n, err := strconv.Atoi(string(p.runes[p.pos+1 : p.pos+3]))
			if err != nil {
				return p.fail("invalid ring closure number")
			}
			if err := p.ringClosure(n); err != nil {
				return err
			}
			p.pos += 3

		case ch >= '0' && ch <= '9':
			if err := p.ringClosure(int(ch - '0')); err != nil {
				return err
			}
			p.pos++

		case unicode.IsLetter(ch):
			symbol, aromatic, advance, ok := parseOrganicAtom(p.runes, p.pos)
			if !ok {
				return p.fail("unknown organic-subset atom %q", string(ch))
			}
			p.addAtom(&Atom{
				Symbol:       symbol,
				AtomicNumber: LookupAtomicNumber(symbol),
				Aromatic:     aromatic,
			}, false)
			p.pos += advance

		default:
			return p.fail("unexpected character %q", string(ch))
		}
	}

	if len(p.rings) > 0 {
		return p.fail("%d unclosed ring bond(s)", len(p.rings))
	}
	if len(p.branches) > 0 {
		return p.fail("unclosed branch")
	}
	if len(p.atoms) == 0 {
		return p.fail("no atoms")
	}
	return nil
}

func (p *smilesParser) addAtom(atom *Atom, explicitH bool) {
	atom.Index = len(p.atoms)
	p.atoms = append(p.atoms, atom)
	p.explicit = append(p.explicit, explicitH)
	if p.prev >= 0 {
		p.bonds = append(p.bonds, &Bond{
			Begin: p.prev,
			End:   atom.Index,
			Order: p.resolveOrder(p.order, p.prev, atom.Index),
		})
	}
	p.order = 0
	p.prev = atom.Index
}

// resolveOrder applies the implicit-bond rule: aromatic between two aromatic
// atoms, single otherwise.
func (p *smilesParser) resolveOrder(explicit BondOrder, i, j int) BondOrder {
	if explicit != 0 {
		return explicit
	}
	if p.atoms[i].Aromatic && p.atoms[j].Aromatic {
		return BondAromatic
	}
	return BondSingle
}

func (p *smilesParser) ringClosure(n int) error {
	if p.prev < 0 {
		return p.fail("ring closure %d before any atom", n)
	}
	open, ok := p.rings[n]
	if !ok {
		p.rings[n] = ringOpening{atom: p.prev, order: p.order}
		p.order = 0
		return nil
	}
	delete(p.rings, n)
	if open.atom == p.prev {
		return p.fail("ring closure %d bonds atom %d to itself", n, p.prev)
	}
	order := p.order
	if order == 0 {
		order = open.order
	}
	if open.order != 0 && p.order != 0 && open.order != p.order {
		return p.fail("conflicting bond orders on ring closure %d", n)
	}
	p.bonds = append(p.bonds, &Bond{
		Begin: open.atom,
		End:   p.prev,
		Order: p.resolveOrder(order, open.atom, p.prev),
	})
	p.order = 0
	return nil
}

// parseOrganicAtom extracts an organic-subset atom symbol starting at i.
// Returns (symbol, isAromatic, numRunesConsumed, ok).
func parseOrganicAtom(runes []rune, i int) (string, bool, int, bool) {
	ch := runes[i]

	if i+1 < len(runes) {
		two := string(runes[i : i+2])
		if two == "Cl" || two == "Br" {
			return two, false, 2, true
		}
	}
	if aromaticOrganic[ch] {
		return string(unicode.ToUpper(ch)), true, 1, true
	}
	sym := string(ch)
	if organicSubset[sym] {
		return sym, false, 1, true
	}
	return "", false, 0, false
}

// parseBracketAtom parses the content inside [...].  The second return value
// reports whether a hydrogen count was written (explicitly zero when absent).
func parseBracketAtom(content string) (*Atom, bool, error) {
	runes := []rune(content)
	idx := 0

	// isotope
	for idx < len(runes) && unicode.IsDigit(runes[idx]) {
		idx++
	}
	if idx >= len(runes) || !unicode.IsLetter(runes[idx]) {
		return nil, false, fmt.Errorf("bracket atom %q has no element symbol", content)
	}

	atom := &Atom{}
	start := idx
	atom.Aromatic = unicode.IsLower(runes[idx])
	idx++
	if idx < len(runes) && unicode.IsLower(runes[idx]) {
		cand := strings.ToUpper(string(runes[start])) + string(runes[idx])
		if _, ok := atomicNumberMap[cand]; ok {
			idx++
		}
	}
	sym := string(runes[start:idx])
	if atom.Aromatic {
		sym = strings.ToUpper(sym[:1]) + sym[1:]
	}
	atom.Symbol = sym
	atom.AtomicNumber = LookupAtomicNumber(sym)
	if atom.AtomicNumber == 0 {
		return nil, false, fmt.Errorf("unknown element %q", sym)
	}

	rest := string(runes[idx:])
	rest = strings.TrimLeft(rest, "@")

	if strings.HasPrefix(rest, "H") {
		atom.HydrogenCount = 1
		rest = rest[1:]
		if len(rest) > 0 && rest[0] >= '0' && rest[0] <= '9' {
			atom.HydrogenCount = int(rest[0] - '0')
			rest = rest[1:]
		}
	}

	charge, err := parseCharge(rest)
	if err != nil {
		return nil, false, fmt.Errorf("bracket atom %q: %w", content, err)
	}
	atom.Charge = charge
	return atom, true, nil
}

// parseCharge accepts "", "+", "++", "-", "--", "+n" and "-n".
func parseCharge(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	sign := 1
	switch s[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return 0, fmt.Errorf("unexpected trailing %q", s)
	}
	body := s[1:]
	if body == "" {
		return sign, nil
	}
	if strings.Trim(body, s[:1]) == "" {
		return sign * (len(body) + 1), nil
	}
	n, err := strconv.Atoi(body)
	if err != nil {
		return 0, fmt.Errorf("invalid charge %q", s)
	}
	return sign * n, nil
}

// assignImplicitHydrogens fills HydrogenCount for atoms written without
// brackets from their default valence.  Aromatic bonds count as 1.5.
func assignImplicitHydrogens(c *AtomContainer, explicit []bool) {
	for i, atom := range c.atoms {
		if i < len(explicit) && explicit[i] {
			continue
		}
		valence, ok := defaultValence[atom.AtomicNumber]
		if !ok {
			continue
		}
		sum := 0.0
		for _, n := range c.adjacency[i] {
			switch c.BondBetween(i, n).Order {
			case BondDouble:
				sum += 2
			case BondTriple:
				sum += 3
			case BondAromatic:
				sum += 1.5
			default:
				sum++
			}
		}
		h := valence - int(math.Ceil(sum))
		if h < 0 {
			h = 0
		}
		atom.HydrogenCount = h
	}
}

//Personal.AI order the ending
