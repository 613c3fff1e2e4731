package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/KeyIP-MCS/internal/config"
	"github.com/turtacn/KeyIP-MCS/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-MCS/pkg/errors"
	mcstypes "github.com/turtacn/KeyIP-MCS/pkg/types/mcs"
)

// matchFlags are the per-request option flags shared by map and batch.
// Unset flags fall back to the matcher section of the configuration.
type matchFlags struct {
	algorithm     string
	bondMatch     bool
	ringMatch     bool
	atomTypeMatch bool
	query         bool
	reactants     int
	products      int
}

func (f *matchFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.algorithm, "algorithm", "a", "",
		"matching algorithm: "+joinAlgorithms()+" (default from matcher.algorithm)")
	fs.BoolVar(&f.bondMatch, "bond-match", false, "require matching bond orders")
	fs.BoolVar(&f.ringMatch, "ring-match", false, "require matching ring membership")
	fs.BoolVar(&f.atomTypeMatch, "atom-type-match", false, "require matching atom types")
	fs.BoolVar(&f.query, "query", false, "treat the source molecule as a query graph")
	fs.IntVar(&f.reactants, "reactants", 0, "reactant count used to orient the extension")
	fs.IntVar(&f.products, "products", 0, "product count used to orient the extension")
}

// options merges the flags that were set on cmd over the configured defaults.
func (f *matchFlags) options(cmd *cobra.Command, defaults config.MatcherConfig) (mcstypes.MatchOptions, error) {
	fs := cmd.Flags()
	if fs.Changed("algorithm") {
		defaults.Algorithm = f.algorithm
	}
	if fs.Changed("bond-match") {
		defaults.BondMatch = f.bondMatch
	}
	if fs.Changed("ring-match") {
		defaults.RingMatch = f.ringMatch
	}
	if fs.Changed("atom-type-match") {
		defaults.AtomTypeMatch = f.atomTypeMatch
	}
	if fs.Changed("reactants") {
		defaults.ReactantCount = f.reactants
	}
	if fs.Changed("products") {
		defaults.ProductCount = f.products
	}
	opts, err := defaults.Options()
	if err != nil {
		return mcstypes.MatchOptions{}, errors.Wrap(err, errors.CodeAlgorithmUnsupported, "invalid --algorithm")
	}
	return opts, nil
}

func joinAlgorithms() string {
	names := make([]string, len(mcstypes.AllAlgorithms))
	for i, a := range mcstypes.AllAlgorithms {
		names[i] = a.String()
	}
	return strings.Join(names, "|")
}

// NewMapCmd creates the map subcommand.
func NewMapCmd() *cobra.Command {
	var (
		flags  matchFlags
		source string
		target string
		all    bool
	)

	cmd := &cobra.Command{
		Use:   "map",
		Short: "Map the maximum common substructure of two molecules",
		Long: "Compute atom-atom mappings between a source and a target SMILES.\n" +
			"The best mapping is printed; --all prints every mapping of maximum size.",
		Example: "  keyip-mcs map --source CCO --target OCC\n" +
			"  keyip-mcs map --source c1ccccc1 --target c1ccncc1 --algorithm mcsplus -o json",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			opts, err := flags.options(cmd, cliCtx.Config.Matcher)
			if err != nil {
				return err
			}
			req := &mcstypes.MapRequest{
				SourceSMILES: source,
				TargetSMILES: target,
				SourceQuery:  flags.query,
				Options:      opts,
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()

			cliCtx.Logger.Debug("mapping molecules",
				logging.String("source", source),
				logging.String("target", target),
				logging.String("algorithm", opts.Algorithm.String()))

			res, err := cliCtx.Service.Map(ctx, req)
			if err != nil {
				return err
			}
			return PrintResult(cmd, newMappingView(res, all))
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "source molecule SMILES (required)")
	cmd.Flags().StringVarP(&target, "target", "t", "", "target molecule SMILES (required)")
	cmd.Flags().BoolVar(&all, "all", false, "print every mapping instead of the best one")
	flags.register(cmd)
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

// mappingView renders a MapResult for the terminal.  Its JSON form is the
// result itself.
type mappingView struct {
	result *mcstypes.MapResult
	all    bool
}

func newMappingView(res *mcstypes.MapResult, all bool) *mappingView {
	return &mappingView{result: res, all: all}
}

func (v *mappingView) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.result)
}

func (v *mappingView) mappings() [][]mcstypes.AtomPair {
	if v.all {
		return v.result.Mappings
	}
	if best := v.result.Best(); best != nil {
		return [][]mcstypes.AtomPair{best}
	}
	return nil
}

// TableHeaders implements tableProvider.
func (v *mappingView) TableHeaders() []string {
	return []string{"MAPPING", "SOURCE", "TARGET"}
}

// TableRows implements tableProvider.
func (v *mappingView) TableRows() [][]string {
	var rows [][]string
	for i, m := range v.mappings() {
		for _, p := range m {
			rows = append(rows, []string{
				strconv.Itoa(i + 1),
				fmt.Sprintf("%s%d", p.SourceSymbol, p.Source),
				fmt.Sprintf("%s%d", p.TargetSymbol, p.Target),
			})
		}
	}
	return rows
}

func (v *mappingView) String() string {
	r := v.result
	var sb strings.Builder
	fmt.Fprintf(&sb, "Run:        %s\n", r.RunID)
	fmt.Fprintf(&sb, "Algorithm:  %s\n", r.Algorithm)
	fmt.Fprintf(&sb, "Atoms:      %d source, %d target\n", r.SourceAtoms, r.TargetAtoms)
	fmt.Fprintf(&sb, "MCS size:   %d\n", r.Size)
	fmt.Fprintf(&sb, "Mappings:   %d\n", len(r.Mappings))
	fmt.Fprintf(&sb, "Extended:   %t\n", r.Extended)
	if r.Cached {
		sb.WriteString("Cached:     true\n")
	}
	for i, m := range v.mappings() {
		pairs := make([]string, len(m))
		for j, p := range m {
			pairs[j] = fmt.Sprintf("%s%d->%s%d", p.SourceSymbol, p.Source, p.TargetSymbol, p.Target)
		}
		fmt.Fprintf(&sb, "#%d: %s\n", i+1, strings.Join(pairs, " "))
	}
	return sb.String()
}

//Personal.AI order the ending
