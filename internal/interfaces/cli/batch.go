package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/KeyIP-MCS/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-MCS/pkg/errors"
	mcstypes "github.com/turtacn/KeyIP-MCS/pkg/types/mcs"
)

// NewBatchCmd creates the batch subcommand.
func NewBatchCmd() *cobra.Command {
	var flags matchFlags

	cmd := &cobra.Command{
		Use:   "batch <file|->",
		Short: "Map many molecule pairs from a file",
		Long: "Read one \"SOURCE TARGET\" SMILES pair per line and map every pair.\n" +
			"Blank lines and lines starting with # are skipped; \"-\" reads stdin.\n" +
			"Pairs run concurrently up to worker.concurrency; the first failure aborts the batch.",
		Example: "  keyip-mcs batch pairs.txt --algorithm cdkmcs\n" +
			"  printf 'CCO OCC\\nCCN NCC\\n' | keyip-mcs batch - -o json",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			opts, err := flags.options(cmd, cliCtx.Config.Matcher)
			if err != nil {
				return err
			}

			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return errors.Wrap(err, errors.CodeInvalidParam, "cannot open batch file")
				}
				defer f.Close()
				in = f
			}

			reqs, err := readPairs(in, opts, flags.query)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()

			cliCtx.Logger.Info("mapping batch",
				logging.Int("pairs", len(reqs)),
				logging.String("algorithm", opts.Algorithm.String()))

			results, err := cliCtx.Service.MapBatch(ctx, reqs)
			if err != nil {
				return err
			}
			return PrintResult(cmd, &batchView{requests: reqs, results: results})
		},
	}

	flags.register(cmd)
	return cmd
}

// readPairs parses "SOURCE TARGET" lines into requests sharing opts.
func readPairs(r io.Reader, opts mcstypes.MatchOptions, query bool) ([]*mcstypes.MapRequest, error) {
	var reqs []*mcstypes.MapRequest
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, errors.Newf(errors.CodeInvalidParam,
				"line %d: want \"SOURCE TARGET\", got %d fields", line, len(fields))
		}
		reqs = append(reqs, &mcstypes.MapRequest{
			SourceSMILES: fields[0],
			TargetSMILES: fields[1],
			SourceQuery:  query,
			Options:      opts,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidParam, "reading batch input")
	}
	if len(reqs) == 0 {
		return nil, errors.New(errors.CodeInvalidParam, "batch input contains no molecule pairs")
	}
	return reqs, nil
}

// batchView renders batch results one pair per row.
type batchView struct {
	requests []*mcstypes.MapRequest
	results  []*mcstypes.MapResult
}

func (v *batchView) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.results)
}

// TableHeaders implements tableProvider.
func (v *batchView) TableHeaders() []string {
	return []string{"#", "SOURCE", "TARGET", "SIZE", "MAPPINGS", "BEST"}
}

// TableRows implements tableProvider.
func (v *batchView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.results))
	for i, res := range v.results {
		best := make([]string, 0, len(res.Best()))
		for _, p := range res.Best() {
			best = append(best, fmt.Sprintf("%d:%d", p.Source, p.Target))
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			v.requests[i].SourceSMILES,
			v.requests[i].TargetSMILES,
			strconv.Itoa(res.Size),
			strconv.Itoa(len(res.Mappings)),
			strings.Join(best, ","),
		})
	}
	return rows
}

func (v *batchView) String() string {
	return FormatTable(v.TableHeaders(), v.TableRows())
}

//Personal.AI order the ending
