// Package mapping provides the application-level service that turns SMILES
// pairs into maximum common subgraph mappings.  It sits between the CLI and
// the mcs domain package.
package mapping

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/KeyIP-MCS/internal/domain/mcs"
	"github.com/turtacn/KeyIP-MCS/internal/domain/molecule"
	"github.com/turtacn/KeyIP-MCS/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-MCS/pkg/errors"
	"github.com/turtacn/KeyIP-MCS/pkg/types/common"
	mcstypes "github.com/turtacn/KeyIP-MCS/pkg/types/mcs"
)

// Service defines the mapping operations.
type Service interface {
	Map(ctx context.Context, req *mcstypes.MapRequest) (*mcstypes.MapResult, error)
	MapBatch(ctx context.Context, reqs []*mcstypes.MapRequest) ([]*mcstypes.MapResult, error)
}

// ResultCache stores finished results by request.
type ResultCache interface {
	GetOrCompute(ctx context.Context, req *mcstypes.MapRequest, compute func(ctx context.Context) (*mcstypes.MapResult, error)) (*mcstypes.MapResult, bool, error)
}

// Metrics receives run-level telemetry on top of the orchestrator's own.
type Metrics interface {
	mcs.Recorder
	RunStarted(algorithm string) func(err error, bestSize int)
	RecordCacheAccess(hit bool)
}

type noopMetrics struct{ mcs.Recorder }

func (noopMetrics) RunStarted(string) func(error, int) { return func(error, int) {} }
func (noopMetrics) RecordCacheAccess(bool)             {}

// DefaultConcurrency bounds MapBatch when no option is given.
const DefaultConcurrency = 4

// ServiceOption customises the service.
type ServiceOption func(*serviceImpl)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) ServiceOption {
	return func(s *serviceImpl) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCache enables result caching.
func WithCache(c ResultCache) ServiceOption {
	return func(s *serviceImpl) { s.cache = c }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) ServiceOption {
	return func(s *serviceImpl) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithConcurrency bounds the number of runs MapBatch executes at once.
func WithConcurrency(n int) ServiceOption {
	return func(s *serviceImpl) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// serviceImpl implements the Service interface.
type serviceImpl struct {
	collab      mcs.Collaborators
	cache       ResultCache
	metrics     Metrics
	logger      logging.Logger
	concurrency int
}

// NewService creates a mapping service over collab.  Each Map call builds a
// fresh orchestrator, so collab must be safe for concurrent use.
func NewService(collab mcs.Collaborators, opts ...ServiceOption) (Service, error) {
	if collab.Exact == nil {
		return nil, errors.New(errors.CodeInvalidParam, "an exact matcher is required")
	}
	s := &serviceImpl{
		collab:      collab,
		metrics:     noopMetrics{mcs.NoopRecorder()},
		logger:      logging.NewNopLogger(),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("mapping")
	return s, nil
}

// Map computes the maximum common subgraph mappings for one request.
func (s *serviceImpl) Map(ctx context.Context, req *mcstypes.MapRequest) (*mcstypes.MapResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	normalized := *req
	alg, err := mcstypes.ParseAlgorithm(string(req.Options.Algorithm))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeAlgorithmUnsupported, "unsupported algorithm")
	}
	normalized.Options.Algorithm = alg

	if s.cache == nil {
		return s.compute(ctx, &normalized)
	}

	res, hit, err := s.cache.GetOrCompute(ctx, &normalized, func(ctx context.Context) (*mcstypes.MapResult, error) {
		return s.compute(ctx, &normalized)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordCacheAccess(hit)
	res.Cached = hit
	if hit {
		s.logger.Debug("mapping served from cache", logging.RunID(res.RunID))
	}
	return res, nil
}

func validateRequest(req *mcstypes.MapRequest) error {
	if req == nil {
		return errors.New(errors.CodeInvalidParam, "request is required")
	}
	if strings.TrimSpace(req.SourceSMILES) == "" || strings.TrimSpace(req.TargetSMILES) == "" {
		return errors.New(errors.CodeInvalidParam, "source and target SMILES are required")
	}
	if req.Options.ReactantCount < 0 || req.Options.ProductCount < 0 {
		return errors.New(errors.CodeInvalidParam, "reactant and product counts must not be negative")
	}
	return nil
}

func (s *serviceImpl) compute(ctx context.Context, req *mcstypes.MapRequest) (*mcstypes.MapResult, error) {
	source, err := molecule.ParseSMILES(req.SourceSMILES)
	if err != nil {
		return nil, err
	}
	target, err := molecule.ParseSMILES(req.TargetSMILES)
	if err != nil {
		return nil, err
	}
	if req.SourceQuery {
		source = source.AsQuery()
	}

	opts := mcs.Options{
		Algorithm: req.Options.Algorithm,
		Predicates: mcs.Predicates{
			BondMatch:     req.Options.BondMatch,
			RingMatch:     req.Options.RingMatch,
			AtomTypeMatch: req.Options.AtomTypeMatch,
		},
		ReactantCount: req.Options.ReactantCount,
		ProductCount:  req.Options.ProductCount,
	}
	orch, err := mcs.NewOrchestrator(source, target, opts, s.collab,
		mcs.WithLogger(s.logger), mcs.WithRecorder(s.metrics))
	if err != nil {
		return nil, err
	}

	done := s.metrics.RunStarted(opts.Algorithm.String())
	res, err := orch.Run(ctx)
	if err != nil {
		done(err, 0)
		return nil, err
	}
	done(nil, res.BestSize)
	return toMapResult(res, opts.Algorithm, source, target), nil
}

func toMapResult(res *mcs.Result, alg mcstypes.Algorithm, source, target *molecule.AtomContainer) *mcstypes.MapResult {
	out := &mcstypes.MapResult{
		RunID:       res.RunID,
		Algorithm:   alg,
		Size:        res.BestSize,
		Mappings:    make([][]mcstypes.AtomPair, 0, len(res.Solutions)),
		Extended:    res.Extended,
		SourceAtoms: source.AtomCount(),
		TargetAtoms: target.AtomCount(),
		CompletedAt: common.NewTimestamp(),
	}
	for _, sol := range res.Solutions {
		pairs := sol.AtomPairs()
		m := make([]mcstypes.AtomPair, len(pairs))
		for i, p := range pairs {
			m[i] = mcstypes.AtomPair{
				Source:       p.Source.Index,
				Target:       p.Target.Index,
				SourceSymbol: p.Source.Symbol,
				TargetSymbol: p.Target.Symbol,
			}
		}
		out.Mappings = append(out.Mappings, m)
	}
	return out
}

// MapBatch maps every request with bounded concurrency.  Results keep the
// input order; the first failure cancels the rest and is returned.
func (s *serviceImpl) MapBatch(ctx context.Context, reqs []*mcstypes.MapRequest) ([]*mcstypes.MapResult, error) {
	results := make([]*mcstypes.MapResult, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			res, err := s.Map(gctx, req)
			if err != nil {
				return errors.Wrap(err, errors.CodeUnknown, "batch item failed").
					WithDetail("index=" + strconv.Itoa(i))
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("batch aborted", logging.Int("requests", len(reqs)), logging.Err(err))
		return nil, err
	}
	return results, nil
}

var _ Service = (*serviceImpl)(nil)

//Personal.AI order the ending
