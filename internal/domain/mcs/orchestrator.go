package mcs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/KeyIP-MCS/internal/domain/molecule"
	"github.com/turtacn/KeyIP-MCS/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-MCS/pkg/errors"
	mcstypes "github.com/turtacn/KeyIP-MCS/pkg/types/mcs"
)

// ─────────────────────────────────────────────────────────────────────────────
// Run state
// ─────────────────────────────────────────────────────────────────────────────

// State is the phase of a matching run.
type State int

const (
	StateIdle State = iota
	StateSeeded
	StateExtensionNeeded
	StateExtending
	StateConsolidating
	StateDone
	StateFailed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSeeded:
		return "seeded"
	case StateExtensionNeeded:
		return "extension_needed"
	case StateExtending:
		return "extending"
	case StateConsolidating:
		return "consolidating"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Options
// ─────────────────────────────────────────────────────────────────────────────

// Options configure one orchestrator.
type Options struct {
	Algorithm  mcstypes.Algorithm
	Predicates Predicates
	// ReactantCount and ProductCount are caller-supplied; when the source is
	// concrete, extension runs source→target only if ReactantCount is larger.
	ReactantCount int
	ProductCount  int
}

// Option customises an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRecorder sets the telemetry recorder.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.metrics = r
		}
	}
}

// Result is the outcome of a run.
type Result struct {
	RunID     string
	Solutions []*Correspondence
	State     State
	Extended  bool
	BestSize  int
	Seeds     int
	Duration  time.Duration
}

// ─────────────────────────────────────────────────────────────────────────────
// Orchestrator
// ─────────────────────────────────────────────────────────────────────────────

// Orchestrator drives one source/target pair through exact matching, seed
// generation, extension and consolidation.  Runs on the same instance are
// serialised; Solutions, BestSize and State may be read at any time.
type Orchestrator struct {
	source     *molecule.AtomContainer
	target     *molecule.AtomContainer
	opts       Options
	predicates Predicates
	collab     Collaborators
	ranker     *Ranker
	encoder    *Encoder
	seeds      *SeedGenerator
	logger     logging.Logger
	metrics    Recorder

	runMu sync.Mutex

	mu       sync.RWMutex
	state    State
	runID    string
	extended bool
}

// NewOrchestrator validates the graphs, the algorithm and the collaborators
// the algorithm needs.
func NewOrchestrator(source, target *molecule.AtomContainer, opts Options, collab Collaborators, options ...Option) (*Orchestrator, error) {
	if source == nil || target == nil {
		return nil, errors.New(errors.CodeGraphInvalid, "source and target graphs are required")
	}
	if source.AtomCount() == 0 || target.AtomCount() == 0 {
		return nil, errors.New(errors.CodeGraphInvalid, "graphs must contain at least one atom").
			WithDetail(fmt.Sprintf("source=%d target=%d", source.AtomCount(), target.AtomCount()))
	}
	if target.Role == molecule.RoleQuery {
		return nil, errors.New(errors.CodeGraphInvalid, "only the source graph may be a query")
	}

	if opts.Algorithm == "" {
		opts.Algorithm = mcstypes.AlgorithmDefault
	}
	if !opts.Algorithm.IsValid() {
		return nil, errors.Newf(errors.CodeAlgorithmUnsupported, "unsupported algorithm %q", opts.Algorithm)
	}
	if err := requireCollaborators(opts.Algorithm, collab); err != nil {
		return nil, err
	}

	o := &Orchestrator{
		source:     source,
		target:     target,
		opts:       opts,
		predicates: effectivePredicates(source, opts.Predicates),
		collab:     collab,
		ranker:     NewRanker(),
		logger:     logging.NewNopLogger(),
		metrics:    NoopRecorder(),
	}
	for _, opt := range options {
		opt(o)
	}
	o.logger = o.logger.Named("mcs")
	o.encoder = NewEncoder(source, target, o.logger, o.metrics)
	o.seeds = NewSeedGenerator(source, target, o.predicates, collab, o.logger, o.metrics)
	return o, nil
}

func requireCollaborators(a mcstypes.Algorithm, c Collaborators) error {
	missing := func(name string) error {
		return errors.Newf(errors.CodeInvalidParam, "algorithm %s requires %s", a, name)
	}
	if c.Exact == nil {
		return missing("an exact matcher")
	}
	switch a {
	case mcstypes.AlgorithmMCSPlus:
		if c.Builder == nil || c.Enumerator == nil {
			return missing("a compatibility graph builder and a clique enumerator")
		}
	case mcstypes.AlgorithmCDKMCS:
		if c.Reducer == nil {
			return missing("an overlap reducer")
		}
	}
	if a != mcstypes.AlgorithmVFLib && c.Extension == nil {
		return missing("an extension algorithm")
	}
	return nil
}

// Run executes one matching run and returns the maximal solutions.  A
// collaborator failure or an unresolvable extended pair aborts the run.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	o.runMu.Lock()
	defer o.runMu.Unlock()

	runID := uuid.NewString()
	o.ranker.Reset()
	o.mu.Lock()
	o.runID = runID
	o.state = StateIdle
	o.extended = false
	o.mu.Unlock()

	log := o.logger.With(logging.RunID(runID), logging.String("algorithm", o.opts.Algorithm.String()))
	log.Info("matching run started",
		logging.String("source", o.source.String()),
		logging.String("target", o.target.String()),
		logging.String("source_role", o.source.Role.String()),
	)
	start := time.Now()

	seedCount, err := o.run(ctx, log)
	if err != nil {
		o.setState(StateFailed, log)
		log.Error("matching run failed", logging.Err(err), logging.Duration("elapsed", time.Since(start)))
		return nil, err
	}
	o.setState(StateDone, log)

	res := &Result{
		RunID:     runID,
		Solutions: o.ranker.Snapshot(),
		State:     StateDone,
		Extended:  o.Extended(),
		BestSize:  o.ranker.BestSize(),
		Seeds:     seedCount,
		Duration:  time.Since(start),
	}
	log.Info("matching run finished",
		logging.Int("solutions", len(res.Solutions)),
		logging.Int("best_size", res.BestSize),
		logging.Bool("extended", res.Extended),
		logging.Duration("elapsed", res.Duration),
	)
	return res, nil
}

func (o *Orchestrator) run(ctx context.Context, log logging.Logger) (int, error) {
	if err := o.exactSeeds(ctx); err != nil {
		return 0, err
	}
	o.setState(StateSeeded, log)

	seeds := o.ranker.Snapshot()
	if o.opts.Algorithm != mcstypes.AlgorithmVFLib && o.ExtensionRequired() {
		o.setState(StateExtensionNeeded, log)
		if o.opts.Algorithm.UsesSeedStrategy() {
			generated, err := o.seeds.Generate(ctx, o.opts.Algorithm)
			if err != nil {
				return 0, err
			}
			for _, g := range generated {
				if !IsCliquePresent(g, seeds) {
					seeds = append(seeds, g)
				}
			}
			SortBySizeDesc(seeds)
		}
	}

	if o.opts.Algorithm == mcstypes.AlgorithmVFLib || len(seeds) == 0 || !o.ExtensionRequiredFor(seeds) {
		for _, s := range seeds {
			o.ranker.Offer(s)
		}
		return len(seeds), nil
	}

	o.setState(StateExtending, log)
	state, err := o.extend(ctx, seeds, log)
	if err != nil {
		return 0, err
	}

	o.setState(StateConsolidating, log)
	if err := o.consolidate(state); err != nil {
		return 0, err
	}
	o.mu.Lock()
	o.extended = true
	o.mu.Unlock()
	return len(seeds), nil
}

// exactSeeds runs the exact matcher and offers its maps, largest first.
func (o *Orchestrator) exactSeeds(ctx context.Context) error {
	left, right, sourceOnLeft := o.exactRoles()

	raw, err := o.collab.Exact.Match(ctx, left, right, o.predicates)
	if err != nil {
		return errors.CollaboratorFailure(err, "exact matcher")
	}

	sorted := make([]NodeMap, len(raw))
	copy(sorted, raw)
	sort.SliceStable(sorted, func(a, b int) bool { return len(sorted[a]) > len(sorted[b]) })

	accepted := 0
	for _, m := range sorted {
		c := o.encoder.EncodeNodeMap(m, sourceOnLeft, StrategyExact)
		if o.ranker.Offer(c) {
			accepted++
		}
	}
	o.metrics.RecordSeeds(StrategyExact, accepted)
	return nil
}

// exactRoles keeps a query source on the left; otherwise the smaller graph is
// the matcher's pattern side.
func (o *Orchestrator) exactRoles() (*molecule.AtomContainer, *molecule.AtomContainer, bool) {
	switch o.source.Role {
	case molecule.RoleQuery:
		return o.source, o.target, true
	default:
		if o.source.AtomCount() <= o.target.AtomCount() {
			return o.source, o.target, true
		}
		return o.target, o.source, false
	}
}

func (o *Orchestrator) setState(s State, log logging.Logger) {
	o.mu.Lock()
	prev := o.state
	o.state = s
	o.mu.Unlock()
	log.Debug("run state changed", logging.String("from", prev.String()), logging.String("to", s.String()))
}

// State returns the phase of the current or last run.
func (o *Orchestrator) State() State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// RunID returns the id of the current or last run.
func (o *Orchestrator) RunID() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.runID
}

// Extended reports whether the last run went through extension.
func (o *Orchestrator) Extended() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.extended
}

// Solutions returns a deep copy of the accepted set.
func (o *Orchestrator) Solutions() []*Correspondence { return o.ranker.Snapshot() }

// BestSize returns the size of the accepted solutions.
func (o *Orchestrator) BestSize() int { return o.ranker.BestSize() }

// Source returns the source graph.
func (o *Orchestrator) Source() *molecule.AtomContainer { return o.source }

// Target returns the target graph.
func (o *Orchestrator) Target() *molecule.AtomContainer { return o.target }

//Personal.AI order the ending
