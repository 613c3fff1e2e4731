package mapping

import (
	"github.com/turtacn/KeyIP-MCS/internal/config"
	"github.com/turtacn/KeyIP-MCS/internal/domain/mcs"
	"github.com/turtacn/KeyIP-MCS/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-MCS/internal/intelligence/common"
	"github.com/turtacn/KeyIP-MCS/internal/intelligence/mcgregor"
	"github.com/turtacn/KeyIP-MCS/internal/intelligence/mcsplus"
	"github.com/turtacn/KeyIP-MCS/internal/intelligence/rgraph"
	"github.com/turtacn/KeyIP-MCS/internal/intelligence/vflib"
)

// NewReferenceCollaborators wires the bundled search engines.  The engines
// are stateless and may be shared by concurrent runs.
func NewReferenceCollaborators(cfg config.EnginesConfig, logger logging.Logger, metrics common.EngineMetrics) mcs.Collaborators {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = common.NewNoopEngineMetrics()
	}
	return mcs.Collaborators{
		Exact: vflib.NewMatcher(
			vflib.WithLimits(cfg.VF),
			vflib.WithLogger(logger),
			vflib.WithMetrics(metrics),
		),
		Builder:    mcsplus.NewBuilder(logger),
		Enumerator: mcsplus.NewEnumerator(cfg.Clique, logger, metrics),
		Reducer:    rgraph.NewReducer(cfg.Overlap, logger, metrics),
		Extension:  mcgregor.NewExtender(cfg.Extension, logger, metrics),
	}
}

//Personal.AI order the ending
