package pipeline

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/cx-luo/synthline/internal/config"
	"github.com/cx-luo/synthline/internal/dedup"
	"github.com/cx-luo/synthline/internal/errs"
	"github.com/cx-luo/synthline/internal/fragment"
	"github.com/cx-luo/synthline/internal/gates"
	"github.com/cx-luo/synthline/internal/logging"
	"github.com/cx-luo/synthline/internal/molecule"
	"github.com/cx-luo/synthline/internal/ports"
)

// Result summarizes one completed or cancelled run, for the CLI's exit
// message. RunSerial and RunThreaded return a zero Result together with a
// fatal error, so the counts collected before that error are not reported.
type Result struct {
	Cancelled       bool
	ValidationHit   bool
	AcceptedByLevel map[int]int64
	RejectedCount   int64
}

// Driver owns the level pipeline, the dedup cascade, the drug-likeness
// gates, and the three external ports. It is constructed once per run from
// a single config.Config value (Design Notes §9: no global mutable
// configuration).
type Driver struct {
	cfg    config.Config
	logger logging.Logger

	loader ports.FragmentLoader
	oracle ports.ChemOracle
	sink   ports.Sink

	dedup *dedup.Cascade
	rng   *seededUniform

	levels map[int]*Level

	rigids       []*fragment.Fragment
	linkers      []*fragment.Fragment
	baseByID     []*fragment.Fragment
	numFragments int

	cancel    atomic.Bool
	validated atomic.Bool

	countsMu sync.Mutex
	accepted map[int]int64
	rejected int64
}

// New constructs a Driver. It drains the FragmentLoader fully up front: the
// dense fragmentId ranges (spec.md §3: rigids then linkers) must be known
// before level 1/2 can be seeded.
func New(ctx context.Context, cfg config.Config, loader ports.FragmentLoader, oracle ports.ChemOracle, sink ports.Sink, logger logging.Logger) (*Driver, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	d := &Driver{
		cfg:      cfg,
		logger:   logger,
		loader:   loader,
		oracle:   oracle,
		sink:     sink,
		rng:      newSeededUniform(cfg.Probabilistic.Seed),
		levels:   make(map[int]*Level),
		accepted: make(map[int]int64),
	}

	for {
		f, ok, err := loader.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		desc, err := oracle.Descriptors(ctx, f)
		if err != nil {
			return nil, errs.Wrap(errs.OracleDown, err, "driver: computing base fragment descriptors")
		}
		f.Descriptors = desc
		d.baseByID = append(d.baseByID, f)
		if f.Kind == fragment.Rigid {
			d.rigids = append(d.rigids, f)
		} else {
			d.linkers = append(d.linkers, f)
		}
	}
	d.numFragments = len(d.baseByID)

	cascade, err := dedup.NewCascade(cfg)
	if err != nil {
		return nil, err
	}
	d.dedup = cascade

	for k := 1; k <= cfg.MaxLevel; k++ {
		d.levels[k] = NewLevel(k, cfg.QueueCapFor(k))
	}
	return d, nil
}

// RequestCancel fires the identity short-circuit / external-signal
// cancellation path (spec.md §4.6, §4.8).
func (d *Driver) RequestCancel() {
	d.cancel.Store(true)
}

// Cancelled reports whether cancellation has been requested.
func (d *Driver) Cancelled() bool {
	return d.cancel.Load()
}

func (d *Driver) incrementAccepted(level int) {
	d.countsMu.Lock()
	d.accepted[level]++
	d.countsMu.Unlock()
}

func (d *Driver) incrementRejected() {
	atomic.AddInt64(&d.rejected, 1)
}

// Result snapshots the driver's counts for the CLI exit message.
func (d *Driver) Result() Result {
	d.countsMu.Lock()
	defer d.countsMu.Unlock()
	snapshot := make(map[int]int64, len(d.accepted))
	for k, v := range d.accepted {
		snapshot[k] = v
	}
	return Result{
		Cancelled:       d.cancel.Load(),
		ValidationHit:   d.validated.Load(),
		AcceptedByLevel: snapshot,
		RejectedCount:   atomic.LoadInt64(&d.rejected),
	}
}

// additivePreFilterReject and estimateDescriptors adapt internal/gates'
// free functions to the signature molecule.Compose expects.
func (d *Driver) additivePreFilterReject(a, b fragment.Descriptors) bool {
	return gates.AdditivePreFilterReject(a, b, d.cfg.DrugLikeness)
}

func (d *Driver) estimateDescriptors(a, b fragment.Descriptors) fragment.Descriptors {
	return gates.EstimateDescriptors(a, b)
}

// admitChild runs one freshly composed candidate through the full admit
// pipeline of spec.md §4.3/§4.5: absolute-threshold gate, probabilistic
// rarity filter (if active at this level), canonicalization, and the
// two-tier Bloom cascade. On admission it streams the molecule to the Sink,
// checks the validation short-circuit, and returns true.
func (d *Driver) admitChild(ctx context.Context, level int, child *molecule.Molecule) (bool, error) {
	if gates.AbsoluteThresholdReject(child.Descriptors, d.cfg.DrugLikeness) {
		d.incrementRejected()
		return false, nil
	}

	if d.cfg.ProbabilisticActive(level) {
		rigids, linkers := molecule.NumRigidsLinkers(child.FragmentCounts, len(d.rigids))
		cand := gates.RarityCandidate{
			MW:         child.Descriptors.MW,
			NumRigids:  float64(rigids),
			NumLinkers: float64(linkers),
			HBD:        child.Descriptors.HBD,
			HBA1:       child.Descriptors.HBA1,
		}
		if !gates.RarityAdmit(cand, d.rng) {
			d.incrementRejected()
			return false, nil
		}
	}

	identity, err := d.oracle.Canonicalize(ctx, child)
	if err != nil {
		d.logger.Debug("chemoracle canonicalize failed, treating as rejected candidate", logging.Err(err))
		d.incrementRejected()
		return false, nil
	}
	child.SetIdentity(identity)

	if err := d.ensureLevelFilter(level); err != nil {
		return false, err
	}
	if !d.dedup.Admit(level, identity) {
		d.incrementRejected()
		return false, nil
	}

	// Final acceptance defers to the oracle's exact check (spec.md §6:
	// "optional precise gate used ... for final acceptance; the core's
	// gates are advisory"); the pre-filter and absolute-threshold gates
	// above are the core's own advisory estimate-based checks.
	exact, err := d.oracle.IsLipinskiExact(ctx, child)
	if err != nil {
		d.logger.Debug("chemoracle IsLipinskiExact failed, treating as rejected candidate", logging.Err(err))
		d.incrementRejected()
		return false, nil
	}
	if !exact {
		d.incrementRejected()
		return false, nil
	}

	if err := d.sink.Emit(ctx, identity, child); err != nil {
		return false, errs.Wrap(errs.SinkWriteFailed, err, "driver: sink emit failed")
	}
	d.incrementAccepted(level)

	if d.cfg.ValidationIdentity != "" && identity == d.cfg.ValidationIdentity {
		d.validated.Store(true)
		d.RequestCancel()
	}

	return true, nil
}

func (d *Driver) ensureLevelFilter(level int) error {
	return d.dedup.OpenLevel(level)
}

// retireLevel implements the Retired transition: release the per-level
// Bloom filter and the queued molecule objects (spec.md §4.3/§4.4/§4.7).
func (d *Driver) retireLevel(level int) {
	lv := d.levels[level]
	if lv == nil {
		return
	}
	lv.MarkRetired()
	d.dedup.RetireLevel(level)
}
