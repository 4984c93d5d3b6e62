// Package report generates per-family analysis reports: it completes the
// family's similarity matrix, persists the newly computed pairs and a matrix
// snapshot, and derives the summary statistics and series the report views
// draw.
package report

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/seistrack/famview/internal/domain/catalog"
	"github.com/seistrack/famview/internal/domain/similarity"
	"github.com/seistrack/famview/internal/infrastructure/matrixio"
	"github.com/seistrack/famview/internal/infrastructure/monitoring/logging"
	"github.com/seistrack/famview/internal/infrastructure/monitoring/prometheus"
	"github.com/seistrack/famview/pkg/errors"
)

// hoursPerDay converts day-axis spacings to hours for the report series.
const hoursPerDay = 24.0

// Stats summarizes one family.
type Stats struct {
	Members            int     `json:"members"`
	Longevity          float64 `json:"longevity"`
	FirstTime          float64 `json:"first_time"`
	CoreTime           float64 `json:"core_time"`
	LastTime           float64 `json:"last_time"`
	MeanSpacingHours   float64 `json:"mean_spacing_hours"`
	MedianSpacingHours float64 `json:"median_spacing_hours"`
	MeanFI             float64 `json:"mean_fi"`
}

// SpacingPoint is the inter-event gap in hours, anchored at the later event.
type SpacingPoint struct {
	Time  float64 `json:"time"`
	Hours float64 `json:"hours"`
}

// CorrPoint is one member's correlation against the family core.
type CorrPoint struct {
	Time        float64 `json:"time"`
	Coefficient float64 `json:"coefficient"`
}

// AmpPoint is one member's window amplitude on a single channel.
type AmpPoint struct {
	Time      float64 `json:"time"`
	Amplitude float64 `json:"amplitude"`
}

// FamilyReport is the full per-family report payload.
type FamilyReport struct {
	Family  catalog.FamilyID  `json:"family"`
	Members []catalog.EventID `json:"members"`
	Stats   Stats             `json:"stats"`

	Spacing         []SpacingPoint `json:"spacing"`
	CoreCorrelation []CorrPoint    `json:"core_correlation"`

	// Amplitudes holds one series per channel.
	Amplitudes [][]AmpPoint `json:"amplitudes,omitempty"`

	NewPairs    int    `json:"new_pairs"`
	FailedPairs int    `json:"failed_pairs"`
	Ordered     bool   `json:"ordered"`
	MatrixPath  string `json:"matrix_path,omitempty"`
}

// BatchResult is the outcome of a whole-catalog report run.
type BatchResult struct {
	RunID   string                      `json:"run_id"`
	Reports []*FamilyReport             `json:"reports"`
	Failed  map[catalog.FamilyID]string `json:"failed,omitempty"`
}

// Service defines the report application operations.
type Service interface {
	FamilyReport(ctx context.Context, id catalog.FamilyID) (*FamilyReport, error)
	AllFamilies(ctx context.Context) (*BatchResult, error)
}

type serviceImpl struct {
	families  catalog.FamilyRepository
	events    catalog.EventRepository
	store     similarity.PairStore
	completer *similarity.Completer
	reorderer similarity.Reorderer
	matrixDir string
	logger    logging.Logger
	metrics   *prometheus.AppMetrics
}

// Option customizes the report service.
type Option func(*serviceImpl)

// WithReorderer enables matrix reordering before persistence.  An invalid
// ordering from the reorderer is logged and skipped, never fatal.
func WithReorderer(r similarity.Reorderer) Option {
	return func(s *serviceImpl) { s.reorderer = r }
}

// WithMatrixDir enables matrix snapshots under dir.
func WithMatrixDir(dir string) Option {
	return func(s *serviceImpl) { s.matrixDir = dir }
}

// WithLogger sets the service logger.
func WithLogger(log logging.Logger) Option {
	return func(s *serviceImpl) { s.logger = log }
}

// WithMetrics enables metric recording.
func WithMetrics(m *prometheus.AppMetrics) Option {
	return func(s *serviceImpl) { s.metrics = m }
}

// NewService creates the report service.  The comparator computes absent
// pairs; persisted pairs are never recomputed.
func NewService(
	families catalog.FamilyRepository,
	events catalog.EventRepository,
	store similarity.PairStore,
	cmp similarity.Comparator,
	concurrency int,
	opts ...Option,
) Service {
	s := &serviceImpl{
		families: families,
		events:   events,
		store:    store,
		logger:   logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.completer = similarity.NewCompleter(store, cmp,
		similarity.WithConcurrency(concurrency),
		similarity.WithLogger(s.logger))
	return s
}

// FamilyReport completes the family's matrix, persists new pairs and the
// snapshot, and derives the report payload.
func (s *serviceImpl) FamilyReport(ctx context.Context, id catalog.FamilyID) (*FamilyReport, error) {
	fam, err := s.families.GetFamily(ctx, id)
	if err != nil {
		return nil, err
	}

	evs, err := s.events.GetEvents(ctx, fam.Members)
	if err != nil {
		return nil, err
	}
	byID := make(map[catalog.EventID]*catalog.Event, len(evs))
	for _, ev := range evs {
		byID[ev.ID] = ev
	}

	started := time.Now()
	completion, err := s.completer.Complete(ctx, fam.Members)
	prometheus.RecordCompletion(s.metrics, time.Since(started),
		lenOrZero(completion), failedOrZero(completion), err)
	if err != nil {
		return nil, err
	}

	// Newly computed coefficients are persisted before anything else so a
	// later crash cannot lose completed work.
	for _, p := range completion.NewPairs {
		if err := s.store.Insert(ctx, p.A, p.B, p.Value); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodePairStoreFailure,
				fmt.Sprintf("persist pair (%d,%d)", p.A, p.B))
		}
	}

	ordered := s.applyOrdering(ctx, fam.ID, completion)

	report := &FamilyReport{
		Family:      fam.ID,
		Members:     completion.Members,
		NewPairs:    len(completion.NewPairs),
		FailedPairs: len(completion.Failed),
		Ordered:     ordered,
	}

	if s.matrixDir != "" {
		path := matrixio.FamilyPath(s.matrixDir, fam.ID)
		if err := matrixio.Save(path, completion.Members, completion.Full); err != nil {
			prometheus.RecordError(s.metrics, "report", "matrix_save")
			return nil, err
		}
		report.MatrixPath = path
	}

	s.fillStats(report, fam, byID, completion)

	s.logger.Info("family report generated",
		logging.Int64("family", fam.ID),
		logging.Int("members", len(completion.Members)),
		logging.Int("new_pairs", report.NewPairs),
		logging.Int("failed_pairs", report.FailedPairs),
		logging.Bool("ordered", ordered))
	return report, nil
}

// AllFamilies reports every family in the catalog.  One failing family is
// recorded and skipped; the run continues.
func (s *serviceImpl) AllFamilies(ctx context.Context) (*BatchResult, error) {
	fams, err := s.families.ListFamilies(ctx)
	if err != nil {
		return nil, err
	}

	res := &BatchResult{RunID: uuid.NewString()}
	log := s.logger.With(logging.String("run_id", res.RunID))
	log.Info("report run started", logging.Int("families", len(fams)))

	for _, fam := range fams {
		rep, err := s.FamilyReport(ctx, fam.ID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, errors.Wrap(err, errors.ErrCodeCompletionCancelled,
					"report run cancelled")
			}
			log.Warn("family report failed",
				logging.Int64("family", fam.ID), logging.Err(err))
			if res.Failed == nil {
				res.Failed = make(map[catalog.FamilyID]string)
			}
			res.Failed[fam.ID] = err.Error()
			continue
		}
		res.Reports = append(res.Reports, rep)
	}

	log.Info("report run finished",
		logging.Int("reported", len(res.Reports)),
		logging.Int("failed", len(res.Failed)))
	return res, nil
}

// applyOrdering runs the optional reorderer over the completed matrix.  Any
// reorderer failure leaves the completion in catalog order.
func (s *serviceImpl) applyOrdering(ctx context.Context, id catalog.FamilyID, c *similarity.Completion) bool {
	if s.reorderer == nil {
		return false
	}

	perm, err := s.reorderer.Reorder(ctx, c.Full.Distance())
	if err != nil {
		s.logger.Warn("reorderer failed, keeping catalog order",
			logging.Int64("family", id), logging.Err(err))
		return false
	}
	if err := similarity.ApplyOrdering(c, perm); err != nil {
		s.logger.Warn("reorderer produced an invalid ordering, keeping catalog order",
			logging.Int64("family", id), logging.Err(err))
		return false
	}
	return true
}

func (s *serviceImpl) fillStats(rep *FamilyReport, fam *catalog.Family,
	byID map[catalog.EventID]*catalog.Event, c *similarity.Completion) {

	times := make([]float64, len(c.Members))
	for i, id := range c.Members {
		times[i] = byID[id].Time
	}

	sorted := append([]float64(nil), times...)
	sort.Float64s(sorted)
	first, last := sorted[0], sorted[len(sorted)-1]

	// Inter-event spacing in hours, one point per gap at the later event.
	var gaps []float64
	for i := 1; i < len(sorted); i++ {
		h := (sorted[i] - sorted[i-1]) * hoursPerDay
		gaps = append(gaps, h)
		rep.Spacing = append(rep.Spacing, SpacingPoint{Time: sorted[i], Hours: h})
	}

	// Correlation of every member against the core, in member order.
	coreIdx := indexOf(c.Members, fam.Core)
	if coreIdx >= 0 {
		row := c.Full.Row(coreIdx)
		for i, id := range c.Members {
			rep.CoreCorrelation = append(rep.CoreCorrelation, CorrPoint{
				Time:        byID[id].Time,
				Coefficient: row[i],
			})
		}
	}

	// Per-channel amplitude series.
	channels := 0
	for _, id := range c.Members {
		if n := len(byID[id].Amps); n > channels {
			channels = n
		}
	}
	if channels > 0 {
		rep.Amplitudes = make([][]AmpPoint, channels)
		for _, id := range c.Members {
			ev := byID[id]
			for ch, amp := range ev.Amps {
				rep.Amplitudes[ch] = append(rep.Amplitudes[ch], AmpPoint{
					Time: ev.Time, Amplitude: amp,
				})
			}
		}
	}

	var fiSum float64
	fiCount := 0
	for _, id := range c.Members {
		if fi := byID[id].FI; !math.IsNaN(fi) {
			fiSum += fi
			fiCount++
		}
	}
	meanFI := math.NaN()
	if fiCount > 0 {
		meanFI = fiSum / float64(fiCount)
	}

	coreTime := math.NaN()
	if ev, ok := byID[fam.Core]; ok {
		coreTime = ev.Time
	}

	rep.Stats = Stats{
		Members:            len(c.Members),
		Longevity:          fam.Longevity,
		FirstTime:          first,
		CoreTime:           coreTime,
		LastTime:           last,
		MeanSpacingHours:   mean(gaps),
		MedianSpacingHours: median(gaps),
		MeanFI:             meanFI,
	}
}

func indexOf(ids []catalog.EventID, id catalog.EventID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}

func lenOrZero(c *similarity.Completion) int {
	if c == nil {
		return 0
	}
	return len(c.NewPairs)
}

func failedOrZero(c *similarity.Completion) int {
	if c == nil {
		return 0
	}
	return len(c.Failed)
}
