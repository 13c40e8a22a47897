package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/mizan-erp/mizan/internal/interunit"
	"github.com/mizan-erp/mizan/internal/observability"
	"github.com/mizan-erp/mizan/internal/org"
	"github.com/mizan-erp/mizan/internal/shared"
)

// BalanceService exposes the intercompany checks the scan relies on.
type BalanceService interface {
	CheckSystemBalance(ctx context.Context) (interunit.BalanceReport, error)
	NetBalance(ctx context.Context, entityA, entityB string) (interunit.PairBalance, error)
}

// EntityDirectory lists the organisation entities the scan pairs up.
type EntityDirectory interface {
	List(ctx context.Context) ([]org.Entity, error)
}

// IntercompanyIntegrityJob runs the nightly intercompany balance scan:
// one system-wide asset-vs-liability check, then a per-pair net-balance
// sweep over every ordered unit pair that carries mutual accounts.
type IntercompanyIntegrityJob struct {
	Service  BalanceService
	Entities EntityDirectory
	Logger   *slog.Logger
	Metrics  *observability.Metrics
	clock    func() time.Time
}

// NewIntercompanyIntegrityJob constructs the job handler.
func NewIntercompanyIntegrityJob(service BalanceService, entities EntityDirectory, logger *slog.Logger, metrics *observability.Metrics) *IntercompanyIntegrityJob {
	return &IntercompanyIntegrityJob{
		Service:  service,
		Entities: entities,
		Logger:   logger,
		Metrics:  metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the intercompany integrity scan.
func (j *IntercompanyIntegrityJob) Handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.Service == nil || j.Entities == nil {
		return errors.New("intercompany integrity: dependencies not configured")
	}
	var payload IntercompanyIntegrityPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Scope == "" {
		payload.Scope = "all"
	}

	start := j.now()
	tracker := j.Metrics.Track(TaskIntercompanyIntegrity)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	report, err := j.Service.CheckSystemBalance(ctx)
	if err != nil {
		resultErr = err
		j.log().Error("system balance check", slog.Any("error", err))
		return resultErr
	}
	if !report.Balanced {
		j.log().Warn("intercompany system totals diverge",
			slog.String("assets", report.AssetTotal.String()),
			slog.String("liabilities", report.LiabilityTotal.String()),
			slog.String("difference", report.Difference.String()))
	}

	pairs, err := j.pairs(ctx, payload.Scope)
	if err != nil {
		resultErr = err
		j.log().Error("list units", slog.Any("error", err))
		return resultErr
	}

	var (
		mu       sync.Mutex
		scanned  int
		unpaired []interunit.PairBalance
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, p := range pairs {
		a, b := p[0], p[1]
		g.Go(func() error {
			pair, err := j.Service.NetBalance(gctx, a, b)
			if err != nil {
				// Units without mutual intercompany accounts have no
				// position to verify.
				if shared.IsNotFound(err) {
					return nil
				}
				return err
			}
			mu.Lock()
			scanned++
			if !pair.Mirrored {
				unpaired = append(unpaired, pair)
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		resultErr = err
		j.log().Error("pair sweep", slog.Any("error", err))
		return resultErr
	}

	for _, pair := range unpaired {
		j.log().Warn("intercompany pair out of balance",
			slog.String("entity_a", pair.EntityA),
			slog.String("entity_b", pair.EntityB),
			slog.String("net", pair.Net.String()))
	}
	j.log().Info("intercompany integrity scan finished",
		slog.String("scope", payload.Scope),
		slog.Int("pairs_scanned", scanned),
		slog.Int("pairs_flagged", len(unpaired)),
		slog.Duration("took", j.now().Sub(start)))
	return nil
}

func (j *IntercompanyIntegrityJob) pairs(ctx context.Context, scope string) ([][2]string, error) {
	entities, err := j.Entities.List(ctx)
	if err != nil {
		return nil, err
	}
	var units []string
	for _, e := range entities {
		if e.IsUnit() {
			units = append(units, e.ID)
		}
	}
	var pairs [][2]string
	for i := range units {
		for k := i + 1; k < len(units); k++ {
			if scope != "all" && units[i] != scope && units[k] != scope {
				continue
			}
			pairs = append(pairs, [2]string{units[i], units[k]})
		}
	}
	return pairs, nil
}

func (j *IntercompanyIntegrityJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

func (j *IntercompanyIntegrityJob) log() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
