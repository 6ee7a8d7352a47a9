package reconcile

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/smallbiznis/stockroom/internal/inventory/domain"
	obsmetrics "github.com/smallbiznis/stockroom/internal/observability/metrics"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	Products   productdomain.Repository
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Reconciler struct {
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	products   productdomain.Repository
	obsMetrics *obsmetrics.Metrics
}

func New(p Params) domain.Reconciler {
	return &Reconciler{
		log:        p.Log.Named("reconcile.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		products:   p.Products,
		obsMetrics: p.ObsMetrics,
	}
}

// Reconcile recomputes remaining quantities and revenue for productID from its
// baseline, rewriting sales and appending snapshot revisions only where the
// stored values differ. It never opens its own transaction.
func (r *Reconciler) Reconcile(ctx context.Context, tx *gorm.DB, productID int64, source domain.SnapshotKind) (*domain.Reconciliation, error) {
	if source == "" {
		source = domain.SnapshotKindCorrection
	}

	product, err := r.products.FindByID(ctx, tx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, productdomain.ErrNotFound
	}

	snapshots, err := r.repo.ListSnapshots(ctx, tx, productID)
	if err != nil {
		return nil, err
	}
	sales, err := r.repo.ListSales(ctx, tx, productID)
	if err != nil {
		return nil, err
	}

	p, err := buildPlan(productID, product.InitialQuantity, sales, snapshots)
	if err != nil {
		r.log.Debug("reconciliation rejected", zap.Int64("product_id", productID), zap.Error(err))
		return nil, err
	}

	now := r.clock.Now().UTC()
	for i := range p.sales {
		sale := p.sales[i]
		sale.UpdatedAt = now
		if err := r.repo.UpdateSale(ctx, tx, &sale); err != nil {
			return nil, err
		}
	}
	for i := range p.appends {
		snap := p.appends[i]
		snap.ID = r.genID.Generate()
		snap.Kind = source
		snap.CreatedAt = now
		if err := r.repo.AppendSnapshot(ctx, tx, &snap); err != nil {
			return nil, err
		}
	}

	r.obsMetrics.RecordReconciliation(ctx, string(source), len(p.appends))
	if len(p.sales) > 0 || len(p.appends) > 0 {
		r.log.Debug("product reconciled",
			zap.Int64("product_id", productID),
			zap.String("source_type", string(source)),
			zap.Int("sales_updated", len(p.sales)),
			zap.Int("snapshots_appended", len(p.appends)),
		)
	}

	return &p.result, nil
}

// ReconcileAll reconciles every product in the catalog inside one transaction.
func ReconcileAll(ctx context.Context, db *gorm.DB, products productdomain.Repository, r domain.Reconciler) ([]domain.Reconciliation, error) {
	var out []domain.Reconciliation
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		list, err := products.List(ctx, tx, productdomain.ListFilter{})
		if err != nil {
			return err
		}
		out = make([]domain.Reconciliation, 0, len(list))
		for _, product := range list {
			rec, err := r.Reconcile(ctx, tx, product.ProductID, domain.SnapshotKindCorrection)
			if err != nil {
				return err
			}
			out = append(out, *rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
