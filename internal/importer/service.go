package importer

import (
	"context"
	"errors"
	"io"
	"sort"

	"github.com/oklog/ulid/v2"
	inventorydomain "github.com/smallbiznis/stockroom/internal/inventory/domain"
	obsmetrics "github.com/smallbiznis/stockroom/internal/observability/metrics"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	Products   productdomain.Service
	Ledger     inventorydomain.Ledger
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

// Result summarizes one import batch.
type Result struct {
	BatchID           string     `json:"batch_id"`
	Rows              int        `json:"rows"`
	Imported          int        `json:"imported"`
	ProductsCreated   int        `json:"products_created"`
	RevenueMismatches int        `json:"revenue_mismatches"`
	Skipped           []RowError `json:"skipped,omitempty"`
	Rejected          []RowError `json:"rejected,omitempty"`
}

type Service struct {
	log        *zap.Logger
	products   productdomain.Service
	ledger     inventorydomain.Ledger
	obsMetrics *obsmetrics.Metrics
}

func New(p Params) *Service {
	return &Service{
		log:        p.Log.Named("importer.service"),
		products:   p.Products,
		ledger:     p.Ledger,
		obsMetrics: p.ObsMetrics,
	}
}

// Import loads sales lines through the catalog and ledger. Unknown products are
// created at their earliest date with nothing sold, then every line is
// recorded in date order. A rejected line does not stop the batch; stored
// revenue columns are ignored and recomputed.
func (s *Service) Import(ctx context.Context, r io.Reader, format Format) (*Result, error) {
	records, skipped, err := Read(r, format)
	if err != nil {
		return nil, err
	}

	result := &Result{
		BatchID: ulid.Make().String(),
		Rows:    len(records) + len(skipped),
		Skipped: skipped,
	}
	log := s.log.With(zap.String("batch_id", result.BatchID))
	for range skipped {
		s.obsMetrics.RecordImportRow(ctx, "skipped")
	}

	sort.SliceStable(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })

	known := make(map[int64]bool)
	for _, rec := range records {
		if known[rec.ProductID] {
			continue
		}
		created, err := s.ensureProduct(ctx, rec)
		if err != nil {
			if !isRowError(err) {
				return result, err
			}
			result.Rejected = append(result.Rejected, rowError(rec.Line, err))
			known[rec.ProductID] = false
			continue
		}
		known[rec.ProductID] = true
		if created {
			result.ProductsCreated++
		}
	}

	for _, rec := range records {
		if !known[rec.ProductID] {
			continue
		}
		if rec.TotalRevenue != nil && !rec.TotalRevenue.Equal(inventorydomain.Revenue(rec.UnitsSold, rec.UnitPrice)) {
			result.RevenueMismatches++
		}
		if rec.UnitsSold == 0 {
			continue
		}

		_, err := s.ledger.RecordSale(ctx, inventorydomain.RecordSaleRequest{
			ProductID: rec.ProductID,
			Date:      rec.Date,
			UnitsSold: rec.UnitsSold,
			UnitPrice: rec.UnitPrice,
		})
		if err != nil {
			if !isRowError(err) {
				return result, err
			}
			result.Rejected = append(result.Rejected, rowError(rec.Line, err))
			s.obsMetrics.RecordImportRow(ctx, "rejected")
			continue
		}
		result.Imported++
		s.obsMetrics.RecordImportRow(ctx, "imported")
	}

	log.Info("import finished",
		zap.Int("rows", result.Rows),
		zap.Int("imported", result.Imported),
		zap.Int("products_created", result.ProductsCreated),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("rejected", len(result.Rejected)),
		zap.Int("revenue_mismatches", result.RevenueMismatches),
	)
	return result, nil
}

func (s *Service) ensureProduct(ctx context.Context, rec Record) (bool, error) {
	_, err := s.products.Get(ctx, rec.ProductID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, productdomain.ErrNotFound) {
		return false, err
	}
	_, err = s.products.Add(ctx, productdomain.AddRequest{
		ProductID:       rec.ProductID,
		Name:            rec.ProductName,
		Category:        rec.ProductCategory,
		InitialQuantity: rec.InitialQuantity,
		Date:            rec.Date,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// rowErrors are the failures that belong to one line rather than the batch.
var rowErrors = []error{
	inventorydomain.ErrInsufficientStock,
	inventorydomain.ErrDuplicateSale,
	inventorydomain.ErrInvalidUnits,
	inventorydomain.ErrInvalidPrice,
	inventorydomain.ErrInvalidQuantity,
	inventorydomain.ErrMissingBaseline,
	productdomain.ErrDuplicateID,
	productdomain.ErrInvalidID,
	productdomain.ErrInvalidName,
	productdomain.ErrInvalidCategory,
	productdomain.ErrNotFound,
}

func isRowError(err error) bool {
	for _, sentinel := range rowErrors {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func rowError(line int, err error) RowError {
	for _, sentinel := range rowErrors {
		if errors.Is(err, sentinel) {
			return RowError{Line: line, Reason: sentinel.Error(), Detail: err.Error()}
		}
	}
	return RowError{Line: line, Reason: "error", Detail: err.Error()}
}
