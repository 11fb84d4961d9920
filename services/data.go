package services

import (
	"context"
	"fmt"
	"time"

	"reception-dedup/models"

	"go.uber.org/zap"
)

// Grenzen der Seitengröße im Listing.
const (
	MaxListLimit     = 500
	DefaultListLimit = 100
)

// ListQuery beschreibt eine Seite des Listings.
type ListQuery struct {
	Offset     int
	Limit      int
	SortBy     string
	SortOrders []string // bereits per ParseSortOrders geprüft
	Filter     models.Filter
}

// DataService liefert Listing, Statistik und Metadaten.
type DataService struct {
	Store    Store
	Logger   *zap.Logger
	Location *time.Location
}

// NewDataService erstellt eine neue Instanz des DataService.
func NewDataService(store Store, loc *time.Location, logger *zap.Logger) *DataService {
	return &DataService{Store: store, Logger: logger, Location: loc}
}

// List liefert eine Seite von Datensätzen und die Gesamtzahl unter dem Filter.
func (s *DataService) List(ctx context.Context, q ListQuery) ([]models.ReceptionRecord, int64, error) {
	if q.Offset < 0 {
		return nil, 0, invalidInput("offset must be >= 0")
	}
	if q.Limit < 1 || q.Limit > MaxListLimit {
		return nil, 0, invalidInput("limit must be between 1 and %d", MaxListLimit)
	}

	total, err := s.Count(ctx, q.Filter)
	if err != nil {
		return nil, 0, err
	}

	pred := BuildFilter(q.Filter)
	args := append(pred.Args(), q.Limit, q.Offset)
	rows, err := s.Store.Query(ctx, listQuery(pred.SQL(), listingOrderBy(q.SortBy, q.SortOrders)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reception data: %w", err)
	}
	defer rows.Close()

	scanned, err := scanRecords(rows, s.Location, false)
	if err != nil {
		return nil, 0, fmt.Errorf("list reception data: %w", err)
	}
	return records(scanned), total, nil
}

// Count zählt die Datensätze unter Berechtigungs- und Nutzerfilter.
func (s *DataService) Count(ctx context.Context, f models.Filter) (int64, error) {
	pred := BuildFilter(f)
	rows, err := s.Store.Query(ctx, countQuery(pred.SQL()), pred.Args()...)
	if err != nil {
		return 0, fmt.Errorf("count reception data: %w", err)
	}
	defer rows.Close()

	var n int64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, &DecodeError{Column: "count", Err: err}
		}
	}
	return n, rows.Err()
}

// Statistics zählt zweimal: einmal inklusive gelöschter Datensätze (total)
// und einmal ohne (active). Alle übrigen Filterfelder bleiben erhalten.
func (s *DataService) Statistics(ctx context.Context, f models.Filter) (models.Statistics, error) {
	f.IncludeDeleted = true
	total, err := s.Count(ctx, f)
	if err != nil {
		return models.Statistics{}, err
	}
	f.IncludeDeleted = false
	active, err := s.Count(ctx, f)
	if err != nil {
		return models.Statistics{}, err
	}
	return models.Statistics{
		TotalRecords:   total,
		ActiveRecords:  active,
		DeletedRecords: total - active,
	}, nil
}

// FilteredIDs liefert alle IDs, die der Filter im aktuellen Datenbestand
// trifft, ohne Obergrenze.
func (s *DataService) FilteredIDs(ctx context.Context, f models.Filter) ([]int64, error) {
	pred := BuildFilter(f)
	rows, err := s.Store.Query(ctx, idQuery(pred.SQL()), pred.Args()...)
	if err != nil {
		return nil, fmt.Errorf("resolve filtered ids: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, &DecodeError{Column: "id", Err: err}
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Metadata liefert die Filteroptionen und das Spaltenmanifest.
func (s *DataService) Metadata(ctx context.Context) (models.Metadata, error) {
	progress, err := s.options(ctx, progressOptionsQuery)
	if err != nil {
		return models.Metadata{}, err
	}
	systemTypes, err := s.options(ctx, systemTypeOptionsQuery)
	if err != nil {
		return models.Metadata{}, err
	}
	products, err := s.options(ctx, productOptionsQuery)
	if err != nil {
		return models.Metadata{}, err
	}
	return models.Metadata{
		ProgressOptions:   progress,
		SystemTypeOptions: systemTypes,
		ProductOptions:    products,
		ColumnDefinitions: models.ColumnDefinitions,
	}, nil
}

func (s *DataService) options(ctx context.Context, query string) ([]string, error) {
	rows, err := s.Store.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load filter options: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, &DecodeError{Column: "itemname", Err: err}
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// Healthy prüft die Datenbankverbindung.
func (s *DataService) Healthy(ctx context.Context) bool {
	if err := s.Store.Ping(ctx); err != nil {
		s.Logger.Warn("Database ping failed", zap.Error(err))
		return false
	}
	return true
}
