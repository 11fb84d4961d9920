package services

import (
	"context"
	"time"

	"reception-dedup/models"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Action ist die Statusänderung einer Bulk-Mutation.
type Action string

const (
	ActionDelete  Action = "delete"
	ActionRestore Action = "restore"
)

// OperationLog protokolliert jeden Lösch- und Wiederherstellungsversuch.
type OperationLog interface {
	LogDelete(ids []int64, success bool, count int64, err error)
	LogRestore(ids []int64, success bool, count int64, err error)
}

// MutationService setzt und entfernt den Soft-Delete-Marker.
type MutationService struct {
	Store    Store
	Data     *DataService
	OpLog    OperationLog
	Logger   *zap.Logger
	Location *time.Location

	now func() time.Time
}

// NewMutationService erstellt eine neue Instanz des MutationService.
func NewMutationService(store Store, data *DataService, oplog OperationLog, loc *time.Location, logger *zap.Logger) *MutationService {
	return &MutationService{
		Store:    store,
		Data:     data,
		OpLog:    oplog,
		Logger:   logger,
		Location: loc,
		now:      time.Now,
	}
}

// ResolveTargets bestimmt die Ziel-IDs einer Löschanfrage. "selected"
// übernimmt die expliziten IDs, "filtered" wertet den Filter gegen den
// aktuellen Datenbestand aus. Ohne Filter greift die explizite Liste.
func (s *MutationService) ResolveTargets(ctx context.Context, scope string, ids []int64, filter *models.Filter) ([]int64, error) {
	switch scope {
	case models.ScopeSelected, "":
		return ids, nil
	case models.ScopeFiltered:
		if filter == nil {
			return ids, nil
		}
		return s.Data.FilteredIDs(ctx, *filter)
	default:
		return nil, invalidInput("Invalid delete_scope: %s", scope)
	}
}

// Apply führt die Statusänderung als eine einzige Anweisung aus. Zeilen, die
// bereits im Zielzustand sind, bleiben unberührt. Ein Datenbankfehler lässt
// den gesamten Batch fehlschlagen.
func (s *MutationService) Apply(ctx context.Context, action Action, ids []int64) models.MutationResult {
	logFn := s.OpLog.LogDelete
	if action == ActionRestore {
		logFn = s.OpLog.LogRestore
	}

	if len(ids) == 0 {
		logFn([]int64{}, true, 0, nil)
		return models.MutationResult{Success: true, FailedIDs: []int64{}, Timestamp: s.now()}
	}

	// eine Array-Bindvariable, unabhängig von der Anzahl der IDs
	target := pq.Array(ids)

	var (
		affected int64
		err      error
	)
	switch action {
	case ActionDelete:
		affected, err = s.Store.Exec(ctx, softDeleteStatement, s.now().In(s.Location), target)
	case ActionRestore:
		affected, err = s.Store.Exec(ctx, restoreStatement, target)
	default:
		err = invalidInput("Invalid action: %s", action)
	}

	if err != nil {
		s.Logger.Error("Bulk mutation failed",
			zap.String("action", string(action)),
			zap.Int("ids", len(ids)),
			zap.Error(err))
		mutationFailures.WithLabelValues(string(action)).Inc()
		logFn(ids, false, 0, err)
		failed := make([]int64, len(ids))
		copy(failed, ids)
		return models.MutationResult{Success: false, FailedIDs: failed, Timestamp: s.now()}
	}

	if action == ActionDelete {
		recordsDeletedCounter.Add(float64(affected))
	} else {
		recordsRestoredCounter.Add(float64(affected))
	}
	logFn(ids, true, affected, nil)
	s.Logger.Info("Bulk mutation applied",
		zap.String("action", string(action)),
		zap.Int("requested", len(ids)),
		zap.Int64("affected", affected))
	return models.MutationResult{Success: true, Affected: affected, FailedIDs: []int64{}, Timestamp: s.now()}
}

// Delete löst den Geltungsbereich auf und markiert die Ziele als gelöscht.
func (s *MutationService) Delete(ctx context.Context, scope string, ids []int64, filter *models.Filter) (models.DeleteResponse, error) {
	targets, err := s.ResolveTargets(ctx, scope, ids, filter)
	if err != nil {
		return models.DeleteResponse{}, err
	}
	res := s.Apply(ctx, ActionDelete, targets)
	return models.DeleteResponse{
		Success:      res.Success,
		DeletedCount: res.Affected,
		FailedIDs:    res.FailedIDs,
		Timestamp:    res.Timestamp,
	}, nil
}

// Restore entfernt den Soft-Delete-Marker der angegebenen Datensätze.
func (s *MutationService) Restore(ctx context.Context, ids []int64) models.RestoreResponse {
	res := s.Apply(ctx, ActionRestore, ids)
	return models.RestoreResponse{
		Success:       res.Success,
		RestoredCount: res.Affected,
		FailedIDs:     res.FailedIDs,
		Timestamp:     res.Timestamp,
	}
}
