package services

import (
	"context"
	"fmt"
	"time"

	"reception-dedup/models"

	"go.uber.org/zap"
)

// partitionSpec beschreibt eine Äquivalenzdefinition.
type partitionSpec struct {
	partition string // PARTITION-BY-Ausdrücke
	key       string // Signatur der Klasse
	exclusion string // typspezifische Ausschlüsse
}

var partitionSpecs = map[models.DuplicateType]partitionSpec{
	models.DuplicateExact: {
		partition: "receptbody.rdata, COALESCE(execbody.execstate, '')",
		key:       "CONCAT(COALESCE(receptbody.rdata, ''), '|', COALESCE(execbody.execstate, ''))",
	},
	models.DuplicateContent: {
		partition: "receptbody.rdata",
		key:       "COALESCE(receptbody.rdata, '')",
		exclusion: "AND receptbody.rdata IS NOT NULL AND receptbody.rdata != ''",
	},
	models.DuplicateStatus: {
		partition: "COALESCE(execbody.execstate, '')",
		key:       "COALESCE(execbody.execstate, '')",
		exclusion: "AND COALESCE(execbody.execstate, '') != ''",
	},
}

// DuplicateService erkennt Duplikate per Fensterfunktion.
type DuplicateService struct {
	Store    Store
	Logger   *zap.Logger
	Location *time.Location
}

// NewDuplicateService erstellt eine neue Instanz des DuplicateService.
func NewDuplicateService(store Store, loc *time.Location, logger *zap.Logger) *DuplicateService {
	return &DuplicateService{Store: store, Logger: logger, Location: loc}
}

// detectionQuery baut die Fensterabfrage für einen Duplikattyp. Gelöschte
// Datensätze sind unabhängig von include_deleted ausgeschlossen.
func detectionQuery(t models.DuplicateType, f models.Filter, sortBy, sortOrder string) (string, []any, error) {
	spec, ok := partitionSpecs[t]
	if !ok {
		return "", nil, invalidInput("Invalid duplicate_type: %s", t)
	}
	f.IncludeDeleted = true
	pred := BuildFilter(f)

	query := fmt.Sprintf(`WITH duplicates AS (
    SELECT
    %[1]s,
    ROW_NUMBER() OVER (
        PARTITION BY %[2]s
        ORDER BY recepthead.extentid
    ) AS row_num,
    COUNT(*) OVER (PARTITION BY %[2]s) AS duplicate_count,
    MIN(recepthead.extentid) OVER (PARTITION BY %[2]s) AS partition_id,
    %[3]s AS duplicate_key
%[4]s
%[5]s
AND recepthead.receptmoddt IS NULL
%[6]s
%[7]s
)
SELECT
    id, content, status, result, report, progress, system_type, product,
    reception_moddt, reception_datetime, update_datetime,
    duplicate_count, duplicate_key, partition_id
FROM duplicates
WHERE duplicate_count > 1
ORDER BY %[8]s`,
		recordSelect, spec.partition, spec.key, receptionJoins, eligibility,
		spec.exclusion, pred.SQL(), duplicateOrderBy(sortBy, sortOrder))
	return query, pred.Args(), nil
}

// Detect liefert die Duplikatgruppen eines Typs unter dem gegebenen Filter.
func (s *DuplicateService) Detect(ctx context.Context, t models.DuplicateType, f models.Filter, sortBy, sortOrder string) ([]models.DuplicateGroup, error) {
	query, args, err := detectionQuery(t, f, sortBy, sortOrder)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := s.Store.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("detect %s duplicates: %w", t, err)
	}
	defer rows.Close()

	scanned, err := scanRecords(rows, s.Location, true)
	if err != nil {
		return nil, fmt.Errorf("detect %s duplicates: %w", t, err)
	}
	detectionDuration.WithLabelValues(string(t)).Observe(time.Since(start).Seconds())

	groups := groupDuplicates(scanned, t)
	s.Logger.Debug("Duplicate detection finished",
		zap.String("type", string(t)),
		zap.Int("groups", len(groups)),
		zap.Int("records", len(scanned)))
	return groups, nil
}

// groupDuplicates fasst aufeinanderfolgende Zeilen derselben Partition zu
// Gruppen zusammen. Gruppen-IDs werden in Fundreihenfolge ab 0 vergeben; die
// Reihenfolge der Zeilen bleibt die der Abfrage.
func groupDuplicates(rows []scannedRecord, t models.DuplicateType) []models.DuplicateGroup {
	groups := []models.DuplicateGroup{}
	var current *models.DuplicateGroup
	var currentPartition int64
	for _, r := range rows {
		if r.PartitionCount <= 1 {
			continue
		}
		if current == nil || r.PartitionID != currentPartition {
			groups = append(groups, models.DuplicateGroup{
				GroupID:        fmt.Sprintf("group_%d", len(groups)),
				DuplicateCount: r.PartitionCount,
				DuplicateKey:   r.Key,
				Records:        []models.ReceptionRecord{},
			})
			current = &groups[len(groups)-1]
			currentPartition = r.PartitionID
		}
		rec := r.Record
		dt := t
		key := r.Key
		rec.DuplicateType = &dt
		rec.DuplicateKey = &key
		current.Records = append(current.Records, rec)
	}
	return groups
}

// TotalRecords zählt alle Datensätze über alle Gruppen.
func TotalRecords(groups []models.DuplicateGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.Records)
	}
	return n
}
