package services

import (
	"database/sql"
	"errors"
	"time"

	"reception-dedup/models"
	"reception-dedup/storage"
)

// recordColumns ist der Spaltenvertrag, den Listing und Duplikaterkennung teilen.
var recordColumns = []string{
	"id", "content", "status", "result", "report",
	"progress", "system_type", "product",
	"reception_moddt", "reception_datetime", "update_datetime",
}

// duplicateColumns ergänzt die Partitionsinformationen der Duplikaterkennung.
var duplicateColumns = []string{"duplicate_count", "duplicate_key", "partition_id"}

// scannedRecord ist eine projizierte Zeile samt interner Partitionsfelder.
type scannedRecord struct {
	Record         models.ReceptionRecord
	PartitionCount int
	PartitionID    int64
	Key            string
}

// recordDest hält die Scan-Ziele einer Zeile.
type recordDest struct {
	id                              sql.NullInt64
	content                         sql.NullString
	status, result, report          sql.NullString
	progress, systemType, product   sql.NullString
	modTime, receptionTime, updTime sql.NullTime
	dupCount, partitionID           sql.NullInt64
	dupKey                          sql.NullString
}

func (d *recordDest) targets() map[string]any {
	return map[string]any{
		"id":                 &d.id,
		"content":            &d.content,
		"status":             &d.status,
		"result":             &d.result,
		"report":             &d.report,
		"progress":           &d.progress,
		"system_type":        &d.systemType,
		"product":            &d.product,
		"reception_moddt":    &d.modTime,
		"reception_datetime": &d.receptionTime,
		"update_datetime":    &d.updTime,
		"duplicate_count":    &d.dupCount,
		"duplicate_key":      &d.dupKey,
		"partition_id":       &d.partitionID,
	}
}

// scanRecords projiziert alle Zeilen auf ReceptionRecord. Fehlt eine
// erwartete Spalte oder passt ein Typ nicht, wird ein DecodeError gemeldet.
// Zeitstempel sind Wanduhrzeiten der Anzeige-Zeitzone loc.
func scanRecords(rows storage.Rows, loc *time.Location, withDuplicates bool) ([]scannedRecord, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	expected := recordColumns
	if withDuplicates {
		expected = append(append([]string{}, recordColumns...), duplicateColumns...)
	}
	present := make(map[string]bool, len(cols))
	for _, c := range cols {
		present[c] = true
	}
	for _, c := range expected {
		if !present[c] {
			return nil, &DecodeError{Column: c, Err: ErrMissingColumn}
		}
	}

	out := []scannedRecord{}
	for rows.Next() {
		var d recordDest
		targets := d.targets()
		dest := make([]any, len(cols))
		for i, c := range cols {
			if t, ok := targets[c]; ok {
				dest[i] = t
			} else {
				dest[i] = new(any)
			}
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, &DecodeError{Err: err}
		}
		rec, err := d.project(loc, withDuplicates)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *recordDest) project(loc *time.Location, withDuplicates bool) (scannedRecord, error) {
	if !d.id.Valid {
		return scannedRecord{}, &DecodeError{Column: "id", Err: errors.New("unexpected NULL")}
	}
	rec := models.ReceptionRecord{
		ID:               d.id.Int64,
		Content:          nullString(d.content),
		Status:           d.status.String,
		Result:           d.result.String,
		Report:           d.report.String,
		Progress:         nullString(d.progress),
		SystemType:       nullString(d.systemType),
		Product:          nullString(d.product),
		ReceptionModTime: wallClock(d.modTime, loc),
		ReceptionTime:    wallClock(d.receptionTime, loc),
		UpdateTime:       wallClock(d.updTime, loc),
	}
	sr := scannedRecord{Record: rec}
	if withDuplicates {
		if !d.dupCount.Valid || !d.partitionID.Valid {
			return scannedRecord{}, &DecodeError{Column: "duplicate_count", Err: errors.New("unexpected NULL")}
		}
		sr.PartitionCount = int(d.dupCount.Int64)
		sr.PartitionID = d.partitionID.Int64
		sr.Key = d.dupKey.String
	}
	return sr, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// wallClock deutet einen zeitzonenlosen Zeitstempel als Uhrzeit in loc.
func wallClock(t sql.NullTime, loc *time.Location) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	v = time.Date(v.Year(), v.Month(), v.Day(), v.Hour(), v.Minute(), v.Second(), v.Nanosecond(), loc)
	return &v
}

// records entpackt die kanonischen Datensätze.
func records(rows []scannedRecord) []models.ReceptionRecord {
	out := make([]models.ReceptionRecord, len(rows))
	for i, r := range rows {
		out[i] = r.Record
	}
	return out
}
