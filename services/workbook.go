package services

import (
	"fmt"
	"time"

	"reception-dedup/models"

	"github.com/xuri/excelize/v2"
)

var workbookHeader = []interface{}{
	"group_id", "duplicate_count", "duplicate_key",
	"id", "content", "status", "result", "report",
	"progress", "system_type", "product",
	"reception_moddt", "reception_datetime", "update_datetime",
}

const workbookTimeLayout = "2006-01-02 15:04:05"

// BuildDuplicateWorkbook rendert Duplikatgruppen als Excel-Arbeitsmappe mit
// einem Blatt je Duplikattyp. Typen ohne Eintrag in byType entfallen.
func BuildDuplicateWorkbook(byType map[models.DuplicateType][]models.DuplicateGroup) (*excelize.File, error) {
	f := excelize.NewFile()
	const defaultSheet = "Sheet1"

	created := 0
	for _, t := range models.DuplicateTypes {
		groups, ok := byType[t]
		if !ok {
			continue
		}
		sheet := string(t)
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", sheet, err)
		}
		if err := writeGroups(f, sheet, groups); err != nil {
			return nil, err
		}
		created++
	}
	if created > 0 {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return nil, err
		}
		f.SetActiveSheet(0)
	}
	return f, nil
}

func writeGroups(f *excelize.File, sheet string, groups []models.DuplicateGroup) error {
	if err := f.SetSheetRow(sheet, "A1", &workbookHeader); err != nil {
		return err
	}
	row := 2
	for _, g := range groups {
		for _, r := range g.Records {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			values := []interface{}{
				g.GroupID, g.DuplicateCount, g.DuplicateKey,
				r.ID, deref(r.Content), r.Status, r.Result, r.Report,
				deref(r.Progress), deref(r.SystemType), deref(r.Product),
				formatTime(r.ReceptionModTime), formatTime(r.ReceptionTime), formatTime(r.UpdateTime),
			}
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return err
			}
			row++
		}
	}
	return f.AutoFilter(sheet, fmt.Sprintf("A1:N%d", max(row-1, 1)), nil)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(workbookTimeLayout)
}
