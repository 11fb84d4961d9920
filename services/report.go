package services

import (
	"context"
	"fmt"
	"time"

	"reception-dedup/models"
	"reception-dedup/storage"

	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportSummary fasst einen Report-Lauf zusammen.
type ReportSummary struct {
	Groups  map[models.DuplicateType]int `json:"groups"`
	Records map[models.DuplicateType]int `json:"records"`
	Link    string                       `json:"link,omitempty"`
}

// ReportService erstellt den periodischen Duplikat-Report.
type ReportService struct {
	Duplicates *DuplicateService
	Uploader   storage.Uploader // nil deaktiviert den Upload
	BaseURL    string
	Bucket     string
	Logger     *zap.Logger

	now func() time.Time
}

// NewReportService erstellt eine neue Instanz des ReportService.
func NewReportService(dups *DuplicateService, uploader storage.Uploader, baseURL, bucket string, logger *zap.Logger) *ReportService {
	return &ReportService{
		Duplicates: dups,
		Uploader:   uploader,
		BaseURL:    baseURL,
		Bucket:     bucket,
		Logger:     logger,
		now:        time.Now,
	}
}

// Run erkennt Duplikate aller Typen ohne Nutzerfilter, aktualisiert die
// Gauges und lädt die Arbeitsmappe hoch, sofern ein Uploader gesetzt ist.
func (r *ReportService) Run(ctx context.Context) (ReportSummary, error) {
	summary := ReportSummary{
		Groups:  map[models.DuplicateType]int{},
		Records: map[models.DuplicateType]int{},
	}
	byType := map[models.DuplicateType][]models.DuplicateGroup{}

	for _, t := range models.DuplicateTypes {
		groups, err := r.Duplicates.Detect(ctx, t, models.Filter{}, "", "")
		if err != nil {
			return summary, fmt.Errorf("report %s: %w", t, err)
		}
		byType[t] = groups
		summary.Groups[t] = len(groups)
		summary.Records[t] = TotalRecords(groups)
		duplicateGroupsGauge.WithLabelValues(string(t)).Set(float64(len(groups)))
		duplicateRecordsGauge.WithLabelValues(string(t)).Set(float64(summary.Records[t]))
	}

	if r.Uploader == nil {
		r.Logger.Info("Duplicate report finished (upload disabled)",
			zap.Any("groups", summary.Groups))
		return summary, nil
	}

	wb, err := BuildDuplicateWorkbook(byType)
	if err != nil {
		return summary, fmt.Errorf("build report workbook: %w", err)
	}
	defer wb.Close()
	buf, err := wb.WriteToBuffer()
	if err != nil {
		return summary, fmt.Errorf("write report workbook: %w", err)
	}

	key := fmt.Sprintf("reports/duplicates-%s.xlsx", r.now().UTC().Format("2006-01-02T15-04-05Z"))
	link, err := storage.UploadFile(ctx, r.Uploader, r.BaseURL, r.Bucket, key, xlsxContentType, buf.Bytes())
	if err != nil {
		return summary, fmt.Errorf("upload report: %w", err)
	}
	summary.Link = link
	r.Logger.Info("Duplicate report uploaded",
		zap.String("link", link),
		zap.Any("groups", summary.Groups))
	return summary, nil
}
