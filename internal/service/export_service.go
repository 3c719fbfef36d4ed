package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/asq3-api/internal/models"
	"github.com/noah-isme/asq3-api/pkg/export"
	appErrors "github.com/noah-isme/asq3-api/pkg/errors"
)

type resultsReader interface {
	Results(ctx context.Context, actor Actor, id string) (*models.ScreeningResults, bool, error)
	Child(ctx context.Context, actor Actor, childID string) (*models.Child, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportFile is a rendered export ready to be sent as an attachment.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders screening results into downloadable documents.
type ExportService struct {
	results   resultsReader
	renderers map[models.ExportFormat]datasetRenderer
	logger    *zap.Logger
}

// NewExportService constructs an ExportService with the CSV, PDF and XLSX renderers.
func NewExportService(results resultsReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		results: results,
		renderers: map[models.ExportFormat]datasetRenderer{
			models.ExportFormatCSV:  export.NewCSVExporter(),
			models.ExportFormatPDF:  export.NewPDFExporter(),
			models.ExportFormatXLSX: export.NewXLSXExporter(),
		},
		logger: logger,
	}
}

// ScreeningResults renders the domain results of a completed screening.
func (s *ExportService) ScreeningResults(ctx context.Context, actor Actor, screeningID string, format models.ExportFormat) (*ExportFile, error) {
	if format == "" {
		format = models.ExportFormatCSV
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Detail(appErrors.ErrValidation, "unsupported export format %q", format)
	}

	results, _, err := s.results.Results(ctx, actor, screeningID)
	if err != nil {
		return nil, err
	}
	child, err := s.results.Child(ctx, actor, results.ChildID)
	if err != nil {
		return nil, err
	}

	payload, err := renderer.Render(buildResultsDataset(child, results))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.logger.Info("screening results exported",
		zap.String("screening_id", screeningID),
		zap.String("format", string(format)),
		zap.Int("bytes", len(payload)),
	)
	return &ExportFile{
		Filename:    buildFilename(child.Name, results, format),
		ContentType: format.ContentType(),
		Payload:     payload,
	}, nil
}

var resultHeaders = []string{"Domain", "Total", "Cutoff", "Monitoring", "Max", "Status"}

func buildResultsDataset(child *models.Child, results *models.ScreeningResults) export.Dataset {
	completed := "-"
	if results.CompletedAt != nil {
		completed = results.CompletedAt.Format("2006-01-02 15:04")
	}
	dataset := export.Dataset{
		Title: "Hasil Skrining ASQ-3",
		Summary: [][2]string{
			{"Nama Anak", child.Name},
			{"Tanggal Lahir", child.Birthday.Format(dateLayout)},
			{"Tanggal Skrining", results.ScreeningDate.Format(dateLayout)},
			{"Kelompok Usia", results.AgeLabel},
			{"Selesai", completed},
			{"Kesimpulan", results.OverallLabel},
		},
		Headers: resultHeaders,
		Rows:    make([]map[string]string, 0, len(results.Domains)),
	}
	for _, d := range results.Domains {
		name := d.DomainName
		if name == "" {
			name = string(d.DomainCode)
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Domain":     name,
			"Total":      formatScore(d.TotalScore),
			"Cutoff":     formatScore(d.CutoffScore),
			"Monitoring": formatScore(d.MonitoringScore),
			"Max":        formatScore(d.MaxScore),
			"Status":     d.StatusLabel,
		})
	}
	return dataset
}

func formatScore(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

func buildFilename(childName string, results *models.ScreeningResults, format models.ExportFormat) string {
	return fmt.Sprintf("asq3_%s_%s.%s", sanitizeFilename(childName), results.ScreeningDate.Format("20060102"), format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_", "\"", "")
	result := strings.ToLower(replacer.Replace(raw))
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
