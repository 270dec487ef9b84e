package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/premql/lead-triage/internal/core"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	validationSheet = "Validation"
	reviewSheet     = "Review"
)

var reportColumns = []string{
	"Received",
	"Sender Name",
	"Email Address",
	"Domain",
	"Country",
	"Company",
	"Outcome",
	"Reason",
	"Form Link",
}

// ExcelSink renders a batch partition into a workbook with two sheets:
// Validation carries the valid and rejected leads with their reason codes,
// Review carries everything that needs human eyes.
type ExcelSink struct {
	outputDir  string
	filePrefix string
	logger     *zap.Logger
}

// NewExcelSink creates an Excel report sink writing into outputDir.
func NewExcelSink(outputDir, filePrefix string, logger *zap.Logger) *ExcelSink {
	return &ExcelSink{
		outputDir:  outputDir,
		filePrefix: filePrefix,
		logger:     logger,
	}
}

// WriteReport writes the workbook. The file name carries the run date; an
// existing file is never overwritten, a " (n)" suffix is appended instead.
func (s *ExcelSink) WriteReport(ctx context.Context, result *core.BatchResult) error {
	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C6EFCE"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	// Validation sheet: valid first, then rejected, each in input order.
	validation := make([]*core.Verdict, 0, len(result.Valid)+len(result.Rejected))
	validation = append(validation, result.Valid...)
	validation = append(validation, result.Rejected...)

	if err := s.writeSheet(f, validationSheet, validation, headerStyle); err != nil {
		return err
	}
	if err := s.writeSheet(f, reviewSheet, result.Review, headerStyle); err != nil {
		return err
	}

	// Drop the default sheet excelize creates.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	path := s.uniquePath(fmt.Sprintf("%s_%s", s.filePrefix, time.Now().Format("02Jan06")))
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	s.logger.Info("Report written",
		zap.String("path", path),
		zap.Int("validation_rows", len(validation)),
		zap.Int("review_rows", len(result.Review)))
	return nil
}

func (s *ExcelSink) writeSheet(f *excelize.File, sheet string, verdicts []*core.Verdict, headerStyle int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	for col, name := range reportColumns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return err
		}
	}

	for i, verdict := range verdicts {
		row := rowValues(verdict)
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	return nil
}

func rowValues(v *core.Verdict) []interface{} {
	raw := v.Lead.Raw

	received := ""
	if !raw.ReceivedAt.IsZero() {
		received = raw.ReceivedAt.Format("2006-01-02 15:04:05")
	}

	return []interface{}{
		received,
		raw.SenderName,
		v.Lead.Address,
		v.Lead.Domain,
		v.Lead.Country,
		raw.Organization,
		string(v.Outcome),
		string(v.Reason),
		raw.FormURL,
	}
}

func (s *ExcelSink) uniquePath(baseName string) string {
	path := filepath.Join(s.outputDir, baseName+".xlsx")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}

	for counter := 2; ; counter++ {
		path = filepath.Join(s.outputDir, fmt.Sprintf("%s (%d).xlsx", baseName, counter))
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
	}
}
