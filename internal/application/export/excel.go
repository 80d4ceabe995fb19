package export

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/claimflow/internal/domain/entity"
)

const sheetName = "Claims"

// ExcelExporter writes claims to an XLSX workbook
type ExcelExporter struct {
	logger *zap.Logger
}

// NewExcelExporter creates an ExcelExporter
func NewExcelExporter(logger *zap.Logger) *ExcelExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExcelExporter{logger: logger}
}

func (e *ExcelExporter) Format() string { return "xlsx" }

func (e *ExcelExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Export writes one header row, one row per claim and a total hours row
func (e *ExcelExporter) Export(ctx context.Context, claims []*entity.Claim, w io.Writer) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName(file.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	bold, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := e.setRow(file, 1, toAny(columns)); err != nil {
		return err
	}
	if err := file.SetRowStyle(sheetName, 1, 1, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, c := range claims {
		if err := ctx.Err(); err != nil {
			return err
		}
		values := toAny(row(c))
		values[4] = c.Hours
		if err := e.setRow(file, i+2, values); err != nil {
			return err
		}
	}

	totalRow := len(claims) + 2
	if err := e.setRow(file, totalRow, []any{"Total", nil, nil, nil, totalHours(claims)}); err != nil {
		return err
	}
	if err := file.SetRowStyle(sheetName, totalRow, totalRow, bold); err != nil {
		return fmt.Errorf("failed to style total: %w", err)
	}

	if err := file.SetColWidth(sheetName, "A", "A", 38); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}
	if err := file.SetColWidth(sheetName, "B", "D", 24); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}
	if err := file.SetColWidth(sheetName, "G", "H", 40); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	if _, err := file.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Debug("Claims exported", zap.String("format", e.Format()), zap.Int("count", len(claims)))
	return nil
}

func (e *ExcelExporter) setRow(file *excelize.File, n int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	if err := file.SetSheetRow(sheetName, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", n, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
