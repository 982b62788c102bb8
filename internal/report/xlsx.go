package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/afero"
	"github.com/xuri/excelize/v2"

	apperrors "salesinsights/internal/errors"
	"salesinsights/internal/models"
)

const summarySheet = "Summary"

// numFmtMoney is the built-in "#,##0.00" number format.
const numFmtMoney = 4

var breakdownSheets = []struct {
	name string
	dim  models.Dimension
}{
	{"Category", models.DimensionCategory},
	{"Region", models.DimensionRegion},
	{"Segment", models.DimensionSegment},
}

// XLSXExporter writes the insights as a workbook, one sheet per breakdown.
type XLSXExporter struct {
	fs     afero.Fs
	path   string
	logger *slog.Logger
}

func NewXLSXExporter(fsys afero.Fs, path string, logger *slog.Logger) *XLSXExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXExporter{fs: fsys, path: path, logger: logger}
}

func (x *XLSXExporter) Export(ctx context.Context, in *models.Insights) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, err := BuildWorkbook(in)
	if err != nil {
		return "", apperrors.WriteFailure(err, x.path)
	}
	defer f.Close()

	file, err := x.fs.OpenFile(x.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return "", apperrors.WriteFailure(err, x.path)
	}

	err = f.Write(file)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", apperrors.WriteFailure(err, x.path)
	}

	x.logger.Info("insights workbook written", "path", x.path)
	return x.path, nil
}

// BuildWorkbook lays out the summary and the three breakdowns.
func BuildWorkbook(in *models.Insights) (*excelize.File, error) {
	f := excelize.NewFile()

	money, err := f.NewStyle(&excelize.Style{NumFmt: numFmtMoney})
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		f.Close()
		return nil, err
	}

	summary := [][]any{
		{"Metric", "Value"},
		{"Total Orders", in.Orders.Records},
		{"Total Sales", in.Orders.TotalSales},
		{"Total Profit", in.Orders.TotalProfit},
		{"Average Sales per Order", in.Orders.AverageSales},
		{"Profit Margin %", in.Orders.ProfitMargin},
		{"Total Quantity", in.Orders.TotalQuantity},
		{"Average Discount %", in.Orders.AverageDiscount},
		{"First Order Date", in.Orders.FirstOrderDate},
		{"Last Order Date", in.Orders.LastOrderDate},
		{"Regional Managers", in.People.Records},
		{"Total Returns", in.Returns.Records},
		{"Return Rate %", in.Returns.ReturnRate},
	}
	if err := writeRows(f, summarySheet, summary); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetCellStyle(summarySheet, "B3", "B5", money); err != nil {
		f.Close()
		return nil, err
	}

	for _, sheet := range breakdownSheets {
		groups, _ := in.Breakdown(sheet.dim)
		if _, err := f.NewSheet(sheet.name); err != nil {
			f.Close()
			return nil, err
		}

		rows := make([][]any, 0, len(groups)+1)
		rows = append(rows, []any{sheet.name, "Sales", "Orders"})
		for _, g := range groups {
			rows = append(rows, []any{g.Key, g.Sales, g.Count})
		}
		if err := writeRows(f, sheet.name, rows); err != nil {
			f.Close()
			return nil, err
		}
		if len(groups) > 0 {
			end := fmt.Sprintf("B%d", len(groups)+1)
			if err := f.SetCellStyle(sheet.name, "B2", end, money); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
