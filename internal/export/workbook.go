// Package export renders the operator surveillance plan as an Excel workbook.
package export

import (
	"bytes"
	"fmt"

	gormModels "aerosafety/rbo/internal/models/gorm"
	"aerosafety/rbo/internal/risk"

	"github.com/xuri/excelize/v2"
)

const (
	SheetName   = "Surveillance Plan"
	FileName    = "rbo_surveillance_plan.xlsx"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Headers is the column order of the workbook
var Headers = []string{
	"Operator",
	"Inspector",
	"Evaluation Date",
	"Probability",
	"Severity",
	"Risk Score",
	"Aircraft",
	"Flights/Month",
	"Stations",
	"Tier",
	"Cadence",
}

var columnWidths = []float64{30, 20, 16, 12, 10, 11, 10, 14, 10, 12, 28}

const tierColumn = 10

// Row is one operator line of the surveillance plan
type Row struct {
	Operator       string
	Inspector      string
	EvaluationDate string
	Probability    int
	Severity       int
	RiskScore      int
	Aircraft       int
	MonthlyFlights int
	Stations       int
	Tier           string
	Cadence        string
	Color          string
}

func (r Row) values() []any {
	return []any{
		r.Operator,
		r.Inspector,
		r.EvaluationDate,
		r.Probability,
		r.Severity,
		r.RiskScore,
		r.Aircraft,
		r.MonthlyFlights,
		r.Stations,
		r.Tier,
		r.Cadence,
	}
}

// BuildRows maps stored operators to plan rows. Tier, cadence and color all
// follow the stored label; the policy only fills in records without one.
func BuildRows(ops []gormModels.Operator, policy risk.Policy) []Row {
	rows := make([]Row, 0, len(ops))
	for i := range ops {
		op := &ops[i]
		a := policy.Classify(op.RiskInputs()).WithStoredTier(op.RiskTier)

		rows = append(rows, Row{
			Operator:       op.Name,
			Inspector:      op.Inspector,
			EvaluationDate: op.EvaluationDate.UTC().Format("2006-01-02"),
			Probability:    op.Probability,
			Severity:       op.Severity,
			RiskScore:      op.Probability * op.Severity,
			Aircraft:       op.AircraftCount,
			MonthlyFlights: op.MonthlyFlights,
			Stations:       op.StationCount,
			Tier:           string(a.Tier),
			Cadence:        a.Cadence.String(),
			Color:          a.Color,
		})
	}
	return rows
}

// WriteWorkbook renders rows into an xlsx file. No rows gives a header-only sheet.
func WriteWorkbook(rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if _, err := f.NewSheet(SheetName); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	index, err := f.GetSheetIndex(SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to locate sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#2C3E50"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range Headers {
		if err := setCell(f, col+1, 1, header); err != nil {
			return nil, err
		}
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(Headers), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(SheetName, "A1", lastHeader, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	tierStyles := make(map[string]int)
	for i, r := range rows {
		rowNum := i + 2
		for col, v := range r.values() {
			if err := setCell(f, col+1, rowNum, v); err != nil {
				return nil, err
			}
		}

		if r.Color == "" {
			continue
		}
		style, ok := tierStyles[r.Color]
		if !ok {
			style, err = f.NewStyle(&excelize.Style{
				Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
				Fill: excelize.Fill{Type: "pattern", Color: []string{r.Color}, Pattern: 1},
			})
			if err != nil {
				return nil, fmt.Errorf("failed to create tier style: %w", err)
			}
			tierStyles[r.Color] = style
		}
		cell, err := excelize.CoordinatesToCellName(tierColumn, rowNum)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(SheetName, cell, cell, style); err != nil {
			return nil, fmt.Errorf("failed to style tier cell %s: %w", cell, err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(SheetName, cell, value); err != nil {
		return fmt.Errorf("failed to set cell %s: %w", cell, err)
	}
	return nil
}
