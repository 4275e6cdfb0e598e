package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/calendar"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/concept"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet = "Payslip"
	DaysSheet    = "Days"

	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	sixty       = decimal.NewFromInt(60)
	amountFmt   = "#,##0.00"
	categoryOrd = []concept.Category{
		concept.CategoryIncome,
		concept.CategoryDeduction,
		concept.CategoryEmployerContribution,
	}
)

// PayslipData is everything printed on one employee's payslip.
type PayslipData struct {
	Payroll  payroll.Payroll
	Employee employee.Employee
	Detail   payroll.PayrollDetail
	Calendar []calendar.Day
}

// PayslipRenderer renders payslips as XLSX workbooks.
type PayslipRenderer struct {
	currency string
}

func NewPayslipRenderer(currency string) *PayslipRenderer {
	return &PayslipRenderer{currency: currency}
}

func (r *PayslipRenderer) ContentType() string { return XLSXContentType }

func (r *PayslipRenderer) Extension() string { return ".xlsx" }

// FormatAmount renders d in the payroll currency, e.g. "S/2,054.13".
func (r *PayslipRenderer) FormatAmount(d decimal.Decimal) string {
	return money.New(d.Round(2).Shift(2).IntPart(), r.currency).Display()
}

func (r *PayslipRenderer) Render(data PayslipData) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, fmt.Errorf("failed to name payslip sheet: %w", err)
	}
	if _, err := f.NewSheet(DaysSheet); err != nil {
		return nil, fmt.Errorf("failed to add days sheet: %w", err)
	}

	styles, err := newStyles(f)
	if err != nil {
		return nil, err
	}
	if err := r.writeSummary(f, styles, data); err != nil {
		return nil, fmt.Errorf("failed to write payslip summary: %w", err)
	}
	if err := r.writeDays(f, styles, data); err != nil {
		return nil, fmt.Errorf("failed to write payslip days: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode payslip workbook: %w", err)
	}
	return buf, nil
}

type styles struct {
	title  int
	header int
	amount int
	total  int
}

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	var err error
	if s.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}); err != nil {
		return s, err
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9E1F2"}},
	}); err != nil {
		return s, err
	}
	if s.amount, err = f.NewStyle(&excelize.Style{CustomNumFmt: &amountFmt}); err != nil {
		return s, err
	}
	if s.total, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: &amountFmt}); err != nil {
		return s, err
	}
	return s, nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func (r *PayslipRenderer) writeSummary(f *excelize.File, st styles, data PayslipData) error {
	sh := SummarySheet
	p, e, d := data.Payroll, data.Employee, data.Detail

	if err := f.SetCellValue(sh, "A1", "PAYSLIP"); err != nil {
		return err
	}
	if err := f.MergeCell(sh, "A1", "D1"); err != nil {
		return err
	}
	if err := f.SetCellStyle(sh, "A1", "A1", st.title); err != nil {
		return err
	}

	header := [][]interface{}{
		{"Payroll", p.Code},
		{"Period", fmt.Sprintf("%s to %s", payroll.DateKey(p.PeriodStart), payroll.DateKey(p.PeriodEnd))},
		{"Employee code", e.EmployeeCode},
		{"Employee", e.FullName},
		{"Document", e.DocumentNumber},
		{"Position", deref(e.PositionName)},
		{"Bank account", strings.TrimSpace(deref(e.BankName) + " " + deref(e.BankAccount))},
		{"Worked days", d.Hours.WorkedDays},
	}
	row := 3
	for _, values := range header {
		if err := f.SetSheetRow(sh, cell(1, row), &values); err != nil {
			return err
		}
		row++
	}

	row++
	symbol := money.New(0, r.currency).Currency().Grapheme
	if err := f.SetSheetRow(sh, cell(1, row), &[]interface{}{"Code", "Concept", "Category", "Amount (" + symbol + ")"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(sh, cell(1, row), cell(4, row), st.header); err != nil {
		return err
	}
	row++

	for _, category := range categoryOrd {
		for _, res := range d.ConceptResults {
			if res.Category != category {
				continue
			}
			values := []interface{}{res.Code, res.Name, res.Category.String(), res.Amount.InexactFloat64()}
			if err := f.SetSheetRow(sh, cell(1, row), &values); err != nil {
				return err
			}
			if err := f.SetCellStyle(sh, cell(4, row), cell(4, row), st.amount); err != nil {
				return err
			}
			row++
		}
	}

	row++
	totals := []struct {
		label  string
		amount decimal.Decimal
	}{
		{"Total income", d.TotalIncome},
		{"Total deductions", d.TotalDeductions},
		{"Employer contributions", d.TotalEmployerContributions},
		{"Net pay", d.NetPay},
	}
	for _, t := range totals {
		if err := f.SetSheetRow(sh, cell(3, row), &[]interface{}{t.label, t.amount.InexactFloat64()}); err != nil {
			return err
		}
		if err := f.SetCellStyle(sh, cell(4, row), cell(4, row), st.total); err != nil {
			return err
		}
		row++
	}
	if err := f.SetCellValue(sh, cell(3, row), "Net pay (text)"); err != nil {
		return err
	}
	if err := f.SetCellValue(sh, cell(4, row), r.FormatAmount(d.NetPay)); err != nil {
		return err
	}

	if err := f.SetColWidth(sh, "A", "A", 18); err != nil {
		return err
	}
	return f.SetColWidth(sh, "B", "D", 28)
}

func (r *PayslipRenderer) writeDays(f *excelize.File, st styles, data PayslipData) error {
	sh := DaysSheet
	events := make(map[string]string, len(data.Calendar))
	for _, day := range data.Calendar {
		names := make([]string, 0, len(day.Events))
		for _, ev := range day.Events {
			label := string(ev.Type)
			if ev.Description != "" {
				label += ": " + ev.Description
			}
			names = append(names, label)
		}
		events[payroll.DateKey(day.Date)] = strings.Join(names, "; ")
	}

	headers := []interface{}{"Date", "Weekday", "Working day", "Events", "Normal h", "OT 25% h", "OT 35% h", "OT 100% h", "Night h"}
	if err := f.SetSheetRow(sh, "A1", &headers); err != nil {
		return err
	}
	if err := f.SetCellStyle(sh, "A1", cell(len(headers), 1), st.header); err != nil {
		return err
	}

	for i, day := range data.Detail.DayBreakdown {
		row := i + 2
		working := "no"
		if day.WorkingDay {
			working = "yes"
		}
		values := []interface{}{
			payroll.DateKey(day.Date),
			day.Date.Weekday().String(),
			working,
			events[payroll.DateKey(day.Date)],
			hours(day.NormalMinutes),
			hours(day.Overtime25Minutes),
			hours(day.Overtime35Minutes),
			hours(day.Overtime100Minutes),
			hours(day.NightMinutes),
		}
		if err := f.SetSheetRow(sh, cell(1, row), &values); err != nil {
			return err
		}
		if err := f.SetCellStyle(sh, cell(5, row), cell(9, row), st.amount); err != nil {
			return err
		}
	}
	return f.SetColWidth(sh, "A", "D", 16)
}

func hours(minutes int) float64 {
	return decimal.NewFromInt(int64(minutes)).Div(sixty).Round(2).InexactFloat64()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
