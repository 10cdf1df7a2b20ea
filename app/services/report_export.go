package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/arthomesoni/arthome/app/models"
)

const rubleFormat = "### ### ### ₽"

// Export renders the sales or workshops report as an xlsx workbook and
// returns the file bytes plus the suggested filename.
func (s *ReportService) Export(ctx context.Context, exportType, period string) ([]byte, string, error) {
	now := time.Now()
	start := PeriodStart(period, now)

	f := excelize.NewFile()
	defer f.Close()

	switch exportType {
	case "sales":
		orders, err := s.orders.Since(ctx, start)
		if err != nil {
			return nil, "", err
		}
		if err := writeSalesWorkbook(f, start, now, orders); err != nil {
			return nil, "", err
		}
	case "workshops":
		all, err := s.workshops.All(ctx)
		if err != nil {
			return nil, "", err
		}
		if err := writeWorkshopsWorkbook(f, period, start, now, all); err != nil {
			return nil, "", err
		}
	default:
		return nil, "", ErrBadExportType
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("reports: write workbook: %w", err)
	}

	filename := fmt.Sprintf("%s-report-%s.xlsx", exportType, normalizePeriod(period))
	return buf.Bytes(), filename, nil
}

func periodLabel(start, end time.Time) string {
	from := "—"
	if !start.IsZero() {
		from = start.Format("02.01.2006")
	}
	return fmt.Sprintf("%s - %s", from, end.Format("02.01.2006"))
}

// styles returns the header/title/money styles shared by both workbooks.
func workbookStyles(f *excelize.File) (title, header, money int, err error) {
	title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 16, Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return
	}
	header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return
	}
	money, err = f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(rubleFormat)})
	return
}

func strPtr(s string) *string { return &s }

func writeSalesWorkbook(f *excelize.File, start, end time.Time, orders []models.Order) error {
	titleStyle, headerStyle, moneyStyle, err := workbookStyles(f)
	if err != nil {
		return fmt.Errorf("reports: styles: %w", err)
	}

	report := buildSalesReport("", orders)

	// ── Summary sheet ──
	const summary = "Общая информация"
	f.SetSheetName(f.GetSheetName(0), summary)

	f.MergeCell(summary, "A1", "E1")
	f.SetCellValue(summary, "A1", "Отчет по продажам")
	f.SetCellStyle(summary, "A1", "E1", titleStyle)

	f.SetCellValue(summary, "A3", "Период:")
	f.SetCellValue(summary, "B3", periodLabel(start, end))

	f.SetCellValue(summary, "A5", "Общая выручка:")
	f.SetCellValue(summary, "B5", report.TotalSales)
	f.SetCellValue(summary, "A6", "Количество заказов:")
	f.SetCellValue(summary, "B6", report.TotalOrders)
	f.SetCellValue(summary, "A7", "Средний чек:")
	f.SetCellValue(summary, "B7", report.AverageOrderValue)
	f.SetCellStyle(summary, "B5", "B5", moneyStyle)
	f.SetCellStyle(summary, "B7", "B7", moneyStyle)

	// ── Orders sheet ──
	const ordersSheet = "Заказы"
	if _, err := f.NewSheet(ordersSheet); err != nil {
		return fmt.Errorf("reports: orders sheet: %w", err)
	}
	headers := []string{"ID", "Дата", "Клиент", "Email", "Сумма", "Статус"}
	widths := []float64{24, 15, 30, 30, 15, 15}
	if err := writeHeaderRow(f, ordersSheet, headers, widths, headerStyle); err != nil {
		return err
	}
	for i, o := range orders {
		row := i + 2
		f.SetCellValue(ordersSheet, cell("A", row), o.ID.Hex())
		f.SetCellValue(ordersSheet, cell("B", row), o.Date.Format("02.01.2006"))
		f.SetCellValue(ordersSheet, cell("C", row), o.CustomerName)
		f.SetCellValue(ordersSheet, cell("D", row), o.CustomerEmail)
		f.SetCellValue(ordersSheet, cell("E", row), o.Total)
		f.SetCellValue(ordersSheet, cell("F", row), o.Status)
		f.SetCellStyle(ordersSheet, cell("E", row), cell("E", row), moneyStyle)
	}

	// ── Products sheet ──
	const productsSheet = "Товары"
	if _, err := f.NewSheet(productsSheet); err != nil {
		return fmt.Errorf("reports: products sheet: %w", err)
	}
	if err := writeHeaderRow(f, productsSheet,
		[]string{"Название", "Количество продаж", "Выручка"},
		[]float64{40, 20, 20}, headerStyle); err != nil {
		return err
	}
	for i, p := range report.TopProducts {
		row := i + 2
		f.SetCellValue(productsSheet, cell("A", row), p.Title)
		f.SetCellValue(productsSheet, cell("B", row), p.Quantity)
		f.SetCellValue(productsSheet, cell("C", row), p.Revenue)
		f.SetCellStyle(productsSheet, cell("C", row), cell("C", row), moneyStyle)
	}

	return nil
}

func writeWorkshopsWorkbook(f *excelize.File, period string, start, end time.Time, all []models.Workshop) error {
	titleStyle, headerStyle, moneyStyle, err := workbookStyles(f)
	if err != nil {
		return fmt.Errorf("reports: styles: %w", err)
	}

	report := buildWorkshopReport(period, all, end)

	// ── Summary sheet ──
	const summary = "Общая информация"
	f.SetSheetName(f.GetSheetName(0), summary)

	f.MergeCell(summary, "A1", "E1")
	f.SetCellValue(summary, "A1", "Отчет по мастер-классам")
	f.SetCellStyle(summary, "A1", "E1", titleStyle)

	f.SetCellValue(summary, "A3", "Период:")
	f.SetCellValue(summary, "B3", periodLabel(start, end))

	f.SetCellValue(summary, "A5", "Общая выручка:")
	f.SetCellValue(summary, "B5", report.Revenue)
	f.SetCellValue(summary, "A6", "Количество мастер-классов:")
	f.SetCellValue(summary, "B6", report.TotalWorkshops)
	f.SetCellValue(summary, "A7", "Всего участников:")
	f.SetCellValue(summary, "B7", report.TotalParticipants)
	f.SetCellValue(summary, "A8", "Среднее количество участников:")
	f.SetCellValue(summary, "B8", report.AverageParticipants)
	f.SetCellStyle(summary, "B5", "B5", moneyStyle)

	// ── Workshops sheet ──
	const wsSheet = "Мастер-классы"
	if _, err := f.NewSheet(wsSheet); err != nil {
		return fmt.Errorf("reports: workshops sheet: %w", err)
	}
	if err := writeHeaderRow(f, wsSheet,
		[]string{"Название", "Дата", "Количество участников", "Вместимость", "Заполненность", "Выручка"},
		[]float64{40, 15, 20, 15, 15, 20}, headerStyle); err != nil {
		return err
	}
	for i, st := range report.WorkshopStats {
		row := i + 2
		fill := 0
		if st.Capacity > 0 {
			fill = int(float64(st.Participants)/float64(st.Capacity)*100 + 0.5)
		}
		f.SetCellValue(wsSheet, cell("A", row), st.Title)
		f.SetCellValue(wsSheet, cell("B", row), st.Date)
		f.SetCellValue(wsSheet, cell("C", row), st.Participants)
		f.SetCellValue(wsSheet, cell("D", row), st.Capacity)
		f.SetCellValue(wsSheet, cell("E", row), fmt.Sprintf("%d%%", fill))
		f.SetCellValue(wsSheet, cell("F", row), st.Revenue)
		f.SetCellStyle(wsSheet, cell("F", row), cell("F", row), moneyStyle)
	}

	// ── Participants sheet ──
	const pSheet = "Участники"
	if _, err := f.NewSheet(pSheet); err != nil {
		return fmt.Errorf("reports: participants sheet: %w", err)
	}
	if err := writeHeaderRow(f, pSheet,
		[]string{"Мастер-класс", "Дата", "Имя участника", "Email", "Телефон", "Дата регистрации"},
		[]float64{40, 15, 30, 30, 20, 20}, headerStyle); err != nil {
		return err
	}
	row := 2
	for _, w := range all {
		if w.Date.After(end) {
			continue
		}
		if !start.IsZero() && w.Date.Before(start) {
			continue
		}
		for _, p := range w.RegisteredParticipants {
			phone := p.Phone
			if phone == "" {
				phone = "Не указан"
			}
			f.SetCellValue(pSheet, cell("A", row), w.Title)
			f.SetCellValue(pSheet, cell("B", row), w.Date.Format("02.01.2006"))
			f.SetCellValue(pSheet, cell("C", row), p.Name)
			f.SetCellValue(pSheet, cell("D", row), p.Email)
			f.SetCellValue(pSheet, cell("E", row), phone)
			f.SetCellValue(pSheet, cell("F", row), p.RegisteredAt.Format("02.01.2006"))
			row++
		}
	}

	return nil
}

func writeHeaderRow(f *excelize.File, sheet string, headers []string, widths []float64, style int) error {
	for i, h := range headers {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("reports: column name: %w", err)
		}
		f.SetCellValue(sheet, col+"1", h)
		if i < len(widths) {
			f.SetColWidth(sheet, col, col, widths[i])
		}
	}
	last, _ := excelize.ColumnNumberToName(len(headers))
	f.SetCellStyle(sheet, "A1", last+"1", style)
	return nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
