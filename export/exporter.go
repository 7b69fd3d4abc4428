package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/emrelibot-hash/supplypilot-bot/alignment"
)

// Пакет export разворачивает таблицу сравнения в плоский вид
//
//	No | Description | Unit | Qty | <A: Unit Price> | <A: Total> | <A: Match> | <A: Notes> | ...
//
// Порядок колонок поставщиков задаёт движок; оформление (цвета,
// закреплённые строки) сюда сознательно не входит.

// matchMarks человекочитаемые метки тегов в таблице
var matchMarks = map[alignment.MatchTag]string{
	alignment.TagExact:        "OK",
	alignment.TagUnitMismatch: "!",
	alignment.TagUnmatched:    "—",
}

// Header возвращает строку заголовков итоговой таблицы
func Header(table *alignment.ComparisonTable) []string {
	header := []string{"No", "Description", "Unit", "Qty"}
	for _, s := range table.Suppliers {
		header = append(header,
			s+": Unit Price",
			s+": Total",
			s+": Match",
			s+": Notes",
		)
	}
	return header
}

// Flatten разворачивает таблицу в матрицу строк (без заголовка)
func Flatten(table *alignment.ComparisonTable) [][]string {
	rows := make([][]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		flat := []string{
			row.Item.No,
			row.Item.Description,
			row.Item.Unit,
			formatNumber(row.Item.Qty),
		}
		for _, s := range table.Suppliers {
			res := row.PerSupplier[s]
			flat = append(flat,
				formatNumber(res.UnitPrice),
				formatNumber(res.Total),
				matchMarks[res.Tag],
				res.Note,
			)
		}
		rows = append(rows, flat)
	}
	return rows
}

// WriteXLSX пишет таблицу сравнения книгой Excel
func WriteXLSX(w io.Writer, table *alignment.ComparisonTable) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	if err := setRow(f, sheet, 1, Header(table)); err != nil {
		return err
	}
	for i, row := range Flatten(table) {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteCSV пишет таблицу сравнения в CSV
func WriteCSV(w io.Writer, table *alignment.ComparisonTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(table)); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range Flatten(table) {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func setRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("set row %d: %w", rowNum, err)
	}
	return nil
}

// formatNumber печатает число без хвостовых нулей и без экспоненты
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
