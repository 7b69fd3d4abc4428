package importer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadWorkbook читает все листы книги Excel в сырые матрицы.
// Лист, который не удалось прочитать, пропускается: одна битая вкладка
// не должна валить весь документ.
func ReadWorkbook(data []byte) ([]RawSheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var sheets []RawSheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		cells := dropEmpty(rows)
		if len(cells) == 0 {
			continue
		}
		sheets = append(sheets, RawSheet{Label: name, Cells: cells})
	}

	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook: нет непустых листов")
	}
	return sheets, nil
}

// dropEmpty убирает полностью пустые строки и колонки и выравнивает
// все строки по одной ширине
func dropEmpty(rows [][]string) [][]string {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		return nil
	}

	colUsed := make([]bool, width)
	var kept [][]string
	for _, row := range rows {
		empty := true
		for c, cell := range row {
			if strings.TrimSpace(cell) != "" {
				empty = false
				colUsed[c] = true
			}
		}
		if !empty {
			padded := make([]string, width)
			copy(padded, row)
			kept = append(kept, padded)
		}
	}
	if len(kept) == 0 {
		return nil
	}

	var liveCols []int
	for c, used := range colUsed {
		if used {
			liveCols = append(liveCols, c)
		}
	}
	if len(liveCols) == width {
		return kept
	}

	out := make([][]string, len(kept))
	for i, row := range kept {
		slim := make([]string, len(liveCols))
		for j, c := range liveCols {
			slim[j] = row[c]
		}
		out[i] = slim
	}
	return out
}
