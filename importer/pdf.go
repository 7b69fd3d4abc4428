package importer

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Извлечение таблиц из PDF. Работает по координатам слов: сначала слова
// группируются в строки по Y, затем две геометрические стратегии
// пытаются провести границы колонок. Линованные документы хорошо берёт
// кластеризация левых краёв, нелинованные — профиль «пустых коридоров».
// Принимается первая стратегия, давшая таблицу; страница без таблиц
// просто пропускается.

const (
	rowTolerance   = 2.0  // слова с |ΔY| меньше — одна строка
	wordGapFactor  = 0.45 // зазор больше этой доли кегля — новое слово
	edgeTolerance  = 3.5  // кластеризация левых краёв, pt
	minEdgeSupport = 0.5  // доля строк, подтверждающих границу колонки
	minGapWidth    = 8.0  // минимальная ширина «пустого коридора», pt
	headerBand     = 0.18 // верхняя доля страницы, дающая её заголовок
)

type pdfWord struct {
	text string
	x    float64 // левый край
	x2   float64 // правый край
	y    float64
}

type pdfRow struct {
	y     float64
	words []pdfWord
}

// ReadPDFTables извлекает таблицы со всех страниц PDF. Каждая страница
// с таблицей даёт RawSheet, помеченный текстом из верхней части
// страницы — он играет роль имени листа.
func ReadPDFTables(data []byte) ([]RawSheet, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	var sheets []RawSheet
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}

		rows, height := pageRows(p)
		if len(rows) < 2 {
			continue
		}

		label := pageLabel(rows, height)
		if label == "" {
			label = fmt.Sprintf("page %d", i)
		}

		body := dropLabelBand(rows, height)
		if len(body) < 2 {
			// таблица целиком в верхней полосе — берём всё как есть
			body = rows
		}

		cells := extractByEdges(body)
		if cells == nil {
			cells = extractByGaps(body)
		}
		if cells == nil {
			continue // страница без таблиц (скан, письмо) — не ошибка
		}

		sheets = append(sheets, RawSheet{Label: label, Cells: dropEmpty(cells)})
	}

	if len(sheets) == 0 {
		return nil, fmt.Errorf("pdf: таблицы не извлечены")
	}
	return sheets, nil
}

// pageRows собирает символы страницы в слова, а слова — в строки
func pageRows(p pdf.Page) ([]pdfRow, float64) {
	texts := p.Content().Text
	if len(texts) == 0 {
		return nil, 0
	}

	height := 0.0
	for _, t := range texts {
		if t.Y > height {
			height = t.Y
		}
	}

	// Группируем в строки по Y
	sort.SliceStable(texts, func(i, j int) bool {
		if texts[i].Y != texts[j].Y {
			return texts[i].Y > texts[j].Y // PDF: Y растёт вверх
		}
		return texts[i].X < texts[j].X
	})

	var rows []pdfRow
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		placed := false
		for ri := range rows {
			if abs(rows[ri].y-t.Y) < rowTolerance {
				rows[ri].words = appendGlyph(rows[ri].words, t)
				placed = true
				break
			}
		}
		if !placed {
			rows = append(rows, pdfRow{y: t.Y, words: appendGlyph(nil, t)})
		}
	}

	return rows, height
}

// appendGlyph приклеивает символ к последнему слову строки или
// начинает новое слово, если зазор велик
func appendGlyph(words []pdfWord, t pdf.Text) []pdfWord {
	gap := t.FontSize * wordGapFactor
	if gap <= 0 {
		gap = 2.5
	}
	if n := len(words); n > 0 && t.X-words[n-1].x2 < gap {
		words[n-1].text += t.S
		words[n-1].x2 = t.X + t.W
		return words
	}
	return append(words, pdfWord{text: t.S, x: t.X, x2: t.X + t.W, y: t.Y})
}

// pageLabel склеивает текст верхних ~18% страницы — суррогат имени листа
func pageLabel(rows []pdfRow, height float64) string {
	if height <= 0 {
		return ""
	}
	var parts []string
	for _, row := range rows {
		if row.y >= height*(1-headerBand) {
			for _, w := range row.words {
				parts = append(parts, w.text)
			}
		}
	}
	label := strings.TrimSpace(strings.Join(parts, " "))
	runes := []rune(label)
	if len(runes) > 40 {
		label = string(runes[:40])
	}
	return label
}

// dropLabelBand убирает строки верхней полосы страницы: их текст уже
// ушёл в метку листа, а в таблице он встал бы первой строкой поверх
// настоящей шапки и сорвал бы её распознавание
func dropLabelBand(rows []pdfRow, height float64) []pdfRow {
	if height <= 0 {
		return rows
	}
	var body []pdfRow
	for _, row := range rows {
		if row.y < height*(1-headerBand) {
			body = append(body, row)
		}
	}
	return body
}

// extractByEdges стратегия 1: кластеризация левых краёв слов.
// В линованных и просто аккуратно свёрстанных таблицах начала ячеек
// каждой колонки стоят на одних и тех же X.
func extractByEdges(rows []pdfRow) [][]string {
	var edges []float64
	for _, row := range rows {
		for _, w := range row.words {
			edges = append(edges, w.x)
		}
	}
	if len(edges) == 0 {
		return nil
	}
	sort.Float64s(edges)

	// Кластеры краёв с допуском edgeTolerance
	type cluster struct {
		x       float64
		support int
	}
	var clusters []cluster
	for _, e := range edges {
		if n := len(clusters); n > 0 && e-clusters[n-1].x < edgeTolerance {
			clusters[n-1].support++
			continue
		}
		clusters = append(clusters, cluster{x: e, support: 1})
	}

	need := int(minEdgeSupport * float64(len(rows)))
	if need < 2 {
		need = 2
	}
	var bounds []float64
	for _, c := range clusters {
		if c.support >= need {
			bounds = append(bounds, c.x)
		}
	}
	if len(bounds) < 2 {
		return nil
	}
	return sliceRows(rows, bounds)
}

// extractByGaps стратегия 2: профиль плотности по X. Вертикальные
// «коридоры», не накрытые ни одним словом, шире minGapWidth — это
// промежутки между колонками.
func extractByGaps(rows []pdfRow) [][]string {
	type span struct{ a, b float64 }
	var spans []span
	minX, maxX := 1e18, -1e18
	for _, row := range rows {
		for _, w := range row.words {
			spans = append(spans, span{w.x, w.x2})
			if w.x < minX {
				minX = w.x
			}
			if w.x2 > maxX {
				maxX = w.x2
			}
		}
	}
	if len(spans) == 0 || maxX <= minX {
		return nil
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].a < spans[j].a })

	// Сливаем перекрывающиеся интервалы и ищем дыры между ними
	var bounds []float64
	bounds = append(bounds, minX)
	curEnd := spans[0].b
	for _, s := range spans[1:] {
		if s.a > curEnd+minGapWidth {
			// начало новой колонки за «коридором»
			bounds = append(bounds, s.a)
		}
		if s.b > curEnd {
			curEnd = s.b
		}
	}
	if len(bounds) < 2 {
		return nil
	}
	return sliceRows(rows, bounds)
}

// sliceRows раскладывает слова строк по колонкам между границами
func sliceRows(rows []pdfRow, bounds []float64) [][]string {
	cols := len(bounds)
	var out [][]string
	for _, row := range rows {
		cells := make([]string, cols)
		used := false
		for _, w := range row.words {
			ci := 0
			for i := len(bounds) - 1; i >= 0; i-- {
				if w.x >= bounds[i]-edgeTolerance {
					ci = i
					break
				}
			}
			if cells[ci] == "" {
				cells[ci] = w.text
			} else {
				cells[ci] += " " + w.text
			}
			used = true
		}
		if used {
			out = append(out, cells)
		}
	}
	if len(out) < 2 {
		return nil
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
