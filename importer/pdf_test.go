package importer

import (
	"strings"
	"testing"
)

// fixtureRow собирает строку страницы из готовых слов: тесты геометрии
// не требуют настоящего PDF, достаточно координат
func fixtureRow(y float64, words ...pdfWord) pdfRow {
	for i := range words {
		words[i].y = y
	}
	return pdfRow{y: y, words: words}
}

func pw(text string, x, x2 float64) pdfWord {
	return pdfWord{text: text, x: x, x2: x2}
}

func TestExtractByEdges(t *testing.T) {
	// Аккуратная вёрстка: начала ячеек каждой колонки на одних X
	rows := []pdfRow{
		fixtureRow(700, pw("Description", 50, 110), pw("Unit", 200, 225), pw("Price", 300, 330)),
		fixtureRow(680, pw("Grille 600x600", 50, 130), pw("pcs", 200, 218), pw("12.5", 300, 322)),
		fixtureRow(660, pw("Air duct", 50, 95), pw("m2", 200, 214), pw("8.40", 300, 324)),
		fixtureRow(640, pw("Cable tray", 50, 105), pw("m", 200, 208), pw("3.10", 300, 322)),
	}

	cells := extractByEdges(rows)
	if cells == nil {
		t.Fatal("кластеризация краёв не дала таблицу")
	}
	if len(cells) != 4 || len(cells[0]) != 3 {
		t.Fatalf("ожидалась таблица 4x3, получено %dx%d", len(cells), len(cells[0]))
	}
	if cells[0][0] != "Description" || cells[1][2] != "12.5" {
		t.Errorf("ячейки разложены неверно: %v", cells)
	}
}

func TestExtractByGapsFallback(t *testing.T) {
	// Рваные левые края: стратегия 1 не находит опорных X, но между
	// колонками остаётся широкий пустой коридор
	rows := []pdfRow{
		fixtureRow(700, pw("Кабель ВВГ", 50, 95), pw("250", 200, 218)),
		fixtureRow(680, pw("Лоток", 58, 103), pw("120", 210, 228)),
		fixtureRow(660, pw("Гофра", 66, 111), pw("40", 220, 232)),
	}

	if got := extractByEdges(rows); got != nil {
		t.Fatalf("рваные края не должны давать таблицу: %v", got)
	}

	cells := extractByGaps(rows)
	if cells == nil {
		t.Fatal("профиль коридоров не дал таблицу")
	}
	if len(cells) != 3 || len(cells[0]) != 2 {
		t.Fatalf("ожидалась таблица 3x2, получено %dx%d", len(cells), len(cells[0]))
	}
	if cells[0][0] != "Кабель ВВГ" || cells[0][1] != "250" {
		t.Errorf("ячейки разложены неверно: %v", cells)
	}
}

func TestExtractSkipsPageWithoutTable(t *testing.T) {
	// Страница-письмо: по одному слову на строку, колонок нет
	rows := []pdfRow{
		fixtureRow(700, pw("Уважаемые", 50, 120)),
		fixtureRow(680, pw("коллеги", 60, 115)),
	}
	if got := extractByEdges(rows); got != nil {
		t.Errorf("стратегия 1 нашла таблицу там, где её нет: %v", got)
	}
	if got := extractByGaps(rows); got != nil {
		t.Errorf("стратегия 2 нашла таблицу там, где её нет: %v", got)
	}
}

func TestPageLabel(t *testing.T) {
	rows := []pdfRow{
		fixtureRow(780, pw("Commercial", 50, 120), pw("proposal", 130, 180), pw("HVAC", 190, 225)),
		fixtureRow(600, pw("Description", 50, 110), pw("Price", 300, 330)),
	}

	if got := pageLabel(rows, 780); got != "Commercial proposal HVAC" {
		t.Errorf("pageLabel = %q", got)
	}
	if got := pageLabel(rows, 0); got != "" {
		t.Errorf("при нулевой высоте метки быть не должно: %q", got)
	}
}

func TestDropLabelBandKeepsHeaderPromotable(t *testing.T) {
	// Заголовок страницы стоит выше таблицы; после отсечения верхней
	// полосы первой строкой таблицы становится настоящая шапка
	rows := []pdfRow{
		fixtureRow(780, pw("Commercial", 50, 120), pw("proposal", 130, 180), pw("HVAC", 190, 225)),
		fixtureRow(600, pw("Description", 50, 110), pw("Unit", 250, 275), pw("Price", 350, 380)),
		fixtureRow(580, pw("Grille 600x600", 50, 130), pw("pcs", 250, 268), pw("12.5", 350, 372)),
		fixtureRow(560, pw("Air duct", 50, 95), pw("m2", 250, 264), pw("8.40", 350, 374)),
	}

	body := dropLabelBand(rows, 780)
	if len(body) != 3 {
		t.Fatalf("верхняя полоса не отсечена: %d строк", len(body))
	}

	cells := extractByEdges(body)
	if cells == nil {
		t.Fatal("таблица без заголовка страницы не извлечена")
	}
	for _, row := range cells {
		if strings.Contains(strings.Join(row, " "), "Commercial") {
			t.Fatalf("текст заголовка страницы попал в ячейки: %v", cells)
		}
	}

	header, data, promoted := PromoteHeader(cells)
	if !promoted {
		t.Fatalf("шапка таблицы не распознана: %v", cells)
	}
	if header[0] != "Description" || len(data) != 2 {
		t.Errorf("шапка и данные разделены неверно: %v / %v", header, data)
	}
}

func TestDropLabelBandDegenerate(t *testing.T) {
	rows := []pdfRow{
		fixtureRow(780, pw("Title", 50, 80)),
		fixtureRow(770, pw("Subtitle", 50, 95)),
	}
	// Вся страница в верхней полосе — отсекать нечего
	if body := dropLabelBand(rows, 780); len(body) != 0 {
		t.Errorf("ожидалась пустая таблица, получено %d строк", len(body))
	}
	if body := dropLabelBand(rows, 0); len(body) != 2 {
		t.Error("при нулевой высоте строки должны остаться как есть")
	}
}
