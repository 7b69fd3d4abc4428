package importer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestBuildRFQFromSheets(t *testing.T) {
	sheets := []RawSheet{{
		Label: "HVAC offer",
		Cells: [][]string{
			{"Description", "Unit", "Unit Price"},
			{"Ventilation Grille 600×600", "pc", "12.5"},
			{"Air duct, galvanized 0.7mm", "m2", "8,40"},
			{"Доставка", "", "0"},    // нулевая цена отбрасывается
			{"Шеф-монтаж", "", "??"}, // неразборчивая цена тоже
		},
	}}

	items, err := BuildRFQFromSheets(context.Background(), sheets, BuildOptions{})
	if err != nil {
		t.Fatalf("BuildRFQFromSheets: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("ожидалось 2 позиции, получено %d", len(items))
	}
	for _, it := range items {
		if it.UnitPrice <= 0 {
			t.Errorf("позиция с неположительной ценой: %+v", it)
		}
	}
	if items[0].UnitKey != "pcs" {
		t.Errorf("UnitKey(pc) = %q, ожидалось pcs", items[0].UnitKey)
	}
	if items[0].SourceSheet != "HVAC offer" {
		t.Errorf("SourceSheet = %q", items[0].SourceSheet)
	}
	if items[1].UnitPrice != 8.4 {
		t.Errorf("цена с запятой не разобрана: %v", items[1].UnitPrice)
	}
}

func TestBuildRFQCurrencyDetection(t *testing.T) {
	sheets := []RawSheet{{
		Label: "Offer",
		Cells: [][]string{
			{"Description", "Unit", "Unit Price"},
			{"Steel pipe DN50", "m", "$8.50"},
			{"Ventilation grille", "pcs", "12.5"},
		},
	}}

	items, err := BuildRFQFromSheets(context.Background(), sheets, BuildOptions{})
	if err != nil {
		t.Fatalf("BuildRFQFromSheets: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("ожидалось 2 позиции, получено %d", len(items))
	}
	if items[0].Currency != "USD" {
		t.Errorf("Currency = %q, ожидалось USD", items[0].Currency)
	}
	if items[1].Currency != "" {
		t.Errorf("цена без символа не должна иметь валюты, получено %q", items[1].Currency)
	}
}

func TestBuildRFQPriceFromAmount(t *testing.T) {
	sheets := []RawSheet{{
		Label: "KP",
		Cells: [][]string{
			{"Наименование", "Кол-во", "Итого"},
			{"Решётка вентиляционная", "10", "125"},
			{"Воздуховод", "20", "300"},
		},
	}}

	items, err := BuildRFQFromSheets(context.Background(), sheets, BuildOptions{})
	if err != nil {
		t.Fatalf("BuildRFQFromSheets: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("ожидалось 2 позиции, получено %d", len(items))
	}
	if items[0].UnitPrice != 12.5 {
		t.Errorf("цена из Итого/Кол-во = %v, ожидалось 12.5", items[0].UnitPrice)
	}
	if items[1].UnitPrice != 15 {
		t.Errorf("цена из Итого/Кол-во = %v, ожидалось 15", items[1].UnitPrice)
	}
}

func TestBuildRFQNoPriceTable(t *testing.T) {
	sheets := []RawSheet{{
		Label: "Cover letter",
		Cells: [][]string{
			{"Уважаемые коллеги", ""},
			{"Направляем вам", "что-то"},
		},
	}}

	_, err := BuildRFQFromSheets(context.Background(), sheets, BuildOptions{})
	if !errors.Is(err, ErrNoPriceTable) {
		t.Fatalf("ожидалась ErrNoPriceTable, получено: %v", err)
	}
}

func TestBuildRFQFromWorkbookBytes(t *testing.T) {
	// Книга собирается в памяти и скармливается как байты — проверяем
	// сниффинг и путь Excel целиком
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Description", "Unit", "Unit Price"},
		{"Ventilation grille 600x600", "pcs", 12.5},
		{"Flexible duct d=160", "m", 3.2},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("запись книги: %v", err)
	}

	items, err := BuildRFQ(context.Background(), buf.Bytes(), BuildOptions{})
	if err != nil {
		t.Fatalf("BuildRFQ: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("ожидалось 2 позиции, получено %d", len(items))
	}
	if items[0].DescKey != "ventilation grille 600 600" {
		t.Errorf("DescKey = %q", items[0].DescKey)
	}
}

func TestBuildRFQUnknownFormat(t *testing.T) {
	_, err := BuildRFQ(context.Background(), []byte("hello,this;is-not-a-document"), BuildOptions{})
	if !errors.Is(err, ErrNoPriceTable) {
		t.Fatalf("неизвестный формат должен давать ErrNoPriceTable, получено: %v", err)
	}
}

func TestDetectKind(t *testing.T) {
	if DetectKind([]byte("%PDF-1.7 ...")) != KindPDF {
		t.Error("PDF по сигнатуре не распознан")
	}
	if DetectKind([]byte("PK\x03\x04rest")) != KindSpreadsheet {
		t.Error("xlsx по сигнатуре не распознан")
	}
	if DetectKind([]byte{0xd0, 0xcf, 0x11, 0xe0, 0x00}) != KindSpreadsheet {
		t.Error("старый xls по сигнатуре не распознан")
	}
	// Расширение не имеет значения — только содержимое
	if DetectKind([]byte("just text.xlsx")) != KindUnknown {
		t.Error("текст не должен распознаваться как документ")
	}
}
