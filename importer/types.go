package importer

import "errors"

// Пакет importer читает BOQ и RFQ из Excel/PDF и строит из «кривых»
// таблиц единообразные позиции. Формат файла определяется по байтовой
// сигнатуре, а не по расширению: имена файлов присылают люди, и они
// врут.

var (
	// ErrNoUsableSheet ни на одном листе BOQ не удалось распознать
	// колонки Description и Qty
	ErrNoUsableSheet = errors.New("boq: не найдено пригодных листов")

	// ErrNoPriceTable ни один лист/страница RFQ не дал таблицы с
	// положительными ценами
	ErrNoPriceTable = errors.New("rfq: не найдено ценовых таблиц")
)

// SourceKind вид исходного документа
type SourceKind int

const (
	KindUnknown SourceKind = iota
	KindSpreadsheet
	KindPDF
)

// RawSheet сырой лист: имя (или заголовок страницы PDF) и матрица ячеек.
// Нейтральное представление, общее для Excel и PDF.
type RawSheet struct {
	Label string
	Cells [][]string
}

// BOQItem позиция ведомости объёмов работ. Создаётся один раз и дальше
// не изменяется; DescKey/UnitKey — производные нормализованные ключи,
// пользователю не показываются.
type BOQItem struct {
	No          string  `json:"no"`           // номер позиции как в источнике (не обязательно уникален)
	Description string  `json:"description"`  // описание как прочитано
	DescKey     string  `json:"-"`            // нормализованный ключ описания
	Unit        string  `json:"unit"`         // единица как прочитана
	UnitKey     string  `json:"-"`            // канонический код единицы
	Qty         float64 `json:"qty"`          // количество, 0 если не разобралось
	SourceSheet string  `json:"source_sheet"` // лист-источник, для трассировки
}

// RFQItem позиция коммерческого предложения поставщика.
// Остаются только строки с ценой строго больше нуля.
type RFQItem struct {
	Description string
	DescKey     string
	Unit        string
	UnitKey     string
	UnitPrice   float64
	Currency    string // ISO-код по символу в ячейке цены, "" если не указан
	SourceSheet string
}
