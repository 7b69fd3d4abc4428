package alignment

import "github.com/emrelibot-hash/supplypilot-bot/importer"

// MatchTag исход сопоставления позиции BOQ со строкой предложения
type MatchTag string

const (
	// TagExact ключи описаний совпали, единица не противоречит
	TagExact MatchTag = "exact"
	// TagUnitMismatch описание совпало, единицы измерения разные.
	// Это предупреждение, не отказ: цена сохраняется.
	TagUnitMismatch MatchTag = "unit_mismatch"
	// TagUnmatched подходящей строки у поставщика нет
	TagUnmatched MatchTag = "unmatched"
)

// MatchResult результат сопоставления для пары (позиция BOQ, поставщик)
type MatchResult struct {
	UnitPrice float64  `json:"unit_price"` // 0 при отсутствии совпадения
	Total     float64  `json:"total"`      // UnitPrice * Qty позиции, без округления
	Tag       MatchTag `json:"tag"`
	Note      string   `json:"note"` // происхождение совпадения для ревьюера
}

// ComparisonRow строка итоговой таблицы: позиция BOQ и результат по
// каждому поставщику
type ComparisonRow struct {
	Item        importer.BOQItem       `json:"item"`
	PerSupplier map[string]MatchResult `json:"per_supplier"`
}

// ComparisonTable итог выравнивания. Создаётся заново на каждый
// прогон и после возврата не изменяется. Suppliers задаёт порядок
// колонок при любом рендеринге.
type ComparisonTable struct {
	Rows      []ComparisonRow `json:"rows"`
	Suppliers []string        `json:"suppliers"`
}
