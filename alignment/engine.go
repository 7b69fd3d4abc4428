package alignment

import (
	"fmt"
	"sort"

	"github.com/emrelibot-hash/supplypilot-bot/importer"
	"github.com/emrelibot-hash/supplypilot-bot/normalization"
)

// Align сводит BOQ и предложения поставщиков в таблицу сравнения.
// Функция чистая и детерминированная: без ввода-вывода, без общего
// состояния, повторный вызов на тех же данных даёт байт-в-байт тот же
// результат. Порядок строк повторяет порядок BOQ; порядок поставщиков —
// по имени, чтобы не зависеть от порядка обхода map.
//
// Поставщик с пустым набором строк (его RFQ не разобрался) не валит
// прогон: его колонка заполняется TagUnmatched с пометкой "No RFQ".
func Align(boq []importer.BOQItem, suppliers map[string][]importer.RFQItem, cfg Config) *ComparisonTable {
	cfg = cfg.normalized()

	names := make([]string, 0, len(suppliers))
	for name := range suppliers {
		names = append(names, name)
	}
	sort.Strings(names)

	indexes := make(map[string]*supplierIndex, len(names))
	for _, name := range names {
		indexes[name] = buildSupplierIndex(suppliers[name], cfg)
	}

	table := &ComparisonTable{
		Rows:      make([]ComparisonRow, 0, len(boq)),
		Suppliers: names,
	}

	for _, item := range boq {
		row := ComparisonRow{
			Item:        item,
			PerSupplier: make(map[string]MatchResult, len(names)),
		}
		for _, name := range names {
			row.PerSupplier[name] = matchItem(item, indexes[name], cfg)
		}
		table.Rows = append(table.Rows, row)
	}

	return table
}

// quoteSheet строки предложения одного листа/страницы с индексами
// для точного поиска
type quoteSheet struct {
	label      string
	labelSet   map[string]struct{} // токены имени листа без стоп-слов
	items      []importer.RFQItem
	byDescUnit map[[2]string]int // (descKey, unitKey) -> первая строка
	byDesc     map[string]int    // descKey -> первая строка
}

type supplierIndex struct {
	sheets []*quoteSheet
	all    []importer.RFQItem // для глобального фолбэка, в исходном порядке
}

func buildSupplierIndex(items []importer.RFQItem, cfg Config) *supplierIndex {
	idx := &supplierIndex{}
	byLabel := make(map[string]*quoteSheet)

	for _, it := range items {
		sh, ok := byLabel[it.SourceSheet]
		if !ok {
			sh = &quoteSheet{
				label:      it.SourceSheet,
				labelSet:   labelTokens(it.SourceSheet, cfg),
				byDescUnit: make(map[[2]string]int),
				byDesc:     make(map[string]int),
			}
			byLabel[it.SourceSheet] = sh
			idx.sheets = append(idx.sheets, sh)
		}

		pos := len(sh.items)
		sh.items = append(sh.items, it)
		// При дублях ключа остаётся ПЕРВОЕ вхождение, не минимальная
		// цена: так прогон воспроизводим и понятен
		duKey := [2]string{it.DescKey, it.UnitKey}
		if _, ok := sh.byDescUnit[duKey]; !ok {
			sh.byDescUnit[duKey] = pos
		}
		if _, ok := sh.byDesc[it.DescKey]; !ok {
			sh.byDesc[it.DescKey] = pos
		}

		idx.all = append(idx.all, it)
	}

	return idx
}

// labelTokens токены имени листа без стоп-слов — для оценки близости
// разделов BOQ и RFQ
func labelTokens(label string, cfg Config) map[string]struct{} {
	set := normalization.TokenSet(normalization.SheetKey(label))
	for _, stop := range cfg.StopTokens {
		delete(set, stop)
	}
	return set
}

// rankedSheet лист поставщика с баллом близости раздела
type rankedSheet struct {
	*quoteSheet
	affinity float64
}

// rankSheets возвращает листы поставщика в порядке убывания близости
// к листу позиции BOQ. Сортировка стабильная: при равных баллах
// сохраняется исходный порядок листов.
func rankSheets(item importer.BOQItem, idx *supplierIndex, cfg Config) []rankedSheet {
	boqSet := labelTokens(item.SourceSheet, cfg)

	ranked := make([]rankedSheet, len(idx.sheets))
	for i, sh := range idx.sheets {
		ranked[i] = rankedSheet{sh, normalization.JaccardSets(boqSet, sh.labelSet)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].affinity > ranked[j].affinity
	})
	return ranked
}

// matchItem ищет лучшую строку поставщика для позиции BOQ.
// Приоритеты строгие, побеждает первый успех:
//  1. по листам в порядке близости разделов: точное совпадение
//     (описание+единица), затем только описание, затем нечёткое
//     совпадение внутри листа;
//  2. глобальный нечёткий поиск по всему предложению;
//  3. не найдено.
func matchItem(item importer.BOQItem, idx *supplierIndex, cfg Config) MatchResult {
	if len(idx.all) == 0 {
		return MatchResult{Tag: TagUnmatched, Note: "No RFQ"}
	}
	if item.DescKey == "" {
		return MatchResult{Tag: TagUnmatched, Note: "No line in RFQ"}
	}

	for _, sh := range rankSheets(item, idx, cfg) {
		// (a) точное совпадение описания и единицы
		if pos, ok := sh.byDescUnit[[2]string{item.DescKey, item.UnitKey}]; ok {
			return result(item, sh.items[pos], TagExact, fmt.Sprintf("Exact in sheet: %s", sh.label))
		}

		// (b) совпало только описание
		if pos, ok := sh.byDesc[item.DescKey]; ok {
			hit := sh.items[pos]
			if item.UnitKey == "" || item.UnitKey == hit.UnitKey {
				return result(item, hit, TagExact, fmt.Sprintf("Exact in sheet: %s", sh.label))
			}
			return result(item, hit, TagUnitMismatch, fmt.Sprintf("Unit mismatch in: %s", sh.label))
		}

		// (c) нечёткое совпадение внутри листа — только для листов
		// родственных разделов; для чужих разделов нечёткий матч
		// идёт глобальным фолбэком с «global»-пометкой
		if sh.affinity > 0 {
			if hit, ok := fuzzyBest(item, sh.items, cfg); ok {
				return fuzzyResult(item, hit, fmt.Sprintf("Fuzzy in sheet: %s", sh.label))
			}
		}
	}

	// Глобальный фолбэк: вся таблица поставщика без учёта листов.
	// Пометка "global" в примечании — сигнал ревьюеру о низкой
	// уверенности такого совпадения.
	if hit, ok := fuzzyBest(item, idx.all, cfg); ok {
		return fuzzyResult(item, hit, fmt.Sprintf("Global fuzzy: %s", hit.SourceSheet))
	}

	return MatchResult{Tag: TagUnmatched, Note: "No line in RFQ"}
}

// fuzzyBest ищет нечёткое совпадение описания среди строк.
// Сначала прямое равенство ключей, затем общий префикс, затем индекс
// Жаккара выше порога — берётся максимальный балл, при равенстве
// побеждает первая встреченная строка.
func fuzzyBest(item importer.BOQItem, items []importer.RFQItem, cfg Config) (importer.RFQItem, bool) {
	tokens := func(key string) map[string]struct{} {
		if cfg.UseStemming {
			return normalization.StemmedTokenSet(key)
		}
		return normalization.TokenSet(key)
	}
	itemSet := tokens(item.DescKey)

	best := -1
	bestScore := 0.0
	for i, cand := range items {
		if cand.DescKey == item.DescKey {
			return cand, true
		}
		if normalization.SharedPrefix(item.DescKey, cand.DescKey, cfg.PrefixMinLen) {
			return cand, true
		}
		score := normalization.JaccardSets(itemSet, tokens(cand.DescKey))
		if score >= cfg.FuzzyThreshold && score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return importer.RFQItem{}, false
	}
	return items[best], true
}

// fuzzyResult строит результат нечёткого совпадения: тег зависит от
// единицы сматченной строки, как и в точных ветках
func fuzzyResult(item importer.BOQItem, hit importer.RFQItem, note string) MatchResult {
	if item.UnitKey == "" || item.UnitKey == hit.UnitKey {
		return result(item, hit, TagExact, note)
	}
	return result(item, hit, TagUnitMismatch, note+" (unit mismatch)")
}

func result(item importer.BOQItem, hit importer.RFQItem, tag MatchTag, note string) MatchResult {
	return MatchResult{
		UnitPrice: hit.UnitPrice,
		Total:     hit.UnitPrice * item.Qty,
		Tag:       tag,
		Note:      note,
	}
}
