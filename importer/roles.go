package importer

import (
	"strings"

	"github.com/emrelibot-hash/supplypilot-bot/normalization"
)

// Наборы ключевых слов для распознавания колонок по заголовкам.
// Три языка: английский, русский, грузинский. Сравнение идёт по
// нормализованным ключам, поэтому варианты с точками и регистром
// отдельно не перечисляются.
var (
	descAliases   = []string{"description", "desc", "наименование", "описание", "დასახელ", "აღწერ"}
	unitAliases   = []string{"unit", "uom", "measure", "ед", "единица", "ერთეული", "ერთ"}
	qtyAliases    = []string{"qty", "quantity", "кол во", "количество", "რაოდ", "რაოდენობა"}
	priceAliases  = []string{"unit price", "price", "unit cost", "цена", "стоим", "ერთ ფასი", "ფასი"}
	amountAliases = []string{"amount", "total", "sum", "сумм", "итого", "სულ"}
	noAliases     = []string{"no", "№", "n", "item", "position", "poz", "п п"}
)

// ColumnRoles результат распознавания ролей колонок. -1 — роль не найдена.
type ColumnRoles struct {
	Desc  int
	Unit  int
	Qty   int
	Price int
	No    int

	// PriceFromAmount цена не найдена напрямую и будет синтезирована
	// как Amount/Qty построчно
	PriceFromAmount bool
	Amount          int
}

func emptyRoles() ColumnRoles {
	return ColumnRoles{Desc: -1, Unit: -1, Qty: -1, Price: -1, No: -1, Amount: -1}
}

// headerHit истинно, если нормализованная ячейка похожа на заголовок
// какой-либо из известных колонок
func headerHit(cell string) bool {
	key := normalization.NormalizeKey(cell)
	if key == "" {
		return false
	}
	for _, set := range [][]string{descAliases, unitAliases, qtyAliases, priceAliases, amountAliases} {
		for _, alias := range set {
			if strings.Contains(key, alias) {
				return true
			}
		}
	}
	return false
}

// PromoteHeader решает, является ли первая строка шапкой таблицы.
// Порог: совпадения минимум в max(2, 40% колонок) ячейках. Если шапка
// найдена, она возвращается отдельно и исключается из данных.
func PromoteHeader(cells [][]string) (header []string, data [][]string, promoted bool) {
	if len(cells) == 0 {
		return nil, cells, false
	}
	row0 := cells[0]

	hits := 0
	for _, cell := range row0 {
		if headerHit(cell) {
			hits++
		}
	}

	threshold := int(float64(len(row0)) * 0.4)
	if threshold < 2 {
		threshold = 2
	}
	if hits >= threshold {
		return row0, cells[1:], true
	}
	return nil, cells, false
}

// matchByName ищет колонку по имени: сперва точное совпадение ключа,
// затем вхождение подстроки. Роли не «съедают» колонки друг друга —
// каждая ищется независимо.
func matchByName(header []string, aliases []string) int {
	if len(header) == 0 {
		return -1
	}
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = normalization.NormalizeKey(h)
	}

	for _, alias := range aliases {
		for i, key := range keys {
			if key == alias {
				return i
			}
		}
	}
	for _, alias := range aliases {
		for i, key := range keys {
			if key != "" && strings.Contains(key, alias) {
				return i
			}
		}
	}
	return -1
}

// matchByNameExact ищет колонку только по точному совпадению ключа
func matchByNameExact(header []string, aliases []string) int {
	for _, alias := range aliases {
		for i, h := range header {
			if normalization.NormalizeKey(h) == alias {
				return i
			}
		}
	}
	return -1
}

// columnStats характеризует колонку по содержимому данных
type columnStats struct {
	avgTextLen    float64 // средняя длина текста
	positiveShare float64 // доля положительно разбираемых чисел
}

func collectStats(data [][]string, col int) columnStats {
	var textLen, positives, rows int
	for _, row := range data {
		if col >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[col])
		if cell == "" {
			continue
		}
		rows++
		textLen += len([]rune(cell))
		if normalization.ParseNumber(cell) > 0 {
			positives++
		}
	}
	if rows == 0 {
		return columnStats{}
	}
	return columnStats{
		avgTextLen:    float64(textLen) / float64(rows),
		positiveShare: float64(positives) / float64(rows),
	}
}

// looksLikeSequence истинно, если значения колонки образуют почти
// последовательную нумерацию, начинающуюся около единицы: не менее 90%
// соседних разностей лежат в пределах ±1. Так настоящая колонка "No"
// отличается от случайной числовой. Ячейки с мусором не отменяют
// вердикт сами по себе, а расходуют тот же 10-процентный допуск.
func looksLikeSequence(data [][]string, col int) bool {
	var nums []float64
	junk := 0
	for _, row := range data {
		if col >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[col])
		if cell == "" {
			continue
		}
		n := normalization.ParseNumber(cell)
		if n <= 0 || n != float64(int(n)) {
			junk++
			continue
		}
		nums = append(nums, n)
	}
	if len(nums) < 3 {
		return false
	}
	if nums[0] > 3 {
		return false
	}

	good := 0
	for i := 1; i < len(nums); i++ {
		delta := nums[i] - nums[i-1]
		if delta >= -1 && delta <= 1 {
			good++
		}
	}
	return float64(good) >= 0.9*float64(len(nums)-1+junk)
}

// amountLike истинно для заголовков вроде "Итого"/"Total"/"Amount":
// их нельзя принимать за количество, это нарастающие суммы
func amountLike(header []string, col int) bool {
	if col >= len(header) {
		return false
	}
	key := normalization.NormalizeKey(header[col])
	for _, alias := range amountAliases {
		if strings.Contains(key, alias) {
			return true
		}
	}
	return false
}

// DetectRoles распознаёт роли колонок таблицы. Детектор никогда не
// возвращает ошибку: при неоднозначности выдаётся лучший вариант, а
// ненайденные роли остаются -1. Решение «таблица непригодна» принимает
// вызывающий по обязательным для него ролям.
//
// forQuote переключает приоритет: для RFQ дополнительно ищется цена,
// в том числе синтезированная из Amount/Qty.
func DetectRoles(header []string, data [][]string, forQuote bool) ColumnRoles {
	roles := emptyRoles()
	cols := maxRowWidth(data)
	if cols == 0 {
		return roles
	}

	// Шаг 1: поиск по именам колонок (если шапка была)
	roles.Desc = matchByName(header, descAliases)
	roles.Unit = matchByName(header, unitAliases)
	roles.Qty = matchByName(header, qtyAliases)
	// Для номера позиции только точное совпадение: подстрока "no"
	// зацепила бы "notes" и подобные колонки
	roles.No = matchByNameExact(header, noAliases)
	if forQuote {
		roles.Price = matchByName(header, priceAliases)
		roles.Amount = matchByName(header, amountAliases)
	}

	// qty не должна указывать на amount-подобную колонку: нарастающий
	// итог маскируется под количество
	if roles.Qty >= 0 && amountLike(header, roles.Qty) {
		roles.Qty = -1
	}

	// Шаг 2: номер позиции по содержимому, если имя не нашлось
	if roles.No < 0 {
		for c := 0; c < cols; c++ {
			if c == roles.Desc || c == roles.Unit || c == roles.Qty {
				continue
			}
			if looksLikeSequence(data, c) {
				roles.No = c
				break
			}
		}
	}

	// Шаг 3: эвристики по содержимому для обязательных ролей
	if roles.Desc < 0 {
		roles.Desc = pickLongestText(data, cols, roles)
	}
	if roles.Qty < 0 {
		roles.Qty = pickMostNumeric(data, header, cols, roles, map[int]bool{roles.Price: true, roles.Amount: true})
	}

	// Шаг 4: позиционный фолбэк Description/Unit/Qty = 0/1/2
	if (roles.Desc < 0 || roles.Qty < 0) && cols >= 3 {
		roles.Desc, roles.Unit, roles.Qty = 0, 1, 2
	}

	// Шаг 5: цена для RFQ
	if forQuote && roles.Price < 0 {
		if roles.Amount >= 0 && roles.Qty >= 0 {
			roles.PriceFromAmount = true
		} else {
			roles.Price = pickMostNumeric(data, header, cols, roles, map[int]bool{roles.Qty: true, roles.No: true})
		}
	}

	return roles
}

// pickLongestText выбирает колонку с самым длинным средним текстом —
// суррогат «поля с прозой» для Description
func pickLongestText(data [][]string, cols int, roles ColumnRoles) int {
	best, bestLen := -1, 0.0
	for c := 0; c < cols; c++ {
		if c == roles.Unit || c == roles.Qty || c == roles.No || c == roles.Price || c == roles.Amount {
			continue
		}
		st := collectStats(data, c)
		if st.avgTextLen > bestLen {
			bestLen, best = st.avgTextLen, c
		}
	}
	return best
}

// pickMostNumeric выбирает колонку с наибольшей долей положительных
// чисел, минуя занятые роли, исключения и amount-подобные имена
func pickMostNumeric(data [][]string, header []string, cols int, roles ColumnRoles, exclude map[int]bool) int {
	best, bestShare := -1, 0.0
	for c := 0; c < cols; c++ {
		if c == roles.Desc || c == roles.Unit || c == roles.No || exclude[c] {
			continue
		}
		if amountLike(header, c) {
			continue
		}
		st := collectStats(data, c)
		if st.positiveShare > bestShare && st.positiveShare >= 0.3 {
			bestShare, best = st.positiveShare, c
		}
	}
	return best
}

func maxRowWidth(data [][]string) int {
	w := 0
	for _, row := range data {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}
