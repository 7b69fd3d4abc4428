package normalization

import (
	"strconv"
	"strings"
)

// currencyRunes валютные символы, встречающиеся в RFQ (лари, доллар,
// евро, рубль, фунт)
const currencyRunes = "$₾€₽£"

// currencyCodes ISO-коды по валютному символу
var currencyCodes = map[rune]string{
	'$': "USD",
	'₾': "GEL",
	'€': "EUR",
	'₽': "RUB",
	'£': "GBP",
}

// DetectCurrency возвращает ISO-код валюты по символу в ячейке цены.
// Пустая строка означает «валюта не указана».
func DetectCurrency(raw string) string {
	for _, r := range raw {
		if code, ok := currencyCodes[r]; ok {
			return code
		}
	}
	return ""
}

// ParseNumber разбирает число из «грязной» ячейки: "12 345,67",
// "12,345.67", "1 250", "$ 12.50". Неразборчивое значение даёт 0.0 —
// без ошибок и паник: исходные таблицы заведомо кривые, и ноль здесь
// означает «не удалось прочитать», а не «подтверждённый ноль».
// Вызывающий обязан проверять исходную строку на пустоту, прежде чем
// трактовать 0.0 как данные.
func ParseNumber(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}

	// Неразрывные и узкие пробелы -> обычный пробел
	s = strings.NewReplacer(" ", " ", " ", " ").Replace(s)

	// Убираем валютные символы и пробелы-разделители групп
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(currencyRunes, r) || r == ' ' {
			continue
		}
		b.WriteRune(r)
	}
	s = b.String()
	if s == "" {
		return 0
	}

	s = resolveSeparators(s)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// resolveSeparators решает, что в числе десятичный разделитель, а что —
// группировка тысяч. Если есть и запятая, и точка — десятичным считается
// тот, что стоит последним. Одиночный разделитель, за которым ровно
// 1–2 цифры, считается десятичным, иначе — группировкой.
func resolveSeparators(s string) string {
	lastComma := strings.LastIndexByte(s, ',')
	lastDot := strings.LastIndexByte(s, '.')

	switch {
	case lastComma >= 0 && lastDot >= 0:
		dec := byte('.')
		if lastComma > lastDot {
			dec = ','
		}
		s = stripAllExcept(s, dec)
		return strings.ReplaceAll(s, string(dec), ".")

	case lastComma >= 0:
		return resolveSingle(s, ',')

	case lastDot >= 0:
		return resolveSingle(s, '.')
	}
	return s
}

// resolveSingle обрабатывает число с единственным видом разделителя
func resolveSingle(s string, sep byte) string {
	if strings.Count(s, string(sep)) > 1 {
		// "1,234,567" — однозначно группировка
		return strings.ReplaceAll(s, string(sep), "")
	}
	idx := strings.LastIndexByte(s, sep)
	tail := len(s) - idx - 1
	if tail >= 1 && tail <= 2 {
		return strings.Replace(s, string(sep), ".", 1)
	}
	return strings.ReplaceAll(s, string(sep), "")
}

// stripAllExcept убирает из строки все разделители, кроме указанного
func stripAllExcept(s string, keep byte) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c == ',' || c == '.') && c != keep {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
