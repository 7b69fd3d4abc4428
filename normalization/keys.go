package normalization

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Пакет normalization превращает «сырые» значения ячеек BOQ/RFQ в
// сравнимые ключи. Все функции чистые и детерминированные: одинаковый
// вход всегда даёт одинаковый выход, никакого глобального состояния.

var (
	// Скобочные пояснения вида "(см. примечание)" — выбрасываем целиком
	parensRegex = regexp.MustCompile(`\([^)]*\)`)
	// Размеры вида 600x600, 600х600 (русская х), 600×600 — разделитель
	// приводим к пробелу, чтобы "600x600" и "600×600" давали один ключ
	dimensionRegex = regexp.MustCompile(`(\d)\s*[xх×]\s*(\d)`)
)

// NormalizeKey строит нормализованный ключ описания для сравнения.
// Unicode-декомпозиция (NFKD) + нижний регистр, затем всё, что не буква
// и не цифра, заменяется пробелом. Классификация символов идёт по
// Unicode-категориям, поэтому кириллица и грузинский обрабатываются
// так же, как латиница.
func NormalizeKey(raw string) string {
	if raw == "" {
		return ""
	}

	s := strings.ToLower(norm.NFKD.String(raw))
	s = parensRegex.ReplaceAllString(s, " ")

	// Повторяем замену: для вложенных размеров типа 600x600x20
	s = dimensionRegex.ReplaceAllString(s, "$1 $2")
	s = dimensionRegex.ReplaceAllString(s, "$1 $2")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.Is(unicode.Mn, r):
			// Комбинируемые знаки после NFKD ("ё" -> "е" + U+0308)
			// выбрасываем, иначе слово развалится на два токена
		default:
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// sheetKeyMaxLen ограничивает длину ключа листа: длинные заголовки
// страниц PDF несут мало информации после первых десятков символов
const sheetKeyMaxLen = 40

// SheetKey строит ключ имени листа (или заголовка страницы PDF) для
// оценки соответствия разделов BOQ и RFQ
func SheetKey(label string) string {
	key := NormalizeKey(label)
	runes := []rune(key)
	if len(runes) > sheetKeyMaxLen {
		return strings.TrimSpace(string(runes[:sheetKeyMaxLen]))
	}
	return key
}
