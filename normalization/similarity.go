package normalization

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
)

// Tokens разбивает нормализованный ключ на токены по пробелам.
// Ключ уже прошёл NormalizeKey, поэтому пунктуации внутри нет.
func Tokens(key string) []string {
	return strings.Fields(key)
}

// TokenSet строит множество токенов ключа
func TokenSet(key string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range Tokens(key) {
		set[t] = struct{}{}
	}
	return set
}

// JaccardTokens вычисляет индекс Жаккара по множествам токенов двух
// ключей. Пустое против пустого — 1.0, пустое против непустого — 0.0.
func JaccardTokens(key1, key2 string) float64 {
	return JaccardSets(TokenSet(key1), TokenSet(key2))
}

// JaccardSets вычисляет индекс Жаккара двух готовых множеств
func JaccardSets(set1, set2 map[string]struct{}) float64 {
	if len(set1) == 0 && len(set2) == 0 {
		return 1.0
	}
	if len(set1) == 0 || len(set2) == 0 {
		return 0.0
	}

	intersection := 0
	for t := range set1 {
		if _, ok := set2[t]; ok {
			intersection++
		}
	}
	union := len(set1) + len(set2) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

// SharedPrefix проверяет, является ли один ключ префиксом другого при
// длине общего префикса не меньше minLen символов (в рунах). Длинные
// описания часто обрезаются при копировании между таблицами, и общий
// длинный префикс — сильный сигнал совпадения позиций.
func SharedPrefix(key1, key2 string, minLen int) bool {
	if key1 == "" || key2 == "" {
		return false
	}
	short, long := key1, key2
	if len([]rune(short)) > len([]rune(long)) {
		short, long = long, short
	}
	if len([]rune(short)) < minLen {
		return false
	}
	return strings.HasPrefix(long, short)
}

// StemToken приводит токен к основе. Язык выбирается по алфавиту
// токена: кириллица — русский стеммер, латиница — английский,
// остальные алфавиты (грузинский) возвращаются как есть — для них
// стеммера в snowball нет.
func StemToken(token string) string {
	lang := ""
	for _, r := range token {
		switch {
		case unicode.Is(unicode.Cyrillic, r):
			lang = "russian"
		case r >= 'a' && r <= 'z':
			lang = "english"
		}
		if lang != "" {
			break
		}
	}
	if lang == "" {
		return token
	}

	stemmed, err := snowball.Stem(token, lang, false)
	if err != nil || stemmed == "" {
		return token
	}
	return stemmed
}

// StemmedTokenSet строит множество токенов с приведением каждого к
// основе. Используется нечётким матчером, когда включён стемминг:
// "кабеля" и "кабель" попадают в один токен.
func StemmedTokenSet(key string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range Tokens(key) {
		set[StemToken(t)] = struct{}{}
	}
	return set
}
