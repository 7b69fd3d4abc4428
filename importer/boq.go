package importer

import (
	"context"
	"strconv"
	"strings"
	"unicode"

	"github.com/emrelibot-hash/supplypilot-bot/normalization"
	"github.com/emrelibot-hash/supplypilot-bot/translate"
)

// BuildOptions настройки построителей. Нулевое значение пригодно к
// работе: без переводчика ключи строятся по исходному тексту.
type BuildOptions struct {
	// Translator применяется к описаниям на языках вне латиницы и
	// кириллицы перед построением ключа. Исходный текст позиции при
	// этом сохраняется как есть.
	Translator translate.Translator
}

// BuildBOQ собирает единую ведомость из всех пригодных листов.
// Листы, на которых не распознались Description и Qty, пропускаются;
// если таких все — ErrNoUsableSheet. Порядок позиций повторяет порядок
// листов и строк источника.
func BuildBOQ(ctx context.Context, sheets []RawSheet, opts BuildOptions) ([]BOQItem, error) {
	var items []BOQItem

	for _, sheet := range sheets {
		part := buildBOQSheet(ctx, sheet, opts)
		items = append(items, part...)
	}

	if len(items) == 0 {
		return nil, ErrNoUsableSheet
	}
	return items, nil
}

func buildBOQSheet(ctx context.Context, sheet RawSheet, opts BuildOptions) []BOQItem {
	cells := dropEmpty(sheet.Cells)
	if len(cells) == 0 {
		return nil
	}

	header, data, _ := PromoteHeader(cells)
	roles := DetectRoles(header, data, false)
	if roles.Desc < 0 || roles.Qty < 0 {
		return nil // лист без обязательных колонок непригоден
	}

	var items []BOQItem
	blankNo := 0
	for _, row := range data {
		desc := cellAt(row, roles.Desc)
		unit := cellAt(row, roles.Unit)
		qty := normalization.ParseNumber(cellAt(row, roles.Qty))

		descKey := buildDescKey(ctx, desc, opts)
		if descKey == "" && qty == 0 {
			continue // заголовок раздела или пустая строка — шум
		}

		no := cellAt(row, roles.No)
		if no == "" {
			blankNo++
		}

		items = append(items, BOQItem{
			No:          no,
			Description: desc,
			DescKey:     descKey,
			Unit:        unit,
			UnitKey:     normalization.NormalizeUnit(unit),
			Qty:         qty,
			SourceSheet: sheet.Label,
		})
	}

	// Если своей нумерации нет или она в основном пустая (>70%) —
	// нумеруем сами с единицы
	if len(items) > 0 && (roles.No < 0 || float64(blankNo) > 0.7*float64(len(items))) {
		for i := range items {
			items[i].No = strconv.Itoa(i + 1)
		}
	}

	return items
}

// buildDescKey строит ключ описания, при необходимости прогоняя текст
// через переводчик. Ошибка перевода не фатальна: ключ строится по
// исходному тексту.
func buildDescKey(ctx context.Context, desc string, opts BuildOptions) string {
	text := desc
	if opts.Translator != nil && needsTranslation(desc) {
		if translated, err := opts.Translator.Translate(ctx, desc); err == nil && translated != "" {
			text = translated
		}
	}
	return normalization.NormalizeKey(text)
}

// needsTranslation истинно для текста, где есть буквы вне латиницы и
// кириллицы (например грузинский): такие описания без перевода не
// сматчатся с англоязычным RFQ
func needsTranslation(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) && !unicode.Is(unicode.Latin, r) && !unicode.Is(unicode.Cyrillic, r) {
			return true
		}
	}
	return false
}

func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
