package importer

import (
	"context"
	"fmt"

	"github.com/emrelibot-hash/supplypilot-bot/normalization"
)

// BuildRFQ строит позиции коммерческого предложения одного поставщика
// из сырых байт документа. Вид документа определяется сниффингом;
// Excel, не прочитавшийся как Excel, пробуется как PDF — встречаются
// файлы с чужим расширением.
func BuildRFQ(ctx context.Context, data []byte, opts BuildOptions) ([]RFQItem, error) {
	var sheets []RawSheet
	var err error

	switch DetectKind(data) {
	case KindPDF:
		sheets, err = ReadPDFTables(data)
	case KindSpreadsheet:
		sheets, err = ReadWorkbook(data)
		if err != nil {
			sheets, err = ReadPDFTables(data)
		}
	default:
		return nil, fmt.Errorf("%w: неизвестный формат документа", ErrNoPriceTable)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoPriceTable, err)
	}

	return BuildRFQFromSheets(ctx, sheets, opts)
}

// BuildRFQFromSheets строит позиции RFQ из уже прочитанных листов.
// Остаются только строки с положительной ценой; листы без ценовой
// таблицы пропускаются, и лишь полное отсутствие пригодных листов
// считается ошибкой ErrNoPriceTable.
func BuildRFQFromSheets(ctx context.Context, sheets []RawSheet, opts BuildOptions) ([]RFQItem, error) {
	var items []RFQItem

	for _, sheet := range sheets {
		part := buildRFQSheet(ctx, sheet, opts)
		items = append(items, part...)
	}

	if len(items) == 0 {
		return nil, ErrNoPriceTable
	}
	return items, nil
}

func buildRFQSheet(ctx context.Context, sheet RawSheet, opts BuildOptions) []RFQItem {
	cells := dropEmpty(sheet.Cells)
	if len(cells) == 0 {
		return nil
	}

	header, data, promoted := PromoteHeader(cells)
	roles := DetectRoles(header, data, true)

	// Без шапки Description берём из первой колонки — как в исходных
	// предложениях, где заголовков часто нет вовсе
	if roles.Desc < 0 && !promoted {
		roles.Desc = 0
	}
	if roles.Desc < 0 || (roles.Price < 0 && !roles.PriceFromAmount) {
		return nil
	}

	var items []RFQItem
	for _, row := range data {
		desc := cellAt(row, roles.Desc)
		unit := cellAt(row, roles.Unit)

		price := 0.0
		currency := ""
		if roles.PriceFromAmount {
			amountCell := cellAt(row, roles.Amount)
			amount := normalization.ParseNumber(amountCell)
			qty := normalization.ParseNumber(cellAt(row, roles.Qty))
			if qty > 0 {
				price = amount / qty
			}
			currency = normalization.DetectCurrency(amountCell)
		} else {
			priceCell := cellAt(row, roles.Price)
			price = normalization.ParseNumber(priceCell)
			currency = normalization.DetectCurrency(priceCell)
		}
		if price <= 0 {
			continue // строка без цены — не данные о предложении
		}

		items = append(items, RFQItem{
			Description: desc,
			DescKey:     buildDescKey(ctx, desc, opts),
			Unit:        unit,
			UnitKey:     normalization.NormalizeUnit(unit),
			UnitPrice:   price,
			Currency:    currency,
			SourceSheet: sheet.Label,
		})
	}

	return items
}
