package server

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/emrelibot-hash/supplypilot-bot/alignment"
	"github.com/emrelibot-hash/supplypilot-bot/importer"
	apperrors "github.com/emrelibot-hash/supplypilot-bot/server/errors"
)

// runComparison читает сохраненные файлы проекта, разбирает их и
// строит сводную таблицу. Предложения поставщиков разбираются
// параллельно: каждый файл независим, а PDF-разбор не быстрый.
// Нечитаемый файл поставщика не валит сравнение, поставщик попадает в
// таблицу с пустой колонкой и предупреждением. Непустой currency
// приводит цены с валютным символом к этой валюте по курсам НБГ.
func (s *Server) runComparison(ctx context.Context, projectID, currency string) (*alignment.ComparisonTable, []string, error) {
	boqData, err := s.db.GetBOQData(projectID)
	if err != nil {
		return nil, nil, apperrors.NewInternalError("failed to load boq", err)
	}
	if boqData == nil {
		return nil, nil, apperrors.NewNotFoundError("проект не найден", nil)
	}

	sheets, err := importer.ReadWorkbook(boqData)
	if err != nil {
		return nil, nil, apperrors.NewUnprocessableError("не удалось прочитать BOQ", err)
	}
	boq, err := importer.BuildBOQ(ctx, sheets, importer.BuildOptions{Translator: s.translator})
	if err != nil {
		return nil, nil, apperrors.NewUnprocessableError("не удалось разобрать BOQ", err)
	}

	supplierData, err := s.db.GetSupplierData(projectID)
	if err != nil {
		return nil, nil, apperrors.NewInternalError("failed to load supplier files", err)
	}
	if len(supplierData) == 0 {
		return nil, nil, apperrors.NewValidationError("не загружено ни одного предложения поставщика", nil)
	}

	quotes, warnings := s.parseQuotes(ctx, supplierData)

	if currency != "" {
		warnings = append(warnings, s.convertQuotes(ctx, quotes, currency)...)
	}

	table := alignment.Align(boq, quotes, s.alignCfg)
	return table, warnings, nil
}

// convertQuotes приводит цены с распознанной валютой к целевой.
// Цена без валютного символа считается уже выраженной в целевой
// валюте. Недоступный курс оставляет цену как есть и добавляет
// предупреждение.
func (s *Server) convertQuotes(ctx context.Context, quotes map[string][]importer.RFQItem, target string) []string {
	var warnings []string
	warned := make(map[string]bool)

	for supplier, items := range quotes {
		for i := range items {
			from := items[i].Currency
			if from == "" || from == target {
				continue
			}
			converted, err := s.rates.Convert(ctx, items[i].UnitPrice, from, target)
			if err != nil {
				if !warned[from] {
					warned[from] = true
					warnings = append(warnings,
						fmt.Sprintf("курс %s→%s недоступен, цены оставлены без пересчета: %v", from, target, err))
				}
				LogWarn(ctx, "currency conversion failed",
					"supplier", supplier, "from", from, "to", target, "error", err)
				continue
			}
			items[i].UnitPrice = converted
			items[i].Currency = target
		}
	}

	sort.Strings(warnings)
	return warnings
}

// parseQuotes разбирает файлы поставщиков, по горутине на файл.
// Поставщик с нечитаемым файлом остается в результате с nil-позициями.
func (s *Server) parseQuotes(ctx context.Context, supplierData map[string][]byte) (map[string][]importer.RFQItem, []string) {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		quotes   = make(map[string][]importer.RFQItem, len(supplierData))
		warnings []string
	)

	for supplier, data := range supplierData {
		wg.Add(1)
		go func(supplier string, data []byte) {
			defer wg.Done()

			items, err := importer.BuildRFQ(ctx, data, importer.BuildOptions{Translator: s.translator})

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				quotes[supplier] = nil
				if errors.Is(err, importer.ErrNoPriceTable) {
					warnings = append(warnings,
						fmt.Sprintf("%s: в файле не найдено таблицы с ценами", supplier))
				} else {
					warnings = append(warnings,
						fmt.Sprintf("%s: файл не разобрался: %v", supplier, err))
				}
				LogWarn(ctx, "supplier quote unusable", "supplier", supplier, "error", err)
				return
			}
			quotes[supplier] = items
		}(supplier, data)
	}
	wg.Wait()

	sort.Strings(warnings)
	return quotes, warnings
}
