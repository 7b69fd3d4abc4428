// Одноразовое сравнение без сервера: BOQ и файлы поставщиков с диска,
// результат в xlsx или csv.
//
// Использование:
//
//	compare -boq boq.xlsx -quote "Acme=acme.pdf" -quote "Delta=delta.xlsx" -out result.xlsx
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/emrelibot-hash/supplypilot-bot/alignment"
	"github.com/emrelibot-hash/supplypilot-bot/export"
	"github.com/emrelibot-hash/supplypilot-bot/importer"
	"github.com/emrelibot-hash/supplypilot-bot/translate"
)

// quoteFlags накапливает повторяющиеся -quote Supplier=path
type quoteFlags map[string]string

func (q quoteFlags) String() string { return fmt.Sprint(map[string]string(q)) }

func (q quoteFlags) Set(value string) error {
	name, path, ok := strings.Cut(value, "=")
	if !ok || strings.TrimSpace(name) == "" || strings.TrimSpace(path) == "" {
		return fmt.Errorf("ожидается формат Supplier=path, получено %q", value)
	}
	q[strings.TrimSpace(name)] = strings.TrimSpace(path)
	return nil
}

func main() {
	var (
		boqPath   = flag.String("boq", "", "файл BOQ (xlsx)")
		outPath   = flag.String("out", "result.xlsx", "файл результата (.xlsx или .csv)")
		threshold = flag.Float64("threshold", 0.60, "порог нечеткого совпадения (0..1]")
		quotes    = quoteFlags{}
	)
	flag.Var(quotes, "quote", "предложение поставщика в формате Supplier=path (повторяемый)")
	flag.Parse()

	if *boqPath == "" || len(quotes) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()
	opts := importer.BuildOptions{Translator: translate.Identity{}}

	boqData, err := os.ReadFile(*boqPath)
	if err != nil {
		log.Fatalf("Не удалось прочитать BOQ: %v", err)
	}
	sheets, err := importer.ReadWorkbook(boqData)
	if err != nil {
		log.Fatalf("Не удалось открыть BOQ: %v", err)
	}
	boq, err := importer.BuildBOQ(ctx, sheets, opts)
	if err != nil {
		log.Fatalf("Не удалось разобрать BOQ: %v", err)
	}
	log.Printf("BOQ: %d позиций из %s", len(boq), *boqPath)

	supplierQuotes := make(map[string][]importer.RFQItem, len(quotes))
	for supplier, path := range quotes {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("Не удалось прочитать %s: %v", path, err)
		}
		items, err := importer.BuildRFQ(ctx, data, opts)
		if err != nil {
			if errors.Is(err, importer.ErrNoPriceTable) {
				log.Printf("Предупреждение: %s (%s) без ценовых таблиц, колонка будет пустой", supplier, path)
				supplierQuotes[supplier] = nil
				continue
			}
			log.Fatalf("Не удалось разобрать %s: %v", path, err)
		}
		supplierQuotes[supplier] = items
		log.Printf("%s: %d строк с ценами", supplier, len(items))
	}

	cfg := alignment.DefaultConfig()
	cfg.FuzzyThreshold = *threshold
	table := alignment.Align(boq, supplierQuotes, cfg)

	out, err := os.Create(*outPath)
	if err != nil {
		log.Fatalf("Не удалось создать %s: %v", *outPath, err)
	}
	defer out.Close()

	if strings.HasSuffix(strings.ToLower(*outPath), ".csv") {
		err = export.WriteCSV(out, table)
	} else {
		err = export.WriteXLSX(out, table)
	}
	if err != nil {
		log.Fatalf("Не удалось записать результат: %v", err)
	}

	log.Printf("Готово: %d строк, %d поставщиков → %s",
		len(table.Rows), len(table.Suppliers), *outPath)
}
