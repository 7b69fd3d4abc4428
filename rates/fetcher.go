// Package rates получает курсы валют Национального банка Грузии.
// Котировки поставщиков приходят в GEL, USD и EUR вперемешку, для
// сводной таблицы их нужно приводить к одной валюте.
package rates

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/emrelibot-hash/supplypilot-bot/normalization"
)

const defaultNBGURL = "https://nbg.gov.ge/en/monetary-policy/currency"

// Rate курс валюты к лари
type Rate struct {
	Code string  // ISO-код, например USD
	Rate float64 // лари за Quantity единиц валюты
	Qty  float64 // обычно 1, для JPY и подобных 100
}

// PerUnit возвращает курс за одну единицу валюты
func (r Rate) PerUnit() float64 {
	if r.Qty <= 0 {
		return r.Rate
	}
	return r.Rate / r.Qty
}

// Fetcher загружает таблицу курсов со страницы НБГ
type Fetcher struct {
	url        string
	httpClient *http.Client
}

// NewFetcher создает загрузчик курсов. Пустой url означает
// официальную страницу НБГ.
func NewFetcher(url string) *Fetcher {
	if url == "" {
		url = defaultNBGURL
	}
	return &Fetcher{
		url: url,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Fetch загружает и разбирает таблицу курсов
func (f *Fetcher) Fetch(ctx context.Context) (map[string]Rate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rates request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; supplypilot/1.0)")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rates page status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rates HTML: %w", err)
	}

	return parseRatesDoc(doc)
}

// parseRatesDoc вытаскивает курсы из HTML-таблицы. Структура страницы
// НБГ меняется, поэтому разбор терпимый: строка считается курсом, если
// в ней есть трехбуквенный код валюты и хотя бы одно число.
func parseRatesDoc(doc *goquery.Document) (map[string]Rate, error) {
	rates := map[string]Rate{
		// лари к лари всегда 1, страница его не публикует
		"GEL": {Code: "GEL", Rate: 1, Qty: 1},
	}

	doc.Find("tr").Each(func(i int, row *goquery.Selection) {
		var cells []string
		row.Find("td, th").Each(func(j int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) < 2 {
			return
		}

		code := extractCurrencyCode(cells[0])
		if code == "" {
			return
		}

		qty := extractQuantity(cells[0])
		for _, cell := range cells[1:] {
			if v := normalization.ParseNumber(cell); v > 0 {
				rates[code] = Rate{Code: code, Rate: v, Qty: qty}
				return
			}
		}
	})

	if len(rates) <= 1 {
		return nil, fmt.Errorf("таблица курсов не найдена на странице")
	}
	return rates, nil
}

// extractCurrencyCode ищет трехбуквенный код валюты в тексте ячейки
func extractCurrencyCode(text string) string {
	for _, field := range strings.Fields(text) {
		if len(field) == 3 && isUpperAlpha(field) {
			return field
		}
	}
	return ""
}

// extractQuantity определяет количество единиц валюты в котировке
// ("100 JPY" котируется за сто единиц)
func extractQuantity(text string) float64 {
	for _, field := range strings.Fields(text) {
		if v := normalization.ParseNumber(field); v > 1 {
			return v
		}
	}
	return 1
}

func isUpperAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
