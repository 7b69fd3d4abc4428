package rates

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Source источник курсов валют
type Source interface {
	Fetch(ctx context.Context) (map[string]Rate, error)
}

// Cache кэш курсов с TTL. Курс обновляется лениво при обращении:
// фонового обновления нет, устаревшие данные отдаются только когда
// повторная загрузка не удалась.
type Cache struct {
	source Source
	ttl    time.Duration

	mu        sync.Mutex
	rates     map[string]Rate
	fetchedAt time.Time
}

// NewCache оборачивает источник курсов кэшем с заданным TTL
func NewCache(source Source, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{source: source, ttl: ttl}
}

// Get возвращает курс валюты, при необходимости обновляя кэш
func (c *Cache) Get(ctx context.Context, code string) (Rate, error) {
	rates, err := c.snapshot(ctx)
	if err != nil {
		return Rate{}, err
	}
	rate, ok := rates[code]
	if !ok {
		return Rate{}, fmt.Errorf("курс для %s не найден", code)
	}
	return rate, nil
}

// Convert переводит сумму из одной валюты в другую через лари
func (c *Cache) Convert(ctx context.Context, amount float64, from, to string) (float64, error) {
	if from == to {
		return amount, nil
	}
	fromRate, err := c.Get(ctx, from)
	if err != nil {
		return 0, err
	}
	toRate, err := c.Get(ctx, to)
	if err != nil {
		return 0, err
	}
	if toRate.PerUnit() == 0 {
		return 0, fmt.Errorf("нулевой курс для %s", to)
	}
	return amount * fromRate.PerUnit() / toRate.PerUnit(), nil
}

// snapshot возвращает актуальную таблицу курсов
func (c *Cache) snapshot(ctx context.Context) (map[string]Rate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rates != nil && time.Since(c.fetchedAt) < c.ttl {
		return c.rates, nil
	}

	fresh, err := c.source.Fetch(ctx)
	if err != nil {
		// отдаем устаревшие курсы, если они есть: для сводной
		// таблицы вчерашний курс лучше отказа
		if c.rates != nil {
			return c.rates, nil
		}
		return nil, err
	}

	c.rates = fresh
	c.fetchedAt = time.Now()
	return c.rates, nil
}
