package translate

import "context"

// Translator внешняя способность перевода текста. Ядро сравнения
// работает и без неё (с пониженной полнотой межъязыкового матчинга),
// поэтому провайдер не навязывается: боевой вариант — HTTP-клиент к
// OpenAI-совместимому API, в тестах и по умолчанию — Identity.
type Translator interface {
	// Translate возвращает перевод текста на целевой язык пайплайна.
	// Реализация обязана быть безопасной для конкурентных вызовов.
	Translate(ctx context.Context, text string) (string, error)
}

// Identity переводчик-заглушка: возвращает текст без изменений.
// Используется, когда перевод не настроен.
type Identity struct{}

// Translate возвращает входной текст как есть
func (Identity) Translate(_ context.Context, text string) (string, error) {
	return text, nil
}
