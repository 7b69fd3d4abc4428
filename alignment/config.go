package alignment

// Config настройки движка выравнивания. Порог нечёткого совпадения —
// компромисс точности и полноты, он намеренно вынесен в конфигурацию:
// в наблюдаемых документах рабочие значения лежали между 0.58 и 0.62,
// и под конкретный стиль смет порог подбирается эмпирически.
type Config struct {
	// FuzzyThreshold минимальный индекс Жаккара для нечёткого
	// совпадения описаний
	FuzzyThreshold float64

	// PrefixMinLen минимальная длина общего префикса (в рунах), при
	// которой обрезанное описание считается совпавшим
	PrefixMinLen int

	// StopTokens служебные слова, исключаемые из имён листов при
	// оценке соответствия разделов ("Summary", "Итого" и т.п. не
	// говорят о содержании раздела)
	StopTokens []string

	// UseStemming сводить словоформы токенов к основе перед
	// сравнением (рус./англ.)
	UseStemming bool
}

// DefaultConfig возвращает настройки по умолчанию
func DefaultConfig() Config {
	return Config{
		FuzzyThreshold: 0.60,
		PrefixMinLen:   24,
		StopTokens: []string{
			"summary", "total", "boq", "rfq", "offer", "sheet",
			"итого", "смета", "кп", "лист", "сводная",
		},
	}
}

// normalized дополняет нулевые поля значениями по умолчанию, чтобы
// пустой Config был пригоден к работе
func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.FuzzyThreshold <= 0 {
		c.FuzzyThreshold = def.FuzzyThreshold
	}
	if c.PrefixMinLen <= 0 {
		c.PrefixMinLen = def.PrefixMinLen
	}
	if c.StopTokens == nil {
		c.StopTokens = def.StopTokens
	}
	return c
}
