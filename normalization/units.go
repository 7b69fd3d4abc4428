package normalization

// Канонические коды единиц измерения. Варианты на трёх языках
// (английский, русский, грузинский) сводятся к одному коду, чтобы
// "шт", "pcs" и "ც" считались одной и той же единицей.
const (
	UnitPiece = "pcs"
	UnitSet   = "set"
	UnitMeter = "m"
	UnitSqm   = "sqm"
	UnitCubic = "m3"
	UnitKg    = "kg"
	UnitLps   = "l/s"
)

// unitCanonMap таблица синонимов: нормализованный вариант -> канонический код.
// Ключи уже в форме NormalizeKey, поэтому "шт.", "ც." и "sq. m" ищутся
// без точек и лишних пробелов.
var unitCanonMap = map[string]string{
	// штука
	"pc": UnitPiece, "pcs": UnitPiece, "piece": UnitPiece, "pieces": UnitPiece,
	"шт": UnitPiece, "ц": UnitPiece, "ცალი": UnitPiece,

	// комплект
	"set": UnitSet, "kit": UnitSet, "компл": UnitSet, "комплект": UnitSet,
	"კომპლ": UnitSet, "კომპლექტი": UnitSet,

	// метр
	"m": UnitMeter, "м": UnitMeter, "მ": UnitMeter, "meter": UnitMeter, "метр": UnitMeter,

	// квадратный метр ("м^2" после нормализации даёт "м 2")
	"m2": UnitSqm, "м2": UnitSqm, "მ2": UnitSqm, "sqm": UnitSqm,
	"sq m": UnitSqm, "кв м": UnitSqm, "კვ მ": UnitSqm,
	"m 2": UnitSqm, "м 2": UnitSqm, "მ 2": UnitSqm,

	// кубометр
	"m3": UnitCubic, "м3": UnitCubic, "მ3": UnitCubic,
	"cubic m": UnitCubic, "cu m": UnitCubic, "куб м": UnitCubic,
	"m 3": UnitCubic, "м 3": UnitCubic, "მ 3": UnitCubic,

	// килограмм
	"kg": UnitKg, "кг": UnitKg, "კგ": UnitKg, "kilogram": UnitKg,

	// литр в секунду (вентиляция/водоснабжение)
	"l s": UnitLps, "lps": UnitLps, "л с": UnitLps, "ლ წმ": UnitLps,
}

// NormalizeUnit приводит единицу измерения к каноническому коду.
// Неизвестная единица возвращается как её нормализованный ключ, а не
// как пустая строка: «незнакомая единица» и «единица не указана» —
// разные ситуации, и матчер должен их различать.
func NormalizeUnit(raw string) string {
	key := NormalizeKey(raw)
	if key == "" {
		return ""
	}
	if canon, ok := unitCanonMap[key]; ok {
		return canon
	}
	return key
}
