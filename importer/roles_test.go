package importer

import "testing"

func TestPromoteHeader(t *testing.T) {
	cells := [][]string{
		{"No", "Description", "Unit", "Qty"},
		{"1", "Ventilation grille 600x600", "pcs", "10"},
		{"2", "Air duct, galvanized", "m2", "120"},
	}

	header, data, promoted := PromoteHeader(cells)
	if !promoted {
		t.Fatal("строка заголовков не распознана")
	}
	if len(header) != 4 || header[1] != "Description" {
		t.Errorf("неожиданная шапка: %v", header)
	}
	if len(data) != 2 {
		t.Errorf("шапка не исключена из данных: %d строк", len(data))
	}
}

func TestPromoteHeaderRussianGeorgian(t *testing.T) {
	cells := [][]string{
		{"№", "Наименование", "Ед.", "Кол-во", "Цена"},
		{"1", "Кабель ВВГ 3х2,5", "м", "250", "4,50"},
	}
	if _, _, promoted := PromoteHeader(cells); !promoted {
		t.Error("русская шапка не распознана")
	}

	cells = [][]string{
		{"დასახელება", "ერთეული", "რაოდენობა"},
		{"სავენტილაციო ცხაური", "ც", "10"},
	}
	if _, _, promoted := PromoteHeader(cells); !promoted {
		t.Error("грузинская шапка не распознана")
	}
}

func TestPromoteHeaderDataStaysData(t *testing.T) {
	cells := [][]string{
		{"1", "Ventilation grille 600x600", "pcs", "10"},
		{"2", "Air duct, galvanized", "m2", "120"},
	}
	_, data, promoted := PromoteHeader(cells)
	if promoted {
		t.Error("строка данных ошибочно принята за шапку")
	}
	if len(data) != 2 {
		t.Errorf("данные потеряны: %d строк", len(data))
	}
}

func TestDetectRolesByName(t *testing.T) {
	header := []string{"No", "Description", "Unit", "Qty"}
	data := [][]string{
		{"1", "Grille", "pcs", "10"},
		{"2", "Duct", "m2", "120"},
	}

	roles := DetectRoles(header, data, false)
	if roles.No != 0 || roles.Desc != 1 || roles.Unit != 2 || roles.Qty != 3 {
		t.Errorf("роли определены неверно: %+v", roles)
	}
}

func TestDetectRolesContentFallback(t *testing.T) {
	// Шапки нет, колонок больше трёх: описание — самый длинный текст,
	// количество — самая «числовая» колонка
	data := [][]string{
		{"Монтаж приточной установки с обвязкой", "компл", "2", ""},
		{"Воздуховод оцинкованный d=200 мм", "м", "150", ""},
		{"Решётка вентиляционная 600х600", "шт", "12", ""},
	}

	roles := DetectRoles(nil, data, false)
	if roles.Desc != 0 {
		t.Errorf("описание: ожидалась колонка 0, получили %d", roles.Desc)
	}
	if roles.Qty != 2 {
		t.Errorf("количество: ожидалась колонка 2, получили %d", roles.Qty)
	}
}

func TestDetectRolesPositionalFallback(t *testing.T) {
	// Ничего не распознаётся по содержимому — позиционный фолбэк 0/1/2
	data := [][]string{
		{"aaa", "bbb", "ccc"},
		{"ddd", "eee", "fff"},
	}
	roles := DetectRoles(nil, data, false)
	if roles.Desc != 0 || roles.Unit != 1 || roles.Qty != 2 {
		t.Errorf("позиционный фолбэк не сработал: %+v", roles)
	}
}

func TestDetectRolesItemNumberSequence(t *testing.T) {
	data := [][]string{
		{"1", "Первая позиция с длинным описанием", "10"},
		{"2", "Вторая позиция с длинным описанием", "20"},
		{"3", "Третья позиция с длинным описанием", "30"},
		{"4", "Четвёртая позиция с длинным описанием", "40"},
		{"5", "Пятая позиция с длинным описанием", "50"},
		{"6", "Шестая позиция с длинным описанием", "60"},
		{"7", "Седьмая позиция", "70"},
		{"8", "Восьмая позиция", "80"},
		{"9", "Девятая позиция", "90"},
		{"10", "Десятая позиция", "100"},
	}
	roles := DetectRoles(nil, data, false)
	if roles.No != 0 {
		t.Errorf("колонка номера не найдена по последовательности: %+v", roles)
	}
	if roles.Qty == 0 {
		t.Error("колонка номера ошибочно принята за количество")
	}
}

func TestDetectRolesQtyIgnoresAmount(t *testing.T) {
	header := []string{"Description", "Qty", "Total"}
	data := [][]string{
		{"Grille", "10", "125"},
		{"Duct", "120", "1500"},
	}
	roles := DetectRoles(header, data, false)
	if roles.Qty != 1 {
		t.Errorf("количество должно быть колонкой 1, не итогом: %+v", roles)
	}
}

func TestDetectRolesPriceFromAmount(t *testing.T) {
	header := []string{"Description", "Qty", "Amount"}
	data := [][]string{
		{"Grille", "10", "125"},
		{"Duct", "20", "300"},
	}
	roles := DetectRoles(header, data, true)
	if !roles.PriceFromAmount {
		t.Errorf("цена должна синтезироваться из Amount/Qty: %+v", roles)
	}
	if roles.Amount != 2 || roles.Qty != 1 {
		t.Errorf("роли Amount/Qty определены неверно: %+v", roles)
	}
}

func TestDetectRolesPriceByName(t *testing.T) {
	header := []string{"Description", "Unit", "Unit Price"}
	data := [][]string{
		{"Grille", "pcs", "12.5"},
	}
	roles := DetectRoles(header, data, true)
	if roles.Price != 2 {
		t.Errorf("цена по имени не найдена: %+v", roles)
	}
}

func TestLooksLikeSequenceTolerance(t *testing.T) {
	col := func(vals ...string) [][]string {
		rows := make([][]string, len(vals))
		for i, v := range vals {
			rows[i] = []string{v}
		}
		return rows
	}

	// Одна мусорная ячейка из двадцати укладывается в 10-процентный допуск
	almost := col("1", "2", "3", "4", "5", "6", "7", "8", "9", "10",
		"11", "12", "13", "14", "15", "16", "17", "18", "19", "-")
	if !looksLikeSequence(almost, 0) {
		t.Error("одна мусорная ячейка не должна отменять нумерацию")
	}

	// Повтор номера и шаг назад — в пределах ±1
	wobble := col("1", "2", "3", "3", "2", "3", "4", "5", "6", "7")
	if !looksLikeSequence(wobble, 0) {
		t.Error("повтор и откат на единицу — всё ещё нумерация")
	}

	// Сплошные пропуски: каждая разность равна двум
	skips := col("1", "3", "5", "7", "9")
	if looksLikeSequence(skips, 0) {
		t.Error("шаг 2 на всей колонке — это не нумерация позиций")
	}

	// Мусора слишком много для допуска
	noisy := col("1", "2", "x", "y", "z", "3", "4", "w", "5", "6")
	if looksLikeSequence(noisy, 0) {
		t.Error("четыре мусорные ячейки из десяти превышают допуск")
	}
}

func TestDetectRolesNeverErrors(t *testing.T) {
	// Детектор всегда возвращает результат, пусть и с -1
	roles := DetectRoles(nil, nil, true)
	if roles.Desc != -1 && roles.Qty != -1 {
		t.Errorf("пустая таблица должна давать пустые роли: %+v", roles)
	}
	_ = DetectRoles([]string{""}, [][]string{{""}}, false)
}
