package normalization

import "testing"

func TestNormalizeKey(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected string
	}{
		{"латиница с регистром", "Ventilation Grille", "ventilation grille"},
		{"знак умножения и x дают один ключ", "Ventilation Grille 600×600", "ventilation grille 600 600"},
		{"размер через x", "Ventilation grille 600x600", "ventilation grille 600 600"},
		{"размер через русскую х", "Решётка 600х600", "решетка 600 600"},
		{"тройной размер", "Короб 600x600x20", "короб 600 600 20"},
		{"скобки выбрасываются", "Кабель ВВГ (см. примечание 3)", "кабель ввг"},
		{"пунктуация в пробелы", "Труба, сталь; d=50", "труба сталь d 50"},
		{"грузинский", "სავენტილაციო ცხაური", "სავენტილაციო ცხაური"},
		{"лишние пробелы", "  насос   циркуляционный  ", "насос циркуляционный"},
		{"пустая строка", "", ""},
		{"только пунктуация", "---***---", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeKey(tc.raw)
			if got != tc.expected {
				t.Errorf("NormalizeKey(%q) = %q, ожидалось %q", tc.raw, got, tc.expected)
			}
		})
	}
}

func TestNormalizeKeyDeterministic(t *testing.T) {
	raw := "Щит распределительный ЩРН-12 (IP31)"
	first := NormalizeKey(raw)
	for i := 0; i < 10; i++ {
		if got := NormalizeKey(raw); got != first {
			t.Fatalf("NormalizeKey недетерминирован: %q != %q", got, first)
		}
	}
}

func TestSheetKey(t *testing.T) {
	long := "Ventilation and air conditioning works, building A, floor 2"
	key := SheetKey(long)
	if len([]rune(key)) > sheetKeyMaxLen {
		t.Errorf("SheetKey длиннее %d символов: %q", sheetKeyMaxLen, key)
	}
	if key == "" {
		t.Error("SheetKey вернул пустой ключ для непустого имени")
	}

	if got := SheetKey("HVAC"); got != "hvac" {
		t.Errorf("SheetKey(HVAC) = %q, ожидалось %q", got, "hvac")
	}
}
