package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/emrelibot-hash/supplypilot-bot/alignment"
	"github.com/emrelibot-hash/supplypilot-bot/importer"
)

func sampleTable() *alignment.ComparisonTable {
	boq := []importer.BOQItem{{
		No: "1", Description: "Ventilation grille 600x600",
		DescKey: "ventilation grille 600 600",
		Unit:    "pcs", UnitKey: "pcs", Qty: 10, SourceSheet: "HVAC",
	}}
	suppliers := map[string][]importer.RFQItem{
		"Alpha": {{
			Description: "Ventilation grille 600x600",
			DescKey:     "ventilation grille 600 600",
			Unit:        "pcs", UnitKey: "pcs", UnitPrice: 12.5, SourceSheet: "HVAC",
		}},
		"Beta": nil,
	}
	return alignment.Align(boq, suppliers, alignment.Config{})
}

func TestHeaderLayout(t *testing.T) {
	header := Header(sampleTable())
	want := []string{
		"No", "Description", "Unit", "Qty",
		"Alpha: Unit Price", "Alpha: Total", "Alpha: Match", "Alpha: Notes",
		"Beta: Unit Price", "Beta: Total", "Beta: Match", "Beta: Notes",
	}
	require.Equal(t, want, header)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTable()))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	row := records[1]
	require.Equal(t, "1", row[0])
	require.Equal(t, "12.5", row[4])
	require.Equal(t, "125", row[5])
	require.Equal(t, "OK", row[6])
	// Колонка отсутствующего поставщика заполнена, а не пропущена
	require.Equal(t, "0", row[8])
	require.Equal(t, "No RFQ", row[11])
}

func TestWriteXLSXRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleTable()))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Ventilation grille 600x600", rows[1][1])
	require.Equal(t, "12.5", rows[1][4])
}
