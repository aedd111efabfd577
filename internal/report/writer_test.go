package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturas/internal/model"
)

func TestHeader(t *testing.T) {
	header := Header()

	assert.Len(t, header, 30)
	assert.Equal(t, "url", header[0])
	assert.Equal(t, "postal_code", header[1])
	assert.Equal(t, "total_amount", header[18])
	assert.Equal(t, "source_file", header[29])
}

func TestWrite_RoundTrip(t *testing.T) {
	records := []model.ExtractedRecord{
		{
			SourceURL:    "https://comparador.cnmc.gob.es/f?caP1=100",
			PostalCode:   "28014",
			EnergyP1:     100,
			TotalAmount:  57.9,
			BillingStart: "2023-03-01",
			BillingEnd:   "2023-03-31",
			GreenEnergy:  true,
			SourceFile:   "march.pdf",
		},
		{
			SourceURL:  "https://comparador.cnmc.gob.es/f?caP1=80",
			PostalCode: "08001",
			EnergyP1:   80,
			SourceFile: "april.pdf",
		},
	}

	artifact := Write(records)

	reader := csv.NewReader(bytes.NewReader(artifact))
	rows, err := reader.ReadAll()
	require.NoError(t, err)

	// Header plus one row per record
	require.Len(t, rows, 3)
	assert.Equal(t, Header(), rows[0])

	for _, row := range rows[1:] {
		assert.Len(t, row, len(Header()))
	}

	first := rows[1]
	assert.Equal(t, "https://comparador.cnmc.gob.es/f?caP1=100", first[0])
	assert.Equal(t, "28014", first[1])
	assert.Equal(t, "100", first[4])
	assert.Equal(t, "57.9", first[18])
	assert.Equal(t, "2023-03-01", first[9])
	assert.Equal(t, "true", first[27])
	assert.Equal(t, "march.pdf", first[29])
}

func TestWrite_StringFieldsQuoted(t *testing.T) {
	artifact := Write([]model.ExtractedRecord{
		{PostalCode: "28014", SourceFile: "bill.pdf", EnergyP1: 42},
	})

	lines := strings.Split(strings.TrimRight(string(artifact), "\n"), "\n")
	require.Len(t, lines, 2)

	assert.Contains(t, lines[1], `"28014"`)
	assert.Contains(t, lines[1], `"bill.pdf"`)
	// Numerics are rendered bare
	assert.Contains(t, lines[1], ",42,")
	assert.NotContains(t, lines[1], `"42"`)
}

func TestWrite_HeaderForSingleRecord(t *testing.T) {
	artifact := Write([]model.ExtractedRecord{{SourceFile: "only.pdf"}})

	lines := strings.Split(string(artifact), "\n")
	assert.Equal(t, strings.Join(Header(), ","), lines[0])
}

func TestWrite_NoRecords(t *testing.T) {
	artifact := Write(nil)

	assert.Equal(t, strings.Join(Header(), ",")+"\n", string(artifact))
}
