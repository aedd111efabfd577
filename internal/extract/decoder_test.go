package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const fullURL = "https://comparador.cnmc.gob.es/facturaluz/inicio?cp=28014" +
	"&potP1=4.6&potP2=4.6" +
	"&caP1=123.5&caP2=80.2&caP3=45" +
	"&iniCon=2023-01-15&finCon=2024-01-15" +
	"&iniFac=2023-03-01&finFac=2023-03-31&fecFac=2023-04-02" +
	"&impPot=12.30&impEner=45.10&impSerAdi=3.50" +
	"&impOtrosConIE=1.20&impOtrosSinIE=0.80&dto=5.00&imp=57.90" +
	"&prPotP1=0.10&prPotP2=0.05" +
	"&prEnerP1=0.20&prEnerP2=0.15&prEnerP3=0.08" +
	"&cups=ES0021000000000000AA&tarifa=2.0TD&com=R2-001" +
	"&verde=true&finPen=2024-06-30"

func TestDecodeParameters(t *testing.T) {
	record := DecodeParameters(fullURL)

	assert.Equal(t, fullURL, record.SourceURL)
	assert.Equal(t, "28014", record.PostalCode)
	assert.Equal(t, 4.6, record.PowerP1)
	assert.Equal(t, 4.6, record.PowerP2)
	assert.Equal(t, 123.5, record.EnergyP1)
	assert.Equal(t, 80.2, record.EnergyP2)
	assert.Equal(t, 45.0, record.EnergyP3)
	assert.Equal(t, "2023-01-15", record.ContractStart)
	assert.Equal(t, "2024-01-15", record.ContractEnd)
	assert.Equal(t, "2023-03-01", record.BillingStart)
	assert.Equal(t, "2023-03-31", record.BillingEnd)
	assert.Equal(t, "2023-04-02", record.InvoiceDate)
	assert.Equal(t, 12.30, record.PowerCost)
	assert.Equal(t, 45.10, record.EnergyCost)
	assert.Equal(t, 3.50, record.ServicesCost)
	assert.Equal(t, 1.20, record.OtherCostWithTax)
	assert.Equal(t, 0.80, record.OtherCostWithoutTax)
	assert.Equal(t, 5.00, record.Discount)
	assert.Equal(t, 57.90, record.TotalAmount)
	assert.Equal(t, 0.10, record.PowerRateP1)
	assert.Equal(t, 0.05, record.PowerRateP2)
	assert.Equal(t, 0.20, record.EnergyRateP1)
	assert.Equal(t, 0.15, record.EnergyRateP2)
	assert.Equal(t, 0.08, record.EnergyRateP3)
	assert.Equal(t, "ES0021000000000000AA", record.CUPS)
	assert.Equal(t, "2.0TD", record.TariffCode)
	assert.Equal(t, "R2-001", record.MarketerCode)
	assert.True(t, record.GreenEnergy)
	assert.True(t, record.HasPermanence)
}

func TestDecodeParameters_NumericDefaults(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{
			name: "missing numeric keys",
			url:  "https://comparador.cnmc.gob.es/facturaluz/inicio?cp=08001",
		},
		{
			name: "unparseable numeric values",
			url:  "https://comparador.cnmc.gob.es/facturaluz/inicio?caP1=abc&imp=12,50&potP1=",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := DecodeParameters(tt.url)

			assert.Equal(t, 0.0, record.EnergyP1)
			assert.Equal(t, 0.0, record.TotalAmount)
			assert.Equal(t, 0.0, record.PowerP1)
			assert.Equal(t, 0.0, record.PowerCost)
		})
	}
}

func TestDecodeParameters_Booleans(t *testing.T) {
	tests := []struct {
		name          string
		url           string
		greenEnergy   bool
		hasPermanence bool
	}{
		{
			name:          "green with permanence sentinel",
			url:           "https://comparador.cnmc.gob.es/f?verde=true&finPen=0000-00-00",
			greenEnergy:   true,
			hasPermanence: false,
		},
		{
			name:          "capitalized true is not true",
			url:           "https://comparador.cnmc.gob.es/f?verde=True&finPen=2025-01-01",
			greenEnergy:   false,
			hasPermanence: true,
		},
		{
			name:          "real permanence end date",
			url:           "https://comparador.cnmc.gob.es/f?verde=false&finPen=2024-12-31",
			greenEnergy:   false,
			hasPermanence: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := DecodeParameters(tt.url)

			assert.Equal(t, tt.greenEnergy, record.GreenEnergy)
			assert.Equal(t, tt.hasPermanence, record.HasPermanence)
		})
	}
}

func TestDecodeParameters_Deterministic(t *testing.T) {
	first := DecodeParameters(fullURL)
	second := DecodeParameters(fullURL)

	assert.Equal(t, first, second)
}

func TestDecodeParameters_MalformedURL(t *testing.T) {
	record := DecodeParameters("://not a url at %%% all")

	// Decoding never fails; everything stays at its default
	assert.Equal(t, 0.0, record.EnergyP1)
	assert.Equal(t, 0.0, record.TotalAmount)
	assert.Equal(t, "", record.PostalCode)
	assert.False(t, record.GreenEnergy)
}
