// Package report serializes extracted records into the downloadable CSV
// artifact. The artifact contract fixes the column order and requires string
// fields to be double-quoted; embedded quotes and commas are deliberately not
// escaped, which is a documented limitation of the format.
package report

import (
	"bytes"
	"strconv"

	"facturas/internal/model"
)

type column struct {
	name   string
	value  func(r model.ExtractedRecord) string
	quoted bool
}

func str(get func(r model.ExtractedRecord) string) func(r model.ExtractedRecord) string {
	return get
}

func num(get func(r model.ExtractedRecord) float64) func(r model.ExtractedRecord) string {
	return func(r model.ExtractedRecord) string {
		return strconv.FormatFloat(get(r), 'f', -1, 64)
	}
}

func boolean(get func(r model.ExtractedRecord) bool) func(r model.ExtractedRecord) string {
	return func(r model.ExtractedRecord) string {
		return strconv.FormatBool(get(r))
	}
}

// columns fixes the header and the per-row field order. Every row renders
// every column; no record may omit a field present in the header.
var columns = []column{
	{"url", str(func(r model.ExtractedRecord) string { return r.SourceURL }), true},
	{"postal_code", str(func(r model.ExtractedRecord) string { return r.PostalCode }), true},
	{"power_p1", num(func(r model.ExtractedRecord) float64 { return r.PowerP1 }), false},
	{"power_p2", num(func(r model.ExtractedRecord) float64 { return r.PowerP2 }), false},
	{"energy_p1", num(func(r model.ExtractedRecord) float64 { return r.EnergyP1 }), false},
	{"energy_p2", num(func(r model.ExtractedRecord) float64 { return r.EnergyP2 }), false},
	{"energy_p3", num(func(r model.ExtractedRecord) float64 { return r.EnergyP3 }), false},
	{"contract_start", str(func(r model.ExtractedRecord) string { return r.ContractStart }), true},
	{"contract_end", str(func(r model.ExtractedRecord) string { return r.ContractEnd }), true},
	{"billing_start", str(func(r model.ExtractedRecord) string { return r.BillingStart }), true},
	{"billing_end", str(func(r model.ExtractedRecord) string { return r.BillingEnd }), true},
	{"invoice_date", str(func(r model.ExtractedRecord) string { return r.InvoiceDate }), true},
	{"power_cost", num(func(r model.ExtractedRecord) float64 { return r.PowerCost }), false},
	{"energy_cost", num(func(r model.ExtractedRecord) float64 { return r.EnergyCost }), false},
	{"services_cost", num(func(r model.ExtractedRecord) float64 { return r.ServicesCost }), false},
	{"other_cost_with_tax", num(func(r model.ExtractedRecord) float64 { return r.OtherCostWithTax }), false},
	{"other_cost_without_tax", num(func(r model.ExtractedRecord) float64 { return r.OtherCostWithoutTax }), false},
	{"discount", num(func(r model.ExtractedRecord) float64 { return r.Discount }), false},
	{"total_amount", num(func(r model.ExtractedRecord) float64 { return r.TotalAmount }), false},
	{"power_rate_p1", num(func(r model.ExtractedRecord) float64 { return r.PowerRateP1 }), false},
	{"power_rate_p2", num(func(r model.ExtractedRecord) float64 { return r.PowerRateP2 }), false},
	{"energy_rate_p1", num(func(r model.ExtractedRecord) float64 { return r.EnergyRateP1 }), false},
	{"energy_rate_p2", num(func(r model.ExtractedRecord) float64 { return r.EnergyRateP2 }), false},
	{"energy_rate_p3", num(func(r model.ExtractedRecord) float64 { return r.EnergyRateP3 }), false},
	{"cups", str(func(r model.ExtractedRecord) string { return r.CUPS }), true},
	{"tariff_code", str(func(r model.ExtractedRecord) string { return r.TariffCode }), true},
	{"marketer_code", str(func(r model.ExtractedRecord) string { return r.MarketerCode }), true},
	{"green_energy", boolean(func(r model.ExtractedRecord) bool { return r.GreenEnergy }), false},
	{"has_permanence", boolean(func(r model.ExtractedRecord) bool { return r.HasPermanence }), false},
	{"source_file", str(func(r model.ExtractedRecord) string { return r.SourceFile }), true},
}

// Header returns the column names in artifact order
func Header() []string {
	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = col.name
	}
	return names
}

// Write renders the records into the CSV artifact bytes. A header row is
// always present, even for a single-record batch. Row order follows the
// input slice, which is batch completion order.
func Write(records []model.ExtractedRecord) []byte {
	var buf bytes.Buffer

	for i, col := range columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(col.name)
	}
	buf.WriteByte('\n')

	for _, record := range records {
		for i, col := range columns {
			if i > 0 {
				buf.WriteByte(',')
			}
			if col.quoted {
				buf.WriteByte('"')
				buf.WriteString(col.value(record))
				buf.WriteByte('"')
			} else {
				buf.WriteString(col.value(record))
			}
		}
		buf.WriteByte('\n')
	}

	return buf.Bytes()
}
