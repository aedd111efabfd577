package extract

import (
	"net/url"
	"strconv"

	"facturas/internal/model"
)

// Bills that carry no permanence clause encode this sentinel as the
// permanence end date. Anything else means a lock-in applies.
const permanenceSentinel = "0000-00-00"

// DecodeParameters decodes the query string of a comparator link into an
// ExtractedRecord. It never fails: missing or unparseable numeric values
// become 0, missing strings stay empty, and a URL that does not parse at all
// yields a record populated entirely from defaults. Partial data beats total
// loss here.
func DecodeParameters(rawURL string) model.ExtractedRecord {
	record := model.ExtractedRecord{SourceURL: rawURL}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return record
	}
	q := parsed.Query()

	record.PostalCode = q.Get("cp")

	record.PowerP1 = floatParam(q, "potP1")
	record.PowerP2 = floatParam(q, "potP2")

	record.EnergyP1 = floatParam(q, "caP1")
	record.EnergyP2 = floatParam(q, "caP2")
	record.EnergyP3 = floatParam(q, "caP3")

	record.ContractStart = q.Get("iniCon")
	record.ContractEnd = q.Get("finCon")
	record.BillingStart = q.Get("iniFac")
	record.BillingEnd = q.Get("finFac")
	record.InvoiceDate = q.Get("fecFac")

	record.PowerCost = floatParam(q, "impPot")
	record.EnergyCost = floatParam(q, "impEner")
	record.ServicesCost = floatParam(q, "impSerAdi")
	record.OtherCostWithTax = floatParam(q, "impOtrosConIE")
	record.OtherCostWithoutTax = floatParam(q, "impOtrosSinIE")
	record.Discount = floatParam(q, "dto")
	record.TotalAmount = floatParam(q, "imp")

	record.PowerRateP1 = floatParam(q, "prPotP1")
	record.PowerRateP2 = floatParam(q, "prPotP2")
	record.EnergyRateP1 = floatParam(q, "prEnerP1")
	record.EnergyRateP2 = floatParam(q, "prEnerP2")
	record.EnergyRateP3 = floatParam(q, "prEnerP3")

	record.CUPS = q.Get("cups")
	record.TariffCode = q.Get("tarifa")
	record.MarketerCode = q.Get("com")

	record.GreenEnergy = q.Get("verde") == "true"
	record.HasPermanence = q.Get("finPen") != permanenceSentinel

	return record
}

// floatParam returns the decimal value for key, or 0 when the key is missing
// or its value does not parse
func floatParam(q url.Values, key string) float64 {
	raw := q.Get(key)
	if raw == "" {
		return 0
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return value
}
