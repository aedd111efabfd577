package model

// InputDocument is one bill handed to the pipeline: its display name plus the
// raw PDF bytes fetched from the document store. Immutable once accepted.
type InputDocument struct {
	Name    string
	Content []byte
}

// ExtractedRecord holds the tariff and consumption parameters decoded from a
// bill's comparator link. Numeric fields default to 0 when the link omits
// them; date fields are kept as the raw strings the link carried.
type ExtractedRecord struct {
	SourceURL  string `json:"url"`
	PostalCode string `json:"postal_code"`

	// Contracted power per tariff period (kW)
	PowerP1 float64 `json:"power_p1"`
	PowerP2 float64 `json:"power_p2"`

	// Energy consumption per tariff period (kWh)
	EnergyP1 float64 `json:"energy_p1"`
	EnergyP2 float64 `json:"energy_p2"`
	EnergyP3 float64 `json:"energy_p3"`

	ContractStart string `json:"contract_start"`
	ContractEnd   string `json:"contract_end"`
	BillingStart  string `json:"billing_start"`
	BillingEnd    string `json:"billing_end"`
	InvoiceDate   string `json:"invoice_date"`

	// Cost breakdown (EUR)
	PowerCost           float64 `json:"power_cost"`
	EnergyCost          float64 `json:"energy_cost"`
	ServicesCost        float64 `json:"services_cost"`
	OtherCostWithTax    float64 `json:"other_cost_with_tax"`
	OtherCostWithoutTax float64 `json:"other_cost_without_tax"`
	Discount            float64 `json:"discount"`
	TotalAmount         float64 `json:"total_amount"`

	// Contracted rates per period
	PowerRateP1  float64 `json:"power_rate_p1"`
	PowerRateP2  float64 `json:"power_rate_p2"`
	EnergyRateP1 float64 `json:"energy_rate_p1"`
	EnergyRateP2 float64 `json:"energy_rate_p2"`
	EnergyRateP3 float64 `json:"energy_rate_p3"`

	CUPS         string `json:"cups"`
	TariffCode   string `json:"tariff_code"`
	MarketerCode string `json:"marketer_code"`

	GreenEnergy   bool `json:"green_energy"`
	HasPermanence bool `json:"has_permanence"`

	// Set by the document processor, not decoded from the link
	SourceFile string `json:"source_file"`
}
