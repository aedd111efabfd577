package processor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturas/internal/model"
)

func TestBatchCoordinator_Run(t *testing.T) {
	store := &fakeStore{files: map[string][]byte{
		"bills/a.pdf": []byte("a"),
		"bills/b.pdf": []byte("b"),
		"bills/c.pdf": []byte("c"),
	}}
	extractor := &fakeExtractor{
		links: map[string]string{
			"a": "https://comparador.cnmc.gob.es/f?caP1=100&imp=50&iniFac=2023-03-01&finFac=2023-03-31",
			"b": "https://comparador.cnmc.gob.es/f?caP1=100&imp=50&iniFac=2023-02-01&finFac=2023-02-28",
		},
	}
	coordinator := NewBatchCoordinator(NewDocumentProcessor(store, extractor))

	docs := []model.DocumentRef{
		{Name: "a.pdf", Key: "bills/a.pdf"},
		{Name: "b.pdf", Key: "bills/b.pdf"},
		{Name: "c.pdf", Key: "bills/c.pdf"},
	}

	outcome, err := coordinator.Run(context.Background(), docs)
	require.NoError(t, err)

	// Every document settles into exactly one arm
	assert.Equal(t, len(docs), len(outcome.Records)+len(outcome.Failures))
	assert.Len(t, outcome.Records, 2)
	assert.Len(t, outcome.Failures, 1)
	assert.Equal(t, "c.pdf", outcome.Failures[0].Document)

	assert.Equal(t, 2, outcome.Stats.FilesProcessed)
	assert.Equal(t, 200.0, outcome.Stats.TotalConsumption)
	assert.Equal(t, 100.0, outcome.Stats.TotalAmount)
	assert.Equal(t, 50.0, outcome.Stats.AverageAmount)
	assert.Equal(t, "2023-02-01", outcome.Stats.EarliestBillingStart)
	assert.Equal(t, "2023-03-31", outcome.Stats.LatestBillingEnd)

	// Completion order is not guaranteed; check membership, not position
	sources := []string{outcome.Records[0].SourceFile, outcome.Records[1].SourceFile}
	assert.ElementsMatch(t, []string{"a.pdf", "b.pdf"}, sources)
}

func TestBatchCoordinator_Run_NoValidData(t *testing.T) {
	store := &fakeStore{files: map[string][]byte{
		"bills/plain.pdf": []byte("plain"),
	}}
	extractor := &fakeExtractor{}
	coordinator := NewBatchCoordinator(NewDocumentProcessor(store, extractor))

	outcome, err := coordinator.Run(context.Background(), []model.DocumentRef{
		{Name: "plain.pdf", Key: "bills/plain.pdf"},
	})

	require.ErrorIs(t, err, ErrNoValidData)
	assert.Nil(t, outcome)
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name    string
		records []model.ExtractedRecord
		want    model.SummaryStats
	}{
		{
			name: "single record",
			records: []model.ExtractedRecord{
				{EnergyP1: 120, TotalAmount: 60, BillingStart: "2023-01-01", BillingEnd: "2023-01-31"},
			},
			want: model.SummaryStats{
				FilesProcessed:       1,
				TotalConsumption:     120,
				TotalAmount:          60,
				AverageAmount:        60,
				EarliestBillingStart: "2023-01-01",
				LatestBillingEnd:     "2023-01-31",
			},
		},
		{
			name: "empty billing dates are not the minimum",
			records: []model.ExtractedRecord{
				{EnergyP1: 10, TotalAmount: 5, BillingStart: "", BillingEnd: ""},
				{EnergyP1: 30, TotalAmount: 15, BillingStart: "2023-06-01", BillingEnd: "2023-06-30"},
			},
			want: model.SummaryStats{
				FilesProcessed:       2,
				TotalConsumption:     40,
				TotalAmount:          20,
				AverageAmount:        10,
				EarliestBillingStart: "2023-06-01",
				LatestBillingEnd:     "2023-06-30",
			},
		},
		{
			name: "dates compare lexicographically",
			records: []model.ExtractedRecord{
				{BillingStart: "2023-10-01", BillingEnd: "2023-10-31"},
				{BillingStart: "2023-09-01", BillingEnd: "2023-11-30"},
			},
			want: model.SummaryStats{
				FilesProcessed:       2,
				EarliestBillingStart: "2023-09-01",
				LatestBillingEnd:     "2023-11-30",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(tt.records))
		})
	}
}
