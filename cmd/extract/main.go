// Offline extraction tool: runs the comparator-link pipeline over local PDF
// files and prints the CSV report to stdout. Useful for checking a bill
// without the service stack.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"facturas/internal/extract"
	"facturas/internal/model"
	"facturas/internal/processor"
	"facturas/internal/report"
)

const comparatorHost = "comparador.cnmc.gob.es"

// localStore satisfies the document store contract over the filesystem
type localStore struct{}

func (localStore) FetchFile(ctx context.Context, key string) ([]byte, error) {
	return os.ReadFile(key)
}

func (localStore) UploadFile(ctx context.Context, key string, file io.Reader) (string, error) {
	return "", fmt.Errorf("upload not supported by the local store")
}

func (localStore) TestConnection(ctx context.Context) error {
	return nil
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: extract <bill.pdf> [bill.pdf ...]")
		os.Exit(1)
	}

	var docs []model.DocumentRef
	for _, path := range os.Args[1:] {
		docs = append(docs, model.DocumentRef{
			Name: filepath.Base(path),
			Key:  path,
		})
	}

	extractor := extract.NewPDFLinkExtractor(comparatorHost)
	pipeline := processor.NewDocumentProcessor(localStore{}, extractor)
	coordinator := processor.NewBatchCoordinator(pipeline)

	outcome, err := coordinator.Run(context.Background(), docs)
	if err != nil {
		log.Fatal().Err(err).Msg("Extraction produced no usable data")
	}

	for _, failure := range outcome.Failures {
		log.Warn().Str("document", failure.Document).Str("reason", failure.Reason).Msg("Document excluded")
	}

	log.Info().
		Int("files", outcome.Stats.FilesProcessed).
		Float64("totalAmount", outcome.Stats.TotalAmount).
		Float64("averageAmount", outcome.Stats.AverageAmount).
		Msg("Extraction summary")

	os.Stdout.Write(report.Write(outcome.Records))
}
