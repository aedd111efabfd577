package processor

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"facturas/internal/aws"
	"facturas/internal/extract"
	"facturas/internal/model"
)

// DocumentProcessor runs the extraction pipeline for one bill: fetch the
// bytes, locate the comparator link, decode its parameters. Every error is
// recovered into a ProcessingFailure scoped to that document; nothing
// propagates past here.
type DocumentProcessor struct {
	store     aws.FileService
	extractor extract.LinkExtractor
}

// NewDocumentProcessor creates a processor over the given collaborators
func NewDocumentProcessor(store aws.FileService, extractor extract.LinkExtractor) *DocumentProcessor {
	return &DocumentProcessor{
		store:     store,
		extractor: extractor,
	}
}

// Process turns one document reference into exactly one Result
func (p *DocumentProcessor) Process(ctx context.Context, ref model.DocumentRef) Result {
	content, err := p.store.FetchFile(ctx, ref.Key)
	if err != nil {
		log.Error().Err(err).Str("document", ref.Name).Str("key", ref.Key).Msg("Failed to fetch document")
		return FailureResult(ref.Name, fmt.Sprintf("download failed: %v", err))
	}

	uri, err := p.extractor.ExtractLink(content)
	if err != nil {
		if errors.Is(err, extract.ErrNoQualifyingLink) {
			log.Info().Str("document", ref.Name).Msg("No comparator link in document, skipping")
			return FailureResult(ref.Name, extract.ErrNoQualifyingLink.Error())
		}
		log.Error().Err(err).Str("document", ref.Name).Msg("Failed to parse document")
		return FailureResult(ref.Name, fmt.Sprintf("malformed document: %v", err))
	}

	record := extract.DecodeParameters(uri)
	record.SourceFile = ref.Name

	log.Debug().Str("document", ref.Name).Str("url", uri).Msg("Extracted comparator record")
	return SuccessResult(record)
}
