package extract

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrDocumentParse means the input bytes are not a readable PDF document
var ErrDocumentParse = errors.New("document could not be parsed")

// ErrNoQualifyingLink means the document parsed fine but no link annotation
// points at the comparator service. Expected for bills from marketers that
// do not embed the link; not a fault.
var ErrNoQualifyingLink = errors.New("no qualifying comparator link found")

// LinkExtractor finds the comparator-service link inside a PDF document.
// Implementations are pure reads over the parsed structure.
type LinkExtractor interface {
	// ExtractLink returns the first link-annotation URI, in page order, whose
	// target contains the comparator host. It returns ErrNoQualifyingLink
	// when no annotation matches and ErrDocumentParse when content is not a
	// valid PDF.
	ExtractLink(content []byte) (string, error)
}

// pdfLinkExtractor reads link annotations through pdfcpu. Pages without
// annotations and annotations without a URI action are skipped, never fatal.
type pdfLinkExtractor struct {
	host string
}

// NewPDFLinkExtractor returns a LinkExtractor recognizing URIs that contain
// the given host substring.
func NewPDFLinkExtractor(host string) LinkExtractor {
	return &pdfLinkExtractor{host: host}
}

func (e *pdfLinkExtractor) ExtractLink(content []byte) (string, error) {
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed

	pageAnnots, err := api.Annotations(bytes.NewReader(content), nil, conf)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDocumentParse, err)
	}

	// Map iteration order is not page order; walk pages ascending.
	pages := make([]int, 0, len(pageAnnots))
	for page := range pageAnnots {
		pages = append(pages, page)
	}
	sort.Ints(pages)

	for _, page := range pages {
		links, ok := pageAnnots[page][pdfmodel.AnnLink]
		if !ok {
			continue
		}

		// Annotation order within a page is not preserved by the map;
		// sort candidates so repeated runs pick the same link.
		var candidates []string
		for _, renderer := range links.Map {
			uri := linkURI(renderer)
			if uri != "" && strings.Contains(uri, e.host) {
				candidates = append(candidates, uri)
			}
		}
		if len(candidates) > 0 {
			sort.Strings(candidates)
			return candidates[0], nil
		}
	}

	return "", ErrNoQualifyingLink
}

// linkURI pulls the URI action target off a link annotation, empty when the
// annotation targets a destination instead of a URI
func linkURI(renderer pdfmodel.AnnotationRenderer) string {
	switch annot := renderer.(type) {
	case pdfmodel.LinkAnnotation:
		return annot.URI
	case *pdfmodel.LinkAnnotation:
		return annot.URI
	default:
		return ""
	}
}
