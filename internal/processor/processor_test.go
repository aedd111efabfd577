package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturas/internal/extract"
	"facturas/internal/model"
)

// fakeStore serves document bytes from a map, erroring for unknown keys
type fakeStore struct {
	files map[string][]byte
}

func (s *fakeStore) FetchFile(ctx context.Context, key string) ([]byte, error) {
	content, ok := s.files[key]
	if !ok {
		return nil, fmt.Errorf("fetch %s: no such object", key)
	}
	return content, nil
}

func (s *fakeStore) UploadFile(ctx context.Context, key string, file io.Reader) (string, error) {
	if s.files == nil {
		s.files = map[string][]byte{}
	}
	content, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	s.files[key] = content
	return "https://store.test/" + key, nil
}

func (s *fakeStore) TestConnection(ctx context.Context) error { return nil }

// fakeExtractor maps document content to a URI or an extraction error
type fakeExtractor struct {
	links map[string]string
	errs  map[string]error
}

func (e *fakeExtractor) ExtractLink(content []byte) (string, error) {
	if err, ok := e.errs[string(content)]; ok {
		return "", err
	}
	if uri, ok := e.links[string(content)]; ok {
		return uri, nil
	}
	return "", extract.ErrNoQualifyingLink
}

func TestDocumentProcessor_Process(t *testing.T) {
	store := &fakeStore{files: map[string][]byte{
		"bills/march.pdf":  []byte("march"),
		"bills/broken.pdf": []byte("broken"),
		"bills/plain.pdf":  []byte("plain"),
	}}
	extractor := &fakeExtractor{
		links: map[string]string{
			"march": "https://comparador.cnmc.gob.es/f?caP1=100&imp=50&cp=28014",
		},
		errs: map[string]error{
			"broken": fmt.Errorf("%w: xref table damaged", extract.ErrDocumentParse),
		},
	}
	p := NewDocumentProcessor(store, extractor)

	t.Run("qualifying link yields a record", func(t *testing.T) {
		result := p.Process(context.Background(), model.DocumentRef{Name: "march.pdf", Key: "bills/march.pdf"})

		require.True(t, result.Succeeded())
		assert.Nil(t, result.Failure)
		assert.Equal(t, 100.0, result.Record.EnergyP1)
		assert.Equal(t, 50.0, result.Record.TotalAmount)
		assert.Equal(t, "march.pdf", result.Record.SourceFile)
	})

	t.Run("no qualifying link yields a failure, never a guessed record", func(t *testing.T) {
		result := p.Process(context.Background(), model.DocumentRef{Name: "plain.pdf", Key: "bills/plain.pdf"})

		require.False(t, result.Succeeded())
		assert.Nil(t, result.Record)
		assert.Equal(t, "plain.pdf", result.Failure.Document)
		assert.Contains(t, result.Failure.Reason, "no qualifying comparator link")
	})

	t.Run("parse failure is fatal for the document only", func(t *testing.T) {
		result := p.Process(context.Background(), model.DocumentRef{Name: "broken.pdf", Key: "bills/broken.pdf"})

		require.False(t, result.Succeeded())
		assert.Contains(t, result.Failure.Reason, "malformed document")
	})

	t.Run("fetch failure becomes a download failure", func(t *testing.T) {
		result := p.Process(context.Background(), model.DocumentRef{Name: "ghost.pdf", Key: "bills/ghost.pdf"})

		require.False(t, result.Succeeded())
		assert.Contains(t, result.Failure.Reason, "download failed")
	})
}

func TestResultVariant(t *testing.T) {
	success := SuccessResult(model.ExtractedRecord{SourceFile: "a.pdf"})
	failure := FailureResult("b.pdf", "reason")

	assert.True(t, success.Succeeded())
	assert.Nil(t, success.Failure)
	assert.False(t, failure.Succeeded())
	assert.Nil(t, failure.Record)
	assert.False(t, errors.Is(ErrNoValidData, extract.ErrNoQualifyingLink))
}
