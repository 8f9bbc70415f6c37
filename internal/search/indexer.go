// Package search pushes enriched documents into the Elasticsearch index.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/rs/zerolog"

	"github.com/dharsanguruparan/docmill/internal/config"
	"github.com/dharsanguruparan/docmill/internal/model"
)

// IndexingError carries the backend's diagnostic payload when the index
// write is rejected.
type IndexingError struct {
	StatusCode int
	Backend    string
}

func (e *IndexingError) Error() string {
	return fmt.Sprintf("elasticsearch: index request failed with status %d: %s", e.StatusCode, e.Backend)
}

// Indexer writes search documents keyed by document ID.
type Indexer struct {
	client *elasticsearch.Client
	index  string
	log    zerolog.Logger
}

// New creates an Elasticsearch-backed indexer from the Config.
func New(cfg *config.Config, log zerolog.Logger) (*Indexer, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.ElasticURL},
	})
	if err != nil {
		return nil, fmt.Errorf("init elasticsearch: %w", err)
	}
	return &Indexer{
		client: client,
		index:  cfg.ElasticIndex,
		log:    log.With().Str("component", "search").Logger(),
	}, nil
}

// Index upserts the document into the index. Re-indexing the same ID
// replaces the previous version.
func (ix *Indexer) Index(ctx context.Context, doc *model.SearchDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal search document: %w", err)
	}
	req := esapi.IndexRequest{
		Index:      ix.index,
		DocumentID: doc.ID.String(),
		Body:       bytes.NewReader(payload),
	}
	res, err := req.Do(ctx, ix.client)
	if err != nil {
		return fmt.Errorf("index document %s: %w", doc.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return &IndexingError{StatusCode: res.StatusCode, Backend: string(body)}
	}
	ix.log.Info().Stringer("documentId", doc.ID).Msg("document indexed")
	return nil
}
