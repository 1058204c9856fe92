package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/searchroi/search-roi/internal/config"
	"github.com/searchroi/search-roi/internal/pkg/errors"
	"github.com/searchroi/search-roi/internal/pkg/logger"
)

const elasticMapping = `{
  "mappings": {
    "properties": {
      "id":       {"type": "keyword"},
      "title":    {"type": "text"},
      "content":  {"type": "text"},
      "category": {"type": "keyword"},
      "metadata": {"type": "object"}
    }
  }
}`

// Elastic is the lexical search backend backed by Elasticsearch.
type Elastic struct {
	es        *elasticsearch.Client
	indexName string
	log       *logger.Logger
	connected bool
}

var _ SearchBackend = (*Elastic)(nil)

// NewElastic creates the Elasticsearch backend. The connection is not
// established until Connect.
func NewElastic(cfg config.ElasticsearchConfig, log *logger.Logger) (*Elastic, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.Address()},
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, "creating elasticsearch client", err)
	}

	return &Elastic{
		es:        es,
		indexName: cfg.IndexName,
		log:       log.WithBackend("elasticsearch"),
	}, nil
}

// Name identifies the backend in reports.
func (e *Elastic) Name() string {
	return "Elasticsearch"
}

// Connect pings the cluster. False means unavailable.
func (e *Elastic) Connect(ctx context.Context) bool {
	res, err := e.es.Ping(e.es.Ping.WithContext(ctx))
	if err != nil {
		e.log.Warn("ping failed", "error", err)
		return false
	}
	defer res.Body.Close()

	e.connected = !res.IsError()
	return e.connected
}

// CreateIndex drops any existing benchmark index and creates a fresh one.
func (e *Elastic) CreateIndex(ctx context.Context) error {
	if !e.connected {
		return errors.BackendUnavailableError("elasticsearch")
	}

	del, err := e.es.Indices.Delete(
		[]string{e.indexName},
		e.es.Indices.Delete.WithContext(ctx),
		e.es.Indices.Delete.WithIgnoreUnavailable(true),
	)
	if err != nil {
		return errors.IndexingError("deleting existing index", err)
	}
	del.Body.Close()

	res, err := e.es.Indices.Create(
		e.indexName,
		e.es.Indices.Create.WithContext(ctx),
		e.es.Indices.Create.WithBody(strings.NewReader(elasticMapping)),
	)
	if err != nil {
		return errors.IndexingError("creating index", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.IndexingError(fmt.Sprintf("creating index: %s", res.String()), nil)
	}

	return nil
}

// IndexDocuments bulk-indexes the corpus and reports resource usage.
func (e *Elastic) IndexDocuments(ctx context.Context, docs []Document) (IndexStats, error) {
	if !e.connected {
		return IndexStats{}, errors.BackendUnavailableError("elasticsearch")
	}

	var memBefore runtime.MemStats
	runtime.ReadMemStats(&memBefore)

	start := time.Now()

	var buf bytes.Buffer
	for _, doc := range docs {
		meta := fmt.Sprintf(`{"index":{"_id":%q}}`, doc.ID)
		buf.WriteString(meta)
		buf.WriteByte('\n')

		src, err := json.Marshal(doc)
		if err != nil {
			return IndexStats{}, errors.ValidationError(fmt.Sprintf("malformed document %s: %v", doc.ID, err))
		}
		buf.Write(src)
		buf.WriteByte('\n')
	}

	res, err := e.es.Bulk(
		bytes.NewReader(buf.Bytes()),
		e.es.Bulk.WithContext(ctx),
		e.es.Bulk.WithIndex(e.indexName),
	)
	if err != nil {
		return IndexStats{}, errors.IndexingError("bulk indexing", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return IndexStats{}, errors.IndexingError(fmt.Sprintf("bulk indexing: %s", res.String()), nil)
	}

	success, failed, err := parseBulkResponse(res.Body)
	if err != nil {
		return IndexStats{}, errors.IndexingError("parsing bulk response", err)
	}

	// Refresh so the data is immediately searchable.
	refresh, err := e.es.Indices.Refresh(
		e.es.Indices.Refresh.WithContext(ctx),
		e.es.Indices.Refresh.WithIndex(e.indexName),
	)
	if err != nil {
		return IndexStats{}, errors.IndexingError("refreshing index", err)
	}
	refresh.Body.Close()

	duration := time.Since(start).Seconds()

	var memAfter runtime.MemStats
	runtime.ReadMemStats(&memAfter)

	storageMB, err := e.indexStorageMB(ctx)
	if err != nil {
		e.log.Warn("could not read index storage size", "error", err)
	}

	return IndexStats{
		SuccessCount:     success,
		FailedCount:      failed,
		DurationSeconds:  duration,
		MemoryUsageMB:    memDeltaMB(memBefore, memAfter),
		StorageUsageMB:   storageMB,
		DocumentsIndexed: len(docs),
	}, nil
}

// Search runs a keyword multi-match over title and content, title boosted.
func (e *Elastic) Search(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	if !e.connected {
		return nil, errors.BackendUnavailableError("elasticsearch")
	}

	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  query,
				"fields": []string{"title^2", "content"},
			},
		},
		"size": limit,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, errors.InternalError("encoding search body", err)
	}

	res, err := e.es.Search(
		e.es.Search.WithContext(ctx),
		e.es.Search.WithIndex(e.indexName),
		e.es.Search.WithBody(bytes.NewReader(data)),
	)
	if err != nil {
		return nil, errors.Wrap(errors.CodeBackendUnavailable, "lexical search failed", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.New(errors.CodeBackendUnavailable, fmt.Sprintf("lexical search failed: %s", res.String()))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Score  float64        `json:"_score"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.InternalError("decoding search response", err)
	}

	hits := make([]SearchHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		hits = append(hits, SearchHit{
			ID:      h.ID,
			Score:   h.Score,
			Content: h.Source,
		})
	}

	return hits, nil
}

// Close releases the HTTP client's idle connections.
func (e *Elastic) Close() error {
	e.connected = false
	return nil
}

func (e *Elastic) indexStorageMB(ctx context.Context) (float64, error) {
	res, err := e.es.Indices.Stats(
		e.es.Indices.Stats.WithContext(ctx),
		e.es.Indices.Stats.WithIndex(e.indexName),
	)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()

	var parsed struct {
		All struct {
			Total struct {
				Store struct {
					SizeInBytes float64 `json:"size_in_bytes"`
				} `json:"store"`
			} `json:"total"`
		} `json:"_all"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, err
	}

	return parsed.All.Total.Store.SizeInBytes / (1024 * 1024), nil
}

// parseBulkResponse counts succeeded and failed items in a bulk reply.
func parseBulkResponse(body io.Reader) (success, failed int, err error) {
	var parsed struct {
		Items []map[string]struct {
			Status int `json:"status"`
		} `json:"items"`
	}
	if err := json.NewDecoder(body).Decode(&parsed); err != nil {
		return 0, 0, err
	}

	for _, item := range parsed.Items {
		for _, op := range item {
			if op.Status >= 200 && op.Status < 300 {
				success++
			} else {
				failed++
			}
		}
	}
	return success, failed, nil
}

func memDeltaMB(before, after runtime.MemStats) float64 {
	if after.HeapAlloc <= before.HeapAlloc {
		return 0
	}
	return float64(after.HeapAlloc-before.HeapAlloc) / (1024 * 1024)
}
