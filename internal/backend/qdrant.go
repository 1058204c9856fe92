package backend

import (
	"context"
	"fmt"
	"hash/fnv"
	"runtime"
	"time"

	"github.com/qdrant/go-client/qdrant"

	"github.com/searchroi/search-roi/internal/config"
	"github.com/searchroi/search-roi/internal/pkg/errors"
	"github.com/searchroi/search-roi/internal/pkg/logger"
)

const (
	// upsertBatchSize bounds memory during indexing.
	upsertBatchSize = 100

	qdrantTimeout = 30 * time.Second
)

// Qdrant is the vector search backend. It embeds documents and queries via
// the configured Embedder and stores vectors in a Qdrant collection.
type Qdrant struct {
	client     *qdrant.Client
	embedder   Embedder
	collection string
	vectorSize uint64
	log        *logger.Logger
	connected  bool

	// embeddingCalls counts Embed invocations during the last indexing pass.
	embeddingCalls int
}

var _ SearchBackend = (*Qdrant)(nil)

// NewQdrant creates the Qdrant backend. The connection is verified in Connect.
func NewQdrant(cfg config.QdrantConfig, embedder Embedder, log *logger.Logger) (*Qdrant, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: cfg.Host,
		Port: cfg.Port,
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, "creating qdrant client", err)
	}

	return &Qdrant{
		client:     client,
		embedder:   embedder,
		collection: cfg.CollectionName,
		vectorSize: uint64(cfg.VectorSize),
		log:        log.WithBackend("qdrant"),
	}, nil
}

// Name identifies the backend in reports.
func (q *Qdrant) Name() string {
	return "Qdrant"
}

// Connect verifies the server is reachable. False means unavailable.
func (q *Qdrant) Connect(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, qdrantTimeout)
	defer cancel()

	if _, err := q.client.HealthCheck(ctx); err != nil {
		q.log.Warn("health check failed", "error", err)
		return false
	}

	q.connected = true
	return true
}

// CreateIndex drops any existing collection and creates a fresh one.
func (q *Qdrant) CreateIndex(ctx context.Context) error {
	if !q.connected {
		return errors.BackendUnavailableError("qdrant")
	}

	ctx, cancel := context.WithTimeout(ctx, qdrantTimeout)
	defer cancel()

	exists, err := q.client.CollectionExists(ctx, q.collection)
	if err != nil {
		return errors.IndexingError("checking collection existence", err)
	}
	if exists {
		if err := q.client.DeleteCollection(ctx, q.collection); err != nil {
			return errors.IndexingError("deleting existing collection", err)
		}
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return errors.IndexingError("creating collection", err)
	}

	return nil
}

// IndexDocuments embeds and upserts the corpus, tracking resource usage and
// embedding calls.
func (q *Qdrant) IndexDocuments(ctx context.Context, docs []Document) (IndexStats, error) {
	if !q.connected {
		return IndexStats{}, errors.BackendUnavailableError("qdrant")
	}

	var memBefore runtime.MemStats
	runtime.ReadMemStats(&memBefore)

	start := time.Now()
	q.embeddingCalls = 0

	points := make([]*qdrant.PointStruct, 0, len(docs))
	for i := 0; i < len(docs); i += upsertBatchSize {
		end := i + upsertBatchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[i:end]

		texts := make([]string, len(batch))
		for j, doc := range batch {
			texts[j] = doc.Title + " " + doc.Content
		}

		vectors, err := q.embedder.Embed(ctx, texts)
		if err != nil {
			return IndexStats{}, errors.EmbeddingError("embedding documents", err)
		}
		q.embeddingCalls++

		if len(vectors) != len(batch) {
			return IndexStats{}, errors.EmbeddingError(
				fmt.Sprintf("embedder returned %d vectors for %d documents", len(vectors), len(batch)), nil)
		}

		for j, doc := range batch {
			points = append(points, &qdrant.PointStruct{
				Id:      qdrant.NewIDNum(pointID(doc.ID)),
				Vectors: qdrant.NewVectors(vectors[j]...),
				Payload: qdrant.NewValueMap(map[string]any{
					"id":       doc.ID,
					"title":    doc.Title,
					"content":  doc.Content,
					"category": doc.Category,
				}),
			})
		}
	}

	for i := 0; i < len(points); i += upsertBatchSize {
		end := i + upsertBatchSize
		if end > len(points) {
			end = len(points)
		}

		upsertCtx, cancel := context.WithTimeout(ctx, qdrantTimeout)
		_, err := q.client.Upsert(upsertCtx, &qdrant.UpsertPoints{
			CollectionName: q.collection,
			Points:         points[i:end],
			Wait:           qdrant.PtrOf(true),
		})
		cancel()
		if err != nil {
			return IndexStats{}, errors.IndexingError(fmt.Sprintf("upserting batch %d-%d", i, end), err)
		}
	}

	duration := time.Since(start).Seconds()

	var memAfter runtime.MemStats
	runtime.ReadMemStats(&memAfter)

	// Storage estimate: float32 vectors plus payload is dominated by vectors.
	vectorStorageMB := float64(q.vectorSize*4*uint64(len(docs))) / (1024 * 1024)

	return IndexStats{
		SuccessCount:     len(docs),
		FailedCount:      0,
		DurationSeconds:  duration,
		MemoryUsageMB:    memDeltaMB(memBefore, memAfter),
		StorageUsageMB:   vectorStorageMB,
		DocumentsIndexed: len(docs),
		EmbeddingCalls:   q.embeddingCalls,
	}, nil
}

// Search embeds the query and runs a dense similarity search.
func (q *Qdrant) Search(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	if !q.connected {
		return nil, errors.BackendUnavailableError("qdrant")
	}

	vectors, err := q.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, errors.EmbeddingError("embedding query", err)
	}
	if len(vectors) != 1 {
		return nil, errors.EmbeddingError(fmt.Sprintf("embedder returned %d vectors for one query", len(vectors)), nil)
	}

	queryCtx, cancel := context.WithTimeout(ctx, qdrantTimeout)
	defer cancel()

	points, err := q.client.Query(queryCtx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQueryDense(vectors[0]),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeBackendUnavailable, "vector search failed", err)
	}

	hits := make([]SearchHit, 0, len(points))
	for _, p := range points {
		payload := payloadToMap(p.Payload)

		id, _ := payload["id"].(string)
		if id == "" {
			id = pointIDString(p.Id)
		}

		hits = append(hits, SearchHit{
			ID:      id,
			Score:   float64(p.Score),
			Content: payload,
		})
	}

	return hits, nil
}

// Close closes the gRPC connection.
func (q *Qdrant) Close() error {
	q.connected = false
	return q.client.Close()
}

// pointID converts a document ID into a Qdrant numeric point ID.
func pointID(docID string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(docID))
	return h.Sum64()
}

func pointIDString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	switch v := id.PointIdOptions.(type) {
	case *qdrant.PointId_Uuid:
		return v.Uuid
	case *qdrant.PointId_Num:
		return fmt.Sprintf("%d", v.Num)
	}
	return ""
}

// payloadToMap flattens a Qdrant payload into plain Go values.
func payloadToMap(payload map[string]*qdrant.Value) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		switch kind := v.Kind.(type) {
		case *qdrant.Value_StringValue:
			out[k] = kind.StringValue
		case *qdrant.Value_IntegerValue:
			out[k] = kind.IntegerValue
		case *qdrant.Value_DoubleValue:
			out[k] = kind.DoubleValue
		case *qdrant.Value_BoolValue:
			out[k] = kind.BoolValue
		}
	}
	return out
}
