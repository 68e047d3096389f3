package vectordb

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/agrofel/field-assistant/config"
	"github.com/agrofel/field-assistant/schema"
)

const (
	fieldID      = "id"
	fieldContent = "content"
	fieldSource  = "source"
	fieldVector  = "vector"

	maxContentLength = 8192
	maxSourceLength  = 256
	maxIDLength      = 64
)

// MilvusProvider implements VectorStoreProvider on a Milvus collection.
type MilvusProvider struct {
	c          client.Client
	collection string
	dim        int
	metric     entity.MetricType
}

// NewMilvusProvider connects to Milvus and returns a provider for the
// configured collection.
func NewMilvusProvider(ctx context.Context, cfg *config.VectorDBConfig, dim int) (*MilvusProvider, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("vectordb: embedding dimension must be positive, got %d", dim)
	}
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	c, err := client.NewClient(ctx, client.Config{
		Address:  addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DBName:   cfg.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("vectordb: connect to milvus at %s: %w", addr, err)
	}
	metric := entity.IP
	if strings.EqualFold(cfg.MetricType, "L2") {
		metric = entity.L2
	}
	return &MilvusProvider{
		c:          c,
		collection: cfg.Collection,
		dim:        dim,
		metric:     metric,
	}, nil
}

func (p *MilvusProvider) EnsureCollection(ctx context.Context) error {
	has, err := p.c.HasCollection(ctx, p.collection)
	if err != nil {
		return fmt.Errorf("vectordb: check collection: %w", err)
	}
	if !has {
		collSchema := &entity.Schema{
			CollectionName: p.collection,
			Description:    "product label chunks",
			Fields: []*entity.Field{
				entity.NewField().WithName(fieldID).WithDataType(entity.FieldTypeVarChar).
					WithMaxLength(maxIDLength).WithIsPrimaryKey(true),
				entity.NewField().WithName(fieldContent).WithDataType(entity.FieldTypeVarChar).
					WithMaxLength(maxContentLength),
				entity.NewField().WithName(fieldSource).WithDataType(entity.FieldTypeVarChar).
					WithMaxLength(maxSourceLength),
				entity.NewField().WithName(fieldVector).WithDataType(entity.FieldTypeFloatVector).
					WithDim(int64(p.dim)),
			},
		}
		if err := p.c.CreateCollection(ctx, collSchema, 1); err != nil {
			return fmt.Errorf("vectordb: create collection: %w", err)
		}
		idx, err := entity.NewIndexHNSW(p.metric, 8, 64)
		if err != nil {
			return fmt.Errorf("vectordb: build hnsw index: %w", err)
		}
		if err := p.c.CreateIndex(ctx, p.collection, fieldVector, idx, false); err != nil {
			return fmt.Errorf("vectordb: create index: %w", err)
		}
	}
	if err := p.c.LoadCollection(ctx, p.collection, false); err != nil {
		return fmt.Errorf("vectordb: load collection: %w", err)
	}
	return nil
}

func (p *MilvusProvider) SearchDocs(ctx context.Context, vector []float32, opts *schema.SearchOptions) ([]schema.SearchResult, error) {
	if opts == nil {
		opts = &schema.SearchOptions{}
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = 10
	}
	expr := ""
	if opts.SourceLabel != "" {
		expr = fmt.Sprintf("%s == %q", fieldSource, opts.SourceLabel)
	}
	sp, err := entity.NewIndexHNSWSearchParam(64)
	if err != nil {
		return nil, fmt.Errorf("vectordb: build search param: %w", err)
	}
	results, err := p.c.Search(ctx, p.collection, nil, expr,
		[]string{fieldID, fieldContent, fieldSource},
		[]entity.Vector{entity.FloatVector(vector)},
		fieldVector, p.metric, topK, sp)
	if err != nil {
		return nil, fmt.Errorf("vectordb: search: %w", err)
	}

	out := make([]schema.SearchResult, 0, topK)
	for _, rs := range results {
		contents := varCharData(rs.Fields.GetColumn(fieldContent))
		sources := varCharData(rs.Fields.GetColumn(fieldSource))
		ids := varCharData(rs.Fields.GetColumn(fieldID))
		for i := 0; i < rs.ResultCount; i++ {
			score := float64(rs.Scores[i])
			if opts.Threshold > 0 && !p.meetsThreshold(score, opts.Threshold) {
				continue
			}
			doc := schema.Document{}
			if i < len(ids) {
				doc.ID = ids[i]
			}
			if i < len(contents) {
				doc.Content = contents[i]
			}
			if i < len(sources) {
				doc.SourceLabel = sources[i]
			}
			out = append(out, schema.SearchResult{Document: doc, Score: score})
		}
	}
	return out, nil
}

func (p *MilvusProvider) AddDocs(ctx context.Context, docs []schema.Document) error {
	if len(docs) == 0 {
		return nil
	}
	ids := make([]string, len(docs))
	contents := make([]string, len(docs))
	sources := make([]string, len(docs))
	vectors := make([][]float32, len(docs))
	for i, d := range docs {
		if len(d.Vector) != p.dim {
			return fmt.Errorf("vectordb: document %s has vector dim %d, want %d", d.ID, len(d.Vector), p.dim)
		}
		ids[i] = d.ID
		contents[i] = truncate(d.Content, maxContentLength)
		sources[i] = truncate(d.SourceLabel, maxSourceLength)
		vectors[i] = d.Vector
	}
	_, err := p.c.Insert(ctx, p.collection, "",
		entity.NewColumnVarChar(fieldID, ids),
		entity.NewColumnVarChar(fieldContent, contents),
		entity.NewColumnVarChar(fieldSource, sources),
		entity.NewColumnFloatVector(fieldVector, p.dim, vectors),
	)
	if err != nil {
		return fmt.Errorf("vectordb: insert: %w", err)
	}
	flushCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := p.c.Flush(flushCtx, p.collection, false); err != nil {
		return fmt.Errorf("vectordb: flush: %w", err)
	}
	return nil
}

func (p *MilvusProvider) DeleteDocs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = fmt.Sprintf("%q", id)
	}
	expr := fmt.Sprintf("%s in [%s]", fieldID, strings.Join(quoted, ","))
	if err := p.c.Delete(ctx, p.collection, "", expr); err != nil {
		return fmt.Errorf("vectordb: delete: %w", err)
	}
	return nil
}

func (p *MilvusProvider) ListDocs(ctx context.Context, limit int) ([]schema.Document, error) {
	if limit <= 0 {
		limit = 100
	}
	rs, err := p.c.Query(ctx, p.collection, nil, fmt.Sprintf("%s != \"\"", fieldID),
		[]string{fieldID, fieldContent, fieldSource},
		client.WithLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("vectordb: query: %w", err)
	}
	var ids, contents, sources []string
	for _, col := range rs {
		switch col.Name() {
		case fieldID:
			ids = varCharData(col)
		case fieldContent:
			contents = varCharData(col)
		case fieldSource:
			sources = varCharData(col)
		}
	}
	out := make([]schema.Document, 0, len(ids))
	for i := range ids {
		doc := schema.Document{ID: ids[i]}
		if i < len(contents) {
			doc.Content = contents[i]
		}
		if i < len(sources) {
			doc.SourceLabel = sources[i]
		}
		out = append(out, doc)
	}
	return out, nil
}

func (p *MilvusProvider) Close() error {
	return p.c.Close()
}

// meetsThreshold honors the metric's direction: L2 is a distance where
// lower is better, IP is a similarity where higher is better.
func (p *MilvusProvider) meetsThreshold(score, threshold float64) bool {
	if p.metric == entity.L2 {
		return score <= threshold
	}
	return score >= threshold
}

func varCharData(col entity.Column) []string {
	vc, ok := col.(*entity.ColumnVarChar)
	if !ok {
		return nil
	}
	return vc.Data()
}

// truncate cuts s to at most max bytes without splitting a UTF-8 rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
