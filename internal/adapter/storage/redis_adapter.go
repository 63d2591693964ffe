package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/pantry/internal/config"
	"github.com/rl1809/pantry/internal/core/domain"
)

// minFuzzyTermLen is the shortest query token searched with edit distance 1.
const minFuzzyTermLen = 4

// RedisSearchIndex keeps one hash per canonical product name and queries it
// through RediSearch. The key is derived from the name, so re-indexing a
// product overwrites the document of any earlier product with that name.
type RedisSearchIndex struct {
	client   *redis.Client
	index    string
	prefix   string
	language string
}

func NewRedisSearchIndex(client *redis.Client, cfg config.SearchConfig) *RedisSearchIndex {
	return &RedisSearchIndex{
		client:   client,
		index:    cfg.Index,
		prefix:   cfg.Prefix,
		language: cfg.Language,
	}
}

// NewRedisClient builds a RESP2 client; FT.SEARCH replies are only parsed
// into structured results under RESP2.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
		Protocol: 2,
	})
}

// EnsureIndex creates the search index if it does not exist yet.
func (r *RedisSearchIndex) EnsureIndex(ctx context.Context) error {
	err := r.client.FTCreate(ctx, r.index,
		&redis.FTCreateOptions{
			OnHash:          true,
			Prefix:          []interface{}{r.prefix},
			DefaultLanguage: r.language,
		},
		&redis.FieldSchema{FieldName: "name", FieldType: redis.SearchFieldTypeText},
		&redis.FieldSchema{FieldName: "unit", FieldType: redis.SearchFieldTypeTag},
	).Err()
	if err != nil && !strings.Contains(err.Error(), "Index already exists") {
		return fmt.Errorf("%w: create index %s: %w", domain.ErrIndexUnavailable, r.index, err)
	}
	return nil
}

func (r *RedisSearchIndex) Index(ctx context.Context, product domain.Product) error {
	name := domain.NormalizeName(product.Name)
	err := r.client.HSet(ctx, r.prefix+name,
		"id", product.ID,
		"name", name,
		"unit", product.Unit,
	).Err()
	if err != nil {
		return fmt.Errorf("%w: index %q: %w", domain.ErrIndexUnavailable, name, err)
	}
	return nil
}

func (r *RedisSearchIndex) Search(ctx context.Context, query string, limit int) ([]domain.SearchHit, error) {
	q := buildQuery(query)
	if q == "" || limit <= 0 {
		return nil, nil
	}

	res, err := r.client.FTSearchWithArgs(ctx, r.index, q, &redis.FTSearchOptions{
		WithScores: true,
		Language:   r.language,
		Return:     []redis.FTSearchReturn{{FieldName: "id"}, {FieldName: "name"}},
		Limit:      limit,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: search %q: %w", domain.ErrIndexUnavailable, q, err)
	}

	hits := make([]domain.SearchHit, 0, len(res.Docs))
	for _, doc := range res.Docs {
		hit := domain.SearchHit{ProductID: doc.Fields["id"], Name: doc.Fields["name"]}
		if doc.Score != nil {
			hit.Score = *doc.Score
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// buildQuery turns free text into a RediSearch query on the name field that
// matches any token exactly (stemmed) or, for longer tokens, within one edit.
func buildQuery(text string) string {
	tokens := domain.Tokens(text)
	if len(tokens) == 0 {
		return ""
	}
	terms := make([]string, 0, 2*len(tokens))
	for _, t := range tokens {
		terms = append(terms, t)
		if len([]rune(t)) >= minFuzzyTermLen {
			terms = append(terms, "%"+t+"%")
		}
	}
	return "@name:(" + strings.Join(terms, "|") + ")"
}
