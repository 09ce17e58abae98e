package domain

// QueryStrategy selects how validation builds retrieval queries.
type QueryStrategy string

const (
	// QueryPerField retrieves evidence separately for every field.
	QueryPerField QueryStrategy = "PER_FIELD"

	// QueryWholeRecord retrieves once for a record summary and shares the
	// evidence across all field checks.
	QueryWholeRecord QueryStrategy = "WHOLE_RECORD"
)

// RetrievalOptions configures semantic retrieval.
type RetrievalOptions struct {
	// TopK is the maximum number of chunks returned per query.
	TopK int

	// MinSimilarity is the inclusive score cutoff. Hits scoring exactly at
	// the cutoff are kept; strictly below are dropped.
	MinSimilarity float64

	// Strategy selects per-field or whole-record querying.
	Strategy QueryStrategy
}

// RetrievalResult is one ranked semantic search hit.
type RetrievalResult struct {
	// Chunk is the matched policy chunk. It is not serialised into report
	// artifacts; ChunkID is the stable reference.
	Chunk PolicyChunk `json:"-"`

	// ChunkID identifies the matched chunk.
	ChunkID string `json:"chunk_id"`

	// Score is the cosine similarity in [-1,1].
	Score float64 `json:"score"`

	// Rank is the 1-based position after threshold filtering.
	Rank int `json:"rank"`
}
