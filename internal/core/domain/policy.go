package domain

// Chunk categories carried in corpus metadata. The category drives how an
// empty field resolves: an empty field whose evidence includes a mandatory
// chunk is a missing field, not an indeterminate one.
const (
	// CategoryMandatory tags policy text that declares a field or document
	// as required.
	CategoryMandatory = "mandatory"

	// CategoryGeneral is the default category for untagged policy text.
	CategoryGeneral = "general"
)

// PolicyChunk is the retrievable unit of bank policy text. Chunks are
// produced by splitting corpus documents and carry their source so findings
// can cite the policy they came from.
type PolicyChunk struct {
	// ID uniquely identifies the chunk.
	ID string `json:"id"`

	// SourceDocument is the corpus file the chunk came from.
	SourceDocument string `json:"source_document"`

	// Text is the chunk content handed to the embedder and the reconciler.
	Text string `json:"text"`

	// Embedding is the chunk's vector. Empty until the index embeds it.
	Embedding []float32 `json:"-"`

	// FormType tags which form family the policy applies to (may be empty).
	FormType string `json:"form_type,omitempty"`

	// Category is the retrieval category, e.g. "mandatory" or "general".
	Category string `json:"category,omitempty"`
}
