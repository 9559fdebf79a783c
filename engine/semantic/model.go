package semantic

// Hit is a single vector search result: a catalog listing id and its raw
// similarity score.
type Hit struct {
	ID    int64   `json:"id"`
	Score float32 `json:"score"`
}

// ListingVector is a single listing embedding to store in Qdrant.
type ListingVector struct {
	ID        int64
	Embedding []float32
	Payload   map[string]any // title, location, type, price
}
