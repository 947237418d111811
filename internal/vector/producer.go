// Package vector defines the Vector Producer contract: turning chunk text
// into dense embedding vectors for the hybrid retriever and the vector
// index, with provider failures wrapped in circuit-breaker-protected retry.
package vector

import "context"

// Producer turns text into a dense embedding vector. Implementations must
// be safe for concurrent use.
type Producer interface {
	// Embed returns one vector per input text, in the same order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// Dimensions reports the vector size this producer emits.
	Dimensions() int
}
