package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
	"gonum.org/v1/gonum/mat"
)

// EmbeddingService computes semantic similarity between two strings using
// embedding cosine similarity. It implements matching.SimilarityProvider.
// Vectors are cached in-process for the service lifetime: the same vendor
// and brand strings recur across a batch, and embeddings are the only slow
// step in the scoring path.
type EmbeddingService struct {
	client  *openai.Client
	model   openai.EmbeddingModel
	limiter *rate.Limiter
	timeout time.Duration

	mu    sync.RWMutex
	cache map[string]*mat.VecDense
}

// NewEmbeddingService creates an embedding-backed similarity provider.
func NewEmbeddingService(apiKey string, timeout time.Duration) *EmbeddingService {
	return &EmbeddingService{
		client: openai.NewClient(apiKey),
		model:  openai.SmallEmbedding3,
		// Keep well under the API rate limits; scoring only calls here
		// when lexical signals are ambiguous.
		limiter: rate.NewLimiter(rate.Limit(3), 5),
		timeout: timeout,
		cache:   make(map[string]*mat.VecDense),
	}
}

// Similarity returns the cosine similarity of the two strings' embeddings,
// clamped to [0,1]. Errors are returned to the caller, which degrades to
// lexical-only scoring; the engine never sees a panic or an unbounded
// wait from here.
func (s *EmbeddingService) Similarity(ctx context.Context, a, b string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	vecA, err := s.vector(ctx, a)
	if err != nil {
		return 0, err
	}
	vecB, err := s.vector(ctx, b)
	if err != nil {
		return 0, err
	}

	sim := cosineSimilarity(vecA, vecB)
	if sim < 0 {
		sim = 0
	}
	if sim > 1 {
		sim = 1
	}
	return sim, nil
}

// vector returns the cached embedding for text, fetching it on a miss.
func (s *EmbeddingService) vector(ctx context.Context, text string) (*mat.VecDense, error) {
	s.mu.RLock()
	vec, ok := s.cache[text]
	s.mu.RUnlock()
	if ok {
		return vec, nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embedding rate limit wait: %w", err)
	}

	resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: s.model,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("create embedding: empty response for %q", text)
	}

	embedding := resp.Data[0].Embedding
	vec = mat.NewVecDense(len(embedding), nil)
	for i, v := range embedding {
		vec.SetVec(i, float64(v))
	}

	s.mu.Lock()
	s.cache[text] = vec
	s.mu.Unlock()

	return vec, nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
func cosineSimilarity(a, b *mat.VecDense) float64 {
	if a.Len() != b.Len() || a.Len() == 0 {
		return 0
	}
	normA := mat.Norm(a, 2)
	normB := mat.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0
	}
	return mat.Dot(a, b) / (normA * normB)
}
