package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/pkoukk/tiktoken-go"

	"github.com/hyperjump/narabe/pkg/utils"
)

const (
	// DefaultOpenAIModel is used when no model is configured.
	DefaultOpenAIModel = "text-embedding-3-small"
	// OpenAIMaxBatch is the API's per-request input limit.
	OpenAIMaxBatch = 100

	tokenEncoding = "cl100k_base"
)

// ErrAPIKeyNotSet is returned when the OpenAI provider is selected without a key.
var ErrAPIKeyNotSet = errors.New("OpenAI API key not set: set OPENAI_API_KEY or embedding.api_key")

// OpenAIEmbedder calls the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client     openai.Client
	model      string
	dimensions int
	maxTokens  int
	encoding   *tiktoken.Tiktoken
}

type openAIOptions struct {
	model     string
	maxTokens int
	baseURL   string
}

// OpenAIOption configures an OpenAIEmbedder.
type OpenAIOption func(*openAIOptions)

// WithOpenAIModel overrides the embedding model.
func WithOpenAIModel(model string) OpenAIOption {
	return func(o *openAIOptions) {
		if model != "" {
			o.model = model
		}
	}
}

// WithMaxTokens truncates each input to n tokens before sending. Zero disables truncation.
func WithMaxTokens(n int) OpenAIOption {
	return func(o *openAIOptions) {
		o.maxTokens = n
	}
}

// WithBaseURL points the client at a compatible endpoint.
func WithBaseURL(url string) OpenAIOption {
	return func(o *openAIOptions) {
		o.baseURL = url
	}
}

// NewOpenAIEmbedder creates an embedder producing vectors of the given dimensions.
func NewOpenAIEmbedder(apiKey string, dimensions int, opts ...OpenAIOption) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyNotSet
	}
	o := openAIOptions{model: DefaultOpenAIModel}
	for _, opt := range opts {
		opt(&o)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if o.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(o.baseURL))
	}

	e := &OpenAIEmbedder{
		client:     openai.NewClient(reqOpts...),
		model:      o.model,
		dimensions: dimensions,
		maxTokens:  o.maxTokens,
	}
	if o.maxTokens > 0 {
		enc, err := tiktoken.GetEncoding(tokenEncoding)
		if err != nil {
			return nil, fmt.Errorf("failed to get tiktoken encoding: %w", err)
		}
		e.encoding = enc
	}
	return e, nil
}

// Embed returns the embedding for a single text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in requests of at most OpenAIMaxBatch inputs, preserving order.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += OpenAIMaxBatch {
		end := min(start+OpenAIMaxBatch, len(texts))
		vecs, err := e.request(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (e *OpenAIEmbedder) request(ctx context.Context, texts []string) ([][]float32, error) {
	inputs := make([]string, len(texts))
	for i, t := range texts {
		inputs[i] = e.truncate(t)
	}

	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(e.model),
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: inputs},
	}
	if e.dimensions > 0 {
		params.Dimensions = openai.Int(int64(e.dimensions))
	}

	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(resp.Data) != len(inputs) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(inputs), len(resp.Data))
	}

	vecs := make([][]float32, len(inputs))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(vecs) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		v := make([]float32, len(d.Embedding))
		for i, x := range d.Embedding {
			v[i] = float32(x)
		}
		utils.NormalizeL2(v)
		vecs[d.Index] = v
	}
	return vecs, nil
}

// truncate cuts text to the configured token budget.
func (e *OpenAIEmbedder) truncate(text string) string {
	if e.encoding == nil || e.maxTokens <= 0 {
		return text
	}
	tokens := e.encoding.Encode(text, nil, nil)
	if len(tokens) <= e.maxTokens {
		return text
	}
	return e.encoding.Decode(tokens[:e.maxTokens])
}

// Dimensions returns the requested vector dimension.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op; the HTTP client holds no resources that need releasing.
func (e *OpenAIEmbedder) Close() error {
	return nil
}
