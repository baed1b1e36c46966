package cohere

import (
	"context"
	"errors"
	"fmt"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

type Client struct {
	client      *cohereclient.Client
	embedModel  string
	rerankModel string
	embedDim    int
}

type RerankResult struct {
	Index int
	Score float64
}

var errNoEmbeddings = errors.New("no embeddings returned")

func NewClient(apiKey, embedModel, rerankModel string, embedDim int) *Client {
	client := cohereclient.NewClient(cohereclient.WithToken(apiKey))
	return &Client{
		client:      client,
		embedModel:  embedModel,
		rerankModel: rerankModel,
		embedDim:    embedDim,
	}
}

func (c *Client) ValidateAPIKey(ctx context.Context) error {
	_, err := c.client.Models.List(ctx, &cohere.ModelsListRequest{})
	if err != nil {
		return fmt.Errorf("invalid API key: %w", err)
	}
	return nil
}

// EmbedQuestion embeds a past question for storage in the history index.
func (c *Client) EmbedQuestion(ctx context.Context, question string) ([]float32, error) {
	return c.embedOne(ctx, question, cohere.EmbedInputTypeSearchDocument)
}

// EmbedQuery embeds the current question for lookup against the index.
func (c *Client) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return c.embedOne(ctx, query, cohere.EmbedInputTypeSearchQuery)
}

func (c *Client) Rerank(ctx context.Context, query string, documents []string, topN int) ([]RerankResult, error) {
	if len(documents) == 0 {
		return nil, nil
	}

	resp, err := c.client.V2.Rerank(ctx, &cohere.V2RerankRequest{
		Model:     c.rerankModel,
		Query:     query,
		Documents: documents,
		TopN:      &topN,
	})
	if err != nil {
		return nil, fmt.Errorf("rerank request failed: %w", err)
	}

	results := make([]RerankResult, len(resp.Results))
	for i, r := range resp.Results {
		results[i] = RerankResult{
			Index: r.Index,
			Score: r.RelevanceScore,
		}
	}

	return results, nil
}

func (c *Client) embedOne(ctx context.Context, text string, inputType cohere.EmbedInputType) ([]float32, error) {
	outputDim := c.embedDim

	resp, err := c.client.V2.Embed(ctx, &cohere.V2EmbedRequest{
		Texts:           []string{text},
		Model:           c.embedModel,
		InputType:       inputType,
		EmbeddingTypes:  []cohere.EmbeddingType{cohere.EmbeddingTypeFloat},
		OutputDimension: &outputDim,
	})
	if err != nil {
		return nil, fmt.Errorf("embed request failed: %w", err)
	}

	if resp.Embeddings == nil || len(resp.Embeddings.Float) == 0 {
		return nil, errNoEmbeddings
	}

	return float64sToFloat32s(resp.Embeddings.Float[0]), nil
}

func float64sToFloat32s(f64s []float64) []float32 {
	f32s := make([]float32, len(f64s))
	for i, v := range f64s {
		f32s[i] = float32(v)
	}
	return f32s
}
