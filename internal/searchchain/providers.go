package searchchain

import (
	"context"

	"github.com/factlens/factlens/internal/model"
	"github.com/factlens/factlens/pkg/jina"
	"github.com/factlens/factlens/pkg/tavily"
)

// TavilyProvider adapts the Tavily client as the high-quality tier.
type TavilyProvider struct {
	Client tavily.Client
}

func (p *TavilyProvider) Name() string { return "tavily" }

func (p *TavilyProvider) Search(ctx context.Context, query string, maxResults int) ([]model.SearchHit, error) {
	resp, err := p.Client.Search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}
	hits := make([]model.SearchHit, 0, len(resp.Results))
	for _, r := range resp.Results {
		hits = append(hits, model.SearchHit{Title: r.Title, Body: r.Content, URL: r.URL})
	}
	return hits, nil
}

// JinaProvider adapts Jina Search as the general-purpose fallback tier.
type JinaProvider struct {
	Client jina.Client
}

func (p *JinaProvider) Name() string { return "jina" }

func (p *JinaProvider) Search(ctx context.Context, query string, maxResults int) ([]model.SearchHit, error) {
	resp, err := p.Client.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	hits := make([]model.SearchHit, 0, maxResults)
	for _, r := range resp.Data {
		body := r.Content
		if body == "" {
			body = r.Description
		}
		hits = append(hits, model.SearchHit{Title: r.Title, Body: body, URL: r.URL})
		if len(hits) >= maxResults {
			break
		}
	}
	return hits, nil
}
