package extract

import (
	"context"

	"github.com/factlens/factlens/pkg/jina"
)

// JinaReader adapts the Jina reader API to the ContextReader interface.
type JinaReader struct {
	Client jina.Client
}

func (r *JinaReader) Read(ctx context.Context, targetURL string) (string, string, error) {
	resp, err := r.Client.Read(ctx, targetURL)
	if err != nil {
		return "", "", err
	}
	return resp.Data.Title, resp.Data.Content, nil
}
