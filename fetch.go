package marq

import (
	"context"
	"fmt"
	"net/http"
)

// URLRequest configures ParseURL.
type URLRequest struct {
	URL     string
	Client  *http.Client
	Options []Option
}

// ParseURL fetches a document over HTTP(S) and parses it. Includes resolve
// against the document URL through an HTTPLoader sharing ctx and the client.
func ParseURL(ctx context.Context, req URLRequest) (*Node, Diagnostics, error) {
	if req.URL == "" {
		return nil, nil, fmt.Errorf("parse url: URL is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	loader := HTTPLoader{Context: ctx, Client: req.Client}
	src, err := loader.Load(req.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse url: %w", err)
	}
	if err := ValidateInput(src); err != nil {
		return nil, nil, fmt.Errorf("parse url: %w", err)
	}
	opts := make([]Option, 0, len(req.Options)+2)
	opts = append(opts, WithLoader(loader))
	opts = append(opts, req.Options...)
	opts = append(opts, WithPath(req.URL))
	root, diags := Parse(src, opts...)
	return root, diags, nil
}
