package ports

import "context"

// CatalogFetcher retrieves raw documents (catalog JSON or asset files)
type CatalogFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}
