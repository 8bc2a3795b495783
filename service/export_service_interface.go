package service

import "context"

// ExportServiceInterface defines the contract for printing rendered pages
type ExportServiceInterface interface {
	GeneratePDF(ctx context.Context, renderURL string) ([]byte, error)
	GeneratePNG(ctx context.Context, renderURL string) (map[int][]byte, error)
}
