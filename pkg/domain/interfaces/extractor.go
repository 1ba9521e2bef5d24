package interfaces

import "context"

// Extractor unpacks an email container file into a directory tree
type Extractor interface {
	// Extract unpacks input into outDir, keeping original names and folder structure
	Extract(ctx context.Context, input, outDir string) error
}
