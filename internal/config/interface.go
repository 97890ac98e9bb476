package config

import "context"

// Loader is the interface for a format-specific project file loader.
type Loader interface {
	// Load reads the project file at path. Relative paths inside the
	// project are resolved against the directory of the file.
	Load(ctx context.Context, path string) (*Project, error)
}
