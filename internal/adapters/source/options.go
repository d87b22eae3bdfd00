package source

import (
	"io/fs"
	"os"

	"github.com/okian/salesdash/pkg/logger"
)

// Option applies a configuration option to the FileSource.
type Option func(*FileSource)

// WithFS reads datasets from fsys instead of the embedded sample data.
func WithFS(fsys fs.FS) Option {
	return func(s *FileSource) {
		if fsys != nil {
			s.fsys = fsys
		}
	}
}

// WithDir reads datasets from a directory on disk. An empty dir keeps the embedded data.
func WithDir(dir string) Option {
	return func(s *FileSource) {
		if dir != "" {
			s.fsys = os.DirFS(dir)
			s.origin = dir
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *FileSource) {
		if l != nil {
			s.logger = l
		}
	}
}
