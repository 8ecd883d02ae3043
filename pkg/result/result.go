// Package result provides the package that wraps the bytes produced by
// one run together with their format tag and metadata, and knows how to
// encode and persist itself.
package result

import (
	"encoding/base64"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rhuss/procunit/pkg/api"
)

// ErrInvalidFormat is returned by Save when the format tag cannot be used
// as a file extension.
var ErrInvalidFormat = errors.New("format is not a valid file extension")

// ValidateFormat checks that format stays a single file extension: no path
// separators and no "..".
func ValidateFormat(format string) error {
	if strings.ContainsAny(format, `/\`) || strings.Contains(format, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}
	return nil
}

// TempFileFunc writes data to a fresh temporary file whose name ends with
// suffix and returns its path.
type TempFileFunc func(data []byte, suffix string) (string, error)

// CreateTempFile is the default TempFileFunc. It writes into os.TempDir.
func CreateTempFile(data []byte, suffix string) (string, error) {
	f, err := os.CreateTemp("", "procunit-*"+suffix)
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// Package is the packaged output of one run. Data, format, and metadata
// never change after construction; the file path is set by Save.
type Package struct {
	id       string
	data     []byte
	format   string
	metadata map[string]any

	mu       sync.Mutex
	filePath string
}

// New creates a package with a freshly generated result ID. The data and
// metadata are copied.
func New(data []byte, format string, metadata map[string]any) *Package {
	md := maps.Clone(metadata)
	if md == nil {
		md = map[string]any{}
	}
	return &Package{
		id:       api.NewResultID(),
		data:     append([]byte(nil), data...),
		format:   format,
		metadata: md,
	}
}

// ID returns the unique result identifier.
func (p *Package) ID() string { return p.id }

// Format returns the format tag.
func (p *Package) Format() string { return p.format }

// Data returns a copy of the payload.
func (p *Package) Data() []byte { return append([]byte(nil), p.data...) }

// Size returns the payload length in bytes.
func (p *Package) Size() int { return len(p.data) }

// Metadata returns a copy of the metadata map.
func (p *Package) Metadata() map[string]any { return maps.Clone(p.metadata) }

// Base64 returns the payload encoded with standard base64.
func (p *Package) Base64() string {
	return base64.StdEncoding.EncodeToString(p.data)
}

// FilePath returns the path of the most recent successful Save, or empty
// string if the package was never saved.
func (p *Package) FilePath() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filePath
}

// Save writes the payload to disk. With a non-empty dir the file is
// <dir>/<id>.<format> and dir is created if needed; otherwise tempFile
// picks the location (CreateTempFile when nil). The file path is only
// recorded when the write succeeded.
func (p *Package) Save(dir string, tempFile TempFileFunc) (string, error) {
	if err := ValidateFormat(p.format); err != nil {
		return "", err
	}

	var path string
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating output directory: %w", err)
		}
		path = filepath.Join(dir, p.id+"."+p.format)
		if err := os.WriteFile(path, p.data, 0o644); err != nil {
			return "", fmt.Errorf("writing %s: %w", path, err)
		}
	} else {
		if tempFile == nil {
			tempFile = CreateTempFile
		}
		var err error
		path, err = tempFile(p.data, "."+p.format)
		if err != nil {
			return "", fmt.Errorf("creating temp file: %w", err)
		}
	}

	p.mu.Lock()
	p.filePath = path
	p.mu.Unlock()
	return path, nil
}

// CacheEntry returns a denormalized snapshot suitable for the result cache.
func (p *Package) CacheEntry() *api.CacheEntry {
	return &api.CacheEntry{
		ID:       p.id,
		Data:     p.Data(),
		Format:   p.format,
		Metadata: p.Metadata(),
	}
}

// String implements fmt.Stringer.
func (p *Package) String() string {
	return fmt.Sprintf("Package(id=%s, format=%s, size=%d bytes)", p.id, p.format, len(p.data))
}
