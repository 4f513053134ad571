package playback

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Source retrieves the text of a record or manifest by identifier.
type Source interface {
	Fetch(ctx context.Context, id string) ([]byte, error)
}

// FileSource reads identifiers as paths relative to BaseDir.
type FileSource struct {
	BaseDir string
}

func NewFileSource(baseDir string) *FileSource {
	return &FileSource{BaseDir: baseDir}
}

func (s *FileSource) Fetch(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := id
	if !filepath.IsAbs(p) && s.BaseDir != "" {
		p = filepath.Join(s.BaseDir, p)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return data, nil
}

// HTTPSource fetches identifiers relative to BaseURL. Responses are never
// served from a cache so re-recorded files show up on the next load.
type HTTPSource struct {
	BaseURL *url.URL
	Client  *http.Client
}

func NewHTTPSource(base string) (*HTTPSource, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	return &HTTPSource{
		BaseURL: u,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (s *HTTPSource) Fetch(ctx context.Context, id string) ([]byte, error) {
	ref, err := url.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", id, err)
	}
	u := s.BaseURL.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %s", u, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// OpenSource picks a source for a command-line argument. URLs get an
// HTTPSource rooted at the URL's directory, anything else a FileSource rooted
// at the file's directory. The returned id is relative to that root.
func OpenSource(arg string) (Source, string, error) {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		u, err := url.Parse(arg)
		if err != nil {
			return nil, "", fmt.Errorf("parse %q: %w", arg, err)
		}
		id := path.Base(u.Path)
		u.Path = path.Dir(u.Path) + "/"
		src, err := NewHTTPSource(u.String())
		if err != nil {
			return nil, "", err
		}
		return src, id, nil
	}
	return NewFileSource(filepath.Dir(arg)), filepath.Base(arg), nil
}

// Resolve joins a manifest entry onto the directory of the manifest id.
func Resolve(manifestID, entry string) string {
	if filepath.IsAbs(entry) || strings.Contains(entry, "://") {
		return entry
	}
	dir := path.Dir(filepath.ToSlash(manifestID))
	return path.Join(dir, filepath.ToSlash(strings.TrimPrefix(entry, "./")))
}
