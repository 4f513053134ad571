package playback

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
)

// LoadManifest fetches a manifest and returns its entries resolved against
// the manifest's own location.
func LoadManifest(ctx context.Context, src Source, id string) ([]string, error) {
	data, err := src.Fetch(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load manifest %s: %w", id, err)
	}
	entries, err := ParseManifest(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("load manifest %s: %w", id, err)
	}
	for i, e := range entries {
		entries[i] = Resolve(id, e)
	}
	return entries, nil
}

// ParseManifest returns the non-blank lines of r.
func ParseManifest(r io.Reader) ([]string, error) {
	var entries []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		entries = append(entries, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrEmpty
	}
	return entries, nil
}

// WriteManifest writes one entry per line.
func WriteManifest(w io.Writer, entries []string) error {
	for _, e := range entries {
		if _, err := fmt.Fprintln(w, e); err != nil {
			return err
		}
	}
	return nil
}
