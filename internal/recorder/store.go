package recorder

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/san-kum/obsview/internal/playback"
)

const (
	RecordExt   = ".pb"
	ManifestExt = ".mpb"
)

// Store writes episodes under a base directory.
type Store struct {
	baseDir string
}

func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// SaveEpisode writes ep as <id>.pb and returns the file name relative to
// the base directory.
func (s *Store) SaveEpisode(ep *Episode) (string, error) {
	name := ep.ID + RecordExt
	if err := s.writeFile(name, func(f *os.File) error {
		return playback.Write(f, ep.Frames)
	}); err != nil {
		return "", err
	}
	return name, nil
}

// SaveSet writes every episode and a manifest called name.mpb listing
// them. It returns the manifest path.
func (s *Store) SaveSet(name string, eps []*Episode) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}

	entries := make([]string, 0, len(eps))
	for _, ep := range eps {
		file, err := s.SaveEpisode(ep)
		if err != nil {
			return "", err
		}
		entries = append(entries, file)
	}

	manifest := name + ManifestExt
	if err := s.writeFile(manifest, func(f *os.File) error {
		return playback.WriteManifest(f, entries)
	}); err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, manifest), nil
}

func (s *Store) writeFile(name string, write func(*os.File) error) error {
	p := filepath.Join(s.baseDir, name)
	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("create %s: %w", p, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", p, err)
	}
	return f.Close()
}
