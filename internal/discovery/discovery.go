package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"eerecord/internal/logging"
	"eerecord/internal/services"
)

// Song is an input audio file found on disk or named on the command line.
type Song struct {
	Path string
}

// Name returns the file name of the song.
func (s Song) Name() string {
	return filepath.Base(s.Path)
}

// Stem returns the file name without its final extension.
func (s Song) Stem() string {
	name := s.Name()
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Discover walks root and returns files whose names end in one of
// extensions. Any directory named exclude is skipped, along with everything
// below it. Unreadable subdirectories are logged and skipped.
func Discover(root string, extensions []string, exclude string, logger *slog.Logger) ([]Song, error) {
	logger = logging.NewComponentLogger(logger, "discovery")
	exts := usableExtensions(extensions)
	if len(exts) == 0 {
		return nil, services.Wrap(services.ErrValidation, "discovery", "extensions", "no input extensions configured", nil)
	}

	var songs []Song
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logger.Debug("skipping unreadable path", logging.String("path", path), logging.Error(err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && exclude != "" && d.Name() == exclude {
				return fs.SkipDir
			}
			return nil
		}
		if excluded(root, path, exclude) {
			return nil
		}
		if matches(d.Name(), exts) {
			songs = append(songs, Song{Path: path})
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "discovery", "walk", fmt.Sprintf("root %q does not exist", root), err)
		}
		return nil, services.Wrap(services.ErrValidation, "discovery", "walk", "scan failed", err)
	}
	return songs, nil
}

// excluded reports whether any directory segment of path below root equals
// exclude.
func excluded(root, path, exclude string) bool {
	if exclude == "" {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	segments := strings.Split(filepath.ToSlash(rel), "/")
	for _, segment := range segments[:len(segments)-1] {
		if segment == exclude {
			return true
		}
	}
	return false
}

func matches(name string, extensions []string) bool {
	for _, ext := range extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func usableExtensions(extensions []string) []string {
	out := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		if ext = strings.TrimSpace(ext); ext != "" {
			out = append(out, ext)
		}
	}
	return out
}

// FormatExtensions renders extensions for log lines, e.g. "mp3, m4a".
func FormatExtensions(extensions []string) string {
	return strings.Join(usableExtensions(extensions), ", ")
}
