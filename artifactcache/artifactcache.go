// Package artifactcache implements a local, content-addressed store of
// archived build outputs, keyed by (cache_key.id, cache_key.hash).
package artifactcache

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/panux/anvil/cachekey"
	"github.com/sirupsen/logrus"
)

// ErrReadOnly names the read-only condition for callers that want to
// report it distinctly from a genuine I/O error. TryInsert itself never
// returns it: on a read-only cache TryInsert is a no-op that returns nil.
var ErrReadOnly = errors.New("artifactcache: cache is read-only")

// LocalCache is the local, filesystem-backed ArtifactCache.
type LocalCache struct {
	// Root is the cache directory; archives live at
	// <Root>/<id>/<hash>.tar or .tar.gz.
	Root string

	// ArtifactRoot is the directory use_cached_files extracts relative to.
	ArtifactRoot string

	// Compress selects whether try_insert gzips archives.
	Compress bool

	// ReadOnly disables try_insert ("Read-only mode").
	ReadOnly bool

	log *logrus.Entry
}

// New constructs a LocalCache.
func New(root, artifactRoot string, compress, readOnly bool) *LocalCache {
	return &LocalCache{
		Root:         root,
		ArtifactRoot: artifactRoot,
		Compress:     compress,
		ReadOnly:     readOnly,
		log:          logrus.WithField("component", "artifactcache"),
	}
}

func (c *LocalCache) dir(key cachekey.CacheKey) string {
	return filepath.Join(c.Root, sanitizeID(key.ID))
}

func (c *LocalCache) ext() string {
	if c.Compress {
		return ".tar.gz"
	}
	return ".tar"
}

func (c *LocalCache) archivePath(key cachekey.CacheKey) string {
	return filepath.Join(c.dir(key), key.Hash+c.ext())
}

// Has reports whether key's archive is present.
func (c *LocalCache) Has(key cachekey.CacheKey) (bool, error) {
	_, err := os.Stat(c.archivePath(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// TryInsert archives paths (each relative to ArtifactRoot) into key's
// storage location. It writes to a unique temporary name on the same
// filesystem, then atomically renames into place, so a concurrent reader
// never observes a truncated file.
//
// In read-only mode this is a no-op that returns nil - callers that must
// distinguish "skipped because read-only" from "actually wrote" can
// compare c.ReadOnly themselves.
func (c *LocalCache) TryInsert(key cachekey.CacheKey, paths []string) error {
	if c.ReadOnly {
		return nil
	}

	dir := c.dir(key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmpName := filepath.Join(dir, ".tmp-"+uuid.NewString())
	f, err := os.OpenFile(tmpName, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	writeErr := c.writeArchive(f, paths)
	closeErr := f.Close()
	if writeErr != nil {
		os.Remove(tmpName)
		return writeErr
	}
	if closeErr != nil {
		os.Remove(tmpName)
		return closeErr
	}

	return os.Rename(tmpName, c.archivePath(key))
}

func (c *LocalCache) writeArchive(w io.Writer, paths []string) error {
	var tw *tar.Writer
	var gz *gzip.Writer
	if c.Compress {
		gz = gzip.NewWriter(w)
		tw = tar.NewWriter(gz)
	} else {
		tw = tar.NewWriter(w)
	}

	for _, rel := range paths {
		if err := c.addToArchive(tw, rel); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return err
	}
	if gz != nil {
		return gz.Close()
	}
	return nil
}

func (c *LocalCache) addToArchive(tw *tar.Writer, rel string) error {
	full := filepath.Join(c.ArtifactRoot, rel)
	return filepath.WalkDir(full, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(c.ArtifactRoot, path)
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(relPath)
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
}

// CachedFiles is the handle returned by UseCachedFiles: the directory the
// archive was extracted into, which is ArtifactRoot itself.
type CachedFiles struct {
	Root string
}

// UseCachedFiles extracts key's archive relative to ArtifactRoot if
// present. ok is false (with a nil error) on a genuine cache miss.
// Extraction failures are treated as ArtifactCorruption:
// the entry is deleted and the caller must redo the work.
func (c *LocalCache) UseCachedFiles(key cachekey.CacheKey) (files CachedFiles, ok bool, err error) {
	has, err := c.Has(key)
	if err != nil {
		return CachedFiles{}, false, err
	}
	if !has {
		return CachedFiles{}, false, nil
	}

	if err := c.extract(key); err != nil {
		c.log.WithField("id", key.ID).WithField("hash", key.Hash).
			WithError(err).Warn("artifact corrupted, evicting")
		_ = c.Delete(key)
		return CachedFiles{}, false, nil
	}

	return CachedFiles{Root: c.ArtifactRoot}, true, nil
}

func (c *LocalCache) extract(key cachekey.CacheKey) error {
	f, err := os.Open(c.archivePath(key))
	if err != nil {
		return err
	}
	defer f.Close()

	var r io.Reader = f
	if c.Compress {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return err
		}
		defer gz.Close()
		r = gz
	}

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		target := filepath.Join(c.ArtifactRoot, filepath.FromSlash(hdr.Name))
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(hdr.Mode)); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(hdr.Mode))
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
		}
	}
}

// Delete removes key's archive entirely.
func (c *LocalCache) Delete(key cachekey.CacheKey) error {
	err := os.Remove(c.archivePath(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Prune removes archives under Root whose last-modified time is older
// than ageHours. It is an LRU/age-based eviction hook - not
// wired into any automatic schedule, only exposed for a caller (eg. a CLI
// subcommand) to invoke explicitly.
func (c *LocalCache) Prune(ageHours float64) error {
	cutoff := time.Now().Add(-time.Duration(ageHours * float64(time.Hour)))
	return filepath.WalkDir(c.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().Before(cutoff) {
			return os.Remove(path)
		}
		return nil
	})
}

func sanitizeID(id string) string {
	out := make([]rune, 0, len(id))
	for _, r := range id {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			out = append(out, '_')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
