// Package backup archives the catalog's data files into a single pak
// file, optionally compressed, and restores them.
package backup

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kjk/catalog/atomicfile"
	"github.com/kjk/catalog/log"
	"github.com/kjk/catalog/pak"
	"github.com/kjk/catalog/u"
)

// Info describes a backup
type Info struct {
	Path        string
	Created     time.Time
	Compression u.Compression
	Entries     []*pak.Entry
}

// Create writes files into a backup at dst. Compression is chosen by
// dst's extension: .zst, .br, .gz or none. Files are stored by base
// name so they can be restored into any directory. Missing files are
// skipped; it's an error if none exist.
func Create(dst string, files ...string) (*Info, error) {
	timeStart := time.Now()
	w := pak.NewWriter()
	seen := map[string]bool{}
	for _, path := range files {
		if !u.FileExists(path) {
			log.Logf("backup.Create: skipping '%s', doesn't exist\n", path)
			continue
		}
		name := filepath.Base(path)
		if seen[name] {
			return nil, fmt.Errorf("duplicate file name '%s'", name)
		}
		seen[name] = true
		var meta pak.Metadata
		meta.Set(pak.MetaKeyPath, name)
		if err := w.AddFile(path, meta); err != nil {
			return nil, err
		}
	}
	if len(w.Entries) == 0 {
		return nil, fmt.Errorf("nothing to back up")
	}

	var buf bytes.Buffer
	if err := w.Write(&buf); err != nil {
		return nil, err
	}
	c := u.CompressionFromPath(dst)
	d, err := u.Compress(c, buf.Bytes())
	if err != nil {
		return nil, err
	}
	if err = atomicfile.WriteFile(dst, d); err != nil {
		return nil, err
	}
	log.EventWithDuration("backup.create", time.Since(timeStart), "path", dst, "files", len(w.Entries), "size", len(d))
	return &Info{
		Path:        dst,
		Created:     timeStart,
		Compression: c,
		Entries:     w.Entries,
	}, nil
}

func open(src string) (*pak.Archive, u.Compression, error) {
	d, err := os.ReadFile(src)
	if err != nil {
		return nil, "", err
	}
	c := u.CompressionFromPath(src)
	d, err = u.Decompress(c, d)
	if err != nil {
		return nil, "", fmt.Errorf("decompressing '%s': %w", src, err)
	}
	a, err := pak.ReadArchiveFromBytes(d)
	if err != nil {
		return nil, "", fmt.Errorf("reading '%s': %w", src, err)
	}
	a.Path = src
	return a, c, nil
}

// List returns what's in a backup
func List(src string) (*Info, error) {
	a, c, err := open(src)
	if err != nil {
		return nil, err
	}
	return &Info{
		Path:        src,
		Created:     a.Created,
		Compression: c,
		Entries:     a.Entries,
	}, nil
}

// ReadFile returns content of the file stored as name in a backup
func ReadFile(src string, name string) ([]byte, error) {
	a, _, err := open(src)
	if err != nil {
		return nil, err
	}
	e := a.FindEntry(name)
	if e == nil {
		return nil, fmt.Errorf("'%s' has no file '%s'", src, name)
	}
	return a.ReadEntry(e)
}

func isSafeName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

// Restore writes files from a backup into dir, each one atomically.
// Content of every entry is verified before anything is written.
// Returns paths of restored files.
func Restore(src string, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return restore(src, func(name string) string {
		return filepath.Join(dir, name)
	})
}

// RestoreFiles is like Restore but writes entries to paths given by
// targets, keyed by file name. Entries not in targets are skipped.
func RestoreFiles(src string, targets map[string]string) ([]string, error) {
	return restore(src, func(name string) string {
		return targets[name]
	})
}

func restore(src string, dstPath func(name string) string) ([]string, error) {
	a, _, err := open(src)
	if err != nil {
		return nil, err
	}
	contents := make([][]byte, len(a.Entries))
	for i, e := range a.Entries {
		if !isSafeName(e.Path) {
			return nil, fmt.Errorf("invalid file name '%s' in backup", e.Path)
		}
		if contents[i], err = a.ReadEntry(e); err != nil {
			return nil, err
		}
	}
	var res []string
	for i, e := range a.Entries {
		path := dstPath(e.Path)
		if path == "" {
			log.Verbosef("backup.Restore: skipping '%s'\n", e.Path)
			continue
		}
		if err = atomicfile.WriteFile(path, contents[i]); err != nil {
			return res, err
		}
		res = append(res, path)
	}
	log.Event("backup.restore", "path", src, "files", len(res))
	return res, nil
}
