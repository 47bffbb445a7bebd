package batch

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/bills-assistant/constants"
)

// Document is one bill found under the batch directory.
type Document struct {
	Path string // absolute or as given
	ID   string // path relative to the batch directory, slash separated
	Size int64
}

// ListOptions controls enumeration. A nil Exclude means constants.ExcludedDirs;
// an empty non-nil slice excludes nothing.
type ListOptions struct {
	Exclude   []string
	Recursive bool
}

// ListDocuments returns the supported documents under dir sorted by ID.
// Entries named in Exclude and hidden entries are skipped, at any depth when
// Recursive is set. Only a failure to read dir itself is an error; unreadable
// subdirectories are skipped.
func ListDocuments(dir string, opts ListOptions) ([]Document, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("directory is required")
	}
	exclude := opts.Exclude
	if exclude == nil {
		exclude = constants.ExcludedDirs
	}
	skip := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		skip[name] = struct{}{}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var docs []Document
	var visit func(rel string, entries []fs.DirEntry)
	visit = func(rel string, entries []fs.DirEntry) {
		for _, e := range entries {
			name := e.Name()
			if _, ok := skip[name]; ok || isHidden(name) {
				continue
			}
			relPath := name
			if rel != "" {
				relPath = rel + "/" + name
			}
			full := filepath.Join(dir, filepath.FromSlash(relPath))
			if e.IsDir() {
				if !opts.Recursive {
					continue
				}
				sub, err := os.ReadDir(full)
				if err != nil {
					continue
				}
				visit(relPath, sub)
				continue
			}
			if !e.Type().IsRegular() || !constants.IsSupportedExt(filepath.Ext(name)) {
				continue
			}
			var size int64
			if info, err := e.Info(); err == nil {
				size = info.Size()
			}
			docs = append(docs, Document{Path: full, ID: relPath, Size: size})
		}
	}
	visit("", entries)

	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// HashFile returns the hex SHA-256 of the file content. Reports use it to
// recognise the same bill across runs.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
