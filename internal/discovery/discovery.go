// Package discovery finds existing category folders under a destination root.
package discovery

import (
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/Veraticus/sortsense/internal/model"
)

// Index records where category folders already live under a destination
// root and which directories exist there. Paths are slash-separated and
// relative to the root.
type Index struct {
	cache map[string]entry
	dirs  map[string]bool
	root  string
	depth int
}

type entry struct {
	rel   string
	depth int
}

// Discover walks root depth-first up to maxDepth levels and maps every
// directory whose name matches a known leaf to its relative path. When a
// leaf occurs more than once the shallowest occurrence wins. Unreadable
// directories are skipped.
func Discover(root string, maxDepth int, leaves map[string]model.CategoryID) *Index {
	idx := &Index{
		root:  root,
		depth: maxDepth,
		cache: make(map[string]entry),
		dirs:  make(map[string]bool),
	}
	if maxDepth < 1 {
		return idx
	}
	idx.walk(root, "", 1, leaves)

	slog.Debug("Discovered destination folders",
		"root", root,
		"matched", len(idx.cache),
		"directories", len(idx.dirs))

	return idx
}

func (i *Index) walk(dir, rel string, depth int, leaves map[string]model.CategoryID) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Debug("Skipping unreadable directory", "path", dir, "error", err)
		}
		return
	}

	for _, e := range entries {
		if !e.IsDir() || model.IsHidden(e.Name()) {
			continue
		}
		childRel := e.Name()
		if rel != "" {
			childRel = rel + "/" + e.Name()
		}
		i.dirs[model.FoldName(childRel)] = true

		leaf := model.FoldName(e.Name())
		if _, known := leaves[leaf]; known {
			if prev, ok := i.cache[leaf]; !ok || depth < prev.depth {
				i.cache[leaf] = entry{rel: childRel, depth: depth}
			}
		}

		if depth < i.depth {
			i.walk(filepath.Join(dir, e.Name()), childRel, depth+1, leaves)
		}
	}
}

// Root returns the destination root the index was built for.
func (i *Index) Root() string {
	return i.root
}

// Lookup returns the relative path recorded for a folder leaf name.
func (i *Index) Lookup(leaf string) (string, bool) {
	e, ok := i.cache[model.FoldName(leaf)]
	return e.rel, ok
}

// Cache returns a copy of the leaf to relative path mapping.
func (i *Index) Cache() map[string]string {
	out := make(map[string]string, len(i.cache))
	for leaf, e := range i.cache {
		out[leaf] = e.rel
	}
	return out
}

// FolderFor returns the relative folder for a category: the discovered
// location of its leaf when one exists, otherwise its configured folder.
func (i *Index) FolderFor(c model.Category) string {
	if rel, ok := i.Lookup(c.Leaf()); ok {
		return rel
	}
	return c.Folder
}

// Exists reports whether a relative directory exists. Directories seen
// during discovery or added since are answered from memory; anything else,
// including folders deeper than the discovery walk, is checked on disk and
// remembered when found.
func (i *Index) Exists(rel string) bool {
	rel = path.Clean(rel)
	if i.dirs[model.FoldName(rel)] {
		return true
	}
	info, err := os.Stat(i.Abs(rel))
	if err != nil || !info.IsDir() {
		return false
	}
	i.Add(rel)
	return true
}

// Add records a relative directory, and each of its parents, as existing.
func (i *Index) Add(rel string) {
	rel = path.Clean(rel)
	for rel != "." && rel != "/" && rel != "" {
		i.dirs[model.FoldName(rel)] = true
		rel = path.Dir(rel)
	}
}

// Abs converts a relative folder into an absolute path under the root.
func (i *Index) Abs(rel string) string {
	return filepath.Join(i.root, filepath.FromSlash(rel))
}
