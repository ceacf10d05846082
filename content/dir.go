package content

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"
)

// Dir loads pages from Markdown files under a directory.
type Dir struct {
	Root string
}

// LoadPages walks the directory and parses every .md file. Hidden files and
// directories are skipped. Pages come back sorted by path.
func (d Dir) LoadPages(ctx context.Context) ([]Page, error) {
	return LoadFS(ctx, os.DirFS(d.Root))
}

// LoadFS is LoadPages over an fs.FS.
func LoadFS(ctx context.Context, fsys fs.FS) ([]Page, error) {
	var pages []Page
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p != "." && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.EqualFold(path.Ext(p), ".md") {
			return nil
		}
		doc, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("content: read %s: %w", p, err)
		}
		page, err := ParsePage(p, doc)
		if err != nil {
			return fmt.Errorf("content: %w", err)
		}
		if info, err := d.Info(); err == nil {
			page.LastUpdated = info.ModTime()
		}
		pages = append(pages, page)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(pages, func(a, b Page) int { return strings.Compare(a.Path, b.Path) })
	return pages, nil
}
