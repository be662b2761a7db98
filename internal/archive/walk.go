// Package archive builds a small Walk abstraction on top of
// "archive/zip", plus OPC relationship-part resolution for the docx
// container. The container format itself (ZIP, XML) is a trivial external
// collaborator per spec §1 — this package is the thin wrapper the rest of
// the pipeline treats as "give me part bytes by name".
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"
)

// WalkFunc is called for each entry in the archive whose name has the
// given prefix. Returning an error stops the walk.
type WalkFunc func(file *zip.File) error

// Walk iterates every file in r whose name starts with pattern, calling
// walkFn for each. Entries with path-traversal components ("..") or
// absolute paths are rejected to guard against Zip-Slip.
func Walk(r *zip.Reader, pattern string, walkFn WalkFunc) error {
	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if !f.FileInfo().IsDir() && strings.HasPrefix(name, pattern) {
			if err := walkFn(f); err != nil {
				return err
			}
		}
	}
	return nil
}

func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}

// Container is a read-only view over the parts of an opened docx archive.
type Container struct {
	zr *zip.Reader
}

// Open wraps an already-opened zip reader (callers retain ownership of the
// backing io.ReaderAt / Close).
func Open(zr *zip.Reader) *Container {
	return &Container{zr: zr}
}

// Has reports whether a part exists at name.
func (c *Container) Has(name string) bool {
	_, _, err := c.find(name)
	return err == nil
}

// ReadPart returns the decompressed bytes of the part at name, or
// (nil, false, nil) if the part does not exist.
func (c *Container) ReadPart(name string) ([]byte, bool, error) {
	f, _, err := c.find(name)
	if err != nil {
		return nil, false, nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil, true, fmt.Errorf("open part %q: %w", name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, true, fmt.Errorf("read part %q: %w", name, err)
	}
	return data, true, nil
}

func (c *Container) find(name string) (*zip.File, int, error) {
	name = strings.TrimPrefix(name, "/")
	for i, f := range c.zr.File {
		if strings.TrimPrefix(f.Name, "/") == name {
			return f, i, nil
		}
	}
	return nil, -1, fmt.Errorf("part %q not found", name)
}

// Names returns every part name with the given prefix, in archive order.
func (c *Container) Names(prefix string) []string {
	var names []string
	for _, f := range c.zr.File {
		if !f.FileInfo().IsDir() && strings.HasPrefix(f.Name, prefix) {
			names = append(names, f.Name)
		}
	}
	return names
}
