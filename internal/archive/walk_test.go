package archive

import (
	"archive/zip"
	"bytes"
	"testing"
)

func buildZip(t *testing.T, files map[string]string) *zip.Reader {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	r, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	return r
}

func TestWalkPrefix(t *testing.T) {
	r := buildZip(t, map[string]string{
		"word/document.xml":  "a",
		"word/styles.xml":    "b",
		"word/media/img.png": "c",
	})

	var visited []string
	err := Walk(r, "word/media/", func(f *zip.File) error {
		visited = append(visited, f.Name)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(visited) != 1 || visited[0] != "word/media/img.png" {
		t.Fatalf("visited = %v", visited)
	}
}

func TestContainerReadPart(t *testing.T) {
	r := buildZip(t, map[string]string{"word/document.xml": "<document/>"})
	c := Open(r)

	data, ok, err := c.ReadPart("word/document.xml")
	if err != nil || !ok {
		t.Fatalf("ReadPart: ok=%v err=%v", ok, err)
	}
	if string(data) != "<document/>" {
		t.Fatalf("data = %q", data)
	}

	if _, ok, err := c.ReadPart("word/missing.xml"); ok || err != nil {
		t.Fatalf("expected missing part to return ok=false, err=nil; got ok=%v err=%v", ok, err)
	}
}

func TestIsSafePath(t *testing.T) {
	cases := map[string]bool{
		"word/document.xml":    true,
		"/etc/passwd":          false,
		"../../../etc/passwd":  false,
		"word/../../etc/sneak": false,
	}
	for name, want := range cases {
		if got := isSafePath(name); got != want {
			t.Errorf("isSafePath(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestResolveTarget(t *testing.T) {
	cases := []struct{ base, target, want string }{
		{"word", "styles.xml", "word/styles.xml"},
		{"word", "/word/media/img.png", "word/media/img.png"},
		{"word", "media/img.png", "word/media/img.png"},
	}
	for _, c := range cases {
		if got := resolveTarget(c.base, c.target); got != c.want {
			t.Errorf("resolveTarget(%q,%q) = %q, want %q", c.base, c.target, got, c.want)
		}
	}
}
