package archive

import (
	"path"
	"strings"

	"github.com/beevik/etree"
)

// Relationships maps a relationship id (the rId... attribute) to its
// resolved target part path, for one part's companion .rels file.
type Relationships map[string]string

// ParseRelationships parses a `_rels/<part>.xml.rels` document and resolves
// each target against basePart's directory, per spec §6: targets
// beginning with "/" are archive-root-absolute, otherwise they are
// resolved relative to the directory containing the part the .rels
// belongs to (conventionally "word/" for the main document's rels).
func ParseRelationships(data []byte, basePartDir string) (Relationships, error) {
	rels := Relationships{}
	if len(data) == 0 {
		return rels, nil
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil {
		return rels, nil
	}
	for _, rel := range root.ChildElements() {
		if rel.Tag != "Relationship" {
			continue
		}
		id := rel.SelectAttrValue("Id", "")
		target := rel.SelectAttrValue("Target", "")
		if id == "" || target == "" {
			continue
		}
		if rel.SelectAttrValue("TargetMode", "") == "External" {
			rels[id] = target
			continue
		}
		rels[id] = resolveTarget(basePartDir, target)
	}
	return rels, nil
}

// RelsPathFor returns the conventional `_rels/<basename>.rels` path for a
// given part path, e.g. "word/document.xml" -> "word/_rels/document.xml.rels".
func RelsPathFor(partPath string) string {
	dir, base := path.Split(partPath)
	return path.Join(dir, "_rels", base+".rels")
}

func resolveTarget(basePartDir, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean(path.Join(basePartDir, target))
}
