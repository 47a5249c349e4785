package extract

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
)

// officeParts lists the archive members holding text for each format.
var officeParts = map[string]func(name string) bool{
	".docx": func(name string) bool { return name == "word/document.xml" },
	".xlsx": func(name string) bool { return name == "xl/sharedStrings.xml" },
	".pptx": func(name string) bool {
		return strings.HasPrefix(name, "ppt/slides/slide") && strings.HasSuffix(name, ".xml")
	},
}

// officeText reads the text runs of an Office Open XML document.
func officeText(path string, limit int) (string, error) {
	match, ok := officeParts[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return "", fmt.Errorf("unsupported office format: %s", filepath.Ext(path))
	}

	r, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()

	var parts []*zip.File
	for _, f := range r.File {
		if match(f.Name) {
			parts = append(parts, f)
		}
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].Name < parts[j].Name })

	var sb strings.Builder
	for _, f := range parts {
		if limit > 0 && sb.Len() >= limit {
			break
		}
		if err := collectRuns(f, &sb); err != nil {
			return "", fmt.Errorf("read %s: %w", f.Name, err)
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

// collectRuns appends the character data of every <t> element in f.
func collectRuns(f *zip.File, sb *strings.Builder) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	inText := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			inText = t.Name.Local == "t"
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
				sb.WriteByte(' ')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
}
