package importer

import (
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParsedDocument is a file ready for the extraction pipeline.
type ParsedDocument struct {
	// Path is the file the document was read from.
	Path string

	// Name is the document name passed to extraction. Defaults to the
	// file's base name.
	Name string

	// DocumentType selects the extraction strategy.
	DocumentType string

	// Text is the body with any frontmatter removed.
	Text string

	// Frontmatter holds the parsed YAML header, empty when absent.
	Frontmatter map[string]interface{}
}

// ParseDocument reads an optional YAML frontmatter block from content.
// The "name" and "document_type" keys override the defaults.
func ParseDocument(content []byte, path, defaultType string) (*ParsedDocument, error) {
	fm, body, err := splitFrontmatter(string(content))
	if err != nil {
		return nil, fmt.Errorf("frontmatter parse error in %s: %w", filepath.Base(path), err)
	}

	doc := &ParsedDocument{
		Path:         path,
		Name:         filepath.Base(path),
		DocumentType: defaultType,
		Text:         body,
		Frontmatter:  fm,
	}
	if v := frontmatterString(fm, "name"); v != "" {
		doc.Name = v
	}
	if v := frontmatterString(fm, "document_type"); v != "" {
		doc.DocumentType = v
	}
	return doc, nil
}

// splitFrontmatter separates a leading block delimited by "---" lines from
// the body. Without a complete block the whole text is the body.
func splitFrontmatter(text string) (map[string]interface{}, string, error) {
	fm := map[string]interface{}{}

	first, rest, found := strings.Cut(text, "\n")
	if !found || strings.TrimSpace(first) != "---" {
		return fm, text, nil
	}

	var header []string
	lines := strings.Split(rest, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "---" {
			header = append(header, line)
			continue
		}
		if err := yaml.Unmarshal([]byte(strings.Join(header, "\n")), &fm); err != nil {
			return map[string]interface{}{}, text, fmt.Errorf("invalid YAML: %w", err)
		}
		if fm == nil {
			fm = map[string]interface{}{}
		}
		return fm, strings.Join(lines[i+1:], "\n"), nil
	}
	return fm, text, nil
}

func frontmatterString(fm map[string]interface{}, key string) string {
	if v, ok := fm[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
