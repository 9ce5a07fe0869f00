// Package article defines the document value the pipeline edits: a markdown
// body plus the metadata fields a content backend tracks for it. Articles on
// disk are markdown files with an optional YAML front matter header.
package article

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Article is the unit of mutation. Content is the markdown body; the other
// fields are front matter metadata.
type Article struct {
	ID          string   `yaml:"id,omitempty"`
	Path        string   `yaml:"path,omitempty"`
	Title       string   `yaml:"title,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Keywords    []string `yaml:"keywords,omitempty"`
	Content     string   `yaml:"-"`
}

const frontMatterDelim = "---"

// Parse splits a markdown file into front matter and body. A document
// without a front matter block is returned whole as Content.
func Parse(raw string) (Article, error) {
	if !strings.HasPrefix(raw, frontMatterDelim+"\n") && raw != frontMatterDelim {
		return Article{Content: raw}, nil
	}

	rest := raw[len(frontMatterDelim)+1:]
	idx := strings.Index(rest, "\n"+frontMatterDelim+"\n")
	if idx < 0 {
		if strings.HasSuffix(rest, "\n"+frontMatterDelim) {
			idx = len(rest) - len(frontMatterDelim) - 1
		} else {
			// Unterminated front matter: treat the whole document as body
			// rather than failing.
			return Article{Content: raw}, nil
		}
	}

	var a Article
	if err := yaml.Unmarshal([]byte(rest[:idx]), &a); err != nil {
		return Article{}, fmt.Errorf("parse front matter: %w", err)
	}

	body := rest[idx+1+len(frontMatterDelim):]
	body = strings.TrimPrefix(body, "\n") // end of the delimiter line
	body = strings.TrimPrefix(body, "\n") // conventional blank separator
	a.Content = body
	return a, nil
}

// Render serializes the article back to a markdown file. Articles without
// metadata render as a bare body with no front matter block.
func (a Article) Render() (string, error) {
	if !a.hasMetadata() {
		return a.Content, nil
	}

	head, err := yaml.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("render front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString(frontMatterDelim)
	b.WriteString("\n")
	b.Write(head)
	b.WriteString(frontMatterDelim)
	b.WriteString("\n")
	if a.Content != "" {
		b.WriteString("\n")
		b.WriteString(a.Content)
	}
	return b.String(), nil
}

func (a Article) hasMetadata() bool {
	return a.ID != "" || a.Path != "" || a.Title != "" || a.Description != "" || len(a.Keywords) > 0
}
