// Package blog loads the markdown posts bundled with the binary.
package blog

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"gopkg.in/yaml.v3"
)

//go:embed posts/*.md
var embedded embed.FS

// DateLayout is the format of the date front matter field
const DateLayout = "2006-01-02"

const delimiter = "---"

// Summary is a post without its body
type Summary struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Author      string    `json:"author,omitempty"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
}

// Post is a parsed post. HTML is the rendered markdown body.
type Post struct {
	Summary
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
}

type frontMatter struct {
	Title       string   `yaml:"title"`
	Slug        string   `yaml:"slug"`
	Date        string   `yaml:"date"`
	Author      string   `yaml:"author"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
}

// Store holds posts sorted newest first
type Store struct {
	posts  []Post
	bySlug map[string]int
}

// Default loads the embedded posts
func Default() (*Store, error) {
	sub, err := fs.Sub(embedded, "posts")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// Load parses every .md file at the root of fsys in a single pass
func Load(fsys fs.FS) (*Store, error) {
	names, err := fs.Glob(fsys, "*.md")
	if err != nil {
		return nil, err
	}

	s := &Store{bySlug: make(map[string]int, len(names))}
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)

	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		post, err := parsePost(md, name, data)
		if err != nil {
			return nil, err
		}
		if _, dup := s.bySlug[post.Slug]; dup {
			return nil, fmt.Errorf("%s: duplicate slug %q", name, post.Slug)
		}
		s.bySlug[post.Slug] = -1
		s.posts = append(s.posts, post)
	}

	sort.SliceStable(s.posts, func(i, j int) bool {
		a, b := s.posts[i], s.posts[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return a.Slug < b.Slug
	})
	for i, p := range s.posts {
		s.bySlug[p.Slug] = i
	}

	return s, nil
}

func parsePost(md goldmark.Markdown, name string, data []byte) (Post, error) {
	header, body, err := splitFrontMatter(data)
	if err != nil {
		return Post{}, fmt.Errorf("%s: %w", name, err)
	}

	var fm frontMatter
	if err := yaml.Unmarshal(header, &fm); err != nil {
		return Post{}, fmt.Errorf("%s: invalid front matter: %w", name, err)
	}
	if strings.TrimSpace(fm.Title) == "" {
		return Post{}, fmt.Errorf("%s: title is required", name)
	}
	date, err := time.Parse(DateLayout, strings.TrimSpace(fm.Date))
	if err != nil {
		return Post{}, fmt.Errorf("%s: date must be YYYY-MM-DD, got %q", name, fm.Date)
	}

	slug := strings.TrimSpace(fm.Slug)
	if slug == "" {
		slug = strings.TrimSuffix(path.Base(name), path.Ext(name))
	}

	var html bytes.Buffer
	if err := md.Convert(body, &html); err != nil {
		return Post{}, fmt.Errorf("%s: failed to render markdown: %w", name, err)
	}

	return Post{
		Summary: Summary{
			Slug:        slug,
			Title:       fm.Title,
			Date:        date,
			Author:      fm.Author,
			Description: fm.Description,
			Tags:        fm.Tags,
		},
		Markdown: string(body),
		HTML:     html.String(),
	}, nil
}

// splitFrontMatter separates the YAML block between the leading --- lines
// from the markdown body
func splitFrontMatter(data []byte) ([]byte, []byte, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.TrimPrefix(text, "\uFEFF")

	lines := strings.SplitAfter(text, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != delimiter {
		return nil, nil, fmt.Errorf("missing front matter: the file must start with %s", delimiter)
	}

	offset := len(lines[0])
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == delimiter {
			header := text[len(lines[0]):offset]
			body := strings.TrimLeft(text[offset+len(line):], "\n")
			return []byte(header), []byte(body), nil
		}
		offset += len(line)
	}
	return nil, nil, fmt.Errorf("front matter is not closed: missing %s line", delimiter)
}

// List returns the summaries of all posts, newest first
func (s *Store) List() []Summary {
	out := make([]Summary, len(s.posts))
	for i, p := range s.posts {
		out[i] = p.Summary
	}
	return out
}

// Get returns the post with the given slug
func (s *Store) Get(slug string) (Post, bool) {
	i, ok := s.bySlug[slug]
	if !ok {
		return Post{}, false
	}
	return s.posts[i], true
}

// Len returns the number of posts
func (s *Store) Len() int {
	return len(s.posts)
}
