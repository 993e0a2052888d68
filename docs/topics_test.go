package docs

import (
	"io/fs"
	"regexp"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

func TestTopic(t *testing.T) {
	content, err := Topic("fifo")
	if err != nil {
		t.Fatalf("Topic(fifo) returned unexpected error: %v", err)
	}
	if !strings.Contains(content, "FIFO") {
		t.Errorf("fifo topic does not mention FIFO:\n%s", content)
	}

	if _, err := Topic("readme"); err != nil {
		t.Errorf("Topic(readme) returned unexpected error: %v", err)
	}

	if _, err := Topic("no-such-topic"); err == nil {
		t.Error("Topic() found a topic that does not exist")
	}
}

func TestTopics_StarExpandsInReadingOrder(t *testing.T) {
	all, err := Topic("*")
	if err != nil {
		t.Fatalf("Topic(*) returned unexpected error: %v", err)
	}
	offset := -1
	for _, name := range Names() {
		content, err := Topic(name)
		if err != nil {
			t.Fatalf("Topic(%s) returned unexpected error: %v", name, err)
		}
		i := strings.Index(all, content)
		if i < 0 {
			t.Fatalf("Topic(*) does not include topic %q", name)
		}
		if i <= offset {
			t.Errorf("topic %q appears out of reading order", name)
		}
		offset = i
	}
}

// TestNamesMatchEmbeddedPages keeps the reading-order list in sync with the
// embedded files: every name resolves, and every page except the readme is
// listed.
func TestNamesMatchEmbeddedPages(t *testing.T) {
	listed := make(map[string]bool)
	for _, name := range Names() {
		listed[name] = true
		if _, err := Topic(name); err != nil {
			t.Errorf("Topic(%s) returned unexpected error: %v", name, err)
		}
	}

	files, err := fs.Glob(pages, "*.md")
	if err != nil {
		t.Fatalf("cannot glob embedded pages: %v", err)
	}
	for _, f := range files {
		name := strings.TrimSuffix(f, ".md")
		if name == "readme" {
			continue
		}
		if !listed[name] {
			t.Errorf("embedded page %q is not listed as a topic", f)
		}
	}
}

// TestTopicsStructure ensures each topic is valid markdown opening with a
// level-1 heading, so concatenated topics render as separate chapters.
func TestTopicsStructure(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			content, err := Topic(name)
			if err != nil {
				t.Fatalf("Topic() returned unexpected error: %v", err)
			}
			source := []byte(content)
			doc := goldmark.DefaultParser().Parse(text.NewReader(source))
			first := doc.FirstChild()
			heading, ok := first.(*ast.Heading)
			if !ok {
				t.Fatalf("topic does not start with a heading, starts with %T", first)
			}
			if heading.Level != 1 {
				t.Errorf("topic opens with a level-%d heading, want level 1", heading.Level)
			}
		})
	}
}

// TestReadmeListsAllTopics keeps the readme index in sync with the topic set.
func TestReadmeListsAllTopics(t *testing.T) {
	readme, err := Topic("readme")
	if err != nil {
		t.Fatalf("Topic(readme) returned unexpected error: %v", err)
	}
	linked := regexp.MustCompile(`\[(\w+)\]\(\w+\.md\)`).FindAllStringSubmatch(readme, -1)
	listed := make(map[string]bool)
	for _, m := range linked {
		listed[m[1]] = true
	}

	for _, name := range Names() {
		if !listed[name] {
			t.Errorf("topic %q is not listed in readme.md", name)
		}
	}
	for name := range listed {
		if _, err := Topic(name); err != nil {
			t.Errorf("readme.md lists %q but: %v", name, err)
		}
	}
}
