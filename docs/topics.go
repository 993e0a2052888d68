// Package docs embeds the esop user documentation as markdown topics.
package docs

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed *.md
var pages embed.FS

// names lists the topics in reading order: the concepts first, then the
// mechanics behind each figure, then the data audits. The readme index, the
// shell completion and Topic("*") all follow this order.
var names = []string{"concepts", "currencies", "files", "fifo", "quality", "xirr"}

// Names returns the topic names in reading order.
func Names() []string { return append([]string(nil), names...) }

// Topic returns the markdown of one topic. "readme" returns the index, and
// "*" the whole manual, every topic concatenated in reading order.
func Topic(name string) (string, error) {
	if name == "*" {
		return Topics(names...)
	}
	content, err := pages.ReadFile(name + ".md")
	if err != nil {
		return "", fmt.Errorf("no documentation topic %q, want readme, * or one of: %s",
			name, strings.Join(names, ", "))
	}
	return string(content), nil
}

// Topics concatenates several topics into one document, "*" expanding to
// every topic in reading order.
func Topics(topics ...string) (string, error) {
	var b strings.Builder
	for _, name := range topics {
		expanded := []string{name}
		if name == "*" {
			expanded = names
		}
		for _, n := range expanded {
			content, err := Topic(n)
			if err != nil {
				return "", err
			}
			b.WriteString(content)
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}
