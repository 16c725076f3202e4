// Package docs holds the rra documentation topics, as markdown.
package docs

import (
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strings"
)

//go:embed *.md
var docs embed.FS

// readme is the index of the topics, it is not a topic itself.
const readme = "readme"

// Topic returns the content of a documentation topic.
func Topic(name string) (string, error) {
	content, err := docs.ReadFile(name + ".md")
	if err != nil {
		return "", fmt.Errorf("topic %q not found, available topics: %s", name, strings.Join(mustAll(), ", "))
	}
	return string(content), nil
}

// Topics returns the content of several topics concatenated together.
// "*" stands for every topic, with no name it returns the index.
func Topics(names ...string) (string, error) {
	if len(names) == 0 {
		names = []string{readme}
	}
	var b strings.Builder
	for _, name := range names {
		expanded := []string{name}
		if name == "*" {
			expanded = mustAll()
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

// All returns the names of the available topics, sorted.
func All() ([]string, error) {
	entries, err := fs.ReadDir(docs, ".")
	if err != nil {
		return nil, err
	}
	var topics []string
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".md")
		if e.IsDir() || name == readme {
			continue
		}
		topics = append(topics, name)
	}
	slices.Sort(topics)
	return topics, nil
}

// mustAll lists the embedded topics, which cannot fail.
func mustAll() []string {
	topics, err := All()
	if err != nil {
		panic(err)
	}
	return topics
}
