// Package embedded provides access to embedded theme and documentation files.
// This file enables loading help topics from the embedded filesystem for the
// CLI docs command.
package embedded

import (
	"embed"
	"fmt"
	"path/filepath"
	"strings"
)

// DocsFS contains all embedded documentation topic files.
//
//go:embed docs/*.md
var DocsFS embed.FS

// DocsLoader provides access to markdown help topics embedded in the binary
// at compile time.
type DocsLoader struct{}

// NewDocsLoader creates a new DocsLoader for accessing embedded topics.
func NewDocsLoader() *DocsLoader {
	return &DocsLoader{}
}

// LoadTopic loads the content of an embedded topic by name.
// The name may be given with or without the .md extension.
func (d *DocsLoader) LoadTopic(name string) (string, error) {
	filename := name
	if !strings.HasSuffix(filename, ".md") {
		filename += ".md"
	}

	topicPath := filepath.Join("docs", filename)

	content, err := DocsFS.ReadFile(topicPath)
	if err != nil {
		return "", fmt.Errorf("help topic not found: %s", name)
	}

	return string(content), nil
}

// ListAvailableTopics returns a list of all available topic names
// (without the .md extension) that can be loaded.
func (d *DocsLoader) ListAvailableTopics() ([]string, error) {
	entries, err := DocsFS.ReadDir("docs")
	if err != nil {
		return nil, fmt.Errorf("failed to read docs directory: %w", err)
	}

	var topics []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasSuffix(name, ".md") {
			topics = append(topics, strings.TrimSuffix(name, ".md"))
		}
	}

	return topics, nil
}

// TopicExists checks if a topic with the given name is embedded.
func (d *DocsLoader) TopicExists(name string) bool {
	filename := name
	if !strings.HasSuffix(filename, ".md") {
		filename += ".md"
	}

	_, err := DocsFS.ReadFile(filepath.Join("docs", filename))
	return err == nil
}
