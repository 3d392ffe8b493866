package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is a YAML list of subscriptions to register at startup, so a fresh
// deployment can be stocked without going through the product's subscribe
// flow.
type File struct {
	Subscriptions []Subscription `yaml:"subscriptions"`
}

type Subscription struct {
	User    string   `yaml:"user"`
	URL     string   `yaml:"url"`
	Title   string   `yaml:"title"`
	SiteURL string   `yaml:"site_url"`
	Tags    []string `yaml:"tags"`
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed YAML: %w", err)
	}

	for i, sub := range file.Subscriptions {
		if sub.User == "" {
			return nil, fmt.Errorf("subscription at index %d: user is required", i)
		}
		if sub.URL == "" {
			return nil, fmt.Errorf("subscription at index %d: url is required", i)
		}
	}

	return &file, nil
}
