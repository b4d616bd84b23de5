package main

import (
	_ "embed"
	"fmt"
	"strings"

	"lexdraft-backend/models"
	"lexdraft-backend/service"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type catalogFile struct {
	Sources []catalogEntry `yaml:"sources"`
}

type catalogEntry struct {
	Type      string `yaml:"type"`
	Reference string `yaml:"reference"`
	Excerpt   string `yaml:"excerpt"`
	URL       string `yaml:"url"`
}

// parseCatalog decodes a YAML source catalog into create requests.
// Every entry is checked up front so a bad file seeds nothing.
func parseCatalog(data []byte) ([]service.CreateSourceRequest, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(file.Sources) == 0 {
		return nil, fmt.Errorf("catalog has no sources")
	}

	reqs := make([]service.CreateSourceRequest, 0, len(file.Sources))
	for i, e := range file.Sources {
		sourceType := models.SourceType(strings.TrimSpace(e.Type))
		if !sourceType.Valid() {
			return nil, fmt.Errorf("entry %d: invalid source type %q", i+1, e.Type)
		}
		reference := strings.TrimSpace(e.Reference)
		if reference == "" {
			return nil, fmt.Errorf("entry %d: reference is required", i+1)
		}
		req := service.CreateSourceRequest{
			Type:      sourceType,
			Reference: reference,
			Excerpt:   strings.TrimSpace(e.Excerpt),
		}
		if url := strings.TrimSpace(e.URL); url != "" {
			req.URL = &url
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}
