// Package pages generates the Jekyll page stubs and index data consumed by
// the campaign site.
package pages

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmatoso/propmap/internal/proposal"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// FrontMatter is the YAML header of a generated proposal page. Field order
// here is the order Jekyll sees.
type FrontMatter struct {
	Layout         string    `yaml:"layout"`
	Title          string    `yaml:"title"`
	Slug           string    `yaml:"slug"`
	Region         string    `yaml:"region"`
	Eixo           string    `yaml:"eixo,omitempty"`
	Sumario        string    `yaml:"sumario,omitempty"`
	HasMapLocation bool      `yaml:"has_map_location"`
	Images         []string  `yaml:"images,omitempty"`
	Coordinates    []float64 `yaml:"coordinates,flow,omitempty"`
}

// IndexEntry is one row of the per-region data file the site index and map
// panel iterate over.
type IndexEntry struct {
	Slug           string   `yaml:"slug"`
	Title          string   `yaml:"title"`
	Eixo           string   `yaml:"eixo,omitempty"`
	HasMapLocation bool     `yaml:"has_map_location"`
	Images         []string `yaml:"images,omitempty"`
}

// WritePages writes one page stub per group into dir, named by slug. It
// returns how many pages were written.
func WritePages(dir, region string, groups *proposal.Groups) (int, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, err
	}

	count := 0
	for _, g := range groups.All() {
		body, err := renderPage(region, g)
		if err != nil {
			return count, fmt.Errorf("render page for %s: %w", g.Slug, err)
		}

		path := filepath.Join(dir, g.Slug+".md")
		if err := os.WriteFile(path, body, 0644); err != nil {
			return count, err
		}
		count++
	}

	log.Info().Str("dir", dir).Int("pages", count).Msg("Proposal pages written")
	return count, nil
}

func renderPage(region string, g *proposal.Group) ([]byte, error) {
	fm := FrontMatter{
		Layout:         "proposta",
		Title:          title(g),
		Slug:           g.Slug,
		Region:         region,
		HasMapLocation: g.HasMapLocation,
		Images:         g.Resolved,
	}
	if v, ok := g.Combined.Get("eixo"); ok {
		fm.Eixo = v
	}
	if v, ok := g.Combined.Get("sumario"); ok {
		fm.Sumario = v
	}
	for _, f := range g.NonGeographic {
		if len(f.Coordinates) >= 2 {
			fm.Coordinates = f.Coordinates
			break
		}
	}

	header, err := yaml.Marshal(&fm)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(header)
	buf.WriteString("---\n")
	if descricao, ok := g.Combined.Get("descricao"); ok && descricao != "" {
		buf.WriteString("\n")
		buf.WriteString(descricao)
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

func title(g *proposal.Group) string {
	if v, ok := g.Combined.Get("proposta"); ok && v != "" {
		return v
	}
	if v, ok := g.Combined.Get("name"); ok && v != "" {
		return v
	}
	return g.Slug
}

// WriteIndexData writes the per-region YAML data file listing every group
// in first-encounter order.
func WriteIndexData(path, region string, groups *proposal.Groups) error {
	entries := make([]IndexEntry, 0, groups.Len())
	for _, g := range groups.All() {
		entry := IndexEntry{
			Slug:           g.Slug,
			Title:          title(g),
			HasMapLocation: g.HasMapLocation,
			Images:         g.Resolved,
		}
		if v, ok := g.Combined.Get("eixo"); ok {
			entry.Eixo = v
		}
		entries = append(entries, entry)
	}

	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal index data for %s: %w", region, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}

	log.Info().Str("path", path).Int("groups", groups.Len()).Msg("Index data written")
	return nil
}
