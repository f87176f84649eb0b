// Package palette assigns a color and CSS class to each eixo (category)
// for the front-end map legend.
package palette

import (
	"sort"
	"strings"

	"github.com/jmatoso/propmap/internal/config"

	"github.com/rs/zerolog/log"
)

// Assignment is the color/class pair attached to one eixo value.
type Assignment struct {
	Color string `json:"color"`
	Class string `json:"class"`
}

// defaultEntries is the fallback table used when the configuration carries
// no palette.
var defaultEntries = []config.PaletteEntry{
	{Match: "", Color: "#e63946", Class: "eixo-1"},
	{Match: "", Color: "#457b9d", Class: "eixo-2"},
	{Match: "", Color: "#2a9d8f", Class: "eixo-3"},
	{Match: "", Color: "#e9c46a", Class: "eixo-4"},
	{Match: "", Color: "#8338ec", Class: "eixo-5"},
	{Match: "", Color: "#f4845f", Class: "eixo-6"},
}

// Assign maps every distinct eixo value to a color and class. Each eixo is
// first matched against the configured table (case-insensitive substring in
// either direction); eixos left unmatched are sorted and handed palette
// entries round-robin so the assignment does not depend on encounter order.
func Assign(entries []config.PaletteEntry, eixos []string) map[string]Assignment {
	if len(entries) == 0 {
		entries = defaultEntries
	}

	out := make(map[string]Assignment)
	var unmatched []string

	for _, eixo := range dedupe(eixos) {
		entry, ok := match(entries, eixo)
		if ok {
			out[eixo] = Assignment{Color: entry.Color, Class: entry.Class}
			continue
		}
		unmatched = append(unmatched, eixo)
	}

	sort.Strings(unmatched)
	for i, eixo := range unmatched {
		entry := entries[i%len(entries)]
		out[eixo] = Assignment{Color: entry.Color, Class: entry.Class}
		log.Debug().
			Str("eixo", eixo).
			Str("color", entry.Color).
			Msg("Eixo not in palette table, assigned overflow color")
	}

	return out
}

func match(entries []config.PaletteEntry, eixo string) (config.PaletteEntry, bool) {
	needle := strings.ToLower(strings.TrimSpace(eixo))
	for _, e := range entries {
		m := strings.ToLower(strings.TrimSpace(e.Match))
		if m == "" {
			continue
		}
		if strings.Contains(needle, m) || strings.Contains(m, needle) {
			return e, true
		}
	}
	return config.PaletteEntry{}, false
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
