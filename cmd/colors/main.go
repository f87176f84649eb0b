package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmatoso/propmap/internal/config"
	"github.com/jmatoso/propmap/internal/pages"
	"github.com/jmatoso/propmap/internal/palette"

	"github.com/jessevdk/go-flags"
	"github.com/tdewolff/minify/v2"
	minjson "github.com/tdewolff/minify/v2/json"
	"gopkg.in/yaml.v3"
)

type Options struct {
	ConfigFile string `short:"c" long:"config" env:"CONFIG_FILE" description:"Path to configuration file" default:"config.yaml"`
	Output     string `short:"o" long:"out" description:"Output file path. Writes to stdout if empty"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Collect every eixo across the generated region data files, in
	// region order.
	var eixos []string
	for _, region := range cfg.Regions {
		dataPath := filepath.Join(cfg.SiteDir, "_data", "propostas", region.Name+".yml")
		data, err := os.ReadFile(dataPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skipping %s: %v\n", dataPath, err)
			continue
		}

		var entries []pages.IndexEntry
		if err := yaml.Unmarshal(data, &entries); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing %s: %v\n", dataPath, err)
			os.Exit(1)
		}
		for _, e := range entries {
			eixos = append(eixos, e.Eixo)
		}
	}

	assignments := palette.Assign(cfg.Palette, eixos)

	outputData, err := json.Marshal(assignments)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling color map: %v\n", err)
		os.Exit(1)
	}

	m := minify.New()
	m.AddFunc("application/json", minjson.Minify)
	outputData, err = m.Bytes("application/json", outputData)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error minifying color map: %v\n", err)
		os.Exit(1)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, outputData, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Color map for %d categories written to %s\n", len(assignments), opts.Output)
	} else {
		fmt.Println(string(outputData))
	}
}
