package main

import (
	"os"

	"github.com/jmatoso/propmap/internal/config"
	"github.com/jmatoso/propmap/internal/fetch"
	"github.com/jmatoso/propmap/internal/logger"
	"github.com/jmatoso/propmap/internal/processor"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string   `short:"c" long:"config"       env:"CONFIG_FILE" description:"Path to configuration file" default:"config.yaml"`
	Limit       []string `short:"l" long:"limit"        env:"LIMIT_NAMES" description:"Limit processing to specific region names"`
	MapID       string   `short:"m" long:"map-id"       env:"MAP_ID"      description:"Override the My Maps identifier for the selected regions"`
	Force       bool     `short:"f" long:"force"        description:"Force re-fetch of already downloaded images"`
	SkipImages  bool     `short:"s" long:"skip-images"  description:"Skip image downloading and rewriting"`
	GeoJSONOnly bool     `short:"g" long:"geojson-only" description:"Generate GeoJSON only"`
	PagesOnly   bool     `short:"p" long:"pages-only"   description:"Generate pages only"`
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

	opts.Logger.Setup()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Filter regions if limit is set
	regionsToProcess := cfg.Regions
	if len(opts.Limit) > 0 {
		regionsToProcess = make([]config.Region, 0)
		availableRegions := make(map[string]config.Region)
		for _, r := range cfg.Regions {
			availableRegions[r.Name] = r
		}

		seen := make(map[string]bool)

		for _, limitName := range opts.Limit {
			if seen[limitName] {
				continue
			}
			seen[limitName] = true

			if r, ok := availableRegions[limitName]; ok {
				regionsToProcess = append(regionsToProcess, r)
			} else {
				log.Error().
					Str("name", limitName).
					Msg("Region specified in --limit not found in configuration")
			}
		}
	}

	if opts.MapID != "" {
		for i := range regionsToProcess {
			regionsToProcess[i].MapID = opts.MapID
		}
	}

	log.Info().
		Int("regions_total", len(cfg.Regions)).
		Int("regions_queued", len(regionsToProcess)).
		Msg("Starting loader")

	client := fetch.NewClient()
	failed := 0

	procOpts := processor.Options{
		Force:       opts.Force,
		SkipImages:  opts.SkipImages,
		GeoJSONOnly: opts.GeoJSONOnly,
		PagesOnly:   opts.PagesOnly,
	}

	for _, region := range regionsToProcess {
		if _, err := processor.ProcessRegion(client, cfg, region, procOpts); err != nil {
			log.Error().Err(err).Str("region", region.Name).Msg("Failed to process region")
			failed++
		}
	}

	if failed > 0 {
		log.Fatal().Int("failed", failed).Msg("Loader finished with errors")
	}
	log.Info().Msg("Loader finished successfully")
}
