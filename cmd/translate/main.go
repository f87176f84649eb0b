package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmatoso/propmap/internal/config"
	"github.com/jmatoso/propmap/internal/fetch"
	"github.com/jmatoso/propmap/internal/logger"
	"github.com/jmatoso/propmap/internal/translate"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string   `short:"c" long:"config" env:"CONFIG_FILE" description:"Path to configuration file" default:"config.yaml"`
	Limit      []string `short:"l" long:"limit"  env:"LIMIT_NAMES" description:"Limit processing to specific region names"`
	Lang       string   `short:"t" long:"lang"   env:"TARGET_LANG" description:"Target language code (overrides configuration)"`
}

// translatedKeys are the front matter fields worth machine-translating.
var translatedKeys = []string{"title", "sumario"}

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

	lang := opts.Lang
	if lang == "" {
		lang = cfg.Translate.TargetLang
	}
	if lang == "" {
		log.Fatal().Msg("No target language configured")
	}

	keyEnv := cfg.Translate.KeyEnv
	if keyEnv == "" {
		keyEnv = "DEEPL_AUTH_KEY"
	}
	authKey := os.Getenv(keyEnv)
	if authKey == "" {
		log.Fatal().Str("env", keyEnv).Msg("Missing DeepL auth key")
	}

	client := translate.NewClient(fetch.NewClient(), cfg.Translate.APIURL, authKey, lang)

	regions := cfg.Regions
	if len(opts.Limit) > 0 {
		byName := make(map[string]config.Region)
		for _, r := range cfg.Regions {
			byName[r.Name] = r
		}
		regions = regions[:0]
		for _, name := range opts.Limit {
			if r, ok := byName[name]; ok {
				regions = append(regions, r)
			} else {
				log.Error().Str("name", name).Msg("Region specified in --limit not found in configuration")
			}
		}
	}

	total := 0
	for _, region := range regions {
		n, err := translateRegion(cfg.SiteDir, region.Name, lang, client)
		if err != nil {
			log.Error().Err(err).Str("region", region.Name).Msg("Failed to translate region pages")
			continue
		}
		total += n
	}

	log.Info().Int("pages", total).Str("lang", lang).Msg("Translation finished")
}

func translateRegion(siteDir, region, lang string, client *translate.Client) (int, error) {
	srcDir := filepath.Join(siteDir, "_propostas", region)
	dstDir := filepath.Join(srcDir, strings.ToLower(lang))

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return 0, err
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		src := filepath.Join(srcDir, entry.Name())
		translated, err := translatePage(src, client)
		if err != nil {
			log.Warn().Err(err).Str("page", src).Msg("Page skipped")
			continue
		}

		if err := os.WriteFile(filepath.Join(dstDir, entry.Name()), translated, 0644); err != nil {
			return count, err
		}
		count++
	}

	return count, nil
}

// translatePage translates the body and selected front matter fields of one
// generated page.
func translatePage(path string, client *translate.Client) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	parts := strings.SplitN(string(raw), "---\n", 3)
	if len(parts) < 3 {
		return nil, fmt.Errorf("page %s has no front matter", path)
	}

	var fm map[string]any
	if err := yaml.Unmarshal([]byte(parts[1]), &fm); err != nil {
		return nil, err
	}

	for _, key := range translatedKeys {
		if v, ok := fm[key].(string); ok && v != "" {
			fm[key] = client.Translate(v)
		}
	}

	header, err := yaml.Marshal(fm)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(header)
	buf.WriteString("---\n")
	buf.WriteString(client.Translate(parts[2]))
	return buf.Bytes(), nil
}
