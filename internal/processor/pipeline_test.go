package processor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmatoso/propmap/internal/config"
	"github.com/jmatoso/propmap/internal/fetch"

	orbgeojson "github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKML = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2"><Document><name>Propostas Teste</name>
<Folder><name>Propostas no mapa</name>
  <Placemark>
    <name>Praça A</name>
    <description><![CDATA[slug: praca<br>eixo: Espaço Público<br>descricao: A]]></description>
    <Point><coordinates>-9.13,38.71,0</coordinates></Point>
  </Placemark>
  <Placemark>
    <name>Praça B</name>
    <description><![CDATA[slug: praca<br>descricao: B]]></description>
    <Point><coordinates>-9.14,38.72,0</coordinates></Point>
  </Placemark>
  <Placemark>
    <name>Fora do mundo</name>
    <description><![CDATA[slug: fora]]></description>
    <Point><coordinates>200,45,0</coordinates></Point>
  </Placemark>
</Folder>
<Folder><name>Propostas s/ Local</name>
  <Placemark>
    <name>Mercado</name>
    <description><![CDATA[slug: mercado<br>coordenadas: 38.71,-9.13]]></description>
  </Placemark>
</Folder>
</Document></kml>`

func testConfig(t *testing.T) (*config.Config, config.Region) {
	t.Helper()

	siteDir := t.TempDir()
	kmlPath := filepath.Join(siteDir, "source.kml")
	require.NoError(t, os.WriteFile(kmlPath, []byte(testKML), 0644))

	cfg := &config.Config{
		SiteDir:       siteDir,
		ImageMaxWidth: 1600,
	}
	region := config.Region{Name: "alvalade", KMLCache: kmlPath}
	return cfg, region
}

func TestProcessRegion(t *testing.T) {
	cfg, region := testConfig(t)

	stats, err := ProcessRegion(fetch.NewClient(), cfg, region, Options{SkipImages: true})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Geographic)
	assert.Equal(t, 1, stats.InvalidGeometry, "out-of-range longitude is dropped")
	assert.Equal(t, 1, stats.NonGeographic)
	assert.Equal(t, 2, stats.Groups)
	assert.Equal(t, 2, stats.Pages, "one page per group")

	// GeoJSON holds only the valid geographic features.
	data, err := os.ReadFile(filepath.Join(cfg.SiteDir, "assets", "geojson", "alvalade.geojson"))
	require.NoError(t, err)
	fc, err := orbgeojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	assert.Len(t, fc.Features, 2)

	// Both placemarks merged into one proposal with concatenated text.
	page, err := os.ReadFile(filepath.Join(cfg.SiteDir, "_propostas", "alvalade", "praca.md"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "A\n\nB")

	// Off-map proposal got its own page and kept its parsed coordinates.
	mercado, err := os.ReadFile(filepath.Join(cfg.SiteDir, "_propostas", "alvalade", "mercado.md"))
	require.NoError(t, err)
	assert.Contains(t, string(mercado), "has_map_location: false")
	assert.Contains(t, string(mercado), "[38.71, -9.13]")

	// Index data lists groups in encounter order.
	index, err := os.ReadFile(filepath.Join(cfg.SiteDir, "_data", "propostas", "alvalade.yml"))
	require.NoError(t, err)
	assert.Less(t,
		strings.Index(string(index), "praca"),
		strings.Index(string(index), "mercado"))
}

func TestProcessRegionGeoJSONOnly(t *testing.T) {
	cfg, region := testConfig(t)

	stats, err := ProcessRegion(fetch.NewClient(), cfg, region, Options{SkipImages: true, GeoJSONOnly: true})
	require.NoError(t, err)
	assert.Zero(t, stats.Pages)

	assert.FileExists(t, filepath.Join(cfg.SiteDir, "assets", "geojson", "alvalade.geojson"))
	assert.NoFileExists(t, filepath.Join(cfg.SiteDir, "_propostas", "alvalade", "praca.md"))
}

func TestProcessRegionDeterministic(t *testing.T) {
	cfg, region := testConfig(t)

	_, err := ProcessRegion(fetch.NewClient(), cfg, region, Options{SkipImages: true})
	require.NoError(t, err)
	first, err := os.ReadFile(filepath.Join(cfg.SiteDir, "assets", "geojson", "alvalade.geojson"))
	require.NoError(t, err)

	_, err = ProcessRegion(fetch.NewClient(), cfg, region, Options{SkipImages: true})
	require.NoError(t, err)
	second, err := os.ReadFile(filepath.Join(cfg.SiteDir, "assets", "geojson", "alvalade.geojson"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestProcessRegionMissingSource(t *testing.T) {
	cfg := &config.Config{SiteDir: t.TempDir()}
	region := config.Region{Name: "vazio"}

	_, err := ProcessRegion(fetch.NewClient(), cfg, region, Options{SkipImages: true})
	require.Error(t, err, "missing map identifier is fatal for the run")
}
