package kml

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wrap(body string) []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2"><Document><name>Propostas</name>` + body + `</Document></kml>`)
}

func TestParseNonGeographicFolder(t *testing.T) {
	data := wrap(`
<Folder><name>Propostas s/ Local</name>
  <Placemark>
    <name>Mercado</name>
    <description><![CDATA[slug: x<br>Coordenadas: 38.71,-9.13]]></description>
  </Placemark>
</Folder>`)

	layers, err := Parse(data)
	require.NoError(t, err)
	assert.Empty(t, layers.Geographic)
	require.Len(t, layers.NonGeographic, 1)

	f := layers.NonGeographic[0]
	assert.False(t, f.Geographic)
	assert.Equal(t, []float64{38.71, -9.13}, f.Coordinates)
	assert.Equal(t, "x", f.Slug())
	_, hasRaw := f.Properties.Get("coordenadas")
	assert.False(t, hasRaw, "raw coordenadas key is replaced by the parsed pair")
}

func TestParseFolderClassification(t *testing.T) {
	tests := []struct {
		name       string
		folder     string
		geographic bool
	}{
		{"explicit marker", "Propostas s/ Local", false},
		{"sem local lowercase", "propostas sem local", false},
		{"sem local mixed case", "Propostas SEM LOCAL", false},
		{"regular folder", "Propostas Alvalade", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := wrap(`<Folder><name>` + tt.folder + `</name>
<Placemark><name>A</name><description><![CDATA[slug: a]]></description>
<Point><coordinates>-9.13,38.71,0</coordinates></Point></Placemark></Folder>`)

			layers, err := Parse(data)
			require.NoError(t, err)
			if tt.geographic {
				assert.Len(t, layers.Geographic, 1)
				assert.Empty(t, layers.NonGeographic)
			} else {
				assert.Empty(t, layers.Geographic)
				assert.Len(t, layers.NonGeographic, 1)
			}
		})
	}
}

func TestParseNoFoldersFallsBackToDefaultLayer(t *testing.T) {
	data := wrap(`
<Placemark><name>A</name><Point><coordinates>-9.13,38.71,0</coordinates></Point></Placemark>
<Placemark><name>B</name><Point><coordinates>-9.14,38.72,0</coordinates></Point></Placemark>`)

	layers, err := Parse(data)
	require.NoError(t, err)
	assert.Len(t, layers.Geographic, 2)
	assert.Empty(t, layers.NonGeographic)
	assert.True(t, layers.Geographic[0].Geographic)
}

func TestParseDescriptionPairs(t *testing.T) {
	data := wrap(`<Folder><name>Zona</name>
<Placemark>
  <name>  Praça Nova  </name>
  <description><![CDATA[Slug: praca<BR>eixo: Espaço Público<br/>descricao: Uma praça<br />trailing text without any pair]]></description>
  <Point><coordinates>-9.13,38.71,0</coordinates></Point>
</Placemark></Folder>`)

	layers, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, layers.Geographic, 1)

	f := layers.Geographic[0]
	name, _ := f.Properties.Get("name")
	assert.Equal(t, "Praça Nova", name, "placemark name is trimmed")

	slug, _ := f.Properties.Get("slug")
	assert.Equal(t, "praca", slug, "description keys are lower-cased")

	eixo, _ := f.Properties.Get("eixo")
	assert.Equal(t, "Espaço Público", eixo)
}

func TestParseExtendedDataOverwrites(t *testing.T) {
	data := wrap(`<Folder><name>Zona</name>
<Placemark>
  <name>A</name>
  <description><![CDATA[slug: from-description]]></description>
  <ExtendedData>
    <Data name="Slug"><value>from-extended</value></Data>
    <Data name="gx_media_links"><value>http://img/a.jpg</value></Data>
  </ExtendedData>
  <Point><coordinates>-9.13,38.71,0</coordinates></Point>
</Placemark></Folder>`)

	layers, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, layers.Geographic, 1)

	f := layers.Geographic[0]
	assert.Equal(t, "from-extended", f.Slug())
	links, _ := f.Properties.Get("gx_media_links")
	assert.Equal(t, "http://img/a.jpg", links)
}

func TestParseBrokenPlacemarkIsSkipped(t *testing.T) {
	data := wrap(`<Folder><name>Propostas s/ Local</name>
<Placemark><name>Broken</name><description><![CDATA[slug: b<br>coordenadas: not,numbers]]></description></Placemark>
<Placemark><name>Fine</name><description><![CDATA[slug: f<br>coordenadas: 38.7,-9.1]]></description></Placemark>
</Folder>`)

	layers, err := Parse(data)
	require.NoError(t, err, "one broken placemark must not abort the parse")
	require.Len(t, layers.NonGeographic, 1)
	assert.Equal(t, "f", layers.NonGeographic[0].Slug())
}

func TestParseGeometryKinds(t *testing.T) {
	data := wrap(`<Folder><name>Zona</name>
<Placemark><name>P</name><Point><coordinates>-9.13,38.71,0</coordinates></Point></Placemark>
<Placemark><name>L</name><LineString><coordinates>-9.1,38.7,0 -9.2,38.8,0</coordinates></LineString></Placemark>
<Placemark><name>G</name><Polygon><outerBoundaryIs><LinearRing><coordinates>-9.1,38.7 -9.2,38.7 -9.2,38.8 -9.1,38.7</coordinates></LinearRing></outerBoundaryIs></Polygon></Placemark>
<Placemark><name>N</name></Placemark>
</Folder>`)

	layers, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, layers.Geographic, 4)

	assert.IsType(t, orb.Point{}, layers.Geographic[0].Geometry)
	assert.IsType(t, orb.LineString{}, layers.Geographic[1].Geometry)
	assert.IsType(t, orb.Polygon{}, layers.Geographic[2].Geometry)
	assert.Nil(t, layers.Geographic[3].Geometry)
}

func TestParseMalformedDocumentFails(t *testing.T) {
	_, err := Parse([]byte("<kml><Document><Folder>"))
	require.Error(t, err)
}
