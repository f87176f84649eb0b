package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertiesOrder(t *testing.T) {
	p := NewProperties()
	p.Set("b", "1")
	p.Set("a", "2")
	p.Set("c", "3")
	p.Set("a", "override")

	assert.Equal(t, []string{"b", "a", "c"}, p.Keys(), "overwrite keeps original position")

	v, ok := p.Get("a")
	require.True(t, ok)
	assert.Equal(t, "override", v)

	p.Delete("a")
	assert.Equal(t, []string{"b", "c"}, p.Keys())
	_, ok = p.Get("a")
	assert.False(t, ok)

	p.Delete("missing")
	assert.Equal(t, 2, p.Len())
}

func TestTidyWhitelist(t *testing.T) {
	f := New(true)
	f.Properties.Set("Slug", "praca")
	f.Properties.Set("DESCRICAO", "texto")
	f.Properties.Set("gx_media_links", "http://a/x.jpg")
	f.Properties.Set("styleurl", "#icon-123")
	f.Properties.Set("stroke-width", "2")

	f.Tidy()

	assert.Equal(t, []string{"slug", "descricao", "gx_media_links"}, f.Properties.Keys())
	v, _ := f.Properties.Get("slug")
	assert.Equal(t, "praca", v)
}

func TestTidyIdempotent(t *testing.T) {
	f := New(true)
	f.Properties.Set("Slug", "x")
	f.Properties.Set("Eixo", "Mobilidade")
	f.Properties.Set("junk", "y")

	f.Tidy()
	first := f.Properties.Keys()
	f.Tidy()

	assert.Equal(t, first, f.Properties.Keys())
}

func TestTidyDropsCoordinatesForGeographic(t *testing.T) {
	f := New(true)
	f.Coordinates = []float64{38.71, -9.13}
	f.Tidy()
	assert.Nil(t, f.Coordinates)

	ng := New(false)
	ng.Coordinates = []float64{38.71, -9.13}
	ng.Tidy()
	assert.Equal(t, []float64{38.71, -9.13}, ng.Coordinates)
}

func TestSlugTrimmed(t *testing.T) {
	f := New(false)
	f.Properties.Set("slug", "  praca  ")
	assert.Equal(t, "praca", f.Slug())

	empty := New(false)
	assert.Equal(t, "", empty.Slug())
}
