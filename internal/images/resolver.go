// Package images resolves remote proposal images to local, web-sized files.
package images

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jmatoso/propmap/internal/feature"
	"github.com/jmatoso/propmap/internal/fetch"
	"github.com/jmatoso/propmap/internal/proposal"

	"github.com/chai2010/webp"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
)

var extPattern = regexp.MustCompile(`(?i)\.(jpe?g|png|gif|webp|bmp|svg)$`)

// Resolver downloads each distinct image URL once per run and rewrites
// group and feature image references to the resulting local paths.
type Resolver struct {
	client   *http.Client
	dir      string // filesystem directory for image files
	webBase  string // site-absolute prefix used in rewritten references
	maxWidth int

	// Force refetches images even when the target file already exists.
	Force bool

	resolved map[string]string // URL -> web path
	failed   map[string]bool
	fetches  int
}

// NewResolver returns a resolver writing image files under dir and
// referencing them under webBase.
func NewResolver(client *http.Client, dir, webBase string, maxWidth int) *Resolver {
	return &Resolver{
		client:   client,
		dir:      dir,
		webBase:  webBase,
		maxWidth: maxWidth,
		resolved: make(map[string]string),
		failed:   make(map[string]bool),
	}
}

// Fetches returns how many network fetches the resolver performed.
func (r *Resolver) Fetches() int {
	return r.fetches
}

// ResolveGroup resolves every raw URL in the group's image list, then
// re-derives each member feature's own image references from the shared
// URL map. A URL that cannot be fetched or processed is dropped, never
// fatal.
func (r *Resolver) ResolveGroup(g *proposal.Group) {
	g.Resolved = g.Resolved[:0]

	for _, rawURL := range g.AllImages {
		local, err := r.resolve(g.Slug, rawURL)
		if err != nil {
			log.Warn().
				Err(err).
				Str("slug", g.Slug).
				Str("url", rawURL).
				Msg("Image dropped")
			continue
		}
		g.Resolved = append(g.Resolved, local)
	}

	for _, f := range g.Geographic {
		r.rewriteFeature(f)
	}
	for _, f := range g.NonGeographic {
		r.rewriteFeature(f)
	}
}

// rewriteFeature replaces a feature's raw image URLs with the subset of
// local paths it originally referenced. A feature left without any resolved
// image loses the property instead of keeping dead URLs.
func (r *Resolver) rewriteFeature(f *feature.Feature) {
	raw, ok := f.Properties.Get("gx_media_links")
	if !ok {
		return
	}

	var locals []string
	for _, u := range proposal.SplitLinks(raw) {
		if local, ok := r.resolved[strings.TrimSpace(u)]; ok {
			locals = append(locals, local)
		}
	}

	if len(locals) == 0 {
		f.Properties.Delete("gx_media_links")
		return
	}
	f.Properties.Set("gx_media_links", strings.Join(locals, " "))
}

// resolve maps one URL to a local web path, fetching and transcoding only
// when the target file does not already exist on disk.
func (r *Resolver) resolve(slug, rawURL string) (string, error) {
	if local, ok := r.resolved[rawURL]; ok {
		return local, nil
	}
	if r.failed[rawURL] {
		return "", fmt.Errorf("previously failed")
	}

	hash := fmt.Sprintf("%x", sha1.Sum([]byte(rawURL)))[:9]
	ext := sniffExt(rawURL)
	name := fmt.Sprintf("%s_%s%s", slug, hash, ext)
	jpgName := fmt.Sprintf("%s_%s.jpg", slug, hash)

	// Short-circuit when the file (or its transcoded .jpg counterpart)
	// is already on disk from an earlier run.
	if !r.Force {
		if ext != ".jpg" && fileExists(filepath.Join(r.dir, name)) {
			r.resolved[rawURL] = r.webPath(name)
			return r.resolved[rawURL], nil
		}
		if fileExists(filepath.Join(r.dir, jpgName)) {
			r.resolved[rawURL] = r.webPath(jpgName)
			return r.resolved[rawURL], nil
		}
	}

	data, err := fetch.Get(r.client, rawURL)
	if err != nil {
		r.failed[rawURL] = true
		return "", err
	}
	r.fetches++

	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return "", err
	}

	// SVG stays vector, everything else is transcoded to a sized JPEG.
	if ext == ".svg" {
		if err := os.WriteFile(filepath.Join(r.dir, name), data, 0644); err != nil {
			r.failed[rawURL] = true
			return "", err
		}
		r.resolved[rawURL] = r.webPath(name)
		return r.resolved[rawURL], nil
	}

	img, err := decodeImage(data, ext)
	if err != nil {
		r.failed[rawURL] = true
		return "", fmt.Errorf("decode: %w", err)
	}
	img = r.shrink(img)

	out, err := os.Create(filepath.Join(r.dir, jpgName))
	if err != nil {
		r.failed[rawURL] = true
		return "", err
	}
	defer func() { _ = out.Close() }()

	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: 85}); err != nil {
		r.failed[rawURL] = true
		return "", err
	}

	log.Debug().Str("url", rawURL).Str("file", jpgName).Msg("Image resolved")
	r.resolved[rawURL] = r.webPath(jpgName)
	return r.resolved[rawURL], nil
}

func (r *Resolver) webPath(name string) string {
	return "/" + path.Join(r.webBase, name)
}

// shrink downscales an image to the configured maximum width, keeping the
// aspect ratio.
func (r *Resolver) shrink(img image.Image) image.Image {
	bounds := img.Bounds()
	if r.maxWidth <= 0 || bounds.Dx() <= r.maxWidth {
		return img
	}

	height := bounds.Dy() * r.maxWidth / bounds.Dx()
	dst := image.NewRGBA(image.Rect(0, 0, r.maxWidth, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func decodeImage(data []byte, ext string) (image.Image, error) {
	if ext == ".webp" {
		if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
			return img, nil
		}
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

// sniffExt extracts a known image extension from the URL path, defaulting
// to .jpg.
func sniffExt(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		p = u.Path
	}

	if m := extPattern.FindString(p); m != "" {
		ext := strings.ToLower(m)
		if ext == ".jpeg" {
			return ".jpg"
		}
		return ext
	}
	return ".jpg"
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Size() > 0
}
