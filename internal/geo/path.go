package geo

import (
	"strings"
	"unicode"
)

// DataPrefix is where boundary files are published to the browser.
const DataPrefix = "/data/"

const ext = ".geojson"

// Slug lower-cases s, turns whitespace runs into a single dash and drops every other
// character outside [a-z0-9-].
func Slug(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsSpace(r):
			pendingDash = true
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-':
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		}
	}
	return b.String()
}

// BoundaryFile names the GeoJSON file for a kelurahan, or for one of its RWs when rw is set.
func BoundaryFile(kelurahan, rw string) string {
	name := Slug(kelurahan)
	if r := Slug(rw); r != "" {
		name += "-" + r
	}
	return name + ext
}

// BoundaryPath is BoundaryFile under DataPrefix, e.g. ("Pedalangan", "RW 3") gives
// /data/pedalangan-rw-3.geojson.
func BoundaryPath(kelurahan, rw string) string {
	return DataPrefix + BoundaryFile(kelurahan, rw)
}

// fallbackChain lists the paths tried for a selection, most specific first.
func fallbackChain(kelurahan, rw, defaultFile string) []string {
	var chain []string
	add := func(p string) {
		for _, existing := range chain {
			if existing == p {
				return
			}
		}
		chain = append(chain, p)
	}

	if Slug(kelurahan) != "" {
		if Slug(rw) != "" {
			add(BoundaryPath(kelurahan, rw))
		}
		add(BoundaryPath(kelurahan, ""))
	}
	if defaultFile != "" {
		add(DataPrefix + strings.TrimPrefix(defaultFile, DataPrefix))
	}
	return chain
}
