package csvload

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// defaultAliases maps short or alternate spellings found in the season files
// to one canonical club name. Keys are compared after normalization.
var defaultAliases = map[string]string{
	"Ath Bilbao": "Athletic Bilbao",
	"Ath Madrid": "Atletico Madrid",
	"Atletico":   "Atletico Madrid",
	"Atl Madrid": "Atletico Madrid",
	"Espanol":    "Espanyol",
	"La Coruna":  "Deportivo La Coruna",
	"Deportivo":  "Deportivo La Coruna",
	"Vallecano":  "Rayo Vallecano",
	"Sociedad":   "Real Sociedad",
	"Sp Gijon":   "Sporting Gijon",
	"Betis":      "Real Betis",
	"Santander":  "Racing Santander",
	"Racing":     "Racing Santander",
	"Sevilla FC": "Sevilla",
	"Granada CF": "Granada",
	"Cadiz CF":   "Cadiz",
	"Leganes":    "CD Leganes",
	"Almeria":    "UD Almeria",
	"Alaves":     "Deportivo Alaves",
}

// Normalizer resolves team name spellings to a canonical name.
type Normalizer struct {
	aliases map[string]string
}

// NewNormalizer creates a Normalizer with the built-in aliases plus extra.
// Entries in extra win over built-in ones.
func NewNormalizer(extra map[string]string) *Normalizer {
	n := &Normalizer{aliases: make(map[string]string, len(defaultAliases)+len(extra))}
	for k, v := range defaultAliases {
		n.aliases[key(k)] = v
	}
	for k, v := range extra {
		n.aliases[key(k)] = clean(v)
	}
	return n
}

// Normalize strips diacritics, collapses whitespace and applies aliases.
// Unaliased names keep their casing.
func (n *Normalizer) Normalize(name string) string {
	c := clean(name)
	if c == "" {
		return ""
	}
	if canonical, ok := n.aliases[strings.ToLower(c)]; ok {
		return canonical
	}
	return c
}

func key(s string) string {
	return strings.ToLower(clean(s))
}

func clean(s string) string {
	return collapseWhitespace(stripDiacritics(strings.TrimSpace(s)))
}

func stripDiacritics(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if !unicode.Is(unicode.Mn, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
