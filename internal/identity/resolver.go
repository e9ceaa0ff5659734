package identity

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/Schless09/Fore-cast-sub001/internal/models"
)

// defaultAliases holds known nickname pairs that the prefix rule cannot be
// trusted to catch. Keys and values are normalized names. Data Golf and the
// tour use different spellings for these players.
var defaultAliases = map[string]string{
	"nico echavarria": "nicolas echavarria",
	"matti schmid":    "matthias schmid",
	"s.t. kim":        "seung taek kim",
}

type indexedPlayer struct {
	id    uuid.UUID
	first string
	last  string
	norm  string
}

// Resolver maps provider display names to internally tracked player IDs.
// Matching tiers, in fixed precedence order: exact normalized match, alias
// table, last-name + first-name-prefix, then a bounded fuzzy pass. A miss
// is not an error; unmatched entrants stay in the raw snapshot so a later,
// richer alias table can recover them without re-fetching.
type Resolver struct {
	logger  *logrus.Logger
	exact   map[string]uuid.UUID
	players []indexedPlayer
	aliases map[string]string
	names   []string
}

// NewResolver builds a resolver over the known player set. Per-player
// aliases stored on the record are folded into the alias table alongside
// the built-in nickname pairs.
func NewResolver(players []models.PGAPlayer, logger *logrus.Logger) *Resolver {
	r := &Resolver{
		logger:  logger,
		exact:   make(map[string]uuid.UUID, len(players)),
		aliases: make(map[string]string, len(defaultAliases)),
	}
	for alias, canonical := range defaultAliases {
		r.aliases[alias] = canonical
	}

	for _, p := range players {
		n := NormalizeName(p.Name)
		if n == "" {
			continue
		}
		r.exact[n] = p.ID
		r.names = append(r.names, n)
		first, last := splitName(n)
		r.players = append(r.players, indexedPlayer{id: p.ID, first: first, last: last, norm: n})

		for _, alias := range p.Aliases {
			if a := NormalizeName(alias); a != "" {
				r.aliases[a] = n
			}
		}
	}
	return r
}

// AddAlias registers a nickname pair at runtime. Applies retroactively to
// cached snapshots because resolution happens per read, not per fetch.
func (r *Resolver) AddAlias(alias, canonical string) {
	r.aliases[NormalizeName(alias)] = NormalizeName(canonical)
}

// Resolve maps a clean provider name to an internal player ID
func (r *Resolver) Resolve(name string) (uuid.UUID, bool) {
	n := NormalizeName(name)
	if n == "" {
		return uuid.Nil, false
	}

	if id, ok := r.exact[n]; ok {
		return id, true
	}

	if canonical, ok := r.aliases[n]; ok {
		if id, ok := r.exact[canonical]; ok {
			return id, true
		}
	}

	if id, ok := r.matchByLastName(n); ok {
		return id, true
	}

	return r.matchFuzzy(n)
}

// matchByLastName requires an exact last-name match plus a first-name
// prefix match in either direction ("Cam"/"Cameron", "Matti"/"Matthias").
// Ambiguous candidates are rejected rather than guessed.
func (r *Resolver) matchByLastName(n string) (uuid.UUID, bool) {
	first, last := splitName(n)
	if last == "" {
		return uuid.Nil, false
	}

	var match uuid.UUID
	found := 0
	for _, p := range r.players {
		if p.last != last {
			continue
		}
		if strings.HasPrefix(p.first, first) || strings.HasPrefix(first, p.first) {
			match = p.id
			found++
		}
	}
	if found != 1 {
		if found > 1 {
			r.logger.WithField("name", n).Debug("Ambiguous last-name match, leaving unresolved")
		}
		return uuid.Nil, false
	}
	return match, true
}

// matchFuzzy is the final, bounded pass: a single unambiguous fuzzy hit
// over the known-name list, nothing else
func (r *Resolver) matchFuzzy(n string) (uuid.UUID, bool) {
	ranks := fuzzy.RankFindNormalizedFold(n, r.names)
	if len(ranks) != 1 {
		return uuid.Nil, false
	}
	id, ok := r.exact[ranks[0].Target]
	return id, ok
}

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName lowercases, trims, collapses whitespace, and strips
// diacritics so "Ludvig Åberg" and "ludvig aberg" compare equal
func NormalizeName(name string) string {
	stripped, _, err := transform.String(diacriticStripper, name)
	if err != nil {
		stripped = name
	}
	return strings.Join(strings.Fields(strings.ToLower(stripped)), " ")
}

func splitName(n string) (first, last string) {
	parts := strings.Fields(n)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return "", parts[0]
	}
	return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
}
