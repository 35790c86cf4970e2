package squad

import "strings"

// kitSlugAliases maps API-derived team slugs to the names the kit art assets
// are published under.
var kitSlugAliases = map[string]string{
	"afc_bournemouth":          "bournemouth",
	"brighton_and_hove_albion": "brighton",
	"manchester_city":          "man_city",
	"manchester_utd":           "man_utd",
	"manchester_united":        "man_utd",
	"newcastle_utd":            "newcastle",
	"newcastle_united":         "newcastle",
	"nott_m_forest":            "nottingham_forest",
	"nottm_forest":             "nottingham_forest",
	"tottenham_hotspur":        "tottenham",
	"west_ham_united":          "west_ham",
	"wolverhampton_wanderers":  "wolves",
}

// SlugifyTeamName lowercases a team name, collapses every non-alphanumeric
// run into a single underscore, then applies the kit alias table.
func SlugifyTeamName(name string) string {
	var b strings.Builder
	prevUnderscore := false
	for _, r := range strings.ToLower(name) {
		isAlphaNum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if isAlphaNum {
			b.WriteRune(r)
			prevUnderscore = false
		} else if !prevUnderscore && b.Len() > 0 {
			b.WriteByte('_')
			prevUnderscore = true
		}
	}

	slug := strings.TrimSuffix(b.String(), "_")
	if alias, ok := kitSlugAliases[slug]; ok {
		return alias
	}
	return slug
}

// asciiFold maps the accented runes that appear in provider player names to
// plain ASCII so fixed-width renderers never see multibyte sequences.
var asciiFold = map[rune]string{
	'À': "A", 'Á': "A", 'Â': "A", 'Ã': "A", 'Ä': "A", 'Å': "A",
	'Ç': "C",
	'È': "E", 'É': "E", 'Ê': "E", 'Ë': "E",
	'Ì': "I", 'Í': "I", 'Î': "I", 'Ï': "I",
	'Ñ': "N",
	'Ò': "O", 'Ó': "O", 'Ô': "O", 'Õ': "O", 'Ö': "O",
	'Ù': "U", 'Ú': "U", 'Û': "U", 'Ü': "U",
	'Ý': "Y",
	'ß': "ss",
	'à': "a", 'á': "a", 'â': "a", 'ã': "a", 'ä': "a", 'å': "a",
	'ç': "c",
	'è': "e", 'é': "e", 'ê': "e", 'ë': "e",
	'ì': "i", 'í': "i", 'î': "i", 'ï': "i",
	'ñ': "n",
	'ò': "o", 'ó': "o", 'ô': "o", 'õ': "o", 'ö': "o",
	'ù': "u", 'ú': "u", 'û': "u", 'ü': "u",
	'ý': "y", 'ÿ': "y",
	'Ł': "L", 'ł': "l",
	'Ś': "s", 'ś': "s",
	'Ź': "z", 'ź': "z",
	'Ż': "z", 'ż': "z",
}

// SanitizeASCII folds known accented runes to ASCII and drops anything else
// outside the 7-bit range.
func SanitizeASCII(in string) string {
	var b strings.Builder
	b.Grow(len(in))
	for _, r := range in {
		if r < 0x80 {
			b.WriteRune(r)
			continue
		}
		if fold, ok := asciiFold[r]; ok {
			b.WriteString(fold)
		}
	}
	return b.String()
}
