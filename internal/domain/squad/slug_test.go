package squad

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugifyTeamName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "Arsenal", want: "arsenal"},
		{name: "spaces collapse", in: "Aston Villa", want: "aston_villa"},
		{name: "punctuation collapses once", in: "Nott'm Forest", want: "nottingham_forest"},
		{name: "kit alias city", in: "Manchester City", want: "man_city"},
		{name: "kit alias united", in: "Manchester United", want: "man_utd"},
		{name: "kit alias spurs", in: "Tottenham Hotspur", want: "tottenham"},
		{name: "kit alias wolves", in: "Wolverhampton Wanderers", want: "wolves"},
		{name: "kit alias bournemouth", in: "AFC Bournemouth", want: "bournemouth"},
		{name: "trailing punctuation trimmed", in: "West Ham United!", want: "west_ham"},
		{name: "empty", in: "", want: ""},
		{name: "leading punctuation ignored", in: "...Leeds", want: "leeds"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, SlugifyTeamName(tc.in))
		})
	}
}

func TestSanitizeASCII(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain passes through", in: "Saka", want: "Saka"},
		{name: "accents fold", in: "Gyökeres", want: "Gyokeres"},
		{name: "polish letters fold", in: "Łukasz Fabiański", want: "Lukasz Fabianski"},
		{name: "sharp s expands", in: "Groß", want: "Gross"},
		{name: "unknown runes drop", in: "Doué☆", want: "Doue"},
		{name: "empty", in: "", want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, SanitizeASCII(tc.in))
		})
	}
}
