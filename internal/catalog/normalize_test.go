package catalog

import (
	"testing"

	"github.com/goliatone/go-market-cache/internal/model"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name     string
		category model.Category
		input    string
		want     string
	}{
		{
			name:     "wear suffix",
			category: model.Skins,
			input:    "AK-47 | Redline (Field-Tested)",
			want:     "AK-47 | Redline",
		},
		{
			name:     "stattrak marker",
			category: model.Skins,
			input:    "StatTrak™ AK-47 | Redline (Field-Tested)",
			want:     "AK-47 | Redline",
		},
		{
			name:     "mis-decoded stattrak marker",
			category: model.Skins,
			input:    "StatTrakâ„¢ AK-47 | Redline (Field-Tested)",
			want:     "AK-47 | Redline",
		},
		{
			name:     "bare stattrak marker",
			category: model.Skins,
			input:    "StatTrak AK-47 | Redline (Field-Tested)",
			want:     "AK-47 | Redline",
		},
		{
			name:     "knife with star and stattrak",
			category: model.Skins,
			input:    "★ StatTrak™ Karambit | Doppler (Factory New)",
			want:     "★ Karambit | Doppler",
		},
		{
			name:     "already a base name",
			category: model.Skins,
			input:    "AWP | Asiimov",
			want:     "AWP | Asiimov",
		},
		{
			name:     "other categories are verbatim",
			category: model.Stickers,
			input:    "Sticker | Crown (Foil)",
			want:     "Sticker | Crown (Foil)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeName(tt.category, tt.input); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
