package catalog

import (
	"strings"

	"github.com/goliatone/go-market-cache/internal/model"
)

// statTrakMarkers are the spellings of the StatTrak prefix seen in item
// names: UTF-8, UTF-8 read back as Latin-1, and without the trademark sign.
var statTrakMarkers = []string{
	"StatTrak™ ",
	"StatTrakâ„¢ ",
	"StatTrak ",
}

// NormalizeName maps a market name to the name its catalog lists it under.
// Skin catalogs hold the base skin only, so the wear suffix and the StatTrak
// marker are dropped. Other categories are matched verbatim.
func NormalizeName(category model.Category, name string) string {
	if category != model.Skins {
		return name
	}

	if pos := strings.LastIndex(name, "("); pos > 0 {
		name = strings.TrimRight(name[:pos], " ")
	}

	for _, marker := range statTrakMarkers {
		name = strings.ReplaceAll(name, marker, "")
	}

	return name
}
