package entity

// Grille de dimensionnement utilisée par les commerciaux : surface chauffée
// vers puissance PAC conseillée. Les appartements descendent d'un cran
// (déperditions moindres).
type powerBand struct {
	maxSurface int
	power      string
}

var powerBands = []powerBand{
	{60, "6 kW"},
	{90, "8 kW"},
	{120, "11 kW"},
	{160, "14 kW"},
	{220, "16 kW"},
}

const powerAboveBands = "étude sur mesure"

func EstimatePower(surface int, typeLogement string) string {
	if surface <= 0 {
		return ""
	}
	idx := len(powerBands)
	for i, b := range powerBands {
		if surface <= b.maxSurface {
			idx = i
			break
		}
	}
	if typeLogement == "appartement" && idx > 0 {
		idx--
	}
	if idx >= len(powerBands) {
		return powerAboveBands
	}
	return powerBands[idx].power
}
