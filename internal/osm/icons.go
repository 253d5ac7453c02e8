package osm

// categoryIcons maps common OSM tag values to the storefront's category
// glyphs.
var categoryIcons = map[string]string{
	"restaurant":  "🍽️",
	"cafe":        "☕",
	"bar":         "🍸",
	"pub":         "🍺",
	"fast_food":   "🍔",
	"bakery":      "🥐",
	"supermarket": "🛒",
	"convenience": "🏪",
	"pharmacy":    "💊",
	"hospital":    "🏥",
	"clinic":      "🩺",
	"bank":        "🏦",
	"atm":         "🏧",
	"fuel":        "⛽",
	"hotel":       "🏨",
	"museum":      "🏛️",
	"park":        "🌳",
	"school":      "🏫",
	"fitness_centre": "🏋️",
	"cinema":      "🎬",
	"library":     "📚",
	"hairdresser": "💇",
	"clothes":     "👕",
	"florist":     "💐",
	"car_repair":  "🔧",
}

var iconTagKeys = []string{"amenity", "shop", "tourism", "leisure"}

func iconFor(tags map[string]string) string {
	for _, key := range iconTagKeys {
		v, ok := tags[key]
		if !ok {
			continue
		}
		if icon, ok := categoryIcons[v]; ok {
			return icon
		}
	}
	return "📍"
}
