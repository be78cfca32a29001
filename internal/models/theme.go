package models

// Theme holds the export color tokens for one presentation theme.
// Hex values carry no leading '#', matching the PPTX color format.
type Theme struct {
	Name   LocalizedName `json:"name"`
	Bg     string        `json:"bg"`
	Title  string        `json:"title"`
	Text   string        `json:"text"`
	Accent string        `json:"accent"`
}

// LocalizedName is a bilingual display name.
type LocalizedName struct {
	Ar string `json:"ar"`
	En string `json:"en"`
}

// Themes is the built-in theme catalogue.
var Themes = map[string]Theme{
	"default":   {Name: LocalizedName{Ar: "افتراضي", En: "Default"}, Bg: "FFFFFF", Title: "1F293B", Text: "374151", Accent: "4F46E5"},
	"midnight":  {Name: LocalizedName{Ar: "ليلي", En: "Midnight"}, Bg: "1F2937", Title: "FFFFFF", Text: "D1D5DB", Accent: "7DD3FC"},
	"mint":      {Name: LocalizedName{Ar: "نعناعي", En: "Mint"}, Bg: "F0FDF4", Title: "14532D", Text: "166534", Accent: "059669"},
	"pastel":    {Name: LocalizedName{Ar: "باستيل", En: "Pastel"}, Bg: "FFF1F2", Title: "881337", Text: "374151", Accent: "F43F5E"},
	"modernist": {Name: LocalizedName{Ar: "عصري", En: "Modernist"}, Bg: "F1F5F9", Title: "0F172A", Text: "475569", Accent: "0EA5E9"},
	"ocean":     {Name: LocalizedName{Ar: "محيط", En: "Ocean"}, Bg: "ECFEFF", Title: "164E63", Text: "155E75", Accent: "06B6D4"},
	"sunset":    {Name: LocalizedName{Ar: "غروب", En: "Sunset"}, Bg: "FFF7ED", Title: "7C2D12", Text: "1F2937", Accent: "F97316"},
	"navy":      {Name: LocalizedName{Ar: "بحري داكن", En: "Navy"}, Bg: "0F172A", Title: "FBBF24", Text: "E2E8F0", Accent: "38BDF8"},
	"lavender":  {Name: LocalizedName{Ar: "خزامى", En: "Lavender"}, Bg: "FAF5FF", Title: "581C87", Text: "6B21A8", Accent: "A855F7"},
	"nature":    {Name: LocalizedName{Ar: "طبيعة", En: "Nature"}, Bg: "F5F5F4", Title: "065F46", Text: "44403C", Accent: "10B981"},
	"candy":     {Name: LocalizedName{Ar: "حلوى", En: "Candy"}, Bg: "FDF2F8", Title: "DB2777", Text: "7E22CE", Accent: "F59E0B"},
	"cyber":     {Name: LocalizedName{Ar: "سايبر", En: "Cyber"}, Bg: "09090B", Title: "4ADE80", Text: "D4D4D8", Accent: "22C55E"},
	"vintage":   {Name: LocalizedName{Ar: "عتيق", En: "Vintage"}, Bg: "FFFBEB", Title: "292524", Text: "57534E", Accent: "D97706"},
}

// ThemeOrDefault looks up a theme by key, falling back to "default".
func ThemeOrDefault(key string) Theme {
	if t, ok := Themes[key]; ok {
		return t
	}
	return Themes["default"]
}
