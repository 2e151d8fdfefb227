package maps

// staticEntry seeds the canonicalization table for well-known maps so
// name resolution keeps working when neither the live rotation nor the
// server catalog is reachable.
type staticEntry struct {
	canonical string
	display   string
	aliases   []string
}

var staticEntries = []staticEntry{
	{"stmariedumont_warfare", "St Marie Du Mont Warfare", []string{"smdm", "smdm warfare", "sainte marie du mont"}},
	{"stmereeglise_warfare", "St Mere Eglise Warfare", []string{"sme", "sme warfare", "sainte mere eglise"}},
	{"utahbeach_warfare", "Utah Beach Warfare", []string{"utah", "utah beach"}},
	{"omahabeach_warfare", "Omaha Beach Warfare", []string{"omaha", "omaha beach"}},
	{"purpleheartlane_warfare", "Purple Heart Lane Warfare", []string{"phl", "phl warfare", "purple heart lane"}},
	{"carentan_warfare", "Carentan Warfare", []string{"carentan"}},
	{"hurtgenforest_warfare", "Hurtgen Forest Warfare", []string{"hurtgen", "hurtgen forest"}},
	{"hill400_warfare", "Hill 400 Warfare", []string{"hill 400"}},
	{"foy_warfare", "Foy Warfare", []string{"foy"}},
	{"kursk_warfare", "Kursk Warfare", []string{"kursk"}},
	{"stalingrad_warfare", "Stalingrad Warfare", []string{"stalingrad"}},
	{"remagen_warfare", "Remagen Warfare", []string{"remagen"}},
	{"kharkov_warfare", "Kharkov Warfare", []string{"kharkov"}},
	{"driel_warfare", "Driel Warfare", []string{"driel"}},
	{"elalamein_warfare", "El Alamein Warfare", []string{"el alamein", "alamein"}},
	{"mortain_warfare", "Mortain Warfare", []string{"mortain"}},
	{"elsenbornridge_warfare", "Elsenborn Ridge Warfare", []string{"elsenborn", "elsenborn ridge"}},
	{"tobruk_warfare", "Tobruk Warfare", []string{"tobruk"}},
}
