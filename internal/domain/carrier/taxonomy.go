package carrier

// The Brazilian macro-region/state taxonomy is fixed reference data: five
// macro-regions covering the 27 federative units. Carriers store the subset
// of regions and states they serve; states are collected independently of the
// selected regions, without a cross-membership check.
var RegionStates = map[string][]string{
	"NORTE":        {"ACRE", "AMAPÁ", "AMAZONAS", "PARÁ", "RONDÔNIA", "RORAIMA", "TOCANTINS"},
	"NORDESTE":     {"ALAGOAS", "BAHIA", "CEARÁ", "MARANHÃO", "PARAÍBA", "PERNAMBUCO", "PIAUÍ", "RIO GRANDE DO NORTE", "SERGIPE"},
	"CENTRO-OESTE": {"DISTRITO FEDERAL", "GOIÁS", "MATO GROSSO", "MATO GROSSO DO SUL"},
	"SUDESTE":      {"ESPÍRITO SANTO", "MINAS GERAIS", "RIO DE JANEIRO", "SÃO PAULO"},
	"SUL":          {"PARANÁ", "RIO GRANDE DO SUL", "SANTA CATARINA"},
}

var (
	allRegions map[string]struct{}
	allStates  map[string]struct{}
)

func init() {
	allRegions = make(map[string]struct{}, len(RegionStates))
	allStates = make(map[string]struct{})
	for region, states := range RegionStates {
		allRegions[region] = struct{}{}
		for _, state := range states {
			allStates[state] = struct{}{}
		}
	}
}

// Regions returns the five macro-region names.
func Regions() []string {
	out := make([]string, 0, len(allRegions))
	for region := range allRegions {
		out = append(out, region)
	}
	return out
}

// States returns all 27 federative units.
func States() []string {
	out := make([]string, 0, len(allStates))
	for state := range allStates {
		out = append(out, state)
	}
	return out
}

// IsRegion reports whether name is one of the five macro-regions.
func IsRegion(name string) bool {
	_, ok := allRegions[name]
	return ok
}

// IsState reports whether name is one of the 27 federative units.
func IsState(name string) bool {
	_, ok := allStates[name]
	return ok
}
