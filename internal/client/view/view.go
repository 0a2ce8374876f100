package view

import (
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"transportadoras-server-go/internal/domain/carrier"
)

// FilterAll selects every name in the name filter.
const FilterAll = "TODAS"

// State is the renderer's whole input besides the records: the current name
// filter and free search text. Rendering is pure, so the same records and
// state always produce the same rows.
type State struct {
	Filter string
	Search string
}

// Row is one displayed record, pre-joined for presentation.
type Row struct {
	ID      string
	Name    string
	Email   string
	Phones  string
	Mobiles string
	Regions string
	States  string
}

var collator = collate.New(language.BrazilianPortuguese, collate.IgnoreCase)

// Render filters, searches and sorts the collection into display rows.
// The name filter matches exactly (FilterAll disables it); the search text
// matches case-insensitively against name, email, regions and states.
func Render(records []carrier.Carrier, state State) []Row {
	filtered := make([]carrier.Carrier, 0, len(records))
	for _, rec := range records {
		if !matchesFilter(rec, state.Filter) {
			continue
		}
		if !matchesSearch(rec, state.Search) {
			continue
		}
		filtered = append(filtered, rec)
	}

	sortByName(filtered)

	rows := make([]Row, len(filtered))
	for i, rec := range filtered {
		rows[i] = Row{
			ID:      rec.ID,
			Name:    rec.Name,
			Email:   rec.Email,
			Phones:  strings.Join(rec.Phones, ", "),
			Mobiles: strings.Join(rec.Mobiles, ", "),
			Regions: strings.Join(rec.Regions, ", "),
			States:  strings.Join(rec.States, ", "),
		}
	}
	return rows
}

// DistinctNames returns the sorted set of carrier names for the filter
// dropdown, with FilterAll prepended.
func DistinctNames(records []carrier.Carrier) []string {
	seen := make(map[string]struct{}, len(records))
	names := make([]string, 0, len(records))
	for _, rec := range records {
		if _, dup := seen[rec.Name]; dup {
			continue
		}
		seen[rec.Name] = struct{}{}
		names = append(names, rec.Name)
	}
	collator.SortStrings(names)
	return append([]string{FilterAll}, names...)
}

func matchesFilter(rec carrier.Carrier, filter string) bool {
	if filter == "" || filter == FilterAll {
		return true
	}
	return rec.Name == filter
}

func matchesSearch(rec carrier.Carrier, search string) bool {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(rec.Name), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(rec.Email), needle) {
		return true
	}
	for _, region := range rec.Regions {
		if strings.Contains(strings.ToLower(region), needle) {
			return true
		}
	}
	for _, state := range rec.States {
		if strings.Contains(strings.ToLower(state), needle) {
			return true
		}
	}
	return false
}

func sortByName(records []carrier.Carrier) {
	collator.Sort(byName(records))
}

type byName []carrier.Carrier

func (s byName) Len() int      { return len(s) }
func (s byName) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s byName) Bytes(i int) []byte {
	return []byte(s[i].Name)
}
