package lineup

import (
	"sort"
	"strings"
)

// Formation is a named template of position slots.
type Formation struct {
	Name      string
	Positions []string
}

var formations = map[string]Formation{
	"4-4-2":   {Name: "4-4-2", Positions: []string{"GK", "LB", "LCB", "RCB", "RB", "LM", "LCM", "RCM", "RM", "LS", "RS"}},
	"4-3-3":   {Name: "4-3-3", Positions: []string{"GK", "LB", "LCB", "RCB", "RB", "LCM", "CM", "RCM", "LW", "ST", "RW"}},
	"4-2-3-1": {Name: "4-2-3-1", Positions: []string{"GK", "LB", "LCB", "RCB", "RB", "LDM", "RDM", "LAM", "CAM", "RAM", "ST"}},
	"3-5-2":   {Name: "3-5-2", Positions: []string{"GK", "LCB", "CB", "RCB", "LWB", "LCM", "CM", "RCM", "RWB", "LS", "RS"}},
	"3-4-3":   {Name: "3-4-3", Positions: []string{"GK", "LCB", "CB", "RCB", "LM", "LCM", "RCM", "RM", "LW", "ST", "RW"}},
	"5-3-2":   {Name: "5-3-2", Positions: []string{"GK", "LWB", "LCB", "CB", "RCB", "RWB", "LCM", "CM", "RCM", "LS", "RS"}},
}

// LookupFormation finds a template by name, ignoring surrounding whitespace.
func LookupFormation(name string) (Formation, bool) {
	f, ok := formations[strings.TrimSpace(name)]
	if !ok {
		return Formation{}, false
	}
	return Formation{Name: f.Name, Positions: append([]string(nil), f.Positions...)}, true
}

// Formations lists every template ordered by name.
func Formations() []Formation {
	out := make([]Formation, 0, len(formations))
	for _, f := range formations {
		out = append(out, Formation{Name: f.Name, Positions: append([]string(nil), f.Positions...)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Has reports whether code is one of the formation's slots.
func (f Formation) Has(code string) bool {
	for _, p := range f.Positions {
		if p == code {
			return true
		}
	}
	return false
}
