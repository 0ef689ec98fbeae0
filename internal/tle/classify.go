package tle

import "strings"

// Satellite type categories.
const (
	TypeCommunication    = "Communication"
	TypeSpaceStation     = "Space Station"
	TypeMilitary         = "Military"
	TypeNavigation       = "Navigation"
	TypeEarthObservation = "Earth Observation"
	TypeScientific       = "Scientific"
	TypeWeather          = "Weather"
	TypeOther            = "Other"
)

type classRule struct {
	patterns []string
	category string
}

// classRules is evaluated in order; the first rule with a matching pattern wins.
var classRules = []classRule{
	{patterns: []string{"STARLINK"}, category: TypeCommunication},
	{patterns: []string{"ISS", "ZARYA"}, category: TypeSpaceStation},
	{patterns: []string{"COSMOS", "MILITARY"}, category: TypeMilitary},
	{patterns: []string{"GPS", "GLONASS", "GALILEO"}, category: TypeNavigation},
	{patterns: []string{"LANDSAT", "SENTINEL", "TERRA"}, category: TypeEarthObservation},
	{patterns: []string{"HUBBLE", "CHANDRA", "SPITZER"}, category: TypeScientific},
	{patterns: []string{"WEATHER", "NOAA", "GOES"}, category: TypeWeather},
}

// Types lists every category Classify can return, in rule order.
func Types() []string {
	out := make([]string, 0, len(classRules)+1)
	for _, r := range classRules {
		out = append(out, r.category)
	}
	return append(out, TypeOther)
}

// Classify buckets a satellite into a category by substring matching on its
// name. This is a name heuristic, not a catalog lookup: "MISSION-X" matches
// "ISS" and is reported as a space station.
func Classify(name string) string {
	upper := strings.ToUpper(name)
	for _, r := range classRules {
		for _, p := range r.patterns {
			if strings.Contains(upper, p) {
				return r.category
			}
		}
	}
	return TypeOther
}
