// Package places holds a lexicon of Indian cities and neighbourhoods used
// to spot location mentions in free text. Coverage is intentionally
// skewed toward Bengaluru, where most of the ingested groups operate.
package places

import (
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Gazetteer entries, area name to city. Areas of the same city are kept
// together; bare city names map to themselves in canonical spelling.
var areaCity = map[string]string{
	// Bengaluru
	"koramangala": "Bengaluru", "whitefield": "Bengaluru", "hsr layout": "Bengaluru",
	"hsr": "Bengaluru", "indiranagar": "Bengaluru", "electronic city": "Bengaluru",
	"jayanagar": "Bengaluru", "hebbal": "Bengaluru", "sarjapur": "Bengaluru",
	"marathahalli": "Bengaluru", "banashankari": "Bengaluru", "jp nagar": "Bengaluru",
	"btm layout": "Bengaluru", "btm": "Bengaluru", "yelahanka": "Bengaluru",
	"rajajinagar": "Bengaluru", "malleswaram": "Bengaluru", "basavanagudi": "Bengaluru",
	"frazer town": "Bengaluru", "richmond town": "Bengaluru", "mg road": "Bengaluru",
	"brigade road": "Bengaluru", "commercial street": "Bengaluru", "silk board": "Bengaluru",
	"bommanahalli": "Bengaluru", "bagalur": "Bengaluru", "devanahalli": "Bengaluru",
	"kengeri": "Bengaluru", "rajarajeshwari nagar": "Bengaluru", "rr nagar": "Bengaluru",
	"vijayanagar": "Bengaluru", "magadi road": "Bengaluru", "mysore road": "Bengaluru",
	"tumkur road": "Bengaluru", "outer ring road": "Bengaluru", "orr": "Bengaluru",
	"sarjapur road": "Bengaluru", "hosur road": "Bengaluru", "old airport road": "Bengaluru",
	"bellandur": "Bengaluru", "kadugodi": "Bengaluru", "varthur": "Bengaluru",
	"mahadevapura": "Bengaluru", "bangalore": "Bengaluru", "bengaluru": "Bengaluru",

	// Mumbai
	"bandra": "Mumbai", "andheri": "Mumbai", "powai": "Mumbai", "borivali": "Mumbai",
	"malad": "Mumbai", "goregaon": "Mumbai", "kandivali": "Mumbai", "juhu": "Mumbai",
	"versova": "Mumbai", "lokhandwala": "Mumbai", "bandra kurla complex": "Mumbai",
	"bkc": "Mumbai", "lower parel": "Mumbai", "worli": "Mumbai", "colaba": "Mumbai",
	"nariman point": "Mumbai", "churchgate": "Mumbai", "marine drive": "Mumbai",
	"thane": "Mumbai", "navi mumbai": "Mumbai", "vashi": "Mumbai", "kharghar": "Mumbai",
	"panvel": "Mumbai", "kalyan": "Mumbai", "dombivli": "Mumbai", "mumbai": "Mumbai",

	// Delhi NCR
	"gurgaon": "Delhi", "gurugram": "Delhi", "noida": "Delhi", "faridabad": "Delhi",
	"ghaziabad": "Delhi", "dwarka": "Delhi", "rohini": "Delhi", "janakpuri": "Delhi",
	"lajpat nagar": "Delhi", "connaught place": "Delhi", "karol bagh": "Delhi",
	"rajouri garden": "Delhi", "pitampura": "Delhi", "shalimar bagh": "Delhi",
	"model town": "Delhi", "civil lines": "Delhi", "vasant kunj": "Delhi",
	"vasant vihar": "Delhi", "greater kailash": "Delhi", "defence colony": "Delhi",
	"friends colony": "Delhi", "delhi": "Delhi", "new delhi": "Delhi",

	// Chennai
	"t nagar": "Chennai", "adyar": "Chennai", "besant nagar": "Chennai",
	"velachery": "Chennai", "tambaram": "Chennai", "chromepet": "Chennai",
	"omr": "Chennai", "ecr": "Chennai", "anna nagar": "Chennai", "guindy": "Chennai",
	"mylapore": "Chennai", "triplicane": "Chennai", "egmore": "Chennai",
	"chennai": "Chennai",

	// Pune
	"koregaon park": "Pune", "kalyani nagar": "Pune", "viman nagar": "Pune",
	"aundh": "Pune", "baner": "Pune", "wakad": "Pune", "hinjewadi": "Pune",
	"magarpatta": "Pune", "kothrud": "Pune", "karve nagar": "Pune",
	"shivajinagar": "Pune", "pune": "Pune",

	// Hyderabad
	"hitech city": "Hyderabad", "gachibowli": "Hyderabad", "kondapur": "Hyderabad",
	"jubilee hills": "Hyderabad", "banjara hills": "Hyderabad", "madhapur": "Hyderabad",
	"secunderabad": "Hyderabad", "begumpet": "Hyderabad", "ameerpet": "Hyderabad",
	"kukatpally": "Hyderabad", "hyderabad": "Hyderabad",

	// Other major cities
	"kolkata": "Kolkata", "ahmedabad": "Ahmedabad", "jaipur": "Jaipur",
	"chandigarh": "Chandigarh", "lucknow": "Lucknow", "kanpur": "Kanpur",
	"nagpur": "Nagpur", "indore": "Indore", "bhopal": "Bhopal",
	"visakhapatnam": "Visakhapatnam", "kochi": "Kochi", "coimbatore": "Coimbatore",
	"thiruvananthapuram": "Thiruvananthapuram", "madurai": "Madurai",
	"vijayawada": "Vijayawada",
}

var (
	buildOnce sync.Once
	matchers  []placeMatcher
)

type placeMatcher struct {
	name string
	city string
	re   *regexp.Regexp
}

// Multi-word names must match before their single-word prefixes, so the
// match list is ordered longest name first.
func build() {
	names := make([]string, 0, len(areaCity))
	for name := range areaCity {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	for _, name := range names {
		matchers = append(matchers, placeMatcher{
			name: name,
			city: areaCity[name],
			re:   regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`),
		})
	}
}

// Match returns the first gazetteer entry found in text and its city.
func Match(text string) (area, city string, ok bool) {
	buildOnce.Do(build)
	for _, m := range matchers {
		if m.re.MatchString(text) {
			return m.name, m.city, true
		}
	}
	return "", "", false
}

// Contains reports whether text mentions any known city or area.
func Contains(text string) bool {
	_, _, ok := Match(text)
	return ok
}

// CityOf returns the canonical city for an area name, or "" when the
// area is not in the gazetteer.
func CityOf(area string) string {
	return areaCity[strings.ToLower(strings.TrimSpace(area))]
}
