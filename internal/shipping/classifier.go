package shipping

import "strings"

// Classification is the destination-country routing decision.
type Classification struct {
	IsEU            bool
	IsUSA           bool
	AutoEligible    bool
	RequiresCustoms bool
}

// euCountries is the fixed EU-27 membership set.
var euCountries = map[string]struct{}{
	"AT": {}, "BE": {}, "BG": {}, "HR": {}, "CY": {}, "CZ": {}, "DK": {},
	"EE": {}, "FI": {}, "FR": {}, "DE": {}, "GR": {}, "HU": {}, "IE": {},
	"IT": {}, "LV": {}, "LT": {}, "LU": {}, "MT": {}, "NL": {}, "PL": {},
	"PT": {}, "RO": {}, "SK": {}, "SI": {}, "ES": {}, "SE": {},
}

// Classify maps an ISO country code to its routing classification.
// DDP auto-processing is permitted only for USA and EU destinations; every
// non-EU destination (USA included) needs a customs declaration. Unknown or
// empty codes classify as neither, which keeps them out of auto-processing.
func Classify(countryCode string) Classification {
	code := strings.ToUpper(strings.TrimSpace(countryCode))
	_, isEU := euCountries[code]
	isUSA := code == "US"
	return Classification{
		IsEU:            isEU,
		IsUSA:           isUSA,
		AutoEligible:    isEU || isUSA,
		RequiresCustoms: !isEU,
	}
}

// countryNames covers the destinations operators see in alerts; anything
// else falls back to the raw code.
var countryNames = map[string]string{
	"AT": "Austria", "BE": "Belgium", "BG": "Bulgaria", "HR": "Croatia",
	"CY": "Cyprus", "CZ": "Czechia", "DK": "Denmark", "EE": "Estonia",
	"FI": "Finland", "FR": "France", "DE": "Germany", "GR": "Greece",
	"HU": "Hungary", "IE": "Ireland", "IT": "Italy", "LV": "Latvia",
	"LT": "Lithuania", "LU": "Luxembourg", "MT": "Malta", "NL": "Netherlands",
	"PL": "Poland", "PT": "Portugal", "RO": "Romania", "SK": "Slovakia",
	"SI": "Slovenia", "ES": "Spain", "SE": "Sweden",
	"US": "United States", "GB": "United Kingdom", "CH": "Switzerland",
	"NO": "Norway", "BR": "Brazil", "CA": "Canada", "AU": "Australia",
	"JP": "Japan", "CN": "China", "MX": "Mexico", "AE": "United Arab Emirates",
}

// CountryName returns a display name for alert emails.
func CountryName(countryCode string) string {
	code := strings.ToUpper(strings.TrimSpace(countryCode))
	if name, ok := countryNames[code]; ok {
		return name
	}
	return code
}
