package shipping

import "strings"

// ProvinceFallback is used when no region can be derived from the postal
// code. The carrier accepts it as "unknown".
const ProvinceFallback = "XX"

// italianProvinceByCAP maps the leading two digits of an Italian CAP to the
// province code of its main district. Coarse on purpose: the carrier only
// needs a plausible province when the order carries none.
var italianProvinceByCAP = map[string]string{
	"00": "RM", "01": "VT", "02": "RI", "03": "FR", "04": "LT",
	"05": "TR", "06": "PG", "07": "SS", "08": "NU", "09": "CA",
	"10": "TO", "11": "AO", "12": "CN", "13": "VC", "14": "AT",
	"15": "AL", "16": "GE", "17": "SV", "18": "IM", "19": "SP",
	"20": "MI", "21": "VA", "22": "CO", "23": "SO", "24": "BG",
	"25": "BS", "26": "CR", "27": "PV", "28": "NO", "29": "PC",
	"30": "VE", "31": "TV", "32": "BL", "33": "UD", "34": "TS",
	"35": "PD", "36": "VI", "37": "VR", "38": "TN", "39": "BZ",
	"40": "BO", "41": "MO", "42": "RE", "43": "PR", "44": "FE",
	"45": "RO", "46": "MN", "47": "FC", "48": "RA",
	"50": "FI", "51": "PT", "52": "AR", "53": "SI", "54": "MS",
	"55": "LU", "56": "PI", "57": "LI", "58": "GR", "59": "PO",
	"60": "AN", "61": "PU", "62": "MC", "63": "AP", "64": "TE",
	"65": "PE", "66": "CH", "67": "AQ",
	"70": "BA", "71": "FG", "72": "BR", "73": "LE", "74": "TA",
	"75": "MT", "76": "BT",
	"80": "NA", "81": "CE", "82": "BN", "83": "AV", "84": "SA",
	"85": "PZ", "86": "CB", "87": "CS", "88": "CZ", "89": "RC",
	"90": "PA", "91": "TP", "92": "AG", "93": "CL", "94": "EN",
	"95": "CT", "96": "SR", "97": "RG", "98": "ME",
}

// InferProvince picks the receiver province for the carrier request: the
// supplied value when present, an Italian CAP lookup when the destination is
// Italy, otherwise the fixed fallback.
func InferProvince(countryCode, postcode, supplied string) string {
	if trimmed := strings.TrimSpace(supplied); trimmed != "" {
		return trimmed
	}
	if strings.EqualFold(strings.TrimSpace(countryCode), "IT") {
		cap := strings.TrimSpace(postcode)
		if len(cap) >= 2 {
			if province, ok := italianProvinceByCAP[cap[:2]]; ok {
				return province
			}
		}
	}
	return ProvinceFallback
}
