package enrichment

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// canonicalFieldMap translates the field names used by enrichment vendors to
// the canonical company columns. Keys are matched case-insensitively. Any
// vendor key not listed here lands in the leftover bag untouched.
var canonicalFieldMap = map[string]string{
	"company_domain": "domain",
	"domain":         "domain",
	"li_url":         "linkedin_url",
	"linkedin":       "linkedin_url",
	"linkedin_url":   "linkedin_url",
	"hq":             "head_office",
	"head_office":    "head_office",
	"headquarters":   "head_office",
	"company_size":   "company_size",
	"employees":      "company_size",
	"size":           "company_size",
	"industry":       "industry",
	"website":        "website",
	"url":            "website",
	"logo":           "logo_url",
	"logo_url":       "logo_url",
	"company_name":   "name",
}

// metaFields are control keys interpreted by the writer itself. They never
// reach canonical columns or the leftover bag.
var metaFields = map[string]bool{
	"lead_id":    true,
	"status":     true,
	"error":      true,
	"likelihood": true,
	"confidence": true,
}

// MappedPayload is the result of splitting a vendor payload into canonical
// company fields and everything else.
type MappedPayload struct {
	Canonical map[string]string
	Leftover  map[string]any
}

// MapVendorPayload maps vendor field names onto canonical company columns.
// Unmapped fields are kept verbatim in Leftover. Phone numbers are
// normalized to E.164 when they parse, otherwise kept as received.
func MapVendorPayload(payload map[string]any) *MappedPayload {
	mapped := &MappedPayload{
		Canonical: make(map[string]string),
		Leftover:  make(map[string]any),
	}

	for key, value := range payload {
		normalized := strings.ToLower(strings.TrimSpace(key))
		if metaFields[normalized] {
			continue
		}

		if canonical, ok := canonicalFieldMap[normalized]; ok {
			if s := stringValue(value); s != "" {
				mapped.Canonical[canonical] = s
			}
			continue
		}

		if normalized == "phone" || normalized == "phone_number" {
			mapped.Leftover[key] = normalizePhone(stringValue(value))
			continue
		}

		mapped.Leftover[key] = value
	}

	return mapped
}

// stringValue renders a vendor value as a string. Vendors are inconsistent
// about numeric fields like employee counts.
func stringValue(v any) string {
	switch value := v.(type) {
	case string:
		return strings.TrimSpace(value)
	case float64:
		if value == float64(int64(value)) {
			return strconv.FormatInt(int64(value), 10)
		}
		return strconv.FormatFloat(value, 'f', -1, 64)
	case int:
		return strconv.Itoa(value)
	case bool:
		return strconv.FormatBool(value)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", value)
	}
}

// normalizePhone formats a raw phone value as E.164. Numbers without a
// country prefix are assumed to be US. Unparseable input passes through.
func normalizePhone(raw string) string {
	if raw == "" {
		return raw
	}

	parsed, err := phonenumbers.Parse(raw, "US")
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return raw
	}

	return phonenumbers.Format(parsed, phonenumbers.E164)
}
