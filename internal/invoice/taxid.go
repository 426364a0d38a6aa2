package invoice

import (
	"regexp"
	"strings"
)

// taxIDPattern is one regional identifier format and how to print a match.
type taxIDPattern struct {
	re     *regexp.Regexp
	format func(groups []string) string
}

func joinGroups(sep string) func([]string) string {
	return func(g []string) string { return strings.Join(g[1:], sep) }
}

// taxIDPatterns are tried in order; the first pattern that matches anywhere in
// the text wins, even if a later one would match an earlier substring.
var taxIDPatterns = []taxIDPattern{
	{
		// Andorran NRT: L-123456-X
		re:     regexp.MustCompile(`\b([AELF])[-\s]?(\d{6})[-\s]?([A-Z])\b`),
		format: joinGroups("-"),
	},
	{
		// Spanish CIF
		re:     regexp.MustCompile(`\b([ABCDEFGHJKLMNPQRSUVW])(\d{7})([0-9A-J])\b`),
		format: joinGroups(""),
	},
	{
		// NIE
		re:     regexp.MustCompile(`\b([XYZ])(\d{7})([A-Z])\b`),
		format: joinGroups(""),
	},
	{
		// NIF (DNI)
		re:     regexp.MustCompile(`\b(\d{8})([A-Z])\b`),
		format: joinGroups(""),
	},
}

var (
	lenientStrip  = strings.NewReplacer(" ", "", ".", "")
	lenientSplit  = regexp.MustCompile(`^([A-Z])(\d+)([A-Z])$`)
	lenientToken  = regexp.MustCompile(`^[A-Z0-9-]{6,20}$`)
	containsDigit = regexp.MustCompile(`\d`)
)

// ExtractTaxID finds a taxpayer identifier in free text and returns it in
// canonical form: Andorran NRT hyphenated, Spanish CIF/NIE/NIF concatenated.
func ExtractTaxID(text string) *string {
	t := strings.ToUpper(text)
	if strings.TrimSpace(t) == "" {
		return nil
	}
	for _, p := range taxIDPatterns {
		if m := p.re.FindStringSubmatch(t); m != nil {
			id := p.format(m)
			return &id
		}
	}
	return nil
}

// NormalizeTaxIDLenient tidies a string already known to be an identifier but
// not matching any strict pattern. Letter-digits-letter codes without
// separators are hyphenated; other alphanumeric codes are returned as is.
func NormalizeTaxIDLenient(code string) *string {
	s := lenientStrip.Replace(strings.ToUpper(strings.TrimSpace(code)))
	if m := lenientSplit.FindStringSubmatch(s); m != nil {
		id := m[1] + "-" + m[2] + "-" + m[3]
		return &id
	}
	if lenientToken.MatchString(s) && containsDigit.MatchString(s) {
		return &s
	}
	return nil
}

// resolveTaxID applies the strict extractor and falls back to the lenient
// normalizer.
func resolveTaxID(text string) *string {
	if id := ExtractTaxID(text); id != nil {
		return id
	}
	return NormalizeTaxIDLenient(text)
}
