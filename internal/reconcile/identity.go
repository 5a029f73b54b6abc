package reconcile

import "bidsmeta/internal/openminds"

type identityRule struct {
	name    string
	applies func(a, b *openminds.MRIScanner) bool
	same    func(a, b *openminds.MRIScanner) bool
}

var identityRules = []identityRule{
	{
		name: "digital_identifier",
		applies: func(a, b *openminds.MRIScanner) bool {
			return a.DigitalIdentifier != nil && b.DigitalIdentifier != nil
		},
		same: func(a, b *openminds.MRIScanner) bool {
			return a.DigitalIdentifier.Identifier == b.DigitalIdentifier.Identifier
		},
	},
	{
		name: "serial_number",
		applies: func(a, b *openminds.MRIScanner) bool {
			return a.SerialNumber != "" && b.SerialNumber != ""
		},
		same: func(a, b *openminds.MRIScanner) bool {
			return a.SerialNumber == b.SerialNumber
		},
	},
	{
		name: "name",
		applies: func(a, b *openminds.MRIScanner) bool {
			return a.Name != "" && b.Name != ""
		},
		same: func(a, b *openminds.MRIScanner) bool {
			return a.Name == b.Name
		},
	},
}

// sameDevice applies the first identity rule both scanners can be compared
// on. It returns the deciding rule, or "" when no rule applies.
func sameDevice(a, b *openminds.MRIScanner) (bool, string) {
	for _, rule := range identityRules {
		if rule.applies(a, b) {
			return rule.same(a, b), rule.name
		}
	}
	return false, ""
}
