package merging

import "regexp"

// defaultFabricTokenPattern matches furniture item number tokens inside a
// fabric description, e.g. "DLX-100", "dlx-100.1" or "STD-23a".
var defaultFabricTokenPattern = regexp.MustCompile(`(?i)[A-Za-z]{2,4}-\d+(?:\.\d+)?[A-Za-z]?`)

// fabricAnchorPattern locates the "to" keyword that introduces the target
// list in a fabric description ("Fabric to DLX-100 and DLX-101").
var fabricAnchorPattern = regexp.MustCompile(`(?i)\bto\s+(.+)$`)

// ParseFabricTargets extracts the furniture item numbers a fabric item
// applies to. Targets only count after the first "to" keyword; descriptions
// without one yield nil. A nil tokenPattern uses the default token syntax.
func ParseFabricTargets(description string, tokenPattern *regexp.Regexp) []string {
	if description == "" {
		return nil
	}
	if tokenPattern == nil {
		tokenPattern = defaultFabricTokenPattern
	}

	anchor := fabricAnchorPattern.FindStringSubmatch(description)
	if anchor == nil {
		return nil
	}

	return tokenPattern.FindAllString(anchor[1], -1)
}
