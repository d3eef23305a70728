package census

import "strings"

// SourceDir is the only top-level directory the census descends into.
const SourceDir = "src"

// Family is an extension family recognised by the census.
type Family int

const (
	FamilyNone Family = iota
	FamilyTyped
	FamilyDynamic
)

func (f Family) String() string {
	switch f {
	case FamilyTyped:
		return "typed"
	case FamilyDynamic:
		return "dynamic"
	default:
		return "none"
	}
}

var (
	// TypedPatterns match statically-typed sources, relative to the root.
	TypedPatterns = []string{"src/**/*.ts", "src/**/*.tsx"}

	// DynamicPatterns match dynamically-typed sources, relative to the root.
	DynamicPatterns = []string{"src/**/*.js", "src/**/*.jsx"}

	// ExcludedDirs are pruned at any depth.
	ExcludedDirs = []string{"node_modules", "dist"}

	// TypedExtensions and DynamicExtensions list the suffixes of each family.
	TypedExtensions   = []string{".ts", ".tsx"}
	DynamicExtensions = []string{".js", ".jsx"}
)

// FamilyOf classifies a file name by suffix alone, ignoring location.
// Matching is case-sensitive.
func FamilyOf(name string) Family {
	for _, ext := range TypedExtensions {
		if strings.HasSuffix(name, ext) {
			return FamilyTyped
		}
	}
	for _, ext := range DynamicExtensions {
		if strings.HasSuffix(name, ext) {
			return FamilyDynamic
		}
	}
	return FamilyNone
}

// FileCount is the result of a single scan.
type FileCount struct {
	Typed   int `json:"typed" yaml:"typed"`
	Dynamic int `json:"dynamic" yaml:"dynamic"`
}

// Total returns the number of counted files.
func (c FileCount) Total() int {
	return c.Typed + c.Dynamic
}

// Percentage returns Typed / (Typed + Dynamic) * 100, or 0 when nothing was
// counted.
func (c FileCount) Percentage() float64 {
	total := c.Total()
	if total == 0 {
		return 0
	}
	return float64(c.Typed) / float64(total) * 100
}
