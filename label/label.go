package label

// Label identifies one content-category tag. The zero-based values are bit
// positions in a [Set] and define the canonical enumeration order.
type Label uint8

const (
	ComputerScience Label = iota
	Philosophy
	Religion
	SocialSciences
	Language
	Science
	Technology
	Arts
	Literature
	History
	Geography

	// Count is the number of defined labels.
	Count = 11
)

var names = [Count]string{
	"Computer Science",
	"Philosophy",
	"Religion",
	"Social Sciences",
	"Language",
	"Science",
	"Technology",
	"Arts",
	"Literature",
	"History",
	"Geography",
}

// String returns the display name of the label, or "unknown" for values
// outside the defined range.
func (l Label) String() string {
	if l >= Count {
		return "unknown"
	}
	return names[l]
}

// Valid reports whether l is one of the defined labels.
func (l Label) Valid() bool {
	return l < Count
}

// Parse resolves a display name to its [Label]. Matching is exact and
// case-sensitive, the same as stored entitlement rows.
func Parse(name string) (Label, bool) {
	for i, n := range names {
		if n == name {
			return Label(i), true
		}
	}
	return 0, false
}

// All returns every defined label in canonical order.
func All() []Label {
	out := make([]Label, Count)
	for i := range out {
		out[i] = Label(i)
	}
	return out
}
