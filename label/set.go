package label

// Set is a bitmask over the defined labels. Bit i corresponds to Label(i).
// A Set fits in two bytes and is what the session codec persists.
type Set uint16

// setMask covers the defined bits only; decoding discards anything above.
const setMask Set = (1 << Count) - 1

// Add sets the bit for l. Out-of-range labels are ignored.
func (s *Set) Add(l Label) {
	if !l.Valid() {
		return
	}
	*s |= 1 << l
}

// Has reports whether l is in the set.
func (s Set) Has(l Label) bool {
	if !l.Valid() {
		return false
	}
	return s&(1<<l) != 0
}

// Len returns the number of labels in the set.
func (s Set) Len() int {
	n := 0
	for l := Label(0); l < Count; l++ {
		if s.Has(l) {
			n++
		}
	}
	return n
}

// Labels returns the members of the set in canonical enumeration order,
// independent of the order they were added. The result is never nil.
func (s Set) Labels() []Label {
	out := make([]Label, 0, s.Len())
	for l := Label(0); l < Count; l++ {
		if s.Has(l) {
			out = append(out, l)
		}
	}
	return out
}

// Names returns the display names of the set members in canonical order.
func (s Set) Names() []string {
	labels := s.Labels()
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = l.String()
	}
	return out
}

// Raw returns the underlying bit pattern restricted to defined bits.
func (s Set) Raw() uint16 {
	return uint16(s & setMask)
}

// FromRaw rebuilds a Set from a persisted bit pattern, discarding undefined bits.
func FromRaw(raw uint16) Set {
	return Set(raw) & setMask
}

// FromLabels builds a Set from the given labels, skipping invalid values.
func FromLabels(labels []Label) Set {
	var s Set
	for _, l := range labels {
		s.Add(l)
	}
	return s
}

// FullSet returns the set containing all defined labels.
func FullSet() Set {
	return setMask
}
