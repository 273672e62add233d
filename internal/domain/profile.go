package domain

// ProfileEntry is a single (label, value) row of a translated talent profile.
type ProfileEntry struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// HashtagProfile is the normalizable view of one talent profile document.
// A nil entry marks a row that could not be read as a label/value pair; it is
// kept in place so positions line up with the source document.
type HashtagProfile struct {
	ID      string
	Entries []*ProfileEntry
}
