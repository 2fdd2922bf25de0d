package domain

// Settings holds the persisted user preferences.
type Settings struct {
	SelectedProjectID string
	Expanded          bool
	MineOnly          bool
	Hidden            map[string]HiddenSet
}

// HiddenFor returns the hidden set remembered for one project.
func (s Settings) HiddenFor(projectID string) HiddenSet {
	if set, ok := s.Hidden[projectID]; ok {
		return set.Clone()
	}
	return HiddenSet{}
}

// WithHidden returns a copy with the project's hidden set replaced.
func (s Settings) WithHidden(projectID string, set HiddenSet) Settings {
	hidden := make(map[string]HiddenSet, len(s.Hidden)+1)
	for id, existing := range s.Hidden {
		hidden[id] = existing
	}
	if len(set) == 0 {
		delete(hidden, projectID)
	} else {
		hidden[projectID] = set.Clone()
	}
	s.Hidden = hidden
	return s
}
