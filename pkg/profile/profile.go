package profile

import "slices"

// UserProfile is the learner identity and questionnaire answers.
type UserProfile struct {
	Name     string   `json:"name"`
	KnowsCNV bool     `json:"knowsCNV"`
	Answers  []string `json:"answers"`
}

// Clone returns a copy that shares no memory with p.
func (p UserProfile) Clone() UserProfile {
	p.Answers = slices.Clone(p.Answers)
	if p.Answers == nil {
		p.Answers = []string{}
	}
	return p
}

// IsZero reports whether p holds no collected data.
func (p UserProfile) IsZero() bool {
	return p.Name == "" && !p.KnowsCNV && len(p.Answers) == 0
}

// Empty returns the initial profile.
func Empty() UserProfile {
	return UserProfile{Answers: []string{}}
}
