package interview

// CandidateInfo is a partial record built up by accretion over the course of
// a session: each scalar field starts unset and, once set by extraction from
// a candidate reply, is never overwritten. Technologies is additive and
// de-duplicated.
type CandidateInfo struct {
	Name         string
	Position     string
	TargetGrade  Grade
	Experience   string
	Technologies *OrderedSet

	nameSet        bool
	positionSet    bool
	targetGradeSet bool
	experienceSet  bool
}

// NewCandidateInfo returns a zero-value CandidateInfo ready for accretion.
func NewCandidateInfo() CandidateInfo {
	return CandidateInfo{Technologies: NewOrderedSet()}
}

// ExtractedInfo is the Observer's optional partial extraction of candidate
// details from a single reply. Any field may be empty/zero meaning "not
// extracted this turn".
type ExtractedInfo struct {
	Name         string
	Position     string
	TargetGrade  Grade
	HasGrade     bool
	Experience   string
	Technologies []string
}

// Accrete merges ExtractedInfo into the CandidateInfo, setting only fields
// that are currently unset. It is idempotent: calling it twice with the same
// input leaves the same result as calling it once. Technologies are always
// additive regardless of whether other fields were already set.
func (c *CandidateInfo) Accrete(info ExtractedInfo) {
	if c.Technologies == nil {
		c.Technologies = NewOrderedSet()
	}
	if !c.nameSet && info.Name != "" {
		c.Name = info.Name
		c.nameSet = true
	}
	if !c.positionSet && info.Position != "" {
		c.Position = info.Position
		c.positionSet = true
	}
	if !c.targetGradeSet && info.HasGrade {
		c.TargetGrade = info.TargetGrade
		c.targetGradeSet = true
	}
	if !c.experienceSet && info.Experience != "" {
		c.Experience = info.Experience
		c.experienceSet = true
	}
	c.Technologies.AddAll(info.Technologies)
}

// HasName reports whether the candidate's name has been set.
func (c *CandidateInfo) HasName() bool { return c.nameSet }

// HasTargetGrade reports whether a declared/extracted target grade is set.
func (c *CandidateInfo) HasTargetGrade() bool { return c.targetGradeSet }
