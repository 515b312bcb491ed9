// Package feedback defines the Evaluator's final structured report and its
// human-readable rendering for the session's summary log.
package feedback

import (
	"fmt"
	"sort"
	"strings"
)

// HiringRecommendation is the Evaluator's hire/no-hire call.
type HiringRecommendation string

const (
	StrongHire HiringRecommendation = "Strong Hire"
	Hire       HiringRecommendation = "Hire"
	NoHire     HiringRecommendation = "No Hire"
)

// ParseHiringRecommendation normalizes an arbitrary string, defaulting to
// Hire for anything unrecognized.
func ParseHiringRecommendation(s string) HiringRecommendation {
	switch HiringRecommendation(strings.TrimSpace(s)) {
	case StrongHire, NoHire:
		return HiringRecommendation(strings.TrimSpace(s))
	default:
		return Hire
	}
}

// AssessedGrade is the Evaluator's final assessed seniority level.
type AssessedGrade string

const (
	AssessedIntern AssessedGrade = "Intern"
	AssessedJunior AssessedGrade = "Junior"
	AssessedMiddle AssessedGrade = "Middle"
	AssessedSenior AssessedGrade = "Senior"
	AssessedLead   AssessedGrade = "Lead"
)

// ParseAssessedGrade normalizes an arbitrary string, defaulting to
// AssessedJunior for anything unrecognized.
func ParseAssessedGrade(s string) AssessedGrade {
	switch AssessedGrade(strings.TrimSpace(s)) {
	case AssessedIntern, AssessedMiddle, AssessedSenior, AssessedLead:
		return AssessedGrade(strings.TrimSpace(s))
	default:
		return AssessedJunior
	}
}

// ClarityLevel rates how clearly the candidate communicated.
type ClarityLevel string

const (
	ClarityExcellent ClarityLevel = "Excellent"
	ClarityGood      ClarityLevel = "Good"
	ClarityAverage   ClarityLevel = "Average"
	ClarityPoor      ClarityLevel = "Poor"
)

// ParseClarityLevel normalizes an arbitrary string, defaulting to
// ClarityAverage for anything unrecognized.
func ParseClarityLevel(s string) ClarityLevel {
	switch ClarityLevel(strings.TrimSpace(s)) {
	case ClarityExcellent, ClarityGood, ClarityPoor:
		return ClarityLevel(strings.TrimSpace(s))
	default:
		return ClarityAverage
	}
}

// Verdict is the Evaluator's top-line hiring call.
type Verdict struct {
	Grade                AssessedGrade
	HiringRecommendation HiringRecommendation
	ConfidenceScore      int // clamped to [0, 100]
}

// ClampConfidence clamps ConfidenceScore into [0, 100], even if the LM
// returned an out-of-range value.
func (v *Verdict) ClampConfidence() {
	if v.ConfidenceScore < 0 {
		v.ConfidenceScore = 0
	}
	if v.ConfidenceScore > 100 {
		v.ConfidenceScore = 100
	}
}

// SkillAssessment is one confirmed skill or knowledge gap.
type SkillAssessment struct {
	Topic         string
	IsConfirmed   bool
	Details       string
	CorrectAnswer string
}

// TechnicalReview summarizes confirmed skills and knowledge gaps.
type TechnicalReview struct {
	ConfirmedSkills []SkillAssessment
	KnowledgeGaps   []SkillAssessment
}

// SoftSkillsReview summarizes communication and engagement.
type SoftSkillsReview struct {
	Clarity         ClarityLevel
	ClarityDetails  string
	Honesty         string
	HonestyDetails  string
	Engagement      string
	EngagementDetails string
}

// RoadmapItem is one recommended follow-up learning topic.
type RoadmapItem struct {
	Topic     string
	Priority  int // 1 (highest) .. 5 (lowest)
	Reason    string
	Resources []string
}

// PersonalRoadmap is the candidate's suggested development plan.
type PersonalRoadmap struct {
	Items   []RoadmapItem
	Summary string
}

// Feedback is the Evaluator's complete final report.
type Feedback struct {
	Verdict          Verdict
	TechnicalReview  TechnicalReview
	SoftSkillsReview SoftSkillsReview
	Roadmap          PersonalRoadmap
	GeneralComments  string
}

// FormattedString renders the feedback as the human-readable, section-headed
// string stored in the summary log's final_feedback field.
func (f *Feedback) FormattedString() string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)
	thin := strings.Repeat("-", 40)

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "FINAL INTERVIEW FEEDBACK")
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "VERDICT")
	fmt.Fprintln(&b, thin)
	fmt.Fprintf(&b, "Level: %s\n", f.Verdict.Grade)
	fmt.Fprintf(&b, "Recommendation: %s\n", f.Verdict.HiringRecommendation)
	fmt.Fprintf(&b, "Confidence: %d%%\n", f.Verdict.ConfidenceScore)
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "TECHNICAL SKILLS")
	fmt.Fprintln(&b, thin)
	if len(f.TechnicalReview.ConfirmedSkills) > 0 {
		fmt.Fprintln(&b, "Confirmed skills:")
		for _, skill := range f.TechnicalReview.ConfirmedSkills {
			fmt.Fprintf(&b, "  - %s: %s\n", skill.Topic, skill.Details)
		}
	} else {
		fmt.Fprintln(&b, "Confirmed skills: none recorded")
	}
	fmt.Fprintln(&b)
	if len(f.TechnicalReview.KnowledgeGaps) > 0 {
		fmt.Fprintln(&b, "Knowledge gaps:")
		for _, gap := range f.TechnicalReview.KnowledgeGaps {
			fmt.Fprintf(&b, "  - %s: %s\n", gap.Topic, gap.Details)
			if gap.CorrectAnswer != "" {
				fmt.Fprintf(&b, "    Correct answer: %s\n", gap.CorrectAnswer)
			}
		}
	} else {
		fmt.Fprintln(&b, "Knowledge gaps: none detected")
	}
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "SOFT SKILLS")
	fmt.Fprintln(&b, thin)
	fmt.Fprintf(&b, "Clarity: %s\n", f.SoftSkillsReview.Clarity)
	fmt.Fprintf(&b, "  %s\n", f.SoftSkillsReview.ClarityDetails)
	fmt.Fprintf(&b, "Honesty: %s\n", f.SoftSkillsReview.Honesty)
	fmt.Fprintf(&b, "  %s\n", f.SoftSkillsReview.HonestyDetails)
	fmt.Fprintf(&b, "Engagement: %s\n", f.SoftSkillsReview.Engagement)
	fmt.Fprintf(&b, "  %s\n", f.SoftSkillsReview.EngagementDetails)
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "DEVELOPMENT ROADMAP")
	fmt.Fprintln(&b, thin)
	fmt.Fprintln(&b, f.Roadmap.Summary)
	fmt.Fprintln(&b)
	if len(f.Roadmap.Items) > 0 {
		items := make([]RoadmapItem, len(f.Roadmap.Items))
		copy(items, f.Roadmap.Items)
		sort.SliceStable(items, func(i, j int) bool { return items[i].Priority < items[j].Priority })
		for _, item := range items {
			fmt.Fprintf(&b, "[Priority %d] %s\n", item.Priority, item.Topic)
			fmt.Fprintf(&b, "  Reason: %s\n", item.Reason)
			if len(item.Resources) > 0 {
				fmt.Fprintf(&b, "  Resources: %s\n", strings.Join(item.Resources, ", "))
			}
		}
	}
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "GENERAL COMMENTS")
	fmt.Fprintln(&b, thin)
	fmt.Fprintln(&b, f.GeneralComments)
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, rule)

	return b.String()
}
