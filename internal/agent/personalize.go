package agent

import (
	"strings"

	"github.com/boddenberg/recruit-assist-go/internal/domain"
)

// Op says how an annotation touches a list field.
type Op int

const (
	OpAppend Op = iota
	OpReplace
)

// Annotation is one independent guideline change produced by a rule.
//
// Reduce applies annotations in order with these precedences:
// appends to the same field concatenate, OpReplace discards the previous
// list, a non-empty Emphasis overwrites the section's emphasis, and
// ReplaceSection drops every earlier field of the section first.
type Annotation struct {
	Section        string
	Field          string
	Op             Op
	Values         []string
	Emphasis       string
	ReplaceSection bool
}

// Reduce applies annotations to g in place and returns it.
func Reduce(g Guidelines, anns []Annotation) Guidelines {
	if g == nil {
		g = Guidelines{}
	}
	for _, a := range anns {
		sec, ok := g[a.Section]
		if !ok || a.ReplaceSection {
			sec = Section{}
		}
		if sec.Lists == nil {
			sec.Lists = map[string][]string{}
		}
		if a.Field != "" {
			switch a.Op {
			case OpReplace:
				sec.Lists[a.Field] = append([]string(nil), a.Values...)
			default:
				sec.Lists[a.Field] = append(sec.Lists[a.Field], a.Values...)
			}
		}
		if a.Emphasis != "" {
			sec.Emphasis = a.Emphasis
		}
		g[a.Section] = sec
	}
	return g
}

// Personalize tailors base to the user in ec. It returns base itself when
// there is neither a profile nor insights to go on; otherwise base is
// cloned and left untouched.
func Personalize(base Guidelines, t domain.AgentType, ec *domain.EnhancedContext) Guidelines {
	if ec == nil || (ec.Profile == nil && ec.Insights == nil) {
		return base
	}
	in := ruleInput{profile: ec.Profile, insight: ec.Insights}
	var anns []Annotation
	for _, r := range rulesFor(t) {
		anns = append(anns, r(in)...)
	}
	return Reduce(base.Clone(), anns)
}

type ruleInput struct {
	profile *domain.ProfileContext
	insight *domain.Insight
}

func (in ruleInput) age() int {
	if in.profile == nil {
		return 0
	}
	return in.profile.Age
}

func (in ruleInput) interests() []string {
	if in.profile == nil {
		return nil
	}
	return lower(in.profile.Interests)
}

func (in ruleInput) fitness() string {
	if in.profile == nil {
		return ""
	}
	return strings.ToLower(in.profile.FitnessLevel)
}

func (in ruleInput) mentalHealth() string {
	if in.profile == nil {
		return ""
	}
	return strings.ToLower(in.profile.MentalHealth)
}

func (in ruleInput) traits() []string {
	if in.insight == nil {
		return nil
	}
	return lower(in.insight.Personality.Traits)
}

func (in ruleInput) learningStyle() string {
	if in.insight == nil {
		return ""
	}
	return strings.ToLower(in.insight.Personality.LearningStyle)
}

func (in ruleInput) motivation() string {
	if in.insight == nil {
		return ""
	}
	return strings.ToLower(in.insight.Personality.MotivationType)
}

func lower(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

// anyContains reports whether some item contains one of the substrings.
func anyContains(items []string, subs ...string) bool {
	for _, it := range items {
		for _, s := range subs {
			if strings.Contains(it, s) {
				return true
			}
		}
	}
	return false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

type rule func(ruleInput) []Annotation

func rulesFor(t domain.AgentType) []rule {
	switch t {
	case domain.AgentRecruitment:
		return recruitmentRules
	case domain.AgentTraining:
		return trainingRules
	case domain.AgentFinancial:
		return financialRules
	case domain.AgentEducational:
		return educationalRules
	}
	return nil
}

// ============================================================
// Recruitment
// ============================================================

var recruitmentRules = []rule{
	func(in ruleInput) []Annotation {
		switch age := in.age(); {
		case age > 0 && age < 20:
			return []Annotation{{
				Section: "careerPaths", Field: "focusAreas",
				Values:   []string{"Entry-level positions", "Basic training requirements", "Educational benefits", "Long-term career growth"},
				Emphasis: "Emphasize entry-level opportunities, educational benefits, and long-term career growth potential.",
			}}
		case age > 30:
			return []Annotation{{
				Section: "careerPaths", Field: "focusAreas",
				Values:   []string{"Leadership roles", "Experience-based positions", "Career transition opportunities", "Maximum age requirements"},
				Emphasis: "Focus on leadership opportunities, leveraging existing experience, and understanding age requirements.",
			}}
		}
		return nil
	},
	func(in ruleInput) []Annotation {
		interests := in.interests()
		var out []Annotation
		if anyContains(interests, "tech", "computer", "it") {
			out = append(out, Annotation{
				Section: "recommendations", Field: "factors",
				Values:   []string{"Technical roles (IT, Cyber, Communications)", "Certification opportunities", "Clearance requirements for technical positions"},
				Emphasis: "Prioritize technical career paths matching user interests.",
			})
		}
		if anyContains(interests, "medical", "health", "care") {
			out = append(out, Annotation{
				Section: "recommendations", Field: "factors",
				Values:   []string{"Medical roles (Medic, Nurse, Medical Officer)", "Training programs and certifications", "Civilian transferable credentials"},
				Emphasis: "Highlight medical career paths and training opportunities.",
			})
		}
		if anyContains(interests, "leadership", "management", "command") {
			out = append(out, Annotation{
				Section: "recommendations", Field: "factors",
				Values:   []string{"Officer candidate programs", "Leadership development tracks", "Management roles"},
				Emphasis: "Focus on leadership and officer opportunities.",
			})
		}
		return out
	},
	func(in ruleInput) []Annotation {
		switch in.fitness() {
		case "beginner", "low":
			return []Annotation{{
				Section:  "requirements",
				Emphasis: "Provide encouragement about fitness improvement programs. Emphasize that fitness can be developed over time with proper training.",
			}}
		case "advanced", "high":
			return []Annotation{{
				Section: "recommendations", Field: "factors",
				Values:   []string{"Physically demanding roles (Special Forces, Infantry, Combat roles)", "Fitness assessment preparation"},
				Emphasis: "Highlight physically demanding roles that match user capabilities.",
			}}
		}
		return nil
	},
	func(in ruleInput) []Annotation {
		traits := in.traits()
		var out []Annotation
		if anyContains(traits, "goal", "driven") {
			out = append(out, Annotation{Section: "tone",
				Emphasis: "Use goal-oriented language. Focus on career progression paths and achievement milestones."})
		}
		if anyContains(traits, "curious", "exploratory") {
			out = append(out, Annotation{Section: "approach",
				Emphasis: "Provide detailed information and multiple options. Encourage exploration of different paths."})
		}
		if anyContains(traits, "cautious", "thoughtful") {
			out = append(out, Annotation{Section: "tone",
				Emphasis: "Be thorough and patient. Address concerns and provide detailed information about requirements and commitments."})
		}
		return out
	},
	func(in ruleInput) []Annotation {
		style := in.learningStyle()
		switch {
		case strings.Contains(style, "visual"):
			return []Annotation{{Section: "presentation", ReplaceSection: true,
				Emphasis: "Use visual aids, timelines, and structured comparisons when explaining career paths."}}
		case containsAny(style, "hands", "kinesthetic"):
			return []Annotation{{Section: "presentation", ReplaceSection: true,
				Emphasis: "Provide hands-on examples, real-world scenarios, and practical next steps."}}
		}
		return nil
	},
}

// ============================================================
// Training
// ============================================================

var trainingRules = []rule{
	func(in ruleInput) []Annotation {
		switch in.fitness() {
		case "beginner", "low":
			return []Annotation{{
				Section: "physicalTraining", Field: "focusAreas", Op: OpReplace,
				Values:   []string{"Foundational fitness building", "Basic exercises and form", "Progressive overload", "Recovery and rest", "Building consistency"},
				Emphasis: "Start with beginner-friendly programs. Emphasize consistency over intensity. Focus on form and gradual progression.",
			}}
		case "intermediate":
			return []Annotation{{
				Section: "physicalTraining", Field: "focusAreas", Op: OpReplace,
				Values:   []string{"Performance optimization", "Varied training routines", "Strength and endurance balance", "Advanced techniques", "Military-specific training"},
				Emphasis: "Provide intermediate-level programs with variety. Include military fitness test preparation.",
			}}
		case "advanced", "high":
			return []Annotation{{
				Section: "physicalTraining", Field: "focusAreas", Op: OpReplace,
				Values:   []string{"Elite performance training", "Specialized programs", "Recovery optimization", "Competition preparation", "Mentorship and coaching"},
				Emphasis: "Offer advanced, challenging programs. Focus on optimization and specialization.",
			}}
		}
		return nil
	},
	func(in ruleInput) []Annotation {
		if !containsAny(in.mentalHealth(), "stress", "anxiety") {
			return nil
		}
		return []Annotation{{
			Section: "mentalTraining", Field: "categories", Op: OpReplace,
			Values: []string{
				"Stress management techniques", "Anxiety coping strategies", "Mindfulness and meditation",
				"Breathing exercises", "Sleep hygiene", "Professional support resources",
			},
			Emphasis: "Prioritize stress management and coping strategies. Provide gentle, supportive guidance.",
		}}
	},
	func(in ruleInput) []Annotation {
		m := in.motivation()
		switch {
		case strings.Contains(m, "achievement"):
			return []Annotation{{Section: "approach", ReplaceSection: true,
				Emphasis: "Set clear goals and milestones. Track progress and celebrate achievements. Use gamification elements."}}
		case containsAny(m, "social", "affiliation"):
			return []Annotation{{Section: "approach", ReplaceSection: true,
				Emphasis: "Emphasize community and social aspects. Suggest group training options and accountability partners."}}
		}
		return nil
	},
}

// ============================================================
// Financial
// ============================================================

var financialRules = []rule{
	func(in ruleInput) []Annotation {
		switch age := in.age(); {
		case age > 0 && age < 22:
			return []Annotation{{
				Section: "benefits", Field: "categories",
				Values:   []string{"Education benefits (GI Bill)", "Tuition assistance", "Student loan repayment", "Early savings strategies"},
				Emphasis: "Emphasize education benefits and early savings strategies. Focus on long-term financial planning.",
			}}
		case age > 30:
			return []Annotation{{
				Section: "benefits", Field: "categories",
				Values:   []string{"Retirement planning (TSP)", "Home buying programs (VA loans)", "Family benefits", "Transition planning"},
				Emphasis: "Focus on retirement planning, home ownership, and family benefits. Emphasize long-term financial security.",
			}}
		}
		return nil
	},
	func(in ruleInput) []Annotation {
		traits := in.traits()
		switch {
		case anyContains(traits, "detail", "organized"):
			return []Annotation{{Section: "budgeting",
				Emphasis: "Provide detailed budgeting tools and tracking methods. Emphasize comprehensive financial planning."}}
		case anyContains(traits, "simple", "minimal"):
			return []Annotation{{Section: "budgeting",
				Emphasis: "Offer simple, streamlined budgeting approaches. Focus on essential expenses and automatic savings."}}
		}
		return nil
	},
}

// ============================================================
// Educational
// ============================================================

var educationalRules = []rule{
	func(in ruleInput) []Annotation {
		style := in.learningStyle()
		var emphasis string
		switch {
		case strings.Contains(style, "visual"):
			emphasis = "Use visual learning materials, diagrams, videos, and interactive visualizations."
		case strings.Contains(style, "auditory"):
			emphasis = "Recommend audio resources, podcasts, lectures, and discussion-based learning."
		case containsAny(style, "hands", "kinesthetic"):
			emphasis = "Focus on hands-on projects, practical exercises, and interactive learning experiences."
		case containsAny(style, "read", "write"):
			emphasis = "Provide reading materials, written guides, note-taking strategies, and written exercises."
		default:
			return nil
		}
		return []Annotation{{Section: "approach", ReplaceSection: true, Emphasis: emphasis}}
	},
	func(in ruleInput) []Annotation {
		if !anyContains(in.interests(), "tech", "computer", "programming") {
			return nil
		}
		return []Annotation{{
			Section: "programs", Field: "categories",
			Values:   []string{"IT certifications", "Cybersecurity training", "Software development", "Technical skills bootcamps"},
			Emphasis: "Prioritize technical and IT-related educational programs.",
		}}
	},
}
