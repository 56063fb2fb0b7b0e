package agent

import (
	"strings"

	"github.com/boddenberg/recruit-assist-go/internal/domain"
	"github.com/boddenberg/recruit-assist-go/internal/ui"
)

// CTARule appends call-to-action buttons when the user message mentions
// one of Keywords. Intent is the token an existing action must contain for
// the rule to be considered already satisfied.
type CTARule struct {
	Keywords []string
	Intent   string
	Actions  []string
}

var ctaRules = map[domain.AgentType][]CTARule{
	domain.AgentRecruitment: {
		{Keywords: []string{"career", "path", "role", "job"}, Intent: "career", Actions: []string{"explore_career", "compare_paths"}},
		{Keywords: []string{"requirement", "qualif", "eligib"}, Intent: "requirement", Actions: []string{"view_requirements"}},
		{Keywords: []string{"recommend", "suggest", "which"}, Intent: "assessment", Actions: []string{"start_assessment"}},
	},
	domain.AgentTraining: {
		{Keywords: []string{"workout", "fitness", "physical", "exercise"}, Intent: "workout", Actions: []string{"start_workout", "save_plan"}},
		{Keywords: []string{"mental", "stress", "wellness", "anxiety"}, Intent: "session", Actions: []string{"start_session"}},
		{Keywords: []string{"progress", "track", "log"}, Intent: "progress", Actions: []string{"log_progress", "track_progress"}},
		{Keywords: []string{"goal"}, Intent: "goal", Actions: []string{"set_goal"}},
	},
	domain.AgentFinancial: {
		{Keywords: []string{"benefit", "pay", "salary"}, Intent: "benefit", Actions: []string{"calculate_benefits", "view_benefits"}},
		{Keywords: []string{"budget", "money", "spend"}, Intent: "budget", Actions: []string{"create_budget"}},
		{Keywords: []string{"save", "saving", "goal"}, Intent: "saving", Actions: []string{"set_savings_goal"}},
		{Keywords: []string{"retire", "pension", "tsp"}, Intent: "retirement", Actions: []string{"plan_retirement"}},
	},
	domain.AgentEducational: {
		{Keywords: []string{"gi bill", "tuition", "degree", "college"}, Intent: "eligibility", Actions: []string{"check_eligibility", "explore_program"}},
		{Keywords: []string{"certif", "skill", "training"}, Intent: "training", Actions: []string{"find_training"}},
		{Keywords: []string{"resource", "study", "material"}, Intent: "resources", Actions: []string{"view_resources"}},
	},
}

// CTARules returns the rules of an agent type in evaluation order.
func CTARules(t domain.AgentType) []CTARule {
	return ctaRules[t]
}

// ApplyCTAs appends the buttons of every matching rule whose intent is not
// already covered by a button or segue in resp. Labels come from cfg.
func ApplyCTAs(rules []CTARule, cfg Config, message string, resp domain.RichResponse) domain.RichResponse {
	lc := strings.ToLower(message)
	for _, r := range rules {
		if !containsAny(lc, r.Keywords...) || hasIntent(resp, r.Intent) {
			continue
		}
		for i, action := range r.Actions {
			variant := "default"
			if i > 0 {
				variant = "outline"
			}
			resp.Components = append(resp.Components, ui.NewButton(cfg.Label(action), action, variant))
		}
	}
	return resp
}

func hasIntent(resp domain.RichResponse, intent string) bool {
	for _, list := range [][]ui.Component{resp.Components, resp.Segues} {
		for _, c := range list {
			if strings.Contains(strings.ToLower(c.Action()), intent) {
				return true
			}
		}
	}
	return false
}
