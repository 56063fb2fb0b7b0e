package agent

import (
	"fmt"
	"strings"

	"github.com/boddenberg/recruit-assist-go/internal/domain"
)

// LegacyReply is a canned keyword answer. Type becomes metadata.type.
type LegacyReply struct {
	Text string
	Type string
}

var initialMessages = map[domain.AgentType]string{
	domain.AgentRecruitment: "Hello! I'm your recruitment assistant. I can help you explore career paths, understand requirements, and provide personalized recommendations based on your interests and goals. What would you like to know?",
	domain.AgentTraining:    "Hello! I'm your training assistant. I can help you with both physical and mental training programs, track your progress, and provide personalized workout plans. Are you looking for physical training, mental wellness guidance, or both?",
	domain.AgentFinancial:   "Hello! I'm your financial assistant. I can help you understand military benefits, plan your finances, set savings goals, and provide guidance on managing money during and after service. What financial topic would you like to explore?",
	domain.AgentEducational: "Hello! I'm your educational assistant. I can help you understand educational opportunities in the military, guide you through training programs, assist with skill development, and provide resources for continuing education. What would you like to learn about?",
}

type legacyTopic struct {
	keywords []string
	kind     string
	text     func(p *domain.ProfileContext) string
}

func fixed(s string) func(*domain.ProfileContext) string {
	return func(*domain.ProfileContext) string { return s }
}

// legacyTopics is checked in order; the first topic with a matching
// keyword wins.
var legacyTopics = map[domain.AgentType][]legacyTopic{
	domain.AgentRecruitment: {
		{keywords: []string{"career", "path"}, kind: "career_path", text: fixed(careerPathText)},
		{keywords: []string{"requirement", "qualification"}, kind: "requirements", text: fixed(requirementsText)},
		{keywords: []string{"recommend", "suggest"}, kind: "recommendation", text: recommendationText},
	},
	domain.AgentTraining: {
		{keywords: []string{"physical", "fitness", "workout"}, kind: "physical_training", text: fixed(physicalTrainingText)},
		{keywords: []string{"mental", "wellness", "stress"}, kind: "mental_training", text: fixed(mentalTrainingText)},
		{keywords: []string{"schedule", "plan"}, kind: "training_plan", text: trainingPlanText},
		{keywords: []string{"progress", "track"}, kind: "progress", text: fixed(trackingText)},
	},
	domain.AgentFinancial: {
		{keywords: []string{"benefit", "pay", "salary"}, kind: "benefits", text: fixed(benefitsText)},
		{keywords: []string{"budget", "save", "money"}, kind: "budgeting", text: fixed(budgetingText)},
		{keywords: []string{"goal", "plan"}, kind: "goals", text: fixed(financialGoalsText)},
		{keywords: []string{"retirement", "pension"}, kind: "retirement", text: fixed(retirementText)},
	},
	domain.AgentEducational: {
		{keywords: []string{"gi bill", "education", "degree"}, kind: "education_benefits", text: fixed(educationBenefitsText)},
		{keywords: []string{"training", "skill", "certification"}, kind: "training", text: fixed(educationTrainingText)},
		{keywords: []string{"career", "development"}, kind: "career_development", text: fixed(careerDevelopmentText)},
		{keywords: []string{"resource", "material", "study"}, kind: "resources", text: fixed(resourcesText)},
	},
}

var generalReplies = map[domain.AgentType]string{
	domain.AgentRecruitment: "I understand you're exploring army recruitment options. I can help you with career paths, requirements, and personalized recommendations. What specific area interests you?",
	domain.AgentTraining:    "I can help you with physical fitness training, mental wellness programs, creating training schedules, and tracking your progress. What would you like to focus on?",
	domain.AgentFinancial:   "I can help you with military benefits, budgeting, financial planning, savings goals, and retirement planning. What specific financial topic would you like to discuss?",
	domain.AgentEducational: "I can help you with educational benefits (like the GI Bill), training programs, skill certifications, career development resources, and study materials. What educational topic interests you?",
}

// RespondLegacy answers from the canned keyword tables. It never calls a model.
func RespondLegacy(t domain.AgentType, message string, profile *domain.ProfileContext) LegacyReply {
	lc := strings.ToLower(message)
	for _, topic := range legacyTopics[t] {
		if containsAny(lc, topic.keywords...) {
			return LegacyReply{Text: topic.text(profile), Type: topic.kind}
		}
	}
	return LegacyReply{Text: generalReplies[t], Type: "general"}
}

func recommendationText(p *domain.ProfileContext) string {
	if p == nil || len(p.Interests) == 0 {
		return "To provide personalized recommendations, I'd like to know more about your interests and goals. What areas are you most passionate about? Are you more interested in hands-on work, technology, helping others, or leadership roles?"
	}
	return fmt.Sprintf("Based on your interests in %s, I'd recommend exploring roles that align with these areas. Would you like me to generate a detailed career path recommendation for you?",
		strings.Join(p.Interests, ", "))
}

func trainingPlanText(p *domain.ProfileContext) string {
	level := "beginner"
	if p != nil && p.FitnessLevel != "" {
		level = p.FitnessLevel
	}
	return fmt.Sprintf(trainingPlanTemplate, level)
}

const careerPathText = `There are numerous exciting career paths in the military! Some popular options include:
- Combat roles (Infantry, Special Forces)
- Technical roles (IT, Engineering, Communications)
- Medical roles (Medic, Nurse, Surgeon)
- Administrative roles (HR, Finance, Logistics)

What type of work interests you most? I can provide more detailed information based on your preferences.`

const requirementsText = `Basic requirements typically include:
- Age: Usually 17-35 years old
- Education: High school diploma or equivalent
- Physical fitness: Meet minimum fitness standards
- Medical: Pass medical examination
- Legal: Clean criminal record

Specific roles may have additional requirements. Would you like to know about requirements for a specific career path?`

const physicalTrainingText = `I can help you with physical training! Here's a starting plan:

**Beginner Program:**
- Week 1-2: 20-30 min workouts, 3x per week
- Focus: Cardio, basic strength exercises
- Rest days between sessions

**Key Exercises:**
- Running/walking (building endurance)
- Push-ups (upper body strength)
- Sit-ups (core strength)
- Squats (lower body strength)

What's your current fitness level? I can tailor a program specifically for you.`

const mentalTrainingText = `Mental wellness is crucial! I can help with:

**Stress Management:**
- Breathing exercises and meditation
- Time management techniques
- Sleep hygiene tips

**Resilience Building:**
- Growth mindset practices
- Goal-setting strategies
- Problem-solving frameworks

**Focus & Discipline:**
- Concentration exercises
- Mental preparation techniques

What area of mental training would you like to explore?`

const trainingPlanTemplate = `Here's a personalized training schedule for %s level:

**3-Day Training Week:**
- Monday: Strength training
- Wednesday: Cardio endurance
- Friday: Full body circuit

**5-Day Training Week (Intermediate+):**
- Monday: Upper body strength
- Tuesday: Cardio
- Wednesday: Lower body strength
- Thursday: Active recovery/light cardio
- Friday: Full body + core

Would you like me to create a detailed weekly plan with specific exercises?`

const trackingText = `Tracking your progress is important! I can help you:

- Log your workouts (type, duration, intensity)
- Track improvements in strength, endurance, and flexibility
- Set and monitor goals
- Celebrate milestones and achievements

Would you like to start logging your training sessions? I can create a personalized tracking system for you.`

const benefitsText = `Military service comes with excellent benefits:

**Compensation:**
- Base pay (varies by rank and years of service)
- Housing allowance (BAH) or free housing
- Food allowance (BAS)
- Special pay for deployments, hazardous duty, etc.

**Additional Benefits:**
- Comprehensive health care (Tricare)
- Education benefits (GI Bill, tuition assistance)
- Retirement plan (if you serve 20+ years)
- Tax advantages
- Commissary and exchange privileges

Would you like more details about any specific benefit?`

const budgetingText = `Creating a budget is essential! Here's a basic framework:

**50/30/20 Rule:**
- 50% for essentials (housing, food, utilities)
- 30% for wants (entertainment, hobbies)
- 20% for savings and debt repayment

**Military-Specific Tips:**
- Since housing and food are often provided, you can save more
- Take advantage of tax-free deployment pay
- Use the commissary for savings on groceries
- Set up automatic savings transfers

Would you like help creating a personalized budget?`

const financialGoalsText = `Setting financial goals is important! Common goals include:

- Emergency fund (3-6 months of expenses)
- Debt payoff
- Saving for education
- Down payment for a home
- Retirement savings

I can help you create a plan to reach your financial goals. What's your top priority right now?`

const retirementText = `Military retirement planning is unique:

**Traditional Pension:**
- Requires 20 years of service
- Provides lifetime monthly payments
- Based on final pay and years of service

**Blended Retirement System (BRS):**
- Available for those who joined after 2018
- Combines pension with Thrift Savings Plan (TSP)
- More portable if you don't serve 20 years

**Additional Options:**
- TSP (military's 401(k))
- IRA accounts
- Civilian retirement accounts after service

Are you planning for a full 20-year career, or exploring shorter service options?`

const educationBenefitsText = `The military offers excellent educational opportunities:

**GI Bill:**
- Post-9/11 GI Bill: Covers tuition, housing, and books
- Montgomery GI Bill: Monthly education payments
- Transferable to family members (after 6 years of service)

**Tuition Assistance:**
- Up to $4,500/year while serving
- Can be used for college courses, certifications
- Available during active duty

**Additional Programs:**
- SkillBridge (transition training)
- CLEP/DSST exams (free college credits)
- Military-specific training and certifications

Are you interested in pursuing a degree, certification, or specific skill training?`

const educationTrainingText = `Military training covers a wide range:

**Job-Specific Training:**
- Technical skills (IT, mechanics, medical, etc.)
- Leadership development programs
- Specialized certifications

**Continuing Education:**
- Online courses and programs
- Professional development workshops
- Advanced training courses

**Certifications Available:**
- Technical certifications (CompTIA, Cisco, etc.)
- Professional licenses (CDL, EMT, etc.)
- Military-specific credentials

What type of training or certification interests you?`

const careerDevelopmentText = `Career development in the military includes:

**On-the-Job Learning:**
- Hands-on experience in your field
- Mentorship opportunities
- Cross-training in related areas

**Advancement Paths:**
- Promotions based on performance and qualifications
- Specialized career tracks
- Leadership positions

**Transition Planning:**
- Skill translation to civilian careers
- Networking opportunities
- Resume building and interview prep

What career development goals do you have?`

const resourcesText = `Here are valuable educational resources:

**Free Resources:**
- Khan Academy, Coursera (some free courses)
- Military libraries and learning centers
- Online training platforms

**Study Materials:**
- Test prep for CLEP/DSST exams
- Field manuals and technical guides
- Professional development books

**Support:**
- Educational counselors
- Study groups and tutoring
- Learning management systems

What subject or skill would you like to study? I can recommend specific resources.`
