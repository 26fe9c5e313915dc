package service

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Lavindu17/ai-project-l2/internal/model"
)

//go:embed prompts/*.txt
var defaultPrompts embed.FS

const (
	promptInterviewer = "interviewer.txt"
	promptThemes      = "theme_extraction.txt"
	promptRecommend   = "recommendations.txt"

	promptWindow   = 5
	messageWindow  = 10
	totalQuestions = 8
)

var roleGuidance = map[model.RoleKind]string{
	model.RoleDeveloper: `For developers, focus on:
- Code quality and technical debt
- Development tools and processes
- Code review experience
- Technical challenges and solutions
- Sprint planning accuracy for development tasks`,
	model.RoleQA: `For QA engineers, focus on:
- Testing coverage and processes
- Bug discovery and communication
- Environment stability
- Test automation opportunities
- Collaboration with developers`,
	model.RoleDesign: `For designers, focus on:
- Design-to-development handoff
- Feedback and iteration process
- User research incorporation
- Design system improvements
- Cross-functional collaboration`,
	model.RoleProduct: `For product managers, focus on:
- Requirements clarity and changes
- Stakeholder communication
- Prioritization effectiveness
- Sprint goal achievement
- Team velocity and predictability`,
	model.RoleScrum: `For Scrum Masters, focus on:
- Team impediments and blockers
- Process improvements
- Team dynamics and morale
- Sprint ceremony effectiveness
- Cross-team dependencies`,
	model.RoleDevOps: `For DevOps engineers, focus on:
- Deployment and CI/CD processes
- Infrastructure stability
- Monitoring and alerting
- Developer experience
- Security and compliance`,
	model.RoleGeneral: `Focus on general sprint experience:
- What worked well
- What could be improved
- Team collaboration
- Process suggestions`,
}

var replyInstructions = fmt.Sprintf(`Respond naturally and conversationally. Keep your response to 2-3 sentences maximum.
Ask relevant follow-up questions based on their role when appropriate.

Reply with ONLY a JSON object of the form
{"reply": "<your message>", "question": <number of the question you are now asking, 1-%d>, "complete": <true once all %d questions have been answered>}`,
	totalQuestions, totalQuestions)

// InterviewInput is everything needed for one interview turn.
type InterviewInput struct {
	History    []model.Turn
	Message    string
	MemberName string
	MemberRole string
	Sprint     *model.SprintContext
}

// PromptAssembler builds interview and analysis prompts. Templates are read
// from dir when present there, otherwise the built-in copies are used.
type PromptAssembler struct {
	dir string
}

func NewPromptAssembler(dir string) *PromptAssembler { return &PromptAssembler{dir: dir} }

func (p *PromptAssembler) Template(name string) string {
	if p.dir != "" {
		if data, err := os.ReadFile(filepath.Join(p.dir, name)); err == nil {
			return string(data)
		}
	}
	data, _ := defaultPrompts.ReadFile("prompts/" + name)
	return string(data)
}

// BuildPrompt renders a single-text prompt for providers without chat roles.
func (p *PromptAssembler) BuildPrompt(in InterviewInput) string {
	var sb strings.Builder
	sb.WriteString(p.systemSections(in))
	sb.WriteString("\n\n")
	sb.WriteString(conversationContext(in.History))
	sb.WriteString("\n\nUser: ")
	sb.WriteString(in.Message)
	sb.WriteString("\n\n")
	sb.WriteString(replyInstructions)
	return sb.String()
}

// BuildMessages renders a system message plus the recent turns for chat
// providers.
func (p *PromptAssembler) BuildMessages(in InterviewInput) []Message {
	system := p.systemSections(in) + "\n\n" + replyInstructions
	msgs := []Message{{Role: "system", Content: system}}
	for _, t := range lastTurns(in.History, messageWindow) {
		role := "user"
		if t.Role == model.TurnAI {
			role = "assistant"
		}
		msgs = append(msgs, Message{Role: role, Content: t.Content})
	}
	return append(msgs, Message{Role: "user", Content: in.Message})
}

func (p *PromptAssembler) systemSections(in InterviewInput) string {
	name, role := in.MemberName, in.MemberRole
	if name == "" {
		name = "Team Member"
	}
	if role == "" {
		role = "Team Member"
	}

	parts := []string{
		strings.TrimSpace(p.Template(promptInterviewer)),
		fmt.Sprintf("TEAM MEMBER INFORMATION:\n- Name: %s\n- Role: %s", name, role),
	}
	if sc := SprintContextText(in.Sprint); sc != "" {
		parts = append(parts, sc)
	}
	parts = append(parts, "ROLE-SPECIFIC GUIDANCE:\n"+roleGuidance[model.ClassifyRole(role)])
	return strings.Join(parts, "\n\n")
}

// SprintContextText renders the sprint block shown to the interviewer.
func SprintContextText(sc *model.SprintContext) string {
	if sc == nil {
		return ""
	}
	lines := []string{
		"SPRINT CONTEXT:",
		"- Sprint: " + sc.Sprint.Name,
		fmt.Sprintf("- Dates: %s to %s", sc.Sprint.StartDate, sc.Sprint.EndDate),
	}
	if sc.Project != nil {
		lines = append(lines, "- Project: "+sc.Project.Name)
		if sc.Project.Description != "" {
			lines = append(lines, "  Description: "+sc.Project.Description)
		}
	}
	if len(sc.Goals) > 0 {
		lines = append(lines, "- Sprint Goals:")
		for _, g := range sc.Goals {
			if g.GoalText != "" {
				lines = append(lines, "  • "+g.GoalText)
			}
		}
	}
	if o := sc.Outcomes; o != nil {
		if o.ProgressSummary != "" {
			lines = append(lines, "- Progress Summary: "+o.ProgressSummary)
		}
		if o.WhatWentWell != "" {
			lines = append(lines, "- What Went Well (Admin view): "+o.WhatWentWell)
		}
		if o.WhatWentWrong != "" {
			lines = append(lines, "- Challenges (Admin view): "+o.WhatWentWrong)
		}
	}
	return strings.Join(lines, "\n")
}

func conversationContext(history []model.Turn) string {
	if len(history) == 0 {
		return "This is the start of the conversation."
	}
	var sb strings.Builder
	sb.WriteString("Conversation so far:\n")
	for _, t := range lastTurns(history, promptWindow) {
		fmt.Fprintf(&sb, "%s: %s\n", speaker(t), t.Content)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Transcript renders a whole conversation as "AI:"/"User:" lines.
func Transcript(history []model.Turn) string {
	var sb strings.Builder
	for _, t := range history {
		fmt.Fprintf(&sb, "%s: %s\n", speaker(t), t.Content)
	}
	return sb.String()
}

// UserText joins the user turns of a conversation.
func UserText(history []model.Turn) string {
	var parts []string
	for _, t := range history {
		if t.Role == model.TurnUser {
			parts = append(parts, t.Content)
		}
	}
	return strings.Join(parts, " ")
}

func speaker(t model.Turn) string {
	if t.Role == model.TurnAI {
		return "AI"
	}
	return "User"
}

func lastTurns(history []model.Turn, n int) []model.Turn {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

// fillTemplate substitutes {key} placeholders.
func fillTemplate(tpl string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}
