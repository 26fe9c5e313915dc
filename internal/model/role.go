package model

import "strings"

// RoleKind is the interview track chosen for a team member's free-text role.
type RoleKind string

const (
	RoleDeveloper RoleKind = "developer"
	RoleQA        RoleKind = "qa"
	RoleDesign    RoleKind = "design"
	RoleProduct   RoleKind = "product"
	RoleScrum     RoleKind = "scrum"
	RoleDevOps    RoleKind = "devops"
	RoleGeneral   RoleKind = "general"
)

// roleKeywords is checked in order; the first kind with a matching keyword wins.
var roleKeywords = []struct {
	kind     RoleKind
	keywords []string
}{
	{RoleDeveloper, []string{"developer", "dev", "engineer"}},
	{RoleQA, []string{"qa", "test", "quality"}},
	{RoleDesign, []string{"design", "ux", "ui"}},
	{RoleProduct, []string{"product", "pm", "po"}},
	{RoleScrum, []string{"scrum", "agile"}},
	{RoleDevOps, []string{"devops", "infra", "ops"}},
}

func ClassifyRole(role string) RoleKind {
	r := strings.ToLower(role)
	for _, rk := range roleKeywords {
		for _, kw := range rk.keywords {
			if strings.Contains(r, kw) {
				return rk.kind
			}
		}
	}
	return RoleGeneral
}

// TeamRoles feeds the role dropdown.
var TeamRoles = []string{
	"Developer",
	"Senior Developer",
	"Tech Lead",
	"Designer",
	"UI/UX Designer",
	"QA Engineer",
	"QA Lead",
	"Product Manager",
	"Product Owner",
	"Scrum Master",
	"DevOps Engineer",
	"Data Analyst",
	"Business Analyst",
}
