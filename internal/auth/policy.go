package auth

import (
	"github.com/spec-kit/social-services/internal/domain"
)

// Rule selects how an Action is authorized.
type Rule int

const (
	// RuleAllowAny admits everyone, anonymous callers included.
	RuleAllowAny Rule = iota
	// RuleAuthenticated admits any verified account.
	RuleAuthenticated
	// RuleOwner admits the account owning the resource.
	RuleOwner
	// RuleStaffGroup admits staff holding Action.Group.
	RuleStaffGroup
	// RuleEmployerOrStaff admits the owning employer or staff holding Action.Group.
	RuleEmployerOrStaff
	// RuleEmployer admits employer accounts.
	RuleEmployer
	// RuleStandard admits standard user accounts.
	RuleStandard
)

// Action names an operation together with the rule guarding it.
type Action struct {
	Name  string
	Rule  Rule
	Group domain.StaffGroup
}

// Owned is implemented by resources that belong to an account.
type Owned interface {
	OwnerID() (string, bool)
}

// Actions guarded across the platform.
var (
	ActionViewSteps   = Action{Name: "steps.view", Rule: RuleAllowAny}
	ActionManageSteps = Action{Name: "steps.manage", Rule: RuleStaffGroup, Group: domain.StaffGroupGuideEditor}

	ActionListOffers   = Action{Name: "job.list", Rule: RuleAllowAny}
	ActionCreateOffer  = Action{Name: "job.create", Rule: RuleEmployer}
	ActionEditOffer    = Action{Name: "job.edit", Rule: RuleEmployerOrStaff, Group: domain.StaffGroupJobsModeration}
	ActionRemoveOffer  = Action{Name: "job.remove", Rule: RuleEmployerOrStaff, Group: domain.StaffGroupJobsModeration}
	ActionViewHidden   = Action{Name: "job.view_hidden", Rule: RuleEmployerOrStaff, Group: domain.StaffGroupJobsModeration}
	ActionConfirmOffer = Action{Name: "job.confirm", Rule: RuleStaffGroup, Group: domain.StaffGroupJobsModeration}
	ActionModerateJobs = Action{Name: "job.moderate", Rule: RuleStaffGroup, Group: domain.StaffGroupJobsModeration}
	ActionApplyOffer   = Action{Name: "job.apply", Rule: RuleStandard}

	ActionManageCVs = Action{Name: "cv.manage", Rule: RuleStandard}
	ActionOwnCV     = Action{Name: "cv.own", Rule: RuleOwner}

	ActionVerifyAccounts = Action{Name: "accounts.verify", Rule: RuleStaffGroup, Group: domain.StaffGroupAccountVerification}
	ActionReadInbox      = Action{Name: "notifications.read", Rule: RuleAuthenticated}
)

// IsAllowed decides whether actor may perform action on resource. It is a pure function of
// its arguments; callers pass freshly loaded state on every request.
func IsAllowed(actor *domain.Account, action Action, resource any) bool {
	if action.Rule == RuleAllowAny {
		return true
	}
	if actor == nil || actor.VerificationStatus != domain.VerificationVerified {
		return false
	}

	switch action.Rule {
	case RuleAuthenticated:
		return true
	case RuleOwner:
		return ownsResource(actor, resource)
	case RuleStaffGroup:
		return hasStaffGroup(actor, action.Group)
	case RuleEmployerOrStaff:
		if actor.Type == domain.AccountTypeEmployer && ownsResource(actor, resource) {
			return true
		}
		return hasStaffGroup(actor, action.Group)
	case RuleEmployer:
		return actor.Type == domain.AccountTypeEmployer
	case RuleStandard:
		return actor.Type == domain.AccountTypeStandard
	default:
		return false
	}
}

func ownsResource(actor *domain.Account, resource any) bool {
	owned, ok := resource.(Owned)
	if !ok || owned == nil {
		return false
	}
	ownerID, ok := owned.OwnerID()
	return ok && ownerID != "" && ownerID == actor.ID
}

func hasStaffGroup(actor *domain.Account, group domain.StaffGroup) bool {
	return actor.Type == domain.AccountTypeStaff && group != "" && actor.HasGroup(group)
}
