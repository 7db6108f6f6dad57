package domain

import (
	"time"

	"github.com/samber/lo"
)

// AccountType differentiates the kinds of accounts on the platform.
type AccountType string

const (
	AccountTypeStandard AccountType = "STANDARD"
	AccountTypeEmployer AccountType = "EMPLOYER"
	AccountTypeStaff    AccountType = "STAFF"
)

// VerificationStatus represents the moderation state of an account.
type VerificationStatus string

const (
	VerificationVerified VerificationStatus = "VERIFIED"
	VerificationWaiting  VerificationStatus = "WAITING_FOR_VERIFICATION"
	VerificationRejected VerificationStatus = "REJECTED"
	VerificationBlocked  VerificationStatus = "BLOCKED"
)

// Valid reports whether the status is one of the known values.
func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationVerified, VerificationWaiting, VerificationRejected, VerificationBlocked:
		return true
	}
	return false
}

// StaffGroup is a capability tag granted to staff accounts.
type StaffGroup string

const (
	StaffGroupCVReview            StaffGroup = "cv_review"
	StaffGroupJobsModeration      StaffGroup = "jobs_moderation"
	StaffGroupBlogCreator         StaffGroup = "blog_creator"
	StaffGroupBlogModerator       StaffGroup = "blog_moderator"
	StaffGroupChatAccess          StaffGroup = "chat_access"
	StaffGroupGuideEditor         StaffGroup = "guide_editor"
	StaffGroupAccountVerification StaffGroup = "account_verification"
)

// Valid reports whether the group is one of the known capability tags.
func (g StaffGroup) Valid() bool {
	switch g {
	case StaffGroupCVReview, StaffGroupJobsModeration, StaffGroupBlogCreator, StaffGroupBlogModerator,
		StaffGroupChatAccess, StaffGroupGuideEditor, StaffGroupAccountVerification:
		return true
	}
	return false
}

// Account is an authenticated actor of the platform.
type Account struct {
	ID                 string
	Email              string
	Name               string
	PasswordHash       string
	Type               AccountType
	VerificationStatus VerificationStatus
	Groups             []StaffGroup
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HasGroup reports whether the account holds the given staff group.
func (a *Account) HasGroup(group StaffGroup) bool {
	return a != nil && lo.Contains(a.Groups, group)
}

// EmployerProfile holds company data attached to an employer account.
type EmployerProfile struct {
	AccountID   string
	CompanyName string
	Phone       string
	CreatedAt   time.Time
}
