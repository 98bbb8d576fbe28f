package models

// Campaign statuses
const (
	CampaignStatusDraft     = "draft"
	CampaignStatusActive    = "active"
	CampaignStatusCompleted = "completed"
	CampaignStatusCancelled = "cancelled"
)

// Application statuses
const (
	ApplicationStatusPending     = "pending"
	ApplicationStatusApproved    = "approved"
	ApplicationStatusRejected    = "rejected"
	ApplicationStatusShortlisted = "shortlisted"
)

// Brand review actions on an application
const (
	ActionApprove   = "approve"
	ActionReject    = "reject"
	ActionShortlist = "shortlist"
	ActionPending   = "pending"
)

// StatusAll disables status filtering in list queries.
const StatusAll = "all"

// Valid campaign transitions: from -> []to
var ValidCampaignTransitions = map[string][]string{
	CampaignStatusDraft:     {CampaignStatusActive},
	CampaignStatusActive:    {CampaignStatusCompleted, CampaignStatusCancelled},
	CampaignStatusCompleted: {},
	CampaignStatusCancelled: {},
}

func IsValidCampaignTransition(from, to string) bool {
	for _, s := range ValidCampaignTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func IsCampaignStatus(s string) bool {
	_, ok := ValidCampaignTransitions[s]
	return ok
}

// ApplicationActions maps current status and action to the resulting status.
// Anything missing from the table is an invalid transition.
var ApplicationActions = map[string]map[string]string{
	ApplicationStatusPending: {
		ActionApprove:   ApplicationStatusApproved,
		ActionReject:    ApplicationStatusRejected,
		ActionShortlist: ApplicationStatusShortlisted,
	},
	ApplicationStatusShortlisted: {
		ActionApprove: ApplicationStatusApproved,
		ActionReject:  ApplicationStatusRejected,
		ActionPending: ApplicationStatusPending,
	},
	ApplicationStatusApproved: {
		ActionReject: ApplicationStatusRejected,
	},
	ApplicationStatusRejected: {
		ActionPending: ApplicationStatusPending,
	},
}

// NextApplicationStatus returns the status reached by applying action to current.
func NextApplicationStatus(current, action string) (string, bool) {
	next, ok := ApplicationActions[current][action]
	return next, ok
}

// ActionForStatus maps a requested target status to the review action producing it.
func ActionForStatus(target string) (string, bool) {
	switch target {
	case ApplicationStatusApproved:
		return ActionApprove, true
	case ApplicationStatusRejected:
		return ActionReject, true
	case ApplicationStatusShortlisted:
		return ActionShortlist, true
	case ApplicationStatusPending:
		return ActionPending, true
	}
	return "", false
}

func IsApplicationStatus(s string) bool {
	_, ok := ApplicationActions[s]
	return ok
}
