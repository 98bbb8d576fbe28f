// Package rbac maps account roles to the marketplace actions they may take.
// Ownership of a specific campaign is checked by the services; this only
// decides whether the role may attempt the action at all.
package rbac

import "github.com/sponsorconnect/backend/internal/models"

// Permission constants
const (
	PermManageCampaign    = "manage_campaign"
	PermReviewApplication = "review_application"
	PermEditDraft         = "edit_draft"
	PermUploadMedia       = "upload_media"
	PermApply             = "apply"
	PermBrowseCampaigns   = "browse_campaigns"
	PermEditOwnProfile    = "edit_own_profile"
	PermViewCreators      = "view_creators"
)

// RolePermissions defines what each role can do.
var RolePermissions = map[string][]string{
	models.UserTypeBrand: {
		PermManageCampaign, PermReviewApplication, PermEditDraft, PermUploadMedia,
		PermBrowseCampaigns, PermViewCreators,
	},
	models.UserTypeCreator: {
		PermApply, PermBrowseCampaigns, PermEditOwnProfile,
	},
}

// HasPermission checks if a role has a specific permission.
func HasPermission(role, permission string) bool {
	perms, ok := RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == permission {
			return true
		}
	}
	return false
}
