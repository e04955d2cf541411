package rbac

const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

const (
	PermFormView         = "form:view"
	PermFormEdit         = "form:edit"
	PermSubmissionView   = "submission:view"
	PermSubmissionDelete = "submission:delete"
	PermSubmissionExport = "submission:export"
	PermLeadView         = "lead:view"
	PermLeadUpdate       = "lead:update"
	PermTemplateView     = "template:view"
	PermTemplateEdit     = "template:edit"
	PermSettingsView     = "settings:view"
	PermSettingsEdit     = "settings:edit"
	PermUploadLogo       = "upload:logo"
	PermEventsView       = "events:view"
)

// RolePermissions is the default policy. A trailing "*" matches any suffix.
var RolePermissions = map[string][]string{
	RoleViewer: {
		PermFormView,
		PermSubmissionView,
		PermLeadView,
		PermTemplateView,
		PermSettingsView,
	},
	RoleEditor: {
		"form:*",
		"submission:view",
		"submission:export",
		"lead:*",
		"template:*",
		PermSettingsView,
		PermUploadLogo,
	},
	RoleAdmin: {
		"*",
	},
}
