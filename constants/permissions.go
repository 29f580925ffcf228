package constants

// Platform permissions
const (
	PermAdminFull    = "task-tracking.admin.full-permit"
	PermPartnerFull  = "task-tracking.partner.full-permit"
	PermProviderFull = "task-tracking.provider.full-permit"
	PermClientFull   = "task-tracking.client.full-permit"

	// Special permissions
	PermAny = "any"
)

// Permission groups for convenience
var (
	BookingReadPermissions = []string{
		PermAdminFull,
		PermPartnerFull,
		PermClientFull,
	}
)
