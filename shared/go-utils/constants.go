package utils

const (
	OrganizationName                      = "Krishna Properties"
	CORSLowSecurityAllowedOriginLocalhost = "http://localhost:*"
	DefaultPublicSiteURL                  = "http://localhost:5173"

	// AdminParticipantID is the pseudo participant standing in for the
	// support desk in chat conversations.
	AdminParticipantID = "admin"

	// MaxListScan caps every unbounded collection scan.
	MaxListScan = 5000
)
