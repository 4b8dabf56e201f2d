package styles

// Tip: To find icons use https://github.com/loichyan/nerdfix

var (
	IconNewspaper = "\U000F0395" // nf-md-newspaper
	IconComment   = ""     // nf-fa-comment
	IconUser      = ""     // nf-fa-user
	IconShield    = "\U000F0565" // nf-md-shield_check
)

// Notification icons.
var (
	IconNotifyInfo    = "" // nf-fa-info_circle
	IconNotifyWarning = "" // nf-fa-warning
	IconNotifyError   = "" // nf-fa-times_circle
)

// Panel markers.
var (
	IconExpanded  = "▾"
	IconCollapsed = "▸"
)
