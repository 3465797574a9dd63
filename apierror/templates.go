package apierror

// Action is the primary action offered alongside an error.
type Action string

const (
	ActionTryAgain Action = "Try Again"
	ActionOK       Action = "OK"
	ActionLogin    Action = "Login"
	ActionSettings Action = "Settings"
)

// Template is the user-facing presentation of a kind.
type Template struct {
	Title   string
	Message string
	Action  Action
}

var templates = map[Kind]Template{
	KindNetwork: {
		Title:   "Connection Error",
		Message: "Unable to connect to the server. Please check your internet connection, that the backend server is running and that both devices are on the same network.",
		Action:  ActionTryAgain,
	},
	KindAuthentication: {
		Title:   "Authentication Failed",
		Message: "Invalid email or password. Please check your credentials and try again.",
		Action:  ActionOK,
	},
	KindValidation: {
		Title:   "Invalid Input",
		Message: "Please check your input and try again.",
		Action:  ActionOK,
	},
	KindServer: {
		Title:   "Server Error",
		Message: "Something went wrong on our end. Please try again later.",
		Action:  ActionOK,
	},
	KindTimeout: {
		Title:   "Request Timeout",
		Message: "The request is taking too long. Please check your connection and try again.",
		Action:  ActionTryAgain,
	},
	KindTokenExpired: {
		Title:   "Session Expired",
		Message: "Your session has expired. Please log in again.",
		Action:  ActionLogin,
	},
	KindEmailVerification: {
		Title:   "Email Verification Failed",
		Message: "Unable to verify your email. Please check the verification code and try again.",
		Action:  ActionOK,
	},
	KindPasswordReset: {
		Title:   "Password Reset Failed",
		Message: "Unable to reset your password. Please try again or request a new reset link.",
		Action:  ActionOK,
	},
	KindProfileUpdate: {
		Title:   "Profile Update Failed",
		Message: "Unable to update your profile. Please check your information and try again.",
		Action:  ActionOK,
	},
	KindImageUpload: {
		Title:   "Image Upload Failed",
		Message: "Unable to upload your image. Please check the file size and format, then try again.",
		Action:  ActionOK,
	},
	KindPermission: {
		Title:   "Permission Denied",
		Message: "This app needs permission to access your camera/gallery. Please enable it in settings.",
		Action:  ActionSettings,
	},
	KindStorage: {
		Title:   "Storage Error",
		Message: "Unable to save data locally. Please check your device storage.",
		Action:  ActionOK,
	},
	KindUnknown: {
		Title:   "Unexpected Error",
		Message: "Something unexpected happened. Please try again.",
		Action:  ActionOK,
	},
}

// TemplateFor returns the presentation of k. Unknown kinds use the
// KindUnknown template.
func TemplateFor(k Kind) Template {
	if t, ok := templates[k]; ok {
		return t
	}
	return templates[KindUnknown]
}
