// Package apierror classifies client failures into a closed set of kinds and
// maps each kind to the title, message and primary action shown to the user.
//
// Classification order
//   - An HTTP status code, when the error carries one, decides the kind through
//     a fixed table.
//   - Otherwise an error that declares its own kind (ErrorKind() string) wins.
//   - Otherwise the message text is matched against keyword lists in a fixed
//     priority order; the first match wins and anything else is KindUnknown.
//
// Classification never panics and is deterministic for a given error.
package apierror

// Kind is the category of a failure.
type Kind string

const (
	KindNetwork           Kind = "network"
	KindTimeout           Kind = "timeout"
	KindAuthentication    Kind = "authentication"
	KindValidation        Kind = "validation"
	KindServer            Kind = "server"
	KindTokenExpired      Kind = "token_expired"
	KindEmailVerification Kind = "email_verification"
	KindPasswordReset     Kind = "password_reset"
	KindProfileUpdate     Kind = "profile_update"
	KindImageUpload       Kind = "image_upload"
	KindPermission        Kind = "permission"
	KindStorage           Kind = "storage"
	KindUnknown           Kind = "unknown"
)

// Kinds lists every kind in classification priority order, KindServer and
// KindTokenExpired (never produced by text matching) last before KindUnknown.
var Kinds = []Kind{
	KindNetwork,
	KindTimeout,
	KindAuthentication,
	KindValidation,
	KindEmailVerification,
	KindPasswordReset,
	KindProfileUpdate,
	KindImageUpload,
	KindPermission,
	KindStorage,
	KindServer,
	KindTokenExpired,
	KindUnknown,
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer
func (k Kind) String() string { return string(k) }
