package apierror

import (
	"context"
	"errors"
	"net"
	"strings"
)

// statusKinds is the fixed HTTP status table.
var statusKinds = map[int]Kind{
	400: KindValidation,
	401: KindAuthentication,
	403: KindAuthentication,
	404: KindServer,
	408: KindTimeout,
	409: KindValidation,
	422: KindValidation,
	429: KindServer,
	500: KindServer,
	502: KindServer,
	503: KindServer,
	504: KindTimeout,
}

// messageRules are checked in order against the lower-cased message.
var messageRules = []struct {
	kind     Kind
	keywords []string
}{
	{KindNetwork, []string{
		"network request failed", "network connection failed", "fetch",
		"no internet connection", "connection refused", "no such host",
		"connection reset", "network is unreachable",
	}},
	{KindTimeout, []string{"timeout", "timed out", "deadline exceeded"}},
	{KindAuthentication, []string{
		"invalid credentials", "authentication failed", "invalid email or password",
		"token expired", "unauthorized",
	}},
	{KindValidation, []string{"validation", "required", "invalid", "format"}},
	{KindEmailVerification, []string{"verification", "otp", "code"}},
	{KindPasswordReset, []string{"password reset", "reset link", "token"}},
	{KindProfileUpdate, []string{"profile", "update failed"}},
	{KindImageUpload, []string{"image", "upload", "file"}},
	{KindPermission, []string{"permission", "camera", "gallery"}},
	{KindStorage, []string{"storage", "asyncstorage", "local storage"}},
}

type statusCoder interface {
	StatusCode() int
}

type kinded interface {
	ErrorKind() string
}

// ClassifyStatus maps an HTTP status code through the fixed table.
func ClassifyStatus(code int) (Kind, bool) {
	k, ok := statusKinds[code]
	return k, ok
}

// ClassifyMessage matches msg against the keyword rules. Matching is
// case-insensitive; an unmatched message is KindUnknown.
func ClassifyMessage(msg string) Kind {
	lower := strings.ToLower(msg)
	if lower == "" {
		return KindUnknown
	}
	for _, rule := range messageRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.kind
			}
		}
	}
	return KindUnknown
}

// Classify returns the kind of err. A nil error is KindUnknown.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var sc statusCoder
	if errors.As(err, &sc) {
		if k, ok := ClassifyStatus(sc.StatusCode()); ok {
			return k
		}
	}

	var kd kinded
	if errors.As(err, &kd) {
		if k := Kind(kd.ErrorKind()); k.Valid() && k != KindUnknown {
			return k
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	return ClassifyMessage(err.Error())
}
