package httpclient

import (
	"strings"

	"github.com/plantify/plantify-go/endpoint"
)

// Endpoint is a logical API operation.
type Endpoint string

// Account service endpoints
const (
	EndpointRegister              Endpoint = "register"
	EndpointLogin                 Endpoint = "login"
	EndpointVerifyOTP             Endpoint = "verify_otp"
	EndpointResendOTP             Endpoint = "resend_otp"
	EndpointProfile               Endpoint = "profile"
	EndpointPasswordResetRequest  Endpoint = "password_reset_request"
	EndpointPasswordResetVerify   Endpoint = "password_reset_verify"
	EndpointPasswordResetConfirm  Endpoint = "password_reset_confirm"
	EndpointChangePassword        Endpoint = "change_password"
	EndpointCheckPasswordStrength Endpoint = "check_password_strength"
	EndpointTokenRefresh          Endpoint = "token_refresh"
)

// Crop-disease service endpoints
const (
	EndpointCropDiseasePredict Endpoint = "crop_disease_predict"
)

type service int

const (
	serviceAccount service = iota
	serviceCropDisease
)

type route struct {
	service service
	path    string
}

var routes = map[Endpoint]route{
	EndpointRegister:              {serviceAccount, "/register/"},
	EndpointLogin:                 {serviceAccount, "/login/"},
	EndpointVerifyOTP:             {serviceAccount, "/verify-otp/"},
	EndpointResendOTP:             {serviceAccount, "/resend-otp/"},
	EndpointProfile:               {serviceAccount, "/profile/"},
	EndpointPasswordResetRequest:  {serviceAccount, "/password-reset/request/"},
	EndpointPasswordResetVerify:   {serviceAccount, "/password-reset/verify/"},
	EndpointPasswordResetConfirm:  {serviceAccount, "/password-reset/confirm/"},
	EndpointChangePassword:        {serviceAccount, "/change-password/"},
	EndpointCheckPasswordStrength: {serviceAccount, "/check-password-strength/"},
	EndpointTokenRefresh:          {serviceAccount, "/token/refresh/"},
	EndpointCropDiseasePredict:    {serviceCropDisease, "/predict/"},
}

// Path returns the path of e relative to its service base.
func (e Endpoint) Path() (string, bool) {
	r, ok := routes[e]
	return r.path, ok
}

// URL joins the endpoint path to the service base derived from accountBase.
func (e Endpoint) URL(accountBase, accountSegment, diseaseSegment string) (string, bool) {
	r, ok := routes[e]
	if !ok {
		return "", false
	}
	base := accountBase
	if r.service == serviceCropDisease {
		base = endpoint.ServiceURL(accountBase, accountSegment, diseaseSegment)
	}
	return strings.TrimRight(base, "/") + r.path, true
}
