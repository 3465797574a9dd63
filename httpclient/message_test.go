package httpclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractMessagePrecedence(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{name: "error_first", body: `{"detail":"d","error":"e","message":"m"}`, status: 400, want: "e"},
		{name: "detail_before_message", body: `{"message":"m","detail":"d"}`, status: 400, want: "d"},
		{name: "message", body: `{"message":"m"}`, status: 400, want: "m"},
		{name: "non_field_errors", body: `{"password":["short"],"non_field_errors":["Passwords do not match."]}`, status: 400, want: "Passwords do not match."},
		{name: "first_field_in_document_order", body: `{"password":["Too short."],"email":["This field is required."]}`, status: 400, want: "Too short."},
		{name: "field_string_value", body: `{"otp":"Invalid OTP"}`, status: 400, want: "Invalid OTP"},
		{name: "skips_empty_values", body: `{"error":"","email":[],"name":["Required."]}`, status: 400, want: "Required."},
		{name: "status_text_for_empty_body", body: ``, status: 503, want: "Service Unavailable"},
		{name: "status_text_for_non_object", body: `["a"]`, status: 500, want: "Internal Server Error"},
		{name: "status_text_for_html", body: `<h1>Bad Gateway</h1>`, status: 502, want: "Bad Gateway"},
		{name: "unknown_status", body: ``, status: 599, want: "HTTP error! status: 599"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractMessage([]byte(tt.body), tt.status))
		})
	}
}

func TestEndpointURL(t *testing.T) {
	base := "http://10.0.2.2:8000/account"

	got, ok := EndpointTokenRefresh.URL(base, "/account", "/crop-disease")
	assert.True(t, ok)
	assert.Equal(t, "http://10.0.2.2:8000/account/token/refresh/", got)

	got, ok = EndpointCropDiseasePredict.URL(base+"/", "/account", "/crop-disease")
	assert.True(t, ok)
	assert.Equal(t, "http://10.0.2.2:8000/crop-disease/predict/", got)

	_, ok = Endpoint("missing").URL(base, "/account", "/crop-disease")
	assert.False(t, ok)
}
