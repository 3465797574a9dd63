package account

import (
	"context"
	nethttp "net/http"
	"strings"

	"github.com/plantify/plantify-go/apierror"
	"github.com/plantify/plantify-go/httpclient"
	"github.com/plantify/plantify-go/validation"
)

// GetProfile fetches the profile of the logged-in user.
func (s *Service) GetProfile(ctx context.Context) Result[Profile] {
	resp, err := s.authorized(ctx, &httpclient.Request{
		Method:   nethttp.MethodGet,
		Endpoint: httpclient.EndpointProfile,
	})
	if err != nil {
		return fail[Profile](s.logger, apierror.OpProfile, err)
	}
	var profile Profile
	if _, err := decode(resp, &profile); err != nil {
		return fail[Profile](s.logger, apierror.OpProfile, err)
	}
	return succeed(profile, "")
}

// UpdateProfile changes the non-empty fields of u and uploads u.Image when
// set.
func (s *Service) UpdateProfile(ctx context.Context, u ProfileUpdate) Result[Profile] {
	form := validation.ProfileForm{
		FirstName: strings.TrimSpace(u.FirstName),
		LastName:  strings.TrimSpace(u.LastName),
		Phone:     strings.TrimSpace(u.Phone),
		Bio:       strings.TrimSpace(u.Bio),
	}
	if err := validation.Validate(form); err != nil {
		return fail[Profile](s.logger, apierror.OpProfileUpdate, err)
	}

	fields := make(map[string]string, 4)
	for key, value := range map[string]string{
		"first_name": form.FirstName,
		"last_name":  form.LastName,
		"phone":      form.Phone,
		"bio":        form.Bio,
	} {
		if value != "" {
			fields[key] = value
		}
	}
	if len(fields) == 0 && u.Image == nil {
		return fail[Profile](s.logger, apierror.OpProfileUpdate,
			validation.NewFieldError("profile", "Please change at least one field"))
	}

	req := &httpclient.Request{Method: nethttp.MethodPut, Endpoint: httpclient.EndpointProfile}
	if u.Image != nil {
		req.Multipart = &httpclient.Multipart{Fields: fields, Files: []httpclient.File{imagePart(u.Image)}}
	} else {
		req.JSON = fields
	}

	resp, err := s.authorized(ctx, req)
	if err != nil {
		return fail[Profile](s.logger, apierror.OpProfileUpdate, err)
	}
	var profile Profile
	if _, err := decode(resp, &profile); err != nil {
		return fail[Profile](s.logger, apierror.OpProfileUpdate, err)
	}
	return succeed(profile, MsgProfileUpdated)
}

func imagePart(img *Image) httpclient.File {
	name, ct := img.Name, img.ContentType
	if name == "" {
		name = "profile.jpg"
	}
	if ct == "" {
		ct = defaultImageMIMEType
	}
	return httpclient.File{Field: profileImageField, Name: name, ContentType: ct, Data: img.Data}
}
