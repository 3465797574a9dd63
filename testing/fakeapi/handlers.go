package fakeapi

import (
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/plantify/plantify-go/validation"
)

type message map[string]any

var (
	errNotAuthenticated = message{"detail": "Authentication credentials were not provided."}
	errTokenInvalid     = message{"detail": "Given token not valid for any token type", "code": "token_not_valid"}
)

func (s *Server) routes(e *echo.Echo) {
	account := e.Group(AccountPrefix)
	account.POST("/register/", s.register)
	account.POST("/login/", s.login)
	account.POST("/verify-otp/", s.verifyOTP)
	account.POST("/resend-otp/", s.resendOTP)
	account.GET("/profile/", s.getProfile)
	account.PUT("/profile/", s.updateProfile)
	account.POST("/change-password/", s.changePassword)
	account.POST("/check-password-strength/", s.checkPasswordStrength)
	account.POST("/password-reset/request/", s.requestPasswordReset)
	account.POST("/password-reset/verify/", s.verifyPasswordReset)
	account.POST("/password-reset/confirm/", s.confirmPasswordReset)
	account.POST("/token/refresh/", s.refreshToken)

	e.POST(CropDiseasePrefix+"/predict/", s.predict)
}

func bind(c echo.Context) (map[string]string, error) {
	var body map[string]string
	if err := c.Bind(&body); err != nil {
		return nil, c.JSON(http.StatusBadRequest, message{"error": "Invalid request body"})
	}
	if body == nil {
		body = map[string]string{}
	}
	return body, nil
}

func (s *Server) register(c echo.Context) error {
	body, err := bind(c)
	if body == nil {
		return err
	}
	email := strings.ToLower(body["email"])
	if body["password"] != body["password2"] {
		return c.JSON(http.StatusBadRequest, message{"password": []string{"Password fields didn't match."}})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[email]; exists {
		return c.JSON(http.StatusBadRequest, message{"email": []string{"user with this email already exists."}})
	}
	s.nextID++
	u := &User{
		ID:        s.nextID,
		Email:     email,
		Password:  body["password"],
		FirstName: body["first_name"],
		LastName:  body["last_name"],
	}
	s.users[email] = u
	return c.JSON(http.StatusCreated, message{
		"success": "Registration successful. Please check your email for the OTP.",
		"data":    u,
	})
}

func (s *Server) login(c echo.Context) error {
	body, err := bind(c)
	if body == nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[strings.ToLower(body["email"])]
	if !ok || u.Password != body["password"] {
		return c.JSON(http.StatusUnauthorized, message{"detail": "Invalid credentials"})
	}
	if !u.Verified {
		return c.JSON(http.StatusForbidden, message{"error": "Email not verified. Please verify your email first."})
	}
	access, refresh := s.issueLocked(u.Email)
	return c.JSON(http.StatusOK, message{
		"success": "Login successful.",
		"data":    message{"access": access, "refresh": refresh},
	})
}

func (s *Server) verifyOTP(c echo.Context) error {
	body, err := bind(c)
	if body == nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[strings.ToLower(body["email"])]
	if !ok || body["otp"] != OTP {
		return c.JSON(http.StatusBadRequest, message{"error": "Invalid or expired OTP"})
	}
	u.Verified = true
	access, refresh := s.issueLocked(u.Email)
	return c.JSON(http.StatusOK, message{
		"success": "Email verified successfully.",
		"data":    message{"access": access, "refresh": refresh},
	})
}

func (s *Server) resendOTP(c echo.Context) error {
	body, err := bind(c)
	if body == nil {
		return err
	}
	if _, ok := s.User(body["email"]); !ok {
		return c.JSON(http.StatusNotFound, message{"error": "User not found"})
	}
	return c.JSON(http.StatusOK, message{"success": "OTP sent to your email."})
}

func (s *Server) getProfile(c echo.Context) error {
	email, ok := s.authenticated(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errTokenInvalid)
	}
	u, _ := s.User(email)
	return c.JSON(http.StatusOK, u)
}

func (s *Server) updateProfile(c echo.Context) error {
	email, ok := s.authenticated(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errTokenInvalid)
	}

	fields := map[string]string{}
	var image string
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return c.JSON(http.StatusBadRequest, message{"error": "Invalid multipart body"})
		}
		for k, v := range form.Value {
			if len(v) > 0 {
				fields[k] = v[0]
			}
		}
		if files := form.File["profile_image"]; len(files) > 0 {
			if !strings.HasPrefix(files[0].Header.Get(echo.HeaderContentType), "image/") {
				return c.JSON(http.StatusBadRequest, message{"profile_image": []string{"Upload a valid image."}})
			}
			image = "/media/profile_images/" + files[0].Filename
		}
	} else {
		body, err := bind(c)
		if body == nil {
			return err
		}
		fields = body
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[email]
	for k, v := range fields {
		switch k {
		case "first_name":
			u.FirstName = v
		case "last_name":
			u.LastName = v
		case "phone":
			u.Phone = v
		case "bio":
			u.Bio = v
		}
	}
	if image != "" {
		u.ProfileImage = image
	}
	return c.JSON(http.StatusOK, u)
}

func (s *Server) changePassword(c echo.Context) error {
	email, ok := s.authenticated(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errNotAuthenticated)
	}
	body, err := bind(c)
	if body == nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[email]
	if u.Password != body["current_password"] {
		return c.JSON(http.StatusBadRequest, message{"current_password": []string{"Current password is incorrect."}})
	}
	if body["new_password"] != body["confirm_password"] {
		return c.JSON(http.StatusBadRequest, message{"non_field_errors": []string{"New passwords do not match."}})
	}
	u.Password = body["new_password"]
	return c.JSON(http.StatusOK, message{"success": "Password changed successfully."})
}

func (s *Server) checkPasswordStrength(c echo.Context) error {
	body, err := bind(c)
	if body == nil {
		return err
	}
	return c.JSON(http.StatusOK, validation.PasswordStrength(body["password"]))
}

func (s *Server) requestPasswordReset(c echo.Context) error {
	body, err := bind(c)
	if body == nil {
		return err
	}
	email := strings.ToLower(body["email"])

	s.mu.Lock()
	if _, ok := s.users[email]; ok {
		s.resets[uuid.NewString()] = email
	}
	s.mu.Unlock()
	return c.JSON(http.StatusOK, message{"success": "Password reset link sent."})
}

func (s *Server) verifyPasswordReset(c echo.Context) error {
	body, err := bind(c)
	if body == nil {
		return err
	}

	s.mu.Lock()
	_, ok := s.resets[body["token"]]
	s.mu.Unlock()
	if !ok {
		return c.JSON(http.StatusBadRequest, message{"error": "Invalid token or token has expired"})
	}
	return c.JSON(http.StatusOK, message{"success": "Token is valid."})
}

func (s *Server) confirmPasswordReset(c echo.Context) error {
	body, err := bind(c)
	if body == nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.resets[body["token"]]
	if !ok {
		return c.JSON(http.StatusBadRequest, message{"error": "Invalid token or token has expired"})
	}
	delete(s.resets, body["token"])
	s.users[email].Password = body["new_password"]
	return c.JSON(http.StatusOK, message{"success": "Password has been reset."})
}

func (s *Server) refreshToken(c echo.Context) error {
	body, err := bind(c)
	if body == nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.refresh[body["refresh"]]
	if !ok {
		return c.JSON(http.StatusUnauthorized, message{"detail": "Token is invalid or expired", "code": "token_not_valid"})
	}
	access := uuid.NewString()
	s.access[access] = email
	return c.JSON(http.StatusOK, message{"access": access})
}

func (s *Server) predict(c echo.Context) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, message{"error": "No image provided"})
	}
	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, message{"error": "Unreadable image"})
	}
	defer f.Close()
	if data, err := io.ReadAll(f); err != nil || len(data) == 0 {
		return c.JSON(http.StatusBadRequest, message{"error": "Empty image"})
	}

	s.mu.Lock()
	p := s.prediction
	s.mu.Unlock()
	return c.JSON(http.StatusOK, p)
}
