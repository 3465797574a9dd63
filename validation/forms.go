package validation

// LoginForm is the login screen input.
type LoginForm struct {
	Email    string `json:"email" label:"Email" validate:"notblank,email_address"`
	Password string `json:"password" label:"Password" validate:"notblank"`
}

// RegisterForm is the sign-up screen input.
type RegisterForm struct {
	FirstName       string `json:"first_name" label:"First Name" validate:"notblank,person_name"`
	LastName        string `json:"last_name" label:"Last Name" validate:"notblank,person_name"`
	Email           string `json:"email" label:"Email" validate:"notblank,email_address"`
	Password        string `json:"password" label:"Password" validate:"notblank,strong_password"`
	ConfirmPassword string `json:"password2" label:"Confirm Password" validate:"notblank,eqfield=Password"`
}

// EmailForm carries a single email, as for password reset requests and OTP
// resends.
type EmailForm struct {
	Email string `json:"email" label:"Email" validate:"notblank,email_address"`
}

// VerificationForm is the email verification (OTP) input.
type VerificationForm struct {
	Email string `json:"email" label:"Email" validate:"notblank,email_address"`
	OTP   string `json:"otp" label:"Verification Code" validate:"notblank,otp"`
}

// ResetPasswordForm completes a password reset.
type ResetPasswordForm struct {
	Token           string `json:"token" label:"Reset Token" validate:"notblank"`
	NewPassword     string `json:"new_password" label:"New Password" validate:"notblank,strong_password"`
	ConfirmPassword string `json:"confirm_password" label:"Confirm Password" validate:"notblank,eqfield=NewPassword"`
}

// ChangePasswordForm changes the password of a logged-in user.
type ChangePasswordForm struct {
	CurrentPassword string `json:"current_password" label:"Current Password" validate:"notblank"`
	NewPassword     string `json:"new_password" label:"New Password" validate:"notblank,strong_password"`
	ConfirmPassword string `json:"confirm_password" label:"Confirm Password" validate:"notblank,eqfield=NewPassword"`
}

// ProfileForm validates the fields of a partial profile update. Empty
// fields are left unchanged and skip validation.
type ProfileForm struct {
	FirstName string `json:"first_name" label:"First Name" validate:"omitempty,person_name"`
	LastName  string `json:"last_name" label:"Last Name" validate:"omitempty,person_name"`
	Phone     string `json:"phone" label:"Phone Number" validate:"omitempty,phone"`
	Bio       string `json:"bio" label:"Bio" validate:"omitempty,max=500"`
}
