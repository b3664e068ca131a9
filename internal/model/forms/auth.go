package forms

import (
	"strings"

	"max.ks1230/expense-tracker/internal/services"
)

type Login struct {
	Email    string
	Password string
}

func (f Login) Request() (services.LoginRequest, error) {
	var c checker
	c.email("email", f.Email)
	c.required("password", f.Password, passwordMissingMessage)
	return services.LoginRequest{Email: strings.TrimSpace(f.Email), Password: f.Password}, c.err()
}

type Register struct {
	Username string
	Email    string
	Password string
}

func (f Register) Request() (services.RegisterRequest, error) {
	var c checker
	username := strings.TrimSpace(f.Username)
	c.minLen("username", username, minUsernameLen, shortUsernameMessage)
	c.email("email", f.Email)
	c.minLen("password", f.Password, minPasswordLen, shortPasswordMessage)
	return services.RegisterRequest{
		Username: username,
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
	}, c.err()
}

type Profile struct {
	Username string
	Email    string
}

func (f Profile) Request() (services.UpdateDetailsRequest, error) {
	var c checker
	username := strings.TrimSpace(f.Username)
	c.minLen("username", username, minUsernameLen, shortUsernameMessage)
	c.email("email", f.Email)
	return services.UpdateDetailsRequest{Username: username, Email: strings.TrimSpace(f.Email)}, c.err()
}

type Password struct {
	Current string
	New     string
	Confirm string
}

func (f Password) Request() (services.UpdatePasswordRequest, error) {
	var c checker
	c.required("currentPassword", f.Current, currentMissingMessage)
	c.minLen("newPassword", f.New, minPasswordLen, shortPasswordMessage)
	c.check(f.New == f.Confirm, "confirmPassword", mismatchMessage)
	return services.UpdatePasswordRequest{CurrentPassword: f.Current, NewPassword: f.New}, c.err()
}

type ForgotPassword struct {
	Email string
}

func (f ForgotPassword) Request() (services.ForgotPasswordRequest, error) {
	var c checker
	c.email("email", f.Email)
	return services.ForgotPasswordRequest{Email: strings.TrimSpace(f.Email)}, c.err()
}

type ResetPassword struct {
	Password string
	Confirm  string
}

func (f ResetPassword) Request() (services.ResetPasswordRequest, error) {
	var c checker
	c.minLen("password", f.Password, minPasswordLen, shortPasswordMessage)
	c.check(f.Password == f.Confirm, "confirmPassword", mismatchMessage)
	return services.ResetPasswordRequest{Password: f.Password}, c.err()
}
