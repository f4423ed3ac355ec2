// Package handler exposes the company registration workflow over HTTP under /api/company.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"company-registration/backend/internal/company/domain"
	"company-registration/backend/internal/company/service"
	"company-registration/backend/internal/response"
	"company-registration/backend/internal/server/middleware"
)

// Envelope messages.
const (
	MsgRegistered       = "Company registered successfully. Please check your email for OTP verification."
	MsgOTPValidated     = "OTP validated successfully. Please set your password."
	MsgPasswordSet      = "Password set successfully. You can now login."
	MsgOTPResent        = "New OTP sent successfully. Please check your email."
	MsgLoggedIn         = "Login successful"
	MsgProfile          = "Company profile retrieved successfully"
	MsgValidationFailed = "Validation failed"
	MsgConflict         = "Email address is already registered"
	MsgNotFound         = "Company not found"
	MsgAlreadyVerified  = "Email is already verified"
	MsgInvalidOTP       = "Invalid or expired OTP code"
	MsgNotVerified      = "Email is not verified. Please verify your email first."
	MsgPasswordSetDone  = "Password is already set. Please login."
	MsgMismatch         = "Passwords do not match"
	MsgBadCredentials   = "Invalid email or password"
	MsgDeliveryFailed   = "Failed to send OTP email. Please try again."
	MsgMalformedBody    = "Request body must be valid JSON"
)

const (
	maxJSONBody      = 64 << 10
	maxMultipartBody = service.MaxLogoSize + 1<<20
	multipartMemory  = 1 << 20
)

// Workflow is the registration workflow the handler drives.
type Workflow interface {
	Register(ctx context.Context, in service.RegisterInput) error
	ValidateOTP(ctx context.Context, email, code string) error
	SetPassword(ctx context.Context, email, newPassword, confirmPassword string) error
	ResendOTP(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	GetProfile(ctx context.Context, accountID string) (*domain.Profile, error)
}

// Handler serves the company endpoints.
type Handler struct {
	workflow Workflow
	validate *validator.Validate
	log      logrus.FieldLogger
}

// New returns a Handler backed by workflow.
func New(workflow Workflow, log logrus.FieldLogger) *Handler {
	return &Handler{workflow: workflow, validate: newValidator(), log: log}
}

// Routes mounts the endpoints on r. requireAuth guards the profile endpoint.
func (h *Handler) Routes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Post("/register", h.Register)
	r.Post("/validate-otp", h.ValidateOTP)
	r.Post("/set-password", h.SetPassword)
	r.Post("/resend-otp", h.ResendOTP)
	r.Post("/login", h.Login)
	r.With(requireAuth).Get("/profile", h.Profile)
}

type registerRequest struct {
	ArabicName  string `form:"arabicName" validate:"required,max=200"`
	EnglishName string `form:"englishName" validate:"required,max=200"`
	Email       string `form:"email" validate:"required,email,max=100"`
	PhoneNumber string `form:"phoneNumber" validate:"omitempty,max=20,phone"`
	WebsiteURL  string `form:"websiteUrl" validate:"omitempty,max=500,url"`
}

type validateOTPRequest struct {
	Email   string `json:"email" validate:"required,email"`
	OTPCode string `json:"otpCode" validate:"required,len=6"`
}

type setPasswordRequest struct {
	Email           string `json:"email" validate:"required,email"`
	NewPassword     string `json:"newPassword" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

type resendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token       string    `json:"token"`
	CompanyName string    `json:"companyName"`
	CompanyLogo string    `json:"companyLogo"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Register handles POST /register (multipart/form-data or urlencoded; logo optional).
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxMultipartBody)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			response.Error(w, http.StatusBadRequest, MsgValidationFailed, service.MsgLogoTooLarge)
			return
		case errors.Is(err, http.ErrNotMultipart):
			if err := r.ParseForm(); err != nil {
				response.Error(w, http.StatusBadRequest, MsgValidationFailed, err.Error())
				return
			}
		default:
			response.Error(w, http.StatusBadRequest, MsgValidationFailed, "Invalid form data")
			return
		}
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	req := registerRequest{
		ArabicName:  strings.TrimSpace(r.FormValue("arabicName")),
		EnglishName: strings.TrimSpace(r.FormValue("englishName")),
		Email:       strings.TrimSpace(r.FormValue("email")),
		PhoneNumber: strings.TrimSpace(r.FormValue("phoneNumber")),
		WebsiteURL:  strings.TrimSpace(r.FormValue("websiteUrl")),
	}
	if msgs := validationMessages(h.validate, req); len(msgs) > 0 {
		response.Error(w, http.StatusBadRequest, MsgValidationFailed, msgs...)
		return
	}

	in := service.RegisterInput{
		ArabicName:  req.ArabicName,
		EnglishName: req.EnglishName,
		Email:       req.Email,
		Phone:       req.PhoneNumber,
		WebsiteURL:  req.WebsiteURL,
	}
	file, header, err := r.FormFile("logo")
	switch {
	case err == nil:
		defer file.Close()
		in.Logo = &service.LogoUpload{Filename: header.Filename, Size: header.Size, Content: file}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		response.Error(w, http.StatusBadRequest, MsgValidationFailed, "Invalid logo upload")
		return
	}

	if err := h.workflow.Register(r.Context(), in); err != nil {
		h.writeError(w, r, err, http.StatusBadRequest)
		return
	}
	response.OK(w, MsgRegistered, nil)
}

// ValidateOTP handles POST /validate-otp.
func (h *Handler) ValidateOTP(w http.ResponseWriter, r *http.Request) {
	var req validateOTPRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.workflow.ValidateOTP(r.Context(), req.Email, req.OTPCode); err != nil {
		h.writeError(w, r, err, http.StatusBadRequest)
		return
	}
	response.OK(w, MsgOTPValidated, nil)
}

// SetPassword handles POST /set-password.
func (h *Handler) SetPassword(w http.ResponseWriter, r *http.Request) {
	var req setPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.workflow.SetPassword(r.Context(), req.Email, req.NewPassword, req.ConfirmPassword); err != nil {
		h.writeError(w, r, err, http.StatusBadRequest)
		return
	}
	response.OK(w, MsgPasswordSet, nil)
}

// ResendOTP handles POST /resend-otp.
func (h *Handler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req resendOTPRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.workflow.ResendOTP(r.Context(), req.Email); err != nil {
		h.writeError(w, r, err, http.StatusBadRequest)
		return
	}
	response.OK(w, MsgOTPResent, nil)
}

// Login handles POST /login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	res, err := h.workflow.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err, http.StatusBadRequest)
		return
	}
	response.OK(w, MsgLoggedIn, loginResponse{
		Token:       res.Token,
		CompanyName: res.CompanyName,
		CompanyLogo: res.CompanyLogo,
		ExpiresAt:   res.ExpiresAt.UTC(),
	})
}

// Profile handles GET /profile for the authenticated company.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, middleware.MsgUnauthorized)
		return
	}
	p, err := h.workflow.GetProfile(r.Context(), accountID)
	if err != nil {
		h.writeError(w, r, err, http.StatusNotFound)
		return
	}
	response.OK(w, MsgProfile, p)
}

// decode reads a JSON body into req and validates it. It writes the failure response and
// returns false when the request cannot proceed.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(w, http.StatusBadRequest, MsgValidationFailed, MsgMalformedBody)
		return false
	}
	if msgs := validationMessages(h.validate, req); len(msgs) > 0 {
		response.Error(w, http.StatusBadRequest, MsgValidationFailed, msgs...)
		return false
	}
	return true
}

// writeError maps a workflow error to an envelope. notFoundStatus is the status used for
// ErrNotFound; other known workflow errors are 400 except ErrConflict (409).
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, notFoundStatus int) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		response.Error(w, http.StatusBadRequest, MsgValidationFailed, service.ValidationMessages(err)...)
	case errors.Is(err, service.ErrConflict):
		response.Error(w, http.StatusConflict, MsgConflict)
	case errors.Is(err, service.ErrNotFound):
		response.Error(w, notFoundStatus, MsgNotFound)
	case errors.Is(err, service.ErrAlreadyVerified):
		response.Error(w, http.StatusBadRequest, MsgAlreadyVerified)
	case errors.Is(err, service.ErrInvalidOTP):
		response.Error(w, http.StatusBadRequest, MsgInvalidOTP)
	case errors.Is(err, service.ErrNotVerified):
		response.Error(w, http.StatusBadRequest, MsgNotVerified)
	case errors.Is(err, service.ErrPasswordAlreadySet):
		response.Error(w, http.StatusBadRequest, MsgPasswordSetDone)
	case errors.Is(err, service.ErrMismatch):
		response.Error(w, http.StatusBadRequest, MsgMismatch)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(w, http.StatusBadRequest, MsgBadCredentials)
	case errors.Is(err, service.ErrDeliveryFailed):
		response.Error(w, http.StatusBadRequest, MsgDeliveryFailed)
	default:
		h.log.WithError(err).WithFields(logrus.Fields{
			"path":       r.URL.Path,
			"request_id": middleware.GetRequestID(r.Context()),
		}).Error("unexpected workflow error")
		response.Error(w, http.StatusInternalServerError, middleware.MsgInternal)
	}
}
