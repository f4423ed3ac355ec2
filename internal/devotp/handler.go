package devotp

import (
	"net/http"
	"time"

	"company-registration/backend/internal/response"
)

const devOTPNote = "DEV MODE ONLY"

// Handler serves GET /dev/otp?email=. Only mounted when dev OTP mode is enabled and not production.
type Handler struct {
	store Store
}

// NewHandler returns a handler that reads codes from store.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

type otpData struct {
	Email      string    `json:"email"`
	OTP        string    `json:"otp"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Resent     bool      `json:"resent"`
	Deliveries int       `json:"deliveries"`
	Note       string    `json:"note"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		response.Error(w, http.StatusBadRequest, "email is required")
		return
	}
	d, ok := h.store.Last(r.Context(), email)
	if !ok {
		response.Error(w, http.StatusNotFound, "OTP not found or expired")
		return
	}
	response.OK(w, devOTPNote, otpData{
		Email:      email,
		OTP:        d.Code,
		ExpiresAt:  d.ExpiresAt.UTC(),
		Resent:     d.Resent,
		Deliveries: d.Count,
		Note:       devOTPNote,
	})
}
