// Package notify delivers OTP emails to registrants. Adapters: Mailtrap HTTP API, a NATS mail
// queue consumed by cmd/worker, and a dev notifier that keeps codes for local retrieval.
package notify

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"
)

// Notifier sends an OTP to a registrant. Implementations make a single bounded attempt.
type Notifier interface {
	SendOTP(ctx context.Context, msg OTPMessage) error
}

// OTPMessage is what the workflow hands to a Notifier.
type OTPMessage struct {
	To          string
	CompanyName string
	Code        string
	ExpiresIn   time.Duration
	// Resent marks a code issued by an explicit resend request.
	Resent bool
}

// Email is a rendered message ready for a transport.
type Email struct {
	From     string `json:"from" msgpack:"from"`
	To       string `json:"to" msgpack:"to"`
	Subject  string `json:"subject" msgpack:"subject"`
	HTML     string `json:"html" msgpack:"html"`
	Text     string `json:"text" msgpack:"text"`
	Category string `json:"category" msgpack:"category"`
}

// Sender delivers a rendered Email.
type Sender interface {
	Send(ctx context.Context, e Email) error
}

const otpCategory = "otp-verification"

// RenderOTPEmail builds the verification email for msg.
func RenderOTPEmail(from string, msg OTPMessage) Email {
	minutes := int(msg.ExpiresIn.Round(time.Minute) / time.Minute)
	if minutes <= 0 {
		minutes = 10
	}
	company := html.EscapeString(msg.CompanyName)

	subject := "OTP Verification - " + msg.CompanyName
	heading := "OTP Verification"
	intro := fmt.Sprintf("Thank you for registering your company <strong>%s</strong>.", company)
	label := "Your OTP (One-Time Password) is:"
	ignore := "If you didn't request this registration, please ignore this email."
	if msg.Resent {
		subject += " (Resent)"
		heading += " (Resent)"
		intro = fmt.Sprintf("You requested a new OTP for your company <strong>%s</strong>.", company)
		label = "Your new OTP (One-Time Password) is:"
		ignore = "If you didn't request this OTP, please ignore this email."
	}

	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	fmt.Fprintf(&b, `<h2 style="color: #333;">%s</h2>`, heading)
	b.WriteString(`<p>Hello,</p>`)
	fmt.Fprintf(&b, `<p>%s</p>`, intro)
	fmt.Fprintf(&b, `<p>%s</p>`, label)
	b.WriteString(`<div style="background-color: #f4f4f4; padding: 20px; text-align: center; margin: 20px 0;">`)
	fmt.Fprintf(&b, `<h1 style="color: #007bff; font-size: 32px; margin: 0;">%s</h1>`, html.EscapeString(msg.Code))
	b.WriteString(`</div>`)
	b.WriteString(`<p>Please enter this OTP in the verification page to complete your registration.</p>`)
	fmt.Fprintf(&b, `<p>This OTP will expire in %d minutes.</p>`, minutes)
	fmt.Fprintf(&b, `<p>%s</p>`, ignore)
	b.WriteString(`<br><p>Best regards,<br>Company Registration Team</p></div>`)

	text := fmt.Sprintf("Your OTP for %s is %s. It expires in %d minutes.", msg.CompanyName, msg.Code, minutes)

	return Email{
		From:     from,
		To:       msg.To,
		Subject:  subject,
		HTML:     b.String(),
		Text:     text,
		Category: otpCategory,
	}
}

// EmailNotifier renders OTP messages and hands them to a Sender.
type EmailNotifier struct {
	from   string
	sender Sender
}

// NewEmailNotifier returns a Notifier that renders with from as the sender address.
func NewEmailNotifier(from string, sender Sender) *EmailNotifier {
	return &EmailNotifier{from: from, sender: sender}
}

// SendOTP renders msg and sends it.
func (n *EmailNotifier) SendOTP(ctx context.Context, msg OTPMessage) error {
	return n.sender.Send(ctx, RenderOTPEmail(n.from, msg))
}
