package templates

import (
	"strings"
	"time"
)

// Brand is the sender identity printed in every email footer.
type Brand struct {
	AppName        string
	CompanyName    string
	CompanyAddress string
	LogoURL        string
	SupportURL     string
	PrivacyURL     string
}

// EmailData defines the fields available to templates.
type EmailData struct {
	Brand

	Name  string
	Email string

	// inquiry_received
	PropertyTitle string
	PropertyURL   string
	FromName      string
	FromEmail     string
	FromPhone     string
	Message       string

	// password_reset
	ResetURL      string
	ExpiresAtText string
	IP            string
	UserAgent     string

	Time string
}

// Option pattern
type Option func(*EmailData)

func WithIP(ip string) Option        { return func(d *EmailData) { d.IP = ip } }
func WithUserAgent(ua string) Option { return func(d *EmailData) { d.UserAgent = ua } }
func WithTime(t time.Time) Option {
	return func(d *EmailData) { d.Time = t.UTC().Format("02 January 2006, 15:04") }
}
func WithExpiresIn(dur time.Duration) Option {
	return func(d *EmailData) {
		d.ExpiresAtText = time.Now().Add(dur).UTC().Format("02 January 2006, 15:04")
	}
}

func newData(b Brand, name, email string, opts ...Option) EmailData {
	d := EmailData{Brand: b, Name: name, Email: email}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// NewInquiryReceivedData builds the owner notification for a new inquiry.
// A missing phone renders as "N/A".
func NewInquiryReceivedData(b Brand, ownerName, ownerEmail, title, url, fromName, fromEmail, fromPhone, message string, opts ...Option) EmailData {
	d := newData(b, ownerName, ownerEmail, opts...)
	d.PropertyTitle = title
	d.PropertyURL = url
	d.FromName = fromName
	d.FromEmail = fromEmail
	d.FromPhone = fromPhone
	if strings.TrimSpace(d.FromPhone) == "" {
		d.FromPhone = "N/A"
	}
	d.Message = message
	return d
}

func NewPasswordResetData(b Brand, name, email, resetURL string, opts ...Option) EmailData {
	d := newData(b, name, email, opts...)
	d.ResetURL = resetURL
	return d
}
