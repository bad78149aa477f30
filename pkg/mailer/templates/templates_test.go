package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderInquiryReceived(t *testing.T) {
	data := NewInquiryReceivedData(Brand{AppName: "Homes"}, "Olive Owner", "olive@example.test",
		"Sunny <Loft>", "https://homes.example.test/properties/p1",
		"Ben", "ben@example.test", "", "Is parking included?",
		WithTime(time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)))

	subject, text, html, err := Render(InquiryReceived, data)
	require.NoError(t, err)

	assert.Equal(t, "New Inquiry for Sunny <Loft>", subject)
	assert.Contains(t, text, "Hi Olive Owner,")
	assert.Contains(t, text, "Phone: N/A")
	assert.Contains(t, text, "Is parking included?")
	assert.Contains(t, text, "https://homes.example.test/properties/p1")
	assert.Contains(t, html, "Sunny &lt;Loft&gt;")
	assert.NotContains(t, html, "<Loft>")
}

func TestRenderPasswordReset(t *testing.T) {
	data := NewPasswordResetData(Brand{}, "", "sam@example.test", "https://homes.example.test/reset?token=abc",
		WithIP("203.0.113.9"), WithExpiresIn(30*time.Minute))

	subject, text, _, err := Render(PasswordReset, data)
	require.NoError(t, err)

	assert.Equal(t, "Reset your password", subject)
	assert.Contains(t, text, "Hi there,")
	assert.Contains(t, text, "https://homes.example.test/reset?token=abc")
	assert.Contains(t, text, "Requested from 203.0.113.9.")
	assert.Contains(t, text, "Real Estate Listings")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, _, err := Render("welcome", EmailData{})
	assert.Error(t, err)
}
