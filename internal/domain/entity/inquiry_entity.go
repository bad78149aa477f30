package entity

import "time"

// Inquiry is a message from a user to the owner of a property.
type Inquiry struct {
	ID         string
	PropertyID string
	UserID     string
	Name       string
	Email      string
	Phone      string
	Message    string
	IsRead     bool
	CreatedAt  time.Time
}

// InquiryView is an inquiry joined with the property and sender summaries
// needed to render it without further lookups.
type InquiryView struct {
	Inquiry
	PropertyTitle   string
	PropertyOwnerID string
	SenderUsername  string
}

// PropertyOwner returns the id of the user that receives this inquiry.
func (v *InquiryView) PropertyOwner() string { return v.PropertyOwnerID }
