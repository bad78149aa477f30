package application

import "github.com/oksasatya/go-realestate-listings/internal/domain/entity"

// Action names an operation guarded by the gate.
type Action string

const (
	ActionCreateProperty Action = "create property"
	ActionUpdateProperty Action = "update property"
	ActionDeleteProperty Action = "delete property"
	ActionCreateInquiry  Action = "create inquiry"
	ActionViewInquiry    Action = "view inquiry"
	ActionViewProfile    Action = "view profile"
	ActionUpdateProfile  Action = "update profile"
)

// Subject is what an action is performed on. Only the fields the rule
// needs are set.
type Subject struct {
	Property      *entity.Property
	Inquiry       *entity.InquiryView
	ProfileUserID string
}

type rule struct {
	allow  func(actor *entity.Account, s Subject) bool
	reason string
	// hidden rules report violations as NotFound so the resource's
	// existence is not revealed.
	hidden   bool
	resource string
}

var rules = map[Action]rule{
	ActionCreateProperty: {
		allow:  func(a *entity.Account, _ Subject) bool { return a.Profile.IsAgent() },
		reason: "only agents can list properties",
	},
	ActionUpdateProperty: {
		allow:    func(a *entity.Account, s Subject) bool { return s.Property != nil && s.Property.OwnedBy(a.ID()) },
		hidden:   true,
		resource: "property",
	},
	ActionDeleteProperty: {
		allow:    func(a *entity.Account, s Subject) bool { return s.Property != nil && s.Property.OwnedBy(a.ID()) },
		hidden:   true,
		resource: "property",
	},
	ActionCreateInquiry: {
		allow:  func(a *entity.Account, s Subject) bool { return s.Property != nil && !s.Property.OwnedBy(a.ID()) },
		reason: "you cannot send an inquiry to your own listing",
	},
	ActionViewInquiry: {
		allow: func(a *entity.Account, s Subject) bool {
			return s.Inquiry != nil && (s.Inquiry.PropertyOwnerID == a.ID() || s.Inquiry.UserID == a.ID())
		},
		hidden:   true,
		resource: "inquiry",
	},
	ActionViewProfile: {
		allow:    func(a *entity.Account, s Subject) bool { return s.ProfileUserID == a.ID() },
		hidden:   true,
		resource: "profile",
	},
	ActionUpdateProfile: {
		allow:    func(a *entity.Account, s Subject) bool { return s.ProfileUserID == a.ID() },
		hidden:   true,
		resource: "profile",
	},
}

// Authorize evaluates the rule for action. It returns nil, a
// *NotFoundError for existence-hiding rules, or an *AuthorizationError.
func Authorize(actor *entity.Account, action Action, s Subject) error {
	r, ok := rules[action]
	if !ok {
		return &AuthorizationError{Action: action, Reason: "unknown action"}
	}
	if actor != nil && r.allow(actor, s) {
		return nil
	}
	if r.hidden {
		return &NotFoundError{Resource: r.resource}
	}
	reason := r.reason
	if actor == nil {
		reason = "authentication required"
	}
	return &AuthorizationError{Action: action, Reason: reason}
}
