package application

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-realestate-listings/internal/domain/entity"
	repo "github.com/oksasatya/go-realestate-listings/internal/domain/repository"
	"github.com/oksasatya/go-realestate-listings/pkg/helpers"
	"github.com/oksasatya/go-realestate-listings/pkg/mailer"
	"github.com/oksasatya/go-realestate-listings/pkg/mailer/templates"
)

const (
	resetTokenTTL     = 30 * time.Minute
	profileRecentSize = 5
)

func resetTokenKey(token string) string { return "pwd:reset:token:" + token }

// resetTicket is stored under the reset token until it is used or expires.
type resetTicket struct {
	UserID      string    `json:"user_id"`
	RequestedAt time.Time `json:"requested_at"`
}

// AccountService covers registration, sessions and the user's own profile.
type AccountService struct {
	d   Deps
	log *logrus.Logger
}

func NewAccountService(d Deps) *AccountService {
	return &AccountService{d: d, log: d.logger()}
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

type RegisterInput struct {
	Username        string `json:"username" validate:"required,max=150,username"`
	Email           string `json:"email" validate:"required,email,max=254"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"omitempty,role"`
	FirstName       string `json:"first_name" validate:"max=150"`
	LastName        string `json:"last_name" validate:"max=150"`
}

// Register creates the user together with its profile and opens a session.
// Every problem with the input is reported in one ValidationError.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*entity.Account, TokenPair, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	fields := fieldErrors(in)
	if _, bad := fields["password"]; !bad {
		if msg := checkPassword(in.Username, in.Password); msg != "" {
			fields["password"] = msg
		}
	}
	if _, bad := fields["username"]; !bad {
		_, err := s.d.Users.GetByUsername(ctx, in.Username)
		switch {
		case err == nil:
			fields["username"] = "a user with that username already exists"
		case !errors.Is(err, repo.ErrNotFound):
			return nil, TokenPair{}, err
		}
	}
	if err := asValidationError(fields); err != nil {
		return nil, TokenPair{}, err
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	role, _ := entity.ParseRole(in.Role)
	acc := entity.NewAccount(entity.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  hash,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
	}, role)
	if err := s.d.Users.Create(ctx, acc); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, TokenPair{}, newValidationError("username", "a user with that username already exists")
		}
		s.log.WithError(err).WithField("username", in.Username).Error("create user failed")
		return nil, TokenPair{}, err
	}
	s.log.WithFields(logrus.Fields{"user_id": acc.ID(), "role": acc.Profile.Role}).Info("user registered")

	pair, err := s.IssueTokens(ctx, &acc.User)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return acc, pair, nil
}

// Authenticate checks username/password without issuing tokens.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*entity.Account, error) {
	u, err := s.d.Users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return s.d.Users.GetAccount(ctx, u.ID)
}

func (s *AccountService) Login(ctx context.Context, username, password string) (*entity.Account, TokenPair, error) {
	acc, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, &acc.User)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return acc, pair, nil
}

// IssueTokens generates the token pair and records the session in Redis.
func (s *AccountService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	pair, err := s.signPair(u.ID, sid)
	if err != nil {
		s.log.WithError(err).WithField("user_id", u.ID).Error("generate tokens failed")
		return TokenPair{}, err
	}
	s.storeSession(ctx, u.ID, map[string]any{
		"user_id":    u.ID,
		"username":   u.Username,
		"sid":        sid,
		"logged_in":  true,
		"created_at": nowRFC3339(),
	})
	return pair, nil
}

// Refresh validates the refresh token against the stored session and
// rotates the session id.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (TokenPair, string, error) {
	claims, err := s.d.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	if _, err := s.d.Users.GetByID(ctx, claims.UserID); err != nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	if s.d.Redis != nil {
		data, rErr := s.d.Redis.HGetAll(ctx, helpers.SessionKey(claims.UserID)).Result()
		if rErr != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return TokenPair{}, "", ErrInvalidCredentials
		}
	}
	sid := uuid.NewString()
	pair, err := s.signPair(claims.UserID, sid)
	if err != nil {
		return TokenPair{}, "", err
	}
	s.storeSession(ctx, claims.UserID, map[string]any{"sid": sid, "updated_at": nowRFC3339()})
	return pair, claims.UserID, nil
}

func (s *AccountService) Logout(ctx context.Context, userID string) {
	if err := helpers.RedisDel(ctx, s.d.Redis, helpers.SessionKey(userID)); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("delete session failed")
	}
}

func (s *AccountService) signPair(userID, sid string) (TokenPair, error) {
	access, aexp, err := s.d.JWT.GenerateAccessToken(userID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.d.JWT.GenerateRefreshToken(userID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

func (s *AccountService) storeSession(ctx context.Context, userID string, fields map[string]any) {
	if s.d.Redis == nil {
		return
	}
	ttl := 24 * time.Hour
	if s.d.JWT != nil && s.d.JWT.RefreshTTL > ttl {
		ttl = s.d.JWT.RefreshTTL
	}
	key := helpers.SessionKey(userID)
	pipe := s.d.Redis.Pipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("redis pipeline failed")
	}
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// ProfileOverview is what the profile page shows.
type ProfileOverview struct {
	Account        *entity.Account
	Properties     []entity.Property
	UnreadReceived []entity.InquiryView
	Sent           []entity.InquiryView
}

func (s *AccountService) GetProfile(ctx context.Context, userID string) (*ProfileOverview, error) {
	acc, err := s.d.Users.GetAccount(ctx, userID)
	if err != nil {
		return nil, notFound(err, "profile")
	}
	if err := Authorize(acc, ActionViewProfile, Subject{ProfileUserID: acc.ID()}); err != nil {
		return nil, err
	}
	props, err := s.d.Properties.ListByOwner(ctx, userID, profileRecentSize)
	if err != nil {
		return nil, err
	}
	unread, err := s.d.Inquiries.List(ctx, repo.InquiryQuery{
		Box: repo.MailboxReceived, UserID: userID, UnreadOnly: true, Limit: profileRecentSize,
	})
	if err != nil {
		return nil, err
	}
	sent, err := s.d.Inquiries.List(ctx, repo.InquiryQuery{
		Box: repo.MailboxSent, UserID: userID, Limit: profileRecentSize,
	})
	if err != nil {
		return nil, err
	}
	return &ProfileOverview{Account: acc, Properties: props, UnreadReceived: unread, Sent: sent}, nil
}

type UpdateProfileInput struct {
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Email     string `json:"email" validate:"omitempty,email,max=254"`
	Phone     string `json:"phone" validate:"max=20"`
	Bio       string `json:"bio"`
}

// UpdateProfile writes the user and profile portions in one transaction.
func (s *AccountService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.Account, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := asValidationError(fieldErrors(in)); err != nil {
		return nil, err
	}

	var acc *entity.Account
	err := s.d.withinTx(ctx, func(ctx context.Context) error {
		var err error
		acc, err = s.d.Users.GetAccount(ctx, userID)
		if err != nil {
			return notFound(err, "profile")
		}
		if err := Authorize(acc, ActionUpdateProfile, Subject{ProfileUserID: acc.Profile.UserID}); err != nil {
			return err
		}
		acc.User.FirstName = strings.TrimSpace(in.FirstName)
		acc.User.LastName = strings.TrimSpace(in.LastName)
		acc.User.Email = in.Email
		acc.Profile.Phone = strings.TrimSpace(in.Phone)
		acc.Profile.Bio = in.Bio
		if err := s.d.Users.Update(ctx, &acc.User); err != nil {
			return err
		}
		return s.d.Profiles.Update(ctx, &acc.Profile)
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// DeleteAccount removes the user. The database cascades to the profile,
// owned properties with their images and inquiries, and authored inquiries.
func (s *AccountService) DeleteAccount(ctx context.Context, userID string) error {
	ids, err := s.d.Properties.IDsByOwner(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.d.Users.Delete(ctx, userID); err != nil {
		return notFound(err, "user")
	}
	s.Logout(ctx, userID)
	for _, id := range ids {
		if err := s.d.indexer().Remove(ctx, id); err != nil {
			s.log.WithError(err).WithField("property_id", id).Warn("remove from index failed")
		}
	}
	if len(ids) > 0 {
		s.d.cache().Invalidate(ctx)
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "properties": len(ids)}).Info("account deleted")
	return nil
}

// ResetRequestMeta is shown in the reset email.
type ResetRequestMeta struct {
	IP        string
	UserAgent string
}

// RequestPasswordReset mails a one-time link when the email is known. It
// reports success either way so addresses cannot be enumerated.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string, meta ResetRequestMeta) error {
	email = strings.TrimSpace(email)
	if err := validate.Var(email, "required,email"); err != nil {
		return newValidationError("email", "must be a valid email")
	}
	u, err := s.d.Users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			s.log.WithError(err).Warn("lookup for password reset failed")
		}
		return nil
	}
	if s.d.Redis == nil {
		s.log.WithField("user_id", u.ID).Warn("password reset unavailable: redis not configured")
		return nil
	}
	token, err := newResetToken()
	if err != nil {
		return err
	}
	ticket := resetTicket{UserID: u.ID, RequestedAt: time.Now().UTC()}
	if err := helpers.RedisSetJSON(ctx, s.d.Redis, resetTokenKey(token), ticket, resetTokenTTL); err != nil {
		s.log.WithError(err).Warn("store reset token failed")
		return nil
	}

	data := templates.NewPasswordResetData(s.d.Mail.Brand, u.FullName(), u.Email, s.d.Mail.ResetURL+"?token="+token,
		templates.WithIP(meta.IP), templates.WithUserAgent(meta.UserAgent),
		templates.WithTime(time.Now()), templates.WithExpiresIn(resetTokenTTL))
	if err := sendTemplate(ctx, s.d, templates.PasswordReset, data, u.Email); err != nil {
		notificationFailures.Add(1)
		s.log.WithError(err).WithField("user_id", u.ID).Warn("password reset email failed")
	}
	return nil
}

type ResetPasswordInput struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// ResetPassword consumes the token and sets the new password. Any active
// session is dropped.
func (s *AccountService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	if err := asValidationError(fieldErrors(in)); err != nil {
		return err
	}
	if s.d.Redis == nil {
		return ErrInvalidResetToken
	}
	var ticket resetTicket
	found, err := helpers.RedisGetJSON(ctx, s.d.Redis, resetTokenKey(in.Token), &ticket)
	if err != nil {
		return err
	}
	if !found {
		return ErrInvalidResetToken
	}
	u, err := s.d.Users.GetByID(ctx, ticket.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	if msg := checkPassword(u.Username, in.Password); msg != "" {
		return newValidationError("password", msg)
	}
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return err
	}
	if err := s.d.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}
	if err := helpers.RedisDel(ctx, s.d.Redis, resetTokenKey(in.Token), helpers.SessionKey(u.ID)); err != nil {
		s.log.WithError(err).Warn("cleanup after password reset failed")
	}
	return nil
}

func newResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// sendTemplate renders a template and hands it to the notifier.
func sendTemplate(ctx context.Context, d Deps, name string, data templates.EmailData, to string) error {
	if d.Notifier == nil {
		return nil
	}
	subject, text, html, err := templates.Render(name, data)
	if err != nil {
		return err
	}
	return d.Notifier.Send(ctx, mailer.Message{
		From:    d.Mail.From,
		To:      []string{to},
		Subject: subject,
		Text:    text,
		HTML:    html,
	})
}

// EnsureProfile returns the user's profile, creating a buyer profile for
// legacy users that predate the user+profile invariant.
func (s *AccountService) EnsureProfile(ctx context.Context, userID string) (*entity.Profile, error) {
	p, created, err := s.d.Profiles.EnsureExists(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	if created {
		s.log.WithField("user_id", userID).Info("profile backfilled")
	}
	return p, nil
}

// BackfillProfiles creates missing profiles and returns how many were made.
func (s *AccountService) BackfillProfiles(ctx context.Context) (int, error) {
	ids, err := s.d.Profiles.UsersWithoutProfile(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, id := range ids {
		_, created, err := s.d.Profiles.EnsureExists(ctx, id)
		if err != nil {
			return n, err
		}
		if created {
			n++
		}
	}
	return n, nil
}

// SetRole changes a user's role. Admin only.
func (s *AccountService) SetRole(ctx context.Context, username string, role entity.Role) error {
	if !role.Valid() {
		return newValidationError("role", "must be one of: AGENT, BUYER")
	}
	u, err := s.d.Users.GetByUsername(ctx, username)
	if err != nil {
		return notFound(err, "user")
	}
	if _, err := s.EnsureProfile(ctx, u.ID); err != nil {
		return err
	}
	return s.d.Profiles.SetRole(ctx, u.ID, role)
}
