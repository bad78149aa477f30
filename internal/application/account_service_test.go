package application

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-realestate-listings/internal/domain/entity"
)

func TestRegister_CreatesBuyerProfileByDefault(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	acc, pair, err := env.accounts.Register(ctx, RegisterInput{
		Username:        "alice",
		Email:           "alice@example.test",
		Password:        testPassword,
		ConfirmPassword: testPassword,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.RoleBuyer, acc.Profile.Role)
	assert.Equal(t, acc.ID(), acc.Profile.UserID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, testPassword, env.store.users[acc.ID()].Password)

	claims, err := env.accounts.d.JWT.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, acc.ID(), claims.UserID)

	stored, err := env.accounts.d.Users.GetAccount(ctx, acc.ID())
	require.NoError(t, err)
	assert.Equal(t, entity.RoleBuyer, stored.Profile.Role)
}

func TestRegister_Agent(t *testing.T) {
	env := newTestEnv(t)
	acc := env.register(t, "agent007", entity.RoleAgent)
	assert.True(t, acc.Profile.IsAgent())
}

func TestRegister_ReportsEveryFieldAtOnce(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.accounts.Register(context.Background(), RegisterInput{
		Username:        "bad name!",
		Email:           "not-an-email",
		Password:        "short",
		ConfirmPassword: "different",
		Role:            "ADMIN",
	})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "username")
	assert.Contains(t, ve.Fields, "email")
	assert.Contains(t, ve.Fields, "password")
	assert.Equal(t, "must match password", ve.Fields["confirm_password"])
	assert.Equal(t, "must be one of: AGENT, BUYER", ve.Fields["role"])
	assert.Empty(t, env.store.users)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", entity.RoleBuyer)

	_, _, err := env.accounts.Register(context.Background(), RegisterInput{
		Username:        "alice",
		Email:           "other@example.test",
		Password:        testPassword,
		ConfirmPassword: testPassword,
	})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "a user with that username already exists", ve.Fields["username"])
	assert.Len(t, env.store.users, 1)
}

func TestRegister_PasswordPolicy(t *testing.T) {
	cases := map[string]struct {
		password string
		want     string
	}{
		"too short":     {"abc123", "must be at least 8 characters long"},
		"numeric":       {"9876543210", "cannot be entirely numeric"},
		"contains name": {"carol-rocks-99", "is too similar to the username"},
		"common":        {"Sunshine", "is too common"},
		"acceptable":    {"quiet-meadow-42", ""},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			env := newTestEnv(t)
			_, _, err := env.accounts.Register(context.Background(), RegisterInput{
				Username:        "carol",
				Email:           "carol@example.test",
				Password:        tc.password,
				ConfirmPassword: tc.password,
			})
			if tc.want == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.want, ve.Fields["password"])
		})
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice", entity.RoleBuyer)

	acc, pair, err := env.accounts.Login(ctx, "alice", testPassword)
	require.NoError(t, err)
	assert.Equal(t, alice.ID(), acc.ID())
	assert.NotEmpty(t, pair.AccessToken)

	_, _, err = env.accounts.Login(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = env.accounts.Login(ctx, "nobody", testPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh_RotatesTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice", entity.RoleBuyer)

	_, pair, err := env.accounts.Login(ctx, "alice", testPassword)
	require.NoError(t, err)

	next, uid, err := env.accounts.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, alice.ID(), uid)
	assert.NotEmpty(t, next.AccessToken)

	_, _, err = env.accounts.Refresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice", entity.RoleBuyer)

	acc, err := env.accounts.UpdateProfile(ctx, alice.ID(), UpdateProfileInput{
		FirstName: " Alice ",
		LastName:  "Liddell",
		Email:     "alice@wonder.test",
		Phone:     "555-0100",
		Bio:       "Looking for a cottage.",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, env.tx.calls)
	assert.Equal(t, "Alice", acc.User.FirstName)

	stored, err := env.accounts.d.Users.GetAccount(ctx, alice.ID())
	require.NoError(t, err)
	assert.Equal(t, "alice@wonder.test", stored.User.Email)
	assert.Equal(t, "555-0100", stored.Profile.Phone)
	assert.Equal(t, "Looking for a cottage.", stored.Profile.Bio)
}

func TestUpdateProfile_InvalidLeavesEverythingUnchanged(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice", entity.RoleBuyer)

	_, err := env.accounts.UpdateProfile(ctx, alice.ID(), UpdateProfileInput{
		FirstName: "Changed",
		Email:     "nope",
		Phone:     "555-0100",
	})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "email")
	assert.Zero(t, env.tx.calls)

	stored, err := env.accounts.d.Users.GetAccount(ctx, alice.ID())
	require.NoError(t, err)
	assert.Empty(t, stored.User.FirstName)
	assert.Empty(t, stored.Profile.Phone)
}

func TestGetProfile_LimitsRecentItems(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	agent := env.register(t, "agent", entity.RoleAgent)
	buyer := env.register(t, "buyer", entity.RoleBuyer)

	var last *entity.Property
	for i := 0; i < 7; i++ {
		last = env.listProperty(t, agent, nil)
	}
	for i := 0; i < 6; i++ {
		_, err := env.inquiries.Create(ctx, buyer.ID(), last.ID, InquiryInput{Message: "Is it still available?"})
		require.NoError(t, err)
	}

	ov, err := env.accounts.GetProfile(ctx, agent.ID())
	require.NoError(t, err)
	assert.Len(t, ov.Properties, profileRecentSize)
	assert.Equal(t, last.ID, ov.Properties[0].ID)
	assert.Len(t, ov.UnreadReceived, profileRecentSize)
	assert.Empty(t, ov.Sent)

	ov, err = env.accounts.GetProfile(ctx, buyer.ID())
	require.NoError(t, err)
	assert.Len(t, ov.Sent, profileRecentSize)
	assert.Empty(t, ov.Properties)
}

func TestDeleteAccount_Cascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	agent := env.register(t, "agent", entity.RoleAgent)
	buyer := env.register(t, "buyer", entity.RoleBuyer)
	other := env.register(t, "other", entity.RoleAgent)

	mine := env.listProperty(t, agent, nil)
	theirs := env.listProperty(t, other, nil)
	_, err := env.props.UploadImage(ctx, agent.ID(), mine.ID, Upload{
		Filename: "front.jpg", ContentType: "image/jpeg", Body: strings.NewReader("jpeg"),
	}, "front")
	require.NoError(t, err)
	_, err = env.inquiries.Create(ctx, buyer.ID(), mine.ID, InquiryInput{Message: "hi"})
	require.NoError(t, err)
	_, err = env.inquiries.Create(ctx, agent.ID(), theirs.ID, InquiryInput{Message: "colleague question"})
	require.NoError(t, err)

	invalidations := env.cache.invalidations
	require.NoError(t, env.accounts.DeleteAccount(ctx, agent.ID()))

	assert.NotContains(t, env.store.users, agent.ID())
	assert.NotContains(t, env.store.profiles, agent.ID())
	assert.NotContains(t, env.store.props, mine.ID)
	assert.Contains(t, env.store.props, theirs.ID)
	assert.Empty(t, env.store.images)
	assert.Empty(t, env.store.inquiries)
	assert.Contains(t, env.indexer.removed, mine.ID)
	assert.Greater(t, env.cache.invalidations, invalidations)

	var nf *NotFoundError
	assert.ErrorAs(t, env.accounts.DeleteAccount(ctx, agent.ID()), &nf)
}

func TestEnsureProfileAndBackfill(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice", entity.RoleAgent)
	legacy := env.register(t, "legacy", entity.RoleAgent)
	delete(env.store.profiles, legacy.ID())

	p, err := env.accounts.EnsureProfile(ctx, alice.ID())
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAgent, p.Role)

	n, err := env.accounts.BackfillProfiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, entity.RoleBuyer, env.store.profiles[legacy.ID()].Role)

	n, err = env.accounts.BackfillProfiles(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSetRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice", entity.RoleBuyer)

	require.NoError(t, env.accounts.SetRole(ctx, "alice", entity.RoleAgent))
	assert.Equal(t, entity.RoleAgent, env.store.profiles[alice.ID()].Role)

	var ve *ValidationError
	assert.ErrorAs(t, env.accounts.SetRole(ctx, "alice", "ADMIN"), &ve)

	var nf *NotFoundError
	assert.ErrorAs(t, env.accounts.SetRole(ctx, "ghost", entity.RoleAgent), &nf)
}

func TestRequestPasswordReset_DoesNotRevealAccounts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice", entity.RoleBuyer)

	assert.NoError(t, env.accounts.RequestPasswordReset(ctx, "nobody@example.test", ResetRequestMeta{}))
	assert.NoError(t, env.accounts.RequestPasswordReset(ctx, "alice@example.test", ResetRequestMeta{}))
	assert.Empty(t, env.notifier.sent)

	var ve *ValidationError
	assert.ErrorAs(t, env.accounts.RequestPasswordReset(ctx, "garbage", ResetRequestMeta{}), &ve)
}

func TestResetPassword_WithoutStoreRejectsToken(t *testing.T) {
	env := newTestEnv(t)
	err := env.accounts.ResetPassword(context.Background(), ResetPasswordInput{
		Token: "whatever", Password: testPassword, ConfirmPassword: testPassword,
	})
	assert.ErrorIs(t, err, ErrInvalidResetToken)

	err = env.accounts.ResetPassword(context.Background(), ResetPasswordInput{Token: "x", Password: "a", ConfirmPassword: "b"})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}
