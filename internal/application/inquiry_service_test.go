package application

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-realestate-listings/internal/domain/entity"
	repo "github.com/oksasatya/go-realestate-listings/internal/domain/repository"
)

func TestCreateInquiry_OwnListingRejected(t *testing.T) {
	env := newTestEnv(t)
	agent := env.register(t, "agent", entity.RoleAgent)
	p := env.listProperty(t, agent, nil)

	_, err := env.inquiries.Create(context.Background(), agent.ID(), p.ID, InquiryInput{Message: "hello me"})

	var ae *AuthorizationError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, ActionCreateInquiry, ae.Action)
	assert.Empty(t, env.store.inquiries)
}

func TestCreateInquiry_Anonymous(t *testing.T) {
	env := newTestEnv(t)
	agent := env.register(t, "agent", entity.RoleAgent)
	p := env.listProperty(t, agent, nil)

	_, err := env.inquiries.Create(context.Background(), "", p.ID, InquiryInput{Message: "hi"})
	var ae *AuthorizationError
	assert.ErrorAs(t, err, &ae)
}

func TestCreateInquiry_PrefillsAndNotifiesOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	agent := env.register(t, "agent", entity.RoleAgent)
	buyer := env.register(t, "buyer", entity.RoleBuyer)
	p := env.listProperty(t, agent, nil)

	res, err := env.inquiries.Create(ctx, buyer.ID(), p.ID, InquiryInput{Message: "Can I visit on Saturday?"})
	require.NoError(t, err)
	assert.Nil(t, res.Warning)
	assert.Equal(t, "buyer", res.Inquiry.Name)
	assert.Equal(t, "buyer@example.test", res.Inquiry.Email)
	assert.Empty(t, res.Inquiry.Phone)
	assert.False(t, res.Inquiry.IsRead)

	require.Len(t, env.notifier.sent, 1)
	msg := env.notifier.sent[0]
	assert.Equal(t, []string{"agent@example.test"}, msg.To)
	assert.Equal(t, "noreply@example.test", msg.From)
	assert.Equal(t, "New Inquiry for Bright family home", msg.Subject)
	assert.Contains(t, msg.Text, "Can I visit on Saturday?")
	assert.Contains(t, msg.Text, "https://homes.example.test/properties/"+p.ID)
}

func TestCreateInquiry_ExplicitFieldsWin(t *testing.T) {
	env := newTestEnv(t)
	agent := env.register(t, "agent", entity.RoleAgent)
	buyer := env.register(t, "buyer", entity.RoleBuyer)
	p := env.listProperty(t, agent, nil)

	res, err := env.inquiries.Create(context.Background(), buyer.ID(), p.ID, InquiryInput{
		Name: "B. Uyer", Email: "alt@example.test", Phone: "555-0142", Message: "hi",
	})
	require.NoError(t, err)
	assert.Equal(t, "B. Uyer", res.Inquiry.Name)
	assert.Equal(t, "alt@example.test", res.Inquiry.Email)
	assert.Equal(t, "555-0142", res.Inquiry.Phone)
}

func TestCreateInquiry_Validation(t *testing.T) {
	env := newTestEnv(t)
	agent := env.register(t, "agent", entity.RoleAgent)
	buyer := env.register(t, "buyer", entity.RoleBuyer)
	p := env.listProperty(t, agent, nil)

	_, err := env.inquiries.Create(context.Background(), buyer.ID(), p.ID, InquiryInput{Email: "broken"})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "message")
	assert.Contains(t, ve.Fields, "email")
	assert.Empty(t, env.store.inquiries)
	assert.Empty(t, env.notifier.sent)
}

func TestCreateInquiry_BlankMessageRejected(t *testing.T) {
	env := newTestEnv(t)
	agent := env.register(t, "agent", entity.RoleAgent)
	buyer := env.register(t, "buyer", entity.RoleBuyer)
	p := env.listProperty(t, agent, nil)

	_, err := env.inquiries.Create(context.Background(), buyer.ID(), p.ID, InquiryInput{Message: " \n\t "})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "is required", ve.Fields["message"])
	assert.Empty(t, env.store.inquiries)

	res, err := env.inquiries.Create(context.Background(), buyer.ID(), p.ID, InquiryInput{Message: "  hi there \n"})
	require.NoError(t, err)
	assert.Equal(t, "hi there", res.Inquiry.Message)
}

func TestCreateInquiry_DeliveryFailureIsWarning(t *testing.T) {
	env := newTestEnv(t)
	env.notifier.err = errBoom
	agent := env.register(t, "agent", entity.RoleAgent)
	buyer := env.register(t, "buyer", entity.RoleBuyer)
	p := env.listProperty(t, agent, nil)

	res, err := env.inquiries.Create(context.Background(), buyer.ID(), p.ID, InquiryInput{Message: "hi"})
	require.NoError(t, err)
	require.NotNil(t, res.Warning)
	assert.ErrorIs(t, res.Warning, errBoom)
	assert.Contains(t, env.store.inquiries, res.Inquiry.ID)
}

func TestCreateInquiry_NonAvailableListingAllowed(t *testing.T) {
	env := newTestEnv(t)
	agent := env.register(t, "agent", entity.RoleAgent)
	buyer := env.register(t, "buyer", entity.RoleBuyer)
	p := env.listProperty(t, agent, func(in *PropertyInput) { in.Status = string(entity.StatusPending) })

	_, err := env.inquiries.Create(context.Background(), buyer.ID(), p.ID, InquiryInput{Message: "still possible?"})
	assert.NoError(t, err)
}

func TestInquiryDetail_OwnerMarksReadOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	agent := env.register(t, "agent", entity.RoleAgent)
	buyer := env.register(t, "buyer", entity.RoleBuyer)
	p := env.listProperty(t, agent, nil)
	res, err := env.inquiries.Create(ctx, buyer.ID(), p.ID, InquiryInput{Message: "hi"})
	require.NoError(t, err)

	v, err := env.inquiries.Detail(ctx, buyer.ID(), res.Inquiry.ID)
	require.NoError(t, err)
	assert.False(t, v.IsRead, "the sender viewing does not mark it read")
	assert.Zero(t, env.store.markReads)

	v, err = env.inquiries.Detail(ctx, agent.ID(), res.Inquiry.ID)
	require.NoError(t, err)
	assert.True(t, v.IsRead)
	assert.Equal(t, "Bright family home", v.PropertyTitle)
	assert.Equal(t, "buyer", v.SenderUsername)

	_, err = env.inquiries.Detail(ctx, agent.ID(), res.Inquiry.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, env.store.markReads)
	assert.True(t, env.store.inquiries[res.Inquiry.ID].IsRead)
	assert.Equal(t, 3, env.tx.calls)
}

func TestInquiryDetail_StrangerSeesNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	agent := env.register(t, "agent", entity.RoleAgent)
	buyer := env.register(t, "buyer", entity.RoleBuyer)
	stranger := env.register(t, "stranger", entity.RoleBuyer)
	p := env.listProperty(t, agent, nil)
	res, err := env.inquiries.Create(ctx, buyer.ID(), p.ID, InquiryInput{Message: "hi"})
	require.NoError(t, err)

	_, err = env.inquiries.Detail(ctx, stranger.ID(), res.Inquiry.ID)

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "inquiry", nf.Resource)
	assert.False(t, env.store.inquiries[res.Inquiry.ID].IsRead)
}

func TestInquiryList_BoxesAndPaging(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	agent := env.register(t, "agent", entity.RoleAgent)
	buyer := env.register(t, "buyer", entity.RoleBuyer)
	p := env.listProperty(t, agent, nil)
	for i := 0; i < 25; i++ {
		_, err := env.inquiries.Create(ctx, buyer.ID(), p.ID, InquiryInput{Message: "msg " + strconv.Itoa(i)})
		require.NoError(t, err)
	}

	page, err := env.inquiries.List(ctx, agent.ID(), "", "")
	require.NoError(t, err)
	assert.Equal(t, repo.MailboxReceived, page.Box)
	assert.Equal(t, 25, page.ReceivedCount)
	assert.Zero(t, page.SentCount)
	assert.Len(t, page.Items, inquiryPageSize)
	assert.Equal(t, "msg 24", page.Items[0].Message)
	assert.Equal(t, 2, page.Pagination.NumPages)

	page, err = env.inquiries.List(ctx, agent.ID(), "received", "99")
	require.NoError(t, err)
	assert.Equal(t, 2, page.Pagination.Number)
	assert.Len(t, page.Items, 5)

	page, err = env.inquiries.List(ctx, buyer.ID(), "sent", "1")
	require.NoError(t, err)
	assert.Equal(t, repo.MailboxSent, page.Box)
	assert.Equal(t, 25, page.SentCount)
	assert.Len(t, page.Items, inquiryPageSize)

	page, err = env.inquiries.List(ctx, buyer.ID(), "bogus", "abc")
	require.NoError(t, err)
	assert.Equal(t, repo.MailboxReceived, page.Box)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Pagination.Number)
	assert.Equal(t, 1, page.Pagination.NumPages)
}
