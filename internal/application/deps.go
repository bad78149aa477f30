package application

import (
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	repo "github.com/oksasatya/go-realestate-listings/internal/domain/repository"
	"github.com/oksasatya/go-realestate-listings/pkg/helpers"
	"github.com/oksasatya/go-realestate-listings/pkg/mailer/templates"
)

// MailSettings holds what outgoing mail needs besides the transport.
type MailSettings struct {
	From     string
	SiteURL  string
	ResetURL string
	Brand    templates.Brand
}

// Deps is the shared dependency set handed to every service constructor.
// Optional collaborators may be nil.
type Deps struct {
	Users      repo.UserRepository
	Profiles   repo.ProfileRepository
	Properties repo.PropertyRepository
	Inquiries  repo.InquiryRepository
	Tx         repo.TxManager

	JWT    *helpers.JWTManager
	Redis  *redis.Client
	Logger *logrus.Logger

	Notifier Notifier
	Media    MediaStore
	Indexer  PropertyIndexer
	Cache    ListingCache
	CacheTTL time.Duration

	Mail MailSettings
}

func (d Deps) logger() *logrus.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func (d Deps) indexer() PropertyIndexer {
	if d.Indexer != nil {
		return d.Indexer
	}
	return noopIndexer{}
}

func (d Deps) cache() ListingCache {
	if d.Cache != nil {
		return d.Cache
	}
	return noopCache{}
}
