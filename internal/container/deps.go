package container

import (
	"sync"

	app "github.com/oksasatya/go-realestate-listings/internal/application"
	"github.com/oksasatya/go-realestate-listings/internal/infrastructure/cache"
	pginfra "github.com/oksasatya/go-realestate-listings/internal/infrastructure/postgres"
	"github.com/oksasatya/go-realestate-listings/internal/infrastructure/search"
	"github.com/oksasatya/go-realestate-listings/internal/infrastructure/storage"
	"github.com/oksasatya/go-realestate-listings/pkg/mailer"
)

var (
	depsOnce sync.Once
	deps     app.Deps
)

// AppDeps assembles the service dependencies from the singletons. It is
// built once; call it after every Set* has run.
func AppDeps() app.Deps {
	depsOnce.Do(func() { deps = buildDeps() })
	return deps
}

func buildDeps() app.Deps {
	tx := pginfra.NewTxManager(pgPool)
	d := app.Deps{
		Users:      pginfra.NewUserRepository(pgPool),
		Profiles:   pginfra.NewProfileRepository(pgPool),
		Properties: pginfra.NewPropertyRepository(pgPool),
		Inquiries:  pginfra.NewInquiryRepository(pgPool),
		Tx:         tx,
		JWT:        jwtManager,
		Redis:      redisClient,
		Logger:     logger,
		Cache:      cache.NewListingCache(redisClient, cfg.ListingCacheSize, logger),
		CacheTTL:   cfg.ListingCacheTTL,
		Mail: app.MailSettings{
			From:     cfg.DefaultFromEmail,
			SiteURL:  cfg.SiteURL,
			ResetURL: cfg.ResetPasswordURL,
			Brand:    cfg.MailBrand(),
		},
	}

	switch {
	case !cfg.MailSendEnabled:
		d.Notifier = &mailer.LogNotifier{Logger: logger}
	case rabbitPub != nil:
		d.Notifier = &mailer.QueueNotifier{Pub: rabbitPub}
	case cfg.MailgunDomain != "" && cfg.MailgunAPIKey != "":
		d.Notifier = mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	default:
		d.Notifier = &mailer.LogNotifier{Logger: logger}
	}

	if gcsClient != nil && cfg.GCSBucket != "" {
		d.Media = storage.NewGCSStore(gcsClient, cfg.GCSBucket, cfg.MediaPrefix)
	}
	if esClient != nil {
		d.Indexer = search.NewPropertyIndexer(esClient, cfg.ESPropertiesIndex, logger)
	}
	return d
}
