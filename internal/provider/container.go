package provider

import (
	"context"

	"github.com/spedigo-next/internal/cache"
	"github.com/spedigo-next/internal/carrier/spedirepro"
	"github.com/spedigo-next/internal/config"
	"github.com/spedigo-next/internal/customs"
	"github.com/spedigo-next/internal/logger"
	"github.com/spedigo-next/internal/models"
	"github.com/spedigo-next/internal/queue"
	"github.com/spedigo-next/internal/repository"
	"github.com/spedigo-next/internal/service"
	"github.com/spedigo-next/internal/shipping"
	"github.com/spedigo-next/internal/shopify"
	"github.com/spedigo-next/internal/storage"
)

// Container is the dependency injection container.
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	Senders         *shipping.SenderRegistry
	ShopifyAPI      shopify.API
	WebhookVerifier shopify.WebhookVerifier
	CarrierClient   *spedirepro.Client
	DocumentStore   storage.DocumentStore

	// Repositories
	ShipmentRepo        repository.ShipmentRepository
	CustomsDocumentRepo repository.CustomsDocumentRepository
	WebhookEventRepo    repository.WebhookEventRepository
	OperatorRepo        repository.OperatorRepository

	// Services
	AuthService     *service.AuthService
	EmailService    *service.EmailService
	ShipmentService *service.ShipmentService
	CustomsService  *service.CustomsService
}

// NewContainer initializes the container.
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}
	if queueClient == nil {
		queueClient, _ = queue.NewClient(&config.QueueConfig{Enabled: false})
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initCollaborators()
	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initCollaborators() {
	c.Senders = shipping.NewSenderRegistry(c.Config.Senders)

	shopifyClient, err := shopify.NewClient(c.Config.Shopify)
	if err != nil {
		logger.Errorw("provider_init_shopify_failed", "error", err)
		panic(err)
	}
	c.ShopifyAPI = shopifyClient
	c.WebhookVerifier = shopifyClient

	c.CarrierClient = spedirepro.NewClient(c.Config.Carrier)

	store, err := storage.NewS3Store(context.Background(), c.Config.Storage)
	if err != nil {
		logger.Warnw("provider_init_storage_failed", "error", err)
	} else {
		c.DocumentStore = store
	}
}

func (c *Container) initRepositories() {
	db := models.DB
	c.ShipmentRepo = repository.NewShipmentRepository(db)
	c.CustomsDocumentRepo = repository.NewCustomsDocumentRepository(db)
	c.WebhookEventRepo = repository.NewWebhookEventRepository(db)
	c.OperatorRepo = repository.NewOperatorRepository(db)
}

func (c *Container) initServices() {
	c.AuthService = service.NewAuthService(c.Config, c.OperatorRepo)
	c.EmailService = service.NewEmailService(&c.Config.Email, &c.Config.Alerts)
	c.ShipmentService = service.NewShipmentService(
		c.Config,
		c.Senders,
		c.ShopifyAPI,
		c.CarrierClient,
		c.ShipmentRepo,
		c.QueueClient,
		c.EmailService,
	)
	c.CustomsService = service.NewCustomsService(
		c.Config,
		c.Senders,
		c.ShopifyAPI,
		c.CarrierClient,
		customs.NewRenderer(),
		c.DocumentStore,
		c.CustomsDocumentRepo,
		c.QueueClient,
		c.EmailService,
	)
}
