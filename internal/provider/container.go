package provider

import (
	"fmt"

	"github.com/inflink/escrow-ledger/internal/cache"
	"github.com/inflink/escrow-ledger/internal/config"
	"github.com/inflink/escrow-ledger/internal/fee"
	"github.com/inflink/escrow-ledger/internal/gateway"
	"github.com/inflink/escrow-ledger/internal/logger"
	"github.com/inflink/escrow-ledger/internal/models"
	"github.com/inflink/escrow-ledger/internal/notify"
	"github.com/inflink/escrow-ledger/internal/queue"
	"github.com/inflink/escrow-ledger/internal/repository"
	"github.com/inflink/escrow-ledger/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Gateway     gateway.ApplicationGateway
	Notifier    notify.Notifier

	// Repositories
	PaymentRepo  repository.PaymentRepository
	PayoutRepo   repository.PayoutRepository
	OperatorRepo repository.OperatorRepository

	// Services
	AuthService         *service.AuthService
	NotificationService *service.NotificationService
	EscrowService       *service.EscrowService
}

// NewContainer 初始化容器。
// 网关是账本的硬依赖，客户端构建失败时直接返回错误终止启动。
func NewContainer(cfg *config.Config) (*Container, error) {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	if err := c.initExternal(); err != nil {
		return nil, err
	}
	c.initRepositories()
	c.initServices()

	return c, nil
}

func (c *Container) initExternal() error {
	cfg := c.Config

	gw, err := gateway.NewClient(gateway.Config{
		BaseURL:    cfg.Gateway.BaseURL,
		Token:      cfg.Gateway.Token,
		TimeoutMS:  cfg.Gateway.TimeoutMS,
		MaxRetries: cfg.Gateway.MaxRetries,
	})
	if err != nil {
		logger.Errorw("provider_init_gateway_failed", "error", err)
		return fmt.Errorf("init application gateway: %w", err)
	}
	c.Gateway = gw

	if cfg.Notify.Enabled {
		notifier, err := notify.NewClient(notify.Config{
			BaseURL:   cfg.Notify.BaseURL,
			Token:     cfg.Notify.Token,
			TimeoutMS: cfg.Notify.TimeoutMS,
		})
		if err != nil {
			logger.Warnw("provider_init_notifier_failed", "error", err)
			c.Notifier = notify.NopNotifier{}
		} else {
			c.Notifier = notifier
		}
	} else {
		c.Notifier = notify.NopNotifier{}
	}
	return nil
}

func (c *Container) initRepositories() {
	db := models.DB
	c.PaymentRepo = repository.NewPaymentRepository(db)
	c.PayoutRepo = repository.NewPayoutRepository(db)
	c.OperatorRepo = repository.NewOperatorRepository(db)
}

func (c *Container) initServices() {
	cfg := c.Config

	feeRate, err := fee.ParseRate(cfg.Escrow.FeeRate)
	if err != nil {
		logger.Errorw("provider_fee_rate_invalid", "fee_rate", cfg.Escrow.FeeRate, "error", err)
	}

	c.AuthService = service.NewAuthService(cfg, c.OperatorRepo)
	c.NotificationService = service.NewNotificationService(c.Notifier, c.QueueClient)
	c.EscrowService = service.NewEscrowService(
		c.PaymentRepo,
		c.PayoutRepo,
		c.Gateway,
		c.NotificationService,
		c.QueueClient,
		feeRate,
		cfg.Escrow.ReleaseLockSeconds,
	)
}
