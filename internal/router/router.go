package router

import (
	"fmt"
	"strings"

	"github.com/inflink/escrow-ledger/internal/cache"
	"github.com/inflink/escrow-ledger/internal/config"
	"github.com/inflink/escrow-ledger/internal/constants"
	escrowhandlers "github.com/inflink/escrow-ledger/internal/http/handlers/escrow"
	"github.com/inflink/escrow-ledger/internal/logger"
	"github.com/inflink/escrow-ledger/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	escrowHandler := escrowhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "esc"
	}
	redisClient := cache.Client()
	mutationRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:mutation", redisPrefix),
		WindowSeconds: cfg.Security.MutationRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.MutationRateLimit.MaxAttempts,
		Message:       "too many ledger mutations, slow down",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	userAuth := UserAuthMiddleware(c.AuthService)
	operatorAuth := OperatorAuthMiddleware(c.AuthService, c.OperatorRepo)
	mutationLimit := RateLimitMiddleware(redisClient, mutationRule, KeyByUser)

	apiV1 := r.Group("/api/v1")
	{
		operator := apiV1.Group("/operator")
		{
			operator.POST("/login", RateLimitMiddleware(redisClient, mutationRule, KeyByIP), escrowHandler.OperatorLogin)
		}

		escrow := apiV1.Group("/escrow")
		{
			// 品牌方接口
			escrow.POST("/payments", userAuth, RequireRole(constants.RoleBrand), mutationLimit, escrowHandler.CreatePayment)
			escrow.POST("/payments/release", userAuth, RequireRole(constants.RoleBrand), mutationLimit, escrowHandler.ReleasePayment)

			// 达人接口
			escrow.POST("/payouts/request", userAuth, RequireRole(constants.RoleInfluencer), mutationLimit, escrowHandler.RequestPayout)

			// 运营接口
			escrow.POST("/payouts/process", operatorAuth, escrowHandler.ProcessPayout)
			escrow.GET("/payments", operatorAuth, escrowHandler.ListPayments)
			escrow.GET("/payouts", operatorAuth, escrowHandler.ListPayouts)

			// 双方可见的账本视图
			escrow.GET("/status", userAuth, escrowHandler.GetPaymentStatus)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
