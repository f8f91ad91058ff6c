package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"gopos/config"
	"gopos/internal/pkg/cache"
	"gopos/internal/pkg/database"
	"gopos/internal/pkg/logger"
	"gopos/internal/pkg/metrics"
	"gopos/internal/pkg/token"
	"gopos/internal/pricing"

	"gopos/internal/api/customergroup"
	"gopos/internal/api/pricelist"
	pricingapi "gopos/internal/api/pricing"
	"gopos/internal/api/product"
	"gopos/internal/api/router"
	"gopos/internal/api/stock"
	"gopos/internal/api/user"
	"gopos/internal/api/warehouse"

	"gopos/internal/repository/customergrouprepo"
	"gopos/internal/repository/pricelistrepo"
	"gopos/internal/repository/productrepo"
	"gopos/internal/repository/stockrepo"
	"gopos/internal/repository/userrepo"
	"gopos/internal/repository/warehouserepo"

	"gopos/internal/service/customergroupservice"
	"gopos/internal/service/pricelistservice"
	"gopos/internal/service/pricingservice"
	"gopos/internal/service/productservice"
	"gopos/internal/service/stockservice"
	"gopos/internal/service/userservice"
	"gopos/internal/service/warehouseservice"
)

// @title						GoPOS API
// @version					1.0
// @description				Resolução de preços por grupo de clientes, tabelas de preço, catálogo e estoque.
// @BasePath					/v1
// @securityDefinitions.apikey	ApiKeyAuth
// @in							header
// @name						Authorization
func main() {
	// 0. Variáveis de ambiente (.env é opcional; em container vêm do sistema)
	envErr := godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger("error").Fatal("Configuração inválida.", err)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if envErr != nil {
		log.Debug("Arquivo .env não encontrado; usando apenas o ambiente do sistema.", nil)
	}
	log.Info("Inicializando serviço GoPOS...", map[string]interface{}{"env": cfg.Environment})

	ratePolicy, err := pricing.ParseRatePolicy(cfg.DiscountRatePolicy)
	if err != nil {
		log.Fatal("Política de desconto inválida.", err)
	}

	// 1. Infraestrutura
	db, err := database.NewPostgresDB(cfg.DatabaseURL, database.DefaultPoolOptions())
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	log.Info("Conexão PostgreSQL estabelecida.", nil)

	cacheClient := cache.NewRedisClient(cache.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer cacheClient.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		// Sem Redis o catálogo lê direto do banco e o rate limit fica aberto.
		log.Warn("Redis indisponível.", map[string]interface{}{"addr": cfg.RedisAddr, "error": err.Error()})
	} else {
		log.Info("Conexão Redis estabelecida.", nil)
	}
	cancelPing()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	pricingMetrics := metrics.NewPricingMetrics(registry)

	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)

	// 2. Repository -> Service -> Handler
	productRepo := productrepo.NewProductRepository(db, cacheClient, cfg.DBTimeout, cfg.ProductCacheTTL, log)
	groupRepo := customergrouprepo.NewCustomerGroupRepository(db, cfg.DBTimeout, log)
	priceListRepo := pricelistrepo.NewPriceListRepository(db, cfg.DBTimeout)
	warehouseRepo := warehouserepo.NewWarehouseRepository(db, cfg.DBTimeout, log)
	stockRepo := stockrepo.NewStockRepository(db, cfg.DBTimeout, log)
	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, log)

	engine := pricing.NewEngine(pricing.Options{Scale: cfg.PriceScale, RatePolicy: ratePolicy})

	pricingSvc := pricingservice.NewService(priceListRepo, productRepo, groupRepo, engine, pricingMetrics, log)
	priceListSvc := pricelistservice.NewService(priceListRepo, groupRepo, productRepo, log)
	groupSvc := customergroupservice.NewService(groupRepo, log)
	productSvc := productservice.NewService(productRepo, log)
	warehouseSvc := warehouseservice.NewService(warehouseRepo, log)
	stockSvc := stockservice.NewService(stockRepo, log)
	userSvc := userservice.NewService(userRepo, tokenSvc, log)

	handlers := router.Handlers{
		Pricing:       pricingapi.NewHandler(pricingSvc, log),
		PriceList:     pricelist.NewHandler(priceListSvc, log),
		CustomerGroup: customergroup.NewHandler(groupSvc, log),
		Product:       product.NewHandler(productSvc, log),
		Warehouse:     warehouse.NewHandler(warehouseSvc, log),
		Stock:         stock.NewHandler(stockSvc, log),
		User:          user.NewHandler(userSvc, log),
	}

	// 3. Roteador e servidor
	r := router.NewRouter(handlers, router.Options{
		Tokens:          tokenSvc,
		RateLimitCache:  cacheClient,
		RateLimit:       cfg.RateLimitMaxRequests,
		RateLimitWindow: cfg.RateLimitPeriod,
		Gatherer:        registry,
		Logger:          log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Servidor GoPOS ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	// 4. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
