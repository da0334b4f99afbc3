package appcontext

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/RoyceAzure/lab/ordercenter/internal/config"
	"github.com/RoyceAzure/lab/ordercenter/internal/infra/notifier"
	"github.com/RoyceAzure/lab/ordercenter/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/ordercenter/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/ordercenter/internal/service"
	"github.com/RoyceAzure/rj/api/token"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type ApplicationContext struct {
	Cf          *config.Config
	Logger      *zerolog.Logger
	DbConn      *gorm.DB
	DbDao       *db.DbDao
	RedisClient *redis.Client
	TokenMaker  token.Maker[uuid.UUID]
	Dispatcher  notifier.IDispatcher

	UserService    service.IUserService
	ProductService service.IProductService
	StockService   service.IStockService
	CartService    service.ICartService
	OrderService   service.IOrderService
}

func NewApplicationContext(cf *config.Config) (*ApplicationContext, error) {
	app := ApplicationContext{
		Cf: cf,
	}

	err := app.Init()
	if err != nil {
		return nil, err
	}

	return &app, nil
}

func (app *ApplicationContext) Init() error {
	app.setUpLogger()

	err := app.setUpdbConn()
	if err != nil {
		return err
	}

	err = app.setUpdbDao()
	if err != nil {
		return err
	}

	err = app.setUpRedis()
	if err != nil {
		return err
	}

	err = app.setTokenMaker()
	if err != nil {
		return err
	}

	app.setUpDispatcher()
	app.setUpServices()

	//啟動時預熱商品快取，失敗不擋啟動
	if err := app.ProductService.WarmCache(context.Background()); err != nil {
		app.Logger.Warn().Err(err).Msg("product cache warm up failed")
	}

	return nil
}

func (app *ApplicationContext) setUpLogger() {
	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "ordercenter").
		Logger()
	app.Logger = &logger
}

func (app *ApplicationContext) setUpdbConn() error {
	log.Printf("Start setup database connection")
	conn, err := db.GetDbConn(app.Cf.DbName, app.Cf.DbHost, app.Cf.DbPort, app.Cf.DbUser, app.Cf.DbPas)
	if err != nil {
		return err
	}
	app.DbConn = conn
	log.Printf("Finish setup database connection")
	return nil
}

func (app *ApplicationContext) setUpdbDao() error {
	log.Printf("Start setup database DAO")
	app.DbDao = db.NewDbDao(app.DbConn)
	if err := app.DbDao.InitMigrate(); err != nil {
		return err
	}
	log.Printf("Finish setup database DAO")
	return nil
}

func (app *ApplicationContext) setUpRedis() error {
	log.Printf("Start setup redis client")
	client := redis.NewClient(&redis.Options{
		Addr:     app.Cf.RedisAddr,
		Password: app.Cf.RedisPas,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return err
	}
	app.RedisClient = client
	log.Printf("Finish setup redis client")
	return nil
}

func (app *ApplicationContext) setTokenMaker() error {
	log.Printf("Start setup token maker")
	tokenMaker, err := token.NewPasetoMaker[uuid.UUID](app.Cf.AuthTokenKey)
	if err != nil {
		return err
	}
	app.TokenMaker = tokenMaker
	log.Printf("Finish setup token maker")
	return nil
}

func (app *ApplicationContext) setUpDispatcher() {
	log.Printf("Start setup kafka dispatcher")
	brokers := strings.Split(app.Cf.KafkaBrokers, ",")
	app.Dispatcher = notifier.NewKafkaDispatcher(brokers, app.Cf.KafkaTopic)
	log.Printf("Finish setup kafka dispatcher")
}

func (app *ApplicationContext) setUpServices() {
	log.Printf("Start setup services")

	userRepo := db.NewUserRepo(app.DbDao)
	productRepo := db.NewProductRepo(app.DbDao)
	variantRepo := db.NewVariantRepo(app.DbDao)
	cartRepo := db.NewCartRepo(app.DbDao)
	orderRepo := db.NewOrderRepo(app.DbDao)
	productCache := redis_repo.NewProductCacheRepo(app.RedisClient)

	app.UserService = service.NewUserService(userRepo)
	app.ProductService = service.NewProductService(productRepo, variantRepo, productCache, app.Logger)
	app.StockService = service.NewStockService(app.DbDao, variantRepo)
	app.CartService = service.NewCartService(cartRepo, variantRepo)
	app.OrderService = service.NewOrderService(
		app.DbDao,
		orderRepo,
		variantRepo,
		cartRepo,
		app.CartService,
		app.StockService,
		app.Dispatcher,
		app.Logger,
	)

	log.Printf("Finish setup services")
}

func (app *ApplicationContext) Shutdown(ctx context.Context) error {
	log.Printf("Start application shutdown")

	done := make(chan error)
	go func() {
		defer close(done)

		if app.Dispatcher != nil {
			log.Printf("Closing kafka dispatcher...")
			if err := app.Dispatcher.Close(); err != nil {
				//有錯誤不結束流程
				log.Printf("kafka dispatcher shutdown error: %v", err)
			}
		}

		if app.RedisClient != nil {
			log.Printf("Closing redis client...")
			if err := app.RedisClient.Close(); err != nil {
				log.Printf("redis client shutdown error: %v", err)
			}
		}

		// 關閉 DB
		if app.DbConn != nil {
			log.Printf("Closing database connection...")
			if sqlDB, err := app.DbConn.DB(); err == nil {
				sqlDB.Close()
			}
		}

		log.Printf("Application shutdown complete")
		done <- nil
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout: %v", ctx.Err())
	}
}
