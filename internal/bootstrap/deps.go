package bootstrap

import (
	"context"
	"os"

	httpin "easyncd/adapter/in/http"
	smtpin "easyncd/adapter/in/smtp"
	"easyncd/adapter/out/graph"
	"easyncd/adapter/out/mailstore"
	"easyncd/adapter/out/notifybus"
	"easyncd/adapter/out/persistence"
	"easyncd/config"
	"easyncd/core/port/in"
	"easyncd/core/port/out"
	"easyncd/core/service/folder"
	"easyncd/core/service/mailops"
	"easyncd/core/service/ping"
	"easyncd/core/service/provision"
	"easyncd/core/service/sync"
	"easyncd/infra/database"
	"easyncd/pkg/logger"
	"easyncd/pkg/ratelimit"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
)

// Dependencies wires every adapter and core service the server needs.
// Built once at startup and handed to the router.
type Dependencies struct {
	Config *config.Config

	DB    *pgxpool.Pool
	Redis *redis.Client
	Mongo *mongo.Client
	Neo4j neo4j.DriverWithContext

	Store out.Store
	Graph out.ConversationGraph // nil when Neo4j is not configured

	DeviceRepo    out.DeviceRepository
	CollStateRepo out.CollectionStateRepository
	FolderRepo    out.FolderStateRepository
	PolicyKeys    out.PolicyKeyAllocator

	NotifyBus   *ping.Bus
	RemoteBus   *notifybus.RedisBus // nil when Redis is not configured
	RateLimiter *ratelimit.CommandLimiter

	SyncService      in.SyncService
	FolderService    in.FolderService
	ProvisionService in.ProvisionService
	PingService      in.PingService
	EstimateService  in.GetItemEstimateService
	SendMailService  in.SendMailService

	Handlers *httpin.Handlers
	Ingress  *smtpin.Ingress
}

// NewDependencies builds every adapter and service. The returned cleanup
// func closes connections in reverse acquisition order; call it on
// shutdown regardless of whether startup returned an error.
func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	deps := &Dependencies{Config: cfg}
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	componentLog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()
	if cfg.Debug {
		componentLog = componentLog.Level(zerolog.DebugLevel)
	} else {
		componentLog = componentLog.Level(zerolog.InfoLevel)
	}

	db, err := database.NewPostgres(cfg.StoreURL)
	if err != nil {
		return nil, cleanup, err
	}
	deps.DB = db
	cleanups = append(cleanups, func() { db.Close() })

	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedis(cfg.RedisURL)
		if err != nil {
			logger.Default().WithError(err).Warn("redis_connect_failed")
		} else {
			deps.Redis = redisClient
			cleanups = append(cleanups, func() { redisClient.Close() })
		}
	}

	if cfg.MongoURL != "" {
		mongoClient, err := mailstore.NewMongoClient(cfg.MongoURL)
		if err != nil {
			return nil, cleanup, err
		}
		deps.Mongo = mongoClient
		cleanups = append(cleanups, func() { _ = mongoClient.Disconnect(context.Background()) })
	}

	if cfg.Neo4jURL != "" {
		driver, err := graph.NewDriver(cfg.Neo4jURL, cfg.Neo4jUsername, cfg.Neo4jPassword)
		if err != nil {
			logger.Default().WithError(err).Warn("neo4j_connect_failed")
		} else {
			deps.Neo4j = driver
			cleanups = append(cleanups, func() { _ = driver.Close(context.Background()) })

			conv := graph.NewConversationAdapter(driver, "neo4j")
			if err := conv.EnsureIndexes(context.Background()); err != nil {
				logger.Default().WithError(err).Warn("neo4j_indexes_failed")
			}
			deps.Graph = conv
		}
	}

	deps.DeviceRepo = persistence.NewDeviceAdapter(db)
	deps.CollStateRepo = persistence.NewCollectionStateAdapter(db)
	deps.FolderRepo = persistence.NewFolderStateAdapter(db)

	policyKeys, err := persistence.NewPolicyKeyAllocator(workerIDFromEnv())
	if err != nil {
		return nil, cleanup, err
	}
	deps.PolicyKeys = policyKeys

	var baseStore out.Store
	if deps.Mongo != nil {
		mongoDB := deps.Mongo.Database(cfg.MongoName)
		ms := mailstore.NewStore(db, mongoDB)
		if err := ms.EnsureIndexes(context.Background()); err != nil {
			logger.Default().WithError(err).Warn("mailstore_indexes_failed")
		}
		baseStore = ms
	} else {
		// No Mongo configured: items persist through Postgres alone, body
		// content is always empty. Acceptable for Settings-only deployments.
		baseStore = mailstore.NewStore(db, nil)
	}
	deps.Store = mailstore.NewBreakerStore(baseStore)

	deps.NotifyBus = ping.NewBus(componentLog.With().Str("component", "ping").Logger())
	if deps.Redis != nil {
		remote := notifybus.NewRedisBus(deps.Redis, logger.Default())
		deps.RemoteBus = remote
		ctx, cancel := context.WithCancel(context.Background())
		go remote.Listen(ctx, deps.NotifyBus)
		cleanups = append(cleanups, cancel)
	}

	rlCfg := ratelimit.DefaultConfig()
	rlCfg.RequestsPerMinute = cfg.RateLimitPerMin
	deps.RateLimiter = ratelimit.NewCommandLimiter(deps.Redis, rlCfg)

	deps.SyncService = sync.NewService(deps.Store, deps.CollStateRepo, deps.Graph,
		componentLog.With().Str("component", "sync").Logger())
	deps.FolderService = folder.NewService(deps.FolderRepo)
	deps.ProvisionService = provision.NewService(deps.DeviceRepo, deps.PolicyKeys)
	deps.PingService = ping.NewService(deps.NotifyBus)
	if syncSvc, ok := deps.SyncService.(*sync.Service); ok {
		deps.EstimateService = syncSvc
	}
	deps.SendMailService = mailops.NewSendMailService(deps.Store, deps.Graph)

	deps.Handlers = httpin.NewHandlers(
		deps.SyncService,
		deps.FolderService,
		deps.ProvisionService,
		deps.PingService,
		deps.EstimateService,
		deps.SendMailService,
		deps.DeviceRepo,
	)

	// The SMTP ingress shim shares the same Store and notify bus as the
	// API process (spec §6, "Notification interface"); it is wired here
	// so a separate delivery-agent binary can depend on Dependencies
	// without duplicating construction, even though nothing in this
	// process calls Deliver directly.
	deps.Ingress = smtpin.NewIngress(deps.Store, deps.NotifyBus, logger.Default())

	return deps, cleanup, nil
}

// workerIDFromEnv derives a small, stable snowflake worker id from the
// process so multiple API replicas don't collide on PolicyKey generation.
// It is not read from Config because it is infrastructure plumbing, not a
// protocol-facing setting (spec §6 lists no such variable).
func workerIDFromEnv() int64 {
	return int64(os.Getpid() % 1024)
}

func (d *Dependencies) HealthCheck(ctx context.Context) error {
	if err := d.DB.Ping(ctx); err != nil {
		return err
	}
	if d.Redis != nil {
		if err := d.Redis.Ping(ctx).Err(); err != nil {
			return err
		}
	}
	return nil
}
