package deps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"resetkit/internal/config"
	dl "resetkit/internal/core/domain/logging"
	"resetkit/internal/core/domain/user"
	"resetkit/internal/db"
	dbuser "resetkit/internal/db/user"
	accountresolver "resetkit/internal/implementations/account_resolver"
	"resetkit/internal/implementations/email"
	"resetkit/internal/implementations/logging"
	passwordhasher "resetkit/internal/implementations/password_hasher"
	passwordresetter "resetkit/internal/implementations/password_resetter"
	"resetkit/internal/rabbitmq"
	passwordresettoken "resetkit/internal/rabbitmq/publishers/password_reset_token"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/go-redis/redis/v9"
	"github.com/jackc/pgx/v4/pgxpool"
)

type Deps struct {
	Config *config.Config
	Logger dl.Logger

	DB       *pgxpool.Pool
	Redis    *redis.Client
	Rabbitmq *rabbitmq.Connection

	Now func() time.Time

	UserRepository           user.UserRepository
	AccountResolver          user.AccountResolver
	PasswordHasher           user.PasswordHasher
	PasswordResetter         user.PasswordResetter
	PasswordResetTokenSender user.PasswordResetTokenSender

	// HealthChecks are keyed by the name of the dependency they ping.
	HealthChecks map[string]func(ctx context.Context) error
}

func InitDeps() (*Deps, func()) {
	deps := &Deps{HealthChecks: make(map[string]func(ctx context.Context) error)}

	deps.initConfig()
	closeLogger := deps.initLogger()
	deps.Now = func() time.Time { return time.Now().UTC() }

	closeStore := deps.initUserRepository()
	deps.initAccountResolver()

	deps.PasswordHasher = passwordhasher.NewBcrypt(deps.Config.BcryptHasherCost)
	deps.PasswordResetter = passwordresetter.NewJWT(
		deps.Config.Secret,
		deps.Config.PasswordResetValidDuration,
		deps.Now,
	)
	closeSender := deps.initPasswordResetTokenSender()

	return deps, func() {
		closeFuncs := []func(){closeSender, closeStore}

		var wg sync.WaitGroup
		wg.Add(len(closeFuncs))
		for _, closeFunc := range closeFuncs {
			closeFunc := closeFunc
			go func() {
				closeFunc()
				wg.Done()
			}()
		}
		wg.Wait()

		closeLogger()
	}
}

func (deps *Deps) initConfig() {
	config, err := config.Load()
	if err != nil {
		panic(err)
	}
	deps.Config = config
}

func (deps *Deps) initLogger() func() {
	logger, err := logging.NewZapLogger(deps.Config.LogLevel)
	if err != nil {
		panic(err)
	}
	deps.Logger = logger
	if deps.Config.UsesDevelopmentSecret() {
		logger.Warning(context.Background(), "SECRET is not set, signing tokens with the development secret.")
	}
	return func() { logger.Sync() }
}

func (deps *Deps) initUserRepository() func() {
	var repository user.UserRepository
	closeStore := func() {}

	switch deps.Config.StoreBackend {
	case config.PostgresStore:
		closeStore = deps.initPgxPool()
		repository = dbuser.NewPgxRepository(deps.DB)
	case config.RedisStore:
		closeStore = deps.initRedisClient()
		repository = dbuser.NewRedisRepository(deps.Redis)
	default:
		path := deps.Config.UsersFile
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			deps.Logger.Error(context.Background(), "Could not create users file directory.", dl.Entry("err", err))
			panic(err)
		}
		repository = dbuser.NewFileRepository(path)
	}

	deps.UserRepository = dbuser.NewRetryingRepository(
		repository,
		deps.Logger,
		deps.Config.StoreRetryCount,
		deps.Config.StoreRetryBaseDelay,
	)
	deps.Logger.Info(
		context.Background(),
		"User store is ready.",
		dl.Entry("backend", string(deps.Config.StoreBackend)),
	)
	return closeStore
}

func (deps *Deps) initAccountResolver() {
	demoAccounts, err := accountresolver.ParseStatic(deps.Config.DemoAccounts)
	if err != nil {
		panic(fmt.Errorf("invalid DEMO_ACCOUNTS value: %w", err))
	}
	deps.AccountResolver = accountresolver.NewChain(
		accountresolver.NewStore(deps.UserRepository),
		accountresolver.NewStatic(demoAccounts...),
	)
}

func (deps *Deps) initPgxPool() func() {
	if err := db.ApplyMigrations(deps.Config.PostgresqlURL, deps.Config.MigrationsPath); err != nil {
		deps.Logger.Error(context.Background(), "Could not apply DB migrations.", dl.Entry("err", err))
		panic(err)
	}
	pool, err := pgxpool.Connect(context.Background(), deps.Config.PostgresqlURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to DB.", dl.Entry("err", err))
		panic(err)
	}
	deps.DB = pool
	deps.HealthChecks["postgres"] = pool.Ping
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down DB connection.")
		pool.Close()
		deps.Logger.Info(context.Background(), "DB connection shut down.")
	}
}

func (deps *Deps) initRedisClient() func() {
	redisOpt, err := redis.ParseURL(deps.Config.RedisURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to Redis.", dl.Entry("err", err))
		panic(err)
	}
	redisClient := redis.NewClient(redisOpt)
	deps.Redis = redisClient
	deps.HealthChecks["redis"] = func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	}
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down Redis client.")
		redisClient.Close()
		deps.Logger.Info(context.Background(), "Redis client shut down.")
	}
}

func (deps *Deps) initPasswordResetTokenSender() func() {
	switch deps.Config.DeliveryBackend {
	case config.SESDelivery:
		deps.PasswordResetTokenSender = email.NewEmailSender(
			deps.initAwsConfig(),
			deps.Config.EmailSender,
			deps.Config.PasswordResetEmailTemplate,
			deps.Config.PasswordResetBaseURL,
		)
		return func() {}
	case config.RabbitMQDelivery:
		return deps.initRabbitmqPublisher()
	default:
		deps.PasswordResetTokenSender = email.NewLogSender(deps.Logger, deps.Config.PasswordResetBaseURL)
		return func() {}
	}
}

func (deps *Deps) initAwsConfig() aws.Config {
	cfg, err := awsConfig.LoadDefaultConfig(
		context.Background(),
		awsConfig.WithRegion(deps.Config.AwsRegion),
		awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				deps.Config.AwsAccessKey,
				deps.Config.AwsSecretKey,
				"",
			),
		),
		awsConfig.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(
				retry.AddWithMaxBackoffDelay(retry.NewStandard(), time.Second*5),
				3,
			)
		}),
	)
	if err != nil {
		panic(err)
	}
	return cfg
}

func (deps *Deps) initRabbitmqPublisher() func() {
	connection, err := rabbitmq.Dial(deps.Config.RabbitmqURL, deps.Logger)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to RabbitMQ.", dl.Entry("err", err))
		panic(err)
	}
	deps.Rabbitmq = connection

	channel, err := connection.Channel()
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ channel.", dl.Entry("err", err))
		panic(err)
	}
	err = channel.DeclareQueue(
		deps.Config.RabbitmqExchange,
		deps.Config.RabbitmqQueue,
		deps.Config.RabbitmqRoutingKey,
	)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not declare RabbitMQ queue.", dl.Entry("err", err))
		panic(err)
	}

	deps.PasswordResetTokenSender = passwordresettoken.NewRabbitMQ(
		deps.Logger,
		channel,
		deps.Config.RabbitmqExchange,
		deps.Config.RabbitmqRoutingKey,
		deps.Config.PasswordResetBaseURL,
	)
	deps.HealthChecks["rabbitmq"] = func(ctx context.Context) error {
		if channel.IsClosed() {
			return fmt.Errorf("RabbitMQ channel is closed")
		}
		return nil
	}
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down RabbitMQ connection.")
		channel.Close()
		connection.Close()
		deps.Logger.Info(context.Background(), "RabbitMQ connection shut down.")
	}
}
