package cfg

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/gym-ledger/pkg/e"
	"github.com/DRSN-tech/gym-ledger/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/joho/godotenv"
)

type Config struct {
	Remote *RemoteCfg
	Http   *HTTPConfig
	Db     *PGDBCfg
	Redis  *RedisCfg
	Ledger *LedgerCfg
	Kafka  *KafkaCfg
	Minio  *MinIOCfg
}

// RemoteCfg — удалённое хранилище документов, в котором живут товары, закупки и справочники.
type RemoteCfg struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	RateLimit    string // формат ulule/limiter: "100-M"
}

type PGDBCfg struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisCfg struct {
	Addr         string
	Password     string
	User         string
	DB           int
	MaxRetries   int
	DialTimeout  time.Duration
	Timeout      time.Duration
	PurchasesTTL time.Duration
}

// LedgerCfg — блокировка товара на время изменения остатка.
type LedgerCfg struct {
	LockTTL        time.Duration
	LockRetries    int
	LockRetryDelay time.Duration
}

type KafkaCfg struct {
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
}

type MinIOCfg struct {
	MinioEndpoint     string // Адрес конечной точки Minio
	ReportsBucket     string // Бакет для архивных выгрузок закупок
	MinioRootUser     string
	MinioRootPassword string
	MinioUseSSL       bool
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
// Переменные из .env подхватываются, если файл есть, и не перекрывают окружение.
func Load(log logger.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warnf("failed to read .env: %v", err)
	}

	remote, err := loadRemoteCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	db, err := loadPGDBCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	ledger, err := loadLedgerCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minio, err := loadMinIOCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Remote: remote,
		Http:   http,
		Db:     db,
		Redis:  redis,
		Ledger: ledger,
		Kafka:  kafka,
		Minio:  minio,
	}, nil
}

func loadRemoteCfg(log logger.Logger) (*RemoteCfg, error) {
	const defaultTimeout = 10 * time.Second

	baseURL := getEnv("REMOTE_API_URL")
	if baseURL == "" {
		err := fmt.Errorf("REMOTE_API_URL is required")
		log.Errorf(err, "missing REMOTE_API_URL")
		return nil, err
	}

	timeout, err := parseDurationEnv("REMOTE_TIMEOUT", defaultTimeout)
	if err != nil || timeout <= 0 {
		err = errors.Join(e.ErrIncorrectEnvVariable, err)
		log.Errorf(err, "invalid REMOTE_TIMEOUT")
		return nil, err
	}

	return &RemoteCfg{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   getEnv("REMOTE_API_TOKEN"),
		Timeout: timeout,
	}, nil
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
	)

	brokerStr := os.Getenv("KAFKA_BROKERS")
	if brokerStr == "" {
		return nil, fmt.Errorf("KAFKA_BROKERS environment variable is required")
	}
	brokers := strings.Split(brokerStr, ",")

	topic := getEnvOrDefault("KAFKA_TOPIC", "inventory.movements")

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	return &KafkaCfg{
		Brokers:           brokers,
		Topic:             topic,
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
		NetworkMode:       getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
	}, nil
}

func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL        = false
		defaultEndpoint      = "minio:9000"
		defaultReportsBucket = "purchase-reports"
	)

	useSSL, err := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", strconv.FormatBool(defaultUseSSL)))
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	return &MinIOCfg{
		MinioEndpoint:     getEnvOrDefault("MINIO_ENDPOINT", defaultEndpoint),
		ReportsBucket:     getEnvOrDefault("REPORTS_BUCKET", defaultReportsBucket),
		MinioRootUser:     getEnv("MINIO_ROOT_USER"),
		MinioRootPassword: getEnv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:       useSSL,
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 5 * time.Second
		defaultWriteTimeout = 30 * time.Second
		defaultIdleTimeout  = 60 * time.Second
		defaultRateLimit    = "300-M"
	)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	return &HTTPConfig{
		Port:         getEnvOrDefault("HTTP_PORT", defaultPort),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
		RateLimit:    getEnvOrDefault("RATE_LIMIT", defaultRateLimit),
	}, nil
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost    = "localhost"
		defaultPort    = "5432"
		defaultSSLMode = "disable"
	)

	user := getEnv("POSTGRES_USER")
	if user == "" {
		err := fmt.Errorf("POSTGRES_USER is required")
		log.Errorf(err, "missing POSTGRES_USER")
		return nil, err
	}

	password := getEnv("POSTGRES_PASSWORD")
	if password == "" {
		err := fmt.Errorf("POSTGRES_PASSWORD is required")
		log.Errorf(err, "missing POSTGRES_PASSWORD")
		return nil, err
	}

	dbName := getEnv("POSTGRES_DB")
	if dbName == "" {
		err := fmt.Errorf("POSTGRES_DB is required")
		log.Errorf(err, "missing POSTGRES_DB")
		return nil, err
	}

	return &PGDBCfg{
		Host:     getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:     getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:     user,
		Password: password,
		DBName:   dbName,
		SSLMode:  getEnvOrDefault("SSL_MODE", defaultSSLMode),
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr         = "localhost:6379"
		defaultDB           = 0
		defaultMaxRetries   = 3
		defaultDialTimeout  = 5 * time.Second
		defaultReadTimeout  = 3 * time.Second
		defaultWriteTimeout = 3 * time.Second
		defaultPurchasesTTL = time.Minute
	)

	db, err := parseIntEnv("REDIS_DB_ID", defaultDB)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := parseIntEnv("MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid WRITE_TIMEOUT")
		return nil, err
	}

	purchasesTTL, err := parseDurationEnv("PURCHASES_TTL", defaultPurchasesTTL)
	if err != nil {
		log.Errorf(err, "invalid PURCHASES_TTL")
		return nil, err
	}

	return &RedisCfg{
		Addr:         getEnvOrDefault("REDIS_ADDR", defaultAddr),
		Password:     getEnv("REDIS_PASSWORD"),
		User:         getEnv("REDIS_USER"),
		DB:           db,
		MaxRetries:   maxRetries,
		DialTimeout:  dialTimeout,
		Timeout:      max(readTimeout, writeTimeout),
		PurchasesTTL: purchasesTTL,
	}, nil
}

func loadLedgerCfg(log logger.Logger) (*LedgerCfg, error) {
	const (
		defaultLockTTL        = 30 * time.Second
		defaultLockRetries    = 20
		defaultLockRetryDelay = 100 * time.Millisecond
	)

	lockTTL, err := parseDurationEnv("LEDGER_LOCK_TTL", defaultLockTTL)
	if err != nil || lockTTL < time.Second {
		err = errors.Join(e.ErrIncorrectEnvVariable, err)
		log.Errorf(err, "invalid LEDGER_LOCK_TTL, must be at least 1s")
		return nil, err
	}

	retries, err := parseIntEnv("LEDGER_LOCK_RETRIES", defaultLockRetries)
	if err != nil {
		log.Errorf(err, "invalid LEDGER_LOCK_RETRIES")
		return nil, err
	}

	return &LedgerCfg{
		LockTTL:        lockTTL,
		LockRetries:    retries,
		LockRetryDelay: defaultLockRetryDelay,
	}, nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}
