package backends

import (
	"clientsvc/internal/backends/ddb"
	"clientsvc/internal/backends/fanout"
	"clientsvc/internal/backends/memory"
	redisbackend "clientsvc/internal/backends/redis"
	"clientsvc/internal/types"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	BackendEnvKey = "CLIENT_BACKEND"
	BackendDDB    = "ddb"
	BackendRedis  = "redis"
	BackendMemory = "memory"

	TableEnvKey       = "DYNAMODB_CLIENT_TABLE"
	DefaultTable      = "clients"
	DDBEndpointKey    = "DDB_ENDPOINT"
	RegionKey         = "AWS_REGION"
	ConcurrencyEnvKey = "BATCH_CONCURRENCY"

	RedisHost  = "REDIS_HOST"
	RedisPort  = "REDIS_PORT"
	RedisUser  = "REDIS_USER"
	RedisPass  = "REDIS_PASS"
	RedisTLS   = "REDIS_SSL"
	RedisDBNum = "REDIS_DB_NUM"
)
const AmazonRootCA1PEM = `-----BEGIN CERTIFICATE-----
MIIDQTCCAimgAwIBAgITBmyfz5m/jAo54vB4ikPmljZbyjANBgkqhkiG9w0BAQsF
ADA5MQswCQYDVQQGEwJVUzEPMA0GA1UEChMGQW1hem9uMRkwFwYDVQQDExBBbWF6
b24gUm9vdCBDQSAxMB4XDTE1MDUyNjAwMDAwMFoXDTM4MDExNzAwMDAwMFowOTEL
MAkGA1UEBhMCVVMxDzANBgNVBAoTBkFtYXpvbjEZMBcGA1UEAxMQQW1hem9uIFJv
b3QgQ0EgMTCCASIwDQYJKoZIhvcNAQEBBQADggEPADCCAQoCggEBALJ4gHHKeNXj
ca9HgFB0fW7Y14h29Jlo91ghYPl0hAEvrAIthtOgQ3pOsqTQNroBvo3bSMgHFzZM
9O6II8c+6zf1tRn4SWiw3te5djgdYZ6k/oI2peVKVuRF4fn9tBb6dNqcmzU5L/qw
IFAGbHrQgLKm+a/sRxmPUDgH3KKHOVj4utWp+UhnMJbulHheb4mjUcAwhmahRWa6
VOujw5H5SNz/0egwLX0tdHA114gk957EWW67c4cX8jJGKLhD+rcdqsq08p8kDi1L
93FcXmn/6pUCyziKrlA4b9v7LWIbxcceVOF34GfID5yHI9Y/QCB/IIDEgEw+OyQm
jgSubJrIqg0CAwEAAaNCMEAwDwYDVR0TAQH/BAUwAwEB/zAOBgNVHQ8BAf8EBAMC
AYYwHQYDVR0OBBYEFIQYzIU07LwMlJQuCFmcx7IQTgoIMA0GCSqGSIb3DQEBCwUA
A4IBAQCY8jdaQZChGsV2USggNiMOruYou6r4lK5IpDB/G/wkjUu0yKGX9rbxenDI
U5PMCCjjmCXPI6T53iHTfIUJrU6adTrCC2qJeHZERxhlbI1Bjjt/msv0tadQ1wUs
N+gDS63pYaACbvXy8MWy7Vu33PqUXHeeE6V/Uq2V8viTO96LXFvKWlJbYK8U90vv
o/ufQJVtMVT8QtPHRh8jrdkPSHCa2XV4cdFyQzR1bldZwgJcJmApzyMZFo6IQ6XU
5MsI+yMRQ+hDKXJioaldXgjUkK642M4UwtBV8ob2xJNDd2ZhwLnoQdeXeGADbkpy
rqXRfboQnoZsG4q5WTP468SQvvG5
-----END CERTIFICATE-----`

// Settings selects and configures the Store Adapter.
type Settings struct {
	Backend     string
	Table       string
	Concurrency int

	DDBEndpoint string
	Region      string

	RedisHost string
	RedisPort string
	RedisUser string
	RedisPass string
	RedisTLS  bool
	RedisDB   int
}

// SettingsFromEnv reads Settings from environment variables. The backend defaults to "ddb"
// and the table to "clients".
func SettingsFromEnv() (Settings, error) {
	dbNum, err := strconv.Atoi(getenv(RedisDBNum, "0"))
	if err != nil {
		return Settings{}, fmt.Errorf("invalid Redis DB number: %w", err)
	}
	concurrency, err := strconv.Atoi(getenv(ConcurrencyEnvKey, strconv.Itoa(fanout.DefaultConcurrency)))
	if err != nil {
		return Settings{}, fmt.Errorf("invalid batch concurrency: %w", err)
	}
	return Settings{
		Backend:     getenv(BackendEnvKey, BackendDDB),
		Table:       getenv(TableEnvKey, DefaultTable),
		Concurrency: concurrency,
		DDBEndpoint: os.Getenv(DDBEndpointKey),
		Region:      getenv(RegionKey, "us-east-1"),
		RedisHost:   getenv(RedisHost, "localhost"),
		RedisPort:   getenv(RedisPort, "6379"),
		RedisUser:   os.Getenv(RedisUser),
		RedisPass:   os.Getenv(RedisPass),
		RedisTLS:    parseBoolean(getenv(RedisTLS, "false")),
		RedisDB:     dbNum,
	}, nil
}

// Open constructs the configured backend, wrapped with metrics. One client is created per
// call and shared by every operation of the returned store.
func Open(ctx context.Context, st Settings) (Store, error) {
	if st.Table == "" {
		st.Table = DefaultTable
	}
	var store Store
	switch st.Backend {
	case BackendRedis:
		redisClient, err := redisClient(ctx, st)
		if err != nil {
			return nil, err
		}
		store = redisbackend.NewRecordStore(st.Table, redisClient, st.Concurrency)
	case BackendMemory:
		store = memory.NewRecordStore(st.Concurrency)
	case BackendDDB, "":
		ddbClient, err := ddbClient(ctx, st)
		if err != nil {
			return nil, err
		}
		store = ddb.NewRecordStore(st.Table, ddbClient, ddb.WithConcurrency(st.Concurrency))
	default:
		return nil, types.Err(types.ErrInvalidBackend, nil, "unknown backend %q", st.Backend)
	}
	name := st.Backend
	if name == "" {
		name = BackendDDB
	}
	log.WithFields(log.Fields{"backend": name, "table": st.Table}).Debug("record store opened")
	return Instrument(name, store), nil
}

// Clear deletes every record found by a full scan. Records written concurrently may survive.
func Clear(ctx context.Context, store Store) (int, error) {
	records, err := store.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	var errs []error
	deleted := 0
	for _, r := range records {
		if err := store.DeleteItem(ctx, r.ID()); err != nil {
			errs = append(errs, err)
			continue
		}
		deleted++
	}
	return deleted, errors.Join(errs...)
}

// ddbClient creates a DynamoDB client. A configured endpoint points it at DynamoDB local
// with static credentials.
func ddbClient(ctx context.Context, st Settings) (*dynamodb.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}

	ddbClient := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if st.DDBEndpoint != "" {
			// This is used for testing only locally
			o.BaseEndpoint = aws.String(st.DDBEndpoint)
			o.Region = st.Region
			credProvider := credentials.NewStaticCredentialsProvider(
				getenv("AWS_ACCESS_KEY_ID", "x"),
				getenv("AWS_SECRET_ACCESS_KEY", "x"),
				"",
			)
			o.Credentials = credProvider
		}
	})
	return ddbClient, nil
}

// redisClient creates a Redis client and pings it.
func redisClient(ctx context.Context, st Settings) (*redis.Client, error) {
	var tlsConfig *tls.Config
	if st.RedisTLS {
		// Create a CA certificate pool and add our CA certificate
		caCerts := x509.NewCertPool()
		if !caCerts.AppendCertsFromPEM([]byte(AmazonRootCA1PEM)) {
			return nil, fmt.Errorf("failed to retrieve CA certificate")
		}
		tlsConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
			RootCAs:    caCerts,
		}
	}

	redisConfig := redis.Options{
		Addr:      fmt.Sprintf("%s:%s", st.RedisHost, st.RedisPort),
		Username:  st.RedisUser,
		Password:  st.RedisPass,
		DB:        st.RedisDB,
		TLSConfig: tlsConfig,
	}
	redisClient := redis.NewClient(&redisConfig)
	_, err := redisClient.Ping(ctx).Result()
	if err != nil {
		return nil, types.Err(types.ErrStorageUnavailable, err, "failed to ping Redis")
	}
	return redisClient, nil
}

// getenv retrieves the value of the environment variable named by the key.
func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func parseBoolean(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return b
}
