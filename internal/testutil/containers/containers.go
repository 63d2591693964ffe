//go:build integration

package containers

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// Containers are started once per test binary and shared by every suite in
// it. Ryuk removes them when the process exits.
var (
	mysqlOnce sync.Once
	mysqlC    *MySQLContainer
	mysqlErr  error

	redisOnce sync.Once
	redisC    *RedisContainer
	redisErr  error
)

type MySQLContainer struct {
	DSN string
	DB  *sql.DB
}

// MySQL starts (or reuses) a MySQL 8 container with an empty "pantry" database.
func MySQL(t *testing.T) *MySQLContainer {
	t.Helper()
	mysqlOnce.Do(func() {
		ctx := context.Background()
		container, err := tcmysql.Run(ctx, "mysql:8.0",
			tcmysql.WithDatabase("pantry"),
			tcmysql.WithUsername("pantry"),
			tcmysql.WithPassword("pantry"),
			testcontainers.WithEnv(map[string]string{"TZ": "UTC"}),
		)
		if err != nil {
			mysqlErr = err
			return
		}
		dsn, err := container.ConnectionString(ctx, "parseTime=true", "multiStatements=true")
		if err != nil {
			mysqlErr = err
			return
		}
		db, err := sql.Open("mysql", dsn)
		if err == nil {
			err = db.PingContext(ctx)
		}
		if err != nil {
			mysqlErr = err
			return
		}
		mysqlC = &MySQLContainer{DSN: dsn, DB: db}
	})
	if mysqlErr != nil {
		t.Fatalf("failed to start mysql container: %v", mysqlErr)
	}
	return mysqlC
}

// Truncate empties the given tables with foreign key checks disabled.
func (c *MySQLContainer) Truncate(ctx context.Context, tables ...string) error {
	conn, err := c.DB.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS = 0"); err != nil {
		return err
	}
	defer conn.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS = 1")

	for _, table := range tables {
		if _, err := conn.ExecContext(ctx, "TRUNCATE TABLE "+table); err != nil {
			return err
		}
	}
	return nil
}

type RedisContainer struct {
	Client *redis.Client
}

// Redis starts (or reuses) a redis-stack container, which ships RediSearch.
func Redis(t *testing.T) *RedisContainer {
	t.Helper()
	redisOnce.Do(func() {
		ctx := context.Background()
		container, err := tcredis.Run(ctx, "redis/redis-stack-server:7.4.0-v1")
		if err != nil {
			redisErr = err
			return
		}
		uri, err := container.ConnectionString(ctx)
		if err != nil {
			redisErr = err
			return
		}
		opts, err := redis.ParseURL(uri)
		if err != nil {
			redisErr = err
			return
		}
		opts.Protocol = 2
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			redisErr = err
			return
		}
		redisC = &RedisContainer{Client: client}
	})
	if redisErr != nil {
		t.Fatalf("failed to start redis container: %v", redisErr)
	}
	return redisC
}

// FlushAll removes all keys and indexes.
func (c *RedisContainer) FlushAll(ctx context.Context) error {
	return c.Client.FlushAll(ctx).Err()
}
