package main

import (
	"fmt"
	"strings"

	"github.com/gigdesk/modgate/db"
	"github.com/gigdesk/modgate/gateway"
	"github.com/gigdesk/modgate/llm"
	"github.com/gigdesk/modgate/notify"
	"github.com/gigdesk/modgate/providers/openai"
	"github.com/spf13/viper"
)

func dbConfigFromViper() db.Config {
	cfg := db.DefaultConfig()
	if v := strings.TrimSpace(viper.GetString("db.driver")); v != "" {
		cfg.Driver = v
	}
	cfg.DSN = strings.TrimSpace(viper.GetString("db.dsn"))
	if viper.IsSet("db.sqlite.wal") {
		cfg.SQLite.WAL = viper.GetBool("db.sqlite.wal")
	}
	if v := viper.GetInt("db.sqlite.busy_timeout_ms"); v > 0 {
		cfg.SQLite.BusyTimeoutMs = v
	}
	cfg.Pool.MaxOpenConns = viper.GetInt("db.pool.max_open_conns")
	cfg.Pool.MaxIdleConns = viper.GetInt("db.pool.max_idle_conns")
	return cfg
}

func llmClientFromViper() (llm.Client, string, error) {
	endpoint := strings.TrimSpace(viper.GetString("llm.endpoint"))
	if endpoint == "" {
		return nil, "", fmt.Errorf("llm.endpoint is not configured")
	}
	model := strings.TrimSpace(viper.GetString("llm.model"))
	if model == "" {
		return nil, "", fmt.Errorf("llm.model is not configured")
	}
	client := openai.New(endpoint, viper.GetString("llm.api_key"))
	if v := viper.GetInt64("llm.max_response_bytes"); v > 0 {
		client.MaxResponseBytes = v
	}
	return client, model, nil
}

// notifierFromViper returns a redis-backed notifier when redis.addr is set,
// and a noop otherwise. Notification is optional wiring, never a requirement.
func notifierFromViper() (notify.Notifier, error) {
	addr := strings.TrimSpace(viper.GetString("redis.addr"))
	if addr == "" {
		return notify.Noop{}, nil
	}
	return notify.NewRedisNotifier(
		addr,
		viper.GetString("redis.password"),
		viper.GetInt("redis.db"),
		viper.GetString("redis.channel"),
	)
}

func auditSinkFromViper() (*gateway.JSONLAuditSink, error) {
	path := strings.TrimSpace(viper.GetString("audit.jsonl_path"))
	if path == "" {
		return nil, nil
	}
	return gateway.NewJSONLAuditSink(path, viper.GetInt64("audit.rotate_max_bytes"))
}
