package app

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/m3rciful/relaybot/internal/payout"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("SUPPORT_GROUP_ID", "-1001234")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Support.GroupID != -1001234 {
		t.Fatalf("group id = %d", cfg.Support.GroupID)
	}
	if cfg.Storage.Requests != StorageMemory || cfg.Storage.Forwards != StorageMemory {
		t.Fatalf("storage = %+v", cfg.Storage)
	}
	if cfg.Retention() != 720*time.Hour || cfg.Storage.PruneInterval != time.Hour {
		t.Fatalf("retention = %s, prune = %s", cfg.Retention(), cfg.Storage.PruneInterval)
	}
	if cfg.HTTP.Listen != ":8080" {
		t.Fatalf("http listen = %q", cfg.HTTP.Listen)
	}
	if cfg.CoreConfig().Telegram.Token != "123:abc" {
		t.Fatal("core config not embedded")
	}
	if !reflect.DeepEqual(cfg.Policy(), payout.DefaultPolicy()) {
		t.Fatalf("policy = %+v", cfg.Policy())
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: file-token
support:
  group_id: -100500
payout:
  min_requisites_len: 8
  link_prefixes: ["t.me/", "rutube.ru/"]
storage:
  requests: redis
  forward_retention: 0s
  request_ttl: 24h
redis:
  addr: localhost:6379
http:
  listen: "off"
`)
	t.Setenv("SUPPORT_GROUP_ID", "-100777")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Support.GroupID != -100777 {
		t.Fatalf("env did not override group id: %d", cfg.Support.GroupID)
	}
	if cfg.Retention() != 0 {
		t.Fatalf("explicit zero retention became %s", cfg.Retention())
	}
	if cfg.Storage.RequestTTL != 24*time.Hour || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("storage = %+v redis = %+v", cfg.Storage, cfg.Redis)
	}
	if cfg.HTTP.Listen != HTTPDisabled {
		t.Fatalf("http listen = %q", cfg.HTTP.Listen)
	}
	p := cfg.Policy()
	if p.MinRequisitesLen != 8 || !reflect.DeepEqual(p.LinkPrefixes, []string{"t.me/", "rutube.ru/"}) {
		t.Fatalf("policy = %+v", p)
	}
}

func TestLoadConfigRejectsInvalidStorage(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown requests store", "storage:\n  requests: etcd\n", "storage.requests"},
		{"unknown forwards store", "storage:\n  forwards: mongo\n", "storage.forwards"},
		{"redis without addr", "storage:\n  requests: redis\n", "redis.addr"},
		{"postgres without host", "storage:\n  forwards: postgres\n", "database.host"},
		{"negative retention", "storage:\n  forward_retention: -1h\n", "forward_retention"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("BOT_TOKEN", "123:abc")
			_, err := LoadConfig(writeConfig(t, tc.yaml))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want mention of %q", err, tc.want)
			}
		})
	}
}

func TestPolicyBareLinksOff(t *testing.T) {
	off := false
	cfg := Config{Payout: PayoutConfig{BareLinks: &off, MinRequisitesLen: -3}}
	p := cfg.Policy()
	if len(p.LinkPrefixes) != 0 {
		t.Fatalf("bare links still enabled: %v", p.LinkPrefixes)
	}
	if _, ok := payout.ExtractURL(payout.Input{Text: "t.me/channel/1"}, p); ok {
		t.Fatal("bare link accepted with bare_links off")
	}
	if p.MinRequisitesLen != -3 {
		t.Fatalf("min requisites = %d", p.MinRequisitesLen)
	}
}

func TestPostgresForwardsGetDatabaseDefaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	cfg, err := LoadConfig(writeConfig(t, "storage:\n  forwards: postgres\ndatabase:\n  host: db\n  name: relay\n"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Database.Port != "5432" || cfg.Database.MigrationsDir != "migrations" {
		t.Fatalf("database = %+v", cfg.Database)
	}
}
