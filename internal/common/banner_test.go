package common

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteBanner(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 4100
	cfg.Storage.Backend = "surrealdb"
	cfg.Storage.Address = "ws://db:8000/rpc"

	var buf bytes.Buffer
	writeBanner(&buf, cfg, BuildInfo{Version: "v1.2.3", Build: "b", Commit: "abc1234"})

	out := buf.String()
	assert.Contains(t, out, "RaymondsIndex")
	assert.Contains(t, out, "http://0.0.0.0:4100")
	assert.Contains(t, out, "surrealdb ws://db:8000/rpc")
	assert.Contains(t, out, "v1.2.3")
	assert.Contains(t, out, "4 companies")
}

func TestBannerFields_FileStorage(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Storage.Backend = "file"
	cfg.Storage.Path = "/var/lib/raymonds"

	fields := bannerFields(cfg, BuildInfo{})
	assert.Contains(t, fields, [2]string{"Session store", "file /var/lib/raymonds"})
}
