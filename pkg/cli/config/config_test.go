package config_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/hlpreview/pkg/cli/config"
	"github.com/secmon-lab/hlpreview/pkg/domain/model"
	domainConfig "github.com/secmon-lab/hlpreview/pkg/domain/model/config"
	"github.com/secmon-lab/hlpreview/pkg/utils/logging"
)

type credential struct {
	User  string
	Token string `masq:"secret"`
}

func TestLoggerConfigure(t *testing.T) {
	orig := logging.Default()
	t.Cleanup(func() { logging.SetDefault(orig) })

	t.Run("json to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		closer, err := config.NewLoggerForTest("debug", "json", path).Configure()
		gt.NoError(t, err).Required()

		logging.Default().Info("hello", "cred", credential{User: "svc", Token: "abc123"})
		closer()

		data, err := os.ReadFile(path)
		gt.NoError(t, err).Required()
		gt.String(t, string(data)).Contains("hello")
		gt.String(t, string(data)).Contains("svc")
		gt.Bool(t, strings.Contains(string(data), "abc123")).False()
	})

	t.Run("console", func(t *testing.T) {
		closer, err := config.NewLoggerForTest("info", "console", "stderr").Configure()
		gt.NoError(t, err).Required()
		closer()
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := config.NewLoggerForTest("loud", "json", "stdout").Configure()
		gt.Value(t, err).NotNil()
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := config.NewLoggerForTest("info", "xml", "stdout").Configure()
		gt.Value(t, err).NotNil()
	})
}

func TestRepositoryConfigure(t *testing.T) {
	ctx := context.Background()
	schema := &domainConfig.FormSchema{}

	t.Run("memory", func(t *testing.T) {
		repo, closer, err := config.NewRepositoryForTest(config.BackendMemory).Configure(ctx, schema)
		gt.NoError(t, err).Required()
		defer closer()
		rows, err := repo.List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, rows).Length(0)
	})

	t.Run("sheets without spreadsheet ID", func(t *testing.T) {
		_, _, err := config.NewRepositoryForTest(config.BackendSheets).Configure(ctx, schema)
		gt.Error(t, err).Is(config.ErrMissingFlag)
	})

	t.Run("firestore without project", func(t *testing.T) {
		_, _, err := config.NewRepositoryForTest(config.BackendFirestore).Configure(ctx, schema)
		gt.Error(t, err).Is(config.ErrMissingFlag)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, _, err := config.NewRepositoryForTest("excel").Configure(ctx, schema)
		gt.Error(t, err).Is(config.ErrInvalidBackend)
	})
}

func TestSessionConfigure(t *testing.T) {
	ctx := context.Background()
	repoCfg := config.NewRepositoryForTest(config.BackendMemory)

	t.Run("memory", func(t *testing.T) {
		store, closer, err := config.NewSessionForTest(config.BackendMemory, "").Configure(ctx, repoCfg)
		gt.NoError(t, err).Required()
		defer closer()
		_, err = store.Get(ctx, model.SessionID("00000000-0000-0000-0000-000000000000"))
		gt.Value(t, err).NotNil()
	})

	t.Run("redis", func(t *testing.T) {
		s := miniredis.RunT(t)
		store, closer, err := config.NewSessionForTest(config.BackendRedis, "redis://"+s.Addr()).Configure(ctx, repoCfg)
		gt.NoError(t, err).Required()
		defer closer()
		gt.Value(t, store).NotNil()
	})

	t.Run("redis without URL", func(t *testing.T) {
		_, _, err := config.NewSessionForTest(config.BackendRedis, "").Configure(ctx, repoCfg)
		gt.Error(t, err).Is(config.ErrMissingFlag)
	})

	t.Run("firestore without project", func(t *testing.T) {
		_, _, err := config.NewSessionForTest(config.BackendFirestore, "").Configure(ctx, repoCfg)
		gt.Error(t, err).Is(config.ErrMissingFlag)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, _, err := config.NewSessionForTest("etcd", "").Configure(ctx, repoCfg)
		gt.Error(t, err).Is(config.ErrInvalidBackend)
	})
}

func TestClaimsConfigure(t *testing.T) {
	ctx := context.Background()
	schema := &domainConfig.FormSchema{
		Fields: []domainConfig.FieldDefinition{{ID: "triage", AIColumn: "ai_triage"}},
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "Claims.csv")
	gt.NoError(t, os.WriteFile(path, []byte("Claim Number;Loss Description;AI Triage\nC-1;leak;Enough information\n"), 0600)).Required()

	t.Run("loads with schema columns", func(t *testing.T) {
		source, err := config.NewClaimsForTest(path, ";").Configure(ctx, schema.RequiredColumns())
		gt.NoError(t, err).Required()
		gt.Number(t, source.Count()).Equal(1)
	})

	t.Run("missing AI column", func(t *testing.T) {
		wide := &domainConfig.FormSchema{
			Fields: []domainConfig.FieldDefinition{{ID: "reasoning", AIColumn: "ai_reasoning"}},
		}
		_, err := config.NewClaimsForTest(path, ";").Configure(ctx, wide.RequiredColumns())
		gt.Value(t, err).NotNil()
	})

	t.Run("multi-character delimiter", func(t *testing.T) {
		_, err := config.NewClaimsForTest(path, ";;").Configure(ctx, nil)
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})
}
