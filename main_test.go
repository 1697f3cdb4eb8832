package docuquery

import (
	"context"
	"log"
	"testing"

	"github.com/docuquery/docuquery/helper"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

var dbPort string

func TestMain(m *testing.M) {
	var teardown func(ctx context.Context, opts ...testcontainers.TerminateOption) error
	var err error
	teardown, dbPort, err = helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("error starting postgres container: %v", err)
	}

	m.Run()

	if teardown != nil && teardown(context.Background()) != nil {
		log.Fatalf("error tearing down postgres container: %v", err)
	}
}

func initDocuQuery(t *testing.T) *DocuQuery {
	helper.SetTestDatabaseConfigEnvs(t, dbPort)
	dbConfig, err := helper.NewDatabaseConfiguration()
	require.NoError(t, err, "failed to create database configuration")

	dq, err := NewDocuQuery(dbConfig, 3, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { dq.Close() })

	return dq
}
