package main

import (
	"testing"

	"invoiceflow/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommands(t *testing.T) {
	root := newRootCmd()

	for _, path := range [][]string{{"serve"}, {"worker"}, {"user", "create"}, {"export"}, {"import"}} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	flag := serve.Flags().Lookup("scheduler")
	require.NotNil(t, flag)
	assert.Equal(t, "true", flag.DefValue)
}

func TestImportRequiresFile(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"import"})
	assert.Error(t, root.Execute())
}

func TestRedisOpt(t *testing.T) {
	opt := redisOpt(&config.Config{RedisAddr: "redis://cache:6380", RedisPassword: "s3cret", RedisDB: 2})
	assert.Equal(t, "cache:6380", opt.Addr)
	assert.Equal(t, "s3cret", opt.Password)
	assert.Equal(t, 2, opt.DB)
}
