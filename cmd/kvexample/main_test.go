package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/leafsii/kvkeywords/pkg/facade"
	"github.com/leafsii/kvkeywords/pkg/kv/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPrintsRankedMembers(t *testing.T) {
	conn := facade.NewConnection(memory.NewStore(), facade.ConnectOptions{Host: "localhost"})
	defer conn.Close()

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), facade.New(nil), conn, "user:info:1", &out))
	assert.Equal(t, "[name age email phone]\n", out.String())
}
