package device

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenUsageAccessSettings(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"shell am start -a android.settings.USAGE_ACCESS_SETTINGS -f 0x10000000": "Starting: Intent { act=android.settings.USAGE_ACCESS_SETTINGS }\n",
	}}
	require.NoError(t, NewClient(runner, ClientOptions{}).OpenUsageAccessSettings(context.Background()))
}

func TestOpenAppSettings(t *testing.T) {
	key := "shell am start -a android.settings.APPLICATION_DETAILS_SETTINGS -d package:com.example.mail -f 0x10000000"

	t.Run("started", func(t *testing.T) {
		runner := &fakeRunner{outputs: map[string]string{key: "Starting: Intent { ... }\n"}}
		require.NoError(t, NewClient(runner, ClientOptions{}).OpenAppSettings(context.Background(), "com.example.mail"))
		assert.Equal(t, []string{key}, runner.calls)
	})

	t.Run("activity error", func(t *testing.T) {
		runner := &fakeRunner{outputs: map[string]string{key: "Starting: Intent { ... }\nError: Activity not started, unable to resolve Intent\n"}}
		err := NewClient(runner, ClientOptions{}).OpenAppSettings(context.Background(), "com.example.mail")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Activity not started")
	})
}
