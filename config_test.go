package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Options(t *testing.T) {
	cfg := Config{
		CollectInterval: time.Minute,
		Tags:            map[string]string{"env": "prod"},
		IgnorePatterns:  []string{`golang\.heap\.`, `^tmp`},
	}
	opts, err := cfg.Options()
	require.NoError(t, err)

	r := NewRegistry(append(opts, WithLogger(NewNoopLogger()))...)
	t.Cleanup(r.StopCollectTimer)

	assert.Equal(t, time.Minute, r.cfg.collectInterval)
	assert.Equal(t, map[string]string{"env": "prod"}, r.Tags())
	assert.True(t, r.ignored("golang.heap.allocations.total"))
	assert.True(t, r.ignored("tmp.value"))
	assert.False(t, r.ignored("golang.goroutines"))
	assert.False(t, r.ignored("app.golang.heap.x"))
}

func TestConfig_OptionsErrors(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want string
	}{
		{name: "negative_interval", cfg: Config{CollectInterval: -time.Second}, want: "must not be negative"},
		{name: "bad_pattern", cfg: Config{IgnorePatterns: []string{"ok", "("}}, want: `invalid ignore pattern "("`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts, err := tc.cfg.Options()
			require.Error(t, err)
			assert.Nil(t, opts)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestConfig_ZeroValueIsValid(t *testing.T) {
	opts, err := Config{}.Options()
	require.NoError(t, err)
	r := NewRegistry(append(opts, WithLogger(NewNoopLogger()))...)
	assert.Nil(t, r.timer)
	assert.Empty(t, r.Tags())
}
