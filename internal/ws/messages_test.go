package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStampSender(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
		check   func(t *testing.T, m map[string]any)
	}{
		{
			name: "flat object",
			raw:  `{"move":"left","x":3}`,
			check: func(t *testing.T, m map[string]any) {
				assert.Equal(t, "left", m["move"])
				assert.Equal(t, float64(3), m["x"])
				assert.Equal(t, "conn-1", m["sender"])
			},
		},
		{
			name: "nested payload survives verbatim",
			raw:  `{"state":{"pos":[1,2],"hp":10},"seq":7}`,
			check: func(t *testing.T, m map[string]any) {
				state, ok := m["state"].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, float64(10), state["hp"])
				assert.Equal(t, "conn-1", m["sender"])
			},
		},
		{
			name: "client-set sender is overwritten",
			raw:  `{"sender":"spoofed"}`,
			check: func(t *testing.T, m map[string]any) {
				assert.Equal(t, "conn-1", m["sender"])
			},
		},
		{
			name: "null payload becomes a bare stamp",
			raw:  `null`,
			check: func(t *testing.T, m map[string]any) {
				assert.Equal(t, map[string]any{"sender": "conn-1"}, m)
			},
		},
		{name: "array", raw: `[1,2,3]`, wantErr: true},
		{name: "scalar", raw: `42`, wantErr: true},
		{name: "garbage", raw: `not json`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := stampSender([]byte(tt.raw), "conn-1")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			var m map[string]any
			require.NoError(t, json.Unmarshal(out, &m))
			tt.check(t, m)
		})
	}
}
