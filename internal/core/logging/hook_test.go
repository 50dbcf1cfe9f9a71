package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestContextHook_Run(t *testing.T) {
	tests := []struct {
		name      string
		setupCtx  func() context.Context
		wantKeys  []string
		wantEmpty []string
	}{
		{
			name: "identity and task_id",
			setupCtx: func() context.Context {
				ctx := context.Background()
				ctx = WithIdentity(ctx, "ann@example.com")
				ctx = WithTaskID(ctx, "k3j9x0aa")
				return ctx
			},
			wantKeys: []string{"identity", "task_id"},
		},
		{
			name: "only identity",
			setupCtx: func() context.Context {
				return WithIdentity(context.Background(), "ann@example.com")
			},
			wantKeys:  []string{"identity"},
			wantEmpty: []string{"task_id"},
		},
		{
			name: "only task_id",
			setupCtx: func() context.Context {
				return WithTaskID(context.Background(), "k3j9x0aa")
			},
			wantKeys:  []string{"task_id"},
			wantEmpty: []string{"identity"},
		},
		{
			name:      "no context values",
			setupCtx:  context.Background,
			wantEmpty: []string{"identity", "task_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			ctx := tt.setupCtx()

			logger := zerolog.New(&buf).Hook(ContextHook{})
			logger.Info().Ctx(ctx).Msg("test")

			var logEntry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
				t.Fatalf("failed to parse log: %v", err)
			}

			for _, key := range tt.wantKeys {
				if _, ok := logEntry[key]; !ok {
					t.Errorf("expected %s to be present in log", key)
				}
			}

			for _, key := range tt.wantEmpty {
				if _, ok := logEntry[key]; ok {
					t.Errorf("expected %s to be absent from log", key)
				}
			}
		})
	}
}
