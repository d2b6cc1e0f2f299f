package interceptor

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	otelinfra "checkout-server/internal/infrastructure/observability/otel"
)

func TestLoggingInterceptor(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantLevel string
		wantCode  string
	}{
		{
			name:      "正常系",
			wantLevel: "DEBUG",
			wantCode:  "OK",
		},
		{
			name:      "異常系",
			err:       status.Error(codes.NotFound, "unknown service"),
			wantLevel: "ERROR",
			wantCode:  "NotFound",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := otelinfra.NewLoggerWithWriter(noop.NewTracerProvider().Tracer("test"), &buf)

			info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
			resp, err := LoggingInterceptor(logger)(context.Background(), "req", info,
				func(ctx context.Context, req interface{}) (interface{}, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return "resp", nil
				},
			)

			if tt.err != nil {
				assert.Equal(t, tt.err, err)
				assert.Nil(t, resp)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "resp", resp)
			}

			var entry otelinfra.LogEntry
			require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
			assert.Equal(t, tt.wantLevel, entry.Level)
			assert.Equal(t, "/grpc.health.v1.Health/Check", entry.Fields["method"])
			assert.Equal(t, tt.wantCode, entry.Fields["code"])
		})
	}
}
