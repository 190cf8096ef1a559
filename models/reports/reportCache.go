package reports

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mmdatafocus/pos_backend/config"
	"github.com/mmdatafocus/pos_backend/utils"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer trace.Tracer = otel.Tracer("pos_backend/reports")

// SetTracer swaps the tracer used for report spans.
func SetTracer(t trace.Tracer) {
	if t != nil {
		tracer = t
	}
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, "reports."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func reportCacheEnabled() bool {
	return config.EnvEnabled("ENABLE_REPORT_CACHE")
}

func reportCacheTTL() time.Duration {
	// Env: REPORT_CACHE_TTL_SECONDS (default 120s)
	ttl := 120
	if v := strings.TrimSpace(os.Getenv("REPORT_CACHE_TTL_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttl = n
		}
	}
	return time.Duration(ttl) * time.Second
}

func reportSlowMs() int64 {
	// Env: REPORT_SLOW_MS (default 500ms)
	ms := int64(500)
	if v := strings.TrimSpace(os.Getenv("REPORT_SLOW_MS")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			ms = n
		}
	}
	return ms
}

func logSlowReport(ctx context.Context, name string, started time.Time, extra map[string]any) {
	d := time.Since(started)
	if d.Milliseconds() < reportSlowMs() {
		return
	}
	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	config.GetLogger().WithFields(logrus.Fields{
		"report":         name,
		"ms":             d.Milliseconds(),
		"correlation_id": cid,
		"extra":          extra,
	}).Warn("slow report")
}

func cacheKey(name string, parts ...any) string {
	key := "Report:" + name
	for _, p := range parts {
		if t, ok := p.(time.Time); ok {
			p = t.UTC().Format(time.RFC3339Nano)
		}
		key += ":" + fmt.Sprint(p)
	}
	return key
}

// cached serves load through redis when ENABLE_REPORT_CACHE is on.
// Cache failures fall through to load.
func cached[T any](ctx context.Context, key string, load func() (T, error)) (T, error) {
	if !reportCacheEnabled() {
		return load()
	}
	var result T
	if ok, err := config.GetRedisObject(key, &result); err == nil && ok {
		return result, nil
	} else if err != nil {
		config.LogError(config.GetLogger(), "Reports", "cached", "cache read failed", key, err)
	}
	result, err := load()
	if err != nil {
		return result, err
	}
	if err := config.SetRedisObject(key, result, reportCacheTTL()); err != nil {
		config.LogError(config.GetLogger(), "Reports", "cached", "cache write failed", key, err)
	}
	return result, nil
}

func validateRange(start time.Time, end time.Time) error {
	if start.After(end) {
		return utils.ErrInvalidRange
	}
	return nil
}
