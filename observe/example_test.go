package observe_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/poolops/observe"
)

func ExampleNewObserver() {
	cfg := observe.Config{
		ServiceName: "booking-worker",
		Version:     "1.0.0",
		Tracing:     observe.TracingConfig{Enabled: true, Exporter: "none"},
		Metrics:     observe.MetricsConfig{Enabled: false},
		Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
	}

	ctx := context.Background()
	obs, err := observe.NewObserver(ctx, cfg)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	defer func() {
		_ = obs.Shutdown(ctx)
	}()

	fmt.Println("Observer created successfully")
	// Output:
	// Observer created successfully
}

func ExampleNewObserver_validation() {
	// Missing service name triggers validation error
	cfg := observe.Config{
		ServiceName: "", // Empty - will fail validation
	}

	ctx := context.Background()
	_, err := observe.NewObserver(ctx, cfg)
	if errors.Is(err, observe.ErrMissingServiceName) {
		fmt.Println("Caught: missing service name")
	}
	// Output:
	// Caught: missing service name
}

func ExampleConfig_Validate() {
	cfg := observe.Config{
		ServiceName: "booking-worker",
		Version:     "1.0.0",
		Tracing: observe.TracingConfig{
			Enabled:   true,
			Exporter:  "stdout",
			SamplePct: 0.5, // 50% sampling
		},
		Metrics: observe.MetricsConfig{
			Enabled:  true,
			Exporter: "prometheus",
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   "info",
		},
	}

	if err := cfg.Validate(); err != nil {
		fmt.Println("Invalid:", err)
	} else {
		fmt.Println("Configuration is valid")
	}
	// Output:
	// Configuration is valid
}

func ExampleOpMeta_SpanName() {
	meta := observe.OpMeta{
		Op:        "book_slot",
		AccountID: 42,
	}
	fmt.Println(meta.SpanName())
	// Output:
	// pool.op.book_slot
}

func ExampleOpMeta_Validate() {
	// Valid metadata
	meta := observe.OpMeta{Op: "book_slot", AccountID: 42}
	if err := meta.Validate(); err != nil {
		fmt.Println("Invalid:", err)
	} else {
		fmt.Println("Valid operation metadata")
	}

	// Invalid - missing operation name
	meta2 := observe.OpMeta{AccountID: 42}
	if errors.Is(meta2.Validate(), observe.ErrMissingOpName) {
		fmt.Println("Caught: missing operation name")
	}
	// Output:
	// Valid operation metadata
	// Caught: missing operation name
}

func ExampleNewLoggerWithWriter() {
	var buf bytes.Buffer
	logger := observe.NewLoggerWithWriter("info", &buf)

	ctx := context.Background()
	logger.Info(ctx, "sweeper started", observe.Field{Key: "interval", Value: "30s"})

	// Output contains JSON with timestamp, level, msg, and interval field
	fmt.Println("Logged message contains 'sweeper started':", bytes.Contains(buf.Bytes(), []byte("sweeper started")))
	// Output:
	// Logged message contains 'sweeper started': true
}

func ExampleLogger_with() {
	var buf bytes.Buffer
	logger := observe.NewLoggerWithWriter("info", &buf)

	// Create a lease-scoped logger
	leaseLogger := logger.With(
		observe.Field{Key: "account_id", Value: 42},
		observe.Field{Key: "lease_id", Value: "f3b9"},
	)

	ctx := context.Background()
	leaseLogger.Info(ctx, "operation started")

	output := buf.String()
	fmt.Println("Contains account_id:", bytes.Contains([]byte(output), []byte("account_id")))
	fmt.Println("Contains lease_id:", bytes.Contains([]byte(output), []byte("lease_id")))
	// Output:
	// Contains account_id: true
	// Contains lease_id: true
}

func ExampleMiddleware_Wrap() {
	ctx := context.Background()

	// Create observer with disabled exporters for example
	cfg := observe.Config{
		ServiceName: "booking-worker",
		Tracing:     observe.TracingConfig{Enabled: true, Exporter: "none"},
		Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "none"},
		Logging:     observe.LoggingConfig{Enabled: false},
	}
	obs, _ := observe.NewObserver(ctx, cfg)
	defer func() {
		_ = obs.Shutdown(ctx)
	}()

	// Create middleware
	mw, _ := observe.MiddlewareFromObserver(obs)

	// Define the guarded operation
	op := func(ctx context.Context, meta observe.OpMeta) error {
		return nil
	}

	// Wrap with observability
	wrapped := mw.Wrap(op)

	// Execute - automatically traced, metered, and logged
	err := wrapped(ctx, observe.OpMeta{
		Op:        "book_slot",
		AccountID: 42,
		Session:   1,
	})

	if err != nil {
		fmt.Println("Error:", err)
	} else {
		fmt.Println("Operation succeeded")
	}
	// Output:
	// Operation succeeded
}

func ExampleParseLogLevel() {
	levels := []string{"debug", "info", "warn", "error", "unknown"}
	for _, s := range levels {
		level := observe.ParseLogLevel(s)
		fmt.Printf("%s -> %s\n", s, level)
	}
	// Output:
	// debug -> debug
	// info -> info
	// warn -> warn
	// error -> error
	// unknown -> info
}
