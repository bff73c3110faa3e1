// Package logging provides a minimal logging facade for the DCPE library.
//
// The Logger interface wraps the subset of log/slog used by the scheme so
// applications can plug in their own implementation for testing, redaction,
// or integration with an existing logging system.
//
//	// slog.Default()
//	logger := logging.New(nil)
//
//	// custom handler
//	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})
//	logger = logging.New(slog.New(handler))
//
//	scheme, err := dcpe.NewScheme[float64](dcpe.Config{
//	    Beta:     3,
//	    MaxScale: 10000,
//	    Logger:   logger,
//	})
//
// # Redaction
//
// Key material must never reach a log sink. Mark the attribute instead:
//
//	logger.Debug(ctx, "key generated", logging.Redacted("prf_key"))
//	// prf_key="[redacted]"
//
// # Security Considerations
//
//   - Never log PRF keys, scale factors or plaintext vectors
//   - Nonces and ciphertexts are not secret, but they are bulky; log sizes
//   - Ensure log storage is access-controlled
package logging
