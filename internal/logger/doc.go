// Package logger provides component-scoped structured logging backed by
// zerolog.
//
// Features:
//   - Levels TRACE, DEBUG, INFO, WARN and ERROR
//   - Per-component enable switches
//   - Text, JSON and color output
//
// Usage:
//
//	log := logger.WithComponent(logger.ComponentCipher)
//	log.Debug("Located decipher function", map[string]interface{}{
//		"name": "XY",
//	})
//
//	config := logger.DefaultConfig()
//	config.Level = logger.DEBUG
//	config.Format = logger.FormatJSON
//	config.Components[logger.ComponentCipher] = true
//	logger.SetGlobalLogger(logger.New(config))
package logger
