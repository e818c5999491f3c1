// Package logger provides a singleton Zap logger with context-based scoping.
//
// # Design Decisions
//
//   - Singleton: una sola instancia global inicializada con Init().
//   - Context Scoping: cada request lleva su logger "scoped" (request_id, provider,
//     protocol) inyectado por el middleware WithLogging.
//   - Environments: "dev" usa consola con colores, "prod" usa JSON.
//   - Secretos: nunca loguear tokens, verifiers ni secrets. Los nonces solo como
//     prefijo via NoncePrefix().
//
// # Usage
//
// Inicialización (una vez en cmd/accounts):
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
//	defer logger.Sync()
//
// En controllers/handshakes:
//
//	log := logger.From(ctx).With(logger.Protocol("oauth1"), logger.Provider("twitter"))
//	log.Info("handshake initiated", logger.Phase("initiate"))
package logger
