// Package logger provides a singleton Zap logger with context-based scoping.
//
// Inicialización (una vez en main.go):
//
//	logger.Init(logger.Config{
//	    Env:   os.Getenv("APP_ENV"),   // "dev" o "prod"
//	    Level: os.Getenv("LOG_LEVEL"), // "debug", "info", "warn", "error"
//	})
//	defer logger.Sync()
//
// En services/adapters (con contexto):
//
//	log := logger.From(ctx)
//	log.Info("stage completed", logger.Stage(stage), logger.UserID(uid))
//
// Sin contexto (fallback al singleton):
//
//	logger.L().Info("server started")
package logger
