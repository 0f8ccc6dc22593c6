// Package logger expone un zap.Logger global con loggers scoped por request.
//
// Inicialización (una vez en main):
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "vaiki-api"})
//	defer logger.Sync()
//
// En handlers/services:
//
//	log := logger.From(r.Context())
//	log.Info("playback url issued", logger.Slug(slug), logger.Expires(res.ExpiresAt))
//
// Las firmas, URLs firmadas y el material de clave nunca se loguean.
package logger
