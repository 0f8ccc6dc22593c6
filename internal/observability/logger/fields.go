package logger

import (
	"time"

	"go.uber.org/zap"
)

// ─── HTTP ───

func RequestID(v string) zap.Field       { return zap.String("request_id", v) }
func Method(v string) zap.Field          { return zap.String("method", v) }
func Path(v string) zap.Field            { return zap.String("path", v) }
func Status(v int) zap.Field             { return zap.Int("status", v) }
func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }
func Bytes(v int) zap.Field              { return zap.Int("bytes", v) }
func ClientIP(v string) zap.Field        { return zap.String("client_ip", v) }
func UserAgent(v string) zap.Field       { return zap.String("user_agent", v) }

// ─── Sistema ───

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field        { return zap.String("op", v) }
func Layer(v string) zap.Field     { return zap.String("layer", v) }
func Err(err error) zap.Field      { return zap.Error(err) }
func Count(v int) zap.Field        { return zap.Int("count", v) }

// ─── Catálogo / firma ───
//
// No existe helper para la firma ni para la URL firmada: no se loguean.

// Slug identifica la película.
func Slug(v string) zap.Field { return zap.String("slug", v) }

// KeyPairID es público (viaja en cada URL), se puede loguear.
func KeyPairID(v string) zap.Field { return zap.String("key_pair_id", v) }

// ObjectPath es el path del objeto en la distribución, sin query.
func ObjectPath(v string) zap.Field { return zap.String("object_path", v) }

// Expires es el instante de expiración firmado.
func Expires(v time.Time) zap.Field { return zap.Int64("expires", v.Unix()) }

// Driver indica el backend de store/cache.
func Driver(v string) zap.Field { return zap.String("driver", v) }

// ─── Genéricos ───

func String(key, v string) zap.Field    { return zap.String(key, v) }
func Int(key string, v int) zap.Field   { return zap.Int(key, v) }
func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }
func Key(v string) zap.Field            { return zap.String("key", v) }
func Any(key string, v any) zap.Field   { return zap.Any(key, v) }
