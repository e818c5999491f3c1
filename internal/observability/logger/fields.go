package logger

import (
	"time"

	"go.uber.org/zap"
)

// =================================================================================
// CAMPOS ESTÁNDAR - HTTP
// =================================================================================

// RequestID crea un campo para el ID del request.
func RequestID(v string) zap.Field { return zap.String("request_id", v) }

// Method crea un campo para el método HTTP.
func Method(v string) zap.Field { return zap.String("method", v) }

// Path crea un campo para el path del request.
func Path(v string) zap.Field { return zap.String("path", v) }

// Status crea un campo para el status code HTTP.
func Status(v int) zap.Field { return zap.Int("status", v) }

// DurationMs crea un campo para la duración en milisegundos.
func DurationMs(v int64) zap.Field { return zap.Int64("duration_ms", v) }

// Duration crea un campo para una duración.
func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }

// Bytes crea un campo para los bytes de respuesta.
func Bytes(v int) zap.Field { return zap.Int("bytes", v) }

// ClientIP crea un campo para la IP del cliente.
func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }

// =================================================================================
// CAMPOS ESTÁNDAR - HANDSHAKE
// =================================================================================

// Provider crea un campo para el provider (twitter, google, facebook).
func Provider(v string) zap.Field { return zap.String("provider", v) }

// Protocol crea un campo para la versión de protocolo (oauth1, oauth2).
func Protocol(v string) zap.Field { return zap.String("protocol", v) }

// Phase crea un campo para la fase del handshake (initiate, resume).
func Phase(v string) zap.Field { return zap.String("phase", v) }

// NoncePrefix loguea solo los primeros 8 caracteres del nonce.
func NoncePrefix(nonce string) zap.Field {
	if len(nonce) > 8 {
		nonce = nonce[:8]
	}
	return zap.String("nonce_prefix", nonce)
}

// Endpoint crea un campo para el endpoint del provider (sin query).
func Endpoint(v string) zap.Field { return zap.String("endpoint", v) }

// AccountID crea un campo para el ID de la cuenta local.
func AccountID(v string) zap.Field { return zap.String("account_id", v) }

// =================================================================================
// CAMPOS ESTÁNDAR - SISTEMA
// =================================================================================

// Component crea un campo para el componente/módulo.
func Component(v string) zap.Field { return zap.String("component", v) }

// Op crea un campo para la operación actual.
func Op(v string) zap.Field { return zap.String("op", v) }

// Layer crea un campo para la capa (controller, handshake, repository).
func Layer(v string) zap.Field { return zap.String("layer", v) }

// Err crea un campo para un error.
func Err(err error) zap.Field { return zap.Error(err) }

// String crea un campo string genérico.
func String(key, v string) zap.Field { return zap.String(key, v) }

// Int crea un campo int genérico.
func Int(key string, v int) zap.Field { return zap.Int(key, v) }

// Bool crea un campo bool genérico.
func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }

// Any crea un campo genérico para cualquier tipo.
func Any(key string, v any) zap.Field { return zap.Any(key, v) }
