package domain

import "errors"

// Errores del core. Los adapters los traducen a mensajes de usuario;
// aca solo importa la semantica.
var (
	// ErrInvalidSchedule: se pidio un timer con expiracion en el pasado
	// (mas alla de la tolerancia). El caller deberia despachar directo.
	ErrInvalidSchedule = errors.New("timer expiry is in the past")

	// ErrInvalidTransition: comando contra una entidad en estado terminal
	// o incompatible (ej: votar un scrim ya confirmado).
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrIntervalOverlap: join de practice con un intervalo todavia abierto.
	// Se trata como join duplicado; el caller lo puede ignorar.
	ErrIntervalOverlap = errors.New("member already has an open practice interval")

	// ErrOrderingViolation: gameday construido con la ventana de votacion
	// fuera de [.., starts_at]. Se rechaza en la creacion.
	ErrOrderingViolation = errors.New("voting window outside gameday bounds")
)
