package kv

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

// Claves del estado persistido. Cada colección se guarda como un array JSON;
// KeyDeletedPet guarda el snapshot pendiente de deshacer como un único objeto.
const (
	KeyPets         = "pets"
	KeyVaccinations = "vaccinations"
	KeyMedications  = "medications"
	KeyAppointments = "appointments"
	KeyDeletedPet   = "deleted_pet"
)

// Store guarda payloads opacos por clave.
// Load devuelve ErrNotFound si la clave no existe; Delete de una clave inexistente no es error.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, payload []byte) error
	Delete(ctx context.Context, key string) error
}
