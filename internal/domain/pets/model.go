package pets

import (
	"strings"
	"time"
)

// Species define las especies soportadas.
// @Enum DOG, CAT, BIRD, SMALL_MAMMAL, REPTILE, FISH, OTHER
type Species string

const (
	SpeciesDog         Species = "DOG"
	SpeciesCat         Species = "CAT"
	SpeciesBird        Species = "BIRD"
	SpeciesSmallMammal Species = "SMALL_MAMMAL"
	SpeciesReptile     Species = "REPTILE"
	SpeciesFish        Species = "FISH"
	SpeciesOther       Species = "OTHER"
)

var allSpecies = []Species{
	SpeciesDog,
	SpeciesCat,
	SpeciesBird,
	SpeciesSmallMammal,
	SpeciesReptile,
	SpeciesFish,
	SpeciesOther,
}

// ParseSpecies acepta el valor canónico o su forma en minúsculas ("small_mammal").
func ParseSpecies(s string) (Species, bool) {
	v := Species(strings.ToUpper(strings.TrimSpace(s)))
	for _, sp := range allSpecies {
		if sp == v {
			return sp, true
		}
	}
	return "", false
}

// Label devuelve el texto para UI ("small mammal").
func (s Species) Label() string {
	return strings.ToLower(strings.ReplaceAll(string(s), "_", " "))
}

// Sex define el sexo de la mascota.
// @Enum MALE, FEMALE, UNKNOWN
type Sex string

const (
	SexMale    Sex = "MALE"
	SexFemale  Sex = "FEMALE"
	SexUnknown Sex = "UNKNOWN"
)

func ParseSex(s string) (Sex, bool) {
	switch Sex(strings.ToUpper(strings.TrimSpace(s))) {
	case SexMale:
		return SexMale, true
	case SexFemale:
		return SexFemale, true
	case SexUnknown, "":
		return SexUnknown, true
	default:
		return "", false
	}
}

// DefaultBreed se usa cuando el perfil llega sin raza.
const DefaultBreed = "Mixed"

// Pet representa el perfil de una mascota.
// Weight = 0 significa "no registrado".
type Pet struct {
	ID string `json:"id"`

	Name    string  `json:"name"`
	Species Species `json:"type"`
	Breed   string  `json:"breed"`
	Sex     Sex     `json:"sex"`

	BirthDate time.Time `json:"birthDate"`
	Weight    float64   `json:"weight"`

	ProfilePicture string `json:"profilePicture,omitempty"`
	Notes          string `json:"notes,omitempty"`

	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Clone devuelve una copia sin punteros compartidos.
func (p Pet) Clone() Pet {
	out := p
	if p.UpdatedAt != nil {
		t := *p.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}

// AvatarFallback son las dos primeras letras del nombre en mayúsculas ("MA" para Max).
func AvatarFallback(name string) string {
	r := []rune(strings.TrimSpace(name))
	if len(r) > 2 {
		r = r[:2]
	}
	return strings.ToUpper(string(r))
}
