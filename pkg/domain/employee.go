package domain

import "time"

type Employee struct {
	ID           string
	Name         string
	Email        string
	Status       string
	LinkDate     time.Time
	Cargo        string
	IDLastDigits string // últimos dígitos del documento de identidad, usados en el reto de atribución
}
