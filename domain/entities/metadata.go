package entities

import (
	"time"

	"github.com/google/uuid"
)

// Metadata travels with every piece of data that leaves the service
// + ID: unique identifier of the message, consumers use it to drop duplicates
// + City: city which belongs the data
// + Type: helps consumers to recognize what type of data is
// + Stage: component that built the data
// + GeneratedAt: moment in which the data was built
type Metadata struct {
	ID          uuid.UUID `json:"id"`
	City        string    `json:"city"`
	Type        string    `json:"type"`
	Stage       string    `json:"stage"`
	GeneratedAt time.Time `json:"generated_at"`
}

func NewMetadata(city string, dataType string, stage string) Metadata {
	return Metadata{
		ID:          uuid.New(),
		City:        city,
		Type:        dataType,
		Stage:       stage,
		GeneratedAt: time.Now(),
	}
}

func (m Metadata) GetType() string {
	return m.Type
}

func (m Metadata) GetCity() string {
	return m.City
}

func (m Metadata) GetStage() string {
	return m.Stage
}
