package model

import "time"

// Workstation is a staffed point of service (bar till, cloakroom, DJ desk)
// that venue objects can be linked to.
type Workstation struct {
    ID        string    `json:"id"`
    Name      string    `json:"name"`
    CreatedAt time.Time `json:"createdAt"`
    UpdatedAt time.Time `json:"updatedAt"`
}

// StorageLocation is a named place where stock is kept.  Names are unique.
type StorageLocation struct {
    ID          string    `json:"id"`
    Name        string    `json:"name"`
    Description *string   `json:"description"`
    CreatedAt   time.Time `json:"createdAt"`
    UpdatedAt   time.Time `json:"updatedAt"`
}
