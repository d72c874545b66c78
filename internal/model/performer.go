package model

import "time"

// Performer is an artist that can be billed on one or more events.
// The performer↔event relationship lives in the event_performers
// table and is exposed through the repository layer; the struct
// itself carries only the performer's own attributes.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name of the performer.
//  Genre     – musical genre.
//  Biography – free-form biography text.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Performer struct {
	ID        uint64    `json:"id"`         // performers.id
	Name      string    `json:"name"`       // performers.name
	Genre     string    `json:"genre"`      // performers.genre
	Biography string    `json:"biography"`  // performers.biography
	CreatedAt time.Time `json:"created_at"` // performers.created_at
	UpdatedAt time.Time `json:"updated_at"` // performers.updated_at
}
