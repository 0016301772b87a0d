package model

import "time"

// DefaultSlotCapacity is the number of records a library slot holds when
// no capacity is supplied.
const DefaultSlotCapacity = 30

// VinylLibrarySlot is one cubby in the record library grid.  The pair
// (Row, Column) is unique.
type VinylLibrarySlot struct {
    ID        string    `json:"id"`
    Row       int       `json:"row"`
    Column    int       `json:"column"`
    Capacity  int       `json:"capacity"`
    CreatedAt time.Time `json:"createdAt"`
}

// DJSetTrack records that a record was played during a DJ session.
// PlayedAt is stamped by the server when the row is created.
type DJSetTrack struct {
    ID            string    `json:"id"`
    SessionID     string    `json:"sessionId"`
    VinylRecordID string    `json:"vinylRecordId"`
    PlayedAt      time.Time `json:"playedAt"`
}
