package model

// Table is a physical table inside a venue from which patrons submit
// video requests.  Each table carries an opaque code (printed as a QR
// sticker on the table) that patron clients use instead of the raw ID.
//
// Fields:
//  ID      – primary key identifier.
//  VenueID – venue the table belongs to.
//  Number  – visible table number inside the venue.
//  Code    – opaque submission code from the table's QR sticker.
//  Active  – whether the table accepts submissions.
type Table struct {
    ID      uint64 // tables.id
    VenueID uint64 // tables.venue_id
    Number  uint32 // tables.number
    Code    string // tables.code
    Active  bool   // tables.is_active
}
