package listings

import "time"

type ListingCreated struct {
	ListingID ListingID
	Owner     OwnerID
	Type      ListingType
	Status    Status
	At        time.Time
}

func (e ListingCreated) EventName() string     { return "listing.created" }
func (e ListingCreated) AggregateID() string   { return string(e.ListingID) }
func (e ListingCreated) OccurredAt() time.Time { return e.At }

type ListingStatusChanged struct {
	ListingID ListingID
	Type      ListingType
	From      Status
	To        Status
	At        time.Time
}

func (e ListingStatusChanged) EventName() string     { return "listing.status_changed" }
func (e ListingStatusChanged) AggregateID() string   { return string(e.ListingID) }
func (e ListingStatusChanged) OccurredAt() time.Time { return e.At }

type ListingDeleted struct {
	ListingID ListingID
	Owner     OwnerID
	At        time.Time
}

func (e ListingDeleted) EventName() string     { return "listing.deleted" }
func (e ListingDeleted) AggregateID() string   { return string(e.ListingID) }
func (e ListingDeleted) OccurredAt() time.Time { return e.At }
