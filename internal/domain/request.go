package domain

import "time"

// RequestStatus enumerates lifecycle states for a visitor request.
type RequestStatus string

const (
	RequestStatusPending RequestStatus = "PENDING"
	RequestStatusDone    RequestStatus = "DONE"
)

// Valid reports whether the status is a known value.
func (s RequestStatus) Valid() bool {
	return s == RequestStatusPending || s == RequestStatusDone
}

// CanTransitionTo reports whether moving from s to next is allowed. Pending -> Done is the
// only transition.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	return s == RequestStatusPending && next == RequestStatusDone
}

// Label is the display text for the status.
func (s RequestStatus) Label() string {
	if s == RequestStatusDone {
		return "Darshan Done"
	}
	return "Pending"
}

// Request is the aggregate for a visitor pass.
type Request struct {
	ID                string
	SubmitterIdentity string
	Name              string
	Phone             string
	OptionalEmail     string
	GuestCount        int
	Details           CategoryDetails
	PreferredDate     Date
	PreferredTimeSlot TimeSlot
	SubmittedAt       time.Time
	Status            RequestStatus
	EntryGate         string
}

// Category returns the category carried by the request's details.
func (r *Request) Category() Category {
	if r.Details == nil {
		return ""
	}
	return r.Details.Category()
}

// ReferenceName is the referring trustee for VIP (Reference) requests, empty otherwise.
func (r *Request) ReferenceName() string {
	if d, ok := r.Details.(ReferenceDetails); ok {
		return d.ReferenceName
	}
	return ""
}

// VastraCount is the number of vastra recipients, zero outside VIP (Vastra).
func (r *Request) VastraCount() int {
	if d, ok := r.Details.(VastraDetails); ok {
		return len(d.RecipientNames)
	}
	return 0
}

// VastraRecipientNames returns a copy of the recipient names.
func (r *Request) VastraRecipientNames() []string {
	if d, ok := r.Details.(VastraDetails); ok {
		return append([]string{}, d.RecipientNames...)
	}
	return []string{}
}

// Clone returns a deep copy so callers never share slices with the store.
func (r Request) Clone() Request {
	if d, ok := r.Details.(VastraDetails); ok {
		r.Details = VastraDetails{RecipientNames: append([]string{}, d.RecipientNames...)}
	}
	return r
}
