package dto

import (
	"fmt"
	"time"

	"github.com/spec-kit/darshan-pass-service/internal/domain"
	"github.com/spec-kit/darshan-pass-service/internal/validation"
)

// TimeParts is the picker form of a time slot.
type TimeParts struct {
	Hour   int    `json:"hour" validate:"min=0,max=99"`
	Minute int    `json:"minute" validate:"min=0,max=99"`
	Period string `json:"period" validate:"max=2"`
}

// SubmitRequest payload. PreferredTime wins over PreferredTimeParts when both are sent.
type SubmitRequest struct {
	Name                 string     `json:"name" validate:"max=120"`
	Phone                string     `json:"phone" validate:"max=32"`
	OptionalEmail        string     `json:"optional_email" validate:"max=254"`
	GuestCount           int        `json:"guest_count" validate:"max=1000"`
	Category             string     `json:"category" validate:"max=32"`
	ReferenceName        string     `json:"reference_name" validate:"max=120"`
	VastraCount          int        `json:"vastra_count" validate:"max=1000"`
	VastraRecipientNames []string   `json:"vastra_recipient_names" validate:"max=1000,dive,max=120"`
	PreferredDate        string     `json:"preferred_date" validate:"max=32"`
	PreferredTime        string     `json:"preferred_time" validate:"max=16"`
	PreferredTimeParts   *TimeParts `json:"preferred_time_parts"`
}

// Candidate converts the payload for the request validator. The phone loses every non-digit.
func (r SubmitRequest) Candidate() validation.Candidate {
	preferredTime := r.PreferredTime
	if preferredTime == "" && r.PreferredTimeParts != nil {
		p := r.PreferredTimeParts
		preferredTime = fmt.Sprintf("%02d:%02d %s", p.Hour, p.Minute, p.Period)
	}
	return validation.Candidate{
		Name:                 r.Name,
		Phone:                domain.NormalizePhone(r.Phone),
		OptionalEmail:        r.OptionalEmail,
		GuestCount:           r.GuestCount,
		Category:             r.Category,
		ReferenceName:        r.ReferenceName,
		VastraCount:          r.VastraCount,
		VastraRecipientNames: r.VastraRecipientNames,
		PreferredDate:        r.PreferredDate,
		PreferredTime:        preferredTime,
	}
}

// RequestResponse renders a stored request.
type RequestResponse struct {
	ID                   string               `json:"id"`
	SubmitterIdentity    string               `json:"submitter_identity"`
	Name                 string               `json:"name"`
	Phone                string               `json:"phone"`
	OptionalEmail        string               `json:"optional_email,omitempty"`
	GuestCount           int                  `json:"guest_count"`
	Category             domain.Category      `json:"category"`
	CategoryLabel        string               `json:"category_label"`
	IsVIP                bool                 `json:"is_vip"`
	ReferenceName        string               `json:"reference_name,omitempty"`
	VastraCount          int                  `json:"vastra_count"`
	VastraRecipientNames []string             `json:"vastra_recipient_names"`
	PreferredDate        string               `json:"preferred_date"`
	PreferredTime        string               `json:"preferred_time"`
	SubmittedAt          time.Time            `json:"submitted_at"`
	Status               domain.RequestStatus `json:"status"`
	StatusLabel          string               `json:"status_label"`
	EntryGate            string               `json:"entry_gate"`
}

// NewRequestResponse renders r.
func NewRequestResponse(r *domain.Request) RequestResponse {
	category := r.Category()
	return RequestResponse{
		ID:                   r.ID,
		SubmitterIdentity:    r.SubmitterIdentity,
		Name:                 r.Name,
		Phone:                r.Phone,
		OptionalEmail:        r.OptionalEmail,
		GuestCount:           r.GuestCount,
		Category:             category,
		CategoryLabel:        category.Label(),
		IsVIP:                category == domain.CategoryVipVastra || category == domain.CategoryVipReference,
		ReferenceName:        r.ReferenceName(),
		VastraCount:          r.VastraCount(),
		VastraRecipientNames: r.VastraRecipientNames(),
		PreferredDate:        r.PreferredDate.String(),
		PreferredTime:        r.PreferredTimeSlot.String(),
		SubmittedAt:          r.SubmittedAt,
		Status:               r.Status,
		StatusLabel:          r.Status.Label(),
		EntryGate:            r.EntryGate,
	}
}

// RemoveResponse reports whether a delete removed anything.
type RemoveResponse struct {
	ID      string `json:"id"`
	Removed bool   `json:"removed"`
}
