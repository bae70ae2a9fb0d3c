package repository

import (
	"fmt"
	"time"

	"github.com/spec-kit/darshan-pass-service/internal/domain"
)

// requestRecord is the persisted shape of a request. The category details are flattened so
// the blob stays readable by other tools.
type requestRecord struct {
	ID                   string               `json:"id"`
	SubmitterIdentity    string               `json:"submitterIdentity"`
	Name                 string               `json:"name"`
	Phone                string               `json:"phone"`
	OptionalEmail        string               `json:"optionalEmail"`
	GuestCount           int                  `json:"guests"`
	Category             domain.Category      `json:"category"`
	ReferenceName        string               `json:"referenceName"`
	VastraCount          int                  `json:"vastraCount"`
	VastraRecipientNames []string             `json:"vastraRecipients"`
	PreferredDate        string               `json:"date"`
	PreferredTimeSlot    string               `json:"timeSlot"`
	SubmittedAt          time.Time            `json:"submittedAt"`
	Status               domain.RequestStatus `json:"status"`
	EntryGate            string               `json:"entryGate"`
}

func toRecord(r *domain.Request) requestRecord {
	return requestRecord{
		ID:                   r.ID,
		SubmitterIdentity:    r.SubmitterIdentity,
		Name:                 r.Name,
		Phone:                r.Phone,
		OptionalEmail:        r.OptionalEmail,
		GuestCount:           r.GuestCount,
		Category:             r.Category(),
		ReferenceName:        r.ReferenceName(),
		VastraCount:          r.VastraCount(),
		VastraRecipientNames: r.VastraRecipientNames(),
		PreferredDate:        r.PreferredDate.String(),
		PreferredTimeSlot:    r.PreferredTimeSlot.String(),
		SubmittedAt:          r.SubmittedAt,
		Status:               r.Status,
		EntryGate:            r.EntryGate,
	}
}

func (rec requestRecord) toDomain() (domain.Request, error) {
	date, err := domain.ParseDate(rec.PreferredDate)
	if err != nil {
		return domain.Request{}, fmt.Errorf("request %s: %w", rec.ID, err)
	}
	slot, err := domain.ParseTimeSlot(rec.PreferredTimeSlot)
	if err != nil {
		return domain.Request{}, fmt.Errorf("request %s: %w", rec.ID, err)
	}

	var details domain.CategoryDetails
	switch rec.Category {
	case domain.CategoryVipVastra:
		if rec.VastraCount != len(rec.VastraRecipientNames) {
			return domain.Request{}, fmt.Errorf("request %s: vastra count %d does not match %d names",
				rec.ID, rec.VastraCount, len(rec.VastraRecipientNames))
		}
		details = domain.VastraDetails{RecipientNames: append([]string{}, rec.VastraRecipientNames...)}
	case domain.CategoryVipReference:
		details = domain.ReferenceDetails{ReferenceName: rec.ReferenceName}
	case domain.CategoryMedical:
		details = domain.MedicalDetails{}
	case domain.CategorySeniorCitizen:
		details = domain.SeniorCitizenDetails{}
	default:
		return domain.Request{}, fmt.Errorf("request %s: unknown category %q", rec.ID, rec.Category)
	}

	if !rec.Status.Valid() {
		return domain.Request{}, fmt.Errorf("request %s: unknown status %q", rec.ID, rec.Status)
	}

	return domain.Request{
		ID:                rec.ID,
		SubmitterIdentity: rec.SubmitterIdentity,
		Name:              rec.Name,
		Phone:             rec.Phone,
		OptionalEmail:     rec.OptionalEmail,
		GuestCount:        rec.GuestCount,
		Details:           details,
		PreferredDate:     date,
		PreferredTimeSlot: slot,
		SubmittedAt:       rec.SubmittedAt,
		Status:            rec.Status,
		EntryGate:         rec.EntryGate,
	}, nil
}
