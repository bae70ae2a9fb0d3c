package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spec-kit/darshan-pass-service/internal/domain"
)

const (
	// EarliestSlotMinutes is 03:30 AM.
	EarliestSlotMinutes = 3*60 + 30
	// LatestSlotMinutes is 09:00 PM.
	LatestSlotMinutes = 21 * 60
	// SlotGranularityMinutes is the step between selectable minutes.
	SlotGranularityMinutes = 5
	// DefaultMaxAdvanceDays is how far ahead a visit may be booked.
	DefaultMaxAdvanceDays = 2
	phoneDigits           = 10
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Candidate holds raw submission fields after the input boundary stripped the phone.
type Candidate struct {
	Name                 string
	Phone                string
	OptionalEmail        string
	GuestCount           int
	Category             string
	ReferenceName        string
	VastraCount          int
	VastraRecipientNames []string
	PreferredDate        string
	PreferredTime        string
}

// Validator enforces field and cross-field rules on submissions.
type Validator struct {
	now            func() time.Time
	location       *time.Location
	maxAdvanceDays int
}

// Option customizes a Validator.
type Option func(*Validator)

// WithClock sets the clock used to evaluate the date window.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		if now != nil {
			v.now = now
		}
	}
}

// WithLocation sets the location in which "today" is evaluated.
func WithLocation(loc *time.Location) Option {
	return func(v *Validator) {
		if loc != nil {
			v.location = loc
		}
	}
}

// WithMaxAdvanceDays sets the inclusive upper bound of the date window.
func WithMaxAdvanceDays(days int) Option {
	return func(v *Validator) {
		if days >= 0 {
			v.maxAdvanceDays = days
		}
	}
}

// NewValidator builds a Validator.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{now: time.Now, location: time.Local, maxAdvanceDays: DefaultMaxAdvanceDays}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Today returns the current calendar day in the validator's location.
func (v *Validator) Today() domain.Date {
	return domain.DateOf(v.now(), v.location)
}

// Validate checks the candidate and returns a request populated with every user-supplied
// field. Identity, status, id and timestamps are left for the caller to assign.
func (v *Validator) Validate(c Candidate) (*domain.Request, error) {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return nil, fail(KindRequired, FieldName, "name is required")
	}

	if err := checkPhone(c.Phone); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(c.OptionalEmail)
	if email != "" && !emailPattern.MatchString(strings.ToLower(email)) {
		return nil, fail(KindInvalidFormat, FieldOptionalEmail, "optional email is not a valid address")
	}

	if c.GuestCount < 1 {
		return nil, fail(KindOutOfRange, FieldGuestCount, "guest count must be at least 1")
	}

	details, err := buildDetails(c)
	if err != nil {
		return nil, err
	}

	date, err := v.checkDate(c.PreferredDate)
	if err != nil {
		return nil, err
	}

	slot, err := checkTimeSlot(c.PreferredTime)
	if err != nil {
		return nil, err
	}

	return &domain.Request{
		Name:              name,
		Phone:             c.Phone,
		OptionalEmail:     email,
		GuestCount:        c.GuestCount,
		Details:           details,
		PreferredDate:     date,
		PreferredTimeSlot: slot,
	}, nil
}

func checkPhone(phone string) error {
	if phone == "" {
		return fail(KindRequired, FieldPhone, "phone number is required")
	}
	if len(phone) != phoneDigits {
		return fail(KindInvalidFormat, FieldPhone, "phone number must be exactly 10 digits")
	}
	for i := 0; i < len(phone); i++ {
		if phone[i] < '0' || phone[i] > '9' {
			return fail(KindInvalidFormat, FieldPhone, "phone number must contain only digits")
		}
	}
	return nil
}

// buildDetails keeps only the fields valid for the chosen category; the rest are dropped.
func buildDetails(c Candidate) (domain.CategoryDetails, error) {
	if strings.TrimSpace(c.Category) == "" {
		return nil, fail(KindRequired, FieldCategory, "category is required")
	}
	category, ok := domain.ParseCategory(c.Category)
	if !ok {
		return nil, fail(KindInvalidFormat, FieldCategory, fmt.Sprintf("unknown category %q", c.Category))
	}

	switch category {
	case domain.CategoryVipReference:
		ref := strings.TrimSpace(c.ReferenceName)
		if ref == "" {
			return nil, fail(KindRequired, FieldReferenceName, "trustee reference name is required")
		}
		return domain.ReferenceDetails{ReferenceName: ref}, nil
	case domain.CategoryVipVastra:
		return buildVastra(c)
	case domain.CategoryMedical:
		return domain.MedicalDetails{}, nil
	default:
		return domain.SeniorCitizenDetails{}, nil
	}
}

func buildVastra(c Candidate) (domain.CategoryDetails, error) {
	if c.VastraCount < 0 || c.VastraCount > c.GuestCount {
		return nil, fail(KindOutOfRange, FieldVastraCount, "vastra count must be between 0 and the number of guests")
	}
	if len(c.VastraRecipientNames) != c.VastraCount {
		return nil, fail(KindInconsistentWithCategory, FieldVastraRecipientNames,
			fmt.Sprintf("expected %d vastra recipient names, got %d", c.VastraCount, len(c.VastraRecipientNames)))
	}
	names := make([]string, 0, c.VastraCount)
	for _, raw := range c.VastraRecipientNames {
		n := strings.TrimSpace(raw)
		if n == "" {
			return nil, fail(KindRequired, FieldVastraRecipientNames, "every vastra recipient needs a full name")
		}
		names = append(names, n)
	}
	return domain.VastraDetails{RecipientNames: names}, nil
}

func (v *Validator) checkDate(raw string) (domain.Date, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.Date{}, fail(KindRequired, FieldPreferredDate, "preferred date is required")
	}
	date, err := domain.ParseDate(raw)
	if err != nil {
		return domain.Date{}, fail(KindInvalidFormat, FieldPreferredDate, "preferred date must be YYYY-MM-DD")
	}
	today := v.Today()
	if date.Before(today) || date.After(today.AddDays(v.maxAdvanceDays)) {
		return domain.Date{}, fail(KindOutOfRange, FieldPreferredDate,
			fmt.Sprintf("preferred date must be between %s and %s", today, today.AddDays(v.maxAdvanceDays)))
	}
	return date, nil
}

func checkTimeSlot(raw string) (domain.TimeSlot, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.TimeSlot{}, fail(KindRequired, FieldPreferredTime, "preferred time is required")
	}
	slot, err := domain.ParseTimeSlot(raw)
	if err != nil {
		return domain.TimeSlot{}, fail(KindInvalidFormat, FieldPreferredTime, "preferred time must look like 09:00 AM")
	}
	total := slot.Minutes()
	if total < EarliestSlotMinutes || total > LatestSlotMinutes {
		return domain.TimeSlot{}, fail(KindOutOfRange, FieldPreferredTime, "preferred time must be between 3:30 AM and 9:00 PM")
	}
	if slot.Minute%SlotGranularityMinutes != 0 {
		return domain.TimeSlot{}, fail(KindInvalidFormat, FieldPreferredTime, "preferred time minutes must be a multiple of 5")
	}
	return slot, nil
}

// CheckStored re-validates the invariants every stored request must satisfy.
func CheckStored(r *domain.Request) error {
	if r == nil {
		return fail(KindRequired, FieldName, "request is nil")
	}
	if strings.TrimSpace(r.Name) == "" {
		return fail(KindRequired, FieldName, "name is required")
	}
	if err := checkPhone(r.Phone); err != nil {
		return err
	}
	if r.OptionalEmail != "" && !emailPattern.MatchString(strings.ToLower(r.OptionalEmail)) {
		return fail(KindInvalidFormat, FieldOptionalEmail, "optional email is not a valid address")
	}
	if r.GuestCount < 1 {
		return fail(KindOutOfRange, FieldGuestCount, "guest count must be at least 1")
	}
	switch d := r.Details.(type) {
	case domain.ReferenceDetails:
		if strings.TrimSpace(d.ReferenceName) == "" {
			return fail(KindRequired, FieldReferenceName, "trustee reference name is required")
		}
	case domain.VastraDetails:
		if len(d.RecipientNames) > r.GuestCount {
			return fail(KindOutOfRange, FieldVastraCount, "vastra count exceeds guest count")
		}
		for _, n := range d.RecipientNames {
			if strings.TrimSpace(n) == "" {
				return fail(KindRequired, FieldVastraRecipientNames, "every vastra recipient needs a full name")
			}
		}
	case domain.MedicalDetails, domain.SeniorCitizenDetails:
	default:
		return fail(KindRequired, FieldCategory, "category is required")
	}
	total := r.PreferredTimeSlot.Minutes()
	if total < EarliestSlotMinutes || total > LatestSlotMinutes {
		return fail(KindOutOfRange, FieldPreferredTime, "preferred time must be between 3:30 AM and 9:00 PM")
	}
	if !r.Status.Valid() {
		return fail(KindInvalidFormat, FieldStatus, fmt.Sprintf("unknown status %q", r.Status))
	}
	return nil
}
