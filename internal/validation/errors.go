package validation

import "fmt"

// Kind classifies why a field was rejected.
type Kind string

const (
	KindRequired                 Kind = "required"
	KindInvalidFormat            Kind = "invalid_format"
	KindOutOfRange               Kind = "out_of_range"
	KindInconsistentWithCategory Kind = "inconsistent_with_category"
)

// Field names the offending input.
type Field string

const (
	FieldName                 Field = "name"
	FieldPhone                Field = "phone"
	FieldOptionalEmail        Field = "optional_email"
	FieldGuestCount           Field = "guest_count"
	FieldCategory             Field = "category"
	FieldReferenceName        Field = "reference_name"
	FieldVastraCount          Field = "vastra_count"
	FieldVastraRecipientNames Field = "vastra_recipient_names"
	FieldPreferredDate        Field = "preferred_date"
	FieldPreferredTime        Field = "preferred_time"
	FieldStatus               Field = "status"
)

// Error identifies the first rule a candidate failed.
type Error struct {
	Kind    Kind
	Field   Field
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Kind)
}

// Details renders the error for API responses.
func (e *Error) Details() map[string]any {
	return map[string]any{"kind": string(e.Kind), "field": string(e.Field)}
}

func fail(kind Kind, field Field, message string) *Error {
	return &Error{Kind: kind, Field: field, Message: message}
}
