package domain

import "strings"

// Category enumerates visitor request categories.
type Category string

const (
	CategoryVipVastra     Category = "VIP_VASTRA"
	CategoryVipReference  Category = "VIP_REFERENCE"
	CategoryMedical       Category = "MEDICAL"
	CategorySeniorCitizen Category = "SENIOR_CITIZEN"
)

var categoryLabels = map[Category]string{
	CategoryVipVastra:     "VIP (Vastra)",
	CategoryVipReference:  "VIP (Reference)",
	CategoryMedical:       "Medical",
	CategorySeniorCitizen: "Senior Citizen",
}

// ParseCategory accepts either the canonical name or the display label.
func ParseCategory(raw string) (Category, bool) {
	trimmed := strings.TrimSpace(raw)
	candidate := Category(strings.ToUpper(trimmed))
	if _, ok := categoryLabels[candidate]; ok {
		return candidate, true
	}
	for category, label := range categoryLabels {
		if strings.EqualFold(label, trimmed) {
			return category, true
		}
	}
	return "", false
}

// Label is the display text for the category.
func (c Category) Label() string {
	return categoryLabels[c]
}

// CategoryDetails carries exactly the fields that are valid for one category.
type CategoryDetails interface {
	Category() Category
	isCategoryDetails()
}

// VastraDetails holds the named vastra recipients; the count is len(RecipientNames).
type VastraDetails struct {
	RecipientNames []string
}

// ReferenceDetails holds the referring trustee.
type ReferenceDetails struct {
	ReferenceName string
}

// MedicalDetails has no extra fields.
type MedicalDetails struct{}

// SeniorCitizenDetails has no extra fields.
type SeniorCitizenDetails struct{}

func (VastraDetails) Category() Category        { return CategoryVipVastra }
func (ReferenceDetails) Category() Category     { return CategoryVipReference }
func (MedicalDetails) Category() Category       { return CategoryMedical }
func (SeniorCitizenDetails) Category() Category { return CategorySeniorCitizen }

func (VastraDetails) isCategoryDetails()        {}
func (ReferenceDetails) isCategoryDetails()     {}
func (MedicalDetails) isCategoryDetails()       {}
func (SeniorCitizenDetails) isCategoryDetails() {}
