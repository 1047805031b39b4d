package issue

import (
	"fmt"
	"strings"
)

// Submission is a reporter's new issue as handed to the lifecycle.
type Submission struct {
	ReporterName       string
	ReporterEmail      string
	Mobile             string
	Age                *int
	Gender             string
	Pincode            string
	City               string
	District           string
	State              string
	Country            string
	ResidentialAddress string
	WorkAddress        string
	Category           string
	CustomIssueType    string
	Description        string
	Latitude           *float64
	Longitude          *float64
	LocationAddress    string
	Priority           string
	ImageFilename      string
}

// Normalize trims every text field and canonicalises the priority.
// It fails with ErrValidation naming the first offending field.
func (s Submission) Normalize() (Submission, error) {
	out := Submission{
		ReporterName:       strings.TrimSpace(s.ReporterName),
		ReporterEmail:      strings.ToLower(strings.TrimSpace(s.ReporterEmail)),
		Mobile:             strings.TrimSpace(s.Mobile),
		Age:                s.Age,
		Gender:             strings.TrimSpace(s.Gender),
		Pincode:            strings.TrimSpace(s.Pincode),
		City:               strings.TrimSpace(s.City),
		District:           strings.TrimSpace(s.District),
		State:              strings.TrimSpace(s.State),
		Country:            strings.TrimSpace(s.Country),
		ResidentialAddress: strings.TrimSpace(s.ResidentialAddress),
		WorkAddress:        strings.TrimSpace(s.WorkAddress),
		Category:           strings.TrimSpace(s.Category),
		CustomIssueType:    strings.TrimSpace(s.CustomIssueType),
		Description:        strings.TrimSpace(s.Description),
		Latitude:           s.Latitude,
		Longitude:          s.Longitude,
		LocationAddress:    strings.TrimSpace(s.LocationAddress),
		ImageFilename:      strings.TrimSpace(s.ImageFilename),
	}

	required := []struct {
		name  string
		value string
	}{
		{name: "reporter email", value: out.ReporterEmail},
		{name: "category", value: out.Category},
		{name: "description", value: out.Description},
	}
	for _, field := range required {
		if field.value == "" {
			return Submission{}, fmt.Errorf("%w: %s", ErrMissingField, field.name)
		}
	}

	priority, err := ParsePriority(s.Priority)
	if err != nil {
		return Submission{}, err
	}
	out.Priority = string(priority)

	if out.Age != nil && (*out.Age < 0 || *out.Age > 150) {
		return Submission{}, fmt.Errorf("%w: age %d out of range", ErrValidation, *out.Age)
	}
	if out.Latitude != nil && (*out.Latitude < -90 || *out.Latitude > 90) {
		return Submission{}, fmt.Errorf("%w: latitude %v out of range", ErrValidation, *out.Latitude)
	}
	if out.Longitude != nil && (*out.Longitude < -180 || *out.Longitude > 180) {
		return Submission{}, fmt.Errorf("%w: longitude %v out of range", ErrValidation, *out.Longitude)
	}

	return out, nil
}
