// internal/models/applicant.go
package models

// ApplicantProfile is the decoded profile record of a visa applicant.
// Every field is optional; absent values are the zero value ("" or 0).
type ApplicantProfile struct {
	Name            string `json:"name,omitempty"`
	Age             string `json:"age,omitempty"`
	PassportCountry string `json:"passport_country,omitempty"`
	DestCountry     string `json:"dest_country,omitempty"`
	Purpose         string `json:"purpose,omitempty"`
	Funds           int64  `json:"funds"`
	Education       string `json:"education,omitempty"`
	PastVisa        string `json:"past_visa,omitempty"`
}

// Education levels.
const (
	EducationHighSchool = "High School"
	EducationBachelors  = "Bachelors"
	EducationMasters    = "Masters"
	EducationPhD        = "PhD"
	EducationOther      = "Other"
)

// Prior visa history buckets.
const (
	PastVisaNone     = "None"
	PastVisaOneToTwo = "1-2"
	PastVisaThreeUp  = "3+"
)

// Travel purposes.
const (
	PurposeStudy   = "Study"
	PurposeWork    = "Work"
	PurposeTourism = "Tourism"
	PurposeFamily  = "Family"
	PurposeOther   = "Other"
)
