// internal/models/application.go
package models

// Enum literals accepted by the prediction service. Matching is exact and
// case-sensitive; "Not Graduate" carries its space on the wire.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"

	MarriedYes = "Yes"
	MarriedNo  = "No"

	EducationGraduate    = "Graduate"
	EducationNotGraduate = "Not Graduate"

	SelfEmployedYes = "Yes"
	SelfEmployedNo  = "No"

	PropertyAreaRural     = "Rural"
	PropertyAreaUrban     = "Urban"
	PropertyAreaSemiurban = "Semiurban"
)

// LoanApplication is the normalized applicant record sent to the prediction
// service. Instances are only built by the schema validator, so an existing
// value has already passed every per-field constraint. The JSON tags are the
// wire contract, underscores included, and must not change.
type LoanApplication struct {
	Gender            string  `json:"Gender"`
	Married           string  `json:"Married"`
	Dependents        int     `json:"Dependents"`
	Education         string  `json:"Education"`
	SelfEmployed      string  `json:"Self_Employed"`
	ApplicantIncome   float64 `json:"ApplicantIncome"`
	CoapplicantIncome float64 `json:"CoapplicantIncome"`
	LoanAmount        float64 `json:"LoanAmount"`
	LoanAmountTerm    float64 `json:"Loan_Amount_Term"`
	CreditHistory     int     `json:"Credit_History"`
	PropertyArea      string  `json:"Property_Area"`
}
