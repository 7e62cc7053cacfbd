package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Record holds the structure for a license record document. Every category
// collection (vehicles, drivers, firearms, prpd, works, other_documents,
// passports, tv_licenses) stores this same shape; the category only decides
// which display fields are populated.
type Record struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details RecordDetails      `json:"record" bson:"record"`
	Version int32              `json:"__v" bson:"__v"`
}

// RecordDetails holds the inner record structure as defined in the category
// collections in mongo. OwnerID is set server side at creation and never
// mutated. ExpiryDate is a calendar date in YYYY-MM-DD form.
type RecordDetails struct {
	OwnerID             string `json:"ownerID" bson:"ownerID"`
	ExpiryDate          string `json:"expiryDate" bson:"expiryDate"`
	NotificationsPaused bool   `json:"notificationsPaused" bson:"notificationsPaused"`

	// category-specific display fields
	FirstName          string `json:"firstName,omitempty" bson:"firstName,omitempty"`
	LastName           string `json:"lastName,omitempty" bson:"lastName,omitempty"`
	IDNumber           string `json:"idNumber,omitempty" bson:"idNumber,omitempty"`
	RegistrationNumber string `json:"registrationNumber,omitempty" bson:"registrationNumber,omitempty"`
	Make               string `json:"make,omitempty" bson:"make,omitempty"`
	Model              string `json:"model,omitempty" bson:"model,omitempty"`
	MakeModel          string `json:"makeModel,omitempty" bson:"makeModel,omitempty"`
	Caliber            string `json:"caliber,omitempty" bson:"caliber,omitempty"`
	ContractName       string `json:"contractName,omitempty" bson:"contractName,omitempty"`
	ContractType       string `json:"contractType,omitempty" bson:"contractType,omitempty"`
	CompanyName        string `json:"companyName,omitempty" bson:"companyName,omitempty"`
	PassportNumber     string `json:"passportNumber,omitempty" bson:"passportNumber,omitempty"`
	LicenseNumber      string `json:"licenseNumber,omitempty" bson:"licenseNumber,omitempty"`
	Description        string `json:"description,omitempty" bson:"description,omitempty"`
	DocumentType       string `json:"documentType,omitempty" bson:"documentType,omitempty"`

	CreatedAt interface{} `json:"createdAt" bson:"createdAt"`
	UpdatedAt interface{} `json:"updatedAt" bson:"updatedAt"`
}
