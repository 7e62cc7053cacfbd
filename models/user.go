package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User holds the structure for the user collection in mongo
type User struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details UserDetails        `json:"user" bson:"user"`
	Version int32              `json:"__v" bson:"__v"`
}

// UserDetails holds the structure for the inner user structure as defined in
// the user collection in mongo. Tier and the subscription fields are written
// by the billing flow only; everything else is set at registration.
type UserDetails struct {
	Email                string      `json:"email" bson:"email"`
	Name                 string      `json:"name" bson:"name"`
	Password             string      `json:"password" bson:"password"`
	Tier                 string      `json:"tier" bson:"tier"`
	SubscriptionStatus   string      `json:"subscriptionStatus" bson:"subscriptionStatus"`
	SubscriptionEndDate  string      `json:"subscriptionEndDate" bson:"subscriptionEndDate"`
	StripeCustomerID     string      `json:"stripeCustomerID" bson:"stripeCustomerID"`
	StripeSubscriptionID string      `json:"stripeSubscriptionID" bson:"stripeSubscriptionID"`
	ResetPasswordToken   string      `json:"resetPasswordToken" bson:"resetPasswordToken"`
	ResetPasswordExpires interface{} `json:"resetPasswordExpires" bson:"resetPasswordExpires"`
	CreatedAt            interface{} `json:"createdAt" bson:"createdAt"`
	UpdatedAt            interface{} `json:"updatedAt" bson:"updatedAt"`
}
