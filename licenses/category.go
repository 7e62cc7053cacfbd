package licenses

// Category identifies one of the eight tracked license types. The dashboard,
// the quota checks and the reminder scheduler all iterate the same fixed set.
type Category string

// The eight categories, in the order dashboard sections render.
const (
	CategoryVehicles   Category = "vehicles"
	CategoryDrivers    Category = "drivers"
	CategoryFirearms   Category = "firearms"
	CategoryPRPD       Category = "prpd"
	CategoryWorks      Category = "works"
	CategoryOthers     Category = "others"
	CategoryPassports  Category = "passports"
	CategoryTVLicenses Category = "tvlicenses"
)

// Categories lists every category in declared order. Callers that build UI
// sections or fan out fetches must iterate this slice, never the maps below,
// so the ordering stays deterministic.
var Categories = []Category{
	CategoryVehicles,
	CategoryDrivers,
	CategoryFirearms,
	CategoryPRPD,
	CategoryWorks,
	CategoryOthers,
	CategoryPassports,
	CategoryTVLicenses,
}

// collections maps a category to its mongo collection. Two names drifted from
// the UI names early on and are permanent.
var collections = map[Category]string{
	CategoryVehicles:   "vehicles",
	CategoryDrivers:    "drivers",
	CategoryFirearms:   "firearms",
	CategoryPRPD:       "prpd",
	CategoryWorks:      "works",
	CategoryOthers:     "other_documents",
	CategoryPassports:  "passports",
	CategoryTVLicenses: "tv_licenses",
}

// displayFields lists the category-specific fields the dashboard shows,
// fetched alongside the common subset (owner, expiry, createdAt, pause flag).
var displayFields = map[Category][]string{
	CategoryVehicles:   {"registrationNumber", "make", "model"},
	CategoryDrivers:    {"firstName", "lastName", "idNumber"},
	CategoryFirearms:   {"makeModel", "caliber", "registrationNumber", "firstName", "lastName"},
	CategoryPRPD:       {"firstName", "lastName", "idNumber"},
	CategoryWorks:      {"contractName", "contractType", "companyName", "firstName", "lastName"},
	CategoryOthers:     {"description", "documentType"},
	CategoryPassports:  {"firstName", "lastName", "passportNumber"},
	CategoryTVLicenses: {"firstName", "lastName", "licenseNumber"},
}

func (c Category) String() string { return string(c) }

// Collection returns the mongo collection name backing the category.
func (c Category) Collection() string { return collections[c] }

// ParseCategory validates a category name from a request path. Names outside
// the fixed eight (including "competency", which the form layer of the old
// client knew about but the dashboard never aggregated) are rejected.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if _, ok := collections[c]; !ok {
		return "", ErrUnknownCategory
	}
	return c, nil
}
