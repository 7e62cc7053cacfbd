// Package docs RemLic API.
//
// Documentation of the RemLic license tracking API.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//     Host: https://api.remlic.co.za
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
//     Security:
//     - basic
//
//    SecurityDefinitions:
//    basic:
//      type: basic
//
// swagger:meta
package docs

import (
	"github.com/remlic/remlic-api/models"
)

// swagger:route GET /health health healthEndpointID
// Lists the healthchex of the web service api.
// responses:
//   200: healthResponse

// Shows the current health of the api. true means it is alive, false means it is not.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body models.HealthCheckResponse
}

// swagger:route GET /api/v1/dashboard dashboard dashboardID
// Gets the aggregated license dashboard for the authenticated owner.
// responses:
//   200: dashboardResponse

// The per-category sections of the owner's dashboard, in declared order.
// swagger:response dashboardResponse
type dashboardResponseWrapper struct {
	// in:body
	Body models.DashboardResponse
}

// swagger:route GET /api/v1/licenses/{category}/limit licenses limitCheckID
// Reports whether the owner can add another record of the category.
// responses:
//   200: limitCheckResponse

// The owner's current count against their tier cap for one category.
// swagger:response limitCheckResponse
type limitCheckResponseWrapper struct {
	// in:body
	Body models.LimitCheckResponse
}
