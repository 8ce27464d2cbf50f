// Package api implements the resource gateways over the cloud management
// REST API.
//
// Every request carries the profile token as a bearer credential through an
// oauth2 static token source. Responses map onto gateway errors:
//
//	401, 403   gateway.ErrUnauthorized
//	404        *gateway.NotFoundError
//	other      *api.Error with the first message of the error body
//
// Create calls look the resource up first and report an existing one through
// the returned CreationStatus instead of failing; delete calls do the same
// for missing resources.
package api
