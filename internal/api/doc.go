// Package api handles incoming HTTP requests for the todo service: request
// decoding and validation, calling the services, and mapping their errors to
// status codes with sanitized messages. Routing lives in cmd/server.
package api
