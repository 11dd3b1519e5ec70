// Package api handles incoming HTTP requests, request validation, and
// response formatting. It adapts the completion service to a small JSON
// surface: jobs are submitted with POST /api/jobs, polled with
// GET /api/jobs/{id}, and liveness is reported by GET /health.
package api
