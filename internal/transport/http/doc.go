// Package http implements the HTTP handlers of the reports service.
// Handlers parse and validate the request, call the service layer and
// render JSON or file downloads; every failure goes through
// errors.ErrorHandler so clients always receive an RFC 7807 problem.
//
// Routes:
//
//	GET  /health
//	GET  /api/health, /api/health/ready, /api/health/live, /api/version
//	GET  /reports/fixed
//	GET  /export/excel
//	GET  /export/csv?report=loan|poultry|grants
//	GET  /branch-disbursement?month=YYYY-MM&branch=
//	GET  /branch-disbursement/export/excel?month=YYYY-MM&branch=
//	POST /tasks/refresh
//	GET  /metrics
package http
