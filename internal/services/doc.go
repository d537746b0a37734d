// Package services implements the business logic layer between the HTTP
// handlers and the dataset cache.
//
// ReportService loads the cached dataset, builds the fixed and disbursement
// views and renders their exports. Failures are wrapped in typed
// errors.AppError values so the error handler can map them to problem
// responses while errors.Is still reaches the underlying cause.
//
// HealthService backs the health, readiness, liveness and version endpoints.
// Readiness reflects the dataset cache state.
//
// Services are tested by mocking their dependencies:
//
//	data := new(MockDatasetProvider)
//	data.On("Get", mock.Anything).Return(ds, nil)
//	svc := NewReportService(data, builder, nil, logger)
package services
