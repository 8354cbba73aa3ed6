package server

import (
	"net/http"
)

func SetupRoutes(patientHandler *PatientService, schemaHandler *SchemaService) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /databases", patientHandler.ListDatabases)
	mux.HandleFunc("GET /databases/{name}/patients", patientHandler.ListPatients)
	mux.HandleFunc("GET /plans", patientHandler.ListPlans)
	mux.HandleFunc("GET /regions", patientHandler.ListRegions)
	mux.HandleFunc("GET /index", patientHandler.GetIndexCounts)

	if schemaHandler != nil {
		mux.HandleFunc("GET /schema", schemaHandler.ListTypes)
		mux.HandleFunc("GET /schema/{type}", schemaHandler.DescribeType)
	}

	return mux
}
