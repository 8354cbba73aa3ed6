package models

import "github.com/ThiagoRGoveia/treatment-records/internal/schema"

// Entry is a top-level record held by a store, one file per key.
type Entry interface {
	schema.Record
	Key() string
	Identifier() string
	Modified() DateTime
	FileName() string
	SetFilePath(path string)
	HasApproved() bool
	PruneUnapproved() bool
	Plans() []PlanView
	RegionNames() []string
}

var (
	_ Entry = (*Patient)(nil)
	_ Entry = (*PatientHeader)(nil)
)
