package models

import (
	"errors"

	"github.com/ThiagoRGoveia/treatment-records/internal/schema"
)

// Registry returns a schema registry holding every record type of the model.
func Registry() (*schema.Registry, error) {
	reg := schema.NewRegistry()
	err := errors.Join(
		schema.Register[DateTime](reg),
		schema.Register[MultipleDateTimes](reg),
		schema.Register[RoiMaterial](reg),
		schema.Register[OrganData](reg),
		schema.Register[RegionOfInterestBase](reg),
		schema.Register[PointOfInterestBase](reg),
		schema.Register[PointOfInterest](reg),
		schema.Register[RegionOfInterest](reg),
		schema.Register[EquipmentInfo](reg),
		schema.Register[Examination](reg),
		schema.Register[RegionOfInterestDose](reg),
		schema.Register[PointOfInterestDose](reg),
		schema.Register[DoseSpecificationPoint](reg),
		schema.Register[Prescription](reg),
		schema.Register[Beam](reg),
		schema.Register[MachineReference](reg),
		schema.Register[FractionDose](reg),
		schema.Register[BeamSet](reg),
		schema.Register[PlanOptimization](reg),
		schema.Register[Review](reg),
		schema.Register[TreatmentPlan](reg),
		schema.Register[Registration](reg),
		schema.Register[Case](reg),
		schema.Register[TreatmentNote](reg),
		schema.Register[QCL](reg),
		schema.Register[Patient](reg),
		schema.Register[StrippedDownPlan](reg),
		schema.Register[StrippedDownRegionOfInterest](reg),
		schema.Register[StrippedDownCase](reg),
		schema.Register[PatientHeader](reg),
	)
	if err != nil {
		return nil, err
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return reg, nil
}
