package models

import "github.com/ThiagoRGoveia/treatment-records/internal/schema"

// RegionOfInterestDose is the DVH of one structure. AbsoluteDose holds the
// dose at relative volumes stepped by DVHStep.
type RegionOfInterestDose struct {
	AbsoluteDose    []float64
	RelativeVolumes []float64
	DoseMin         float64
	DoseMax         float64
	DoseAverage     float64
	DoseROIUID      int
	Number          int
	Name            string
	ScalingFactor   int
	Defined         bool
	DVHStep         float64
	AttemptedUpdate bool
}

func (d *RegionOfInterestDose) TypeName() string { return "RegionOfInterestDose" }

func (d *RegionOfInterestDose) SetDefaults() {
	d.AbsoluteDose = []float64{}
	d.RelativeVolumes = []float64{}
	d.ScalingFactor = 1
	d.DVHStep = 0.01
}

func (d *RegionOfInterestDose) Fields() []schema.Field {
	return []schema.Field{
		schema.Sequence("AbsoluteDose", &d.AbsoluteDose, schema.FloatCodec()),
		schema.Sequence("RelativeVolumes", &d.RelativeVolumes, schema.FloatCodec()),
		schema.Float("Dose_Min_cGy", &d.DoseMin),
		schema.Float("Dose_Max_cGy", &d.DoseMax),
		schema.Float("Dose_Average_cGy", &d.DoseAverage),
		schema.Int("Dose_ROI_UID", &d.DoseROIUID),
		schema.Int("RS_Number", &d.Number),
		schema.String("Name", &d.Name),
		schema.Int("ScalingFactor", &d.ScalingFactor),
		schema.Bool("Defined", &d.Defined),
		schema.Float("dvh_step", &d.DVHStep),
		schema.Bool("AttemptedUpdate", &d.AttemptedUpdate),
	}
}

type PointOfInterestDose struct {
	Dose          float64
	Name          string
	DosePOIUID    int
	Number        int
	ScalingFactor int
}

func (d *PointOfInterestDose) TypeName() string { return "PointOfInterestDose" }

func (d *PointOfInterestDose) SetDefaults() { d.ScalingFactor = 1 }

func (d *PointOfInterestDose) Fields() []schema.Field {
	return []schema.Field{
		schema.Float("Dose_cGy", &d.Dose),
		schema.String("Name", &d.Name),
		schema.Int("Dose_POI_UID", &d.DosePOIUID),
		schema.Int("RS_Number", &d.Number),
		schema.Int("ScalingFactor", &d.ScalingFactor),
	}
}

type DoseSpecificationPoint struct {
	X, Y, Z float64
	Name    string
}

func (p *DoseSpecificationPoint) TypeName() string { return "DoseSpecificationPointClass" }

func (p *DoseSpecificationPoint) Fields() []schema.Field {
	return []schema.Field{
		schema.Float("x", &p.X),
		schema.Float("y", &p.Y),
		schema.Float("z", &p.Z),
		schema.String("Name", &p.Name),
	}
}

type Prescription struct {
	PrescriptionUID           int
	DoseAbsoluteVolume        float64
	DoseValue                 float64
	DoseVolumePercent         float64
	RelativePrescriptionLevel float64
	PrescriptionType          string
	ReferencedROI             *RegionOfInterest
	ReferencedPOI             *PointOfInterest
	DoseSpecificationPoint    *DoseSpecificationPoint
	NumberOfFractions         int
	DosePerFraction           float64
}

func (p *Prescription) TypeName() string { return "PrescriptionClass" }

func (p *Prescription) Fields() []schema.Field {
	return []schema.Field{
		schema.Int("Prescription_UID", &p.PrescriptionUID),
		schema.Float("DoseAbsoluteVolume_cc", &p.DoseAbsoluteVolume),
		schema.Float("DoseValue_cGy", &p.DoseValue),
		schema.Float("DoseVolume_percent", &p.DoseVolumePercent),
		schema.Float("RelativePrescriptionLevel", &p.RelativePrescriptionLevel),
		schema.String("PrescriptionType", &p.PrescriptionType),
		schema.Optional("Referenced_ROI_Structure", &p.ReferencedROI),
		schema.Optional("Referenced_POI_Structure", &p.ReferencedPOI),
		schema.Optional("DoseSpecificationPoint", &p.DoseSpecificationPoint),
		schema.Int("NumberOfFractions", &p.NumberOfFractions),
		schema.Float("Dose_per_Fraction", &p.DosePerFraction),
	}
}

type Beam struct {
	ArcRotationDirection    string
	ArcStopGantryAngle      float64
	CollimatorAngle         float64
	BeamMU                  float64
	BeamQualityID           string
	CouchRotationAngle      float64
	DeliveryTechnique       string
	Description             string
	GantryAngle             float64
	PlanGenerationTechnique string
	BeamName                string
	BeamNumber              int
	BeamNumberUID           int
	SSD                     float64
}

func (b *Beam) TypeName() string { return "BeamClass" }

// SetDefaults marks SSD as unknown; it is only measured when an external
// structure exists.
func (b *Beam) SetDefaults() { b.SSD = -1 }

func (b *Beam) Fields() []schema.Field {
	return []schema.Field{
		schema.String("ArcRotationDirection", &b.ArcRotationDirection),
		schema.Float("ArcStopGantryAngle", &b.ArcStopGantryAngle),
		schema.Float("CollimatorAngle", &b.CollimatorAngle),
		schema.Float("BeamMU", &b.BeamMU),
		schema.String("BeamQualityId", &b.BeamQualityID),
		schema.Float("CouchRotationAngle", &b.CouchRotationAngle),
		schema.String("DeliveryTechnique", &b.DeliveryTechnique),
		schema.String("Description", &b.Description),
		schema.Float("GantryAngle", &b.GantryAngle),
		schema.String("PlanGenerationTechnique", &b.PlanGenerationTechnique),
		schema.String("BeamName", &b.BeamName),
		schema.Int("RS_BeamNumber", &b.BeamNumber),
		schema.Int("BeamNumber_UID", &b.BeamNumberUID),
		schema.Float("SSD", &b.SSD),
	}
}

type MachineReference struct {
	MachineName       string
	CommissioningTime *DateTime
}

func (m *MachineReference) TypeName() string { return "MachineReferenceClass" }

func (m *MachineReference) Fields() []schema.Field {
	return []schema.Field{
		schema.String("MachineName", &m.MachineName),
		schema.Optional("CommissioningTime", &m.CommissioningTime),
	}
}

type FractionDose struct {
	Name           string
	FractionDoseID int
	DoseROIs       []*RegionOfInterestDose
	DosePOIs       []*PointOfInterestDose
}

func (f *FractionDose) TypeName() string { return "FractionDoseClass" }

func (f *FractionDose) SetDefaults() {
	f.DoseROIs = []*RegionOfInterestDose{}
	f.DosePOIs = []*PointOfInterestDose{}
}

func (f *FractionDose) Fields() []schema.Field {
	return []schema.Field{
		schema.String("Name", &f.Name),
		schema.Int("FractionDose_UID", &f.FractionDoseID),
		schema.Sequence("DoseROIs", &f.DoseROIs, schema.Ref[RegionOfInterestDose]()),
		schema.Sequence("DosePOIs", &f.DosePOIs, schema.Ref[PointOfInterestDose]()),
	}
}

type BeamSet struct {
	NumberOfFractions       int
	BeamNumber              int
	BeamSetUID              int
	DicomPlanLabel          string
	Prescriptions           []*Prescription
	PrimaryPrescription     *Prescription
	PrimaryPrescriptionUID  int
	PlanIntent              string
	PlanGenerationTechnique string
	Modality                string
	Beams                   []*Beam
	MachineReference        *MachineReference
	FractionDose            *FractionDose
}

func (b *BeamSet) TypeName() string { return "BeamSetClass" }

func (b *BeamSet) SetDefaults() {
	b.NumberOfFractions = 1
	b.Prescriptions = []*Prescription{}
	b.Beams = []*Beam{}
}

func (b *BeamSet) Fields() []schema.Field {
	return []schema.Field{
		schema.Int("NumberOfFractions", &b.NumberOfFractions),
		schema.Int("RS_BeamNumber", &b.BeamNumber),
		schema.Int("BeamSetUID", &b.BeamSetUID),
		schema.String("DicomPlanLabel", &b.DicomPlanLabel),
		schema.Sequence("Prescriptions", &b.Prescriptions, schema.Ref[Prescription]()),
		schema.Optional("Primary_Prescription", &b.PrimaryPrescription),
		schema.Int("Primary_Prescription_UID", &b.PrimaryPrescriptionUID),
		schema.String("PlanIntent", &b.PlanIntent),
		schema.String("PlanGenerationTechnique", &b.PlanGenerationTechnique),
		schema.String("Modality", &b.Modality),
		schema.Sequence("Beams", &b.Beams, schema.Ref[Beam]()),
		schema.Optional("MachineReference", &b.MachineReference),
		schema.Optional("FractionDose", &b.FractionDose),
	}
}

type PlanOptimization struct {
	AutoScaleToPrescription bool
	ReferencedBeamSetNames  []string
	OptimizerUID            int
}

func (o *PlanOptimization) TypeName() string { return "PlanOptimizationClass" }

func (o *PlanOptimization) SetDefaults() { o.ReferencedBeamSetNames = []string{} }

func (o *PlanOptimization) Fields() []schema.Field {
	return []schema.Field{
		schema.Bool("AutoScaleToPrescription", &o.AutoScaleToPrescription),
		schema.Sequence("Referenced_BeamSetsNames", &o.ReferencedBeamSetNames, schema.StringCodec()),
		schema.Int("Optimizer_UID", &o.OptimizerUID),
	}
}

// Review is the approval state of a treatment plan.
type Review struct {
	ApprovalStatus string
	ReviewerName   string
	ReviewTime     DateTime
}

func (r *Review) TypeName() string { return "ReviewClass" }

func (r *Review) SetDefaults() { r.ReviewTime = NewDateTime() }

func (r *Review) Fields() []schema.Field {
	return []schema.Field{
		schema.String("ApprovalStatus", &r.ApprovalStatus),
		schema.String("ReviewerName", &r.ReviewerName),
		schema.Nested("ReviewTime", &r.ReviewTime),
	}
}

type TreatmentPlan struct {
	PlanName           string
	PlannedBy          string
	TreatmentPlanUID   int
	FractionNumber     int
	BeamSets           []*BeamSet
	Optimizations      []*PlanOptimization
	ReferencedExamName string
	Review             *Review
}

func (p *TreatmentPlan) TypeName() string { return "TreatmentPlanClass" }

func (p *TreatmentPlan) SetDefaults() {
	p.BeamSets = []*BeamSet{}
	p.Optimizations = []*PlanOptimization{}
}

func (p *TreatmentPlan) Fields() []schema.Field {
	return []schema.Field{
		schema.String("PlanName", &p.PlanName),
		schema.String("PlannedBy", &p.PlannedBy),
		schema.Int("TreatmentPlan_UID", &p.TreatmentPlanUID),
		schema.Int("FractionNumber", &p.FractionNumber),
		schema.Sequence("BeamSets", &p.BeamSets, schema.Ref[BeamSet]()),
		schema.Sequence("Optimizations", &p.Optimizations, schema.Ref[PlanOptimization]()),
		schema.String("Referenced_Exam_Name", &p.ReferencedExamName),
		schema.Optional("Review", &p.Review),
	}
}
