package models

import "github.com/ThiagoRGoveia/treatment-records/internal/schema"

type RoiMaterial struct {
	Name        string
	MassDensity float64
}

func (m *RoiMaterial) TypeName() string { return "RoiMaterial" }

func (m *RoiMaterial) Fields() []schema.Field {
	return []schema.Field{
		schema.String("Name", &m.Name),
		schema.Float("MassDensity", &m.MassDensity),
	}
}

// OrganData holds the coded organ identity of a structure.
type OrganData struct {
	OrganType                  string
	CodeValue                  string
	CodeSchemeDesignator       string
	ResponseFunctionTissueName string
}

func (o *OrganData) TypeName() string { return "OrganDataClass" }

func (o *OrganData) Fields() []schema.Field {
	return []schema.Field{
		schema.String("OrganType", &o.OrganType),
		schema.String("CodeValue", &o.CodeValue),
		schema.String("CodeSchemeDesignator", &o.CodeSchemeDesignator),
		schema.String("ResponseFunctionTissueName", &o.ResponseFunctionTissueName),
	}
}

// RegionOfInterestBase is a structure defined once per case.
type RegionOfInterestBase struct {
	Name          string
	Number        int
	Type          string
	BaseROIUID    int
	Material      *RoiMaterial
	OrganData     *OrganData
	StructureCode string
}

func (r *RegionOfInterestBase) TypeName() string { return "RegionOfInterestBase" }

func (r *RegionOfInterestBase) Fields() []schema.Field {
	return []schema.Field{
		schema.String("Name", &r.Name),
		schema.Int("RS_Number", &r.Number),
		schema.String("Type", &r.Type),
		schema.Int("Base_ROI_UID", &r.BaseROIUID),
		schema.Optional("ROI_Material", &r.Material),
		schema.Optional("OrganData", &r.OrganData),
		schema.String("StructureCode", &r.StructureCode),
	}
}

type PointOfInterestBase struct {
	Name       string
	Number     int
	Type       string
	BasePOIUID int
	OrganType  string
	Material   *RoiMaterial
	OrganData  *OrganData
}

func (p *PointOfInterestBase) TypeName() string { return "PointOfInterestBase" }

func (p *PointOfInterestBase) Fields() []schema.Field {
	return []schema.Field{
		schema.String("Name", &p.Name),
		schema.Int("RS_Number", &p.Number),
		schema.String("Type", &p.Type),
		schema.Int("Base_POI_UID", &p.BasePOIUID),
		schema.String("OrganType", &p.OrganType),
		schema.Optional("ROI_Material", &p.Material),
		schema.Optional("OrganData", &p.OrganData),
	}
}

// PointOfInterest is a point as it appears on one examination.
type PointOfInterest struct {
	Name    string
	Number  int
	Defined bool
	POIUID  int
	X, Y, Z float64
}

func (p *PointOfInterest) TypeName() string { return "PointOfInterest" }

func (p *PointOfInterest) Fields() []schema.Field {
	return []schema.Field{
		schema.String("Name", &p.Name),
		schema.Int("RS_Number", &p.Number),
		schema.Bool("Defined", &p.Defined),
		schema.Int("POI_UID", &p.POIUID),
		schema.Float("x", &p.X),
		schema.Float("y", &p.Y),
		schema.Float("z", &p.Z),
	}
}

// RegionOfInterest is a structure as it appears on one examination.
type RegionOfInterest struct {
	Name      string
	Number    int
	ROIUID    int
	Volume    float64
	HUMin     float64
	HUMax     float64
	HUAverage float64
	Defined   bool
}

func (r *RegionOfInterest) TypeName() string { return "RegionOfInterest" }

func (r *RegionOfInterest) Fields() []schema.Field {
	return []schema.Field{
		schema.String("Name", &r.Name),
		schema.Int("RS_Number", &r.Number),
		schema.Int("ROI_UID", &r.ROIUID),
		schema.Float("Volume", &r.Volume),
		schema.Float("HU_Min", &r.HUMin),
		schema.Float("HU_Max", &r.HUMax),
		schema.Float("HU_Average", &r.HUAverage),
		schema.Bool("Defined", &r.Defined),
	}
}

type EquipmentInfo struct {
	FrameOfReference string
	Modality         string
}

func (e *EquipmentInfo) TypeName() string { return "EquipmentInfoClass" }

func (e *EquipmentInfo) Fields() []schema.Field {
	return []schema.Field{
		schema.String("FrameOfReference", &e.FrameOfReference),
		schema.String("Modality", &e.Modality),
	}
}

type Examination struct {
	ExamUID           int
	EquipmentInfo     *EquipmentInfo
	ROIs              []*RegionOfInterest
	POIs              []*PointOfInterest
	ExamName          string
	SeriesDescription string
	SeriesInstanceUID string
	StudyInstanceUID  string
	StudyDescription  string
	ExamDateTime      *DateTime
}

func NewExamination() *Examination {
	e := &Examination{}
	e.SetDefaults()
	return e
}

func (e *Examination) TypeName() string { return "ExaminationClass" }

func (e *Examination) SetDefaults() {
	e.ROIs = []*RegionOfInterest{}
	e.POIs = []*PointOfInterest{}
}

func (e *Examination) Fields() []schema.Field {
	return []schema.Field{
		schema.Int("Exam_UID", &e.ExamUID),
		schema.Optional("EquipmentInfo", &e.EquipmentInfo),
		schema.Sequence("ROIs", &e.ROIs, schema.Ref[RegionOfInterest]()),
		schema.Sequence("POIs", &e.POIs, schema.Ref[PointOfInterest]()),
		schema.String("ExamName", &e.ExamName),
		schema.String("SeriesDescription", &e.SeriesDescription),
		schema.String("SeriesInstanceUID", &e.SeriesInstanceUID),
		schema.String("StudyInstanceUID", &e.StudyInstanceUID),
		schema.String("StudyDescription", &e.StudyDescription),
		schema.Optional("Exam_DateTime", &e.ExamDateTime),
	}
}

// Registration relates two frames of reference within a case.
type Registration struct {
	RegistrationUID             int
	IsDeformable                bool
	FromFrameOfReference        string
	ToFrameOfReference          string
	RigidTransformMatrix        []float64
	StructureRegistrationsNames []string
}

func (r *Registration) TypeName() string { return "RegistrationClass" }

func (r *Registration) SetDefaults() {
	r.RigidTransformMatrix = []float64{}
	r.StructureRegistrationsNames = []string{}
}

func (r *Registration) Fields() []schema.Field {
	return []schema.Field{
		schema.Int("Registration_UID", &r.RegistrationUID),
		schema.Bool("IsDeformable", &r.IsDeformable),
		schema.String("FromFrameOfReference", &r.FromFrameOfReference),
		schema.String("ToFrameOfReference", &r.ToFrameOfReference),
		schema.Sequence("RigidTransformMatrix", &r.RigidTransformMatrix, schema.FloatCodec()),
		schema.Sequence("StructureRegistrationsNames", &r.StructureRegistrationsNames, schema.StringCodec()),
	}
}
