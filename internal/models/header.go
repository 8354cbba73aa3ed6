package models

import "github.com/ThiagoRGoveia/treatment-records/internal/schema"

type StrippedDownPlan struct {
	PlanName  string
	PlannedBy string
	Review    *Review
}

func (p *StrippedDownPlan) TypeName() string { return "StrippedDownPlan" }

func (p *StrippedDownPlan) Fields() []schema.Field {
	return []schema.Field{
		schema.String("PlanName", &p.PlanName),
		schema.String("PlannedBy", &p.PlannedBy),
		schema.Optional("Review", &p.Review),
	}
}

func (p *StrippedDownPlan) String() string { return p.PlanName }

type StrippedDownRegionOfInterest struct {
	Name string
	Type string
}

func (r *StrippedDownRegionOfInterest) TypeName() string { return "StrippedDownRegionOfInterest" }

func (r *StrippedDownRegionOfInterest) Fields() []schema.Field {
	return []schema.Field{
		schema.String("Name", &r.Name),
		schema.String("Type", &r.Type),
	}
}

// StrippedDownCase keeps the names of a case's structures and the review
// state of its plans.
type StrippedDownCase struct {
	CaseName       string
	BodySite       string
	ROIs           []*StrippedDownRegionOfInterest
	POIs           []string
	TreatmentPlans []*StrippedDownPlan
}

func (c *StrippedDownCase) TypeName() string { return "StrippedDownCase" }

func (c *StrippedDownCase) SetDefaults() {
	c.ROIs = []*StrippedDownRegionOfInterest{}
	c.POIs = []string{}
	c.TreatmentPlans = []*StrippedDownPlan{}
}

func (c *StrippedDownCase) Fields() []schema.Field {
	return []schema.Field{
		schema.String("CaseName", &c.CaseName),
		schema.String("BodySite", &c.BodySite),
		schema.Sequence("ROIS", &c.ROIs, schema.Ref[StrippedDownRegionOfInterest]()),
		schema.Sequence("POIS", &c.POIs, schema.StringCodec()),
		schema.Sequence("TreatmentPlans", &c.TreatmentPlans, schema.Ref[StrippedDownPlan]()),
	}
}

func (c *StrippedDownCase) String() string { return c.CaseName + " : " + c.BodySite }

// PatientHeader is the reduced sibling of a Patient. FilePath points at the
// full record file the header was projected from.
type PatientHeader struct {
	MRN              string
	NameFirst        string
	NameLast         string
	Gender           int
	UID              string
	FilePath         string
	DateLastModified DateTime
	Cases            []*StrippedDownCase
	TreatmentNotes   []*TreatmentNote
	QCLs             []*QCL
	DateOfBirth      DateTime
}

func NewPatientHeader() *PatientHeader {
	h := &PatientHeader{}
	h.SetDefaults()
	return h
}

func (h *PatientHeader) TypeName() string { return "PatientHeader" }

func (h *PatientHeader) SetDefaults() {
	h.Gender = GenderUnknown
	h.DateLastModified = NewDateTime()
	h.Cases = []*StrippedDownCase{}
	h.TreatmentNotes = []*TreatmentNote{}
	h.QCLs = []*QCL{}
	h.DateOfBirth = NewDateTime()
}

func (h *PatientHeader) Fields() []schema.Field {
	return []schema.Field{
		schema.String("MRN", &h.MRN),
		schema.String("Name_First", &h.NameFirst),
		schema.String("Name_Last", &h.NameLast),
		schema.Int("Gender", &h.Gender),
		schema.String("RS_UID", &h.UID),
		schema.String("FilePath", &h.FilePath),
		schema.Nested("DateLastModified", &h.DateLastModified),
		schema.Sequence("Cases", &h.Cases, schema.Ref[StrippedDownCase]()),
		schema.Sequence("TreatmentNotes", &h.TreatmentNotes, schema.Ref[TreatmentNote]()),
		schema.Sequence("QCLs", &h.QCLs, schema.Ref[QCL]()),
		schema.Nested("DateOfBirth", &h.DateOfBirth),
	}
}

func (h *PatientHeader) Key() string { return h.UID }
func (h *PatientHeader) Identifier() string { return h.MRN }
func (h *PatientHeader) Modified() DateTime { return h.DateLastModified }

// SetFilePath records where the header was loaded from, as the path of the
// full record it belongs to.
func (h *PatientHeader) SetFilePath(path string) { h.FilePath = RecordPathFor(path) }

// FileName is the canonical filename of the header.
func (h *PatientHeader) FileName() string { return HeaderFileName(h.UID, h.DateLastModified) }

func (h *PatientHeader) String() string { return h.MRN }

// BuildHeader projects p into a new header. The header shares no memory with
// p, so pruning one never affects the other.
func BuildHeader(p *Patient) *PatientHeader {
	h := NewPatientHeader()
	h.MRN = p.MRN
	h.NameFirst = p.NameFirst
	h.NameLast = p.NameLast
	h.Gender = p.Gender
	h.UID = p.UID
	h.DateLastModified = p.DateLastModified
	h.DateOfBirth = p.DateOfBirth

	for _, c := range p.Cases {
		h.Cases = append(h.Cases, stripCase(c))
	}
	for _, n := range p.TreatmentNotes {
		note := &TreatmentNote{
			DateLastEdited: n.DateLastEdited,
			Note:           n.Note,
		}
		h.TreatmentNotes = append(h.TreatmentNotes, note)
	}
	for _, q := range p.QCLs {
		qcl := *q
		h.QCLs = append(h.QCLs, &qcl)
	}
	return h
}

func stripCase(c *Case) *StrippedDownCase {
	stripped := &StrippedDownCase{}
	stripped.SetDefaults()
	stripped.CaseName = c.CaseName
	stripped.BodySite = c.BodySite

	for _, roi := range c.BaseROIs {
		stripped.ROIs = append(stripped.ROIs, &StrippedDownRegionOfInterest{Name: roi.Name, Type: roi.Type})
	}
	for _, poi := range c.BasePOIs {
		stripped.POIs = append(stripped.POIs, poi.Name)
	}
	for _, tp := range c.TreatmentPlans {
		plan := &StrippedDownPlan{PlanName: tp.PlanName, PlannedBy: tp.PlannedBy}
		if tp.Review != nil {
			review := *tp.Review
			plan.Review = &review
		}
		stripped.TreatmentPlans = append(stripped.TreatmentPlans, plan)
	}
	return stripped
}
