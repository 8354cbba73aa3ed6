package models

import (
	"strings"

	"github.com/ThiagoRGoveia/treatment-records/internal/schema"
)

// Case groups the examinations, structures and plans of one treatment course.
type Case struct {
	CaseName         string
	CaseUID          int
	BodySite         string
	HadDeformableReg bool
	BaseROIs         []*RegionOfInterestBase
	BasePOIs         []*PointOfInterestBase
	Examinations     []*Examination
	TreatmentPlans   []*TreatmentPlan
	Registrations    []*Registration
}

func NewCase() *Case {
	c := &Case{}
	c.SetDefaults()
	return c
}

func (c *Case) TypeName() string { return "CaseClass" }

func (c *Case) SetDefaults() {
	c.BaseROIs = []*RegionOfInterestBase{}
	c.BasePOIs = []*PointOfInterestBase{}
	c.Examinations = []*Examination{}
	c.TreatmentPlans = []*TreatmentPlan{}
	c.Registrations = []*Registration{}
}

func (c *Case) Fields() []schema.Field {
	return []schema.Field{
		schema.String("CaseName", &c.CaseName),
		schema.Int("Case_UID", &c.CaseUID),
		schema.String("BodySite", &c.BodySite),
		schema.Bool("HadDeformableReg", &c.HadDeformableReg),
		schema.Sequence("Base_ROIs", &c.BaseROIs, schema.Ref[RegionOfInterestBase]()),
		schema.Sequence("Base_POIs", &c.BasePOIs, schema.Ref[PointOfInterestBase]()),
		schema.Sequence("Examinations", &c.Examinations, schema.Ref[Examination]()),
		schema.Sequence("TreatmentPlans", &c.TreatmentPlans, schema.Ref[TreatmentPlan]()),
		schema.Sequence("Registrations", &c.Registrations, schema.Ref[Registration]()),
	}
}

type TreatmentNote struct {
	DateLastEdited DateTime
	Note           string
	StaffFirstName string
	StaffLastName  string
}

func (n *TreatmentNote) TypeName() string { return "TreatmentNoteClass" }

func (n *TreatmentNote) SetDefaults() { n.DateLastEdited = NewDateTime() }

func (n *TreatmentNote) Fields() []schema.Field {
	return []schema.Field{
		schema.Nested("DateLastEdited", &n.DateLastEdited),
		schema.String("Note", &n.Note),
		schema.String("StaffFirstName", &n.StaffFirstName),
		schema.String("StaffLastName", &n.StaffLastName),
	}
}

// QCL is a quality checklist item attached to a patient.
type QCL struct {
	Description      string
	CreatedTime      DateTime
	DueTime          DateTime
	Completed        bool
	ResponsibleStaff string
	CompletedStaff   string
}

func (q *QCL) TypeName() string { return "QCLClass" }

func (q *QCL) SetDefaults() {
	q.CreatedTime = NewDateTime()
	q.DueTime = NewDateTime()
}

func (q *QCL) Fields() []schema.Field {
	return []schema.Field{
		schema.String("Description", &q.Description),
		schema.Nested("CreatedTime", &q.CreatedTime),
		schema.Nested("DueTime", &q.DueTime),
		schema.Bool("Completed", &q.Completed),
		schema.String("ResponsibleStaff", &q.ResponsibleStaff),
		schema.String("CompletedStaff", &q.CompletedStaff),
	}
}

// Gender values carried by patients and headers.
const (
	GenderUnknown = -1
	GenderMale    = 0
	GenderFemale  = 1
)

// Patient is the full record stored one file per key.
type Patient struct {
	UID              string
	PatientUID       int
	Cases            []*Case
	DateLastModified DateTime
	MRN              string
	NameFirst        string
	NameLast         string
	Gender           int
	DateOfBirth      DateTime
	TreatmentNotes   []*TreatmentNote
	QCLs             []*QCL
}

func NewPatient() *Patient {
	p := &Patient{}
	p.SetDefaults()
	return p
}

func (p *Patient) TypeName() string { return "PatientClass" }

func (p *Patient) SetDefaults() {
	p.Cases = []*Case{}
	p.DateLastModified = NewDateTime()
	p.Gender = GenderUnknown
	p.DateOfBirth = NewDateTime()
	p.TreatmentNotes = []*TreatmentNote{}
	p.QCLs = []*QCL{}
}

func (p *Patient) Fields() []schema.Field {
	return []schema.Field{
		schema.String("RS_UID", &p.UID),
		schema.Int("Patient_UID", &p.PatientUID),
		schema.Sequence("Cases", &p.Cases, schema.Ref[Case]()),
		schema.Nested("DateLastModified", &p.DateLastModified),
		schema.String("MRN", &p.MRN),
		schema.String("Name_First", &p.NameFirst),
		schema.String("Name_Last", &p.NameLast),
		schema.Int("Gender", &p.Gender),
		schema.Nested("DateOfBirth", &p.DateOfBirth),
		schema.Sequence("TreatmentNotes", &p.TreatmentNotes, schema.Ref[TreatmentNote]()),
		schema.Sequence("QCLs", &p.QCLs, schema.Ref[QCL]()),
	}
}

// DefineUID derives the key from the MRN.
func (p *Patient) DefineUID() { p.UID = SanitizeKey(p.MRN) }

func (p *Patient) Key() string { return p.UID }
func (p *Patient) Identifier() string { return p.MRN }
func (p *Patient) Modified() DateTime { return p.DateLastModified }

// SetFilePath is a no-op: full records do not point at another file.
func (p *Patient) SetFilePath(string) {}

// FileName is the canonical filename of the record.
func (p *Patient) FileName() string { return RecordFileName(p.UID, p.DateLastModified) }

func (p *Patient) String() string { return p.MRN }

func (c *Case) String() string { return c.CaseName + " : " + c.BodySite }

// illegalKeyChars cannot appear in a filename on the hosts that share the
// record directories.
const illegalKeyChars = `<>:"/\|?*`

// SanitizeKey strips filesystem-illegal characters from a natural identifier.
func SanitizeKey(identifier string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(illegalKeyChars, r) {
			return -1
		}
		return r
	}, identifier)
}

// MultipleDateTimes exercises every mapping and sequence shape the codec
// supports, including record-keyed mappings.
type MultipleDateTimes struct {
	NumberList    []int
	NumberDict    map[string]int
	DateTimeList  []DateTime
	DateTimeDict  map[int]DateTime
	DateTimeIndex map[DateTime]int
	Number        int
	String        string
}

func (m *MultipleDateTimes) TypeName() string { return "MultipleDateTimes" }

func (m *MultipleDateTimes) SetDefaults() {
	m.NumberList = []int{}
	m.NumberDict = map[string]int{}
	m.DateTimeList = []DateTime{}
	m.DateTimeDict = map[int]DateTime{}
	m.DateTimeIndex = map[DateTime]int{}
}

func (m *MultipleDateTimes) Fields() []schema.Field {
	return []schema.Field{
		schema.Sequence("Number_list", &m.NumberList, schema.IntCodec()),
		schema.Mapping("Number_dict", &m.NumberDict, schema.StringCodec(), schema.IntCodec()),
		schema.Sequence("DateTimeList", &m.DateTimeList, schema.Of[DateTime]()),
		schema.Mapping("DateTimeDict", &m.DateTimeDict, schema.IntCodec(), schema.Of[DateTime]()),
		schema.Mapping("DateTimeIndex", &m.DateTimeIndex, schema.Of[DateTime](), schema.IntCodec()),
		schema.Int("Number", &m.Number),
		schema.String("String", &m.String),
	}
}
