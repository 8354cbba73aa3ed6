package models

import (
	"math"
	"testing"
	"time"

	"github.com/ThiagoRGoveia/treatment-records/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func approvedReview() *Review {
	return &Review{
		ApprovalStatus: ApprovedStatus,
		ReviewerName:   "dr.who",
		ReviewTime:     DateTime{Year: 2024, Month: 3, Day: 2, Hour: 9},
	}
}

func samplePatient() *Patient {
	p := NewPatient()
	p.MRN = "00123:45"
	p.DefineUID()
	p.NameFirst = "Ada"
	p.NameLast = "Lovelace"
	p.Gender = GenderFemale
	p.DateLastModified = DateTime{Year: 2024, Month: 5, Day: 6, Hour: 7, Minute: 8, Second: 9}
	p.DateOfBirth = DateTime{Year: 1815, Month: 12, Day: 10}

	c := NewCase()
	c.CaseName = "Case 1"
	c.BodySite = "Pelvis"
	c.BaseROIs = append(c.BaseROIs, &RegionOfInterestBase{
		Name:      "Bladder",
		Type:      "Organ",
		Material:  &RoiMaterial{Name: "Water", MassDensity: 1},
		OrganData: &OrganData{OrganType: "OrganAtRisk"},
	})
	c.BasePOIs = append(c.BasePOIs, &PointOfInterestBase{Name: "Iso", Type: "Isocenter"})

	exam := NewExamination()
	exam.ExamName = "CT 1"
	exam.EquipmentInfo = &EquipmentInfo{FrameOfReference: "1.2.3", Modality: "CT"}
	exam.ROIs = append(exam.ROIs, &RegionOfInterest{Name: "Bladder", Volume: 120.5, Defined: true})
	exam.POIs = append(exam.POIs, &PointOfInterest{Name: "Iso", X: 1, Y: 2, Z: 3})
	exam.ExamDateTime = &DateTime{Year: 2024, Month: 1, Day: 2}
	c.Examinations = append(c.Examinations, exam)

	beamSet := &BeamSet{}
	beamSet.SetDefaults()
	beamSet.DicomPlanLabel = "Pelvis_VMAT"
	beamSet.Beams = append(beamSet.Beams, &Beam{BeamName: "1", GantryAngle: 181, SSD: -1})
	beamSet.Prescriptions = append(beamSet.Prescriptions, &Prescription{
		DoseValue:     4500,
		ReferencedROI: &RegionOfInterest{Name: "PTV"},
	})
	beamSet.PrimaryPrescription = beamSet.Prescriptions[0]
	dose := &FractionDose{Name: "fx"}
	dose.SetDefaults()
	dvh := &RegionOfInterestDose{}
	dvh.SetDefaults()
	dvh.Name = "Bladder"
	dvh.AbsoluteDose = []float64{10, 20, math.NaN()}
	dose.DoseROIs = append(dose.DoseROIs, dvh)
	beamSet.FractionDose = dose

	approved := &TreatmentPlan{PlanName: "Approved plan", PlannedBy: "someone", Review: approvedReview()}
	approved.SetDefaults()
	approved.BeamSets = append(approved.BeamSets, beamSet)
	draft := &TreatmentPlan{PlanName: "Draft plan"}
	draft.SetDefaults()
	c.TreatmentPlans = append(c.TreatmentPlans, approved, draft)

	reg := &Registration{IsDeformable: true}
	reg.SetDefaults()
	reg.RigidTransformMatrix = []float64{1, 0, 0, 1}
	c.Registrations = append(c.Registrations, reg)

	unapprovedCase := NewCase()
	unapprovedCase.CaseName = "Case 2"
	rejected := &TreatmentPlan{PlanName: "Rejected", Review: &Review{ApprovalStatus: "Rejected"}}
	rejected.SetDefaults()
	unapprovedCase.TreatmentPlans = append(unapprovedCase.TreatmentPlans, rejected)

	p.Cases = append(p.Cases, c, unapprovedCase)
	p.TreatmentNotes = append(p.TreatmentNotes, &TreatmentNote{
		DateLastEdited: DateTime{Year: 2024, Month: 4, Day: 1},
		Note:           "Sim done",
		StaffFirstName: "Grace",
	})
	p.QCLs = append(p.QCLs, &QCL{
		Description: "Chart check",
		CreatedTime: DateTime{Year: 2024, Month: 4, Day: 1},
		DueTime:     DateTime{Year: 2024, Month: 4, Day: 3},
	})
	return p
}

func TestPatient_RoundTrip(t *testing.T) {
	p := samplePatient()

	text, err := schema.Encode(p)
	require.NoError(t, err)

	decoded, err := schema.Decode[Patient](text)
	require.NoError(t, err)

	// NaN never equals itself, so compare the DVH separately.
	gotDVH := decoded.Cases[0].TreatmentPlans[0].BeamSets[0].FractionDose.DoseROIs[0]
	wantDVH := p.Cases[0].TreatmentPlans[0].BeamSets[0].FractionDose.DoseROIs[0]
	require.Len(t, gotDVH.AbsoluteDose, 3)
	assert.True(t, math.IsNaN(gotDVH.AbsoluteDose[2]))
	gotDVH.AbsoluteDose[2], wantDVH.AbsoluteDose[2] = 0, 0

	assert.Equal(t, p, decoded)
}

func TestMultipleDateTimes_RoundTrip(t *testing.T) {
	m := &MultipleDateTimes{}
	m.SetDefaults()
	first := DateTime{Year: 2020, Month: 2, Day: 3}
	second := DateTime{Year: 2021, Month: 4, Day: 5, Hour: 6}
	m.NumberList = []int{1, 2, 3}
	m.NumberDict = map[string]int{"a": 1, "b": 2}
	m.DateTimeList = []DateTime{first, second}
	m.DateTimeDict = map[int]DateTime{1: first, 2: second}
	m.DateTimeIndex = map[DateTime]int{first: 1, second: 2}
	m.Number = 42
	m.String = "text"

	text, err := schema.Encode(m)
	require.NoError(t, err)

	decoded, err := schema.Decode[MultipleDateTimes](text)
	require.NoError(t, err)
	assert.Equal(t, m, decoded)
}

func TestDecode_DefaultsForMissingFields(t *testing.T) {
	p, err := schema.Decode[Patient]([]byte(`{"__PatientClass__":true,"MRN":"1"}`))
	require.NoError(t, err)
	assert.Equal(t, GenderUnknown, p.Gender)
	assert.Equal(t, NewDateTime(), p.DateOfBirth)
	assert.NotNil(t, p.Cases)

	b, err := schema.Decode[Beam]([]byte(`{"__BeamClass__":true}`))
	require.NoError(t, err)
	assert.Equal(t, -1.0, b.SSD)

	d, err := schema.Decode[RegionOfInterestDose]([]byte(`{"__RegionOfInterestDose__":true}`))
	require.NoError(t, err)
	assert.Equal(t, 1, d.ScalingFactor)
	assert.Equal(t, 0.01, d.DVHStep)
}

func TestDecode_HeaderAsPatientIsSchemaMismatch(t *testing.T) {
	text, err := schema.Encode(BuildHeader(samplePatient()))
	require.NoError(t, err)

	p, err := schema.Decode[Patient](text)
	assert.Nil(t, p)
	var mismatch *schema.SchemaMismatch
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "PatientClass", mismatch.Expected)
	assert.Equal(t, "PatientHeader", mismatch.Found)
}

func TestBuildHeader(t *testing.T) {
	p := samplePatient()
	h := BuildHeader(p)

	t.Run("identity fields match the full record", func(t *testing.T) {
		assert.Equal(t, p.Key(), h.Key())
		assert.Equal(t, p.MRN, h.MRN)
		assert.Equal(t, p.NameFirst, h.NameFirst)
		assert.Equal(t, p.NameLast, h.NameLast)
		assert.Equal(t, p.Gender, h.Gender)
		assert.Equal(t, p.DateLastModified, h.DateLastModified)
		assert.Equal(t, p.DateOfBirth, h.DateOfBirth)
	})

	t.Run("cases are reduced", func(t *testing.T) {
		require.Len(t, h.Cases, 2)
		c := h.Cases[0]
		assert.Equal(t, "Case 1", c.CaseName)
		assert.Equal(t, "Pelvis", c.BodySite)
		assert.Equal(t, []*StrippedDownRegionOfInterest{{Name: "Bladder", Type: "Organ"}}, c.ROIs)
		assert.Equal(t, []string{"Iso"}, c.POIs)
		require.Len(t, c.TreatmentPlans, 2)
		assert.True(t, c.TreatmentPlans[0].IsApproved())
		assert.False(t, c.TreatmentPlans[1].IsApproved())
	})

	t.Run("notes keep date and text only", func(t *testing.T) {
		require.Len(t, h.TreatmentNotes, 1)
		assert.Equal(t, "Sim done", h.TreatmentNotes[0].Note)
		assert.Empty(t, h.TreatmentNotes[0].StaffFirstName)
		assert.Equal(t, p.QCLs[0], h.QCLs[0])
	})

	t.Run("header does not share memory with the record", func(t *testing.T) {
		h.Cases[0].TreatmentPlans[0].Review.ApprovalStatus = "Changed"
		h.QCLs[0].Description = "Changed"
		assert.Equal(t, ApprovedStatus, p.Cases[0].TreatmentPlans[0].Review.ApprovalStatus)
		assert.Equal(t, "Chart check", p.QCLs[0].Description)
	})
}

func TestPruneUnapproved(t *testing.T) {
	t.Run("patient", func(t *testing.T) {
		p := samplePatient()
		assert.True(t, p.HasApproved())

		assert.True(t, p.PruneUnapproved())
		once, err := schema.Encode(p)
		require.NoError(t, err)

		require.Len(t, p.Cases, 1)
		require.Len(t, p.Cases[0].TreatmentPlans, 1)
		assert.Equal(t, "Approved plan", p.Cases[0].TreatmentPlans[0].PlanName)

		assert.True(t, p.PruneUnapproved())
		twice, err := schema.Encode(p)
		require.NoError(t, err)
		assert.Equal(t, string(once), string(twice))
	})

	t.Run("header", func(t *testing.T) {
		h := BuildHeader(samplePatient())
		assert.True(t, h.PruneUnapproved())
		require.Len(t, h.Cases, 1)
		assert.Equal(t, []PlanView{{Name: "Approved plan", Approved: true}}, h.Plans())
	})

	t.Run("nothing approved", func(t *testing.T) {
		p := samplePatient()
		p.Cases = p.Cases[1:]
		assert.False(t, p.HasApproved())
		assert.False(t, p.PruneUnapproved())
		assert.Empty(t, p.Cases)
	})
}

func TestPlansAndRegions(t *testing.T) {
	p := samplePatient()
	assert.Equal(t, []PlanView{
		{Name: "Approved plan", Approved: true},
		{Name: "Draft plan"},
		{Name: "Rejected"},
	}, p.Plans())
	assert.Equal(t, []string{"Bladder"}, p.RegionNames())
	assert.Equal(t, []string{"Bladder"}, BuildHeader(p).RegionNames())
}

func TestSanitizeKey(t *testing.T) {
	assert.Equal(t, "0012345", SanitizeKey(`00<12>:"3/\4|?5*`))
	assert.Equal(t, "plain_id", SanitizeKey("plain_id"))
}

func TestFileNames(t *testing.T) {
	modified := DateTime{Year: 2024, Month: 1, Day: 2, Hour: 3, Minute: 4, Second: 59}

	assert.Equal(t, "K_2024.1.2.3.4.json", RecordFileName("K", modified))
	assert.Equal(t, "K_2024.1.2.3.4_Header.json", HeaderFileName("K", modified))

	tests := []struct {
		name string
		want FileName
		ok   bool
	}{
		{"A_B_2024.1.1.0.0.json", FileName{Key: "A_B", Stamp: "2024.1.1.0.0", Ext: ".json"}, true},
		{"A_2024.1.1.0.0_Header.json", FileName{Key: "A", Stamp: "2024.1.1.0.0", Header: true, Ext: ".json"}, true},
		{"/tmp/db/A_2024.1.1.0.0.txt", FileName{Key: "A", Stamp: "2024.1.1.0.0", Ext: ".txt"}, true},
		{"Last_Updated.txt", FileName{Key: "Last", Stamp: "Updated", Ext: ".txt"}, true},
		{"notes.md", FileName{}, false},
		{"nounderscore.json", FileName{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseFileName(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.True(t, IsRecordFile("A_2024.1.1.0.0.json"))
	assert.False(t, IsRecordFile("A_2024.1.1.0.0_Header.json"))
	assert.True(t, IsHeaderFile("A_2024.1.1.0.0_Header.json"))
	assert.Equal(t, "/d/A_1.json", RecordPathFor("/d/A_1_Header.json"))
	assert.Equal(t, "/d/A_1_Header.json", HeaderPathFor("/d/A_1.json"))
}

func TestDateTime(t *testing.T) {
	d := DateTime{Year: 2024, Month: 2, Day: 29, Hour: 23, Minute: 5}
	assert.Equal(t, "2024.2.29.23.5", d.Stamp())
	assert.Equal(t, "2/29/2024", d.String())

	parsed, err := ParseStamp("2024.2.29.23.5")
	require.NoError(t, err)
	assert.Equal(t, d, parsed)

	_, err = ParseStamp("2024.2.29")
	assert.Error(t, err)

	later := DateTime{Year: 2024, Month: 3, Day: 1, Hour: 23, Minute: 5}
	assert.Equal(t, 24*time.Hour, later.Sub(d))
}

func TestRegistry(t *testing.T) {
	reg, err := Registry()
	require.NoError(t, err)
	assert.Contains(t, reg.Types(), "PatientClass")
	assert.Contains(t, reg.Types(), "PatientHeader")

	text, err := schema.Encode(BuildHeader(samplePatient()))
	require.NoError(t, err)
	rec, err := reg.DecodeAny(text)
	require.NoError(t, err)
	assert.IsType(t, &PatientHeader{}, rec)
}
