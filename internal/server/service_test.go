package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ThiagoRGoveia/treatment-records/internal/database"
	"github.com/ThiagoRGoveia/treatment-records/internal/models"
	"github.com/ThiagoRGoveia/treatment-records/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDBManager struct {
	mock.Mock
}

func (m *MockDBManager) CreatePatientHeadersTable() error {
	return nil
}

func (m *MockDBManager) CreatePatientHeadersIndexes() error {
	return nil
}

func (m *MockDBManager) ReplaceDatabaseHeaders(dbName string, rows []database.HeaderRow) (*database.IndexResult, error) {
	return nil, nil
}

func (m *MockDBManager) CountPatientHeaders() (map[string]int, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func newHeader(mrn, plan string, approved bool, regions ...string) *models.PatientHeader {
	h := models.NewPatientHeader()
	h.MRN = mrn
	h.UID = mrn
	h.NameLast = "Patient " + mrn
	h.DateLastModified = models.DateTime{Year: 2024, Month: 5, Day: 6, Hour: 7, Minute: 8}
	c := &models.StrippedDownCase{CaseName: "Case 1"}
	review := &models.Review{ApprovalStatus: "UnApproved"}
	if approved {
		review.ApprovalStatus = models.ApprovedStatus
	}
	c.TreatmentPlans = append(c.TreatmentPlans, &models.StrippedDownPlan{PlanName: plan, Review: review})
	for _, r := range regions {
		c.ROIs = append(c.ROIs, &models.StrippedDownRegionOfInterest{Name: r})
	}
	h.Cases = append(h.Cases, c)
	return h
}

func buildService(dbManager database.DBManager) *PatientService {
	headers := store.NewHeaderCollection(nil, nil)
	db1 := store.NewHeaderDatabase("DB1", nil, nil)
	db1.Put(newHeader("100", "Prostate VMAT", true, "PTV", "Bladder"))
	db1.Put(newHeader("200", "prostate draft", false, "Rectum", "zz_ring"))
	headers.Add(db1)
	headers.Add(store.NewHeaderDatabase("DB2", nil, nil))
	return NewPatientService(headers, []string{"zz"}, dbManager, nil)
}

func serve(service *PatientService, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", target, nil)
	rr := httptest.NewRecorder()
	SetupRoutes(service, nil).ServeHTTP(rr, req)
	return rr
}

func TestPatientService_ListDatabases(t *testing.T) {
	rr := serve(buildService(nil), "/databases")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var infos []DatabaseInfo
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&infos))
	assert.Equal(t, []DatabaseInfo{{Name: "DB1", Patients: 2}, {Name: "DB2", Patients: 0}}, infos)
}

func TestPatientService_ListPatients(t *testing.T) {
	service := buildService(nil)

	t.Run("should list every patient of the database", func(t *testing.T) {
		rr := serve(service, "/databases/DB1/patients")

		assert.Equal(t, http.StatusOK, rr.Code)
		var patients []PatientInfo
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&patients))
		require.Len(t, patients, 2)
		assert.Equal(t, PatientInfo{
			MRN:          "100",
			UID:          "100",
			NameLast:     "Patient 100",
			Gender:       models.GenderUnknown,
			LastModified: "2024.5.6.7.8",
			Approved:     true,
		}, patients[0])
		assert.False(t, patients[1].Approved)
	})

	t.Run("should filter approved patients", func(t *testing.T) {
		rr := serve(service, "/databases/DB1/patients?approved=true")

		var patients []PatientInfo
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&patients))
		require.Len(t, patients, 1)
		assert.Equal(t, "100", patients[0].MRN)
	})

	t.Run("should return error for invalid approved value", func(t *testing.T) {
		rr := serve(service, "/databases/DB1/patients?approved=maybe")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("should return not found for unknown database", func(t *testing.T) {
		rr := serve(service, "/databases/DB9/patients")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestPatientService_ListPlans(t *testing.T) {
	rr := serve(buildService(nil), "/plans?contains=PROSTATE")

	assert.Equal(t, http.StatusOK, rr.Code)
	var body map[string][]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, []string{"prostate draft"}, body["plans"])
}

func TestPatientService_ListRegions(t *testing.T) {
	rr := serve(buildService(nil), "/regions")

	assert.Equal(t, http.StatusOK, rr.Code)
	var body map[string][]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, []string{"Bladder", "PTV", "Rectum"}, body["regions"])
}

func TestPatientService_GetIndexCounts(t *testing.T) {
	t.Run("should return index counts successfully", func(t *testing.T) {
		dbManager := new(MockDBManager)
		dbManager.On("CountPatientHeaders").Return(map[string]int{"DB1": 2}, nil).Once()

		rr := serve(buildService(dbManager), "/index")

		assert.Equal(t, http.StatusOK, rr.Code)
		var counts map[string]int
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&counts))
		assert.Equal(t, map[string]int{"DB1": 2}, counts)
		dbManager.AssertExpectations(t)
	})

	t.Run("should return error when db manager fails", func(t *testing.T) {
		dbManager := new(MockDBManager)
		dbManager.On("CountPatientHeaders").Return(nil, errors.New("db error")).Once()

		rr := serve(buildService(dbManager), "/index")

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		dbManager.AssertExpectations(t)
	})

	t.Run("should return not found without an index", func(t *testing.T) {
		rr := serve(buildService(nil), "/index")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
