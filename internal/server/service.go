package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ThiagoRGoveia/treatment-records/internal/database"
	"github.com/ThiagoRGoveia/treatment-records/internal/models"
	"github.com/ThiagoRGoveia/treatment-records/internal/query"
	"github.com/ThiagoRGoveia/treatment-records/internal/store"
)

// PatientService serves read-only views of a loaded header collection.
type PatientService struct {
	Headers    *store.HeaderCollection
	RegionDeny []string
	// DBManager is optional; without it the index view is not served.
	DBManager database.DBManager
	logger    *slog.Logger
}

func NewPatientService(headers *store.HeaderCollection, regionDeny []string, dbManager database.DBManager, logger *slog.Logger) *PatientService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PatientService{Headers: headers, RegionDeny: regionDeny, DBManager: dbManager, logger: logger}
}

type DatabaseInfo struct {
	Name     string `json:"name"`
	Patients int    `json:"patients"`
}

type PatientInfo struct {
	MRN          string `json:"mrn"`
	UID          string `json:"rs_uid"`
	NameFirst    string `json:"name_first"`
	NameLast     string `json:"name_last"`
	Gender       int    `json:"gender"`
	LastModified string `json:"last_modified"`
	Approved     bool   `json:"approved"`
	FilePath     string `json:"file_path"`
}

func patientInfoFrom(h *models.PatientHeader) PatientInfo {
	return PatientInfo{
		MRN:          h.MRN,
		UID:          h.UID,
		NameFirst:    h.NameFirst,
		NameLast:     h.NameLast,
		Gender:       h.Gender,
		LastModified: h.DateLastModified.Stamp(),
		Approved:     h.HasApproved(),
		FilePath:     h.FilePath,
	}
}

func (h *PatientService) ListDatabases(w http.ResponseWriter, r *http.Request) {
	infos := make([]DatabaseInfo, 0, len(h.Headers.Databases))
	for _, name := range h.Headers.Names() {
		db, _ := h.Headers.Get(name)
		infos = append(infos, DatabaseInfo{Name: name, Patients: db.Len()})
	}
	h.writeJSON(w, infos)
}

func (h *PatientService) ListPatients(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	db, ok := h.Headers.Get(name)
	if !ok {
		http.Error(w, "Database not found: "+name, http.StatusNotFound)
		return
	}

	approvedOnly := false
	if v := r.URL.Query().Get("approved"); v != "" {
		var err error
		approvedOnly, err = strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "Invalid 'approved' value. Use true or false.", http.StatusBadRequest)
			return
		}
	}
	if approvedOnly {
		db = query.Approved(db)
	}

	patients := make([]PatientInfo, 0, db.Len())
	for _, header := range db.Values() {
		patients = append(patients, patientInfoFrom(header))
	}
	h.writeJSON(w, patients)
}

func (h *PatientService) ListPlans(w http.ResponseWriter, r *http.Request) {
	find := r.URL.Query().Get("contains")
	h.writeJSON(w, map[string][]string{"plans": query.CollectionPlanNamesContaining(h.Headers, find)})
}

func (h *PatientService) ListRegions(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string][]string{"regions": query.RegionNames(h.Headers, h.RegionDeny)})
}

func (h *PatientService) GetIndexCounts(w http.ResponseWriter, r *http.Request) {
	if h.DBManager == nil {
		http.Error(w, "Index is not configured", http.StatusNotFound)
		return
	}
	counts, err := h.DBManager.CountPatientHeaders()
	if err != nil {
		h.logger.Error("Failed to count indexed headers", "error", err)
		http.Error(w, "Failed to retrieve index information", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, counts)
}

func (h *PatientService) writeJSON(w http.ResponseWriter, v any) {
	if err := writeJSON(w, v); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return err
	}
	return nil
}
