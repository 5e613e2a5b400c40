package mastergym

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyodell/bjj-tournament-tracker/pkg/middleware"
	"github.com/jeremyodell/bjj-tournament-tracker/pkg/models"
)

type fakeStore struct {
	gyms map[string]*models.MasterGym
}

func (s *fakeStore) Get(_ context.Context, id string) (*models.MasterGym, error) {
	gym, ok := s.gyms[id]
	if !ok {
		return nil, httperror.NewHTTPError(http.StatusNotFound, "master gym not found")
	}
	return gym, nil
}

func (s *fakeStore) List(_ context.Context, _, _ int) ([]models.MasterGym, error) {
	var out []models.MasterGym
	for _, gym := range s.gyms {
		out = append(out, *gym)
	}
	return out, nil
}

type fakeSources struct {
	byMaster map[string][]models.SourceGym
}

func (s *fakeSources) ListByMasterGym(_ context.Context, masterGymID string) ([]models.SourceGym, error) {
	return s.byMaster[masterGymID], nil
}

type fakeUnlinker struct {
	calls [][2]string
}

func (u *fakeUnlinker) Unlink(_ context.Context, masterGymID, sourceGymID string) error {
	u.calls = append(u.calls, [2]string{masterGymID, sourceGymID})
	return nil
}

func setup(store *fakeStore, sources *fakeSources, unlinker *fakeUnlinker) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = middleware.Error(ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {}))
	NewHandler(store, sources, unlinker).Register(e.Group("/api/v1/master-gyms"))
	return e
}

func TestGetMasterGym(t *testing.T) {
	store := &fakeStore{gyms: map[string]*models.MasterGym{
		"m1": {ID: "m1", Name: "Gracie Barra Austin"},
	}}
	e := setup(store, &fakeSources{}, &fakeUnlinker{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/master-gyms/m1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Gracie Barra Austin")
}

func TestListSources(t *testing.T) {
	store := &fakeStore{gyms: map[string]*models.MasterGym{"m1": {ID: "m1", Name: "Alpha"}}}
	sources := &fakeSources{byMaster: map[string][]models.SourceGym{
		"m1": {{Org: models.OrgIBJJF, ExternalID: "c1", Name: "Alpha HQ"}},
	}}
	e := setup(store, sources, &fakeUnlinker{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/master-gyms/m1/sources", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Alpha HQ")
}

func TestUnlinkRequiresSourceGymID(t *testing.T) {
	e := setup(&fakeStore{gyms: map[string]*models.MasterGym{"m1": {ID: "m1"}}}, &fakeSources{}, &fakeUnlinker{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/master-gyms/m1/unlink", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnlinkCallsEngine(t *testing.T) {
	unlinker := &fakeUnlinker{}
	e := setup(&fakeStore{gyms: map[string]*models.MasterGym{"m1": {ID: "m1"}}}, &fakeSources{}, unlinker)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/master-gyms/m1/unlink", strings.NewReader(`{"source_gym_id":"naga#n1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, unlinker.calls, 1)
	assert.Equal(t, [2]string{"m1", "naga#n1"}, unlinker.calls[0])
}
