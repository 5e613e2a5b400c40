package sourcegym

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
	gyms    map[string]*models.SourceGym
	upserts []*models.UpsertSourceGymRequest
}

func (s *fakeStore) Upsert(_ context.Context, req *models.UpsertSourceGymRequest) (*models.SourceGym, error) {
	s.upserts = append(s.upserts, req)
	gym := &models.SourceGym{
		Org:        req.Org,
		ExternalID: req.ExternalID,
		Name:       req.Name,
		City:       req.City,
	}
	if s.gyms == nil {
		s.gyms = map[string]*models.SourceGym{}
	}
	s.gyms[gym.ID()] = gym
	return gym, nil
}

func (s *fakeStore) Get(_ context.Context, org models.Org, externalID string) (*models.SourceGym, error) {
	gym, ok := s.gyms[models.SourceGymID(org, externalID)]
	if !ok {
		return nil, httperror.NewHTTPError(http.StatusNotFound, "source gym not found")
	}
	return gym, nil
}

func setup(store *fakeStore) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = middleware.Error(ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {}))
	NewHandler(store).Register(e.Group("/api/v1/source-gyms"))
	return e
}

func TestUpsertSourceGym(t *testing.T) {
	store := &fakeStore{}
	e := setup(store)

	body := `{"org":"naga","external_id":"n1","name":"Iron Fortress BJJ","city":"Dallas"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/source-gyms", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, store.upserts, 1)
	assert.Equal(t, models.OrgNAGA, store.upserts[0].Org)
	assert.Equal(t, "n1", store.upserts[0].ExternalID)
}

func TestUpsertRejectsUnknownOrg(t *testing.T) {
	e := setup(&fakeStore{})

	body := `{"org":"adcc","external_id":"x1","name":"Somewhere"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/source-gyms", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpsertRequiresName(t *testing.T) {
	e := setup(&fakeStore{})

	body := `{"org":"ibjjf","external_id":"c1"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/source-gyms", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSourceGym(t *testing.T) {
	store := &fakeStore{gyms: map[string]*models.SourceGym{
		"ibjjf#c1": {Org: models.OrgIBJJF, ExternalID: "c1", Name: "Gracie Barra Austin"},
	}}
	e := setup(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/source-gyms/ibjjf/c1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Gracie Barra Austin")
}

func TestGetSourceGymNotFound(t *testing.T) {
	e := setup(&fakeStore{gyms: map[string]*models.SourceGym{}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/source-gyms/naga/missing", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
