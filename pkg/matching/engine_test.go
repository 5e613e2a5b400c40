package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyodell/bjj-tournament-tracker/pkg/models"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

type fakeGymStore struct {
	candidates []models.SourceGym
	incoming   []models.SourceGym
}

func (s *fakeGymStore) ListByOrgAndCountry(_ context.Context, org models.Org, countryCode string, countryName string, afterExternalID string, limit int) ([]models.SourceGym, error) {
	var page []models.SourceGym
	for _, gym := range s.candidates {
		code := gym.CountryCode != nil && *gym.CountryCode == countryCode
		name := gym.Country != nil && *gym.Country == countryName
		if gym.Org != org || (!code && !name) {
			continue
		}
		if afterExternalID != "" && gym.ExternalID <= afterExternalID {
			continue
		}
		page = append(page, gym)
		if len(page) == limit {
			break
		}
	}
	return page, nil
}

func (s *fakeGymStore) ListUnlinkedByOrg(_ context.Context, org models.Org, afterExternalID string, limit int) ([]models.SourceGym, error) {
	var page []models.SourceGym
	for _, gym := range s.incoming {
		if gym.Org != org || gym.MasterGymID != nil {
			continue
		}
		if afterExternalID != "" && gym.ExternalID <= afterExternalID {
			continue
		}
		page = append(page, gym)
		if len(page) == limit {
			break
		}
	}
	return page, nil
}

type linkCall struct {
	incomingID  string
	candidateID string
}

type fakeLinker struct {
	calls   []linkCall
	failFor map[string]error
}

func (l *fakeLinker) Link(_ context.Context, gymA, gymB *models.SourceGym) (*models.MasterGym, error) {
	if err, ok := l.failFor[gymA.ID()]; ok {
		return nil, err
	}
	l.calls = append(l.calls, linkCall{incomingID: gymA.ID(), candidateID: gymB.ID()})
	return &models.MasterGym{ID: "master-1", Name: gymA.Name}, nil
}

type enqueueCall struct {
	incomingID  string
	candidateID string
	confidence  int
	signals     models.MatchSignals
}

type fakeReviewer struct {
	calls []enqueueCall
}

func (r *fakeReviewer) Enqueue(_ context.Context, gymA, gymB *models.SourceGym, confidence int, signals models.MatchSignals) (*models.PendingMatch, error) {
	r.calls = append(r.calls, enqueueCall{
		incomingID:  gymA.ID(),
		candidateID: gymB.ID(),
		confidence:  confidence,
		signals:     signals,
	})
	return &models.PendingMatch{ID: "match-1"}, nil
}

func candidate(externalID, name string, city *string) models.SourceGym {
	code := "US"
	return models.SourceGym{
		Org:         models.OrgIBJJF,
		ExternalID:  externalID,
		Name:        name,
		City:        city,
		CountryCode: &code,
	}
}

func incoming(externalID, name string, city *string) models.SourceGym {
	return models.SourceGym{
		Org:        models.OrgNAGA,
		ExternalID: externalID,
		Name:       name,
		City:       city,
	}
}

func newTestEngine(store *fakeGymStore, linker *fakeLinker, reviewer *fakeReviewer) *Engine {
	cfg := DefaultConfig()
	cfg.PageSize = 2
	return NewEngine(store, linker, reviewer, cfg, testLogger())
}

func TestRunPassAutoLinksHighConfidence(t *testing.T) {
	store := &fakeGymStore{
		candidates: []models.SourceGym{candidate("c1", "Gracie Barra Austin", strptr("Austin"))},
		incoming:   []models.SourceGym{incoming("n1", "Gracie Barra Austin", strptr("Austin"))},
	}
	linker := &fakeLinker{}
	reviewer := &fakeReviewer{}

	summary, err := newTestEngine(store, linker, reviewer).RunPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.AutoLinked)
	assert.Equal(t, 0, summary.Queued)
	require.Len(t, linker.calls, 1)
	assert.Equal(t, "naga#n1", linker.calls[0].incomingID)
	assert.Equal(t, "ibjjf#c1", linker.calls[0].candidateID)
}

func TestRunPassQueuesMidConfidence(t *testing.T) {
	store := &fakeGymStore{
		candidates: []models.SourceGym{
			candidate("c1", "Iron Fortress Jiu Jitsu", nil),
			candidate("c2", "Gracie Barra Austin", nil),
		},
		incoming: []models.SourceGym{incoming("n1", "Iron Fortress BJJ", nil)},
	}
	linker := &fakeLinker{}
	reviewer := &fakeReviewer{}

	summary, err := newTestEngine(store, linker, reviewer).RunPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Queued)
	assert.Empty(t, linker.calls)
	require.Len(t, reviewer.calls, 1)
	assert.Equal(t, "ibjjf#c1", reviewer.calls[0].candidateID)
	assert.GreaterOrEqual(t, reviewer.calls[0].confidence, ReviewThreshold)
	assert.Less(t, reviewer.calls[0].confidence, AutoLinkThreshold)
	assert.Equal(t, reviewer.calls[0].confidence, reviewer.calls[0].signals.NameSimilarity)
}

func TestRunPassNoMatchLowConfidence(t *testing.T) {
	store := &fakeGymStore{
		candidates: []models.SourceGym{candidate("c1", "Gracie Barra Austin", nil)},
		incoming:   []models.SourceGym{incoming("n1", "Powerhouse Wrestling Club", nil)},
	}
	linker := &fakeLinker{}
	reviewer := &fakeReviewer{}

	summary, err := newTestEngine(store, linker, reviewer).RunPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.NoMatch)
	assert.Empty(t, linker.calls)
	assert.Empty(t, reviewer.calls)
}

func TestRunPassEmptyPoolIsAllNoMatch(t *testing.T) {
	store := &fakeGymStore{
		incoming: []models.SourceGym{
			incoming("n1", "Gym One", nil),
			incoming("n2", "Gym Two", nil),
		},
	}
	linker := &fakeLinker{}
	reviewer := &fakeReviewer{}

	summary, err := newTestEngine(store, linker, reviewer).RunPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 2, summary.NoMatch)
}

func TestRunPassTieBreaksOnExternalID(t *testing.T) {
	// Two candidates score identically; the lower external id must win so
	// reruns are deterministic.
	store := &fakeGymStore{
		candidates: []models.SourceGym{
			candidate("c1", "Alpha Jiu Jitsu", nil),
			candidate("c2", "Alpha Jiu Jitsu", nil),
		},
		incoming: []models.SourceGym{incoming("n1", "Alpha Jiu Jitsu", nil)},
	}
	linker := &fakeLinker{}
	reviewer := &fakeReviewer{}

	_, err := newTestEngine(store, linker, reviewer).RunPass(context.Background())
	require.NoError(t, err)

	require.Len(t, linker.calls, 1)
	assert.Equal(t, "ibjjf#c1", linker.calls[0].candidateID)
}

func TestRunPassRecordsErrorsAndContinues(t *testing.T) {
	store := &fakeGymStore{
		candidates: []models.SourceGym{candidate("c1", "Gracie Barra Austin", strptr("Austin"))},
		incoming: []models.SourceGym{
			incoming("n1", "Gracie Barra Austin", strptr("Austin")),
			incoming("n2", "Gracie Barra Austin", strptr("Austin")),
		},
	}
	linker := &fakeLinker{failFor: map[string]error{
		"naga#n1": errors.New("storage unavailable"),
	}}
	reviewer := &fakeReviewer{}

	summary, err := newTestEngine(store, linker, reviewer).RunPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 1, summary.AutoLinked)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "naga#n1", summary.Errors[0].SourceGymID)
	assert.Contains(t, summary.Errors[0].Message, "storage unavailable")
}

func TestRunPassCancelledContext(t *testing.T) {
	store := &fakeGymStore{
		incoming: []models.SourceGym{incoming("n1", "Gym One", nil)},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestEngine(store, &fakeLinker{}, &fakeReviewer{}).RunPass(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
