package generation_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/llmadventure/llmadventure/internal/errors"
	"github.com/llmadventure/llmadventure/internal/generation"
	generationmock "github.com/llmadventure/llmadventure/internal/generation/mock"
)

type PipelineTestSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	mockClient *generationmock.MockClient
	pipeline   *generation.Pipeline
	ctx        context.Context
}

func (s *PipelineTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockClient = generationmock.NewMockClient(s.ctrl)
	s.ctx = context.Background()

	pipeline, err := generation.NewPipeline(&generation.Config{
		Client:         s.mockClient,
		MaxConcurrent:  2,
		MaxRetries:     2,
		BackoffBase:    time.Millisecond,
		RequestTimeout: time.Second,
	})
	s.Require().NoError(err)
	s.pipeline = pipeline
}

func (s *PipelineTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *PipelineTestSuite) request(key string) *generation.Request {
	return &generation.Request{
		Kind: generation.KindDialogueLine,
		Key:  []string{key},
	}
}

func (s *PipelineTestSuite) TestGenerateCachesSuccess() {
	req := s.request("npc-1")

	s.mockClient.EXPECT().
		Generate(gomock.Any(), req).
		Return("line: hello\n", nil).
		Times(1)

	first, err := s.pipeline.Generate(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(generation.StatusSucceeded, first.Status)
	s.Equal("line: hello\n", first.Raw)

	// Second call is served from cache, no outbound call
	second, err := s.pipeline.Generate(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(first.Raw, second.Raw)
	s.Equal(first.Fingerprint, second.Fingerprint)
}

func (s *PipelineTestSuite) TestGenerateRejectsUnknownKind() {
	_, err := s.pipeline.Generate(s.ctx, &generation.Request{Kind: "sonnet"})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *PipelineTestSuite) TestSingleFlightDeduplicates() {
	req := s.request("npc-2")
	release := make(chan struct{})

	s.mockClient.EXPECT().
		Generate(gomock.Any(), req).
		DoAndReturn(func(context.Context, *generation.Request) (string, error) {
			<-release
			return "line: once\n", nil
		}).
		Times(1)

	const callers = 5
	results := make([]*generation.Result, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := s.pipeline.Generate(s.ctx, req)
			s.NoError(err)
			results[i] = res
		}(i)
	}

	// Let the duplicate callers pile up on the pending entry
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, res := range results {
		s.Require().NotNil(res)
		s.Equal(generation.StatusSucceeded, res.Status)
		s.Equal("line: once\n", res.Raw)
	}
}

func (s *PipelineTestSuite) TestTransientExhaustionFallsBackAndRetriesLater() {
	req := s.request("npc-3")

	// First call: initial attempt plus two retries, all transient
	s.mockClient.EXPECT().
		Generate(gomock.Any(), req).
		Return("", errors.Unavailable("rate limited")).
		Times(3)

	res, err := s.pipeline.Generate(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(generation.StatusFallback, res.Status)
	s.NotEmpty(res.Raw)

	// The failed entry is retriable: a later call goes back out
	s.mockClient.EXPECT().
		Generate(gomock.Any(), req).
		Return("line: recovered\n", nil).
		Times(1)

	res, err = s.pipeline.Generate(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(generation.StatusSucceeded, res.Status)
	s.Equal("line: recovered\n", res.Raw)
}

func (s *PipelineTestSuite) TestPermanentFailureCachesFallback() {
	req := s.request("npc-4")

	s.mockClient.EXPECT().
		Generate(gomock.Any(), req).
		Return("", errors.Internal("prompt rejected")).
		Times(1)

	res, err := s.pipeline.Generate(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(generation.StatusFallback, res.Status)

	// Cached for the session; no further outbound calls
	again, err := s.pipeline.Generate(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(generation.StatusFallback, again.Status)
	s.Equal(res.Raw, again.Raw)
}

func (s *PipelineTestSuite) TestFallbackIsDeterministic() {
	req := s.request("npc-5")

	first := s.pipeline.Fallback(req)
	second := s.pipeline.Fallback(req)

	s.Equal(generation.StatusFallback, first.Status)
	s.Equal(first.Raw, second.Raw)
	s.Equal(req.Fingerprint(), first.Fingerprint)
}

func (s *PipelineTestSuite) TestExportOmitsFailedEntries() {
	okReq := s.request("npc-6")
	badReq := s.request("npc-7")

	s.mockClient.EXPECT().
		Generate(gomock.Any(), okReq).
		Return("line: kept\n", nil).
		Times(1)
	s.mockClient.EXPECT().
		Generate(gomock.Any(), badReq).
		Return("", errors.Unavailable("down")).
		Times(3)

	_, err := s.pipeline.Generate(s.ctx, okReq)
	s.Require().NoError(err)
	_, err = s.pipeline.Generate(s.ctx, badReq)
	s.Require().NoError(err)

	entries := s.pipeline.Export()
	s.Require().Len(entries, 1)
	s.Equal(okReq.Fingerprint(), entries[0].Fingerprint)
	s.Equal(generation.StatusSucceeded, entries[0].Status)
}

func (s *PipelineTestSuite) TestImportSeedsCache() {
	req := s.request("npc-8")

	err := s.pipeline.Import([]generation.CacheEntry{{
		Fingerprint: req.Fingerprint(),
		Kind:        req.Kind,
		Status:      generation.StatusSucceeded,
		Raw:         "line: restored\n",
	}})
	s.Require().NoError(err)

	// No outbound call for an imported fingerprint
	res, err := s.pipeline.Generate(s.ctx, req)
	s.Require().NoError(err)
	s.Equal("line: restored\n", res.Raw)
}

func (s *PipelineTestSuite) TestImportRejectsNonCacheableStatus() {
	err := s.pipeline.Import([]generation.CacheEntry{{
		Fingerprint: "abc",
		Kind:        generation.KindLocation,
		Status:      generation.StatusPending,
	}})
	s.Require().Error(err)
	s.True(errors.IsDataLoss(err))
}

func (s *PipelineTestSuite) TestFingerprintIgnoresVolatileContext() {
	a := &generation.Request{
		Kind:    generation.KindLocation,
		Key:     []string{"loc_1_0,0,0"},
		Context: map[string]string{"player_level": "1"},
	}
	b := &generation.Request{
		Kind:    generation.KindLocation,
		Key:     []string{"loc_1_0,0,0"},
		Context: map[string]string{"player_level": "7"},
	}

	s.Equal(a.Fingerprint(), b.Fingerprint())

	c := &generation.Request{Kind: generation.KindNPCIntro, Key: []string{"loc_1_0,0,0"}}
	s.NotEqual(a.Fingerprint(), c.Fingerprint())
}

func TestPipelineTestSuite(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}
