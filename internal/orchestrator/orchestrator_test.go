package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kolscheduler/internal/backend"
	"kolscheduler/internal/model"
)

type fakeJobs struct {
	result  *model.ExecutionResult
	err     error
	release chan struct{} // when set, Execute blocks until closed
	calls   int
}

func (f *fakeJobs) ExecuteNow(ctx context.Context, taskID, key string) (*model.ExecutionResult, error) {
	f.calls++
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakePosts struct {
	approveErr error
	updateErr  error
	versions   []model.PostVersion
	selectErr  error
}

func (f *fakePosts) Approve(context.Context, string) error { return f.approveErr }
func (f *fakePosts) Reject(context.Context, string) error  { return nil }
func (f *fakePosts) Publish(context.Context, string) error { return nil }
func (f *fakePosts) UpdateContent(context.Context, string, string, string) error {
	return f.updateErr
}
func (f *fakePosts) ListVersions(context.Context, string) ([]model.PostVersion, error) {
	return f.versions, nil
}
func (f *fakePosts) SelectVersion(context.Context, string, string) error { return f.selectErr }

type sinkCall struct {
	taskID string
	res    *model.ExecutionResult
}

type fakeSink struct{ calls []sinkCall }

func (f *fakeSink) RecordExecution(taskID string, res *model.ExecutionResult, _ time.Time, _ time.Duration) error {
	f.calls = append(f.calls, sinkCall{taskID: taskID, res: res})
	return nil
}

func successResult() *model.ExecutionResult {
	return &model.ExecutionResult{
		Success:        true,
		SessionID:      "sess-1",
		GeneratedCount: 2,
		Posts: []model.GeneratedPost{
			{PostID: "p1", StockCode: "2330", KolSerial: "kol-007", Title: "台積電盤後觀察", Content: "內容一"},
			{PostID: "p2", StockCode: "2454", KolSerial: "kol-011", Title: "聯發科盤後觀察", Content: "內容二"},
		},
	}
}

func newOrch(jobs JobBackend, posts PostBackend, sink ExecutionSink) *Orchestrator {
	return New(jobs, posts, sink, zerolog.Nop())
}

func TestExecuteNowHappyPath(t *testing.T) {
	jobs := &fakeJobs{result: successResult()}
	sink := &fakeSink{}
	o := newOrch(jobs, &fakePosts{}, sink)

	require.Equal(t, Idle, o.State("t1"))
	res, err := o.ExecuteNow(context.Background(), "t1")
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, Succeeded, o.State("t1"))
	require.Len(t, sink.calls, 1)
	assert.Equal(t, "t1", sink.calls[0].taskID)

	o.Acknowledge("t1")
	assert.Equal(t, Idle, o.State("t1"))
	assert.Nil(t, o.Result("t1"))
}

func TestExecuteNowRejectsConcurrentRun(t *testing.T) {
	jobs := &fakeJobs{result: successResult(), release: make(chan struct{})}
	o := newOrch(jobs, &fakePosts{}, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := o.ExecuteNow(context.Background(), "t1")
		assert.NoError(t, err)
	}()

	// Wait until the first call is in flight.
	require.Eventually(t, func() bool { return o.State("t1") == Running }, time.Second, time.Millisecond)

	_, err := o.ExecuteNow(context.Background(), "t1")
	require.ErrorIs(t, err, ErrAlreadyRunning)

	// A different task is unaffected by t1's in-flight run.
	jobs2 := &fakeJobs{result: successResult()}
	o2 := newOrch(jobs2, &fakePosts{}, nil)
	_, err = o2.ExecuteNow(context.Background(), "t2")
	require.NoError(t, err)

	close(jobs.release)
	<-done
	assert.Equal(t, 1, jobs.calls)
	assert.Equal(t, Succeeded, o.State("t1"))

	// After resolution a new run is allowed again.
	jobs.release = nil
	_, err = o.ExecuteNow(context.Background(), "t1")
	require.NoError(t, err)
}

func TestExecuteNowMapsTransportFailureIntoResult(t *testing.T) {
	jobs := &fakeJobs{err: errors.New("connection reset")}
	sink := &fakeSink{}
	o := newOrch(jobs, &fakePosts{}, sink)

	res, err := o.ExecuteNow(context.Background(), "t1")
	require.NoError(t, err, "transport failures must not surface as errors")
	require.NotNil(t, res)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "connection reset")
	assert.Equal(t, Failed, o.State("t1"))
	require.Len(t, sink.calls, 1, "failed runs are recorded too")
}

func TestResultSupersededNotMerged(t *testing.T) {
	jobs := &fakeJobs{result: successResult()}
	o := newOrch(jobs, &fakePosts{}, nil)

	_, err := o.ExecuteNow(context.Background(), "t1")
	require.NoError(t, err)

	second := &model.ExecutionResult{Success: true, SessionID: "sess-2"}
	jobs.result = second
	res, err := o.ExecuteNow(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "sess-2", res.SessionID)
	assert.Empty(t, o.Result("t1").Posts, "new result replaces the old wholesale")
}

func TestApproveRemoteRejected(t *testing.T) {
	jobs := &fakeJobs{result: successResult()}
	posts := &fakePosts{approveErr: &backend.RemoteError{Status: 422, Message: "內容未通過審核"}}
	o := newOrch(jobs, posts, nil)

	_, err := o.ExecuteNow(context.Background(), "t1")
	require.NoError(t, err)

	err = o.Approve(context.Background(), "t1", "p1")
	require.ErrorIs(t, err, ErrRemoteRejected)
	assert.Contains(t, err.Error(), "內容未通過審核", "upstream message surfaced verbatim")
	assert.Empty(t, o.Result("t1").FindPost("p1").Status, "rejected action must not patch the post")

	posts.approveErr = nil
	require.NoError(t, o.Approve(context.Background(), "t1", "p1"))
	assert.Equal(t, "approved", o.Result("t1").FindPost("p1").Status)
}

func TestActionsRequireLiveResultAndKnownPost(t *testing.T) {
	o := newOrch(&fakeJobs{result: successResult()}, &fakePosts{}, nil)

	err := o.Approve(context.Background(), "t1", "p1")
	require.ErrorIs(t, err, ErrNoResult)

	_, err = o.ExecuteNow(context.Background(), "t1")
	require.NoError(t, err)
	err = o.Approve(context.Background(), "t1", "nope")
	require.ErrorIs(t, err, ErrUnknownPost)
}

func TestUpdateContentRollsBackOnRemoteFailure(t *testing.T) {
	jobs := &fakeJobs{result: successResult()}
	posts := &fakePosts{updateErr: &backend.RemoteError{Status: 500, Message: "儲存失敗"}}
	o := newOrch(jobs, posts, nil)

	_, err := o.ExecuteNow(context.Background(), "t1")
	require.NoError(t, err)

	err = o.UpdateContent(context.Background(), "t1", "p1", "新標題", "新內容")
	require.ErrorIs(t, err, ErrRemoteRejected)

	p := o.Result("t1").FindPost("p1")
	assert.Equal(t, "台積電盤後觀察", p.Title, "local edit must be rolled back")
	assert.Equal(t, "內容一", p.Content)

	posts.updateErr = nil
	require.NoError(t, o.UpdateContent(context.Background(), "t1", "p1", "新標題", "新內容"))
	p = o.Result("t1").FindPost("p1")
	assert.Equal(t, "新標題", p.Title)
	assert.Equal(t, "新內容", p.Content)
}

func TestVersions(t *testing.T) {
	jobs := &fakeJobs{result: successResult()}
	posts := &fakePosts{}
	o := newOrch(jobs, posts, nil)

	_, err := o.ExecuteNow(context.Background(), "t1")
	require.NoError(t, err)

	// No alternates generated: valid empty outcome.
	versions, err := o.FetchVersions(context.Background(), "t1", "p1")
	require.NoError(t, err)
	assert.Empty(t, versions)

	posts.versions = []model.PostVersion{{VersionID: "v2", Title: "替代標題", Content: "替代內容"}}
	versions, err = o.FetchVersions(context.Background(), "t1", "p1")
	require.NoError(t, err)
	require.Len(t, versions, 1)

	require.NoError(t, o.SelectVersion(context.Background(), "t1", "p1", versions[0]))
	p := o.Result("t1").FindPost("p1")
	assert.Equal(t, "替代標題", p.Title)
	assert.Equal(t, "替代內容", p.Content)
}
