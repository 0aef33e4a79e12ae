package crud

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Helpers ---

type pallet struct {
	ID   int64
	Code string
}

type createPallet struct {
	Code string
}

type updatePallet struct {
	Code string
}

// fakeService is a scripted Service that counts calls.
type fakeService struct {
	mu sync.Mutex

	list      []pallet
	listErr   error
	detail    pallet
	detailErr error
	createErr error
	updateErr error
	deleteErr error

	fetchAllCalls int
	fetchByIDs    []int64
	created       []createPallet
	updated       map[int64]updatePallet
	deleted       []int64

	// loadingDuringFetch records the store's loading flag seen inside FetchAll.
	probe           func() bool
	loadingObserved []bool
}

func (f *fakeService) FetchAll(ctx context.Context) ([]pallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchAllCalls++
	if f.probe != nil {
		f.loadingObserved = append(f.loadingObserved, f.probe())
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.list, nil
}

func (f *fakeService) FetchByID(ctx context.Context, id int64) (pallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchByIDs = append(f.fetchByIDs, id)
	if f.detailErr != nil {
		return pallet{}, f.detailErr
	}
	return f.detail, nil
}

func (f *fakeService) Create(ctx context.Context, payload createPallet) (pallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return pallet{}, f.createErr
	}
	f.created = append(f.created, payload)
	p := pallet{ID: int64(len(f.list) + 1), Code: payload.Code}
	f.list = append(f.list, p)
	return p, nil
}

func (f *fakeService) Update(ctx context.Context, id int64, payload updatePallet) (pallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return pallet{}, f.updateErr
	}
	if f.updated == nil {
		f.updated = make(map[int64]updatePallet)
	}
	f.updated[id] = payload
	return pallet{ID: id, Code: payload.Code}, nil
}

func (f *fakeService) Delete(ctx context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return true, nil
}

func (f *fakeService) fetchAllCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchAllCalls
}

// recordingNotifier keeps every notification in order.
type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (r *recordingNotifier) NotifySuccess(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.successes = append(r.successes, message)
}

func (r *recordingNotifier) NotifyError(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, message)
}

type recordingObserver struct {
	mu      sync.Mutex
	actions []string
	results []bool
}

func (o *recordingObserver) ObserveAction(store, action string, success bool, elapsed time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.actions = append(o.actions, action)
	o.results = append(o.results, success)
}

func newTestStore(svc *fakeService) (*Store[pallet, createPallet, updatePallet], *recordingNotifier) {
	n := &recordingNotifier{}
	return New[pallet, createPallet, updatePallet]("Pallet", svc, WithNotifier(n)), n
}

// emptyError has an empty message, which forces the fallback text.
type emptyError struct{}

func (emptyError) Error() string { return "" }

// --- FetchAll ---

func TestFetchAll_Success(t *testing.T) {
	svc := &fakeService{list: []pallet{{ID: 1, Code: "P-001"}, {ID: 2, Code: "P-002"}}}
	store, n := newTestStore(svc)

	res := store.FetchAll(context.Background())

	assert.Equal(t, Result{Success: true}, res)
	snap := store.Snapshot()
	assert.Equal(t, svc.list, snap.List)
	assert.Empty(t, snap.Error)
	assert.False(t, snap.IsLoading)
	assert.Empty(t, n.errors)
	assert.Empty(t, n.successes, "fetch is not user-initiated and must not notify success")
}

func TestFetchAll_FailureKeepsPreviousList(t *testing.T) {
	svc := &fakeService{list: []pallet{{ID: 1, Code: "P-001"}}}
	store, n := newTestStore(svc)
	require.True(t, store.FetchAll(context.Background()).Success)

	svc.listErr = errors.New("network down")
	res := store.FetchAll(context.Background())

	assert.False(t, res.Success)
	assert.Equal(t, "network down", res.Message)
	snap := store.Snapshot()
	assert.Equal(t, []pallet{{ID: 1, Code: "P-001"}}, snap.List)
	assert.Equal(t, "network down", snap.Error)
	assert.False(t, snap.IsLoading)
	assert.Equal(t, []string{"network down"}, n.errors)
}

func TestFetchAll_FallbackMessage(t *testing.T) {
	svc := &fakeService{listErr: emptyError{}}
	store, n := newTestStore(svc)

	res := store.FetchAll(context.Background())

	assert.False(t, res.Success)
	assert.Equal(t, "Failed to fetch Pallet", res.Message)
	assert.Equal(t, "Failed to fetch Pallet", store.Error())
	assert.Equal(t, []string{"Failed to fetch Pallet"}, n.errors)
}

func TestFetchAll_ClearsPreviousError(t *testing.T) {
	svc := &fakeService{listErr: errors.New("boom")}
	store, _ := newTestStore(svc)
	store.FetchAll(context.Background())
	require.Equal(t, "boom", store.Error())

	svc.listErr = nil
	store.FetchAll(context.Background())
	assert.Empty(t, store.Error())
}

func TestFetchAll_LoadingDuringCall(t *testing.T) {
	svc := &fakeService{}
	store, _ := newTestStore(svc)
	svc.probe = store.IsLoading

	store.FetchAll(context.Background())

	assert.Equal(t, []bool{true}, svc.loadingObserved)
	assert.False(t, store.IsLoading())
}

// --- FetchByID ---

func TestFetchByID_Success(t *testing.T) {
	svc := &fakeService{detail: pallet{ID: 7, Code: "P-007"}}
	store, n := newTestStore(svc)

	store.FetchByID(context.Background(), 7)

	require.NotNil(t, store.Detail())
	assert.Equal(t, pallet{ID: 7, Code: "P-007"}, *store.Detail())
	assert.Equal(t, []int64{7}, svc.fetchByIDs)
	assert.False(t, store.IsLoading())
	assert.Empty(t, n.errors)
}

func TestFetchByID_Idempotent(t *testing.T) {
	svc := &fakeService{detail: pallet{ID: 3, Code: "P-003"}}
	store, _ := newTestStore(svc)

	store.FetchByID(context.Background(), 3)
	first := store.Detail()
	store.FetchByID(context.Background(), 3)
	second := store.Detail()

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, *first, *second)
}

func TestFetchByID_Failure(t *testing.T) {
	svc := &fakeService{detail: pallet{ID: 1}}
	store, n := newTestStore(svc)
	store.FetchByID(context.Background(), 1)

	svc.detailErr = emptyError{}
	store.FetchByID(context.Background(), 2)

	assert.Equal(t, "Failed to fetch Pallet by id", store.Error())
	assert.Equal(t, []string{"Failed to fetch Pallet by id"}, n.errors)
	require.NotNil(t, store.Detail(), "detail stays stale after a failed fetch")
	assert.Equal(t, int64(1), store.Detail().ID)
	assert.False(t, store.IsLoading())
}

// --- Mutations ---

func TestCreateData_SuccessRefetchesOnce(t *testing.T) {
	svc := &fakeService{}
	store, n := newTestStore(svc)

	res := store.CreateData(context.Background(), createPallet{Code: "P-100"})

	assert.Equal(t, Result{Success: true}, res)
	assert.Equal(t, 1, svc.fetchAllCount())
	assert.Equal(t, []string{"Pallet created successfully"}, n.successes)
	assert.Empty(t, n.errors)
	assert.Equal(t, []pallet{{ID: 1, Code: "P-100"}}, store.List())
	assert.False(t, store.IsLoading())
}

func TestCreateData_FailureDoesNotRefetch(t *testing.T) {
	svc := &fakeService{createErr: errors.New("code already exists")}
	store, n := newTestStore(svc)

	res := store.CreateData(context.Background(), createPallet{Code: "dup"})

	assert.Equal(t, Result{Success: false, Message: "code already exists"}, res)
	assert.Equal(t, 0, svc.fetchAllCount())
	assert.Empty(t, n.successes)
	assert.Equal(t, []string{"code already exists"}, n.errors)
	assert.Equal(t, "code already exists", store.Error())
	assert.False(t, store.IsLoading())
}

func TestCreateData_RefetchFailureStillReportsSuccess(t *testing.T) {
	svc := &fakeService{listErr: errors.New("list unavailable")}
	store, n := newTestStore(svc)

	res := store.CreateData(context.Background(), createPallet{Code: "P-1"})

	assert.True(t, res.Success)
	assert.Equal(t, []string{"Pallet created successfully"}, n.successes)
	assert.Equal(t, []string{"list unavailable"}, n.errors)
	assert.Equal(t, "list unavailable", store.Error())
	assert.False(t, store.IsLoading())
}

func TestUpdateData(t *testing.T) {
	tests := []struct {
		name        string
		updateErr   error
		wantResult  Result
		wantFetches int
		wantSuccess []string
		wantErrors  []string
	}{
		{
			name:        "success refetches once",
			wantResult:  Result{Success: true},
			wantFetches: 1,
			wantSuccess: []string{"Pallet updated successfully"},
		},
		{
			name:        "failure with message",
			updateErr:   errors.New("not allowed"),
			wantResult:  Result{Success: false, Message: "not allowed"},
			wantErrors:  []string{"not allowed"},
		},
		{
			name:        "failure without message uses fallback",
			updateErr:   emptyError{},
			wantResult:  Result{Success: false, Message: "Failed to update Pallet"},
			wantErrors:  []string{"Failed to update Pallet"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{updateErr: tt.updateErr}
			store, n := newTestStore(svc)

			res := store.UpdateData(context.Background(), 5, updatePallet{Code: "P-5"})

			assert.Equal(t, tt.wantResult, res)
			assert.Equal(t, tt.wantFetches, svc.fetchAllCount())
			assert.Equal(t, tt.wantSuccess, n.successes)
			assert.Equal(t, tt.wantErrors, n.errors)
			assert.False(t, store.IsLoading())
		})
	}
}

func TestDeleteData(t *testing.T) {
	t.Run("success refetches once", func(t *testing.T) {
		svc := &fakeService{}
		store, n := newTestStore(svc)

		store.DeleteData(context.Background(), 9)

		assert.Equal(t, []int64{9}, svc.deleted)
		assert.Equal(t, 1, svc.fetchAllCount())
		assert.Equal(t, []string{"Pallet deleted successfully"}, n.successes)
		assert.Empty(t, store.Error())
		assert.False(t, store.IsLoading())
	})

	t.Run("failure does not refetch", func(t *testing.T) {
		svc := &fakeService{deleteErr: emptyError{}}
		store, n := newTestStore(svc)

		store.DeleteData(context.Background(), 9)

		assert.Equal(t, 0, svc.fetchAllCount())
		assert.Empty(t, n.successes)
		assert.Equal(t, []string{"Failed to delete Pallet"}, n.errors)
		assert.Equal(t, "Failed to delete Pallet", store.Error())
		assert.False(t, store.IsLoading())
	})
}

func TestMutationFailureLeavesListFromLastFetch(t *testing.T) {
	svc := &fakeService{list: []pallet{{ID: 1, Code: "A"}}}
	store, _ := newTestStore(svc)
	store.FetchAll(context.Background())

	svc.updateErr = errors.New("rejected")
	store.UpdateData(context.Background(), 1, updatePallet{Code: "B"})

	assert.Equal(t, []pallet{{ID: 1, Code: "A"}}, store.List())
}

// --- Misc ---

func TestSnapshotIsACopy(t *testing.T) {
	svc := &fakeService{list: []pallet{{ID: 1, Code: "A"}}, detail: pallet{ID: 1, Code: "A"}}
	store, _ := newTestStore(svc)
	store.FetchAll(context.Background())
	store.FetchByID(context.Background(), 1)

	snap := store.Snapshot()
	snap.List[0].Code = "mutated"
	snap.Detail.Code = "mutated"

	assert.Equal(t, "A", store.List()[0].Code)
	assert.Equal(t, "A", store.Detail().Code)
}

func TestObserverSeesNestedFetch(t *testing.T) {
	svc := &fakeService{}
	obs := &recordingObserver{}
	store := New[pallet, createPallet, updatePallet]("Pallet", svc, WithObserver(obs))

	store.CreateData(context.Background(), createPallet{Code: "X"})

	assert.Equal(t, []string{ActionFetchAll, ActionCreate}, obs.actions)
	assert.Equal(t, []bool{true, true}, obs.results)
}

func TestDefaultNotifierIsNop(t *testing.T) {
	svc := &fakeService{createErr: errors.New("fail")}
	store := New[pallet, createPallet, updatePallet]("Pallet", svc)

	assert.NotPanics(t, func() {
		store.CreateData(context.Background(), createPallet{})
	})
	assert.Equal(t, "Pallet", store.Name())
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "fallback", Message(nil, "fallback"))
	assert.Equal(t, "fallback", Message(emptyError{}, "fallback"))
	assert.Equal(t, "boom", Message(errors.New("boom"), "fallback"))
}

func TestConcurrentActionsAreRaceFree(t *testing.T) {
	svc := &fakeService{list: []pallet{{ID: 1}}}
	store, _ := newTestStore(svc)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.FetchAll(context.Background())
		}()
		go func() {
			defer wg.Done()
			_ = store.Snapshot()
		}()
	}
	wg.Wait()

	assert.False(t, store.IsLoading())
	assert.Equal(t, 8, svc.fetchAllCount())
}
