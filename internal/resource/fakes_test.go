package resource

import (
	"context"
	"errors"
	"io"
	"sort"
	"time"

	"github.com/abduss/studynotes/internal/objectstore"
	"github.com/google/uuid"
)

type fakeRepo struct {
	records    map[uuid.UUID]Resource
	order      []uuid.UUID
	now        time.Time
	createErr  error
	promoteErr error
	// lateCommitErr is returned by Promote after the row was promoted.
	lateCommitErr error
	discardErr    error
	listErr       error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[uuid.UUID]Resource), now: time.Now()}
}

func (f *fakeRepo) CreatePending(ctx context.Context, res Resource) (Resource, error) {
	if f.createErr != nil {
		return Resource{}, f.createErr
	}
	f.now = f.now.Add(time.Second)
	res.Status = StatusPending
	res.CreatedAt = f.now
	res.UpdatedAt = f.now
	f.records[res.ID] = res
	f.order = append(f.order, res.ID)
	return res, nil
}

func (f *fakeRepo) Promote(ctx context.Context, id uuid.UUID, fileURL string) (Resource, error) {
	if f.promoteErr != nil {
		return Resource{}, f.promoteErr
	}
	res, ok := f.records[id]
	if !ok || res.Status != StatusPending {
		return Resource{}, ErrResourceNotFound
	}
	res.Status = StatusReady
	res.FileURL = fileURL
	res.UpdatedAt = f.now
	f.records[id] = res
	if f.lateCommitErr != nil {
		return Resource{}, f.lateCommitErr
	}
	return res, nil
}

func (f *fakeRepo) DiscardPending(ctx context.Context, id uuid.UUID, cleanup func(context.Context, Resource) error) (bool, error) {
	if f.discardErr != nil {
		return false, f.discardErr
	}
	res, ok := f.records[id]
	if !ok || res.Status != StatusPending {
		return false, nil
	}
	if cleanup != nil {
		if err := cleanup(ctx, res); err != nil {
			return false, err
		}
	}
	delete(f.records, id)
	return true, nil
}

func (f *fakeRepo) ListByYear(ctx context.Context, year string) ([]Resource, error) {
	return f.filter(func(r Resource) bool { return r.Status == StatusReady && r.Year == year })
}

func (f *fakeRepo) ListAll(ctx context.Context) ([]Resource, error) {
	return f.filter(func(r Resource) bool { return r.Status == StatusReady })
}

func (f *fakeRepo) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]Resource, error) {
	list, err := f.filter(func(r Resource) bool { return r.Status == StatusPending && r.CreatedAt.Before(cutoff) })
	if err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (f *fakeRepo) Get(ctx context.Context, id uuid.UUID) (Resource, error) {
	res, ok := f.records[id]
	if !ok || res.Status != StatusReady {
		return Resource{}, ErrResourceNotFound
	}
	return res, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uuid.UUID) (Resource, error) {
	res, ok := f.records[id]
	if !ok || res.Status != StatusReady {
		return Resource{}, ErrResourceNotFound
	}
	delete(f.records, id)
	return res, nil
}

func (f *fakeRepo) filter(keep func(Resource) bool) ([]Resource, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	list := []Resource{}
	for _, id := range f.order {
		if res, ok := f.records[id]; ok && keep(res) {
			list = append(list, res)
		}
	}
	return list, nil
}

func (f *fakeRepo) count(status Status) int {
	n := 0
	for _, res := range f.records {
		if res.Status == status {
			n++
		}
	}
	return n
}

type fakeObjectStore struct {
	objects     map[string][]byte
	putCalls    int
	removeCalls int
	putErr      error
	removeErr   error
	// storeThenFail keeps the object but still fails the call.
	storeThenFail bool
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (f *fakeObjectStore) Put(ctx context.Context, obj objectstore.Object) (string, error) {
	f.putCalls++
	if f.putErr != nil && !f.storeThenFail {
		return "", f.putErr
	}
	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return "", err
	}
	f.objects[obj.Key] = data
	if f.putErr != nil {
		return "", f.putErr
	}
	return objectstore.PublicURL("http://objects.local/notes", obj.Key), nil
}

func (f *fakeObjectStore) Remove(ctx context.Context, key string) error {
	f.removeCalls++
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeObjectStore) Ping(ctx context.Context) error { return nil }

var errBoom = errors.New("boom")
