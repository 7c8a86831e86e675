package reminder

import (
	"context"
	"fmt"
)

type scheduled struct {
	name         string
	hour, minute int
}

type fakeScheduler struct {
	decline   bool
	err       error
	cancelErr error
	next      int
	active    map[string]scheduled
	cancelled []string
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{active: map[string]scheduled{}}
}

func (f *fakeScheduler) Schedule(_ context.Context, name string, hour, minute int) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.decline {
		return "", nil
	}
	f.next++
	id := fmt.Sprintf("n-%d", f.next)
	f.active[id] = scheduled{name: name, hour: hour, minute: minute}
	return id, nil
}

func (f *fakeScheduler) Cancel(_ context.Context, id string) error {
	f.cancelled = append(f.cancelled, id)
	delete(f.active, id)
	return f.cancelErr
}

type fakeNotifier struct {
	calls [][]string
	err   error
}

func (f *fakeNotifier) Notify(_ context.Context, names []string) error {
	f.calls = append(f.calls, names)
	return f.err
}
