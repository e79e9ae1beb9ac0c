package reminder

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nibzard/agenda-go/internal/agenda"
	"github.com/nibzard/agenda-go/internal/store"
)

var testNow = time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)

type fakeSource struct {
	mu    sync.Mutex
	calls int
	batch [][]agenda.Reminder
	err   error
}

func (s *fakeSource) DueReminders(_ context.Context, _ time.Time) ([]agenda.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if len(s.batch) == 0 {
		return nil, nil
	}
	out := s.batch[0]
	s.batch = s.batch[1:]
	return out, nil
}

type recorder struct {
	mu   sync.Mutex
	got  []agenda.Reminder
	fail string
}

func (r *recorder) Notify(_ context.Context, rem agenda.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rem.Title == r.fail {
		return errors.New("delivery failed")
	}
	r.got = append(r.got, rem)
	return nil
}

func TestNewInterval(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want time.Duration
		spec string
	}{
		{in: 0, want: DefaultInterval, spec: "@every 1m0s"},
		{in: 200 * time.Millisecond, want: time.Second, spec: "@every 1s"},
		{in: 30 * time.Second, want: 30 * time.Second, spec: "@every 30s"},
	}
	for _, tt := range tests {
		p := New(&fakeSource{}, &recorder{}, tt.in)
		if p.Interval() != tt.want {
			t.Errorf("New(%v).Interval() = %v, want %v", tt.in, p.Interval(), tt.want)
		}
		if p.Spec() != tt.spec {
			t.Errorf("New(%v).Spec() = %q, want %q", tt.in, p.Spec(), tt.spec)
		}
	}
}

func TestRunOnceDeliversAll(t *testing.T) {
	src := &fakeSource{batch: [][]agenda.Reminder{{
		{Kind: agenda.ReminderTask, Title: "Courses", List: "Maison", Due: testNow},
		{Kind: agenda.ReminderEvent, Title: "Réunion", Due: testNow},
		{Kind: agenda.ReminderTask, Title: "Banque", List: "Maison", Due: testNow},
	}}}
	rec := &recorder{fail: "Réunion"}
	p := New(src, rec, time.Minute, WithNow(func() time.Time { return testNow }))

	rems, err := p.RunOnce(context.Background())
	if len(rems) != 3 {
		t.Fatalf("RunOnce() returned %d reminders, want 3", len(rems))
	}
	if err == nil || !strings.Contains(err.Error(), "Réunion") {
		t.Errorf("RunOnce() error = %v, want delivery failure for Réunion", err)
	}
	if len(rec.got) != 2 {
		t.Errorf("delivered %d reminders, want 2", len(rec.got))
	}
}

func TestRunOnceSourceError(t *testing.T) {
	src := &fakeSource{err: errors.New("disk gone")}
	p := New(src, &recorder{}, time.Minute)
	if _, err := p.RunOnce(context.Background()); err == nil || !strings.Contains(err.Error(), "disk gone") {
		t.Errorf("RunOnce() error = %v, want source error", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &fakeSource{batch: [][]agenda.Reminder{{{Kind: agenda.ReminderTask, Title: "Courses"}}}}
	n := NotifierFunc(func(context.Context, agenda.Reminder) error {
		cancel()
		return nil
	})
	p := New(src, n, time.Hour)

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
	if src.calls != 1 {
		t.Errorf("source polled %d times, want 1", src.calls)
	}
}

func TestRunWithStatus(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &fakeSource{err: errors.New("locked")}
	p := New(src, &recorder{}, time.Hour)

	statusCh := make(chan Status, 4)
	done := make(chan error, 1)
	go func() { done <- p.RunWithStatus(ctx, statusCh) }()

	first := <-statusCh
	if first.Error == nil {
		t.Error("first status carries no error")
	}
	cancel()
	for range statusCh {
	}
	if err := <-done; err != nil {
		t.Errorf("RunWithStatus() error = %v", err)
	}
}

func TestPollerWithBook(t *testing.T) {
	ctx := context.Background()
	b, err := agenda.Open(ctx, store.NewFileStore(t.TempDir()), "")
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if err := b.CreateList(ctx, "Maison"); err != nil {
		t.Fatalf("CreateList() error: %v", err)
	}
	if _, err := b.AddTask(ctx, "Maison", "Courses", "2024-01-15 11:30"); err != nil {
		t.Fatalf("AddTask() error: %v", err)
	}
	if _, err := b.AddTask(ctx, "Maison", "Plus tard", "2024-01-16 09:00"); err != nil {
		t.Fatalf("AddTask() error: %v", err)
	}

	var buf bytes.Buffer
	now := func() time.Time { return testNow }
	p := New(b, WriterNotifier{W: &buf, Now: now}, time.Minute, WithNow(now))

	if _, err := p.RunOnce(ctx); err != nil {
		t.Fatalf("RunOnce() error: %v", err)
	}
	want := "Rappel tâche: Courses [Maison] (30 minutes ago)\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	rems, err := p.RunOnce(ctx)
	if err != nil {
		t.Fatalf("second RunOnce() error: %v", err)
	}
	if len(rems) != 0 || buf.Len() != 0 {
		t.Errorf("second poll reminded again: %q", buf.String())
	}
}
