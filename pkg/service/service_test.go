package service

import (
	"context"
	"errors"
	"testing"
)

type testService struct {
	name  string
	err   error
	trace *[]string
}

func (s *testService) Run() { *s.trace = append(*s.trace, "run "+s.name) }
func (s *testService) Shutdown(context.Context) error {
	*s.trace = append(*s.trace, "stop "+s.name)
	return s.err
}
func (s *testService) String() string { return s.name }

func TestGroup(t *testing.T) {
	var trace []string
	fail := errors.New("fail")
	a := &testService{name: "a", trace: &trace}
	b := &testService{name: "b", err: fail, trace: &trace}
	c := &testService{name: "c", err: context.Canceled, trace: &trace}

	var g Group
	g.Add(a, "not runnable", b, nil, c)
	g.Start()
	err := g.Shutdown(context.Background())

	want := []string{"run a", "run b", "run c", "stop c", "stop b", "stop a"}
	if len(trace) != len(want) {
		t.Fatalf("got %v, want %v", trace, want)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Errorf("got %v, want %v", trace, want)
			break
		}
	}
	if !errors.Is(err, fail) {
		t.Errorf("expected the service error, got %v", err)
	}
}
