package assert

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

type recordingT struct {
	msgs []string
}

func (t *recordingT) Errorf(format string, args ...interface{}) {
	t.msgs = append(t.msgs, fmt.Sprintf(format, args...))
}

func TestEqualReportsDiff(t *testing.T) {
	type book struct {
		Title  string
		Author string
	}
	rt := &recordingT{}
	ok := Equal(rt, book{"Tutunamayanlar", "Oğuz Atay"}, book{"Tutunamayanlar", "Atay"})
	if ok || len(rt.msgs) != 1 {
		t.Fatalf("expected a single failure, got %v", rt.msgs)
	}
	if !strings.Contains(rt.msgs[0], "Diff:") {
		t.Fatalf("expected a diff in %q", rt.msgs[0])
	}
}

func TestPassingAssertions(t *testing.T) {
	rt := &recordingT{}
	errSentinel := errors.New("sentinel")
	checks := []bool{
		Equal(rt, []byte("a"), []byte("a")),
		NotEqual(rt, 1, 2),
		Nil(rt, (*int)(nil)),
		NotNil(rt, &recordingT{}),
		NoError(rt, nil),
		Error(rt, errSentinel),
		ErrorIs(rt, fmt.Errorf("wrapped: %w", errSentinel), errSentinel),
		True(rt, true),
		False(rt, false),
		Len(rt, []int{1, 2}, 2),
		Empty(rt, ""),
		NotEmpty(rt, map[string]int{"a": 1}),
		Contains(rt, "Ayşe Yılmaz", "Yılmaz"),
		Contains(rt, []string{"Roman", "Tarih"}, "Tarih"),
		NotContains(rt, []string{"Roman"}, "Şiir"),
	}
	for i, ok := range checks {
		if !ok {
			t.Errorf("check %d failed", i)
		}
	}
	if len(rt.msgs) != 0 {
		t.Fatalf("unexpected failures: %v", rt.msgs)
	}
}

func TestFailureMessages(t *testing.T) {
	rt := &recordingT{}
	Len(rt, []int{1}, 3, "collection %s", "books")
	if len(rt.msgs) != 1 || !strings.Contains(rt.msgs[0], "collection books") {
		t.Fatalf("unexpected messages: %v", rt.msgs)
	}
}
