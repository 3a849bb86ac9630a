package align_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/valpere/unfriction/internal/align"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"contraction", "You can't stop.", []string{"You", "can't", "stop", "."}},
		{"comma", "signs, but", []string{"signs", ",", "but"}},
		{"hyphen", "well-known fact", []string{"well-known", "fact"}},
		{"digits", "10,000 people", []string{"10", ",", "000", "people"}},
		{"quotes", `"hello"`, []string{`"`, "hello", `"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := align.Tokenize(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestOps_Identical(t *testing.T) {
	a := []string{"a", "b", "c"}
	got := align.Ops(a, a)
	want := []align.Op{{Kind: align.Equal, I1: 0, I2: 3, J1: 0, J2: 3}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Ops mismatch (-want +got):\n%s", diff)
	}
}

func TestOps_Replace(t *testing.T) {
	a := []string{"a", "b", "c"}
	b := []string{"a", "x", "y", "c"}
	got := align.Ops(a, b)
	want := []align.Op{
		{Kind: align.Equal, I1: 0, I2: 1, J1: 0, J2: 1},
		{Kind: align.Replace, I1: 1, I2: 2, J1: 1, J2: 3},
		{Kind: align.Equal, I1: 2, I2: 3, J1: 3, J2: 4},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Ops mismatch (-want +got):\n%s", diff)
	}
}

func TestOps_InsertAndDelete(t *testing.T) {
	got := align.Ops([]string{"a", "c"}, []string{"a", "b", "c"})
	want := []align.Op{
		{Kind: align.Equal, I1: 0, I2: 1, J1: 0, J2: 1},
		{Kind: align.Insert, I1: 1, I2: 1, J1: 1, J2: 2},
		{Kind: align.Equal, I1: 1, I2: 2, J1: 2, J2: 3},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("insert mismatch (-want +got):\n%s", diff)
	}

	got = align.Ops([]string{"a", "b", "c"}, []string{"a", "c"})
	want = []align.Op{
		{Kind: align.Equal, I1: 0, I2: 1, J1: 0, J2: 1},
		{Kind: align.Delete, I1: 1, I2: 2, J1: 1, J2: 1},
		{Kind: align.Equal, I1: 2, I2: 3, J1: 1, J2: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("delete mismatch (-want +got):\n%s", diff)
	}
}

func TestOps_CoversBothSequences(t *testing.T) {
	a := align.Tokenize("You shouldn't ignore the signs, but you can't fix them overnight.")
	b := align.Tokenize("You might not ignore the signs, and at the same time you are still working to fix them overnight.")

	i, j := 0, 0
	for _, op := range align.Ops(a, b) {
		if op.I1 != i || op.J1 != j {
			t.Fatalf("gap before op %+v (i=%d j=%d)", op, i, j)
		}
		i, j = op.I2, op.J2
	}
	if i != len(a) || j != len(b) {
		t.Errorf("ops end at (%d,%d), want (%d,%d)", i, j, len(a), len(b))
	}
}

func TestOps_Empty(t *testing.T) {
	if got := align.Ops(nil, nil); len(got) != 0 {
		t.Errorf("expected no ops, got %v", got)
	}
	got := align.Ops(nil, []string{"a"})
	want := []align.Op{{Kind: align.Insert, I1: 0, I2: 0, J1: 0, J2: 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Ops mismatch (-want +got):\n%s", diff)
	}
}

func TestRatio(t *testing.T) {
	if r := align.Ratio(nil, nil); r != 1.0 {
		t.Errorf("Ratio(empty) = %v, want 1", r)
	}
	a := []string{"a", "b", "c", "d"}
	if r := align.Ratio(a, a); r != 1.0 {
		t.Errorf("Ratio(same) = %v, want 1", r)
	}
	if r := align.Ratio(a, []string{"a", "b", "x", "y"}); r != 0.5 {
		t.Errorf("Ratio = %v, want 0.5", r)
	}
}

func TestSpans(t *testing.T) {
	text := "Hi, you  can't."
	want := [][]int{{0, 2}, {2, 3}, {4, 7}, {9, 14}, {14, 15}}
	if diff := cmp.Diff(want, align.Spans(text)); diff != "" {
		t.Errorf("Spans(%q) mismatch (-want +got):\n%s", text, diff)
	}
}
