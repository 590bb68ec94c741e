package models

import "testing"

func TestWordCount(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"Hello world foo", 3},
		{"   Hello   world foo \n", 3},
		{"", 0},
		{" \t\n ", 0},
		{"one", 1},
	}
	for _, tc := range cases {
		if got := WordCount(tc.in); got != tc.want {
			t.Fatalf("WordCount(%q): got=%d want=%d", tc.in, got, tc.want)
		}
	}
}

func TestQuizAttempted(t *testing.T) {
	q := &Quiz{QuizScore: ScoreUnattempted}
	if q.Attempted() {
		t.Fatalf("sentinel score should read as unattempted")
	}
	q.QuizScore = 0
	if !q.Attempted() {
		t.Fatalf("a real score of 0 is an attempt")
	}
}
