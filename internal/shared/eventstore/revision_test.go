package eventstore

import "testing"

func TestExpectedRevisionMatches(t *testing.T) {
	cases := []struct {
		name            string
		token           ExpectedRevision
		streamExists    bool
		currentRevision uint64
		want            bool
	}{
		{name: "any matches missing stream", token: Any(), streamExists: false, want: true},
		{name: "any matches existing stream", token: Any(), streamExists: true, currentRevision: 41, want: true},
		{name: "no stream matches missing stream", token: NoStream(), streamExists: false, want: true},
		{name: "no stream rejects existing stream", token: NoStream(), streamExists: true, want: false},
		{name: "exact matches current revision", token: Exact(4), streamExists: true, currentRevision: 4, want: true},
		{name: "exact rejects stale revision", token: Exact(3), streamExists: true, currentRevision: 4, want: false},
		{name: "exact rejects missing stream", token: Exact(0), streamExists: false, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.token.Matches(tc.streamExists, tc.currentRevision); got != tc.want {
				t.Fatalf("Matches(%v, %d) = %v, want %v", tc.streamExists, tc.currentRevision, got, tc.want)
			}
		})
	}
}

func TestExpectedRevisionZeroValueIsAny(t *testing.T) {
	var token ExpectedRevision
	if !token.IsAny() {
		t.Fatalf("zero value must perform no concurrency check")
	}
	if _, ok := token.Position(); ok {
		t.Fatalf("any token must not carry a position")
	}
}

func TestExactCarriesItsPosition(t *testing.T) {
	position, ok := Exact(9).Position()
	if !ok || position != 9 {
		t.Fatalf("expected position 9, got %d (ok=%v)", position, ok)
	}
}
