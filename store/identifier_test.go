package store

import (
	"errors"
	"testing"
)

func TestParseIdentifier(t *testing.T) {
	testCases := []struct {
		name    string
		locator string
		want    Identifier
		wantErr bool
	}{
		{name: "canonical", locator: "s3://bucket/a/b/c.txt", want: Identifier{Scheme: "s3", Bucket: "bucket", Key: "a/b/c.txt"}},
		{name: "mem scheme", locator: "mem://corpus/x.go", want: Identifier{Scheme: "mem", Bucket: "corpus", Key: "x.go"}},
		{name: "surrounding space", locator: "  s3://bucket/key  ", want: Identifier{Scheme: "s3", Bucket: "bucket", Key: "key"}},
		{name: "no scheme", locator: "bucket/key", wantErr: true},
		{name: "empty scheme", locator: "://bucket/key", wantErr: true},
		{name: "missing key", locator: "s3://bucket", wantErr: true},
		{name: "trailing slash only", locator: "s3://bucket/", wantErr: true},
		{name: "missing bucket", locator: "s3:///key", wantErr: true},
		{name: "empty", locator: "", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseIdentifier(tc.locator)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidIdentifier) {
					t.Fatalf("got %v, want ErrInvalidIdentifier", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestIdentifierRoundTrip(t *testing.T) {
	id := NewIdentifier("bucket", "/a/b.txt")
	if id.Key != "a/b.txt" || id.Scheme != DefaultScheme {
		t.Fatalf("unexpected identifier: %+v", id)
	}
	parsed, err := ParseIdentifier(id.String())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed != id {
		t.Fatalf("round trip: got %+v, want %+v", parsed, id)
	}
	if id.IsZero() || (Identifier{}).IsZero() != true {
		t.Fatal("IsZero misreports")
	}
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		err  error
		want FailureKind
	}{
		{err: ErrNotFound, want: FailureNotFound},
		{err: ErrNoManifest, want: FailureNoManifest},
		{err: ErrInvalidIdentifier, want: FailureInvalidArgument},
		{err: ErrInvalidArgument, want: FailureInvalidArgument},
		{err: ErrUpstream, want: FailureUpstream},
	}
	for _, tc := range testCases {
		if got := Classify(tc.err); got != tc.want {
			t.Fatalf("Classify(%v): got %v, want %v", tc.err, got, tc.want)
		}
	}
}
