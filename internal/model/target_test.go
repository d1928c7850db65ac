package model

import (
	"errors"
	"testing"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		id      string
		want    Ref
		wantErr error
	}{
		{"listing", "listing", "10", Ref{Kind: KindListing, ID: 10}, nil},
		{"event", "event", "3", Ref{Kind: KindEvent, ID: 3}, nil},
		{"comment", "comment", "7", Ref{Kind: KindComment, ID: 7}, nil},
		{"unknown kind", "article", "10", Ref{}, ErrUnknownKind},
		{"non-numeric id", "post", "abc", Ref{}, ErrInvalidTargetID},
		{"zero id", "post", "0", Ref{}, ErrInvalidTargetID},
		{"negative id", "post", "-4", Ref{}, ErrInvalidTargetID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRef(tt.kind, tt.id)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ref = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRef_ChannelKey(t *testing.T) {
	ref := Ref{Kind: KindEvent, ID: 12}
	if got, want := ref.ChannelKey(), "engage:event:12"; got != want {
		t.Errorf("channel key = %q, want %q", got, want)
	}
}

func TestRef_String(t *testing.T) {
	ref := Ref{Kind: KindPost, ID: 5}
	if got, want := ref.String(), "post:5"; got != want {
		t.Errorf("string = %q, want %q", got, want)
	}
}

func TestParseAttendanceStatus(t *testing.T) {
	for _, valid := range []string{"attending", "interested", "declined"} {
		if _, err := ParseAttendanceStatus(valid); err != nil {
			t.Errorf("ParseAttendanceStatus(%q) = %v, want nil", valid, err)
		}
	}
	if _, err := ParseAttendanceStatus("maybe"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("err = %v, want ErrInvalidStatus", err)
	}
}
