package panel

import (
	"errors"
	"strings"
	"testing"
)

func TestStreamInput_Validate(t *testing.T) {
	valid := StreamInput{Name: "My Channel", SourceURL: "rtmp://src", OutputPath: "/c/index.m3u8"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}

	cases := []struct {
		in    StreamInput
		want  error
		field string
	}{
		{StreamInput{SourceURL: "s", OutputPath: "o"}, ErrMissingField, "name"},
		{StreamInput{Name: "n", SourceURL: "\t", OutputPath: "o"}, ErrMissingField, "source_url"},
		{StreamInput{Name: "n", SourceURL: "s"}, ErrMissingField, "output_path"},
		{StreamInput{Name: "a/b", SourceURL: "s", OutputPath: "o"}, ErrInvalidName, "a/b"},
		{StreamInput{Name: `a\b`, SourceURL: "s", OutputPath: "o"}, ErrInvalidName, `a\\b`},
		{StreamInput{Name: "..", SourceURL: "s", OutputPath: "o"}, ErrInvalidName, ".."},
	}
	for _, tc := range cases {
		err := tc.in.Validate()
		if !errors.Is(err, tc.want) {
			t.Errorf("Validate(%+v) = %v, want %v", tc.in, err, tc.want)
			continue
		}
		if !strings.Contains(err.Error(), tc.field) {
			t.Errorf("error %q should name %q", err, tc.field)
		}
	}
}

func TestSanitizeName(t *testing.T) {
	if got := SanitizeName("My  Great Channel"); got != "My__Great_Channel" {
		t.Errorf("SanitizeName = %q", got)
	}
	if got := (StreamRecord{Name: "plain"}).SanitizedName(); got != "plain" {
		t.Errorf("SanitizedName = %q", got)
	}
}

func TestDeleteReport_Failures(t *testing.T) {
	if n := (DeleteReport{}).Failures(); n != 0 {
		t.Errorf("expected 0 failures, got %d", n)
	}
	boom := errors.New("boom")
	if n := (DeleteReport{Reaper: boom, OutputDir: boom}).Failures(); n != 2 {
		t.Errorf("expected 2 failures, got %d", n)
	}
}
