package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseAspectRatio(t *testing.T) {
	tests := []struct {
		in      string
		want    AspectRatio
		wantErr bool
	}{
		{in: "9:16", want: AspectPortrait},
		{in: "Portrait", want: AspectPortrait},
		{in: " 16:9 ", want: AspectLandscape},
		{in: "landscape", want: AspectLandscape},
		{in: "1:1", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseAspectRatio(tc.in)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidRequest) {
					t.Fatalf("ParseAspectRatio(%q) error = %v, want ErrInvalidRequest", tc.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAspectRatio(%q) unexpected error: %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("ParseAspectRatio(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestAspectRatioForDimensions(t *testing.T) {
	if got := AspectRatioForDimensions(1920, 1080); got != AspectLandscape {
		t.Fatalf("wide image = %q, want landscape", got)
	}
	if got := AspectRatioForDimensions(800, 1200); got != AspectPortrait {
		t.Fatalf("tall image = %q, want portrait", got)
	}
	if got := AspectRatioForDimensions(512, 512); got != AspectPortrait {
		t.Fatalf("square image = %q, want portrait", got)
	}
	if got := AspectRatioForDimensions(0, 0); got != AspectPortrait {
		t.Fatalf("unknown size = %q, want portrait", got)
	}
}

func TestParseDataURL(t *testing.T) {
	img, err := ParseDataURL("data:image/png;base64,AAE=")
	if err != nil {
		t.Fatalf("ParseDataURL error: %v", err)
	}
	if img.MIMEType != "image/png" {
		t.Fatalf("mime = %q, want image/png", img.MIMEType)
	}
	if len(img.Data) != 2 || img.Data[0] != 0x00 || img.Data[1] != 0x01 {
		t.Fatalf("data = %v, want [0 1]", img.Data)
	}

	for _, raw := range []string{"", "not a data url", "data:text/plain;base64,AAE=", "data:image/png;base64,%%%"} {
		if _, err := ParseDataURL(raw); !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("ParseDataURL(%q) error = %v, want ErrInvalidRequest", raw, err)
		}
	}
}

func TestNewGenerationRequestCopiesImage(t *testing.T) {
	data := []byte{0x89, 0x50, 0x4e, 0x47}
	req, err := NewGenerationRequest("t", Image{Data: data, MIMEType: "image/png"}, AspectPortrait)
	if err != nil {
		t.Fatalf("NewGenerationRequest error: %v", err)
	}
	data[0] = 0xff
	if got := req.Image().Data[0]; got != 0x89 {
		t.Fatalf("request image mutated through caller slice: %x", got)
	}
	if req.Prompt() != "t" || req.AspectRatio() != AspectPortrait {
		t.Fatalf("unexpected request %+v", req)
	}
}

func TestNewGenerationRequestRejectsInvalidInput(t *testing.T) {
	png := Image{Data: []byte{1}, MIMEType: "image/png"}
	cases := map[string]func() error{
		"empty image": func() error {
			_, err := NewGenerationRequest("t", Image{MIMEType: "image/png"}, AspectPortrait)
			return err
		},
		"non image mime": func() error {
			_, err := NewGenerationRequest("t", Image{Data: []byte{1}, MIMEType: "video/mp4"}, AspectPortrait)
			return err
		},
		"bad aspect": func() error {
			_, err := NewGenerationRequest("t", png, AspectRatio("4:3"))
			return err
		},
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			if err := fn(); !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("error = %v, want ErrInvalidRequest", err)
			}
		})
	}
}

func TestErrorKindMatching(t *testing.T) {
	err := fmt.Errorf("generate: %w", NewError(KindCredentialInvalid, "API key invalid", errors.New("404")))
	if !errors.Is(err, ErrCredentialInvalid) {
		t.Fatalf("expected errors.Is to match ErrCredentialInvalid")
	}
	if errors.Is(err, ErrCredentialMissing) {
		t.Fatalf("unexpected match against ErrCredentialMissing")
	}
	if KindOf(err) != KindCredentialInvalid {
		t.Fatalf("KindOf = %v, want credential_invalid", KindOf(err))
	}
	if KindOf(errors.New("boom")) != KindUnclassified {
		t.Fatalf("plain errors must be unclassified")
	}
	if err.Error() != "generate: API key invalid" {
		t.Fatalf("Error() = %q", err.Error())
	}
	if ErrTimeout.Error() != "timeout" {
		t.Fatalf("sentinel Error() = %q", ErrTimeout.Error())
	}
}

func TestUIStateValidate(t *testing.T) {
	url, msg := "blob:x", "boom"
	valid := []UIState{
		{},
		{IsLoading: true, ProgressMessage: "Rendering frames..."},
		{VideoURL: &url},
		{Error: &msg},
	}
	for _, s := range valid {
		if err := s.Validate(); err != nil {
			t.Fatalf("Validate(%+v) unexpected error: %v", s, err)
		}
	}
	invalid := []UIState{
		{VideoURL: &url, Error: &msg},
		{IsLoading: true, VideoURL: &url},
		{IsLoading: true, Error: &msg},
	}
	for _, s := range invalid {
		if err := s.Validate(); err == nil {
			t.Fatalf("Validate(%+v) expected error", s)
		}
	}
}
