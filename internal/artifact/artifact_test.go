package artifact

import (
	"bytes"
	"errors"
	"regexp"
	"testing"
	"time"
)

func TestDataURI_Decode(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G', 0, 1, 2}
	u := NewDataURI("image/png", payload)

	if got := string(u[:22]); got != "data:image/png;base64," {
		t.Fatalf("prefix = %q", got)
	}
	mime, data, err := u.Decode()
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if mime != "image/png" {
		t.Errorf("mime = %q, want image/png", mime)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("data = %v, want %v", data, payload)
	}
}

func TestDataURI_DecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		in   DataURI
	}{
		{"no scheme", "image/png;base64,AAAA"},
		{"no comma", "data:image/png;base64"},
		{"not base64", "data:image/png,AAAA"},
		{"bad payload", "data:image/png;base64,!!!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.in.Decode()
			if !errors.Is(err, ErrMalformedDataURI) {
				t.Errorf("Decode() error = %v, want ErrMalformedDataURI", err)
			}
		})
	}
}

func TestNamer_UniqueWithFrozenClock(t *testing.T) {
	frozen := time.UnixMilli(1700000000000)
	n := NewNamer("selfie", "jpg")
	n.Now = func() time.Time { return frozen }

	pattern := regexp.MustCompile(`^selfie-\d+\.jpg$`)
	seen := make(map[string]bool)
	var prev time.Time
	for i := 0; i < 5; i++ {
		name, at := n.Next()
		if !pattern.MatchString(name) {
			t.Fatalf("name %q does not match %v", name, pattern)
		}
		if seen[name] {
			t.Fatalf("duplicate name %q", name)
		}
		seen[name] = true
		if i > 0 && !at.After(prev) {
			t.Fatalf("timestamp %v not after %v", at, prev)
		}
		prev = at
	}
	if name, _ := NewNamer("selfie", "jpg").Next(); name == "" {
		t.Fatal("default clock produced empty name")
	}
}

func TestNamer_FollowsClock(t *testing.T) {
	now := time.UnixMilli(1000)
	n := NewNamer("doc", "png")
	n.Now = func() time.Time { return now }

	first, _ := n.Next()
	now = now.Add(time.Second)
	second, _ := n.Next()
	if first != "doc-1000.png" || second != "doc-2000.png" {
		t.Errorf("names = %q, %q", first, second)
	}
}

func TestFile_Size(t *testing.T) {
	var nilFile *File
	if nilFile.Size() != 0 {
		t.Error("nil file size should be 0")
	}
	f := &File{Data: make([]byte, 2048)}
	if f.SizeKB() != 2 {
		t.Errorf("SizeKB() = %v, want 2", f.SizeKB())
	}
}
