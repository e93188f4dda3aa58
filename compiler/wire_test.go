package compiler

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestImageRoundTrip(t *testing.T) {
	code := mustParse(t, "++++[->++<]>[>+<-.],.")
	img := &Image{Version: ImageVersion, CellBits: 8, Code: code}

	data, err := MarshalImage(img)
	if err != nil {
		t.Fatalf("MarshalImage: %v", err)
	}
	got, err := UnmarshalImage(data)
	if err != nil {
		t.Fatalf("UnmarshalImage: %v", err)
	}
	if diff := cmp.Diff(img, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestImageEncodingDeterministic(t *testing.T) {
	code := mustParse(t, "++[->+<]")
	img := &Image{Version: ImageVersion, CellBits: 16, Code: code}

	a, err := MarshalImage(img)
	if err != nil {
		t.Fatalf("MarshalImage: %v", err)
	}
	b, err := MarshalImage(img)
	if err != nil {
		t.Fatalf("MarshalImage: %v", err)
	}
	if string(a) != string(b) {
		t.Error("canonical encoding produced different bytes for the same image")
	}
}

func TestImageUsesLowercaseKeys(t *testing.T) {
	// Every wire key is lowercase; Go field names must not leak into the
	// encoding.
	img := &Image{Version: ImageVersion, CellBits: 8, Code: []Node{{Op: OpInc, Count: 1}}}
	data, err := MarshalImage(img)
	if err != nil {
		t.Fatalf("MarshalImage: %v", err)
	}
	if bytes.Contains(data, []byte("Op")) {
		t.Error(`encoding contains key "Op", want "op"`)
	}
	if !bytes.Contains(data, []byte("op")) {
		t.Error(`encoding missing key "op"`)
	}
}

func TestImageVersionMismatch(t *testing.T) {
	img := &Image{Version: ImageVersion + 1, CellBits: 8}
	data, err := MarshalImage(img)
	if err != nil {
		t.Fatalf("MarshalImage: %v", err)
	}
	if _, err := UnmarshalImage(data); err == nil {
		t.Error("UnmarshalImage accepted a future image version")
	}
}

func TestImageRejectsBadCellWidth(t *testing.T) {
	// An image compiled for a width no tape supports must be rejected at
	// load time, not silently skipped at dispatch.
	for _, bits := range []int{0, 12, 128} {
		img := &Image{Version: ImageVersion, CellBits: bits}
		data, err := MarshalImage(img)
		if err != nil {
			t.Fatalf("MarshalImage: %v", err)
		}
		if _, err := UnmarshalImage(data); err == nil {
			t.Errorf("UnmarshalImage accepted cell width %d", bits)
		}
	}
}

func TestImageRejectsGarbage(t *testing.T) {
	if _, err := UnmarshalImage([]byte("not cbor at all")); err == nil {
		t.Error("UnmarshalImage accepted garbage")
	}
}
