package report

import (
	"bytes"
	"testing"
)

func TestDigest(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		want    string
	}{
		{
			name:    "known vector abc",
			content: []byte("abc"),
			want:    "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		},
		{
			name:    "known vector hello world",
			content: []byte("hello world"),
			want:    "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9",
		},
		{
			name:    "empty content",
			content: nil,
			want:    "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Digest(tt.content); got != tt.want {
				t.Errorf("Digest() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDigest_FullContentMatters(t *testing.T) {
	base := bytes.Repeat([]byte{0xAB}, 2<<20)
	modified := bytes.Repeat([]byte{0xAB}, 2<<20)
	modified[len(modified)-1] = 0xCD

	if Digest(base) == Digest(modified) {
		t.Error("payloads differing only in the final byte produced the same digest")
	}
}

func TestDigest_Deterministic(t *testing.T) {
	content := []byte("the same bytes, hashed twice")
	if Digest(content) != Digest(content) {
		t.Error("identical content produced different digests")
	}
}
