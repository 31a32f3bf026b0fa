package textproc

import (
	"strings"
	"testing"
)

func Test_Split_Empty(t *testing.T) {
	t.Parallel()

	chunks, err := Split("", 100, 10)
	if err != nil {
		t.Fatalf("split empty: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("want no chunks for empty input, got %d", len(chunks))
	}
}

func Test_Split_ShortInputSingleChunk(t *testing.T) {
	t.Parallel()

	chunks, err := Split("tiny", 100, 10)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(chunks) != 1 || chunks[0] != "tiny" {
		t.Errorf("want single chunk %q, got %v", "tiny", chunks)
	}
}

func Test_Split_ReconstructsOriginal(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("abcdefghij", 137) // 1370 chars, not a multiple of the stride
	size, overlap := 100, 20

	chunks, err := Split(text, size, overlap)
	if err != nil {
		t.Fatalf("split: %v", err)
	}

	// Dropping the overlapping prefix of every chunk after the first must
	// reassemble the original text exactly.
	var b strings.Builder
	for i, c := range chunks {
		if i == 0 {
			b.WriteString(c)
			continue
		}
		if len(c) < overlap {
			b.WriteString(c[len(c):])
			continue
		}
		b.WriteString(c[overlap:])
	}
	if b.String() != text {
		t.Errorf("reassembled text differs from original (lens %d vs %d)", b.Len(), len(text))
	}
}

func Test_Split_ChunkCountAndBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		textLen int
		size    int
		overlap int
	}{
		{"exact multiple", 1000, 100, 0},
		{"overlapping", 1370, 100, 20},
		{"heavy overlap", 500, 50, 40},
		{"single window", 80, 100, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			text := strings.Repeat("x", tt.textLen)

			chunks, err := Split(text, tt.size, tt.overlap)
			if err != nil {
				t.Fatalf("split: %v", err)
			}

			// ceil((len - overlap) / (size - overlap)), within ±1.
			stride := tt.size - tt.overlap
			want := (tt.textLen - tt.overlap + stride - 1) / stride
			if got := len(chunks); got < want-1 || got > want+1 {
				t.Errorf("chunk count %d outside expected %d±1", got, want)
			}

			for i, c := range chunks {
				if len(c) > tt.size {
					t.Errorf("chunk %d length %d exceeds size %d", i, len(c), tt.size)
				}
				if len(c) == 0 {
					t.Errorf("chunk %d is empty", i)
				}
			}
		})
	}
}

func Test_Split_InvalidParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		size    int
		overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -1, 0},
		{"negative overlap", 100, -1},
		{"overlap equals size", 100, 100},
		{"overlap exceeds size", 100, 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Split("some text", tt.size, tt.overlap); err == nil {
				t.Errorf("Split(size=%d, overlap=%d) should fail", tt.size, tt.overlap)
			}
		})
	}
}
