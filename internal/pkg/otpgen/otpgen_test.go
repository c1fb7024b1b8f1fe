package otpgen

import (
	"errors"
	"math/big"
	"strings"
	"testing"
)

func TestRandomGenerate(t *testing.T) {
	t.Run("LengthAndAlphabet", func(t *testing.T) {
		gen := NewRandom()

		for _, length := range []int{1, 5, 6, 20, 64} {
			code, err := gen.Generate(length)
			if err != nil {
				t.Fatalf("expected no error for length %d, got %v", length, err)
			}
			if len(code) != length {
				t.Fatalf("expected code of length %d, got %q", length, code)
			}
			for _, c := range code {
				if !strings.ContainsRune(alphabet, c) {
					t.Fatalf("expected only numeric characters, got %q", code)
				}
			}
		}
	})

	t.Run("InvalidLength", func(t *testing.T) {
		gen := NewRandom()

		for _, length := range []int{0, -1, 65} {
			if _, err := gen.Generate(length); !errors.Is(err, ErrInvalidLength) {
				t.Fatalf("expected ErrInvalidLength for length %d, got %v", length, err)
			}
		}
	})

	t.Run("DeterministicSource", func(t *testing.T) {
		next := int64(0)
		gen := NewRandomWithSource(func(max *big.Int) (*big.Int, error) {
			n := next % max.Int64()
			next++
			return big.NewInt(n), nil
		})

		code, err := gen.Generate(6)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if code != "012345" {
			t.Fatalf("expected code 012345, got %q", code)
		}
	})

	t.Run("SourceError", func(t *testing.T) {
		wantErr := errors.New("no entropy")
		gen := NewRandomWithSource(func(*big.Int) (*big.Int, error) {
			return nil, wantErr
		})

		if _, err := gen.Generate(6); !errors.Is(err, wantErr) {
			t.Fatalf("expected source error, got %v", err)
		}
	})
}
