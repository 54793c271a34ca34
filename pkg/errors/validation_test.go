package errors

import (
	"testing"
)

func TestValidateWidth(t *testing.T) {
	tests := []struct {
		name    string
		input   int
		wantErr bool
	}{
		{"one", 1, false},
		{"typical", 4, false},
		{"max", MaxWidth, false},

		{"zero", 0, true},
		{"negative", -3, true},
		{"too large", MaxWidth + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWidth(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateWidth(%d) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidWidth) {
				t.Errorf("ValidateWidth(%d) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidWidth)
			}
		})
	}
}

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "x", false},
		{"upper", "Edge_12", false},
		{"primed", "v1'", false},
		{"dotted", "r.a", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"space", "a b", true},
		{"paren", "a(", true},
		{"comma", "a,b", true},
		{"control char", "a\x01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentifier(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIdentifier(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "out/tree.svg", false},
		{"absolute", "/tmp/tree.svg", false},
		{"dots in name", "a..b.svg", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 600)), true},
		{"traversal", "out/../../etc/passwd", true},
		{"null byte", "out\x00.svg", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateAlgorithm(t *testing.T) {
	known := []string{"detk", "balsep"}
	if err := ValidateAlgorithm("detk", known); err != nil {
		t.Errorf("ValidateAlgorithm(detk) = %v, want nil", err)
	}
	err := ValidateAlgorithm("magic", known)
	if !Is(err, ErrCodeInvalidAlgorithm) {
		t.Errorf("ValidateAlgorithm(magic) = %v, want %v", err, ErrCodeInvalidAlgorithm)
	}
}
