package validation

import (
	"strings"
	"testing"
)

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		name      string
		format    string
		expectErr bool
	}{
		{"Pretty", "pretty", false},
		{"CSV", "csv", false},
		{"JSON not supported", "json", true},
		{"Empty", "", true},
		{"Case sensitive", "CSV", true},
		{"Surrounding spaces", " pretty ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format)
			if (err != nil) != tt.expectErr {
				t.Errorf("ValidateOutputFormat(%q) error = %v, expectErr %v", tt.format, err, tt.expectErr)
			}
		})
	}
}

func TestValidateOutputFormatErrorMessage(t *testing.T) {
	err := ValidateOutputFormat("xml")
	if err == nil {
		t.Fatal("expected error")
	}
	for _, fragment := range []string{"pretty", "csv", "xml"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("error %q should mention %q", err.Error(), fragment)
		}
	}
}
