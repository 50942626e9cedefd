package catalog

import (
	"strings"
	"testing"

	"tunemart/apperr"
)

func TestValidateFields(t *testing.T) {
	tests := []struct {
		name        string
		recordName  string
		category    string
		price       float64
		description string
		wantCount   int
	}{
		{name: "valid", recordName: "Blue Horizon", category: "Single", price: 9.99},
		{name: "blank name", recordName: "   ", category: "Single", price: 9.99, wantCount: 1},
		{name: "name too long", recordName: strings.Repeat("a", 101), category: "Single", price: 9.99, wantCount: 1},
		{name: "multibyte name within limit", recordName: strings.Repeat("音", 100), category: "Single", price: 9.99},
		{name: "multibyte name too long", recordName: strings.Repeat("音", 101), category: "Single", price: 9.99, wantCount: 1},
		{name: "multibyte description within limit", recordName: "Blue Horizon", category: "Single", price: 9.99, description: strings.Repeat("楽", 1000)},
		{name: "zero price", recordName: "Blue Horizon", category: "Single", price: 0, wantCount: 1},
		{name: "negative price", recordName: "Blue Horizon", category: "Single", price: -1, wantCount: 1},
		{name: "blank category", recordName: "Blue Horizon", category: "", price: 9.99, wantCount: 1},
		{name: "long description", recordName: "Blue Horizon", category: "Single", price: 9.99, description: strings.Repeat("d", 1001), wantCount: 1},
		{name: "everything wrong", recordName: "", category: "", price: -5, wantCount: 3},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := validateFields(tc.recordName, tc.category, tc.price, tc.description)
			if len(got) != tc.wantCount {
				t.Fatalf("got %d violations %v, want %d", len(got), got, tc.wantCount)
			}
		})
	}
}

func TestValidateAsset(t *testing.T) {
	audio := Asset{Reader: strings.NewReader("riff"), Size: 4, ContentType: "audio/mpeg", Filename: "a.mp3"}
	if v := validateAsset(audio, "audio/", "audio"); len(v) != 0 {
		t.Fatalf("valid audio asset rejected: %v", v)
	}

	wrongType := Asset{Reader: strings.NewReader("png"), Size: 3, ContentType: "image/png", Filename: "a.png"}
	if v := validateAsset(wrongType, "audio/", "audio"); len(v) != 1 {
		t.Fatalf("expected one violation for image/png audio, got %v", v)
	}

	missing := Asset{}
	if v := validateAsset(missing, "audio/", "audio"); len(v) != 1 {
		t.Fatalf("expected one violation for missing asset, got %v", v)
	}
}

func TestValidatePaging(t *testing.T) {
	if err := validatePaging(0, 10); err != nil {
		t.Fatalf("page=0 size=10 should be valid: %v", err)
	}
	if err := validatePaging(-1, 10); !apperr.IsValidation(err) {
		t.Fatalf("negative page should be a validation error, got %v", err)
	}
	if err := validatePaging(0, 0); !apperr.IsValidation(err) {
		t.Fatalf("zero size should be a validation error, got %v", err)
	}
	if err := validatePaging(-1, -1); !apperr.IsValidation(err) {
		t.Fatalf("both invalid should be a validation error, got %v", err)
	}
}
