package i18n

import (
	"context"
	"testing"
)

func TestDetectLanguage(t *testing.T) {
	if DetectLanguage("en-US,en;q=0.9") != "en" {
		t.Fatalf("expected en")
	}
	if DetectLanguage("FR-fr") != "fr" {
		t.Fatalf("expected fr for FR-fr")
	}
	if DetectLanguage("es-ES,es;q=0.8") != "en" {
		t.Fatalf("expected en fallback for unsupported language")
	}
	if DetectLanguage("") != "en" {
		t.Fatalf("expected default en")
	}
}

func TestTranslations(t *testing.T) {
	if T("en", "required") != "Required" {
		t.Fatalf("expected Required")
	}
	if T("fr", "required") != "Requis" {
		t.Fatalf("expected Requis")
	}
	// unknown code -> fallback to code
	if T("en", "__nope__") != "__nope__" {
		t.Fatalf("expected fallback to code")
	}
	// unknown language -> fallback to en translation if it exists
	if T("es", "required") != "Required" {
		t.Fatalf("expected en fallback for es lang")
	}
}

func TestValidationCodesCovered(t *testing.T) {
	for _, code := range []string{
		"missing_payment_method", "no_line_items",
		"no_installments", "incomplete_allocation",
	} {
		if T("en", code) == code || T("fr", code) == code {
			t.Fatalf("validation code %q must be translated", code)
		}
	}
}

func TestLangContext(t *testing.T) {
	ctx := WithLang(context.Background(), "FR-ca")
	if Lang(ctx) != "fr" {
		t.Fatalf("expected normalized fr, got %q", Lang(ctx))
	}
	if Lang(context.Background()) != "en" {
		t.Fatalf("expected default en")
	}
}
