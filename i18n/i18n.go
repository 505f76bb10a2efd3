// Package i18n resolves error codes and UI strings to human-readable
// messages. English is the default; French is kept for clinics that ran
// the previous system in French. Unknown codes fall back to the code
// itself so a missing translation never hides an error.
package i18n

import (
	"context"
	"strings"
)

type langKey struct{}

const defaultLang = "en"

// WithLang returns a context carrying the language preference.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langKey{}, normalize(lang))
}

// Lang extracts the language from the context, defaulting to English.
func Lang(ctx context.Context) string {
	if l, ok := ctx.Value(langKey{}).(string); ok && l != "" {
		return l
	}
	return defaultLang
}

// DetectLanguage picks a supported language from an Accept-Language
// header value.
func DetectLanguage(acceptLanguage string) string {
	for _, part := range strings.Split(acceptLanguage, ",") {
		lang := normalize(part)
		if _, ok := catalog[lang]; ok {
			return lang
		}
	}
	return defaultLang
}

func normalize(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(tag, "-;"); i >= 0 {
		tag = tag[:i]
	}
	return tag
}

// T translates a code for the given language. Unsupported languages fall
// back to English; unknown codes fall back to the code itself.
func T(lang, code string) string {
	msgs, ok := catalog[normalize(lang)]
	if !ok {
		msgs = catalog[defaultLang]
	}
	if msg, ok := msgs[code]; ok {
		return msg
	}
	if msg, ok := catalog[defaultLang][code]; ok {
		return msg
	}
	return code
}

var catalog = map[string]map[string]string{
	"en": {
		"required":                  "Required",
		"must_be_positive":          "Must be a positive number",
		"out_of_range":              "Out of range",
		"invalid_email":             "Invalid email address",
		"invalid_value":             "Invalid value",
		"unauthorized":              "You must be logged in",
		"forbidden":                 "You do not have permission to do this",
		"not_found":                 "Not found",
		"missing_payment_method":    "Select a payment method before submitting",
		"no_line_items":             "Add at least one service to the invoice",
		"no_installments":           "Add at least one installment",
		"incomplete_allocation":     "Installments must add up to exactly 100%",
		"invoice_already_paid":      "This invoice is already marked as paid",
		"invoice_archived":          "Archived invoices cannot be modified",
		"complimentary_not_payable": "Complimentary invoices are not payable",
		"channel_not_configured":    "This messaging channel is not configured",
		"record_in_use":             "Another staff member is editing this record",
	},
	"fr": {
		"required":                  "Requis",
		"must_be_positive":          "Doit être un nombre positif",
		"out_of_range":              "Hors limites",
		"invalid_email":             "Adresse email invalide",
		"invalid_value":             "Valeur invalide",
		"unauthorized":              "Vous devez être connecté",
		"forbidden":                 "Vous n'avez pas la permission",
		"not_found":                 "Introuvable",
		"missing_payment_method":    "Sélectionnez un mode de paiement avant de valider",
		"no_line_items":             "Ajoutez au moins un service à la facture",
		"no_installments":           "Ajoutez au moins une échéance",
		"incomplete_allocation":     "Les échéances doivent totaliser exactement 100%",
		"invoice_already_paid":      "Cette facture est déjà marquée comme payée",
		"invoice_archived":          "Les factures archivées ne sont pas modifiables",
		"complimentary_not_payable": "Les factures gracieuses ne sont pas payables",
		"channel_not_configured":    "Ce canal de communication n'est pas configuré",
		"record_in_use":             "Un autre membre du personnel modifie ce dossier",
	},
}
