package catalog

import (
	"regexp"

	"github.com/anushkayadav0901/SypherFinal/internal/domain"
)

// Production detection data. These lists are configuration, not logic:
// edit here (or load a replacement catalog) and rebuild, never mutate a
// live catalog.

var phishingKeywords = []string{
	"urgent", "click here", "verify now", "suspended", "act now", "winner",
	"congratulations", "claim", "prize", "lottery", "bitcoin",
	"cryptocurrency", "investment", "roi", "profit", "guaranteed",
	"risk-free", "double your money", "easy money", "make money fast",
	"work from home", "free money", "get rich quick",
}

var gamblingKeywords = []string{
	"casino", "poker", "rummy", "betting", "slots", "jackpot", "gamble",
	"wager", "blackjack", "roulette", "scratch card", "bingo",
	"sports betting", "horse racing",
}

var malwareSignatures = []string{
	"eval(unescape(", "document.write(unescape(", "javascript:void(0)",
	`onclick="javascript:`,
}

var sensitiveFieldNames = []string{
	"password", "ssn", "social", "credit", "card", "cvv", "bank",
	"account", "routing", "pin", "security",
}

var shortenerDomains = []string{
	"bit.ly", "tinyurl.com", "goo.gl", "t.co", "ow.ly", "short.link",
	"rebrand.ly", "cutt.ly", "tiny.cc", "is.gd",
}

var brandDomains = []string{
	"google.com", "facebook.com", "amazon.com", "microsoft.com",
	"apple.com", "twitter.com", "linkedin.com", "youtube.com",
}

var disallowedTLDs = []string{"tk", "ml", "ga", "cf"}

var (
	credentialLeakPattern = regexp.MustCompile(
		`(?i)(password|username|api[_-]?key|secret|token)\s*[:=]\s*\S+`)
	sensitiveRequestPattern = regexp.MustCompile(
		`(?i)(password|login|auth|token|api[_-]?key|secret)`)
	insecureTransportPattern = regexp.MustCompile(`^http://`)
)

// Default builds the production rule catalog. It never fails; failures here
// are programming errors in the static data.
func Default() *Catalog {
	c, err := New(Config{
		Rules:          defaultRules(),
		Shorteners:     shortenerDomains,
		Brands:         brandDomains,
		DisallowedTLDs: disallowedTLDs,
	})
	if err != nil {
		panic(err)
	}
	return c
}

func defaultRules() []Rule {
	return []Rule{
		{
			ID:          "gambling.keywords",
			Category:    domain.CategoryGambling,
			Severity:    domain.SeverityHigh,
			Weight:      50,
			Description: "Gambling-related content detected",
			Kinds:       []domain.SignalKind{domain.SignalDomain, domain.SignalTitle, domain.SignalText},
			Keywords:    gamblingKeywords,
		},
		{
			ID:          "phishing.keywords",
			Category:    domain.CategoryPhishing,
			Severity:    domain.SeverityMedium,
			Weight:      25,
			Description: "Phishing indicators detected in page content",
			Kinds:       []domain.SignalKind{domain.SignalTitle, domain.SignalText},
			Keywords:    phishingKeywords,
		},
		{
			ID:          "insecure.transport",
			Category:    domain.CategoryInsecure,
			Severity:    domain.SeverityMedium,
			Weight:      20,
			Description: "Page served over HTTP instead of HTTPS",
			Kinds:       []domain.SignalKind{domain.SignalLink},
			Pattern:     insecureTransportPattern,
			Except:      []string{"localhost", "127.0.0.1"},
		},
		{
			ID:          "malware.signatures",
			Category:    domain.CategoryMalware,
			Severity:    domain.SeverityCritical,
			Weight:      100,
			Description: "Suspicious code patterns detected",
			Kinds:       []domain.SignalKind{domain.SignalText, domain.SignalScript},
			Keywords:    malwareSignatures,
		},
		{
			ID:          "leak.credentials",
			Category:    domain.CategoryDataCollection,
			Severity:    domain.SeverityHigh,
			Weight:      40,
			Description: "Credential-like data exposed in page text",
			Kinds:       []domain.SignalKind{domain.SignalText},
			Pattern:     credentialLeakPattern,
		},
		{
			ID:          "forms.sensitive",
			Category:    domain.CategoryDataCollection,
			Severity:    domain.SeverityMedium,
			Weight:      30,
			Description: "Form requesting sensitive information",
			Kinds:       []domain.SignalKind{domain.SignalForm},
			Keywords:    sensitiveFieldNames,
		},
		{
			ID:          "requests.sensitive",
			Category:    domain.CategoryDataCollection,
			Severity:    domain.SeverityMedium,
			Weight:      20,
			Description: "Outgoing request targets a credential endpoint",
			Kinds:       []domain.SignalKind{domain.SignalLink},
			Pattern:     sensitiveRequestPattern,
		},
	}
}

// Text-analysis keyword groups with their per-hit weights. Used by the
// scorer's free-text path, which scores per keyword instead of per category.
var (
	urgencyKeywords   = []string{"urgent", "immediate", "now", "quickly", "asap", "deadline"}
	financialKeywords = []string{"money", "payment", "card", "bank", "account", "credit"}
)

// TextKeywordGroup pairs a keyword list with the weight each hit adds.
type TextKeywordGroup struct {
	Name     string
	Keywords []string
	Weight   int
}

// TextKeywordGroups returns the free-text scoring groups in evaluation order.
func TextKeywordGroups() []TextKeywordGroup {
	return []TextKeywordGroup{
		{Name: "phishing", Keywords: phishingKeywords, Weight: 15},
		{Name: "gambling", Keywords: gamblingKeywords, Weight: 20},
		{Name: "urgency", Keywords: urgencyKeywords, Weight: 10},
		{Name: "financial", Keywords: financialKeywords, Weight: 8},
	}
}
