// Package resolver maps free-text product references onto a shop's
// catalog. It is strictly read-only: voice typos must never create
// duplicate catalog entries, so mutating commands fail when no existing
// product matches.
package resolver

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"kirana-service/internal/cache"
	"kirana-service/internal/models"
	"kirana-service/internal/repository"
)

// Match thresholds, empirically tuned; changing them changes
// shopkeeper-facing behavior and needs product review.
const (
	singleTokenCoverage = 0.3
	multiTokenCoverage  = 0.5
)

var allDigitsRe = regexp.MustCompile(`^\d{8,16}$`)

// fuzzyStopwords are dropped before token-overlap scoring: quantity
// units, generic verbs and grammar particles carry no product signal.
var fuzzyStopwords = map[string]bool{
	"kg": true, "g": true, "gm": true, "gram": true, "grams": true,
	"ml": true, "l": true, "ltr": true, "litre": true, "liter": true,
	"piece": true, "pieces": true, "pcs": true, "packet": true,
	"packets": true, "pkt": true, "bottle": true, "bottles": true,
	"box": true, "dozen": true,
	"add": true, "sold": true, "sell": true, "karo": true, "kar": true,
	"do": true, "daal": true, "daalo": true, "becha": true, "bech": true,
	"ka": true, "ke": true, "ki": true, "ko": true, "ne": true,
	"hai": true, "the": true, "a": true, "of": true,
}

// defaultScriptAliases resolves Devanagari product names to the same
// canonical key as their Latin spelling.
var defaultScriptAliases = map[string]string{
	"मैगी":    "maggi",
	"आटा":     "atta",
	"चीनी":    "cheeni",
	"चावल":    "chawal",
	"दाल":     "dal",
	"तेल":     "tel",
	"दूध":     "doodh",
	"साबुन":   "sabun",
	"नमक":     "namak",
	"घी":      "ghee",
	"बिस्कुट": "biscuit",
}

// Resolver finds the best catalog match for a free-text name.
type Resolver struct {
	products repository.ProductRepository
	catalog  *cache.CatalogCache
	aliases  map[string]string
	logger   *zap.Logger
}

// New builds a Resolver with the default script alias table.
func New(products repository.ProductRepository, catalog *cache.CatalogCache, logger *zap.Logger) *Resolver {
	return &Resolver{
		products: products,
		catalog:  catalog,
		aliases:  defaultScriptAliases,
		logger:   logger,
	}
}

// Resolve runs the lookup cascade: barcode, exact normalized name, fuzzy
// token overlap. Returns (nil, nil) when nothing qualifies. Never
// creates a product.
func (r *Resolver) Resolve(ctx context.Context, shopID, freeText string) (*models.Product, error) {
	search := strings.TrimSpace(freeText)
	if search == "" {
		return nil, nil
	}

	// 1. Barcode
	if allDigitsRe.MatchString(search) {
		p, err := r.products.GetByBarcode(ctx, shopID, search)
		if err != nil || p != nil {
			return p, err
		}
	}

	// 2. Exact normalized name, script aliases applied
	key := models.NormalizeName(search)
	if alias, ok := r.aliases[key]; ok {
		key = alias
	}
	p, err := r.products.GetByNormalizedName(ctx, shopID, key)
	if err != nil || p != nil {
		return p, err
	}

	// 3. Fuzzy token overlap over the whole catalog
	candidates, err := r.listCatalog(ctx, shopID)
	if err != nil {
		return nil, err
	}
	return r.fuzzyMatch(search, candidates), nil
}

func (r *Resolver) listCatalog(ctx context.Context, shopID string) ([]*models.Product, error) {
	if cached := r.catalog.GetCatalog(ctx, shopID); cached != nil {
		return cached, nil
	}
	products, err := r.products.ListByShop(ctx, shopID)
	if err != nil {
		return nil, err
	}
	r.catalog.SetCatalog(ctx, shopID, products)
	return products, nil
}

// fuzzyMatch scores each candidate by token intersection with the search
// text. Coverage is measured against the candidate's own token count;
// single-token searches get the lower bar on purpose — a one-word brand
// fragment should still match a long product name. Ties keep the first
// candidate in catalog order.
func (r *Resolver) fuzzyMatch(search string, candidates []*models.Product) *models.Product {
	searchTokens := fuzzyTokens(search)
	if len(searchTokens) == 0 {
		return nil
	}
	coverage := multiTokenCoverage
	if len(searchTokens) == 1 {
		coverage = singleTokenCoverage
	}

	searchSet := make(map[string]bool, len(searchTokens))
	for _, tok := range searchTokens {
		searchSet[tok] = true
	}

	var (
		best      *models.Product
		bestScore int
	)
	for _, p := range candidates {
		prodTokens := fuzzyTokens(p.NormalizedName)
		if len(prodTokens) == 0 {
			continue
		}
		score := 0
		for _, tok := range prodTokens {
			if searchSet[tok] {
				score++
			}
		}
		if score == 0 {
			continue
		}
		if float64(score)/float64(len(prodTokens)) < coverage {
			continue
		}
		// One shared token out of a multi-token search is only conclusive
		// when it covers the whole product name; "moong dal" must never
		// land on "toor dal".
		if len(searchTokens) > 1 && score < 2 && score != len(prodTokens) {
			continue
		}
		if score > bestScore {
			best = p
			bestScore = score
		}
	}

	if best != nil {
		r.logger.Debug("fuzzy product match",
			zap.String("search", search),
			zap.String("matched", best.Name),
			zap.Int("score", bestScore))
	}
	return best
}

// fuzzyTokens lowercases, splits hyphens, strips digits and sign
// characters, and drops stopwords.
func fuzzyTokens(text string) []string {
	text = strings.ToLower(text)
	text = strings.ReplaceAll(text, "-", " ")

	var out []string
	for _, tok := range strings.Fields(text) {
		tok = strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' || r == '+' || r == '-' {
				return -1
			}
			return r
		}, tok)
		tok = strings.Trim(tok, ".,!?")
		if tok == "" || fuzzyStopwords[tok] {
			continue
		}
		out = append(out, tok)
	}
	return out
}
